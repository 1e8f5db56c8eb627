package cmd

import (
	"flag"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables overriding the flag defaults.
const (
	EnvDir         = "BUDGET_DIR"
	EnvLedger      = "BUDGET_LEDGER"
	EnvEnv         = "BUDGET_ENV"
	EnvFXTolerance = "BUDGET_FX_TOLERANCE_DAYS"
	EnvModel       = "BUDGET_GENAI_MODEL"
)

// Config holds the global settings of the CLI.
type Config struct {
	Dir    string // ledger folder
	Ledger string // ledger name in Dir
	Env    string // "production" logs JSON
	// FXTolerance overrides the rate tolerance of the ledger when positive.
	FXTolerance int
	Model       string // Gemini model used by explain
	Raw         bool   // print markdown without terminal rendering
}

// config is the global configuration, as a CLI application has a very short lived lifecycle.
var config Config

// LoadEnv reads the optional .env file of the working directory.
func LoadEnv() {
	// a missing file is fine.
	_ = godotenv.Load()
}

// RegisterFlags declares the global flags on f, with defaults from the environment.
func RegisterFlags(f *flag.FlagSet) {
	f.StringVar(&config.Dir, "dir", getenv(EnvDir, "."), "Folder of the ledger files.")
	f.StringVar(&config.Ledger, "ledger", getenv(EnvLedger, "budget"), "Name of the ledger in the folder.")
	f.StringVar(&config.Env, "env", getenv(EnvEnv, "development"), "Environment: production logs JSON.")
	f.IntVar(&config.FXTolerance, "fx-tolerance", getenvInt(EnvFXTolerance, 0), "Age in days of a usable exchange rate, 0 keeps the ledger one.")
	f.StringVar(&config.Model, "model", getenv(EnvModel, "gemini-2.5-flash"), "Gemini model used by explain.")
	f.BoolVar(&config.Raw, "raw", false, "Print markdown without terminal rendering.")
}

func getenv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}
