// Command bgt manages a personal budget ledger.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/etnz/budget/cmd"
	"github.com/etnz/budget/logger"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	cmd.LoadEnv()
	cmd.RegisterFlags(flag.CommandLine)

	commander := subcommands.NewCommander(flag.CommandLine, "bgt")
	commander.Register(commander.HelpCommand(), "help")
	commander.Register(commander.FlagsCommand(), "help")
	commander.Register(commander.CommandsCommand(), "help")
	cmd.Register(commander)

	completion().Complete("bgt")

	flag.Parse()
	cmd.Init()
	status := commander.Execute(context.Background())
	logger.Sync()
	os.Exit(int(status))
}

// completion describes the command line for shell completion.
func completion() *complete.Command {
	window := map[string]complete.Predictor{"d": predict.Something, "s": predict.Something, "e": predict.Something}
	txAdd := map[string]complete.Predictor{
		"from": predict.Something, "to": predict.Something, "category": predict.Something,
		"d": predict.Something, "amount": predict.Something, "currency": predict.Something,
		"memo": predict.Something, "every": predict.Set{"1w", "2w", "1m", "3m", "1y"},
		"count": predict.Something, "until": predict.Something, "after-last": predict.Nothing,
	}
	txSet := map[string]complete.Predictor{
		"from": predict.Something, "to": predict.Something, "category": predict.Something,
		"d": predict.Something, "amount": predict.Something, "actual": predict.Something,
		"actual-date": predict.Something, "currency": predict.Something, "memo": predict.Something,
	}
	id := &complete.Command{}
	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"dir": predict.Dirs("*"), "ledger": predict.Something, "env": predict.Set{"development", "production"},
			"fx-tolerance": predict.Something, "model": predict.Something, "raw": predict.Nothing,
		},
		Sub: map[string]*complete.Command{
			"init": {Flags: map[string]complete.Predictor{
				"currency": predict.Something, "period": predict.Set{"1w", "2w", "1m", "1y"},
				"valuation": predict.Set{"transaction-date", "report-date"},
			}},
			"account": {Sub: map[string]*complete.Command{
				"add": {Flags: map[string]complete.Predictor{
					"kind": predict.Set{"bank", "cash", "savings", "expense", "income"}, "currency": predict.Something, "opening": predict.Something,
				}},
				"list": {}, "rm": {},
			}},
			"category": {Sub: map[string]*complete.Command{
				"add": {Flags: map[string]complete.Predictor{
					"kind": predict.Set{"expense", "income", "transfer"}, "target": predict.Something,
					"period": predict.Set{"1w", "2w", "1m", "1y"}, "ref": predict.Something, "parent": predict.Something,
				}},
				"list": {}, "rm": {},
			}},
			"tx": {Sub: map[string]*complete.Command{
				"add":    {Flags: txAdd},
				"list":   {Flags: window},
				"set":    {Flags: txSet},
				"rm":     id,
				"pause":  id,
				"resume": id,
				"skip":   {Flags: map[string]complete.Predictor{"d": predict.Something}},
			}},
			"actual":      {Flags: map[string]complete.Predictor{"d": predict.Something, "amount": predict.Something, "missed": predict.Nothing}},
			"materialize": {Flags: map[string]complete.Predictor{"d": predict.Something}},
			"summary":     {Flags: map[string]complete.Predictor{"d": predict.Something, "s": predict.Something, "e": predict.Something, "json": predict.Nothing}},
			"forecast":    {Flags: map[string]complete.Predictor{"d": predict.Something, "s": predict.Something, "e": predict.Something, "sim": predict.Something}},
			"rate": {Sub: map[string]*complete.Command{
				"add": {Flags: map[string]complete.Predictor{
					"from": predict.Something, "to": predict.Something, "d": predict.Something, "rate": predict.Something, "source": predict.Something,
				}},
				"import": {
					Flags: map[string]complete.Predictor{"from": predict.Something, "to": predict.Something, "path": predict.Something, "source": predict.Something},
					Args:  predict.Files("*.json"),
				},
				"list": {},
			}},
			"sim": {Sub: map[string]*complete.Command{
				"new":     {Flags: map[string]complete.Predictor{"notes": predict.Something}},
				"add":     {Flags: txAdd},
				"set":     {Flags: txSet},
				"exclude": id,
				"drop":    id,
				"impact":  {Flags: window},
				"apply":   id,
				"discard": id,
				"list":    {},
			}},
			"backup":  {Flags: map[string]complete.Predictor{"note": predict.Something}},
			"restore": {Flags: map[string]complete.Predictor{"list": predict.Nothing}},
			"topic": {Flags: map[string]complete.Predictor{"list": predict.Nothing}, Args: predict.Set{
				"ledger", "transactions", "recurrence", "windows", "currencies", "simulations", "storage",
			}},
			"explain": {Flags: map[string]complete.Predictor{"d": predict.Something, "chat": predict.Nothing}},
		},
	}
}
