package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/budget"
	"github.com/etnz/budget/logger"
	"github.com/google/subcommands"
)

type backupCmd struct{ note string }

func (*backupCmd) Name() string     { return "backup" }
func (*backupCmd) Synopsis() string { return "save a copy of the ledger" }
func (*backupCmd) Usage() string {
	return `bgt backup [-note <text>]

  Writes a copy of the ledger in the backups folder.
`
}

func (c *backupCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.note, "note", "", "Why the backup was made.")
}

func (c *backupCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	l, err := openLedger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	info, err := store().Backup(config.Ledger, l, c.note)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	logger.Get().Infow("ledger backed up", "ledger", config.Ledger, "path", info.Path)
	fmt.Fprintf(out, "Backup %s created.\n", backupID(info))
	return subcommands.ExitSuccess
}

type restoreCmd struct{ list bool }

func (*restoreCmd) Name() string     { return "restore" }
func (*restoreCmd) Synopsis() string { return "restore a backup of the ledger" }
func (*restoreCmd) Usage() string {
	return `bgt restore -list
bgt restore <backup>

  Lists the backups of the ledger, or saves one of them as the current ledger.
`
}

func (c *restoreCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.list, "list", false, "List the backups.")
}

func (c *restoreCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.list == (f.NArg() == 1) || f.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "Error: restore takes either -list or one backup")
		return subcommands.ExitUsageError
	}
	s := store()
	backups, err := s.ListBackups(config.Ledger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	if c.list {
		if len(backups) == 0 {
			printMarkdown("No backup.\n")
			return subcommands.ExitSuccess
		}
		var b strings.Builder
		fmt.Fprintln(&b, "| Backup | Note |")
		fmt.Fprintln(&b, "|:---|:---|")
		for _, info := range backups {
			fmt.Fprintf(&b, "| %s | %s |\n", backupID(info), info.Note)
		}
		printMarkdown(b.String())
		return subcommands.ExitSuccess
	}

	for _, info := range backups {
		if backupID(info) != f.Arg(0) {
			continue
		}
		l, err := s.Restore(info)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return subcommands.ExitFailure
		}
		if err := saveLedger(l); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return subcommands.ExitFailure
		}
		logger.Get().Infow("ledger restored", "ledger", config.Ledger, "backup", info.Path)
		fmt.Fprintf(out, "Backup %s restored.\n", backupID(info))
		return subcommands.ExitSuccess
	}
	fmt.Fprintf(os.Stderr, "Error: backup %q not found, see 'bgt restore -list'\n", f.Arg(0))
	return subcommands.ExitFailure
}

// backupID is the name users give to a backup.
func backupID(info budget.BackupInfo) string { return info.CreatedAt.UTC().Format(budget.BackupTimeFormat) }
