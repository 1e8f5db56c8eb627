package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/etnz/budget"
	"github.com/etnz/budget/renderer"
	"github.com/google/subcommands"
)

// simCmd is a container for simulation subcommands
type simCmd struct{}

func (*simCmd) Name() string     { return "sim" }
func (*simCmd) Synopsis() string { return "try changes to the ledger before applying them" }
func (*simCmd) Usage() string {
	return `bgt sim <subcommand> [args]

Commands:
  new     - Create a simulation.
  add     - Add a transaction in a simulation.
  set     - Change a transaction in a simulation.
  exclude - Remove a transaction in a simulation.
  drop    - Remove a change from a simulation.
  impact  - Compare a budget window with and without a simulation.
  apply   - Apply the changes of a simulation to the ledger.
  discard - Discard a simulation.
  list    - List the simulations and their changes.
`
}

func (c *simCmd) SetFlags(f *flag.FlagSet) {}
func (c *simCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	commander := subcommands.NewCommander(f, "sim")
	commander.Register(&simNewCmd{}, "")
	commander.Register(&simAddCmd{}, "")
	commander.Register(&simSetCmd{}, "")
	commander.Register(&simExcludeCmd{}, "")
	commander.Register(&simDropCmd{}, "")
	commander.Register(&simImpactCmd{}, "")
	commander.Register(&simApplyCmd{}, "")
	commander.Register(&simApplyCmd{discard: true}, "")
	commander.Register(&simListCmd{}, "")
	return commander.Execute(ctx, args...)
}

// resolveSimTx finds a transaction of the ledger, or one added by the
// simulation, whose id ends with ref.
func resolveSimTx(l *budget.Ledger, sim, ref string) (string, error) {
	tx, err := resolveTx(l, ref)
	if err == nil {
		return tx.ID, nil
	}
	s, serr := l.Simulation(sim)
	if serr != nil {
		return "", serr
	}
	for _, c := range s.Changes {
		if add, ok := c.(budget.AddTransaction); ok && strings.HasSuffix(add.Transaction.ID, ref) {
			return add.Transaction.ID, nil
		}
	}
	return "", err
}

func addChange(l *budget.Ledger, sim string, change budget.SimulationChange) error {
	change, err := l.AddSimulationChange(sim, change, clock.Now())
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Simulation %q: %s\n", sim, change)
	return nil
}

type simNewCmd struct{ notes string }

func (*simNewCmd) Name() string     { return "new" }
func (*simNewCmd) Synopsis() string { return "create a simulation" }
func (*simNewCmd) Usage() string    { return "bgt sim new [-notes <text>] <name>\n" }
func (c *simNewCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.notes, "notes", "", "What the simulation is about.")
}

func (c *simNewCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: sim new takes exactly one name")
		return subcommands.ExitUsageError
	}
	return update(func(l *budget.Ledger) error {
		_, err := l.CreateSimulation(f.Arg(0), c.notes, clock.Now())
		return err
	})
}

type simAddCmd struct{ txFlags }

func (*simAddCmd) Name() string     { return "add" }
func (*simAddCmd) Synopsis() string { return "add a transaction in a simulation" }
func (*simAddCmd) Usage() string {
	return `bgt sim add -from <account> -to <account> -amount <amount> [tx add flags] <name>
`
}

func (c *simAddCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: sim add takes exactly one simulation name")
		return subcommands.ExitUsageError
	}
	return update(func(l *budget.Ledger) error {
		tx, err := c.transaction(l)
		if err != nil {
			return err
		}
		return addChange(l, f.Arg(0), budget.AddTransaction{Transaction: tx})
	})
}

type simSetCmd struct{ patchFlags }

func (*simSetCmd) Name() string     { return "set" }
func (*simSetCmd) Synopsis() string { return "change a transaction in a simulation" }
func (*simSetCmd) Usage() string {
	return `bgt sim set [tx set flags] <id> <name>
`
}

func (c *simSetCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Error: sim set takes a transaction id and a simulation name")
		return subcommands.ExitUsageError
	}
	return update(func(l *budget.Ledger) error {
		id, err := resolveSimTx(l, f.Arg(1), f.Arg(0))
		if err != nil {
			return err
		}
		p, err := c.patch(l, f)
		if err != nil {
			return err
		}
		return addChange(l, f.Arg(1), budget.ModifyTransaction{ID: id, Patch: p})
	})
}

type simExcludeCmd struct{}

func (*simExcludeCmd) Name() string             { return "exclude" }
func (*simExcludeCmd) Synopsis() string         { return "remove a transaction in a simulation" }
func (*simExcludeCmd) Usage() string            { return "bgt sim exclude <id> <name>\n" }
func (*simExcludeCmd) SetFlags(f *flag.FlagSet) {}

func (c *simExcludeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Error: sim exclude takes a transaction id and a simulation name")
		return subcommands.ExitUsageError
	}
	return update(func(l *budget.Ledger) error {
		id, err := resolveSimTx(l, f.Arg(1), f.Arg(0))
		if err != nil {
			return err
		}
		return addChange(l, f.Arg(1), budget.ExcludeTransaction{ID: id})
	})
}

type simDropCmd struct{}

func (*simDropCmd) Name() string             { return "drop" }
func (*simDropCmd) Synopsis() string         { return "remove a change from a simulation" }
func (*simDropCmd) Usage() string            { return "bgt sim drop <index> <name>\n" }
func (*simDropCmd) SetFlags(f *flag.FlagSet) {}

func (c *simDropCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Error: sim drop takes a change index and a simulation name")
		return subcommands.ExitUsageError
	}
	i, err := strconv.Atoi(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid change index %q\n", f.Arg(0))
		return subcommands.ExitUsageError
	}
	return update(func(l *budget.Ledger) error {
		return l.RemoveSimulationChange(f.Arg(1), i, clock.Now())
	})
}

type simImpactCmd struct{ windowFlags }

func (*simImpactCmd) Name() string     { return "impact" }
func (*simImpactCmd) Synopsis() string { return "compare a budget window with and without a simulation" }
func (*simImpactCmd) Usage() string {
	return "bgt sim impact [-d <date>] [-s <date> [-e <date>]] <name>\n"
}
func (c *simImpactCmd) SetFlags(f *flag.FlagSet) { c.windowFlags.set(f) }

func (c *simImpactCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: sim impact takes exactly one simulation name")
		return subcommands.ExitUsageError
	}
	return report(func(l *budget.Ledger) (string, error) {
		w, ref, err := c.window(l)
		if err != nil {
			return "", err
		}
		impact, err := l.SimulationImpact(f.Arg(0), w, ref)
		if err != nil {
			return "", err
		}
		return renderer.ImpactMarkdown(impact), nil
	})
}

// simApplyCmd applies, or discards, a simulation.
type simApplyCmd struct{ discard bool }

func (c *simApplyCmd) Name() string {
	if c.discard {
		return "discard"
	}
	return "apply"
}
func (c *simApplyCmd) Synopsis() string       { return c.Name() + " a simulation" }
func (c *simApplyCmd) Usage() string          { return "bgt sim " + c.Name() + " <name>\n" }
func (*simApplyCmd) SetFlags(f *flag.FlagSet) {}

func (c *simApplyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: sim %s takes exactly one simulation name\n", c.Name())
		return subcommands.ExitUsageError
	}
	return update(func(l *budget.Ledger) error {
		if c.discard {
			return l.DiscardSimulation(f.Arg(0), clock.Now())
		}
		return l.ApplySimulation(f.Arg(0), clock.Now())
	})
}

type simListCmd struct{}

func (*simListCmd) Name() string             { return "list" }
func (*simListCmd) Synopsis() string         { return "list the simulations" }
func (*simListCmd) Usage() string            { return "bgt sim list\n" }
func (*simListCmd) SetFlags(f *flag.FlagSet) {}

func (c *simListCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return report(func(l *budget.Ledger) (string, error) {
		var b strings.Builder
		for s := range l.Simulations() {
			fmt.Fprintf(&b, "## %s (%s)\n\n", s.Name, s.Status)
			if s.Notes != "" {
				fmt.Fprintf(&b, "%s\n\n", s.Notes)
			}
			for i, change := range s.Changes {
				fmt.Fprintf(&b, "%d. %s\n", i, change)
			}
			fmt.Fprintln(&b)
		}
		if b.Len() == 0 {
			return "No simulation.\n", nil
		}
		return b.String(), nil
	})
}
