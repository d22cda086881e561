// Package cli provides command definitions for photosync.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/klauern/photosync/internal/backup"
	"github.com/klauern/photosync/internal/config"
	"github.com/klauern/photosync/internal/export"
	"github.com/klauern/photosync/internal/index"
	"github.com/klauern/photosync/internal/logging"
	"github.com/klauern/photosync/internal/plan"
	"github.com/klauern/photosync/internal/progress"
	syncexec "github.com/klauern/photosync/internal/sync"
	"github.com/klauern/photosync/internal/ui"
	"github.com/klauern/photosync/internal/ui/tui"
	"github.com/klauern/photosync/internal/validation"
)

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Display the effective configuration",
		Action: func(_ context.Context, _ *cli.Command) error {
			cfg, err := config.LoadDefault()
			if err != nil {
				return err
			}
			fmt.Printf("Ignore patterns: %v\n", cfg.Index.Ignore)
			fmt.Printf("Backup enabled:  %v\n", cfg.Backup.Enabled)
			fmt.Printf("Backup location: %s\n", cfg.Backup.Location)
			fmt.Printf("Backup max:      %d\n", cfg.Backup.MaxEntries)
			fmt.Printf("Output format:   %s\n", cfg.Output.Format)
			return nil
		},
	}
}

func syncCommand() *cli.Command {
	return &cli.Command{
		Name:      "sync",
		Usage:     "Reconcile the target collection's layout with the source",
		UsageText: "photosync sync [options] <source> <target>",
		Description: `Reorganize the target collection so its folder structure matches
   the source collection. Files are matched by size and name; the source
   is never modified, and target files that have no source counterpart
   are left alone. Only exact duplicates are ever removed.

   Examples:
     photosync sync ~/photos/master ~/photos/laptop
     photosync sync --dry-run ~/photos/master /mnt/nas/photos`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "dry-run",
				Aliases: []string{"n"},
				Usage:   "Print the plan without modifying files",
			},
			&cli.BoolFlag{
				Name:    "interactive",
				Aliases: []string{"i"},
				Usage:   "Review and select operations before applying",
			},
			&cli.BoolFlag{
				Name:  "skip-backup",
				Usage: "Skip backing up duplicates before removal",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Plan output format: table, json, or yaml",
			},
		},
		Action: runSync,
	}
}

func runSync(_ context.Context, cmd *cli.Command) error {
	args := cmd.Args()
	if args.Len() != 2 {
		return errors.New("sync requires exactly 2 arguments: <source> <target>")
	}
	source, target := args.Get(0), args.Get(1)

	cfg, err := config.LoadDefault()
	if err != nil {
		logging.Warn("failed to load config, using defaults", logging.Err(err))
		cfg = config.Default()
	}

	if err := validation.ValidateRoots(source, target); err != nil {
		return err
	}

	fmt.Printf("Source: %s\n", source)
	fmt.Printf("Target: %s\n", target)

	sourceTree, err := index.BuildWith(source, index.Options{Ignore: cfg.Index.Ignore})
	if err != nil {
		return fmt.Errorf("failed to index source: %w", err)
	}
	targetTree, err := index.BuildWith(target, index.Options{Ignore: cfg.Index.Ignore})
	if err != nil {
		return fmt.Errorf("failed to index target: %w", err)
	}
	fmt.Printf("Indexed %d source and %d target file identities\n",
		sourceTree.Len(), targetTree.Len())

	p, err := plan.Build(sourceTree, targetTree)
	if err != nil {
		var dupErr *plan.DuplicateError
		if errors.As(err, &dupErr) {
			fmt.Println(ui.StatusError("source collection contains duplicates:"))
			for _, g := range dupErr.Groups {
				fmt.Printf("  %s\n", g.Key)
				for _, path := range g.Paths {
					fmt.Printf("    %s\n", path)
				}
			}
		}
		return err
	}

	if p.Empty() {
		fmt.Println(ui.StatusSuccess("collections are already in sync"))
		return nil
	}

	format := cmd.String("output")
	if format == "" {
		format = cfg.Output.Format
	}
	if err := printPlan(p, source, target, format); err != nil {
		return err
	}

	if cmd.Bool("dry-run") {
		fmt.Println(ui.Dim("Dry run - no changes made"))
		return nil
	}

	if cmd.Bool("interactive") {
		selected, proceed, err := reviewPlan(p)
		if err != nil {
			return err
		}
		if !proceed {
			fmt.Println(ui.Dim("Aborted - no changes made"))
			return nil
		}
		p = selected
	}

	executor := syncexec.New(source, target)
	if cfg.Backup.Enabled && !cmd.Bool("skip-backup") {
		store := backup.NewStore()
		if cfg.Backup.Location != "" {
			store.Dir = cfg.Backup.Location
		}
		if cfg.Backup.MaxEntries > 0 {
			store.MaxEntries = cfg.Backup.MaxEntries
		}
		if _, err := store.Cleanup(); err != nil {
			logging.Warn("backup cleanup failed", logging.Err(err))
		}
		executor.Backups = store
	}

	bar := progress.Simple(int64(len(p)), "Applying")
	result, execErr := executor.Execute(p, func(plan.Operation) {
		_ = bar.Add(1)
	})
	_ = bar.Finish()

	fmt.Print(result.Summary())
	if execErr != nil {
		return execErr
	}

	fmt.Println(ui.StatusSuccess("done"))
	return nil
}

// printPlan renders the plan as a colored table or hands off to the
// machine-readable exporters.
func printPlan(p plan.Plan, source, target, format string) error {
	if format == "" || format == "table" {
		fmt.Printf("\nPlan (%d operation(s)):\n", len(p))
		for _, op := range p {
			switch op.Kind {
			case plan.KindRemoveDuplicate:
				fmt.Printf("  %s %s (duplicate of %s)\n", ui.Verb(string(op.Kind)), op.From, op.To)
			default:
				fmt.Printf("  %s %s -> %s\n", ui.Verb(string(op.Kind)), op.From, op.To)
			}
		}
		fmt.Println()
		return nil
	}

	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}
	return export.Write(os.Stdout, source, target, p, f)
}

// reviewPlan runs the interactive plan review when attached to a
// terminal; otherwise it falls back to applying the full plan.
func reviewPlan(p plan.Plan) (plan.Plan, bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		logging.Warn("stdin is not a terminal, skipping interactive review")
		return p, true, nil
	}

	result, err := tui.RunPlanList(p)
	if err != nil {
		return nil, false, fmt.Errorf("interactive review failed: %w", err)
	}
	if result.Action != tui.PlanActionApply || result.Selected.Empty() {
		return nil, false, nil
	}
	return result.Selected, true, nil
}

func indexCommand() *cli.Command {
	return &cli.Command{
		Name:      "index",
		Usage:     "Print the content-identity index of a collection",
		UsageText: "photosync index <directory>",
		Action: func(_ context.Context, cmd *cli.Command) error {
			args := cmd.Args()
			if args.Len() != 1 {
				return errors.New("index requires exactly 1 argument: <directory>")
			}
			root := args.Get(0)

			if err := validation.ValidateRoot("directory", root); err != nil {
				return err
			}

			cfg, err := config.LoadDefault()
			if err != nil {
				cfg = config.Default()
			}

			tree, err := index.BuildWith(root, index.Options{Ignore: cfg.Index.Ignore})
			if err != nil {
				return err
			}

			fmt.Printf("%s: %d file identities\n", root, tree.Len())
			for _, k := range tree.Keys() {
				fmt.Printf("  %s\n", ui.Bold(k.String()))
				for _, path := range tree.Paths(k) {
					fmt.Printf("    %s\n", path)
				}
			}
			return nil
		},
	}
}

func dupesCommand() *cli.Command {
	return &cli.Command{
		Name:      "dupes",
		Usage:     "Report duplicate files within a collection",
		UsageText: "photosync dupes <directory>",
		Action: func(_ context.Context, cmd *cli.Command) error {
			args := cmd.Args()
			if args.Len() != 1 {
				return errors.New("dupes requires exactly 1 argument: <directory>")
			}
			root := args.Get(0)

			if err := validation.ValidateRoot("directory", root); err != nil {
				return err
			}

			cfg, err := config.LoadDefault()
			if err != nil {
				cfg = config.Default()
			}

			tree, err := index.BuildWith(root, index.Options{Ignore: cfg.Index.Ignore})
			if err != nil {
				return err
			}

			groups := tree.Duplicates()
			if len(groups) == 0 {
				fmt.Println(ui.StatusSuccess("no duplicates found"))
				return nil
			}

			fmt.Printf("%d duplicate group(s):\n", len(groups))
			for _, g := range groups {
				fmt.Printf("  %s\n", ui.Warning(g.Key.String()))
				for _, path := range g.Paths {
					fmt.Printf("    %s\n", path)
				}
			}
			return nil
		},
	}
}
