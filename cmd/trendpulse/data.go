package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/newthinker/trendpulse/internal/app"
	"github.com/newthinker/trendpulse/internal/trend"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup [keyword]",
	Short: "Resolve a keyword against the latest snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runLookup,
}

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List loaded snapshot dates",
	RunE:  runSnapshots,
}

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Validate a trend snapshot file and store it in the data source",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

var (
	importDate  string
	importForce bool
)

var dateFlag = regexp.MustCompile(`^\d{8}$`)

func init() {
	importCmd.Flags().StringVar(&importDate, "date", "", "snapshot date YYYYMMDD (default: taken from the file name)")
	importCmd.Flags().BoolVar(&importForce, "force", false, "overwrite an existing snapshot for the same date")

	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(snapshotsCmd)
	rootCmd.AddCommand(importCmd)
}

// withApp loads configuration and snapshots for the one-shot commands.
func withApp(fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}

	// keep one-shot output clean unless --debug
	log := zap.NewNop()
	if debug {
		if log, err = newLogger(cfg); err != nil {
			return err
		}
	}
	defer log.Sync()

	a, err := app.New(cfg, nil, log)
	if err != nil {
		return fmt.Errorf("creating app: %w", err)
	}

	ctx := context.Background()
	res := a.Reload(ctx)
	for _, w := range res.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	return fn(ctx, a)
}

func runLookup(cmd *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app.App) error {
		m, err := a.Resolver().Resolve(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Keyword:  %s\n", m.Keyword)
		fmt.Printf("Source:   %s\n", m.SourceType)
		fmt.Printf("Rank:     %d\n", m.Rank)
		fmt.Printf("Mentions: %s\n", humanize.Comma(int64(m.Mentions)))
		fmt.Printf("Score:    %.2f\n", m.Score)
		fmt.Println()

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "DATE\tMENTIONS")
		for _, p := range a.Resolver().History(m.Keyword) {
			fmt.Fprintf(w, "%s\t%s\n", p.Date, humanize.Comma(int64(p.Mentions)))
		}
		if err := w.Flush(); err != nil {
			return err
		}

		if comments := a.Resolver().Comments(m.Keyword); len(comments) > 0 {
			fmt.Printf("\n%d example comments\n", len(comments))
		}
		return nil
	})
}

func runSnapshots(cmd *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app.App) error {
		snaps := a.Store().Snapshots()
		if len(snaps) == 0 {
			fmt.Printf("No snapshots in %s\n", a.Source().Describe())
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "DATE\tKEYWORDS\tPLATFORMS")
		for _, s := range snaps {
			fmt.Fprintf(w, "%s\t%d\t%d\n", s.Date, len(s.Integrated), len(s.Platforms))
		}
		return w.Flush()
	})
}

func runImport(cmd *cobra.Command, args []string) error {
	path := args[0]

	date := importDate
	if date == "" {
		d, ok := trend.SnapshotDate(filepath.Base(path))
		if !ok {
			return fmt.Errorf("cannot infer date from %s; pass --date YYYYMMDD", filepath.Base(path))
		}
		date = d
	}
	if !dateFlag.MatchString(date) {
		return fmt.Errorf("invalid date %q (expected YYYYMMDD)", date)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	snap, err := trend.DecodeSnapshot(date, data)
	if err != nil {
		return err
	}

	return withApp(func(ctx context.Context, a *app.App) error {
		name := trend.SnapshotFileName(date)
		exists, err := a.Source().Exists(ctx, name)
		if err != nil {
			return fmt.Errorf("checking %s: %w", name, err)
		}
		if exists && !importForce {
			return fmt.Errorf("%s already exists in %s; pass --force to overwrite", name, a.Source().Describe())
		}
		if err := a.Source().Write(ctx, name, data); err != nil {
			return fmt.Errorf("storing %s: %w", name, err)
		}
		fmt.Printf("Imported %s: %d keywords, %d platforms -> %s\n",
			name, len(snap.Integrated), len(snap.Platforms), a.Source().Describe())
		return nil
	})
}
