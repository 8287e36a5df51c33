package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/highbeam/spectrail/internal/config"
	"github.com/highbeam/spectrail/internal/history"
	"github.com/highbeam/spectrail/internal/index"
	"github.com/highbeam/spectrail/internal/snapshot"
	"github.com/highbeam/spectrail/internal/watcher"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "spectrail",
		Short: "Track the edit history of generated test-spec artifacts",
		Long: "spectrail keeps an append-only edit log for a set of versioned test-spec files:\n" +
			"who changed them, what changed, and enough content to restore any recorded state.",
	}

	rootCmd.PersistentFlags().String("config", config.ConfigPath(), "path to the config file")

	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(recordCmd())
	rootCmd.AddCommand(restoreCmd())
	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(purgeCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config named by the persistent --config flag.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// newEngine builds the store and logger for one workspace.
func newEngine(cfg *config.Config) (*history.Store, *history.Logger) {
	store := history.NewStore(cfg.HistoryDir, cfg.RetentionCap)
	return store, history.NewLogger(store, cfg.DiffSummaryLines)
}

func showCmd() *cobra.Command {
	var withDiff bool
	var contentIndex int

	cmd := &cobra.Command{
		Use:   "show <artifact>",
		Short: "List the recorded edit history of one artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			store, _ := newEngine(cfg)

			l := store.Read(args[0])
			if len(l.Entries) == 0 {
				fmt.Printf("no history for %s\n", args[0])
				return nil
			}

			if contentIndex >= 0 {
				if contentIndex >= len(l.Entries) {
					return fmt.Errorf("entry index %d out of range (log has %d entries)", contentIndex, len(l.Entries))
				}
				fmt.Print(l.Entries[contentIndex].ContentSnapshot)
				return nil
			}

			for i, e := range l.Entries {
				tag := ""
				if e.VersionTag != "" {
					tag = "  [" + e.VersionTag + "]"
				}
				fmt.Printf("%3d  %s  %-16s +%d/-%d%s\n",
					i, e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Source,
					e.LinesAdded, e.LinesRemoved, tag)
				if withDiff && e.DiffSummary != "" {
					fmt.Println(indent(e.DiffSummary, "     "))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&withDiff, "diff", false, "print each entry's diff summary")
	cmd.Flags().IntVar(&contentIndex, "content", -1, "print the content snapshot of the entry at this index and exit")
	return cmd
}

func recordCmd() *cobra.Command {
	var source string
	var tag string
	var beforeFile string

	cmd := &cobra.Command{
		Use:   "record <artifact>",
		Short: "Record the artifact's current content as a new edit",
		Long: "record logs the artifact's current on-disk content against its previous state.\n" +
			"The before-content defaults to the newest stored snapshot; pass --before-file\n" +
			"when the caller still has the pre-edit content.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			src, err := history.ParseSource(source)
			if err != nil {
				return err
			}
			store, logger := newEngine(cfg)
			relPath := args[0]

			var current string
			target := filepath.Join(cfg.ArtifactRoot, filepath.FromSlash(relPath))
			if data, err := os.ReadFile(target); err == nil {
				current = string(data)
			} else if !os.IsNotExist(err) {
				return fmt.Errorf("read artifact: %w", err)
			}

			var before string
			if beforeFile != "" {
				data, err := os.ReadFile(beforeFile)
				if err != nil {
					return fmt.Errorf("read before-file: %w", err)
				}
				before = string(data)
			} else if entries := store.Read(relPath).Entries; len(entries) > 0 {
				before = entries[len(entries)-1].ContentSnapshot
			}

			if before == current {
				fmt.Println("no change, nothing recorded")
				return nil
			}
			logger.LogEdit(relPath, before, current, src, tag)
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", string(history.SourceManualEdit), "edit source tag")
	cmd.Flags().StringVar(&tag, "tag", "", "version tag linking this edit to a snapshot event")
	cmd.Flags().StringVar(&beforeFile, "before-file", "", "file holding the pre-edit content")
	return cmd
}

func restoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <artifact> <index>",
		Short: "Rewrite an artifact with the content of a recorded entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			idx, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("entry index %q is not a number", args[1])
			}

			_, logger := newEngine(cfg)
			if err := logger.Restore(cfg.ArtifactRoot, args[0], idx); err != nil {
				return err
			}
			fmt.Printf("restored %s to entry %d\n", args[0], idx)
			return nil
		},
	}
}

func generateCmd() *cobra.Command {
	var tag string

	cmd := &cobra.Command{
		Use:   "generate [flags] -- <rewriter> [args...]",
		Short: "Run a bulk rewriter with history reconciliation around it",
		Long: "generate snapshots the artifact set, runs the rewriter command, then diffs the\n" +
			"rewritten set against the snapshot. The rewriter may delete and recreate every\n" +
			"artifact; the snapshot is what makes a true before/after diff possible.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			_, logger := newEngine(cfg)

			pre, err := snapshot.Capture(cfg.ArtifactRoot, cfg.ArtifactSuffixes)
			if err != nil {
				return fmt.Errorf("snapshot artifacts: %w", err)
			}

			rewriter := exec.Command(args[0], args[1:]...)
			rewriter.Stdin = os.Stdin
			rewriter.Stdout = os.Stdout
			rewriter.Stderr = os.Stderr
			runErr := rewriter.Run()

			// Reconcile even when the rewriter failed: a partial rewrite
			// already changed artifacts and those changes belong in history.
			if err := snapshot.Reconcile(pre, cfg.ArtifactRoot, cfg.ArtifactSuffixes, logger, tag); err != nil {
				return fmt.Errorf("reconcile artifacts: %w", err)
			}

			if runErr != nil {
				return fmt.Errorf("rewriter: %w", runErr)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tag, "tag", "", "version tag stamped on every reconciled entry")
	return cmd
}

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch the artifact root and log out-of-band changes as external edits",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.EnsureDataDir(); err != nil {
				return fmt.Errorf("create data dir: %w", err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			_, logger := newEngine(cfg)
			w := watcher.New(cfg, logger)
			go func() {
				<-ctx.Done()
				w.Stop()
			}()

			fmt.Printf("watching %s (ctrl-c to stop)\n", cfg.ArtifactRoot)
			return w.Start(ctx)
		},
	}
}

func statsCmd() *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Rebuild the edit index and print aggregate history stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.EnsureDataDir(); err != nil {
				return fmt.Errorf("create data dir: %w", err)
			}

			store, _ := newEngine(cfg)
			db, err := index.Open(cfg.IndexDBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Rebuild(store); err != nil {
				return fmt.Errorf("rebuild index: %w", err)
			}

			total, err := db.EntryCount()
			if err != nil {
				return err
			}
			fmt.Printf("recorded edits: %d\n", total)

			breakdown, err := db.SourceBreakdown()
			if err != nil {
				return err
			}
			if len(breakdown) > 0 {
				fmt.Println("\nby source:")
				for _, sc := range breakdown {
					fmt.Printf("  %-18s %5d edits  +%d/-%d lines\n", sc.Source, sc.Entries, sc.LinesAdded, sc.LinesRemoved)
				}
			}

			artifacts, err := db.TopArtifacts(top)
			if err != nil {
				return err
			}
			if len(artifacts) > 0 {
				fmt.Println("\nmost edited:")
				for _, ac := range artifacts {
					fmt.Printf("  %-40s %5d edits  +%d/-%d lines  last %s\n",
						ac.Path, ac.Entries, ac.LinesAdded, ac.LinesRemoved, ac.LastEdit)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&top, "top", 10, "number of most-edited artifacts to list")
	return cmd
}

func purgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge <artifact>",
		Short: "Delete one artifact's history record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			store, _ := newEngine(cfg)
			if err := store.Purge(args[0]); err != nil {
				return err
			}
			fmt.Printf("purged history for %s\n", args[0])
			return nil
		},
	}
}

func indent(text, prefix string) string {
	return prefix + strings.ReplaceAll(text, "\n", "\n"+prefix)
}
