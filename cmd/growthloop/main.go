// Command growthloop runs the automated LinkedIn content pipeline:
// research, strategy, drafting, review, publish, and the supporting
// memory maintenance commands.
package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/growthloopio/growthloop/pkg/config"
	"github.com/growthloopio/growthloop/pkg/pipeline"
)

var (
	flagConfig  string
	flagVerbose bool
)

func main() {
	root := &cobra.Command{
		Use:           "growthloop",
		Short:         "Automated social content pipeline with persistent learning memory",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&flagConfig, "config", "c", "growthloop.yaml", "config file path")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newRunCmd(), newArchiveCmd(), newStatsCmd(), newInsightCmd(), newRulesCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var (
		topic  string
		vibe   string
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute one full content pipeline run",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(flagConfig, flagVerbose)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if app.cfg.Metrics.Enabled {
				go serveMetrics(app)
			}

			result, err := app.orchestrator.Run(ctx, pipeline.RunOptions{
				Topic:      flagOrEnv(topic, "TOPIC"),
				ForcedVibe: flagOrEnv(vibe, "VIBE"),
				DryRun:     dryRun || app.cfg.Pipeline.DryRun,
			})
			if err != nil {
				// Pipeline-level failures are logged, not signaled via
				// exit code; the process itself ran fine.
				app.logger.Errorf("run aborted: %v", err)
				return nil
			}

			if result.Published {
				fmt.Printf("Published %s (vibe %q, topic %q)\n", result.PostURN, result.Vibe, result.Topic)
			} else {
				fmt.Printf("Run finished without publishing (vibe %q, topic %q)\n", result.Vibe, result.Topic)
			}
			if len(result.Degraded) > 0 {
				fmt.Printf("Degraded phases: %v\n", result.Degraded)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&topic, "topic", "", "topic override (random from config when empty)")
	cmd.Flags().StringVar(&vibe, "vibe", "", "force a specific vibe by name")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "generate everything but skip publishing")
	return cmd
}

// flagOrEnv resolves a run override: the flag value wins, an unset flag
// falls back to the GROWTHLOOP_<name> environment variable. Schedulers
// that cannot pass flags set the overrides through the environment.
func flagOrEnv(flagValue, name string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv(config.EnvPrefix + "_" + name)
}

func newArchiveCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Move post records older than the retention window to the cold archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(flagConfig, flagVerbose)
			if err != nil {
				return err
			}
			defer app.Close()

			if days <= 0 {
				days = app.cfg.Pipeline.RetentionDays
			}
			moved, err := app.mem.ArchiveOlderThan(days)
			if err != nil {
				return err
			}
			app.metrics.RecordsArchived.Add(float64(moved))
			fmt.Printf("Archived %d post records older than %d days\n", moved, days)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "retention window in days (config default when 0)")
	return cmd
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Refresh engagement stats for past posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(flagConfig, flagVerbose)
			if err != nil {
				return err
			}
			defer app.Close()

			if !app.linkedin.Configured() {
				return fmt.Errorf("linkedin credentials not configured")
			}

			healer := pipeline.NewStatsHealer(app.mem, app.linkedin, app.logger)
			n, err := healer.Heal(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Refreshed stats for %d posts\n", n)
			return nil
		},
	}
}

func newInsightCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "insight",
		Short: "Show the current performance insight",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(flagConfig, flagVerbose)
			if err != nil {
				return err
			}
			defer app.Close()

			fmt.Println(app.mem.PerformanceInsight())
			return nil
		},
	}
}

func newRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the accumulated style rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(flagConfig, flagVerbose)
			if err != nil {
				return err
			}
			defer app.Close()

			rules := app.mem.Rules()
			if len(rules) == 0 {
				fmt.Println("No rules accumulated yet.")
				return nil
			}
			for i, r := range rules {
				fmt.Printf("%d. %s\n", i+1, r)
			}
			return nil
		},
	}
}

func serveMetrics(app *app) {
	addr := app.cfg.Metrics.Addr
	app.logger.Infof("metrics exposition on %s", addr)
	if err := http.ListenAndServe(addr, app.metrics.Handler()); err != nil {
		app.logger.Errorf("metrics server: %v", err)
	}
}
