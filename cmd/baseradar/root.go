package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/baseradar/baseradar/internal/app"
	"github.com/baseradar/baseradar/internal/config"
	"github.com/baseradar/baseradar/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
)

type rootFlags struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:          "baseradar",
		Short:        "Crypto and Base ecosystem news aggregation engine",
		Long:         "baseradar crawls crypto news sources into a dated corpus and answers search, trend, sentiment and report queries as tools.",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to config file (defaults to $BASERADAR_CONFIG)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "override the configured log level")

	root.AddCommand(
		newServeCmd(flags),
		newStdioCmd(flags),
		newCrawlCmd(flags),
		newScheduleCmd(flags),
		newToolCmd(flags),
		newVersionCmd(),
	)
	return root
}

// build loads configuration and wires the application. Logs go to stderr so
// stdout stays free for tool output.
func (f *rootFlags) build(ctx context.Context) (*app.Application, error) {
	cfg := config.Load()
	if f.configPath != "" {
		cfg = config.LoadFile(f.configPath)
	}
	if f.logLevel != "" {
		cfg.Logging.Level = f.logLevel
	}
	logger := logging.NewWithFormat(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	application, err := app.New(ctx, cfg, logger, version)
	if err != nil {
		return nil, err
	}
	return application, nil
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func newServeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve tools over HTTP (and run the scheduler when enabled)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			application, err := flags.build(ctx)
			if err != nil {
				return err
			}
			defer application.Close()
			return application.ServeHTTP(ctx)
		},
	}
}

func newStdioCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stdio",
		Short: "Serve tools as JSON lines on stdin/stdout",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			application, err := flags.build(ctx)
			if err != nil {
				return err
			}
			defer application.Close()
			return application.ServeStdio(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func newCrawlCmd(flags *rootFlags) *cobra.Command {
	var (
		platforms []string
		save      bool
	)
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl platforms once and print the batch summary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			application, err := flags.build(ctx)
			if err != nil {
				return err
			}
			defer application.Close()

			out, err := application.Pipeline().Crawl(ctx, platforms, save)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, r := range out.Results {
				if r.OK() {
					fmt.Fprintf(w, "%-14s ok     %d items\n", r.Platform, len(r.Items))
				} else {
					fmt.Fprintf(w, "%-14s failed %s\n", r.Platform, r.Error)
				}
			}
			fmt.Fprintf(w, "batch %s: %d ok, %d failed, %d items, %d saved\n",
				out.BatchID, out.Succeeded, out.Failed, out.Items, out.Saved)
			if out.SaveError != "" {
				return fmt.Errorf("save batch: %s", out.SaveError)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&platforms, "platforms", nil, "platform ids to crawl (default: all configured)")
	cmd.Flags().BoolVar(&save, "save", true, "append the batch to the corpus")
	return cmd
}

func newScheduleCmd(flags *rootFlags) *cobra.Command {
	var once bool
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the crawl, report and notify job on the configured cron expression",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			application, err := flags.build(ctx)
			if err != nil {
				return err
			}
			defer application.Close()
			if once {
				return application.Run(ctx)
			}
			return application.RunSchedule(ctx)
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "run the job once and exit")
	return cmd
}

func newToolCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tool <name> [json-arguments]",
		Short: "Call one tool and print its JSON response",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			application, err := flags.build(ctx)
			if err != nil {
				return err
			}
			defer application.Close()

			var raw json.RawMessage
			if len(args) == 2 {
				raw = json.RawMessage(strings.TrimSpace(args[1]))
			}
			resp := application.Tools().Dispatch(ctx, args[0], raw)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(resp); err != nil {
				return err
			}
			if resp.Error != nil {
				return fmt.Errorf("%s: %s", resp.Error.Code, resp.Error.Message)
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "baseradar %s (commit: %s)\n", version, commit)
		},
	}
}
