// vmbridge bridges agent tool calls to the Parallels-style prlctl
// command-line virtualization controller. It speaks the tool-call protocol
// as newline-delimited JSON-RPC over stdio; stdout is the wire and all
// logging goes to stderr.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"vmbridge/internal/config"
	"vmbridge/internal/prlctl"
	"vmbridge/internal/protocol"
	"vmbridge/internal/tools"
	"vmbridge/internal/tools/vm"
)

var (
	configPath string
	verbose    bool

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "vmbridge",
	Short: "Tool-call bridge to the prlctl virtualization controller",
	Long: `vmbridge exposes virtual machine lifecycle and snapshot operations as
agent tools. Each call is validated, its identifiers are sanitized, and the
external controller is invoked as a subprocess; its tabular output is parsed
back into structured records for the caller.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		level := zapcore.InfoLevel
		if lvl, lerr := zapcore.ParseLevel(cfg.LogLevel); lerr == nil {
			level = lvl
		}
		if verbose {
			level = zapcore.DebugLevel
		}

		zcfg := zap.NewProductionConfig()
		zcfg.Level = zap.NewAtomicLevelAt(level)
		// stdout carries the protocol; logs must stay on stderr.
		zcfg.OutputPaths = []string{"stderr"}
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the tool-call protocol on stdin/stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the registered tools",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := buildRegistry()
		for _, t := range reg.All() {
			fmt.Printf("%-16s %s\n", t.Name, t.Description)
		}
		return nil
	},
}

var callCmd = &cobra.Command{
	Use:   "call <tool> [json-arguments]",
	Short: "Invoke a single tool and print its result",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		callArgs := map[string]any{}
		if len(args) == 2 {
			if err := json.Unmarshal([]byte(args[1]), &callArgs); err != nil {
				return fmt.Errorf("arguments must be a JSON object: %w", err)
			}
		}

		reg := buildRegistry()
		res, err := reg.Dispatch(cmd.Context(), args[0], callArgs)
		if err != nil {
			return err
		}
		for _, c := range res.Content {
			fmt.Println(c.Text)
		}
		if res.IsError {
			os.Exit(1)
		}
		return nil
	},
}

// buildRegistry wires the full tool surface against the configured
// controller. Registration happens here, entirely before any dispatch.
func buildRegistry() *tools.Registry {
	runner := prlctl.NewCLI(cfg.PrlctlPath, time.Duration(cfg.TimeoutSeconds)*time.Second, logger)
	reg := tools.NewRegistry(logger)
	vm.RegisterAll(reg, runner, logger)
	return reg
}

func runServe() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := buildRegistry()
	logger.Info("serving tool-call protocol",
		zap.String("prlctl", cfg.PrlctlPath),
		zap.Int("tools", reg.Count()))

	srv := protocol.NewServer(cfg.ServerName, cfg.ServerVersion, reg, os.Stdin, os.Stdout, logger)
	if err := srv.Serve(ctx); err != nil {
		return fmt.Errorf("protocol server failed: %w", err)
	}
	logger.Info("input exhausted, shutting down")
	return nil
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.json")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(serveCmd, toolsCmd, callCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
