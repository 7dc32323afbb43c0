package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/kernel-sim/kernel-sim/sim"
)

var (
	configPath string // YAML config file, empty for defaults
	logLevel   string // overrides log_level
	quantum    int64  // overrides scheduler.quantum
	frames     int    // overrides memory.frames
	bufferSize int    // overrides buffer.size
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "kernel-sim",
	Short: "Educational simulator for round-robin scheduling, FIFO paging and a bounded buffer",
}

// shellCmd runs the interactive command loop
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start the interactive simulator shell",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "kernel-sim (quantum=%d). Type 'help' for commands, 'exit' to quit.\n", cfg.Scheduler.Quantum)
		return NewSession(cfg, out).Serve(cmd.InOrStdin(), false)
	},
}

// scriptCmd replays a command file through the shell dispatcher
var scriptCmd = &cobra.Command{
	Use:   "script <file>",
	Short: "Run the commands in a file, one per line",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening script: %w", err)
		}
		defer func() { _ = f.Close() }()
		logrus.Infof("replaying %s", args[0])
		return NewSession(cfg, cmd.OutOrStdout()).Serve(f, true)
	},
}

// resolveConfig loads the config file, applies explicitly set flags on top of
// it and configures the logrus level.
func resolveConfig(cmd *cobra.Command) (Config, error) {
	cfg := DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = LoadConfig(configPath); err != nil {
			return Config{}, err
		}
	}

	// flags win only when the user set them, so file values are not clobbered by flag defaults
	if cmd.Flags().Changed("log") {
		cfg.LogLevel = logLevel
	}
	if cmd.Flags().Changed("quantum") {
		cfg.Scheduler.Quantum = quantum
	}
	if cmd.Flags().Changed("frames") {
		cfg.Memory.Frames = frames
	}
	if cmd.Flags().Changed("buffer-size") {
		cfg.Buffer.Size = bufferSize
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return Config{}, fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}
	logrus.SetLevel(level)
	return cfg, nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", defaultLogLevel, "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().Int64Var(&quantum, "quantum", sim.DefaultQuantum, "Round-robin time quantum in ticks")
	rootCmd.PersistentFlags().IntVar(&frames, "frames", 0, "Physical frames to initialize memory with (0 = wait for mem-init)")
	rootCmd.PersistentFlags().IntVar(&bufferSize, "buffer-size", 0, "Bounded buffer slots (0 = wait for pc-init)")

	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(scriptCmd)
}
