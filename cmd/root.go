package cmd

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/procflow-sim/procflow-sim/sim"
)

var (
	configPath     string  // Path to the YAML model definition
	horizonSeconds float64 // Simulation horizon override (in seconds)
	seed           int64   // Master seed override
	logLevel       string  // Log verbosity level
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "procflow-sim",
	Short: "Discrete-event simulator for industrial process flows",
}

// runCmd executes a simulation run from a model file (or the built-in demo
// model) and prints the run report.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a process-flow simulation",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg := DefaultModelConfig()
		if configPath != "" {
			cfg, err = LoadModelConfig(configPath)
			if err != nil {
				logrus.Fatalf("unable to load model: %v", err)
			}
		}
		if cmd.Flags().Changed("horizon") {
			cfg.HorizonSeconds = horizonSeconds
		}
		if cmd.Flags().Changed("seed") {
			cfg.Seed = seed
		}
		if cfg.HorizonSeconds <= 0 {
			logrus.Fatalf("horizon must be positive, got %v", cfg.HorizonSeconds)
		}

		model, err := BuildModel(cfg)
		if err != nil {
			logrus.Fatalf("model load failed: %v", err)
		}
		if err := model.InitRun(); err != nil {
			logrus.Fatalf("model init failed: %v", err)
		}

		logrus.Infof("Starting run %s: seed=%d horizon=%gs", model.RunID, cfg.Seed, cfg.HorizonSeconds)
		startTime := time.Now()
		model.RunSeconds(cfg.HorizonSeconds)
		logrus.Infof("Run finished in %v wall time", time.Since(startTime))

		fmt.Print(sim.Report(model))
	},
}

func init() {
	runCmd.Flags().StringVar(&configPath, "config", "", "Path to YAML model definition (default: built-in demo model)")
	runCmd.Flags().Float64Var(&horizonSeconds, "horizon", 3600, "Simulation horizon in seconds")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Master seed for all random streams")
	runCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.AddCommand(runCmd)
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Fatal(err)
	}
}
