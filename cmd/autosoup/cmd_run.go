package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/baldhumanity/autosoup-go/soup"
	"github.com/spf13/cobra"
)

type runOptions struct {
	configPath     string
	environment    string
	popSize        int
	numStates      int
	seed           int64
	maxGenerations int
	maxStagnation  int
	historyPath    string
	historyLimit   int
	verbose        bool
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evolve a population until an automaton predicts the environment perfectly",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			return runEvolution(cmd, config, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "INI config file (defaults are used when empty)")
	flags.StringVarP(&opts.environment, "environment", "e", "", "binary sequence to predict, overrides the config")
	flags.IntVarP(&opts.popSize, "pop-size", "p", 0, "population size, overrides the config")
	flags.IntVarP(&opts.numStates, "states", "s", 0, "states per automaton, overrides the config")
	flags.Int64Var(&opts.seed, "seed", 0, "random seed, overrides the config (0 = time-based)")
	flags.IntVar(&opts.maxGenerations, "max-generations", 0, "stop after this many generations (0 = unbounded)")
	flags.IntVar(&opts.maxStagnation, "max-stagnation", 0, "stop after this many generations without improvement (0 = off)")
	flags.StringVar(&opts.historyPath, "history", "", "write the run history to this file (gzip + gob)")
	flags.IntVar(&opts.historyLimit, "history-limit", 0, "keep only the last N generations in the history (0 = all)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log every generation")
	return cmd
}

// loadConfig reads the config file, or the defaults, and applies the flags the user set.
func (o *runOptions) loadConfig(cmd *cobra.Command) (*soup.Config, error) {
	config := soup.DefaultConfig()
	if o.configPath != "" {
		loaded, err := soup.LoadConfig(o.configPath)
		if err != nil {
			return nil, err
		}
		config = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("environment") {
		config.Soup.Environment = o.environment
	}
	if flags.Changed("pop-size") {
		config.Soup.PopSize = o.popSize
	}
	if flags.Changed("states") {
		config.Soup.NumStates = o.numStates
	}
	if flags.Changed("seed") {
		config.Soup.Seed = o.seed
	}
	if flags.Changed("max-generations") {
		config.Termination.MaxGenerations = o.maxGenerations
	}
	if flags.Changed("max-stagnation") {
		config.Termination.MaxStagnation = o.maxStagnation
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func runEvolution(cmd *cobra.Command, config *soup.Config, opts *runOptions) error {
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	pop, err := soup.NewPopulation(config, soup.NewSource(config.Soup.Seed), logger)
	if err != nil {
		return fmt.Errorf("failed to create population: %w", err)
	}

	if opts.historyPath != "" {
		if opts.historyLimit < 0 {
			return fmt.Errorf("history-limit cannot be negative")
		}
		pop.EnableHistory(opts.historyLimit)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	result, runErr := pop.Run(ctx)

	if opts.historyPath != "" {
		if err := pop.History.Save(opts.historyPath); err != nil {
			logger.Warn("failed to save history", "path", opts.historyPath, "error", err)
		} else {
			logger.Info("history saved", "path", opts.historyPath)
		}
	}
	if runErr != nil {
		return runErr
	}

	out := cmd.OutOrStdout()
	if result.Found {
		fmt.Fprintf(out, "Solution found after %d generations: %s\n", result.Generation, result.Solution)
		return nil
	}
	fmt.Fprintf(out, "No predictor found (%s) after %d generations.\n", result.Reason, result.Generation)
	return nil
}
