package soup

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// StopReason says why Run returned.
type StopReason string

const (
	StopConverged      StopReason = "converged"
	StopMaxGenerations StopReason = "max_generations"
	StopStagnation     StopReason = "stagnation"
	StopCancelled      StopReason = "cancelled"
)

// Result is the outcome of Run.
type Result struct {
	Found      bool
	Solution   Chromosome // chromosome of the perfect predictor, when Found
	Generation int        // generations completed before stopping
	Reason     StopReason
}

// Population holds the state of an evolution run. Slots are replaced in place
// and never added or removed.
type Population struct {
	Config      *Config
	Environment Environment
	Members     []*Automaton
	Generation  int
	Stagnation  *Stagnation
	History     *History // nil until EnableHistory
	RunID       string

	rng    Source
	logger *slog.Logger
}

// NewPopulation creates a population of config.Soup.PopSize random automatons.
// A nil rng is replaced by NewSource(config.Soup.Seed).
func NewPopulation(config *Config, rng Source, logger *slog.Logger) (*Population, error) {
	if config == nil {
		return nil, fmt.Errorf("config error: nil config")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = NewSource(config.Soup.Seed)
	}
	members := make([]*Automaton, config.Soup.PopSize)
	for i := range members {
		a, err := NewRandomAutomaton(config.Soup.NumStates, rng)
		if err != nil {
			return nil, fmt.Errorf("failed to seed slot %d: %w", i, err)
		}
		members[i] = a
	}
	return newPopulation(config, members, rng, logger)
}

// NewPopulationFromAutomata creates a population from existing automatons.
// config.Soup.PopSize and NumStates are ignored; the slice is owned by the population.
func NewPopulationFromAutomata(config *Config, members []*Automaton, rng Source, logger *slog.Logger) (*Population, error) {
	if config == nil {
		return nil, fmt.Errorf("config error: nil config")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if len(members) < 3 {
		return nil, fmt.Errorf("config error: population needs at least 3 members, got %d", len(members))
	}
	if rng == nil {
		rng = NewSource(config.Soup.Seed)
	}
	return newPopulation(config, members, rng, logger)
}

func newPopulation(config *Config, members []*Automaton, rng Source, logger *slog.Logger) (*Population, error) {
	env, err := ParseEnvironment(config.Soup.Environment)
	if err != nil {
		return nil, err
	}
	stagnation, err := NewStagnation(&config.Termination)
	if err != nil {
		return nil, fmt.Errorf("failed to create stagnation detector: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	runID := uuid.NewString()[:8]

	return &Population{
		Config:      config,
		Environment: env,
		Members:     members,
		Stagnation:  stagnation,
		RunID:       runID,
		rng:         rng,
		logger:      logger.With("run", runID),
	}, nil
}

// EnableHistory starts recording per-generation statistics into p.History,
// keeping at most limit generations (0 keeps all). Without it nothing is
// retained between generations.
func (p *Population) EnableHistory(limit int) *History {
	p.History = &History{RunID: p.RunID, Environment: p.Environment, Limit: limit}
	return p.History
}

// Chromosomes returns the encoding of every slot, in slot order.
func (p *Population) Chromosomes() []Chromosome {
	out := make([]Chromosome, len(p.Members))
	for i, a := range p.Members {
		out[i] = a.Encode()
	}
	return out
}

// ScorePopulation scores every automaton in slot order. Each automaton's
// state is reset as a side effect.
func ScorePopulation(members []*Automaton, env Environment) ([]float64, error) {
	scores := make([]float64, len(members))
	for i, a := range members {
		score, err := a.Predict(env)
		if err != nil {
			return nil, fmt.Errorf("scoring slot %d: %w", i, err)
		}
		scores[i] = score
	}
	return scores, nil
}

// FindExact returns the first index whose score is exactly 1.0.
func FindExact(scores []float64) (int, bool) {
	for i, s := range scores {
		if s == 1.0 {
			return i, true
		}
	}
	return -1, false
}

// FindMinMax returns the indices of the lowest and highest scores. An index
// replaces the current extremum only on a strict improvement over the seeds
// 1.0 (min) and 0.0 (max), so ties keep the earliest index and a vector of
// all 1.0 leaves maxIndex at 0. FindExact runs first, so that case never
// reaches selection.
func FindMinMax(scores []float64) (minIndex, maxIndex int) {
	minScore, maxScore := 1.0, 0.0
	for i, s := range scores {
		if s > maxScore {
			maxScore = s
			maxIndex = i
		}
		if s < minScore {
			minScore = s
			minIndex = i
		}
	}
	return minIndex, maxIndex
}

// RunGeneration executes a single generation. It returns the solution
// chromosome and true if a perfect predictor was found, in which case the
// population is left untouched and the generation counter is not advanced.
func (p *Population) RunGeneration() (Chromosome, bool, error) {
	_, solution, found, err := p.runGeneration()
	return solution, found, err
}

func (p *Population) runGeneration() (GenerationStats, Chromosome, bool, error) {
	genStartTime := time.Now()

	// 1. Evaluate fitness
	scores, err := ScorePopulation(p.Members, p.Environment)
	if err != nil {
		return GenerationStats{}, "", false, fmt.Errorf("fitness evaluation failed in generation %d: %w", p.Generation, err)
	}

	// 2. Convergence check
	if idx, ok := FindExact(scores); ok {
		solution := p.Members[idx].Encode()
		stats := newGenerationStats(p.Generation, scores, idx, idx, solution)
		if p.History != nil {
			p.History.Record(stats)
			p.History.Solution = solution
		}
		p.logger.Info("perfect predictor found",
			"generation", p.Generation, "slot", idx, "chromosome", string(solution))
		return stats, solution, true, nil
	}

	// 3. Selection
	minIndex, maxIndex := FindMinMax(scores)
	stats := newGenerationStats(p.Generation, scores, minIndex, maxIndex, p.Members[maxIndex].Encode())
	if p.History != nil {
		p.History.Record(stats)
	}
	p.logger.Debug("generation scored",
		"generation", p.Generation,
		"scores", scores,
		"min_index", minIndex,
		"max_index", maxIndex,
		"mean", stats.Mean,
		"stdev", stats.Stdev,
		"chromosomes", p.Chromosomes())

	// 4-5. Crossover the extremes, mutate one other slot
	mutated, err := Reproduce(p.Members, minIndex, maxIndex, p.rng)
	if err != nil {
		return stats, "", false, fmt.Errorf("reproduction failed in generation %d: %w", p.Generation, err)
	}

	// 6. Advance
	p.Generation++
	p.logger.Debug("generation finished",
		"generation", p.Generation,
		"best", stats.Scores[maxIndex],
		"mutated_slot", mutated,
		"elapsed", time.Since(genStartTime))
	return stats, "", false, nil
}

// Run evolves the population until a perfect predictor is found, a configured
// limit is reached or ctx is done. With zero limits the loop is unbounded.
func (p *Population) Run(ctx context.Context) (Result, error) {
	term := p.Config.Termination
	p.logger.Info("evolution started",
		"environment", string(p.Environment),
		"pop_size", len(p.Members),
		"max_generations", term.MaxGenerations,
		"max_stagnation", term.MaxStagnation)

	for {
		if err := ctx.Err(); err != nil {
			return Result{Generation: p.Generation, Reason: StopCancelled},
				fmt.Errorf("evolution stopped at generation %d: %w", p.Generation, err)
		}
		if term.MaxGenerations > 0 && p.Generation >= term.MaxGenerations {
			p.logger.Info("no predictor found", "reason", StopMaxGenerations, "generation", p.Generation)
			return Result{Generation: p.Generation, Reason: StopMaxGenerations}, nil
		}

		stats, solution, found, err := p.runGeneration()
		if err != nil {
			return Result{Generation: p.Generation}, err
		}
		if found {
			return Result{Found: true, Solution: solution, Generation: p.Generation, Reason: StopConverged}, nil
		}

		if p.Stagnation.Update(stats.Scores, stats.Generation) {
			p.logger.Info("no predictor found",
				"reason", StopStagnation,
				"generation", p.Generation,
				"best_fitness", p.Stagnation.BestFitness,
				"last_improved", p.Stagnation.LastImproved)
			return Result{Generation: p.Generation, Reason: StopStagnation}, nil
		}
	}
}
