package soup

import (
	"fmt"
	"math"
)

// Stagnation detects a plateau: the aggregated population fitness has not
// strictly improved for MaxStagnation consecutive generations.
type Stagnation struct {
	Config      *TerminationConfig
	FitnessFunc func([]float64) float64

	BestFitness  float64 // best aggregated fitness seen so far
	LastImproved int     // generation at which BestFitness was last raised
}

// NewStagnation creates a plateau detector for the given termination config.
func NewStagnation(config *TerminationConfig) (*Stagnation, error) {
	fn, ok := StatFunctions[config.StagnationFitnessFunc]
	if !ok {
		return nil, fmt.Errorf("invalid stagnation_fitness_func in config: %s", config.StagnationFitnessFunc)
	}
	return &Stagnation{
		Config:      config,
		FitnessFunc: fn,
		BestFitness: math.Inf(-1),
	}, nil
}

// Update records the fitness vector of the given generation and reports
// whether the population is stagnant. Detection is off when MaxStagnation is 0.
func (s *Stagnation) Update(scores []float64, generation int) bool {
	fitness := s.FitnessFunc(scores)
	if fitness > s.BestFitness {
		s.BestFitness = fitness
		s.LastImproved = generation
	}
	if s.Config.MaxStagnation <= 0 {
		return false
	}
	return generation-s.LastImproved >= s.Config.MaxStagnation
}
