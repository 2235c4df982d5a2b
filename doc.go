// Package soup evolves small deterministic finite-state transducers
// ("automatons") that learn to predict the next symbol of a cyclic binary
// sequence (the environment).
//
// Each automaton is encoded as a flat chromosome string: four characters per
// state, the output symbol and destination label for input '0' followed by
// those for input '1' (for example "0B1B1A0A"). Every generation the
// population is scored on the environment, the worst individual is replaced by
// a single-point crossover of the worst and best chromosomes, and one other
// individual is mutated. The run ends when some automaton predicts perfectly.
//
// Basic usage:
//
//	// Load configuration
//	config, err := soup.LoadConfig("path/to/config")
//	if err != nil {
//		log.Fatalf("Error loading config: %v", err)
//	}
//
//	// Create a new population
//	pop, err := soup.NewPopulation(config, soup.NewSource(config.Soup.Seed), slog.Default())
//	if err != nil {
//		log.Fatalf("Error creating population: %v", err)
//	}
//
//	// Evolve until a perfect predictor is found
//	result, err := pop.Run(context.Background())
//	if err != nil {
//		log.Fatalf("Error running evolution: %v", err)
//	}
//	if result.Found {
//		fmt.Println("Solution found:", result.Solution)
//	}
package soup
