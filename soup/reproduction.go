package soup

import (
	"fmt"
)

// Crossover recombines two parent chromosomes at a single split point chosen
// uniformly from [0, len). The child is a[:split] followed by b[split:].
// The split is character-indexed, not aligned to state boundaries, so a child
// may take part of a state's group from each parent.
func Crossover(a, b Chromosome, rng Source) (Chromosome, error) {
	if len(a) != len(b) {
		return "", fmt.Errorf("%w: %d vs %d", ErrIncompatibleChromosomeLength, len(a), len(b))
	}
	if len(a) == 0 {
		return "", fmt.Errorf("%w: empty parents", ErrMalformedChromosome)
	}
	split := rng.Intn(len(a))
	return a[:split] + b[split:], nil
}

// Mutate perturbs one character chosen uniformly from the chromosome. An even
// position holds an output symbol and is flipped; an odd position holds a
// destination label and is replaced by a random label, possibly the same one.
func Mutate(c Chromosome, rng Source) (Chromosome, error) {
	if len(c) == 0 || len(c)%genesPerState != 0 {
		return "", fmt.Errorf("%w: length %d is not a positive multiple of %d", ErrMalformedChromosome, len(c), genesPerState)
	}
	genes := []byte(c)
	pos := rng.Intn(len(genes))
	if pos%2 == 0 {
		switch genes[pos] {
		case '0':
			genes[pos] = '1'
		case '1':
			genes[pos] = '0'
		default:
			return "", fmt.Errorf("%w: output %q at position %d", ErrMalformedChromosome, genes[pos], pos)
		}
	} else {
		genes[pos] = stateToChar(rng.Intn(c.NumStates()))
	}
	return Chromosome(genes), nil
}

// Reproduce applies one round of variation to the population in place:
// the worst slot is replaced by the crossover of the worst and best
// chromosomes, then one other slot (neither the worst nor the best) is
// replaced by a mutant of itself. It returns the index of the mutated slot.
func Reproduce(members []*Automaton, minIndex, maxIndex int, rng Source) (int, error) {
	child, err := Crossover(members[minIndex].Encode(), members[maxIndex].Encode(), rng)
	if err != nil {
		return -1, fmt.Errorf("crossover of slots %d and %d failed: %w", minIndex, maxIndex, err)
	}
	offspring, err := Decode(child)
	if err != nil {
		return -1, fmt.Errorf("decoding crossover child failed: %w", err)
	}
	members[minIndex] = offspring

	candidates := make([]int, 0, len(members))
	for i := range members {
		if i != minIndex && i != maxIndex {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return -1, fmt.Errorf("no mutation candidate among %d members", len(members))
	}
	target := candidates[rng.Intn(len(candidates))]

	mutant, err := Mutate(members[target].Encode(), rng)
	if err != nil {
		return -1, fmt.Errorf("mutation of slot %d failed: %w", target, err)
	}
	replacement, err := Decode(mutant)
	if err != nil {
		return -1, fmt.Errorf("decoding mutant failed: %w", err)
	}
	members[target] = replacement
	return target, nil
}
