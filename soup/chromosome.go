package soup

import (
	"fmt"
	"strings"
)

// MaxStates is the largest state count a chromosome can address, since each
// destination is written as a single letter 'A'..'Z'.
const MaxStates = 26

// Each state occupies four characters: output0, dest0, output1, dest1.
const genesPerState = 4

// Chromosome is the flat string encoding of an automaton's transition table.
type Chromosome string

// NumStates returns the state count implied by the chromosome's length.
func (c Chromosome) NumStates() int {
	return len(c) / genesPerState
}

// stateToChar converts a state index such as 1 into its label, like 'B'.
func stateToChar(state int) byte {
	return 'A' + byte(state)
}

// charToState converts a label like 'B' into a state index like 1.
func charToState(ch byte) int {
	return int(ch) - 'A'
}

// Encode serializes the automaton's table in ascending state order.
func (a *Automaton) Encode() Chromosome {
	var sb strings.Builder
	sb.Grow(len(a.table) * genesPerState)
	for _, row := range a.table {
		for _, entry := range row {
			sb.WriteByte(entry.Output)
			sb.WriteByte(stateToChar(entry.Next))
		}
	}
	return Chromosome(sb.String())
}

// Decode builds an automaton from a chromosome. The result starts in state 0.
func Decode(c Chromosome) (*Automaton, error) {
	if len(c) == 0 || len(c)%genesPerState != 0 {
		return nil, fmt.Errorf("%w: length %d is not a positive multiple of %d", ErrMalformedChromosome, len(c), genesPerState)
	}
	numStates := c.NumStates()
	if numStates > MaxStates {
		return nil, fmt.Errorf("%w: %d states exceeds the %d-label alphabet", ErrMalformedChromosome, numStates, MaxStates)
	}

	table := make([][2]Entry, numStates)
	for s := 0; s < numStates; s++ {
		group := c[s*genesPerState : (s+1)*genesPerState]
		for input := 0; input < 2; input++ {
			output := group[input*2]
			dest := charToState(group[input*2+1])
			if !isBinarySymbol(output) {
				return nil, fmt.Errorf("%w: output %q at position %d", ErrMalformedChromosome, output, s*genesPerState+input*2)
			}
			if dest < 0 || dest >= numStates {
				return nil, fmt.Errorf("%w: destination %q at position %d out of range for %d states",
					ErrMalformedChromosome, group[input*2+1], s*genesPerState+input*2+1, numStates)
			}
			table[s][input] = Entry{Output: output, Next: dest}
		}
	}
	return &Automaton{table: table}, nil
}
