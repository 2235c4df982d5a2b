package soup

import (
	"fmt"
)

// Entry is one transition of an automaton: the symbol emitted and the state moved to.
type Entry struct {
	Output byte // '0' or '1'
	Next   int  // destination state index
}

// Automaton is a deterministic finite transducer over the binary alphabet.
// Row s of the table holds the entries for input '0' and input '1' in state s.
// Build one with NewAutomaton, Decode or NewRandomAutomaton; the zero value
// has no states and fails every Transition.
type Automaton struct {
	table   [][2]Entry
	current int
}

// NewAutomaton creates an automaton from an explicit transition table.
// The table is copied; the automaton starts in state 0.
func NewAutomaton(table [][2]Entry) (*Automaton, error) {
	if len(table) == 0 || len(table) > MaxStates {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStateCount, len(table))
	}
	copied := make([][2]Entry, len(table))
	for s, row := range table {
		for input, entry := range row {
			if !isBinarySymbol(entry.Output) {
				return nil, fmt.Errorf("%w: state %d input %d emits %q", ErrMalformedChromosome, s, input, entry.Output)
			}
			if entry.Next < 0 || entry.Next >= len(table) {
				return nil, fmt.Errorf("%w: state %d input %d moves to %d", ErrMalformedChromosome, s, input, entry.Next)
			}
		}
		copied[s] = row
	}
	return &Automaton{table: copied}, nil
}

// NewRandomAutomaton creates an automaton with a random table of numStates states.
func NewRandomAutomaton(numStates int, rng Source) (*Automaton, error) {
	a := &Automaton{}
	if err := a.Randomize(numStates, rng); err != nil {
		return nil, err
	}
	return a, nil
}

// Randomize replaces the table with numStates random states and resets to state 0.
// Outputs and destinations are drawn uniformly; self-loops and unreachable
// states are kept.
func (a *Automaton) Randomize(numStates int, rng Source) error {
	if numStates < 1 || numStates > MaxStates {
		return fmt.Errorf("%w: %d (must be 1..%d)", ErrInvalidStateCount, numStates, MaxStates)
	}
	table := make([][2]Entry, numStates)
	for s := range table {
		for input := 0; input < 2; input++ {
			output := byte('0' + rng.Intn(2))
			table[s][input] = Entry{Output: output, Next: rng.Intn(numStates)}
		}
	}
	a.table = table
	a.current = 0
	return nil
}

// NumStates returns the number of states in the table.
func (a *Automaton) NumStates() int { return len(a.table) }

// CurrentState returns the index of the state the automaton is in.
func (a *Automaton) CurrentState() int { return a.current }

// Table returns a copy of the transition table.
func (a *Automaton) Table() [][2]Entry {
	out := make([][2]Entry, len(a.table))
	copy(out, a.table)
	return out
}

// Reset puts the automaton back into state 0.
func (a *Automaton) Reset() { a.current = 0 }

// Transition consumes one input symbol, moves to the next state and returns
// the emitted symbol.
func (a *Automaton) Transition(input byte) (byte, error) {
	if !isBinarySymbol(input) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidInputSymbol, input)
	}
	if len(a.table) == 0 {
		return 0, fmt.Errorf("%w: automaton has no states", ErrInvalidStateCount)
	}
	entry := a.table[a.current][input-'0']
	a.current = entry.Next
	return entry.Output, nil
}

// Predict scores the automaton on the environment: it is fed two copies of the
// sequence and must emit the next symbol of the cycle at every step. The score
// is the fraction of correct outputs, in [0, 1]. State is reset before the pass.
func (a *Automaton) Predict(env Environment) (float64, error) {
	if len(env) == 0 {
		return 0, fmt.Errorf("%w: empty", ErrInvalidEnvironment)
	}
	if len(a.table) == 0 {
		return 0, fmt.Errorf("%w: automaton has no states", ErrInvalidStateCount)
	}
	a.Reset()
	input := env.Doubled()
	expected := env.Expected()
	matches := 0
	for i := 0; i < len(input); i++ {
		out, err := a.Transition(input[i])
		if err != nil {
			return 0, err
		}
		if out == expected[i] {
			matches++
		}
	}
	return float64(matches) / float64(len(input)), nil
}

// String returns the automaton's chromosome.
func (a *Automaton) String() string {
	return string(a.Encode())
}

func isBinarySymbol(b byte) bool {
	return b == '0' || b == '1'
}
