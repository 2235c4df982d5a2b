package soup

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// scriptedSource replays a fixed sequence of values and fails the test when
// exhausted or when a value is out of range for the requested bound.
type scriptedSource struct {
	t      *testing.T
	values []int
	calls  int
}

func newScriptedSource(t *testing.T, values ...int) *scriptedSource {
	return &scriptedSource{t: t, values: values}
}

func (s *scriptedSource) Intn(n int) int {
	s.t.Helper()
	require.Less(s.t, s.calls, len(s.values), "random source called more often than scripted")
	v := s.values[s.calls]
	s.calls++
	require.GreaterOrEqual(s.t, v, 0)
	require.Less(s.t, v, n, "scripted value out of range for Intn(%d)", n)
	return v
}

func mustDecode(t *testing.T, c Chromosome) *Automaton {
	t.Helper()
	a, err := Decode(c)
	require.NoError(t, err)
	return a
}

// predictor011001 emits the next symbol of "011001" from every state it reaches.
const predictor011001 Chromosome = "1B0A0A1C0A0D0E0A1F0A0A0A"
