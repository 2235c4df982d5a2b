package soup

import (
	"bytes"
	"context"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(env string, numStates int) *Config {
	config := DefaultConfig()
	config.Soup.Environment = env
	config.Soup.NumStates = numStates
	return config
}

func TestNewPopulation(t *testing.T) {
	config := DefaultConfig()
	pop, err := NewPopulation(config, rand.New(rand.NewSource(42)), nil)
	require.NoError(t, err)

	assert.Len(t, pop.Members, DefaultPopSize)
	for _, a := range pop.Members {
		assert.Equal(t, DefaultNumStates, a.NumStates())
	}
	assert.Equal(t, 0, pop.Generation)
	assert.Equal(t, Environment(DefaultEnvironment), pop.Environment)
	assert.Len(t, pop.RunID, 8)
	assert.Nil(t, pop.History, "history is off until enabled")

	h := pop.EnableHistory(5)
	assert.Same(t, h, pop.History)
	assert.Equal(t, pop.RunID, h.RunID)
	assert.Equal(t, 5, h.Limit)
}

func TestNewPopulation_SameSeedSamePopulation(t *testing.T) {
	a, err := NewPopulation(DefaultConfig(), rand.New(rand.NewSource(7)), nil)
	require.NoError(t, err)
	b, err := NewPopulation(DefaultConfig(), rand.New(rand.NewSource(7)), nil)
	require.NoError(t, err)
	assert.Equal(t, a.Chromosomes(), b.Chromosomes())
}

func TestNewPopulation_InvalidConfig(t *testing.T) {
	config := DefaultConfig()
	config.Soup.PopSize = 2
	_, err := NewPopulation(config, rand.New(rand.NewSource(1)), nil)
	assert.Error(t, err)

	config = DefaultConfig()
	config.Soup.Environment = "01a"
	_, err = NewPopulation(config, rand.New(rand.NewSource(1)), nil)
	assert.ErrorIs(t, err, ErrInvalidEnvironment)
}

func TestNewPopulationFromAutomata_TooSmall(t *testing.T) {
	_, err := NewPopulationFromAutomata(DefaultConfig(),
		[]*Automaton{mustDecode(t, "0A1A"), mustDecode(t, "1A0A")}, newScriptedSource(t), nil)
	assert.Error(t, err)
}

func TestNewPopulationFromAutomata_ValidatesConfig(t *testing.T) {
	members := []*Automaton{mustDecode(t, "0A1A"), mustDecode(t, "0A0A"), mustDecode(t, "1A0A")}

	config := DefaultConfig()
	config.Termination.StagnationFitnessFunc = "Max"
	pop, err := NewPopulationFromAutomata(config, members, newScriptedSource(t), nil)
	require.NoError(t, err)
	assert.Equal(t, "max", pop.Config.Termination.StagnationFitnessFunc)

	config = DefaultConfig()
	config.Termination.StagnationFitnessFunc = "mode"
	_, err = NewPopulationFromAutomata(config, members, newScriptedSource(t), nil)
	assert.ErrorContains(t, err, "config error")

	_, err = NewPopulationFromAutomata(nil, members, newScriptedSource(t), nil)
	assert.ErrorContains(t, err, "config error")

	_, err = NewPopulation(nil, newScriptedSource(t), nil)
	assert.ErrorContains(t, err, "config error")
}

func TestScorePopulation(t *testing.T) {
	members := []*Automaton{
		mustDecode(t, "0A1A"),
		mustDecode(t, "0A0A"),
		mustDecode(t, predictor011001),
	}
	_, err := members[2].Transition('0')
	require.NoError(t, err)

	scores, err := ScorePopulation(members, "011001")
	require.NoError(t, err)
	require.Len(t, scores, 3)
	assert.InDelta(t, 1.0/3.0, scores[0], 1e-12)
	assert.Equal(t, 0.5, scores[1])
	assert.Equal(t, 1.0, scores[2])
	// Two full cycles bring the predictor back to its start state.
	assert.Equal(t, 0, members[2].CurrentState())
}

func TestFindExact(t *testing.T) {
	idx, ok := FindExact([]float64{0.5, 1.0, 0.2, 1.0})
	assert.True(t, ok)
	assert.Equal(t, 1, idx)

	_, ok = FindExact([]float64{0.5, 0.99999, 0.2})
	assert.False(t, ok)

	_, ok = FindExact(nil)
	assert.False(t, ok)
}

func TestFindMinMax(t *testing.T) {
	tests := []struct {
		name    string
		scores  []float64
		wantMin int
		wantMax int
	}{
		{"distinct", []float64{0.5, 0.2, 0.8, 0.3}, 1, 2},
		{"ties keep earliest", []float64{0.5, 0.2, 0.8, 0.2, 0.8}, 1, 2},
		{"all equal", []float64{0.5, 0.5, 0.5}, 0, 0},
		{"all zero", []float64{0, 0, 0}, 0, 0},
		{"all perfect", []float64{1, 1, 1}, 0, 0},
		{"perfect later", []float64{0.5, 1.0, 0.25}, 2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			minIdx, maxIdx := FindMinMax(tt.scores)
			assert.Equal(t, tt.wantMin, minIdx)
			assert.Equal(t, tt.wantMax, maxIdx)
		})
	}
}

func TestFindMinMax_Ordering(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	for round := 0; round < 100; round++ {
		scores := make([]float64, 3+rng.Intn(10))
		for i := range scores {
			scores[i] = float64(rng.Intn(13)) / 12.0
		}
		minIdx, maxIdx := FindMinMax(scores)
		for i, s := range scores {
			assert.LessOrEqual(t, scores[minIdx], s, "scores %v index %d", scores, i)
			assert.GreaterOrEqual(t, scores[maxIdx], s, "scores %v index %d", scores, i)
		}
	}
}

func TestRunGeneration_Converged(t *testing.T) {
	members := []*Automaton{
		mustDecode(t, "0A0A"),
		mustDecode(t, "1A1A"),
		mustDecode(t, predictor011001),
		mustDecode(t, "0A1A"),
	}
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	rng := newScriptedSource(t) // any crossover or mutation draw fails the test

	pop, err := NewPopulationFromAutomata(DefaultConfig(), members, rng, logger)
	require.NoError(t, err)
	pop.EnableHistory(0)
	before := pop.Chromosomes()

	solution, found, err := pop.RunGeneration()
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, predictor011001, solution)
	assert.Equal(t, 0, pop.Generation)
	assert.Equal(t, before, pop.Chromosomes())
	assert.Equal(t, 0, rng.calls)
	assert.Equal(t, predictor011001, pop.History.Solution)
	assert.Contains(t, logs.String(), "perfect predictor found")
}

func TestRunGeneration_Evolves(t *testing.T) {
	members := []*Automaton{
		mustDecode(t, "0A1A"), // 1/3, worst
		mustDecode(t, "0A0A"), // 1/2
		mustDecode(t, "1A0A"), // 2/3, best
	}
	rng := newScriptedSource(t, 2, 0, 0)
	pop, err := NewPopulationFromAutomata(DefaultConfig(), members, rng, nil)
	require.NoError(t, err)
	pop.EnableHistory(0)

	solution, found, err := pop.RunGeneration()
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, solution)
	assert.Equal(t, 1, pop.Generation)
	assert.Equal(t, []Chromosome{"0A0A", "1A0A", "1A0A"}, pop.Chromosomes())

	require.Len(t, pop.History.Generations, 1)
	stats := pop.History.Generations[0]
	assert.Equal(t, 0, stats.Generation)
	assert.Equal(t, 0, stats.MinIndex)
	assert.Equal(t, 2, stats.MaxIndex)
	assert.Equal(t, Chromosome("1A0A"), stats.Best)
	assert.InDelta(t, 0.5, stats.Mean, 1e-12)
}

func TestRunGeneration_IncompatibleMembers(t *testing.T) {
	members := []*Automaton{
		mustDecode(t, "0A1A"),
		mustDecode(t, "0A0A"),
		mustDecode(t, "1B0A1A0A"),
	}
	pop, err := NewPopulationFromAutomata(DefaultConfig(), members, newScriptedSource(t), nil)
	require.NoError(t, err)

	_, _, err = pop.RunGeneration()
	assert.ErrorIs(t, err, ErrIncompatibleChromosomeLength)
	assert.Equal(t, 0, pop.Generation)
}

func TestRun_Converges(t *testing.T) {
	config := testConfig("01", 1)
	config.Termination.MaxGenerations = 10000
	pop, err := NewPopulation(config, rand.New(rand.NewSource(1)), nil)
	require.NoError(t, err)

	result, err := pop.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Found)
	assert.Equal(t, StopConverged, result.Reason)
	assert.Equal(t, Chromosome("1A0A"), result.Solution)
	assert.Equal(t, pop.Generation, result.Generation)

	score, err := mustDecode(t, result.Solution).Predict("01")
	require.NoError(t, err)
	assert.Equal(t, 1.0, score)
}

func TestRun_MaxGenerations(t *testing.T) {
	// A single state cannot predict "011001" perfectly.
	config := testConfig("011001", 1)
	config.Termination.MaxGenerations = 5
	pop, err := NewPopulation(config, rand.New(rand.NewSource(42)), nil)
	require.NoError(t, err)
	pop.EnableHistory(0)

	result, err := pop.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, result.Found)
	assert.Equal(t, StopMaxGenerations, result.Reason)
	assert.Equal(t, 5, result.Generation)
	assert.Len(t, pop.History.Generations, 5)
	assert.Empty(t, pop.History.Solution)
}

func TestRun_NothingRetainedWithoutHistory(t *testing.T) {
	// A single state never predicts "011001", so the run stops on the cap.
	config := testConfig("011001", 1)
	config.Termination.MaxGenerations = 2000
	pop, err := NewPopulation(config, rand.New(rand.NewSource(42)), nil)
	require.NoError(t, err)

	result, err := pop.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2000, result.Generation)
	assert.Nil(t, pop.History)
	assert.Len(t, pop.Members, DefaultPopSize)
}

func TestRun_HistoryLimit(t *testing.T) {
	config := testConfig("011001", 1)
	config.Termination.MaxGenerations = 50
	pop, err := NewPopulation(config, rand.New(rand.NewSource(42)), nil)
	require.NoError(t, err)
	pop.EnableHistory(10)

	_, err = pop.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, pop.History.Generations, 10)
	assert.Equal(t, 40, pop.History.Generations[0].Generation)
	assert.Equal(t, 49, pop.History.Generations[9].Generation)
}

func TestRun_Stagnation(t *testing.T) {
	config := testConfig("011001", 1)
	config.Termination.MaxGenerations = 1000
	config.Termination.MaxStagnation = 3
	pop, err := NewPopulation(config, rand.New(rand.NewSource(42)), nil)
	require.NoError(t, err)

	result, err := pop.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, result.Found)
	assert.Equal(t, StopStagnation, result.Reason)
	assert.Less(t, result.Generation, 1000)
	assert.GreaterOrEqual(t, result.Generation, 3)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pop, err := NewPopulation(DefaultConfig(), rand.New(rand.NewSource(42)), nil)
	require.NoError(t, err)

	result, err := pop.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StopCancelled, result.Reason)
	assert.Equal(t, 0, result.Generation)
}
