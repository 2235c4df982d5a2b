package soup

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
)

// GenerationStats summarizes the fitness vector of one generation.
type GenerationStats struct {
	Generation int
	Scores     []float64
	MinIndex   int
	MaxIndex   int
	Mean       float64
	Stdev      float64
	Best       Chromosome // chromosome in the best slot when scored
}

// History is the observable trace of a run. It records outcomes only and
// cannot be used to resume a population.
type History struct {
	RunID       string
	Environment Environment
	Limit       int // keep only the last Limit generations; 0 keeps all
	Generations []GenerationStats
	Solution    Chromosome // empty unless the run converged
}

// newGenerationStats summarizes a fitness vector. The scores are copied.
func newGenerationStats(generation int, scores []float64, minIndex, maxIndex int, best Chromosome) GenerationStats {
	return GenerationStats{
		Generation: generation,
		Scores:     append([]float64(nil), scores...),
		MinIndex:   minIndex,
		MaxIndex:   maxIndex,
		Mean:       Mean(scores),
		Stdev:      Stdev(scores),
		Best:       best,
	}
}

// Record appends the statistics of one scored generation, dropping the
// oldest entries beyond Limit.
func (h *History) Record(stats GenerationStats) {
	h.Generations = append(h.Generations, stats)
	if h.Limit > 0 && len(h.Generations) > h.Limit {
		h.Generations = h.Generations[len(h.Generations)-h.Limit:]
	}
}

// Save writes the history to a gzip-compressed gob file.
func (h *History) Save(filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create history file '%s': %w", filePath, err)
	}
	defer file.Close()

	gzWriter := gzip.NewWriter(file)
	if err := gob.NewEncoder(gzWriter).Encode(h); err != nil {
		gzWriter.Close()
		return fmt.Errorf("failed to encode history: %w", err)
	}
	if err := gzWriter.Close(); err != nil {
		return fmt.Errorf("failed to flush history file '%s': %w", filePath, err)
	}
	return nil
}

// LoadHistory reads a history written by Save.
func LoadHistory(filePath string) (*History, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history file '%s': %w", filePath, err)
	}
	defer file.Close()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader for history: %w", err)
	}
	defer gzReader.Close()

	h := &History{}
	if err := gob.NewDecoder(gzReader).Decode(h); err != nil {
		return nil, fmt.Errorf("failed to decode history: %w", err)
	}
	return h, nil
}
