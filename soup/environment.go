package soup

import "fmt"

// Environment is the cyclic binary sequence the population learns to predict.
type Environment string

// ParseEnvironment validates that s is a non-empty string of '0' and '1'.
func ParseEnvironment(s string) (Environment, error) {
	if len(s) == 0 {
		return "", fmt.Errorf("%w: empty", ErrInvalidEnvironment)
	}
	for i := 0; i < len(s); i++ {
		if !isBinarySymbol(s[i]) {
			return "", fmt.Errorf("%w: %q at position %d", ErrInvalidEnvironment, s[i], i)
		}
	}
	return Environment(s), nil
}

// Doubled returns two concatenated copies of the sequence, the input of a scoring pass.
func (e Environment) Doubled() string {
	return string(e) + string(e)
}

// Expected returns the sequence rotated left by one, repeated twice: the symbol
// a perfect predictor emits at each step of a scoring pass.
func (e Environment) Expected() string {
	if len(e) == 0 {
		return ""
	}
	rotated := string(e[1:]) + string(e[:1])
	return rotated + rotated
}
