package soup

import "errors"

// Sentinel errors for the soup package.
// Use errors.Is to check: errors.Is(err, soup.ErrMalformedChromosome)
var (
	ErrMalformedChromosome          = errors.New("soup: malformed chromosome")
	ErrInvalidInputSymbol           = errors.New("soup: invalid input symbol")
	ErrIncompatibleChromosomeLength = errors.New("soup: incompatible chromosome length")
	ErrInvalidEnvironment           = errors.New("soup: invalid environment")
	ErrInvalidStateCount            = errors.New("soup: invalid state count")
)
