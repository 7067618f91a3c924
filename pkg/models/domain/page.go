package domain

import "fmt"

const (
	DefaultPageLimit = 100
	MaxPageLimit     = 1000
)

type Page struct {
	Skip  int
	Limit int
}

func DefaultPage() Page {
	return Page{Skip: 0, Limit: DefaultPageLimit}
}

func (p Page) Validate() error {
	if p.Skip < 0 {
		return fmt.Errorf("%w: skip must be >= 0", ErrInvalidValue)
	}
	if p.Limit < 1 || p.Limit > MaxPageLimit {
		return fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidValue, MaxPageLimit)
	}
	return nil
}
