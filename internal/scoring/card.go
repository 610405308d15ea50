// Package scoring holds the weighted score card and the sub-score functions
// shared by the source adapters. Everything here is pure.
package scoring

import (
	"errors"
	"fmt"
	"math"
)

var ErrNotFinite = errors.New("sub-score is not a finite number")

// Error reports a sub-score that could not be computed. The sub-score
// contributes 0 to the total.
type Error struct {
	Platform string
	Part     string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: scoring %s: %v", e.Platform, e.Part, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Part is one weighted sub-score.
type Part struct {
	Name   string
	Weight float64
	Value  float64
	Err    error
}

// Card accumulates weighted sub-scores for a single listing.
type Card struct {
	platform string
	parts    []Part
}

func NewCard(platform string) *Card {
	return &Card{platform: platform}
}

// Add records a sub-score. Values are clamped to [0,1]; non finite values
// count as failures.
func (c *Card) Add(name string, weight, value float64) *Card {
	return c.AddFunc(name, weight, func() (float64, error) { return value, nil })
}

// AddFunc records a sub-score computed by fn. A failing fn contributes 0.
func (c *Card) AddFunc(name string, weight float64, fn func() (float64, error)) *Card {
	value, err := fn()
	if err == nil && (math.IsNaN(value) || math.IsInf(value, 0)) {
		err = ErrNotFinite
	}
	if err != nil {
		c.parts = append(c.parts, Part{
			Name:   name,
			Weight: weight,
			Err:    &Error{Platform: c.platform, Part: name, Err: err},
		})
		return c
	}

	c.parts = append(c.parts, Part{Name: name, Weight: weight, Value: Clamp01(value)})
	return c
}

// Total is the weighted sum of all parts clamped to [0,1].
func (c *Card) Total() float64 {
	var total float64
	for _, p := range c.parts {
		total += p.Weight * p.Value
	}
	return Clamp01(total)
}

// Weights is the sum of the weights, at most 1 for a well formed card.
func (c *Card) Weights() float64 {
	var sum float64
	for _, p := range c.parts {
		sum += p.Weight
	}
	return sum
}

func (c *Card) Part(name string) (Part, bool) {
	for _, p := range c.parts {
		if p.Name == name {
			return p, true
		}
	}
	return Part{}, false
}

func (c *Card) Errors() []*Error {
	var errs []*Error
	for _, p := range c.parts {
		var scoringErr *Error
		if errors.As(p.Err, &scoringErr) {
			errs = append(errs, scoringErr)
		}
	}
	return errs
}

func (c *Card) Platform() string {
	return c.platform
}

func Clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
