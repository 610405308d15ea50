package scoring

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/spigell/gig-hunter/internal/opportunity"
)

// DefaultSkillMatch is used when a listing names no required skills.
const DefaultSkillMatch = 0.5

var (
	ErrBadRange  = errors.New("target must be greater than floor")
	ErrBadRating = errors.New("rating must be within 0..5")
)

// Fold normalizes text for case-insensitive comparison.
func Fold(s string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(s)))
}

// SkillMatch is the fraction of required skills that contain, or are contained
// in, one of the user's skill names. Case-insensitive.
func SkillMatch(required []string, skills opportunity.Skills) float64 {
	return SkillMatchOr(required, skills, DefaultSkillMatch)
}

// SkillMatchOr is SkillMatch with a custom value for listings without requirements.
func SkillMatchOr(required []string, skills opportunity.Skills, fallback float64) float64 {
	return matchRequired(required, skills, fallback, func(req, name string) bool {
		return strings.Contains(name, req) || strings.Contains(req, name)
	})
}

// ExactSkillMatch is the fraction of required skills equal to a user skill name.
func ExactSkillMatch(required []string, skills opportunity.Skills) float64 {
	return matchRequired(required, skills, DefaultSkillMatch, func(req, name string) bool {
		return req == name
	})
}

func matchRequired(required []string, skills opportunity.Skills, fallback float64, match func(req, name string) bool) float64 {
	names := foldedNames(skills)

	total, matched := 0, 0
	for _, req := range required {
		req = Fold(req)
		if req == "" {
			continue
		}
		total++
		for _, name := range names {
			if match(req, name) {
				matched++
				break
			}
		}
	}

	if total == 0 {
		return fallback
	}
	return float64(matched) / float64(total)
}

// TextSkillMatch is the fraction of the user's skills mentioned in text.
func TextSkillMatch(text string, skills opportunity.Skills) float64 {
	names := foldedNames(skills)
	if len(names) == 0 {
		return DefaultSkillMatch
	}

	text = Fold(text)
	matched := 0
	for _, name := range names {
		if strings.Contains(text, name) {
			matched++
		}
	}
	return float64(matched) / float64(len(names))
}

func foldedNames(skills opportunity.Skills) []string {
	names := make([]string, 0, len(skills))
	for _, s := range skills {
		if name := Fold(s.Name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// Linear maps value onto [0,1]: 0 below floor, 1 at or above target.
func Linear(value, floor, target float64) (float64, error) {
	if math.IsNaN(value) {
		return 0, ErrNotFinite
	}
	if target <= floor {
		return 0, fmt.Errorf("%w: floor %.2f, target %.2f", ErrBadRange, floor, target)
	}
	switch {
	case value < floor:
		return 0, nil
	case value >= target:
		return 1, nil
	default:
		return (value - floor) / (target - floor), nil
	}
}

// Counterpart blends the rating (out of 5) with an experience and a trust
// signal: 0.5 rating, 0.3 experience, 0.2 trust. A missing signal counts half.
func Counterpart(rating float64, experienced, trusted bool) (float64, error) {
	if math.IsNaN(rating) || rating < 0 || rating > 5 {
		return 0, fmt.Errorf("%w: got %v", ErrBadRating, rating)
	}
	return 0.5*(rating/5.0) + 0.3*half(experienced) + 0.2*half(trusted), nil
}

func half(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.5
}

// Competition is inversely proportional to the number of bids: 1 without
// bids, 0 at twice the tolerated competition.
func Competition(bids, tolerated float64) (float64, error) {
	if bids < 0 || math.IsNaN(bids) {
		return 0, fmt.Errorf("negative bid count %v", bids)
	}
	if tolerated <= 0 {
		return 0, fmt.Errorf("tolerated competition must be positive, got %v", tolerated)
	}
	if bids == 0 {
		return 1, nil
	}
	if bids >= tolerated*2 {
		return 0, nil
	}
	return 1 - bids/(tolerated*2), nil
}

// Scope rates how well specified a listing is by its description length.
func Scope(description string) float64 {
	words := len(strings.Fields(description))
	switch {
	case words == 0:
		return 0.5
	case words < 50:
		return 0.3
	case words > 500:
		return 0.7
	default:
		return 0.9
	}
}
