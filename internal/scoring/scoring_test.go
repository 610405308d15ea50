package scoring

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/gig-hunter/internal/opportunity"
)

func TestCardTotalIsWeightedSum(t *testing.T) {
	card := NewCard("upwork").
		Add("skills", 0.4, 1).
		Add("pay", 0.25, 0.6).
		Add("client", 0.2, 0.5)

	assert.InDelta(t, 0.4+0.15+0.1, card.Total(), 1e-9)
	assert.InDelta(t, 0.85, card.Weights(), 1e-9)
	assert.Empty(t, card.Errors())
}

func TestCardClampsValues(t *testing.T) {
	card := NewCard("indeed").Add("salary", 0.3, 3).Add("company", 0.2, -1)

	salary, ok := card.Part("salary")
	require.True(t, ok)
	assert.Equal(t, 1.0, salary.Value)
	assert.InDelta(t, 0.3, card.Total(), 1e-9)
}

func TestCardFailedPartContributesZero(t *testing.T) {
	boom := errors.New("boom")
	card := NewCard("wellfound").
		Add("skills", 0.5, 1).
		AddFunc("equity", 0.3, func() (float64, error) { return 0, boom }).
		Add("stage", 0.2, math.NaN())

	assert.InDelta(t, 0.5, card.Total(), 1e-9)

	errs := card.Errors()
	require.Len(t, errs, 2)
	assert.Equal(t, "equity", errs[0].Part)
	assert.Equal(t, "wellfound", errs[0].Platform)
	assert.ErrorIs(t, errs[0], boom)
	assert.ErrorIs(t, errs[1], ErrNotFinite)
}

func TestSkillMatch(t *testing.T) {
	skills := opportunity.Skills{{Name: "Python", Proficiency: 9}, {Name: "Go", Proficiency: 8}}

	tests := []struct {
		name     string
		required []string
		expect   float64
	}{
		{name: "no requirements", required: nil, expect: DefaultSkillMatch},
		{name: "full match", required: []string{"python"}, expect: 1},
		{name: "containment", required: []string{"Python 3", "Rust"}, expect: 0.5},
		{name: "none", required: []string{"COBOL"}, expect: 0},
		{name: "blank entries ignored", required: []string{"", "Go"}, expect: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expect, SkillMatch(tt.required, skills), 1e-9)
		})
	}
}

func TestSkillMatchWithoutUserSkills(t *testing.T) {
	assert.Equal(t, 0.0, SkillMatch([]string{"Python"}, nil))
	assert.Equal(t, 0.6, SkillMatchOr(nil, nil, 0.6))
}

func TestExactSkillMatch(t *testing.T) {
	skills := opportunity.Skills{{Name: "Python"}}

	assert.Equal(t, 0.0, ExactSkillMatch([]string{"Python 3"}, skills))
	assert.Equal(t, 1.0, ExactSkillMatch([]string{"PYTHON"}, skills))
}

func TestTextSkillMatch(t *testing.T) {
	skills := opportunity.Skills{{Name: "Go"}, {Name: "Kubernetes"}}

	assert.Equal(t, 0.5, TextSkillMatch("Senior GO engineer", skills))
	assert.Equal(t, DefaultSkillMatch, TextSkillMatch("anything", nil))
}

func TestLinear(t *testing.T) {
	v, err := Linear(80, 50, 100)
	require.NoError(t, err)
	assert.InDelta(t, 0.6, v, 1e-9)

	v, err = Linear(40, 50, 100)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)

	v, err = Linear(150, 50, 100)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)

	_, err = Linear(10, 100, 100)
	assert.ErrorIs(t, err, ErrBadRange)
}

func TestCounterpart(t *testing.T) {
	v, err := Counterpart(5, true, true)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, v, 1e-9)

	v, err = Counterpart(0, false, false)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, v, 1e-9)

	_, err = Counterpart(7, true, true)
	assert.ErrorIs(t, err, ErrBadRating)
}

func TestCompetition(t *testing.T) {
	v, err := Competition(0, 20)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)

	v, err = Competition(10, 20)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, v, 1e-9)

	v, err = Competition(60, 20)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)

	_, err = Competition(-1, 20)
	assert.Error(t, err)
}

func TestScope(t *testing.T) {
	assert.Equal(t, 0.5, Scope(""))
	assert.Equal(t, 0.3, Scope("short brief"))

	long := ""
	for i := 0; i < 120; i++ {
		long += "word "
	}
	assert.Equal(t, 0.9, Scope(long))
}
