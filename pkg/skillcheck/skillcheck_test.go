package skillcheck

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModifier(t *testing.T) {
	tests := []struct {
		score    int
		expected int
	}{
		{1, -5},
		{7, -2},
		{8, -1},
		{9, -1},
		{10, 0},
		{11, 0},
		{12, 1},
		{14, 2},
		{15, 2},
		{20, 5},
		{30, 10},
	}

	for _, tt := range tests {
		if got := Modifier(tt.score); got != tt.expected {
			t.Errorf("Modifier(%d) = %d, want %d", tt.score, got, tt.expected)
		}
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name       string
		roll       int
		modifier   int
		difficulty int
		expected   Outcome
	}{
		{"natural 20 beats impossible DC", 20, -5, 40, CriticalSuccess},
		{"natural 1 fails trivial DC", 1, 10, 2, CriticalFailure},
		{"total equals DC", 13, 2, 15, Success},
		{"total one below DC", 12, 2, 15, Failure},
		{"negative modifier", 10, -1, 10, Failure},
		{"negative DC", 2, 0, -3, Success},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Evaluate(tt.roll, tt.modifier, tt.difficulty))
		})
	}
}

func TestResolve_Naturals(t *testing.T) {
	for _, score := range []int{1, 10, 30} {
		for _, dc := range []int{-5, 10, 35} {
			res, err := Resolve(Strength, score, dc, NewMockRoller(20))
			require.NoError(t, err)
			assert.Equal(t, CriticalSuccess, res.Outcome, "score %d dc %d", score, dc)

			res, err = Resolve(Strength, score, dc, NewMockRoller(1))
			require.NoError(t, err)
			assert.Equal(t, CriticalFailure, res.Outcome, "score %d dc %d", score, dc)
		}
	}
}

func TestResolve_Fields(t *testing.T) {
	roller := NewMockRoller(13)
	res, err := Resolve(Strength, 14, 15, roller)
	require.NoError(t, err)

	assert.Equal(t, Result{
		Stat:       Strength,
		Difficulty: 15,
		Roll:       13,
		Modifier:   2,
		Total:      15,
		Outcome:    Success,
	}, res)
	assert.Equal(t, []int{20}, roller.RollCalls)
}

func TestResolve_RollerErrors(t *testing.T) {
	roller := NewMockRoller()
	roller.Err = errors.New("entropy exhausted")
	_, err := Resolve(Wisdom, 10, 10, roller)
	assert.Error(t, err)

	_, err = Resolve(Wisdom, 10, 10, NewMockRoller(21))
	assert.Error(t, err)

	_, err = Resolve(Wisdom, 10, 10, NewMockRoller(0))
	assert.Error(t, err)
}

func TestResolve_DefaultRollerInRange(t *testing.T) {
	for i := 0; i < 100; i++ {
		res, err := Resolve(Dexterity, 10, 10, nil)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.Roll, 1)
		assert.LessOrEqual(t, res.Roll, 20)
	}
}

type scoreMap map[Stat]int

func (m scoreMap) Score(s Stat) int {
	if v, ok := m[s]; ok {
		return v
	}
	return NeutralScore
}

func TestCheck(t *testing.T) {
	res, err := Check(Charisma, scoreMap{Charisma: 6}, 10, NewMockRoller(11))
	require.NoError(t, err)
	assert.Equal(t, -2, res.Modifier)
	assert.Equal(t, Failure, res.Outcome)

	res, err = Check(Charisma, nil, 10, NewMockRoller(10))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Modifier)
	assert.Equal(t, Success, res.Outcome)
}

func TestParseStat(t *testing.T) {
	tests := []struct {
		in   string
		want Stat
		ok   bool
	}{
		{"Strength", Strength, true},
		{"STRENGTH", Strength, true},
		{" wisdom ", Wisdom, true},
		{"INTELLIGENCE", Intelligence, true},
		{"Güç", Strength, true},
		{"GÜÇ", Strength, true},
		{"Çeviklik", Dexterity, true},
		{"Dayanıklılık", Constitution, true},
		{"DAYANIKLILIK", Constitution, true},
		{"Zeka", Intelligence, true},
		{"Bilgelik", Wisdom, true},
		{"BİLGELİK", Wisdom, true},
		{"Karizma", Charisma, true},
		{"Luck", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseStat(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStat_Title(t *testing.T) {
	assert.Equal(t, "Strength", Strength.Title())
	assert.Equal(t, "", Stat("").Title())
	assert.True(t, Wisdom.Valid())
	assert.False(t, Stat("luck").Valid())
}

func TestOutcome_Label(t *testing.T) {
	assert.Equal(t, "critical success", CriticalSuccess.Label())
	assert.Equal(t, "failure", Failure.Label())
}
