package rating

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpected_IsSymmetric(t *testing.T) {
	t.Parallel()

	ratings := []float64{800, 1200, 1435, 1500, 1501, 1766, 2400}
	for _, a := range ratings {
		for _, b := range ratings {
			assert.InDelta(t, 1.0, Expected(a, b)+Expected(b, a), 1e-12, "a=%v b=%v", a, b)
		}
	}
	assert.InDelta(t, 0.5, Expected(1500, 1500), 1e-12)
}

func TestActual(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		a, b int
		want float64
	}{
		{name: "both zero is a tie", a: 0, b: 0, want: 0.5},
		{name: "both non-positive compares directly", a: 0, b: -1, want: 1},
		{name: "both non-positive loss", a: -2, b: 0, want: 0},
		{name: "a forfeits", a: 0, b: 12, want: 0},
		{name: "b forfeits", a: 12, b: 0, want: 1},
		{name: "even score", a: 10, b: 10, want: 0.5},
		{name: "double is a full win", a: 20, b: 10, want: 1},
		{name: "beyond double is clamped", a: 50, b: 10, want: 1},
		{name: "half is a full loss", a: 10, b: 20, want: 0},
		{name: "margin scaled", a: 15, b: 10, want: (math.Log2(1.5) + 1) / 2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, Actual(tc.a, tc.b), 1e-12)
		})
	}
}

func TestActual_BoundsAndComplement(t *testing.T) {
	t.Parallel()

	for x := -3; x <= 40; x++ {
		for y := -3; y <= 40; y++ {
			got := Actual(x, y)
			require.GreaterOrEqual(t, got, 0.0, "x=%d y=%d", x, y)
			require.LessOrEqual(t, got, 1.0, "x=%d y=%d", x, y)
			if x > 0 && y > 0 {
				require.InDelta(t, 1.0, got+Actual(y, x), 1e-12, "x=%d y=%d", x, y)
			}
		}
	}
}

func TestUpdate_Rounds(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1516.0, Update(0.5, 1, 1500, 32))
	assert.Equal(t, 1484.0, Update(0.5, 0, 1500, 32))
	assert.Equal(t, 1500.0, Update(0.5, 0.5, 1500, 32))
}

func TestCalculateRatings_SingleBlowout(t *testing.T) {
	t.Parallel()

	got := CalculateRatings([]SeasonMatch{
		{ChallengingTeamID: "a", ChallengedTeamID: "b", ChallengingTeamScore: 10, ChallengedTeamScore: 0},
	}, 32)

	assert.Equal(t, map[string]float64{"a": 1516, "b": 1484}, got)
}

func TestCalculateRatings_OrderSensitivity(t *testing.T) {
	t.Parallel()

	ab := SeasonMatch{ChallengingTeamID: "a", ChallengedTeamID: "b", ChallengingTeamScore: 10, ChallengedTeamScore: 0}
	bc := SeasonMatch{ChallengingTeamID: "b", ChallengedTeamID: "c", ChallengingTeamScore: 10, ChallengedTeamScore: 0}
	cd := SeasonMatch{ChallengingTeamID: "c", ChallengedTeamID: "d", ChallengingTeamScore: 7, ChallengedTeamScore: 9}

	t.Run("swapping matches that share a team changes the result", func(t *testing.T) {
		forward := CalculateRatings([]SeasonMatch{ab, bc}, 32)
		reversed := CalculateRatings([]SeasonMatch{bc, ab}, 32)

		assert.Equal(t, map[string]float64{"a": 1516, "b": 1501, "c": 1483}, forward)
		assert.Equal(t, map[string]float64{"a": 1517, "b": 1499, "c": 1484}, reversed)
	})

	t.Run("swapping disjoint matches is a no-op", func(t *testing.T) {
		ef := SeasonMatch{ChallengingTeamID: "e", ChallengedTeamID: "f", ChallengingTeamScore: 3, ChallengedTeamScore: 8}

		assert.Equal(t,
			CalculateRatings([]SeasonMatch{ab, cd, ef}, 24),
			CalculateRatings([]SeasonMatch{cd, ab, ef}, 24),
		)
	})
}

func TestCalculateRatings_UnqualifiedTeamDoesNotMoveOpponent(t *testing.T) {
	t.Parallel()

	qualified := SeasonMatch{ChallengingTeamID: "a", ChallengedTeamID: "b", ChallengingTeamScore: 10, ChallengedTeamScore: 0}
	unqualified := qualified
	unqualified.ChallengedTeamUnqualified = true

	assert.Equal(t, map[string]float64{"a": 1516, "b": 1484}, CalculateRatings([]SeasonMatch{qualified}, 32))
	assert.Equal(t, map[string]float64{"a": 1500, "b": 1484}, CalculateRatings([]SeasonMatch{unqualified}, 32))

	both := unqualified
	both.ChallengingTeamUnqualified = true
	assert.Equal(t, map[string]float64{"a": 1500, "b": 1500}, CalculateRatings([]SeasonMatch{both}, 32))
}

func TestCalculateRatings_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, CalculateRatings(nil, 32))
}
