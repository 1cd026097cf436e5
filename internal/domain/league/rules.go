package league

import (
	"fmt"
	"strings"
	"time"
)

// Division is the bracket a team plays in.
type Division string

const (
	DivisionUpper Division = "upper"
	DivisionLower Division = "lower"
)

func ParseDivision(v string) (Division, error) {
	switch Division(strings.ToLower(strings.TrimSpace(v))) {
	case DivisionUpper:
		return DivisionUpper, nil
	case DivisionLower:
		return DivisionLower, nil
	default:
		return "", fmt.Errorf("unknown league %q", v)
	}
}

// Rules stores the tunable league parameters shared by rosters, challenges
// and ratings.
type Rules struct {
	CurrentSeason       int           `validate:"min=1"`
	MaxRosterSize       int           `validate:"min=2"`
	MaxCaptains         int           `validate:"min=0"`
	HomeMapsPerGameType int           `validate:"min=1,max=26"`
	MinTeamSize         int           `validate:"min=1"`
	MaxTeamSize         int           `validate:"gtefield=MinTeamSize"`
	ClockDuration       time.Duration `validate:"gt=0"`
	ClockExtension      time.Duration `validate:"gt=0"`
	ClockCooldown       time.Duration `validate:"gte=0"`
	MaxActiveClocks     int           `validate:"min=1"`
	PenaltyGames        int           `validate:"min=1"`
	RatingK             float64       `validate:"gt=0"`
}

func DefaultRules() Rules {
	return Rules{
		CurrentSeason:       1,
		MaxRosterSize:       10,
		MaxCaptains:         2,
		HomeMapsPerGameType: 5,
		MinTeamSize:         2,
		MaxTeamSize:         8,
		ClockDuration:       28 * 24 * time.Hour,
		ClockExtension:      14 * 24 * time.Hour,
		ClockCooldown:       28 * 24 * time.Hour,
		MaxActiveClocks:     2,
		PenaltyGames:        3,
		RatingK:             32,
	}
}
