package usecase

import (
	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/overload-teams-league/internal/domain/challenge"
	"github.com/riskibarqy/overload-teams-league/internal/domain/team"
)

// Error kinds. Test them with crerr.Is; several are attached as marks.
var (
	ErrInvalidInput    = crerr.New("invalid input")
	ErrNotFound        = crerr.New("resource not found")
	ErrUnauthorized    = crerr.New("unauthorized")
	ErrDatabase        = crerr.New("database error")
	ErrConflict        = crerr.New("concurrent update")
	ErrCritical        = crerr.New("manual intervention required")
	ErrRatingsOutdated = crerr.New("season ratings outdated")
)

// invalidInput tags a domain validation error so callers can branch on kind
// and still reach the *ValidationError with errors.As.
func invalidInput(err error) error {
	if err == nil {
		return nil
	}
	return crerr.Mark(err, ErrInvalidInput)
}

func invalidInputf(format string, args ...any) error {
	return crerr.Wrapf(ErrInvalidInput, format, args...)
}

func notFoundf(format string, args ...any) error {
	return crerr.Wrapf(ErrNotFound, format, args...)
}

func unauthorizedf(format string, args ...any) error {
	return crerr.Wrapf(ErrUnauthorized, format, args...)
}

// databaseError marks a failed read or write. Lost optimistic races are also
// marked as conflicts.
func databaseError(err error, op string) error {
	if err == nil {
		return nil
	}
	wrapped := crerr.Wrap(err, op)
	if crerr.Is(err, challenge.ErrVersionConflict) || crerr.Is(err, team.ErrVersionConflict) {
		wrapped = crerr.Mark(wrapped, ErrConflict)
	}
	return crerr.Mark(wrapped, ErrDatabase)
}

// criticalError marks a failure after state was already committed.
func criticalError(err error, op string) error {
	if err == nil {
		return nil
	}
	return crerr.Mark(crerr.Wrap(err, op), ErrCritical)
}

// IsKind reports whether err carries the given kind.
func IsKind(err, kind error) bool {
	return crerr.Is(err, kind)
}
