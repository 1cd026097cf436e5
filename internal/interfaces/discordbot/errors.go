package discordbot

import (
	"strings"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/overload-teams-league/internal/domain/challenge"
	"github.com/riskibarqy/overload-teams-league/internal/domain/team"
	"github.com/riskibarqy/overload-teams-league/internal/usecase"
)

// replyForError turns a failed command into the message shown in the channel.
// Critical and outdated-ratings failures are checked first because they can
// carry other kinds underneath.
func replyForError(cmd *Command, err error) usecase.Message {
	var usage *usageError
	switch {
	case crerr.As(err, &usage):
		text := usage.msg
		if cmd != nil && cmd.Usage != "" {
			text += "\nUsage: `" + cmd.Usage + "`"
		}
		return usecase.Message{Title: "Invalid command", Text: text, Color: usecase.ColorWarning}
	case usecase.IsKind(err, usecase.ErrCritical):
		return usecase.Message{
			Title: "Admin attention needed",
			Text:  "Your change was saved, but a follow-up step failed. An admin has been alerted.",
			Color: usecase.ColorDanger,
		}
	case usecase.IsKind(err, usecase.ErrRatingsOutdated):
		return usecase.Message{
			Title: "Ratings not updated",
			Text:  "The match was confirmed, but season ratings could not be recalculated. An admin will rerun them.",
			Color: usecase.ColorWarning,
		}
	case usecase.IsKind(err, usecase.ErrConflict):
		return usecase.Message{
			Title: "Try again",
			Text:  "Someone else changed this at the same time. Please run the command again.",
			Color: usecase.ColorWarning,
		}
	case usecase.IsKind(err, usecase.ErrInvalidInput):
		return usecase.Message{Title: "Not allowed right now", Text: reason(err, usecase.ErrInvalidInput), Color: usecase.ColorWarning}
	case usecase.IsKind(err, usecase.ErrUnauthorized):
		return usecase.Message{Title: "Permission denied", Text: reason(err, usecase.ErrUnauthorized), Color: usecase.ColorDanger}
	case usecase.IsKind(err, usecase.ErrNotFound):
		return usecase.Message{Title: "Not found", Text: reason(err, usecase.ErrNotFound), Color: usecase.ColorWarning}
	case usecase.IsKind(err, usecase.ErrDatabase):
		return usecase.Message{
			Title: "League database unavailable",
			Text:  "The league database could not be reached. Please try again shortly.",
			Color: usecase.ColorDanger,
		}
	default:
		return usecase.Message{Title: "Unexpected error", Text: "Something went wrong. An admin has been alerted.", Color: usecase.ColorDanger}
	}
}

// reason prefers the rule that failed over the wrapped error chain.
func reason(err, kind error) string {
	var challengeErr *challenge.ValidationError
	if crerr.As(err, &challengeErr) {
		return challengeErr.Reason
	}
	var teamErr *team.ValidationError
	if crerr.As(err, &teamErr) {
		return teamErr.Reason
	}

	msg := strings.TrimSuffix(err.Error(), ": "+kind.Error())
	if msg == "" || msg == kind.Error() {
		return "That is not allowed."
	}
	return msg
}
