package discordbot

import (
	"testing"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/overload-teams-league/internal/domain/challenge"
	"github.com/riskibarqy/overload-teams-league/internal/usecase"
	"github.com/stretchr/testify/assert"
)

func TestReplyForError(t *testing.T) {
	cmd := &Command{Name: "teamsize", Usage: "!teamsize <pilots>"}

	tests := []struct {
		name      string
		err       error
		wantTitle string
		wantText  string
	}{
		{
			name:      "usage repeats command usage",
			err:       usagef("team size is required"),
			wantTitle: "Invalid command",
			wantText:  "team size is required\nUsage: `!teamsize <pilots>`",
		},
		{
			name: "critical wins over database",
			err: crerr.Mark(
				crerr.Mark(crerr.New("disband cascade"), usecase.ErrDatabase),
				usecase.ErrCritical,
			),
			wantTitle: "Admin attention needed",
		},
		{
			name:      "validation reason is shown",
			err:       crerr.Mark(&challenge.ValidationError{Precondition: "own_proposal", Reason: "you cannot confirm your own suggestion"}, usecase.ErrInvalidInput),
			wantTitle: "Not allowed right now",
			wantText:  "you cannot confirm your own suggestion",
		},
		{
			name:      "kind suffix is dropped",
			err:       crerr.Wrapf(usecase.ErrNotFound, "team %s", "ZZZ"),
			wantTitle: "Not found",
			wantText:  "team ZZZ",
		},
		{
			name:      "conflict asks for retry",
			err:       crerr.Mark(crerr.Mark(crerr.New("version"), usecase.ErrConflict), usecase.ErrDatabase),
			wantTitle: "Try again",
		},
		{
			name:      "unknown errors are generic",
			err:       crerr.New("boom"),
			wantTitle: "Unexpected error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := replyForError(cmd, tt.err)
			assert.Equal(t, tt.wantTitle, got.Title)
			if tt.wantText != "" {
				assert.Equal(t, tt.wantText, got.Text)
			}
		})
	}
}
