package usecase

import (
	"context"

	"github.com/riskibarqy/overload-teams-league/internal/platform/logging"
)

// MessageField is one name/value row of a rich message.
type MessageField struct {
	Name   string
	Value  string
	Inline bool
}

// Message is what the core asks a notifier to deliver. Title, Fields and
// Color are optional.
type Message struct {
	Title  string
	Text   string
	Fields []MessageField
	Color  int
}

// Notifier delivers messages to an opaque destination such as a channel ID.
type Notifier interface {
	Send(ctx context.Context, destination string, msg Message) error
}

const (
	ColorInfo    = 0x3498db
	ColorSuccess = 0x2ecc71
	ColorWarning = 0xf1c40f
	ColorDanger  = 0xe74c3c
)

// LogNotifier writes messages to the log. It is used when Discord is off.
type LogNotifier struct {
	logger *logging.Logger
}

func NewLogNotifier(logger *logging.Logger) *LogNotifier {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogNotifier{logger: logger.Named("notifier")}
}

func (n *LogNotifier) Send(ctx context.Context, destination string, msg Message) error {
	n.logger.InfoContext(ctx, "notification",
		"destination", destination,
		"title", msg.Title,
		"text", msg.Text,
		"fields", len(msg.Fields),
	)
	return nil
}
