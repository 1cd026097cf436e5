package discordbot

import (
	"fmt"
	"strings"
	"unicode"
)

// parsedCommand is a prefixed message split into a lower-cased command name
// and its arguments.
type parsedCommand struct {
	Name string
	Args []string
}

// parse reports ok=false for messages that are not meant for the bot.
// Double quotes group words into one argument.
func parse(prefix, content string) (parsedCommand, bool, error) {
	content = strings.TrimSpace(content)
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return parsedCommand{}, false, nil
	}

	words, err := splitArgs(content[len(prefix):])
	if err != nil {
		return parsedCommand{}, true, err
	}
	if len(words) == 0 {
		return parsedCommand{}, false, nil
	}

	return parsedCommand{
		Name: strings.ToLower(words[0]),
		Args: words[1:],
	}, true, nil
}

func splitArgs(s string) ([]string, error) {
	var (
		out     []string
		current strings.Builder
		quoted  bool
		started bool
	)
	flush := func() {
		if started {
			out = append(out, current.String())
		}
		current.Reset()
		started = false
	}

	for _, r := range s {
		switch {
		case r == '"':
			quoted = !quoted
			started = true
		case unicode.IsSpace(r) && !quoted:
			flush()
		default:
			current.WriteRune(r)
			started = true
		}
	}
	if quoted {
		return nil, fmt.Errorf("unterminated quote")
	}
	flush()
	return out, nil
}

// pilotID accepts a Discord mention (<@123> or <@!123>) or a raw snowflake.
func pilotID(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "<@")
	raw = strings.TrimPrefix(raw, "!")
	raw = strings.TrimSuffix(raw, ">")
	if raw == "" {
		return "", false
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return raw, true
}
