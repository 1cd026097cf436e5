package discordbot

import (
	"context"
	"fmt"
	"sort"

	"github.com/riskibarqy/overload-teams-league/internal/domain/challenge"
	"github.com/riskibarqy/overload-teams-league/internal/domain/team"
	"github.com/riskibarqy/overload-teams-league/internal/usecase"
)

// Invocation is one parsed command with everything the dispatcher resolved
// for it.
type Invocation struct {
	Event
	Args []string

	// Team is the acting team for commands with NeedsTeam.
	Team team.Team
	// Challenge is bound to the channel for non-global commands.
	Challenge challenge.Challenge
	// Simulated is set when an admin acts on behalf of Team.
	Simulated bool
}

type HandlerFunc func(ctx context.Context, inv *Invocation) (usecase.Message, error)

// Command is one registry entry.
type Command struct {
	Name    string
	Aliases []string
	Usage   string
	Help    string

	// Global commands work outside challenge channels.
	Global bool
	// Simulatable commands let an admin act for a team with "as:TAG".
	Simulatable bool
	AdminOnly   bool
	// NeedsTeam resolves the author's team from their captaincy.
	NeedsTeam bool
	// FounderOnly narrows NeedsTeam to the team founder.
	FounderOnly bool

	Run HandlerFunc
}

// Registry maps command names and aliases to commands. It is filled once at
// startup and read-only afterwards.
type Registry struct {
	commands map[string]*Command
	ordered  []*Command
}

func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]*Command)}
}

// Register panics on duplicate names since the registry is static.
func (r *Registry) Register(cmd Command) {
	if cmd.Name == "" || cmd.Run == nil {
		panic("discordbot: command needs a name and a handler")
	}
	c := &cmd
	for _, name := range append([]string{cmd.Name}, cmd.Aliases...) {
		if _, exists := r.commands[name]; exists {
			panic(fmt.Sprintf("discordbot: command %q registered twice", name))
		}
		r.commands[name] = c
	}
	r.ordered = append(r.ordered, c)
}

func (r *Registry) Lookup(name string) (*Command, bool) {
	c, ok := r.commands[name]
	return c, ok
}

// List returns commands sorted by name.
func (r *Registry) List() []*Command {
	out := append([]*Command(nil), r.ordered...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
