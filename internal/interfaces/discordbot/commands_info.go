package discordbot

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/overload-teams-league/internal/domain/challenge"
	"github.com/riskibarqy/overload-teams-league/internal/domain/team"
	"github.com/riskibarqy/overload-teams-league/internal/usecase"
)

const matchTimeDisplayLayout = "Mon Jan 2 2006 15:04 MST"

type helpArgs struct {
	Command string `arg:"0" name:"command"`
}

type seasonArgs struct {
	Season int `arg:"0" name:"season" validate:"min=0"`
}

func (d *Dispatcher) registerInfoCommands() {
	d.registry.Register(Command{
		Name: "help", Aliases: []string{"commands"}, Usage: d.cfg.Prefix + "help [command]", Help: "List commands.",
		Global: true,
		Run: func(ctx context.Context, inv *Invocation) (usecase.Message, error) {
			var args helpArgs
			if err := d.binder.bind(inv.Args, &args); err != nil {
				return usecase.Message{}, err
			}
			return d.help(inv.IsAdmin, strings.TrimPrefix(strings.ToLower(args.Command), d.cfg.Prefix))
		},
	})

	d.registry.Register(Command{
		Name: "ratings", Aliases: []string{"standings"}, Usage: d.cfg.Prefix + "ratings [season]", Help: "Show season ratings.",
		Global: true,
		Run: func(ctx context.Context, inv *Invocation) (usecase.Message, error) {
			var args seasonArgs
			if err := d.binder.bind(inv.Args, &args); err != nil {
				return usecase.Message{}, err
			}
			season := args.Season
			if season == 0 {
				season = d.cfg.CurrentSeason
			}
			return d.describeRatings(ctx, season)
		},
	})

	d.registry.Register(Command{
		Name: "team", Usage: d.cfg.Prefix + "team <TAG>", Help: "Show a team's roster and home maps.",
		Global: true,
		Run: func(ctx context.Context, inv *Invocation) (usecase.Message, error) {
			t, err := d.bindTeamTag(ctx, inv.Args)
			if err != nil {
				return usecase.Message{}, err
			}
			return describeTeam(t), nil
		},
	})

	d.registry.Register(Command{
		Name: "challenges", Usage: d.cfg.Prefix + "challenges", Help: "List your team's open challenges.",
		Global: true,
		Run: func(ctx context.Context, inv *Invocation) (usecase.Message, error) {
			t, exists, err := d.teams.GetByPilot(ctx, inv.AuthorID)
			if err != nil {
				return usecase.Message{}, err
			}
			if !exists {
				return usecase.Message{}, usagef("you are not on a team")
			}
			items, err := d.challenges.ListOpenByTeam(ctx, t.ID)
			if err != nil {
				return usecase.Message{}, err
			}
			return d.describeOpenChallenges(ctx, t, items), nil
		},
	})
}

func (d *Dispatcher) help(isAdmin bool, name string) (usecase.Message, error) {
	if name != "" {
		cmd, ok := d.registry.Lookup(name)
		if !ok || (cmd.AdminOnly && !isAdmin) {
			return usecase.Message{}, usagef("there is no %s%s command", d.cfg.Prefix, name)
		}
		return usecase.Message{Title: cmd.Usage, Text: cmd.Help, Color: usecase.ColorInfo}, nil
	}

	var lines []string
	for _, cmd := range d.registry.List() {
		if cmd.AdminOnly && !isAdmin {
			continue
		}
		lines = append(lines, fmt.Sprintf("`%s` %s", cmd.Usage, cmd.Help))
	}
	return usecase.Message{Title: "Commands", Text: strings.Join(lines, "\n"), Color: usecase.ColorInfo}, nil
}

func (d *Dispatcher) describeRatings(ctx context.Context, season int) (usecase.Message, error) {
	ratings, err := d.ratings.SeasonRatings(ctx, season)
	if err != nil {
		return usecase.Message{}, err
	}
	if len(ratings) == 0 {
		return usecase.Message{Title: fmt.Sprintf("Season %d ratings", season), Text: "No confirmed matches yet.", Color: usecase.ColorInfo}, nil
	}

	teams, err := d.teams.List(ctx)
	if err != nil {
		return usecase.Message{}, err
	}
	tags := make(map[string]string, len(teams))
	for _, t := range teams {
		tags[t.ID] = t.Tag
	}

	lines := make([]string, 0, len(ratings))
	for i, r := range ratings {
		tag := tags[r.TeamID]
		if tag == "" {
			tag = r.TeamID
		}
		lines = append(lines, fmt.Sprintf("%d. **%s** %.0f", i+1, tag, r.Rating))
	}
	return usecase.Message{Title: fmt.Sprintf("Season %d ratings", season), Text: strings.Join(lines, "\n"), Color: usecase.ColorInfo}, nil
}

func describeTeam(t team.Team) usecase.Message {
	status := "Active"
	switch {
	case t.Disbanded:
		status = "Disbanded"
	case t.Locked:
		status = "Roster locked"
	}

	fields := []usecase.MessageField{
		{Name: "Founder", Value: mention(t.FounderID), Inline: true},
		{Name: "Division", Value: string(t.League), Inline: true},
		{Name: "Status", Value: status, Inline: true},
		{Name: "Pilots", Value: mentions(t.PilotIDs)},
	}
	if len(t.CaptainIDs) > 0 {
		fields = append(fields, usecase.MessageField{Name: "Captains", Value: mentions(t.CaptainIDs)})
	}
	for _, gameType := range team.AllGameTypes {
		if maps := t.HomeMapList(gameType); len(maps) > 0 {
			fields = append(fields, usecase.MessageField{Name: string(gameType) + " home maps", Value: numbered(maps), Inline: true})
		}
	}
	if t.Penalties > 0 {
		fields = append(fields, usecase.MessageField{
			Name:  "Penalties",
			Value: fmt.Sprintf("%d (%d penalty games left)", t.Penalties, t.PenaltyGamesRemaining),
		})
	}

	return usecase.Message{
		Title:  fmt.Sprintf("%s (%s)", t.Name, t.Tag),
		Fields: fields,
		Color:  colorValue(t.Color),
	}
}

func (d *Dispatcher) describeChallenge(ctx context.Context, c challenge.Challenge) usecase.Message {
	tags := map[string]string{}
	for _, teamID := range c.TeamIDs() {
		if t, err := d.teams.Get(ctx, teamID); err == nil {
			tags[teamID] = t.Tag
		} else {
			tags[teamID] = teamID
		}
	}

	title := fmt.Sprintf("%s vs %s", tags[c.ChallengingTeamID], tags[c.ChallengedTeamID])
	if c.Title != "" {
		title = c.Title + ": " + title
	}

	fields := []usecase.MessageField{
		{Name: "Game type", Value: negotiated(c.GameType, func(v team.GameType) string { return string(v) }, tags), Inline: true},
		{Name: "Team size", Value: negotiated(c.TeamSize, func(v int) string { return fmt.Sprintf("%dv%d", v, v) }, tags), Inline: true},
		{Name: "Map", Value: negotiated(c.Map, func(v string) string { return v }, tags), Inline: true},
		{Name: "Time", Value: negotiated(c.MatchTime, func(v time.Time) string { return v.UTC().Format(matchTimeDisplayLayout) }, tags), Inline: true},
		{Name: "Home map team", Value: tags[c.HomeMapTeamID], Inline: true},
		{Name: "Home server team", Value: tags[c.HomeServerTeamID], Inline: true},
	}
	if c.IsClocked() && c.DateClockDeadline != nil {
		fields = append(fields, usecase.MessageField{
			Name:  "Clock deadline",
			Value: c.DateClockDeadline.UTC().Format(matchTimeDisplayLayout) + " (clocked by " + tags[c.ClockTeamID] + ")",
		})
	}
	if c.IsReported() {
		fields = append(fields, usecase.MessageField{
			Name:  "Score",
			Value: fmt.Sprintf("%s %d, %s %d", tags[c.ChallengingTeamID], c.ChallengingTeamScore, tags[c.ChallengedTeamID], c.ChallengedTeamScore),
		})
	}
	if c.CasterID != "" {
		fields = append(fields, usecase.MessageField{Name: "Caster", Value: mention(c.CasterID), Inline: true})
	}
	if len(c.StreamerIDs) > 0 {
		fields = append(fields, usecase.MessageField{Name: "Streamers", Value: mentions(c.StreamerIDs), Inline: true})
	}
	if c.Restricted {
		for _, teamID := range c.TeamIDs() {
			fields = append(fields, usecase.MessageField{
				Name:  "Authorized for " + tags[teamID],
				Value: mentions(c.AuthorizedPilotIDs[teamID]),
			})
		}
	}
	if c.VoDURL != "" {
		fields = append(fields, usecase.MessageField{Name: "VoD", Value: c.VoDURL})
	}

	return usecase.Message{Title: title, Text: challengeStatus(c), Fields: fields, Color: usecase.ColorInfo}
}

func challengeStatus(c challenge.Challenge) string {
	switch {
	case c.IsVoided():
		return "Voided."
	case c.IsConfirmed():
		return "Result confirmed."
	case c.IsClosed():
		return "Closed."
	case c.IsReported():
		return "Result reported, waiting for confirmation."
	case c.Locked:
		return "Locked by an admin."
	default:
		return "Open for negotiation."
	}
}

// negotiated renders the agreed value, or the pending proposal and who made it.
func negotiated[T comparable](n challenge.Negotiable[T], format func(T) string, tags map[string]string) string {
	switch {
	case n.IsSet:
		return format(n.Value)
	case n.HasProposal:
		return fmt.Sprintf("%s? (suggested by %s)", format(n.Suggested), tags[n.SuggestedBy])
	default:
		return "Not set"
	}
}

func (d *Dispatcher) describeOpenChallenges(ctx context.Context, t team.Team, items []challenge.Challenge) usecase.Message {
	if len(items) == 0 {
		return usecase.Message{Title: t.Tag + " challenges", Text: "No open challenges.", Color: usecase.ColorInfo}
	}

	sort.Slice(items, func(i, j int) bool { return items[i].DateAdded.Before(items[j].DateAdded) })
	lines := make([]string, 0, len(items))
	for _, item := range items {
		opponent := item.OpponentOf(t.ID)
		if o, err := d.teams.Get(ctx, opponent); err == nil {
			opponent = o.Tag
		}
		line := "vs **" + opponent + "**"
		if item.ChannelID != "" {
			line += " in <#" + item.ChannelID + ">"
		}
		lines = append(lines, line+": "+strings.ToLower(strings.TrimSuffix(challengeStatus(item), ".")))
	}
	return usecase.Message{Title: t.Tag + " challenges", Text: strings.Join(lines, "\n"), Color: usecase.ColorInfo}
}

func mention(id string) string {
	if id == "" {
		return "None"
	}
	return "<@" + id + ">"
}

func mentions(ids []string) string {
	if len(ids) == 0 {
		return "None"
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, mention(id))
	}
	return strings.Join(out, ", ")
}

func numbered(items []string) string {
	lines := make([]string, 0, len(items))
	for i, item := range items {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, item))
	}
	return strings.Join(lines, "\n")
}

func colorValue(hex string) int {
	var v int
	if _, err := fmt.Sscanf(strings.TrimPrefix(hex, "#"), "%x", &v); err != nil {
		return usecase.ColorInfo
	}
	return v
}
