package discordbot

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/overload-teams-league/internal/domain/challenge"
	"github.com/riskibarqy/overload-teams-league/internal/domain/team"
	"github.com/riskibarqy/overload-teams-league/internal/usecase"
)

type adjudicateArgs struct {
	Decision string `arg:"0" name:"decision" validate:"required,oneof=cancel extend penalize"`
	Teams    string `arg:"rest" name:"teams"`
}

type titleArgs struct {
	Title string `arg:"rest" name:"title" validate:"max=200"`
}

type toggleArgs struct {
	On bool `arg:"0" name:"yes or no"`
}

type overtimeArgs struct {
	Periods int `arg:"0" name:"periods" validate:"min=0"`
}

type tagArgs struct {
	Tag string `arg:"0" name:"team tag" validate:"required,max=5"`
}

type vodArgs struct {
	URL string `arg:"0" name:"url" validate:"required,url"`
}

type statArgs struct {
	Pilot        string `arg:"0" name:"pilot" validate:"required"`
	Tag          string `arg:"1" name:"team tag" validate:"required"`
	Kills        int    `arg:"2" name:"kills" validate:"min=0"`
	Assists      int    `arg:"3" name:"assists" validate:"min=0"`
	Deaths       int    `arg:"4" name:"deaths" validate:"min=0"`
	Damage       int    `arg:"5" name:"damage" validate:"min=0"`
	Captures     int    `arg:"6" name:"captures" validate:"min=0"`
	Pickups      int    `arg:"7" name:"pickups" validate:"min=0"`
	CarrierKills int    `arg:"8" name:"carrier kills" validate:"min=0"`
	Returns      int    `arg:"9" name:"returns" validate:"min=0"`
}

type authorizeArgs struct {
	Tag   string `arg:"0" name:"team tag" validate:"required,max=5"`
	Pilot string `arg:"1" name:"pilot" validate:"required"`
}

type matchupArgs struct {
	Challenging string `arg:"0" name:"challenging tag" validate:"required"`
	Challenged  string `arg:"1" name:"challenged tag" validate:"required"`
	Title       string `arg:"rest" name:"title"`
}

func (d *Dispatcher) adminCommand(name, usage, help string, run HandlerFunc) Command {
	return Command{Name: name, Usage: d.cfg.Prefix + usage, Help: help, AdminOnly: true, Run: run}
}

func (d *Dispatcher) registerAdminChallengeCommands() {
	s := d.challenges

	d.registry.Register(d.adminCommand("adjudicate", "adjudicate <cancel|extend|penalize> [TAG...]",
		"Rule on a challenge whose clock deadline passed.",
		func(ctx context.Context, inv *Invocation) (usecase.Message, error) {
			var args adjudicateArgs
			if err := d.binder.bind(inv.Args, &args); err != nil {
				return usecase.Message{}, err
			}
			decision, err := challenge.ParseDecision(args.Decision)
			if err != nil {
				return usecase.Message{}, usagef("%v", err)
			}
			var teamIDs []string
			for _, tag := range strings.Fields(args.Teams) {
				t, err := d.teams.GetByTag(ctx, tag)
				if err != nil {
					return usecase.Message{}, err
				}
				teamIDs = append(teamIDs, t.ID)
			}
			_, err = s.Adjudicate(ctx, inv.Challenge.ID, decision, teamIDs)
			return usecase.Message{}, err
		}))

	d.registry.Register(d.adminCommand("void", "void", "Void this challenge.",
		challengeStep(func(ctx context.Context, inv *Invocation) (challenge.Challenge, error) {
			return s.Void(ctx, inv.Challenge.ID)
		})))
	d.registry.Register(d.adminCommand("lock", "lock", "Freeze negotiation on this challenge.",
		challengeStep(func(ctx context.Context, inv *Invocation) (challenge.Challenge, error) {
			return s.Lock(ctx, inv.Challenge.ID)
		})))
	d.registry.Register(d.adminCommand("close", "close", "Close a confirmed or voided challenge.",
		challengeStep(func(ctx context.Context, inv *Invocation) (challenge.Challenge, error) {
			return s.Close(ctx, inv.Challenge.ID)
		})))

	d.registry.Register(d.adminCommand("title", "title [text]", "Set or clear the challenge title.",
		func(ctx context.Context, inv *Invocation) (usecase.Message, error) {
			var args titleArgs
			if err := d.binder.bind(inv.Args, &args); err != nil {
				return usecase.Message{}, err
			}
			if _, err := s.SetTitle(ctx, inv.Challenge.ID, args.Title); err != nil {
				return usecase.Message{}, err
			}
			return done("Title updated."), nil
		}))
	d.registry.Register(d.adminCommand("postseason", "postseason <yes|no>", "Mark this challenge as a postseason match.",
		func(ctx context.Context, inv *Invocation) (usecase.Message, error) {
			var args toggleArgs
			if err := d.binder.bind(inv.Args, &args); err != nil {
				return usecase.Message{}, err
			}
			if len(inv.Args) == 0 {
				return usecase.Message{}, usagef("yes or no is required")
			}
			if _, err := s.SetPostseason(ctx, inv.Challenge.ID, args.On); err != nil {
				return usecase.Message{}, err
			}
			return done(fmt.Sprintf("Postseason set to %t.", args.On)), nil
		}))
	d.registry.Register(d.adminCommand("overtime", "overtime <periods>", "Record overtime periods played.",
		func(ctx context.Context, inv *Invocation) (usecase.Message, error) {
			var args overtimeArgs
			if err := d.binder.bind(inv.Args, &args); err != nil {
				return usecase.Message{}, err
			}
			if _, err := s.SetOvertimePeriods(ctx, inv.Challenge.ID, args.Periods); err != nil {
				return usecase.Message{}, err
			}
			return done(fmt.Sprintf("Overtime periods set to %d.", args.Periods)), nil
		}))

	d.registry.Register(d.adminCommand("setgametype", "setgametype <TA|CTF>", "Set the game type.",
		challengeStep(func(ctx context.Context, inv *Invocation) (challenge.Challenge, error) {
			var args gameTypeArgs
			if err := d.binder.bind(inv.Args, &args); err != nil {
				return challenge.Challenge{}, err
			}
			gameType, err := team.ParseGameType(args.GameType)
			if err != nil {
				return challenge.Challenge{}, usagef("%v", err)
			}
			return s.SetGameType(ctx, inv.Challenge.ID, gameType)
		})))
	d.registry.Register(d.adminCommand("setteamsize", "setteamsize <pilots>", "Set the team size.",
		challengeStep(func(ctx context.Context, inv *Invocation) (challenge.Challenge, error) {
			var args teamSizeArgs
			if err := d.binder.bind(inv.Args, &args); err != nil {
				return challenge.Challenge{}, err
			}
			return s.SetTeamSize(ctx, inv.Challenge.ID, args.Size)
		})))
	d.registry.Register(d.adminCommand("setmap", "setmap <map>", "Set the map.",
		challengeStep(func(ctx context.Context, inv *Invocation) (challenge.Challenge, error) {
			var args mapArgs
			if err := d.binder.bind(inv.Args, &args); err != nil {
				return challenge.Challenge{}, err
			}
			return s.SetMap(ctx, inv.Challenge.ID, args.Map)
		})))
	d.registry.Register(d.adminCommand("settime", "settime <YYYY-MM-DD> <HH:MM> [zone]", "Set the match time.",
		challengeStep(func(ctx context.Context, inv *Invocation) (challenge.Challenge, error) {
			var args timeArgs
			if err := d.binder.bind(inv.Args, &args); err != nil {
				return challenge.Challenge{}, err
			}
			at, err := parseMatchTime(args.At)
			if err != nil {
				return challenge.Challenge{}, err
			}
			return s.SetTime(ctx, inv.Challenge.ID, at)
		})))
	d.registry.Register(d.adminCommand("sethomemapteam", "sethomemapteam <TAG>", "Choose the home map team.",
		challengeStep(func(ctx context.Context, inv *Invocation) (challenge.Challenge, error) {
			t, err := d.bindTeamTag(ctx, inv.Args)
			if err != nil {
				return challenge.Challenge{}, err
			}
			return s.SetHomeMapTeam(ctx, inv.Challenge.ID, t.ID)
		})))
	d.registry.Register(d.adminCommand("sethomeserverteam", "sethomeserverteam <TAG>", "Choose the home server team.",
		challengeStep(func(ctx context.Context, inv *Invocation) (challenge.Challenge, error) {
			t, err := d.bindTeamTag(ctx, inv.Args)
			if err != nil {
				return challenge.Challenge{}, err
			}
			return s.SetHomeServerTeam(ctx, inv.Challenge.ID, t.ID)
		})))

	d.registry.Register(d.adminCommand("vod", "vod <url>", "Attach the match recording.",
		challengeStep(func(ctx context.Context, inv *Invocation) (challenge.Challenge, error) {
			var args vodArgs
			if err := d.binder.bind(inv.Args, &args); err != nil {
				return challenge.Challenge{}, err
			}
			return s.SetVoD(ctx, inv.Challenge.ID, args.URL)
		})))
	d.registry.Register(d.adminCommand("addstat",
		"addstat <@pilot> <TAG> <kills> <assists> <deaths> <damage> [captures pickups carrierkills returns]",
		"Record one pilot's line for this match.",
		func(ctx context.Context, inv *Invocation) (usecase.Message, error) {
			var args statArgs
			if err := d.binder.bind(inv.Args, &args); err != nil {
				return usecase.Message{}, err
			}
			if len(inv.Args) < 6 {
				return usecase.Message{}, usagef("kills, assists, deaths and damage are required")
			}
			pilot, ok := pilotID(args.Pilot)
			if !ok {
				return usecase.Message{}, usagef("%q is not a Discord user", args.Pilot)
			}
			t, err := d.teams.GetByTag(ctx, args.Tag)
			if err != nil {
				return usecase.Message{}, err
			}
			_, err = s.AddStat(ctx, inv.Challenge.ID, challenge.PlayerStat{
				PilotID:      pilot,
				TeamID:       t.ID,
				Kills:        args.Kills,
				Assists:      args.Assists,
				Deaths:       args.Deaths,
				Damage:       args.Damage,
				Captures:     args.Captures,
				Pickups:      args.Pickups,
				CarrierKills: args.CarrierKills,
				Returns:      args.Returns,
			})
			if err != nil {
				return usecase.Message{}, err
			}
			return done(fmt.Sprintf("Stats recorded for <@%s>.", pilot)), nil
		}))
	d.registry.Register(d.adminCommand("clearstats", "clearstats", "Remove every stat line from this match.",
		func(ctx context.Context, inv *Invocation) (usecase.Message, error) {
			if _, err := s.ClearStats(ctx, inv.Challenge.ID); err != nil {
				return usecase.Message{}, err
			}
			return done("Stats cleared."), nil
		}))

	d.registry.Register(d.adminCommand("restrict", "restrict",
		"Limit this match to the pilots on both rosters right now.",
		challengeStep(func(ctx context.Context, inv *Invocation) (challenge.Challenge, error) {
			return s.Restrict(ctx, inv.Challenge.ID)
		})))
	d.registry.Register(d.adminCommand("unrestrict", "unrestrict", "Let any rostered pilot play this match.",
		challengeStep(func(ctx context.Context, inv *Invocation) (challenge.Challenge, error) {
			return s.Unrestrict(ctx, inv.Challenge.ID)
		})))
	d.registry.Register(d.adminCommand("authorize", "authorize <TAG> <@pilot>",
		"Allow a pilot to play for a team in this restricted match.",
		challengeStep(func(ctx context.Context, inv *Invocation) (challenge.Challenge, error) {
			teamID, pilot, err := d.bindAuthorization(ctx, inv.Args)
			if err != nil {
				return challenge.Challenge{}, err
			}
			return s.AuthorizePilot(ctx, inv.Challenge.ID, teamID, pilot)
		})))
	d.registry.Register(d.adminCommand("deauthorize", "deauthorize <TAG> <@pilot>",
		"Remove a pilot from a team's authorized list.",
		challengeStep(func(ctx context.Context, inv *Invocation) (challenge.Challenge, error) {
			teamID, pilot, err := d.bindAuthorization(ctx, inv.Args)
			if err != nil {
				return challenge.Challenge{}, err
			}
			return s.RevokePilot(ctx, inv.Challenge.ID, teamID, pilot)
		})))

	matchup := d.adminCommand("matchup", "matchup <TAG> <TAG> [title]", "Open a challenge between two teams.",
		func(ctx context.Context, inv *Invocation) (usecase.Message, error) {
			var args matchupArgs
			if err := d.binder.bind(inv.Args, &args); err != nil {
				return usecase.Message{}, err
			}
			challenging, err := d.teams.GetByTag(ctx, args.Challenging)
			if err != nil {
				return usecase.Message{}, err
			}
			challenged, err := d.teams.GetByTag(ctx, args.Challenged)
			if err != nil {
				return usecase.Message{}, err
			}
			return d.openChallenge(ctx, inv, challenging, challenged, usecase.CreateChallengeInput{
				Title:        args.Title,
				AdminCreated: true,
			})
		})
	matchup.Global = true
	d.registry.Register(matchup)
}

func (d *Dispatcher) bindTeamTag(ctx context.Context, raw []string) (team.Team, error) {
	var args tagArgs
	if err := d.binder.bind(raw, &args); err != nil {
		return team.Team{}, err
	}
	return d.teams.GetByTag(ctx, args.Tag)
}

func (d *Dispatcher) bindAuthorization(ctx context.Context, raw []string) (string, string, error) {
	var args authorizeArgs
	if err := d.binder.bind(raw, &args); err != nil {
		return "", "", err
	}
	pilot, ok := pilotID(args.Pilot)
	if !ok {
		return "", "", usagef("%q is not a Discord user", args.Pilot)
	}
	t, err := d.teams.GetByTag(ctx, args.Tag)
	if err != nil {
		return "", "", err
	}
	return t.ID, pilot, nil
}

// openChallenge creates the challenge channel first so the service's
// greeting lands in it.
func (d *Dispatcher) openChallenge(
	ctx context.Context,
	inv *Invocation,
	challenging team.Team,
	challenged team.Team,
	input usecase.CreateChallengeInput,
) (usecase.Message, error) {
	channelID := inv.ChannelID
	if d.channels != nil {
		created, err := d.channels.CreateChallengeChannel(ctx, challenging.Tag, challenged.Tag)
		if err != nil {
			return usecase.Message{}, err
		}
		channelID = created
	}

	input.ChallengingTeamID = challenging.ID
	input.ChallengedTeamID = challenged.ID
	input.ChannelID = channelID
	item, err := d.challenges.Create(ctx, input)
	if err != nil {
		return usecase.Message{}, err
	}
	return usecase.Message{
		Title: "Challenge created",
		Text:  fmt.Sprintf("%s vs %s is open in <#%s>.", challenging.Tag, challenged.Tag, item.ChannelID),
		Color: usecase.ColorSuccess,
	}, nil
}

func done(text string) usecase.Message {
	return usecase.Message{Title: "Done", Text: text, Color: usecase.ColorSuccess}
}
