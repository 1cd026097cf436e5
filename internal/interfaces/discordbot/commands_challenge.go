package discordbot

import (
	"context"

	"github.com/riskibarqy/overload-teams-league/internal/domain/challenge"
	"github.com/riskibarqy/overload-teams-league/internal/domain/team"
	"github.com/riskibarqy/overload-teams-league/internal/usecase"
)

type gameTypeArgs struct {
	GameType string `arg:"0" name:"game type" validate:"required,oneof=TA CTF ta ctf"`
}

type teamSizeArgs struct {
	Size int `arg:"0" name:"team size" validate:"required,min=1"`
}

type mapArgs struct {
	Map string `arg:"rest" name:"map" validate:"required,max=100"`
}

type pickArgs struct {
	Index int `arg:"0" name:"map number" validate:"required,min=1"`
}

type timeArgs struct {
	At string `arg:"rest" name:"time" validate:"required"`
}

type scoreArgs struct {
	Score1 int `arg:"0" name:"first score" validate:"min=0"`
	Score2 int `arg:"1" name:"second score" validate:"min=0"`
}

type noArgs struct{}

// challengeStep adapts a service call that posts its own channel message.
func challengeStep(fn func(ctx context.Context, inv *Invocation) (challenge.Challenge, error)) HandlerFunc {
	return func(ctx context.Context, inv *Invocation) (usecase.Message, error) {
		_, err := fn(ctx, inv)
		return usecase.Message{}, err
	}
}

func (d *Dispatcher) captainCommand(name, usage, help string, run HandlerFunc) Command {
	return Command{
		Name:        name,
		Usage:       d.cfg.Prefix + usage,
		Help:        help,
		Simulatable: true,
		NeedsTeam:   true,
		Run:         run,
	}
}

func (d *Dispatcher) registerChallengeCommands() {
	s := d.challenges

	d.registry.Register(d.captainCommand("gametype", "gametype <TA|CTF>", "Suggest the game type.",
		challengeStep(func(ctx context.Context, inv *Invocation) (challenge.Challenge, error) {
			var args gameTypeArgs
			if err := d.binder.bind(inv.Args, &args); err != nil {
				return challenge.Challenge{}, err
			}
			gameType, err := team.ParseGameType(args.GameType)
			if err != nil {
				return challenge.Challenge{}, usagef("%v", err)
			}
			return s.SuggestGameType(ctx, inv.Challenge.ID, inv.Team.ID, gameType)
		})))
	d.registry.Register(d.captainCommand("confirmgametype", "confirmgametype", "Accept the suggested game type.",
		challengeStep(func(ctx context.Context, inv *Invocation) (challenge.Challenge, error) {
			if err := d.binder.bind(inv.Args, &noArgs{}); err != nil {
				return challenge.Challenge{}, err
			}
			return s.ConfirmGameType(ctx, inv.Challenge.ID, inv.Team.ID)
		})))

	d.registry.Register(d.captainCommand("teamsize", "teamsize <pilots>", "Suggest the number of pilots per team.",
		challengeStep(func(ctx context.Context, inv *Invocation) (challenge.Challenge, error) {
			var args teamSizeArgs
			if err := d.binder.bind(inv.Args, &args); err != nil {
				return challenge.Challenge{}, err
			}
			return s.SuggestTeamSize(ctx, inv.Challenge.ID, inv.Team.ID, args.Size)
		})))
	d.registry.Register(d.captainCommand("confirmteamsize", "confirmteamsize", "Accept the suggested team size.",
		challengeStep(func(ctx context.Context, inv *Invocation) (challenge.Challenge, error) {
			if err := d.binder.bind(inv.Args, &noArgs{}); err != nil {
				return challenge.Challenge{}, err
			}
			return s.ConfirmTeamSize(ctx, inv.Challenge.ID, inv.Team.ID)
		})))

	d.registry.Register(d.captainCommand("suggestmap", "suggestmap <map>", "Suggest a neutral map.",
		challengeStep(func(ctx context.Context, inv *Invocation) (challenge.Challenge, error) {
			var args mapArgs
			if err := d.binder.bind(inv.Args, &args); err != nil {
				return challenge.Challenge{}, err
			}
			return s.SuggestMap(ctx, inv.Challenge.ID, inv.Team.ID, args.Map)
		})))
	d.registry.Register(d.captainCommand("confirmmap", "confirmmap", "Accept the suggested neutral map.",
		challengeStep(func(ctx context.Context, inv *Invocation) (challenge.Challenge, error) {
			if err := d.binder.bind(inv.Args, &noArgs{}); err != nil {
				return challenge.Challenge{}, err
			}
			return s.ConfirmMap(ctx, inv.Challenge.ID, inv.Team.ID)
		})))
	d.registry.Register(d.captainCommand("pickmap", "pickmap <number>", "Pick a map from the home map team's list.",
		challengeStep(func(ctx context.Context, inv *Invocation) (challenge.Challenge, error) {
			var args pickArgs
			if err := d.binder.bind(inv.Args, &args); err != nil {
				return challenge.Challenge{}, err
			}
			return s.PickMap(ctx, inv.Challenge.ID, inv.Team.ID, args.Index)
		})))

	d.registry.Register(d.captainCommand("suggesttime", "suggesttime <YYYY-MM-DD> <HH:MM> [zone]", "Suggest the match time.",
		challengeStep(func(ctx context.Context, inv *Invocation) (challenge.Challenge, error) {
			var args timeArgs
			if err := d.binder.bind(inv.Args, &args); err != nil {
				return challenge.Challenge{}, err
			}
			at, err := parseMatchTime(args.At)
			if err != nil {
				return challenge.Challenge{}, err
			}
			return s.SuggestTime(ctx, inv.Challenge.ID, inv.Team.ID, at)
		})))
	d.registry.Register(d.captainCommand("confirmtime", "confirmtime", "Accept the suggested match time.",
		challengeStep(func(ctx context.Context, inv *Invocation) (challenge.Challenge, error) {
			if err := d.binder.bind(inv.Args, &noArgs{}); err != nil {
				return challenge.Challenge{}, err
			}
			return s.ConfirmTime(ctx, inv.Challenge.ID, inv.Team.ID)
		})))

	d.registry.Register(d.captainCommand("suggestneutralserver", "suggestneutralserver", "Suggest playing on a neutral server.",
		challengeStep(func(ctx context.Context, inv *Invocation) (challenge.Challenge, error) {
			return s.SuggestNeutralServer(ctx, inv.Challenge.ID, inv.Team.ID)
		})))
	d.registry.Register(d.captainCommand("confirmneutralserver", "confirmneutralserver", "Accept playing on a neutral server.",
		challengeStep(func(ctx context.Context, inv *Invocation) (challenge.Challenge, error) {
			return s.ConfirmNeutralServer(ctx, inv.Challenge.ID, inv.Team.ID)
		})))

	d.registry.Register(d.captainCommand("clock", "clock", "Start the scheduling deadline on this challenge.",
		challengeStep(func(ctx context.Context, inv *Invocation) (challenge.Challenge, error) {
			return s.Clock(ctx, inv.Challenge.ID, inv.Team.ID)
		})))

	d.registry.Register(d.captainCommand("report", "report <score> <score>", "Report the result as the losing team.",
		challengeStep(func(ctx context.Context, inv *Invocation) (challenge.Challenge, error) {
			var args scoreArgs
			if err := d.binder.bind(inv.Args, &args); err != nil {
				return challenge.Challenge{}, err
			}
			if len(inv.Args) < 2 {
				return challenge.Challenge{}, usagef("both scores are required")
			}
			return s.ReportMatch(ctx, inv.Challenge.ID, inv.Team.ID, args.Score1, args.Score2)
		})))
	d.registry.Register(d.captainCommand("confirm", "confirm", "Confirm the reported result.",
		challengeStep(func(ctx context.Context, inv *Invocation) (challenge.Challenge, error) {
			return s.ConfirmMatch(ctx, inv.Challenge.ID, inv.Team.ID)
		})))
	d.registry.Register(d.captainCommand("rematch", "rematch", "Ask for a rematch after the result is confirmed.",
		challengeStep(func(ctx context.Context, inv *Invocation) (challenge.Challenge, error) {
			return s.RequestRematch(ctx, inv.Challenge.ID, inv.Team.ID)
		})))
	d.registry.Register(d.captainCommand("confirmrematch", "confirmrematch", "Accept the rematch request.",
		challengeStep(func(ctx context.Context, inv *Invocation) (challenge.Challenge, error) {
			return s.ConfirmRematch(ctx, inv.Challenge.ID, inv.Team.ID)
		})))

	d.registry.Register(Command{
		Name: "stream", Usage: d.cfg.Prefix + "stream", Help: "Announce that you are streaming this match.",
		Run: challengeStep(func(ctx context.Context, inv *Invocation) (challenge.Challenge, error) {
			return s.AddStreamer(ctx, inv.Challenge.ID, inv.AuthorID)
		}),
	})
	d.registry.Register(Command{
		Name: "unstream", Usage: d.cfg.Prefix + "unstream", Help: "Stop announcing your stream.",
		Run: challengeStep(func(ctx context.Context, inv *Invocation) (challenge.Challenge, error) {
			return s.RemoveStreamer(ctx, inv.Challenge.ID, inv.AuthorID)
		}),
	})
	d.registry.Register(Command{
		Name: "cast", Usage: d.cfg.Prefix + "cast", Help: "Become the caster of this match.",
		Run: challengeStep(func(ctx context.Context, inv *Invocation) (challenge.Challenge, error) {
			return s.SetCaster(ctx, inv.Challenge.ID, inv.AuthorID)
		}),
	})
	d.registry.Register(Command{
		Name: "uncast", Usage: d.cfg.Prefix + "uncast", Help: "Step down as caster.",
		Run: challengeStep(func(ctx context.Context, inv *Invocation) (challenge.Challenge, error) {
			return s.UnsetCaster(ctx, inv.Challenge.ID, inv.AuthorID)
		}),
	})
	d.registry.Register(Command{
		Name: "matchinfo", Aliases: []string{"challengeinfo"}, Usage: d.cfg.Prefix + "matchinfo",
		Help: "Show the state of this challenge.",
		Run: func(ctx context.Context, inv *Invocation) (usecase.Message, error) {
			return d.describeChallenge(ctx, inv.Challenge), nil
		},
	})
}
