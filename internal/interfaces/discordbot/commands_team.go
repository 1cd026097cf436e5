package discordbot

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/overload-teams-league/internal/domain/league"
	"github.com/riskibarqy/overload-teams-league/internal/domain/team"
	"github.com/riskibarqy/overload-teams-league/internal/usecase"
)

type createTeamArgs struct {
	Tag  string `arg:"0" name:"tag" validate:"required,max=5"`
	Name string `arg:"rest" name:"name" validate:"required,max=25"`
}

type pilotArgs struct {
	Pilot string `arg:"0" name:"pilot" validate:"required"`
}

type homeMapArgs struct {
	GameType string `arg:"0" name:"game type" validate:"required,oneof=TA CTF ta ctf"`
	Map      string `arg:"rest" name:"map" validate:"required,max=100"`
}

type colorArgs struct {
	Color string `arg:"0" name:"color" validate:"required"`
}

type teamToggleArgs struct {
	Tag string `arg:"0" name:"team tag" validate:"required"`
	On  string `arg:"1" name:"yes or no" validate:"required"`
}

type divisionArgs struct {
	Tag      string `arg:"0" name:"team tag" validate:"required"`
	Division string `arg:"1" name:"division" validate:"required,oneof=upper lower"`
}

type reinstateArgs struct {
	Tag   string `arg:"0" name:"team tag" validate:"required"`
	Pilot string `arg:"1" name:"founder" validate:"required"`
}

func (d *Dispatcher) registerTeamCommands() {
	s := d.teams

	d.registry.Register(Command{
		Name: "challenge", Usage: d.cfg.Prefix + "challenge <TAG>", Help: "Challenge another team.",
		Global: true, Simulatable: true, NeedsTeam: true,
		Run: func(ctx context.Context, inv *Invocation) (usecase.Message, error) {
			opponent, err := d.bindTeamTag(ctx, inv.Args)
			if err != nil {
				return usecase.Message{}, err
			}
			return d.openChallenge(ctx, inv, inv.Team, opponent, usecase.CreateChallengeInput{})
		},
	})

	d.registry.Register(Command{
		Name: "createteam", Usage: d.cfg.Prefix + "createteam <TAG> <name>", Help: "Found a new team.",
		Global: true,
		Run: func(ctx context.Context, inv *Invocation) (usecase.Message, error) {
			var args createTeamArgs
			if err := d.binder.bind(inv.Args, &args); err != nil {
				return usecase.Message{}, err
			}
			t, err := s.Create(ctx, usecase.CreateTeamInput{FounderID: inv.AuthorID, Name: args.Name, Tag: args.Tag})
			if err != nil {
				return usecase.Message{}, err
			}
			return done(fmt.Sprintf("%s (%s) has been founded.", t.Name, t.Tag)), nil
		},
	})

	d.registerRosterCommand(false, "addpilot", "addpilot <@pilot>", "Add a pilot to your roster.",
		func(ctx context.Context, t team.Team, pilot string) (string, error) {
			_, err := s.AddPilot(ctx, t.ID, pilot, false)
			return fmt.Sprintf("<@%s> joined %s.", pilot, t.Tag), err
		})
	d.registerRosterCommand(false, "addguest", "addguest <@pilot>", "Add a guest who does not count toward the roster cap.",
		func(ctx context.Context, t team.Team, pilot string) (string, error) {
			_, err := s.AddGuest(ctx, t.ID, pilot)
			return fmt.Sprintf("<@%s> joined %s as a guest.", pilot, t.Tag), err
		})
	d.registerRosterCommand(false, "removepilot", "removepilot <@pilot>", "Remove a pilot from your roster.",
		func(ctx context.Context, t team.Team, pilot string) (string, error) {
			_, err := s.RemovePilot(ctx, t.ID, pilot)
			return fmt.Sprintf("<@%s> was removed from %s.", pilot, t.Tag), err
		})
	d.registerRosterCommand(true, "addcaptain", "addcaptain <@pilot>", "Make a pilot a captain.",
		func(ctx context.Context, t team.Team, pilot string) (string, error) {
			_, err := s.AddCaptain(ctx, t.ID, pilot)
			return fmt.Sprintf("<@%s> is now a captain of %s.", pilot, t.Tag), err
		})
	d.registerRosterCommand(true, "removecaptain", "removecaptain <@pilot>", "Take captain powers away from a pilot.",
		func(ctx context.Context, t team.Team, pilot string) (string, error) {
			_, err := s.RemoveCaptain(ctx, t.ID, pilot)
			return fmt.Sprintf("<@%s> is no longer a captain of %s.", pilot, t.Tag), err
		})
	d.registerRosterCommand(true, "makefounder", "makefounder <@pilot>", "Hand the team over to another pilot.",
		func(ctx context.Context, t team.Team, pilot string) (string, error) {
			_, err := s.TransferFounder(ctx, t.ID, pilot)
			return fmt.Sprintf("<@%s> is now the founder of %s.", pilot, t.Tag), err
		})

	d.registry.Register(Command{
		Name: "leave", Usage: d.cfg.Prefix + "leave", Help: "Leave your team.", Global: true,
		Run: func(ctx context.Context, inv *Invocation) (usecase.Message, error) {
			t, exists, err := s.GetByPilot(ctx, inv.AuthorID)
			if err != nil {
				return usecase.Message{}, err
			}
			if !exists {
				return usecase.Message{}, usagef("you are not on a team")
			}
			if _, err := s.RemovePilot(ctx, t.ID, inv.AuthorID); err != nil {
				return usecase.Message{}, err
			}
			return done(fmt.Sprintf("You left %s.", t.Tag)), nil
		},
	})

	d.registerMapCommand("addhomemap", "addhomemap <TA|CTF> <map>", "Add a home map.",
		func(ctx context.Context, t team.Team, gameType team.GameType, mapName string) (string, error) {
			_, err := s.AddHomeMap(ctx, t.ID, gameType, mapName)
			return fmt.Sprintf("%s added to %s home maps for %s.", mapName, t.Tag, gameType), err
		})
	d.registerMapCommand("removehomemap", "removehomemap <TA|CTF> <map>", "Remove a home map.",
		func(ctx context.Context, t team.Team, gameType team.GameType, mapName string) (string, error) {
			_, err := s.RemoveHomeMap(ctx, t.ID, gameType, mapName)
			return fmt.Sprintf("%s removed from %s home maps for %s.", mapName, t.Tag, gameType), err
		})
	d.registerMapCommand("neutralmap", "neutralmap <TA|CTF> <map>", "Propose a neutral map for the league pool.",
		func(ctx context.Context, t team.Team, gameType team.GameType, mapName string) (string, error) {
			_, err := s.SetNeutralMap(ctx, t.ID, gameType, mapName)
			return fmt.Sprintf("%s set %s as its %s neutral map.", t.Tag, mapName, gameType), err
		})
	d.registry.Register(Command{
		Name: "clearneutralmap", Usage: d.cfg.Prefix + "clearneutralmap <TA|CTF>", Help: "Withdraw your neutral map.",
		Global: true, Simulatable: true, NeedsTeam: true,
		Run: func(ctx context.Context, inv *Invocation) (usecase.Message, error) {
			var args gameTypeArgs
			if err := d.binder.bind(inv.Args, &args); err != nil {
				return usecase.Message{}, err
			}
			gameType, err := team.ParseGameType(args.GameType)
			if err != nil {
				return usecase.Message{}, usagef("%v", err)
			}
			if _, err := s.ClearNeutralMap(ctx, inv.Team.ID, gameType); err != nil {
				return usecase.Message{}, err
			}
			return done(fmt.Sprintf("%s cleared its %s neutral map.", inv.Team.Tag, gameType)), nil
		},
	})

	d.registry.Register(Command{
		Name: "disband", Usage: d.cfg.Prefix + "disband", Help: "Disband your team.",
		Global: true, Simulatable: true, NeedsTeam: true, FounderOnly: true,
		Run: func(ctx context.Context, inv *Invocation) (usecase.Message, error) {
			if _, err := s.Disband(ctx, inv.Team.ID, inv.AuthorID, inv.Simulated); err != nil {
				return usecase.Message{}, err
			}
			return done(fmt.Sprintf("%s has been disbanded.", inv.Team.Tag)), nil
		},
	})
	d.registry.Register(Command{
		Name: "rename", Usage: d.cfg.Prefix + "rename <TAG> <name>", Help: "Change your team tag and name.",
		Global: true, Simulatable: true, NeedsTeam: true,
		Run: func(ctx context.Context, inv *Invocation) (usecase.Message, error) {
			var args createTeamArgs
			if err := d.binder.bind(inv.Args, &args); err != nil {
				return usecase.Message{}, err
			}
			t, err := s.Rename(ctx, inv.Team.ID, args.Name, args.Tag)
			if err != nil {
				return usecase.Message{}, err
			}
			return done(fmt.Sprintf("%s is now %s (%s).", inv.Team.Tag, t.Name, t.Tag)), nil
		},
	})
	d.registry.Register(Command{
		Name: "color", Aliases: []string{"colour"}, Usage: d.cfg.Prefix + "color <#rrggbb>", Help: "Change your team color.",
		Global: true, Simulatable: true, NeedsTeam: true,
		Run: func(ctx context.Context, inv *Invocation) (usecase.Message, error) {
			var args colorArgs
			if err := d.binder.bind(inv.Args, &args); err != nil {
				return usecase.Message{}, err
			}
			t, err := s.ChangeColor(ctx, inv.Team.ID, args.Color)
			if err != nil {
				return usecase.Message{}, err
			}
			return done(fmt.Sprintf("%s color set to %s.", t.Tag, t.Color)), nil
		},
	})

	d.registerAdminTeamCommands()
}

func (d *Dispatcher) registerRosterCommand(founderOnly bool, name, usage, help string, fn func(ctx context.Context, t team.Team, pilot string) (string, error)) {
	d.registry.Register(Command{
		Name: name, Usage: d.cfg.Prefix + usage, Help: help,
		Global: true, Simulatable: true, NeedsTeam: true, FounderOnly: founderOnly,
		Run: func(ctx context.Context, inv *Invocation) (usecase.Message, error) {
			var args pilotArgs
			if err := d.binder.bind(inv.Args, &args); err != nil {
				return usecase.Message{}, err
			}
			pilot, ok := pilotID(args.Pilot)
			if !ok {
				return usecase.Message{}, usagef("%q is not a Discord user", args.Pilot)
			}
			text, err := fn(ctx, inv.Team, pilot)
			if err != nil {
				return usecase.Message{}, err
			}
			return done(text), nil
		},
	})
}

func (d *Dispatcher) registerMapCommand(name, usage, help string, fn func(ctx context.Context, t team.Team, gameType team.GameType, mapName string) (string, error)) {
	d.registry.Register(Command{
		Name: name, Usage: d.cfg.Prefix + usage, Help: help,
		Global: true, Simulatable: true, NeedsTeam: true,
		Run: func(ctx context.Context, inv *Invocation) (usecase.Message, error) {
			var args homeMapArgs
			if err := d.binder.bind(inv.Args, &args); err != nil {
				return usecase.Message{}, err
			}
			gameType, err := team.ParseGameType(args.GameType)
			if err != nil {
				return usecase.Message{}, usagef("%v", err)
			}
			text, err := fn(ctx, inv.Team, gameType, args.Map)
			if err != nil {
				return usecase.Message{}, err
			}
			return done(text), nil
		},
	})
}

func (d *Dispatcher) registerAdminTeamCommands() {
	s := d.teams

	admin := func(cmd Command) {
		cmd.Usage = d.cfg.Prefix + cmd.Usage
		cmd.AdminOnly = true
		cmd.Global = true
		d.registry.Register(cmd)
	}

	admin(Command{
		Name: "reinstate", Usage: "reinstate <TAG> <@founder>", Help: "Bring back a disbanded team under a new founder.",
		Run: func(ctx context.Context, inv *Invocation) (usecase.Message, error) {
			var args reinstateArgs
			if err := d.binder.bind(inv.Args, &args); err != nil {
				return usecase.Message{}, err
			}
			founder, ok := pilotID(args.Pilot)
			if !ok {
				return usecase.Message{}, usagef("%q is not a Discord user", args.Pilot)
			}
			t, err := s.GetByTag(ctx, args.Tag)
			if err != nil {
				return usecase.Message{}, err
			}
			if _, err := s.Reinstate(ctx, t.ID, founder); err != nil {
				return usecase.Message{}, err
			}
			return done(fmt.Sprintf("%s has been reinstated with <@%s> as founder.", t.Tag, founder)), nil
		},
	})
	admin(Command{
		Name: "qualify", Usage: "qualify <TAG> <yes|no>", Help: "Set whether a team's results move its opponents' ratings.",
		Run: d.teamToggle(func(ctx context.Context, t team.Team, on bool) (string, error) {
			_, err := s.Qualify(ctx, t.ID, on)
			return fmt.Sprintf("%s qualified: %t.", t.Tag, on), err
		}),
	})
	admin(Command{
		Name: "lockteam", Usage: "lockteam <TAG> <yes|no>", Help: "Freeze a team's roster.",
		Run: d.teamToggle(func(ctx context.Context, t team.Team, on bool) (string, error) {
			_, err := s.SetLock(ctx, t.ID, on)
			return fmt.Sprintf("%s roster locked: %t.", t.Tag, on), err
		}),
	})
	admin(Command{
		Name: "division", Usage: "division <TAG> <upper|lower>", Help: "Move a team to a division.",
		Run: func(ctx context.Context, inv *Invocation) (usecase.Message, error) {
			var args divisionArgs
			if err := d.binder.bind(lowerArg(inv.Args, 1), &args); err != nil {
				return usecase.Message{}, err
			}
			division, err := league.ParseDivision(args.Division)
			if err != nil {
				return usecase.Message{}, usagef("%v", err)
			}
			t, err := s.GetByTag(ctx, args.Tag)
			if err != nil {
				return usecase.Message{}, err
			}
			if _, err := s.SetLeague(ctx, t.ID, division); err != nil {
				return usecase.Message{}, err
			}
			return done(fmt.Sprintf("%s now plays in the %s division.", t.Tag, division)), nil
		},
	})
}

func (d *Dispatcher) teamToggle(fn func(ctx context.Context, t team.Team, on bool) (string, error)) HandlerFunc {
	return func(ctx context.Context, inv *Invocation) (usecase.Message, error) {
		var args teamToggleArgs
		if err := d.binder.bind(inv.Args, &args); err != nil {
			return usecase.Message{}, err
		}
		on, err := parseBool(args.On)
		if err != nil {
			return usecase.Message{}, usagef("%v", err)
		}
		t, err := d.teams.GetByTag(ctx, args.Tag)
		if err != nil {
			return usecase.Message{}, err
		}
		text, err := fn(ctx, t, on)
		if err != nil {
			return usecase.Message{}, err
		}
		return done(text), nil
	}
}

func lowerArg(args []string, idx int) []string {
	if idx >= len(args) {
		return args
	}
	out := append([]string(nil), args...)
	out[idx] = strings.ToLower(out[idx])
	return out
}
