package usecase

import (
	"context"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/overload-teams-league/internal/domain/challenge"
	"github.com/riskibarqy/overload-teams-league/internal/domain/league"
	"github.com/riskibarqy/overload-teams-league/internal/domain/team"
	idgen "github.com/riskibarqy/overload-teams-league/internal/platform/id"
	"github.com/riskibarqy/overload-teams-league/internal/platform/logging"
)

// CreateTeamInput is the payload for founding a team.
type CreateTeamInput struct {
	FounderID string
	Name      string
	Tag       string
	Color     string
}

type TeamService struct {
	teamRepo      team.Repository
	challengeRepo challenge.Repository
	rules         league.Rules
	idGen         idgen.Generator
	logger        *logging.Logger
	now           func() time.Time
}

func NewTeamService(
	teamRepo team.Repository,
	challengeRepo challenge.Repository,
	rules league.Rules,
	idGen idgen.Generator,
	logger *logging.Logger,
) *TeamService {
	if logger == nil {
		logger = logging.Default()
	}

	return &TeamService{
		teamRepo:      teamRepo,
		challengeRepo: challengeRepo,
		rules:         rules,
		idGen:         idGen,
		logger:        logger.Named("team"),
		now:           time.Now,
	}
}

func (s *TeamService) Create(ctx context.Context, input CreateTeamInput) (team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.Create")
	defer span.End()

	input.FounderID = strings.TrimSpace(input.FounderID)
	if input.FounderID == "" {
		return team.Team{}, invalidInputf("founder id is required")
	}
	name, err := team.NormalizeName(input.Name)
	if err != nil {
		return team.Team{}, invalidInput(err)
	}
	tag, err := team.NormalizeTag(input.Tag)
	if err != nil {
		return team.Team{}, invalidInput(err)
	}
	color := ""
	if strings.TrimSpace(input.Color) != "" {
		if color, err = team.NormalizeColor(input.Color); err != nil {
			return team.Team{}, invalidInput(err)
		}
	}

	if err := s.requireLeadershipAllowed(ctx, input.FounderID); err != nil {
		return team.Team{}, err
	}
	if err := s.requireUnaffiliated(ctx, input.FounderID); err != nil {
		return team.Team{}, err
	}
	if err := s.requireUniqueIdentity(ctx, "", name, tag); err != nil {
		return team.Team{}, err
	}

	teamID, err := s.idGen.NewID()
	if err != nil {
		return team.Team{}, crerr.Wrap(err, "generate team id")
	}

	now := s.now().UTC()
	item := team.Team{
		ID:          teamID,
		Name:        name,
		Tag:         tag,
		Color:       color,
		FounderID:   input.FounderID,
		PilotIDs:    []string{input.FounderID},
		League:      league.DivisionLower,
		HomeMaps:    map[team.GameType][]string{},
		NeutralMaps: map[team.GameType]string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := item.Validate(); err != nil {
		return team.Team{}, invalidInputf("%v", err)
	}
	if err := s.teamRepo.Create(ctx, item); err != nil {
		return team.Team{}, databaseError(err, "create team")
	}

	s.logger.InfoContext(ctx, "team founded", "team_id", item.ID, "tag", item.Tag, "founder_id", item.FounderID)
	return item, nil
}

func (s *TeamService) Get(ctx context.Context, teamID string) (team.Team, error) {
	item, exists, err := s.teamRepo.GetByID(ctx, strings.TrimSpace(teamID))
	if err != nil {
		return team.Team{}, databaseError(err, "get team")
	}
	if !exists {
		return team.Team{}, notFoundf("team=%s", teamID)
	}
	return item, nil
}

func (s *TeamService) GetByTag(ctx context.Context, tag string) (team.Team, error) {
	item, exists, err := s.teamRepo.GetByTag(ctx, strings.ToUpper(strings.TrimSpace(tag)))
	if err != nil {
		return team.Team{}, databaseError(err, "get team by tag")
	}
	if !exists {
		return team.Team{}, notFoundf("team tag=%s", tag)
	}
	return item, nil
}

// GetByPilot returns the active team a pilot is on.
func (s *TeamService) GetByPilot(ctx context.Context, pilotID string) (team.Team, bool, error) {
	item, exists, err := s.teamRepo.GetByPilot(ctx, pilotID)
	if err != nil {
		return team.Team{}, false, databaseError(err, "get team by pilot")
	}
	return item, exists, nil
}

func (s *TeamService) List(ctx context.Context) ([]team.Team, error) {
	items, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, databaseError(err, "list teams")
	}
	return items, nil
}

func (s *TeamService) AddPilot(ctx context.Context, teamID, pilotID string, capExempt bool) (team.Team, error) {
	if err := s.requireUnaffiliated(ctx, pilotID); err != nil {
		return team.Team{}, err
	}
	return s.mutate(ctx, teamID, "add pilot", func(t *team.Team) error {
		return team.AddPilot(t, pilotID, capExempt, s.rules)
	})
}

func (s *TeamService) AddGuest(ctx context.Context, teamID, pilotID string) (team.Team, error) {
	return s.AddPilot(ctx, teamID, pilotID, true)
}

func (s *TeamService) RemovePilot(ctx context.Context, teamID, pilotID string) (team.Team, error) {
	return s.mutate(ctx, teamID, "remove pilot", func(t *team.Team) error {
		return team.RemovePilot(t, pilotID)
	})
}

// PilotLeft handles a pilot leaving the server. A departing founder leaves
// the team without a leader, which an admin has to resolve.
func (s *TeamService) PilotLeft(ctx context.Context, pilotID string) (team.Team, error) {
	item, exists, err := s.teamRepo.GetByPilot(ctx, pilotID)
	if err != nil {
		return team.Team{}, databaseError(err, "get team by pilot")
	}
	if !exists {
		return team.Team{}, notFoundf("pilot=%s is not on a team", pilotID)
	}
	if item.IsFounder(pilotID) {
		return item, criticalError(
			crerr.Newf("founder of %s left the server", item.Tag),
			"needs manual resolution",
		)
	}

	return s.mutate(ctx, item.ID, "pilot left", func(t *team.Team) error {
		team.DropPilot(t, pilotID)
		return nil
	})
}

func (s *TeamService) AddCaptain(ctx context.Context, teamID, pilotID string) (team.Team, error) {
	if err := s.requireLeadershipAllowed(ctx, pilotID); err != nil {
		return team.Team{}, err
	}
	return s.mutate(ctx, teamID, "add captain", func(t *team.Team) error {
		return team.AddCaptain(t, pilotID, s.rules)
	})
}

func (s *TeamService) RemoveCaptain(ctx context.Context, teamID, pilotID string) (team.Team, error) {
	return s.mutate(ctx, teamID, "remove captain", func(t *team.Team) error {
		return team.RemoveCaptain(t, pilotID)
	})
}

func (s *TeamService) TransferFounder(ctx context.Context, teamID, newFounderID string) (team.Team, error) {
	if err := s.requireLeadershipAllowed(ctx, newFounderID); err != nil {
		return team.Team{}, err
	}
	return s.mutate(ctx, teamID, "transfer founder", func(t *team.Team) error {
		return team.TransferFounder(t, newFounderID, s.rules)
	})
}

func (s *TeamService) AddHomeMap(ctx context.Context, teamID string, gameType team.GameType, mapName string) (team.Team, error) {
	return s.mutate(ctx, teamID, "add home map", func(t *team.Team) error {
		return team.AddHomeMap(t, gameType, mapName, s.rules)
	})
}

func (s *TeamService) RemoveHomeMap(ctx context.Context, teamID string, gameType team.GameType, mapName string) (team.Team, error) {
	return s.mutate(ctx, teamID, "remove home map", func(t *team.Team) error {
		return team.RemoveHomeMap(t, gameType, mapName)
	})
}

func (s *TeamService) SetNeutralMap(ctx context.Context, teamID string, gameType team.GameType, mapName string) (team.Team, error) {
	return s.mutate(ctx, teamID, "set neutral map", func(t *team.Team) error {
		return team.SetNeutralMap(t, gameType, mapName)
	})
}

func (s *TeamService) ClearNeutralMap(ctx context.Context, teamID string, gameType team.GameType) (team.Team, error) {
	return s.mutate(ctx, teamID, "clear neutral map", func(t *team.Team) error {
		return team.ClearNeutralMap(t, gameType)
	})
}

// Disband may be started by the founder or an admin. Open challenges of the
// team are voided afterwards; a failure there is critical since the team is
// already gone.
func (s *TeamService) Disband(ctx context.Context, teamID, initiatorID string, isAdmin bool) (team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.Disband")
	defer span.End()

	var leaders []string
	item, err := s.mutate(ctx, teamID, "disband team", func(t *team.Team) error {
		if !isAdmin && !t.IsFounder(initiatorID) {
			return unauthorizedf("only the founder or an admin can disband %s", t.Tag)
		}
		var err error
		leaders, err = team.Disband(t, s.now().UTC())
		return err
	})
	if err != nil {
		return team.Team{}, err
	}

	s.logger.InfoContext(ctx, "team disbanded", "team_id", item.ID, "tag", item.Tag, "initiator_id", initiatorID, "leaders", leaders)
	if err := voidOpenChallenges(ctx, s.challengeRepo, item.ID, s.now().UTC()); err != nil {
		return item, criticalError(err, "void open challenges of disbanded team")
	}
	return item, nil
}

func (s *TeamService) Reinstate(ctx context.Context, teamID, newFounderID string) (team.Team, error) {
	if err := s.requireLeadershipAllowed(ctx, newFounderID); err != nil {
		return team.Team{}, err
	}
	if err := s.requireUnaffiliated(ctx, newFounderID); err != nil {
		return team.Team{}, err
	}
	return s.mutate(ctx, teamID, "reinstate team", func(t *team.Team) error {
		return team.Reinstate(t, newFounderID)
	})
}

func (s *TeamService) Qualify(ctx context.Context, teamID string, qualified bool) (team.Team, error) {
	return s.mutate(ctx, teamID, "qualify team", func(t *team.Team) error {
		t.Qualified = qualified
		return nil
	})
}

func (s *TeamService) SetLeague(ctx context.Context, teamID string, division league.Division) (team.Team, error) {
	return s.mutate(ctx, teamID, "set league", func(t *team.Team) error {
		t.League = division
		return nil
	})
}

func (s *TeamService) SetLock(ctx context.Context, teamID string, locked bool) (team.Team, error) {
	return s.mutate(ctx, teamID, "set lock", func(t *team.Team) error {
		t.Locked = locked
		return nil
	})
}

func (s *TeamService) Rename(ctx context.Context, teamID, name, tag string) (team.Team, error) {
	name, err := team.NormalizeName(name)
	if err != nil {
		return team.Team{}, invalidInput(err)
	}
	tag, err = team.NormalizeTag(tag)
	if err != nil {
		return team.Team{}, invalidInput(err)
	}
	if err := s.requireUniqueIdentity(ctx, teamID, name, tag); err != nil {
		return team.Team{}, err
	}
	return s.mutate(ctx, teamID, "rename team", func(t *team.Team) error {
		t.Name = name
		t.Tag = tag
		return nil
	})
}

func (s *TeamService) ChangeColor(ctx context.Context, teamID, color string) (team.Team, error) {
	color, err := team.NormalizeColor(color)
	if err != nil {
		return team.Team{}, invalidInput(err)
	}
	return s.mutate(ctx, teamID, "change color", func(t *team.Team) error {
		t.Color = color
		return nil
	})
}

// MemberAllowedToBeCaptain reports whether a pilot may hold founder or
// captain powers on any team.
func (s *TeamService) MemberAllowedToBeCaptain(ctx context.Context, pilotID string) (bool, error) {
	banned, err := s.teamRepo.IsLeadershipBanned(ctx, pilotID)
	if err != nil {
		return false, databaseError(err, "check leadership ban")
	}
	return !banned, nil
}

// RequireCaptain returns the pilot's team when the pilot has captain powers.
func (s *TeamService) RequireCaptain(ctx context.Context, pilotID string) (team.Team, error) {
	item, exists, err := s.GetByPilot(ctx, pilotID)
	if err != nil {
		return team.Team{}, err
	}
	if !exists {
		return team.Team{}, unauthorizedf("you must be on a team to use this command")
	}
	if !item.IsCaptain(pilotID) {
		return team.Team{}, unauthorizedf("you must be a captain of %s to use this command", item.Tag)
	}
	return item, nil
}

// RequireFounder returns the pilot's team when the pilot founded it.
func (s *TeamService) RequireFounder(ctx context.Context, pilotID string) (team.Team, error) {
	item, exists, err := s.GetByPilot(ctx, pilotID)
	if err != nil {
		return team.Team{}, err
	}
	if !exists || !item.IsFounder(pilotID) {
		return team.Team{}, unauthorizedf("you must be a team founder to use this command")
	}
	return item, nil
}

func (s *TeamService) mutate(ctx context.Context, teamID, op string, fn func(t *team.Team) error) (team.Team, error) {
	item, err := s.Get(ctx, teamID)
	if err != nil {
		return team.Team{}, err
	}

	if err := fn(&item); err != nil {
		return team.Team{}, classify(err)
	}
	item.UpdatedAt = s.now().UTC()
	if err := s.teamRepo.Update(ctx, item); err != nil {
		return team.Team{}, databaseError(err, op)
	}
	item.Version++

	s.logger.DebugContext(ctx, "team updated", "team_id", item.ID, "op", op, "version", item.Version)
	return item, nil
}

func (s *TeamService) requireLeadershipAllowed(ctx context.Context, pilotID string) error {
	allowed, err := s.MemberAllowedToBeCaptain(ctx, pilotID)
	if err != nil {
		return err
	}
	if !allowed {
		return invalidInputf("pilot is barred from leading a team")
	}
	return nil
}

func (s *TeamService) requireUnaffiliated(ctx context.Context, pilotID string) error {
	if strings.TrimSpace(pilotID) == "" {
		return invalidInputf("pilot id is required")
	}
	current, exists, err := s.GetByPilot(ctx, pilotID)
	if err != nil {
		return err
	}
	if exists {
		return invalidInputf("pilot is already on team %s", current.Tag)
	}
	return nil
}

func (s *TeamService) requireUniqueIdentity(ctx context.Context, teamID, name, tag string) error {
	byName, exists, err := s.teamRepo.GetByName(ctx, name)
	if err != nil {
		return databaseError(err, "get team by name")
	}
	if exists && byName.ID != teamID {
		return invalidInputf("team name %q is already taken", name)
	}
	byTag, exists, err := s.teamRepo.GetByTag(ctx, tag)
	if err != nil {
		return databaseError(err, "get team by tag")
	}
	if exists && byTag.ID != teamID {
		return invalidInputf("team tag %q is already taken", tag)
	}
	return nil
}

// classify attaches a kind to errors coming out of domain rules.
func classify(err error) error {
	if crerr.Is(err, team.ErrValidation) || crerr.Is(err, challenge.ErrValidation) {
		return invalidInput(err)
	}
	return err
}

// voidOpenChallenges voids every open challenge of a team, continuing past
// individual failures.
func voidOpenChallenges(ctx context.Context, repo challenge.Repository, teamID string, now time.Time) error {
	open, err := repo.ListOpenByTeam(ctx, teamID)
	if err != nil {
		return crerr.Wrap(err, "list open challenges")
	}

	var errs []error
	for _, item := range open {
		if err := challenge.Void(&item, now); err != nil {
			continue
		}
		if err := repo.Update(ctx, item); err != nil {
			errs = append(errs, crerr.Wrapf(err, "void challenge=%s", item.ID))
		}
	}
	return crerr.Join(errs...)
}
