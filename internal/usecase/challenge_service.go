package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/overload-teams-league/internal/domain/challenge"
	"github.com/riskibarqy/overload-teams-league/internal/domain/league"
	"github.com/riskibarqy/overload-teams-league/internal/domain/rating"
	"github.com/riskibarqy/overload-teams-league/internal/domain/team"
	idgen "github.com/riskibarqy/overload-teams-league/internal/platform/id"
	"github.com/riskibarqy/overload-teams-league/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

// ChallengeConfig carries the league rules and notification windows.
type ChallengeConfig struct {
	Rules                  league.Rules
	MatchStartingLead      time.Duration
	MatchMissedGrace       time.Duration
	AnnouncementsChannelID string
}

// CreateChallengeInput is the payload for opening a challenge.
type CreateChallengeInput struct {
	ChallengingTeamID string
	ChallengedTeamID  string
	ChannelID         string
	Title             string
	AdminCreated      bool
	Postseason        bool
}

type seasonRecalculator interface {
	RecalculateSeason(ctx context.Context, season int) ([]rating.TeamRating, error)
}

// ChallengeService drives a challenge through negotiation, play, and
// adjudication. Every write is an optimistic versioned update; messages are
// sent only after the write landed.
type ChallengeService struct {
	challengeRepo challenge.Repository
	teamRepo      team.Repository
	ratings       seasonRecalculator
	notifier      Notifier
	idGen         idgen.Generator
	cfg           ChallengeConfig
	logger        *logging.Logger
	now           func() time.Time
}

func NewChallengeService(
	challengeRepo challenge.Repository,
	teamRepo team.Repository,
	ratings seasonRecalculator,
	notifier Notifier,
	idGen idgen.Generator,
	cfg ChallengeConfig,
	logger *logging.Logger,
) *ChallengeService {
	if logger == nil {
		logger = logging.Default()
	}
	if notifier == nil {
		notifier = NewLogNotifier(logger)
	}

	return &ChallengeService{
		challengeRepo: challengeRepo,
		teamRepo:      teamRepo,
		ratings:       ratings,
		notifier:      notifier,
		idGen:         idGen,
		cfg:           cfg,
		logger:        logger.Named("challenge"),
		now:           time.Now,
	}
}

func (s *ChallengeService) Create(ctx context.Context, input CreateChallengeInput) (challenge.Challenge, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChallengeService.Create")
	defer span.End()

	input.ChallengingTeamID = strings.TrimSpace(input.ChallengingTeamID)
	input.ChallengedTeamID = strings.TrimSpace(input.ChallengedTeamID)
	if input.ChallengingTeamID == "" || input.ChallengedTeamID == "" {
		return challenge.Challenge{}, invalidInputf("both teams are required")
	}
	if input.ChallengingTeamID == input.ChallengedTeamID {
		return challenge.Challenge{}, invalidInputf("a team cannot challenge itself")
	}

	challenging, err := s.loadTeam(ctx, input.ChallengingTeamID)
	if err != nil {
		return challenge.Challenge{}, err
	}
	challenged, err := s.loadTeam(ctx, input.ChallengedTeamID)
	if err != nil {
		return challenge.Challenge{}, err
	}
	for _, t := range []team.Team{challenging, challenged} {
		if t.Disbanded {
			return challenge.Challenge{}, invalidInputf("team %s is disbanded", t.Tag)
		}
		if !s.challengeable(t) {
			return challenge.Challenge{}, invalidInputf("team %s needs %d home maps for a game type before it can play", t.Tag, s.cfg.Rules.HomeMapsPerGameType)
		}
	}

	open, err := s.challengeRepo.HasOpenBetween(ctx, challenging.ID, challenged.ID)
	if err != nil {
		return challenge.Challenge{}, databaseError(err, "check open challenge")
	}
	if open {
		return challenge.Challenge{}, invalidInputf("%s and %s already have an open challenge", challenging.Tag, challenged.Tag)
	}

	challengeID, err := s.idGen.NewID()
	if err != nil {
		return challenge.Challenge{}, crerr.Wrap(err, "generate challenge id")
	}

	item := challenge.Challenge{
		ID:                challengeID,
		Season:            s.cfg.Rules.CurrentSeason,
		ChannelID:         strings.TrimSpace(input.ChannelID),
		Title:             strings.TrimSpace(input.Title),
		ChallengingTeamID: challenging.ID,
		ChallengedTeamID:  challenged.ID,
		AdminCreated:      input.AdminCreated,
		Postseason:        input.Postseason,
		DateAdded:         s.now().UTC(),
	}
	challenge.DefaultHomes(&item, challenging, challenged)
	if err := item.Validate(); err != nil {
		return challenge.Challenge{}, invalidInputf("%v", err)
	}

	if err := s.challengeRepo.Create(ctx, item); err != nil {
		return challenge.Challenge{}, databaseError(err, "create challenge")
	}
	s.logger.InfoContext(ctx, "challenge created",
		"challenge_id", item.ID,
		"challenging_team_id", item.ChallengingTeamID,
		"challenged_team_id", item.ChallengedTeamID,
	)

	names := teamNames{challenging.ID: challenging.Tag, challenged.ID: challenged.Tag}
	msg := Message{
		Title: "New challenge",
		Text: fmt.Sprintf("%s has challenged %s. %s is the home map team and %s is the home server team.",
			names.of(item.ChallengingTeamID), names.of(item.ChallengedTeamID),
			names.of(item.HomeMapTeamID), names.of(item.HomeServerTeamID)),
		Color: ColorInfo,
	}
	if err := s.send(ctx, item, msg); err != nil {
		return item, criticalError(err, "announce challenge")
	}
	return item, nil
}

func (s *ChallengeService) Get(ctx context.Context, challengeID string) (challenge.Challenge, error) {
	challengeID = strings.TrimSpace(challengeID)
	if challengeID == "" {
		return challenge.Challenge{}, invalidInputf("challenge id is required")
	}
	item, exists, err := s.challengeRepo.GetByID(ctx, challengeID)
	if err != nil {
		return challenge.Challenge{}, databaseError(err, "get challenge")
	}
	if !exists {
		return challenge.Challenge{}, notFoundf("challenge=%s", challengeID)
	}
	return item, nil
}

// GetByChannel returns the latest challenge bound to a channel.
func (s *ChallengeService) GetByChannel(ctx context.Context, channelID string) (challenge.Challenge, bool, error) {
	item, exists, err := s.challengeRepo.GetByChannel(ctx, channelID)
	if err != nil {
		return challenge.Challenge{}, false, databaseError(err, "get challenge by channel")
	}
	return item, exists, nil
}

func (s *ChallengeService) ListOpenByTeam(ctx context.Context, teamID string) ([]challenge.Challenge, error) {
	items, err := s.challengeRepo.ListOpenByTeam(ctx, teamID)
	if err != nil {
		return nil, databaseError(err, "list open challenges")
	}
	return items, nil
}

// announceFunc renders the message sent after a successful write. A nil
// announceFunc skips notification.
type announceFunc func(c challenge.Challenge, names teamNames) Message

// apply loads a challenge, runs a domain transition and persists it, then
// announces the result.
func (s *ChallengeService) apply(
	ctx context.Context,
	challengeID string,
	op string,
	transition func(c *challenge.Challenge) error,
	announce announceFunc,
) (challenge.Challenge, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChallengeService."+op, attribute.String("challenge_id", challengeID))
	defer span.End()

	item, err := s.Get(ctx, challengeID)
	if err != nil {
		return challenge.Challenge{}, err
	}
	if err := transition(&item); err != nil {
		return challenge.Challenge{}, classify(err)
	}
	if err := s.challengeRepo.Update(ctx, item); err != nil {
		return challenge.Challenge{}, databaseError(err, op)
	}
	item.Version++
	s.logger.DebugContext(ctx, "challenge updated", "challenge_id", item.ID, "op", op, "version", item.Version)

	if announce == nil {
		return item, nil
	}
	if err := s.send(ctx, item, announce(item, s.teamNames(ctx, item))); err != nil {
		return item, criticalError(err, op+": notify")
	}
	return item, nil
}

func (s *ChallengeService) send(ctx context.Context, c challenge.Challenge, msg Message) error {
	destination := c.ChannelID
	if destination == "" {
		destination = s.cfg.AnnouncementsChannelID
	}
	if err := s.notifier.Send(ctx, destination, msg); err != nil {
		s.logger.ErrorContext(ctx, "send challenge notification failed", "challenge_id", c.ID, "destination", destination, "error", err)
		return err
	}
	return nil
}

// announce posts to the league announcements channel when one is configured.
func (s *ChallengeService) announce(ctx context.Context, msg Message) error {
	if s.cfg.AnnouncementsChannelID == "" {
		return nil
	}
	return s.notifier.Send(ctx, s.cfg.AnnouncementsChannelID, msg)
}

func (s *ChallengeService) loadTeam(ctx context.Context, teamID string) (team.Team, error) {
	item, exists, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return team.Team{}, databaseError(err, "get team")
	}
	if !exists {
		return team.Team{}, notFoundf("team=%s", teamID)
	}
	return item, nil
}

func (s *ChallengeService) challengeable(t team.Team) bool {
	for _, gameType := range team.AllGameTypes {
		if t.CanBeChallenged(gameType, s.cfg.Rules.HomeMapsPerGameType) {
			return true
		}
	}
	return false
}

type teamNames map[string]string

func (n teamNames) of(teamID string) string {
	if name, ok := n[teamID]; ok && name != "" {
		return name
	}
	return teamID
}

// teamNames resolves team tags for messages, falling back to IDs.
func (s *ChallengeService) teamNames(ctx context.Context, c challenge.Challenge) teamNames {
	names := make(teamNames, 2)
	for _, teamID := range c.TeamIDs() {
		item, exists, err := s.teamRepo.GetByID(ctx, teamID)
		if err != nil {
			s.logger.WarnContext(ctx, "resolve team name failed", "team_id", teamID, "error", err)
			continue
		}
		if exists {
			names[teamID] = item.Tag
		}
	}
	return names
}
