package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/riskibarqy/overload-teams-league/internal/domain/challenge"
	"github.com/riskibarqy/overload-teams-league/internal/domain/team"
)

type ChallengeRepository struct {
	store *Store
}

func NewChallengeRepository(store *Store) *ChallengeRepository {
	return store.Challenges()
}

func (r *ChallengeRepository) Create(_ context.Context, item challenge.Challenge) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.challenges[item.ID]; exists {
		return fmt.Errorf("challenge id=%s already exists", item.ID)
	}
	item.Version = 0
	r.store.challenges[item.ID] = item.Clone()
	return nil
}

func (r *ChallengeRepository) GetByID(_ context.Context, challengeID string) (challenge.Challenge, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.challenges[challengeID]
	if !ok {
		return challenge.Challenge{}, false, nil
	}
	return item.Clone(), true, nil
}

func (r *ChallengeRepository) GetByChannel(_ context.Context, channelID string) (challenge.Challenge, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var (
		newest challenge.Challenge
		found  bool
	)
	for _, item := range r.store.challenges {
		if item.ChannelID != channelID {
			continue
		}
		if !found || item.DateAdded.After(newest.DateAdded) {
			newest = item
			found = true
		}
	}
	if !found {
		return challenge.Challenge{}, false, nil
	}
	return newest.Clone(), true, nil
}

func (r *ChallengeRepository) Update(_ context.Context, item challenge.Challenge) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.checkChallengeLocked(item); err != nil {
		return err
	}
	item.Version++
	r.store.challenges[item.ID] = item.Clone()
	return nil
}

// UpdateWithTeams validates every version before it writes anything.
func (r *ChallengeRepository) UpdateWithTeams(_ context.Context, item challenge.Challenge, teams []team.Team) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.checkChallengeLocked(item); err != nil {
		return err
	}
	for _, t := range teams {
		stored, ok := r.store.teams[t.ID]
		if !ok {
			return fmt.Errorf("team id=%s does not exist", t.ID)
		}
		if stored.Version != t.Version {
			return fmt.Errorf("%w: team id=%s stored=%d got=%d", team.ErrVersionConflict, t.ID, stored.Version, t.Version)
		}
	}

	item.Version++
	r.store.challenges[item.ID] = item.Clone()
	for _, t := range teams {
		t.Version++
		r.store.teams[t.ID] = t.Clone()
	}
	return nil
}

func (s *Store) checkChallengeLocked(item challenge.Challenge) error {
	stored, ok := s.challenges[item.ID]
	if !ok {
		return fmt.Errorf("challenge id=%s does not exist", item.ID)
	}
	if stored.Version != item.Version {
		return fmt.Errorf("%w: challenge id=%s stored=%d got=%d", challenge.ErrVersionConflict, item.ID, stored.Version, item.Version)
	}
	return nil
}

func (r *ChallengeRepository) MarkNotified(_ context.Context, challengeID string, flag challenge.NotifiedFlag) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	item, ok := r.store.challenges[challengeID]
	if !ok {
		return false, fmt.Errorf("challenge id=%s does not exist", challengeID)
	}

	var target *bool
	switch flag {
	case challenge.FlagClockDeadline:
		target = &item.ClockDeadlineNotified
	case challenge.FlagMatchTime:
		target = &item.MatchTimeNotified
	case challenge.FlagMatchTimePassed:
		target = &item.MatchTimePassedNotified
	default:
		return false, fmt.Errorf("unknown notified flag %q", flag)
	}
	if *target {
		return false, nil
	}
	*target = true
	item.Version++
	r.store.challenges[challengeID] = item
	return true, nil
}

func (r *ChallengeRepository) ListOpenByTeam(_ context.Context, teamID string) ([]challenge.Challenge, error) {
	out := r.filter(func(item challenge.Challenge) bool {
		return item.IsOpen() && item.IsParticipant(teamID)
	})
	result := make([]challenge.Challenge, 0, len(out))
	for _, item := range out {
		result = append(result, item.Clone())
	}
	return result, nil
}

func (r *ChallengeRepository) HasOpenBetween(_ context.Context, teamAID, teamBID string) (bool, error) {
	out := r.filter(func(item challenge.Challenge) bool {
		return item.IsOpen() && item.IsParticipant(teamAID) && item.IsParticipant(teamBID)
	})
	return len(out) > 0, nil
}

func (r *ChallengeRepository) CountActiveClocks(_ context.Context, teamID string) (int, error) {
	out := r.filter(func(item challenge.Challenge) bool {
		return item.ClockTeamID == teamID && item.IsOpen() && !item.IsReported()
	})
	return len(out), nil
}

func (r *ChallengeRepository) HasClockedOpponentSince(_ context.Context, teamID, opponentID string, since time.Time) (bool, error) {
	out := r.filter(func(item challenge.Challenge) bool {
		return item.ClockTeamID == teamID &&
			item.OpponentOf(teamID) == opponentID &&
			item.DateClocked != nil &&
			!item.DateClocked.Before(since)
	})
	return len(out) > 0, nil
}

func (r *ChallengeRepository) HasClockedOpponentInSeason(_ context.Context, teamID, opponentID string, season int) (bool, error) {
	out := r.filter(func(item challenge.Challenge) bool {
		return item.ClockTeamID == teamID &&
			item.OpponentOf(teamID) == opponentID &&
			item.Season == season &&
			item.DateClocked != nil
	})
	return len(out) > 0, nil
}

func (r *ChallengeRepository) ListUnnotifiedExpiredClocks(_ context.Context, now time.Time) ([]string, error) {
	return ids(r.filter(func(item challenge.Challenge) bool {
		return item.IsOpen() && !item.ClockDeadlineNotified && item.ClockExpired(now)
	})), nil
}

func (r *ChallengeRepository) ListUnnotifiedStartingMatches(_ context.Context, now time.Time, lead time.Duration) ([]string, error) {
	return ids(r.filter(func(item challenge.Challenge) bool {
		if !item.IsOpen() || item.IsReported() || !item.MatchTime.IsSet || item.MatchTimeNotified {
			return false
		}
		at := item.MatchTime.Value
		return at.After(now) && !at.After(now.Add(lead))
	})), nil
}

func (r *ChallengeRepository) ListUnnotifiedMissedMatches(_ context.Context, now time.Time, grace time.Duration) ([]string, error) {
	return ids(r.filter(func(item challenge.Challenge) bool {
		if !item.IsOpen() || item.IsReported() || !item.MatchTime.IsSet || item.MatchTimePassedNotified {
			return false
		}
		return !item.MatchTime.Value.Add(grace).After(now)
	})), nil
}

// filter returns matching rows ordered by DateAdded then ID. Rows are shared
// with the store and must be cloned before they leave the package.
func (r *ChallengeRepository) filter(match func(item challenge.Challenge) bool) []challenge.Challenge {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]challenge.Challenge, 0)
	for _, item := range r.store.challenges {
		if match(item) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DateAdded.Equal(out[j].DateAdded) {
			return out[i].DateAdded.Before(out[j].DateAdded)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func ids(items []challenge.Challenge) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}
