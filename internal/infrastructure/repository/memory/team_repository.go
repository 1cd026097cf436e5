package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/riskibarqy/overload-teams-league/internal/domain/team"
)

type TeamRepository struct {
	store *Store
}

func NewTeamRepository(store *Store) *TeamRepository {
	return store.Teams()
}

func (r *TeamRepository) GetByID(_ context.Context, teamID string) (team.Team, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.teams[teamID]
	if !ok {
		return team.Team{}, false, nil
	}
	return item.Clone(), true, nil
}

func (r *TeamRepository) GetByTag(_ context.Context, tag string) (team.Team, bool, error) {
	return r.find(func(item team.Team) bool { return strings.EqualFold(item.Tag, tag) })
}

func (r *TeamRepository) GetByName(_ context.Context, name string) (team.Team, bool, error) {
	return r.find(func(item team.Team) bool { return strings.EqualFold(item.Name, name) })
}

func (r *TeamRepository) GetByPilot(_ context.Context, pilotID string) (team.Team, bool, error) {
	return r.find(func(item team.Team) bool { return !item.Disbanded && item.HasPilot(pilotID) })
}

func (r *TeamRepository) find(match func(item team.Team) bool) (team.Team, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, item := range r.store.teams {
		if match(item) {
			return item.Clone(), true, nil
		}
	}
	return team.Team{}, false, nil
}

func (r *TeamRepository) List(_ context.Context) ([]team.Team, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]team.Team, 0, len(r.store.teams))
	for _, item := range r.store.teams {
		out = append(out, item.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *TeamRepository) Create(_ context.Context, item team.Team) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.teams[item.ID]; exists {
		return fmt.Errorf("team id=%s already exists", item.ID)
	}
	item.Version = 0
	r.store.teams[item.ID] = item.Clone()
	return nil
}

func (r *TeamRepository) Update(_ context.Context, item team.Team) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return r.store.putTeamLocked(item)
}

func (s *Store) putTeamLocked(item team.Team) error {
	stored, ok := s.teams[item.ID]
	if !ok {
		return fmt.Errorf("team id=%s does not exist", item.ID)
	}
	if stored.Version != item.Version {
		return fmt.Errorf("%w: team id=%s stored=%d got=%d", team.ErrVersionConflict, item.ID, stored.Version, item.Version)
	}
	item.Version++
	s.teams[item.ID] = item.Clone()
	return nil
}

func (r *TeamRepository) IsLeadershipBanned(_ context.Context, pilotID string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	_, banned := r.store.bans[pilotID]
	return banned, nil
}

func (r *TeamRepository) AddLeadershipBans(_ context.Context, bans []team.LeadershipBan) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, ban := range bans {
		if _, exists := r.store.bans[ban.PilotID]; exists {
			continue
		}
		r.store.bans[ban.PilotID] = ban
	}
	return nil
}
