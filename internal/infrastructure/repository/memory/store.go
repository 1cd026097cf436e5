package memory

import (
	"sync"

	"github.com/riskibarqy/overload-teams-league/internal/domain/challenge"
	"github.com/riskibarqy/overload-teams-league/internal/domain/rating"
	"github.com/riskibarqy/overload-teams-league/internal/domain/team"
)

// Store holds every aggregate behind one lock so writes spanning a challenge
// and its teams apply together.
type Store struct {
	mu         sync.RWMutex
	teams      map[string]team.Team
	bans       map[string]team.LeadershipBan
	challenges map[string]challenge.Challenge
	ratings    map[int][]rating.TeamRating
}

func NewStore() *Store {
	return &Store{
		teams:      make(map[string]team.Team),
		bans:       make(map[string]team.LeadershipBan),
		challenges: make(map[string]challenge.Challenge),
		ratings:    make(map[int][]rating.TeamRating),
	}
}

// NewSeededStore returns a store preloaded with teams.
func NewSeededStore(teams []team.Team) *Store {
	store := NewStore()
	for _, item := range teams {
		store.teams[item.ID] = item.Clone()
	}
	return store
}

func (s *Store) Teams() *TeamRepository {
	return &TeamRepository{store: s}
}

func (s *Store) Challenges() *ChallengeRepository {
	return &ChallengeRepository{store: s}
}

func (s *Store) Ratings() *RatingRepository {
	return &RatingRepository{store: s}
}
