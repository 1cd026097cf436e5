package team

import (
	"context"
	"errors"
)

// ErrVersionConflict is returned by Update when the stored version moved on.
var ErrVersionConflict = errors.New("team version conflict")

// Repository describes team persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, teamID string) (Team, bool, error)
	GetByTag(ctx context.Context, tag string) (Team, bool, error)
	GetByName(ctx context.Context, name string) (Team, bool, error)
	GetByPilot(ctx context.Context, pilotID string) (Team, bool, error)
	List(ctx context.Context) ([]Team, error)
	Create(ctx context.Context, item Team) error
	// Update persists item when the stored version equals item.Version and
	// bumps the version. It returns ErrVersionConflict otherwise.
	Update(ctx context.Context, item Team) error
	IsLeadershipBanned(ctx context.Context, pilotID string) (bool, error)
	AddLeadershipBans(ctx context.Context, bans []LeadershipBan) error
}
