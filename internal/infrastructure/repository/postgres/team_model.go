package postgres

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/riskibarqy/overload-teams-league/internal/domain/league"
	"github.com/riskibarqy/overload-teams-league/internal/domain/team"
)

const teamTable = "teams"

var teamColumns = []string{
	"public_id", "name", "tag", "color", "founder_id",
	"captain_ids", "guest_ids", "pilot_ids",
	"locked", "disbanded", "qualified", "league",
	"home_maps", "neutral_maps",
	"penalties", "penalty_games_remaining", "version",
	"created_at", "updated_at", "disbanded_at",
}

type teamTableModel struct {
	PublicID              string         `db:"public_id"`
	Name                  string         `db:"name"`
	Tag                   string         `db:"tag"`
	Color                 string         `db:"color"`
	FounderID             sql.NullString `db:"founder_id"`
	CaptainIDs            pq.StringArray `db:"captain_ids"`
	GuestIDs              pq.StringArray `db:"guest_ids"`
	PilotIDs              pq.StringArray `db:"pilot_ids"`
	Locked                bool           `db:"locked"`
	Disbanded             bool           `db:"disbanded"`
	Qualified             bool           `db:"qualified"`
	League                string         `db:"league"`
	HomeMaps              string         `db:"home_maps"`
	NeutralMaps           string         `db:"neutral_maps"`
	Penalties             int            `db:"penalties"`
	PenaltyGamesRemaining int            `db:"penalty_games_remaining"`
	Version               int64          `db:"version"`
	CreatedAt             time.Time      `db:"created_at"`
	UpdatedAt             time.Time      `db:"updated_at"`
	DisbandedAt           *time.Time     `db:"disbanded_at"`
}

type leadershipBanTableModel struct {
	PilotID   string    `db:"pilot_id"`
	TeamID    string    `db:"team_public_id"`
	Reason    string    `db:"reason"`
	CreatedAt time.Time `db:"created_at"`
}

func teamToModel(item team.Team) (teamTableModel, error) {
	homeMaps, err := encodeJSON(item.HomeMaps)
	if err != nil {
		return teamTableModel{}, fmt.Errorf("encode home maps team=%s: %w", item.ID, err)
	}
	neutralMaps, err := encodeJSON(item.NeutralMaps)
	if err != nil {
		return teamTableModel{}, fmt.Errorf("encode neutral maps team=%s: %w", item.ID, err)
	}

	return teamTableModel{
		PublicID:              item.ID,
		Name:                  item.Name,
		Tag:                   item.Tag,
		Color:                 item.Color,
		FounderID:             nullString(item.FounderID),
		CaptainIDs:            stringArray(item.CaptainIDs),
		GuestIDs:              stringArray(item.GuestIDs),
		PilotIDs:              stringArray(item.PilotIDs),
		Locked:                item.Locked,
		Disbanded:             item.Disbanded,
		Qualified:             item.Qualified,
		League:                string(item.League),
		HomeMaps:              homeMaps,
		NeutralMaps:           neutralMaps,
		Penalties:             item.Penalties,
		PenaltyGamesRemaining: item.PenaltyGamesRemaining,
		Version:               item.Version,
		CreatedAt:             item.CreatedAt.UTC(),
		UpdatedAt:             item.UpdatedAt.UTC(),
		DisbandedAt:           utc(item.DisbandedAt),
	}, nil
}

func (m teamTableModel) toDomain() (team.Team, error) {
	out := team.Team{
		ID:                    m.PublicID,
		Name:                  m.Name,
		Tag:                   m.Tag,
		Color:                 m.Color,
		FounderID:             m.FounderID.String,
		CaptainIDs:            []string(m.CaptainIDs),
		GuestIDs:              []string(m.GuestIDs),
		PilotIDs:              []string(m.PilotIDs),
		Locked:                m.Locked,
		Disbanded:             m.Disbanded,
		Qualified:             m.Qualified,
		League:                league.Division(m.League),
		HomeMaps:              map[team.GameType][]string{},
		NeutralMaps:           map[team.GameType]string{},
		Penalties:             m.Penalties,
		PenaltyGamesRemaining: m.PenaltyGamesRemaining,
		Version:               m.Version,
		CreatedAt:             m.CreatedAt,
		UpdatedAt:             m.UpdatedAt,
		DisbandedAt:           m.DisbandedAt,
	}
	if err := decodeJSON(m.HomeMaps, &out.HomeMaps); err != nil {
		return team.Team{}, fmt.Errorf("decode home maps team=%s: %w", m.PublicID, err)
	}
	if err := decodeJSON(m.NeutralMaps, &out.NeutralMaps); err != nil {
		return team.Team{}, fmt.Errorf("decode neutral maps team=%s: %w", m.PublicID, err)
	}
	return out, nil
}
