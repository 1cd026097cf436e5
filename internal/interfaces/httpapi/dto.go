package httpapi

import (
	"time"

	"github.com/riskibarqy/overload-teams-league/internal/domain/challenge"
	"github.com/riskibarqy/overload-teams-league/internal/domain/rating"
	"github.com/riskibarqy/overload-teams-league/internal/domain/team"
)

type teamDTO struct {
	ID                    string              `json:"id"`
	Name                  string              `json:"name"`
	Tag                   string              `json:"tag"`
	Color                 string              `json:"color,omitempty"`
	Division              string              `json:"division"`
	FounderID             string              `json:"founderId,omitempty"`
	CaptainIDs            []string            `json:"captainIds"`
	PilotIDs              []string            `json:"pilotIds"`
	GuestIDs              []string            `json:"guestIds"`
	HomeMaps              map[string][]string `json:"homeMaps"`
	NeutralMaps           map[string]string   `json:"neutralMaps"`
	Locked                bool                `json:"locked"`
	Disbanded             bool                `json:"disbanded"`
	Qualified             bool                `json:"qualified"`
	Penalties             int                 `json:"penalties"`
	PenaltyGamesRemaining int                 `json:"penaltyGamesRemaining"`
}

func toTeamDTO(t team.Team) teamDTO {
	homeMaps := make(map[string][]string, len(t.HomeMaps))
	for gameType, maps := range t.HomeMaps {
		homeMaps[string(gameType)] = append([]string{}, maps...)
	}
	neutralMaps := make(map[string]string, len(t.NeutralMaps))
	for gameType, name := range t.NeutralMaps {
		neutralMaps[string(gameType)] = name
	}

	return teamDTO{
		ID:                    t.ID,
		Name:                  t.Name,
		Tag:                   t.Tag,
		Color:                 t.Color,
		Division:              string(t.League),
		FounderID:             t.FounderID,
		CaptainIDs:            nonNil(t.CaptainIDs),
		PilotIDs:              nonNil(t.PilotIDs),
		GuestIDs:              nonNil(t.GuestIDs),
		HomeMaps:              homeMaps,
		NeutralMaps:           neutralMaps,
		Locked:                t.Locked,
		Disbanded:             t.Disbanded,
		Qualified:             t.Qualified,
		Penalties:             t.Penalties,
		PenaltyGamesRemaining: t.PenaltyGamesRemaining,
	}
}

type negotiableDTO[T any] struct {
	Value       *T     `json:"value,omitempty"`
	Suggested   *T     `json:"suggested,omitempty"`
	SuggestedBy string `json:"suggestedBy,omitempty"`
}

func toNegotiableDTO[T comparable](n challenge.Negotiable[T]) negotiableDTO[T] {
	var out negotiableDTO[T]
	if n.IsSet {
		v := n.Value
		out.Value = &v
	}
	if n.HasProposal {
		v := n.Suggested
		out.Suggested = &v
		out.SuggestedBy = n.SuggestedBy
	}
	return out
}

type playerStatDTO struct {
	PilotID      string `json:"pilotId"`
	TeamID       string `json:"teamId"`
	Kills        int    `json:"kills"`
	Assists      int    `json:"assists"`
	Deaths       int    `json:"deaths"`
	Damage       int    `json:"damage"`
	Captures     int    `json:"captures,omitempty"`
	Pickups      int    `json:"pickups,omitempty"`
	CarrierKills int    `json:"carrierKills,omitempty"`
	Returns      int    `json:"returns,omitempty"`
}

type challengeDTO struct {
	ID                   string                   `json:"id"`
	Season               int                      `json:"season"`
	Title                string                   `json:"title,omitempty"`
	Status               string                   `json:"status"`
	ChallengingTeamID    string                   `json:"challengingTeamId"`
	ChallengedTeamID     string                   `json:"challengedTeamId"`
	GameType             negotiableDTO[string]    `json:"gameType"`
	TeamSize             negotiableDTO[int]       `json:"teamSize"`
	Map                  negotiableDTO[string]    `json:"map"`
	MatchTime            negotiableDTO[time.Time] `json:"matchTime"`
	NeutralServer        negotiableDTO[bool]      `json:"neutralServer"`
	HomeMapTeamID        string                   `json:"homeMapTeamId"`
	HomeServerTeamID     string                   `json:"homeServerTeamId"`
	ChallengingTeamScore *int                     `json:"challengingTeamScore,omitempty"`
	ChallengedTeamScore  *int                     `json:"challengedTeamScore,omitempty"`
	OvertimePeriods      int                      `json:"overtimePeriods,omitempty"`
	Postseason           bool                     `json:"postseason"`
	CasterID             string                   `json:"casterId,omitempty"`
	StreamerIDs          []string                 `json:"streamerIds"`
	VoDURL               string                   `json:"vodUrl,omitempty"`
	Restricted           bool                     `json:"restricted"`
	AuthorizedPilotIDs   map[string][]string      `json:"authorizedPilotIds,omitempty"`
	ClockDeadline        *time.Time               `json:"clockDeadline,omitempty"`
	Stats                []playerStatDTO          `json:"stats"`
	DateAdded            time.Time                `json:"dateAdded"`
	DateConfirmed        *time.Time               `json:"dateConfirmed,omitempty"`
}

func challengeStatus(c challenge.Challenge) string {
	switch {
	case c.IsVoided():
		return "voided"
	case c.IsConfirmed():
		return "confirmed"
	case c.IsClosed():
		return "closed"
	case c.IsReported():
		return "reported"
	default:
		return "open"
	}
}

func toChallengeDTO(c challenge.Challenge) challengeDTO {
	gameType := challenge.Negotiable[string]{
		Value:       string(c.GameType.Value),
		IsSet:       c.GameType.IsSet,
		Suggested:   string(c.GameType.Suggested),
		HasProposal: c.GameType.HasProposal,
		SuggestedBy: c.GameType.SuggestedBy,
	}

	out := challengeDTO{
		ID:                c.ID,
		Season:            c.Season,
		Title:             c.Title,
		Status:            challengeStatus(c),
		ChallengingTeamID: c.ChallengingTeamID,
		ChallengedTeamID:  c.ChallengedTeamID,
		GameType:          toNegotiableDTO(gameType),
		TeamSize:          toNegotiableDTO(c.TeamSize),
		Map:               toNegotiableDTO(c.Map),
		MatchTime:         toNegotiableDTO(c.MatchTime),
		NeutralServer:     toNegotiableDTO(c.NeutralServer),
		HomeMapTeamID:     c.HomeMapTeamID,
		HomeServerTeamID:  c.HomeServerTeamID,
		OvertimePeriods:   c.OvertimePeriods,
		Postseason:        c.Postseason,
		CasterID:          c.CasterID,
		StreamerIDs:       nonNil(c.StreamerIDs),
		VoDURL:            c.VoDURL,
		Restricted:        c.Restricted,
		ClockDeadline:     c.DateClockDeadline,
		Stats:             make([]playerStatDTO, 0, len(c.Stats)),
		DateAdded:         c.DateAdded,
		DateConfirmed:     c.DateConfirmed,
	}
	if c.IsReported() {
		challenging, challenged := c.ChallengingTeamScore, c.ChallengedTeamScore
		out.ChallengingTeamScore = &challenging
		out.ChallengedTeamScore = &challenged
	}
	for _, stat := range c.Stats {
		out.Stats = append(out.Stats, playerStatDTO(stat))
	}
	if c.Restricted {
		out.AuthorizedPilotIDs = make(map[string][]string, 2)
		for _, teamID := range c.TeamIDs() {
			out.AuthorizedPilotIDs[teamID] = nonNil(c.AuthorizedPilotIDs[teamID])
		}
	}
	return out
}

type ratingDTO struct {
	Rank      int       `json:"rank"`
	TeamID    string    `json:"teamId"`
	Rating    float64   `json:"rating"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toRatingDTOs(items []rating.TeamRating) []ratingDTO {
	out := make([]ratingDTO, 0, len(items))
	for i, item := range items {
		out = append(out, ratingDTO{Rank: i + 1, TeamID: item.TeamID, Rating: item.Rating, UpdatedAt: item.UpdatedAt})
	}
	return out
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
