package postgres

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/riskibarqy/overload-teams-league/internal/domain/challenge"
	"github.com/riskibarqy/overload-teams-league/internal/domain/team"
)

const challengeTable = "challenges"

var challengeColumns = []string{
	"public_id", "season", "channel_id", "title",
	"challenging_team_id", "challenged_team_id",
	"negotiation", "match_time",
	"home_map_team_id", "home_server_team_id", "using_home_map_team", "using_home_server_team",
	"reporting_team_id", "challenging_team_score", "challenged_team_score", "overtime_periods",
	"challenging_team_penalized", "challenged_team_penalized",
	"caster_id", "streamer_ids", "vod_url", "restricted", "authorized_pilot_ids",
	"admin_created", "postseason", "locked",
	"clock_team_id", "stats",
	"date_added", "date_clocked", "date_clock_deadline",
	"clock_deadline_notified", "match_time_notified", "match_time_passed_notified",
	"date_reported", "date_confirmed", "date_closed", "date_voided",
	"date_rematch_requested", "rematch_requested_by", "date_rematched",
	"version",
}

// notifiedColumns maps one-shot flags to their boolean columns.
var notifiedColumns = map[challenge.NotifiedFlag]string{
	challenge.FlagClockDeadline:   "clock_deadline_notified",
	challenge.FlagMatchTime:       "match_time_notified",
	challenge.FlagMatchTimePassed: "match_time_passed_notified",
}

type challengeTableModel struct {
	PublicID                 string         `db:"public_id"`
	Season                   int            `db:"season"`
	ChannelID                sql.NullString `db:"channel_id"`
	Title                    string         `db:"title"`
	ChallengingTeamID        string         `db:"challenging_team_id"`
	ChallengedTeamID         string         `db:"challenged_team_id"`
	Negotiation              string         `db:"negotiation"`
	MatchTime                *time.Time     `db:"match_time"`
	HomeMapTeamID            string         `db:"home_map_team_id"`
	HomeServerTeamID         string         `db:"home_server_team_id"`
	UsingHomeMapTeam         bool           `db:"using_home_map_team"`
	UsingHomeServerTeam      bool           `db:"using_home_server_team"`
	ReportingTeamID          sql.NullString `db:"reporting_team_id"`
	ChallengingTeamScore     int            `db:"challenging_team_score"`
	ChallengedTeamScore      int            `db:"challenged_team_score"`
	OvertimePeriods          int            `db:"overtime_periods"`
	ChallengingTeamPenalized bool           `db:"challenging_team_penalized"`
	ChallengedTeamPenalized  bool           `db:"challenged_team_penalized"`
	CasterID                 sql.NullString `db:"caster_id"`
	StreamerIDs              pq.StringArray `db:"streamer_ids"`
	VoDURL                   string         `db:"vod_url"`
	Restricted               bool           `db:"restricted"`
	AuthorizedPilotIDs       string         `db:"authorized_pilot_ids"`
	AdminCreated             bool           `db:"admin_created"`
	Postseason               bool           `db:"postseason"`
	Locked                   bool           `db:"locked"`
	ClockTeamID              sql.NullString `db:"clock_team_id"`
	Stats                    string         `db:"stats"`
	DateAdded                time.Time      `db:"date_added"`
	DateClocked              *time.Time     `db:"date_clocked"`
	DateClockDeadline        *time.Time     `db:"date_clock_deadline"`
	ClockDeadlineNotified    bool           `db:"clock_deadline_notified"`
	MatchTimeNotified        bool           `db:"match_time_notified"`
	MatchTimePassedNotified  bool           `db:"match_time_passed_notified"`
	DateReported             *time.Time     `db:"date_reported"`
	DateConfirmed            *time.Time     `db:"date_confirmed"`
	DateClosed               *time.Time     `db:"date_closed"`
	DateVoided               *time.Time     `db:"date_voided"`
	DateRematchRequested     *time.Time     `db:"date_rematch_requested"`
	RematchRequestedBy       sql.NullString `db:"rematch_requested_by"`
	DateRematched            *time.Time     `db:"date_rematched"`
	Version                  int64          `db:"version"`
}

// negotiationDocument is the JSONB shape of every negotiable field. The
// committed match time is also kept in its own column for the due queries.
type negotiationDocument struct {
	GameType      negotiableDocument[team.GameType] `json:"game_type"`
	TeamSize      negotiableDocument[int]           `json:"team_size"`
	Map           negotiableDocument[string]        `json:"map"`
	MatchTime     negotiableDocument[time.Time]     `json:"match_time"`
	NeutralServer negotiableDocument[bool]          `json:"neutral_server"`
}

type negotiableDocument[T comparable] struct {
	Value       T      `json:"value"`
	IsSet       bool   `json:"is_set"`
	Suggested   T      `json:"suggested"`
	HasProposal bool   `json:"has_proposal"`
	SuggestedBy string `json:"suggested_by,omitempty"`
}

func toNegotiableDocument[T comparable](n challenge.Negotiable[T]) negotiableDocument[T] {
	return negotiableDocument[T]{
		Value:       n.Value,
		IsSet:       n.IsSet,
		Suggested:   n.Suggested,
		HasProposal: n.HasProposal,
		SuggestedBy: n.SuggestedBy,
	}
}

func (d negotiableDocument[T]) toDomain() challenge.Negotiable[T] {
	return challenge.Negotiable[T]{
		Value:       d.Value,
		IsSet:       d.IsSet,
		Suggested:   d.Suggested,
		HasProposal: d.HasProposal,
		SuggestedBy: d.SuggestedBy,
	}
}

func challengeToModel(item challenge.Challenge) (challengeTableModel, error) {
	negotiation, err := encodeJSON(negotiationDocument{
		GameType:      toNegotiableDocument(item.GameType),
		TeamSize:      toNegotiableDocument(item.TeamSize),
		Map:           toNegotiableDocument(item.Map),
		MatchTime:     toNegotiableDocument(item.MatchTime),
		NeutralServer: toNegotiableDocument(item.NeutralServer),
	})
	if err != nil {
		return challengeTableModel{}, fmt.Errorf("encode negotiation challenge=%s: %w", item.ID, err)
	}
	stats := item.Stats
	if stats == nil {
		stats = []challenge.PlayerStat{}
	}
	statsJSON, err := encodeJSON(stats)
	if err != nil {
		return challengeTableModel{}, fmt.Errorf("encode stats challenge=%s: %w", item.ID, err)
	}

	authorized := item.AuthorizedPilotIDs
	if authorized == nil {
		authorized = map[string][]string{}
	}
	authorizedJSON, err := encodeJSON(authorized)
	if err != nil {
		return challengeTableModel{}, fmt.Errorf("encode authorized pilots challenge=%s: %w", item.ID, err)
	}

	var matchTime *time.Time
	if item.MatchTime.IsSet {
		at := item.MatchTime.Value.UTC()
		matchTime = &at
	}

	return challengeTableModel{
		PublicID:                 item.ID,
		Season:                   item.Season,
		ChannelID:                nullString(item.ChannelID),
		Title:                    item.Title,
		ChallengingTeamID:        item.ChallengingTeamID,
		ChallengedTeamID:         item.ChallengedTeamID,
		Negotiation:              negotiation,
		MatchTime:                matchTime,
		HomeMapTeamID:            item.HomeMapTeamID,
		HomeServerTeamID:         item.HomeServerTeamID,
		UsingHomeMapTeam:         item.UsingHomeMapTeam,
		UsingHomeServerTeam:      item.UsingHomeServerTeam,
		ReportingTeamID:          nullString(item.ReportingTeamID),
		ChallengingTeamScore:     item.ChallengingTeamScore,
		ChallengedTeamScore:      item.ChallengedTeamScore,
		OvertimePeriods:          item.OvertimePeriods,
		ChallengingTeamPenalized: item.ChallengingTeamPenalized,
		ChallengedTeamPenalized:  item.ChallengedTeamPenalized,
		CasterID:                 nullString(item.CasterID),
		StreamerIDs:              stringArray(item.StreamerIDs),
		VoDURL:                   item.VoDURL,
		Restricted:               item.Restricted,
		AuthorizedPilotIDs:       authorizedJSON,
		AdminCreated:             item.AdminCreated,
		Postseason:               item.Postseason,
		Locked:                   item.Locked,
		ClockTeamID:              nullString(item.ClockTeamID),
		Stats:                    statsJSON,
		DateAdded:                item.DateAdded.UTC(),
		DateClocked:              utc(item.DateClocked),
		DateClockDeadline:        utc(item.DateClockDeadline),
		ClockDeadlineNotified:    item.ClockDeadlineNotified,
		MatchTimeNotified:        item.MatchTimeNotified,
		MatchTimePassedNotified:  item.MatchTimePassedNotified,
		DateReported:             utc(item.DateReported),
		DateConfirmed:            utc(item.DateConfirmed),
		DateClosed:               utc(item.DateClosed),
		DateVoided:               utc(item.DateVoided),
		DateRematchRequested:     utc(item.DateRematchRequested),
		RematchRequestedBy:       nullString(item.RematchRequestedBy),
		DateRematched:            utc(item.DateRematched),
		Version:                  item.Version,
	}, nil
}

func (m challengeTableModel) toDomain() (challenge.Challenge, error) {
	var doc negotiationDocument
	if err := decodeJSON(m.Negotiation, &doc); err != nil {
		return challenge.Challenge{}, fmt.Errorf("decode negotiation challenge=%s: %w", m.PublicID, err)
	}
	var stats []challenge.PlayerStat
	if err := decodeJSON(m.Stats, &stats); err != nil {
		return challenge.Challenge{}, fmt.Errorf("decode stats challenge=%s: %w", m.PublicID, err)
	}
	var authorized map[string][]string
	if err := decodeJSON(m.AuthorizedPilotIDs, &authorized); err != nil {
		return challenge.Challenge{}, fmt.Errorf("decode authorized pilots challenge=%s: %w", m.PublicID, err)
	}
	if len(authorized) == 0 {
		authorized = nil
	}

	return challenge.Challenge{
		ID:                       m.PublicID,
		Season:                   m.Season,
		ChannelID:                m.ChannelID.String,
		Title:                    m.Title,
		ChallengingTeamID:        m.ChallengingTeamID,
		ChallengedTeamID:         m.ChallengedTeamID,
		GameType:                 doc.GameType.toDomain(),
		TeamSize:                 doc.TeamSize.toDomain(),
		Map:                      doc.Map.toDomain(),
		MatchTime:                doc.MatchTime.toDomain(),
		NeutralServer:            doc.NeutralServer.toDomain(),
		HomeMapTeamID:            m.HomeMapTeamID,
		HomeServerTeamID:         m.HomeServerTeamID,
		UsingHomeMapTeam:         m.UsingHomeMapTeam,
		UsingHomeServerTeam:      m.UsingHomeServerTeam,
		ReportingTeamID:          m.ReportingTeamID.String,
		ChallengingTeamScore:     m.ChallengingTeamScore,
		ChallengedTeamScore:      m.ChallengedTeamScore,
		OvertimePeriods:          m.OvertimePeriods,
		ChallengingTeamPenalized: m.ChallengingTeamPenalized,
		ChallengedTeamPenalized:  m.ChallengedTeamPenalized,
		CasterID:                 m.CasterID.String,
		StreamerIDs:              []string(m.StreamerIDs),
		VoDURL:                   m.VoDURL,
		Restricted:               m.Restricted,
		AuthorizedPilotIDs:       authorized,
		AdminCreated:             m.AdminCreated,
		Postseason:               m.Postseason,
		Locked:                   m.Locked,
		ClockTeamID:              m.ClockTeamID.String,
		Stats:                    stats,
		DateAdded:                m.DateAdded,
		DateClocked:              m.DateClocked,
		DateClockDeadline:        m.DateClockDeadline,
		ClockDeadlineNotified:    m.ClockDeadlineNotified,
		MatchTimeNotified:        m.MatchTimeNotified,
		MatchTimePassedNotified:  m.MatchTimePassedNotified,
		DateReported:             m.DateReported,
		DateConfirmed:            m.DateConfirmed,
		DateClosed:               m.DateClosed,
		DateVoided:               m.DateVoided,
		DateRematchRequested:     m.DateRematchRequested,
		RematchRequestedBy:       m.RematchRequestedBy.String,
		DateRematched:            m.DateRematched,
		Version:                  m.Version,
	}, nil
}
