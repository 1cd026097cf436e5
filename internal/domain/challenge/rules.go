package challenge

import (
	"errors"
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/riskibarqy/overload-teams-league/internal/domain/league"
	"github.com/riskibarqy/overload-teams-league/internal/domain/team"
)

// ErrValidation matches every *ValidationError via errors.Is.
var ErrValidation = errors.New("challenge validation failed")

// ValidationError names the failed precondition and the acting team.
type ValidationError struct {
	Precondition string
	TeamID       string
	Reason       string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(precondition, teamID, format string, args ...any) error {
	return &ValidationError{
		Precondition: precondition,
		TeamID:       teamID,
		Reason:       fmt.Sprintf(format, args...),
	}
}

func requireParticipant(c *Challenge, teamID string) error {
	if !c.IsParticipant(teamID) {
		return invalid("not_participant", teamID, "your team is not part of this challenge")
	}
	return nil
}

func requireOpen(c *Challenge, teamID string) error {
	switch {
	case c.IsClosed():
		return invalid("closed", teamID, "this challenge is closed")
	case c.IsVoided():
		return invalid("voided", teamID, "this challenge has been voided")
	case c.IsConfirmed():
		return invalid("confirmed", teamID, "this match has already been confirmed")
	}
	return nil
}

// requireNegotiable guards every player-driven schedule edit.
func requireNegotiable(c *Challenge, teamID string) error {
	if err := requireParticipant(c, teamID); err != nil {
		return err
	}
	if err := requireOpen(c, teamID); err != nil {
		return err
	}
	if c.IsReported() {
		return invalid("reported", teamID, "this match has already been reported")
	}
	if c.Locked {
		return invalid("locked", teamID, "this challenge is locked by an admin")
	}
	return nil
}

func requireConfirmable[T comparable](field *Negotiable[T], name, teamID string) error {
	if !field.HasProposal {
		return invalid("no_suggestion", teamID, "there is no suggested %s to confirm", name)
	}
	if field.SuggestedBy == teamID {
		return invalid("same_team_confirm", teamID, "the other team must confirm the suggested %s", name)
	}
	return nil
}

// GameTypeAvailable reports whether both teams keep a full home map list for
// a game type. A nil check accepts every game type.
type GameTypeAvailable func(gameType team.GameType) bool

func requireGameTypeAvailable(gameType team.GameType, teamID string, available GameTypeAvailable) error {
	if available != nil && !available(gameType) {
		return invalid("game_type_unavailable", teamID, "%s needs a full home map list on both teams", gameType)
	}
	return nil
}

func SuggestGameType(c *Challenge, teamID string, gameType team.GameType, available GameTypeAvailable) error {
	if err := requireNegotiable(c, teamID); err != nil {
		return err
	}
	if err := requireGameTypeAvailable(gameType, teamID, available); err != nil {
		return err
	}
	c.GameType.Suggest(teamID, gameType)
	return nil
}

func ConfirmGameType(c *Challenge, teamID string, available GameTypeAvailable) error {
	if err := requireNegotiable(c, teamID); err != nil {
		return err
	}
	if err := requireConfirmable(&c.GameType, "game type", teamID); err != nil {
		return err
	}
	if err := requireGameTypeAvailable(c.GameType.Suggested, teamID, available); err != nil {
		return err
	}
	commitGameType(c, c.GameType.Suggested)
	return nil
}

// SetGameType is the admin override.
func SetGameType(c *Challenge, gameType team.GameType, available GameTypeAvailable) error {
	if err := requireOpen(c, ""); err != nil {
		return err
	}
	if err := requireGameTypeAvailable(gameType, "", available); err != nil {
		return err
	}
	commitGameType(c, gameType)
	return nil
}

// A home-list map pick belongs to a game type, so changing it drops the
// picked map.
func commitGameType(c *Challenge, gameType team.GameType) {
	changed := c.GameType.Value != gameType
	c.GameType.Set(gameType)
	if changed && c.UsingHomeMapTeam {
		c.Map.Unset()
	}
}

func validateTeamSize(size int, teamID string, rules league.Rules) error {
	if size < rules.MinTeamSize || size > rules.MaxTeamSize {
		return invalid("team_size_range", teamID, "team size must be between %d and %d", rules.MinTeamSize, rules.MaxTeamSize)
	}
	return nil
}

func SuggestTeamSize(c *Challenge, teamID string, size int, rules league.Rules) error {
	if err := requireNegotiable(c, teamID); err != nil {
		return err
	}
	if err := validateTeamSize(size, teamID, rules); err != nil {
		return err
	}
	c.TeamSize.Suggest(teamID, size)
	return nil
}

func ConfirmTeamSize(c *Challenge, teamID string) error {
	if err := requireNegotiable(c, teamID); err != nil {
		return err
	}
	if err := requireConfirmable(&c.TeamSize, "team size", teamID); err != nil {
		return err
	}
	c.TeamSize.Confirm()
	return nil
}

func SetTeamSize(c *Challenge, size int, rules league.Rules) error {
	if err := requireOpen(c, ""); err != nil {
		return err
	}
	if err := validateTeamSize(size, "", rules); err != nil {
		return err
	}
	c.TeamSize.Set(size)
	return nil
}

// SuggestMap proposes a neutral map outside the home map list.
func SuggestMap(c *Challenge, teamID, mapName string) error {
	if err := requireNegotiable(c, teamID); err != nil {
		return err
	}
	mapName = strings.TrimSpace(mapName)
	if mapName == "" {
		return invalid("map_name", teamID, "map name is required")
	}
	c.Map.Suggest(teamID, mapName)
	return nil
}

func ConfirmMap(c *Challenge, teamID string) error {
	if err := requireNegotiable(c, teamID); err != nil {
		return err
	}
	if err := requireConfirmable(&c.Map, "map", teamID); err != nil {
		return err
	}
	c.Map.Confirm()
	c.UsingHomeMapTeam = false
	return nil
}

// PickMap selects the 1-based entry of the home map team's list. The team
// that is not the home map team makes the pick.
func PickMap(c *Challenge, teamID string, index int, homeMaps []string) error {
	if err := requireNegotiable(c, teamID); err != nil {
		return err
	}
	if teamID == c.HomeMapTeamID {
		return invalid("home_team_pick", teamID, "the home map team cannot pick from its own list")
	}
	if !c.UsingHomeMapTeam {
		return invalid("neutral_map", teamID, "this challenge is using a neutral map")
	}
	if !c.GameType.IsSet {
		return invalid("game_type_missing", teamID, "the game type must be set before picking a map")
	}
	if !c.TeamSize.IsSet {
		return invalid("team_size_missing", teamID, "the team size must be set before picking a map")
	}
	if index < 1 || index > len(homeMaps) {
		return invalid("map_index", teamID, "pick a map between 1 and %d", len(homeMaps))
	}

	c.Map.Set(homeMaps[index-1])
	return nil
}

// SetMap commits a map on the admin path. It does not change the home team.
func SetMap(c *Challenge, mapName string) error {
	if err := requireOpen(c, ""); err != nil {
		return err
	}
	mapName = strings.TrimSpace(mapName)
	if mapName == "" {
		return invalid("map_name", "", "map name is required")
	}
	c.Map.Set(mapName)
	return nil
}

func validateMatchTime(c *Challenge, teamID string, at, now time.Time) error {
	if !at.After(now) {
		return invalid("time_in_past", teamID, "the match time must be in the future")
	}
	if c.DateClockDeadline != nil && at.After(*c.DateClockDeadline) {
		return invalid("time_after_deadline", teamID, "the match time must be before the clock deadline of %s", c.DateClockDeadline.UTC().Format(time.RFC1123))
	}
	return nil
}

func SuggestTime(c *Challenge, teamID string, at, now time.Time) error {
	if err := requireNegotiable(c, teamID); err != nil {
		return err
	}
	if err := validateMatchTime(c, teamID, at, now); err != nil {
		return err
	}
	c.MatchTime.Suggest(teamID, at)
	return nil
}

func ConfirmTime(c *Challenge, teamID string, now time.Time) error {
	if err := requireNegotiable(c, teamID); err != nil {
		return err
	}
	if err := requireConfirmable(&c.MatchTime, "match time", teamID); err != nil {
		return err
	}
	if err := validateMatchTime(c, teamID, c.MatchTime.Suggested, now); err != nil {
		return err
	}
	c.MatchTime.Confirm()
	resetTimeNotifications(c)
	return nil
}

// SetTime commits a match time on the admin path; past times are allowed for
// matches being recorded after the fact.
func SetTime(c *Challenge, at time.Time) error {
	if err := requireOpen(c, ""); err != nil {
		return err
	}
	c.MatchTime.Set(at)
	resetTimeNotifications(c)
	return nil
}

func resetTimeNotifications(c *Challenge) {
	c.MatchTimeNotified = false
	c.MatchTimePassedNotified = false
}

func SuggestNeutralServer(c *Challenge, teamID string) error {
	if err := requireNegotiable(c, teamID); err != nil {
		return err
	}
	if !c.UsingHomeServerTeam {
		return invalid("neutral_server", teamID, "this challenge is already using a neutral server")
	}
	c.NeutralServer.Suggest(teamID, true)
	return nil
}

func ConfirmNeutralServer(c *Challenge, teamID string) error {
	if err := requireNegotiable(c, teamID); err != nil {
		return err
	}
	if err := requireConfirmable(&c.NeutralServer, "neutral server", teamID); err != nil {
		return err
	}
	c.NeutralServer.Confirm()
	c.UsingHomeServerTeam = false
	return nil
}

// SetHomeMapTeam makes teamID the home map team and requires a fresh pick.
func SetHomeMapTeam(c *Challenge, teamID string) error {
	if err := requireOpen(c, ""); err != nil {
		return err
	}
	if err := requireParticipant(c, teamID); err != nil {
		return err
	}
	c.HomeMapTeamID = teamID
	c.UsingHomeMapTeam = true
	c.Map.Unset()
	c.Map.Clear()
	return nil
}

func SetHomeServerTeam(c *Challenge, teamID string) error {
	if err := requireOpen(c, ""); err != nil {
		return err
	}
	if err := requireParticipant(c, teamID); err != nil {
		return err
	}
	c.HomeServerTeamID = teamID
	c.UsingHomeServerTeam = true
	c.NeutralServer.Unset()
	c.NeutralServer.Clear()
	return nil
}

func SetTitle(c *Challenge, title string) error {
	if err := requireOpen(c, ""); err != nil {
		return err
	}
	c.Title = strings.TrimSpace(title)
	return nil
}

func SetPostseason(c *Challenge, postseason bool) error {
	if err := requireOpen(c, ""); err != nil {
		return err
	}
	c.Postseason = postseason
	return nil
}

func SetOvertimePeriods(c *Challenge, periods int) error {
	if periods < 0 {
		return invalid("overtime_range", "", "overtime periods cannot be negative")
	}
	if !c.IsReported() {
		return invalid("not_reported", "", "overtime can only be recorded on a reported match")
	}
	c.OvertimePeriods = periods
	return nil
}

// Lock freezes negotiation. There is no unlock.
func Lock(c *Challenge) error {
	if err := requireOpen(c, ""); err != nil {
		return err
	}
	if c.Locked {
		return invalid("locked", "", "this challenge is already locked")
	}
	c.Locked = true
	c.GameType.Clear()
	c.TeamSize.Clear()
	c.Map.Clear()
	c.MatchTime.Clear()
	c.NeutralServer.Clear()
	return nil
}

// Void ends the challenge without a result.
func Void(c *Challenge, now time.Time) error {
	if err := requireOpen(c, ""); err != nil {
		return err
	}
	c.DateVoided = timePtr(now)
	c.DateClockDeadline = nil
	return nil
}

// ReportMatch records a result as reported by the losing team: the opponent
// is credited with the larger score.
func ReportMatch(c *Challenge, teamID string, score1, score2 int, now time.Time) error {
	if err := requireParticipant(c, teamID); err != nil {
		return err
	}
	if err := requireOpen(c, teamID); err != nil {
		return err
	}
	if score1 < 0 || score2 < 0 {
		return invalid("score_range", teamID, "scores cannot be negative")
	}
	switch {
	case !c.Map.IsSet:
		return invalid("map_missing", teamID, "the map must be set before reporting")
	case !c.TeamSize.IsSet:
		return invalid("team_size_missing", teamID, "the team size must be set before reporting")
	case !c.GameType.IsSet:
		return invalid("game_type_missing", teamID, "the game type must be set before reporting")
	case !c.MatchTime.IsSet:
		return invalid("time_missing", teamID, "the match time must be set before reporting")
	}

	if score2 > score1 {
		score1, score2 = score2, score1
	}
	if teamID == c.ChallengingTeamID {
		c.ChallengedTeamScore, c.ChallengingTeamScore = score1, score2
	} else {
		c.ChallengingTeamScore, c.ChallengedTeamScore = score1, score2
	}
	c.ReportingTeamID = teamID
	c.DateReported = timePtr(now)
	return nil
}

// ConfirmMatch accepts the reported result on behalf of the other team.
func ConfirmMatch(c *Challenge, teamID string, now time.Time) error {
	if err := requireParticipant(c, teamID); err != nil {
		return err
	}
	if err := requireOpen(c, teamID); err != nil {
		return err
	}
	if !c.IsReported() {
		return invalid("not_reported", teamID, "this match has not been reported")
	}
	if c.ReportingTeamID == teamID {
		return invalid("same_team_confirm", teamID, "the other team must confirm the reported score")
	}

	c.DateConfirmed = timePtr(now)
	c.DateClockDeadline = nil
	c.GameType.Clear()
	c.TeamSize.Clear()
	c.Map.Clear()
	c.MatchTime.Clear()
	c.NeutralServer.Clear()
	return nil
}

// ClockHistory is what persistence knows about a team's earlier clocks.
type ClockHistory struct {
	ActiveClocks      int
	ClockedRecently   bool
	ClockedThisSeason bool
}

// Clock puts the opponent on a deadline to schedule the match.
func Clock(c *Challenge, teamID string, history ClockHistory, rules league.Rules, now time.Time) error {
	if err := requireParticipant(c, teamID); err != nil {
		return err
	}
	if err := requireOpen(c, teamID); err != nil {
		return err
	}
	switch {
	case c.IsReported():
		return invalid("reported", teamID, "this match has already been reported")
	case c.Locked:
		return invalid("locked", teamID, "this challenge is locked by an admin")
	case c.IsClocked():
		return invalid("already_clocked", teamID, "this challenge is already on the clock")
	case c.MatchTime.IsSet:
		return invalid("time_agreed", teamID, "the match time is already agreed")
	case history.ActiveClocks >= rules.MaxActiveClocks:
		return invalid("clock_limit", teamID, "your team already has %d challenges on the clock", rules.MaxActiveClocks)
	case history.ClockedRecently:
		return invalid("clock_cooldown", teamID, "your team clocked this opponent within the last %d days", int(rules.ClockCooldown.Hours()/24))
	case history.ClockedThisSeason:
		return invalid("clock_season", teamID, "your team already clocked this opponent this season")
	}

	c.ClockTeamID = teamID
	c.DateClocked = timePtr(now)
	c.DateClockDeadline = timePtr(now.Add(rules.ClockDuration))
	c.ClockDeadlineNotified = false
	return nil
}

// ValidateAdjudication checks an admin ruling before anything is applied.
func ValidateAdjudication(c *Challenge, decision Decision, teamIDs []string, now time.Time) error {
	if err := requireOpen(c, ""); err != nil {
		return err
	}
	if !c.IsClocked() || c.DateClockDeadline == nil {
		return invalid("not_clocked", "", "this challenge is not on the clock")
	}
	if !c.ClockExpired(now) {
		return invalid("clock_running", "", "the clock deadline has not passed yet")
	}
	if decision != DecisionPenalize {
		return nil
	}
	if len(teamIDs) == 0 {
		return invalid("penalize_teams", "", "name at least one team to penalize")
	}
	for _, teamID := range teamIDs {
		if !c.IsParticipant(teamID) {
			return invalid("not_participant", teamID, "only teams in this challenge can be penalized")
		}
	}
	return nil
}

// ExtendClock pushes the deadline back. An overdue deadline is extended from
// now so the new one lies ahead.
func ExtendClock(c *Challenge, extension time.Duration, now time.Time) {
	base := *c.DateClockDeadline
	if now.After(base) {
		base = now
	}
	deadline := base.Add(extension)
	c.DateClockDeadline = &deadline
	c.ClockDeadlineNotified = false
}

func RequestRematch(c *Challenge, teamID string, now time.Time) error {
	if err := requireParticipant(c, teamID); err != nil {
		return err
	}
	switch {
	case !c.IsConfirmed():
		return invalid("not_confirmed", teamID, "a rematch can only follow a confirmed match")
	case c.DateRematched != nil:
		return invalid("rematched", teamID, "this match has already been rematched")
	case c.DateRematchRequested != nil && c.RematchRequestedBy == teamID:
		return invalid("rematch_pending", teamID, "your team already requested a rematch")
	}
	c.DateRematchRequested = timePtr(now)
	c.RematchRequestedBy = teamID
	return nil
}

func ConfirmRematch(c *Challenge, teamID string, now time.Time) error {
	if err := requireParticipant(c, teamID); err != nil {
		return err
	}
	switch {
	case c.DateRematched != nil:
		return invalid("rematched", teamID, "this match has already been rematched")
	case c.DateRematchRequested == nil:
		return invalid("no_rematch", teamID, "no rematch has been requested")
	case c.RematchRequestedBy == teamID:
		return invalid("same_team_confirm", teamID, "the other team must confirm the rematch")
	}
	c.DateRematched = timePtr(now)
	return nil
}

// NewRematch builds the follow-up challenge with the roles swapped.
func NewRematch(previous Challenge, id string, now time.Time) Challenge {
	next := Challenge{
		ID:                  id,
		Season:              previous.Season,
		ChannelID:           previous.ChannelID,
		Title:               previous.Title,
		ChallengingTeamID:   previous.ChallengedTeamID,
		ChallengedTeamID:    previous.ChallengingTeamID,
		HomeMapTeamID:       previous.ChallengingTeamID,
		HomeServerTeamID:    previous.ChallengedTeamID,
		UsingHomeMapTeam:    true,
		UsingHomeServerTeam: true,
		Postseason:          previous.Postseason,
		AdminCreated:        previous.AdminCreated,
		DateAdded:           now,
	}
	next.GameType.Set(previous.GameType.Value)
	next.TeamSize.Set(previous.TeamSize.Value)
	return next
}

func AddStreamer(c *Challenge, pilotID string) error {
	if err := requireOpen(c, ""); err != nil {
		return err
	}
	if slices.Contains(c.StreamerIDs, pilotID) {
		return invalid("already_streaming", "", "you are already streaming this match")
	}
	c.StreamerIDs = append(c.StreamerIDs, pilotID)
	return nil
}

func RemoveStreamer(c *Challenge, pilotID string) error {
	idx := slices.Index(c.StreamerIDs, pilotID)
	if idx < 0 {
		return invalid("not_streaming", "", "you are not streaming this match")
	}
	c.StreamerIDs = slices.Delete(slices.Clone(c.StreamerIDs), idx, idx+1)
	return nil
}

func SetCaster(c *Challenge, pilotID string) error {
	if err := requireOpen(c, ""); err != nil {
		return err
	}
	if c.CasterID == pilotID {
		return invalid("already_caster", "", "you are already casting this match")
	}
	if c.CasterID != "" {
		return invalid("caster_taken", "", "this match already has a caster")
	}
	c.CasterID = pilotID
	return nil
}

func UnsetCaster(c *Challenge, pilotID string) error {
	if c.CasterID == "" || c.CasterID != pilotID {
		return invalid("not_caster", "", "you are not casting this match")
	}
	c.CasterID = ""
	return nil
}

func SetVoD(c *Challenge, rawURL string) error {
	if !c.IsConfirmed() {
		return invalid("not_confirmed", "", "a VoD can only be added to a confirmed match")
	}
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return invalid("vod_url", "", "%q is not a valid http(s) URL", rawURL)
	}
	c.VoDURL = parsed.String()
	return nil
}

// AddStat records or replaces a pilot's stat line on a confirmed match.
func AddStat(c *Challenge, stat PlayerStat) error {
	if c.IsClosed() {
		return invalid("closed", stat.TeamID, "this challenge is closed")
	}
	if !c.IsConfirmed() {
		return invalid("not_confirmed", stat.TeamID, "stats can only be added to a confirmed match")
	}
	if err := requireParticipant(c, stat.TeamID); err != nil {
		return err
	}
	if stat.PilotID == "" {
		return invalid("pilot_missing", stat.TeamID, "pilot is required")
	}
	if !c.IsAuthorized(stat.TeamID, stat.PilotID) {
		return invalid("pilot_not_authorized", stat.TeamID, "that pilot is not authorized to play in this match")
	}

	idx := slices.IndexFunc(c.Stats, func(s PlayerStat) bool { return s.PilotID == stat.PilotID })
	if idx >= 0 {
		c.Stats = slices.Clone(c.Stats)
		c.Stats[idx] = stat
		return nil
	}
	if len(c.StatsFor(stat.TeamID)) >= c.TeamSize.Value {
		return invalid("stats_full", stat.TeamID, "that team already has %d stat lines", c.TeamSize.Value)
	}
	c.Stats = append(slices.Clone(c.Stats), stat)
	return nil
}

// Restrict snapshots each team's roster as the pilots allowed to play.
func Restrict(c *Challenge, rosters map[string][]string) error {
	if err := requireOpen(c, ""); err != nil {
		return err
	}
	if c.Restricted {
		return invalid("restricted", "", "this challenge is already restricted")
	}
	c.Restricted = true
	c.AuthorizedPilotIDs = make(map[string][]string, 2)
	for _, teamID := range c.TeamIDs() {
		c.AuthorizedPilotIDs[teamID] = slices.Clone(rosters[teamID])
	}
	return nil
}

func Unrestrict(c *Challenge) error {
	if err := requireOpen(c, ""); err != nil {
		return err
	}
	if !c.Restricted {
		return invalid("not_restricted", "", "this challenge is not restricted")
	}
	c.Restricted = false
	c.AuthorizedPilotIDs = nil
	return nil
}

func AuthorizePilot(c *Challenge, teamID, pilotID string) error {
	if err := requireAuthorizationChange(c, teamID); err != nil {
		return err
	}
	if c.IsAuthorized(teamID, pilotID) {
		return invalid("already_authorized", teamID, "that pilot is already authorized")
	}
	if c.IsAuthorized(c.OpponentOf(teamID), pilotID) {
		return invalid("authorized_for_opponent", teamID, "that pilot is authorized for the other team")
	}
	next := maps.Clone(c.AuthorizedPilotIDs)
	if next == nil {
		next = make(map[string][]string, 2)
	}
	next[teamID] = append(slices.Clone(next[teamID]), pilotID)
	c.AuthorizedPilotIDs = next
	return nil
}

func RevokePilot(c *Challenge, teamID, pilotID string) error {
	if err := requireAuthorizationChange(c, teamID); err != nil {
		return err
	}
	if !c.IsAuthorized(teamID, pilotID) {
		return invalid("not_authorized", teamID, "that pilot is not authorized")
	}
	next := maps.Clone(c.AuthorizedPilotIDs)
	next[teamID] = slices.DeleteFunc(slices.Clone(next[teamID]), func(id string) bool { return id == pilotID })
	c.AuthorizedPilotIDs = next
	return nil
}

func requireAuthorizationChange(c *Challenge, teamID string) error {
	if c.IsClosed() {
		return invalid("closed", teamID, "this challenge is closed")
	}
	if err := requireParticipant(c, teamID); err != nil {
		return err
	}
	if !c.Restricted {
		return invalid("not_restricted", teamID, "this challenge is not restricted")
	}
	return nil
}

func ClearStats(c *Challenge) error {
	if c.IsClosed() {
		return invalid("closed", "", "this challenge is closed")
	}
	c.Stats = nil
	return nil
}

// Close finalizes the challenge. Played matches need a full stat sheet.
func Close(c *Challenge, now time.Time) error {
	if c.IsClosed() {
		return invalid("closed", "", "this challenge is already closed")
	}
	if !c.IsConfirmed() && !c.IsVoided() {
		return invalid("not_decided", "", "only confirmed or voided challenges can be closed")
	}
	if !c.IsVoided() {
		for _, teamID := range c.TeamIDs() {
			if got := len(c.StatsFor(teamID)); got != c.TeamSize.Value {
				return invalid("stats_missing", teamID, "stats are missing for %d pilots", c.TeamSize.Value-got)
			}
		}
	}
	c.DateClosed = timePtr(now)
	return nil
}

// DefaultHomes assigns home map and server teams for a new challenge. A team
// serving a penalty against an unpenalized opponent gives up both.
func DefaultHomes(c *Challenge, challenging, challenged team.Team) {
	c.HomeMapTeamID = challenged.ID
	c.HomeServerTeamID = challenging.ID
	c.UsingHomeMapTeam = true
	c.UsingHomeServerTeam = true

	c.ChallengingTeamPenalized = challenging.PenaltyGamesRemaining > 0
	c.ChallengedTeamPenalized = challenged.PenaltyGamesRemaining > 0
	switch {
	case c.ChallengingTeamPenalized && !c.ChallengedTeamPenalized:
		c.HomeServerTeamID = challenged.ID
	case c.ChallengedTeamPenalized && !c.ChallengingTeamPenalized:
		c.HomeMapTeamID = challenging.ID
	}
}
