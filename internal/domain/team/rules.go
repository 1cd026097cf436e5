package team

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/riskibarqy/overload-teams-league/internal/domain/league"
)

// ErrValidation matches every *ValidationError via errors.Is.
var ErrValidation = errors.New("team validation failed")

// ValidationError names the roster precondition that failed and who tried it.
type ValidationError struct {
	Precondition string
	ActorID      string
	Reason       string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(precondition, actorID, format string, args ...any) error {
	return &ValidationError{
		Precondition: precondition,
		ActorID:      actorID,
		Reason:       fmt.Sprintf(format, args...),
	}
}

var (
	tagRegex   = regexp.MustCompile(`^[A-Z0-9]{1,5}$`)
	colorRegex = regexp.MustCompile(`^#[0-9a-f]{6}$`)
)

func NormalizeTag(tag string) (string, error) {
	tag = strings.ToUpper(strings.TrimSpace(tag))
	if !tagRegex.MatchString(tag) {
		return "", invalid("tag_format", "", "team tag %q must be 1 to 5 letters or digits", tag)
	}
	return tag, nil
}

func NormalizeName(name string) (string, error) {
	name = strings.Join(strings.Fields(name), " ")
	if len(name) < 6 || len(name) > 25 {
		return "", invalid("name_length", "", "team name must be between 6 and 25 characters")
	}
	return name, nil
}

func NormalizeColor(color string) (string, error) {
	color = strings.ToLower(strings.TrimSpace(color))
	if !strings.HasPrefix(color, "#") {
		color = "#" + color
	}
	if !colorRegex.MatchString(color) {
		return "", invalid("color_format", "", "color %q must be a hex value like #ff8800", color)
	}
	return color, nil
}

func requireActive(t *Team, actorID string) error {
	if t.Disbanded {
		return invalid("team_disbanded", actorID, "team %s is disbanded", t.Tag)
	}
	return nil
}

func requireUnlocked(t *Team, actorID string) error {
	if t.Locked {
		return invalid("team_locked", actorID, "team %s is locked and its roster cannot change", t.Tag)
	}
	return nil
}

// AddPilot puts a pilot on the roster. Guests do not count toward the cap.
func AddPilot(t *Team, pilotID string, capExempt bool, rules league.Rules) error {
	if err := requireActive(t, pilotID); err != nil {
		return err
	}
	if err := requireUnlocked(t, pilotID); err != nil {
		return err
	}
	if t.HasPilot(pilotID) {
		return invalid("already_on_roster", pilotID, "pilot is already on team %s", t.Tag)
	}
	if !capExempt && t.CappedPilotCount() >= rules.MaxRosterSize {
		return invalid("roster_full", pilotID, "team %s already has %d pilots", t.Tag, rules.MaxRosterSize)
	}

	t.PilotIDs = append(t.PilotIDs, pilotID)
	if capExempt {
		t.GuestIDs = append(t.GuestIDs, pilotID)
	}
	return nil
}

// RemovePilot takes a pilot off the roster along with any captaincy.
func RemovePilot(t *Team, pilotID string) error {
	if err := requireActive(t, pilotID); err != nil {
		return err
	}
	if err := requireUnlocked(t, pilotID); err != nil {
		return err
	}
	if !t.HasPilot(pilotID) {
		return invalid("not_on_roster", pilotID, "pilot is not on team %s", t.Tag)
	}
	if t.IsFounder(pilotID) {
		return invalid("founder_removal", pilotID, "the founder of %s cannot be removed; transfer the team or disband it", t.Tag)
	}

	DropPilot(t, pilotID)
	return nil
}

// DropPilot removes a pilot without roster checks. Departures from the
// server use it so a locked roster does not keep a ghost member.
func DropPilot(t *Team, pilotID string) {
	t.PilotIDs = removeID(t.PilotIDs, pilotID)
	t.CaptainIDs = removeID(t.CaptainIDs, pilotID)
	t.GuestIDs = removeID(t.GuestIDs, pilotID)
}

// Disband empties the roster and returns the leaders at the time of
// disbanding.
func Disband(t *Team, now time.Time) (leaders []string, err error) {
	if err := requireActive(t, ""); err != nil {
		return nil, err
	}
	leaders = t.LeaderIDs()
	t.Disbanded = true
	t.DisbandedAt = &now
	t.Locked = false
	t.FounderID = ""
	t.CaptainIDs = nil
	t.GuestIDs = nil
	t.PilotIDs = nil
	return leaders, nil
}

// Reinstate revives a disbanded team under a new founder with a clean record.
func Reinstate(t *Team, founderID string) error {
	if !t.Disbanded {
		return invalid("team_active", founderID, "team %s is not disbanded", t.Tag)
	}
	t.Disbanded = false
	t.DisbandedAt = nil
	t.FounderID = founderID
	t.PilotIDs = []string{founderID}
	t.Penalties = 0
	t.PenaltyGamesRemaining = 0
	return nil
}

func AddCaptain(t *Team, pilotID string, rules league.Rules) error {
	if err := requireActive(t, pilotID); err != nil {
		return err
	}
	if !t.HasPilot(pilotID) {
		return invalid("not_on_roster", pilotID, "pilot is not on team %s", t.Tag)
	}
	if t.IsCaptain(pilotID) {
		return invalid("already_captain", pilotID, "pilot is already a captain of %s", t.Tag)
	}
	if len(t.CaptainIDs) >= rules.MaxCaptains {
		return invalid("captains_full", pilotID, "team %s already has %d captains", t.Tag, rules.MaxCaptains)
	}

	t.CaptainIDs = append(t.CaptainIDs, pilotID)
	return nil
}

func RemoveCaptain(t *Team, pilotID string) error {
	if err := requireActive(t, pilotID); err != nil {
		return err
	}
	if t.IsFounder(pilotID) {
		return invalid("founder_captaincy", pilotID, "the founder of %s cannot lose captain powers", t.Tag)
	}
	if !slices.Contains(t.CaptainIDs, pilotID) {
		return invalid("not_captain", pilotID, "pilot is not a captain of %s", t.Tag)
	}

	t.CaptainIDs = removeID(t.CaptainIDs, pilotID)
	return nil
}

// TransferFounder hands the team to another roster member. The outgoing
// founder stays on as captain when there is room.
func TransferFounder(t *Team, newFounderID string, rules league.Rules) error {
	if err := requireActive(t, newFounderID); err != nil {
		return err
	}
	if !t.HasPilot(newFounderID) {
		return invalid("not_on_roster", newFounderID, "pilot is not on team %s", t.Tag)
	}
	if t.IsFounder(newFounderID) {
		return invalid("already_founder", newFounderID, "pilot already founded %s", t.Tag)
	}
	if t.IsGuest(newFounderID) {
		return invalid("guest_founder", newFounderID, "a guest cannot become founder of %s", t.Tag)
	}

	previous := t.FounderID
	t.CaptainIDs = removeID(t.CaptainIDs, newFounderID)
	t.FounderID = newFounderID
	if previous != "" && len(t.CaptainIDs) < rules.MaxCaptains {
		t.CaptainIDs = append(t.CaptainIDs, previous)
	}
	return nil
}

func AddHomeMap(t *Team, gameType GameType, mapName string, rules league.Rules) error {
	if err := requireActive(t, ""); err != nil {
		return err
	}
	mapName = strings.TrimSpace(mapName)
	if mapName == "" {
		return invalid("map_name", "", "map name is required")
	}
	current := t.HomeMaps[gameType]
	if containsFold(current, mapName) {
		return invalid("duplicate_home_map", "", "%s is already a %s home map of %s", mapName, gameType, t.Tag)
	}
	if len(current) >= rules.HomeMapsPerGameType {
		return invalid("home_maps_full", "", "team %s already has %d %s home maps; remove one first", t.Tag, rules.HomeMapsPerGameType, gameType)
	}

	if t.HomeMaps == nil {
		t.HomeMaps = make(map[GameType][]string)
	}
	t.HomeMaps[gameType] = append(current, mapName)
	return nil
}

// RemoveHomeMap drops a map. The team cannot be challenged in that game type
// until the list is full again.
func RemoveHomeMap(t *Team, gameType GameType, mapName string) error {
	if err := requireActive(t, ""); err != nil {
		return err
	}
	current := t.HomeMaps[gameType]
	idx := slices.IndexFunc(current, func(v string) bool { return strings.EqualFold(v, strings.TrimSpace(mapName)) })
	if idx < 0 {
		return invalid("unknown_home_map", "", "%s is not a %s home map of %s", mapName, gameType, t.Tag)
	}

	t.HomeMaps[gameType] = slices.Delete(slices.Clone(current), idx, idx+1)
	return nil
}

// SetNeutralMap records the single pending neutral preference for a game type.
func SetNeutralMap(t *Team, gameType GameType, mapName string) error {
	if err := requireActive(t, ""); err != nil {
		return err
	}
	mapName = strings.TrimSpace(mapName)
	if mapName == "" {
		return invalid("map_name", "", "map name is required")
	}
	if containsFold(t.HomeMaps[gameType], mapName) {
		return invalid("neutral_is_home", "", "%s is already a %s home map of %s", mapName, gameType, t.Tag)
	}
	if existing, ok := t.NeutralMaps[gameType]; ok && existing != "" {
		return invalid("neutral_pending", "", "team %s already has %s pending as its %s neutral map", t.Tag, existing, gameType)
	}

	if t.NeutralMaps == nil {
		t.NeutralMaps = make(map[GameType]string)
	}
	t.NeutralMaps[gameType] = mapName
	return nil
}

func ClearNeutralMap(t *Team, gameType GameType) error {
	if _, ok := t.NeutralMaps[gameType]; !ok {
		return invalid("no_neutral", "", "team %s has no %s neutral map", t.Tag, gameType)
	}
	delete(t.NeutralMaps, gameType)
	return nil
}

// ApplyPenalty records one strike and reports whether the team must disband.
func ApplyPenalty(t *Team, rules league.Rules) (disband bool) {
	t.Penalties++
	if t.Penalties >= 2 {
		return true
	}
	t.PenaltyGamesRemaining = rules.PenaltyGames
	return false
}

func removeID(ids []string, id string) []string {
	return slices.DeleteFunc(slices.Clone(ids), func(v string) bool { return v == id })
}

func containsFold(items []string, v string) bool {
	return slices.ContainsFunc(items, func(item string) bool { return strings.EqualFold(item, v) })
}
