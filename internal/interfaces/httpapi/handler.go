package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	crerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/overload-teams-league/internal/platform/logging"
	"github.com/riskibarqy/overload-teams-league/internal/usecase"
)

// Handler serves the read-only league API plus an admin rating rerun.
type Handler struct {
	teamService      *usecase.TeamService
	challengeService *usecase.ChallengeService
	ratingService    *usecase.RatingService
	logger           *logging.Logger
	validator        *validator.Validate
}

func NewHandler(
	teamService *usecase.TeamService,
	challengeService *usecase.ChallengeService,
	ratingService *usecase.RatingService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		teamService:      teamService,
		challengeService: challengeService,
		ratingService:    ratingService,
		logger:           logger,
		validator:        validator.New(),
	}
}

type seasonPath struct {
	Season int `validate:"min=1"`
}

func (h *Handler) seasonFromPath(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.PathValue("season"))
	season, err := strconv.Atoi(raw)
	if err != nil {
		return 0, crerr.Wrapf(usecase.ErrInvalidInput, "season %q is not a number", raw)
	}
	if err := h.validator.Struct(seasonPath{Season: season}); err != nil {
		return 0, crerr.Wrapf(usecase.ErrInvalidInput, "season must be positive")
	}
	return season, nil
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeams")
	defer span.End()

	includeDisbanded, _ := strconv.ParseBool(r.URL.Query().Get("include_disbanded"))
	items, err := h.teamService.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list teams failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]teamDTO, 0, len(items))
	for _, item := range items {
		if item.Disbanded && !includeDisbanded {
			continue
		}
		out = append(out, toTeamDTO(item))
	}
	writeSuccess(w, http.StatusOK, out)
}

func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeam")
	defer span.End()

	item, err := h.teamService.GetByTag(ctx, r.PathValue("tag"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toTeamDTO(item))
}

func (h *Handler) ListTeamChallenges(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeamChallenges")
	defer span.End()

	item, err := h.teamService.GetByTag(ctx, r.PathValue("tag"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	challenges, err := h.challengeService.ListOpenByTeam(ctx, item.ID)
	if err != nil {
		h.logger.ErrorContext(ctx, "list open challenges failed", "team_id", item.ID, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]challengeDTO, 0, len(challenges))
	for _, c := range challenges {
		out = append(out, toChallengeDTO(c))
	}
	writeSuccess(w, http.StatusOK, out)
}

func (h *Handler) GetChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetChallenge")
	defer span.End()

	item, err := h.challengeService.Get(ctx, r.PathValue("challengeID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toChallengeDTO(item))
}

func (h *Handler) ListSeasonRatings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSeasonRatings")
	defer span.End()

	season, err := h.seasonFromPath(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	ratings, err := h.ratingService.SeasonRatings(ctx, season)
	if err != nil {
		h.logger.ErrorContext(ctx, "list season ratings failed", "season", season, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toRatingDTOs(ratings))
}

func (h *Handler) RecalculateSeasonRatings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecalculateSeasonRatings")
	defer span.End()

	season, err := h.seasonFromPath(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	ratings, err := h.ratingService.RecalculateSeason(ctx, season)
	if err != nil {
		h.logger.ErrorContext(ctx, "recalculate season ratings failed", "season", season, "error", err)
		writeError(ctx, w, err)
		return
	}
	h.logger.InfoContext(ctx, "season ratings recalculated", "season", season, "teams", len(ratings))
	writeSuccess(w, http.StatusOK, toRatingDTOs(ratings))
}
