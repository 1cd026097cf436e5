package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/overload-teams-league/internal/domain/league"
	"github.com/riskibarqy/overload-teams-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/overload-teams-league/internal/platform/id"
	"github.com/riskibarqy/overload-teams-league/internal/platform/logging"
	"github.com/riskibarqy/overload-teams-league/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adminToken = "test-admin-token"

type apiFixture struct {
	router     http.Handler
	challenges *usecase.ChallengeService
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	store := memory.NewSeededStore(memory.SeedTeams())
	rules := league.DefaultRules()
	logger := logging.NewNop()

	ratings := usecase.NewRatingService(store.Ratings(), rules, logger)
	teams := usecase.NewTeamService(store.Teams(), store.Challenges(), rules, id.NewUUIDGenerator(), logger)
	challenges := usecase.NewChallengeService(store.Challenges(), store.Teams(), ratings,
		usecase.NewLogNotifier(logger), id.NewUUIDGenerator(),
		usecase.ChallengeConfig{Rules: rules, MatchStartingLead: 30 * time.Minute, MatchMissedGrace: time.Hour},
		logger,
	)

	return &apiFixture{
		router: NewRouter(NewHandler(teams, challenges, ratings, logger),
			RouterConfig{ServiceName: "otl-test", AdminToken: adminToken}, logger),
		challenges: challenges,
	}
}

func (f *apiFixture) do(t *testing.T, method, path string, header ...string) (*httptest.ResponseRecorder, googleResponseEnvelope) {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var body googleResponseEnvelope
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestHandler_Healthz(t *testing.T) {
	f := newAPIFixture(t)

	rec, body := f.do(t, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, body.Error)
}

func TestHandler_Teams(t *testing.T) {
	f := newAPIFixture(t)

	rec, body := f.do(t, http.MethodGet, "/v1/teams")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body.Data, 3)

	rec, _ = f.do(t, http.MethodGet, "/v1/teams/jgn")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"tag":"JGN"`)

	rec, body = f.do(t, http.MethodGet, "/v1/teams/ZZZ")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, "notFound", body.Error.Errors[0].Reason)
}

func TestHandler_Challenges(t *testing.T) {
	f := newAPIFixture(t)

	item, err := f.challenges.Create(t.Context(), usecase.CreateChallengeInput{
		ChallengingTeamID: memory.TeamIDJuggernaut,
		ChallengedTeamID:  memory.TeamIDTempest,
		ChannelID:         "channel-jgn-tmp",
	})
	require.NoError(t, err)

	rec, _ := f.do(t, http.MethodGet, "/v1/challenges/"+item.ID)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"open"`)
	assert.Contains(t, rec.Body.String(), `"homeMapTeamId"`)

	rec, body := f.do(t, http.MethodGet, "/v1/teams/TMP/challenges")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body.Data, 1)

	rec, _ = f.do(t, http.MethodGet, "/v1/challenges/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_SeasonRatings(t *testing.T) {
	f := newAPIFixture(t)

	rec, body := f.do(t, http.MethodGet, "/v1/seasons/abc/ratings")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, body.Error)

	rec, _ = f.do(t, http.MethodGet, "/v1/seasons/0/ratings")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = f.do(t, http.MethodGet, "/v1/seasons/1/ratings")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body.Data)
}

func TestHandler_RecalculateRequiresAdminToken(t *testing.T) {
	f := newAPIFixture(t)

	rec, _ := f.do(t, http.MethodPost, "/v1/admin/seasons/1/ratings/recalculate")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, body := f.do(t, http.MethodPost, "/v1/admin/seasons/1/ratings/recalculate", "Authorization", "Bearer "+adminToken)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, body.Error)
}
