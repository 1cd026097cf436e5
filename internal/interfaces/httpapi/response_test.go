package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/overload-teams-league/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSuccess_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(rec, http.StatusOK, map[string]string{"status": "ok"})

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "2.0", body["apiVersion"])
	assert.Contains(t, body, "data")
	assert.NotContains(t, body, "error")
}

func TestWriteError_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, crerr.Wrapf(usecase.ErrInvalidInput, "season must be positive"))

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body googleResponseEnvelope
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	assert.Equal(t, "INVALID_ARGUMENT", body.Error.Status)
	require.Len(t, body.Error.Errors, 1)
	assert.Equal(t, errorDomain, body.Error.Errors[0].Domain)
	assert.Contains(t, body.Error.Message, "season must be positive")
}

func TestWriteError_HidesDatabaseDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	err := crerr.Mark(crerr.New("dial tcp 10.0.0.5:5432: connection refused"), usecase.ErrDatabase)
	writeError(context.Background(), rec, err)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
}

func TestMapError_Precedence(t *testing.T) {
	critical := crerr.Mark(crerr.Mark(crerr.New("cascade"), usecase.ErrDatabase), usecase.ErrCritical)
	assert.Equal(t, "manualInterventionRequired", mapError(critical).Reason)

	conflict := crerr.Mark(crerr.Mark(crerr.New("version"), usecase.ErrConflict), usecase.ErrDatabase)
	assert.Equal(t, http.StatusConflict, mapError(conflict).HTTPStatus)

	assert.Equal(t, http.StatusInternalServerError, mapError(crerr.New("boom")).HTTPStatus)
}
