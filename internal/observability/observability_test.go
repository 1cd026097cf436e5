package observability

import (
	"testing"

	"github.com/riskibarqy/overload-teams-league/internal/config"
	"github.com/riskibarqy/overload-teams-league/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitUptrace_Disabled(t *testing.T) {
	for _, cfg := range []config.Config{
		{UptraceEnabled: false, ServiceName: "otl-bot", AppEnv: config.EnvDev},
		{UptraceEnabled: true, UptraceDSN: "  ", ServiceName: "otl-bot", AppEnv: config.EnvDev},
	} {
		shutdown := InitUptrace(cfg, logging.NewNop())
		require.NotNil(t, shutdown)
		assert.NoError(t, shutdown(t.Context()))
	}
}

func TestInitPyroscope_Disabled(t *testing.T) {
	stop, err := InitPyroscope(config.Config{PyroscopeEnabled: false}, logging.NewNop())
	require.NoError(t, err)
	assert.NoError(t, stop())
}

func TestProfilerConfig_TagsService(t *testing.T) {
	got := profilerConfig(config.Config{
		AppEnv:                 config.EnvDev,
		ServiceName:            "otl-bot",
		ServiceVersion:         "1.2.0",
		StorageDriver:          config.StoragePostgres,
		PyroscopeAppName:       "otl-bot",
		PyroscopeServerAddress: "http://pyroscope:4040",
	})

	assert.Equal(t, "otl-bot", got.ApplicationName)
	assert.Equal(t, "http://pyroscope:4040", got.ServerAddress)
	assert.Equal(t, map[string]string{
		"env":     config.EnvDev,
		"service": "otl-bot",
		"version": "1.2.0",
		"storage": config.StoragePostgres,
	}, got.Tags)
	assert.NotEmpty(t, got.ProfileTypes)
}
