package apiconfig

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigYaml = `
api:
  public_server_port: 8080
  admin_server_port: 8180
authority:
  address: owner-addr
  responders:
    - responder-one
    - responder-two
queries:
  ttl_seconds: 1800
fees:
  - query_type: whale_trades
    fee: "100"
    supported: true
  - query_type: pool_analytics
    fee: "50"
    supported: false
storage:
  ledger_path: /var/lib/coordination/ledger.db
  reports:
    type: hybrid
    postgres_url: postgres://localhost/coordination
    file_dir: /var/lib/coordination/reports
`

func TestLoadConfigBytes(t *testing.T) {
	m, err := LoadConfigBytes([]byte(testConfigYaml))
	require.NoError(t, err)
	cfg := m.GetConfig()

	assert.Equal(t, 8080, cfg.Api.PublicServerPort)
	assert.Equal(t, 8180, cfg.Api.AdminServerPort)
	assert.Equal(t, "owner-addr", cfg.Authority.Address)
	assert.Equal(t, []string{"responder-one", "responder-two"}, cfg.Authority.Responders)
	assert.Equal(t, 30*time.Minute, cfg.Queries.Ttl())

	require.Len(t, cfg.Fees, 2)
	assert.Equal(t, "whale_trades", cfg.Fees[0].QueryType)
	assert.Equal(t, "100", cfg.Fees[0].Fee)
	assert.False(t, cfg.Fees[1].Supported)

	assert.Equal(t, "hybrid", cfg.Storage.Reports.Type)
	assert.Equal(t, "postgres://localhost/coordination", cfg.Storage.Reports.PostgresUrl)
}

func TestLoadConfigBytesDefaultsApply(t *testing.T) {
	m, err := LoadConfigBytes([]byte("authority:\n  address: owner-addr\n"))
	require.NoError(t, err)
	cfg := m.GetConfig()

	// Everything but the authority comes from the defaults.
	assert.Equal(t, 9000, cfg.Api.PublicServerPort)
	assert.Equal(t, int64(3600), cfg.Queries.TtlSeconds)
	assert.Equal(t, time.Minute, cfg.Queries.SweepInterval())
	assert.Equal(t, "coordination.db", cfg.Storage.LedgerPath)
	assert.Equal(t, "file", cfg.Storage.Reports.Type)
	assert.Equal(t, 4222, cfg.Nats.Port)
}

func TestLoadConfigBytesRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"missing authority": "api:\n  public_server_port: 8080\n",
		"bad port":          "authority:\n  address: a\napi:\n  public_server_port: 99999\n",
		"zero ttl":          "authority:\n  address: a\nqueries:\n  ttl_seconds: 0\n",
		"bad reports type":  "authority:\n  address: a\nstorage:\n  reports:\n    type: s3\n",
		"unnamed fee":       "authority:\n  address: a\nfees:\n  - fee: \"10\"\n",
	}
	for name, yml := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfigBytes([]byte(yml))
			require.Error(t, err)
		})
	}
}

func TestEnvKeyToPath(t *testing.T) {
	assert.Equal(t, "api.admin_server_port", envKeyToPath("COORDINATION_API__ADMIN_SERVER_PORT"))
	assert.Equal(t, "authority.address", envKeyToPath("COORDINATION_AUTHORITY__ADDRESS"))
	assert.Equal(t, "queries.ttl_seconds", envKeyToPath("COORDINATION_QUERIES__TTL_SECONDS"))
}
