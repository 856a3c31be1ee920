package apiconfig

import (
	"fmt"
	"time"
)

type Config struct {
	Api       ApiConfig        `koanf:"api" json:"api"`
	Authority AuthorityConfig  `koanf:"authority" json:"authority"`
	Queries   QueryConfig      `koanf:"queries" json:"queries"`
	Fees      []FeeEntryConfig `koanf:"fees" json:"fees"`
	Nats      NatsServerConfig `koanf:"nats" json:"nats"`
	Storage   StorageConfig    `koanf:"storage" json:"storage"`
}

type ApiConfig struct {
	PublicServerPort int    `koanf:"public_server_port" json:"public_server_port"`
	AdminServerPort  int    `koanf:"admin_server_port" json:"admin_server_port"`
	PublicUrl        string `koanf:"public_url" json:"public_url"`
	TestMode         bool   `koanf:"test_mode" json:"test_mode"`
}

// AuthorityConfig names the owner account and the responder accounts trusted
// to post results and insights. Responders granted at runtime through the
// admin API are additive to this list.
type AuthorityConfig struct {
	Address    string   `koanf:"address" json:"address"`
	Responders []string `koanf:"responders" json:"responders"`
}

type QueryConfig struct {
	TtlSeconds           int64 `koanf:"ttl_seconds" json:"ttl_seconds"`
	SweepIntervalSeconds int64 `koanf:"sweep_interval_seconds" json:"sweep_interval_seconds"`
	SweepBatchSize       int64 `koanf:"sweep_batch_size" json:"sweep_batch_size"`
}

func (q QueryConfig) Ttl() time.Duration {
	return time.Duration(q.TtlSeconds) * time.Second
}

func (q QueryConfig) SweepInterval() time.Duration {
	return time.Duration(q.SweepIntervalSeconds) * time.Second
}

// FeeEntryConfig seeds one fee-schedule row at startup. Entries already in
// the ledger win over the seed.
type FeeEntryConfig struct {
	QueryType string `koanf:"query_type" json:"query_type"`
	Fee       string `koanf:"fee" json:"fee"`
	Supported bool   `koanf:"supported" json:"supported"`
}

type NatsServerConfig struct {
	Host                  string `koanf:"host" json:"host"`
	Port                  int    `koanf:"port" json:"port"`
	MaxMessagesAgeSeconds int64  `koanf:"max_messages_age_seconds" json:"max_messages_age_seconds"`
}

type StorageConfig struct {
	LedgerPath string        `koanf:"ledger_path" json:"ledger_path"`
	Reports    ReportsConfig `koanf:"reports" json:"reports"`
}

// ReportsConfig selects where full insight reports live. Type is one of
// "postgres", "file" or "hybrid"; empty disables report storage entirely.
type ReportsConfig struct {
	Type        string `koanf:"type" json:"type"`
	PostgresUrl string `koanf:"postgres_url" json:"postgres_url"`
	FileDir     string `koanf:"file_dir" json:"file_dir"`
	MaxSizeMb   int    `koanf:"max_size_mb" json:"max_size_mb"`
}

func DefaultConfig() Config {
	return Config{
		Api: ApiConfig{
			PublicServerPort: 9000,
			AdminServerPort:  9200,
		},
		Queries: QueryConfig{
			TtlSeconds:           3600,
			SweepIntervalSeconds: 60,
			SweepBatchSize:       100,
		},
		Nats: NatsServerConfig{
			Host:                  "localhost",
			Port:                  4222,
			MaxMessagesAgeSeconds: 3600,
		},
		Storage: StorageConfig{
			LedgerPath: "coordination.db",
			Reports: ReportsConfig{
				Type:      "file",
				FileDir:   "reports",
				MaxSizeMb: 16,
			},
		},
	}
}

// Validate rejects configurations the service cannot start with.
func (c Config) Validate() error {
	if c.Api.PublicServerPort <= 0 || c.Api.PublicServerPort > 65535 {
		return fmt.Errorf("public_server_port must be between 1 and 65535, got %d", c.Api.PublicServerPort)
	}
	if c.Api.AdminServerPort <= 0 || c.Api.AdminServerPort > 65535 {
		return fmt.Errorf("admin_server_port must be between 1 and 65535, got %d", c.Api.AdminServerPort)
	}
	if c.Authority.Address == "" {
		return fmt.Errorf("authority.address is required")
	}
	if c.Queries.TtlSeconds <= 0 {
		return fmt.Errorf("queries.ttl_seconds must be positive, got %d", c.Queries.TtlSeconds)
	}
	if c.Queries.SweepIntervalSeconds <= 0 {
		return fmt.Errorf("queries.sweep_interval_seconds must be positive, got %d", c.Queries.SweepIntervalSeconds)
	}
	if c.Queries.SweepBatchSize <= 0 {
		return fmt.Errorf("queries.sweep_batch_size must be positive, got %d", c.Queries.SweepBatchSize)
	}
	if c.Storage.LedgerPath == "" {
		return fmt.Errorf("storage.ledger_path is required")
	}
	for i, fee := range c.Fees {
		if fee.QueryType == "" {
			return fmt.Errorf("fees[%d].query_type is required", i)
		}
	}
	switch c.Storage.Reports.Type {
	case "", "file", "postgres", "hybrid":
	default:
		return fmt.Errorf("storage.reports.type must be file, postgres or hybrid, got %q", c.Storage.Reports.Type)
	}
	return nil
}
