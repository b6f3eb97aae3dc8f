package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"TrendPulse/pkg/util"
)

type Config struct {
	Environment string `yaml:"environment"`
	Logging     struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Server struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Trends struct {
		BaseURL        string        `yaml:"base_url"`
		Terms          []string      `yaml:"terms"`
		StartDate      string        `yaml:"start_date"`
		ChunkDays      int           `yaml:"chunk_days"`
		Retries        int           `yaml:"retries"`
		RequestsPerMin int           `yaml:"requests_per_min"`
		Timeout        time.Duration `yaml:"timeout"`
		FetchInterval  time.Duration `yaml:"fetch_interval"`
	} `yaml:"trends"`
	Anomaly struct {
		ZScoreThreshold    float64           `yaml:"zscore_threshold"`
		ModifiedZThreshold float64           `yaml:"modified_zscore_threshold"`
		Contamination      float64           `yaml:"contamination"`
		Seed               int64             `yaml:"seed"`
		RollingWindow      int               `yaml:"rolling_window"`
		RollingThreshold   float64           `yaml:"rolling_threshold"`
		Quorum             int               `yaml:"quorum"`
		BaselineStart      string            `yaml:"baseline_start"`
		BaselineCutoff     string            `yaml:"baseline_cutoff"`
		EventWindowDays    int               `yaml:"event_window_days"`
		Events             map[string]string `yaml:"events"`
	} `yaml:"anomaly"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Brokers      []string      `yaml:"brokers"`
		AlertTopic   string        `yaml:"alert_topic"`
		RequiredAcks int           `yaml:"required_acks"`
		BatchSize    int           `yaml:"batch_size"`
		BatchTimeout time.Duration `yaml:"batch_timeout"`
	} `yaml:"kafka"`
	Cache struct {
		Backend   string        `yaml:"backend"` // "redis" or "memory"
		Addr      string        `yaml:"addr"`
		Password  string        `yaml:"password"`
		DB        int           `yaml:"db"`
		ReportTTL time.Duration `yaml:"report_ttl"`
	} `yaml:"cache"`
}

// Load reads and parses a YAML configuration file, applies defaults and
// validates it.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	c.Server.Port = util.ParseIntDefault(os.Getenv("SERVER_PORT"), c.Server.Port)
	if v := os.Getenv("TRENDS_BASE_URL"); v != "" {
		c.Trends.BaseURL = v
	}
	if v := os.Getenv("TRENDS_TERMS"); v != "" {
		c.Trends.Terms = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Addr = v
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Trends.StartDate == "" {
		c.Trends.StartDate = "2018-01-01"
	}
	if c.Trends.ChunkDays == 0 {
		c.Trends.ChunkDays = 180
	}
	if c.Trends.Retries == 0 {
		c.Trends.Retries = 3
	}
	if c.Trends.RequestsPerMin == 0 {
		c.Trends.RequestsPerMin = 10
	}
	if c.Trends.Timeout == 0 {
		c.Trends.Timeout = 25 * time.Second
	}
	if c.Trends.FetchInterval == 0 {
		c.Trends.FetchInterval = 24 * time.Hour
	}
	if c.Anomaly.ZScoreThreshold == 0 {
		c.Anomaly.ZScoreThreshold = 2.5
	}
	if c.Anomaly.ModifiedZThreshold == 0 {
		c.Anomaly.ModifiedZThreshold = 3.5
	}
	if c.Anomaly.Contamination == 0 {
		c.Anomaly.Contamination = 0.05
	}
	if c.Anomaly.Seed == 0 {
		c.Anomaly.Seed = 42
	}
	if c.Anomaly.RollingWindow == 0 {
		c.Anomaly.RollingWindow = 12
	}
	if c.Anomaly.RollingThreshold == 0 {
		c.Anomaly.RollingThreshold = 2.5
	}
	if c.Anomaly.Quorum == 0 {
		c.Anomaly.Quorum = 3
	}
	if c.Anomaly.BaselineStart == "" {
		c.Anomaly.BaselineStart = "2019-01-01"
	}
	if c.Anomaly.BaselineCutoff == "" {
		c.Anomaly.BaselineCutoff = "2020-03-01"
	}
	if c.Anomaly.EventWindowDays == 0 {
		c.Anomaly.EventWindowDays = 14
	}
	if c.ClickHouse.Host == "" {
		c.ClickHouse.Host = "localhost"
	}
	if c.ClickHouse.Port == 0 {
		c.ClickHouse.Port = 9000
	}
	if c.ClickHouse.Database == "" {
		c.ClickHouse.Database = "trendpulse"
	}
	if c.ClickHouse.User == "" {
		c.ClickHouse.User = "default"
	}
	if c.ClickHouse.DialTimeout == 0 {
		c.ClickHouse.DialTimeout = 5 * time.Second
	}
	if c.ClickHouse.ReadTimeout == 0 {
		c.ClickHouse.ReadTimeout = 10 * time.Second
	}
	if c.Kafka.RequiredAcks == 0 {
		c.Kafka.RequiredAcks = 1
	}
	if c.Kafka.BatchSize == 0 {
		c.Kafka.BatchSize = 100
	}
	if c.Kafka.BatchTimeout == 0 {
		c.Kafka.BatchTimeout = time.Second
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "memory"
	}
	if c.Cache.ReportTTL == 0 {
		c.Cache.ReportTTL = 15 * time.Minute
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Trends.BaseURL == "" {
		return fmt.Errorf("trends.base_url is required")
	}
	if len(c.Trends.Terms) == 0 {
		return fmt.Errorf("trends.terms cannot be empty")
	}
	if c.Cache.Backend != "memory" && c.Cache.Backend != "redis" {
		return fmt.Errorf("cache.backend must be 'memory' or 'redis', got '%s'", c.Cache.Backend)
	}
	if c.Cache.Backend == "redis" && c.Cache.Addr == "" {
		return fmt.Errorf("cache.addr is required for the redis backend")
	}
	return nil
}
