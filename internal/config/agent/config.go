package agent_config

import (
	"time"

	"github.com/NordCoder/Careline/internal/llm"
	"github.com/NordCoder/Careline/internal/mailer"
	"github.com/NordCoder/Careline/internal/obs"
	pginfra "github.com/NordCoder/Careline/internal/repository/postgres"
)

type SchedCfg struct {
	Tick                time.Duration `mapstructure:"tick"`
	PeriodicInterval    time.Duration `mapstructure:"periodic_interval"`
	InactivityThreshold time.Duration `mapstructure:"inactivity_threshold"`
	MemoryWindow        int           `mapstructure:"memory_window"`
	MetricsAddr         string        `mapstructure:"metrics_addr"`
}

const (
	minPeriodicInterval = 2 * time.Hour
	maxPeriodicInterval = 5 * time.Hour
)

// Normalize clamps the cadence settings into their supported ranges.
func (s *SchedCfg) Normalize() {
	if s.Tick <= 0 {
		s.Tick = 5 * time.Minute
	}
	if s.PeriodicInterval < minPeriodicInterval {
		s.PeriodicInterval = minPeriodicInterval
	}
	if s.PeriodicInterval > maxPeriodicInterval {
		s.PeriodicInterval = maxPeriodicInterval
	}
	if s.InactivityThreshold < time.Hour {
		s.InactivityThreshold = 12 * time.Hour
	}
	if s.MemoryWindow < 1 {
		s.MemoryWindow = 3
	}
}

type KafkaOut struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type OTELCfg struct {
	Enable      bool    `mapstructure:"enable"`
	ServiceName string  `mapstructure:"service_name"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
	Endpoint    string  `mapstructure:"otlp_endpoint"`
}

func (o OTELCfg) AsOTELConfig() *obs.OTELConfig {
	return &obs.OTELConfig{
		Enable:      o.Enable,
		Endpoint:    o.Endpoint,
		ServiceName: o.ServiceName,
		SampleRatio: o.SampleRatio,
	}
}

type LogCfg struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
	App    string `mapstructure:"app"`
	Env    string `mapstructure:"env"`
	Ver    string `mapstructure:"ver"`
}

func (l LogCfg) AsLoggerConfig() obs.LogConfig {
	return obs.LogConfig{Level: l.Level, Pretty: l.Pretty, App: l.App, Env: l.Env, Ver: l.Ver}
}

type Config struct {
	// WebAppURL is embedded in outgoing messages so the user can jump
	// straight to the check-in page.
	WebAppURL string `mapstructure:"web_app_url"`

	DB    pginfra.Config `mapstructure:"db"`
	Sched SchedCfg       `mapstructure:"sched"`
	SMTP  mailer.Config  `mapstructure:"smtp"`
	Kafka KafkaOut       `mapstructure:"kafka_out"`
	LLM   llm.Config     `mapstructure:"llm"`
	OTEL  OTELCfg        `mapstructure:"otel"`
	Log   LogCfg         `mapstructure:"log"`
}
