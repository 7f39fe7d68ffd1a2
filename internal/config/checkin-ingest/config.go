package checkin_ingest_config

import (
	"time"

	agent_config "github.com/NordCoder/Careline/internal/config/agent"
	"github.com/NordCoder/Careline/internal/llm"
	"github.com/NordCoder/Careline/internal/mailer"
	pginfra "github.com/NordCoder/Careline/internal/repository/postgres"
)

type KafkaIn struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	GroupID string   `mapstructure:"group_id"`
}

type IngestCfg struct {
	// WelcomeBackAfter is the absence gap that triggers a welcome-back
	// message when a new check-in arrives.
	WelcomeBackAfter time.Duration `mapstructure:"welcome_back_after"`
	MemoryWindow     int           `mapstructure:"memory_window"`
	MetricsAddr      string        `mapstructure:"metrics_addr"`
}

func (c *IngestCfg) Normalize() {
	if c.WelcomeBackAfter < time.Hour {
		c.WelcomeBackAfter = 12 * time.Hour
	}
	if c.MemoryWindow < 1 {
		c.MemoryWindow = 3
	}
}

type Config struct {
	WebAppURL string `mapstructure:"web_app_url"`

	DB     pginfra.Config       `mapstructure:"db"`
	In     KafkaIn              `mapstructure:"kafka_in"`
	Ingest IngestCfg            `mapstructure:"ingest"`
	SMTP   mailer.Config        `mapstructure:"smtp"`
	LLM    llm.Config           `mapstructure:"llm"`
	OTEL   agent_config.OTELCfg `mapstructure:"otel"`
	Log    agent_config.LogCfg  `mapstructure:"log"`
}
