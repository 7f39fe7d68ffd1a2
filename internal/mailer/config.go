package mailer

import (
	"fmt"
	"time"
)

type Config struct {
	Enabled    bool          `mapstructure:"enabled"`
	Addr       string        `mapstructure:"addr"`
	From       string        `mapstructure:"from"`
	User       string        `mapstructure:"user"`
	Password   string        `mapstructure:"password"`
	Recipient  string        `mapstructure:"recipient"`
	UseTLS     bool          `mapstructure:"use_tls"`
	Timeout    time.Duration `mapstructure:"timeout"`
	SubjPrefix string        `mapstructure:"subj_prefix"`
}

// Validate reports a config error when mail is enabled but unusable.
// Callers disable the feature and keep running; the loop itself never
// depends on mail being configured.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Addr == "" {
		return fmt.Errorf("smtp enabled but addr is empty")
	}
	if c.From == "" {
		return fmt.Errorf("smtp enabled but from is empty")
	}
	if c.Recipient == "" {
		return fmt.Errorf("smtp enabled but recipient is empty")
	}
	return nil
}
