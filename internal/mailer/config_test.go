package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, Config{}.Validate(), "disabled mail needs no fields")

	full := Config{
		Enabled:   true,
		Addr:      "localhost:1025",
		From:      "companion@careline.dev",
		Recipient: "user@example.org",
	}
	require.NoError(t, full.Validate())

	for name, mutate := range map[string]func(*Config){
		"addr":      func(c *Config) { c.Addr = "" },
		"from":      func(c *Config) { c.From = "" },
		"recipient": func(c *Config) { c.Recipient = "" },
	} {
		c := full
		mutate(&c)
		assert.Error(t, c.Validate(), name)
	}
}

func TestHost(t *testing.T) {
	assert.Equal(t, "smtp.example.org", host("smtp.example.org:587"))
	assert.Equal(t, "localhost", host("localhost"))
}
