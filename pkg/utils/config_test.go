package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_DefaultsWithoutEnvFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SMTP_HOST", "")
	t.Setenv("EMAIL_DRIVER", "")
	t.Setenv("ORGANIZER_IDENTITY", "  organizer  ")
	t.Setenv("ALLOWED_EMAIL_DOMAINS", "UARK.edu, ,uada.edu")

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 2, config.Reservation.QuotaMax)
	assert.Equal(t, "organizer", config.Reservation.OrganizerIdentity)
	assert.Equal(t, []string{"uark.edu", "uada.edu"}, config.Reservation.AllowedDomains)
	assert.Equal(t, []string{"student", "staff"}, config.Reservation.RestrictedAffiliations)
	assert.Equal(t, "outbox", config.Email.Driver)
	assert.Equal(t, 15*time.Second, config.Email.Timeout)
	assert.Equal(t, 10, config.Venue.Rows)
	assert.Equal(t, 25, config.Venue.SeatsPerRow)
}

func TestLoadConfig_SMTPHostSelectsSMTP(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("EMAIL_DRIVER", "")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_USER", "tickets@example.com")
	t.Setenv("EMAIL_FROM", "")

	config, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "smtp", config.Email.Driver)
	assert.Equal(t, "tickets@example.com", config.Email.From)
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, SplitList(""))
	assert.Equal(t, []string{"a", "b"}, SplitList(" A,,b "))
}
