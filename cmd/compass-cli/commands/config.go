package commands

import (
	"fmt"

	"bellweaver-backend/internal/eventstore"
)

const (
	defaultMockBaseUrl   = "https://mock.compass.education"
	defaultTimezone      = "Australia/Sydney"
	defaultWatchSchedule = "0 */6 * * *"
	defaultWatchDays     = 14
)

type CompassConfig struct {
	BaseUrl          string `json:"base_url"`
	Username         string `json:"username"`
	Password         string `json:"password"`
	Mock             bool   `json:"mock"`
	CloudflareBypass bool   `json:"cloudflare_bypass"`
	// RedirectHosts are extra hosts the portal may redirect to.
	RedirectHosts []string `json:"redirect_hosts"`
}

type WatchConfig struct {
	// Schedule is a standard 5 field cron spec.
	Schedule string `json:"schedule"`
	// Days is how many days ahead of today each sync fetches.
	Days int `json:"days"`
}

type Config struct {
	Compass  CompassConfig     `json:"compass"`
	Store    eventstore.Config `json:"store"`
	Watch    WatchConfig       `json:"watch"`
	Timezone string            `json:"timezone"`
}

// withDefaults fills in every optional field and validates the rest, `mock`
// forces the mock client regardless of the file.
func (c Config) withDefaults(mock bool) (Config, error) {
	if mock {
		c.Compass.Mock = true
	}
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	if c.Watch.Schedule == "" {
		c.Watch.Schedule = defaultWatchSchedule
	}
	if c.Watch.Days <= 0 {
		c.Watch.Days = defaultWatchDays
	}

	if c.Compass.Mock {
		if c.Compass.BaseUrl == "" {
			c.Compass.BaseUrl = defaultMockBaseUrl
		}
		return c, nil
	}

	if c.Compass.BaseUrl == "" {
		return c, fmt.Errorf("compass.base_url is required")
	}
	if c.Compass.Username == "" || c.Compass.Password == "" {
		return c, fmt.Errorf("compass.username and compass.password are required")
	}
	return c, nil
}
