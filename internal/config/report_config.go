package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ClockTime is a wall-clock time of day in the report timezone.
type ClockTime struct {
	Hour   int
	Minute int
	Label  string
}

type ReportConfig interface {
	GetWatchedProducts() []string
	GetReportTimes() []ClockTime
	GetBotUsername() string
	GetIconEmoji() string
	GetReportLocation() *time.Location
	GetHealthCheckDay() time.Weekday
	GetHealthCheckTime() ClockTime
	GetMaintenanceRefreshEvery() time.Duration
	GetMaintenanceRefreshTime() ClockTime
}

// Report holds the tunables read from the yaml report config. A missing
// file leaves the defaults in place; a malformed file is a startup error.
type Report struct {
	watchedProducts []string
	reportTimes     []ClockTime
	botUsername     string
	iconEmoji       string
	utcOffsetHours  int
}

var _ ReportConfig = Report{}

type reportFile struct {
	WatchedProducts []string `yaml:"watched_products"`
	ReportTimes     []struct {
		At    string `yaml:"at"` // "HH:MM"
		Label string `yaml:"label"`
	} `yaml:"report_times"`
	Webhook struct {
		Username  string `yaml:"username"`
		IconEmoji string `yaml:"icon_emoji"`
	} `yaml:"webhook"`
	UTCOffsetHours *int `yaml:"utc_offset_hours"`
}

func LoadReport(path string) (Report, error) {
	r := Report{
		reportTimes: []ClockTime{
			{Hour: 12, Minute: 0, Label: "midday"},
			{Hour: 23, Minute: 59, Label: "final"},
		},
		botUsername:    "Sales Bot",
		iconEmoji:      ":moneybag:",
		utcOffsetHours: 9, // business day is anchored to KST
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return r, nil
	}

	var f reportFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return Report{}, fmt.Errorf("parse report config %s: %w", path, err)
	}
	if len(f.WatchedProducts) > 0 {
		r.watchedProducts = f.WatchedProducts
	}
	if len(f.ReportTimes) > 0 {
		times := make([]ClockTime, 0, len(f.ReportTimes))
		for _, rt := range f.ReportTimes {
			var h, m int
			if _, err := fmt.Sscanf(rt.At, "%d:%d", &h, &m); err != nil {
				return Report{}, fmt.Errorf("parse report time %q: %w", rt.At, err)
			}
			times = append(times, ClockTime{Hour: h, Minute: m, Label: rt.Label})
		}
		r.reportTimes = times
	}
	if f.Webhook.Username != "" {
		r.botUsername = f.Webhook.Username
	}
	if f.Webhook.IconEmoji != "" {
		r.iconEmoji = f.Webhook.IconEmoji
	}
	if f.UTCOffsetHours != nil {
		r.utcOffsetHours = *f.UTCOffsetHours
	}
	return r, nil
}

func (r Report) GetWatchedProducts() []string {
	return r.watchedProducts
}

func (r Report) GetReportTimes() []ClockTime {
	return r.reportTimes
}

func (r Report) GetBotUsername() string {
	return r.botUsername
}

func (r Report) GetIconEmoji() string {
	return r.iconEmoji
}

func (r Report) GetReportLocation() *time.Location {
	return time.FixedZone(fmt.Sprintf("UTC%+d", r.utcOffsetHours), r.utcOffsetHours*3600)
}

func (Report) GetHealthCheckDay() time.Weekday {
	return time.Monday
}

func (Report) GetHealthCheckTime() ClockTime {
	return ClockTime{Hour: 9, Minute: 0, Label: "health check"}
}

func (Report) GetMaintenanceRefreshEvery() time.Duration {
	return 30 * 24 * time.Hour
}

func (Report) GetMaintenanceRefreshTime() ClockTime {
	return ClockTime{Hour: 3, Minute: 0, Label: "maintenance refresh"}
}
