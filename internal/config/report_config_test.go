package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/athlogic/salesbot/internal/config"
)

func TestLoadReportMissingFileUsesDefaults(t *testing.T) {
	report, err := config.LoadReport(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)

	require.Empty(t, report.GetWatchedProducts())
	times := report.GetReportTimes()
	require.Len(t, times, 2)
	require.Equal(t, config.ClockTime{Hour: 12, Minute: 0, Label: "midday"}, times[0])
	require.Equal(t, config.ClockTime{Hour: 23, Minute: 59, Label: "final"}, times[1])
	require.Equal(t, ":moneybag:", report.GetIconEmoji())

	_, offset := time.Date(2026, 8, 30, 0, 0, 0, 0, report.GetReportLocation()).Zone()
	require.Equal(t, 9*3600, offset, "the business day defaults to UTC+9")
}

func TestLoadReportParsesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
watched_products:
  - Cutting Handbook
  - Bulking Handbook
report_times:
  - at: "08:30"
    label: morning
webhook:
  username: Revenue Bot
  icon_emoji: ":chart_with_upwards_trend:"
utc_offset_hours: 0
`), 0o600))

	report, err := config.LoadReport(path)
	require.NoError(t, err)

	require.Equal(t, []string{"Cutting Handbook", "Bulking Handbook"}, report.GetWatchedProducts())
	require.Equal(t, []config.ClockTime{{Hour: 8, Minute: 30, Label: "morning"}}, report.GetReportTimes())
	require.Equal(t, "Revenue Bot", report.GetBotUsername())
	require.Equal(t, ":chart_with_upwards_trend:", report.GetIconEmoji())

	_, offset := time.Date(2026, 8, 30, 0, 0, 0, 0, report.GetReportLocation()).Zone()
	require.Zero(t, offset)
}

func TestLoadReportRejectsMalformedYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.yml")
	require.NoError(t, os.WriteFile(path, []byte("watched_products: {bad"), 0o600))

	_, err := config.LoadReport(path)
	require.Error(t, err)
}

func TestLoadReportRejectsBadTime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
report_times:
  - at: "noonish"
    label: bad
`), 0o600))

	_, err := config.LoadReport(path)
	require.Error(t, err)
}
