package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/athlogic/salesbot/ads"
	boterrors "github.com/athlogic/salesbot/internal/errors"
	"github.com/athlogic/salesbot/sales"
)

// FormatSummary renders the sales aggregate as webhook text.
func FormatSummary(date, label string, summary sales.Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, ":bar_chart: *%s %s sales report*\n\n", date, label)
	fmt.Fprintf(&b, ":moneybag: *Total sales*: %s KRW\n", groupDigits(summary.TotalSales))
	fmt.Fprintf(&b, ":package: *Total orders*: %d\n", summary.TotalOrders)

	if len(summary.PerProduct) > 0 {
		b.WriteString("\n:chart_with_upwards_trend: *Sales by product*:\n")
		names := make([]string, 0, len(summary.PerProduct))
		for name := range summary.PerProduct {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			bucket := summary.PerProduct[name]
			fmt.Fprintf(&b, "   - %s: %s KRW (%d items)\n", name, groupDigits(bucket.Sales), bucket.Quantity)
		}
	}

	if summary.TotalOrders > 0 {
		avg := summary.TotalSales / int64(summary.TotalOrders)
		fmt.Fprintf(&b, "\n:bar_chart: *Average order value*: %s KRW", groupDigits(avg))
	}

	return strings.TrimSpace(b.String())
}

// FormatPerformance renders the day's ad metrics as webhook text.
func FormatPerformance(perf ads.Performance) string {
	var b strings.Builder

	fmt.Fprintf(&b, ":iphone: *%s ad performance*\n\n", perf.Date)
	fmt.Fprintf(&b, ":moneybag: *Spend*: %s KRW\n", groupDigits(int64(perf.Spend)))
	fmt.Fprintf(&b, ":eyes: *Impressions*: %s\n", groupDigits(perf.Impressions))
	fmt.Fprintf(&b, ":point_up_2: *Clicks*: %s\n", groupDigits(perf.Clicks))
	fmt.Fprintf(&b, ":bar_chart: *CTR*: %.2f%%\n", perf.CTR)
	fmt.Fprintf(&b, ":dollar: *CPC*: %s KRW\n", groupDigits(int64(perf.CPC)))
	fmt.Fprintf(&b, ":chart_with_upwards_trend: *CPM*: %s KRW\n", groupDigits(int64(perf.CPM)))
	fmt.Fprintf(&b, ":shopping_trolley: *Conversions*: %d\n", perf.Conversions)
	fmt.Fprintf(&b, ":dart: *ROAS*: %.2fx", perf.ROAS)

	return b.String()
}

// FormatFailure renders a cycle failure for the webhook. Credential
// failures carry re-authorization instructions; classification is by
// error kind, never by message text.
func FormatFailure(date, label string, err error) string {
	var b strings.Builder

	fmt.Fprintf(&b, ":x: *%s %s report failed*: %v", date, label, err)
	if boterrors.IsCredentialError(err) {
		b.WriteString("\n\n:key: The stored credentials are unusable. Re-authorize:\n")
		b.WriteString("1. Run the authorize command\n")
		b.WriteString("2. Approve access in the browser\n")
		b.WriteString("3. Paste the authorization code")
	}
	return b.String()
}

// groupDigits formats n with thousands separators.
func groupDigits(n int64) string {
	s := fmt.Sprintf("%d", n)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)

	out := strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return out
}
