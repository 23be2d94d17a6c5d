// Package report drives one fetch -> aggregate -> format -> notify cycle.
package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/athlogic/salesbot/ads"
	"github.com/athlogic/salesbot/notify"
	"github.com/athlogic/salesbot/orders"
	"github.com/athlogic/salesbot/sales"
)

// OrderFetcher retrieves all orders in a time window.
type OrderFetcher interface {
	FetchWindow(ctx context.Context, window orders.Window) ([]orders.Order, error)
}

// AdsFetcher retrieves one day of ad performance.
type AdsFetcher interface {
	DayPerformance(ctx context.Context, day string) (ads.Performance, error)
}

// Runner executes report cycles. It takes the current time as an
// explicit input so scheduling stays outside and cycles are testable.
type Runner struct {
	fetcher  OrderFetcher
	adsStats AdsFetcher // nil disables the ads section
	sink     notify.Sink
	watched  []string
	location *time.Location
}

func NewRunner(fetcher OrderFetcher, adsStats AdsFetcher, sink notify.Sink, watched []string, location *time.Location) (*Runner, error) {
	if fetcher == nil {
		return nil, errors.New("[NewRunner] order fetcher is required")
	}
	if sink == nil {
		return nil, errors.New("[NewRunner] notification sink is required")
	}
	if location == nil {
		return nil, errors.New("[NewRunner] report location is required")
	}

	return &Runner{
		fetcher:  fetcher,
		adsStats: adsStats,
		sink:     sink,
		watched:  watched,
		location: location,
	}, nil
}

// Run executes one report cycle for the calendar day containing now.
// Any failure is converted to an error notification through the same
// sink and returned; the next scheduled cycle is unaffected.
func (r *Runner) Run(ctx context.Context, now time.Time, label string) error {
	cycleID := uuid.New().String()
	date := now.In(r.location).Format("2006-01-02")
	logger := log.With().Str("cycle_id", cycleID).Str("date", date).Str("label", label).Logger()

	window := orders.DayWindow(now, r.location)
	logger.Info().Time("start", window.Start).Time("end", window.End).Msg("report cycle started")

	orderList, err := r.fetcher.FetchWindow(ctx, window)
	if err != nil {
		logger.Error().Err(err).Msg("order fetch failed")
		if sendErr := r.sink.Send(ctx, FormatFailure(date, label, err)); sendErr != nil {
			logger.Error().Err(sendErr).Msg("failure notification undelivered")
		}
		return errors.Wrap(err, "[Run] fetcher.FetchWindow")
	}

	summary := sales.Aggregate(orderList, r.watched)
	text := FormatSummary(date, label, summary)

	if r.adsStats != nil {
		perf, adsErr := r.adsStats.DayPerformance(ctx, date)
		if adsErr != nil {
			// Ads metrics degrade to zeroes; the sales report still goes out.
			logger.Warn().Err(adsErr).Msg("ad performance unavailable, reporting zeroed metrics")
			perf = ads.Performance{Date: date}
		}
		text += "\n\n" + FormatPerformance(perf)
	}

	if err := r.sink.Send(ctx, text); err != nil {
		logger.Error().Err(err).Msg("report notification undelivered")
		return errors.Wrap(err, "[Run] sink.Send")
	}

	logger.Info().Int("orders", summary.TotalOrders).Int64("sales", summary.TotalSales).Msg("report cycle delivered")
	return nil
}
