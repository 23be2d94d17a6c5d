package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/athlogic/salesbot/ads"
	"github.com/athlogic/salesbot/internal/config"
	"github.com/athlogic/salesbot/notify"
	"github.com/athlogic/salesbot/orders"
	"github.com/athlogic/salesbot/report"
	"github.com/athlogic/salesbot/sched"
	"github.com/athlogic/salesbot/server"
	"github.com/athlogic/salesbot/token"
	"github.com/athlogic/salesbot/token/filerepo"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("salesbot exited")
	}
	log.Info().Msg("salesbot stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.New()
	if err != nil {
		return err
	}
	setupLogging(c)
	displayAppname(c.GetAppName())

	if err := checkRequiredConfig(c); err != nil {
		return err
	}

	tokens, err := token.NewManager(filerepo.New(c.GetTokenFile()), c, c.GetClientID(), c.GetClientSecret(), c.GetAPIBaseURL())
	if err != nil {
		return err
	}

	orderClient, err := orders.NewClient(tokens, c.GetAPIBaseURL())
	if err != nil {
		return err
	}

	sink, err := notify.New(c.GetWebhookURL(), c.GetBotUsername(), c.GetIconEmoji())
	if err != nil {
		return err
	}

	var adsStats report.AdsFetcher
	if c.GetAdsAccessToken() != "" && c.GetAdAccountID() != "" {
		adsClient, err := ads.NewClient(c.GetAdsAccessToken(), c.GetAdAccountID(), c.GetGraphBaseURL())
		if err != nil {
			return err
		}
		adsStats = adsClient
	} else {
		log.Info().Msg("ads credentials absent, ad performance section disabled")
	}

	runner, err := report.NewRunner(orderClient, adsStats, sink, c.GetWatchedProducts(), c.GetReportLocation())
	if err != nil {
		return err
	}

	maintainer, err := report.NewMaintainer(tokens, sink)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduler := buildScheduler(c, runner, maintainer)
	go scheduler.Start(ctx)

	// Warn straight away if the stored credentials need attention.
	if err := maintainer.CheckCredentialHealth(ctx); err != nil {
		log.Warn().Err(err).Msg("startup credential check")
	}

	var opsServer *http.Server
	if port := c.GetOpsPort(); port != "0" {
		opsServer = &http.Server{Addr: ":" + port, Handler: server.New(tokens, runner)}
		go listenAndServe(opsServer)
	}

	waitForStopSignal()
	cancel()
	return shutdown(opsServer)
}

func checkRequiredConfig(c config.Config) error {
	if c.GetClientID() == "" || c.GetClientSecret() == "" {
		return errors.New("IMWEB_CLIENT_ID and IMWEB_CLIENT_SECRET are required")
	}
	if c.GetWebhookURL() == "" {
		return errors.New("SLACK_WEBHOOK_URL is required")
	}
	return nil
}

func buildScheduler(c config.Config, runner *report.Runner, maintainer *report.Maintainer) *sched.Scheduler {
	scheduler := sched.New(c.GetReportLocation())

	for _, reportTime := range c.GetReportTimes() {
		rt := reportTime
		scheduler.Add(sched.Job{
			Name:   "report-" + rt.Label,
			Hour:   rt.Hour,
			Minute: rt.Minute,
			Run: func(ctx context.Context, now time.Time) {
				_ = runner.Run(ctx, now, rt.Label) // failures already notified
			},
		})
	}

	healthDay := c.GetHealthCheckDay()
	healthTime := c.GetHealthCheckTime()
	scheduler.Add(sched.Job{
		Name:    "credential-health-check",
		Hour:    healthTime.Hour,
		Minute:  healthTime.Minute,
		Weekday: &healthDay,
		Run: func(ctx context.Context, _ time.Time) {
			if err := maintainer.CheckCredentialHealth(ctx); err != nil {
				log.Warn().Err(err).Msg("credential health check")
			}
		},
	})

	maintenanceTime := c.GetMaintenanceRefreshTime()
	scheduler.Add(sched.Job{
		Name:   "maintenance-refresh",
		Hour:   maintenanceTime.Hour,
		Minute: maintenanceTime.Minute,
		Every:  c.GetMaintenanceRefreshEvery(),
		Run: func(ctx context.Context, _ time.Time) {
			_ = maintainer.MaintenanceRefresh(ctx) // outcome already notified
		},
	})

	return scheduler
}

func setupLogging(c config.Config) {
	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func listenAndServe(opsServer *http.Server) {
	log.Info().Str("addr", opsServer.Addr).Msg("ops endpoint listening")
	if err := opsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("ops endpoint failed")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(opsServer *http.Server) error {
	if opsServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := opsServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("opsServer.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
