// cmd/notify-watch/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/Mohit-R-04/FarmToMarket/internal/config"
	"github.com/Mohit-R-04/FarmToMarket/pkg/client"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	apiURL := flag.String("api", "http://"+cfg.Server.Host+":"+cfg.Server.Port+"/api", "API base URL")
	userID := flag.String("user", "", "user whose notifications are watched")
	token := flag.String("token", os.Getenv("NOTIFY_WATCH_TOKEN"), "bearer token (defaults to $NOTIFY_WATCH_TOKEN)")
	lang := flag.String("lang", cfg.I18n.DefaultLocale, "Accept-Language sent with each poll")
	interval := flag.Duration("interval", cfg.Notifications.PollInterval, "poll interval")
	maxBackoff := flag.Duration("max-backoff", cfg.Notifications.MaxBackoff, "longest wait between failed polls")
	flag.Parse()

	log := logrus.StandardLogger()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	if *userID == "" || *token == "" {
		log.Fatal("-user and -token are required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := client.New(*apiURL, *token)
	api.Language = *lang

	var lastUnread int64 = -1
	poller := client.NewNotificationPoller(api, client.PollerConfig{
		UserID:     *userID,
		Interval:   *interval,
		MaxBackoff: *maxBackoff,
		Log:        log,
		OnSnapshot: func(s client.Snapshot) {
			if s.Unread == lastUnread {
				log.WithField("unread", s.Unread).Debug("No change")
				return
			}
			lastUnread = s.Unread
			log.WithFields(logrus.Fields{
				"user_id": s.UserID,
				"unread":  s.Unread,
				"total":   len(s.Notifications),
			}).Info("Notifications updated")
			for _, n := range s.Notifications {
				if !n.IsUnread() {
					continue
				}
				log.WithFields(logrus.Fields{
					"id":     n.ID,
					"type":   n.Type,
					"status": n.Status,
				}).Info(n.Message)
			}
		},
	})

	log.WithFields(logrus.Fields{"api": *apiURL, "user_id": *userID, "interval": interval.String()}).Info("Watching notifications")
	if err := poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("Poller stopped")
	}
	log.Info("Stopped")
}
