// pkg/client/poller.go
package client

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	DefaultPollInterval = 30 * time.Second
	DefaultMaxBackoff   = 5 * time.Minute
)

// Snapshot is one successful poll.
type Snapshot struct {
	UserID        string
	Notifications []Notification
	Unread        int64
	FetchedAt     time.Time
}

type PollerConfig struct {
	UserID     string
	Interval   time.Duration
	MaxBackoff time.Duration
	OnSnapshot func(Snapshot)
	Log        logrus.FieldLogger
}

// NotificationPoller fetches a user's notifications on an interval for as
// long as its context lives. Consecutive failures back off exponentially up
// to MaxBackoff; the first success restores the normal interval.
type NotificationPoller struct {
	client  *Client
	cfg     PollerConfig
	refresh chan struct{}
}

func NewNotificationPoller(c *Client, cfg PollerConfig) *NotificationPoller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultPollInterval
	}
	if cfg.MaxBackoff < cfg.Interval {
		cfg.MaxBackoff = DefaultMaxBackoff
		if cfg.MaxBackoff < cfg.Interval {
			cfg.MaxBackoff = cfg.Interval
		}
	}
	if cfg.Log == nil {
		cfg.Log = logrus.StandardLogger()
	}
	return &NotificationPoller{
		client:  c,
		cfg:     cfg,
		refresh: make(chan struct{}, 1),
	}
}

// nextDelay is the wait after the given number of consecutive failures.
func nextDelay(interval, maxBackoff time.Duration, failures int) time.Duration {
	delay := interval
	for i := 0; i < failures; i++ {
		delay *= 2
		if delay >= maxBackoff {
			return maxBackoff
		}
	}
	return delay
}

// Run polls until ctx is cancelled and returns ctx.Err().
func (p *NotificationPoller) Run(ctx context.Context) error {
	failures := 0
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		case <-p.refresh:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		}

		if err := p.poll(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			failures++
			delay := nextDelay(p.cfg.Interval, p.cfg.MaxBackoff, failures)
			p.cfg.Log.WithError(err).WithFields(logrus.Fields{
				"user_id":  p.cfg.UserID,
				"failures": failures,
				"retry_in": delay.String(),
			}).Warn("Notification poll failed")
			timer.Reset(delay)
			continue
		}

		failures = 0
		timer.Reset(p.cfg.Interval)
	}
}

func (p *NotificationPoller) poll(ctx context.Context) error {
	notifications, err := p.client.Notifications(ctx, p.cfg.UserID)
	if err != nil {
		return err
	}
	unread, err := p.client.UnreadCount(ctx, p.cfg.UserID)
	if err != nil {
		return err
	}

	if p.cfg.OnSnapshot != nil {
		p.cfg.OnSnapshot(Snapshot{
			UserID:        p.cfg.UserID,
			Notifications: notifications,
			Unread:        unread,
			FetchedAt:     time.Now().UTC(),
		})
	}
	return nil
}

// Refresh asks Run to poll now instead of waiting for the next tick.
func (p *NotificationPoller) Refresh() {
	select {
	case p.refresh <- struct{}{}:
	default:
	}
}

// RespondToCancellation answers a cancellation prompt and refreshes the
// snapshot so the prompt's new state shows up immediately.
func (p *NotificationPoller) RespondToCancellation(ctx context.Context, bookingID uuid.UUID, action CancellationAction) (*Booking, error) {
	booking, err := p.client.RespondToCancellation(ctx, bookingID, action)
	if err != nil {
		return nil, err
	}
	p.Refresh()
	return booking, nil
}
