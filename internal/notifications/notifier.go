package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"lifewood/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// ApplicantChannel is the Redis channel carrying applicant lifecycle events.
const ApplicantChannel = "lifewood:applicants"

// EventType names an applicant lifecycle change.
type EventType string

// Applicant events.
const (
	EventCreated       EventType = "applicant.created"
	EventStatusChanged EventType = "applicant.status_changed"
	EventDeleted       EventType = "applicant.deleted"
)

// Event is one applicant lifecycle change. It carries no personal data.
type Event struct {
	Type        EventType `json:"type"`
	ApplicantID uint      `json:"applicantId"`
	Project     string    `json:"project,omitempty"`
	Status      string    `json:"status,omitempty"`
	At          time.Time `json:"at"`
}

// Notifier publishes applicant events into Redis and lets operator tooling
// follow them. A Notifier without a client does nothing.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a Notifier on rdb, which may be nil.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// Publish sends ev on ApplicantChannel. A zero At is set to now.
func (n *Notifier) Publish(ctx context.Context, ev Event) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return n.rdb.Publish(ctx, ApplicantChannel, payload).Err()
}

// Subscribe calls onEvent for every event until ctx is done. It returns once
// the subscription is confirmed, so events published afterwards are seen.
func (n *Notifier) Subscribe(ctx context.Context, onEvent func(Event)) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, ApplicantChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", ApplicantChannel, err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					middleware.Logger.Warn("dropping malformed applicant event", slog.String("error", err.Error()))
					continue
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in applicant event handler",
								slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
						}
					}()
					onEvent(ev)
				}()
			}
		}
	}()

	return nil
}
