package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/colegiosync/colegiosync/internal/dates"
	"github.com/colegiosync/colegiosync/internal/model"
	"github.com/colegiosync/colegiosync/internal/store"
)

// Sender delivers one payload to one stored subscription.
type Sender interface {
	Send(subJSON string, payload Payload) error
}

const (
	digestMorning = "morning"
	digestEvening = "evening"
)

// Scheduler wakes every minute and sends event digests to users whose
// configured notification time (ART) matches the current minute. Morning
// digests cover today's events, evening digests cover tomorrow's. Delivery
// is deduplicated per (user, digest, date), so a restart never double-sends.
type Scheduler struct {
	mu       sync.RWMutex
	sender   Sender
	users    *store.UserStore
	events   *store.EventStore
	sent     *store.NotificationStore
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewScheduler(sender Sender, us *store.UserStore, es *store.EventStore, ns *store.NotificationStore, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		sender:   sender,
		users:    us,
		events:   es,
		sent:     ns,
		logger:   logger,
		interval: 60 * time.Second,
		now:      dates.Now,
	}
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick()
			}
		}
	}()
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (s *Scheduler) tick() {
	now := s.now()
	hhmm := now.Format("15:04")

	users, err := s.users.ListPushEnabled()
	if err != nil {
		s.logger.Error("list push users", "error", err)
		return
	}

	today := now.Format("2006-01-02")
	for i := range users {
		u := &users[i]
		if u.NotificationMorning == 1 && u.NotificationTimeMorning == hhmm {
			s.sendDigest(u, digestMorning, today)
		}
		if u.NotificationEvening == 1 && u.NotificationTimeEvening == hhmm {
			s.sendDigest(u, digestEvening, dates.AddDays(today, 1))
		}
	}

	// Delivery records only matter within their digest day.
	if hhmm == "03:00" {
		if err := s.sent.Cleanup(now.AddDate(0, 0, -7)); err != nil {
			s.logger.Error("cleanup sent notifications", "error", err)
		}
	}
}

// sendDigest pushes the user's visible events for date. Recorded as sent
// even when the digest turns out empty, so the minute firing twice cannot
// duplicate work.
func (s *Scheduler) sendDigest(u *model.User, digest, date string) {
	already, err := s.sent.WasSent(u.ID, digest, date)
	if err != nil {
		s.logger.Error("check sent digest", "error", err, "user", u.ID)
		return
	}
	if already {
		return
	}
	if err := s.sent.RecordSent(u.ID, digest, date); err != nil {
		s.logger.Error("record sent digest", "error", err, "user", u.ID)
		return
	}

	events, err := s.events.ListVisible(u.Identity(), store.EventFilter{Date: date})
	if err != nil {
		s.logger.Error("digest events", "error", err, "user", u.ID)
		return
	}
	if u.NotificationOnlyImportant == 1 {
		events = onlyImportant(events)
	}
	if len(events) == 0 || u.PushSubscription == nil {
		return
	}

	payload := digestPayload(digest, events)
	if err := s.sender.Send(*u.PushSubscription, payload); err != nil {
		if errors.Is(err, ErrExpired) {
			if err := s.users.SetPushSubscription(u.ID, nil); err != nil {
				s.logger.Error("clear expired subscription", "error", err, "user", u.ID)
			}
			return
		}
		s.logger.Error("send digest", "error", err, "user", u.ID)
	}
}

func onlyImportant(events []model.EventSummary) []model.EventSummary {
	var kept []model.EventSummary
	for _, e := range events {
		if e.Priority == model.PriorityImportant || e.Priority == model.PriorityUrgent {
			kept = append(kept, e)
		}
	}
	return kept
}

func digestPayload(digest string, events []model.EventSummary) Payload {
	day := "hoy"
	if digest == digestEvening {
		day = "mañana"
	}

	body := fmt.Sprintf("Tenés %d eventos %s", len(events), day)
	if len(events) == 1 {
		body = fmt.Sprintf("Evento %s: %s", day, events[0].Title)
	}

	return Payload{
		Title: "ColegioSync",
		Body:  body,
		URL:   "/",
		Tag:   "digest-" + digest,
	}
}
