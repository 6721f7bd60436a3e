package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	pmerrors "github.com/dm/portalmon/internal/errors"
	"github.com/dm/portalmon/internal/model"
)

// EventKind identifies what a LiveEvent carries.
type EventKind int

const (
	EventOpened EventKind = iota
	EventErrored
	EventSample
)

func (k EventKind) String() string {
	switch k {
	case EventOpened:
		return "opened"
	case EventErrored:
		return "errored"
	case EventSample:
		return "sample"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// LiveEvent is one notification from a live subscription.
// Err is set for EventErrored, Sample for EventSample.
type LiveEvent struct {
	Kind   EventKind
	Sample model.Sample
	Err    error
}

// errStreamEnded is reported when the server closes the stream cleanly.
var errStreamEnded = errors.New("stream closed by server")

const liveEventBuffer = 16

// Subscription is an open live channel. It reconnects on its own until
// Close is called; every reconnect is reported as EventErrored followed by
// EventOpened once the stream is back.
type Subscription struct {
	id     string
	events chan LiveEvent
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// ID identifies the subscription in logs.
func (s *Subscription) ID() string {
	return s.id
}

// Events returns the event channel. It is closed after Close.
func (s *Subscription) Events() <-chan LiveEvent {
	return s.events
}

// Close releases the stream and waits for the reader goroutine to exit.
// It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.cancel()
		<-s.done
	})
}

func (s *Subscription) emit(ctx context.Context, ev LiveEvent) bool {
	select {
	case s.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// OpenLiveChannel subscribes to /status-stream. It returns immediately;
// connecting happens in the background and is reported through Events.
func (c *DefaultClient) OpenLiveChannel(ctx context.Context) (*Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, pmerrors.Channel(err, "Live channel not opened")
	}
	if _, err := http.NewRequest(http.MethodGet, c.url(endpointStatusStream), nil); err != nil {
		return nil, pmerrors.Channel(err, "Invalid live stream URL")
	}

	ctx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		id:     uuid.NewString(),
		events: make(chan LiveEvent, liveEventBuffer),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go c.runLive(ctx, sub)
	return sub, nil
}

// liveState is the reconnect bookkeeping of one subscription.
type liveState struct {
	fails int
	retry time.Duration
}

func (c *DefaultClient) runLive(ctx context.Context, sub *Subscription) {
	defer close(sub.done)
	defer close(sub.events)

	c.log.Debug("subscription %s: opening %s", sub.id, c.url(endpointStatusStream))

	var st liveState
	for {
		err := c.streamOnce(ctx, sub, &st)
		if ctx.Err() != nil {
			c.log.Debug("subscription %s: closed", sub.id)
			return
		}

		chErr := pmerrors.Channel(err, "Live stream interrupted")
		c.log.Warn("subscription %s: %s", sub.id, chErr.Short())
		if !sub.emit(ctx, LiveEvent{Kind: EventErrored, Err: chErr}) {
			return
		}

		wait := max(backoffDuration(st.fails, c.config.ReconnectBase, c.config.MaxBackoff), st.retry)
		st.fails++
		c.log.Debug("subscription %s: reconnecting in %s", sub.id, wait)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		c.rec.Reconnect()
	}
}

// streamOnce holds one connection open until it fails. It always returns a
// non-nil error.
func (c *DefaultClient) streamOnce(ctx context.Context, sub *Subscription, st *liveState) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(endpointStatusStream), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.stream.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(body, 200))
	}

	st.fails = 0
	c.log.Info("subscription %s: connected", sub.id)
	if !sub.emit(ctx, LiveEvent{Kind: EventOpened}) {
		return ctx.Err()
	}

	reader := newSSEReader(resp.Body)
	for {
		ev, err := reader.Next()
		if reader.retry > 0 {
			st.retry = reader.retry
		}
		if errors.Is(err, io.EOF) {
			return errStreamEnded
		}
		if err != nil {
			return fmt.Errorf("read stream: %w", err)
		}
		if ev.Event != "" && ev.Event != "message" {
			continue
		}

		sample, err := decodeLiveSample([]byte(ev.Data))
		if err != nil {
			c.log.Warn("subscription %s: %s", sub.id, pmerrors.Decode(err, "Dropped malformed live message").Short())
			c.rec.SampleDropped("decode")
			continue
		}
		if !sub.emit(ctx, LiveEvent{Kind: EventSample, Sample: sample}) {
			return ctx.Err()
		}
	}
}
