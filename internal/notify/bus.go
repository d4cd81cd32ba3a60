package notify

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Bus is an in-process ChangeNotifier with subscription support, for hosts
// that embed the provider and want to observe result sets live (the worker
// watching control changes, a UI watching progress). One-shot consumers like
// the CLI have nothing to observe and wire Discard instead. Observers
// subscribe by address; an event addressed to an item also reaches observers
// of the enclosing collection, so a subscription on "transfers" sees writes
// to "transfers/5".
//
// NotifyChange hands each event to a per-subscriber buffered channel and
// returns; a subscriber that stops draining loses events rather than
// blocking mutations.
type Bus struct {
	mu     sync.RWMutex
	subs   map[int]*subscription
	nextID int
	logger *slog.Logger
}

type subscription struct {
	address string
	ch      chan Event
}

// NewBus creates a Bus. A nil logger falls back to slog.Default().
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		subs:   make(map[int]*subscription),
		logger: logger,
	}
}

// Subscribe registers interest in an address. The returned channel receives
// events for that address and for any resource beneath it. The cancel
// function removes the subscription and closes the channel.
func (b *Bus) Subscribe(address string) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	sub := &subscription{
		address: normalizeAddress(address),
		ch:      make(chan Event, 16),
	}
	b.subs[id] = sub

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if s, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(s.ch)
		}
	}
	return sub.ch, cancel
}

// NotifyChange fans the event out to matching subscribers. Stamps an event
// ID if the caller did not.
func (b *Bus) NotifyChange(_ context.Context, ev Event) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	target := normalizeAddress(ev.Address)

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs {
		if !covers(sub.address, target) {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			b.logger.Debug("dropping change event for slow observer",
				"address", ev.Address, "op", ev.Op)
		}
	}
}

// covers reports whether an observed address covers the target: exact match,
// or the target lies beneath the observed address.
func covers(observed, target string) bool {
	if observed == target {
		return true
	}
	return strings.HasPrefix(target, observed+"/")
}

func normalizeAddress(address string) string {
	return strings.Trim(address, "/")
}

// ChanTrigger is a WorkTrigger that signals a channel. The channel has
// capacity one and signals coalesce, which matches the worker contract: a
// pending signal means "examine the job table", not one wakeup per mutation.
type ChanTrigger struct {
	ch chan struct{}
}

// NewChanTrigger creates a ChanTrigger.
func NewChanTrigger() *ChanTrigger {
	return &ChanTrigger{ch: make(chan struct{}, 1)}
}

// StartWork signals the channel, coalescing with any pending signal.
func (t *ChanTrigger) StartWork(context.Context, string) {
	select {
	case t.ch <- struct{}{}:
	default:
	}
}

// C returns the signal channel the worker selects on.
func (t *ChanTrigger) C() <-chan struct{} {
	return t.ch
}
