package checkout

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// PAYMENT STATUS POLLING

type PollEventKind int

const (
	// PollLoaded fires when the initial-loading damp elapses (or the first
	// tick errors). Pure UX damping, not a correctness signal.
	PollLoaded PollEventKind = iota + 1
	// PollWaiting means the status endpoint answered and the payment is not
	// confirmed yet.
	PollWaiting
	// PollPaid is terminal: the payment is confirmed and polling stopped.
	PollPaid
	// PollFailed is a transient status-check failure; polling continues.
	PollFailed
)

type PollEvent struct {
	Kind PollEventKind
	Err  error
}

// Poller drives the payment-status check loop. One Poll per open QR popup.
type Poller struct {
	api         StatusClient
	interval    time.Duration
	initialDamp time.Duration
	logger      *zap.Logger
}

func NewPoller(apiClient StatusClient, interval, initialDamp time.Duration, logger *zap.Logger) *Poller {
	return &Poller{
		api:         apiClient,
		interval:    interval,
		initialDamp: initialDamp,
		logger:      logger,
	}
}

// Poll is a handle to one running poll loop. Stop is idempotent and must be
// called on success, popup close, or view teardown; no orphaned loop may
// survive popup closure.
type Poll struct {
	events   chan PollEvent
	cancel   context.CancelFunc
	stopOnce sync.Once
}

// Events yields status updates until the loop ends, then closes.
func (p *Poll) Events() <-chan PollEvent {
	return p.events
}

// Stop cancels the loop. Double-stopping is a no-op.
func (p *Poll) Stop() {
	p.stopOnce.Do(p.cancel)
}

// Start launches the poll loop for a payment transaction. The loop ends on
// a paid confirmation or on Stop/parent-context cancellation.
func (p *Poller) Start(ctx context.Context, uuid, orderID string) *Poll {
	ctx, cancel := context.WithCancel(ctx)
	poll := &Poll{
		events: make(chan PollEvent, 8),
		cancel: cancel,
	}
	go p.run(ctx, uuid, orderID, poll)
	return poll
}

func (p *Poller) run(ctx context.Context, uuid, orderID string, poll *Poll) {
	defer close(poll.events)
	defer poll.cancel()

	damp := time.NewTimer(p.initialDamp)
	defer damp.Stop()
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	firstTick := true
	for {
		select {
		case <-ctx.Done():
			return

		case <-damp.C:
			if !emit(ctx, poll.events, PollEvent{Kind: PollLoaded}) {
				return
			}

		case <-ticker.C:
			paid, err := p.api.PaymentStatus(ctx, uuid, orderID)
			if err != nil {
				p.logger.Warn("Payment status check failed",
					zap.String("order_id", orderID),
					zap.Error(err))
				if firstTick {
					// The first tick's failure also clears the loading
					// flags.
					damp.Stop()
					if !emit(ctx, poll.events, PollEvent{Kind: PollLoaded}) {
						return
					}
				}
				firstTick = false
				if !emit(ctx, poll.events, PollEvent{Kind: PollFailed, Err: wrap(ErrCheckPayment, err)}) {
					return
				}
				continue
			}

			firstTick = false
			if paid {
				emit(ctx, poll.events, PollEvent{Kind: PollPaid})
				return
			}
			if !emit(ctx, poll.events, PollEvent{Kind: PollWaiting}) {
				return
			}
		}
	}
}

func emit(ctx context.Context, events chan<- PollEvent, ev PollEvent) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
