package dispatch

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/JeanGrandez/mcfrontend-v1-sub000/internal/connection"
)

// envelope is the wire shape of every inbound server push.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// PumpStats contains runtime statistics.
type PumpStats struct {
	MessagesReceived int64
	MessagesDispatch int64
	ParseErrors      int64
}

// Pump drains the Connection Manager's message channel and feeds the
// Dispatcher. A single goroutine drains in receive order, which is what
// guarantees per-channel delivery order to all subscribers.
type Pump struct {
	logger     *slog.Logger
	input      <-chan connection.Message
	dispatcher *Dispatcher

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	received    int64
	dispatched  int64
	parseErrors int64
}

// NewPump creates a pump from the manager's message channel into the
// dispatcher.
func NewPump(input <-chan connection.Message, dispatcher *Dispatcher, logger *slog.Logger) *Pump {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pump{
		logger:     logger,
		input:      input,
		dispatcher: dispatcher,
	}
}

// Start begins dispatching messages.
func (p *Pump) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.loop()
}

// Stop shuts the pump down and waits for the in-flight pass to finish.
func (p *Pump) Stop(ctx context.Context) {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		p.logger.Warn("pump stop timed out")
	}
}

// Stats returns current statistics.
func (p *Pump) Stats() PumpStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PumpStats{
		MessagesReceived: p.received,
		MessagesDispatch: p.dispatched,
		ParseErrors:      p.parseErrors,
	}
}

func (p *Pump) loop() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case msg, ok := <-p.input:
			if !ok {
				p.logger.Info("input channel closed")
				return
			}
			p.route(msg)
		}
	}
}

// route parses one message's envelope and dispatches it.
func (p *Pump) route(msg connection.Message) {
	p.mu.Lock()
	p.received++
	p.mu.Unlock()

	var env envelope
	if err := json.Unmarshal(msg.Data, &env); err != nil {
		p.logger.Warn("failed to parse event envelope", "error", err)
		p.mu.Lock()
		p.parseErrors++
		p.mu.Unlock()
		return
	}

	if env.Event == "" {
		p.logger.Debug("skipping message without event kind")
		return
	}

	p.dispatcher.Dispatch(env.Event, env.Data)

	p.mu.Lock()
	p.dispatched++
	p.mu.Unlock()
}
