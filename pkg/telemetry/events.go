package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Event represents a runtime event.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	SessionID string                 `json:"session_id,omitempty"`
	RunID     string                 `json:"run_id,omitempty"`
	RiftName  string                 `json:"rift_name,omitempty"`
	Language  string                 `json:"language,omitempty"`
	Sink      string                 `json:"sink,omitempty"`
	Hash      string                 `json:"hash,omitempty"`
	Message   string                 `json:"message"`
	Level     string                 `json:"level"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// EventType constants for common runtime events.
const (
	EventSessionStarted  = "session.started"
	EventSessionCleared  = "session.cleared"
	EventRunStarted      = "run.started"
	EventRunCompleted    = "run.completed"
	EventRunFailed       = "run.failed"
	EventFuseStarted     = "fuse.started"
	EventFuseCompleted   = "fuse.completed"
	EventFuseCached      = "fuse.cached"
	EventFuseFailed      = "fuse.failed"
	EventDeployStarted   = "deploy.started"
	EventSinkSucceeded   = "deploy.sink.succeeded"
	EventSinkFailed      = "deploy.sink.failed"
	EventDeployCompleted = "deploy.completed"
	EventOptimizeApplied = "optimize.applied"
	EventPolicyViolation = "policy.violation"
)

// EventLevel constants.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// EventPublisher publishes events to configured destinations.
type EventPublisher struct {
	config      EventsConfig
	logger      zerolog.Logger
	buffer      chan Event
	subscribers []subscriberEntry
	filters     []EventFilter
	mu          sync.RWMutex
	wg          sync.WaitGroup
	shutdown    chan struct{}
}

type subscriberEntry struct {
	name    string
	handler EventHandler
}

// EventHandler processes events.
type EventHandler func(ctx context.Context, event Event) error

// EventFilter determines if an event should be published.
type EventFilter func(event Event) bool

// NewEventPublisher creates a new event publisher.
func NewEventPublisher(cfg EventsConfig, logger zerolog.Logger) *EventPublisher {
	if !cfg.Enabled {
		return &EventPublisher{config: cfg}
	}

	p := &EventPublisher{
		config:   cfg,
		logger:   logger.With().Str("component", "events").Logger(),
		buffer:   make(chan Event, cfg.BufferSize),
		shutdown: make(chan struct{}),
	}

	p.wg.Add(1)
	go p.processEvents()

	if cfg.FlushInterval > 0 {
		p.wg.Add(1)
		go p.periodicFlush()
	}

	return p
}

// Publish publishes an event.
func (p *EventPublisher) Publish(event Event) error {
	if !p.config.Enabled {
		return nil
	}

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Level == "" {
		event.Level = LevelInfo
	}

	p.mu.RLock()
	for _, filter := range p.filters {
		if !filter(event) {
			p.mu.RUnlock()
			return nil
		}
	}
	p.mu.RUnlock()

	select {
	case p.buffer <- event:
		return nil
	default:
		return fmt.Errorf("event buffer full, dropping event %s", event.Type)
	}
}

// PublishSessionStarted publishes a session lifecycle event.
func (p *EventPublisher) PublishSessionStarted(sessionID string) error {
	return p.Publish(Event{
		Type:      EventSessionStarted,
		SessionID: sessionID,
		Message:   "session started",
		Level:     LevelInfo,
	})
}

// PublishRunStarted publishes a run start event.
func (p *EventPublisher) PublishRunStarted(sessionID, runID string) error {
	return p.Publish(Event{
		Type:      EventRunStarted,
		SessionID: sessionID,
		RunID:     runID,
		Message:   "run started",
		Level:     LevelInfo,
	})
}

// PublishRunCompleted publishes a run completion event.
func (p *EventPublisher) PublishRunCompleted(sessionID, runID string, duration time.Duration) error {
	return p.Publish(Event{
		Type:      EventRunCompleted,
		SessionID: sessionID,
		RunID:     runID,
		Message:   "run completed",
		Level:     LevelInfo,
		Fields: map[string]interface{}{
			"duration_ms": duration.Milliseconds(),
		},
	})
}

// PublishRunFailed publishes a run failure event.
func (p *EventPublisher) PublishRunFailed(sessionID, runID string, err error) error {
	return p.Publish(Event{
		Type:      EventRunFailed,
		SessionID: sessionID,
		RunID:     runID,
		Message:   "run failed",
		Level:     LevelError,
		Fields: map[string]interface{}{
			"error": err.Error(),
		},
	})
}

// PublishFuseCompleted publishes a fuse execution event.
func (p *EventPublisher) PublishFuseCompleted(runID, language, hash string, duration time.Duration) error {
	return p.Publish(Event{
		Type:     EventFuseCompleted,
		RunID:    runID,
		Language: language,
		Hash:     hash,
		Message:  "fuse executed",
		Level:    LevelInfo,
		Fields: map[string]interface{}{
			"duration_ms": duration.Milliseconds(),
		},
	})
}

// PublishFuseCached publishes an advisory cache reuse event. Failure to
// deliver never fails the surrounding run.
func (p *EventPublisher) PublishFuseCached(runID, language, hash string) error {
	return p.Publish(Event{
		Type:     EventFuseCached,
		RunID:    runID,
		Language: language,
		Hash:     hash,
		Message:  "artifact reused from cache",
		Level:    LevelDebug,
	})
}

// PublishFuseFailed publishes a fuse failure event.
func (p *EventPublisher) PublishFuseFailed(runID, language, hash string, err error) error {
	return p.Publish(Event{
		Type:     EventFuseFailed,
		RunID:    runID,
		Language: language,
		Hash:     hash,
		Message:  "fuse failed",
		Level:    LevelError,
		Fields: map[string]interface{}{
			"error": err.Error(),
		},
	})
}

// PublishDeployStarted publishes a deployment start event.
func (p *EventPublisher) PublishDeployStarted(runID, selector string, sinks []string) error {
	return p.Publish(Event{
		Type:    EventDeployStarted,
		RunID:   runID,
		Message: fmt.Sprintf("deploying to %d sink(s)", len(sinks)),
		Level:   LevelInfo,
		Fields: map[string]interface{}{
			"selector": selector,
			"sinks":    sinks,
		},
	})
}

// PublishSinkOutcome publishes a per-sink deployment outcome.
func (p *EventPublisher) PublishSinkOutcome(runID, sink string, attempts int, err error) error {
	event := Event{
		RunID: runID,
		Sink:  sink,
		Fields: map[string]interface{}{
			"attempts": attempts,
		},
	}
	if err != nil {
		event.Type = EventSinkFailed
		event.Message = "sink deployment failed"
		event.Level = LevelError
		event.Fields["error"] = err.Error()
	} else {
		event.Type = EventSinkSucceeded
		event.Message = "sink deployment succeeded"
		event.Level = LevelInfo
	}
	return p.Publish(event)
}

// PublishOptimizeApplied publishes an optimize translation event.
func (p *EventPublisher) PublishOptimizeApplied(runID, riftName, source, target string) error {
	return p.Publish(Event{
		Type:     EventOptimizeApplied,
		RunID:    runID,
		RiftName: riftName,
		Message:  fmt.Sprintf("rewriting %s to %s", source, target),
		Level:    LevelInfo,
		Fields: map[string]interface{}{
			"source_language": source,
			"target_language": target,
		},
	})
}

// PublishPolicyViolation publishes a policy violation event.
func (p *EventPublisher) PublishPolicyViolation(runID, sink, rule string) error {
	return p.Publish(Event{
		Type:    EventPolicyViolation,
		RunID:   runID,
		Sink:    sink,
		Message: "policy violation",
		Level:   LevelWarn,
		Fields: map[string]interface{}{
			"rule": rule,
		},
	})
}

// Subscribe adds an event handler.
func (p *EventPublisher) Subscribe(name string, handler EventHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscribers = append(p.subscribers, subscriberEntry{
		name:    name,
		handler: handler,
	})
}

// AddFilter adds an event filter.
func (p *EventPublisher) AddFilter(filter EventFilter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.filters = append(p.filters, filter)
}

// processEvents processes events from the buffer.
func (p *EventPublisher) processEvents() {
	defer p.wg.Done()

	batch := make([]Event, 0, p.config.MaxBatchSize)

	for {
		select {
		case event := <-p.buffer:
			batch = append(batch, event)
			if len(batch) >= p.config.MaxBatchSize {
				p.flushBatch(batch)
				batch = batch[:0]
			}
		case <-p.shutdown:
			// Drain whatever is still buffered before exiting
			for {
				select {
				case event := <-p.buffer:
					batch = append(batch, event)
				default:
					if len(batch) > 0 {
						p.flushBatch(batch)
					}
					return
				}
			}
		}
	}
}

// periodicFlush wakes the processor on an interval so small batches do not
// sit in the buffer indefinitely.
func (p *EventPublisher) periodicFlush() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
		case <-p.shutdown:
			return
		}
	}
}

// flushBatch processes a batch of events.
func (p *EventPublisher) flushBatch(batch []Event) {
	ctx := context.Background()

	p.mu.RLock()
	subscribers := make([]subscriberEntry, len(p.subscribers))
	copy(subscribers, p.subscribers)
	p.mu.RUnlock()

	for _, event := range batch {
		p.logEvent(event)

		for _, sub := range subscribers {
			go p.deliverEvent(ctx, sub, event)
		}
	}
}

// deliverEvent delivers an event to a subscriber.
func (p *EventPublisher) deliverEvent(ctx context.Context, sub subscriberEntry, event Event) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error().
				Str("subscriber", sub.name).
				Str("event_type", event.Type).
				Interface("panic", r).
				Msg("subscriber panicked")
		}
	}()

	if err := sub.handler(ctx, event); err != nil {
		p.logger.Error().
			Err(err).
			Str("subscriber", sub.name).
			Str("event_type", event.Type).
			Msg("subscriber failed to handle event")
	}
}

// logEvent logs an event at the appropriate level.
func (p *EventPublisher) logEvent(event Event) {
	logger := p.logger.With().
		Str("event_id", event.ID).
		Str("event_type", event.Type).
		Logger()

	if event.SessionID != "" {
		logger = logger.With().Str("session_id", event.SessionID).Logger()
	}
	if event.RunID != "" {
		logger = logger.With().Str("run_id", event.RunID).Logger()
	}
	if event.Language != "" {
		logger = logger.With().Str("language", event.Language).Logger()
	}
	if event.Sink != "" {
		logger = logger.With().Str("sink", event.Sink).Logger()
	}
	if len(event.Fields) > 0 {
		logger = logger.With().Fields(event.Fields).Logger()
	}

	switch event.Level {
	case LevelDebug:
		logger.Debug().Msg(event.Message)
	case LevelWarn:
		logger.Warn().Msg(event.Message)
	case LevelError:
		logger.Error().Msg(event.Message)
	default:
		logger.Info().Msg(event.Message)
	}
}

// Shutdown gracefully shuts down the event publisher.
func (p *EventPublisher) Shutdown(ctx context.Context) error {
	if !p.config.Enabled {
		return nil
	}

	close(p.shutdown)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("event publisher shutdown timed out: %w", ctx.Err())
	}
}

// FilterByLevel creates a filter that only allows events at or above a level.
func FilterByLevel(minLevel string) EventFilter {
	levels := map[string]int{
		LevelDebug: 0,
		LevelInfo:  1,
		LevelWarn:  2,
		LevelError: 3,
	}

	minLevelValue := levels[minLevel]

	return func(event Event) bool {
		return levels[event.Level] >= minLevelValue
	}
}

// FilterByType creates a filter that only allows specific event types.
func FilterByType(types ...string) EventFilter {
	typeSet := make(map[string]bool)
	for _, t := range types {
		typeSet[t] = true
	}

	return func(event Event) bool {
		return typeSet[event.Type]
	}
}

// FilterBySessionID creates a filter for a specific session.
func FilterBySessionID(sessionID string) EventFilter {
	return func(event Event) bool {
		return event.SessionID == sessionID
	}
}

// FilterByLanguage creates a filter for a specific snippet language.
func FilterByLanguage(language string) EventFilter {
	return func(event Event) bool {
		return event.Language == language
	}
}
