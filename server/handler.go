// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package server implements the A2A task runtime: the request handler that
// turns inbound messages into supervised executor invocations, multiplexes
// their event streams to blocking and streaming consumers, and coordinates
// cancellation, resubscription and push notification delivery.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	a2a "github.com/go-a2a/runtime"
	"github.com/go-a2a/runtime/auth"
	"github.com/go-a2a/runtime/internal/metrics"
	"github.com/go-a2a/runtime/server/event"
	"github.com/go-a2a/runtime/server/execution"
	"github.com/go-a2a/runtime/server/task"
)

// DefaultCancelTimeout is how long CancelTask waits for the executor to
// publish the terminal canceled status before the handler synthesizes it.
const DefaultCancelTimeout = 10 * time.Second

// streamBuffer sizes the channels returned by the streaming operations.
const streamBuffer = 100

// StreamEvent is one item of a streaming response sequence. Exactly one of
// Event and Err is set; an item with Err terminates the sequence.
type StreamEvent struct {
	Event a2a.Event
	Err   error
}

// RequestHandler is the top-level orchestrator of the A2A runtime. It
// validates requests, loads or creates task state, starts or reattaches to
// executor invocations, and exposes the blocking, streaming, cancellation
// and push-notification-config operations a transport binds to.
type RequestHandler struct {
	executor     execution.AgentExecutor
	card         *a2a.AgentCard
	extendedCard *a2a.AgentCard

	store     task.Store
	pushStore task.PushConfigStore

	pushSender      task.PushSender
	pushOnFinalOnly bool

	registry    *event.Registry
	builder     execution.ContextBuilder
	busCapacity int

	cancelTimeout time.Duration

	logger *slog.Logger
	tracer trace.Tracer
}

// NewRequestHandler creates a RequestHandler for the given executor and
// agent card. Storage, push delivery and supervision behavior are tuned via
// options; the defaults use in-memory stores and an HTTP push sender.
func NewRequestHandler(executor execution.AgentExecutor, card *a2a.AgentCard, opts ...Option) (*RequestHandler, error) {
	if executor == nil {
		return nil, fmt.Errorf("agent executor cannot be nil")
	}
	if card == nil {
		return nil, fmt.Errorf("agent card cannot be nil")
	}
	if err := card.Validate(); err != nil {
		return nil, fmt.Errorf("invalid agent card: %w", err)
	}

	h := &RequestHandler{
		executor:      executor,
		card:          card,
		cancelTimeout: DefaultCancelTimeout,
		logger:        slog.Default(),
		tracer:        otel.GetTracerProvider().Tracer("github.com/go-a2a/runtime/server"),
	}
	for _, opt := range opts {
		opt(h)
	}

	if h.store == nil {
		h.store = task.NewInMemoryStore()
	}
	if h.pushStore == nil {
		h.pushStore = task.NewInMemoryPushConfigStore()
	}
	if h.pushSender == nil {
		sender, err := task.NewHTTPPushSender(task.HTTPPushSenderConfig{
			ConfigStore: h.pushStore,
			Logger:      h.logger,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create push sender: %w", err)
		}
		h.pushSender = sender
	}
	if h.builder == nil {
		h.builder = execution.SimpleContextBuilder{}
	}
	h.registry = event.NewRegistry(h.busCapacity)

	return h, nil
}

// AgentCard returns the public discovery document.
func (h *RequestHandler) AgentCard() *a2a.AgentCard {
	return h.card
}

// AuthenticatedExtendedCard returns the extended discovery document served
// behind authentication.
func (h *RequestHandler) AuthenticatedExtendedCard(ctx context.Context) (*a2a.AgentCard, error) {
	if h.extendedCard == nil || !h.card.SupportsAuthenticatedExtendedCard {
		return nil, a2a.ErrAuthenticatedExtendedCardNotConfigured
	}
	return h.extendedCard, nil
}

// Close shuts the handler down: all live buses are finished and queued push
// deliveries drained.
func (h *RequestHandler) Close() error {
	h.registry.CloseAll()
	return h.pushSender.Close()
}

// SendMessage handles a blocking message send. It resolves or creates the
// target task, dispatches the executor unless the task is already in
// flight, and waits until the task finishes or pauses for input. The result
// is the final task snapshot, or the agent's bare reply message when the
// executor never created a task.
func (h *RequestHandler) SendMessage(ctx context.Context, params *a2a.MessageSendParams) (result a2a.Event, err error) {
	ctx, span := h.tracer.Start(ctx, "a2a.server.SendMessage")
	defer span.End()
	defer func() { record("message/send", err) }()

	taskID, contextID, current, err := h.resolve(ctx, params)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("a2a.task_id", taskID))

	if err := h.registerSendPushConfig(ctx, taskID, params); err != nil {
		return nil, err
	}

	agg, sub, err := h.attach(ctx, params, taskID, contextID, current)
	if err != nil {
		return nil, err
	}

	result, err = agg.ConsumeAndBreakOnInterrupt(ctx, sub.C)
	if err != nil {
		return nil, err
	}
	if tsk, ok := result.(*a2a.Task); ok {
		truncateHistory(tsk, historyLength(params))
	}
	return result, nil
}

// SendMessageStream handles a streaming message send. Setup mirrors
// SendMessage; the returned sequence yields every event in publish order and
// ends after the final event. Processing failures terminate the sequence
// with an explicit error item rather than a silent close.
func (h *RequestHandler) SendMessageStream(ctx context.Context, params *a2a.MessageSendParams) (<-chan StreamEvent, error) {
	ctx, span := h.tracer.Start(ctx, "a2a.server.SendMessageStream")
	defer span.End()

	taskID, contextID, current, err := h.resolve(ctx, params)
	if err != nil {
		record("message/stream", err)
		return nil, err
	}
	span.SetAttributes(attribute.String("a2a.task_id", taskID))

	if err := h.registerSendPushConfig(ctx, taskID, params); err != nil {
		record("message/stream", err)
		return nil, err
	}

	agg, sub, err := h.attach(ctx, params, taskID, contextID, current)
	if err != nil {
		record("message/stream", err)
		return nil, err
	}
	record("message/stream", nil)

	out := make(chan StreamEvent, streamBuffer)
	go func() {
		defer close(out)

		for {
			select {
			case <-ctx.Done():
				// The consumer went away; keep folding so the store stays
				// current for later reads and resubscriptions.
				agg.ContinueConsuming(context.WithoutCancel(ctx), sub.C)
				return
			case e, ok := <-sub.C:
				if !ok {
					return
				}
				if err := agg.Process(ctx, e); err != nil {
					out <- StreamEvent{Err: err}
					return
				}
				select {
				case out <- StreamEvent{Event: e}:
				case <-ctx.Done():
					agg.ContinueConsuming(context.WithoutCancel(ctx), sub.C)
					return
				}
				if a2a.Final(e) {
					return
				}
			}
		}
	}()
	return out, nil
}

// GetTask reads the task from the store, optionally truncating history to
// the requested length.
func (h *RequestHandler) GetTask(ctx context.Context, params *a2a.TaskQueryParams) (tsk *a2a.Task, err error) {
	ctx, span := h.tracer.Start(ctx, "a2a.server.GetTask")
	defer span.End()
	defer func() { record("tasks/get", err) }()

	if params == nil || params.ID == "" {
		return nil, a2a.ErrInvalidRequest.WithMessage("task ID cannot be empty")
	}
	span.SetAttributes(attribute.String("a2a.task_id", params.ID))

	tsk, err = h.store.Get(ctx, params.ID)
	if err != nil {
		return nil, err
	}
	truncateHistory(tsk, params.HistoryLength)
	return tsk, nil
}

// CancelTask asks the executor to stop an in-flight task and waits for the
// terminal canceled status. If the executor does not respond within the
// cancel timeout, the handler publishes the canceled status itself and
// force-finishes the bus. Canceling a terminal task fails with
// ErrTaskNotCancelable, an unknown one with ErrTaskNotFound.
func (h *RequestHandler) CancelTask(ctx context.Context, params *a2a.TaskIDParams) (tsk *a2a.Task, err error) {
	ctx, span := h.tracer.Start(ctx, "a2a.server.CancelTask")
	defer span.End()
	defer func() { record("tasks/cancel", err) }()

	if params == nil || params.ID == "" {
		return nil, a2a.ErrInvalidRequest.WithMessage("task ID cannot be empty")
	}
	span.SetAttributes(attribute.String("a2a.task_id", params.ID))

	stored, err := h.store.Get(ctx, params.ID)
	if err != nil {
		return nil, err
	}
	if stored.Status.State.Terminal() {
		return nil, a2a.ErrTaskNotCancelable.WithMessage("task %q is already %s", stored.ID, stored.Status.State)
	}

	// A task without a live bus gets a transient one so the executor's
	// Cancel hook has somewhere to publish the terminal status.
	bus, existed := h.registry.CreateOrGet(params.ID)
	sub := bus.Subscribe()

	mgr, err := task.NewManager(task.ManagerConfig{
		TaskID:    params.ID,
		ContextID: stored.ContextID,
		Store:     h.store,
		ReadOnly:  existed,
		Logger:    h.logger,
	})
	if err != nil {
		h.releaseIfTransient(params.ID, bus, !existed)
		return nil, err
	}
	var sender task.PushSender
	if !existed {
		// An in-flight bus already has the invocation owner delivering
		// push notifications; only the transient path needs its own.
		sender = h.pushSender
	}
	agg, err := task.NewAggregator(task.AggregatorConfig{
		Manager:         mgr,
		PushSender:      sender,
		PushOnFinalOnly: h.pushOnFinalOnly,
		Logger:          h.logger,
	})
	if err != nil {
		h.releaseIfTransient(params.ID, bus, !existed)
		return nil, err
	}

	if err := h.executor.Cancel(ctx, params.ID, bus); err != nil {
		h.releaseIfTransient(params.ID, bus, !existed)
		return nil, fmt.Errorf("%w: %w", a2a.ErrTaskNotCancelable, err)
	}

	timer := time.NewTimer(h.cancelTimeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			h.releaseIfTransient(params.ID, bus, !existed)
			return nil, ctx.Err()
		case <-timer.C:
			return h.forceCancel(ctx, agg, bus, stored)
		case e, ok := <-sub.C:
			if !ok {
				h.releaseIfTransient(params.ID, bus, !existed)
				return mgr.Task(ctx)
			}
			if err := agg.Process(ctx, e); err != nil {
				h.logger.WarnContext(ctx, "failed to process event while canceling",
					"task_id", params.ID, "error", err)
				continue
			}
			snapshot, err := mgr.Task(ctx)
			if err != nil {
				continue
			}
			if snapshot.Status.State.Terminal() {
				h.releaseIfTransient(params.ID, bus, !existed)
				return snapshot, nil
			}
		}
	}
}

// forceCancel implements the cancel-timeout policy: the handler synthesizes
// the terminal canceled status, publishes it for any other subscribers, and
// force-finishes the bus so the registry entry is released even if the
// executor never responds.
func (h *RequestHandler) forceCancel(ctx context.Context, agg *task.Aggregator, bus *event.Bus, stored *a2a.Task) (*a2a.Task, error) {
	h.logger.WarnContext(ctx, "executor did not cancel in time, forcing canceled state",
		"task_id", stored.ID, "timeout", h.cancelTimeout)

	evt := &a2a.TaskStatusUpdateEvent{
		Kind:      a2a.KindStatusUpdate,
		TaskID:    stored.ID,
		ContextID: stored.ContextID,
		Status:    a2a.NewTaskStatus(a2a.TaskStateCanceled, nil),
		Final:     true,
	}
	if err := bus.Publish(ctx, evt); err != nil && !errors.Is(err, event.ErrBusFinished) {
		h.logger.WarnContext(ctx, "failed to publish synthesized cancel event",
			"task_id", stored.ID, "error", err)
	}
	bus.Finished()
	h.registry.Deregister(stored.ID)

	if err := agg.Process(ctx, evt); err != nil {
		return nil, fmt.Errorf("failed to apply canceled state: %w", err)
	}
	snapshot, err := agg.Manager().Task(ctx)
	if err != nil {
		return nil, err
	}
	// The bus is finished and its owning fold may never run again; write
	// the terminal state through so reads observe it immediately.
	if err := h.store.Save(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("failed to persist canceled state: %w", err)
	}
	return snapshot, nil
}

// releaseIfTransient finishes and deregisters a bus created only for the
// cancel call. Buses owned by a live invocation are left to their owner.
func (h *RequestHandler) releaseIfTransient(taskID string, bus *event.Bus, transient bool) {
	if !transient {
		return
	}
	bus.Finished()
	h.registry.Deregister(taskID)
}

// Resubscribe reattaches to an in-flight task's event stream. The sequence
// replays everything published so far, then follows live until the final
// event; the invocation owner keeps persisting, so resubscribers only
// observe. A task that already terminated yields a single-item sequence
// with the stored snapshot; an unknown task fails with ErrTaskNotFound.
func (h *RequestHandler) Resubscribe(ctx context.Context, params *a2a.TaskIDParams) (<-chan StreamEvent, error) {
	ctx, span := h.tracer.Start(ctx, "a2a.server.Resubscribe")
	defer span.End()

	if params == nil || params.ID == "" {
		record("tasks/resubscribe", a2a.ErrInvalidRequest)
		return nil, a2a.ErrInvalidRequest.WithMessage("task ID cannot be empty")
	}
	span.SetAttributes(attribute.String("a2a.task_id", params.ID))

	stored, storeErr := h.store.Get(ctx, params.ID)
	bus := h.registry.Get(params.ID)

	if bus == nil || bus.IsFinished() {
		if storeErr != nil {
			record("tasks/resubscribe", storeErr)
			return nil, storeErr
		}
		record("tasks/resubscribe", nil)
		out := make(chan StreamEvent, 1)
		out <- StreamEvent{Event: stored}
		close(out)
		return out, nil
	}
	if storeErr != nil && !errors.Is(storeErr, a2a.ErrTaskNotFound) {
		record("tasks/resubscribe", storeErr)
		return nil, storeErr
	}
	record("tasks/resubscribe", nil)

	sub := bus.Subscribe()
	out := make(chan StreamEvent, streamBuffer)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				bus.Unsubscribe(sub)
				return
			case e, ok := <-sub.C:
				if !ok {
					return
				}
				select {
				case out <- StreamEvent{Event: e}:
				case <-ctx.Done():
					bus.Unsubscribe(sub)
					return
				}
				if a2a.Final(e) {
					return
				}
			}
		}
	}()
	return out, nil
}

// SetPushConfig registers a webhook for task state change notifications.
func (h *RequestHandler) SetPushConfig(ctx context.Context, config *a2a.TaskPushNotificationConfig) (out *a2a.TaskPushNotificationConfig, err error) {
	ctx, span := h.tracer.Start(ctx, "a2a.server.SetPushConfig")
	defer span.End()
	defer func() { record("tasks/pushNotificationConfig/set", err) }()

	if !h.card.Capabilities.PushNotifications {
		return nil, a2a.ErrPushNotificationNotSupported
	}
	if config == nil {
		return nil, a2a.ErrInvalidRequest.WithMessage("push notification config cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return nil, a2a.ErrInvalidRequest.WithMessage("invalid push notification config: %v", err)
	}
	span.SetAttributes(attribute.String("a2a.task_id", config.TaskID))

	if _, err := h.store.Get(ctx, config.TaskID); err != nil {
		return nil, err
	}

	stored, err := h.pushStore.Save(ctx, config.TaskID, &config.PushNotificationConfig)
	if err != nil {
		return nil, err
	}
	return &a2a.TaskPushNotificationConfig{
		TaskID:                 config.TaskID,
		PushNotificationConfig: *stored,
	}, nil
}

// GetPushConfig returns one registered webhook config for the task: the one
// matching the requested config ID, or the first registered one when no ID
// is given.
func (h *RequestHandler) GetPushConfig(ctx context.Context, params *a2a.GetTaskPushNotificationConfigParams) (out *a2a.TaskPushNotificationConfig, err error) {
	ctx, span := h.tracer.Start(ctx, "a2a.server.GetPushConfig")
	defer span.End()
	defer func() { record("tasks/pushNotificationConfig/get", err) }()

	if !h.card.Capabilities.PushNotifications {
		return nil, a2a.ErrPushNotificationNotSupported
	}
	if params == nil || params.ID == "" {
		return nil, a2a.ErrInvalidRequest.WithMessage("task ID cannot be empty")
	}
	span.SetAttributes(attribute.String("a2a.task_id", params.ID))

	if _, err := h.store.Get(ctx, params.ID); err != nil {
		return nil, err
	}
	configs, err := h.pushStore.Load(ctx, params.ID)
	if err != nil {
		return nil, err
	}

	for _, c := range configs {
		if params.PushNotificationConfigID == "" || c.ID == params.PushNotificationConfigID {
			return &a2a.TaskPushNotificationConfig{TaskID: params.ID, PushNotificationConfig: *c}, nil
		}
	}
	return nil, a2a.ErrInvalidRequest.WithMessage("no push notification config registered for task %q", params.ID)
}

// ListPushConfigs returns all webhook configs registered for the task.
func (h *RequestHandler) ListPushConfigs(ctx context.Context, params *a2a.ListTaskPushNotificationConfigParams) (out []*a2a.TaskPushNotificationConfig, err error) {
	ctx, span := h.tracer.Start(ctx, "a2a.server.ListPushConfigs")
	defer span.End()
	defer func() { record("tasks/pushNotificationConfig/list", err) }()

	if !h.card.Capabilities.PushNotifications {
		return nil, a2a.ErrPushNotificationNotSupported
	}
	if params == nil || params.ID == "" {
		return nil, a2a.ErrInvalidRequest.WithMessage("task ID cannot be empty")
	}
	span.SetAttributes(attribute.String("a2a.task_id", params.ID))

	if _, err := h.store.Get(ctx, params.ID); err != nil {
		return nil, err
	}
	configs, err := h.pushStore.Load(ctx, params.ID)
	if err != nil {
		return nil, err
	}

	out = make([]*a2a.TaskPushNotificationConfig, 0, len(configs))
	for _, c := range configs {
		out = append(out, &a2a.TaskPushNotificationConfig{TaskID: params.ID, PushNotificationConfig: *c})
	}
	return out, nil
}

// DeletePushConfig removes one registered webhook config for the task.
func (h *RequestHandler) DeletePushConfig(ctx context.Context, params *a2a.DeleteTaskPushNotificationConfigParams) (err error) {
	ctx, span := h.tracer.Start(ctx, "a2a.server.DeletePushConfig")
	defer span.End()
	defer func() { record("tasks/pushNotificationConfig/delete", err) }()

	if !h.card.Capabilities.PushNotifications {
		return a2a.ErrPushNotificationNotSupported
	}
	if params == nil || params.ID == "" {
		return a2a.ErrInvalidRequest.WithMessage("task ID cannot be empty")
	}
	span.SetAttributes(attribute.String("a2a.task_id", params.ID))

	if _, err := h.store.Get(ctx, params.ID); err != nil {
		return err
	}
	return h.pushStore.Delete(ctx, params.ID, params.PushNotificationConfigID)
}

// resolve validates the send params and determines the task identity: the
// referenced task loaded from the store, or fresh UUIDs when the message
// starts a new task. It rejects sends targeting terminal tasks.
func (h *RequestHandler) resolve(ctx context.Context, params *a2a.MessageSendParams) (taskID, contextID string, current *a2a.Task, err error) {
	if params == nil {
		return "", "", nil, a2a.ErrInvalidRequest.WithMessage("message send params cannot be nil")
	}
	if err := params.Validate(); err != nil {
		return "", "", nil, a2a.ErrInvalidRequest.WithMessage("%v", err)
	}

	msg := params.Message
	if msg.TaskID != "" {
		current, err = h.store.Get(ctx, msg.TaskID)
		if err != nil {
			return "", "", nil, err
		}
		if current.Status.State.Terminal() {
			// Data lets transports distinguish a terminal-task rejection
			// from malformed params without parsing the message text.
			return "", "", nil, a2a.ErrInvalidRequest.WithMessage(
				"task %q is already %s and accepts no further messages", current.ID, current.Status.State).
				WithData(map[string]any{"taskId": current.ID, "state": string(current.Status.State)})
		}
		taskID = current.ID
		contextID = current.ContextID
	} else {
		taskID = uuid.NewString()
		contextID = msg.ContextID
		if contextID == "" {
			contextID = uuid.NewString()
		}
	}

	msg.TaskID = taskID
	msg.ContextID = contextID
	return taskID, contextID, current, nil
}

// registerSendPushConfig stores a webhook config supplied inline with a
// message send.
func (h *RequestHandler) registerSendPushConfig(ctx context.Context, taskID string, params *a2a.MessageSendParams) error {
	if params.Configuration == nil || params.Configuration.PushNotificationConfig == nil {
		return nil
	}
	if !h.card.Capabilities.PushNotifications {
		return a2a.ErrPushNotificationNotSupported
	}
	if _, err := h.pushStore.Save(ctx, taskID, params.Configuration.PushNotificationConfig); err != nil {
		return fmt.Errorf("failed to register push notification config: %w", err)
	}
	return nil
}

// attach obtains the task's bus, subscribing before the executor can
// publish so the consumer observes the sequence from the first event. A new
// bus also dispatches the executor in a supervised goroutine; an existing
// one means the task is in flight and the caller only attaches. The
// invocation owner's aggregator is the single writer for the attempt —
// attached consumers fold the replayed sequence read-only — and only the
// owner delivers push notifications, keeping exactly one persistence and
// one delivery path per task attempt.
func (h *RequestHandler) attach(ctx context.Context, params *a2a.MessageSendParams, taskID, contextID string, current *a2a.Task) (*task.Aggregator, *event.Subscription, error) {
	bus, existed := h.registry.CreateOrGet(taskID)
	sub := bus.Subscribe()

	if !existed {
		reqCtx, err := h.builder.Build(ctx, params, taskID, contextID, current, auth.UserFromContext(ctx))
		if err != nil {
			bus.Finished()
			h.registry.Deregister(taskID)
			return nil, nil, fmt.Errorf("failed to build request context: %w", err)
		}
		go h.runExecutor(context.WithoutCancel(ctx), reqCtx, bus)
	}

	mgr, err := task.NewManager(task.ManagerConfig{
		TaskID:    taskID,
		ContextID: contextID,
		Store:     h.store,
		ReadOnly:  existed,
		Logger:    h.logger,
	})
	if err != nil {
		return nil, nil, err
	}
	var sender task.PushSender
	if !existed {
		sender = h.pushSender
	}
	agg, err := task.NewAggregator(task.AggregatorConfig{
		Manager:         mgr,
		PushSender:      sender,
		PushOnFinalOnly: h.pushOnFinalOnly,
		Logger:          h.logger,
	})
	if err != nil {
		return nil, nil, err
	}
	return agg, sub, nil
}

// runExecutor supervises one executor invocation. Panics and returned
// errors become a final failed status event, and the bus is always finished
// and deregistered, so no consumer waits on a dead invocation.
func (h *RequestHandler) runExecutor(ctx context.Context, reqCtx *execution.RequestContext, bus *event.Bus) {
	taskID := reqCtx.TaskID()

	defer func() {
		if r := recover(); r != nil {
			h.logger.ErrorContext(ctx, "agent executor panicked",
				"task_id", taskID, "panic", r)
			h.failTask(ctx, reqCtx, bus, fmt.Sprintf("executor panicked: %v", r))
		}
		bus.Finished()
		h.registry.Deregister(taskID)
	}()

	if err := h.executor.Execute(ctx, reqCtx, bus); err != nil {
		h.logger.ErrorContext(ctx, "agent executor failed",
			"task_id", taskID, "error", err)
		h.failTask(ctx, reqCtx, bus, err.Error())
	}
}

// failTask publishes the terminal failed status for a broken invocation.
func (h *RequestHandler) failTask(ctx context.Context, reqCtx *execution.RequestContext, bus *event.Bus, reason string) {
	evt := &a2a.TaskStatusUpdateEvent{
		Kind:      a2a.KindStatusUpdate,
		TaskID:    reqCtx.TaskID(),
		ContextID: reqCtx.ContextID(),
		Status:    a2a.NewTaskStatus(a2a.TaskStateFailed, a2a.NewAgentText(reason)),
		Final:     true,
	}
	if err := bus.Publish(ctx, evt); err != nil && !errors.Is(err, event.ErrBusFinished) {
		h.logger.ErrorContext(ctx, "failed to publish failure event",
			"task_id", reqCtx.TaskID(), "error", err)
	}
}

// record tracks one runtime operation in the request metrics.
func record(method string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.RequestsTotal.WithLabelValues(method, status).Inc()
}

// historyLength returns the caller's requested history bound, or zero for
// unbounded.
func historyLength(params *a2a.MessageSendParams) int {
	if params.Configuration == nil {
		return 0
	}
	return params.Configuration.HistoryLength
}

// truncateHistory keeps only the most recent n history entries. n <= 0
// leaves the history untouched.
func truncateHistory(t *a2a.Task, n int) {
	if n <= 0 || len(t.History) <= n {
		return
	}
	t.History = t.History[len(t.History)-n:]
}
