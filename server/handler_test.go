// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package server_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	a2a "github.com/go-a2a/runtime"
	"github.com/go-a2a/runtime/server"
	"github.com/go-a2a/runtime/server/event"
	"github.com/go-a2a/runtime/server/execution"
	"github.com/go-a2a/runtime/server/task"
)

// scriptedExecutor drives tests with caller-supplied execute and cancel
// behavior.
type scriptedExecutor struct {
	execute func(ctx context.Context, reqCtx *execution.RequestContext, bus *event.Bus) error
	cancel  func(ctx context.Context, taskID string, bus *event.Bus) error
}

func (s *scriptedExecutor) Execute(ctx context.Context, reqCtx *execution.RequestContext, bus *event.Bus) error {
	if s.execute == nil {
		return nil
	}
	return s.execute(ctx, reqCtx, bus)
}

func (s *scriptedExecutor) Cancel(ctx context.Context, taskID string, bus *event.Bus) error {
	if s.cancel == nil {
		return nil
	}
	return s.cancel(ctx, taskID, bus)
}

// echoExecutor runs the full happy path: create the task, go working, then
// complete with an agent reply.
func echoExecutor(reply string) *scriptedExecutor {
	return &scriptedExecutor{
		execute: func(ctx context.Context, reqCtx *execution.RequestContext, bus *event.Bus) error {
			tsk, err := a2a.NewTask(reqCtx.Message())
			if err != nil {
				return err
			}
			if err := bus.Publish(ctx, tsk); err != nil {
				return err
			}
			if err := bus.Publish(ctx, a2a.NewStatusUpdate(tsk, a2a.NewTaskStatus(a2a.TaskStateWorking, nil))); err != nil {
				return err
			}
			return bus.Publish(ctx, a2a.NewFinalStatusUpdate(tsk, a2a.NewTaskStatus(a2a.TaskStateCompleted, a2a.NewAgentText(reply))))
		},
	}
}

func testCard() *a2a.AgentCard {
	return &a2a.AgentCard{
		Name:    "test-agent",
		URL:     "http://127.0.0.1/",
		Version: "0.1.0",
		Capabilities: a2a.AgentCapabilities{
			Streaming:         true,
			PushNotifications: true,
		},
	}
}

func newTestHandler(t *testing.T, exec execution.AgentExecutor, opts ...server.Option) *server.RequestHandler {
	t.Helper()

	h, err := server.NewRequestHandler(exec, testCard(), opts...)
	if err != nil {
		t.Fatalf("NewRequestHandler() error = %v", err)
	}
	t.Cleanup(func() { h.Close() })
	return h
}

func sendParams(text string) *a2a.MessageSendParams {
	return &a2a.MessageSendParams{Message: a2a.NewUserMessage(a2a.NewTextPart(text))}
}

func TestSendMessageBlocking(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, echoExecutor("hello back"))

	result, err := h.SendMessage(t.Context(), sendParams("hi"))
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}

	tsk, ok := result.(*a2a.Task)
	if !ok {
		t.Fatalf("SendMessage() result = %T, want *a2a.Task", result)
	}
	if tsk.Status.State != a2a.TaskStateCompleted {
		t.Errorf("state = %q, want %q", tsk.Status.State, a2a.TaskStateCompleted)
	}
	if len(tsk.History) != 2 {
		t.Fatalf("history = %d messages, want 2", len(tsk.History))
	}
	if tsk.History[0].Role != a2a.RoleUser || tsk.History[0].Text() != "hi" {
		t.Errorf("history[0] = %s %q, want user message %q", tsk.History[0].Role, tsk.History[0].Text(), "hi")
	}
	if tsk.History[1].Role != a2a.RoleAgent || tsk.History[1].Text() != "hello back" {
		t.Errorf("history[1] = %s %q, want agent message %q", tsk.History[1].Role, tsk.History[1].Text(), "hello back")
	}

	// The terminal snapshot is retrievable afterwards.
	got, err := h.GetTask(t.Context(), &a2a.TaskQueryParams{ID: tsk.ID})
	if err != nil {
		t.Fatalf("GetTask() error = %v", err)
	}
	if got.Status.State != a2a.TaskStateCompleted {
		t.Errorf("stored state = %q, want %q", got.Status.State, a2a.TaskStateCompleted)
	}
}

func TestSendMessageBareReply(t *testing.T) {
	t.Parallel()

	exec := &scriptedExecutor{
		execute: func(ctx context.Context, reqCtx *execution.RequestContext, bus *event.Bus) error {
			return bus.Publish(ctx, a2a.NewAgentText("direct answer"))
		},
	}
	h := newTestHandler(t, exec)

	result, err := h.SendMessage(t.Context(), sendParams("hi"))
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	msg, ok := result.(*a2a.Message)
	if !ok {
		t.Fatalf("SendMessage() result = %T, want *a2a.Message", result)
	}
	if msg.Text() != "direct answer" {
		t.Errorf("reply text = %q, want %q", msg.Text(), "direct answer")
	}
}

func TestSendMessageUnknownTaskReference(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, echoExecutor("x"))

	params := sendParams("hi")
	params.Message.TaskID = "no-such-task"
	if _, err := h.SendMessage(t.Context(), params); !errors.Is(err, a2a.ErrTaskNotFound) {
		t.Errorf("SendMessage() error = %v, want ErrTaskNotFound", err)
	}
}

func TestSendMessageToTerminalTask(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, echoExecutor("done"))

	result, err := h.SendMessage(t.Context(), sendParams("hi"))
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	tsk := result.(*a2a.Task)

	params := sendParams("again")
	params.Message.TaskID = tsk.ID
	_, err = h.SendMessage(t.Context(), params)
	if !errors.Is(err, a2a.ErrInvalidRequest) {
		t.Fatalf("SendMessage() to terminal task error = %v, want ErrInvalidRequest", err)
	}

	// The rejection carries structured details so transports can tell a
	// terminal-task rejection apart from malformed params.
	var domainErr *a2a.Error
	if !errors.As(err, &domainErr) {
		t.Fatalf("error = %T, want *a2a.Error", err)
	}
	data, ok := domainErr.Data.(map[string]any)
	if !ok {
		t.Fatalf("error data = %T, want map[string]any", domainErr.Data)
	}
	if data["taskId"] != tsk.ID || data["state"] != string(a2a.TaskStateCompleted) {
		t.Errorf("error data = %v, want taskId %q and state %q", data, tsk.ID, a2a.TaskStateCompleted)
	}
}

func TestSendMessageExecutorFailure(t *testing.T) {
	t.Parallel()

	exec := &scriptedExecutor{
		execute: func(ctx context.Context, reqCtx *execution.RequestContext, bus *event.Bus) error {
			tsk, err := a2a.NewTask(reqCtx.Message())
			if err != nil {
				return err
			}
			if err := bus.Publish(ctx, tsk); err != nil {
				return err
			}
			return errors.New("model quota exceeded")
		},
	}
	h := newTestHandler(t, exec)

	result, err := h.SendMessage(t.Context(), sendParams("hi"))
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	tsk := result.(*a2a.Task)
	if tsk.Status.State != a2a.TaskStateFailed {
		t.Errorf("state = %q, want %q", tsk.Status.State, a2a.TaskStateFailed)
	}
	if tsk.Status.Message == nil || tsk.Status.Message.Text() != "model quota exceeded" {
		t.Errorf("failure status carries no executor error message: %+v", tsk.Status.Message)
	}
}

func TestSendMessageExecutorPanic(t *testing.T) {
	t.Parallel()

	exec := &scriptedExecutor{
		execute: func(ctx context.Context, reqCtx *execution.RequestContext, bus *event.Bus) error {
			tsk, err := a2a.NewTask(reqCtx.Message())
			if err != nil {
				return err
			}
			if err := bus.Publish(ctx, tsk); err != nil {
				return err
			}
			panic("executor bug")
		},
	}
	h := newTestHandler(t, exec)

	result, err := h.SendMessage(t.Context(), sendParams("hi"))
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	tsk := result.(*a2a.Task)
	if tsk.Status.State != a2a.TaskStateFailed {
		t.Errorf("state = %q, want %q", tsk.Status.State, a2a.TaskStateFailed)
	}
}

func TestSendMessageInputRequired(t *testing.T) {
	t.Parallel()

	exec := &scriptedExecutor{
		execute: func(ctx context.Context, reqCtx *execution.RequestContext, bus *event.Bus) error {
			tsk, err := a2a.NewTask(reqCtx.Message())
			if err != nil {
				return err
			}
			if err := bus.Publish(ctx, tsk); err != nil {
				return err
			}
			if err := bus.Publish(ctx, a2a.NewStatusUpdate(tsk, a2a.NewTaskStatus(a2a.TaskStateWorking, nil))); err != nil {
				return err
			}
			return bus.Publish(ctx, a2a.NewStatusUpdate(tsk, a2a.NewTaskStatus(a2a.TaskStateInputRequired, a2a.NewAgentText("which city?"))))
		},
	}
	h := newTestHandler(t, exec)

	result, err := h.SendMessage(t.Context(), sendParams("weather please"))
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	tsk := result.(*a2a.Task)
	if tsk.Status.State != a2a.TaskStateInputRequired {
		t.Errorf("state = %q, want %q", tsk.Status.State, a2a.TaskStateInputRequired)
	}
}

func TestSendMessageStream(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, echoExecutor("streamed"))

	stream, err := h.SendMessageStream(t.Context(), sendParams("hi"))
	if err != nil {
		t.Fatalf("SendMessageStream() error = %v", err)
	}

	var kinds []string
	for item := range stream {
		if item.Err != nil {
			t.Fatalf("stream error = %v", item.Err)
		}
		kinds = append(kinds, item.Event.EventKind())
	}

	want := []string{a2a.KindTask, a2a.KindStatusUpdate, a2a.KindStatusUpdate}
	if len(kinds) != len(want) {
		t.Fatalf("stream yielded %v, want kinds %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("event[%d] kind = %q, want %q", i, kinds[i], want[i])
		}
	}
}

func TestSendMessageAttachDoesNotRefoldHistory(t *testing.T) {
	t.Parallel()

	ctx := t.Context()

	// The executor emits a working update carrying a message, waits for a
	// second consumer to attach to the in-flight task, then completes. The
	// attached consumer observes the replayed sequence without applying it
	// to the store again, so no history entry is persisted twice.
	resume := make(chan struct{})
	exec := &scriptedExecutor{
		execute: func(ctx context.Context, reqCtx *execution.RequestContext, bus *event.Bus) error {
			working := &a2a.TaskStatusUpdateEvent{
				Kind:      a2a.KindStatusUpdate,
				TaskID:    reqCtx.TaskID(),
				ContextID: reqCtx.ContextID(),
				Status:    a2a.NewTaskStatus(a2a.TaskStateWorking, a2a.NewAgentText("partial thought")),
			}
			if err := bus.Publish(ctx, working); err != nil {
				return err
			}
			<-resume
			done := &a2a.TaskStatusUpdateEvent{
				Kind:      a2a.KindStatusUpdate,
				TaskID:    reqCtx.TaskID(),
				ContextID: reqCtx.ContextID(),
				Status:    a2a.NewTaskStatus(a2a.TaskStateCompleted, a2a.NewAgentText("all done")),
				Final:     true,
			}
			return bus.Publish(ctx, done)
		},
	}
	h := newTestHandler(t, exec)

	owner, err := h.SendMessageStream(ctx, sendParams("hi"))
	if err != nil {
		t.Fatalf("SendMessageStream() error = %v", err)
	}

	first := <-owner
	if first.Err != nil {
		t.Fatalf("stream error = %v", first.Err)
	}
	taskID := first.Event.(*a2a.TaskStatusUpdateEvent).TaskID

	followUp := a2a.NewUserMessage(a2a.NewTextPart("still there?"))
	followUp.TaskID = taskID
	attached, err := h.SendMessageStream(ctx, &a2a.MessageSendParams{Message: followUp})
	if err != nil {
		t.Fatalf("SendMessageStream() attach error = %v", err)
	}
	close(resume)

	direct := []string{first.Event.EventKind()}
	for item := range owner {
		if item.Err != nil {
			t.Fatalf("stream error = %v", item.Err)
		}
		direct = append(direct, item.Event.EventKind())
	}
	var replayed []string
	for item := range attached {
		if item.Err != nil {
			t.Fatalf("attached stream error = %v", item.Err)
		}
		replayed = append(replayed, item.Event.EventKind())
	}

	want := []string{a2a.KindStatusUpdate, a2a.KindStatusUpdate}
	if diff := cmp.Diff(want, direct); diff != "" {
		t.Errorf("owner sequence mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, replayed); diff != "" {
		t.Errorf("attached sequence mismatch (-want +got):\n%s", diff)
	}

	tsk, err := h.GetTask(ctx, &a2a.TaskQueryParams{ID: taskID})
	if err != nil {
		t.Fatalf("GetTask() error = %v", err)
	}
	if tsk.Status.State != a2a.TaskStateCompleted {
		t.Errorf("state = %q, want %q", tsk.Status.State, a2a.TaskStateCompleted)
	}
	if len(tsk.History) != 2 {
		t.Fatalf("history = %d messages, want 2 without replay duplicates", len(tsk.History))
	}
	if tsk.History[0].Text() != "partial thought" || tsk.History[1].Text() != "all done" {
		t.Errorf("history = [%q, %q], want [%q, %q]",
			tsk.History[0].Text(), tsk.History[1].Text(), "partial thought", "all done")
	}
}

func TestResubscribeInFlight(t *testing.T) {
	t.Parallel()

	ctx := t.Context()

	// The executor publishes two events, waits for the test to resubscribe,
	// then finishes. The late subscriber must still observe the complete
	// sequence with no gaps or duplicates.
	resume := make(chan struct{})
	exec := &scriptedExecutor{
		execute: func(ctx context.Context, reqCtx *execution.RequestContext, bus *event.Bus) error {
			tsk, err := a2a.NewTask(reqCtx.Message())
			if err != nil {
				return err
			}
			if err := bus.Publish(ctx, tsk); err != nil {
				return err
			}
			if err := bus.Publish(ctx, a2a.NewStatusUpdate(tsk, a2a.NewTaskStatus(a2a.TaskStateWorking, nil))); err != nil {
				return err
			}
			<-resume
			return bus.Publish(ctx, a2a.NewFinalStatusUpdate(tsk, a2a.NewTaskStatus(a2a.TaskStateCompleted, nil)))
		},
	}
	h := newTestHandler(t, exec)

	stream, err := h.SendMessageStream(ctx, sendParams("hi"))
	if err != nil {
		t.Fatalf("SendMessageStream() error = %v", err)
	}

	first := <-stream
	if first.Err != nil {
		t.Fatalf("stream error = %v", first.Err)
	}
	taskID := first.Event.(*a2a.Task).ID

	resub, err := h.Resubscribe(ctx, &a2a.TaskIDParams{ID: taskID})
	if err != nil {
		t.Fatalf("Resubscribe() error = %v", err)
	}
	close(resume)

	var direct, replayed []string
	direct = append(direct, first.Event.EventKind())
	for item := range stream {
		if item.Err != nil {
			t.Fatalf("stream error = %v", item.Err)
		}
		direct = append(direct, item.Event.EventKind())
	}
	for item := range resub {
		if item.Err != nil {
			t.Fatalf("resubscribe error = %v", item.Err)
		}
		replayed = append(replayed, item.Event.EventKind())
	}

	if len(replayed) != len(direct) {
		t.Fatalf("resubscribed sequence %v, want same length as direct %v", replayed, direct)
	}
	for i := range direct {
		if replayed[i] != direct[i] {
			t.Errorf("replayed[%d] = %q, want %q", i, replayed[i], direct[i])
		}
	}
}

func TestResubscribeTerminalTask(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, echoExecutor("done"))

	result, err := h.SendMessage(t.Context(), sendParams("hi"))
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	tsk := result.(*a2a.Task)

	stream, err := h.Resubscribe(t.Context(), &a2a.TaskIDParams{ID: tsk.ID})
	if err != nil {
		t.Fatalf("Resubscribe() error = %v", err)
	}

	var items []server.StreamEvent
	for item := range stream {
		items = append(items, item)
	}
	if len(items) != 1 {
		t.Fatalf("terminal resubscribe yielded %d items, want 1", len(items))
	}
	got, ok := items[0].Event.(*a2a.Task)
	if !ok {
		t.Fatalf("item = %T, want *a2a.Task", items[0].Event)
	}
	if got.Status.State != a2a.TaskStateCompleted {
		t.Errorf("snapshot state = %q, want %q", got.Status.State, a2a.TaskStateCompleted)
	}
}

func TestResubscribeUnknownTask(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, echoExecutor("x"))
	if _, err := h.Resubscribe(t.Context(), &a2a.TaskIDParams{ID: "missing"}); !errors.Is(err, a2a.ErrTaskNotFound) {
		t.Errorf("Resubscribe() error = %v, want ErrTaskNotFound", err)
	}
}

func TestCancelTask(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	release := make(chan struct{})
	exec := &scriptedExecutor{
		execute: func(ctx context.Context, reqCtx *execution.RequestContext, bus *event.Bus) error {
			tsk, err := a2a.NewTask(reqCtx.Message())
			if err != nil {
				return err
			}
			if err := bus.Publish(ctx, tsk); err != nil {
				return err
			}
			if err := bus.Publish(ctx, a2a.NewStatusUpdate(tsk, a2a.NewTaskStatus(a2a.TaskStateWorking, nil))); err != nil {
				return err
			}
			<-release
			return nil
		},
		cancel: func(ctx context.Context, taskID string, bus *event.Bus) error {
			err := bus.Publish(ctx, &a2a.TaskStatusUpdateEvent{
				Kind:      a2a.KindStatusUpdate,
				TaskID:    taskID,
				ContextID: "ignored-by-fold",
				Status:    a2a.NewTaskStatus(a2a.TaskStateCanceled, nil),
				Final:     true,
			})
			close(release)
			return err
		},
	}
	h := newTestHandler(t, exec)

	stream, err := h.SendMessageStream(ctx, sendParams("long job"))
	if err != nil {
		t.Fatalf("SendMessageStream() error = %v", err)
	}

	first := <-stream
	if first.Err != nil {
		t.Fatalf("stream error = %v", first.Err)
	}
	taskID := first.Event.(*a2a.Task).ID
	<-stream // working

	got, err := h.CancelTask(ctx, &a2a.TaskIDParams{ID: taskID})
	if err != nil {
		t.Fatalf("CancelTask() error = %v", err)
	}
	if got.Status.State != a2a.TaskStateCanceled {
		t.Errorf("state = %q, want %q", got.Status.State, a2a.TaskStateCanceled)
	}
}

func TestCancelTaskTimeoutSynthesizesCanceled(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	block := make(chan struct{})
	t.Cleanup(func() { close(block) })

	// This executor ignores Cancel entirely.
	exec := &scriptedExecutor{
		execute: func(ctx context.Context, reqCtx *execution.RequestContext, bus *event.Bus) error {
			tsk, err := a2a.NewTask(reqCtx.Message())
			if err != nil {
				return err
			}
			if err := bus.Publish(ctx, tsk); err != nil {
				return err
			}
			<-block
			return nil
		},
	}
	h := newTestHandler(t, exec, server.WithCancelTimeout(50*time.Millisecond))

	stream, err := h.SendMessageStream(ctx, sendParams("stuck job"))
	if err != nil {
		t.Fatalf("SendMessageStream() error = %v", err)
	}
	first := <-stream
	if first.Err != nil {
		t.Fatalf("stream error = %v", first.Err)
	}
	taskID := first.Event.(*a2a.Task).ID

	got, err := h.CancelTask(ctx, &a2a.TaskIDParams{ID: taskID})
	if err != nil {
		t.Fatalf("CancelTask() error = %v", err)
	}
	if got.Status.State != a2a.TaskStateCanceled {
		t.Errorf("state = %q, want %q", got.Status.State, a2a.TaskStateCanceled)
	}

	stored, err := h.GetTask(ctx, &a2a.TaskQueryParams{ID: taskID})
	if err != nil {
		t.Fatalf("GetTask() error = %v", err)
	}
	if stored.Status.State != a2a.TaskStateCanceled {
		t.Errorf("stored state = %q, want %q", stored.Status.State, a2a.TaskStateCanceled)
	}
}

func TestCancelTaskErrors(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, echoExecutor("done"))

	if _, err := h.CancelTask(t.Context(), &a2a.TaskIDParams{ID: "missing"}); !errors.Is(err, a2a.ErrTaskNotFound) {
		t.Errorf("CancelTask(missing) error = %v, want ErrTaskNotFound", err)
	}

	result, err := h.SendMessage(t.Context(), sendParams("hi"))
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	tsk := result.(*a2a.Task)
	if _, err := h.CancelTask(t.Context(), &a2a.TaskIDParams{ID: tsk.ID}); !errors.Is(err, a2a.ErrTaskNotCancelable) {
		t.Errorf("CancelTask(terminal) error = %v, want ErrTaskNotCancelable", err)
	}
}

func TestPushConfigCRUD(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	h := newTestHandler(t, echoExecutor("done"))

	result, err := h.SendMessage(ctx, sendParams("hi"))
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	taskID := result.(*a2a.Task).ID

	set, err := h.SetPushConfig(ctx, &a2a.TaskPushNotificationConfig{
		TaskID:                 taskID,
		PushNotificationConfig: a2a.PushNotificationConfig{URL: "https://example.com/hook"},
	})
	if err != nil {
		t.Fatalf("SetPushConfig() error = %v", err)
	}
	if set.PushNotificationConfig.ID == "" {
		t.Error("SetPushConfig() did not assign a config ID")
	}

	got, err := h.GetPushConfig(ctx, &a2a.GetTaskPushNotificationConfigParams{ID: taskID})
	if err != nil {
		t.Fatalf("GetPushConfig() error = %v", err)
	}
	if got.PushNotificationConfig.URL != "https://example.com/hook" {
		t.Errorf("config URL = %q", got.PushNotificationConfig.URL)
	}

	list, err := h.ListPushConfigs(ctx, &a2a.ListTaskPushNotificationConfigParams{ID: taskID})
	if err != nil {
		t.Fatalf("ListPushConfigs() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("ListPushConfigs() returned %d configs, want 1", len(list))
	}

	if err := h.DeletePushConfig(ctx, &a2a.DeleteTaskPushNotificationConfigParams{
		ID:                       taskID,
		PushNotificationConfigID: set.PushNotificationConfig.ID,
	}); err != nil {
		t.Fatalf("DeletePushConfig() error = %v", err)
	}
	list, err = h.ListPushConfigs(ctx, &a2a.ListTaskPushNotificationConfigParams{ID: taskID})
	if err != nil {
		t.Fatalf("ListPushConfigs() error = %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("ListPushConfigs() after delete returned %d configs, want 0", len(list))
	}
}

func TestPushConfigUnknownTask(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, echoExecutor("x"))

	_, err := h.SetPushConfig(t.Context(), &a2a.TaskPushNotificationConfig{
		TaskID:                 "missing",
		PushNotificationConfig: a2a.PushNotificationConfig{URL: "https://example.com/hook"},
	})
	if !errors.Is(err, a2a.ErrTaskNotFound) {
		t.Errorf("SetPushConfig() error = %v, want ErrTaskNotFound", err)
	}
}

func TestPushConfigCapabilityGate(t *testing.T) {
	t.Parallel()

	card := testCard()
	card.Capabilities.PushNotifications = false
	h, err := server.NewRequestHandler(echoExecutor("x"), card)
	if err != nil {
		t.Fatalf("NewRequestHandler() error = %v", err)
	}
	t.Cleanup(func() { h.Close() })

	_, err = h.SetPushConfig(t.Context(), &a2a.TaskPushNotificationConfig{
		TaskID:                 "any",
		PushNotificationConfig: a2a.PushNotificationConfig{URL: "https://example.com/hook"},
	})
	if !errors.Is(err, a2a.ErrPushNotificationNotSupported) {
		t.Errorf("SetPushConfig() error = %v, want ErrPushNotificationNotSupported", err)
	}
}

func TestAgentCardSurfaces(t *testing.T) {
	t.Parallel()

	card := testCard()
	card.SupportsAuthenticatedExtendedCard = true
	extended := testCard()
	extended.Description = "the whole story"

	h, err := server.NewRequestHandler(echoExecutor("x"), card, server.WithExtendedAgentCard(extended))
	if err != nil {
		t.Fatalf("NewRequestHandler() error = %v", err)
	}
	t.Cleanup(func() { h.Close() })

	if got := h.AgentCard(); got.Name != "test-agent" {
		t.Errorf("AgentCard().Name = %q", got.Name)
	}
	got, err := h.AuthenticatedExtendedCard(t.Context())
	if err != nil {
		t.Fatalf("AuthenticatedExtendedCard() error = %v", err)
	}
	if got.Description != "the whole story" {
		t.Errorf("extended card description = %q", got.Description)
	}
}

func TestAuthenticatedExtendedCardNotConfigured(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, echoExecutor("x"))
	if _, err := h.AuthenticatedExtendedCard(t.Context()); !errors.Is(err, a2a.ErrAuthenticatedExtendedCardNotConfigured) {
		t.Errorf("AuthenticatedExtendedCard() error = %v, want ErrAuthenticatedExtendedCardNotConfigured", err)
	}
}

func TestSendMessageWithInlinePushConfig(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	pushStore := task.NewInMemoryPushConfigStore()
	h := newTestHandler(t, echoExecutor("done"),
		server.WithPushConfigStore(pushStore),
		server.WithPushSender(task.NoopPushSender{}))

	params := sendParams("hi")
	params.Configuration = &a2a.MessageSendConfiguration{
		PushNotificationConfig: &a2a.PushNotificationConfig{URL: "https://example.com/hook"},
	}
	result, err := h.SendMessage(ctx, params)
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	taskID := result.(*a2a.Task).ID

	configs, err := pushStore.Load(ctx, taskID)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(configs) != 1 {
		t.Fatalf("registered %d configs, want 1", len(configs))
	}
}
