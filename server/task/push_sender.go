// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"golang.org/x/sync/errgroup"

	a2a "github.com/go-a2a/runtime"
	"github.com/go-a2a/runtime/internal/metrics"
)

// PushSender delivers task snapshots to registered webhook endpoints.
// Deliveries for the same task must arrive at each endpoint in the order
// Notify was called, so a slow endpoint cannot reorder status updates.
type PushSender interface {
	// Notify schedules delivery of the task snapshot to every endpoint
	// registered for the task. It returns once the delivery is queued;
	// the HTTP calls happen asynchronously.
	Notify(ctx context.Context, task *a2a.Task) error

	// Wait blocks until all queued deliveries have been attempted.
	Wait()

	// Close shuts down the sender after draining queued deliveries.
	Close() error
}

// DefaultPushTimeout bounds a single webhook POST.
const DefaultPushTimeout = 5 * time.Second

// pushQueueSize bounds the pending snapshots per task. A task that changes
// state faster than its endpoints accept deliveries evicts the oldest
// pending snapshot to make room, so the most recent state — including the
// terminal one — is always delivered.
const pushQueueSize = 64

type pushItem struct {
	task    *a2a.Task
	configs []*a2a.PushNotificationConfig
}

type pushWorker struct {
	ch chan pushItem
}

// HTTPPushSender implements PushSender over HTTP POST. Each in-flight task
// gets a lazily created worker goroutine that delivers its snapshots one at
// a time, which keeps per-task ordering while separate tasks deliver
// concurrently. Workers tear themselves down when their queue drains.
type HTTPPushSender struct {
	client      *http.Client
	timeout     time.Duration
	configStore PushConfigStore
	signingKey  []byte
	logger      *slog.Logger

	mu      sync.Mutex
	workers map[string]*pushWorker
	closed  bool
	wg      sync.WaitGroup
}

var _ PushSender = (*HTTPPushSender)(nil)

// HTTPPushSenderConfig holds configuration for HTTPPushSender.
type HTTPPushSenderConfig struct {
	// Client is the HTTP client used for webhook POSTs. A default client
	// is used when nil.
	Client *http.Client

	// Timeout bounds each webhook POST. Zero selects DefaultPushTimeout.
	Timeout time.Duration

	// ConfigStore resolves the endpoints registered for a task.
	ConfigStore PushConfigStore

	// SigningKey, when set, signs each delivery with an HS256 JWT carrying
	// the SHA-256 of the request body, sent as a bearer token.
	SigningKey []byte

	Logger *slog.Logger
}

// NewHTTPPushSender creates an HTTPPushSender.
func NewHTTPPushSender(config HTTPPushSenderConfig) (*HTTPPushSender, error) {
	if config.ConfigStore == nil {
		return nil, fmt.Errorf("push config store cannot be nil")
	}

	client := config.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultPushTimeout
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &HTTPPushSender{
		client:      client,
		timeout:     timeout,
		configStore: config.ConfigStore,
		signingKey:  config.SigningKey,
		logger:      logger,
		workers:     make(map[string]*pushWorker),
	}, nil
}

// Notify schedules delivery of the task snapshot to every registered
// endpoint. Tasks with no registered endpoints are a no-op. Delivery
// failures are logged, never surfaced: a broken webhook must not fail the
// task.
func (s *HTTPPushSender) Notify(ctx context.Context, task *a2a.Task) error {
	if task == nil {
		return fmt.Errorf("task cannot be nil")
	}

	configs, err := s.configStore.Load(ctx, task.ID)
	if err != nil {
		return fmt.Errorf("failed to load push notification configs: %w", err)
	}
	if len(configs) == 0 {
		return nil
	}

	// Snapshot the task now so later mutations by the aggregator cannot
	// leak into an already queued delivery.
	clone, err := task.Clone()
	if err != nil {
		return fmt.Errorf("failed to snapshot task: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("push sender is closed")
	}

	w, ok := s.workers[task.ID]
	if !ok {
		w = &pushWorker{ch: make(chan pushItem, pushQueueSize)}
		s.workers[task.ID] = w
		s.wg.Add(1)
		go s.run(task.ID, w)
	}

	select {
	case w.ch <- pushItem{task: clone, configs: configs}:
	default:
		// Queue full: evict the oldest pending snapshot so the newest
		// state, including the terminal one, is always delivered. Sends
		// happen under the sender lock, so the freed slot cannot be taken
		// by another caller.
		select {
		case dropped := <-w.ch:
			s.logger.WarnContext(ctx, "push notification queue full, dropping oldest snapshot",
				"task_id", task.ID, "dropped_state", dropped.task.Status.State)
			metrics.PushNotificationsTotal.WithLabelValues("dropped").Inc()
		default:
		}
		w.ch <- pushItem{task: clone, configs: configs}
	}
	return nil
}

// Wait blocks until every queued delivery has been attempted and all task
// workers have exited.
func (s *HTTPPushSender) Wait() {
	s.wg.Wait()
}

// Close stops accepting new deliveries and drains the queued ones.
func (s *HTTPPushSender) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// run is the per-task delivery loop. Items are delivered strictly in queue
// order; the worker removes itself from the map once its queue is empty.
func (s *HTTPPushSender) run(taskID string, w *pushWorker) {
	defer s.wg.Done()

	for {
		select {
		case item := <-w.ch:
			s.deliver(item)
		default:
			// Queue drained. Retire under the lock so a concurrent Notify
			// either sees the worker and enqueues, or misses it and starts
			// a fresh one.
			s.mu.Lock()
			if len(w.ch) > 0 {
				s.mu.Unlock()
				continue
			}
			delete(s.workers, taskID)
			s.mu.Unlock()
			return
		}
	}
}

// deliver fans one snapshot out to all registered endpoints concurrently
// and waits for every attempt to finish before the next snapshot is taken.
func (s *HTTPPushSender) deliver(item pushItem) {
	g, ctx := errgroup.WithContext(context.Background())
	for _, config := range item.configs {
		g.Go(func() error {
			s.dispatch(ctx, item.task, config)
			return nil
		})
	}
	// Dispatch errors are logged in place, never propagated.
	_ = g.Wait()
}

// dispatch POSTs the full task snapshot to one endpoint.
func (s *HTTPPushSender) dispatch(ctx context.Context, task *a2a.Task, config *a2a.PushNotificationConfig) {
	start := time.Now()
	defer func() {
		metrics.PushNotificationDuration.Observe(time.Since(start).Seconds())
	}()

	if err := config.Validate(); err != nil {
		s.logger.ErrorContext(ctx, "invalid push notification config",
			"task_id", task.ID, "config_id", config.ID, "error", err)
		metrics.PushNotificationsTotal.WithLabelValues("error").Inc()
		return
	}

	body, err := json.Marshal(task)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to marshal task for push notification",
			"task_id", task.ID, "url", config.URL, "error", err)
		metrics.PushNotificationsTotal.WithLabelValues("error").Inc()
		return
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodPost, config.URL, bytes.NewReader(body))
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to create push notification request",
			"task_id", task.ID, "url", config.URL, "error", err)
		metrics.PushNotificationsTotal.WithLabelValues("error").Inc()
		return
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "a2a-runtime-push-sender")
	if config.Token != "" {
		req.Header.Set(a2a.DefaultNotificationTokenHeader, config.Token)
	}
	if err := s.authenticate(req, body, config.Authentication); err != nil {
		s.logger.ErrorContext(ctx, "failed to authenticate push notification",
			"task_id", task.ID, "url", config.URL, "error", err)
		metrics.PushNotificationsTotal.WithLabelValues("error").Inc()
		return
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.ErrorContext(ctx, "push notification delivery failed",
			"task_id", task.ID, "url", config.URL, "error", err)
		metrics.PushNotificationsTotal.WithLabelValues("error").Inc()
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		s.logger.ErrorContext(ctx, "push notification rejected by endpoint",
			"task_id", task.ID, "url", config.URL,
			"status", resp.StatusCode, "body", string(respBody))
		metrics.PushNotificationsTotal.WithLabelValues("error").Inc()
		return
	}

	s.logger.InfoContext(ctx, "push notification sent",
		"task_id", task.ID, "url", config.URL, "state", task.Status.State)
	metrics.PushNotificationsTotal.WithLabelValues("ok").Inc()
}

// authenticate applies endpoint authentication to the request. A signing
// key, when configured, yields a bearer JWT binding the request body.
func (s *HTTPPushSender) authenticate(req *http.Request, body []byte, auth *a2a.PushNotificationAuthenticationInfo) error {
	if len(s.signingKey) > 0 {
		sum := sha256.Sum256(body)
		tok, err := jwt.NewBuilder().
			IssuedAt(time.Now()).
			Claim("request_body_sha256", hex.EncodeToString(sum[:])).
			Build()
		if err != nil {
			return fmt.Errorf("failed to build push notification token: %w", err)
		}
		signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256(), s.signingKey))
		if err != nil {
			return fmt.Errorf("failed to sign push notification token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+string(signed))
		return nil
	}

	if auth == nil {
		return nil
	}
	for _, scheme := range auth.Schemes {
		switch scheme {
		case "basic":
			if auth.Credentials != "" {
				req.Header.Set("Authorization", "Basic "+auth.Credentials)
			}
		case "bearer":
			if auth.Credentials != "" {
				req.Header.Set("Authorization", "Bearer "+auth.Credentials)
			}
		case "api_key":
			if auth.Credentials != "" {
				req.Header.Set("X-API-Key", auth.Credentials)
			}
		default:
			return fmt.Errorf("unsupported authentication scheme: %s", scheme)
		}
	}
	return nil
}

// NoopPushSender discards all deliveries. Used when push notifications are
// disabled.
type NoopPushSender struct{}

var _ PushSender = (*NoopPushSender)(nil)

// Notify does nothing.
func (NoopPushSender) Notify(ctx context.Context, task *a2a.Task) error { return nil }

// Wait does nothing.
func (NoopPushSender) Wait() {}

// Close does nothing.
func (NoopPushSender) Close() error { return nil }
