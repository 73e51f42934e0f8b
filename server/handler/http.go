// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	a2a "github.com/go-a2a/runtime"
	"github.com/go-a2a/runtime/server"
	"github.com/go-a2a/runtime/sse"
)

// maxRequestBody bounds the accepted JSON-RPC request size.
const maxRequestBody = 4 << 20

// HTTPHandler serves the A2A protocol over HTTP: JSON-RPC requests on the
// RPC endpoint, SSE responses for the streaming methods, and the agent card
// documents on their well-known paths.
type HTTPHandler struct {
	runtime *server.RequestHandler
	rpcPath string
	logger  *slog.Logger
}

var _ http.Handler = (*HTTPHandler)(nil)

// HTTPHandlerConfig holds configuration for creating an HTTPHandler.
type HTTPHandlerConfig struct {
	// Runtime handles the decoded operations.
	Runtime *server.RequestHandler

	// RPCPath is the JSON-RPC endpoint path. Empty selects
	// a2a.DefaultRPCURL.
	RPCPath string

	Logger *slog.Logger
}

// NewHTTPHandler creates an HTTPHandler for the given runtime.
func NewHTTPHandler(config HTTPHandlerConfig) (*HTTPHandler, error) {
	if config.Runtime == nil {
		return nil, a2a.ErrInternal.WithMessage("runtime cannot be nil")
	}

	rpcPath := config.RPCPath
	if rpcPath == "" {
		rpcPath = a2a.DefaultRPCURL
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &HTTPHandler{
		runtime: config.Runtime,
		rpcPath: rpcPath,
		logger:  logger,
	}, nil
}

// ServeHTTP implements [http.Handler].
func (h *HTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case a2a.AgentCardWellKnownPath:
		h.serveAgentCard(w, r)
	case a2a.ExtendedAgentCardPath:
		h.serveExtendedAgentCard(w, r)
	case h.rpcPath:
		h.serveRPC(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *HTTPHandler) serveAgentCard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, http.StatusOK, h.runtime.AgentCard())
}

func (h *HTTPHandler) serveExtendedAgentCard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	card, err := h.runtime.AuthenticatedExtendedCard(r.Context())
	if err != nil {
		h.writeJSON(w, http.StatusNotFound, errorResponse(nil, err))
		return
	}
	h.writeJSON(w, http.StatusOK, card)
}

// serveRPC decodes one JSON-RPC request and dispatches it. Streaming
// methods switch the response to SSE framing; everything else answers with
// a single JSON-RPC response document.
func (h *HTTPHandler) serveRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if ct := r.Header.Get("Content-Type"); !strings.Contains(ct, "application/json") {
		h.writeJSON(w, http.StatusUnsupportedMediaType,
			errorResponse(nil, a2a.ErrContentTypeNotSupported.WithMessage("unsupported content type %q", ct)))
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest,
			errorResponse(nil, a2a.NewError(a2a.CodeJSONParse, "failed to read request body")))
		return
	}

	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		h.writeJSON(w, http.StatusBadRequest,
			errorResponse(nil, a2a.NewError(a2a.CodeJSONParse, "malformed JSON-RPC request")))
		return
	}
	if req.JSONRPC != jsonrpcVersion || req.Method == "" {
		h.writeJSON(w, http.StatusBadRequest,
			errorResponse(req.ID, a2a.ErrInvalidRequest.WithMessage("not a JSON-RPC 2.0 request")))
		return
	}

	ctx := r.Context()
	switch req.Method {
	case a2a.MethodMessageStream:
		params, err := decodeParams[a2a.MessageSendParams](&req)
		if err != nil {
			h.writeJSON(w, http.StatusOK, errorResponse(req.ID, err))
			return
		}
		stream, err := h.runtime.SendMessageStream(ctx, params)
		if err != nil {
			h.writeJSON(w, http.StatusOK, errorResponse(req.ID, err))
			return
		}
		h.serveStream(ctx, w, req.ID, stream)
	case a2a.MethodTasksResubscribe:
		params, err := decodeParams[a2a.TaskIDParams](&req)
		if err != nil {
			h.writeJSON(w, http.StatusOK, errorResponse(req.ID, err))
			return
		}
		stream, err := h.runtime.Resubscribe(ctx, params)
		if err != nil {
			h.writeJSON(w, http.StatusOK, errorResponse(req.ID, err))
			return
		}
		h.serveStream(ctx, w, req.ID, stream)
	default:
		result, err := h.dispatch(ctx, &req)
		if err != nil {
			h.writeJSON(w, http.StatusOK, errorResponse(req.ID, err))
			return
		}
		h.writeJSON(w, http.StatusOK, resultResponse(req.ID, result))
	}
}

// dispatch routes one non-streaming request to the runtime operation.
func (h *HTTPHandler) dispatch(ctx context.Context, req *Request) (any, error) {
	switch req.Method {
	case a2a.MethodMessageSend:
		params, err := decodeParams[a2a.MessageSendParams](req)
		if err != nil {
			return nil, err
		}
		return h.runtime.SendMessage(ctx, params)
	case a2a.MethodTasksGet:
		params, err := decodeParams[a2a.TaskQueryParams](req)
		if err != nil {
			return nil, err
		}
		return h.runtime.GetTask(ctx, params)
	case a2a.MethodTasksCancel:
		params, err := decodeParams[a2a.TaskIDParams](req)
		if err != nil {
			return nil, err
		}
		return h.runtime.CancelTask(ctx, params)
	case a2a.MethodPushConfigSet:
		params, err := decodeParams[a2a.TaskPushNotificationConfig](req)
		if err != nil {
			return nil, err
		}
		return h.runtime.SetPushConfig(ctx, params)
	case a2a.MethodPushConfigGet:
		params, err := decodeParams[a2a.GetTaskPushNotificationConfigParams](req)
		if err != nil {
			return nil, err
		}
		return h.runtime.GetPushConfig(ctx, params)
	case a2a.MethodPushConfigList:
		params, err := decodeParams[a2a.ListTaskPushNotificationConfigParams](req)
		if err != nil {
			return nil, err
		}
		return h.runtime.ListPushConfigs(ctx, params)
	case a2a.MethodPushConfigDelete:
		params, err := decodeParams[a2a.DeleteTaskPushNotificationConfigParams](req)
		if err != nil {
			return nil, err
		}
		if err := h.runtime.DeletePushConfig(ctx, params); err != nil {
			return nil, err
		}
		return map[string]any{}, nil
	default:
		return nil, a2a.NewError(a2a.CodeMethodNotFound, "unknown method %q", req.Method)
	}
}

// serveStream relays a runtime event sequence as SSE. Each event is a
// complete JSON-RPC response document in a data frame; a failure terminates
// the stream with an error frame instead of a bare connection drop.
func (h *HTTPHandler) serveStream(ctx context.Context, w http.ResponseWriter, id jsontext.Value, stream <-chan server.StreamEvent) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	enc := sse.NewEncoder(w)
	for item := range stream {
		if item.Err != nil {
			if err := enc.WriteError(errorResponse(id, item.Err)); err != nil {
				h.logger.WarnContext(ctx, "failed to write SSE error frame", "error", err)
			}
			return
		}
		if err := enc.WriteEvent(resultResponse(id, item.Event)); err != nil {
			h.logger.WarnContext(ctx, "failed to write SSE event, client gone", "error", err)
			return
		}
	}
}

// decodeParams unmarshals the request params into the method's parameter
// type.
func decodeParams[P any](req *Request) (*P, error) {
	var params P
	if len(req.Params) == 0 {
		return nil, a2a.NewError(a2a.CodeInvalidParams, "missing params")
	}
	if err := json.Unmarshal([]byte(req.Params), &params); err != nil {
		return nil, a2a.NewError(a2a.CodeInvalidParams, "malformed params: %v", err)
	}
	return &params, nil
}

func (h *HTTPHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.MarshalWrite(w, v); err != nil {
		h.logger.Warn("failed to write response", "error", err)
	}
}
