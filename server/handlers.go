package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/send2-name/delegate2name-api/frame"
)

// maxPayloadBytes bounds a frame action body. Real ones are a few KB.
const maxPayloadBytes = 64 << 10

type stepFunc func(ctx context.Context, req frame.Request) (frame.Step, error)

type FrameHandler struct {
	machine *frame.Machine
	log     *zap.Logger
}

func NewFrameHandler(m *frame.Machine, log *zap.Logger) *FrameHandler {
	return &FrameHandler{machine: m, log: log}
}

// BaseURL is scheme and host a request was addressed to. Local hosts are
// served over plain http, everything else is assumed to sit behind TLS.
func BaseURL(r *http.Request) string {
	host := r.Host
	hostname := host
	if h, _, err := net.SplitHostPort(host); err == nil {
		hostname = h
	}
	scheme := "https"
	switch hostname {
	case "localhost", "127.0.0.1", "::1":
		scheme = "http"
	}
	return scheme + "://" + host
}

// ParsePayload decodes a frame action body. An empty body is no payload.
func ParsePayload(r *http.Request) (*frame.Payload, error) {
	if r.Method != http.MethodPost || r.Body == nil {
		return nil, nil
	}
	defer r.Body.Close()

	payload := &frame.Payload{}
	err := json.NewDecoder(io.LimitReader(r.Body, maxPayloadBytes)).Decode(payload)
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: couldn't decode frame payload: %w", frame.ErrMalformedRequest, err)
	}
	return payload, nil
}

func (h *FrameHandler) request(r *http.Request) (frame.Request, error) {
	payload, err := ParsePayload(r)
	if err != nil {
		return frame.Request{}, err
	}
	return frame.Request{
		Network: chi.URLParam(r, "network"),
		BaseURL: BaseURL(r),
		Query:   r.URL.Query(),
		Payload: payload,
	}, nil
}

func (h *FrameHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, frame.ErrUnknownNetwork):
		ErrorResponse(w, http.StatusNotFound, err.Error())
	case frame.IsClientError(err):
		ErrorResponse(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error("frame handler failed", zap.String("path", r.URL.Path), zap.Error(err))
		ErrorResponse(w, http.StatusInternalServerError, "internal error")
	}
}

// Step serves one frame step as an HTML frame page.
func (h *FrameHandler) Step(fn stepFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := h.request(r)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		step, err := fn(r.Context(), req)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		if step.Err != nil {
			h.log.Info("rendering degraded step",
				zap.String("network", req.Network),
				zap.Stringer("step", step.Kind),
				zap.Error(step.Err),
			)
		}
		if err := RenderStep(w, step); err != nil {
			h.log.Error("couldn't render frame", zap.Stringer("step", step.Kind), zap.Error(err))
		}
	}
}

// TransactionData answers the wallet with the delegate transaction.
func (h *FrameHandler) TransactionData(w http.ResponseWriter, r *http.Request) {
	req, err := h.request(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	tx, err := h.machine.BuildTransaction(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	JSONResponse(w, http.StatusOK, tx)
}

type networkIndex struct {
	Name     string         `json:"name"`
	Networks []networkEntry `json:"networks"`
}

type networkEntry struct {
	Slug  string `json:"slug"`
	Start string `json:"start"`
}

// Index lists the served flows and where each one starts.
func (h *FrameHandler) Index(w http.ResponseWriter, r *http.Request) {
	base := BaseURL(r)
	index := networkIndex{Name: "delegate2name frames", Networks: []networkEntry{}}
	for _, slug := range h.machine.Networks() {
		index.Networks = append(index.Networks, networkEntry{
			Slug:  slug,
			Start: fmt.Sprintf("%s/frame/delegate/%s/start", base, slug),
		})
	}
	JSONResponse(w, http.StatusOK, index)
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// JSONResponse writes a JSON response
func JSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// ErrorResponse writes a JSON error response
func ErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	JSONResponse(w, statusCode, errorBody{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}
