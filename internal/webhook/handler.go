// Package webhook is the host-independent ingress for GitHub webhook
// deliveries. Host adapters translate their request objects into Request and
// write Response back.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

const (
	HeaderDelivery  = "x-github-delivery"
	HeaderEvent     = "x-github-event"
	HeaderSignature = "x-hub-signature-256"
)

var (
	ErrMissingBodyOrHeaders = errors.New("missing event body or headers")
	ErrMissingHeaders       = errors.New("missing required headers")
)

// Request is a raw delivery. Header names are matched case-insensitively; an
// empty value counts as absent.
type Request struct {
	Body    string
	Headers map[string]string
}

type Response struct {
	Status int
	Body   string
}

// Delivery is a validated request handed to the Receiver.
type Delivery struct {
	ID        string
	Event     string
	Signature string
	Payload   []byte
}

// Receiver verifies a delivery and runs whatever handles it.
type Receiver interface {
	VerifyAndReceive(ctx context.Context, d Delivery) error
}

type DeliveryRecorder interface {
	DeliveryHandled(status int)
}

type Handler struct {
	receiver Receiver
	logger   *slog.Logger
	recorder DeliveryRecorder
}

func NewHandler(receiver Receiver, logger *slog.Logger, recorder DeliveryRecorder) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		receiver: receiver,
		logger:   logger,
		recorder: recorder,
	}
}

// Process validates req, hands it to the receiver and maps the outcome to a
// response: 200 {"ok":true} on success, 400 {"message":...} otherwise. A 200
// means the delivery was processed, not that the close was approved.
func (h *Handler) Process(ctx context.Context, req Request) Response {
	resp := h.process(ctx, req)
	if h.recorder != nil {
		h.recorder.DeliveryHandled(resp.Status)
	}
	return resp
}

func (h *Handler) process(ctx context.Context, req Request) Response {
	if req.Body == "" || len(req.Headers) == 0 {
		return failure(ErrMissingBodyOrHeaders)
	}

	headers := make(map[string]string, len(req.Headers))
	for k, v := range req.Headers {
		// the same header may arrive in several casings; any non-empty value wins
		if k = strings.ToLower(k); v != "" || headers[k] == "" {
			headers[k] = v
		}
	}

	var missing []string
	for _, name := range []string{HeaderDelivery, HeaderEvent, HeaderSignature} {
		if headers[name] == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return failure(fmt.Errorf("%w: %s", ErrMissingHeaders, strings.Join(missing, ", ")))
	}

	d := Delivery{
		ID:        headers[HeaderDelivery],
		Event:     headers[HeaderEvent],
		Signature: headers[HeaderSignature],
		Payload:   []byte(req.Body),
	}
	if err := h.receive(ctx, d); err != nil {
		h.logger.Error("webhook delivery failed", "delivery_id", d.ID, "event", d.Event, "error", err)
		return failure(err)
	}

	return Response{Status: http.StatusOK, Body: `{"ok":true}`}
}

// receive turns a panic in a downstream handler into an error so it still
// produces a response.
func (h *Handler) receive(ctx context.Context, d Delivery) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			err = fmt.Errorf("%v", r)
		}
	}()
	return h.receiver.VerifyAndReceive(ctx, d)
}

func failure(err error) Response {
	body, _ := json.Marshal(map[string]string{"message": err.Error()})
	return Response{Status: http.StatusBadRequest, Body: string(body)}
}
