package lambdahost

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"

	"github.com/mr1hm/go-security-alert-watcher/internal/webhook"
)

type mockReceiver struct {
	payload string
	err     error
}

func (m *mockReceiver) VerifyAndReceive(ctx context.Context, d webhook.Delivery) error {
	m.payload = string(d.Payload)
	return m.err
}

var headers = map[string]string{
	"x-github-event":      "dependabot_alert",
	"x-github-delivery":   "1",
	"x-hub-signature-256": "sha256=abc",
}

func TestHandle_PlainBody(t *testing.T) {
	recv := &mockReceiver{}
	a := NewAdapter(webhook.NewHandler(recv, nil, nil))

	resp, err := a.Handle(context.Background(), events.APIGatewayV2HTTPRequest{Body: `{"action":"dismissed"}`, Headers: headers})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK || resp.Body != `{"ok":true}` {
		t.Errorf("unexpected response %+v", resp)
	}
	if resp.Headers["Content-Type"] != "application/json" {
		t.Errorf("unexpected headers %v", resp.Headers)
	}
	if recv.payload != `{"action":"dismissed"}` {
		t.Errorf("unexpected payload %q", recv.payload)
	}
}

func TestHandle_Base64Body(t *testing.T) {
	recv := &mockReceiver{}
	a := NewAdapter(webhook.NewHandler(recv, nil, nil))

	req := events.APIGatewayV2HTTPRequest{
		Body:            base64.StdEncoding.EncodeToString([]byte(`{"action":"dismissed"}`)),
		IsBase64Encoded: true,
		Headers:         headers,
	}
	resp, _ := a.Handle(context.Background(), req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected response %+v", resp)
	}
	if recv.payload != `{"action":"dismissed"}` {
		t.Errorf("expected decoded payload, got %q", recv.payload)
	}
}

func TestHandle_InvalidBase64(t *testing.T) {
	recv := &mockReceiver{}
	a := NewAdapter(webhook.NewHandler(recv, nil, nil))

	resp, err := a.Handle(context.Background(), events.APIGatewayV2HTTPRequest{Body: "%%%", IsBase64Encoded: true, Headers: headers})
	if err != nil {
		t.Fatalf("adapter must not return errors, got %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", resp.StatusCode)
	}
	if recv.payload != "" {
		t.Error("receiver must not be called")
	}
}

func TestHandle_FailureIsResponseNotError(t *testing.T) {
	a := NewAdapter(webhook.NewHandler(&mockReceiver{err: errors.New("boom")}, nil, nil))

	resp, err := a.Handle(context.Background(), events.APIGatewayV2HTTPRequest{Body: "{}", Headers: headers})
	if err != nil {
		t.Fatalf("adapter must not return errors, got %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest || resp.Body != `{"message":"boom"}` {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestHandle_NoHeaders(t *testing.T) {
	a := NewAdapter(webhook.NewHandler(&mockReceiver{}, nil, nil))

	resp, _ := a.Handle(context.Background(), events.APIGatewayV2HTTPRequest{Body: "{}"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", resp.StatusCode)
	}
}
