// Package lambdahost runs the webhook ingress behind AWS API Gateway (HTTP API,
// payload format 2.0).
package lambdahost

import (
	"context"
	"encoding/base64"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/mr1hm/go-security-alert-watcher/internal/webhook"
)

type Adapter struct {
	ingress *webhook.Handler
}

func NewAdapter(ingress *webhook.Handler) *Adapter {
	return &Adapter{ingress: ingress}
}

// Handle never returns an error: every failure is already a 400 response.
func (a *Adapter) Handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	body := req.Body
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return response(http.StatusBadRequest, `{"message":"invalid base64 body"}`), nil
		}
		body = string(decoded)
	}

	resp := a.ingress.Process(ctx, webhook.Request{
		Body:    body,
		Headers: req.Headers,
	})
	return response(resp.Status, resp.Body), nil
}

func response(status int, body string) events.APIGatewayV2HTTPResponse {
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       body,
	}
}
