package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	folioerrors "github.com/conneroisu/folio/internal/errors"
)

// DefaultSendTimeout bounds one outbound call.
const DefaultSendTimeout = 10 * time.Second

// HTTPSender posts the message as JSON to a fixed endpoint. Any 2xx response
// is a success; the response body is not read.
type HTTPSender struct {
	endpoint string
	client   *http.Client
}

// NewHTTPSender creates a sender for endpoint. A nil client gets one with
// DefaultSendTimeout.
func NewHTTPSender(endpoint string, client *http.Client) *HTTPSender {
	if client == nil {
		client = &http.Client{Timeout: DefaultSendTimeout}
	}
	return &HTTPSender{endpoint: endpoint, client: client}
}

// Endpoint returns the URL messages are posted to.
func (s *HTTPSender) Endpoint() string {
	return s.endpoint
}

// Send implements Sender.
func (s *HTTPSender) Send(ctx context.Context, values Values) error {
	body, err := json.Marshal(values)
	if err != nil {
		return folioerrors.NewInternalError(folioerrors.ErrCodeInternalError, "encode contact message", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return folioerrors.WrapNetwork(err, folioerrors.ErrCodeRequestFailed, "build contact request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return folioerrors.WrapNetwork(err, folioerrors.ErrCodeRequestFailed, "post contact message")
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return folioerrors.NewNetworkError(
			folioerrors.ErrCodeBadStatus,
			fmt.Sprintf("endpoint answered %d", resp.StatusCode),
			nil,
		).WithPath(s.endpoint)
	}
	return nil
}
