package stats

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
)

// HTTPSink posts records to the telemetry service, retrying transient
// failures with exponential backoff.
type HTTPSink struct {
	url        string
	client     *http.Client
	maxRetries uint64
}

func NewHTTPSink(baseURL string) *HTTPSink {
	return &HTTPSink{
		url:        baseURL + "/v1/stats",
		client:     &http.Client{Timeout: 5 * time.Second},
		maxRetries: 5,
	}
}

func (h *HTTPSink) Record(ctx context.Context, s Stats) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "encode stats")
	}
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := h.client.Do(req)
		if err != nil {
			return err
		}
		_ = resp.Body.Close()
		switch {
		case resp.StatusCode >= 500:
			return fmt.Errorf("telemetry status %d", resp.StatusCode)
		case resp.StatusCode >= 400:
			return backoff.Permanent(fmt.Errorf("telemetry status %d", resp.StatusCode))
		}
		return nil
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), h.maxRetries), ctx)
	return errors.Wrapf(backoff.Retry(op, policy), "post %s", h.url)
}
