package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/BruksfildServices01/barbershop-booking/internal/domain/reminder"
	"github.com/BruksfildServices01/barbershop-booking/internal/logger"
)

// HTTPNotifier posts the message as JSON to a notification gateway that
// answers with a Result body.
type HTTPNotifier struct {
	url        string
	httpClient *http.Client
	log        logger.Logger
}

func NewHTTPNotifier(url string, timeout time.Duration, log logger.Logger) *HTTPNotifier {
	return &HTTPNotifier{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log.WithModule("HTTPNotifier"),
	}
}

func (n *HTTPNotifier) Send(ctx context.Context, msg reminder.Message) reminder.Result {
	body, err := json.Marshal(msg)
	if err != nil {
		return failed(fmt.Errorf("encode message: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return failed(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return failed(fmt.Errorf("send request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return failed(fmt.Errorf("unexpected status %d: %s", resp.StatusCode, raw))
	}

	var res reminder.Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		// A 2xx without a body counts as delivered.
		if errors.Is(err, io.EOF) {
			return reminder.Result{Success: true}
		}
		return failed(fmt.Errorf("decode response: %w", err))
	}

	n.log.Debug("notification.http.sent", logger.Fields{
		"channel": msg.Channel,
		"success": res.Success,
	})
	return res
}

func failed(err error) reminder.Result {
	return reminder.Result{Success: false, Error: err.Error()}
}

var _ reminder.NotificationPort = (*HTTPNotifier)(nil)
