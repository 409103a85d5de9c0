// Package n8n talks to the external n8n workflow webhook that performs the
// actual ticker analysis. The webhook is an opaque collaborator: its only
// contract is returning some JSON-ish text for a posted ticker.
package n8n

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	drepo "FishMoney/internal/domain/repository"
	xhttp "FishMoney/pkg/http"
	xlogger "FishMoney/pkg/logger"
)

const defaultTimeout = 20 * time.Second

// Client implements AnalysisSource against an n8n webhook URL.
type Client struct {
	webhookURL string
	timeout    time.Duration
	http       *xhttp.Client
	logger     *xlogger.Logger
	metrics    drepo.Metrics
}

// New creates a webhook client. timeout bounds each candidate URL attempt;
// zero selects the default of 20s.
func New(webhookURL string, timeout time.Duration, logger *xlogger.Logger, metrics drepo.Metrics) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		webhookURL: webhookURL,
		timeout:    timeout,
		http:       xhttp.NewClient(xhttp.WithTimeout(timeout)),
		logger:     logger,
		metrics:    metrics,
	}
}

// CandidateURLs returns the configured URL plus the alternate test/production
// path variant n8n uses, deduplicated and in attempt order.
func (c *Client) CandidateURLs() []string {
	urls := []string{c.webhookURL}
	switch {
	case strings.Contains(c.webhookURL, "/webhook-test/"):
		urls = append(urls, strings.Replace(c.webhookURL, "/webhook-test/", "/webhook/", 1))
	case strings.Contains(c.webhookURL, "/webhook/"):
		urls = append(urls, strings.Replace(c.webhookURL, "/webhook/", "/webhook-test/", 1))
	}
	seen := make(map[string]struct{}, len(urls))
	out := urls[:0]
	for _, u := range urls {
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

// FetchAnalysisPayload posts the ticker to each candidate URL in order and
// returns the first non-empty response body. When every candidate fails the
// returned error aggregates each URL with its failure reason.
func (c *Client) FetchAnalysisPayload(ctx context.Context, ticker string) (string, error) {
	var failures []string
	for _, u := range c.CandidateURLs() {
		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		body, err := c.post(attemptCtx, u, ticker)
		cancel()
		if err != nil {
			c.recordAttempt("error")
			if c.logger != nil {
				c.logger.Warn("webhook attempt failed",
					xlogger.String("url", u),
					xlogger.String("ticker", ticker),
					xlogger.Error(err),
				)
			}
			failures = append(failures, fmt.Sprintf("%s: %v", u, err))
			continue
		}
		c.recordAttempt("ok")
		return body, nil
	}
	return "", fmt.Errorf("all webhook attempts failed: %s", strings.Join(failures, "; "))
}

func (c *Client) post(ctx context.Context, url, ticker string) (string, error) {
	resp, err := c.http.SendRequest(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    url,
		Headers: map[string]string{
			"Content-Type": "application/json",
			"Accept":       "application/json, text/plain, */*",
		},
		Body: map[string]string{"ticker": ticker},
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	if strings.TrimSpace(string(b)) == "" {
		return "", fmt.Errorf("empty response body")
	}
	return string(b), nil
}

func (c *Client) recordAttempt(result string) {
	if c.metrics != nil {
		c.metrics.RecordWebhookAttempt(result)
	}
}
