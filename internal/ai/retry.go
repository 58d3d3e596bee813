package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// retryPolicy is shared by every vendor client: 429 and 5xx are retried with
// jittered exponential backoff, Retry-After wins when the provider sends it.
type retryPolicy struct {
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
	sleep       func(context.Context, time.Duration) error
}

func newRetryPolicy(maxAttempts int, baseDelay, maxDelay time.Duration) retryPolicy {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}
	if maxDelay <= 0 {
		maxDelay = 4 * time.Second
	}
	return retryPolicy{maxAttempts: maxAttempts, baseDelay: baseDelay, maxDelay: maxDelay, sleep: sleepCtx}
}

// do executes the request produced by build until it succeeds, fails with a
// non-retryable error, or attempts run out. decode is only called for 2xx.
func (p retryPolicy) do(ctx context.Context, hc *http.Client, build func() (*http.Request, error), decode func(*http.Response) error) error {
	backoff := p.baseDelay
	var lastErr error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		req, err := build()
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		resp, err := hc.Do(req)
		if err != nil {
			if isRetryableNetErr(err) && attempt < p.maxAttempts {
				if err := p.sleep(ctx, withJitter(backoff)); err != nil {
					return err
				}
				backoff *= 2
				continue
			}
			return &UnreachableError{Host: req.URL.Host, Err: err}
		}
		retry, wait, err := func() (bool, time.Duration, error) {
			defer resp.Body.Close()
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				if err := decode(resp); err != nil {
					return false, 0, fmt.Errorf("decode response: %w", err)
				}
				return false, 0, nil
			}
			apiErr := readAPIError(resp)
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				var ra time.Duration
				if v := resp.Header.Get("Retry-After"); v != "" {
					if secs, err := parseRetryAfterSeconds(v); err == nil && secs > 0 {
						ra = time.Duration(secs) * time.Second
					}
				}
				return true, ra, classifyAPIError(apiErr, resp)
			}
			return false, 0, classifyAPIError(apiErr, resp)
		}()
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry || attempt == p.maxAttempts {
			break
		}
		if wait <= 0 {
			wait = withJitter(backoff)
			if wait > p.maxDelay {
				wait = p.maxDelay
			}
			backoff *= 2
		}
		if err := p.sleep(ctx, wait); err != nil {
			return fmt.Errorf("%w (last error: %v)", err, lastErr)
		}
	}
	return lastErr
}

// sleepCtx waits for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// readAPIError decodes the common vendor error envelopes:
// {"error":{"message","code"|"status"}} and {"message","code"}.
func readAPIError(resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
	var raw map[string]any
	_ = json.Unmarshal(body, &raw)
	apiErr := &APIError{StatusCode: resp.StatusCode, Raw: raw, RequestID: extractRequestID(resp)}
	src := raw
	if v, ok := raw["error"].(map[string]any); ok {
		src = v
	}
	if msg, ok := src["message"].(string); ok {
		apiErr.Message = msg
	}
	if code, ok := src["code"].(string); ok {
		apiErr.Code = code
	} else if status, ok := src["status"].(string); ok {
		apiErr.Code = strings.ToLower(status)
	}
	return apiErr
}

func isRetryableNetErr(err error) bool {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return true
	}
	return errors.Is(err, io.EOF)
}

// parseRetryAfterSeconds interprets a Retry-After header value as seconds or HTTP date.
func parseRetryAfterSeconds(v string) (int, error) {
	if s, err := strconv.Atoi(v); err == nil {
		return s, nil
	}
	if t, err := http.ParseTime(v); err == nil {
		d := time.Until(t)
		if d < 0 {
			d = 0
		}
		return int(d.Seconds()), nil
	}
	return 0, fmt.Errorf("invalid Retry-After: %q", v)
}

// extractRequestID pulls a best-effort request ID from common headers.
func extractRequestID(resp *http.Response) string {
	if resp == nil {
		return ""
	}
	for _, k := range []string{"X-Request-Id", "Openai-Request-Id", "X-Goog-Request-Id", "X-Amzn-Requestid"} {
		if v := resp.Header.Get(k); v != "" {
			return v
		}
	}
	return ""
}

// withJitter returns a backoff duration with +/- 20% jitter applied.
func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 500 * time.Millisecond
	}
	f := 0.8 + rand.Float64()*0.4
	out := time.Duration(float64(d) * f)
	if out <= 0 {
		return d
	}
	return out
}
