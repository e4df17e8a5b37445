package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/popularity/internal/core/domain"
)

// getJSON issues an authenticated GET and decodes a 200 response into out.
// 429 and 5xx/transport failures are retried against the same URL. Each
// class has its own budget and its own backoff, and both start fresh on
// every call.
func (c *Client) getJSON(ctx context.Context, session domain.Session, rawURL string, out any) error {
	rateBackoff := c.policy.InitialBackoff
	serverBackoff := c.policy.InitialBackoff
	rateLimited, serverFailures := 0, 0

	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("spotify adapter: request canceled: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return fmt.Errorf("spotify adapter: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+session.AccessToken)
		req.Header.Set("Accept", "application/json")

		// #nosec G107 -- URL constructed from the configured API base URL
		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("spotify adapter: request canceled: %w", ctx.Err())
			}
			if serverFailures >= c.policy.MaxServerRetries {
				return fmt.Errorf("spotify adapter: %w", &domain.UpstreamServerError{Attempts: serverFailures + 1, Err: err})
			}
			serverFailures++
			c.logger.Warn("spotify adapter: retrying after transport error",
				zap.Int("attempt", serverFailures), zap.Int("max", c.policy.MaxServerRetries),
				zap.Duration("backoff", serverBackoff), zap.Error(err))
			if err := c.sleep(ctx, serverBackoff); err != nil {
				return err
			}
			serverBackoff = nextBackoff(serverBackoff, c.policy.MaxServerBackoff)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			if err != nil {
				return fmt.Errorf("spotify adapter: decode response: %w", err)
			}
			return nil

		case resp.StatusCode == http.StatusTooManyRequests:
			retryAfter := parseRetryAfter(resp)
			drain(resp)
			if rateLimited >= c.policy.MaxRateLimitRetries {
				return fmt.Errorf("spotify adapter: %w", &domain.RateLimitedError{Attempts: rateLimited + 1, RetryAfter: retryAfter})
			}
			rateLimited++
			delay := rateBackoff
			if retryAfter > 0 {
				delay = retryAfter
			}
			c.logger.Warn("spotify adapter: rate limited",
				zap.Int("attempt", rateLimited), zap.Int("max", c.policy.MaxRateLimitRetries),
				zap.Duration("delay", delay))
			if err := c.sleep(ctx, delay); err != nil {
				return err
			}
			rateBackoff = nextBackoff(rateBackoff, c.policy.MaxRateLimitBackoff)

		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			drain(resp)
			return fmt.Errorf("spotify adapter: %w", &domain.AuthorizationRequiredError{
				AuthorizeURL: c.authorizeURL(),
				Status:       resp.StatusCode,
			})

		case resp.StatusCode >= http.StatusInternalServerError:
			drain(resp)
			if serverFailures >= c.policy.MaxServerRetries {
				return fmt.Errorf("spotify adapter: %w", &domain.UpstreamServerError{Status: resp.StatusCode, Attempts: serverFailures + 1})
			}
			serverFailures++
			c.logger.Warn("spotify adapter: retrying after server error",
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", serverFailures), zap.Int("max", c.policy.MaxServerRetries),
				zap.Duration("backoff", serverBackoff))
			if err := c.sleep(ctx, serverBackoff); err != nil {
				return err
			}
			serverBackoff = nextBackoff(serverBackoff, c.policy.MaxServerBackoff)

		default:
			drain(resp)
			return fmt.Errorf("spotify adapter: %w", &domain.UpstreamStatusError{Status: resp.StatusCode})
		}
	}
}

func nextBackoff(current, ceiling time.Duration) time.Duration {
	next := current * 2
	if ceiling > 0 && next > ceiling {
		return ceiling
	}
	return next
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}

func parseRetryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}

	retryAfter := resp.Header.Get("Retry-After")
	if retryAfter == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	if when, err := http.ParseTime(retryAfter); err == nil {
		until := time.Until(when)
		if until > 0 {
			return until
		}
	}

	return 0
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("spotify adapter: request canceled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
