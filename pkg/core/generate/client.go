// Package generate implements the generation client: it obtains a completion
// from a text-generation provider despite per-credential rate limits, using an
// ordered pool of interchangeable API keys.
//
// The retry policy is two-level and the distinction is load-bearing:
//
//   - A rate-limit signal retries the SAME credential with exponential
//     backoff, up to a fixed attempt budget, before advancing.
//   - Any other failure advances to the next credential immediately (no
//     retry) after a short fixed pause, so a pool of revoked keys does not
//     hammer the provider.
//   - A structurally valid response with no text advances with no retry and
//     no pause.
package generate

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

const (
	// defaultMaxAttempts bounds rate-limit retries per credential.
	defaultMaxAttempts = 3

	// defaultAdvancePause is the pause before moving to the next credential
	// after a non-rate-limit failure.
	defaultAdvancePause = 1 * time.Second
)

// ErrNoCredentials is returned when the pool is empty.
var ErrNoCredentials = errors.New("generate: no credentials configured")

// ErrExhausted is returned when every credential in the pool failed to
// produce extractable text.
var ErrExhausted = errors.New("generate: all credentials exhausted")

// TextGenerator is a single-key, single-shot call to a generation provider.
// Implementations return ("", nil) for a structurally valid response that
// carries no text.
type TextGenerator interface {
	GenerateText(ctx context.Context, apiKey, prompt string) (string, error)
}

// rateLimited is implemented by provider errors that signal a rate limit.
type rateLimited interface {
	IsRateLimit() bool
}

// Client drives a TextGenerator across an ordered credential pool.
type Client struct {
	gen          TextGenerator
	keys         []string
	maxAttempts  int
	advancePause time.Duration
	sleep        func(time.Duration)
	logger       *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithSleep replaces the backoff sleep function. Tests inject a recorder.
func WithSleep(fn func(time.Duration)) Option {
	return func(c *Client) {
		if fn != nil {
			c.sleep = fn
		}
	}
}

// WithLogger sets the logger used for failover events.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMaxAttempts overrides the per-credential rate-limit attempt budget.
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// New creates a Client over the given ordered credential pool. Pool order is
// significant: the first-listed credential is always preferred.
func New(gen TextGenerator, keys []string, opts ...Option) *Client {
	c := &Client{
		gen:          gen,
		keys:         keys,
		maxAttempts:  defaultMaxAttempts,
		advancePause: defaultAdvancePause,
		sleep:        time.Sleep,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate returns the first extractable completion for prompt, rotating
// through the credential pool per the failover policy. It returns
// ErrExhausted when every credential fails; it never panics on provider
// failure.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if len(c.keys) == 0 {
		return "", ErrNoCredentials
	}

	for i, key := range c.keys {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		text, err := c.tryCredential(ctx, key, prompt)
		if err == nil {
			if text != "" {
				return text, nil
			}
			// Soft failure: valid response, no text. Advance without pause.
			c.logger.Warn("generation returned no text, advancing credential", "credential", i)
			continue
		}

		if isRateLimit(err) {
			// Retry budget for this credential is spent. Advance without pause.
			c.logger.Warn("credential rate-limit budget exhausted", "credential", i)
			continue
		}

		c.logger.Warn("generation failed, advancing credential", "credential", i, "error", err)
		c.sleep(c.advancePause)
	}

	return "", ErrExhausted
}

// tryCredential attempts a single credential, retrying only on rate-limit
// signals with 2^attempt-second backoff.
func (c *Client) tryCredential(ctx context.Context, key, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		text, err := c.gen.GenerateText(ctx, key, prompt)
		if err == nil {
			return text, nil
		}
		if !isRateLimit(err) {
			return "", err
		}

		lastErr = err
		c.sleep(time.Duration(1<<attempt) * time.Second)
	}
	return "", lastErr
}

func isRateLimit(err error) bool {
	var rl rateLimited
	return errors.As(err, &rl) && rl.IsRateLimit()
}
