package rest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/rickgao/coinsync/internal/version"
)

// Doer sends an HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Observer receives per-attempt events. Implementations must be safe for
// concurrent use.
type Observer interface {
	ObserveResponse(verb, path string, status int, d time.Duration)
	ObserveBan(path string, seconds int, known bool, baseline time.Duration)
}

type state int

const (
	stateAttempting state = iota
	stateSucceeded
	stateFailed
)

// Executor runs Methods until they succeed or fail terminally. Only a ban
// with a known duration re-enters the attempting state; it is retried without
// a ceiling.
type Executor struct {
	client    Doer
	backoff   *Backoff
	logger    *slog.Logger
	userAgent string
	limiter   *rate.Limiter
	observer  Observer
	sleep     func(ctx context.Context, d time.Duration) error
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ExecutorOption {
	return func(e *Executor) {
		e.logger = logger
	}
}

// WithUserAgent overrides the identifying User-Agent header.
func WithUserAgent(ua string) ExecutorOption {
	return func(e *Executor) {
		e.userAgent = ua
	}
}

// WithLimiter waits on l before every attempt.
func WithLimiter(l *rate.Limiter) ExecutorOption {
	return func(e *Executor) {
		e.limiter = l
	}
}

// WithObserver reports responses and bans to o.
func WithObserver(o Observer) ExecutorOption {
	return func(e *Executor) {
		e.observer = o
	}
}

// WithSleep replaces the ban sleep.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) ExecutorOption {
	return func(e *Executor) {
		e.sleep = fn
	}
}

// NewExecutor creates an executor sending through client and raising backoff
// on bans.
func NewExecutor(client Doer, backoff *Backoff, opts ...ExecutorOption) *Executor {
	e := &Executor{
		client:    client,
		backoff:   backoff,
		logger:    slog.Default(),
		userAgent: version.UserAgent(),
		sleep:     sleepContext,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Backoff returns the shared baseline.
func (e *Executor) Backoff() *Backoff {
	return e.backoff
}

// Execute runs m to a terminal result.
func (e *Executor) Execute(ctx context.Context, m *Method) (Response, error) {
	var (
		resp Response
		err  error
	)

	st := stateAttempting
	for st == stateAttempting {
		resp, err = e.attempt(ctx, m)

		var wait time.Duration
		st, wait = nextState(err)
		if st != stateAttempting {
			break
		}

		var banned *BannedError
		errors.As(err, &banned)
		baseline := e.backoff.Raise()
		if e.observer != nil {
			e.observer.ObserveBan(m.path, banned.Seconds, true, baseline)
		}
		e.logger.Warn("banned, sleeping",
			"path", m.path,
			"sleep", wait,
			"baseline", baseline,
		)
		if serr := e.sleep(ctx, wait); serr != nil {
			return nil, fmt.Errorf("%s %s: %w", m.verb, m.path, serr)
		}
	}

	if st == stateFailed {
		var banned *BannedError
		if errors.As(err, &banned) && !banned.Known && e.observer != nil {
			e.observer.ObserveBan(m.path, 0, false, e.backoff.Current())
		}
		return nil, fmt.Errorf("%s %s: %w", m.verb, m.path, err)
	}
	return resp, nil
}

// nextState maps an attempt result to the next state and the wait before
// re-attempting.
func nextState(err error) (state, time.Duration) {
	if err == nil {
		return stateSucceeded, 0
	}
	var banned *BannedError
	if errors.As(err, &banned) && banned.Known {
		seconds := max(banned.Seconds, 0) + 1
		return stateAttempting, time.Duration(seconds) * time.Second
	}
	return stateFailed, 0
}

// attempt performs one round trip. Errors other than the transform's are
// returned unchanged and are terminal.
func (e *Executor) attempt(ctx context.Context, m *Method) (Response, error) {
	uri, err := Compile(m)
	if err != nil {
		return nil, fmt.Errorf("compile uri: %w", err)
	}

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	var body io.Reader
	if m.verb != http.MethodGet && m.params.Len() > 0 {
		data, err := m.params.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("encode params: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, m.verb, uri, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if m.configure != nil {
		m.configure(req)
	}
	req.Header.Set("User-Agent", e.userAgent)

	start := time.Now()
	res, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if e.observer != nil {
		e.observer.ObserveResponse(m.verb, m.path, res.StatusCode, time.Since(start))
	}

	out, err := m.transform(res.StatusCode, data, res.Header)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			e.logger.Debug("unparseable response body", "path", m.path, "body", string(data))
		}
		return nil, err
	}
	return out, nil
}
