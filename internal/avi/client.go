package avi

import (
	"context"
	"errors"
	"time"

	"github.com/akl7777777/avi-intl/internal/model"
)

// Transport performs one GetAddressInfo exchange against a single host.
// Any returned error is a transport failure; service-reported errors come back
// inside the response.
type Transport interface {
	Name() string
	GetAddressInfo(ctx context.Context, host string, req model.AddressRequest) (*model.AddressInfoResponse, error)
}

// Client issues GetAddressInfo against the primary host and fails over to the
// backup host once. It holds no per-call state and is safe for concurrent use.
type Client struct {
	transport    Transport
	endpoints    Endpoints
	observer     Observer
	strictBackup bool
}

// Option configures a Client.
type Option func(*Client)

// WithObserver reports every attempt to o.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithStrictBackup controls whether a backup response carrying any Error
// element, even null or empty, is treated as a failure. The primary attempt
// only fails over on TypeCode "3".
func WithStrictBackup(strict bool) Option {
	return func(c *Client) { c.strictBackup = strict }
}

// New returns a Client over t. Strict backup checking is on by default.
func New(t Transport, endpoints Endpoints, opts ...Option) *Client {
	c := &Client{
		transport:    t,
		endpoints:    endpoints.withDefaults(),
		observer:     nopObserver{},
		strictBackup: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewRESTClient returns a Client over the JSON API. A backup response with
// any Error fails the call.
func NewRESTClient(endpoints Endpoints, timeout time.Duration, opts ...Option) *Client {
	opts = append([]Option{WithStrictBackup(true)}, opts...)
	return New(NewRESTTransport(timeout), endpoints, opts...)
}

// NewSOAPClient returns a Client over the SOAP API. The backup result is
// returned as-is unless it fails in transport.
func NewSOAPClient(endpoints Endpoints, timeout time.Duration, opts ...Option) *Client {
	opts = append([]Option{WithStrictBackup(false)}, opts...)
	return New(NewSOAPTransport(timeout), endpoints, opts...)
}

// Transport returns the name of the underlying transport.
func (c *Client) Transport() string { return c.transport.Name() }

// Endpoints returns the hosts the client was built with.
func (c *Client) Endpoints() Endpoints { return c.endpoints }

type outcome int

const (
	// done: return the response to the caller.
	done outcome = iota
	// retry: eligible for the backup host.
	retry
	// fail: terminal error, no further attempts.
	fail
)

type result struct {
	kind outcome
	resp *model.AddressInfoResponse
	err  error
}

// GetAddressInfo validates req against the service.
//
// Live requests go to the primary host; a transport failure or an Error with
// TypeCode "3" sends the identical request to the backup host. Trial requests
// make exactly one attempt and any such failure is returned as an error. Errors
// with other type codes are part of the normal response.
func (c *Client) GetAddressInfo(ctx context.Context, req model.AddressRequest) (*model.AddressInfoResponse, error) {
	host, role, canFailover := c.endpoints.route(req.IsLive)

	first := c.attempt(ctx, role, host, req)
	switch {
	case first.kind == done:
		return first.resp, nil
	case first.kind == fail || !canFailover:
		return nil, first.err
	}

	second := c.attempt(ctx, RoleBackup, c.endpoints.Backup, req)
	switch {
	case second.kind == fail, second.resp == nil:
		return nil, &FailoverError{Primary: first.err, Backup: second.err}
	case c.strictBackup && (second.resp.Error != nil || second.resp.ErrorSent):
		backupErr := &ServiceError{Role: RoleBackup, Endpoint: c.endpoints.Backup, Err: second.resp.Error}
		return nil, &FailoverError{Primary: first.err, Backup: backupErr}
	}
	return second.resp, nil
}

func (c *Client) attempt(ctx context.Context, role Role, host string, req model.AddressRequest) result {
	actx := ctx
	if req.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(ctx, time.Duration(req.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.transport.GetAddressInfo(actx, host, req)
	res, out := classify(ctx, role, host, resp, err)

	c.observer.ObserveAttempt(Attempt{
		Transport: c.transport.Name(),
		Role:      role,
		Endpoint:  host,
		Duration:  time.Since(start),
		Outcome:   out,
		Err:       res.err,
	})
	return res
}

func classify(ctx context.Context, role Role, host string, resp *model.AddressInfoResponse, err error) (result, Outcome) {
	switch {
	case ctx.Err() != nil:
		// The caller gave up; the backup would see the same context.
		if err == nil {
			err = ctx.Err()
		}
		return result{kind: fail, err: &TransportError{Role: role, Endpoint: host, Err: err}}, OutcomeCanceled
	case err != nil:
		return result{kind: retry, err: &TransportError{Role: role, Endpoint: host, Err: err}}, OutcomeTransportError
	case resp == nil:
		return result{kind: retry, err: &TransportError{Role: role, Endpoint: host, Err: ErrEmptyResponse}}, OutcomeTransportError
	case resp.Error.Retryable():
		return result{kind: retry, resp: resp, err: &ServiceError{Role: role, Endpoint: host, Err: resp.Error}}, OutcomeRetryableError
	case resp.Error != nil:
		return result{kind: done, resp: resp}, OutcomeServiceError
	}
	return result{kind: done, resp: resp}, OutcomeOK
}

// IsServiceError reports whether err carries a service-reported error and
// returns the first one found.
func IsServiceError(err error) (*model.Error, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Err, true
	}
	return nil, false
}
