package avi

import "time"

// Outcome classifies a single attempt.
type Outcome string

const (
	OutcomeOK             Outcome = "ok"
	OutcomeServiceError   Outcome = "service_error"
	OutcomeRetryableError Outcome = "retryable_error"
	OutcomeTransportError Outcome = "transport_error"
	OutcomeCanceled       Outcome = "canceled"
)

// Attempt describes one request sent to one endpoint.
type Attempt struct {
	Transport string
	Role      Role
	Endpoint  string
	Duration  time.Duration
	Outcome   Outcome
	Err       error
}

// Observer receives every attempt a Client makes. Implementations must be safe
// for concurrent use.
type Observer interface {
	ObserveAttempt(a Attempt)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(a Attempt)

func (f ObserverFunc) ObserveAttempt(a Attempt) { f(a) }

// Observers fans out to several observers in order.
type Observers []Observer

func (o Observers) ObserveAttempt(a Attempt) {
	for _, obs := range o {
		if obs != nil {
			obs.ObserveAttempt(a)
		}
	}
}

type nopObserver struct{}

func (nopObserver) ObserveAttempt(Attempt) {}
