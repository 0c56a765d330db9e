package avi

import (
	"errors"
	"fmt"

	"github.com/akl7777777/avi-intl/internal/model"
)

// ErrEmptyResponse is returned by a transport when the service answered
// without a GetAddressInfo result.
var ErrEmptyResponse = errors.New("service returned an empty response")

// TransportError is a failure to obtain a usable response from one endpoint:
// network errors, non-2xx statuses, SOAP faults, undecodable bodies.
type TransportError struct {
	Role     Role
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s endpoint %s: %v", e.Role, e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServiceError is a service-reported error that ended the call instead of
// being returned inside the response.
type ServiceError struct {
	Role     Role
	Endpoint string
	Err      *model.Error
}

func (e *ServiceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s endpoint %s: AVI service error: empty Error element", e.Role, e.Endpoint)
	}
	return fmt.Sprintf("%s endpoint %s: AVI service error: %s", e.Role, e.Endpoint, e.Err)
}

// FailoverError reports that both the primary and the backup attempt failed.
type FailoverError struct {
	Primary error
	Backup  error
}

func (e *FailoverError) Error() string {
	return fmt.Sprintf("both primary and backup endpoints failed: primary: %v; backup: %v", e.Primary, e.Backup)
}

func (e *FailoverError) Unwrap() []error { return []error{e.Primary, e.Backup} }
