package bizerror

import (
	"errors"
	"fmt"
	"net/http"
)

var ErrUnauthenticated = errors.New("unauthenticated")
var ErrForbidden = errors.New("forbidden")
var ErrNotFound = errors.New("not found")
var ErrInvalidPassword = errors.New("invalid password")
var ErrConcurrentModification = errors.New("concurrent modification")

type BizError interface {
	Respond() *BizErrorDetail
}

type BizErrorDetail struct {
	Status  int
	Code    string
	Message string

	Data  interface{}
	Cause error
}

type ErrBadParam struct {
	Cause error
}

func (e *ErrBadParam) Unwrap() error {
	return e.Cause
}
func (e *ErrBadParam) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "common.bad_param"
}
func (e *ErrBadParam) Respond() *BizErrorDetail {
	message := "common.bad_param"
	if e.Cause != nil {
		message = e.Cause.Error()
	}
	return &BizErrorDetail{Status: http.StatusBadRequest, Code: "common.bad_param", Message: message, Data: nil}
}

// ErrIllegalTransition names the current state pair and the operation which is not
// acceptable from it.
type ErrIllegalTransition struct {
	Operation      string `json:"operation"`
	ApprovalState  string `json:"approvalState"`
	ExecutionState string `json:"executionState"`
}

func (e *ErrIllegalTransition) Error() string {
	return fmt.Sprintf("operation %s is not acceptable in state (%s, %s)",
		e.Operation, e.ApprovalState, e.ExecutionState)
}
func (e *ErrIllegalTransition) Respond() *BizErrorDetail {
	return &BizErrorDetail{Status: http.StatusConflict, Code: "catalog.illegal_transition", Message: e.Error(), Data: e}
}

type ErrAuthorizationExceeded struct {
	Ceiling  float64 `json:"ceiling"`
	Required float64 `json:"required"`
}

func (e *ErrAuthorizationExceeded) Error() string {
	return fmt.Sprintf("approval ceiling %.2f is below required value %.2f", e.Ceiling, e.Required)
}
func (e *ErrAuthorizationExceeded) Respond() *BizErrorDetail {
	return &BizErrorDetail{Status: http.StatusForbidden, Code: "catalog.authorization_exceeded", Message: e.Error(), Data: e}
}
