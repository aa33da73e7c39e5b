package domain

import "fmt"

type ApprovalState string

const (
	ApprovalInitialized ApprovalState = "INITIALIZED"
	ApprovalPending     ApprovalState = "PENDING_APPROVAL"
	ApprovalApproved    ApprovalState = "APPROVED"
	ApprovalRejected    ApprovalState = "REJECTED"
	ApprovalDeleted     ApprovalState = "DELETED"
)

type ExecutionState string

const (
	ExecutionNotStarted ExecutionState = "NOT_STARTED"
	ExecutionInProgress ExecutionState = "IN_PROGRESS"
	ExecutionSuspended  ExecutionState = "SUSPENDED"
	ExecutionCompleted  ExecutionState = "COMPLETED"
)

type EditRequestState string

const (
	EditRequestNone      EditRequestState = "NONE"
	EditRequestRequested EditRequestState = "REQUESTED"
)

// free-form status strings are rejected at the boundary
func ParseApprovalState(raw string) (ApprovalState, error) {
	switch s := ApprovalState(raw); s {
	case ApprovalInitialized, ApprovalPending, ApprovalApproved, ApprovalRejected, ApprovalDeleted:
		return s, nil
	}
	return "", fmt.Errorf("unknown approval state %q", raw)
}

func ParseExecutionState(raw string) (ExecutionState, error) {
	switch s := ExecutionState(raw); s {
	case ExecutionNotStarted, ExecutionInProgress, ExecutionSuspended, ExecutionCompleted:
		return s, nil
	}
	return "", fmt.Errorf("unknown execution state %q", raw)
}

func ParseEditRequestState(raw string) (EditRequestState, error) {
	switch s := EditRequestState(raw); s {
	case EditRequestNone, EditRequestRequested:
		return s, nil
	}
	return "", fmt.Errorf("unknown edit request state %q", raw)
}
