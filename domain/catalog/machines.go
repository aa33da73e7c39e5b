package catalog

import (
	"portfolio/bizerror"
	"portfolio/domain"
	"portfolio/domain/state"
)

// the two axes are orthogonal: approval governs whether the entry is a binding
// record, execution governs how far the approved work has progressed
var ApprovalMachine = state.NewStateMachine(
	[]state.State{
		{Name: string(domain.ApprovalInitialized)},
		{Name: string(domain.ApprovalPending)},
		{Name: string(domain.ApprovalApproved)},
		{Name: string(domain.ApprovalRejected)},
		{Name: string(domain.ApprovalDeleted)},
	},
	[]state.Transition{
		{Name: "submit", From: state.State{Name: string(domain.ApprovalInitialized)}, To: state.State{Name: string(domain.ApprovalPending)}},
		{Name: "approve", From: state.State{Name: string(domain.ApprovalPending)}, To: state.State{Name: string(domain.ApprovalApproved)}},
		{Name: "reject", From: state.State{Name: string(domain.ApprovalPending)}, To: state.State{Name: string(domain.ApprovalRejected)}},
		{Name: "resubmit", From: state.State{Name: string(domain.ApprovalRejected)}, To: state.State{Name: string(domain.ApprovalPending)}},
		{Name: "reopen", From: state.State{Name: string(domain.ApprovalRejected)}, To: state.State{Name: string(domain.ApprovalInitialized)}},
		{Name: "returnToDraft", From: state.State{Name: string(domain.ApprovalApproved)}, To: state.State{Name: string(domain.ApprovalInitialized)}},
		{Name: "delete", From: state.State{Name: string(domain.ApprovalInitialized)}, To: state.State{Name: string(domain.ApprovalDeleted)}},
		{Name: "delete", From: state.State{Name: string(domain.ApprovalPending)}, To: state.State{Name: string(domain.ApprovalDeleted)}},
		{Name: "delete", From: state.State{Name: string(domain.ApprovalRejected)}, To: state.State{Name: string(domain.ApprovalDeleted)}},
	},
)

var ExecutionMachine = state.NewStateMachine(
	[]state.State{
		{Name: string(domain.ExecutionNotStarted)},
		{Name: string(domain.ExecutionInProgress)},
		{Name: string(domain.ExecutionSuspended)},
		{Name: string(domain.ExecutionCompleted)},
	},
	[]state.Transition{
		{Name: "start", From: state.State{Name: string(domain.ExecutionNotStarted)}, To: state.State{Name: string(domain.ExecutionInProgress)}},
		{Name: "suspend", From: state.State{Name: string(domain.ExecutionNotStarted)}, To: state.State{Name: string(domain.ExecutionSuspended)}},
		{Name: "suspend", From: state.State{Name: string(domain.ExecutionInProgress)}, To: state.State{Name: string(domain.ExecutionSuspended)}},
		{Name: "resume", From: state.State{Name: string(domain.ExecutionSuspended)}, To: state.State{Name: string(domain.ExecutionInProgress)}},
		{Name: "complete", From: state.State{Name: string(domain.ExecutionInProgress)}, To: state.State{Name: string(domain.ExecutionCompleted)}},
	},
)

func checkApprovalTransition(entry *domain.CatalogEntry, operation string, to domain.ApprovalState) error {
	transitions := ApprovalMachine.AvailableTransitions(string(entry.ApprovalState), string(to))
	for _, t := range transitions {
		if t.Name == operation || (operation == "submit" && t.Name == "resubmit") {
			return nil
		}
	}
	return &bizerror.ErrIllegalTransition{Operation: operation,
		ApprovalState: string(entry.ApprovalState), ExecutionState: string(entry.ExecutionState)}
}

// execution axis transitions are only legal while the entry is approved
func checkExecutionTransition(entry *domain.CatalogEntry, operation string, to domain.ExecutionState) error {
	illegal := &bizerror.ErrIllegalTransition{Operation: operation,
		ApprovalState: string(entry.ApprovalState), ExecutionState: string(entry.ExecutionState)}
	if entry.ApprovalState != domain.ApprovalApproved {
		return illegal
	}
	for _, t := range ExecutionMachine.AvailableTransitions(string(entry.ExecutionState), string(to)) {
		if t.Name == operation {
			return nil
		}
	}
	return illegal
}
