package catalog

import (
	"errors"
	"portfolio/account"
	"portfolio/authority"
	"portfolio/bizerror"
	"portfolio/domain"
	"portfolio/event"
	"portfolio/persistence"
	"portfolio/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	SubmitForApprovalFunc     = SubmitForApproval
	BulkSubmitForApprovalFunc = BulkSubmitForApproval
	ApproveFunc               = Approve
	RejectFunc                = Reject
	StartExecutionFunc        = StartExecution
	SuspendFunc               = Suspend
	ResumeFunc                = Resume
	CompleteFunc              = Complete
	DeleteEntryFunc           = DeleteEntry
	RequestEditFunc           = RequestEdit
	ReturnToDraftFunc         = ReturnToDraft
	RecordDisbursementFunc    = RecordDisbursement
)

const (
	axisApproval    = "ApprovalState"
	axisExecution   = "ExecutionState"
	axisEditRequest = "EditRequestState"
)

// prepareTransition validates the precondition against the freshly read entry and
// returns the column changes plus the axis change to record in the activity log.
type prepareTransition func(entry *domain.CatalogEntry, now types.Timestamp) (map[string]interface{}, *event.UpdatedProperty, error)

// transitEntry runs one read-validate-write cycle per attempt: the write is
// conditioned on the state pair observed by the read, and a lost race re-runs the
// whole cycle. Either the full transition commits together with its activity log
// record, or nothing changes.
func transitEntry(id types.ID, s *session.Session, prepare prepareTransition) error {
	return withConflictRetry(func() error {
		var ev *event.EventRecord
		err := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
			entry, err := findEntry(tx, id)
			if err != nil {
				return err
			}

			now := types.CurrentTimestamp()
			changes, axisChange, err := prepare(entry, now)
			if err != nil {
				return err
			}
			changes["update_time"] = now
			changes["updater_id"] = s.Identity.ID

			db := casUpdate(tx, entry, changes)
			if err := db.Error; err != nil {
				return err
			}
			if db.RowsAffected != 1 {
				return bizerror.ErrConcurrentModification
			}

			if axisChange != nil {
				ev, err = CreateEntryTransitedEvent(entry, axisChange.PropertyName,
					axisChange.OldValue, axisChange.NewValue, &s.Identity, now, tx)
			} else {
				ev, err = CreateEntryPropertyUpdatedEvent(entry, nil, &s.Identity, now, tx)
			}
			return err
		})
		if err != nil {
			return err
		}
		if event.InvokeHandlersFunc != nil {
			event.InvokeHandlersFunc(ev)
		}
		return nil
	})
}

func approvalAxisChange(from, to domain.ApprovalState) *event.UpdatedProperty {
	return &event.UpdatedProperty{PropertyName: axisApproval, PropertyDesc: axisApproval,
		OldValue: string(from), OldValueDesc: string(from), NewValue: string(to), NewValueDesc: string(to)}
}

func executionAxisChange(from, to domain.ExecutionState) *event.UpdatedProperty {
	return &event.UpdatedProperty{PropertyName: axisExecution, PropertyDesc: axisExecution,
		OldValue: string(from), OldValueDesc: string(from), NewValue: string(to), NewValueDesc: string(to)}
}

func SubmitForApproval(id types.ID, s *session.Session) error {
	if !s.Perms.HasRole(account.CatalogManagePermission.ID) {
		return bizerror.ErrForbidden
	}
	return transitEntry(id, s, func(entry *domain.CatalogEntry, now types.Timestamp) (map[string]interface{}, *event.UpdatedProperty, error) {
		if err := checkApprovalTransition(entry, "submit", domain.ApprovalPending); err != nil {
			return nil, nil, err
		}
		changes := map[string]interface{}{
			"approval_state": domain.ApprovalPending,
			"submit_time":    now, "submitter_id": s.Identity.ID,
		}
		return changes, approvalAxisChange(entry.ApprovalState, domain.ApprovalPending), nil
	})
}

type BulkSubmitResult struct {
	ID      types.ID `json:"id"`
	Success bool     `json:"success"`
	Error   string   `json:"error,omitempty"`
}

// BulkSubmitForApproval evaluates every entry independently. One entry's failure
// never blocks or rolls back another's success; the outcome is reported per id.
func BulkSubmitForApproval(ids []types.ID, s *session.Session) []BulkSubmitResult {
	results := make([]BulkSubmitResult, 0, len(ids))
	for _, id := range ids {
		if err := SubmitForApprovalFunc(id, s); err != nil {
			results = append(results, BulkSubmitResult{ID: id, Success: false, Error: err.Error()})
		} else {
			results = append(results, BulkSubmitResult{ID: id, Success: true})
		}
	}
	return results
}

func Approve(id types.ID, note string, s *session.Session) error {
	ceiling, unlimited, found := authority.CeilingOf(s.Perms)
	if !found {
		return bizerror.ErrForbidden
	}
	return transitEntry(id, s, func(entry *domain.CatalogEntry, now types.Timestamp) (map[string]interface{}, *event.UpdatedProperty, error) {
		if err := checkApprovalTransition(entry, "approve", domain.ApprovalApproved); err != nil {
			return nil, nil, err
		}
		if !unlimited && entry.PlannedValue > ceiling {
			return nil, nil, &bizerror.ErrAuthorizationExceeded{Ceiling: ceiling, Required: entry.PlannedValue}
		}
		changes := map[string]interface{}{
			"approval_state": domain.ApprovalApproved,
			"approved_value": entry.PlannedValue,
			"approve_time":   now, "approver_id": s.Identity.ID, "approval_note": note,
		}
		return changes, approvalAxisChange(entry.ApprovalState, domain.ApprovalApproved), nil
	})
}

func Reject(id types.ID, reason string, s *session.Session) error {
	if _, _, found := authority.CeilingOf(s.Perms); !found {
		return bizerror.ErrForbidden
	}
	if reason == "" {
		return &bizerror.ErrBadParam{Cause: errors.New("reject reason is required")}
	}
	return transitEntry(id, s, func(entry *domain.CatalogEntry, now types.Timestamp) (map[string]interface{}, *event.UpdatedProperty, error) {
		if err := checkApprovalTransition(entry, "reject", domain.ApprovalRejected); err != nil {
			return nil, nil, err
		}
		changes := map[string]interface{}{
			"approval_state": domain.ApprovalRejected,
			"reject_time":    now, "rejecter_id": s.Identity.ID, "reject_reason": reason,
		}
		return changes, approvalAxisChange(entry.ApprovalState, domain.ApprovalRejected), nil
	})
}

func StartExecution(id types.ID, s *session.Session) error {
	if !s.Perms.HasRole(account.CatalogManagePermission.ID) {
		return bizerror.ErrForbidden
	}
	return transitEntry(id, s, func(entry *domain.CatalogEntry, now types.Timestamp) (map[string]interface{}, *event.UpdatedProperty, error) {
		if err := checkExecutionTransition(entry, "start", domain.ExecutionInProgress); err != nil {
			return nil, nil, err
		}
		changes := map[string]interface{}{"execution_state": domain.ExecutionInProgress}
		return changes, executionAxisChange(entry.ExecutionState, domain.ExecutionInProgress), nil
	})
}

func Suspend(id types.ID, reason string, s *session.Session) error {
	if !s.Perms.HasRole(account.CatalogManagePermission.ID) {
		return bizerror.ErrForbidden
	}
	if reason == "" {
		return &bizerror.ErrBadParam{Cause: errors.New("suspend reason is required")}
	}
	return transitEntry(id, s, func(entry *domain.CatalogEntry, now types.Timestamp) (map[string]interface{}, *event.UpdatedProperty, error) {
		if err := checkExecutionTransition(entry, "suspend", domain.ExecutionSuspended); err != nil {
			return nil, nil, err
		}
		changes := map[string]interface{}{
			"execution_state": domain.ExecutionSuspended,
			"suspend_time":    now, "suspend_reason": reason,
		}
		return changes, executionAxisChange(entry.ExecutionState, domain.ExecutionSuspended), nil
	})
}

func Resume(id types.ID, s *session.Session) error {
	if !s.Perms.HasRole(account.CatalogManagePermission.ID) {
		return bizerror.ErrForbidden
	}
	return transitEntry(id, s, func(entry *domain.CatalogEntry, now types.Timestamp) (map[string]interface{}, *event.UpdatedProperty, error) {
		if err := checkExecutionTransition(entry, "resume", domain.ExecutionInProgress); err != nil {
			return nil, nil, err
		}
		changes := map[string]interface{}{"execution_state": domain.ExecutionInProgress, "suspend_reason": ""}
		return changes, executionAxisChange(entry.ExecutionState, domain.ExecutionInProgress), nil
	})
}

func Complete(id types.ID, s *session.Session) error {
	if !s.Perms.HasRole(account.CatalogManagePermission.ID) {
		return bizerror.ErrForbidden
	}
	return transitEntry(id, s, func(entry *domain.CatalogEntry, now types.Timestamp) (map[string]interface{}, *event.UpdatedProperty, error) {
		if err := checkExecutionTransition(entry, "complete", domain.ExecutionCompleted); err != nil {
			return nil, nil, err
		}
		changes := map[string]interface{}{"execution_state": domain.ExecutionCompleted}
		return changes, executionAxisChange(entry.ExecutionState, domain.ExecutionCompleted), nil
	})
}

// DeleteEntry soft-deletes. History stays queryable; an approved entry can not be
// deleted at all.
func DeleteEntry(id types.ID, reason string, s *session.Session) error {
	if !s.Perms.HasRole(account.CatalogManagePermission.ID) {
		return bizerror.ErrForbidden
	}
	if reason == "" {
		return &bizerror.ErrBadParam{Cause: errors.New("delete reason is required")}
	}
	return withConflictRetry(func() error {
		var ev *event.EventRecord
		err := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
			entry, err := findEntry(tx, id)
			if err != nil {
				return err
			}
			if err := checkApprovalTransition(entry, "delete", domain.ApprovalDeleted); err != nil {
				return err
			}

			now := types.CurrentTimestamp()
			changes := map[string]interface{}{
				"approval_state": domain.ApprovalDeleted, "is_deleted": true,
				"delete_time": now, "delete_reason": reason,
				"update_time": now, "updater_id": s.Identity.ID,
			}
			db := casUpdate(tx, entry, changes)
			if err := db.Error; err != nil {
				return err
			}
			if db.RowsAffected != 1 {
				return bizerror.ErrConcurrentModification
			}

			ev, err = CreateEntryDeletedEvent(entry, &s.Identity, now, tx)
			return err
		})
		if err != nil {
			return err
		}
		if event.InvokeHandlersFunc != nil {
			event.InvokeHandlersFunc(ev)
		}
		return nil
	})
}

func RequestEdit(id types.ID, s *session.Session) error {
	if !s.Perms.HasRole(account.CatalogManagePermission.ID) {
		return bizerror.ErrForbidden
	}
	return transitEntry(id, s, func(entry *domain.CatalogEntry, now types.Timestamp) (map[string]interface{}, *event.UpdatedProperty, error) {
		if entry.ApprovalState != domain.ApprovalApproved {
			return nil, nil, &bizerror.ErrIllegalTransition{Operation: "requestEdit",
				ApprovalState: string(entry.ApprovalState), ExecutionState: string(entry.ExecutionState)}
		}
		changes := map[string]interface{}{"edit_request_state": domain.EditRequestRequested}
		axisChange := &event.UpdatedProperty{PropertyName: axisEditRequest, PropertyDesc: axisEditRequest,
			OldValue: string(entry.EditRequestState), OldValueDesc: string(entry.EditRequestState),
			NewValue: string(domain.EditRequestRequested), NewValueDesc: string(domain.EditRequestRequested)}
		return changes, axisChange, nil
	})
}

// ReturnToDraft completes the edit-request loop: an approved entry whose edit was
// requested re-enters INITIALIZED, the flag and the approved value are cleared.
// Only legal before execution has begun.
func ReturnToDraft(id types.ID, s *session.Session) error {
	if !s.Perms.HasRole(account.CatalogManagePermission.ID) {
		return bizerror.ErrForbidden
	}
	return transitEntry(id, s, func(entry *domain.CatalogEntry, now types.Timestamp) (map[string]interface{}, *event.UpdatedProperty, error) {
		illegal := &bizerror.ErrIllegalTransition{Operation: "returnToDraft",
			ApprovalState: string(entry.ApprovalState), ExecutionState: string(entry.ExecutionState)}
		if entry.EditRequestState != domain.EditRequestRequested || entry.ExecutionState != domain.ExecutionNotStarted {
			return nil, nil, illegal
		}
		if err := checkApprovalTransition(entry, "returnToDraft", domain.ApprovalInitialized); err != nil {
			return nil, nil, err
		}
		changes := map[string]interface{}{
			"approval_state":     domain.ApprovalInitialized,
			"edit_request_state": domain.EditRequestNone,
			"approved_value":     float64(0),
		}
		return changes, approvalAxisChange(entry.ApprovalState, domain.ApprovalInitialized), nil
	})
}

// RecordDisbursement accumulates onto the cumulative monetary fields. The
// increments are applied as SQL expressions, so concurrent recordings never lose
// an addition.
func RecordDisbursement(id types.ID, r *domain.FinanceRecording, s *session.Session) error {
	if !s.Perms.HasRole(account.CatalogManagePermission.ID) {
		return bizerror.ErrForbidden
	}
	if r.Implementation < 0 || r.Acceptance < 0 || r.Disbursement < 0 || r.Payment < 0 {
		return &bizerror.ErrBadParam{Cause: errors.New("recorded amounts must not be negative")}
	}
	return transitEntry(id, s, func(entry *domain.CatalogEntry, now types.Timestamp) (map[string]interface{}, *event.UpdatedProperty, error) {
		if !entry.IsOfficial() {
			return nil, nil, &bizerror.ErrIllegalTransition{Operation: "recordDisbursement",
				ApprovalState: string(entry.ApprovalState), ExecutionState: string(entry.ExecutionState)}
		}
		changes := map[string]interface{}{
			"cumulative_implementation": gorm.Expr("cumulative_implementation + ?", r.Implementation),
			"cumulative_acceptance":     gorm.Expr("cumulative_acceptance + ?", r.Acceptance),
			"cumulative_disbursement":   gorm.Expr("cumulative_disbursement + ?", r.Disbursement),
			"cumulative_payment":        gorm.Expr("cumulative_payment + ?", r.Payment),
		}
		return changes, nil, nil
	})
}
