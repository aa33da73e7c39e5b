package catalog_test

import (
	"portfolio/account"
	"portfolio/bizerror"
	"portfolio/domain"
	"portfolio/domain/catalog"
	"portfolio/event"
	"portfolio/session"
	"portfolio/testinfra"
	"testing"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
)

func approverL1Session() *session.Session {
	return testinfra.BuildSession(41, account.ApproverLevelOnePerm.ID, account.CatalogViewPermission.ID)
}

func approverL2Session() *session.Session {
	return testinfra.BuildSession(42, account.ApproverLevelTwoPerm.ID, account.CatalogViewPermission.ID)
}

func loadEntry(t *testing.T, db *testinfra.TestDatabase, id types.ID) *domain.CatalogEntry {
	entry := domain.CatalogEntry{}
	Expect(db.DS.GormDB(nil).Where(&domain.CatalogEntry{ID: id}).First(&entry).Error).To(BeNil())
	return &entry
}

func approvedEntry(t *testing.T, db *testinfra.TestDatabase, name string, plannedValue float64,
	s *session.Session) *domain.EntryCreated {
	created := buildEntry(name, plannedValue, s)
	Expect(catalog.SubmitForApproval(created.ID, s)).To(BeNil())
	Expect(catalog.Approve(created.ID, "", approverL2Session())).To(BeNil())
	return created
}

func TestSubmitForApproval(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("catalog manage permission is required", func(t *testing.T) {
		Expect(catalog.SubmitForApproval(123, viewerSession())).To(Equal(bizerror.ErrForbidden))
	})

	t.Run("should transit initialized entry to pending approval", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		s := managerSession()
		created := buildEntry("submit me", 1000, s)
		Expect(catalog.SubmitForApproval(created.ID, s)).To(BeNil())

		entry := loadEntry(t, testDatabase, created.ID)
		Expect(entry.ApprovalState).To(Equal(domain.ApprovalPending))
		Expect(entry.SubmitterID).To(Equal(types.ID(10)))
		Expect(entry.SubmitTime.IsZero()).To(BeFalse())

		records := []event.EventRecord{}
		Expect(testDatabase.DS.GormDB(nil).Where("source_id = ? AND event_category = ?",
			created.ID, event.EventCategoryStateTransited).Find(&records).Error).To(BeNil())
		Expect(len(records)).To(Equal(1))

		// a pending entry can not be submitted again
		err := catalog.SubmitForApproval(created.ID, s)
		Expect(err).To(BeAssignableToTypeOf(&bizerror.ErrIllegalTransition{}))
	})

	t.Run("rejected entry can be submitted again", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		s := managerSession()
		created := buildEntry("try again", 1000, s)
		Expect(catalog.SubmitForApproval(created.ID, s)).To(BeNil())
		Expect(catalog.Reject(created.ID, "incomplete description", approverL1Session())).To(BeNil())

		Expect(catalog.SubmitForApproval(created.ID, s)).To(BeNil())
		Expect(loadEntry(t, testDatabase, created.ID).ApprovalState).To(Equal(domain.ApprovalPending))
	})
}

func TestBulkSubmitForApproval(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("one entry's failure never blocks another's success", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		s := managerSession()
		ok1 := buildEntry("bulk one", 1000, s)
		alreadyPending := buildEntry("bulk two", 1000, s)
		Expect(catalog.SubmitForApproval(alreadyPending.ID, s)).To(BeNil())
		ok2 := buildEntry("bulk three", 1000, s)

		results := catalog.BulkSubmitForApproval([]types.ID{ok1.ID, alreadyPending.ID, 404, ok2.ID}, s)
		Expect(len(results)).To(Equal(4))

		Expect(results[0]).To(Equal(catalog.BulkSubmitResult{ID: ok1.ID, Success: true}))
		Expect(results[1].Success).To(BeFalse())
		Expect(results[1].Error).ToNot(BeEmpty())
		Expect(results[2]).To(Equal(catalog.BulkSubmitResult{ID: 404, Success: false, Error: bizerror.ErrNotFound.Error()}))
		Expect(results[3]).To(Equal(catalog.BulkSubmitResult{ID: ok2.ID, Success: true}))

		Expect(loadEntry(t, testDatabase, ok1.ID).ApprovalState).To(Equal(domain.ApprovalPending))
		Expect(loadEntry(t, testDatabase, ok2.ID).ApprovalState).To(Equal(domain.ApprovalPending))
	})
}

func TestApprove(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("session without an approval ceiling can not approve at all", func(t *testing.T) {
		err := catalog.Approve(123, "", managerSession())
		Expect(err).To(Equal(bizerror.ErrForbidden))
	})

	t.Run("should approve pending entry and seal the approved value", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		s := managerSession()
		created := buildEntry("within ceiling", 50000, s)
		Expect(catalog.SubmitForApproval(created.ID, s)).To(BeNil())
		Expect(catalog.Approve(created.ID, "looks good", approverL1Session())).To(BeNil())

		entry := loadEntry(t, testDatabase, created.ID)
		Expect(entry.ApprovalState).To(Equal(domain.ApprovalApproved))
		Expect(entry.ApprovedValue).To(Equal(float64(50000)))
		Expect(entry.ApprovalNote).To(Equal("looks good"))
		Expect(entry.ApproverID).To(Equal(types.ID(41)))
		Expect(entry.ApproveTime.IsZero()).To(BeFalse())
	})

	t.Run("planned value above the approver's ceiling should be refused", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		s := managerSession()
		created := buildEntry("too expensive for l1", 150000, s)
		Expect(catalog.SubmitForApproval(created.ID, s)).To(BeNil())

		err := catalog.Approve(created.ID, "", approverL1Session())
		Expect(err).To(Equal(&bizerror.ErrAuthorizationExceeded{Ceiling: 100000, Required: 150000}))
		Expect(loadEntry(t, testDatabase, created.ID).ApprovalState).To(Equal(domain.ApprovalPending))

		// a higher ceiling may still approve it
		Expect(catalog.Approve(created.ID, "", approverL2Session())).To(BeNil())
		Expect(loadEntry(t, testDatabase, created.ID).ApprovalState).To(Equal(domain.ApprovalApproved))
	})

	t.Run("only a pending entry can be approved", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		created := buildEntry("still a draft", 1000, managerSession())
		err := catalog.Approve(created.ID, "", approverL1Session())
		Expect(err).To(BeAssignableToTypeOf(&bizerror.ErrIllegalTransition{}))
	})
}

func TestReject(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("reject reason is required", func(t *testing.T) {
		err := catalog.Reject(123, "", approverL1Session())
		Expect(err).To(BeAssignableToTypeOf(&bizerror.ErrBadParam{}))

		Expect(catalog.Reject(123, "reason", managerSession())).To(Equal(bizerror.ErrForbidden))
	})

	t.Run("should reject pending entry with the reason recorded", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		s := managerSession()
		created := buildEntry("not good enough", 1000, s)
		Expect(catalog.SubmitForApproval(created.ID, s)).To(BeNil())
		Expect(catalog.Reject(created.ID, "budget not justified", approverL1Session())).To(BeNil())

		entry := loadEntry(t, testDatabase, created.ID)
		Expect(entry.ApprovalState).To(Equal(domain.ApprovalRejected))
		Expect(entry.RejectReason).To(Equal("budget not justified"))
		Expect(entry.RejecterID).To(Equal(types.ID(41)))
	})
}

func TestExecutionLifecycle(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("execution can not start before approval", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		s := managerSession()
		created := buildEntry("not yet approved", 1000, s)
		err := catalog.StartExecution(created.ID, s)
		Expect(err).To(BeAssignableToTypeOf(&bizerror.ErrIllegalTransition{}))
	})

	t.Run("start, suspend, resume and complete", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		s := managerSession()
		created := approvedEntry(t, testDatabase, "full lifecycle", 1000, s)

		Expect(catalog.StartExecution(created.ID, s)).To(BeNil())
		Expect(loadEntry(t, testDatabase, created.ID).ExecutionState).To(Equal(domain.ExecutionInProgress))

		err := catalog.Suspend(created.ID, "", s)
		Expect(err).To(BeAssignableToTypeOf(&bizerror.ErrBadParam{}))

		Expect(catalog.Suspend(created.ID, "contractor dispute", s)).To(BeNil())
		entry := loadEntry(t, testDatabase, created.ID)
		Expect(entry.ExecutionState).To(Equal(domain.ExecutionSuspended))
		Expect(entry.SuspendReason).To(Equal("contractor dispute"))

		// a suspended entry can not complete directly
		err = catalog.Complete(created.ID, s)
		Expect(err).To(BeAssignableToTypeOf(&bizerror.ErrIllegalTransition{}))

		Expect(catalog.Resume(created.ID, s)).To(BeNil())
		entry = loadEntry(t, testDatabase, created.ID)
		Expect(entry.ExecutionState).To(Equal(domain.ExecutionInProgress))
		Expect(entry.SuspendReason).To(BeEmpty())

		Expect(catalog.Complete(created.ID, s)).To(BeNil())
		Expect(loadEntry(t, testDatabase, created.ID).ExecutionState).To(Equal(domain.ExecutionCompleted))
	})
}

func TestDeleteEntry(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("delete reason is required", func(t *testing.T) {
		err := catalog.DeleteEntry(123, "", managerSession())
		Expect(err).To(BeAssignableToTypeOf(&bizerror.ErrBadParam{}))

		Expect(catalog.DeleteEntry(123, "reason", viewerSession())).To(Equal(bizerror.ErrForbidden))
	})

	t.Run("should soft delete, history stays in the table", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		s := managerSession()
		created := buildEntry("short lived", 1000, s)
		Expect(catalog.DeleteEntry(created.ID, "created by mistake", s)).To(BeNil())

		entry := loadEntry(t, testDatabase, created.ID)
		Expect(entry.IsDeleted).To(BeTrue())
		Expect(entry.ApprovalState).To(Equal(domain.ApprovalDeleted))
		Expect(entry.DeleteReason).To(Equal("created by mistake"))
		Expect(entry.DeleteTime.IsZero()).To(BeFalse())

		// deleting twice is a not-found, the entry is already gone from the active set
		err := catalog.DeleteEntry(created.ID, "again", s)
		Expect(err).To(Equal(bizerror.ErrNotFound))
	})

	t.Run("approved entry can not be deleted", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		s := managerSession()
		created := approvedEntry(t, testDatabase, "binding record", 1000, s)
		Expect(catalog.StartExecution(created.ID, s)).To(BeNil())

		err := catalog.DeleteEntry(created.ID, "should not work", s)
		Expect(err).To(Equal(&bizerror.ErrIllegalTransition{Operation: "delete",
			ApprovalState: "APPROVED", ExecutionState: "IN_PROGRESS"}))
		Expect(loadEntry(t, testDatabase, created.ID).IsDeleted).To(BeFalse())
	})
}

func TestEditRequestLoop(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("edit request is only meaningful on an approved entry", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		s := managerSession()
		created := buildEntry("draft", 1000, s)
		err := catalog.RequestEdit(created.ID, s)
		Expect(err).To(BeAssignableToTypeOf(&bizerror.ErrIllegalTransition{}))
	})

	t.Run("request edit then return to draft clears the approval", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		s := managerSession()
		created := approvedEntry(t, testDatabase, "needs a fix", 1000, s)

		// return to draft without a pending edit request is illegal
		err := catalog.ReturnToDraft(created.ID, s)
		Expect(err).To(BeAssignableToTypeOf(&bizerror.ErrIllegalTransition{}))

		Expect(catalog.RequestEdit(created.ID, s)).To(BeNil())
		entry := loadEntry(t, testDatabase, created.ID)
		Expect(entry.EditRequestState).To(Equal(domain.EditRequestRequested))
		Expect(entry.ApprovalState).To(Equal(domain.ApprovalApproved))

		Expect(catalog.ReturnToDraft(created.ID, s)).To(BeNil())
		entry = loadEntry(t, testDatabase, created.ID)
		Expect(entry.ApprovalState).To(Equal(domain.ApprovalInitialized))
		Expect(entry.EditRequestState).To(Equal(domain.EditRequestNone))
		Expect(entry.ApprovedValue).To(Equal(float64(0)))
	})

	t.Run("return to draft is illegal once execution has begun", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		s := managerSession()
		created := approvedEntry(t, testDatabase, "already running", 1000, s)
		Expect(catalog.RequestEdit(created.ID, s)).To(BeNil())
		Expect(catalog.StartExecution(created.ID, s)).To(BeNil())

		err := catalog.ReturnToDraft(created.ID, s)
		Expect(err).To(BeAssignableToTypeOf(&bizerror.ErrIllegalTransition{}))
	})
}

func TestRecordDisbursement(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("negative amounts are rejected before touching the entry", func(t *testing.T) {
		err := catalog.RecordDisbursement(123, &domain.FinanceRecording{Payment: -1}, managerSession())
		Expect(err).To(BeAssignableToTypeOf(&bizerror.ErrBadParam{}))
	})

	t.Run("recording requires an official entry", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		s := managerSession()
		created := buildEntry("just a draft", 1000, s)
		err := catalog.RecordDisbursement(created.ID, &domain.FinanceRecording{Payment: 10}, s)
		Expect(err).To(BeAssignableToTypeOf(&bizerror.ErrIllegalTransition{}))
	})

	t.Run("recordings accumulate onto the cumulative fields", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		s := managerSession()
		created := approvedEntry(t, testDatabase, "with money flowing", 1000, s)

		Expect(catalog.RecordDisbursement(created.ID, &domain.FinanceRecording{
			Implementation: 100, Acceptance: 50, Disbursement: 30, Payment: 20}, s)).To(BeNil())
		Expect(catalog.RecordDisbursement(created.ID, &domain.FinanceRecording{
			Implementation: 150, Payment: 80}, s)).To(BeNil())

		entry := loadEntry(t, testDatabase, created.ID)
		Expect(entry.CumulativeImplementation).To(Equal(float64(250)))
		Expect(entry.CumulativeAcceptance).To(Equal(float64(50)))
		Expect(entry.CumulativeDisbursement).To(Equal(float64(30)))
		Expect(entry.CumulativePayment).To(Equal(float64(100)))
	})
}
