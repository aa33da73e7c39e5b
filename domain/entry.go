package domain

import (
	"github.com/fundwit/go-commons/types"
)

// CatalogEntry is the catalog item shared by projects and contracts, distinguished
// by Kind. Cumulative monetary fields are the system of record for contracts; the
// derived indicator view is computed from them on read.
type CatalogEntry struct {
	ID   types.ID `json:"id" gorm:"primary_key"`
	Code string   `json:"code" gorm:"unique_index:code_unique"`
	Kind string   `json:"kind"`

	Category   string `json:"category"`
	Department string `json:"department"`

	Name        string `json:"name"`
	Description string `json:"description" sql:"type:TEXT"`

	StartDate     types.Timestamp `json:"startDate" sql:"type:DATETIME(3)"`
	PlannedValue  float64         `json:"plannedValue" sql:"type:DECIMAL(18,2)"`
	ApprovedValue float64         `json:"approvedValue" sql:"type:DECIMAL(18,2)"`

	ApprovalState    ApprovalState    `json:"approvalState"`
	ExecutionState   ExecutionState   `json:"executionState"`
	EditRequestState EditRequestState `json:"editRequestState"`
	IsDeleted        bool             `json:"isDeleted"`

	TotalValue               float64 `json:"totalValue" sql:"type:DECIMAL(18,2)"`
	CumulativeImplementation float64 `json:"cumulativeImplementation" sql:"type:DECIMAL(18,2)"`
	CumulativeAcceptance     float64 `json:"cumulativeAcceptance" sql:"type:DECIMAL(18,2)"`
	CumulativeDisbursement   float64 `json:"cumulativeDisbursement" sql:"type:DECIMAL(18,2)"`
	CumulativePayment        float64 `json:"cumulativePayment" sql:"type:DECIMAL(18,2)"`

	ManagerID    types.ID `json:"managerId"`
	ContractorID types.ID `json:"contractorId"`
	ClientID     types.ID `json:"clientId"`

	CreateTime  types.Timestamp `json:"createTime" sql:"type:DATETIME(3)"`
	CreatorID   types.ID        `json:"creatorId"`
	CreatorName string          `json:"creatorName"`
	UpdateTime  types.Timestamp `json:"updateTime" sql:"type:DATETIME(3)"`
	UpdaterID   types.ID        `json:"updaterId"`

	SubmitTime    types.Timestamp `json:"submitTime" sql:"type:DATETIME(3)"`
	SubmitterID   types.ID        `json:"submitterId"`
	ApproveTime   types.Timestamp `json:"approveTime" sql:"type:DATETIME(3)"`
	ApproverID    types.ID        `json:"approverId"`
	ApprovalNote  string          `json:"approvalNote"`
	RejectTime    types.Timestamp `json:"rejectTime" sql:"type:DATETIME(3)"`
	RejecterID    types.ID        `json:"rejecterId"`
	RejectReason  string          `json:"rejectReason"`
	SuspendTime   types.Timestamp `json:"suspendTime" sql:"type:DATETIME(3)"`
	SuspendReason string          `json:"suspendReason"`
	DeleteTime    types.Timestamp `json:"deleteTime" sql:"type:DATETIME(3)"`
	DeleteReason  string          `json:"deleteReason"`
}

func (e *CatalogEntry) TableName() string {
	return "catalog_entries"
}

// IsOfficial reports whether the entry is an approved, binding record rather than
// a draft.
func (e *CatalogEntry) IsOfficial() bool {
	return e.ApprovalState == ApprovalApproved
}

const (
	KindProject  = "PROJECT"
	KindContract = "CONTRACT"
)

type EntryCreation struct {
	Kind       string `json:"kind" binding:"required,oneof=PROJECT CONTRACT"`
	Category   string `json:"category" binding:"required,uppercase,gte=2,lte=3"`
	Department string `json:"department" binding:"required,lte=32"`

	Name        string `json:"name" binding:"required,lte=128"`
	Description string `json:"description" binding:"omitempty,lte=4096"`

	StartDate    types.Timestamp `json:"startDate" binding:"required"`
	PlannedValue float64         `json:"plannedValue" binding:"gte=0"`
	TotalValue   float64         `json:"totalValue" binding:"gte=0"`

	ManagerID    types.ID `json:"managerId"`
	ContractorID types.ID `json:"contractorId"`
	ClientID     types.ID `json:"clientId"`
}

type EntryCreated struct {
	ID   types.ID `json:"id"`
	Code string   `json:"code"`
}

type EntryUpdating struct {
	Name        string `json:"name" binding:"required,lte=128"`
	Description string `json:"description" binding:"omitempty,lte=4096"`

	StartDate    types.Timestamp `json:"startDate"`
	PlannedValue float64         `json:"plannedValue" binding:"gte=0"`
	TotalValue   float64         `json:"totalValue" binding:"gte=0"`
}

// EntryQuery criteria compose as a conjunction. Empty enum selections mean
// "no constraint".
type EntryQuery struct {
	Text string `json:"text" form:"text"`

	Kinds             []string           `json:"kinds" form:"kind"`
	Categories        []string           `json:"categories" form:"category"`
	ApprovalStates    []ApprovalState    `json:"approvalStates" form:"approvalState"`
	ExecutionStates   []ExecutionState   `json:"executionStates" form:"executionState"`
	EditRequestStates []EditRequestState `json:"editRequestStates" form:"editRequestState"`
	Departments       []string           `json:"departments" form:"department"`

	ValueFrom *float64 `json:"valueFrom" form:"valueFrom"`
	ValueTo   *float64 `json:"valueTo" form:"valueTo"`

	StartDateFrom types.Timestamp `json:"startDateFrom" form:"startDateFrom"`
	StartDateTo   types.Timestamp `json:"startDateTo" form:"startDateTo"`
	CreatedFrom   types.Timestamp `json:"createdFrom" form:"createdFrom"`
	CreatedTo     types.Timestamp `json:"createdTo" form:"createdTo"`

	ManagerID    types.ID `json:"managerId" form:"managerId"`
	ContractorID types.ID `json:"contractorId" form:"contractorId"`
	ClientID     types.ID `json:"clientId" form:"clientId"`

	OfficialOnly bool `json:"officialOnly" form:"officialOnly"`
}

// ValidateStates rejects unrecognized state selections before they reach the
// filter engine.
func (q *EntryQuery) ValidateStates() error {
	for _, s := range q.ApprovalStates {
		if _, err := ParseApprovalState(string(s)); err != nil {
			return err
		}
	}
	for _, s := range q.ExecutionStates {
		if _, err := ParseExecutionState(string(s)); err != nil {
			return err
		}
	}
	for _, s := range q.EditRequestStates {
		if _, err := ParseEditRequestState(string(s)); err != nil {
			return err
		}
	}
	return nil
}

// FinanceRecording accumulates onto the entry's cumulative monetary fields.
type FinanceRecording struct {
	Implementation float64 `json:"implementation" binding:"gte=0"`
	Acceptance     float64 `json:"acceptance" binding:"gte=0"`
	Disbursement   float64 `json:"disbursement" binding:"gte=0"`
	Payment        float64 `json:"payment" binding:"gte=0"`
}
