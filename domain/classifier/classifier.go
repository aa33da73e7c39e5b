package classifier

import (
	"portfolio/domain"
)

type CycleClass string

const (
	ClassNew       CycleClass = "NEW"
	ClassCarryover CycleClass = "CARRYOVER"
)

// Classify reports whether an entry counts as a new item or a carryover for the
// observation year. An approved entry is always the current cycle's active item,
// never a legacy holdover. A future-dated start is treated as new.
func Classify(entry *domain.CatalogEntry, observationYear int) CycleClass {
	entryYear := entry.StartDate.Time().Year()
	if entryYear < observationYear && entry.ApprovalState != domain.ApprovalApproved {
		return ClassCarryover
	}
	return ClassNew
}
