package catalog

import (
	"errors"
	"portfolio/account"
	"portfolio/bizerror"
	"portfolio/domain"
	"portfolio/domain/classifier"
	"portfolio/domain/finance"
	"portfolio/domain/sequence"
	"portfolio/event"
	"portfolio/idgen"
	"portfolio/persistence"
	"portfolio/session"
	"strings"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	entryIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateEntryFunc  = CreateEntry
	DetailEntryFunc  = DetailEntry
	QueryEntriesFunc = QueryEntries
	UpdateEntryFunc  = UpdateEntry
	LoadEntriesFunc  = LoadEntries
)

// EntryDetail extends the stored entry with the derived reporting views.
type EntryDetail struct {
	domain.CatalogEntry

	CycleClass classifier.CycleClass `json:"cycleClass"`
	Official   bool                  `json:"official"`
	Indicator  finance.Indicator     `json:"indicator"`
}

func BuildEntryDetail(entry *domain.CatalogEntry, observationYear int) *EntryDetail {
	return &EntryDetail{
		CatalogEntry: *entry,
		CycleClass:   classifier.Classify(entry, observationYear),
		Official:     entry.IsOfficial(),
		Indicator:    finance.ComputeIndicator(entry, finance.ActiveThresholds()),
	}
}

func CreateEntry(c *domain.EntryCreation, s *session.Session) (*domain.EntryCreated, error) {
	if !s.Perms.HasRole(account.CatalogManagePermission.ID) {
		return nil, bizerror.ErrForbidden
	}
	if !domain.IsValidCategory(c.Category) {
		return nil, &bizerror.ErrBadParam{Cause: errors.New("unknown category '" + c.Category + "'")}
	}
	if !domain.IsValidDepartment(c.Department) {
		return nil, &bizerror.ErrBadParam{Cause: errors.New("unknown department '" + c.Department + "'")}
	}

	var created *domain.EntryCreated
	err := withConflictRetry(func() error {
		var ev *event.EventRecord
		now := types.CurrentTimestamp()
		entry := domain.CatalogEntry{
			ID:   idgen.NextID(entryIdWorker),
			Kind: c.Kind, Category: c.Category, Department: c.Department,
			Name: c.Name, Description: c.Description,
			StartDate: c.StartDate, PlannedValue: c.PlannedValue, TotalValue: c.TotalValue,
			ApprovalState: domain.ApprovalInitialized, ExecutionState: domain.ExecutionNotStarted,
			EditRequestState: domain.EditRequestNone,
			ManagerID:        c.ManagerID, ContractorID: c.ContractorID, ClientID: c.ClientID,
			CreateTime: now, CreatorID: s.Identity.ID, CreatorName: s.Identity.DisplayName(),
			UpdateTime: now, UpdaterID: s.Identity.ID,
		}

		err := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
			code, err := sequence.NextEntryCode(tx, entry.Category, entry.Department, entry.StartDate.Time().Year())
			if err != nil {
				return err
			}
			entry.Code = code

			if err := tx.Create(&entry).Error; err != nil {
				return err
			}

			ev, err = CreateEntryCreatedEvent(&entry, &s.Identity, now, tx)
			return err
		})
		if err != nil {
			return err
		}

		if event.InvokeHandlersFunc != nil {
			event.InvokeHandlersFunc(ev)
		}
		created = &domain.EntryCreated{ID: entry.ID, Code: entry.Code}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func DetailEntry(identifier string, s *session.Session) (*EntryDetail, error) {
	if !s.Perms.HasRole(account.CatalogViewPermission.ID) && !s.Perms.HasRole(account.SystemAdminPermission.ID) {
		return nil, bizerror.ErrForbidden
	}

	id, _ := types.ParseID(identifier)
	entry := domain.CatalogEntry{}
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	if err := db.Where("(id = ? OR code = ?) AND is_deleted = ?", id, identifier, false).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}
	return BuildEntryDetail(&entry, time.Now().Year()), nil
}

// QueryEntries applies the criteria as a conjunction over the active (not
// soft-deleted) entries, in the backing table's iteration order. Sorting is a
// presentation concern.
func QueryEntries(query *domain.EntryQuery, s *session.Session) (*[]EntryDetail, error) {
	if !s.Perms.HasRole(account.CatalogViewPermission.ID) && !s.Perms.HasRole(account.SystemAdminPermission.ID) {
		return nil, bizerror.ErrForbidden
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	q := db.Model(&domain.CatalogEntry{}).Where("is_deleted = ?", false)

	if query.Text != "" {
		like := "%" + strings.ToLower(query.Text) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(code) LIKE ? OR LOWER(description) LIKE ?", like, like, like)
	}
	if len(query.Kinds) > 0 {
		q = q.Where("kind IN (?)", query.Kinds)
	}
	if len(query.Categories) > 0 {
		q = q.Where("category IN (?)", query.Categories)
	}
	if len(query.Departments) > 0 {
		q = q.Where("department IN (?)", query.Departments)
	}
	if len(query.ApprovalStates) > 0 {
		q = q.Where("approval_state IN (?)", query.ApprovalStates)
	}
	if len(query.ExecutionStates) > 0 {
		q = q.Where("execution_state IN (?)", query.ExecutionStates)
	}
	if len(query.EditRequestStates) > 0 {
		q = q.Where("edit_request_state IN (?)", query.EditRequestStates)
	}
	if query.OfficialOnly {
		q = q.Where("approval_state = ?", domain.ApprovalApproved)
	}
	if query.ValueFrom != nil {
		q = q.Where("planned_value >= ?", *query.ValueFrom)
	}
	if query.ValueTo != nil {
		q = q.Where("planned_value <= ?", *query.ValueTo)
	}
	if !query.StartDateFrom.IsZero() {
		q = q.Where("start_date >= ?", query.StartDateFrom)
	}
	if !query.StartDateTo.IsZero() {
		q = q.Where("start_date <= ?", query.StartDateTo)
	}
	if !query.CreatedFrom.IsZero() {
		q = q.Where("create_time >= ?", query.CreatedFrom)
	}
	if !query.CreatedTo.IsZero() {
		q = q.Where("create_time <= ?", query.CreatedTo)
	}
	if query.ManagerID != 0 {
		q = q.Where("manager_id = ?", query.ManagerID)
	}
	if query.ContractorID != 0 {
		q = q.Where("contractor_id = ?", query.ContractorID)
	}
	if query.ClientID != 0 {
		q = q.Where("client_id = ?", query.ClientID)
	}

	var entries []domain.CatalogEntry
	if err := q.Find(&entries).Error; err != nil {
		return nil, err
	}

	observationYear := time.Now().Year()
	details := make([]EntryDetail, 0, len(entries))
	for i := range entries {
		details = append(details, *BuildEntryDetail(&entries[i], observationYear))
	}
	return &details, nil
}

func UpdateEntry(id types.ID, u *domain.EntryUpdating, s *session.Session) (*EntryDetail, error) {
	if !s.Perms.HasRole(account.CatalogManagePermission.ID) {
		return nil, bizerror.ErrForbidden
	}

	var updated domain.CatalogEntry
	err := withConflictRetry(func() error {
		var ev *event.EventRecord
		err := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
			origin, err := findEntry(tx, id)
			if err != nil {
				return err
			}
			// the start date is frozen once execution has begun
			if origin.ExecutionState != domain.ExecutionNotStarted &&
				!u.StartDate.IsZero() && u.StartDate != origin.StartDate {
				return &bizerror.ErrBadParam{Cause: errors.New("start date is immutable once execution has begun")}
			}

			now := types.CurrentTimestamp()
			changes := map[string]interface{}{
				"name": u.Name, "description": u.Description,
				"planned_value": u.PlannedValue, "total_value": u.TotalValue,
				"update_time": now, "updater_id": s.Identity.ID,
			}
			if !u.StartDate.IsZero() {
				changes["start_date"] = u.StartDate
			}
			db := casUpdate(tx, origin, changes)
			if err := db.Error; err != nil {
				return err
			}
			if db.RowsAffected != 1 {
				return bizerror.ErrConcurrentModification
			}

			ev, err = CreateEntryPropertyUpdatedEvent(origin,
				[]event.UpdatedProperty{{
					PropertyName: "Name", PropertyDesc: "Name",
					OldValue: origin.Name, OldValueDesc: origin.Name,
					NewValue: u.Name, NewValueDesc: u.Name,
				}},
				&s.Identity, now, tx)
			if err != nil {
				return err
			}

			return tx.Where(&domain.CatalogEntry{ID: id}).First(&updated).Error
		})
		if err != nil {
			return err
		}
		if event.InvokeHandlersFunc != nil {
			event.InvokeHandlersFunc(ev)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return BuildEntryDetail(&updated, time.Now().Year()), nil
}

// LoadEntries pages through all entries including soft-deleted ones, for index
// synchronization.
func LoadEntries(page, size int) ([]domain.CatalogEntry, error) {
	entries := []domain.CatalogEntry{}
	db := persistence.ActiveDataSourceManager.GormDB(nil)
	offset := (page - 1) * size
	if offset < 0 {
		offset = 0
	}
	if err := db.Order("id ASC").Offset(offset).Limit(size).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func findEntry(tx *gorm.DB, id types.ID) (*domain.CatalogEntry, error) {
	entry := domain.CatalogEntry{}
	if err := tx.Where(&domain.CatalogEntry{ID: id}).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}
	if entry.IsDeleted {
		return nil, bizerror.ErrNotFound
	}
	return &entry, nil
}

// casUpdate writes conditioned on the state pair read before validation, so a
// losing writer observes RowsAffected == 0 instead of overwriting a concurrent
// transition.
func casUpdate(tx *gorm.DB, origin *domain.CatalogEntry, changes map[string]interface{}) *gorm.DB {
	return tx.Model(&domain.CatalogEntry{}).
		Where("id = ? AND approval_state = ? AND execution_state = ? AND is_deleted = ?",
			origin.ID, origin.ApprovalState, origin.ExecutionState, false).
		Update(changes)
}

const maxConflictAttempts = 3

// withConflictRetry re-runs the read-validate-write cycle a bounded number of
// times before surfacing the conflict to the caller.
func withConflictRetry(operation func() error) error {
	var err error
	for attempt := 0; attempt < maxConflictAttempts; attempt++ {
		err = operation()
		if !errors.Is(err, bizerror.ErrConcurrentModification) {
			return err
		}
	}
	return err
}
