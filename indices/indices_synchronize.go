package indices

import (
	"context"
	"errors"
	"fmt"
	"portfolio/account"
	"portfolio/authority"
	"portfolio/bizerror"
	"portfolio/domain"
	"portfolio/domain/catalog"
	"portfolio/es"
	"portfolio/event"
	"portfolio/persistence"
	"portfolio/session"
	"sync"

	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

var (
	CatalogIndexEventHandlerName = "catalogIndexer"

	indexRobot = &session.Session{
		Identity: session.Identity{ID: 10, Name: "index-robot"},
		Perms:    authority.Permissions{account.SystemAdminPermission.ID},
		Context:  context.Background(),
	}

	lock    sync.Mutex
	running bool

	IndicesFullSyncFunc    = IndicesFullSync
	ScheduleNewSyncRunFunc = ScheduleNewSyncRun
)

// RegisterCatalogIndexEventHandler keeps the search index in step with catalog
// mutations. Indexing happens after commit; a failure is logged and repaired by
// the next full sync.
func RegisterCatalogIndexEventHandler() {
	event.EventHandlers = append(event.EventHandlers, catalogIndexEventHandler)
}

func catalogIndexEventHandler(record *event.EventRecord) *event.EventHandleResult {
	if record == nil || record.SourceType != catalog.EventSourceTypeCatalogEntry {
		return nil
	}

	result := event.EventHandleResult{Success: true, HandlerIdentifier: CatalogIndexEventHandlerName}

	if record.EventCategory == event.EventCategoryDeleted {
		if err := es.DeleteDocumentByIdFunc(CatalogIndexName, record.SourceId, indexRobot); err != nil {
			result.Success = false
			result.Message = err.Error()
		}
		return &result
	}

	entry := domain.CatalogEntry{}
	db := persistence.ActiveDataSourceManager.GormDB(indexRobot.Context)
	if err := db.Where(&domain.CatalogEntry{ID: record.SourceId}).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		result.Success = false
		result.Message = err.Error()
		return &result
	}

	detail := catalog.BuildEntryDetail(&entry, observationYear())
	if err := IndexEntriesFunc([]catalog.EntryDetail{*detail}, indexRobot); err != nil {
		result.Success = false
		result.Message = err.Error()
	}
	return &result
}

func ScheduleNewSyncRun(s *session.Session) (bool, error) {
	if !s.Perms.HasRole(account.SystemAdminPermission.ID) {
		return false, bizerror.ErrForbidden
	}

	lock.Lock()
	if running {
		lock.Unlock()
		return false, nil
	}
	running = true
	lock.Unlock()

	waitRunning := sync.WaitGroup{}
	waitRunning.Add(1)
	go func() {
		waitRunning.Done()
		defer func() {
			lock.Lock()
			running = false
			lock.Unlock()
		}()
		IndicesFullSyncFunc()
	}()
	waitRunning.Wait()
	return true, nil
}

var (
	SyncBatchSize = 500
)

func IndicesFullSync() (err error) {
	defer func() {
		if ret := recover(); ret != nil {
			e, ok := ret.(error)
			if ok {
				err = e
			} else {
				err = fmt.Errorf("error on indices full sync: %v", ret)
			}
		}
	}()

	page := 1
	for {
		entries, err := catalog.LoadEntriesFunc(page, SyncBatchSize)
		if err != nil {
			logrus.Warnf("indices full sync: error on retrieve entries(page = %d, pageSize = %d): %v", page, SyncBatchSize, err)
			return err
		}
		if len(entries) == 0 {
			return nil
		}

		details := make([]catalog.EntryDetail, 0, len(entries))
		year := observationYear()
		for i := range entries {
			details = append(details, *catalog.BuildEntryDetail(&entries[i], year))
		}
		if err := IndexEntriesFunc(details, indexRobot); err != nil {
			logrus.Warnf("indices full sync: error on index entries(page = %d): %v", page, err)
			return err
		}
		page++
	}
}
