package catalog

import (
	"portfolio/domain"
	"portfolio/event"
	"portfolio/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

const EventSourceTypeCatalogEntry = "CATALOG_ENTRY"

func CreateEntryCreatedEvent(e *domain.CatalogEntry, identity *session.Identity, timestamp types.Timestamp, db *gorm.DB) (*event.EventRecord, error) {
	return event.CreateEvent(EventSourceTypeCatalogEntry, e.ID, e.Code, event.EventCategoryCreated, nil, identity, timestamp, db)
}

func CreateEntryDeletedEvent(e *domain.CatalogEntry, identity *session.Identity, timestamp types.Timestamp, db *gorm.DB) (*event.EventRecord, error) {
	return event.CreateEvent(EventSourceTypeCatalogEntry, e.ID, e.Code, event.EventCategoryDeleted, nil, identity, timestamp, db)
}

func CreateEntryPropertyUpdatedEvent(e *domain.CatalogEntry, updates []event.UpdatedProperty, identity *session.Identity, timestamp types.Timestamp, db *gorm.DB) (*event.EventRecord, error) {
	return event.CreateEvent(EventSourceTypeCatalogEntry, e.ID, e.Code, event.EventCategoryPropertyUpdated, updates, identity, timestamp, db)
}

// CreateEntryTransitedEvent captures the before/after of the axis which changed.
func CreateEntryTransitedEvent(e *domain.CatalogEntry, axis, oldState, newState string, identity *session.Identity, timestamp types.Timestamp, db *gorm.DB) (*event.EventRecord, error) {
	return event.CreateEvent(EventSourceTypeCatalogEntry, e.ID, e.Code, event.EventCategoryStateTransited,
		[]event.UpdatedProperty{{
			PropertyName: axis, PropertyDesc: axis,
			OldValue: oldState, OldValueDesc: oldState,
			NewValue: newState, NewValueDesc: newState,
		}},
		identity, timestamp, db)
}
