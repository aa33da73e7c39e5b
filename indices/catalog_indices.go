package indices

import (
	"fmt"
	"portfolio/domain/catalog"
	"portfolio/es"
	"portfolio/session"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
)

var (
	CatalogIndexName = "catalog_entries"

	IndexEntriesFunc = IndexEntries
)

type EntryDocument struct {
	catalog.EntryDetail
}

type BatchActionError map[types.ID]error

func (e BatchActionError) Error() string {
	return fmt.Sprintf("%v", map[types.ID]error(e))
}

func IndexEntries(details []catalog.EntryDetail, s *session.Session) error {
	docs := make([]EntryDocument, 0, len(details))
	for _, detail := range details {
		docs = append(docs, EntryDocument{EntryDetail: detail})
	}

	if err := saveEntryDocuments(docs, s); err != nil {
		return err
	}
	return nil
}

func saveEntryDocuments(docs []EntryDocument, s *session.Session) BatchActionError {
	errs := BatchActionError{}

	for _, doc := range docs {
		if err := es.IndexFunc(CatalogIndexName, doc.ID, doc, s); err != nil {
			errs[doc.ID] = err
			logrus.Warnf("index catalog entry %d %s %s\n", doc.ID, doc.Code, err)
		} else {
			logrus.Infof("index catalog entry %d %s successfully\n", doc.ID, doc.Code)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func observationYear() int {
	return time.Now().Year()
}
