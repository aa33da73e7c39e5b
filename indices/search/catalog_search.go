package search

import (
	"encoding/json"
	"portfolio/domain"
	"portfolio/domain/catalog"
	"portfolio/es"
	"portfolio/indices"
	"portfolio/session"
)

var (
	SearchEntriesFunc = SearchEntries
)

// SearchEntries mirrors the database filter engine over the search index, adding
// relevance-ranked free-text matching. Soft-deleted entries are never returned.
func SearchEntries(q domain.EntryQuery, s *session.Session) ([]catalog.EntryDetail, error) {
	filters := make([]es.H, 0, 10)
	filters = append(filters, es.H{"term": es.H{"isDeleted": false}})

	if q.Text != "" {
		filters = append(filters, es.H{"multi_match": es.H{
			"query":    q.Text,
			"fields":   []string{"name", "code", "description"},
			"operator": "AND",
		}})
	}
	if len(q.Kinds) > 0 {
		filters = append(filters, es.H{"terms": es.H{"kind": q.Kinds}})
	}
	if len(q.Categories) > 0 {
		filters = append(filters, es.H{"terms": es.H{"category": q.Categories}})
	}
	if len(q.Departments) > 0 {
		filters = append(filters, es.H{"terms": es.H{"department": q.Departments}})
	}
	if len(q.ApprovalStates) > 0 {
		filters = append(filters, es.H{"terms": es.H{"approvalState": q.ApprovalStates}})
	}
	if len(q.ExecutionStates) > 0 {
		filters = append(filters, es.H{"terms": es.H{"executionState": q.ExecutionStates}})
	}
	if len(q.EditRequestStates) > 0 {
		filters = append(filters, es.H{"terms": es.H{"editRequestState": q.EditRequestStates}})
	}
	if q.OfficialOnly {
		filters = append(filters, es.H{"term": es.H{"approvalState": domain.ApprovalApproved}})
	}
	if q.ValueFrom != nil || q.ValueTo != nil {
		valueRange := es.H{}
		if q.ValueFrom != nil {
			valueRange["gte"] = *q.ValueFrom
		}
		if q.ValueTo != nil {
			valueRange["lte"] = *q.ValueTo
		}
		filters = append(filters, es.H{"range": es.H{"plannedValue": valueRange}})
	}
	if q.ManagerID != 0 {
		filters = append(filters, es.H{"term": es.H{"managerId": q.ManagerID}})
	}
	if q.ContractorID != 0 {
		filters = append(filters, es.H{"term": es.H{"contractorId": q.ContractorID}})
	}
	if q.ClientID != 0 {
		filters = append(filters, es.H{"term": es.H{"clientId": q.ClientID}})
	}

	root := es.H{"bool": es.H{"filter": filters}}
	r, err := es.SearchFunc(indices.CatalogIndexName, es.H{"size": 10000, "query": root}, s)
	if err != nil {
		return nil, err
	}

	details := make([]catalog.EntryDetail, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		detail := catalog.EntryDetail{}
		if err := json.Unmarshal([]byte(hit.Source), &detail); err != nil {
			return nil, err
		}
		details = append(details, detail)
	}
	return details, nil
}
