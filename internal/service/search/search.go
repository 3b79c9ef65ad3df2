package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/cipherWizard31/pulse-care/internal/models"
)

// Search runs a fuzzy multi-match over the indexed patient names. Only
// plaintext attributes ever reach the index, so nothing sensitive is
// searchable here.
func Search(ctx context.Context, es *elasticsearch.Client, index, query string, from, size int) (int64, []models.Patient, error) {
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"first_name^2", "last_name^2", "dob"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("encode search body: %w", err)
	}

	res, err := es.Search(
		es.Search.WithContext(ctx),
		es.Search.WithIndex(index),
		es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search request: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search error: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct{ Value int64 } `json:"total"`
			Hits  []struct {
				Source models.Patient `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	patients := make([]models.Patient, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		patients[i] = hit.Source
	}
	return r.Hits.Total.Value, patients, nil
}

// IndexPatient puts the patient's plaintext attributes into the index.
func IndexPatient(ctx context.Context, es *elasticsearch.Client, index string, p models.Patient) error {
	if es == nil {
		return nil
	}
	doc := map[string]string{
		"id":         p.ID,
		"first_name": p.FirstName,
		"last_name":  p.LastName,
		"dob":        p.DOB,
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(doc); err != nil {
		return fmt.Errorf("encode patient doc: %w", err)
	}
	res, err := es.Index(index, &buf,
		es.Index.WithContext(ctx),
		es.Index.WithDocumentID(p.ID),
	)
	if err != nil {
		return fmt.Errorf("index patient: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index patient: %s", res.Status())
	}
	return nil
}

// DeletePatient removes the patient document from the index.
func DeletePatient(ctx context.Context, es *elasticsearch.Client, index, id string) error {
	if es == nil {
		return nil
	}
	res, err := es.Delete(index, id, es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete patient doc: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete patient doc: %s", res.Status())
	}
	return nil
}
