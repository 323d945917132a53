package store

import (
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/persistorai/docgraph/internal/models"
)

// documentColumns lists the columns selected for document queries.
const documentColumns = `collection, key, from_id, to_id, body`

// scanDocument scans a single row into a models.Document.
func scanDocument(scan func(dest ...any) error) (*models.Document, error) {
	var d models.Document
	var from, to *string
	var body []byte

	if err := scan(&d.Collection, &d.Key, &from, &to, &body); err != nil {
		return nil, err
	}
	if from != nil {
		d.From = *from
	}
	if to != nil {
		d.To = *to
	}

	d.Properties = models.NewPropertyMap()
	if err := json.Unmarshal(body, d.Properties); err != nil {
		return nil, fmt.Errorf("unmarshalling body of %s: %w", d.ID(), err)
	}

	return &d, nil
}

// collectDocuments scans all rows into a document slice.
func collectDocuments(rows pgx.Rows) ([]*models.Document, error) {
	docs := make([]*models.Document, 0, 16)

	for rows.Next() {
		d, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning document row: %w", err)
		}
		docs = append(docs, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating document rows: %w", err)
	}

	return docs, nil
}

// encodeBody renders user properties as the jsonb body.
func encodeBody(props *models.PropertyMap) ([]byte, error) {
	body, err := json.Marshal(props.UserProperties())
	if err != nil {
		return nil, fmt.Errorf("marshalling body: %w", err)
	}
	return body, nil
}

// nullable maps an empty endpoint to SQL NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
