// Package search mirrors the product catalog into Elasticsearch for fuzzy lookup.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"

	"github.com/sandp/medstock/internal/models"
)

type Config struct {
	URL      string
	User     string
	Password string
	Index    string
	// Transport overrides the HTTP transport; nil uses the default.
	Transport http.RoundTripper
}

type Index struct {
	es    *elasticsearch.Client
	index string
}

// NewIndex connects to Elasticsearch and verifies the cluster answers.
func NewIndex(ctx context.Context, cfg Config) (*Index, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.User,
		Password:  cfg.Password,
		Transport: cfg.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("es: new client: %w", err)
	}

	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("es: info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("es: info: %s: %s", res.Status(), body)
	}

	return &Index{es: client, index: cfg.Index}, nil
}

type document struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	GenericName      string `json:"genericName,omitempty"`
	Category         string `json:"category,omitempty"`
	ManufacturerName string `json:"manufacturerName,omitempty"`
	Status           string `json:"status"`
}

func (ix *Index) IndexProduct(ctx context.Context, p *models.Product) error {
	doc := document{
		ID:               p.ID.String(),
		Name:             p.Name,
		GenericName:      p.GenericName,
		Category:         p.Category,
		ManufacturerName: p.ManufacturerName,
		Status:           p.Status,
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(doc); err != nil {
		return fmt.Errorf("es: encode: %w", err)
	}

	res, err := ix.es.Index(ix.index, &buf,
		ix.es.Index.WithContext(ctx),
		ix.es.Index.WithDocumentID(doc.ID),
	)
	if err != nil {
		return fmt.Errorf("es: index %s: %w", doc.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("es: index %s: %s", doc.ID, res.Status())
	}
	return nil
}

func (ix *Index) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res, err := ix.es.Delete(ix.index, id.String(), ix.es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("es: delete %s: %w", id, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("es: delete %s: %s", id, res.Status())
	}
	return nil
}

// SearchProductIDs returns ids of ACTIVE products matching query, best match first.
func (ix *Index) SearchProductIDs(ctx context.Context, query string, size int) ([]uuid.UUID, error) {
	body := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":     query,
						"fields":    []string{"name^3", "genericName^2", "manufacturerName", "category"},
						"fuzziness": "AUTO",
					},
				},
				"filter": map[string]any{
					"term": map[string]any{"status": models.ProductActive},
				},
			},
		},
		"_source": []string{"id"},
		"size":    size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("es: encode: %w", err)
	}

	res, err := ix.es.Search(
		ix.es.Search.WithContext(ctx),
		ix.es.Search.WithIndex(ix.index),
		ix.es.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("es: search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("es: search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source document `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("es: decode: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		id, err := uuid.Parse(hit.Source.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
