// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package pinecone implements storage.Store against a Pinecone index over
// its REST data plane.
package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/poiesic/traingen/storage"
)

// Config holds the connection settings for one Pinecone index.
type Config struct {
	// APIKey authenticates against the data plane.
	APIKey string

	// IndexHost is the per-index endpoint,
	// e.g. "https://my-index-abc123.svc.us-east-1-aws.pinecone.io".
	IndexHost string

	// Timeout bounds each HTTP request. Defaults to 30s.
	Timeout time.Duration
}

// Store is a Pinecone-backed vector store.
type Store struct {
	config Config
	client *http.Client
	logger *slog.Logger
}

// New creates a Pinecone store.
func New(config Config) (*Store, error) {
	if config.APIKey == "" {
		return nil, errors.New("pinecone: APIKey is required")
	}
	if config.IndexHost == "" {
		return nil, errors.New("pinecone: IndexHost is required")
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	return &Store{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: slog.Default().With("component", "pinecone-store"),
	}, nil
}

func (s *Store) post(ctx context.Context, path string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.IndexHost+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling pinecone: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		return nil, fmt.Errorf("pinecone %s failed (status %d): %s", path, resp.StatusCode, string(raw))
	}
	return resp, nil
}

// CreateNamespace is a no-op; Pinecone creates namespaces implicitly on the
// first upsert.
func (s *Store) CreateNamespace(ctx context.Context, name string) error {
	return nil
}

// DeleteNamespace removes every vector in the namespace.
func (s *Store) DeleteNamespace(ctx context.Context, name string) error {
	resp, err := s.post(ctx, "/vectors/delete", map[string]any{
		"namespace": name,
		"deleteAll": true,
	})
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

type upsertVector struct {
	ID       string         `json:"id"`
	Values   []float32      `json:"values"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Upsert inserts or replaces records.
func (s *Store) Upsert(ctx context.Context, namespace string, records []storage.Record) error {
	if len(records) == 0 {
		return nil
	}

	vectors := make([]upsertVector, len(records))
	for i, r := range records {
		vectors[i] = upsertVector{ID: r.ID, Values: r.Values, Metadata: r.Metadata}
	}

	resp, err := s.post(ctx, "/vectors/upsert", map[string]any{
		"namespace": namespace,
		"vectors":   vectors,
	})
	if err != nil {
		s.logger.Error("upsert failed", "namespace", namespace, "count", len(records), "err", err)
		return err
	}
	resp.Body.Close()
	return nil
}

type queryResponse struct {
	Matches []struct {
		ID       string         `json:"id"`
		Score    float32        `json:"score"`
		Metadata map[string]any `json:"metadata"`
	} `json:"matches"`
}

// Query returns the topK nearest vectors with their metadata.
func (s *Store) Query(ctx context.Context, namespace string, vector []float32, topK int, filter storage.Filter) ([]storage.Match, error) {
	if topK <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	body := map[string]any{
		"namespace":       namespace,
		"vector":          vector,
		"topK":            topK,
		"includeMetadata": true,
	}
	if len(filter) > 0 {
		body["filter"] = map[string]any(filter)
	}

	resp, err := s.post(ctx, "/query", body)
	if err != nil {
		s.logger.Error("query failed", "namespace", namespace, "err", err)
		return nil, err
	}
	defer resp.Body.Close()

	var parsed queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	matches := make([]storage.Match, len(parsed.Matches))
	for i, m := range parsed.Matches {
		metadata := m.Metadata
		if metadata == nil {
			metadata = map[string]any{}
		}
		matches[i] = storage.Match{
			ID:       m.ID,
			Score:    m.Score,
			Metadata: metadata,
			Text:     storage.TextFromMetadata(metadata),
		}
	}
	return matches, nil
}

func (s *Store) get(ctx context.Context, path string, query url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.config.IndexHost+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Api-Key", s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling pinecone: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		return nil, fmt.Errorf("pinecone %s failed (status %d): %s", path, resp.StatusCode, string(raw))
	}
	return resp, nil
}

type listResponse struct {
	Vectors []struct {
		ID string `json:"id"`
	} `json:"vectors"`
	Pagination struct {
		Next string `json:"next"`
	} `json:"pagination"`
}

type fetchResponse struct {
	Vectors map[string]struct {
		ID       string         `json:"id"`
		Values   []float32      `json:"values"`
		Metadata map[string]any `json:"metadata"`
	} `json:"vectors"`
}

// listPageSize is Pinecone's maximum page size for /vectors/list.
const listPageSize = 100

// List enumerates the namespace by paging through /vectors/list and
// hydrating each page via /vectors/fetch.
func (s *Store) List(ctx context.Context, namespace string) ([]storage.Record, error) {
	records := []storage.Record{}
	token := ""

	for {
		query := url.Values{}
		query.Set("namespace", namespace)
		query.Set("limit", strconv.Itoa(listPageSize))
		if token != "" {
			query.Set("paginationToken", token)
		}

		resp, err := s.get(ctx, "/vectors/list", query)
		if err != nil {
			s.logger.Error("list failed", "namespace", namespace, "err", err)
			return nil, err
		}

		var page listResponse
		err = json.NewDecoder(resp.Body).Decode(&page)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("decoding response: %w", err)
		}

		if len(page.Vectors) > 0 {
			ids := make([]string, len(page.Vectors))
			for i, v := range page.Vectors {
				ids[i] = v.ID
			}
			fetched, err := s.fetch(ctx, namespace, ids)
			if err != nil {
				return nil, err
			}
			records = append(records, fetched...)
		}

		token = page.Pagination.Next
		if token == "" {
			return records, nil
		}
	}
}

func (s *Store) fetch(ctx context.Context, namespace string, ids []string) ([]storage.Record, error) {
	query := url.Values{}
	query.Set("namespace", namespace)
	for _, id := range ids {
		query.Add("ids", id)
	}

	resp, err := s.get(ctx, "/vectors/fetch", query)
	if err != nil {
		s.logger.Error("fetch failed", "namespace", namespace, "count", len(ids), "err", err)
		return nil, err
	}
	defer resp.Body.Close()

	var parsed fetchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	records := make([]storage.Record, 0, len(parsed.Vectors))
	for _, v := range parsed.Vectors {
		records = append(records, storage.Record{
			ID:       v.ID,
			Values:   v.Values,
			Metadata: v.Metadata,
		})
	}
	return records, nil
}

// Delete removes records by ID.
func (s *Store) Delete(ctx context.Context, namespace string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	resp, err := s.post(ctx, "/vectors/delete", map[string]any{
		"namespace": namespace,
		"ids":       ids,
	})
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// Ping checks index reachability via describe_index_stats.
func (s *Store) Ping(ctx context.Context) error {
	resp, err := s.post(ctx, "/describe_index_stats", map[string]any{})
	if err != nil {
		return fmt.Errorf("%w: %w", storage.ErrUnreachable, err)
	}
	resp.Body.Close()
	return nil
}

// Close is a no-op; the store holds no persistent connections.
func (s *Store) Close() error {
	return nil
}
