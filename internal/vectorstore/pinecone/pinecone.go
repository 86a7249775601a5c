// Package pinecone stores segment vectors in a Pinecone serverless index
// through its REST API.
package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"pdfchat/internal/domain"
	"pdfchat/internal/vectorstore"
)

const (
	// DefaultControllerURL is the Pinecone control plane.
	DefaultControllerURL = "https://api.pinecone.io"
	apiVersion           = "2024-07"
	// upsertBatch stays under the per-request vector limit.
	upsertBatch = 100
)

var _ vectorstore.Storage = (*Storage)(nil)

// Storage is a minimal REST client to one Pinecone index. The index name is
// the collection; namespaces map onto Pinecone namespaces, "" being the default.
type Storage struct {
	controller   string
	apiKey       string
	index        string
	cloud        string
	region       string
	pollInterval time.Duration
	client       *http.Client

	host string
}

type Config struct {
	ControllerURL string
	APIKey        string
	Index         string
	Cloud         string
	Region        string
	Timeout       time.Duration
	PollInterval  time.Duration
}

func NewStorage(cfg Config) (*Storage, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("pinecone api key is empty")
	}
	if cfg.Index == "" {
		return nil, errors.New("pinecone index name is empty")
	}
	s := &Storage{
		controller:   strings.TrimRight(cfg.ControllerURL, "/"),
		apiKey:       cfg.APIKey,
		index:        cfg.Index,
		cloud:        cfg.Cloud,
		region:       cfg.Region,
		pollInterval: cfg.PollInterval,
		client:       &http.Client{Timeout: cfg.Timeout},
	}
	if s.controller == "" {
		s.controller = DefaultControllerURL
	}
	if s.cloud == "" {
		s.cloud = "aws"
	}
	if s.region == "" {
		s.region = "us-east-1"
	}
	if s.pollInterval == 0 {
		s.pollInterval = 2 * time.Second
	}
	if s.client.Timeout == 0 {
		s.client.Timeout = 30 * time.Second
	}
	return s, nil
}

type indexDescription struct {
	Name      string `json:"name"`
	Dimension int    `json:"dimension"`
	Host      string `json:"host"`
	Status    struct {
		Ready bool   `json:"ready"`
		State string `json:"state"`
	} `json:"status"`
}

// Init resolves the data plane host of the index, creating a cosine
// serverless index when none exists. An existing index must match dimension.
func (s *Storage) Init(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	desc, found, err := s.describe(ctx)
	if err != nil {
		return err
	}
	if !found {
		body := map[string]any{
			"name":      s.index,
			"dimension": dimension,
			"metric":    "cosine",
			"spec": map[string]any{
				"serverless": map[string]any{"cloud": s.cloud, "region": s.region},
			},
		}
		if err := s.expectOK(ctx, http.MethodPost, s.controller+"/indexes", body, &desc); err != nil {
			return err
		}
	}
	if desc.Dimension != 0 && desc.Dimension != dimension {
		return fmt.Errorf("pinecone index %s has dimension %d, vectors have %d", s.index, desc.Dimension, dimension)
	}
	for !desc.Status.Ready {
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for pinecone index %s: %w", s.index, ctx.Err())
		case <-time.After(s.pollInterval):
		}
		if desc, _, err = s.describe(ctx); err != nil {
			return err
		}
	}
	s.host = desc.Host
	if !strings.Contains(s.host, "://") {
		s.host = "https://" + s.host
	}
	return nil
}

func (s *Storage) describe(ctx context.Context) (indexDescription, bool, error) {
	var desc indexDescription
	url := s.controller + "/indexes/" + s.index
	status, err := s.do(ctx, http.MethodGet, url, nil, &desc)
	if err != nil {
		return desc, false, err
	}
	switch {
	case status == http.StatusNotFound:
		return desc, false, nil
	case status >= 300:
		return desc, false, fmt.Errorf("pinecone GET %s failed: status %d", url, status)
	}
	return desc, true, nil
}

func (s *Storage) Upsert(ctx context.Context, namespace string, segments []domain.Segment, vectors [][]float64) error {
	if len(segments) != len(vectors) {
		return errors.New("segments and vectors length mismatch")
	}
	if s.host == "" {
		return errors.New("pinecone index not initialised")
	}
	for start := 0; start < len(segments); start += upsertBatch {
		end := min(start+upsertBatch, len(segments))
		batch := make([]map[string]any, 0, end-start)
		for i := start; i < end; i++ {
			batch = append(batch, map[string]any{
				"id":     uuid.NewString(),
				"values": vectors[i],
				"metadata": map[string]any{
					"index":   segments[i].Index,
					"overlap": segments[i].Overlap,
					"text":    segments[i].Text,
				},
			})
		}
		body := map[string]any{"vectors": batch, "namespace": namespace}
		if err := s.expectOK(ctx, http.MethodPost, s.host+"/vectors/upsert", body, nil); err != nil {
			return err
		}
	}
	return nil
}

func (s *Storage) Search(ctx context.Context, namespace string, vector []float64, topK int) ([]domain.SearchResult, error) {
	if s.host == "" {
		return nil, errors.New("pinecone index not initialised")
	}
	if topK <= 0 {
		topK = 1
	}
	req := map[string]any{
		"namespace":       namespace,
		"vector":          vector,
		"topK":            topK,
		"includeMetadata": true,
	}
	var resp struct {
		Matches []struct {
			Score    float64        `json:"score"`
			Metadata map[string]any `json:"metadata"`
		} `json:"matches"`
	}
	if err := s.expectOK(ctx, http.MethodPost, s.host+"/query", req, &resp); err != nil {
		return nil, err
	}
	results := make([]domain.SearchResult, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		seg := domain.Segment{}
		if v, ok := m.Metadata["index"].(float64); ok {
			seg.Index = int(v)
		}
		if v, ok := m.Metadata["overlap"].(float64); ok {
			seg.Overlap = int(v)
		}
		if v, ok := m.Metadata["text"].(string); ok {
			seg.Text = v
		}
		results = append(results, domain.SearchResult{Segment: seg, Score: m.Score})
	}
	return results, nil
}

func (s *Storage) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

func (s *Storage) expectOK(ctx context.Context, method, url string, body, out any) error {
	status, err := s.do(ctx, method, url, body, out)
	if err != nil {
		return err
	}
	if status >= 300 {
		return fmt.Errorf("pinecone %s %s failed: status %d", method, url, status)
	}
	return nil
}

// do sends one request and decodes a 2xx response into out when out is non-nil.
func (s *Storage) do(ctx context.Context, method, url string, body, out any) (int, error) {
	var data []byte
	if body != nil {
		var err error
		if data, err = json.Marshal(body); err != nil {
			return 0, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", s.apiKey)
	req.Header.Set("X-Pinecone-API-Version", apiVersion)
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, err
		}
	}
	return resp.StatusCode, nil
}
