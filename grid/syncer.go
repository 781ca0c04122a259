package grid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/annazecevic/catalog-service/validation"
)

// SyncError is a non-2xx answer from the catalog.
type SyncError struct {
	Status  int
	Message string
	Errors  validation.Errors
}

func (e *SyncError) Error() string {
	if len(e.Errors) > 0 {
		return fmt.Sprintf("catalog answered %d: %s", e.Status, e.Errors.Error())
	}
	if e.Message != "" {
		return fmt.Sprintf("catalog answered %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("catalog answered %d", e.Status)
}

// HTTPSyncer reads and writes one entity kind through the catalog's
// programmatic request mode.
type HTTPSyncer struct {
	baseURL string
	kind    string
	plural  string
	token   string
	client  *http.Client
}

func NewHTTPSyncer(baseURL, kind, plural string, timeout time.Duration) *HTTPSyncer {
	return &HTTPSyncer{
		baseURL: strings.TrimRight(baseURL, "/"),
		kind:    kind,
		plural:  plural,
		client:  &http.Client{Timeout: timeout},
	}
}

// WithToken sends token as a bearer credential on every request.
func (s *HTTPSyncer) WithToken(token string) *HTTPSyncer {
	s.token = token
	return s
}

// Fetch lists every entity of the kind, ready for Grid.Load.
func (s *HTTPSyncer) Fetch(ctx context.Context) ([]map[string]any, error) {
	var out map[string]json.RawMessage
	if err := s.do(ctx, http.MethodGet, "/catalog/"+s.plural, nil, &out); err != nil {
		return nil, err
	}
	var records []map[string]any
	if err := json.Unmarshal(out[s.kind+"_list"], &records); err != nil {
		return nil, fmt.Errorf("catalog returned no %s list: %w", s.kind, err)
	}
	return records, nil
}

func (s *HTTPSyncer) Create(ctx context.Context, values map[string]any) (string, error) {
	var out map[string]json.RawMessage
	if err := s.do(ctx, http.MethodPost, "/catalog/"+s.kind+"/create", values, &out); err != nil {
		return "", err
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(out[s.kind], &created); err != nil || created.ID == "" {
		return "", fmt.Errorf("catalog returned no %s id", s.kind)
	}
	return created.ID, nil
}

func (s *HTTPSyncer) Update(ctx context.Context, id string, values map[string]any) error {
	return s.do(ctx, http.MethodPost, "/catalog/"+s.kind+"/"+id+"/update", values, nil)
}

func (s *HTTPSyncer) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("catalog unavailable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload struct {
			Error  string            `json:"error"`
			Errors validation.Errors `json:"errors"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		return &SyncError{Status: resp.StatusCode, Message: payload.Error, Errors: payload.Errors}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
