package httpstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/smokerelay/smokerelay/internal/logger"
	"github.com/smokerelay/smokerelay/internal/model"
)

var _ model.ConfigStore = (*Store)(nil)

// Store reads and writes the config document against an HTTP key-value
// document store: GET returns the document, PUT replaces it whole.
type Store struct {
	uri        string
	httpClient *http.Client
	logger     *logger.Logger
}

// New creates a Store for the document at baseURL/key.
func New(baseURL, key string, httpClient *http.Client, logger *logger.Logger) *Store {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Store{
		uri:        strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(key, "/"),
		httpClient: httpClient,
		logger:     logger.Component("httpstore"),
	}
}

// Get fetches the current document. Any transport, status or parse failure
// surfaces as ErrConfigUnavailable so callers never see partial data.
func (s *Store) Get(ctx context.Context) (model.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.uri, nil)
	if err != nil {
		return model.Document{}, fmt.Errorf("%w: failed to build request: %w", model.ErrConfigUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return model.Document{}, fmt.Errorf("%w: %w", model.ErrConfigUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.Document{}, fmt.Errorf("%w: failed to read response: %w", model.ErrConfigUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return model.Document{}, fmt.Errorf("%w: status=%d message=%s", model.ErrConfigUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var doc model.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return model.Document{}, fmt.Errorf("%w: malformed document: %w", model.ErrConfigUnavailable, err)
	}

	s.logger.Debug("Config store: document fetched", "users", len(doc.Users))
	return doc, nil
}

// Put replaces the whole document.
func (s *Store) Put(ctx context.Context, doc model.Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.uri, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call config store: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("config store rejected write: status=%d message=%s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	s.logger.Debug("Config store: document written", "users", len(doc.Users))
	return nil
}
