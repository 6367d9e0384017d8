package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/camden-git/cropsysbackend/catalog"
)

// APISource implements Source against a remote records REST service.
type APISource struct {
	baseURL string
	client  *http.Client
}

// NewAPISource builds an API-backed record source. A nil client falls back to
// a default with a request timeout.
func NewAPISource(baseURL string, client *http.Client) *APISource {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &APISource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// FetchAll issues the full-collection fetch with a cache-busting timestamp
// parameter so every hierarchy rebuild sees a fresh read.
func (s *APISource) FetchAll(ctx context.Context) ([]catalog.Image, error) {
	reqURL := fmt.Sprintf("%s/images?ts=%d", s.baseURL, time.Now().UnixMilli())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build fetch request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image records: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, "fetch image records"); err != nil {
		return nil, err
	}

	var raws []RawRecord
	if err := json.NewDecoder(resp.Body).Decode(&raws); err != nil {
		return nil, fmt.Errorf("failed to decode image records: %w", err)
	}
	return NormalizeAll(raws), nil
}

// SetVerified patches the verified flag for all ids in one batched request.
func (s *APISource) SetVerified(ctx context.Context, ids []uint, verified bool) error {
	payload := struct {
		IDs      []uint `json:"ids"`
		Verified bool   `json:"verified"`
	}{IDs: ids, Verified: verified}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode batch update payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, s.baseURL+"/images/batch", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build batch update request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to batch update records: %w", err)
	}
	defer resp.Body.Close()

	return checkStatus(resp, "batch update records")
}

// Delete removes one record; the backing service only exposes per-resource
// deletion.
func (s *APISource) Delete(ctx context.Context, id uint) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, fmt.Sprintf("%s/images/%d", s.baseURL, id), nil)
	if err != nil {
		return fmt.Errorf("failed to build delete request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to delete record %d: %w", id, err)
	}
	defer resp.Body.Close()

	return checkStatus(resp, fmt.Sprintf("delete record %d", id))
}

// FetchImageData downloads one image's bytes. Relative URLs resolve against
// the source base URL.
func (s *APISource) FetchImageData(ctx context.Context, img catalog.Image) ([]byte, error) {
	target := img.URL
	if target == "" {
		return nil, fmt.Errorf("image %d has no URL", img.ID)
	}
	if strings.HasPrefix(target, "/") {
		target = s.baseURL + target
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build image download request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image %d: %w", img.ID, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, fmt.Sprintf("download image %d", img.ID)); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image %d body: %w", img.ID, err)
	}
	return data, nil
}

func checkStatus(resp *http.Response, action string) error {
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%s: %w", action, ErrUnauthorized)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s: unexpected status %s", action, resp.Status)
	}
	return nil
}
