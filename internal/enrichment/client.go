package enrichment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/corpix/uarand"
)

// EnrichmentPath is the backend route that computes enrichment for a protein list.
const EnrichmentPath = "/api/subgraph/enrichment"

// Client requests functional enrichment from the backend.
type Client struct {
	baseURL *url.URL
	client  *http.Client
}

func NewClient(baseURL string, hc *http.Client) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("enrichment backend must be http(s), got %q", baseURL)
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{baseURL: u, client: hc}, nil
}

// FetchTerms posts the proteins and species as a multipart form, the same way the
// frontend does, and decodes the returned terms.
func (c *Client) FetchTerms(ctx context.Context, proteins []string, speciesID string) ([]Term, error) {
	if len(proteins) == 0 {
		return nil, errors.New("no proteins to enrich")
	}

	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)
	if err := form.WriteField("proteins", strings.Join(proteins, ",")); err != nil {
		return nil, err
	}
	if err := form.WriteField("species_id", speciesID); err != nil {
		return nil, err
	}
	if err := form.Close(); err != nil {
		return nil, err
	}

	endpoint := c.baseURL.JoinPath(EnrichmentPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("User-Agent", uarand.GetRandom())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("got non-OK status code: %v: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}

	terms := []Term{}
	if err := json.NewDecoder(resp.Body).Decode(&terms); err != nil {
		return nil, fmt.Errorf("decoding enrichment terms: %w", err)
	}
	return terms, nil
}
