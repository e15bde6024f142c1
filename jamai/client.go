package jamai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// DefaultBaseURL is the hosted service endpoint; override with JAMAI_BASE_URL
// for self-hosted deployments and tests.
const DefaultBaseURL = "https://api.jamaibase.com"

type TableKind string

const (
	TableAction    TableKind = "action"
	TableChat      TableKind = "chat"
	TableKnowledge TableKind = "knowledge"
)

// Client talks to the conversational-table service for a single credential
// bundle. Clients are cheap and built fresh per request; no shared state.
type Client struct {
	APIKey     string
	ProjectID  string
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(apiKey string, projectID string) *Client {
	baseURL := os.Getenv("JAMAI_BASE_URL")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		APIKey:    apiKey,
		ProjectID: projectID,
		BaseURL:   baseURL,
		HTTPClient: &http.Client{
			// Generations against large action tables can take well over a
			// minute; the cap exists so a dead upstream cannot hang a
			// request forever.
			Timeout: 120 * time.Second,
		},
	}
}

// APIError is a non-2xx answer from the service.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("jamai: %s (status %d)", e.Message, e.Status)
}

type RowAddResponse struct {
	Rows []Row `json:"rows"`
}

type RowListResponse struct {
	Items  []Row `json:"items"`
	Offset int   `json:"offset"`
	Limit  int   `json:"limit"`
	Total  int   `json:"total"`
}

type TableMeta struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	UpdatedAt string `json:"updated_at"`
	NumRows   int    `json:"num_rows"`
}

type tableListResponse struct {
	Items []TableMeta `json:"items"`
}

// AddRow inserts a single row and returns the echoed row with its computed
// columns filled in. Streaming is never requested.
func (c *Client) AddRow(ctx context.Context, kind TableKind, tableID string, data map[string]interface{}) (*RowAddResponse, error) {
	payload := map[string]interface{}{
		"table_id": tableID,
		"data":     []map[string]interface{}{data},
		"stream":   false,
	}

	completion := &RowAddResponse{}
	err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/api/v1/gen_tables/%s/rows/add", kind), payload, completion)
	if err != nil {
		return nil, err
	}
	return completion, nil
}

// ListRows fetches one page of rows for a table.
func (c *Client) ListRows(ctx context.Context, kind TableKind, tableID string, offset int, limit int) (*RowListResponse, error) {
	endpoint := fmt.Sprintf("/api/v1/gen_tables/%s/%s/rows?offset=%d&limit=%d",
		kind, url.PathEscape(tableID), offset, limit)

	page := &RowListResponse{}
	err := c.doJSON(ctx, http.MethodGet, endpoint, nil, page)
	if err != nil {
		return nil, err
	}
	return page, nil
}

// ListTables enumerates the tables of a kind within the project.
func (c *Client) ListTables(ctx context.Context, kind TableKind) ([]TableMeta, error) {
	listing := &tableListResponse{}
	err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/v1/gen_tables/%s", kind), nil, listing)
	if err != nil {
		return nil, err
	}
	return listing.Items, nil
}

// DuplicateTable clones src as dst, optionally carrying data over and
// registering dst as a child of src. Used for per-session table isolation.
func (c *Client) DuplicateTable(ctx context.Context, kind TableKind, srcTableID string, dstTableID string, includeData bool, createAsChild bool) error {
	endpoint := fmt.Sprintf("/api/v1/gen_tables/%s/duplicate/%s/%s?include_data=%s&create_as_child=%s",
		kind, url.PathEscape(srcTableID), url.PathEscape(dstTableID),
		strconv.FormatBool(includeData), strconv.FormatBool(createAsChild))

	return c.doJSON(ctx, http.MethodPost, endpoint, nil, nil)
}

func (c *Client) DeleteTable(ctx context.Context, kind TableKind, tableID string) error {
	endpoint := fmt.Sprintf("/api/v1/gen_tables/%s/%s", kind, url.PathEscape(tableID))
	return c.doJSON(ctx, http.MethodDelete, endpoint, nil, nil)
}

// EmbedFile uploads a local file into a knowledge table. The service infers
// the document type from the filename extension, so callers must preserve it.
func (c *Client) EmbedFile(ctx context.Context, tableID string, filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return err
	}
	if _, err = io.Copy(part, file); err != nil {
		return err
	}
	if err = writer.WriteField("table_id", tableID); err != nil {
		return err
	}
	if err = writer.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/v1/gen_tables/knowledge/embed_file", &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.send(req, nil)
}

func (c *Client) doJSON(ctx context.Context, method string, endpoint string, payload interface{}, out interface{}) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+endpoint, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out interface{}) error {
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("X-PROJECT-ID", c.ProjectID)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(raw)}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("jamai: malformed response: %w", err)
		}
	}
	return nil
}

func errorMessage(raw []byte) string {
	var payload struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Detail != "" {
			return payload.Detail
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return string(raw)
}
