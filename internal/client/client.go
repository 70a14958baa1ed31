// Package client talks to the remote job sponsorship service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/amishk599/sponsorscout/internal/model"
)

const (
	uploadPath  = "/upload"
	queryPath   = "/query"
	uploadField = "file"

	// maxErrorDetail bounds how much of a failed response body ends up in an error.
	maxErrorDetail = 512
)

// Ensure Client implements model.JobService.
var _ model.JobService = (*Client)(nil)

// Client calls the upload and query endpoints of the sponsorship service.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL, userAgent string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: httpClient,
	}
}

type queryRequest struct {
	Text string `json:"text"`
}

// errorBody is the error shape the service uses for non-2xx responses.
// Nothing relies on it being present.
type errorBody struct {
	Detail string `json:"detail"`
}

// Upload sends the raw bytes of file as multipart field "file".
func (c *Client) Upload(ctx context.Context, file model.FileRef) (model.UploadResponse, error) {
	body, contentType, err := multipartBody(file)
	if err != nil {
		return model.UploadResponse{}, &model.TransportError{Op: "upload", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+uploadPath, body)
	if err != nil {
		return model.UploadResponse{}, &model.TransportError{Op: "upload", Err: err}
	}
	req.Header.Set("Content-Type", contentType)

	var out model.UploadResponse
	if err := c.do(req, "upload", uploadSchema, &out); err != nil {
		return model.UploadResponse{}, err
	}
	return out, nil
}

// Query asks the service a free-text question about the uploaded listings.
func (c *Client) Query(ctx context.Context, text string) (model.QueryResponse, error) {
	payload, err := json.Marshal(queryRequest{Text: text})
	if err != nil {
		return model.QueryResponse{}, fmt.Errorf("marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+queryPath, bytes.NewReader(payload))
	if err != nil {
		return model.QueryResponse{}, &model.TransportError{Op: "query", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	var out model.QueryResponse
	if err := c.do(req, "query", querySchema, &out); err != nil {
		return model.QueryResponse{}, err
	}
	return out, nil
}

// do sends req and decodes a 2xx body into out after validating it against schema.
func (c *Client) do(req *http.Request, op string, schema *jsonschema.Schema, out any) error {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &model.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &model.TransportError{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &model.HTTPError{StatusCode: resp.StatusCode, Err: errorDetail(data)}
	}

	if err := validateBody(schema, data); err != nil {
		return &model.DecodeError{Op: op, Err: err}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &model.DecodeError{Op: op, Err: err}
	}
	return nil
}

func multipartBody(file model.FileRef) (io.Reader, string, error) {
	f, err := os.Open(file.Path)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", file.Name, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(uploadField, file.Name)
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("read %s: %w", file.Name, err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

// errorDetail extracts a short description from a failed response body.
func errorDetail(data []byte) error {
	var eb errorBody
	if err := json.Unmarshal(data, &eb); err == nil && eb.Detail != "" {
		return errors.New(eb.Detail)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil
	}
	if len(text) > maxErrorDetail {
		text = text[:maxErrorDetail]
	}
	return errors.New(text)
}
