// Package client talks to a Glint server over GraphQL and the REST preview
// endpoints.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dixieflatline76/Glint/pkg/codec"
	"github.com/dixieflatline76/Glint/pkg/crop"
	"github.com/dixieflatline76/Glint/pkg/gallery"
	"github.com/dixieflatline76/Glint/pkg/screensaver"
)

// MaxListLimit caps ListUploads regardless of the requested limit.
const MaxListLimit = 100

// ErrServer is wrapped by every non-2xx HTTP response.
var ErrServer = errors.New("server error")

// GraphQLError carries the messages of a GraphQL response that reported
// errors.
type GraphQLError struct {
	Messages []string
}

func (e *GraphQLError) Error() string {
	return "graphql: " + strings.Join(e.Messages, "; ")
}

// Upload is an upload as listed by the server.
type Upload struct {
	UUID       string
	Name       string
	Message    string
	Public     bool
	Display    codec.DisplayFormat
	UploadedAt time.Time
	PNG        string // data URL
}

// Client is a Glint API client. The zero value is not usable; use New.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the server at baseURL. A nil httpClient gets a
// default with a 30 second timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// BaseURL returns the server URL the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health returns the server version.
func (c *Client) Health(ctx context.Context) (string, error) {
	var body struct {
		Status  string `json:"status"`
		Version string `json:"version"`
	}
	data, _, err := c.do(ctx, http.MethodGet, "/health", "", nil)
	if err != nil {
		return "", err
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return "", fmt.Errorf("decoding health: %w", err)
	}
	return body.Version, nil
}

const uploadFields = "uuid name message public display uploadedAt png"

type wireUpload struct {
	UUID       string  `json:"uuid"`
	Name       *string `json:"name"`
	Message    *string `json:"message"`
	Public     bool    `json:"public"`
	Display    string  `json:"display"`
	UploadedAt string  `json:"uploadedAt"`
	PNG        *string `json:"png"`
}

func (w wireUpload) upload() (Upload, error) {
	at, err := time.Parse(gallery.TimestampLayout, w.UploadedAt)
	if err != nil {
		return Upload{}, fmt.Errorf("parsing uploadedAt %q: %w", w.UploadedAt, err)
	}
	u := Upload{
		UUID:       w.UUID,
		Public:     w.Public,
		Display:    codec.DisplayFormat(w.Display),
		UploadedAt: at.UTC(),
	}
	if w.Name != nil {
		u.Name = *w.Name
	}
	if w.Message != nil {
		u.Message = *w.Message
	}
	if w.PNG != nil {
		u.PNG = *w.PNG
	}
	return u, nil
}

// CreateUpload submits an upload.
func (c *Client) CreateUpload(ctx context.Context, in gallery.UploadInput) (Upload, error) {
	var out struct {
		CreateUpload wireUpload `json:"createUpload"`
	}
	q := "mutation Create($upload: UploadInput!) { createUpload(upload: $upload) { " + uploadFields + " } }"
	if err := c.graphql(ctx, q, map[string]interface{}{"upload": in}, &out); err != nil {
		return Upload{}, err
	}
	return out.CreateUpload.upload()
}

// ListUploads returns a page of public uploads, newest first.
func (c *Client) ListUploads(ctx context.Context, limit, offset int) ([]Upload, error) {
	if limit <= 0 || limit > MaxListLimit {
		limit = MaxListLimit
	}
	var out struct {
		ListUploads []wireUpload `json:"listUploads"`
	}
	q := "query List($limit: Int, $offset: Int) { listUploads(limit: $limit, offset: $offset) { " + uploadFields + " } }"
	vars := map[string]interface{}{"limit": limit, "offset": max(offset, 0)}
	if err := c.graphql(ctx, q, vars, &out); err != nil {
		return nil, err
	}

	uploads := make([]Upload, 0, len(out.ListUploads))
	for _, w := range out.ListUploads {
		u, err := w.upload()
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, u)
	}
	return uploads, nil
}

// ScreensaverStatus returns the slideshow state.
func (c *Client) ScreensaverStatus(ctx context.Context) (screensaver.State, error) {
	var out struct {
		ScreensaverStatus screensaver.State `json:"screensaverStatus"`
	}
	q := "{ screensaverStatus { isRunning currentIndex uploadCount intervalSeconds } }"
	if err := c.graphql(ctx, q, nil, &out); err != nil {
		return screensaver.State{}, err
	}
	return out.ScreensaverStatus, nil
}

// Next advances the slideshow.
func (c *Client) Next(ctx context.Context) error { return c.mutate(ctx, "nextImage") }

// Previous steps the slideshow back.
func (c *Client) Previous(ctx context.Context) error { return c.mutate(ctx, "previousImage") }

// Pause stops automatic advancing.
func (c *Client) Pause(ctx context.Context) error { return c.mutate(ctx, "pauseScreensaver") }

// Resume restarts automatic advancing.
func (c *Client) Resume(ctx context.Context) error { return c.mutate(ctx, "resumeScreensaver") }

// SetInterval changes the slideshow interval.
func (c *Client) SetInterval(ctx context.Context, seconds int) error {
	return c.graphql(ctx, "mutation Interval($s: Int!) { setScreensaverInterval(seconds: $s) }",
		map[string]interface{}{"s": seconds}, nil)
}

// TogglePause pauses a running slideshow or resumes a paused one.
func (c *Client) TogglePause(ctx context.Context) (bool, error) {
	st, err := c.ScreensaverStatus(ctx)
	if err != nil {
		return false, err
	}
	if st.IsRunning {
		return false, c.Pause(ctx)
	}
	return true, c.Resume(ctx)
}

func (c *Client) mutate(ctx context.Context, field string) error {
	return c.graphql(ctx, "mutation { "+field+" }", nil, nil)
}

// Preview asks the server to render a packed monochrome frame.
func (c *Client) Preview(ctx context.Context, image []byte) ([]byte, error) {
	data, _, err := c.do(ctx, http.MethodPost, "/api/v1/preview", "application/octet-stream", image)
	return data, err
}

// PreviewRGB asks the server to render a 320x240 JPEG.
func (c *Client) PreviewRGB(ctx context.Context, image []byte) ([]byte, error) {
	data, _, err := c.do(ctx, http.MethodPost, "/api/v1/preview-rgb", "application/octet-stream", image)
	return data, err
}

// Suggest asks the server for a crop of image suited to display.
func (c *Client) Suggest(ctx context.Context, image []byte, display codec.DisplayFormat) (crop.Rect, error) {
	path := "/api/v1/suggest?display=" + url.QueryEscape(display.String())
	data, _, err := c.do(ctx, http.MethodPost, path, "application/octet-stream", image)
	if err != nil {
		return crop.Rect{}, err
	}
	var r crop.Rect
	if err := json.Unmarshal(data, &r); err != nil {
		return crop.Rect{}, fmt.Errorf("decoding suggestion: %w", err)
	}
	return r, nil
}

// Thumbnail fetches the browser-viewable image of an upload.
func (c *Client) Thumbnail(ctx context.Context, id string) ([]byte, string, error) {
	return c.do(ctx, http.MethodGet, "/api/v1/uploads/"+url.PathEscape(id)+"/thumbnail", "", nil)
}

func (c *Client) graphql(ctx context.Context, query string, vars map[string]interface{}, out interface{}) error {
	body, err := json.Marshal(map[string]interface{}{
		"query":     query,
		"variables": vars,
	})
	if err != nil {
		return fmt.Errorf("encoding graphql request: %w", err)
	}

	data, _, err := c.do(ctx, http.MethodPost, "/graphql", "application/json", body)
	if err != nil {
		return err
	}

	var resp struct {
		Data   json.RawMessage `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return fmt.Errorf("decoding graphql response: %w", err)
	}
	if len(resp.Errors) > 0 {
		gqlErr := &GraphQLError{}
		for _, e := range resp.Errors {
			gqlErr.Messages = append(gqlErr.Messages, e.Message)
		}
		return gqlErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("decoding graphql data: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body []byte) ([]byte, string, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, "", err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("%w: %s %s: %s: %s", ErrServer, method, path, resp.Status, strings.TrimSpace(string(data)))
	}
	return data, resp.Header.Get("Content-Type"), nil
}
