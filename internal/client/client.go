package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"strings"

	"postboard/internal/post"
)

// Client talks to the posts API. It sets no timeout of its own; callers bound
// requests through ctx.
type Client struct {
	base  string
	token string
	hc    *http.Client
}

type Option func(*Client)

// WithToken sends a bearer token on every request.
func WithToken(tok string) Option { return func(c *Client) { c.token = tok } }

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.hc = hc } }

func New(base string, opts ...Option) *Client {
	if base == "" {
		base = getenv("POSTBOARD_URL", "http://localhost:3000")
	}
	c := &Client{base: strings.TrimRight(base, "/"), hc: &http.Client{}}
	for _, o := range opts {
		o(c)
	}
	return c
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
	Reason  string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("postboard: status %d", e.Status)
	}
	return fmt.Sprintf("postboard: status %d: %s", e.Status, e.Message)
}

func (c *Client) List(ctx context.Context, f post.Filter) ([]post.Post, error) {
	u := c.base + "/api/posts"
	if q := f.Query().Encode(); q != "" {
		u += "?" + q
	}
	var out []post.Post
	if err := c.do(ctx, http.MethodGet, u, nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns nil without error when the id is unknown.
func (c *Client) Get(ctx context.Context, id string) (*post.Post, error) {
	var out *post.Post
	if err := c.do(ctx, http.MethodGet, c.postURL(id), nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Create(ctx context.Context, in post.Input) (*post.Post, error) {
	var out *post.Post
	if err := c.doJSON(ctx, http.MethodPost, c.base+"/api/posts", in, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update returns nil without error when the id is unknown.
func (c *Client) Update(ctx context.Context, id string, req post.UpdateReq) (*post.Post, error) {
	var out *post.Post
	if err := c.doJSON(ctx, http.MethodPut, c.postURL(id), req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.postURL(id), nil, "", nil)
}

// Upload sends one image as the multipart field "image" and returns the
// stored URL.
func (c *Client) Upload(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	var out struct {
		ImageURL string `json:"imageUrl"`
	}
	if err := c.do(ctx, http.MethodPost, c.base+"/api/upload", &buf, mw.FormDataContentType(), &out); err != nil {
		return "", err
	}
	if out.ImageURL == "" {
		return "", fmt.Errorf("postboard: upload returned no imageUrl")
	}
	return out.ImageURL, nil
}

func (c *Client) postURL(id string) string {
	return c.base + "/api/posts/" + url.PathEscape(id)
}

func (c *Client) doJSON(ctx context.Context, method, u string, in, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return c.do(ctx, method, u, bytes.NewReader(b), "application/json", out)
}

func (c *Client) do(ctx context.Context, method, u string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(resp *http.Response) error {
	e := &APIError{Status: resp.StatusCode}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body struct {
		Error  string `json:"error"`
		Reason string `json:"reason"`
	}
	if json.Unmarshal(b, &body) == nil && body.Error != "" {
		e.Message, e.Reason = body.Error, body.Reason
	} else {
		e.Message = strings.TrimSpace(string(b))
	}
	return e
}
