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
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

type Client struct {
	baseURL *url.URL
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client (30s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must be http or https", baseURL)
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *Client) Login(ctx context.Context, username, password string) (Credential, error) {
	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return Credential{}, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/login", Credential{}, bytes.NewReader(body))
	if err != nil {
		return Credential{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var cred Credential
	if err := c.do(req, &cred); err != nil {
		return Credential{}, err
	}

	return cred, nil
}

func (c *Client) Logout(ctx context.Context, cred Credential) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/api/logout", cred, nil)
	if err != nil {
		return err
	}

	return c.do(req, nil)
}

// Upload sends r as a multipart "file" part named filename and returns the
// computed statistics.
func (c *Client) Upload(ctx context.Context, cred Credential, filename string, r io.Reader) (Upload, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile("file", filename)
		if err == nil {
			_, err = io.Copy(part, r)
		}
		if err == nil {
			err = mw.Close()
		}
		_ = pw.CloseWithError(err)
	}()

	req, err := c.newRequest(ctx, http.MethodPost, "/api/upload", cred, pr)
	if err != nil {
		_ = pr.Close()
		return Upload{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out Upload
	if err := c.do(req, &out); err != nil {
		_ = pr.Close()
		return Upload{}, err
	}

	return out, nil
}

// History lists the caller's uploads, newest first.
func (c *Client) History(ctx context.Context, cred Credential) ([]Upload, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/history", cred, nil)
	if err != nil {
		return nil, err
	}

	var out []Upload
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Upload{}
	}

	return out, nil
}

func (c *Client) Get(ctx context.Context, cred Credential, id int64) (Upload, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/uploads/"+strconv.FormatInt(id, 10), cred, nil)
	if err != nil {
		return Upload{}, err
	}

	var out Upload
	if err := c.do(req, &out); err != nil {
		return Upload{}, err
	}

	return out, nil
}

// Download copies the stored CSV of upload id into w and returns the number of
// bytes written.
func (c *Client) Download(ctx context.Context, cred Credential, id int64, w io.Writer) (int64, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/uploads/"+strconv.FormatInt(id, 10)+"/file", cred, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if err := checkStatus(resp); err != nil {
		return 0, err
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("copying file: %w", err)
	}

	return n, nil
}

// newRequest refuses to send a credential that has already expired; the
// caller gets ErrUnauthorized and should log in again.
func (c *Client) newRequest(ctx context.Context, method, path string, cred Credential, body io.Reader) (*http.Request, error) {
	if cred.Token != "" && !cred.Valid(time.Now()) {
		return nil, ErrUnauthorized
	}

	u := c.baseURL.JoinPath(path)

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if cred.Token != "" {
		req.Header.Set("Authorization", "Bearer "+cred.Token)
	}

	return req, nil
}

// do sends req and decodes the "data" member of the envelope into out.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if err := checkStatus(resp); err != nil {
		return err
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	env := envelope[json.RawMessage]{}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	if len(env.Data) == 0 {
		return errors.New("response has no data")
	}

	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decoding data: %w", err)
	}

	return nil
}

// checkStatus maps 401 to ErrUnauthorized and any other non-2xx answer to an
// *APIError built from the error envelope.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}

	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return nil
	}

	apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	var body errorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Message != "" {
		apiErr.Message = body.Message
		apiErr.Detail = body.Error.Detail
	}

	return apiErr
}
