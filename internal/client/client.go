// Package client is a small REST client for the task API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kalpovskii/taskboard/internal/app/models"
)

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL    string
	user       string
	token      string
	userHeader string
	http       *http.Client
}

type Option func(*Client)

// WithUser sends user in the identity header on every request.
func WithUser(user, header string) Option {
	return func(c *Client) {
		c.user = user
		if header != "" {
			c.userHeader = header
		}
	}
}

func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// New returns a client for baseURL, which includes the API prefix, e.g.
// http://localhost:8080/api/v1.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userHeader: "X-User-ID",
		http:       &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) List(ctx context.Context, q models.ListQuery) (*models.TaskPage, error) {
	return c.listPage(ctx, "/tasks", q)
}

func (c *Client) ListMine(ctx context.Context, q models.ListQuery) (*models.TaskPage, error) {
	return c.listPage(ctx, "/tasks/my", q)
}

// ListAll follows pages until every task matching f has been read.
func (c *Client) ListAll(ctx context.Context, f models.Filter, mine bool) ([]models.Task, error) {
	path := "/tasks"
	if mine {
		path = "/tasks/my"
	}

	var tasks []models.Task
	q := models.ListQuery{Filter: f, Page: 1, Limit: models.MaxPageLimit}
	for {
		page, err := c.listPage(ctx, path, q)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, page.Tasks...)
		if len(page.Tasks) == 0 || len(tasks) >= page.Total {
			return tasks, nil
		}
		q.Page++
	}
}

func (c *Client) Get(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var task models.Task
	if err := c.do(ctx, http.MethodGet, "/tasks/"+id.String(), nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) Create(ctx context.Context, form models.TaskFormData) (*models.Task, error) {
	var task models.Task
	if err := c.do(ctx, http.MethodPost, "/tasks", form, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) Update(ctx context.Context, id uuid.UUID, patch models.TaskPatch) (*models.Task, error) {
	var task models.Task
	if err := c.do(ctx, http.MethodPut, "/tasks/"+id.String(), patch, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) Delete(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+id.String(), nil, nil)
}

func (c *Client) UpdateStatus(ctx context.Context, id uuid.UUID, status models.Status) (*models.Task, error) {
	var task models.Task
	body := map[string]models.Status{"status": status}
	if err := c.do(ctx, http.MethodPatch, "/tasks/"+id.String()+"/status", body, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) Assign(ctx context.Context, id uuid.UUID, assignee string) (*models.Task, error) {
	var task models.Task
	body := map[string]string{"assignee": assignee}
	if err := c.do(ctx, http.MethodPatch, "/tasks/"+id.String()+"/assign", body, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) AddTag(ctx context.Context, id uuid.UUID, tag string) (*models.Task, error) {
	var task models.Task
	body := map[string]string{"tag": tag}
	if err := c.do(ctx, http.MethodPost, "/tasks/"+id.String()+"/tags", body, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) RemoveTag(ctx context.Context, id uuid.UUID, tag string) (*models.Task, error) {
	var task models.Task
	path := "/tasks/" + id.String() + "/tags/" + url.PathEscape(tag)
	if err := c.do(ctx, http.MethodDelete, path, nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) listPage(ctx context.Context, path string, q models.ListQuery) (*models.TaskPage, error) {
	values := url.Values{}
	set := func(key, value string) {
		if value != "" {
			values.Set(key, value)
		}
	}
	set("status", string(q.Status))
	set("priority", string(q.Priority))
	set("assignee", q.Assignee)
	set("search", q.Search)
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	if encoded := values.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var page models.TaskPage
	if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	} else if c.user != "" {
		req.Header.Set(c.userHeader, c.user)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	data, _ := io.ReadAll(resp.Body)
	msg := strings.TrimSpace(string(data))
	if json.Unmarshal(data, &body) == nil {
		switch {
		case body.Message != "":
			msg = body.Message
		case body.Error != "":
			msg = body.Error
		}
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}
