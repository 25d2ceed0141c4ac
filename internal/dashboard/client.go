package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type User struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber"`
	Grade       string    `json:"grade"`
	Year        string    `json:"year"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Entry struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Subject    string    `json:"subject"`
	Grade      string    `json:"grade"`
	Attendance int       `json:"attendance"`
	Comments   string    `json:"comments"`
	CreatedAt  time.Time `json:"createdAt"`
}

// UserForm carries the fields submitted by the registration and edit forms.
type UserForm struct {
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	Password    string `json:"password,omitempty"`
	PhoneNumber string `json:"phoneNumber"`
	Grade       string `json:"grade"`
	Year        string `json:"year"`
}

type Session struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
}

// APIError is a non-2xx answer from the records API.
type APIError struct {
	Status  int
	Message string            `json:"error"`
	Fields  map[string]string `json:"fields"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Client talks to the records API. baseURL includes the /api prefix.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return NewClientWithHTTP(baseURL, &http.Client{
		Timeout: 10 * time.Second,
	})
}

func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.do(ctx, http.MethodGet, "/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// FindUser looks a user up in the list; the API has no single-user read.
func (c *Client) FindUser(ctx context.Context, id string) (*User, error) {
	users, err := c.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, &APIError{Status: http.StatusNotFound, Message: "user not found"}
}

func (c *Client) Register(ctx context.Context, form UserForm) error {
	return c.do(ctx, http.MethodPost, "/users/register", form, nil)
}

// Login authenticates on behalf of the browser at clientAddr, which is sent
// as X-Forwarded-For so the API rate limits each browser separately.
func (c *Client) Login(ctx context.Context, email, password, clientAddr string) (*Session, error) {
	var session Session
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/users/login", body, &session, withForwardedFor(clientAddr)); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Client) UpdateUser(ctx context.Context, token, id string, form UserForm) (*User, error) {
	form.Email, form.Password = "", ""

	var updated User
	if err := c.do(ctx, http.MethodPut, "/users/"+id, form, &updated, withBearer(token)); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteUser(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/users/"+id, nil, nil, withBearer(token))
}

func (c *Client) ListEntries(ctx context.Context, userID string) ([]Entry, error) {
	var entries []Entry
	if err := c.do(ctx, http.MethodGet, "/users/"+userID+"/table", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

type requestOption func(*http.Request)

func withBearer(token string) requestOption {
	return func(req *http.Request) {
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
}

func withForwardedFor(addr string) requestOption {
	return func(req *http.Request) {
		if addr != "" {
			req.Header.Set("X-Forwarded-For", addr)
		}
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}, opts ...requestOption) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		if apiErr.Message == "" {
			apiErr.Message = strings.ToLower(http.StatusText(resp.StatusCode))
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
