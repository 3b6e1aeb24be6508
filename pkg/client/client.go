package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/skillpath/interview-engine/internal/models"
)

// Client is a Go SDK for the interview-engine API
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new interview-engine client. The token is the
// caller's platform JWT, passed through as a Bearer credential.
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ListOptions contains options for listing sessions
type ListOptions struct {
	UserID string
	Status string
	Limit  int
	Offset int
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// CreateSession creates a new interview session
func (c *Client) CreateSession(ctx context.Context, req models.CreateSessionRequest) (*models.InterviewSession, error) {
	var session models.InterviewSession
	if err := c.call(ctx, "POST", "/api/v1/interviews", req, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// GetSession retrieves a session by ID
func (c *Client) GetSession(ctx context.Context, id string) (*models.InterviewSession, error) {
	var session models.InterviewSession
	if err := c.call(ctx, "GET", fmt.Sprintf("/api/v1/interviews/%s", id), nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// ListSessions retrieves the caller's sessions
func (c *Client) ListSessions(ctx context.Context, opts ListOptions) ([]*models.InterviewSession, error) {
	query := url.Values{}
	if opts.UserID != "" {
		query.Set("user_id", opts.UserID)
	}
	if opts.Status != "" {
		query.Set("status", opts.Status)
	}
	if opts.Limit > 0 {
		query.Set("limit", fmt.Sprintf("%d", opts.Limit))
	}
	if opts.Offset > 0 {
		query.Set("offset", fmt.Sprintf("%d", opts.Offset))
	}

	path := "/api/v1/interviews"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var data struct {
		Sessions []*models.InterviewSession `json:"sessions"`
		Total    int                        `json:"total"`
	}
	if err := c.call(ctx, "GET", path, nil, &data); err != nil {
		return nil, err
	}
	return data.Sessions, nil
}

// UpdateSession patches a session's mutable fields
func (c *Client) UpdateSession(ctx context.Context, id string, req models.UpdateSessionRequest) (*models.InterviewSession, error) {
	var session models.InterviewSession
	if err := c.call(ctx, "PATCH", fmt.Sprintf("/api/v1/interviews/%s", id), req, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// AssignInterviewer attaches an interviewer to a scheduled session
func (c *Client) AssignInterviewer(ctx context.Context, id, interviewerID string) (*models.InterviewSession, error) {
	req := models.AssignRequest{InterviewerID: interviewerID}
	var session models.InterviewSession
	if err := c.call(ctx, "POST", fmt.Sprintf("/api/v1/interviews/%s/assign", id), req, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// TransitionSession moves a session to a new lifecycle status
func (c *Client) TransitionSession(ctx context.Context, id string, status models.SessionStatus) (*models.InterviewSession, error) {
	req := models.TransitionRequest{Status: status}
	var session models.InterviewSession
	if err := c.call(ctx, "POST", fmt.Sprintf("/api/v1/interviews/%s/status", id), req, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// SubmitFeedback appends a feedback record to a session
func (c *Client) SubmitFeedback(ctx context.Context, sessionID string, req models.CreateFeedbackRequest) (*models.InterviewFeedback, error) {
	var feedback models.InterviewFeedback
	if err := c.call(ctx, "POST", fmt.Sprintf("/api/v1/interviews/%s/feedback", sessionID), req, &feedback); err != nil {
		return nil, err
	}
	return &feedback, nil
}

// GetSessionFeedback retrieves both feedback generations of a session
func (c *Client) GetSessionFeedback(ctx context.Context, sessionID string) (*models.SessionFeedbackView, error) {
	var view models.SessionFeedbackView
	if err := c.call(ctx, "GET", fmt.Sprintf("/api/v1/interviews/%s/feedback", sessionID), nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// GetSessionSummary retrieves the aggregate summary of a session
func (c *Client) GetSessionSummary(ctx context.Context, sessionID string) (*models.SessionSummary, error) {
	var summary models.SessionSummary
	if err := c.call(ctx, "GET", fmt.Sprintf("/api/v1/interviews/%s/summary", sessionID), nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// GetUserSummary retrieves a user's cross-session feedback summary
func (c *Client) GetUserSummary(ctx context.Context, userID string) (*models.UserSummary, error) {
	var summary models.UserSummary
	if err := c.call(ctx, "GET", fmt.Sprintf("/api/v1/users/%s/feedback-summary", userID), nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// Health checks if the service is healthy
func (c *Client) Health(ctx context.Context) error {
	_, err := c.doRequest(ctx, "GET", "/health", nil)
	return err
}

// call performs a request and unwraps the response envelope into out
func (c *Client) call(ctx context.Context, method, path string, reqBody, out interface{}) error {
	var body io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	resp, err := c.doRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(resp, &env); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !env.Success {
		if env.Error != nil {
			return fmt.Errorf("API error: %s - %s", env.Error.Code, env.Error.Message)
		}
		return fmt.Errorf("API error: request failed")
	}

	if out != nil && env.Data != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to unmarshal data: %w", err)
		}
	}
	return nil
}

// doRequest performs an HTTP request
func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	url := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		// Error envelopes still carry the code and message
		var env envelope
		if jsonErr := json.Unmarshal(respBody, &env); jsonErr == nil && env.Error != nil {
			return nil, fmt.Errorf("API error: %s - %s", env.Error.Code, env.Error.Message)
		}
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}
