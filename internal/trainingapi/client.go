package trainingapi

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

	"github.com/adaptaki/trainer/internal/errors"
	"github.com/adaptaki/trainer/internal/logger"
	"github.com/adaptaki/trainer/internal/models"
)

// Doer issues HTTP requests. Injected so the client can run against a stub
// transport in tests and so auth wrapping stays outside this package.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TokenSource supplies the bearer token for each request. An empty return
// leaves the request unauthenticated.
type TokenSource func() string

type Client struct {
	baseURL    string
	httpClient Doer
	token      TokenSource
	log        *logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithDoer sets the HTTP transport.
func WithDoer(d Doer) Option {
	return func(c *Client) {
		c.httpClient = d
	}
}

// WithTokenSource sets the bearer token supplier.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) {
		c.token = ts
	}
}

// WithTimeout sets the timeout of the default transport. No effect when a
// custom Doer was injected.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if hc, ok := c.httpClient.(*http.Client); ok {
			hc.Timeout = d
		}
	}
}

// New creates a client for the task service rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        logger.Default().WithPrefix("trainingapi"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListSubjects fetches the enumerable subject filter options.
func (c *Client) ListSubjects(ctx context.Context) ([]models.Subject, error) {
	var out struct {
		Subjects []models.Subject `json:"subjects"`
	}
	if err := c.do(ctx, http.MethodGet, "/graph/subjects/", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Subjects, nil
}

// ListTaskTypes fetches the enumerable task-type filter options.
func (c *Client) ListTaskTypes(ctx context.Context) ([]models.TaskType, error) {
	var out struct {
		TaskTypes []models.TaskType `json:"task_types"`
	}
	if err := c.do(ctx, http.MethodGet, "/tasks/task-types/", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.TaskTypes, nil
}

// RandomTask fetches a random task scoped by sel. When attemptID is nil the
// server allocates a new test attempt and returns its id on the task.
func (c *Client) RandomTask(ctx context.Context, sel models.TaskSelection, attemptID *int64) (*models.Task, error) {
	log := logger.FromContext(ctx).WithPrefix("trainingapi")

	query := url.Values{}
	if sel.SubjectID > 0 {
		query.Set("subject_id", strconv.FormatInt(sel.SubjectID, 10))
	}
	if sel.TaskType != "" {
		query.Set("task_type", sel.TaskType)
	}
	if attemptID != nil {
		query.Set("test_attempt_id", strconv.FormatInt(*attemptID, 10))
	}

	var task models.Task
	if err := c.do(ctx, http.MethodGet, "/training/random-task/", query, nil, &task); err != nil {
		return nil, err
	}
	log.Debug("random task fetched: id=%d, attempt_id=%d", task.ID, task.TestAttemptID)
	return &task, nil
}

// SubmitAnswer sends one answer for grading and returns the verdict.
func (c *Client) SubmitAnswer(ctx context.Context, sub models.AnswerSubmission) (*models.SubmitResult, error) {
	log := logger.FromContext(ctx).WithPrefix("trainingapi")

	var result models.SubmitResult
	if err := c.do(ctx, http.MethodPost, "/training/submit-answer/", nil, sub, &result); err != nil {
		return nil, err
	}
	log.Debug("answer submitted: task_id=%d, is_correct=%t", result.TaskID, result.IsCorrect)
	return &result, nil
}

// FinishAttempt closes the attempt server-side. Terminal for that attempt id.
func (c *Client) FinishAttempt(ctx context.Context, attemptID int64) error {
	body := map[string]any{
		"test_attempt_id": attemptID,
		"status":          "finished",
	}
	return c.do(ctx, http.MethodPost, "/training/random-session/finish/", nil, body, nil)
}

// AttemptSummary fetches the scored summary of a finished attempt.
func (c *Client) AttemptSummary(ctx context.Context, attemptID int64) (*models.AttemptSummary, error) {
	query := url.Values{}
	query.Set("test_attempt_id", strconv.FormatInt(attemptID, 10))

	var summary models.AttemptSummary
	if err := c.do(ctx, http.MethodGet, "/training/test-attempt/summary/", query, nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	log := logger.FromContext(ctx).WithPrefix("trainingapi").WithField("path", path)

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			log.Error("failed to encode request body: %v", err)
			return errors.NewInternalError(err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		log.Error("failed to create request: %v", err)
		return errors.NewInternalError(err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		if token := c.token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("request failed: %v", err)
		return errors.NewRemoteError(0, "", err)
	}
	defer resp.Body.Close()

	log.Debug("response received in %v, status=%d", time.Since(start), resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		message := remoteErrorMessage(raw)
		log.Error("request failed: status=%d, body=%s", resp.StatusCode, string(raw))
		return errors.NewRemoteError(resp.StatusCode, message, fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Error("failed to decode response: %v", err)
		return errors.NewRemoteError(resp.StatusCode, "", err)
	}
	return nil
}

// remoteErrorMessage extracts the service's {"error": "..."} message from a
// failure payload, or returns "" so call sites fall back to their generic one.
func remoteErrorMessage(raw []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	return payload.Error
}
