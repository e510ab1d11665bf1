// Package gateway is the typed HTTP client for the SkillForge backend API.
// Every call is a single request/response round trip; failures are returned
// unchanged to the caller with no retry or backoff.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
)

const defaultBaseURL = "http://localhost:8000"

// Client talks to the backend API. The bearer token is attached to every
// request once set; all other state is per-call.
type Client struct {
	baseURL string
	client  *http.Client

	mu    sync.RWMutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the backend base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// WithToken installs an initial bearer token.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// NewClient creates a backend API client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		client:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the bearer credential used on subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the current bearer credential, if any.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// do performs one JSON round trip. A nil body sends no payload; a nil dest
// discards the response body after the status check.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, dest any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("api error %s %s (status %d): %s", method, path, resp.StatusCode, string(respBody))
	}

	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, dest); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// CreateCourse creates a new course.
func (c *Client) CreateCourse(ctx context.Context, course CourseCreate) (Course, error) {
	var out Course
	err := c.do(ctx, http.MethodPost, "/courses", nil, course, &out)
	return out, err
}

// ListCourses returns a page of the caller's courses.
func (c *Client) ListCourses(ctx context.Context, skip, limit int) ([]Course, error) {
	q := url.Values{}
	q.Set("skip", strconv.Itoa(skip))
	q.Set("limit", strconv.Itoa(limit))
	var out []Course
	err := c.do(ctx, http.MethodGet, "/courses", q, nil, &out)
	return out, err
}

// GetCourse returns one course with its nested topics.
func (c *Client) GetCourse(ctx context.Context, courseID int) (CourseWithTopics, error) {
	var out CourseWithTopics
	err := c.do(ctx, http.MethodGet, "/courses/"+strconv.Itoa(courseID), nil, nil, &out)
	return out, err
}

// UpdateCourse applies a partial update to a course.
func (c *Client) UpdateCourse(ctx context.Context, courseID int, update CourseUpdate) (Course, error) {
	var out Course
	err := c.do(ctx, http.MethodPut, "/courses/"+strconv.Itoa(courseID), nil, update, &out)
	return out, err
}

// DeleteCourse deletes a course and returns the deleted record.
func (c *Client) DeleteCourse(ctx context.Context, courseID int) (Course, error) {
	var out Course
	err := c.do(ctx, http.MethodDelete, "/courses/"+strconv.Itoa(courseID), nil, nil, &out)
	return out, err
}

// GenerateTopicDraft asks the backend for an AI-generated starting point for
// a new topic, in pre-normalization batch shape.
func (c *Client) GenerateTopicDraft(ctx context.Context, courseID int, topicName string) (TopicDraft, error) {
	q := url.Values{}
	q.Set("course_id", strconv.Itoa(courseID))
	q.Set("topic_name", topicName)
	var out TopicDraft
	err := c.do(ctx, http.MethodPost, "/topic-generation/draft", q, nil, &out)
	return out, err
}

// CreateTopicFromDraft submits a normalized batch. The backend resolves temp
// ids, assigns permanent identifiers, and persists all four entity lists
// atomically.
func (c *Client) CreateTopicFromDraft(ctx context.Context, draft TopicDraft) (TopicWithSkills, error) {
	var out TopicWithSkills
	err := c.do(ctx, http.MethodPost, "/topic-generation/create", nil, draft, &out)
	return out, err
}

// ListTopics returns the topic summaries for a course.
func (c *Client) ListTopics(ctx context.Context, courseID int) ([]TopicSummary, error) {
	var out []TopicSummary
	err := c.do(ctx, http.MethodGet, "/topic-generation/"+strconv.Itoa(courseID), nil, nil, &out)
	return out, err
}

// DeleteTopic deletes a topic.
func (c *Client) DeleteTopic(ctx context.Context, topicID int) error {
	return c.do(ctx, http.MethodDelete, "/topic-generation/"+strconv.Itoa(topicID), nil, nil, nil)
}

// ListSkills returns the skill summaries for a topic.
func (c *Client) ListSkills(ctx context.Context, topicID int) ([]SkillSummary, error) {
	var out []SkillSummary
	err := c.do(ctx, http.MethodGet, "/skill/"+strconv.Itoa(topicID), nil, nil, &out)
	return out, err
}

// GenerateExaminationDraft requests a generated question set for a topic.
// Questions in the returned draft carry no identifiers.
func (c *Client) GenerateExaminationDraft(ctx context.Context, topicID int) (ExaminationDraft, error) {
	body := struct {
		TopicID int `json:"topic_id"`
	}{TopicID: topicID}
	var out ExaminationDraft
	err := c.do(ctx, http.MethodPost, "/examinations/draft", nil, body, &out)
	return out, err
}

// CreateExaminationFromDraft posts a whole draft to the create endpoint and
// returns the persisted questions. Alternative binding to
// SubmitExaminationAnswers; the examination session uses the latter.
func (c *Client) CreateExaminationFromDraft(ctx context.Context, draft ExaminationDraft) ([]Question, error) {
	var out []Question
	err := c.do(ctx, http.MethodPost, "/examinations/create", nil, draft, &out)
	return out, err
}

// SubmitExaminationAnswers sends a full answer set for grading and returns
// the graded result.
func (c *Client) SubmitExaminationAnswers(ctx context.Context, answers ExaminationAnswers) (ExaminationAnswers, error) {
	var out ExaminationAnswers
	err := c.do(ctx, http.MethodPost, "/examinations/submit", nil, answers, &out)
	return out, err
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, creds Credentials) error {
	return c.do(ctx, http.MethodPost, "/register", nil, creds, nil)
}

// Login exchanges credentials for a bearer token and installs it on the
// client for subsequent requests.
func (c *Client) Login(ctx context.Context, creds Credentials) (TokenResponse, error) {
	var out TokenResponse
	if err := c.do(ctx, http.MethodPost, "/login", nil, creds, &out); err != nil {
		return TokenResponse{}, err
	}
	c.SetToken(out.AccessToken)
	return out, nil
}
