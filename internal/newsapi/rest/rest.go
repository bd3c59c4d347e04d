// Package rest is an http implementation of newsapi interface.
package rest

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

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kiosk-news/kiosk/internal/entities"
	"github.com/kiosk-news/kiosk/internal/newsapi"
)

var log = logrus.WithField("layer", "newsapi").WithField("package", "rest")

const maxErrorBodySize = 1024

type client struct {
	base string
	http *http.Client
}

// New creates new instance of client.
func New(base string, timeout time.Duration) newsapi.Client {
	return &client{
		base: strings.TrimSuffix(base, "/"),
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *client) Register(ctx context.Context, name, email, password string) (*newsapi.AuthResponse, error) {
	body := struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}{name, email, password}

	var out newsapi.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", "", body, &out); err != nil {
		return nil, err
	}

	if out.Token == "" || out.User == nil {
		return nil, errors.New("malformed auth response")
	}

	return &out, nil
}

func (c *client) Login(ctx context.Context, email, password string) (*newsapi.AuthResponse, error) {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{email, password}

	var out newsapi.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", body, &out); err != nil {
		return nil, err
	}

	if out.Token == "" || out.User == nil {
		return nil, errors.New("malformed auth response")
	}

	return &out, nil
}

func (c *client) Me(ctx context.Context, token string) (*entities.User, error) {
	var out struct {
		User *entities.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/me", token, nil, &out); err != nil {
		return nil, err
	}

	if out.User == nil {
		return nil, errors.New("malformed user response")
	}

	return out.User, nil
}

func (c *client) ListPosts(ctx context.Context) ([]*entities.Post, error) {
	var out []*entities.Post
	if err := c.do(ctx, http.MethodGet, "/posts", "", nil, &out); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *client) CreatePost(ctx context.Context, token string, draft newsapi.PostDraft) (*entities.Post, error) {
	var out struct {
		Post *entities.Post `json:"post"`
	}
	if err := c.do(ctx, http.MethodPost, "/posts", token, draft, &out); err != nil {
		return nil, err
	}

	if out.Post == nil {
		return nil, errors.New("malformed post response")
	}

	return out.Post, nil
}

func (c *client) UpdatePost(ctx context.Context, token, id string, patch newsapi.PostPatch) (*entities.Post, error) {
	var out struct {
		Post *entities.Post `json:"post"`
	}
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/posts/%s", url.PathEscape(id)), token, patch, &out); err != nil {
		return nil, err
	}

	if out.Post == nil {
		return nil, errors.New("malformed post response")
	}

	return out.Post, nil
}

func (c *client) DeletePost(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/posts/%s", url.PathEscape(id)), token, nil, nil)
}

func (c *client) LikePost(ctx context.Context, token, id string) (int, error) {
	return c.setLike(ctx, token, id, "like")
}

func (c *client) DislikePost(ctx context.Context, token, id string) (int, error) {
	return c.setLike(ctx, token, id, "dislike")
}

func (c *client) setLike(ctx context.Context, token, id, action string) (int, error) {
	var out struct {
		LikeCount *int `json:"likeCount"`
	}
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/posts/%s/%s", action, url.PathEscape(id)), token, nil, &out); err != nil {
		return 0, err
	}

	if out.LikeCount == nil || *out.LikeCount < 0 {
		return 0, errors.New("malformed like response")
	}

	return *out.LikeCount, nil
}

func (c *client) ListNotifications(ctx context.Context, token string) ([]*entities.Notification, error) {
	var out []*entities.Notification
	if err := c.do(ctx, http.MethodGet, "/notifications", token, nil, &out); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *client) MarkNotificationRead(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/notifications/%s/read", url.PathEscape(id)), token, nil, nil)
}

func (c *client) DeleteNotifications(ctx context.Context, token string, ids []string) error {
	body := struct {
		IDs []string `json:"ids"`
	}{ids}

	return c.do(ctx, http.MethodDelete, "/notifications/delete", token, body, nil)
}

func (c *client) Ping(ctx context.Context) error {
	// the backend has no health endpoint, the posts listing is the cheapest
	// unauthenticated request
	return c.do(ctx, http.MethodGet, "/posts", "", nil, nil)
}

func (c *client) do(ctx context.Context, method, path, token string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close() // nolint

	if resp.StatusCode == http.StatusNotFound {
		return newsapi.ErrNotFound
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return decodeError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func decodeError(resp *http.Response) error {
	out := newsapi.Error{
		Status: resp.StatusCode,
	}

	var body struct {
		Message string `json:"message"`
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	if err == nil {
		if err := json.Unmarshal(b, &body); err != nil {
			log.WithField("status", resp.StatusCode).Debug("error body is not json")
		}
	}
	out.Message = body.Message

	return &out
}
