// Package newsapi contains an interface for the remote news backend.
package newsapi

import (
	"context"
	"errors"
	"fmt"

	"github.com/kiosk-news/kiosk/internal/entities"
)

//go:generate mockgen -destination=./mock/newsapi.go -package=mock -source=newsapi.go

// ErrNotFound ...
var ErrNotFound = errors.New("not found")

// Error is a non-2xx response decoded from the backend's error body.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server rejected request with status %d", e.Status)
	}
	return e.Message
}

// AuthResponse ...
type AuthResponse struct {
	Token string         `json:"token"`
	User  *entities.User `json:"user"`
}

// PostDraft ...
type PostDraft struct {
	Title     string            `json:"title"`
	Content   string            `json:"content"`
	Image     string            `json:"image,omitempty"`
	Category  entities.Category `json:"category"`
	Country   string            `json:"country,omitempty"`
	Important bool              `json:"important"`
}

// PostPatch carries a partial post update, nil fields are left unchanged.
type PostPatch struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

// Client provides methods for interacting with the news backend.
type Client interface {
	Register(ctx context.Context, name, email, password string) (*AuthResponse, error)
	Login(ctx context.Context, email, password string) (*AuthResponse, error)
	Me(ctx context.Context, token string) (*entities.User, error)

	ListPosts(ctx context.Context) ([]*entities.Post, error)
	CreatePost(ctx context.Context, token string, draft PostDraft) (*entities.Post, error)
	UpdatePost(ctx context.Context, token, id string, patch PostPatch) (*entities.Post, error)
	DeletePost(ctx context.Context, token, id string) error
	LikePost(ctx context.Context, token, id string) (int, error)
	DislikePost(ctx context.Context, token, id string) (int, error)

	ListNotifications(ctx context.Context, token string) ([]*entities.Notification, error)
	MarkNotificationRead(ctx context.Context, token, id string) error
	DeleteNotifications(ctx context.Context, token string, ids []string) error

	Ping(ctx context.Context) error
}
