// Package service contains interface for service business-logic.
package service

import (
	"context"
	"errors"

	"github.com/vidshare/vidshare/internal/entities"
)

//go:generate mockgen -destination=./mock/service.go -package=mock -source=service.go

// ErrNotFound is returned when a referenced entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller is authenticated but is not
// allowed to act on the entity.
var ErrForbidden = errors.New("forbidden")

// ErrEmailTaken is returned when an email is already registered.
var ErrEmailTaken = errors.New("email already taken")

// ErrInvalidCredentials is returned for both unknown email and wrong
// password, the caller must not learn which.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Service ...
type Service interface {
	Register(ctx context.Context, p *RegisterParams) (*entities.User, error)
	Login(ctx context.Context, email, password string) (*entities.User, error)
	GetUser(ctx context.Context, id int64) (*entities.User, error)
	UpdateUser(ctx context.Context, id int64, p *UpdateUserParams) error
	ListUserPosts(ctx context.Context, owner int64) ([]*entities.Post, error)

	CreatePost(ctx context.Context, p *CreatePostParams) (*entities.Post, error)
	ListPosts(ctx context.Context, after *int64, limit uint16) ([]*entities.Post, error)
	GetPost(ctx context.Context, id int64) (*entities.Post, error)
	UpdatePost(ctx context.Context, id, caller int64, p *UpdatePostParams) error
	DeletePost(ctx context.Context, id, caller int64) error
	HeartPost(ctx context.Context, id int64) error

	ListComments(ctx context.Context, postID int64) ([]*entities.Comment, error)
	AddComment(ctx context.Context, postID, author int64, text string) (*entities.Comment, error)
	GetComment(ctx context.Context, postID, commentID int64) (*entities.Comment, error)
	UpdateComment(ctx context.Context, postID, commentID, caller int64, text string) error
	DeleteComment(ctx context.Context, postID, commentID, caller int64) error

	GetStats(ctx context.Context) (*entities.Stats, error)
}

// RegisterParams ...
type RegisterParams struct {
	Name     string
	Email    string
	Password string
	Photo    string
}

// UpdateUserParams describes a partial update, nil fields are left untouched.
type UpdateUserParams struct {
	Name     *string
	Email    *string
	Password *string
	Photo    *string
}

// CreatePostParams ...
type CreatePostParams struct {
	Owner       int64
	Title       string
	Description string
	Video       string
}

// UpdatePostParams describes a partial update, nil fields are left untouched.
type UpdatePostParams struct {
	Title       *string
	Description *string
	Video       *string
}
