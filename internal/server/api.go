package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/sirupsen/logrus"

	"github.com/vidshare/vidshare/internal/entities"
)

const maxLimit = 100
const defaultLimit = 20

// assetsPrefix is the public path uploaded media is served under, the
// storage directory itself is never exposed.
const assetsPrefix = "/assets/"

const (
	statusSuccess = "success"
	statusFail    = "fail"
	statusError   = "error"
)

// response is the envelope applied to every API response. A fail carries
// structured client-error detail in data, an error carries a plain message.
type response struct {
	Status  string      `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// TokenResponse ...
type TokenResponse struct {
	JWT string `json:"jwt"`
}

// CreatePostResponse ...
type CreatePostResponse struct {
	PostID int64 `json:"postId"`
}

// AddCommentResponse ...
type AddCommentResponse struct {
	CommentID int64 `json:"commentId"`
}

// User is a public view of a user, the password hash is never serialized.
type User struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Photo     string `json:"photo"`
	CreatedAt uint64 `json:"createdAt"`
}

// Post ...
type Post struct {
	ID          int64  `json:"id"`
	Owner       int64  `json:"owner"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Video       string `json:"video"`
	Hearts      uint32 `json:"hearts"`
	CreatedAt   uint64 `json:"createdAt"`
}

// Comment ...
type Comment struct {
	ID        int64  `json:"id"`
	Author    int64  `json:"author"`
	Text      string `json:"text"`
	CreatedAt uint64 `json:"createdAt"`
}

// Stats ...
type Stats struct {
	Users    int64 `json:"users"`
	Posts    int64 `json:"posts"`
	Comments int64 `json:"comments"`
	Hearts   int64 `json:"hearts"`
}

func writeSuccess(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, response{Status: statusSuccess, Data: data})
}

func writeFail(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, response{Status: statusFail, Data: data})
}

// writeInternalError logs the detail and renders a generic message, internals
// are never leaked to clients.
func writeInternalError(ctx context.Context, w http.ResponseWriter, message string) {
	logrus.WithField("request_id", middleware.GetReqID(ctx)).Error(message)

	writeJSON(w, http.StatusInternalServerError, response{Status: statusError, Message: "internal error"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(v)
}

func toAPIUser(u *entities.User) *User {
	return &User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Photo:     assetsPrefix + u.Photo,
		CreatedAt: uint64(u.CreatedAt.Unix()),
	}
}

func toAPIPost(p *entities.Post) *Post {
	return &Post{
		ID:          p.ID,
		Owner:       p.Owner,
		Title:       p.Title,
		Description: p.Description,
		Video:       assetsPrefix + p.Video,
		Hearts:      p.Hearts,
		CreatedAt:   uint64(p.CreatedAt.Unix()),
	}
}

func toAPIComment(c *entities.Comment) *Comment {
	return &Comment{
		ID:        c.ID,
		Author:    c.Author,
		Text:      c.Text,
		CreatedAt: uint64(c.CreatedAt.Unix()),
	}
}

func toAPIPosts(posts []*entities.Post) []*Post {
	out := make([]*Post, len(posts))
	for i, v := range posts {
		out[i] = toAPIPost(v)
	}

	return out
}

func toAPIComments(comments []*entities.Comment) []*Comment {
	out := make([]*Comment, len(comments))
	for i, v := range comments {
		out[i] = toAPIComment(v)
	}

	return out
}

func toAPIStats(s *entities.Stats) *Stats {
	return &Stats{
		Users:    s.Users,
		Posts:    s.Posts,
		Comments: s.Comments,
		Hearts:   s.Hearts,
	}
}
