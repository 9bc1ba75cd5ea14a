package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidshare/vidshare/internal/auth"
	"github.com/vidshare/vidshare/internal/entities"
	"github.com/vidshare/vidshare/internal/filestore"
	"github.com/vidshare/vidshare/internal/service"
	"github.com/vidshare/vidshare/internal/service/mock"
)

func newTestServer(t *testing.T, s service.Service) server {
	t.Helper()

	return newTestServerAt(t, s, t.TempDir())
}

func newTestServerAt(t *testing.T, s service.Service, dir string) server {
	t.Helper()

	fs, err := filestore.New(dir)
	require.NoError(t, err)

	return server{
		s:      s,
		fs:     fs,
		signer: auth.NewSigner("test-secret", time.Hour),
	}
}

func bearer(t *testing.T, srv server, userID int64) string {
	t.Helper()

	token, err := srv.signer.Sign(userID)
	require.NoError(t, err)

	return "Bearer " + token
}

type form struct {
	fields map[string]string
	files  map[string]string // field -> filename, content is the filename
}

func multipartBody(t *testing.T, f form) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range f.fields {
		require.NoError(t, w.WriteField(k, v))
	}

	for field, filename := range f.files {
		fw, err := w.CreateFormFile(field, filename)
		require.NoError(t, err)

		_, err = fw.Write([]byte(filename))
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())

	return &buf, w.FormDataContentType()
}

func Test_register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc := mock.NewMockService(ctrl)

	svc.EXPECT().Register(gomock.Any(), gomock.Any()).Do(func(_ context.Context, p *service.RegisterParams) {
		assert.Equal(t, "name", p.Name)
		assert.Equal(t, "e@mail.com", p.Email)
		assert.Equal(t, "password", p.Password)
		assert.True(t, strings.HasSuffix(p.Photo, ".jpg"))
	}).Return(&entities.User{ID: 1}, nil)

	srv := newTestServer(t, svc)

	body, contentType := multipartBody(t, form{
		fields: map[string]string{"name": "name", "email": "e@mail.com", "password": "password"},
		files:  map[string]string{"photo": "photo.jpg"},
	})

	r := httptest.NewRequest(http.MethodPost, "/v1/user", body)
	r.Header.Set("Content-Type", contentType)

	router := chi.NewRouter()
	router.Post("/v1/user", srv.register)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			JWT string `json:"jwt"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)

	// the token is bound to the new user
	id, err := srv.signer.Verify(resp.Data.JWT)
	require.NoError(t, err)
	assert.EqualValues(t, 1, id)
}

func Test_register_missingFields(t *testing.T) {
	srv := newTestServer(t, nil)

	// all missing fields are reported at once
	body, contentType := multipartBody(t, form{
		fields: map[string]string{"name": "name"},
	})

	r := httptest.NewRequest(http.MethodPost, "/v1/user", body)
	r.Header.Set("Content-Type", contentType)

	router := chi.NewRouter()
	router.Post("/v1/user", srv.register)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `
{
	"status": "fail",
	"data": {
		"email": "required",
		"password": "required",
		"photo": "required"
	}
}
	`, w.Body.String())
}

func Test_register_malformedEmail(t *testing.T) {
	srv := newTestServer(t, nil)

	body, contentType := multipartBody(t, form{
		fields: map[string]string{"name": "name", "email": "malformed.com", "password": "password"},
		files:  map[string]string{"photo": "photo.jpg"},
	})

	r := httptest.NewRequest(http.MethodPost, "/v1/user", body)
	r.Header.Set("Content-Type", contentType)

	router := chi.NewRouter()
	router.Post("/v1/user", srv.register)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"status": "fail", "data": {"email": "malformed"}}`, w.Body.String())
}

func Test_register_emailTaken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc := mock.NewMockService(ctrl)

	svc.EXPECT().Register(gomock.Any(), gomock.Any()).Return(nil, service.ErrEmailTaken)

	dir := t.TempDir()
	srv := newTestServerAt(t, svc, dir)

	body, contentType := multipartBody(t, form{
		fields: map[string]string{"name": "name", "email": "e@mail.com", "password": "password"},
		files:  map[string]string{"photo": "photo.jpg"},
	})

	r := httptest.NewRequest(http.MethodPost, "/v1/user", body)
	r.Header.Set("Content-Type", contentType)

	router := chi.NewRouter()
	router.Post("/v1/user", srv.register)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"status": "fail", "data": {"email": "already registered"}}`, w.Body.String())

	// the rejected registration must not leave the photo behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func Test_register_unsupportedPhoto(t *testing.T) {
	srv := newTestServer(t, nil)

	body, contentType := multipartBody(t, form{
		fields: map[string]string{"name": "name", "email": "e@mail.com", "password": "password"},
		files:  map[string]string{"photo": "photo.mp4"},
	})

	r := httptest.NewRequest(http.MethodPost, "/v1/user", body)
	r.Header.Set("Content-Type", contentType)

	router := chi.NewRouter()
	router.Post("/v1/user", srv.register)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"status": "fail", "data": {"photo": "unsupported media type"}}`, w.Body.String())
}

func Test_login(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc := mock.NewMockService(ctrl)

	svc.EXPECT().Login(gomock.Any(), "e@mail.com", "password").Return(&entities.User{ID: 5}, nil)

	srv := newTestServer(t, svc)

	r := httptest.NewRequest(http.MethodPost, "/v1/login",
		strings.NewReader(`{"email": "e@mail.com", "password": "password"}`))

	router := chi.NewRouter()
	router.Post("/v1/login", srv.login)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			JWT string `json:"jwt"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	id, err := srv.signer.Verify(resp.Data.JWT)
	require.NoError(t, err)
	assert.EqualValues(t, 5, id)
}

func Test_login_invalidCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc := mock.NewMockService(ctrl)

	svc.EXPECT().Login(gomock.Any(), "e@mail.com", "wrong").Return(nil, service.ErrInvalidCredentials)

	srv := newTestServer(t, svc)

	r := httptest.NewRequest(http.MethodPost, "/v1/login",
		strings.NewReader(`{"email": "e@mail.com", "password": "wrong"}`))

	router := chi.NewRouter()
	router.Post("/v1/login", srv.login)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"status": "fail", "data": "invalid email or password"}`, w.Body.String())
}

func Test_login_missingFields(t *testing.T) {
	srv := newTestServer(t, nil)

	r := httptest.NewRequest(http.MethodPost, "/v1/login", strings.NewReader(`{}`))

	router := chi.NewRouter()
	router.Post("/v1/login", srv.login)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"status": "fail", "data": {"email": "required", "password": "required"}}`, w.Body.String())
}

func Test_getUser_me(t *testing.T) {
	timestamp := time.Unix(100, 0)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc := mock.NewMockService(ctrl)

	svc.EXPECT().GetUser(gomock.Any(), int64(1)).Return(&entities.User{
		ID:           1,
		Name:         "name",
		Email:        "e@mail.com",
		PasswordHash: "never returned",
		Photo:        "photo.jpg",
		CreatedAt:    timestamp,
	}, nil)

	srv := newTestServer(t, svc)

	r := httptest.NewRequest(http.MethodGet, "/v1/user/me", nil)
	r.Header.Set("Authorization", bearer(t, srv, 1))

	router := chi.NewRouter()
	router.With(srv.authenticate).Get("/v1/user/{userID}", srv.getUser)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `
{
	"status": "success",
	"data": {
		"id": 1,
		"name": "name",
		"email": "e@mail.com",
		"photo": "/assets/photo.jpg",
		"createdAt": 100
	}
}
	`, w.Body.String())
}

func Test_getUser_meUnauthenticated(t *testing.T) {
	srv := newTestServer(t, nil)

	r := httptest.NewRequest(http.MethodGet, "/v1/user/me", nil)

	router := chi.NewRouter()
	router.With(srv.authenticate).Get("/v1/user/{userID}", srv.getUser)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"status": "fail", "data": "Unauthorized"}`, w.Body.String())
}

func Test_getUser_malformedID(t *testing.T) {
	srv := newTestServer(t, nil)

	r := httptest.NewRequest(http.MethodGet, "/v1/user/abc", nil)

	router := chi.NewRouter()
	router.Get("/v1/user/{userID}", srv.getUser)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"status": "fail", "data": {"user_id": "malformed"}}`, w.Body.String())
}

func Test_getUser_notFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc := mock.NewMockService(ctrl)

	svc.EXPECT().GetUser(gomock.Any(), int64(4)).Return(nil, service.ErrNotFound)

	srv := newTestServer(t, svc)

	r := httptest.NewRequest(http.MethodGet, "/v1/user/4", nil)

	router := chi.NewRouter()
	router.Get("/v1/user/{userID}", srv.getUser)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"status": "fail", "data": "user couldn't be found"}`, w.Body.String())
}

func Test_updateUser_forbidden(t *testing.T) {
	srv := newTestServer(t, nil)

	body, contentType := multipartBody(t, form{fields: map[string]string{"name": "new"}})

	r := httptest.NewRequest(http.MethodPut, "/v1/user/2", body)
	r.Header.Set("Content-Type", contentType)
	r.Header.Set("Authorization", bearer(t, srv, 1))

	router := chi.NewRouter()
	router.With(srv.authenticate, requireAuth).Put("/v1/user/{userID}", srv.updateUser)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"status": "fail", "data": "Forbidden"}`, w.Body.String())
}

func Test_updateUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc := mock.NewMockService(ctrl)

	svc.EXPECT().UpdateUser(gomock.Any(), int64(1), gomock.Any()).Do(func(_ context.Context, _ int64, p *service.UpdateUserParams) {
		require.NotNil(t, p.Name)
		assert.Equal(t, "new name", *p.Name)
		assert.Nil(t, p.Email)
		assert.Nil(t, p.Password)
		assert.Nil(t, p.Photo)
	}).Return(nil)

	srv := newTestServer(t, svc)

	body, contentType := multipartBody(t, form{fields: map[string]string{"name": "new name"}})

	r := httptest.NewRequest(http.MethodPut, "/v1/user/me", body)
	r.Header.Set("Content-Type", contentType)
	r.Header.Set("Authorization", bearer(t, srv, 1))

	router := chi.NewRouter()
	router.With(srv.authenticate, requireAuth).Put("/v1/user/{userID}", srv.updateUser)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "success"}`, w.Body.String())
}

func Test_updateUser_emptyFields(t *testing.T) {
	srv := newTestServer(t, nil)

	// supplied fields must carry a value, blanking is not allowed
	body, contentType := multipartBody(t, form{fields: map[string]string{"name": "", "password": ""}})

	r := httptest.NewRequest(http.MethodPut, "/v1/user/me", body)
	r.Header.Set("Content-Type", contentType)
	r.Header.Set("Authorization", bearer(t, srv, 1))

	router := chi.NewRouter()
	router.With(srv.authenticate, requireAuth).Put("/v1/user/{userID}", srv.updateUser)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `
{
	"status": "fail",
	"data": {
		"name": "cannot be empty",
		"password": "cannot be empty"
	}
}
	`, w.Body.String())
}

func Test_listUserPosts(t *testing.T) {
	timestamp := time.Unix(100, 0)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc := mock.NewMockService(ctrl)

	svc.EXPECT().ListUserPosts(gomock.Any(), int64(1)).Return([]*entities.Post{
		{
			ID:          10,
			Owner:       1,
			Title:       "title",
			Description: "description",
			Video:       "video.mp4",
			Hearts:      3,
			CreatedAt:   timestamp,
		},
	}, nil)

	srv := newTestServer(t, svc)

	r := httptest.NewRequest(http.MethodGet, "/v1/user/1/post", nil)

	router := chi.NewRouter()
	router.Get("/v1/user/{userID}/post", srv.listUserPosts)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `
{
	"status": "success",
	"data": [
		{
			"id": 10,
			"owner": 1,
			"title": "title",
			"description": "description",
			"video": "/assets/video.mp4",
			"hearts": 3,
			"createdAt": 100
		}
	]
}
	`, w.Body.String())
}

func Test_createPost(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc := mock.NewMockService(ctrl)

	svc.EXPECT().CreatePost(gomock.Any(), gomock.Any()).Do(func(_ context.Context, p *service.CreatePostParams) {
		assert.EqualValues(t, 1, p.Owner)
		assert.Equal(t, "title", p.Title)
		assert.Equal(t, "description", p.Description)
		assert.True(t, strings.HasSuffix(p.Video, ".mp4"))
	}).Return(&entities.Post{ID: 10}, nil)

	srv := newTestServer(t, svc)

	body, contentType := multipartBody(t, form{
		fields: map[string]string{"title": "title", "description": "description"},
		files:  map[string]string{"video": "clip.mp4"},
	})

	r := httptest.NewRequest(http.MethodPost, "/v1/post", body)
	r.Header.Set("Content-Type", contentType)
	r.Header.Set("Authorization", bearer(t, srv, 1))

	router := chi.NewRouter()
	router.With(srv.authenticate, requireAuth).Post("/v1/post", srv.createPost)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"status": "success", "data": {"postId": 10}}`, w.Body.String())
}

func Test_createPost_missingFields(t *testing.T) {
	srv := newTestServer(t, nil)

	body, contentType := multipartBody(t, form{
		fields: map[string]string{"title": ""},
	})

	r := httptest.NewRequest(http.MethodPost, "/v1/post", body)
	r.Header.Set("Content-Type", contentType)
	r.Header.Set("Authorization", bearer(t, srv, 1))

	router := chi.NewRouter()
	router.With(srv.authenticate, requireAuth).Post("/v1/post", srv.createPost)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `
{
	"status": "fail",
	"data": {
		"title": "required",
		"description": "required",
		"video": "required"
	}
}
	`, w.Body.String())
}

func Test_createPost_failureRemovesVideo(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc := mock.NewMockService(ctrl)

	svc.EXPECT().CreatePost(gomock.Any(), gomock.Any()).Return(nil, errors.New("storage is down"))

	dir := t.TempDir()
	srv := newTestServerAt(t, svc, dir)

	body, contentType := multipartBody(t, form{
		fields: map[string]string{"title": "title", "description": "description"},
		files:  map[string]string{"video": "clip.mp4"},
	})

	r := httptest.NewRequest(http.MethodPost, "/v1/post", body)
	r.Header.Set("Content-Type", contentType)
	r.Header.Set("Authorization", bearer(t, srv, 1))

	router := chi.NewRouter()
	router.With(srv.authenticate, requireAuth).Post("/v1/post", srv.createPost)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	// the rejected post must not leave the video behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func Test_createPost_unauthenticated(t *testing.T) {
	srv := newTestServer(t, nil)

	body, contentType := multipartBody(t, form{
		fields: map[string]string{"title": "title", "description": "description"},
		files:  map[string]string{"video": "clip.mp4"},
	})

	r := httptest.NewRequest(http.MethodPost, "/v1/post", body)
	r.Header.Set("Content-Type", contentType)

	router := chi.NewRouter()
	router.With(srv.authenticate, requireAuth).Post("/v1/post", srv.createPost)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"status": "fail", "data": "Unauthorized"}`, w.Body.String())
}

func Test_createPost_invalidToken(t *testing.T) {
	srv := newTestServer(t, nil)

	body, contentType := multipartBody(t, form{
		fields: map[string]string{"title": "title", "description": "description"},
		files:  map[string]string{"video": "clip.mp4"},
	})

	r := httptest.NewRequest(http.MethodPost, "/v1/post", body)
	r.Header.Set("Content-Type", contentType)
	r.Header.Set("Authorization", "Bearer garbage")

	router := chi.NewRouter()
	router.With(srv.authenticate, requireAuth).Post("/v1/post", srv.createPost)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func Test_createPost_unsupportedVideo(t *testing.T) {
	srv := newTestServer(t, nil)

	body, contentType := multipartBody(t, form{
		fields: map[string]string{"title": "title", "description": "description"},
		files:  map[string]string{"video": "clip.avi"},
	})

	r := httptest.NewRequest(http.MethodPost, "/v1/post", body)
	r.Header.Set("Content-Type", contentType)
	r.Header.Set("Authorization", bearer(t, srv, 1))

	router := chi.NewRouter()
	router.With(srv.authenticate, requireAuth).Post("/v1/post", srv.createPost)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"status": "fail", "data": {"video": "unsupported media type"}}`, w.Body.String())
}

func Test_listPosts(t *testing.T) {
	timestamp := time.Unix(100, 0)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc := mock.NewMockService(ctrl)

	svc.EXPECT().ListPosts(gomock.Any(), gomock.Any(), uint16(2)).Do(func(_ context.Context, after *int64, _ uint16) {
		require.NotNil(t, after)
		assert.EqualValues(t, 5, *after)
	}).Return([]*entities.Post{
		{ID: 5, Owner: 1, Title: "t5", Description: "d5", Video: "v5.mp4", CreatedAt: timestamp},
		{ID: 6, Owner: 2, Title: "t6", Description: "d6", Video: "v6.mp4", Hearts: 1, CreatedAt: timestamp},
	}, nil)

	srv := newTestServer(t, svc)

	r := httptest.NewRequest(http.MethodGet, "/v1/post?cursor=5&limit=2", nil)

	router := chi.NewRouter()
	router.Get("/v1/post", srv.listPosts)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `
{
	"status": "success",
	"data": [
		{"id": 5, "owner": 1, "title": "t5", "description": "d5", "video": "/assets/v5.mp4", "hearts": 0, "createdAt": 100},
		{"id": 6, "owner": 2, "title": "t6", "description": "d6", "video": "/assets/v6.mp4", "hearts": 1, "createdAt": 100}
	]
}
	`, w.Body.String())
}

func Test_listPosts_defaultLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc := mock.NewMockService(ctrl)

	svc.EXPECT().ListPosts(gomock.Any(), gomock.Nil(), uint16(defaultLimit)).Return([]*entities.Post{}, nil)

	srv := newTestServer(t, svc)

	r := httptest.NewRequest(http.MethodGet, "/v1/post", nil)

	router := chi.NewRouter()
	router.Get("/v1/post", srv.listPosts)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "success", "data": []}`, w.Body.String())
}

func Test_listPosts_invalidParams(t *testing.T) {
	srv := newTestServer(t, nil)

	router := chi.NewRouter()
	router.Get("/v1/post", srv.listPosts)

	for _, query := range []string{"limit=abc", "limit=0", "limit=101", "cursor=abc"} {
		query := query
		t.Run(query, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/v1/post?%s", query), nil)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, r)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func Test_getPost(t *testing.T) {
	timestamp := time.Unix(100, 0)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc := mock.NewMockService(ctrl)

	svc.EXPECT().GetPost(gomock.Any(), int64(10)).Return(&entities.Post{
		ID:          10,
		Owner:       1,
		Title:       "title",
		Description: "description",
		Video:       "video.mp4",
		Hearts:      0,
		CreatedAt:   timestamp,
	}, nil)

	srv := newTestServer(t, svc)

	r := httptest.NewRequest(http.MethodGet, "/v1/post/10", nil)

	router := chi.NewRouter()
	router.Get("/v1/post/{postID}", srv.getPost)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `
{
	"status": "success",
	"data": {
		"id": 10,
		"owner": 1,
		"title": "title",
		"description": "description",
		"video": "/assets/video.mp4",
		"hearts": 0,
		"createdAt": 100
	}
}
	`, w.Body.String())
}

func Test_getPost_notFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc := mock.NewMockService(ctrl)

	svc.EXPECT().GetPost(gomock.Any(), int64(10)).Return(nil, service.ErrNotFound)

	srv := newTestServer(t, svc)

	r := httptest.NewRequest(http.MethodGet, "/v1/post/10", nil)

	router := chi.NewRouter()
	router.Get("/v1/post/{postID}", srv.getPost)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func Test_updatePost_forbidden(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc := mock.NewMockService(ctrl)

	svc.EXPECT().UpdatePost(gomock.Any(), int64(10), int64(2), gomock.Any()).Return(service.ErrForbidden)

	srv := newTestServer(t, svc)

	body, contentType := multipartBody(t, form{fields: map[string]string{"title": "new"}})

	r := httptest.NewRequest(http.MethodPut, "/v1/post/10", body)
	r.Header.Set("Content-Type", contentType)
	r.Header.Set("Authorization", bearer(t, srv, 2))

	router := chi.NewRouter()
	router.With(srv.authenticate, requireAuth).Put("/v1/post/{postID}", srv.updatePost)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"status": "fail", "data": "Forbidden"}`, w.Body.String())
}

func Test_updatePost_emptyFields(t *testing.T) {
	srv := newTestServer(t, nil)

	// supplied fields must carry a value, blanking is not allowed
	body, contentType := multipartBody(t, form{fields: map[string]string{"title": "", "description": ""}})

	r := httptest.NewRequest(http.MethodPut, "/v1/post/10", body)
	r.Header.Set("Content-Type", contentType)
	r.Header.Set("Authorization", bearer(t, srv, 1))

	router := chi.NewRouter()
	router.With(srv.authenticate, requireAuth).Put("/v1/post/{postID}", srv.updatePost)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `
{
	"status": "fail",
	"data": {
		"title": "cannot be empty",
		"description": "cannot be empty"
	}
}
	`, w.Body.String())
}

func Test_deletePost(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc := mock.NewMockService(ctrl)

	svc.EXPECT().DeletePost(gomock.Any(), int64(10), int64(1)).Return(nil)

	srv := newTestServer(t, svc)

	r := httptest.NewRequest(http.MethodDelete, "/v1/post/10", nil)
	r.Header.Set("Authorization", bearer(t, srv, 1))

	router := chi.NewRouter()
	router.With(srv.authenticate, requireAuth).Delete("/v1/post/{postID}", srv.deletePost)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "success"}`, w.Body.String())
}

func Test_heartPost(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc := mock.NewMockService(ctrl)

	svc.EXPECT().HeartPost(gomock.Any(), int64(10)).Return(nil)

	srv := newTestServer(t, svc)

	r := httptest.NewRequest(http.MethodPost, "/v1/post/10/heart", nil)
	r.Header.Set("Authorization", bearer(t, srv, 1))

	router := chi.NewRouter()
	router.With(srv.authenticate, requireAuth).Post("/v1/post/{postID}/heart", srv.heartPost)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "success"}`, w.Body.String())
}

func Test_heartPost_notFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc := mock.NewMockService(ctrl)

	svc.EXPECT().HeartPost(gomock.Any(), int64(10)).Return(service.ErrNotFound)

	srv := newTestServer(t, svc)

	r := httptest.NewRequest(http.MethodPost, "/v1/post/10/heart", nil)
	r.Header.Set("Authorization", bearer(t, srv, 1))

	router := chi.NewRouter()
	router.With(srv.authenticate, requireAuth).Post("/v1/post/{postID}/heart", srv.heartPost)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func Test_listComments(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc := mock.NewMockService(ctrl)

	// newest first
	svc.EXPECT().ListComments(gomock.Any(), int64(10)).Return([]*entities.Comment{
		{ID: 2, PostID: 10, Author: 1, Text: "second", CreatedAt: time.Unix(200, 0)},
		{ID: 1, PostID: 10, Author: 2, Text: "first", CreatedAt: time.Unix(100, 0)},
	}, nil)

	srv := newTestServer(t, svc)

	r := httptest.NewRequest(http.MethodGet, "/v1/post/10/comment", nil)

	router := chi.NewRouter()
	router.Get("/v1/post/{postID}/comment", srv.listComments)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `
{
	"status": "success",
	"data": [
		{"id": 2, "author": 1, "text": "second", "createdAt": 200},
		{"id": 1, "author": 2, "text": "first", "createdAt": 100}
	]
}
	`, w.Body.String())
}

func Test_addComment(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc := mock.NewMockService(ctrl)

	svc.EXPECT().AddComment(gomock.Any(), int64(10), int64(1), "nice video").Return(&entities.Comment{ID: 3}, nil)

	srv := newTestServer(t, svc)

	r := httptest.NewRequest(http.MethodPost, "/v1/post/10/comment",
		strings.NewReader(`{"comment": "nice video"}`))
	r.Header.Set("Authorization", bearer(t, srv, 1))

	router := chi.NewRouter()
	router.With(srv.authenticate, requireAuth).Post("/v1/post/{postID}/comment", srv.addComment)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"status": "success", "data": {"commentId": 3}}`, w.Body.String())
}

func Test_addComment_emptyText(t *testing.T) {
	srv := newTestServer(t, nil)

	r := httptest.NewRequest(http.MethodPost, "/v1/post/10/comment", strings.NewReader(`{"comment": ""}`))
	r.Header.Set("Authorization", bearer(t, srv, 1))

	router := chi.NewRouter()
	router.With(srv.authenticate, requireAuth).Post("/v1/post/{postID}/comment", srv.addComment)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"status": "fail", "data": {"comment": "required"}}`, w.Body.String())
}

func Test_deleteComment_forbidden(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc := mock.NewMockService(ctrl)

	svc.EXPECT().DeleteComment(gomock.Any(), int64(10), int64(3), int64(2)).Return(service.ErrForbidden)

	srv := newTestServer(t, svc)

	r := httptest.NewRequest(http.MethodDelete, "/v1/post/10/comment/3", nil)
	r.Header.Set("Authorization", bearer(t, srv, 2))

	router := chi.NewRouter()
	router.With(srv.authenticate, requireAuth).Delete("/v1/post/{postID}/comment/{commentID}", srv.deleteComment)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func Test_getComment_notFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc := mock.NewMockService(ctrl)

	svc.EXPECT().GetComment(gomock.Any(), int64(10), int64(3)).Return(nil, service.ErrNotFound)

	srv := newTestServer(t, svc)

	r := httptest.NewRequest(http.MethodGet, "/v1/post/10/comment/3", nil)

	router := chi.NewRouter()
	router.Get("/v1/post/{postID}/comment/{commentID}", srv.getComment)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"status": "fail", "data": "comment couldn't be found"}`, w.Body.String())
}

func Test_getStats(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc := mock.NewMockService(ctrl)

	svc.EXPECT().GetStats(gomock.Any()).Return(&entities.Stats{Users: 1, Posts: 2, Comments: 3, Hearts: 4}, nil)

	srv := newTestServer(t, svc)

	r := httptest.NewRequest(http.MethodGet, "/v1/stats", nil)

	router := chi.NewRouter()
	router.Get("/v1/stats", srv.getStats)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `
{
	"status": "success",
	"data": {"users": 1, "posts": 2, "comments": 3, "hearts": 4}
}
	`, w.Body.String())
}

func Test_bodyLimit(t *testing.T) {
	h := bodyLimit(4)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}

		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("tiny")))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("way too large")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func Test_assetsRoundTrip(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc := mock.NewMockService(ctrl)

	fs, err := filestore.New(t.TempDir())
	require.NoError(t, err)

	router := chi.NewRouter()
	SetupRouter(svc, fs, auth.NewSigner("test-secret", time.Hour), router, time.Minute)

	content := []byte("video bytes")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("video", "clip.mp4")
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	mform, err := multipart.NewReader(&buf, mw.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)

	name, err := fs.Save(mform.File["video"][0], filestore.Video)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/assets/"+name, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, content, w.Body.Bytes())
}
