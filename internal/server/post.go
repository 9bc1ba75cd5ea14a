package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/vidshare/vidshare/internal/auth"
	"github.com/vidshare/vidshare/internal/filestore"
	"github.com/vidshare/vidshare/internal/service"
)

func (s server) createPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	title := r.FormValue("title")
	description := r.FormValue("description")

	var video *multipart.FileHeader
	if fhs := r.MultipartForm.File["video"]; len(fhs) > 0 {
		video = fhs[0]
	}

	// all missing fields are reported at once
	missing := map[string]string{}
	if title == "" {
		missing["title"] = "required"
	}
	if description == "" {
		missing["description"] = "required"
	}
	if video == nil {
		missing["video"] = "required"
	}

	if len(missing) > 0 {
		writeFail(w, http.StatusBadRequest, missing)
		return
	}

	filename, err := s.fs.Save(video, filestore.Video)
	if err != nil {
		if errors.Is(err, filestore.ErrUnsupportedType) {
			writeFail(w, http.StatusBadRequest, map[string]string{"video": "unsupported media type"})
			return
		}

		writeInternalError(r.Context(), w, fmt.Sprintf("failed to store video: %s", err.Error()))
		return
	}

	caller, _ := auth.UserIDFrom(r.Context())

	post, err := s.s.CreatePost(r.Context(), &service.CreatePostParams{
		Owner:       caller,
		Title:       title,
		Description: description,
		Video:       filename,
	})
	if err != nil {
		// the video has no owning record, don't leave it behind
		_ = s.fs.Remove(filename)

		writeInternalError(r.Context(), w, fmt.Sprintf("failed to create post: %s", err.Error()))
		return
	}

	writeSuccess(w, http.StatusCreated, CreatePostResponse{PostID: post.ID})
}

func (s server) listPosts(w http.ResponseWriter, r *http.Request) {
	after, limit, err := extractListParamsFromQuery(r.URL.Query())
	if err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}

	posts, err := s.s.ListPosts(r.Context(), after, limit)
	if err != nil {
		writeInternalError(r.Context(), w, fmt.Sprintf("failed to list posts: %s", err.Error()))
		return
	}

	writeSuccess(w, http.StatusOK, toAPIPosts(posts))
}

func (s server) getPost(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePathID(w, r, "postID")
	if !ok {
		return
	}

	post, err := s.s.GetPost(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			writeFail(w, http.StatusNotFound, "post couldn't be found")
			return
		}

		writeInternalError(r.Context(), w, fmt.Sprintf("failed to get post: %s", err.Error()))
		return
	}

	writeSuccess(w, http.StatusOK, toAPIPost(post))
}

func (s server) updatePost(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePathID(w, r, "postID")
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	params := service.UpdatePostParams{
		Title:       multipartValue(r, "title"),
		Description: multipartValue(r, "description"),
	}

	// a supplied field has to carry a value, blanking is not allowed
	empty := map[string]string{}
	if params.Title != nil && *params.Title == "" {
		empty["title"] = "cannot be empty"
	}
	if params.Description != nil && *params.Description == "" {
		empty["description"] = "cannot be empty"
	}

	if len(empty) > 0 {
		writeFail(w, http.StatusBadRequest, empty)
		return
	}

	if fhs := r.MultipartForm.File["video"]; len(fhs) > 0 {
		filename, err := s.fs.Save(fhs[0], filestore.Video)
		if err != nil {
			if errors.Is(err, filestore.ErrUnsupportedType) {
				writeFail(w, http.StatusBadRequest, map[string]string{"video": "unsupported media type"})
				return
			}

			writeInternalError(r.Context(), w, fmt.Sprintf("failed to store video: %s", err.Error()))
			return
		}

		params.Video = &filename
	}

	caller, _ := auth.UserIDFrom(r.Context())

	if err := s.s.UpdatePost(r.Context(), id, caller, &params); err != nil {
		if params.Video != nil {
			_ = s.fs.Remove(*params.Video)
		}

		s.writePostError(w, r, err, "failed to update post")
		return
	}

	writeSuccess(w, http.StatusOK, nil)
}

func (s server) deletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePathID(w, r, "postID")
	if !ok {
		return
	}

	caller, _ := auth.UserIDFrom(r.Context())

	if err := s.s.DeletePost(r.Context(), id, caller); err != nil {
		s.writePostError(w, r, err, "failed to delete post")
		return
	}

	writeSuccess(w, http.StatusOK, nil)
}

func (s server) heartPost(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePathID(w, r, "postID")
	if !ok {
		return
	}

	if err := s.s.HeartPost(r.Context(), id); err != nil {
		s.writePostError(w, r, err, "failed to heart post")
		return
	}

	writeSuccess(w, http.StatusOK, nil)
}

func (s server) listComments(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePathID(w, r, "postID")
	if !ok {
		return
	}

	comments, err := s.s.ListComments(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			writeFail(w, http.StatusNotFound, "post couldn't be found")
			return
		}

		writeInternalError(r.Context(), w, fmt.Sprintf("failed to list comments: %s", err.Error()))
		return
	}

	writeSuccess(w, http.StatusOK, toAPIComments(comments))
}

func (s server) addComment(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePathID(w, r, "postID")
	if !ok {
		return
	}

	var req struct {
		Comment string `json:"comment"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid json")
		return
	}

	if req.Comment == "" {
		writeFail(w, http.StatusBadRequest, map[string]string{"comment": "required"})
		return
	}

	caller, _ := auth.UserIDFrom(r.Context())

	c, err := s.s.AddComment(r.Context(), id, caller, req.Comment)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			writeFail(w, http.StatusNotFound, "post couldn't be found")
			return
		}

		writeInternalError(r.Context(), w, fmt.Sprintf("failed to add comment: %s", err.Error()))
		return
	}

	writeSuccess(w, http.StatusCreated, AddCommentResponse{CommentID: c.ID})
}

func (s server) getComment(w http.ResponseWriter, r *http.Request) {
	postID, ok := parsePathID(w, r, "postID")
	if !ok {
		return
	}

	commentID, ok := parsePathID(w, r, "commentID")
	if !ok {
		return
	}

	c, err := s.s.GetComment(r.Context(), postID, commentID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			writeFail(w, http.StatusNotFound, "comment couldn't be found")
			return
		}

		writeInternalError(r.Context(), w, fmt.Sprintf("failed to get comment: %s", err.Error()))
		return
	}

	writeSuccess(w, http.StatusOK, toAPIComment(c))
}

func (s server) updateComment(w http.ResponseWriter, r *http.Request) {
	postID, ok := parsePathID(w, r, "postID")
	if !ok {
		return
	}

	commentID, ok := parsePathID(w, r, "commentID")
	if !ok {
		return
	}

	var req struct {
		Comment string `json:"comment"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid json")
		return
	}

	if req.Comment == "" {
		writeFail(w, http.StatusBadRequest, map[string]string{"comment": "required"})
		return
	}

	caller, _ := auth.UserIDFrom(r.Context())

	if err := s.s.UpdateComment(r.Context(), postID, commentID, caller, req.Comment); err != nil {
		s.writeCommentError(w, r, err, "failed to update comment")
		return
	}

	writeSuccess(w, http.StatusOK, nil)
}

func (s server) deleteComment(w http.ResponseWriter, r *http.Request) {
	postID, ok := parsePathID(w, r, "postID")
	if !ok {
		return
	}

	commentID, ok := parsePathID(w, r, "commentID")
	if !ok {
		return
	}

	caller, _ := auth.UserIDFrom(r.Context())

	if err := s.s.DeleteComment(r.Context(), postID, commentID, caller); err != nil {
		s.writeCommentError(w, r, err, "failed to delete comment")
		return
	}

	writeSuccess(w, http.StatusOK, nil)
}

func (s server) writePostError(w http.ResponseWriter, r *http.Request, err error, logPrefix string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeFail(w, http.StatusNotFound, "post couldn't be found")
	case errors.Is(err, service.ErrForbidden):
		writeFail(w, http.StatusForbidden, "Forbidden")
	default:
		writeInternalError(r.Context(), w, fmt.Sprintf("%s: %s", logPrefix, err.Error()))
	}
}

func (s server) writeCommentError(w http.ResponseWriter, r *http.Request, err error, logPrefix string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeFail(w, http.StatusNotFound, "comment couldn't be found")
	case errors.Is(err, service.ErrForbidden):
		writeFail(w, http.StatusForbidden, "Forbidden")
	default:
		writeInternalError(r.Context(), w, fmt.Sprintf("%s: %s", logPrefix, err.Error()))
	}
}
