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

func (s server) register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	name := r.FormValue("name")
	email := r.FormValue("email")
	password := r.FormValue("password")

	var photo *multipart.FileHeader
	if fhs := r.MultipartForm.File["photo"]; len(fhs) > 0 {
		photo = fhs[0]
	}

	missing := map[string]string{}
	for k, v := range map[string]string{"name": name, "email": email, "password": password} {
		if v == "" {
			missing[k] = "required"
		}
	}
	if photo == nil {
		missing["photo"] = "required"
	}

	if len(missing) > 0 {
		writeFail(w, http.StatusBadRequest, missing)
		return
	}

	if !isEmailValid(email) {
		writeFail(w, http.StatusBadRequest, map[string]string{"email": "malformed"})
		return
	}

	filename, err := s.fs.Save(photo, filestore.Image)
	if err != nil {
		if errors.Is(err, filestore.ErrUnsupportedType) {
			writeFail(w, http.StatusBadRequest, map[string]string{"photo": "unsupported media type"})
			return
		}

		writeInternalError(r.Context(), w, fmt.Sprintf("failed to store photo: %s", err.Error()))
		return
	}

	u, err := s.s.Register(r.Context(), &service.RegisterParams{
		Name:     name,
		Email:    email,
		Password: password,
		Photo:    filename,
	})
	if err != nil {
		// the photo has no owning record, don't leave it behind
		_ = s.fs.Remove(filename)

		if errors.Is(err, service.ErrEmailTaken) {
			writeFail(w, http.StatusConflict, map[string]string{"email": "already registered"})
			return
		}

		writeInternalError(r.Context(), w, fmt.Sprintf("failed to register user: %s", err.Error()))
		return
	}

	token, err := s.signer.Sign(u.ID)
	if err != nil {
		writeInternalError(r.Context(), w, fmt.Sprintf("failed to sign token: %s", err.Error()))
		return
	}

	writeSuccess(w, http.StatusCreated, TokenResponse{JWT: token})
}

func (s server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid json")
		return
	}

	missing := map[string]string{}
	if req.Email == "" {
		missing["email"] = "required"
	}
	if req.Password == "" {
		missing["password"] = "required"
	}

	if len(missing) > 0 {
		writeFail(w, http.StatusBadRequest, missing)
		return
	}

	if !isEmailValid(req.Email) {
		writeFail(w, http.StatusBadRequest, map[string]string{"email": "malformed"})
		return
	}

	u, err := s.s.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		// unknown email and wrong password are indistinguishable
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeFail(w, http.StatusUnauthorized, "invalid email or password")
			return
		}

		writeInternalError(r.Context(), w, fmt.Sprintf("failed to login: %s", err.Error()))
		return
	}

	token, err := s.signer.Sign(u.ID)
	if err != nil {
		writeInternalError(r.Context(), w, fmt.Sprintf("failed to sign token: %s", err.Error()))
		return
	}

	writeSuccess(w, http.StatusOK, TokenResponse{JWT: token})
}

func (s server) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := s.resolveUserID(w, r)
	if !ok {
		return
	}

	u, err := s.s.GetUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			writeFail(w, http.StatusNotFound, "user couldn't be found")
			return
		}

		writeInternalError(r.Context(), w, fmt.Sprintf("failed to get user: %s", err.Error()))
		return
	}

	writeSuccess(w, http.StatusOK, toAPIUser(u))
}

func (s server) updateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := s.resolveUserID(w, r)
	if !ok {
		return
	}

	caller, _ := auth.UserIDFrom(r.Context())
	if caller != id {
		writeFail(w, http.StatusForbidden, "Forbidden")
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	params := service.UpdateUserParams{
		Name:     multipartValue(r, "name"),
		Email:    multipartValue(r, "email"),
		Password: multipartValue(r, "password"),
	}

	// a supplied field has to carry a value, blanking is not allowed
	empty := map[string]string{}
	for k, v := range map[string]*string{"name": params.Name, "email": params.Email, "password": params.Password} {
		if v != nil && *v == "" {
			empty[k] = "cannot be empty"
		}
	}

	if len(empty) > 0 {
		writeFail(w, http.StatusBadRequest, empty)
		return
	}

	if params.Email != nil && !isEmailValid(*params.Email) {
		writeFail(w, http.StatusBadRequest, map[string]string{"email": "malformed"})
		return
	}

	if fhs := r.MultipartForm.File["photo"]; len(fhs) > 0 {
		filename, err := s.fs.Save(fhs[0], filestore.Image)
		if err != nil {
			if errors.Is(err, filestore.ErrUnsupportedType) {
				writeFail(w, http.StatusBadRequest, map[string]string{"photo": "unsupported media type"})
				return
			}

			writeInternalError(r.Context(), w, fmt.Sprintf("failed to store photo: %s", err.Error()))
			return
		}

		params.Photo = &filename
	}

	if err := s.s.UpdateUser(r.Context(), id, &params); err != nil {
		if params.Photo != nil {
			_ = s.fs.Remove(*params.Photo)
		}

		if errors.Is(err, service.ErrEmailTaken) {
			writeFail(w, http.StatusConflict, map[string]string{"email": "already registered"})
			return
		}

		// the caller is authenticated as this user, a missing row is a
		// server-side inconsistency
		writeInternalError(r.Context(), w, fmt.Sprintf("failed to update user: %s", err.Error()))
		return
	}

	writeSuccess(w, http.StatusOK, nil)
}

func (s server) listUserPosts(w http.ResponseWriter, r *http.Request) {
	id, ok := s.resolveUserID(w, r)
	if !ok {
		return
	}

	posts, err := s.s.ListUserPosts(r.Context(), id)
	if err != nil {
		writeInternalError(r.Context(), w, fmt.Sprintf("failed to list user posts: %s", err.Error()))
		return
	}

	writeSuccess(w, http.StatusOK, toAPIPosts(posts))
}
