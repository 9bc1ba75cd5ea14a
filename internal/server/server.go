// Package server vidshare
//
// The vidshare service provides REST access to community entities
// (users, posts, comments) and uploaded media.
//
//     Schemes: https
//     BasePath: /v1
//
//     Produces:
//     - application/json
//     Consumes:
//     - application/json
//     - multipart/form-data
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi"
	chimiddleware "github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"

	"github.com/vidshare/vidshare/internal/auth"
	"github.com/vidshare/vidshare/internal/filestore"
	mm "github.com/vidshare/vidshare/internal/middleware"
	"github.com/vidshare/vidshare/internal/service"
)

// maxBodySize has to fit an uploaded video.
const maxBodySize = 64 << 20

const statsCacheTTL = 10 * time.Minute

type server struct {
	s      service.Service
	fs     *filestore.Store
	signer *auth.Signer
}

// SetupRouter setups handlers to chi router.
func SetupRouter(s service.Service, fs *filestore.Store, signer *auth.Signer, r chi.Router, timeout time.Duration) {
	srv := server{
		s:      s,
		fs:     fs,
		signer: signer,
	}

	r.Use(
		chimiddleware.StripSlashes,
		cors.AllowAll().Handler,
		chimiddleware.RequestID,
		loggerMiddleware,
		recovererMiddleware,
		chimiddleware.Timeout(timeout),
		bodyLimit(maxBodySize),
		srv.authenticate,
	)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/user", srv.register)
		r.Post("/login", srv.login)
		r.Get("/user/{userID}", srv.getUser)
		r.Get("/user/{userID}/post", srv.listUserPosts)

		r.Get("/post", srv.listPosts)
		r.Get("/post/{postID}", srv.getPost)
		r.Get("/post/{postID}/comment", srv.listComments)
		r.Get("/post/{postID}/comment/{commentID}", srv.getComment)

		r.Get("/stats", mm.Cached(statsCacheTTL, srv.getStats))

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Put("/user/{userID}", srv.updateUser)

			r.Post("/post", srv.createPost)
			r.Put("/post/{postID}", srv.updatePost)
			r.Delete("/post/{postID}", srv.deletePost)
			r.Post("/post/{postID}/heart", srv.heartPost)

			r.Post("/post/{postID}/comment", srv.addComment)
			r.Put("/post/{postID}/comment/{commentID}", srv.updateComment)
			r.Delete("/post/{postID}/comment/{commentID}", srv.deleteComment)
		})
	})

	r.Method(http.MethodGet, "/assets/*",
		http.StripPrefix(assetsPrefix, http.FileServer(http.Dir(fs.Dir()))))
}
