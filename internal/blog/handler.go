package blog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/blogtracker/internal/auth"
	"github.com/2beens/blogtracker/pkg"
)

// route names, the auth middleware allow-list refers to them
const (
	RouteNewPost        = "new-post"
	RouteNewPostNoSlash = "new-post-no-slash"
	RoutePublicPosts    = "public-posts"
	RouteMyPosts        = "my-posts"
	RouteGetPost        = "get-post"
	RouteUpdatePost     = "update-post"
	RouteDeletePost     = "delete-post"
)

const (
	deletedMessage       = "Blog deleted successfully"
	notFoundDetail       = "Blog not found"
	forbiddenDetail      = "Not authorized"
	internalErrorDetail  = "Internal server error"
	invalidRequestDetail = "Invalid request body"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=blog

type postsService interface {
	Create(ctx context.Context, principal *auth.Principal, req NewPostRequest) (*Post, error)
	ListPublic(ctx context.Context) ([]*Post, error)
	ListMine(ctx context.Context, principal *auth.Principal) ([]*Post, error)
	Get(ctx context.Context, principal *auth.Principal, id string) (*Post, error)
	Update(ctx context.Context, principal *auth.Principal, id string, patch PostPatch) (*Post, error)
	Delete(ctx context.Context, principal *auth.Principal, id string) error
}

type MessageResponse struct {
	Message string `json:"message"`
}

type Handler struct {
	service postsService
}

func NewHandler(service postsService) *Handler {
	return &Handler{
		service: service,
	}
}

// SetupRoutes registers the /blogs routes; /public and /me go before /{id}
func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/blogs/", handler.handleNewPost).Methods("POST", "OPTIONS").Name(RouteNewPost)
	router.HandleFunc("/blogs", handler.handleNewPost).Methods("POST", "OPTIONS").Name(RouteNewPostNoSlash)
	router.HandleFunc("/blogs/public", handler.handlePublic).Methods("GET", "OPTIONS").Name(RoutePublicPosts)
	router.HandleFunc("/blogs/me", handler.handleMine).Methods("GET", "OPTIONS").Name(RouteMyPosts)
	router.HandleFunc("/blogs/{id}", handler.handleGet).Methods("GET", "OPTIONS").Name(RouteGetPost)
	router.HandleFunc("/blogs/{id}", handler.handleUpdate).Methods("PUT", "OPTIONS").Name(RouteUpdatePost)
	router.HandleFunc("/blogs/{id}", handler.handleDelete).Methods("DELETE", "OPTIONS").Name(RouteDeletePost)
}

func (handler *Handler) handleNewPost(w http.ResponseWriter, r *http.Request) {
	var req NewPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Debugf("new blog post, unmarshal json body: %s", err)
		pkg.WriteJSONError(w, invalidRequestDetail, http.StatusBadRequest)
		return
	}

	principal, _ := auth.PrincipalFromContext(r.Context())
	post, err := handler.service.Create(r.Context(), principal, req)
	if err != nil {
		writeError(w, "create blog post", err)
		return
	}

	pkg.WriteJSON(w, post, http.StatusCreated)
}

func (handler *Handler) handlePublic(w http.ResponseWriter, r *http.Request) {
	posts, err := handler.service.ListPublic(r.Context())
	if err != nil {
		writeError(w, "list public blog posts", err)
		return
	}

	pkg.WriteJSON(w, posts, http.StatusOK)
}

func (handler *Handler) handleMine(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())
	posts, err := handler.service.ListMine(r.Context(), principal)
	if err != nil {
		writeError(w, "list my blog posts", err)
		return
	}

	pkg.WriteJSON(w, posts, http.StatusOK)
}

func (handler *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	// optional here: anonymous callers only see public posts
	principal, _ := auth.PrincipalFromContext(r.Context())
	post, err := handler.service.Get(r.Context(), principal, id)
	if err != nil {
		writeError(w, "get blog post", err)
		return
	}

	pkg.WriteJSON(w, post, http.StatusOK)
}

func (handler *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var patch PostPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		log.Debugf("update blog post %s, unmarshal json body: %s", id, err)
		pkg.WriteJSONError(w, invalidRequestDetail, http.StatusBadRequest)
		return
	}

	principal, _ := auth.PrincipalFromContext(r.Context())
	post, err := handler.service.Update(r.Context(), principal, id, patch)
	if err != nil {
		writeError(w, "update blog post", err)
		return
	}

	pkg.WriteJSON(w, post, http.StatusOK)
}

func (handler *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	principal, _ := auth.PrincipalFromContext(r.Context())
	if err := handler.service.Delete(r.Context(), principal, id); err != nil {
		writeError(w, "delete blog post", err)
		return
	}

	pkg.WriteJSON(w, MessageResponse{Message: deletedMessage}, http.StatusOK)
}

func writeError(w http.ResponseWriter, action string, err error) {
	var storageErr *StorageError
	switch {
	case errors.Is(err, auth.ErrMissingCredential),
		errors.Is(err, auth.ErrMalformedCredential),
		errors.Is(err, auth.ErrInvalidCredential):
		pkg.WriteJSONError(w, auth.PublicDetail(err), http.StatusUnauthorized)
	case errors.Is(err, ErrPostNotFound):
		pkg.WriteJSONError(w, notFoundDetail, http.StatusNotFound)
	case errors.Is(err, ErrForbidden):
		pkg.WriteJSONError(w, forbiddenDetail, http.StatusForbidden)
	case errors.Is(err, ErrValidation):
		pkg.WriteJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &storageErr):
		log.Errorf("%s: %s", action, err)
		pkg.WriteJSONError(w, internalErrorDetail, http.StatusInternalServerError)
	default:
		log.Errorf("%s, unexpected error: %s", action, err)
		pkg.WriteJSONError(w, internalErrorDetail, http.StatusInternalServerError)
	}
}
