package misc

import (
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/blogtracker/internal/auth"
	"github.com/2beens/blogtracker/pkg"
)

const (
	RouteRoot      = "root"
	RouteProtected = "protected"
	RouteVersion   = "version"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type ProtectedResponse struct {
	Message string  `json:"message"`
	UID     string  `json:"uid"`
	Email   *string `json:"email"` // null when the token has no email claim
}

type Handler struct {
	versionInfo string
}

func NewHandler(versionInfo string) *Handler {
	return &Handler{
		versionInfo: versionInfo,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	mainRouter.HandleFunc("/", handler.handleRoot).Methods("GET", "OPTIONS").Name(RouteRoot)
	mainRouter.HandleFunc("/protected", handler.handleProtected).Methods("GET", "OPTIONS").Name(RouteProtected)
	mainRouter.HandleFunc("/version", handler.handleGetVersionInfo).Methods("GET").Name(RouteVersion)
}

func (handler *Handler) handleRoot(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteJSON(w, HealthResponse{
		Status:  "ok",
		Message: "BlogTracker API running",
	}, http.StatusOK)
}

// handleProtected echoes the verified identity back to the caller
func (handler *Handler) handleProtected(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		log.Errorf("protected route reached without a principal")
		pkg.WriteJSONError(w, auth.PublicDetail(auth.ErrMissingCredential), http.StatusUnauthorized)
		return
	}

	resp := ProtectedResponse{
		Message: "You are authenticated",
		UID:     principal.SubjectID,
	}
	if principal.Email != "" {
		resp.Email = &principal.Email
	}
	pkg.WriteJSON(w, resp, http.StatusOK)
}

func (handler *Handler) handleGetVersionInfo(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, handler.versionInfo)
}
