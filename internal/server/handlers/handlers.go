package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/vova4o/gonotes/internal/server/models"
	"github.com/vova4o/gonotes/internal/server/service"
	"github.com/vova4o/gonotes/internal/server/storage"
	"github.com/vova4o/gonotes/package/logger"
)

// maxBodySize limits request bodies
const maxBodySize = 1 << 20

// HandleService struct
type HandleService struct {
	serv   Servicer
	logger *logger.Logger
}

// Servicer interface
type Servicer interface {
	RegisterUser(ctx context.Context, creds models.Credentials) (*models.TokenResponse, error)
	AuthenticateUser(ctx context.Context, username, password string) (*models.TokenResponse, error)
	UserIDFromToken(token string) (int64, error)
	ListNotes(ctx context.Context) ([]models.Note, error)
	CreateNote(ctx context.Context, in models.NoteIn) (models.Note, error)
	UpdateNote(ctx context.Context, noteID int64, in models.NoteIn) (models.Note, error)
	DeleteNote(ctx context.Context, noteID int64) error
}

// NewHandlersService function
func NewHandlersService(serv Servicer, log *logger.Logger) *HandleService {
	return &HandleService{
		serv:   serv,
		logger: log,
	}
}

// Router builds the HTTP routes of the notes API
func (h *HandleService) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(h.logRequests)

	r.HandleFunc("/register", h.Register).Methods(http.MethodPost)
	r.HandleFunc("/token", h.Token).Methods(http.MethodPost)

	notes := r.PathPrefix("/notes").Subrouter()
	notes.Use(h.AuthMiddleware)
	notes.HandleFunc("", h.ListNotes).Methods(http.MethodGet)
	notes.HandleFunc("", h.CreateNote).Methods(http.MethodPost)
	notes.HandleFunc("/{id:[0-9]+}", h.UpdateNote).Methods(http.MethodPut)
	notes.HandleFunc("/{id:[0-9]+}", h.DeleteNote).Methods(http.MethodDelete)

	return r
}

// Register method
func (h *HandleService) Register(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := decodeJSON(w, r, &creds); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	token, err := h.serv.RegisterUser(r.Context(), creds)
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusOK, token)
	case errors.Is(err, service.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, storage.ErrUserExists):
		http.Error(w, "username already registered", http.StatusConflict)
	default:
		h.logger.Error("Failed to register user: " + err.Error())
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// Token issues an access token for the password grant
func (h *HandleService) Token(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	if grant := r.PostForm.Get("grant_type"); grant != "password" {
		http.Error(w, "unsupported grant_type", http.StatusBadRequest)
		return
	}

	token, err := h.serv.AuthenticateUser(r.Context(), r.PostForm.Get("username"), r.PostForm.Get("password"))
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusOK, token)
	case errors.Is(err, service.ErrInvalidCredentials):
		http.Error(w, "bad credentials", http.StatusUnauthorized)
	default:
		h.logger.Error("Failed to authenticate user: " + err.Error())
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// AuthMiddleware checks the bearer token and puts the user ID into the request context
func (h *HandleService) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			h.logger.Warning("Missing token")
			w.Header().Set("WWW-Authenticate", "Bearer")
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}

		userID, err := h.serv.UserIDFromToken(strings.TrimSpace(token))
		if err != nil {
			h.logger.Warning("Failed to parse token: " + err.Error())
			w.Header().Set("WWW-Authenticate", "Bearer")
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), models.UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ListNotes method
func (h *HandleService) ListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.serv.ListNotes(r.Context())
	if err != nil {
		h.writeError(w, "Failed to list notes", err)
		return
	}

	out := make([]models.NoteOut, 0, len(notes))
	for _, n := range notes {
		out = append(out, n.ToOut())
	}
	h.writeJSON(w, http.StatusOK, out)
}

// CreateNote method
func (h *HandleService) CreateNote(w http.ResponseWriter, r *http.Request) {
	var in models.NoteIn
	if err := decodeJSON(w, r, &in); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	note, err := h.serv.CreateNote(r.Context(), in)
	if err != nil {
		h.writeError(w, "Failed to create note", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, note.ToOut())
}

// UpdateNote method
func (h *HandleService) UpdateNote(w http.ResponseWriter, r *http.Request) {
	noteID, err := noteIDFromPath(r)
	if err != nil {
		http.Error(w, "invalid note id", http.StatusBadRequest)
		return
	}

	var in models.NoteIn
	if err := decodeJSON(w, r, &in); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	note, err := h.serv.UpdateNote(r.Context(), noteID, in)
	if err != nil {
		h.writeError(w, "Failed to update note", err)
		return
	}
	h.writeJSON(w, http.StatusOK, note.ToOut())
}

// DeleteNote method
func (h *HandleService) DeleteNote(w http.ResponseWriter, r *http.Request) {
	noteID, err := noteIDFromPath(r)
	if err != nil {
		http.Error(w, "invalid note id", http.StatusBadRequest)
		return
	}

	if err := h.serv.DeleteNote(r.Context(), noteID); err != nil {
		h.writeError(w, "Failed to delete note", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func noteIDFromPath(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	return json.NewDecoder(r.Body).Decode(v)
}

func (h *HandleService) writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		http.Error(w, "note not found", http.StatusNotFound)
	case errors.Is(err, service.ErrNoUser):
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	default:
		h.logger.Error(op + ": " + err.Error())
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (h *HandleService) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to write response: " + err.Error())
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (h *HandleService) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.logger.Info(fmt.Sprintf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Microsecond)))
	})
}
