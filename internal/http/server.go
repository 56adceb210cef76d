package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/patrickmn/go-cache"
	"github.com/rs/cors"

	"github.com/mahmoudBH/gestion-etudiant/internal/auth"
	"github.com/mahmoudBH/gestion-etudiant/internal/config"
	"github.com/mahmoudBH/gestion-etudiant/internal/model"
	"github.com/mahmoudBH/gestion-etudiant/internal/storage"
)

// Store is the persistence surface the handlers rely on.
type Store interface {
	CreateUser(ctx context.Context, user model.User) (int64, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	GetUserByID(ctx context.Context, userID int64) (model.User, error)
	GetUserClass(ctx context.Context, userID int64) (string, error)
	UpdateProfile(ctx context.Context, userID int64, update model.ProfileUpdate) (bool, error)
	ChangePassword(ctx context.Context, userID int64, verify func(storedHash string) error, newHash string) error
	UpdateProfilePhoto(ctx context.Context, userID int64, photoPath string) (bool, error)
	ListNotesByUser(ctx context.Context, userID int64) ([]model.Note, error)
	CreateCourse(ctx context.Context, course model.Course) (int64, error)
	ListCoursesByClass(ctx context.Context, class string) ([]model.Course, error)
	ListContacts(ctx context.Context) ([]model.Contact, error)
}

type Server struct {
	cfg      config.Config
	store    Store
	tokens   *auth.Tokens
	uploads  *storage.Uploads
	denylist auth.Denylist
	validate *validator.Validate
	contacts *cache.Cache
	metrics  *metrics
}

// NewServer wires the handlers. denylist may be nil, in which case logout
// cannot revoke tokens before they expire.
func NewServer(cfg config.Config, store Store, tokens *auth.Tokens, uploads *storage.Uploads, denylist auth.Denylist) *Server {
	s := &Server{
		cfg:      cfg,
		store:    store,
		tokens:   tokens,
		uploads:  uploads,
		denylist: denylist,
		validate: newValidator(),
		metrics:  newMetrics(),
	}
	if cfg.ContactsCacheTTL > 0 {
		s.contacts = cache.New(cfg.ContactsCacheTTL, 2*cfg.ContactsCacheTTL)
	}
	return s
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.instrument)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   s.cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", s.metrics.handler())
	r.Handle("/"+storage.URLPrefix+"/*", http.StripPrefix("/"+storage.URLPrefix+"/", s.uploads.FileServer()))

	r.Route("/api", func(r chi.Router) {
		r.Post("/signup", s.handleSignup)
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)
		r.Get("/session", s.handleSession)
		r.Get("/contacts", s.handleListContacts)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/notes", s.withIdentity(s.handleListNotes))
			r.Get("/mesnotes", s.withIdentity(s.handleListNotes))

			r.Get("/profile", s.withIdentity(s.handleGetProfile))
			r.Put("/profile", s.withIdentity(s.handleUpdateProfile))
			r.Put("/change-password", s.withIdentity(s.handleChangePassword))
			r.Put("/upload-photo", s.withIdentity(s.handleUploadPhoto))

			r.Post("/cours", s.withIdentity(s.handleCreateCourse))
			r.Get("/mescours", s.withIdentity(s.handleListMyCourses))
		})
	})

	return r
}

// Auth

var errMissingToken = errors.New("missing_token")

type claimsKey struct{}

// identityHandler receives the verified caller explicitly so ownership
// checks never read identity from the request body.
type identityHandler func(w http.ResponseWriter, r *http.Request, identity auth.Identity)

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.authenticate(r)
		if err != nil {
			status := authStatus(err)
			switch status {
			case http.StatusUnauthorized:
				writeFailure(w, status, "Unauthorized access.")
			case http.StatusForbidden:
				writeFailure(w, status, "Invalid token.")
			default:
				storeFailure(w, r, status, "Could not verify token.", err)
			}
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) withIdentity(h identityHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFromContext(r.Context())
		if claims == nil {
			writeFailure(w, http.StatusUnauthorized, "Unauthorized access.")
			return
		}
		h(w, r, claims.Identity)
	}
}

func (s *Server) authenticate(r *http.Request) (*auth.Claims, error) {
	token := bearerToken(r.Header.Get("Authorization"))
	if token == "" {
		return nil, errMissingToken
	}
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	if s.denylist != nil {
		revoked, err := s.denylist.Revoked(r.Context(), claims.RegisteredClaims.ID)
		if err != nil {
			return nil, fmt.Errorf("denylist lookup: %w", err)
		}
		if revoked {
			return nil, auth.ErrInvalidToken
		}
	}
	return claims, nil
}

func authStatus(err error) int {
	switch {
	case errors.Is(err, errMissingToken):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func claimsFromContext(ctx context.Context) *auth.Claims {
	value := ctx.Value(claimsKey{})
	claims, _ := value.(*auth.Claims)
	return claims
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Helpers

type result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// missingFields validates req and lists the json names of absent fields.
func (s *Server) missingFields(req interface{}) (string, bool) {
	err := s.validate.Struct(req)
	if err == nil {
		return "", false
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return "invalid request", true
	}
	names := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		names = append(names, fe.Field())
	}
	return "Missing required fields: " + strings.Join(names, ", ") + ".", true
}

func decodeJSON(r *http.Request, out interface{}) error {
	return json.NewDecoder(r.Body).Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, result{Success: false, Message: message})
}

// storeFailure logs err server-side and answers with a generic message.
func storeFailure(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	logFailure(r, err)
	writeFailure(w, status, message)
}

func logFailure(r *http.Request, err error) {
	log.Printf("[%s] %s %s: %v", middleware.GetReqID(r.Context()), r.Method, r.URL.Path, err)
}
