package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/Hmv123/ragbot"
	"github.com/Hmv123/ragbot/api"
	"github.com/Hmv123/ragbot/pkg/authz"
)

type RagBot interface {
	CreateFile(ctx context.Context, principal authz.Principal, file io.ReadSeeker, header *multipart.FileHeader) (*ragbot.File, error)
	ListFiles(ctx context.Context, principal authz.Principal) ([]*ragbot.File, error)
	FindFile(ctx context.Context, principal authz.Principal, id ragbot.FileID) (*ragbot.File, error)
	DeleteFile(ctx context.Context, principal authz.Principal, id ragbot.FileID) error
	ListFileDocuments(ctx context.Context, principal authz.Principal, id ragbot.FileID) ([]ragbot.Document, error)
	CreateSession(ctx context.Context, principal authz.Principal, title string) (*ragbot.Session, error)
	ListSessions(ctx context.Context, principal authz.Principal) ([]*ragbot.Session, error)
	FindSession(ctx context.Context, principal authz.Principal, id ragbot.SessionID) (*ragbot.Session, error)
	ListSessionMessages(ctx context.Context, principal authz.Principal, id ragbot.SessionID) ([]ragbot.Message, error)
	Ask(ctx context.Context, principal authz.Principal, id ragbot.SessionID, question string, fileIDs ...ragbot.FileID) (ragbot.Answer, error)
}

type Adapter struct {
	ragBot RagBot
	logger *zap.Logger
}

type Option func(*Adapter)

func WithLogger(logger *zap.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

func New(ragBot RagBot, options ...Option) *Adapter {
	a := &Adapter{
		ragBot: ragBot,
		logger: zap.NewNop(),
	}

	for _, o := range options {
		o(a)
	}

	return a
}

const (
	defaultTimeout = 3 * time.Second
)

var (
	principalID     = authz.ID{UUID: uuid.Must(uuid.FromString("b486ea88-95c4-4140-86c9-dd19f6fa879f"))}
	staticPrincipal = authz.New(principalID, "static-user")
)

func (a *Adapter) principalFromRequest(r *http.Request) authz.Principal {
	// TODO - get actual principal from the request later when auth is implemented.
	// For now, we use a static hardcoded principal for testing purposes.
	return staticPrincipal
}

func (a *Adapter) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/files", a.UploadFile)
	mux.HandleFunc("GET /v1/files", a.ListFiles)
	mux.HandleFunc("GET /v1/files/{id}", a.GetFileById)
	mux.HandleFunc("DELETE /v1/files/{id}", a.DeleteFileById)
	mux.HandleFunc("GET /v1/files/{id}/documents", a.ListFileDocuments)

	mux.HandleFunc("POST /v1/sessions", a.CreateSession)
	mux.HandleFunc("GET /v1/sessions", a.ListSessions)
	mux.HandleFunc("GET /v1/sessions/{id}", a.GetSessionById)
	mux.HandleFunc("GET /v1/sessions/{id}/messages", a.ListSessionMessages)
	mux.HandleFunc("POST /v1/sessions/{id}/ask", a.Ask)

	return mux
}

func idFromRequest(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.FromString(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid ID: %w", err)
	}
	return id, nil
}

// renderJSON renders v as JSON and writes it as a response into w.
func renderJSON(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func renderJSONError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	data, _ := json.Marshal(api.Error{Message: err.Error()})
	w.Write(data)
}

// readRequestJSON expects req to have a JSON content type with a body that
// contains v.
func readRequestJSON(r *http.Request, v any) error {
	contentType := r.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return err
	}
	if mediaType != "application/json" {
		return fmt.Errorf("expected application/json Content-Type, got %s", mediaType)
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
