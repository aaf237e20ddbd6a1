package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gofrs/uuid/v5"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/Hmv123/ragbot"
	"github.com/Hmv123/ragbot/api"
)

const askTimeout = 60 * time.Second

// Start a new chat session
// (POST /v1/sessions)
func (a *Adapter) CreateSession(w http.ResponseWriter, r *http.Request) {
	var (
		ctx, cancel = context.WithTimeout(r.Context(), defaultTimeout)
		principal   = a.principalFromRequest(r)
	)
	defer cancel()

	apiRequest := api.CreateSessionRequest{}
	if r.ContentLength > 0 {
		if err := readRequestJSON(r, &apiRequest); err != nil {
			renderJSONError(w, http.StatusBadRequest, err)
			return
		}
	}

	aSession, err := a.ragBot.CreateSession(ctx, principal, apiRequest.Title)
	if err != nil {
		a.logger.Sugar().With("error", err).Error("error creating session")
		renderJSONError(w, http.StatusInternalServerError, fmt.Errorf("error creating session: %w", err))
		return
	}

	w.WriteHeader(http.StatusCreated)
	renderJSON(w, mapSession(aSession))
}

func mapSession(session *ragbot.Session) api.Session {
	return api.Session{
		Id:        openapi_types.UUID(session.ID.UUID[0:16]),
		Title:     session.Title,
		CreatedAt: session.Created.T,
		UpdatedAt: session.Updated.T,
	}
}

// List chat sessions
// (GET /v1/sessions)
func (a *Adapter) ListSessions(w http.ResponseWriter, r *http.Request) {
	var (
		ctx, cancel = context.WithTimeout(r.Context(), defaultTimeout)
		principal   = a.principalFromRequest(r)
	)
	defer cancel()

	sessions, err := a.ragBot.ListSessions(ctx, principal)
	if err != nil {
		a.logger.Sugar().With("error", err).Error("error listing sessions")
		renderJSONError(w, http.StatusInternalServerError, fmt.Errorf("error listing sessions: %w", err))
		return
	}

	apiResponse := api.Sessions{
		Sessions: make([]api.Session, 0, len(sessions)),
	}
	for _, aSession := range sessions {
		apiResponse.Sessions = append(apiResponse.Sessions, mapSession(aSession))
	}

	renderJSON(w, apiResponse)
}

// Get a single chat session by ID
// (GET /v1/sessions/{id})
func (a *Adapter) GetSessionById(w http.ResponseWriter, r *http.Request) {
	var (
		ctx, cancel = context.WithTimeout(r.Context(), defaultTimeout)
		principal   = a.principalFromRequest(r)
	)
	defer cancel()

	id, err := idFromRequest(r)
	if err != nil {
		renderJSONError(w, http.StatusBadRequest, err)
		return
	}

	aSession, err := a.ragBot.FindSession(ctx, principal, ragbot.SessionID{UUID: id})
	if err != nil {
		if errors.Is(err, ragbot.ErrNotFound) {
			renderJSONError(w, http.StatusNotFound, fmt.Errorf("session not found"))
			return
		}
		a.logger.Sugar().With("error", err).Error("error finding session")
		renderJSONError(w, http.StatusInternalServerError, fmt.Errorf("error finding session: %w", err))
		return
	}

	renderJSON(w, mapSession(aSession))
}

// List messages of a chat session
// (GET /v1/sessions/{id}/messages)
func (a *Adapter) ListSessionMessages(w http.ResponseWriter, r *http.Request) {
	var (
		ctx, cancel = context.WithTimeout(r.Context(), defaultTimeout)
		principal   = a.principalFromRequest(r)
	)
	defer cancel()

	id, err := idFromRequest(r)
	if err != nil {
		renderJSONError(w, http.StatusBadRequest, err)
		return
	}

	messages, err := a.ragBot.ListSessionMessages(ctx, principal, ragbot.SessionID{UUID: id})
	if err != nil {
		if errors.Is(err, ragbot.ErrNotFound) {
			renderJSONError(w, http.StatusNotFound, fmt.Errorf("session not found"))
			return
		}
		a.logger.Sugar().With("error", err).Error("error listing session messages")
		renderJSONError(w, http.StatusInternalServerError, fmt.Errorf("error listing session messages: %w", err))
		return
	}

	apiResponse := api.Messages{
		Messages: make([]api.Message, 0, len(messages)),
	}
	for _, aMessage := range messages {
		apiResponse.Messages = append(apiResponse.Messages, api.Message{
			Id:        openapi_types.UUID(aMessage.ID.UUID[0:16]),
			Role:      string(aMessage.Role),
			Content:   aMessage.Content,
			CreatedAt: aMessage.Created.T,
		})
	}

	renderJSON(w, apiResponse)
}

// Ask a question within a chat session
// (POST /v1/sessions/{id}/ask)
func (a *Adapter) Ask(w http.ResponseWriter, r *http.Request) {
	var (
		ctx, cancel = context.WithTimeout(r.Context(), askTimeout)
		principal   = a.principalFromRequest(r)
	)
	defer cancel()

	id, err := idFromRequest(r)
	if err != nil {
		renderJSONError(w, http.StatusBadRequest, err)
		return
	}

	apiRequest := api.AskRequest{}
	if err := readRequestJSON(r, &apiRequest); err != nil {
		renderJSONError(w, http.StatusBadRequest, err)
		return
	}

	if apiRequest.Question == "" {
		renderJSONError(w, http.StatusBadRequest, fmt.Errorf("missing question"))
		return
	}

	fileIDs, err := mapOpenApiFileIDs(apiRequest.FileIds)
	if err != nil {
		renderJSONError(w, http.StatusBadRequest, err)
		return
	}

	answer, err := a.ragBot.Ask(ctx, principal, ragbot.SessionID{UUID: id}, apiRequest.Question, fileIDs...)
	if err != nil {
		if errors.Is(err, ragbot.ErrNotFound) {
			renderJSONError(w, http.StatusNotFound, fmt.Errorf("session not found"))
			return
		}
		a.logger.Sugar().With("error", err).Error("error generating answer")
		renderJSONError(w, http.StatusInternalServerError, fmt.Errorf("error generating answer: %w", err))
		return
	}

	apiResponse := api.AskResponse{
		Answer:    answer.Text,
		Documents: make([]api.Document, 0, len(answer.Documents)),
	}
	for _, doc := range answer.Documents {
		apiResponse.Documents = append(apiResponse.Documents, mapDocument(doc))
	}

	renderJSON(w, apiResponse)
}

func mapOpenApiFileIDs(ids []openapi_types.UUID) ([]ragbot.FileID, error) {
	fileIDs := make([]ragbot.FileID, 0, len(ids))
	for _, id := range ids {
		fileID, err := uuid.FromString(id.String())
		if err != nil {
			return nil, err
		}
		fileIDs = append(fileIDs, ragbot.FileID{UUID: fileID})
	}
	return fileIDs, nil
}
