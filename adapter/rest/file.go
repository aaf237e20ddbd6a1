package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/Hmv123/ragbot"
	"github.com/Hmv123/ragbot/api"
)

// TODO - implement a file lifecycle so UploadFile can return relatively quickly
// and the file is processed in the background. This will allow us to return a 202 Accepted
// response with a Location header pointing to the file resource, which can be polled for status.
const uploadTimeout = 300 * time.Second

// Upload a file and add documents extracted from it to the knowledge base
// (POST /v1/files)
func (a *Adapter) UploadFile(w http.ResponseWriter, r *http.Request) {
	var (
		ctx, cancel = context.WithTimeout(r.Context(), uploadTimeout)
		principal   = a.principalFromRequest(r)
	)
	defer cancel()

	// Limit memory usage to 20MB, anything over this limit will be stored in a temporary file.
	r.ParseMultipartForm(ragbot.MaxFileSize)

	// Limit the size of the request body to prevent large uploads. This will return
	// io.MaxBytesError if the request body exceeds the limit while being read.
	r.Body = http.MaxBytesReader(w, r.Body, ragbot.MaxFileSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		renderJSONError(w, http.StatusBadRequest, fmt.Errorf("error reading file from request: %w", err))
		return
	}
	defer file.Close()

	aFile, err := a.ragBot.CreateFile(ctx, principal, file, header)
	if err != nil {
		a.logger.Sugar().With("error", err).Error("error creating file")
		renderJSONError(w, http.StatusInternalServerError, fmt.Errorf("error creating file: %w", err))
		return
	}

	w.WriteHeader(http.StatusCreated)
	renderJSON(w, mapFile(aFile))
}

func mapFile(file *ragbot.File) api.File {
	return api.File{
		Id:            openapi_types.UUID(file.ID.UUID[0:16]),
		FileName:      file.FileName,
		ContentType:   file.ContentType,
		Extension:     file.Extension,
		Size:          file.Size,
		Hash:          file.Hash,
		Status:        api.FileStatus(file.Status),
		StatusMessage: file.StatusMessage,
		CreatedAt:     file.Created.T,
		UpdatedAt:     file.Updated.T,
	}
}

// List uploaded files
// (GET /v1/files)
func (a *Adapter) ListFiles(w http.ResponseWriter, r *http.Request) {
	var (
		ctx, cancel = context.WithTimeout(r.Context(), defaultTimeout)
		principal   = a.principalFromRequest(r)
	)
	defer cancel()

	files, err := a.ragBot.ListFiles(ctx, principal)
	if err != nil {
		a.logger.Sugar().With("error", err).Error("error listing files")
		renderJSONError(w, http.StatusInternalServerError, fmt.Errorf("error listing files: %w", err))
		return
	}

	renderJSON(w, mapFiles(files))
}

func mapFiles(files []*ragbot.File) api.Files {
	apiResponse := api.Files{
		Files: make([]api.File, 0, len(files)),
	}
	for _, file := range files {
		apiResponse.Files = append(apiResponse.Files, mapFile(file))
	}
	return apiResponse
}

// Get a single file by ID
// (GET /v1/files/{id})
func (a *Adapter) GetFileById(w http.ResponseWriter, r *http.Request) {
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

	aFile, err := a.ragBot.FindFile(ctx, principal, ragbot.FileID{UUID: id})
	if err != nil {
		if errors.Is(err, ragbot.ErrNotFound) {
			renderJSONError(w, http.StatusNotFound, fmt.Errorf("file not found"))
			return
		}
		a.logger.Sugar().With("error", err).Error("error finding file")
		renderJSONError(w, http.StatusInternalServerError, fmt.Errorf("error finding file: %w", err))
		return
	}

	renderJSON(w, mapFile(aFile))
}

// Delete a file together with its indexed documents
// (DELETE /v1/files/{id})
func (a *Adapter) DeleteFileById(w http.ResponseWriter, r *http.Request) {
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

	if err := a.ragBot.DeleteFile(ctx, principal, ragbot.FileID{UUID: id}); err != nil {
		if errors.Is(err, ragbot.ErrNotFound) {
			renderJSONError(w, http.StatusNotFound, fmt.Errorf("file not found"))
			return
		}
		a.logger.Sugar().With("error", err).Error("error deleting file")
		renderJSONError(w, http.StatusInternalServerError, fmt.Errorf("error deleting file: %w", err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// List file documents
// (GET /v1/files/{id}/documents)
func (a *Adapter) ListFileDocuments(w http.ResponseWriter, r *http.Request) {
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

	documents, err := a.ragBot.ListFileDocuments(ctx, principal, ragbot.FileID{UUID: id})
	if err != nil {
		if errors.Is(err, ragbot.ErrNotFound) {
			renderJSONError(w, http.StatusNotFound, fmt.Errorf("file documents not found"))
			return
		}
		a.logger.Sugar().With("error", err).Error("error listing file documents")
		renderJSONError(w, http.StatusInternalServerError, fmt.Errorf("error listing file documents: %w", err))
		return
	}

	renderJSON(w, mapDocuments(documents))
}

func mapDocument(document ragbot.Document) api.Document {
	return api.Document{
		FileId:  openapi_types.UUID(document.FileID.UUID[0:16]),
		Content: document.Content,
		Page:    int32(document.Page),
		Source:  document.Source,
	}
}

func mapDocuments(documents []ragbot.Document) api.Documents {
	apiResponse := api.Documents{
		Documents: make([]api.Document, 0, len(documents)),
	}
	for _, doc := range documents {
		apiResponse.Documents = append(apiResponse.Documents, mapDocument(doc))
	}
	return apiResponse
}
