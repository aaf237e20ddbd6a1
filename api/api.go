// Package api defines the JSON types exchanged over the REST API.
package api

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

type FileStatus string

const (
	FileStatusUploaded              FileStatus = "UPLOADED"
	FileStatusProcessing            FileStatus = "PROCESSING"
	FileStatusProcessedSuccessfully FileStatus = "PROCESSED_SUCCESSFULLY"
	FileStatusProcessingFailed      FileStatus = "PROCESSING_FAILED"
)

type File struct {
	Id            openapi_types.UUID `json:"id"`
	FileName      string             `json:"file_name"`
	ContentType   string             `json:"content_type"`
	Extension     string             `json:"extension"`
	Size          int64              `json:"size"`
	Hash          string             `json:"hash"`
	Status        FileStatus         `json:"status"`
	StatusMessage string             `json:"status_message,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

type Files struct {
	Files []File `json:"files"`
}

type Document struct {
	FileId  openapi_types.UUID `json:"file_id"`
	Content string             `json:"content"`
	Page    int32              `json:"page"`
	Source  string             `json:"source,omitempty"`
}

type Documents struct {
	Documents []Document `json:"documents"`
}

type Session struct {
	Id        openapi_types.UUID `json:"id"`
	Title     string             `json:"title"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

type Sessions struct {
	Sessions []Session `json:"sessions"`
}

type CreateSessionRequest struct {
	Title string `json:"title,omitempty"`
}

type Message struct {
	Id        openapi_types.UUID `json:"id"`
	Role      string             `json:"role"`
	Content   string             `json:"content"`
	CreatedAt time.Time          `json:"created_at"`
}

type Messages struct {
	Messages []Message `json:"messages"`
}

type AskRequest struct {
	Question string               `json:"question"`
	FileIds  []openapi_types.UUID `json:"file_ids,omitempty"`
}

type AskResponse struct {
	Answer    string     `json:"answer"`
	Documents []Document `json:"documents"`
}

type Error struct {
	Message string `json:"message"`
}

func String(v string) *string {
	return &v
}

func FromString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func Int(v int) *int {
	return &v
}

func FromInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
