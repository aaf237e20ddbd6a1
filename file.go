package ragbot

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"

	"github.com/gofrs/uuid/v5"

	"github.com/Hmv123/ragbot/pkg/authz"
)

const (
	MB          = 1 << 20
	MaxFileSize = 20 * MB
)

type FileID struct{ uuid.UUID }

func NewFileID() FileID {
	return FileID{uuid.Must(uuid.NewV4())}
}

type AuthorID struct{ uuid.UUID }

func NewAuthorID() AuthorID {
	return AuthorID{uuid.Must(uuid.NewV4())}
}

type FileStatus string

const (
	FileStatusUploaded              FileStatus = "UPLOADED"
	FileStatusProcessing            FileStatus = "PROCESSING"
	FileStatusProcessedSuccessfully FileStatus = "PROCESSED_SUCCESSFULLY"
	FileStatusProcessingFailed      FileStatus = "PROCESSING_FAILED"
)

type File struct {
	ID            FileID
	AuthorID      AuthorID
	FileName      string
	ContentType   string
	Extension     string
	Size          int64
	Hash          string
	Embedder      string // adapter used to generate embeddings for this file
	Retriever     string // adapter used to store/retrieve embeddings for this file
	Location      string
	Status        FileStatus
	StatusMessage string
	Created       Time
	Updated       Time
	Documents     []Document
}

// CompleteWithStatus moves a file from PROCESSING into one of the terminal
// states, FileStatusProcessedSuccessfully or FileStatusProcessingFailed.
func (f *File) CompleteWithStatus(newStatus FileStatus, message string, updatedAt Time) error {
	if f.Status != FileStatusProcessing {
		return fmt.Errorf("cannot change status from %s to %s", f.Status, newStatus)
	}

	f.Status = newStatus
	f.StatusMessage = message
	f.Updated = updatedAt

	return nil
}

type FileFilter struct {
	Status            FileStatus
	LastUpdatedBefore Time
}

func (rb *ragBot) CreateFile(ctx context.Context, principal authz.Principal, file io.ReadSeeker, header *multipart.FileHeader) (*File, error) {
	contentType, ok, err := checkContentType(file)
	if err != nil {
		return nil, fmt.Errorf("error checking content type: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("unsupported file type: %s", contentType)
	}

	// Reset the offset to the beginning so the whole file is copied
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("error seeking file to start: %w", err)
	}

	tempFile, err := os.CreateTemp("", "ragbot-upload-*")
	if err != nil {
		return nil, fmt.Errorf("error creating temp file: %w", err)
	}
	defer tempFile.Close()

	rb.logger.Sugar().With(
		"file name", header.Filename,
		"size", header.Size,
	).Info("uploading file")

	hashWriter := sha256.New()
	fileSize, err := io.Copy(tempFile, io.TeeReader(file, hashWriter))
	if err != nil {
		return nil, fmt.Errorf("error copying to temp file: %w", err)
	}

	aFile := &File{
		ID:          NewFileID(),
		AuthorID:    AuthorID{principal.ID().UUID},
		FileName:    header.Filename,
		ContentType: contentType,
		Extension:   strings.TrimPrefix(contentType, "application/"),
		Size:        fileSize,
		Hash:        hex.EncodeToString(hashWriter.Sum(nil)),
		Embedder:    rb.embedder.Name(),
		Retriever:   rb.retriever.Name(),
		Location:    tempFile.Name(),
		Status:      FileStatusUploaded,
		Created:     Time{rb.now()},
		Updated:     Time{rb.now()},
	}

	if err := rb.store.Transactional(ctx, &sql.TxOptions{}, func(ctx context.Context) error {
		if err := rb.store.SavePrincipal(ctx, principal); err != nil {
			return fmt.Errorf("error saving principal: %w", err)
		}

		if err := rb.store.SaveFiles(ctx, aFile); err != nil {
			return fmt.Errorf("error saving file: %w", err)
		}

		return nil
	}); err != nil {
		return nil, err
	}

	return aFile, nil
}

func (rb *ragBot) ListFiles(ctx context.Context, principal authz.Principal) ([]*File, error) {
	var files []*File
	if err := rb.store.Transactional(ctx, &sql.TxOptions{}, func(ctx context.Context) error {
		var err error
		files, err = rb.store.ListFiles(ctx, FileFilter{}, rb.filePartial(), SortParams{
			By:    `f."created"`,
			Order: SortOrderDesc,
		})
		return err
	}); err != nil {
		return nil, err
	}
	return files, nil
}

func (rb *ragBot) FindFile(ctx context.Context, principal authz.Principal, id FileID) (*File, error) {
	var aFile *File
	if err := rb.store.Transactional(ctx, &sql.TxOptions{}, func(ctx context.Context) error {
		var err error
		aFile, err = rb.store.FindFile(ctx, id, rb.filePartial())
		return err
	}); err != nil {
		return nil, err
	}
	return aFile, nil
}

// DeleteFile removes the file metadata as well as its documents from the
// search index.
func (rb *ragBot) DeleteFile(ctx context.Context, principal authz.Principal, id FileID) error {
	return rb.store.Transactional(ctx, &sql.TxOptions{}, func(ctx context.Context) error {
		aFile, err := rb.store.FindFile(ctx, id, rb.filePartial())
		if err != nil {
			return err
		}

		if err := rb.retriever.DeleteFileDocuments(ctx, aFile.ID); err != nil {
			return fmt.Errorf("delete file documents: %w", err)
		}

		return rb.store.DeleteFiles(ctx, aFile)
	})
}

var allowedContentTypes = map[string]struct{}{
	"application/pdf": {},
}

func checkContentType(reader io.Reader) (string, bool, error) {
	contentType, err := detectContentType(reader)
	if err != nil {
		return "", false, err
	}
	_, ok := allowedContentTypes[contentType]
	return contentType, ok, nil
}

func detectContentType(reader io.Reader) (string, error) {
	// http.DetectContentType uses at most the first 512 bytes
	buff := make([]byte, 512)

	bytesRead, err := reader.Read(buff)
	if err != nil && err != io.EOF {
		return "", err
	}

	// Trim fill-up zero values which would skew detection for short files
	buff = buff[:bytesRead]

	return http.DetectContentType(buff), nil
}
