package ragbot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"sync"
	"time"
)

const (
	processInterval    = 1 * time.Second
	maxJitter          = 100 * time.Millisecond
	processFileTimeout = 15 * time.Minute
)

// ProcessFiles runs the background loop that picks up uploaded files,
// extracts their documents, embeds them and saves the vectors to the search
// index. It returns a function that blocks until the loop has stopped.
func (rb *ragBot) ProcessFiles(ctx context.Context) func() {
	var (
		ticker = time.NewTicker(processInterval - maxJitter/2)
		rand   = rand.New(rand.NewSource(time.Now().UnixNano()))
		wg     = new(sync.WaitGroup)
	)
	wg.Go(func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if maxJitter > 0 {
					jitterDuration := time.Duration(rand.Int63n(int64(maxJitter)))
					if err := jitter(ctx, jitterDuration); err != nil {
						if !errors.Is(err, context.Canceled) {
							rb.logger.Sugar().Error("random jitter failed: ", err)
						}
						return
					}
				}

				total, err := rb.processFiles(ctx)
				if err != nil {
					rb.logger.Sugar().Error("error processing files: ", err)
				} else if total > 0 {
					rb.logger.Sugar().Infof("processed %d files", total)
				}
			}
		}
	})

	return func() {
		wg.Wait()
		rb.logger.Sugar().Info("stopped processing files")
	}
}

func jitter(ctx context.Context, jitterDuration time.Duration) error {
	select {
	case <-time.After(jitterDuration):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (rb *ragBot) processFiles(ctx context.Context) (int, error) {
	var files []*File
	if err := rb.store.Transactional(ctx, &sql.TxOptions{}, func(ctx context.Context) error {
		var err error
		files, err = rb.store.ListFiles(ctx, FileFilter{
			Status: FileStatusUploaded,
		}, rb.filePartial(), SortParams{
			Limit: 10,
			Order: SortOrderAsc,
			By:    `f."created"`,
		})
		if err != nil {
			return fmt.Errorf("list files: %w", err)
		}

		if len(files) == 0 {
			return nil
		}

		now := Time{rb.now()}
		for _, aFile := range files {
			aFile.Status = FileStatusProcessing
			aFile.Updated = now
			rb.logger.Sugar().Infof("state change for file: %s status: %s", aFile.ID, aFile.Status)
		}

		return rb.store.SaveFiles(ctx, files...)
	}); err != nil {
		return 0, err
	}

	for _, aFile := range files {
		processCtx, cancel := context.WithTimeout(ctx, processFileTimeout)
		defer cancel()
		if err := rb.processFile(processCtx, aFile); err != nil {
			if err := rb.processingFileFailed(ctx, aFile, err); err != nil {
				rb.logger.Sugar().Errorf("error setting status to failed for file: %s error: %v", aFile.ID, err)
			}
		}
	}

	// Files stuck in PROCESSING for longer than the timeout are marked failed
	if err := rb.store.Transactional(ctx, &sql.TxOptions{}, func(ctx context.Context) error {
		now := Time{rb.now()}

		stuck, err := rb.store.ListFiles(ctx, FileFilter{
			Status:            FileStatusProcessing,
			LastUpdatedBefore: Time{now.T.Add(-processFileTimeout)},
		}, rb.filePartial(), SortParams{})
		if err != nil {
			return fmt.Errorf("list files: %w", err)
		}

		for _, aFile := range stuck {
			if err := aFile.CompleteWithStatus(FileStatusProcessingFailed, "timed out", now); err != nil {
				return fmt.Errorf("change status: %w", err)
			}
		}

		if err := rb.store.SaveFiles(ctx, stuck...); err != nil {
			return fmt.Errorf("save files: %w", err)
		}

		return nil
	}); err != nil {
		return 0, err
	}

	return len(files), nil
}

func (rb *ragBot) processFile(ctx context.Context, aFile *File) error {
	contents, err := os.Open(aFile.Location)
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	defer func() {
		if err := contents.Close(); err != nil {
			rb.logger.Sugar().Errorf("error closing contents: %s", aFile.Location)
		}
		if err := os.Remove(aFile.Location); err != nil {
			rb.logger.Sugar().Errorf("error removing file: %s", aFile.Location)
		}
	}()

	rb.logger.Sugar().Infof("processing file: %s location: %s", aFile.ID, aFile.Location)

	documents, err := rb.extractor.Extract(ctx, aFile.FileName, contents)
	if err != nil {
		return fmt.Errorf("error extracting documents: %w", err)
	}
	for i := 0; i < len(documents); i++ {
		documents[i].FileID = aFile.ID
		documents[i].Source = aFile.FileName
		documents[i] = documents[i].Sanitize()
	}
	aFile.Documents = documents

	rb.logger.Sugar().Infof("generating vectors for documents: %d", len(aFile.Documents))

	// Use the batch embedding API to embed all documents at once.
	vectors, err := rb.embedder.EmbedDocuments(ctx, aFile.Documents)
	if err != nil {
		return fmt.Errorf("error generating vectors: %w", err)
	}
	if len(vectors) != len(aFile.Documents) {
		return fmt.Errorf("embedded batch size mismatch: %d != %d", len(vectors), len(aFile.Documents))
	}

	if err := rb.retriever.SaveDocuments(ctx, aFile.Documents, vectors); err != nil {
		return fmt.Errorf("saving embeddings: %w", err)
	}

	return rb.processingFileSucceeded(ctx, aFile)
}

func (rb *ragBot) processingFileSucceeded(ctx context.Context, aFile *File) error {
	return rb.store.Transactional(ctx, &sql.TxOptions{}, func(ctx context.Context) error {
		if err := aFile.CompleteWithStatus(FileStatusProcessedSuccessfully, "", Time{rb.now()}); err != nil {
			return fmt.Errorf("change status: %w", err)
		}
		return rb.store.SaveFiles(ctx, aFile)
	})
}

func (rb *ragBot) processingFileFailed(ctx context.Context, aFile *File, perr error) error {
	return rb.store.Transactional(ctx, &sql.TxOptions{}, func(ctx context.Context) error {
		if err := aFile.CompleteWithStatus(FileStatusProcessingFailed, perr.Error(), Time{rb.now()}); err != nil {
			return fmt.Errorf("change status: %w", err)
		}
		return rb.store.SaveFiles(ctx, aFile)
	})
}
