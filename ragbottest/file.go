package ragbottest

import (
	"time"

	"github.com/Hmv123/ragbot"
)

type FileOption func(*ragbot.File)

func WithFileAuthorID(id ragbot.AuthorID) FileOption {
	return func(f *ragbot.File) {
		f.AuthorID = id
	}
}

func WithFileEmbedder(embedder string) FileOption {
	return func(f *ragbot.File) {
		f.Embedder = embedder
	}
}

func WithFileRetriever(retriever string) FileOption {
	return func(f *ragbot.File) {
		f.Retriever = retriever
	}
}

func WithFileStatus(status ragbot.FileStatus) FileOption {
	return func(f *ragbot.File) {
		f.Status = status
	}
}

func WithFileCreated(created time.Time) FileOption {
	return func(f *ragbot.File) {
		f.Created = ragbot.Time{T: created}
	}
}

func WithFileUpdated(updated time.Time) FileOption {
	return func(f *ragbot.File) {
		f.Updated = ragbot.Time{T: updated}
	}
}

var fileStates = []ragbot.FileStatus{
	ragbot.FileStatusUploaded,
	ragbot.FileStatusProcessing,
	ragbot.FileStatusProcessedSuccessfully,
	ragbot.FileStatusProcessingFailed,
}

func (g *DataGen) File(options ...FileOption) *ragbot.File {
	g.ShuffleAnySlice(fileStates)

	aFile := ragbot.File{
		ID:          ragbot.NewFileID(),
		AuthorID:    ragbot.NewAuthorID(),
		FileName:    g.Name() + ".pdf",
		ContentType: "application/pdf",
		Extension:   "pdf",
		Size:        g.Int64(),
		Hash:        g.LetterN(25),
		Embedder:    g.Name(),
		Retriever:   g.Name(),
		Location:    g.Word(),
		Status:      fileStates[0],
		Created:     ragbot.Time{T: g.now},
		Updated:     ragbot.Time{T: g.now},
	}

	for _, o := range options {
		o(&aFile)
	}

	return &aFile
}
