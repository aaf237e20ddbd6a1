package redis

import (
	"math/rand/v2"

	"github.com/gofrs/uuid/v5"

	"github.com/Hmv123/ragbot"
)

func (s *RedisTestSuite) TestSearchDocuments() {
	ctx, cancel := testContext()
	defer cancel()

	var (
		fileID1   = ragbot.FileID{UUID: uuid.Must(uuid.NewV4())}
		fileID2   = ragbot.FileID{UUID: uuid.Must(uuid.NewV4())}
		documents = []ragbot.Document{
			{
				Content: "This is a test document.",
				FileID:  fileID1,
				Page:    1,
				Source:  "first.pdf",
			},
			{
				Content: "This is another test document.",
				FileID:  fileID1,
				Page:    2,
				Source:  "first.pdf",
			},
			{
				Content: "This is a document from another file.",
				FileID:  fileID2,
				Page:    3,
				Source:  "second.pdf",
			},
		}
		vectors = []ragbot.Vector{
			testVector(s.adapter.vectorDim, 0, 100),
			testVector(s.adapter.vectorDim, 0, 2),
			testVector(s.adapter.vectorDim, 0, 20),
		}
		searchVector = testVector(s.adapter.vectorDim, 0, 5)
	)

	err := s.adapter.SaveDocuments(ctx, documents, vectors)
	s.Require().NoError(err)

	results, err := s.adapter.SearchDocuments(
		ctx,
		ragbot.DocumentFilter{
			Vector:  searchVector,
			FileIDs: []ragbot.FileID{fileID1, fileID2},
		},
		25,
	)
	s.Require().NoError(err)
	s.Require().Len(results, 3)
	s.Equal(documents[1].Content, results[0].Content)
	s.Equal(documents[2].Content, results[1].Content)
	s.Equal(documents[0].Content, results[2].Content)
}

func (s *RedisTestSuite) TestListFileDocuments() {
	ctx, cancel := testContext()
	defer cancel()

	var (
		fileID1   = ragbot.FileID{UUID: uuid.Must(uuid.NewV4())}
		fileID2   = ragbot.FileID{UUID: uuid.Must(uuid.NewV4())}
		documents = []ragbot.Document{
			{
				Content: "This is a test document.",
				FileID:  fileID1,
				Page:    1,
				Source:  "first.pdf",
			},
			{
				Content: "This is another test document.",
				FileID:  fileID1,
				Page:    2,
				Source:  "first.pdf",
			},
			{
				Content: "This is a document from another file.",
				FileID:  fileID2,
				Page:    3,
				Source:  "second.pdf",
			},
		}
		vectors = []ragbot.Vector{
			testVector(s.adapter.vectorDim, 0, 100),
			testVector(s.adapter.vectorDim, 0, 2),
			testVector(s.adapter.vectorDim, 0, 20),
		}
	)

	err := s.adapter.SaveDocuments(ctx, documents, vectors)
	s.Require().NoError(err)

	results, err := s.adapter.ListFileDocuments(ctx, fileID1, 100)
	s.Require().NoError(err)
	s.Require().Len(results, 2)
	s.Contains(results, documents[0])
	s.Contains(results, documents[1])

	results, err = s.adapter.ListFileDocuments(ctx, fileID2, 100)
	s.Require().NoError(err)
	s.Require().Len(results, 1)
	s.Equal(documents[2].Content, results[0].Content)
}

func (s *RedisTestSuite) TestDeleteFileDocuments() {
	ctx, cancel := testContext()
	defer cancel()

	var (
		fileID1   = ragbot.FileID{UUID: uuid.Must(uuid.NewV4())}
		fileID2   = ragbot.FileID{UUID: uuid.Must(uuid.NewV4())}
		documents = []ragbot.Document{
			{
				Content: "This is a test document.",
				FileID:  fileID1,
				Page:    1,
				Source:  "first.pdf",
			},
			{
				Content: "This is a document from another file.",
				FileID:  fileID2,
				Page:    2,
				Source:  "second.pdf",
			},
		}
		vectors = []ragbot.Vector{
			testVector(s.adapter.vectorDim, 0, 100),
			testVector(s.adapter.vectorDim, 0, 2),
		}
	)

	err := s.adapter.SaveDocuments(ctx, documents, vectors)
	s.Require().NoError(err)

	err = s.adapter.DeleteFileDocuments(ctx, fileID1)
	s.Require().NoError(err)

	results, err := s.adapter.ListFileDocuments(ctx, fileID1, 100)
	s.Require().NoError(err)
	s.Require().Len(results, 0)

	results, err = s.adapter.ListFileDocuments(ctx, fileID2, 100)
	s.Require().NoError(err)
	s.Require().Len(results, 1)
}

func testVector(dim int, min, max float32) ragbot.Vector {
	vec := make([]float32, dim)
	for i := range vec {
		vec[i] = min + rand.Float32()*(max-min)
	}
	return vec
}
