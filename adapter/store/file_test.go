package store

import (
	"time"

	"github.com/Hmv123/ragbot"
	"github.com/Hmv123/ragbot/pkg/authz"
	"github.com/Hmv123/ragbot/ragbottest"
)

var (
	testNow = time.Now().UTC()
	gen     = ragbottest.New(testNow.UnixNano(), testNow)
)

func (s *StoreTestSuite) TestFindFile() {
	ctx, cancel := testContext()
	defer cancel()

	var (
		aFile = gen.File(
			ragbottest.WithFileAuthorID(ragbot.AuthorID(testPrincipal.ID())),
			ragbottest.WithFileEmbedder("azure-openai"),
			ragbottest.WithFileRetriever("redis"),
		)
	)

	s.Require().NoError(s.adapter.SavePrincipal(ctx, testPrincipal), "error saving principal")
	s.Require().NoError(s.adapter.SaveFiles(ctx, aFile), "error saving file")

	s.Run("Find file without partial", func() {
		savedFile, err := s.adapter.FindFile(ctx, aFile.ID, authz.NilPartial)
		s.Require().NoError(err)
		s.Equal(aFile, savedFile)
	})

	s.Run("Find file with partial", func() {
		partial := authz.FilterBy("embedder", "azure-openai").And("retriever", "weaviate")
		_, err := s.adapter.FindFile(ctx, aFile.ID, partial)
		s.Require().ErrorIs(err, ragbot.ErrNotFound)
	})

	s.Run("Find missing file", func() {
		_, err := s.adapter.FindFile(ctx, ragbot.NewFileID(), authz.NilPartial)
		s.Require().ErrorIs(err, ragbot.ErrNotFound)
	})
}

func (s *StoreTestSuite) TestSaveFiles_Upsert() {
	ctx, cancel := testContext()
	defer cancel()

	var (
		now   = time.Now().UTC().Truncate(time.Millisecond)
		file1 = gen.File(
			ragbottest.WithFileAuthorID(ragbot.AuthorID(testPrincipal.ID())),
			ragbottest.WithFileStatus(ragbot.FileStatusUploaded),
			ragbottest.WithFileCreated(now),
			ragbottest.WithFileUpdated(now),
		)
		file2 = gen.File(
			ragbottest.WithFileAuthorID(ragbot.AuthorID(testPrincipal.ID())),
			ragbottest.WithFileStatus(ragbot.FileStatusProcessing),
			ragbottest.WithFileCreated(now),
			ragbottest.WithFileUpdated(now),
		)
	)

	s.Require().NoError(s.adapter.SavePrincipal(ctx, testPrincipal), "error saving principal")

	// Save two files
	s.Require().NoError(s.adapter.SaveFiles(ctx, file1, file2), "error saving files")

	savedFile1, err := s.adapter.FindFile(ctx, file1.ID, authz.NilPartial)
	s.Require().NoError(err)
	s.Equal(file1, savedFile1)
	s.Equal(ragbot.FileStatusUploaded, savedFile1.Status)
	s.Equal(now, savedFile1.Updated.T)

	savedFile2, err := s.adapter.FindFile(ctx, file2.ID, authz.NilPartial)
	s.Require().NoError(err)
	s.Equal(file2, savedFile2)
	s.Equal(ragbot.FileStatusProcessing, savedFile2.Status)

	// Let's save again to cause an upsert
	file1.Status = ragbot.FileStatusProcessing
	file1.Updated.T = file1.Updated.T.Add(1 * time.Minute)

	file2.Status = ragbot.FileStatusProcessingFailed
	file2.StatusMessage = "some error message"
	file2.Updated.T = file2.Updated.T.Add(2 * time.Minute)

	err = s.adapter.SaveFiles(ctx, file1, file2)
	s.Require().NoError(err)

	savedFile1, err = s.adapter.FindFile(ctx, file1.ID, authz.NilPartial)
	s.Require().NoError(err)
	s.Equal(file1, savedFile1)
	s.Equal(ragbot.FileStatusProcessing, savedFile1.Status)
	s.Greater(savedFile1.Updated.T, now)

	savedFile2, err = s.adapter.FindFile(ctx, file2.ID, authz.NilPartial)
	s.Require().NoError(err)
	s.Equal(file2, savedFile2)
	s.Equal(ragbot.FileStatusProcessingFailed, savedFile2.Status)
	s.Equal("some error message", savedFile2.StatusMessage)
	s.Greater(savedFile2.Updated.T, savedFile1.Updated.T)
}

func (s *StoreTestSuite) TestListFiles() {
	ctx, cancel := testContext()
	defer cancel()

	files, err := s.adapter.ListFiles(ctx, ragbot.FileFilter{}, authz.NilPartial, ragbot.SortParams{})
	s.Require().NoError(err)
	s.Empty(files)

	var (
		now   = time.Now().UTC().Truncate(time.Millisecond)
		file1 = gen.File(
			ragbottest.WithFileAuthorID(ragbot.AuthorID(testPrincipal.ID())),
			ragbottest.WithFileStatus(ragbot.FileStatusProcessing),
			ragbottest.WithFileCreated(now.Add(-2*time.Minute)),
			ragbottest.WithFileUpdated(now.Add(-2*time.Minute)),
		)
		file2 = gen.File(
			ragbottest.WithFileAuthorID(ragbot.AuthorID(testPrincipal.ID())),
			ragbottest.WithFileStatus(ragbot.FileStatusUploaded),
			ragbottest.WithFileCreated(now.Add(-1*time.Minute)),
			ragbottest.WithFileUpdated(now.Add(-1*time.Minute)),
		)
		file3 = gen.File(
			ragbottest.WithFileAuthorID(ragbot.AuthorID(testPrincipal.ID())),
			ragbottest.WithFileStatus(ragbot.FileStatusUploaded),
			ragbottest.WithFileCreated(now),
			ragbottest.WithFileUpdated(now),
		)
	)

	s.Require().NoError(s.adapter.SavePrincipal(ctx, testPrincipal), "error saving principal")
	s.Require().NoError(s.adapter.SaveFiles(ctx, file1, file2, file3), "error saving files")

	s.Run("List all files sorted by created desc", func() {
		files, err := s.adapter.ListFiles(ctx, ragbot.FileFilter{}, authz.NilPartial, ragbot.SortParams{
			By:    `f."created"`,
			Order: ragbot.SortOrderDesc,
		})
		s.Require().NoError(err)
		s.Require().Len(files, 3)
		s.Equal(file3.ID, files[0].ID)
		s.Equal(file2.ID, files[1].ID)
		s.Equal(file1.ID, files[2].ID)
	})

	s.Run("Filter by status", func() {
		files, err := s.adapter.ListFiles(ctx, ragbot.FileFilter{
			Status: ragbot.FileStatusUploaded,
		}, authz.NilPartial, ragbot.SortParams{
			By:    `f."created"`,
			Order: ragbot.SortOrderAsc,
		})
		s.Require().NoError(err)
		s.Require().Len(files, 2)
		s.Equal(file2.ID, files[0].ID)
		s.Equal(file3.ID, files[1].ID)
	})

	s.Run("Filter by last updated before", func() {
		files, err := s.adapter.ListFiles(ctx, ragbot.FileFilter{
			Status:            ragbot.FileStatusUploaded,
			LastUpdatedBefore: ragbot.Time{T: now},
		}, authz.NilPartial, ragbot.SortParams{})
		s.Require().NoError(err)
		s.Require().Len(files, 1)
		s.Equal(file2.ID, files[0].ID)
	})

	s.Run("Limit", func() {
		files, err := s.adapter.ListFiles(ctx, ragbot.FileFilter{}, authz.NilPartial, ragbot.SortParams{
			By:    `f."created"`,
			Order: ragbot.SortOrderDesc,
			Limit: 1,
		})
		s.Require().NoError(err)
		s.Require().Len(files, 1)
		s.Equal(file3.ID, files[0].ID)
	})
}

func (s *StoreTestSuite) TestDeleteFiles() {
	ctx, cancel := testContext()
	defer cancel()

	aFile := gen.File(
		ragbottest.WithFileAuthorID(ragbot.AuthorID(testPrincipal.ID())),
	)

	s.Require().NoError(s.adapter.SavePrincipal(ctx, testPrincipal), "error saving principal")
	s.Require().NoError(s.adapter.SaveFiles(ctx, aFile), "error saving file")

	s.Require().NoError(s.adapter.DeleteFiles(ctx, aFile))

	_, err := s.adapter.FindFile(ctx, aFile.ID, authz.NilPartial)
	s.Require().ErrorIs(err, ragbot.ErrNotFound)

	// Status events are removed together with the file
	var count int
	err = s.db.QueryRowContext(ctx, `select count(*) from "file_status_evt" where "file" = ?`, aFile.ID).Scan(&count)
	s.Require().NoError(err)
	s.Equal(0, count)
}
