package store

import (
	"time"

	"github.com/Hmv123/ragbot"
	"github.com/Hmv123/ragbot/pkg/authz"
	"github.com/Hmv123/ragbot/ragbottest"
)

func (s *StoreTestSuite) TestFindSession() {
	ctx, cancel := testContext()
	defer cancel()

	aSession := gen.Session(
		ragbottest.WithSessionAuthorID(ragbot.AuthorID(testPrincipal.ID())),
	)

	s.Require().NoError(s.adapter.SavePrincipal(ctx, testPrincipal), "error saving principal")
	s.Require().NoError(s.adapter.SaveSessions(ctx, aSession), "error saving session")

	s.Run("Find session without partial", func() {
		savedSession, err := s.adapter.FindSession(ctx, aSession.ID, authz.NilPartial)
		s.Require().NoError(err)
		s.Equal(aSession, savedSession)
	})

	s.Run("Find session with partial", func() {
		partial := authz.FilterBy(`s."author"`, ragbot.NewAuthorID())
		_, err := s.adapter.FindSession(ctx, aSession.ID, partial)
		s.Require().ErrorIs(err, ragbot.ErrNotFound)
	})

	s.Run("Find missing session", func() {
		_, err := s.adapter.FindSession(ctx, ragbot.NewSessionID(), authz.NilPartial)
		s.Require().ErrorIs(err, ragbot.ErrNotFound)
	})
}

func (s *StoreTestSuite) TestSaveSessions_Upsert() {
	ctx, cancel := testContext()
	defer cancel()

	var (
		now      = time.Now().UTC().Truncate(time.Millisecond)
		aSession = gen.Session(
			ragbottest.WithSessionAuthorID(ragbot.AuthorID(testPrincipal.ID())),
			ragbottest.WithSessionTitle("New chat"),
			ragbottest.WithSessionCreated(now),
			ragbottest.WithSessionUpdated(now),
		)
	)

	s.Require().NoError(s.adapter.SavePrincipal(ctx, testPrincipal), "error saving principal")
	s.Require().NoError(s.adapter.SaveSessions(ctx, aSession), "error saving session")

	savedSession, err := s.adapter.FindSession(ctx, aSession.ID, authz.NilPartial)
	s.Require().NoError(err)
	s.Equal(aSession, savedSession)

	// Let's save again to cause an upsert
	aSession.Title = "Retrieval questions"
	aSession.Updated.T = aSession.Updated.T.Add(1 * time.Minute)

	s.Require().NoError(s.adapter.SaveSessions(ctx, aSession))

	savedSession, err = s.adapter.FindSession(ctx, aSession.ID, authz.NilPartial)
	s.Require().NoError(err)
	s.Equal(aSession, savedSession)
	s.Equal("Retrieval questions", savedSession.Title)
	s.Equal(now, savedSession.Created.T)
	s.Greater(savedSession.Updated.T, now)
}

func (s *StoreTestSuite) TestListSessions() {
	ctx, cancel := testContext()
	defer cancel()

	sessions, err := s.adapter.ListSessions(ctx, authz.NilPartial, ragbot.SortParams{})
	s.Require().NoError(err)
	s.Empty(sessions)

	var (
		now      = time.Now().UTC().Truncate(time.Millisecond)
		session1 = gen.Session(
			ragbottest.WithSessionAuthorID(ragbot.AuthorID(testPrincipal.ID())),
			ragbottest.WithSessionUpdated(now.Add(-2*time.Minute)),
		)
		session2 = gen.Session(
			ragbottest.WithSessionAuthorID(ragbot.AuthorID(testPrincipal.ID())),
			ragbottest.WithSessionUpdated(now),
		)
		session3 = gen.Session(
			ragbottest.WithSessionAuthorID(ragbot.AuthorID(testPrincipal.ID())),
			ragbottest.WithSessionUpdated(now.Add(-1*time.Minute)),
		)
	)

	s.Require().NoError(s.adapter.SavePrincipal(ctx, testPrincipal), "error saving principal")
	s.Require().NoError(s.adapter.SaveSessions(ctx, session1, session2, session3), "error saving sessions")

	s.Run("List all sessions sorted by updated desc", func() {
		sessions, err := s.adapter.ListSessions(ctx, authz.NilPartial, ragbot.SortParams{
			By:    `s."updated"`,
			Order: ragbot.SortOrderDesc,
		})
		s.Require().NoError(err)
		s.Require().Len(sessions, 3)
		s.Equal(session2.ID, sessions[0].ID)
		s.Equal(session3.ID, sessions[1].ID)
		s.Equal(session1.ID, sessions[2].ID)
	})

	s.Run("Scope to author", func() {
		sessions, err := s.adapter.ListSessions(ctx, authz.FilterBy(`s."author"`, testPrincipal.ID()), ragbot.SortParams{})
		s.Require().NoError(err)
		s.Len(sessions, 3)

		sessions, err = s.adapter.ListSessions(ctx, authz.FilterBy(`s."author"`, ragbot.NewAuthorID()), ragbot.SortParams{})
		s.Require().NoError(err)
		s.Empty(sessions)
	})

	s.Run("Limit", func() {
		sessions, err := s.adapter.ListSessions(ctx, authz.NilPartial, ragbot.SortParams{
			By:    `s."updated"`,
			Order: ragbot.SortOrderDesc,
			Limit: 1,
		})
		s.Require().NoError(err)
		s.Require().Len(sessions, 1)
		s.Equal(session2.ID, sessions[0].ID)
	})
}

func (s *StoreTestSuite) TestListMessages() {
	ctx, cancel := testContext()
	defer cancel()

	var (
		now      = time.Now().UTC().Truncate(time.Millisecond)
		aSession = gen.Session(
			ragbottest.WithSessionAuthorID(ragbot.AuthorID(testPrincipal.ID())),
		)
		otherSession = gen.Session(
			ragbottest.WithSessionAuthorID(ragbot.AuthorID(testPrincipal.ID())),
		)
		question = gen.Message(
			ragbottest.WithMessageSessionID(aSession.ID),
			ragbottest.WithMessageRole(ragbot.RoleUser),
			ragbottest.WithMessageCreated(now),
		)
		answer = gen.Message(
			ragbottest.WithMessageSessionID(aSession.ID),
			ragbottest.WithMessageRole(ragbot.RoleAssistant),
			ragbottest.WithMessageCreated(now.Add(1*time.Nanosecond)),
		)
		otherMessage = gen.Message(
			ragbottest.WithMessageSessionID(otherSession.ID),
		)
	)

	s.Require().NoError(s.adapter.SavePrincipal(ctx, testPrincipal), "error saving principal")
	s.Require().NoError(s.adapter.SaveSessions(ctx, aSession, otherSession), "error saving sessions")
	s.Require().NoError(s.adapter.SaveMessages(ctx, question, answer, otherMessage), "error saving messages")

	messages, err := s.adapter.ListMessages(ctx, aSession.ID, ragbot.SortParams{
		By:    `m."created"`,
		Order: ragbot.SortOrderAsc,
	})
	s.Require().NoError(err)
	s.Require().Len(messages, 2)
	s.Equal(question, messages[0])
	s.Equal(answer, messages[1])
	s.Equal(ragbot.RoleUser, messages[0].Role)
	s.Equal(ragbot.RoleAssistant, messages[1].Role)
}
