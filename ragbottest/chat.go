package ragbottest

import (
	"time"

	"github.com/Hmv123/ragbot"
)

type SessionOption func(*ragbot.Session)

func WithSessionAuthorID(id ragbot.AuthorID) SessionOption {
	return func(s *ragbot.Session) {
		s.AuthorID = id
	}
}

func WithSessionTitle(title string) SessionOption {
	return func(s *ragbot.Session) {
		s.Title = title
	}
}

func WithSessionCreated(created time.Time) SessionOption {
	return func(s *ragbot.Session) {
		s.Created = ragbot.Time{T: created}
	}
}

func WithSessionUpdated(updated time.Time) SessionOption {
	return func(s *ragbot.Session) {
		s.Updated = ragbot.Time{T: updated}
	}
}

func (g *DataGen) Session(options ...SessionOption) *ragbot.Session {
	aSession := ragbot.Session{
		ID:       ragbot.NewSessionID(),
		AuthorID: ragbot.NewAuthorID(),
		Title:    g.Sentence(3),
		Created:  ragbot.Time{T: g.now},
		Updated:  ragbot.Time{T: g.now},
	}

	for _, o := range options {
		o(&aSession)
	}

	return &aSession
}

type MessageOption func(*ragbot.Message)

func WithMessageSessionID(id ragbot.SessionID) MessageOption {
	return func(m *ragbot.Message) {
		m.SessionID = id
	}
}

func WithMessageRole(role ragbot.Role) MessageOption {
	return func(m *ragbot.Message) {
		m.Role = role
	}
}

func WithMessageContent(content string) MessageOption {
	return func(m *ragbot.Message) {
		m.Content = content
	}
}

func WithMessageCreated(created time.Time) MessageOption {
	return func(m *ragbot.Message) {
		m.Created = ragbot.Time{T: created}
	}
}

var messageRoles = []ragbot.Role{
	ragbot.RoleUser,
	ragbot.RoleAssistant,
}

func (g *DataGen) Message(options ...MessageOption) ragbot.Message {
	g.ShuffleAnySlice(messageRoles)

	aMessage := ragbot.Message{
		ID:        ragbot.NewMessageID(),
		SessionID: ragbot.NewSessionID(),
		Role:      messageRoles[0],
		Content:   g.Sentence(10),
		Created:   ragbot.Time{T: g.now},
	}

	for _, o := range options {
		o(&aMessage)
	}

	return aMessage
}
