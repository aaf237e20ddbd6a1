package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Hmv123/ragbot"
	"github.com/Hmv123/ragbot/pkg/authz"
)

func (a *Adapter) SaveSessions(ctx context.Context, sessions ...*ragbot.Session) error {
	if len(sessions) < 1 {
		return nil
	}

	return a.inTxDo(ctx, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		if err := execQueryCheckRowsAffected(ctx, tx, insertSessionsQuery{sessions: sessions}); err != nil {
			return fmt.Errorf("exec insert sessions query failed: %w", err)
		}
		return nil
	})
}

type insertSessionsQuery struct {
	sessions []*ragbot.Session
}

func (q insertSessionsQuery) SQL() (string, []any) {
	if len(q.sessions) == 0 {
		return "", nil
	}

	query := `
		with cte as (
			values (?, ?, ?, ?, ?)
	`
	args := make([]any, 0, len(q.sessions)*5)
	args = append(args, sessionArgs(q.sessions[0])...)
	for i := range q.sessions[1:] {
		query += `, (?, ?, ?, ?, ?)`
		args = append(args, sessionArgs(q.sessions[i+1])...)
	}
	query += `
		)
		insert into "chat_session" (
			"id",
			"author",
			"title",
			"created",
			"updated"
		)
		select *
		from cte
		where 1
		on conflict("id") do update set
			"title"=excluded."title",
			"updated"=excluded."updated"
	`

	return query, args
}

func sessionArgs(s *ragbot.Session) []any {
	return []any{
		s.ID,
		s.AuthorID,
		s.Title,
		s.Created,
		s.Updated,
	}
}

func (a *Adapter) ListSessions(ctx context.Context, partial authz.Partial, params ragbot.SortParams) ([]*ragbot.Session, error) {
	var sessions []*ragbot.Session

	if err := a.inTxDo(ctx, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		query, args := selectSessionsQuery{partial: partial}.SQL()
		query += params.SQL()

		rows, err := tx.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("select sessions query failed: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			aSession, err := scanSession(rows)
			if err != nil {
				return fmt.Errorf("scan session failed: %w", err)
			}
			sessions = append(sessions, aSession)
		}

		return rows.Err()
	}); err != nil {
		return nil, err
	}

	return sessions, nil
}

type selectSessionsQuery struct {
	partial authz.Partial
}

func (q selectSessionsQuery) SQL() (string, []any) {
	query := `
		select
			s."id",
			s."author",
			s."title",
			s."created",
			s."updated"
		from "chat_session" s
	`

	var args []any
	if partialSQL, partialArgs := q.partial.SQL(); partialSQL != "" {
		query += ` where ` + partialSQL
		args = append(args, partialArgs...)
	}

	return query, args
}

func (a *Adapter) FindSession(ctx context.Context, id ragbot.SessionID, partial authz.Partial) (*ragbot.Session, error) {
	var aSession *ragbot.Session
	if err := a.inTxDo(ctx, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		query, args := selectSessionsQuery{partial: partial}.SQL()
		if len(args) == 0 {
			query += ` where s."id" = ?`
		} else {
			query += ` and s."id" = ?`
		}
		args = append(args, id)

		stmt, err := tx.Prepare(query)
		if err != nil {
			return fmt.Errorf("prepare find session statement failed: %w", err)
		}
		defer stmt.Close()

		aSession, err = scanSession(stmt.QueryRowContext(ctx, args...))
		return err
	}); err != nil {
		return nil, err
	}

	return aSession, nil
}

func scanSession(row Scannable) (*ragbot.Session, error) {
	var aSession = new(ragbot.Session)

	if err := row.Scan(
		&aSession.ID,
		&aSession.AuthorID,
		&aSession.Title,
		&aSession.Created,
		&aSession.Updated,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ragbot.ErrNotFound
		}
		return nil, fmt.Errorf("scan session failed: %w", err)
	}

	return aSession, nil
}

func (a *Adapter) SaveMessages(ctx context.Context, messages ...ragbot.Message) error {
	if len(messages) < 1 {
		return nil
	}

	return a.inTxDo(ctx, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		if err := execQueryCheckRowsAffected(ctx, tx, insertMessagesQuery{messages: messages}); err != nil {
			return fmt.Errorf("exec insert messages query failed: %w", err)
		}
		return nil
	})
}

type insertMessagesQuery struct {
	messages []ragbot.Message
}

func (q insertMessagesQuery) SQL() (string, []any) {
	if len(q.messages) == 0 {
		return "", nil
	}

	query := `
		with cte as (
			values (?, ?, ?, ?, ?)
	`
	args := make([]any, 0, len(q.messages)*5)
	args = append(args, messageArgs(q.messages[0])...)
	for i := range q.messages[1:] {
		query += `, (?, ?, ?, ?, ?)`
		args = append(args, messageArgs(q.messages[i+1])...)
	}
	query += `
		)
		insert into "chat_message" (
			"id",
			"session",
			"role",
			"content",
			"created"
		)
		select *
		from cte
		where 1
	`

	return query, args
}

func messageArgs(m ragbot.Message) []any {
	return []any{
		m.ID,
		m.SessionID,
		string(m.Role),
		m.Content,
		m.Created,
	}
}

func (a *Adapter) ListMessages(ctx context.Context, id ragbot.SessionID, params ragbot.SortParams) ([]ragbot.Message, error) {
	var messages []ragbot.Message

	if err := a.inTxDo(ctx, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		query := `
			select
				m."id",
				m."session",
				m."role",
				m."content",
				m."created"
			from "chat_message" m
			where m."session" = ?
		`
		query += params.SQL()

		rows, err := tx.QueryContext(ctx, query, id)
		if err != nil {
			return fmt.Errorf("select messages query failed: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var (
				aMessage ragbot.Message
				role     string
			)
			if err := rows.Scan(
				&aMessage.ID,
				&aMessage.SessionID,
				&role,
				&aMessage.Content,
				&aMessage.Created,
			); err != nil {
				return fmt.Errorf("scan message failed: %w", err)
			}
			aMessage.Role = ragbot.Role(role)
			messages = append(messages, aMessage)
		}

		return rows.Err()
	}); err != nil {
		return nil, err
	}

	return messages, nil
}
