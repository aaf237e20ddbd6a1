package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Hmv123/ragbot"
	"github.com/Hmv123/ragbot/pkg/authz"
)

func (a *Adapter) SaveFiles(ctx context.Context, files ...*ragbot.File) error {
	if len(files) < 1 {
		return nil
	}

	return a.inTxDo(ctx, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		if err := execQueryCheckRowsAffected(ctx, tx, insertFilesQuery{files: files}); err != nil {
			return fmt.Errorf("exec insert files query failed: %w", err)
		}

		if err := execQueryCheckRowsAffected(ctx, tx, insertFileStatusEventsQuery{files: files}); err != nil {
			return fmt.Errorf("exec insert file status events query failed: %w", err)
		}

		return nil
	})
}

type insertFilesQuery struct {
	files []*ragbot.File
}

func (q insertFilesQuery) SQL() (string, []any) {
	if len(q.files) == 0 {
		return "", nil
	}

	query := `
		with cte as (
			values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, (select "id" from "file_status" fs where fs."name" = ?), ?, ?, ?)
	`
	args := make([]any, 0, len(q.files)*14)
	args = append(args, fileArgs(q.files[0])...)
	for i := range q.files[1:] {
		query += `, (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, (select "id" from "file_status" fs where fs."name" = ?), ?, ?, ?)`
		args = append(args, fileArgs(q.files[i+1])...)
	}
	query += `
		)
		insert into "file" (
			"id",
			"author",
			"file_name",
			"content_type",
			"extension",
			"file_size",
			"file_hash",
			"embedder",
			"retriever",
			"location",
			"status",
			"status_message",
			"created",
			"updated"
		)
		select *
		from cte
		where 1
		on conflict("id") do update set
			"author"=excluded."author",
			"file_name"=excluded."file_name",
			"content_type"=excluded."content_type",
			"extension"=excluded."extension",
			"file_size"=excluded."file_size",
			"file_hash"=excluded."file_hash",
			"embedder"=excluded."embedder",
			"retriever"=excluded."retriever",
			"location"=excluded."location",
			"status"=excluded."status",
			"status_message"=excluded."status_message",
			"updated"=excluded."updated"
	`

	return query, args
}

func fileArgs(f *ragbot.File) []any {
	return []any{
		f.ID,
		f.AuthorID,
		f.FileName,
		f.ContentType,
		f.Extension,
		f.Size,
		f.Hash,
		f.Embedder,
		f.Retriever,
		f.Location,
		f.Status,
		sql.NullString{String: f.StatusMessage, Valid: f.StatusMessage != ""},
		f.Created,
		f.Updated,
	}
}

type insertFileStatusEventsQuery struct {
	files []*ragbot.File
}

func (q insertFileStatusEventsQuery) SQL() (string, []any) {
	if len(q.files) == 0 {
		return "", nil
	}

	query := `
		with cte as (
			values (?, (select "id" from "file_status" fs where fs."name" = ?), ?, ?)
	`
	args := make([]any, 0, len(q.files)*4)
	args = append(args, fileStatusEventArgs(q.files[0])...)
	for i := range q.files[1:] {
		query += `, (?, (select "id" from "file_status" fs where fs."name" = ?), ?, ?)`
		args = append(args, fileStatusEventArgs(q.files[i+1])...)
	}
	query += `
		)
		insert into "file_status_evt" (
			"file",
			"status",
			"message",
			"created"
		)
		select *
		from cte
		where 1
	`

	return query, args
}

func fileStatusEventArgs(f *ragbot.File) []any {
	return []any{
		f.ID,
		f.Status,
		sql.NullString{String: f.StatusMessage, Valid: f.StatusMessage != ""},
		f.Updated,
	}
}

func (a *Adapter) ListFiles(ctx context.Context, filter ragbot.FileFilter, partial authz.Partial, params ragbot.SortParams) ([]*ragbot.File, error) {
	var files []*ragbot.File

	if err := a.inTxDo(ctx, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		query, args := selectFilesQuery{
			filter:  filter,
			partial: partial,
		}.SQL()

		query += params.SQL()

		rows, err := tx.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("select files query failed: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			aFile, err := scanFile(rows)
			if err != nil {
				return fmt.Errorf("scan file failed: %w", err)
			}
			files = append(files, aFile)
		}

		return rows.Err()
	}); err != nil {
		return nil, err
	}

	return files, nil
}

type selectFilesQuery struct {
	filter  ragbot.FileFilter
	partial authz.Partial
}

func (q selectFilesQuery) SQL() (string, []any) {
	query := `
		select
			f."id",
			f."author",
			f."file_name",
			f."content_type",
			f."extension",
			f."file_size",
			f."file_hash",
			f."embedder",
			f."retriever",
			f."location",
			fs."name" as "status",
			f."status_message",
			f."created",
			f."updated"
		from "file" f
		inner join "file_status" fs on f."status" = fs."id"
	`

	var (
		clauses []string
		args    []any
	)

	if q.filter.Status != "" {
		clauses = append(clauses, `fs."name" = ?`)
		args = append(args, q.filter.Status)
	}

	if !q.filter.LastUpdatedBefore.IsZero() {
		clauses = append(clauses, `f."updated" < ?`)
		args = append(args, q.filter.LastUpdatedBefore)
	}

	if partialSQL, partialArgs := q.partial.SQL(); partialSQL != "" {
		clauses = append(clauses, partialSQL)
		args = append(args, partialArgs...)
	}

	for i, clause := range clauses {
		if i == 0 {
			query += ` where ` + clause
			continue
		}
		query += ` and ` + clause
	}

	return query, args
}

func (a *Adapter) FindFile(ctx context.Context, id ragbot.FileID, partial authz.Partial) (*ragbot.File, error) {
	var file *ragbot.File
	if err := a.inTxDo(ctx, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		query, args := findFileQuery{
			id:      id,
			partial: partial,
		}.SQL()

		stmt, err := tx.Prepare(query)
		if err != nil {
			return fmt.Errorf("prepare find file statement failed: %w", err)
		}
		defer stmt.Close()

		row := stmt.QueryRowContext(ctx, args...)
		file, err = scanFile(row)
		return err
	}); err != nil {
		return nil, err
	}

	return file, nil
}

type findFileQuery struct {
	id      ragbot.FileID
	partial authz.Partial
}

func (q findFileQuery) SQL() (string, []any) {
	query, args := selectFilesQuery{partial: q.partial}.SQL()

	if len(args) == 0 {
		query += ` where f."id" = ?`
	} else {
		query += ` and f."id" = ?`
	}
	args = append(args, q.id)

	return query, args
}

func (a *Adapter) DeleteFiles(ctx context.Context, files ...*ragbot.File) error {
	if len(files) < 1 {
		return nil
	}

	return a.inTxDo(ctx, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		for _, aFile := range files {
			if err := exec(ctx, tx, `delete from "file_status_evt" where "file" = ?`, aFile.ID); err != nil {
				return fmt.Errorf("delete file status events failed: %w", err)
			}
			if err := exec(ctx, tx, `delete from "file" where "id" = ?`, aFile.ID); err != nil {
				return fmt.Errorf("delete file failed: %w", err)
			}
		}
		return nil
	})
}

func exec(ctx context.Context, tx *sql.Tx, query string, args ...any) error {
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("prepare statement failed: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, args...)
	if err != nil {
		return fmt.Errorf("exec context failed: %w", err)
	}

	return nil
}

func scanFile(row Scannable) (*ragbot.File, error) {
	var (
		aFile         = new(ragbot.File)
		statusMessage = sql.NullString{}
	)

	if err := row.Scan(
		&aFile.ID,
		&aFile.AuthorID,
		&aFile.FileName,
		&aFile.ContentType,
		&aFile.Extension,
		&aFile.Size,
		&aFile.Hash,
		&aFile.Embedder,
		&aFile.Retriever,
		&aFile.Location,
		&aFile.Status,
		&statusMessage,
		&aFile.Created,
		&aFile.Updated,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ragbot.ErrNotFound
		}
		return nil, fmt.Errorf("scan file failed: %w", err)
	}

	if statusMessage.Valid {
		aFile.StatusMessage = statusMessage.String
	}

	return aFile, nil
}
