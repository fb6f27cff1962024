package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/loupelabs/loupe/internal/model"
)

// filterColumns is the column list used for SELECT statements on the filters table.
const filterColumns = `id, name, repo_id, search_params, columns, is_favorite, created_at, updated_at`

// defaultPageSize bounds ListFilters when the caller gives no page size.
const defaultPageSize = 50

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func queryCreateFilter(ctx context.Context, db executor, f *model.SavedFilter) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO filters (
			id, name, repo_id, search_params, columns, is_favorite, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)`,
		f.ID,
		f.Name,
		f.RepoID,
		jsonbParams(f.SearchParams),
		pq.Array(f.Columns),
		f.IsFavorite,
		f.CreatedAt,
		f.UpdatedAt,
	)
	return err
}

func queryGetFilter(ctx context.Context, db executor, id string) (*model.SavedFilter, error) {
	row := db.QueryRowContext(ctx, `SELECT `+filterColumns+` FROM filters WHERE id = $1`, id)
	return scanFilter(row)
}

func queryListFilters(ctx context.Context, db executor, q model.FilterQuery) ([]*model.SavedFilter, int, error) {
	var (
		whereClauses []string
		args         []any
		argIdx       int
	)

	nextArg := func() string {
		argIdx++
		return fmt.Sprintf("$%d", argIdx)
	}

	if q.Search != "" {
		placeholder := nextArg()
		args = append(args, "%"+q.Search+"%")
		whereClauses = append(whereClauses, "name ILIKE "+placeholder)
	}
	if q.IsFavorite != nil {
		placeholder := nextArg()
		args = append(args, *q.IsFavorite)
		whereClauses = append(whereClauses, "is_favorite = "+placeholder)
	}

	query := `SELECT count(*) OVER() AS total_count, ` + filterColumns + ` FROM filters`
	for i, clause := range whereClauses {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	query += " ORDER BY is_favorite DESC, updated_at DESC"

	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	query += " LIMIT " + nextArg()
	args = append(args, pageSize)
	if q.Page > 1 {
		query += " OFFSET " + nextArg()
		args = append(args, (q.Page-1)*pageSize)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var (
		filters []*model.SavedFilter
		total   int
	)
	for rows.Next() {
		f, n, err := scanFilterWithTotal(rows)
		if err != nil {
			return nil, 0, err
		}
		filters = append(filters, f)
		total = n
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return filters, total, nil
}

func queryUpdateFilter(ctx context.Context, db executor, f *model.SavedFilter) error {
	res, err := db.ExecContext(ctx, `
		UPDATE filters SET
			name = $2,
			search_params = $3,
			columns = $4,
			is_favorite = $5,
			updated_at = $6
		WHERE id = $1`,
		f.ID,
		f.Name,
		jsonbParams(f.SearchParams),
		pq.Array(f.Columns),
		f.IsFavorite,
		f.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func queryDeleteFilter(ctx context.Context, db executor, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM filters WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
