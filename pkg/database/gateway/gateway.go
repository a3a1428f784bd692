// Package gateway is the single point through which raw persistence
// statements are issued. Statements are always parameterized with named
// bindings; values are never interpolated into SQL text.
package gateway

import (
	"context"
	"database/sql"

	"ai-webchat-be/internal/apperror"

	"gorm.io/gorm"
)

// RecordSet is the generic result of a statement execution.
type RecordSet struct {
	Columns      []string                 `json:"columns"`
	Rows         []map[string]interface{} `json:"rows"`
	RowsAffected int64                    `json:"rowsAffected"`
}

type Gateway struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Gateway {
	return &Gateway{db: db}
}

// Ping reports connectivity as a ConnectionFailure, distinct from statement
// errors.
func (g *Gateway) Ping(ctx context.Context) error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return apperror.Wrap(apperror.ErrConnectionFailure, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return apperror.Wrap(apperror.ErrConnectionFailure, err)
	}
	return nil
}

// Execute runs one parameterized statement. Named placeholders in the
// statement (@name) are bound from params. Single attempt, no retry.
func (g *Gateway) Execute(ctx context.Context, statement string, params map[string]interface{}) (*RecordSet, error) {
	if err := g.Ping(ctx); err != nil {
		return nil, err
	}

	args := make([]interface{}, 0, len(params))
	for name, value := range params {
		args = append(args, sql.Named(name, value))
	}

	rows, err := g.db.WithContext(ctx).Raw(statement, args...).Rows()
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrQueryFailure, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrQueryFailure, err)
	}

	result := &RecordSet{
		Columns: columns,
		Rows:    []map[string]interface{}{},
	}

	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, apperror.Wrap(apperror.ErrQueryFailure, err)
		}

		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		result.Rows = append(result.Rows, row)
		result.RowsAffected++
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Wrap(apperror.ErrQueryFailure, err)
	}

	return result, nil
}
