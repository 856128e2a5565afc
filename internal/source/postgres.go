package source

import (
	"context"
	"database/sql"
	"fmt"

	"smskit/internal/constants"
	"smskit/internal/sms"
)

// PostgresSource reads the inbox table. Null columns become nil row fields.
type PostgresSource struct {
	db *sql.DB
}

func NewPostgresSource(db *sql.DB) *PostgresSource {
	return &PostgresSource{db: db}
}

func (s *PostgresSource) Name() string {
	return constants.SourceTypePostgres
}

func (s *PostgresSource) QueryMessages(ctx context.Context, rowCap int) ([]sms.Row, error) {
	if rowCap <= 0 {
		return []sms.Row{}, nil
	}

	query := `
		SELECT address, body, date, type
		FROM sms_inbox
		ORDER BY date DESC NULLS LAST
		LIMIT $1
	`

	rows, err := s.db.QueryContext(ctx, query, rowCap)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	result := make([]sms.Row, 0, min(rowCap, constants.TransactionListingRowCap))
	for rows.Next() {
		var (
			address sql.NullString
			body    sql.NullString
			date    sql.NullInt64
			typ     sql.NullInt32
		)
		if err := rows.Scan(&address, &body, &date, &typ); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}

		var row sms.Row
		if address.Valid {
			row.Address = &address.String
		}
		if body.Valid {
			row.Body = &body.String
		}
		if date.Valid {
			row.Date = &date.Int64
		}
		if typ.Valid {
			row.Type = &typ.Int32
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
