package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/domain"
)

const receiptsSchema = `
CREATE TABLE IF NOT EXISTS receipts (
	order_id     INTEGER PRIMARY KEY,
	session_id   TEXT NOT NULL,
	phone_number TEXT NOT NULL,
	name         TEXT NOT NULL DEFAULT '',
	total_price  NUMERIC(12, 2) NOT NULL,
	items        JSONB NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL,
	recorded_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS receipts_session_idx ON receipts (session_id, recorded_at DESC);`

type PostgresReceiptRepository struct {
	DB *sql.DB
}

func NewPostgresReceiptRepository(db *sql.DB) *PostgresReceiptRepository {
	return &PostgresReceiptRepository{DB: db}
}

func (r *PostgresReceiptRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, receiptsSchema)
	return err
}

func (r *PostgresReceiptRepository) SaveReceipt(ctx context.Context, receipt *domain.Receipt) error {
	items, err := json.Marshal(receipt.Items)
	if err != nil {
		return fmt.Errorf("marshal receipt items: %w", err)
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO receipts (order_id, session_id, phone_number, name, total_price, items, created_at, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (order_id) DO NOTHING`,
		receipt.OrderID, receipt.SessionID, receipt.PhoneNumber, receipt.Name,
		receipt.TotalPrice, items, receipt.CreatedAt, receipt.RecordedAt)
	return err
}

func (r *PostgresReceiptRepository) ListReceipts(ctx context.Context, sessionID string, limit int) ([]domain.Receipt, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT order_id, session_id, phone_number, name, total_price, items, created_at, recorded_at
		FROM receipts
		WHERE session_id = $1
		ORDER BY recorded_at DESC
		LIMIT $2`, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	receipts := []domain.Receipt{}
	for rows.Next() {
		receipt, err := scanReceipt(rows)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, *receipt)
	}
	return receipts, rows.Err()
}

// GetReceipt returns sql.ErrNoRows when the order does not belong to the session.
func (r *PostgresReceiptRepository) GetReceipt(ctx context.Context, sessionID string, orderID int) (*domain.Receipt, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT order_id, session_id, phone_number, name, total_price, items, created_at, recorded_at
		FROM receipts
		WHERE order_id = $1 AND session_id = $2`, orderID, sessionID)
	return scanReceipt(row)
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanReceipt(row scanner) (*domain.Receipt, error) {
	var (
		receipt domain.Receipt
		items   []byte
	)
	if err := row.Scan(&receipt.OrderID, &receipt.SessionID, &receipt.PhoneNumber, &receipt.Name,
		&receipt.TotalPrice, &items, &receipt.CreatedAt, &receipt.RecordedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &receipt.Items); err != nil {
		return nil, fmt.Errorf("unmarshal receipt items: %w", err)
	}
	return &receipt, nil
}
