// Package journal persists committed transactions to a local SQL
// database so the sales record survives terminal restarts. It is an
// optional attachment to the engine; the engine's in-memory ledger stays
// authoritative for display.
package journal

import (
	"database/sql"
	"time"

	_ "github.com/lib/pq"

	"apexpos/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
	id             TEXT PRIMARY KEY,
	subtotal       DOUBLE PRECISION NOT NULL,
	discount       DOUBLE PRECISION NOT NULL,
	tax            DOUBLE PRECISION NOT NULL,
	total          DOUBLE PRECISION NOT NULL,
	payment_method TEXT NOT NULL,
	ts             TIMESTAMPTZ NOT NULL,
	cashier_id     TEXT NOT NULL,
	customer_id    TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS transaction_lines (
	transaction_id TEXT NOT NULL REFERENCES transactions(id) ON DELETE CASCADE,
	product_id     TEXT NOT NULL,
	name           TEXT NOT NULL,
	price          DOUBLE PRECISION NOT NULL,
	quantity       INTEGER NOT NULL
);
`

// SQLJournal is a journal backed by database/sql.
type SQLJournal struct {
	DB *sql.DB
}

// Open connects to dsn, applies the schema and returns the journal.
func Open(dsn string) (*SQLJournal, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLJournal{DB: db}, nil
}

func (j *SQLJournal) Close() error { return j.DB.Close() }

// Append writes one transaction and its lines atomically.
func (j *SQLJournal) Append(t model.Transaction) error {
	tx, err := j.DB.Begin()
	if err != nil {
		return err
	}
	rolledBack := false
	defer func() {
		if !rolledBack {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.Exec(
		`INSERT INTO transactions (id, subtotal, discount, tax, total, payment_method, ts, cashier_id, customer_id)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		t.ID, t.Subtotal, t.Discount, t.Tax, t.Total, string(t.PaymentMethod), t.Timestamp, t.CashierID, t.CustomerID,
	); err != nil {
		_ = tx.Rollback()
		rolledBack = true
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO transaction_lines (transaction_id, product_id, name, price, quantity) VALUES ($1,$2,$3,$4,$5)`)
	if err != nil {
		_ = tx.Rollback()
		rolledBack = true
		return err
	}
	defer stmt.Close()

	for _, ln := range t.Lines {
		if _, err := stmt.Exec(t.ID, ln.Product.ID, ln.Product.Name, ln.Product.Price, ln.Quantity); err != nil {
			_ = tx.Rollback()
			rolledBack = true
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		rolledBack = true
		return err
	}
	rolledBack = true
	return nil
}

// Recent returns up to limit transactions, most recent first. Lines
// carry only the fields the journal stores (product id, name, price).
func (j *SQLJournal) Recent(limit int) ([]model.Transaction, error) {
	rows, err := j.DB.Query(
		`SELECT id, subtotal, discount, tax, total, payment_method, ts, cashier_id, customer_id
		 FROM transactions ORDER BY ts DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Transaction{}
	for rows.Next() {
		var t model.Transaction
		var method string
		var ts time.Time
		if err := rows.Scan(&t.ID, &t.Subtotal, &t.Discount, &t.Tax, &t.Total, &method, &ts, &t.CashierID, &t.CustomerID); err != nil {
			return nil, err
		}
		t.PaymentMethod = model.PaymentMethod(method)
		t.Timestamp = ts
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		lines, err := j.linesFor(out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Lines = lines
	}
	return out, nil
}

func (j *SQLJournal) linesFor(txID string) ([]model.CartLine, error) {
	rows, err := j.DB.Query(
		`SELECT product_id, name, price, quantity FROM transaction_lines WHERE transaction_id=$1`, txID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.CartLine{}
	for rows.Next() {
		var ln model.CartLine
		if err := rows.Scan(&ln.Product.ID, &ln.Product.Name, &ln.Product.Price, &ln.Quantity); err != nil {
			return nil, err
		}
		out = append(out, ln)
	}
	return out, rows.Err()
}

// Clear removes all journaled transactions.
func (j *SQLJournal) Clear() error {
	tx, err := j.DB.Begin()
	if err != nil {
		return err
	}
	rolledBack := false
	defer func() {
		if !rolledBack {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.Exec(`DELETE FROM transaction_lines`); err != nil {
		_ = tx.Rollback()
		rolledBack = true
		return err
	}
	if _, err := tx.Exec(`DELETE FROM transactions`); err != nil {
		_ = tx.Rollback()
		rolledBack = true
		return err
	}

	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		rolledBack = true
		return err
	}
	rolledBack = true
	return nil
}
