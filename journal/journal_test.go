package journal

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"apexpos/model"
)

func sampleTransaction() model.Transaction {
	return model.Transaction{
		ID:            "t1",
		Subtotal:      25,
		Discount:      0,
		Tax:           0,
		Total:         25,
		PaymentMethod: model.PaymentCash,
		Timestamp:     time.Date(2024, 3, 14, 12, 0, 0, 0, time.UTC),
		CashierID:     "u1",
		Lines: []model.CartLine{
			{LineID: "l1", Product: model.Product{ID: "p1", Name: "Shirt", Price: 10}, Quantity: 2},
			{LineID: "l2", Product: model.Product{ID: "p2", Name: "Mug", Price: 5}, Quantity: 1},
		},
	}
}

func TestAppend_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()
	j := &SQLJournal{DB: db}
	tx := sampleTransaction()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO transactions (id, subtotal, discount, tax, total, payment_method, ts, cashier_id, customer_id)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`)).
		WithArgs(tx.ID, tx.Subtotal, tx.Discount, tx.Tax, tx.Total, "Cash", tx.Timestamp, tx.CashierID, tx.CustomerID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectPrepare(regexp.QuoteMeta(`INSERT INTO transaction_lines (transaction_id, product_id, name, price, quantity) VALUES ($1,$2,$3,$4,$5)`))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO transaction_lines (transaction_id, product_id, name, price, quantity) VALUES ($1,$2,$3,$4,$5)`)).
		WithArgs(tx.ID, "p1", "Shirt", 10.0, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO transaction_lines (transaction_id, product_id, name, price, quantity) VALUES ($1,$2,$3,$4,$5)`)).
		WithArgs(tx.ID, "p2", "Mug", 5.0, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := j.Append(tx); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAppend_LineInsertFailureRollsBack(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	j := &SQLJournal{DB: db}
	tx := sampleTransaction()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO transactions`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectPrepare(regexp.QuoteMeta(`INSERT INTO transaction_lines`))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO transaction_lines`)).
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	if err := j.Append(tx); err == nil {
		t.Fatalf("expected error from failing line insert")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRecent_ReassemblesLines(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	j := &SQLJournal{DB: db}

	ts := time.Date(2024, 3, 14, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, subtotal, discount, tax, total, payment_method, ts, cashier_id, customer_id
		 FROM transactions ORDER BY ts DESC LIMIT $1`)).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "subtotal", "discount", "tax", "total", "payment_method", "ts", "cashier_id", "customer_id"}).
			AddRow("t1", 25.0, 0.0, 0.0, 25.0, "Cash", ts, "u1", ""))

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT product_id, name, price, quantity FROM transaction_lines WHERE transaction_id=$1`)).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "name", "price", "quantity"}).
			AddRow("p1", "Shirt", 10.0, 2).
			AddRow("p2", "Mug", 5.0, 1))

	got, err := j.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "t1" || got[0].PaymentMethod != model.PaymentCash {
		t.Fatalf("unexpected transactions: %+v", got)
	}
	if len(got[0].Lines) != 2 || got[0].Lines[0].Product.ID != "p1" || got[0].Lines[0].Quantity != 2 {
		t.Fatalf("unexpected lines: %+v", got[0].Lines)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestClear_DeletesLinesThenTransactions(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	j := &SQLJournal{DB: db}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM transaction_lines`)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM transactions`)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	if err := j.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
