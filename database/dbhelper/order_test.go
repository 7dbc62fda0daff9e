package dbhelper

import (
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/tummytime/canteen/apperror"
	"github.com/tummytime/canteen/database"
	"github.com/tummytime/canteen/models"
)

func newMockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	prev := database.Canteen
	database.Canteen = db
	t.Cleanup(func() {
		database.Canteen = prev
		db.Close()
	})
	return mock
}

func TestCreateOrderFromCart(t *testing.T) {
	mock := newMockDB(t)

	userID := uuid.New()
	cartID := uuid.New()
	orderID := uuid.New()
	foodA := uuid.New()
	foodB := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM carts WHERE user_id`)).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(cartID.String()))
	mock.ExpectQuery(`SELECT ci.food_id, ci.quantity, f.price`).
		WithArgs(cartID).
		WillReturnRows(sqlmock.NewRows([]string{"food_id", "quantity", "price"}).
			AddRow(foodA.String(), 2, 10.00).
			AddRow(foodB.String(), 1, 5.50))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO orders`)).
		WithArgs(userID, 25.50).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(orderID.String()))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO order_items`)).
		WithArgs(orderID, foodA, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO order_items`)).
		WithArgs(orderID, foodB, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO new_orders`)).
		WithArgs(orderID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM cart_items WHERE cart_id`)).
		WithArgs(cartID).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	err := database.Tx(func(tx *sql.Tx) error {
		created, err := CreateOrderFromCart(tx, userID)
		if err == nil && created != orderID {
			t.Errorf("got order id %s, want %s", created, orderID)
		}
		return err
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCreateOrderFromCartNoCart(t *testing.T) {
	mock := newMockDB(t)

	userID := uuid.New()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM carts WHERE user_id`)).
		WithArgs(userID).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := database.Tx(func(tx *sql.Tx) error {
		_, err := CreateOrderFromCart(tx, userID)
		return err
	})
	if !apperror.IsKind(err, apperror.KindNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCreateOrderFromCartEmptyCart(t *testing.T) {
	mock := newMockDB(t)

	userID := uuid.New()
	cartID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM carts WHERE user_id`)).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(cartID.String()))
	mock.ExpectQuery(`SELECT ci.food_id, ci.quantity, f.price`).
		WithArgs(cartID).
		WillReturnRows(sqlmock.NewRows([]string{"food_id", "quantity", "price"}))
	mock.ExpectRollback()

	err := database.Tx(func(tx *sql.Tx) error {
		_, err := CreateOrderFromCart(tx, userID)
		return err
	})
	if !apperror.IsKind(err, apperror.KindConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// If any step inside the conversion fails, everything rolls back; no
// partial order may ever become visible.
func TestCreateOrderFromCartRollsBackOnMarkerFailure(t *testing.T) {
	mock := newMockDB(t)

	userID := uuid.New()
	cartID := uuid.New()
	orderID := uuid.New()
	foodA := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM carts WHERE user_id`)).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(cartID.String()))
	mock.ExpectQuery(`SELECT ci.food_id, ci.quantity, f.price`).
		WithArgs(cartID).
		WillReturnRows(sqlmock.NewRows([]string{"food_id", "quantity", "price"}).
			AddRow(foodA.String(), 3, 4.25))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO orders`)).
		WithArgs(userID, 12.75).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(orderID.String()))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO order_items`)).
		WithArgs(orderID, foodA, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO new_orders`)).
		WithArgs(orderID).
		WillReturnError(errors.New("marker insert failed"))
	mock.ExpectRollback()

	err := database.Tx(func(tx *sql.Tx) error {
		_, err := CreateOrderFromCart(tx, userID)
		return err
	})
	if err == nil {
		t.Fatal("expected an error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// A dangling food reference contributes nothing to the total but the
// item is still snapshotted.
func TestCreateOrderFromCartSkipsMissingFoodPrice(t *testing.T) {
	mock := newMockDB(t)

	userID := uuid.New()
	cartID := uuid.New()
	orderID := uuid.New()
	foodA := uuid.New()
	ghost := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM carts WHERE user_id`)).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(cartID.String()))
	mock.ExpectQuery(`SELECT ci.food_id, ci.quantity, f.price`).
		WithArgs(cartID).
		WillReturnRows(sqlmock.NewRows([]string{"food_id", "quantity", "price"}).
			AddRow(foodA.String(), 2, 10.00).
			AddRow(ghost.String(), 5, nil))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO orders`)).
		WithArgs(userID, 20.00).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(orderID.String()))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO order_items`)).
		WithArgs(orderID, foodA, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO order_items`)).
		WithArgs(orderID, ghost, 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO new_orders`)).
		WithArgs(orderID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM cart_items WHERE cart_id`)).
		WithArgs(cartID).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	err := database.Tx(func(tx *sql.Tx) error {
		_, err := CreateOrderFromCart(tx, userID)
		return err
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestApplyStatusChangeDeliveredWithoutPayment(t *testing.T) {
	mock := newMockDB(t)

	orderID := uuid.New()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM payments WHERE order_id`)).
		WithArgs(orderID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectRollback()

	err := database.Tx(func(tx *sql.Tx) error {
		return ApplyStatusChange(tx, orderID, models.OrderStatusDelivered)
	})
	if !apperror.IsKind(err, apperror.KindNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestApplyStatusChangeDelivered(t *testing.T) {
	mock := newMockDB(t)

	orderID := uuid.New()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM payments WHERE order_id`)).
		WithArgs(orderID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM new_orders WHERE order_id`)).
		WithArgs(orderID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE orders SET order_status`)).
		WithArgs(orderID, "delivered", "paid").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := database.Tx(func(tx *sql.Tx) error {
		return ApplyStatusChange(tx, orderID, models.OrderStatusDelivered)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// Cancellation never consults payments: payment_status goes to failed
// unconditionally and the marker disappears.
func TestApplyStatusChangeCancelled(t *testing.T) {
	mock := newMockDB(t)

	orderID := uuid.New()
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM new_orders WHERE order_id`)).
		WithArgs(orderID).
		WillReturnResult(sqlmock.NewResult(0, 0)) // marker already gone is fine
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE orders SET order_status`)).
		WithArgs(orderID, "cancelled", "failed").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := database.Tx(func(tx *sql.Tx) error {
		return ApplyStatusChange(tx, orderID, models.OrderStatusCancelled)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestApplyStatusChangePreparingLeavesPaymentAlone(t *testing.T) {
	mock := newMockDB(t)

	orderID := uuid.New()
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE orders SET order_status`)).
		WithArgs(orderID, "preparing").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := database.Tx(func(tx *sql.Tx) error {
		return ApplyStatusChange(tx, orderID, models.OrderStatusPreparing)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDeleteOrderNotFound(t *testing.T) {
	mock := newMockDB(t)

	orderID := uuid.New()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM orders WHERE id`)).
		WithArgs(orderID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := DeleteOrder(orderID)
	if !apperror.IsKind(err, apperror.KindNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}
