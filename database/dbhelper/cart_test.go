package dbhelper

import (
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/tummytime/canteen/apperror"
	"github.com/tummytime/canteen/database"
)

func TestReplaceCartItems(t *testing.T) {
	mock := newMockDB(t)

	cartID := uuid.New()
	foodA := uuid.New()
	foodB := uuid.New()
	items := []CartItemInput{
		{FoodID: foodA, Quantity: 2},
		{FoodID: foodB, Quantity: 1},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(DISTINCT id) FROM foods WHERE id = ANY($1)`)).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM cart_items WHERE cart_id`)).
		WithArgs(cartID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO cart_items`)).
		WithArgs(cartID, foodA, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO cart_items`)).
		WithArgs(cartID, foodB, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := database.Tx(func(tx *sql.Tx) error {
		return ReplaceCartItems(tx, cartID, items)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestReplaceCartItemsUnknownFood(t *testing.T) {
	mock := newMockDB(t)

	cartID := uuid.New()
	items := []CartItemInput{
		{FoodID: uuid.New(), Quantity: 2},
		{FoodID: uuid.New(), Quantity: 1},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(DISTINCT id) FROM foods WHERE id = ANY($1)`)).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	err := database.Tx(func(tx *sql.Tx) error {
		return ReplaceCartItems(tx, cartID, items)
	})
	if !apperror.IsKind(err, apperror.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// The same food listed twice counts once against the known-foods check.
func TestReplaceCartItemsDuplicateFood(t *testing.T) {
	mock := newMockDB(t)

	cartID := uuid.New()
	foodA := uuid.New()
	items := []CartItemInput{
		{FoodID: foodA, Quantity: 2},
		{FoodID: foodA, Quantity: 3},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(DISTINCT id) FROM foods WHERE id = ANY($1)`)).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM cart_items WHERE cart_id`)).
		WithArgs(cartID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO cart_items`)).
		WithArgs(cartID, foodA, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO cart_items`)).
		WithArgs(cartID, foodA, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := database.Tx(func(tx *sql.Tx) error {
		return ReplaceCartItems(tx, cartID, items)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestClearCartItems(t *testing.T) {
	mock := newMockDB(t)

	cartID := uuid.New()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM cart_items WHERE cart_id`)).
		WithArgs(cartID).
		WillReturnResult(sqlmock.NewResult(0, 3))

	deleted, err := ClearCartItems(cartID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != 3 {
		t.Errorf("got %d deleted rows, want 3", deleted)
	}
}

func TestGetCartByUserIDNotFound(t *testing.T) {
	mock := newMockDB(t)

	userID := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id FROM carts WHERE user_id`)).
		WithArgs(userID).
		WillReturnError(sql.ErrNoRows)

	_, err := GetCartByUserID(userID)
	if !apperror.IsKind(err, apperror.KindNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}
