package dbhelper

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/tummytime/canteen/apperror"
	"github.com/tummytime/canteen/models"
)

func TestCreatePayment(t *testing.T) {
	mock := newMockDB(t)

	userID := uuid.New()
	orderID := uuid.New()
	paymentID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM orders WHERE id`)).
		WithArgs(orderID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO payments`)).
		WithArgs(userID, orderID, "cash").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(paymentID.String()))

	id, err := CreatePayment(userID, orderID, models.PaymentTypeCash)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != paymentID {
		t.Errorf("got payment id %s, want %s", id, paymentID)
	}
}

func TestCreatePaymentOrderMissing(t *testing.T) {
	mock := newMockDB(t)

	orderID := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM orders WHERE id`)).
		WithArgs(orderID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	_, err := CreatePayment(uuid.New(), orderID, models.PaymentTypeCard)
	if !apperror.IsKind(err, apperror.KindNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestCreatePaymentDuplicate(t *testing.T) {
	mock := newMockDB(t)

	userID := uuid.New()
	orderID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM orders WHERE id`)).
		WithArgs(orderID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO payments`)).
		WithArgs(userID, orderID, "card").
		WillReturnError(&pq.Error{Code: "23505"}) // unique_violation

	_, err := CreatePayment(userID, orderID, models.PaymentTypeCard)
	if !apperror.IsKind(err, apperror.KindConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
	if err.Error() != "Payment already exists for this order." {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestDeletePaymentNotFound(t *testing.T) {
	mock := newMockDB(t)

	id := uuid.New()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM payments WHERE id`)).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := DeletePayment(id); !apperror.IsKind(err, apperror.KindNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}
