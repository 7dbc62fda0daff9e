package dbhelper

import (
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/tummytime/canteen/apperror"
	"github.com/tummytime/canteen/database"
	"github.com/tummytime/canteen/models"
)

// CreatePayment records a payment for an existing order. The unique index
// on order_id keeps it to one payment per order.
func CreatePayment(userID, orderID uuid.UUID, paymentType models.PaymentType) (uuid.UUID, error) {
	var exists bool
	if err := database.Canteen.QueryRow(`SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, orderID).
		Scan(&exists); err != nil {
		return uuid.Nil, err
	}
	if !exists {
		return uuid.Nil, apperror.NotFound("Order not found.")
	}

	var id uuid.UUID
	err := database.Canteen.QueryRow(`
		INSERT INTO payments (user_id, order_id, payment_type, payment_date)
		VALUES ($1, $2, $3, now()) RETURNING id`,
		userID, orderID, paymentType).Scan(&id)
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
		return uuid.Nil, apperror.Conflict("Payment already exists for this order.")
	}
	return id, err
}

func GetPaymentByID(id uuid.UUID) (models.Payment, error) {
	var p models.Payment
	err := database.Canteen.QueryRow(`
		SELECT id, user_id, order_id, payment_type, payment_date
		FROM payments WHERE id = $1`, id).
		Scan(&p.ID, &p.UserID, &p.OrderID, &p.PaymentType, &p.PaymentDate)
	if err == sql.ErrNoRows {
		return p, apperror.NotFound("Payment not found.")
	}
	return p, err
}

// ListPayments returns every payment when userID is nil, otherwise only
// the given payer's.
func ListPayments(userID *uuid.UUID, page int) ([]models.Payment, int, error) {
	var total int
	err := database.Canteen.QueryRow(`
		SELECT COUNT(*) FROM payments
		WHERE $1::uuid IS NULL OR user_id = $1`, userID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := database.Canteen.Query(`
		SELECT id, user_id, order_id, payment_type, payment_date
		FROM payments
		WHERE $1::uuid IS NULL OR user_id = $1
		ORDER BY payment_date DESC
		LIMIT $2 OFFSET $3`, userID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	payments := []models.Payment{}
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.UserID, &p.OrderID, &p.PaymentType, &p.PaymentDate); err != nil {
			return nil, 0, err
		}
		payments = append(payments, p)
	}
	return payments, total, rows.Err()
}

func DeletePayment(id uuid.UUID) error {
	res, err := database.Canteen.Exec(`DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return apperror.NotFound("Payment not found.")
	}
	return err
}
