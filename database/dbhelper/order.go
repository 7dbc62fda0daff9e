package dbhelper

import (
	"database/sql"

	"github.com/google/uuid"

	"github.com/tummytime/canteen/apperror"
	"github.com/tummytime/canteen/database"
	"github.com/tummytime/canteen/models"
)

// CreateOrderFromCart converts the caller's cart into an order. It must
// run inside a transaction: order, items, new-order marker, and cart
// cleanup are all-or-nothing. Stock and sold counters are deliberately
// left untouched.
func CreateOrderFromCart(tx *sql.Tx, userID uuid.UUID) (uuid.UUID, error) {
	var cartID uuid.UUID
	err := tx.QueryRow(`SELECT id FROM carts WHERE user_id = $1`, userID).Scan(&cartID)
	if err == sql.ErrNoRows {
		return uuid.Nil, apperror.NotFound("Cart not found.")
	}
	if err != nil {
		return uuid.Nil, err
	}

	type line struct {
		foodID   uuid.UUID
		quantity int
		price    sql.NullFloat64
	}

	rows, err := tx.Query(`
		SELECT ci.food_id, ci.quantity, f.price
		FROM cart_items ci
		LEFT JOIN foods f ON f.id = ci.food_id
		WHERE ci.cart_id = $1`, cartID)
	if err != nil {
		return uuid.Nil, err
	}

	var lines []line
	for rows.Next() {
		var l line
		if err := rows.Scan(&l.foodID, &l.quantity, &l.price); err != nil {
			rows.Close()
			return uuid.Nil, err
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return uuid.Nil, err
	}
	rows.Close()

	if len(lines) == 0 {
		return uuid.Nil, apperror.Conflict("Cart item is empty.")
	}

	// a dangling food reference contributes nothing to the total
	var totalAmount float64
	for _, l := range lines {
		if l.price.Valid {
			totalAmount += float64(l.quantity) * l.price.Float64
		}
	}

	var orderID uuid.UUID
	err = tx.QueryRow(`
		INSERT INTO orders (user_id, order_date, total_amount)
		VALUES ($1, now(), $2) RETURNING id`, userID, totalAmount).Scan(&orderID)
	if err != nil {
		return uuid.Nil, err
	}

	for _, l := range lines {
		if _, err := tx.Exec(`INSERT INTO order_items (order_id, food_id, quantity) VALUES ($1, $2, $3)`,
			orderID, l.foodID, l.quantity); err != nil {
			return uuid.Nil, err
		}
	}

	if _, err := tx.Exec(`INSERT INTO new_orders (order_id) VALUES ($1)`, orderID); err != nil {
		return uuid.Nil, err
	}

	if _, err := tx.Exec(`DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return uuid.Nil, err
	}

	return orderID, nil
}

func GetOrderByID(orderID uuid.UUID) (models.Order, error) {
	var o models.Order
	err := database.Canteen.QueryRow(`
		SELECT id, user_id, order_date, total_amount, order_status, payment_status
		FROM orders WHERE id = $1`, orderID).
		Scan(&o.ID, &o.UserID, &o.OrderDate, &o.TotalAmount, &o.OrderStatus, &o.PaymentStatus)
	if err == sql.ErrNoRows {
		return o, apperror.NotFound("Order not found.")
	}
	return o, err
}

type OrderItemDetail struct {
	ID       uuid.UUID `json:"id"`
	FoodID   uuid.UUID `json:"food_id"`
	FoodName string    `json:"food_name"`
	Quantity int       `json:"quantity"`
}

type OrderUser struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

type OrderDetail struct {
	models.Order
	User  OrderUser         `json:"user"`
	Items []OrderItemDetail `json:"order_items"`
}

func GetOrderDetail(orderID uuid.UUID) (OrderDetail, error) {
	var d OrderDetail
	err := database.Canteen.QueryRow(`
		SELECT o.id, o.user_id, o.order_date, o.total_amount, o.order_status, o.payment_status,
		       u.id, u.username
		FROM orders o
		JOIN users u ON u.id = o.user_id
		WHERE o.id = $1`, orderID).
		Scan(&d.ID, &d.UserID, &d.OrderDate, &d.TotalAmount, &d.OrderStatus, &d.PaymentStatus,
			&d.User.ID, &d.User.Username)
	if err == sql.ErrNoRows {
		return d, apperror.NotFound("Order not found.")
	}
	if err != nil {
		return d, err
	}

	rows, err := database.Canteen.Query(`
		SELECT oi.id, oi.food_id, COALESCE(f.name, ''), oi.quantity
		FROM order_items oi
		LEFT JOIN foods f ON f.id = oi.food_id
		WHERE oi.order_id = $1`, orderID)
	if err != nil {
		return d, err
	}
	defer rows.Close()

	d.Items = []OrderItemDetail{}
	for rows.Next() {
		var item OrderItemDetail
		if err := rows.Scan(&item.ID, &item.FoodID, &item.FoodName, &item.Quantity); err != nil {
			return d, err
		}
		d.Items = append(d.Items, item)
	}
	return d, rows.Err()
}

// ListOrders returns every order when userID is nil, otherwise only that
// user's orders.
func ListOrders(userID *uuid.UUID, page int) ([]models.Order, int, error) {
	var total int
	var err error
	if userID == nil {
		err = database.Canteen.QueryRow(`SELECT COUNT(*) FROM orders`).Scan(&total)
	} else {
		err = database.Canteen.QueryRow(`SELECT COUNT(*) FROM orders WHERE user_id = $1`, *userID).Scan(&total)
	}
	if err != nil {
		return nil, 0, err
	}

	var rows *sql.Rows
	if userID == nil {
		rows, err = database.Canteen.Query(`
			SELECT id, user_id, order_date, total_amount, order_status, payment_status
			FROM orders ORDER BY order_date DESC
			LIMIT $1 OFFSET $2`, perPage, (page-1)*perPage)
	} else {
		rows, err = database.Canteen.Query(`
			SELECT id, user_id, order_date, total_amount, order_status, payment_status
			FROM orders WHERE user_id = $1 ORDER BY order_date DESC
			LIMIT $2 OFFSET $3`, *userID, perPage, (page-1)*perPage)
	}
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.OrderDate, &o.TotalAmount, &o.OrderStatus, &o.PaymentStatus); err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
	}
	return orders, total, rows.Err()
}

type NewOrderRow struct {
	ID      uuid.UUID    `json:"id"`
	OrderID uuid.UUID    `json:"order_id"`
	Order   models.Order `json:"order"`
}

// ListNewOrders returns orders still flagged for staff attention,
// optionally filtered by the joined order's status or by order id.
func ListNewOrders(status *models.OrderStatus, orderID *uuid.UUID, page int) ([]NewOrderRow, int, error) {
	where := `WHERE ($1::text IS NULL OR o.order_status = $1)
	            AND ($2::uuid IS NULL OR n.order_id = $2)`

	var total int
	err := database.Canteen.QueryRow(`
		SELECT COUNT(*)
		FROM new_orders n
		JOIN orders o ON o.id = n.order_id `+where, status, orderID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := database.Canteen.Query(`
		SELECT n.id, n.order_id,
		       o.id, o.user_id, o.order_date, o.total_amount, o.order_status, o.payment_status
		FROM new_orders n
		JOIN orders o ON o.id = n.order_id `+where+`
		ORDER BY o.order_date DESC
		LIMIT $3 OFFSET $4`, status, orderID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	list := []NewOrderRow{}
	for rows.Next() {
		var n NewOrderRow
		if err := rows.Scan(&n.ID, &n.OrderID,
			&n.Order.ID, &n.Order.UserID, &n.Order.OrderDate, &n.Order.TotalAmount,
			&n.Order.OrderStatus, &n.Order.PaymentStatus); err != nil {
			return nil, 0, err
		}
		list = append(list, n)
	}
	return list, total, rows.Err()
}

// ApplyStatusChange performs the status transition side effects in one
// transaction: the delivered gate on payments, the unconditional failed
// payment status on cancellation, marker removal on terminal states, and
// the documented order_date refresh.
func ApplyStatusChange(tx *sql.Tx, orderID uuid.UUID, target models.OrderStatus) error {
	var paymentStatus *models.PaymentStatus

	switch target {
	case models.OrderStatusDelivered:
		var exists bool
		if err := tx.QueryRow(`SELECT EXISTS (SELECT 1 FROM payments WHERE order_id = $1)`, orderID).
			Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return apperror.NotFound("Payment not found.")
		}
		paid := models.PaymentStatusPaid
		paymentStatus = &paid
	case models.OrderStatusCancelled:
		failed := models.PaymentStatusFailed
		paymentStatus = &failed
	}

	if target.IsTerminal() {
		// idempotent; the marker may already be gone
		if _, err := tx.Exec(`DELETE FROM new_orders WHERE order_id = $1`, orderID); err != nil {
			return err
		}
	}

	var err error
	if paymentStatus != nil {
		_, err = tx.Exec(`
			UPDATE orders SET order_status = $2, payment_status = $3, order_date = now()
			WHERE id = $1`, orderID, target, *paymentStatus)
	} else {
		_, err = tx.Exec(`
			UPDATE orders SET order_status = $2, order_date = now()
			WHERE id = $1`, orderID, target)
	}
	return err
}

func DeleteOrder(orderID uuid.UUID) error {
	res, err := database.Canteen.Exec(`DELETE FROM orders WHERE id = $1`, orderID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return apperror.NotFound("Order not found.")
	}
	return err
}
