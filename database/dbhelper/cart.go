package dbhelper

import (
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/tummytime/canteen/apperror"
	"github.com/tummytime/canteen/database"
	"github.com/tummytime/canteen/models"
)

type CartItemInput struct {
	FoodID   uuid.UUID `json:"food_id"`
	Quantity int       `json:"quantity"`
}

func GetCartByUserID(userID uuid.UUID) (models.Cart, error) {
	var cart models.Cart
	err := database.Canteen.QueryRow(`SELECT id, user_id FROM carts WHERE user_id = $1`, userID).
		Scan(&cart.ID, &cart.UserID)
	if err == sql.ErrNoRows {
		return cart, apperror.NotFound("Cart not found.")
	}
	return cart, err
}

func GetCartByID(cartID uuid.UUID) (models.Cart, error) {
	var cart models.Cart
	err := database.Canteen.QueryRow(`SELECT id, user_id FROM carts WHERE id = $1`, cartID).
		Scan(&cart.ID, &cart.UserID)
	if err == sql.ErrNoRows {
		return cart, apperror.NotFound("Cart not found.")
	}
	return cart, err
}

func GetCartItems(cartID uuid.UUID) ([]models.CartItem, error) {
	rows, err := database.Canteen.Query(`
		SELECT id, cart_id, food_id, quantity FROM cart_items
		WHERE cart_id = $1`, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.CartItem{}
	for rows.Next() {
		var item models.CartItem
		if err := rows.Scan(&item.ID, &item.CartID, &item.FoodID, &item.Quantity); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ReplaceCartItems deletes every existing item and inserts the new list.
// Full replacement, not a merge; runs inside the caller's transaction.
func ReplaceCartItems(tx *sql.Tx, cartID uuid.UUID, items []CartItemInput) error {
	foodIDs := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]bool, len(items))
	for _, item := range items {
		foodIDs = append(foodIDs, item.FoodID)
		seen[item.FoodID] = true
	}

	var known int
	if err := tx.QueryRow(`SELECT COUNT(DISTINCT id) FROM foods WHERE id = ANY($1)`,
		pq.Array(foodIDs)).Scan(&known); err != nil {
		return err
	}
	if known != len(seen) {
		return apperror.Validation("One or more food items do not exist.")
	}

	if _, err := tx.Exec(`DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return err
	}

	for _, item := range items {
		if _, err := tx.Exec(`INSERT INTO cart_items (cart_id, food_id, quantity) VALUES ($1, $2, $3)`,
			cartID, item.FoodID, item.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func ClearCartItems(cartID uuid.UUID) (int64, error) {
	res, err := database.Canteen.Exec(`DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
