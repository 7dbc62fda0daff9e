package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/tummytime/canteen/apperror"
	"github.com/tummytime/canteen/database"
	"github.com/tummytime/canteen/database/dbhelper"
	"github.com/tummytime/canteen/middlewares"
	"github.com/tummytime/canteen/utils"
)

// GetCartItems serves only the caller's own cart.
func GetCartItems(w http.ResponseWriter, r *http.Request) {
	claims, err := middlewares.GetAuthenticatedUser(r)
	if err != nil {
		utils.RespondJSON(w, http.StatusUnauthorized, map[string]string{"errors": "unauthorized"})
		return
	}

	userID, err := uuid.Parse(mux.Vars(r)["user_id"])
	if err != nil {
		utils.RespondError(w, apperror.Validation("invalid user id"))
		return
	}

	if userID != claims.UserID {
		utils.RespondError(w, apperror.Forbidden("You are not authorized to access this cart."))
		return
	}

	cart, err := dbhelper.GetCartByUserID(userID)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	items, err := dbhelper.GetCartItems(cart.ID)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{"cartItems": items})
}

// UpdateCartItems replaces the whole cart: delete everything, insert the
// new list, one transaction.
func UpdateCartItems(w http.ResponseWriter, r *http.Request) {
	claims, err := middlewares.GetAuthenticatedUser(r)
	if err != nil {
		utils.RespondJSON(w, http.StatusUnauthorized, map[string]string{"errors": "unauthorized"})
		return
	}

	cartID, err := uuid.Parse(mux.Vars(r)["cart_id"])
	if err != nil {
		utils.RespondError(w, apperror.Validation("invalid cart id"))
		return
	}

	cart, err := dbhelper.GetCartByID(cartID)
	if err != nil || cart.UserID != claims.UserID {
		utils.RespondError(w, apperror.Forbidden("You are not authorized to update this cart."))
		return
	}

	type request struct {
		Items []dbhelper.CartItemInput `json:"items"`
	}
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, apperror.Validation("invalid request body"))
		return
	}
	if req.Items == nil {
		utils.RespondError(w, apperror.Validation("items are required"))
		return
	}
	for _, item := range req.Items {
		if item.FoodID == uuid.Nil {
			utils.RespondError(w, apperror.Validation("food_id is required for every item"))
			return
		}
		if item.Quantity < 1 {
			utils.RespondError(w, apperror.Validation("quantity must be at least 1"))
			return
		}
	}

	txErr := database.Tx(func(tx *sql.Tx) error {
		return dbhelper.ReplaceCartItems(tx, cartID, req.Items)
	})
	if txErr != nil {
		utils.RespondError(w, txErr)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"success": "Cart updated successfully."})
}

func DeleteCartItems(w http.ResponseWriter, r *http.Request) {
	claims, err := middlewares.GetAuthenticatedUser(r)
	if err != nil {
		utils.RespondJSON(w, http.StatusUnauthorized, map[string]string{"errors": "unauthorized"})
		return
	}

	cartID, err := uuid.Parse(mux.Vars(r)["cart_id"])
	if err != nil {
		utils.RespondError(w, apperror.Validation("invalid cart id"))
		return
	}

	cart, err := dbhelper.GetCartByID(cartID)
	if err != nil || cart.UserID != claims.UserID {
		utils.RespondError(w, apperror.Forbidden("You are not authorized to delete this cart."))
		return
	}

	deleted, err := dbhelper.ClearCartItems(cartID)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"success": fmt.Sprintf("Successfully deleted %d cart item(s).", deleted),
	})
}
