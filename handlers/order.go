package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/tummytime/canteen/apperror"
	"github.com/tummytime/canteen/cache"
	"github.com/tummytime/canteen/database"
	"github.com/tummytime/canteen/database/dbhelper"
	"github.com/tummytime/canteen/middlewares"
	"github.com/tummytime/canteen/models"
	"github.com/tummytime/canteen/utils"
)

// CreateOrder converts the caller's cart into an order. The whole
// conversion is one transaction; a concurrent reader never sees a
// partial order or a drained cart without its order.
func CreateOrder(w http.ResponseWriter, r *http.Request) {
	claims, err := middlewares.GetAuthenticatedUser(r)
	if err != nil {
		utils.RespondJSON(w, http.StatusUnauthorized, map[string]string{"errors": "unauthorized"})
		return
	}

	txErr := database.Tx(func(tx *sql.Tx) error {
		_, err := dbhelper.CreateOrderFromCart(tx, claims.UserID)
		return err
	})
	if txErr != nil {
		utils.RespondError(w, txErr)
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]string{"message": "Order created successfully."})
}

// ListOrders shows everything to staff and superadmins, own orders to
// everyone else.
func ListOrders(w http.ResponseWriter, r *http.Request) {
	claims, err := middlewares.GetAuthenticatedUser(r)
	if err != nil {
		utils.RespondJSON(w, http.StatusUnauthorized, map[string]string{"errors": "unauthorized"})
		return
	}

	var userID *uuid.UUID
	if !claims.IsElevated() {
		userID = &claims.UserID
	}

	page := utils.ParsePage(r)
	orders, total, err := dbhelper.ListOrders(userID, page)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, utils.Paginated{Data: orders, Page: page, PerPage: 10, Total: total})
}

// ListNewOrders is staff/superadmin-only at the route level.
func ListNewOrders(w http.ResponseWriter, r *http.Request) {
	var status *models.OrderStatus
	if s := r.URL.Query().Get("order_status"); s != "" {
		st := models.OrderStatus(s)
		if !st.IsValid() {
			utils.RespondError(w, apperror.Validation("invalid order status: %s", s))
			return
		}
		status = &st
	}

	var orderID *uuid.UUID
	if s := r.URL.Query().Get("order_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			utils.RespondError(w, apperror.Validation("invalid order id"))
			return
		}
		orderID = &id
	}

	page := utils.ParsePage(r)
	newOrders, total, err := dbhelper.ListNewOrders(status, orderID, page)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, utils.Paginated{Data: newOrders, Page: page, PerPage: 10, Total: total})
}

func GetOrder(w http.ResponseWriter, r *http.Request) {
	claims, err := middlewares.GetAuthenticatedUser(r)
	if err != nil {
		utils.RespondJSON(w, http.StatusUnauthorized, map[string]string{"errors": "unauthorized"})
		return
	}

	orderID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondError(w, apperror.Validation("invalid order id"))
		return
	}

	detail, err := dbhelper.GetOrderDetail(orderID)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	if detail.UserID != claims.UserID && !claims.IsElevated() {
		utils.RespondError(w, apperror.Forbidden("You are not authorized to see this order."))
		return
	}

	utils.RespondJSON(w, http.StatusOK, detail)
}

// GetOrderStatus backs the kitchen display polling loop; staff-only at
// the route level. Redis first, database as fallback.
func GetOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondError(w, apperror.Validation("invalid order id"))
		return
	}

	if cached, ok := cache.GetOrderStatus(r.Context(), orderID.String()); ok {
		utils.RespondJSON(w, http.StatusOK, json.RawMessage(cached))
		return
	}

	order, err := dbhelper.GetOrderByID(orderID)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	body := map[string]any{
		"order_status":   order.OrderStatus,
		"payment_status": order.PaymentStatus,
	}
	if payload, err := json.Marshal(body); err == nil {
		cache.SetOrderStatus(r.Context(), orderID.String(), payload)
	}
	utils.RespondJSON(w, http.StatusOK, body)
}

// UpdateOrderStatus applies the asymmetric rule: customers may only
// cancel their own orders, staff may set anything but cancelled.
func UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	claims, err := middlewares.GetAuthenticatedUser(r)
	if err != nil {
		utils.RespondJSON(w, http.StatusUnauthorized, map[string]string{"errors": "unauthorized"})
		return
	}

	orderID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondError(w, apperror.Validation("invalid order id"))
		return
	}

	type request struct {
		OrderStatus models.OrderStatus `json:"order_status"`
	}
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, apperror.Validation("invalid request body"))
		return
	}
	if !req.OrderStatus.IsValid() {
		utils.RespondError(w, apperror.Validation("invalid order status: %s", req.OrderStatus))
		return
	}

	order, err := dbhelper.GetOrderByID(orderID)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	if !models.CanSetOrderStatus(claims.IsElevated(), order.UserID == claims.UserID, req.OrderStatus) {
		utils.RespondError(w, apperror.Forbidden("You are not authorized to set %s status.", req.OrderStatus))
		return
	}

	txErr := database.Tx(func(tx *sql.Tx) error {
		return dbhelper.ApplyStatusChange(tx, orderID, req.OrderStatus)
	})
	if txErr != nil {
		utils.RespondError(w, txErr)
		return
	}

	cache.InvalidateOrderStatus(r.Context(), orderID.String())
	utils.RespondJSON(w, http.StatusOK, map[string]string{"success": "Order updated successfully."})
}

// DeleteOrder is superadmin-only at the route level; order items go with
// the order via the cascade.
func DeleteOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondError(w, apperror.Validation("invalid order id"))
		return
	}

	if err := dbhelper.DeleteOrder(orderID); err != nil {
		utils.RespondError(w, err)
		return
	}

	cache.InvalidateOrderStatus(r.Context(), orderID.String())
	w.WriteHeader(http.StatusNoContent)
}
