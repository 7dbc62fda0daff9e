package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/tummytime/canteen/apperror"
	"github.com/tummytime/canteen/database/dbhelper"
	"github.com/tummytime/canteen/middlewares"
	"github.com/tummytime/canteen/models"
	"github.com/tummytime/canteen/utils"
)

func CreatePayment(w http.ResponseWriter, r *http.Request) {
	claims, err := middlewares.GetAuthenticatedUser(r)
	if err != nil {
		utils.RespondJSON(w, http.StatusUnauthorized, map[string]string{"errors": "unauthorized"})
		return
	}

	type request struct {
		OrderID     uuid.UUID          `json:"order_id"`
		PaymentType models.PaymentType `json:"payment_type"`
	}
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, apperror.Validation("invalid request body"))
		return
	}
	if req.OrderID == uuid.Nil {
		utils.RespondError(w, apperror.Validation("order_id is required"))
		return
	}
	if !req.PaymentType.IsValid() {
		utils.RespondError(w, apperror.Validation("payment_type must be cash or card"))
		return
	}

	paymentID, err := dbhelper.CreatePayment(claims.UserID, req.OrderID, req.PaymentType)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]any{
		"message":    "Payment recorded successfully.",
		"payment_id": paymentID,
	})
}

func GetPayment(w http.ResponseWriter, r *http.Request) {
	claims, err := middlewares.GetAuthenticatedUser(r)
	if err != nil {
		utils.RespondJSON(w, http.StatusUnauthorized, map[string]string{"errors": "unauthorized"})
		return
	}

	paymentID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondError(w, apperror.Validation("invalid payment id"))
		return
	}

	payment, err := dbhelper.GetPaymentByID(paymentID)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	if payment.UserID != claims.UserID && !claims.IsElevated() {
		utils.RespondError(w, apperror.Forbidden("You are not authorized to see this payment."))
		return
	}

	utils.RespondJSON(w, http.StatusOK, payment)
}

func ListPayments(w http.ResponseWriter, r *http.Request) {
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
	payments, total, err := dbhelper.ListPayments(userID, page)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, utils.Paginated{Data: payments, Page: page, PerPage: 10, Total: total})
}

// DeletePayment is superadmin-only at the route level.
func DeletePayment(w http.ResponseWriter, r *http.Request) {
	paymentID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondError(w, apperror.Validation("invalid payment id"))
		return
	}

	if err := dbhelper.DeletePayment(paymentID); err != nil {
		utils.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
