package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/tummytime/canteen/apperror"
	"github.com/tummytime/canteen/database/dbhelper"
	"github.com/tummytime/canteen/middlewares"
	"github.com/tummytime/canteen/utils"
)

func ListFeedback(w http.ResponseWriter, r *http.Request) {
	foodID, err := uuid.Parse(mux.Vars(r)["food_id"])
	if err != nil {
		utils.RespondError(w, apperror.Validation("invalid food id"))
		return
	}

	feedbacks, err := dbhelper.ListFeedbackByFood(foodID)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, feedbacks)
}

func CreateFeedback(w http.ResponseWriter, r *http.Request) {
	claims, err := middlewares.GetAuthenticatedUser(r)
	if err != nil {
		utils.RespondJSON(w, http.StatusUnauthorized, map[string]string{"errors": "unauthorized"})
		return
	}

	type request struct {
		FoodID  uuid.UUID `json:"food_id"`
		Comment string    `json:"comment"`
	}
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, apperror.Validation("invalid request body"))
		return
	}
	if req.FoodID == uuid.Nil || req.Comment == "" {
		utils.RespondError(w, apperror.Validation("food_id and comment are required"))
		return
	}

	feedbackID, err := dbhelper.CreateFeedback(claims.UserID, req.FoodID, req.Comment)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]any{
		"message":     "Feedback created successfully.",
		"feedback_id": feedbackID,
	})
}

// DeleteFeedback allows the author or a superadmin.
func DeleteFeedback(w http.ResponseWriter, r *http.Request) {
	claims, err := middlewares.GetAuthenticatedUser(r)
	if err != nil {
		utils.RespondJSON(w, http.StatusUnauthorized, map[string]string{"errors": "unauthorized"})
		return
	}

	feedbackID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondError(w, apperror.Validation("invalid feedback id"))
		return
	}

	feedback, err := dbhelper.GetFeedbackByID(feedbackID)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	if feedback.UserID != claims.UserID && !claims.IsSuperAdmin() {
		utils.RespondError(w, apperror.Forbidden("You are not authorized to delete this feedback."))
		return
	}

	if err := dbhelper.DeleteFeedback(feedbackID); err != nil {
		utils.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
