package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/tummytime/canteen/apperror"
	"github.com/tummytime/canteen/database/dbhelper"
	"github.com/tummytime/canteen/utils"
)

func ListFoods(w http.ResponseWriter, r *http.Request) {
	var filter dbhelper.FoodFilter

	if s := r.URL.Query().Get("category_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			utils.RespondError(w, apperror.Validation("invalid category id"))
			return
		}
		filter.CategoryID = &id
	}

	if s := r.URL.Query().Get("available"); s != "" {
		available := s == "true" || s == "1"
		filter.Available = &available
	}

	filter.Search = r.URL.Query().Get("q")

	switch r.URL.Query().Get("sort") {
	case "":
	case "price_asc":
		asc := true
		filter.SortAsc = &asc
	case "price_desc":
		asc := false
		filter.SortAsc = &asc
	default:
		utils.RespondError(w, apperror.Validation("sort must be price_asc or price_desc"))
		return
	}

	page := utils.ParsePage(r)
	foods, total, err := dbhelper.ListFoods(filter, page)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, utils.Paginated{Data: foods, Page: page, PerPage: 10, Total: total})
}

// ListMostSoldFoods is superadmin-only at the route level.
func ListMostSoldFoods(w http.ResponseWriter, r *http.Request) {
	page := utils.ParsePage(r)
	foods, total, err := dbhelper.ListMostSoldFoods(page)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, utils.Paginated{Data: foods, Page: page, PerPage: 10, Total: total})
}

func GetFood(w http.ResponseWriter, r *http.Request) {
	foodID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondError(w, apperror.Validation("invalid food id"))
		return
	}

	food, err := dbhelper.GetFoodByID(foodID)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, food)
}

// CreateFood is staff/superadmin at the route level.
func CreateFood(w http.ResponseWriter, r *http.Request) {
	var in dbhelper.FoodInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.RespondError(w, apperror.Validation("invalid request body"))
		return
	}
	if in.CategoryID == uuid.Nil || in.Name == "" {
		utils.RespondError(w, apperror.Validation("category_id and name are required"))
		return
	}
	if in.Price < 0 {
		utils.RespondError(w, apperror.Validation("price must not be negative"))
		return
	}
	if in.Stock < 0 {
		utils.RespondError(w, apperror.Validation("stock must not be negative"))
		return
	}

	foodID, err := dbhelper.CreateFood(in)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]any{
		"message": "Food created successfully.",
		"food_id": foodID,
	})
}

func UpdateFood(w http.ResponseWriter, r *http.Request) {
	foodID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondError(w, apperror.Validation("invalid food id"))
		return
	}

	var in dbhelper.FoodUpdate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.RespondError(w, apperror.Validation("invalid request body"))
		return
	}
	if in.Price != nil && *in.Price < 0 {
		utils.RespondError(w, apperror.Validation("price must not be negative"))
		return
	}
	if in.Stock != nil && *in.Stock < 0 {
		utils.RespondError(w, apperror.Validation("stock must not be negative"))
		return
	}

	if err := dbhelper.UpdateFood(foodID, in); err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"success": "Food updated successfully."})
}

// DeleteFood is superadmin-only at the route level.
func DeleteFood(w http.ResponseWriter, r *http.Request) {
	foodID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondError(w, apperror.Validation("invalid food id"))
		return
	}

	if err := dbhelper.DeleteFood(foodID); err != nil {
		utils.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
