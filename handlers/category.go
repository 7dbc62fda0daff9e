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

func ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := dbhelper.ListCategories()
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, categories)
}

func GetCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondError(w, apperror.Validation("invalid category id"))
		return
	}

	category, err := dbhelper.GetCategoryByID(categoryID)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, category)
}

// CreateCategory is staff/superadmin at the route level.
func CreateCategory(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Name string `json:"name"`
	}
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, apperror.Validation("invalid request body"))
		return
	}
	if req.Name == "" {
		utils.RespondError(w, apperror.Validation("name is required"))
		return
	}

	categoryID, err := dbhelper.CreateCategory(req.Name)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]any{
		"message":     "Category created successfully.",
		"category_id": categoryID,
	})
}

// DeleteCategory is superadmin-only at the route level.
func DeleteCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondError(w, apperror.Validation("invalid category id"))
		return
	}

	if err := dbhelper.DeleteCategory(categoryID); err != nil {
		utils.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
