package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/tummytime/canteen/apperror"
	"github.com/tummytime/canteen/cache"
	"github.com/tummytime/canteen/config"
	"github.com/tummytime/canteen/database"
	"github.com/tummytime/canteen/database/dbhelper"
	"github.com/tummytime/canteen/middlewares"
	"github.com/tummytime/canteen/models"
	"github.com/tummytime/canteen/utils"
)

func Register(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, apperror.Validation("invalid request body"))
		return
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		utils.RespondError(w, apperror.Validation("username, email and password are required"))
		return
	}
	if len(req.Password) < 6 {
		utils.RespondError(w, apperror.Validation("password must be at least 6 characters"))
		return
	}

	exists, err := dbhelper.IsUserExists(req.Email)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	if exists {
		utils.RespondError(w, apperror.Validation("user already exists"))
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	var userID uuid.UUID
	// user, role, and cart must land together: every user owns exactly
	// one cart from signup onwards
	txErr := database.Tx(func(tx *sql.Tx) error {
		userID, err = dbhelper.CreateUser(tx, req.Username, req.Email, hashedPassword)
		if err != nil {
			logrus.WithError(err).Error("failed to create user")
			return err
		}

		if err = dbhelper.AssignRole(tx, userID, models.RoleUser); err != nil {
			logrus.WithError(err).Error("failed to assign role to the user")
			return err
		}

		if _, err = dbhelper.CreateCart(tx, userID); err != nil {
			logrus.WithError(err).Error("failed to create cart for the user")
			return err
		}
		return nil
	})
	if txErr != nil {
		utils.RespondError(w, txErr)
		return
	}

	accToken, refToken, err := utils.GenerateTokens(userID, []string{string(models.RoleUser)})
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	setRefreshCookie(w, refToken, time.Now().Add(7*24*time.Hour))
	utils.RespondJSON(w, http.StatusCreated, map[string]any{
		"user_id":      userID,
		"username":     req.Username,
		"email":        req.Email,
		"access_token": accToken,
	})
}

func Login(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, apperror.Validation("invalid request body"))
		return
	}
	if req.Email == "" || req.Password == "" {
		utils.RespondError(w, apperror.Validation("email and password required"))
		return
	}

	userID, username, err := dbhelper.GetUserByPassword(req.Email, req.Password)
	if err != nil {
		utils.RespondJSON(w, http.StatusUnauthorized, map[string]string{"errors": "invalid credentials"})
		return
	}

	roles, err := dbhelper.GetUserRoles(userID)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	if len(roles) == 0 {
		utils.RespondError(w, apperror.Forbidden("no roles assigned"))
		return
	}

	accessToken, refreshToken, err := utils.GenerateTokens(userID, roles)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	setRefreshCookie(w, refreshToken, time.Now().Add(7*24*time.Hour))
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"user_id":      userID,
		"username":     username,
		"email":        req.Email,
		"roles":        roles,
		"access_token": accessToken,
		"message":      "Successfully logged in",
	})
}

func RefreshToken(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie("refresh_token")
	if err != nil {
		utils.RespondJSON(w, http.StatusUnauthorized, map[string]string{"errors": "refresh token missing"})
		return
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(config.SecretKey), nil
	})
	if err != nil || !token.Valid {
		utils.RespondJSON(w, http.StatusUnauthorized, map[string]string{"errors": "invalid or expired refresh token"})
		return
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		utils.RespondJSON(w, http.StatusUnauthorized, map[string]string{"errors": "invalid refresh token subject"})
		return
	}

	roles, err := dbhelper.GetUserRoles(userID)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	newAccessToken, newRefreshToken, err := utils.GenerateTokens(userID, roles)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	setRefreshCookie(w, newRefreshToken, time.Now().Add(7*24*time.Hour))
	utils.RespondJSON(w, http.StatusOK, map[string]string{"access_token": newAccessToken})
}

// Logout denylists the presented access token until it would expire.
func Logout(w http.ResponseWriter, r *http.Request) {
	claims, err := middlewares.GetAuthenticatedUser(r)
	if err == nil && claims.ExpiresAt != nil {
		if token, tokenErr := middlewares.GetBearerToken(r); tokenErr == nil {
			cache.DenyToken(r.Context(), token, time.Until(claims.ExpiresAt.Time))
		}
	}

	setRefreshCookie(w, "", time.Unix(0, 0))
	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "Successfully logged out"})
}

func ListUsers(w http.ResponseWriter, r *http.Request) {
	page := utils.ParsePage(r)
	users, total, err := dbhelper.ListUsers(page)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, utils.Paginated{Data: users, Page: page, PerPage: 10, Total: total})
}

func GetUser(w http.ResponseWriter, r *http.Request) {
	claims, err := middlewares.GetAuthenticatedUser(r)
	if err != nil {
		utils.RespondJSON(w, http.StatusUnauthorized, map[string]string{"errors": "unauthorized"})
		return
	}

	userID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondError(w, apperror.Validation("invalid user id"))
		return
	}

	if userID != claims.UserID && !claims.IsElevated() {
		utils.RespondError(w, apperror.Forbidden("You are not authorized to see this user."))
		return
	}

	user, err := dbhelper.GetUserByID(userID)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, user)
}

// CreateStaffUser is superadmin-only at the route level.
func CreateStaffUser(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, apperror.Validation("invalid request body"))
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		utils.RespondError(w, apperror.Validation("username, email and password are required"))
		return
	}

	exists, err := dbhelper.IsUserExists(req.Email)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	if exists {
		utils.RespondError(w, apperror.Validation("user already exists"))
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	var userID uuid.UUID
	txErr := database.Tx(func(tx *sql.Tx) error {
		userID, err = dbhelper.CreateUser(tx, req.Username, req.Email, hashedPassword)
		if err != nil {
			return err
		}
		if err = dbhelper.AssignRole(tx, userID, models.RoleStaff); err != nil {
			return err
		}
		_, err = dbhelper.CreateCart(tx, userID)
		return err
	})
	if txErr != nil {
		utils.RespondError(w, txErr)
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]any{
		"message": "Staff user created successfully.",
		"user_id": userID,
	})
}

func UpdateUser(w http.ResponseWriter, r *http.Request) {
	claims, err := middlewares.GetAuthenticatedUser(r)
	if err != nil {
		utils.RespondJSON(w, http.StatusUnauthorized, map[string]string{"errors": "unauthorized"})
		return
	}

	userID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondError(w, apperror.Validation("invalid user id"))
		return
	}

	if userID != claims.UserID && !claims.IsSuperAdmin() {
		utils.RespondError(w, apperror.Forbidden("You are not authorized to update this user."))
		return
	}

	type request struct {
		Username *string `json:"username"`
		Email    *string `json:"email"`
		Password *string `json:"password"`
	}
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, apperror.Validation("invalid request body"))
		return
	}

	var hashedPassword *string
	if req.Password != nil {
		if len(*req.Password) < 6 {
			utils.RespondError(w, apperror.Validation("password must be at least 6 characters"))
			return
		}
		hashed, err := utils.HashPassword(*req.Password)
		if err != nil {
			utils.RespondError(w, err)
			return
		}
		hashedPassword = &hashed
	}

	if err := dbhelper.UpdateUser(userID, req.Username, req.Email, hashedPassword); err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"success": "User updated successfully."})
}

// DeleteUser is superadmin-only at the route level; the user is archived,
// not removed, so order history survives.
func DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondError(w, apperror.Validation("invalid user id"))
		return
	}

	if err := dbhelper.ArchiveUser(userID); err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"success": "User deleted successfully."})
}

func setRefreshCookie(w http.ResponseWriter, value string, expires time.Time) {
	cookie := &http.Cookie{
		Name:     "refresh_token",
		Value:    value,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		Expires:  expires,
	}
	if value == "" {
		cookie.MaxAge = -1
	}
	http.SetCookie(w, cookie)
}
