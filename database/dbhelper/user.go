package dbhelper

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tummytime/canteen/apperror"
	"github.com/tummytime/canteen/database"
	"github.com/tummytime/canteen/models"
)

const perPage = 10

func CreateUser(tx *sql.Tx, username, email, hashedPassword string) (uuid.UUID, error) {
	var id uuid.UUID
	err := tx.QueryRow(`INSERT INTO users (username, email, password) VALUES ($1, $2, $3) RETURNING id`,
		username, email, hashedPassword).Scan(&id)
	return id, err
}

// CreateCart backs the one-cart-per-user invariant; it runs in the same
// transaction as CreateUser.
func CreateCart(tx *sql.Tx, userID uuid.UUID) (uuid.UUID, error) {
	var id uuid.UUID
	err := tx.QueryRow(`INSERT INTO carts (user_id) VALUES ($1) RETURNING id`, userID).Scan(&id)
	return id, err
}

func AssignRole(tx *sql.Tx, userID uuid.UUID, role models.Role) error {
	_, err := tx.Exec(`INSERT INTO user_roles (user_id, role) VALUES ($1, $2)`, userID, role)
	return err
}

func IsUserExists(email string) (bool, error) {
	var count int
	err := database.Canteen.QueryRow(`SELECT COUNT(*) FROM users WHERE LOWER(email) = LOWER($1)`, email).Scan(&count)
	return count > 0, err
}

func GetUserByPassword(email, password string) (uuid.UUID, string, error) {
	var id uuid.UUID
	var username, hashedPassword string

	err := database.Canteen.QueryRow(`
		SELECT id, username, password FROM users
		WHERE LOWER(email) = LOWER($1) AND archived_at IS NULL`, email).
		Scan(&id, &username, &hashedPassword)
	if err != nil {
		return uuid.Nil, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) != nil {
		return uuid.Nil, "", errors.New("incorrect password")
	}

	return id, username, nil
}

func GetUserRoles(userID uuid.UUID) ([]string, error) {
	rows, err := database.Canteen.Query(`
		SELECT role FROM user_roles
		WHERE user_id = $1 AND archived_at IS NULL`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func GetUserByID(id uuid.UUID) (models.User, error) {
	var u models.User
	err := database.Canteen.QueryRow(`
		SELECT id, username, email, created_at, archived_at FROM users
		WHERE id = $1 AND archived_at IS NULL`, id).
		Scan(&u.ID, &u.Username, &u.Email, &u.CreatedAt, &u.ArchivedAt)
	if err == sql.ErrNoRows {
		return u, apperror.NotFound("User not found.")
	}
	return u, err
}

func ListUsers(page int) ([]models.User, int, error) {
	var total int
	if err := database.Canteen.QueryRow(`SELECT COUNT(*) FROM users WHERE archived_at IS NULL`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := database.Canteen.Query(`
		SELECT id, username, email, created_at FROM users
		WHERE archived_at IS NULL
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.CreatedAt); err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

func UpdateUser(id uuid.UUID, username, email, hashedPassword *string) error {
	res, err := database.Canteen.Exec(`
		UPDATE users
		SET username = COALESCE($2, username),
		    email    = COALESCE($3, email),
		    password = COALESCE($4, password)
		WHERE id = $1 AND archived_at IS NULL`,
		id, username, email, hashedPassword)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return apperror.NotFound("User not found.")
	}
	return err
}

// ArchiveUser soft deletes; the row stays for order history.
func ArchiveUser(id uuid.UUID) error {
	res, err := database.Canteen.Exec(`
		UPDATE users SET archived_at = now()
		WHERE id = $1 AND archived_at IS NULL`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return apperror.NotFound("User not found.")
	}
	return err
}
