package dbhelper

import (
	"database/sql"

	"github.com/google/uuid"

	"github.com/tummytime/canteen/apperror"
	"github.com/tummytime/canteen/database"
	"github.com/tummytime/canteen/models"
)

func ListFeedbackByFood(foodID uuid.UUID) ([]models.Feedback, error) {
	var exists bool
	if err := database.Canteen.QueryRow(`SELECT EXISTS (SELECT 1 FROM foods WHERE id = $1)`, foodID).
		Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperror.NotFound("Food not found.")
	}

	rows, err := database.Canteen.Query(`
		SELECT id, user_id, food_id, comment, created_at
		FROM feedbacks WHERE food_id = $1
		ORDER BY created_at DESC`, foodID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	feedbacks := []models.Feedback{}
	for rows.Next() {
		var f models.Feedback
		if err := rows.Scan(&f.ID, &f.UserID, &f.FoodID, &f.Comment, &f.CreatedAt); err != nil {
			return nil, err
		}
		feedbacks = append(feedbacks, f)
	}
	return feedbacks, rows.Err()
}

func CreateFeedback(userID, foodID uuid.UUID, comment string) (uuid.UUID, error) {
	var exists bool
	if err := database.Canteen.QueryRow(`SELECT EXISTS (SELECT 1 FROM foods WHERE id = $1)`, foodID).
		Scan(&exists); err != nil {
		return uuid.Nil, err
	}
	if !exists {
		return uuid.Nil, apperror.NotFound("Food not found.")
	}

	var id uuid.UUID
	err := database.Canteen.QueryRow(`
		INSERT INTO feedbacks (user_id, food_id, comment)
		VALUES ($1, $2, $3) RETURNING id`, userID, foodID, comment).Scan(&id)
	return id, err
}

func GetFeedbackByID(id uuid.UUID) (models.Feedback, error) {
	var f models.Feedback
	err := database.Canteen.QueryRow(`
		SELECT id, user_id, food_id, comment, created_at
		FROM feedbacks WHERE id = $1`, id).
		Scan(&f.ID, &f.UserID, &f.FoodID, &f.Comment, &f.CreatedAt)
	if err == sql.ErrNoRows {
		return f, apperror.NotFound("Feedback not found.")
	}
	return f, err
}

func DeleteFeedback(id uuid.UUID) error {
	res, err := database.Canteen.Exec(`DELETE FROM feedbacks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return apperror.NotFound("Feedback not found.")
	}
	return err
}
