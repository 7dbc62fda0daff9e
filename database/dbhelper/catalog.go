package dbhelper

import (
	"database/sql"

	"github.com/google/uuid"

	"github.com/tummytime/canteen/apperror"
	"github.com/tummytime/canteen/database"
	"github.com/tummytime/canteen/models"
)

func ListCategories() ([]models.Category, error) {
	rows, err := database.Canteen.Query(`SELECT id, name, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func GetCategoryByID(id uuid.UUID) (models.Category, error) {
	var c models.Category
	err := database.Canteen.QueryRow(`SELECT id, name, created_at FROM categories WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return c, apperror.NotFound("Category not found.")
	}
	return c, err
}

func CreateCategory(name string) (uuid.UUID, error) {
	var id uuid.UUID
	err := database.Canteen.QueryRow(`INSERT INTO categories (name) VALUES ($1) RETURNING id`, name).Scan(&id)
	return id, err
}

func DeleteCategory(id uuid.UUID) error {
	res, err := database.Canteen.Exec(`DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return apperror.NotFound("Category not found.")
	}
	return err
}

type FoodFilter struct {
	CategoryID *uuid.UUID
	Available  *bool
	Search     string
	SortAsc    *bool // sort by price when set
}

func ListFoods(filter FoodFilter, page int) ([]models.Food, int, error) {
	where := `WHERE ($1::uuid IS NULL OR category_id = $1)
	            AND ($2::boolean IS NULL OR is_available = $2)
	            AND ($3 = '' OR name ILIKE '%' || $3 || '%')`

	var total int
	err := database.Canteen.QueryRow(`SELECT COUNT(*) FROM foods `+where,
		filter.CategoryID, filter.Available, filter.Search).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	orderBy := `ORDER BY created_at DESC`
	if filter.SortAsc != nil {
		if *filter.SortAsc {
			orderBy = `ORDER BY price ASC`
		} else {
			orderBy = `ORDER BY price DESC`
		}
	}

	rows, err := database.Canteen.Query(`
		SELECT id, category_id, name, description, price, stock, sold, is_available, image_url, created_at
		FROM foods `+where+` `+orderBy+`
		LIMIT $4 OFFSET $5`,
		filter.CategoryID, filter.Available, filter.Search, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	foods := []models.Food{}
	for rows.Next() {
		var f models.Food
		if err := rows.Scan(&f.ID, &f.CategoryID, &f.Name, &f.Description, &f.Price,
			&f.Stock, &f.Sold, &f.IsAvailable, &f.ImageURL, &f.CreatedAt); err != nil {
			return nil, 0, err
		}
		foods = append(foods, f)
	}
	return foods, total, rows.Err()
}

type MostSoldFood struct {
	models.Food
	OrderItemsCount int `json:"order_items_count"`
}

// ListMostSoldFoods ranks foods by how often they appear in order items.
// The sold column is not consulted; it is bookkeeping the order flow
// never updates.
func ListMostSoldFoods(page int) ([]MostSoldFood, int, error) {
	var total int
	if err := database.Canteen.QueryRow(`SELECT COUNT(*) FROM foods`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := database.Canteen.Query(`
		SELECT f.id, f.category_id, f.name, f.description, f.price, f.stock, f.sold,
		       f.is_available, f.image_url, f.created_at, COUNT(oi.id) AS order_items_count
		FROM foods f
		LEFT JOIN order_items oi ON oi.food_id = f.id
		GROUP BY f.id
		ORDER BY order_items_count DESC
		LIMIT $1 OFFSET $2`, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	foods := []MostSoldFood{}
	for rows.Next() {
		var f MostSoldFood
		if err := rows.Scan(&f.ID, &f.CategoryID, &f.Name, &f.Description, &f.Price,
			&f.Stock, &f.Sold, &f.IsAvailable, &f.ImageURL, &f.CreatedAt, &f.OrderItemsCount); err != nil {
			return nil, 0, err
		}
		foods = append(foods, f)
	}
	return foods, total, rows.Err()
}

func GetFoodByID(id uuid.UUID) (models.Food, error) {
	var f models.Food
	err := database.Canteen.QueryRow(`
		SELECT id, category_id, name, description, price, stock, sold, is_available, image_url, created_at
		FROM foods WHERE id = $1`, id).
		Scan(&f.ID, &f.CategoryID, &f.Name, &f.Description, &f.Price,
			&f.Stock, &f.Sold, &f.IsAvailable, &f.ImageURL, &f.CreatedAt)
	if err == sql.ErrNoRows {
		return f, apperror.NotFound("Food not found.")
	}
	return f, err
}

type FoodInput struct {
	CategoryID  uuid.UUID `json:"category_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	IsAvailable bool      `json:"is_available"`
	ImageURL    *string   `json:"image_url"`
}

func CreateFood(in FoodInput) (uuid.UUID, error) {
	var id uuid.UUID
	err := database.Canteen.QueryRow(`
		INSERT INTO foods (category_id, name, description, price, stock, is_available, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		in.CategoryID, in.Name, in.Description, in.Price, in.Stock, in.IsAvailable, in.ImageURL).Scan(&id)
	return id, err
}

type FoodUpdate struct {
	CategoryID  *uuid.UUID `json:"category_id"`
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Price       *float64   `json:"price"`
	Stock       *int       `json:"stock"`
	IsAvailable *bool      `json:"is_available"`
	ImageURL    *string    `json:"image_url"`
}

func UpdateFood(id uuid.UUID, in FoodUpdate) error {
	res, err := database.Canteen.Exec(`
		UPDATE foods
		SET category_id  = COALESCE($2, category_id),
		    name         = COALESCE($3, name),
		    description  = COALESCE($4, description),
		    price        = COALESCE($5, price),
		    stock        = COALESCE($6, stock),
		    is_available = COALESCE($7, is_available),
		    image_url    = COALESCE($8, image_url)
		WHERE id = $1`,
		id, in.CategoryID, in.Name, in.Description, in.Price, in.Stock, in.IsAvailable, in.ImageURL)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return apperror.NotFound("Food not found.")
	}
	return err
}

func DeleteFood(id uuid.UUID) error {
	res, err := database.Canteen.Exec(`DELETE FROM foods WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return apperror.NotFound("Food not found.")
	}
	return err
}
