package models

import "time"

type Expense struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Title     string    `json:"title"`
	Amount    float64   `json:"amount"`
	Category  string    `json:"category"`
	Date      time.Time `json:"date"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateExpenseRequest struct {
	Title    string  `json:"title"`
	Amount   *Amount `json:"amount"`
	Category string  `json:"category"`
	Date     *Date   `json:"date"`
	Notes    string  `json:"notes"`
}

// UpdateExpenseRequest distinguishes absent fields from zero values so that
// PUT only replaces what the body names.
type UpdateExpenseRequest struct {
	Title    *string `json:"title"`
	Amount   *Amount `json:"amount"`
	Category *string `json:"category"`
	Date     *Date   `json:"date"`
	Notes    *string `json:"notes"`
}
