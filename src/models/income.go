package models

import "time"

type Income struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Source    string    `json:"source"`
	Amount    float64   `json:"amount"`
	Date      time.Time `json:"date"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateIncomeRequest struct {
	Source string  `json:"source"`
	Amount *Amount `json:"amount"`
	Date   *Date   `json:"date"`
	Notes  string  `json:"notes"`
}

type UpdateIncomeRequest struct {
	Source *string `json:"source"`
	Amount *Amount `json:"amount"`
	Date   *Date   `json:"date"`
	Notes  *string `json:"notes"`
}
