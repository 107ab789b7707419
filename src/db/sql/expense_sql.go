package db

import (
	"context"
	"time"

	"fintrack-server/src/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

func CreateExpense(ctx context.Context, pool *pgxpool.Pool, expense *models.Expense) (*models.Expense, error) {
	query := `
		INSERT INTO expenses (user_id, title, amount, category, date, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, user_id, title, amount, category, date, notes, created_at, updated_at
	`
	var e models.Expense
	err := pool.QueryRow(ctx, query, expense.UserID, expense.Title, expense.Amount, expense.Category, expense.Date, expense.Notes).
		Scan(&e.ID, &e.UserID, &e.Title, &e.Amount, &e.Category, &e.Date, &e.Notes, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func GetAllExpensesForUser(ctx context.Context, pool *pgxpool.Pool, userID int64) ([]models.Expense, error) {
	query := `
		SELECT id, user_id, title, amount, category, date, notes, created_at, updated_at
		FROM expenses
		WHERE user_id = $1
		ORDER BY date DESC
	`
	rows, err := pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var e models.Expense
		err := rows.Scan(&e.ID, &e.UserID, &e.Title, &e.Amount, &e.Category, &e.Date, &e.Notes, &e.CreatedAt, &e.UpdatedAt)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// UpdateExpense replaces only the non-nil fields. Scoped to the owner, so a
// record belonging to another user scans as no rows.
func UpdateExpense(ctx context.Context, pool *pgxpool.Pool, userID, expenseID int64,
	title *string, amount *float64, category *string, date *time.Time, notes *string) (*models.Expense, error) {
	query := `
		UPDATE expenses
		SET title = COALESCE($1, title),
		    amount = COALESCE($2, amount),
		    category = COALESCE($3, category),
		    date = COALESCE($4, date),
		    notes = COALESCE($5, notes),
		    updated_at = NOW()
		WHERE id = $6 AND user_id = $7
		RETURNING id, user_id, title, amount, category, date, notes, created_at, updated_at
	`
	var e models.Expense
	err := pool.QueryRow(ctx, query, title, amount, category, date, notes, expenseID, userID).
		Scan(&e.ID, &e.UserID, &e.Title, &e.Amount, &e.Category, &e.Date, &e.Notes, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// DeleteExpense reports how many rows went away; deleting an id that is
// already gone is not an error.
func DeleteExpense(ctx context.Context, pool *pgxpool.Pool, userID, expenseID int64) (int64, error) {
	query := `DELETE FROM expenses WHERE id = $1 AND user_id = $2`
	cmd, err := pool.Exec(ctx, query, expenseID, userID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
