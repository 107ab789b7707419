package db

import (
	"context"
	"time"

	"fintrack-server/src/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

func CreateIncome(ctx context.Context, pool *pgxpool.Pool, income *models.Income) (*models.Income, error) {
	query := `
		INSERT INTO incomes (user_id, source, amount, date, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, source, amount, date, notes, created_at, updated_at
	`
	var i models.Income
	err := pool.QueryRow(ctx, query, income.UserID, income.Source, income.Amount, income.Date, income.Notes).
		Scan(&i.ID, &i.UserID, &i.Source, &i.Amount, &i.Date, &i.Notes, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func GetAllIncomesForUser(ctx context.Context, pool *pgxpool.Pool, userID int64) ([]models.Income, error) {
	query := `
		SELECT id, user_id, source, amount, date, notes, created_at, updated_at
		FROM incomes
		WHERE user_id = $1
		ORDER BY date DESC
	`
	rows, err := pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var incomes []models.Income
	for rows.Next() {
		var i models.Income
		err := rows.Scan(&i.ID, &i.UserID, &i.Source, &i.Amount, &i.Date, &i.Notes, &i.CreatedAt, &i.UpdatedAt)
		if err != nil {
			return nil, err
		}
		incomes = append(incomes, i)
	}
	return incomes, rows.Err()
}

func UpdateIncome(ctx context.Context, pool *pgxpool.Pool, userID, incomeID int64,
	source *string, amount *float64, date *time.Time, notes *string) (*models.Income, error) {
	query := `
		UPDATE incomes
		SET source = COALESCE($1, source),
		    amount = COALESCE($2, amount),
		    date = COALESCE($3, date),
		    notes = COALESCE($4, notes),
		    updated_at = NOW()
		WHERE id = $5 AND user_id = $6
		RETURNING id, user_id, source, amount, date, notes, created_at, updated_at
	`
	var i models.Income
	err := pool.QueryRow(ctx, query, source, amount, date, notes, incomeID, userID).
		Scan(&i.ID, &i.UserID, &i.Source, &i.Amount, &i.Date, &i.Notes, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func DeleteIncome(ctx context.Context, pool *pgxpool.Pool, userID, incomeID int64) (int64, error) {
	query := `DELETE FROM incomes WHERE id = $1 AND user_id = $2`
	cmd, err := pool.Exec(ctx, query, incomeID, userID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
