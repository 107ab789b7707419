package db

import (
	"context"
	"sort"

	"fintrack-server/src/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// GetSummary aggregates the owner's records: overall totals, totals per
// classifier, and a month-by-month series sorted ascending.
func GetSummary(ctx context.Context, pool *pgxpool.Pool, userID int64) (*models.Summary, error) {
	summary := &models.Summary{
		ExpensesByCategory: make(map[string]float64),
		IncomeBySource:     make(map[string]float64),
	}

	err := pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE user_id = $1`, userID).
		Scan(&summary.TotalExpense)
	if err != nil {
		return nil, err
	}

	err = pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM incomes WHERE user_id = $1`, userID).
		Scan(&summary.TotalIncome)
	if err != nil {
		return nil, err
	}
	summary.Balance = summary.TotalIncome - summary.TotalExpense

	if err := groupTotals(ctx, pool,
		`SELECT category, SUM(amount) FROM expenses WHERE user_id = $1 GROUP BY category`,
		userID, summary.ExpensesByCategory); err != nil {
		return nil, err
	}

	if err := groupTotals(ctx, pool,
		`SELECT source, SUM(amount) FROM incomes WHERE user_id = $1 GROUP BY source`,
		userID, summary.IncomeBySource); err != nil {
		return nil, err
	}

	monthly := make(map[string]*models.MonthlyTotal)

	expenseByMonth := make(map[string]float64)
	if err := groupTotals(ctx, pool,
		`SELECT to_char(date, 'YYYY-MM'), SUM(amount) FROM expenses WHERE user_id = $1 GROUP BY 1`,
		userID, expenseByMonth); err != nil {
		return nil, err
	}
	for month, total := range expenseByMonth {
		monthly[month] = &models.MonthlyTotal{Month: month, Expense: total}
	}

	incomeByMonth := make(map[string]float64)
	if err := groupTotals(ctx, pool,
		`SELECT to_char(date, 'YYYY-MM'), SUM(amount) FROM incomes WHERE user_id = $1 GROUP BY 1`,
		userID, incomeByMonth); err != nil {
		return nil, err
	}
	for month, total := range incomeByMonth {
		if m, ok := monthly[month]; ok {
			m.Income = total
		} else {
			monthly[month] = &models.MonthlyTotal{Month: month, Income: total}
		}
	}

	summary.Monthly = make([]models.MonthlyTotal, 0, len(monthly))
	for _, m := range monthly {
		summary.Monthly = append(summary.Monthly, *m)
	}
	sort.Slice(summary.Monthly, func(i, j int) bool {
		return summary.Monthly[i].Month < summary.Monthly[j].Month
	})

	return summary, nil
}

func groupTotals(ctx context.Context, pool *pgxpool.Pool, query string, userID int64, dest map[string]float64) error {
	rows, err := pool.Query(ctx, query, userID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var total float64
		if err := rows.Scan(&key, &total); err != nil {
			return err
		}
		dest[key] = total
	}
	return rows.Err()
}
