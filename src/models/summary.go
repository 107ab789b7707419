package models

type MonthlyTotal struct {
	Month   string  `json:"month"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

type Summary struct {
	TotalIncome        float64            `json:"total_income"`
	TotalExpense       float64            `json:"total_expense"`
	Balance            float64            `json:"balance"`
	ExpensesByCategory map[string]float64 `json:"expenses_by_category"`
	IncomeBySource     map[string]float64 `json:"income_by_source"`
	Monthly            []MonthlyTotal     `json:"monthly"`
}
