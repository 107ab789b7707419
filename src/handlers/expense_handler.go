package handlers

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"fintrack-server/src/db"
	sqldb "fintrack-server/src/db/sql"
	"fintrack-server/src/models"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func expenseCacheKey(userID int64) string {
	return fmt.Sprintf("expenses:%d", userID)
}

func GetExpenses(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r)

		cacheKey := expenseCacheKey(userID)
		if cached, found := db.GetCache(cacheKey); found {
			if expenses, ok := cached.([]models.Expense); ok {
				writeJSON(w, http.StatusOK, expenses)
				return
			}
		}

		expenses, err := sqldb.GetAllExpensesForUser(r.Context(), pool, userID)
		if err != nil {
			log.Printf("ERROR: Failed to get expenses for user %d: %v", userID, err)
			writeMessage(w, http.StatusInternalServerError, "Failed to get expenses")
			return
		}
		if expenses == nil {
			expenses = []models.Expense{}
		}

		db.SetExpenseCache(cacheKey, expenses)
		writeJSON(w, http.StatusOK, expenses)
	}
}

func CreateExpense(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r)

		var req models.CreateExpenseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode create expense request body for user %d: %v", userID, err)
			writeMessage(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.Title == "" || req.Category == "" || req.Amount == nil {
			writeMessage(w, http.StatusBadRequest, "Missing fields")
			return
		}
		if *req.Amount <= 0 {
			writeMessage(w, http.StatusBadRequest, "Amount must be positive")
			return
		}

		date := time.Now()
		if req.Date != nil {
			date = req.Date.Time
		}

		expense := &models.Expense{
			UserID:   userID,
			Title:    req.Title,
			Amount:   float64(*req.Amount),
			Category: req.Category,
			Date:     date,
			Notes:    req.Notes,
		}
		created, err := sqldb.CreateExpense(r.Context(), pool, expense)
		if err != nil {
			log.Printf("ERROR: Failed to create expense for user %d: %v", userID, err)
			writeMessage(w, http.StatusInternalServerError, "Failed to create expense")
			return
		}

		db.DelExpenseCache(expenseCacheKey(userID))
		log.Printf("INFO: Created expense id %d for user %d, category %s", created.ID, userID, created.Category)
		writeJSON(w, http.StatusOK, created)
	}
}

func UpdateExpense(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r)

		expenseID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid expense id")
			return
		}

		var req models.UpdateExpenseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode update expense request body for user %d: %v", userID, err)
			writeMessage(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		var amount *float64
		if req.Amount != nil {
			if *req.Amount <= 0 {
				writeMessage(w, http.StatusBadRequest, "Amount must be positive")
				return
			}
			amount = (*float64)(req.Amount)
		}
		var date *time.Time
		if req.Date != nil {
			date = &req.Date.Time
		}

		updated, err := sqldb.UpdateExpense(r.Context(), pool, userID, expenseID, req.Title, amount, req.Category, date, req.Notes)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				writeMessage(w, http.StatusNotFound, "Expense not found")
				return
			}
			log.Printf("ERROR: Failed to update expense id %d for user %d: %v", expenseID, userID, err)
			writeMessage(w, http.StatusInternalServerError, "Failed to update expense")
			return
		}

		db.DelExpenseCache(expenseCacheKey(userID))
		log.Printf("INFO: Updated expense id %d for user %d", updated.ID, userID)
		writeJSON(w, http.StatusOK, updated)
	}
}

func DeleteExpense(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r)

		expenseID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid expense id")
			return
		}

		deleted, err := sqldb.DeleteExpense(r.Context(), pool, userID, expenseID)
		if err != nil {
			log.Printf("ERROR: Failed to delete expense id %d for user %d: %v", expenseID, userID, err)
			writeMessage(w, http.StatusInternalServerError, "Failed to delete expense")
			return
		}

		db.DelExpenseCache(expenseCacheKey(userID))
		log.Printf("INFO: Deleted expense id %d for user %d (%d rows)", expenseID, userID, deleted)
		writeMessage(w, http.StatusOK, "Expense deleted")
	}
}

func ExportExpenses(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r)

		expenses, err := sqldb.GetAllExpensesForUser(r.Context(), pool, userID)
		if err != nil {
			log.Printf("ERROR: Failed to export expenses for user %d: %v", userID, err)
			writeMessage(w, http.StatusInternalServerError, "Failed to export expenses")
			return
		}

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="expenses.csv"`)
		if err := writeExpenseCSV(w, expenses); err != nil {
			log.Printf("ERROR: Failed to write expense CSV for user %d: %v", userID, err)
		}
	}
}

func writeExpenseCSV(w io.Writer, expenses []models.Expense) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Title", "Amount", "Category", "Date", "Notes"}); err != nil {
		return err
	}
	for _, e := range expenses {
		record := []string{
			e.Title,
			strconv.FormatFloat(e.Amount, 'f', 2, 64),
			e.Category,
			e.Date.Format("2006-01-02"),
			e.Notes,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
