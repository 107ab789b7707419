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

func incomeCacheKey(userID int64) string {
	return fmt.Sprintf("incomes:%d", userID)
}

func GetIncomes(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r)

		cacheKey := incomeCacheKey(userID)
		if cached, found := db.GetCache(cacheKey); found {
			if incomes, ok := cached.([]models.Income); ok {
				writeJSON(w, http.StatusOK, incomes)
				return
			}
		}

		incomes, err := sqldb.GetAllIncomesForUser(r.Context(), pool, userID)
		if err != nil {
			log.Printf("ERROR: Failed to get incomes for user %d: %v", userID, err)
			writeMessage(w, http.StatusInternalServerError, "Failed to get income")
			return
		}
		if incomes == nil {
			incomes = []models.Income{}
		}

		db.SetIncomeCache(cacheKey, incomes)
		writeJSON(w, http.StatusOK, incomes)
	}
}

func CreateIncome(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r)

		var req models.CreateIncomeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode create income request body for user %d: %v", userID, err)
			writeMessage(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.Source == "" || req.Amount == nil {
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

		income := &models.Income{
			UserID: userID,
			Source: req.Source,
			Amount: float64(*req.Amount),
			Date:   date,
			Notes:  req.Notes,
		}
		created, err := sqldb.CreateIncome(r.Context(), pool, income)
		if err != nil {
			log.Printf("ERROR: Failed to create income for user %d: %v", userID, err)
			writeMessage(w, http.StatusInternalServerError, "Failed to create income")
			return
		}

		db.DelIncomeCache(incomeCacheKey(userID))
		log.Printf("INFO: Created income id %d for user %d, source %s", created.ID, userID, created.Source)
		writeJSON(w, http.StatusOK, created)
	}
}

func UpdateIncome(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r)

		incomeID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid income id")
			return
		}

		var req models.UpdateIncomeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode update income request body for user %d: %v", userID, err)
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

		updated, err := sqldb.UpdateIncome(r.Context(), pool, userID, incomeID, req.Source, amount, date, req.Notes)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				writeMessage(w, http.StatusNotFound, "Income not found")
				return
			}
			log.Printf("ERROR: Failed to update income id %d for user %d: %v", incomeID, userID, err)
			writeMessage(w, http.StatusInternalServerError, "Failed to update income")
			return
		}

		db.DelIncomeCache(incomeCacheKey(userID))
		log.Printf("INFO: Updated income id %d for user %d", updated.ID, userID)
		writeJSON(w, http.StatusOK, updated)
	}
}

func DeleteIncome(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r)

		incomeID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid income id")
			return
		}

		deleted, err := sqldb.DeleteIncome(r.Context(), pool, userID, incomeID)
		if err != nil {
			log.Printf("ERROR: Failed to delete income id %d for user %d: %v", incomeID, userID, err)
			writeMessage(w, http.StatusInternalServerError, "Failed to delete income")
			return
		}

		db.DelIncomeCache(incomeCacheKey(userID))
		log.Printf("INFO: Deleted income id %d for user %d (%d rows)", incomeID, userID, deleted)
		writeMessage(w, http.StatusOK, "Income deleted")
	}
}

func ExportIncomes(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r)

		incomes, err := sqldb.GetAllIncomesForUser(r.Context(), pool, userID)
		if err != nil {
			log.Printf("ERROR: Failed to export incomes for user %d: %v", userID, err)
			writeMessage(w, http.StatusInternalServerError, "Failed to export income")
			return
		}

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="income.csv"`)
		if err := writeIncomeCSV(w, incomes); err != nil {
			log.Printf("ERROR: Failed to write income CSV for user %d: %v", userID, err)
		}
	}
}

func writeIncomeCSV(w io.Writer, incomes []models.Income) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Source", "Amount", "Date", "Notes"}); err != nil {
		return err
	}
	for _, i := range incomes {
		record := []string{
			i.Source,
			strconv.FormatFloat(i.Amount, 'f', 2, 64),
			i.Date.Format("2006-01-02"),
			i.Notes,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
