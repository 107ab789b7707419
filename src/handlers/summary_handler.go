package handlers

import (
	"log"
	"net/http"

	sqldb "fintrack-server/src/db/sql"

	"github.com/jackc/pgx/v5/pgxpool"
)

func GetSummary(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r)

		summary, err := sqldb.GetSummary(r.Context(), pool, userID)
		if err != nil {
			log.Printf("ERROR: Failed to get summary for user %d: %v", userID, err)
			writeMessage(w, http.StatusInternalServerError, "Failed to get summary")
			return
		}

		writeJSON(w, http.StatusOK, summary)
	}
}
