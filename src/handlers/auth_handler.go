package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	db "fintrack-server/src/db/sql"
	"fintrack-server/src/models"
	"fintrack-server/src/util"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

func Register(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode register request body: %v", err)
			writeMessage(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		req.Name = strings.TrimSpace(req.Name)
		req.Email = strings.TrimSpace(req.Email)

		if req.Name == "" || req.Email == "" || req.Password == "" {
			writeMessage(w, http.StatusBadRequest, "All fields required")
			return
		}

		if !util.ValidateEmail(req.Email) {
			log.Printf("ERROR: Email validation failed during registration - Email: %s", req.Email)
			writeMessage(w, http.StatusBadRequest, "Invalid email format")
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("ERROR: Failed to hash password for email %s: %v", req.Email, err)
			writeMessage(w, http.StatusInternalServerError, "Internal error")
			return
		}

		userID, err := db.CreateUser(r.Context(), pool, req.Name, req.Email, hashedPassword)
		if err != nil {
			// Handle duplicate key
			if strings.Contains(err.Error(), "duplicate key") {
				log.Printf("ERROR: Registration failed - email already exists - Email: %s", req.Email)
				writeMessage(w, http.StatusBadRequest, "User already exists")
				return
			}
			log.Printf("ERROR: Failed to create user %s: %v", req.Email, err)
			writeMessage(w, http.StatusInternalServerError, "Internal error")
			return
		}

		log.Printf("INFO: Successful registration - Email: %s, ID: %d", req.Email, userID)
		writeMessage(w, http.StatusOK, "User registered successfully")
	}
}

func Login(pool *pgxpool.Pool, secret []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode login request body: %v", err)
			writeMessage(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.Email == "" || req.Password == "" {
			writeMessage(w, http.StatusBadRequest, "All fields required")
			return
		}

		// Unknown email and wrong password produce identical responses.
		user, err := db.GetUserByEmail(r.Context(), pool, req.Email)
		if err != nil {
			log.Printf("ERROR: Failed login attempt - Email: %s from IP %s", req.Email, r.RemoteAddr)
			writeMessage(w, http.StatusBadRequest, "Invalid credentials")
			return
		}

		if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.Password)); err != nil {
			log.Printf("ERROR: Invalid password attempt for email %s from IP %s", req.Email, r.RemoteAddr)
			writeMessage(w, http.StatusBadRequest, "Invalid credentials")
			return
		}

		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"user_id": user.ID,
			"exp":     time.Now().Add(24 * time.Hour).Unix(),
		})

		tokenString, err := token.SignedString(secret)
		if err != nil {
			log.Printf("ERROR: Failed to generate JWT token for user %d: %v", user.ID, err)
			writeMessage(w, http.StatusInternalServerError, "Error generating token")
			return
		}

		log.Printf("INFO: Successful login - Email: %s, ID: %d", user.Email, user.ID)
		writeJSON(w, http.StatusOK, map[string]string{"token": tokenString})
	}
}

func Me(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r)

		user, err := db.GetUserByID(r.Context(), pool, userID)
		if err != nil {
			log.Printf("ERROR: Failed to get profile - user_id: %d: %v", userID, err)
			writeMessage(w, http.StatusNotFound, "User not found")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{
			"name":  user.Name,
			"email": user.Email,
		})
	}
}
