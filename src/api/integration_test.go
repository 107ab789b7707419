package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"fintrack-server/src/config"
	"fintrack-server/src/db"
	"fintrack-server/src/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// These tests need a real database. Set TEST_DATABASE_URL to run them:
//
//	TEST_DATABASE_URL=postgres://localhost/fintrack_test go test ./src/api/
func setupIntegration(t *testing.T) (*httptest.Server, *pgxpool.Pool) {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	pool, err := db.Connect(url)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	_, err = pool.Exec(context.Background(), "TRUNCATE users RESTART IDENTITY CASCADE")
	if err != nil {
		t.Fatalf("Failed to clean test database: %v", err)
	}

	db.InitCache()
	db.ClearAllExpenseCaches()
	db.ClearAllIncomeCaches()

	cfg := config.Config{
		JWTSecret:      "integration-secret",
		AllowedOrigins: []string{"*"},
	}

	ts := httptest.NewServer(NewRouter(pool, cfg))
	t.Cleanup(func() {
		ts.Close()
		pool.Close()
	})
	return ts, pool
}

func doJSON(t *testing.T, ts *httptest.Server, method, path, token string, payload interface{}) (int, map[string]json.RawMessage) {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("Failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	var fields map[string]json.RawMessage
	json.NewDecoder(resp.Body).Decode(&fields)
	return resp.StatusCode, fields
}

func registerAndLogin(t *testing.T, ts *httptest.Server, name, email, password string) string {
	t.Helper()

	status, _ := doJSON(t, ts, "POST", "/api/auth/register", "", map[string]string{
		"name": name, "email": email, "password": password,
	})
	if status != http.StatusOK {
		t.Fatalf("Register for %s failed with status %d", email, status)
	}

	status, fields := doJSON(t, ts, "POST", "/api/auth/login", "", map[string]string{
		"email": email, "password": password,
	})
	if status != http.StatusOK {
		t.Fatalf("Login for %s failed with status %d", email, status)
	}

	var token string
	json.Unmarshal(fields["token"], &token)
	if token == "" {
		t.Fatal("Login returned empty token")
	}
	return token
}

func listExpenses(t *testing.T, ts *httptest.Server, token string) []models.Expense {
	t.Helper()

	req, _ := http.NewRequest("GET", ts.URL+"/api/expenses", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("List request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("List failed with status %d", resp.StatusCode)
	}
	var expenses []models.Expense
	if err := json.NewDecoder(resp.Body).Decode(&expenses); err != nil {
		t.Fatalf("Failed to decode expense list: %v", err)
	}
	return expenses
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ts, _ := setupIntegration(t)

	payload := map[string]string{"name": "Alice", "email": "alice@example.com", "password": "secret123"}

	status, _ := doJSON(t, ts, "POST", "/api/auth/register", "", payload)
	if status != http.StatusOK {
		t.Fatalf("First register failed with status %d", status)
	}

	status, fields := doJSON(t, ts, "POST", "/api/auth/register", "", payload)
	if status != http.StatusBadRequest {
		t.Errorf("Expected status %d for duplicate email, got %d", http.StatusBadRequest, status)
	}
	var msg string
	json.Unmarshal(fields["message"], &msg)
	if msg != "User already exists" {
		t.Errorf("Expected duplicate message, got %q", msg)
	}
}

func TestLoginFailuresAreUniform(t *testing.T) {
	ts, _ := setupIntegration(t)
	registerAndLogin(t, ts, "Alice", "alice@example.com", "secret123")

	wrongPwStatus, wrongPwFields := doJSON(t, ts, "POST", "/api/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "wrong",
	})
	noUserStatus, noUserFields := doJSON(t, ts, "POST", "/api/auth/login", "", map[string]string{
		"email": "nobody@example.com", "password": "whatever",
	})

	if wrongPwStatus != noUserStatus {
		t.Errorf("Expected identical statuses, got %d and %d", wrongPwStatus, noUserStatus)
	}
	var wrongPwMsg, noUserMsg string
	json.Unmarshal(wrongPwFields["message"], &wrongPwMsg)
	json.Unmarshal(noUserFields["message"], &noUserMsg)
	if wrongPwMsg != noUserMsg {
		t.Errorf("Expected identical messages, got %q and %q", wrongPwMsg, noUserMsg)
	}
	if wrongPwMsg != "Invalid credentials" {
		t.Errorf("Expected Invalid credentials, got %q", wrongPwMsg)
	}
}

func TestExpenseEndToEnd(t *testing.T) {
	ts, _ := setupIntegration(t)
	token := registerAndLogin(t, ts, "Alice", "alice@example.com", "secret123")

	// Create with a string amount, the way the web form submits it.
	status, fields := doJSON(t, ts, "POST", "/api/expenses", token, map[string]string{
		"title": "Coffee", "amount": "4.5", "category": "Food",
	})
	if status != http.StatusOK {
		t.Fatalf("Create expense failed with status %d", status)
	}
	var amount float64
	json.Unmarshal(fields["amount"], &amount)
	if amount != 4.5 {
		t.Errorf("Expected amount 4.5, got %v", amount)
	}
	var id int64
	json.Unmarshal(fields["id"], &id)
	if id == 0 {
		t.Error("Expected non-zero id")
	}

	expenses := listExpenses(t, ts, token)
	if len(expenses) != 1 {
		t.Fatalf("Expected 1 expense, got %d", len(expenses))
	}
	if expenses[0].ID != id || expenses[0].Title != "Coffee" {
		t.Errorf("Unexpected record: %+v", expenses[0])
	}

	// Partial update touches only the amount.
	status, fields = doJSON(t, ts, "PUT", fmt.Sprintf("/api/expenses/%d", id), token, map[string]interface{}{
		"amount": 10,
	})
	if status != http.StatusOK {
		t.Fatalf("Update expense failed with status %d", status)
	}
	var title string
	json.Unmarshal(fields["title"], &title)
	json.Unmarshal(fields["amount"], &amount)
	if title != "Coffee" || amount != 10 {
		t.Errorf("Expected Coffee/10 after partial update, got %s/%v", title, amount)
	}

	// Updating a record that does not exist is a 404.
	status, _ = doJSON(t, ts, "PUT", "/api/expenses/99999", token, map[string]interface{}{"amount": 1})
	if status != http.StatusNotFound {
		t.Errorf("Expected status %d for unknown id, got %d", http.StatusNotFound, status)
	}

	// Delete succeeds, and deleting again still reports success.
	for i := 0; i < 2; i++ {
		status, fields = doJSON(t, ts, "DELETE", fmt.Sprintf("/api/expenses/%d", id), token, nil)
		if status != http.StatusOK {
			t.Errorf("Delete attempt %d: expected status %d, got %d", i+1, http.StatusOK, status)
		}
	}

	if remaining := listExpenses(t, ts, token); len(remaining) != 0 {
		t.Errorf("Expected empty list after delete, got %d records", len(remaining))
	}
}

func TestOwnerIsolation(t *testing.T) {
	ts, _ := setupIntegration(t)
	tokenA := registerAndLogin(t, ts, "Alice", "alice@example.com", "secret123")
	tokenB := registerAndLogin(t, ts, "Bob", "bob@example.com", "hunter22")

	// Out-of-order dates to verify newest-first sorting.
	doJSON(t, ts, "POST", "/api/expenses", tokenA, map[string]string{
		"title": "Old", "amount": "10", "category": "Rent", "date": "2025-01-15",
	})
	doJSON(t, ts, "POST", "/api/expenses", tokenA, map[string]string{
		"title": "New", "amount": "20", "category": "Food", "date": "2025-06-15",
	})
	doJSON(t, ts, "POST", "/api/expenses", tokenB, map[string]string{
		"title": "Bobs", "amount": "30", "category": "Travel",
	})

	expensesA := listExpenses(t, ts, tokenA)
	if len(expensesA) != 2 {
		t.Fatalf("Expected 2 expenses for Alice, got %d", len(expensesA))
	}
	if expensesA[0].Title != "New" || expensesA[1].Title != "Old" {
		t.Errorf("Expected newest first, got %s then %s", expensesA[0].Title, expensesA[1].Title)
	}
	for _, e := range expensesA {
		if e.Title == "Bobs" {
			t.Error("Alice's list contains Bob's record")
		}
	}

	// Bob cannot touch Alice's records.
	aliceID := expensesA[0].ID
	status, _ := doJSON(t, ts, "PUT", fmt.Sprintf("/api/expenses/%d", aliceID), tokenB, map[string]interface{}{"amount": 1})
	if status != http.StatusNotFound {
		t.Errorf("Expected status %d for cross-owner update, got %d", http.StatusNotFound, status)
	}

	status, _ = doJSON(t, ts, "DELETE", fmt.Sprintf("/api/expenses/%d", aliceID), tokenB, nil)
	if status != http.StatusOK {
		t.Errorf("Expected idempotent delete status %d, got %d", http.StatusOK, status)
	}
	if expensesA = listExpenses(t, ts, tokenA); len(expensesA) != 2 {
		t.Errorf("Cross-owner delete removed a record: %d left", len(expensesA))
	}
}

func TestIncomeValidationAndProfile(t *testing.T) {
	ts, _ := setupIntegration(t)
	token := registerAndLogin(t, ts, "Alice", "alice@example.com", "secret123")

	status, _ := doJSON(t, ts, "POST", "/api/income", token, map[string]string{"amount": "100"})
	if status != http.StatusBadRequest {
		t.Errorf("Expected status %d for missing source, got %d", http.StatusBadRequest, status)
	}

	status, _ = doJSON(t, ts, "POST", "/api/income", token, map[string]string{
		"source": "Salary", "amount": "3000",
	})
	if status != http.StatusOK {
		t.Fatalf("Create income failed with status %d", status)
	}

	status, fields := doJSON(t, ts, "GET", "/api/auth/me", token, nil)
	if status != http.StatusOK {
		t.Fatalf("Profile lookup failed with status %d", status)
	}
	var name, email string
	json.Unmarshal(fields["name"], &name)
	json.Unmarshal(fields["email"], &email)
	if name != "Alice" || email != "alice@example.com" {
		t.Errorf("Unexpected profile: %s / %s", name, email)
	}
}

func TestSummaryTotals(t *testing.T) {
	ts, _ := setupIntegration(t)
	token := registerAndLogin(t, ts, "Alice", "alice@example.com", "secret123")

	doJSON(t, ts, "POST", "/api/income", token, map[string]string{
		"source": "Salary", "amount": "3000", "date": "2025-03-01",
	})
	doJSON(t, ts, "POST", "/api/expenses", token, map[string]string{
		"title": "Coffee", "amount": "4.5", "category": "Food", "date": "2025-03-14",
	})
	doJSON(t, ts, "POST", "/api/expenses", token, map[string]string{
		"title": "Rent", "amount": "1200", "category": "Rent", "date": "2025-04-01",
	})

	status, fields := doJSON(t, ts, "GET", "/api/summary", token, nil)
	if status != http.StatusOK {
		t.Fatalf("Summary failed with status %d", status)
	}

	var summary models.Summary
	raw, _ := json.Marshal(fields)
	json.Unmarshal(raw, &summary)

	if summary.TotalIncome != 3000 {
		t.Errorf("Expected total income 3000, got %v", summary.TotalIncome)
	}
	if summary.TotalExpense != 1204.5 {
		t.Errorf("Expected total expense 1204.5, got %v", summary.TotalExpense)
	}
	if summary.Balance != 1795.5 {
		t.Errorf("Expected balance 1795.5, got %v", summary.Balance)
	}
	if summary.ExpensesByCategory["Food"] != 4.5 {
		t.Errorf("Expected Food total 4.5, got %v", summary.ExpensesByCategory["Food"])
	}
	if len(summary.Monthly) != 2 {
		t.Fatalf("Expected 2 monthly buckets, got %d", len(summary.Monthly))
	}
	if summary.Monthly[0].Month != "2025-03" || summary.Monthly[1].Month != "2025-04" {
		t.Errorf("Expected ascending months, got %v", summary.Monthly)
	}
	if summary.Monthly[0].Income != 3000 || summary.Monthly[0].Expense != 4.5 {
		t.Errorf("Unexpected 2025-03 bucket: %+v", summary.Monthly[0])
	}
}
