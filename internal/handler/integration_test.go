//go:build integration

package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/currymessina/api/internal/config"
	"github.com/currymessina/api/internal/database"
	"github.com/currymessina/api/internal/payment"
	"github.com/currymessina/api/internal/router"
	"github.com/currymessina/api/internal/service"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"
)

// approvingGateway accepts every capture and remembers the amount.
type approvingGateway struct {
	lastAmount int64
}

func (g *approvingGateway) Capture(ctx context.Context, amountMinor int64, currency, methodRef string) (*payment.Confirmation, error) {
	g.lastAmount = amountMinor
	return &payment.Confirmation{ID: "pi_integration", Status: "succeeded", AmountMinor: amountMinor, Currency: currency}, nil
}

// TestIntegrationFlow runs checkout and the kitchen workflow against a real
// PostgreSQL database, with every handler wired through the router.
func TestIntegrationFlow(t *testing.T) {
	ctx := context.Background()

	connStr, cleanup := setupPostgresContainer(t, ctx)
	defer cleanup()

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("create pool: %v", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &config.Config{
		Env:            "test",
		Port:           "8081",
		DatabaseURL:    connStr,
		JWTSecret:      "integration-test-secret",
		PaymentTimeout: 5 * time.Second,
	}
	gateway := &approvingGateway{}
	server := httptest.NewServer(router.New(cfg, database.New(pool), pool, gateway, nil))
	defer server.Close()

	seedCatalog(t, ctx, pool)
	createAdmin(t, ctx, pool, "kitchen", "password123")

	// --- 1. Cash checkout is priced from the catalog ---
	status, env := httpJSON(t, server, http.MethodPost, "/orders", checkoutPayload("", "0.01"), "")
	if status != http.StatusCreated {
		t.Fatalf("checkout: got %d, want 201 (%s)", status, env.Message)
	}
	created := env.Data.(map[string]interface{})
	if created["total"] != "30.75" {
		t.Fatalf("checkout total: got %v, want 30.75", created["total"])
	}
	cashID := int64(created["order_id"].(float64))

	var storedTotal string
	if err := pool.QueryRow(ctx, `SELECT total_amount::text FROM orders WHERE id = $1`, cashID).Scan(&storedTotal); err != nil {
		t.Fatalf("read stored total: %v", err)
	}
	if storedTotal != "30.75" {
		t.Errorf("stored total: got %s, want 30.75 (client price must be ignored)", storedTotal)
	}
	if n := countRows(t, ctx, pool, `SELECT count(*) FROM order_items WHERE order_id = $1`, cashID); n != 2 {
		t.Errorf("stored items: got %d, want 2", n)
	}

	// --- 2. Online checkout captures the server total in cents ---
	status, env = httpJSON(t, server, http.MethodPost, "/orders", checkoutPayload("pm_card_visa", "999"), "")
	if status != http.StatusCreated {
		t.Fatalf("paid checkout: got %d, want 201 (%s)", status, env.Message)
	}
	if gateway.lastAmount != 3075 {
		t.Errorf("captured amount: got %d, want 3075", gateway.lastAmount)
	}
	paidID := int64(env.Data.(map[string]interface{})["order_id"].(float64))

	// --- 3. An unknown item rejects the cart and writes nothing ---
	before := countRows(t, ctx, pool, `SELECT count(*) FROM orders`)
	bad := map[string]interface{}{
		"name": "Ana", "phone": "555",
		"cart": []map[string]interface{}{{"name": "Pizza", "category": "pizza", "qty": 1}},
	}
	status, env = httpJSON(t, server, http.MethodPost, "/orders", bad, "")
	if status != http.StatusBadRequest {
		t.Fatalf("invalid item: got %d, want 400", status)
	}
	if after := countRows(t, ctx, pool, `SELECT count(*) FROM orders`); after != before {
		t.Errorf("orders after rejected checkout: got %d, want %d", after, before)
	}

	// --- 4. Kitchen endpoints need a token ---
	status, _ = httpJSON(t, server, http.MethodGet, "/orders", nil, "")
	if status != http.StatusUnauthorized {
		t.Errorf("list without token: got %d, want 401", status)
	}
	token := login(t, server, "kitchen", "password123")

	// --- 5. Recent orders, newest first, with items and ms timestamps ---
	status, env = httpJSON(t, server, http.MethodGet, "/orders?limit=10", nil, token)
	if status != http.StatusOK {
		t.Fatalf("list: got %d (%s)", status, env.Message)
	}
	orders := env.Data.([]interface{})
	if len(orders) != 2 {
		t.Fatalf("list: got %d orders, want 2", len(orders))
	}
	newest := orders[0].(map[string]interface{})
	if int64(newest["id"].(float64)) != paidID {
		t.Errorf("newest order: got %v, want %d", newest["id"], paidID)
	}
	if newest["paid_online"] != true {
		t.Error("newest order: expected paid_online")
	}
	if ms, ok := newest["created_ts_ms"].(float64); !ok || ms <= 0 {
		t.Errorf("created_ts_ms: got %v", newest["created_ts_ms"])
	}
	if items := newest["items"].([]interface{}); len(items) != 2 {
		t.Errorf("newest items: got %d, want 2", len(items))
	}

	// --- 6. Status workflow ---
	path := fmt.Sprintf("/orders/%d/status", cashID)
	status, env = httpJSON(t, server, http.MethodPatch, path, map[string]interface{}{"status": "preparing"}, token)
	if status != http.StatusOK {
		t.Fatalf("update status: got %d (%s)", status, env.Message)
	}
	if next := env.Data.(map[string]interface{})["next_status"]; next != "ready" {
		t.Errorf("next_status: got %v, want ready", next)
	}

	status, _ = httpJSON(t, server, http.MethodPatch, path, map[string]interface{}{"status": "preparing"}, token)
	if status != http.StatusOK {
		t.Errorf("repeated update: got %d, want 200", status)
	}

	status, _ = httpJSON(t, server, http.MethodPatch, path, map[string]interface{}{"status": "archived"}, token)
	if status != http.StatusBadRequest {
		t.Errorf("invalid status: got %d, want 400", status)
	}

	status, _ = httpJSON(t, server, http.MethodPatch, "/orders/999999/status", map[string]interface{}{"status": "ready"}, token)
	if status != http.StatusNotFound {
		t.Errorf("missing order: got %d, want 404", status)
	}

	var dbStatus string
	if err := pool.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1`, cashID).Scan(&dbStatus); err != nil {
		t.Fatalf("read status: %v", err)
	}
	if dbStatus != "preparing" {
		t.Errorf("stored status: got %s, want preparing", dbStatus)
	}

	// --- 7. Cancelled orders leave the board unless asked for ---
	status, _ = httpJSON(t, server, http.MethodPatch, fmt.Sprintf("/orders/%d/status", paidID), map[string]interface{}{"status": "cancelled"}, token)
	if status != http.StatusOK {
		t.Fatalf("cancel: got %d", status)
	}

	status, env = httpJSON(t, server, http.MethodGet, "/orders/board", nil, token)
	if status != http.StatusOK {
		t.Fatalf("board: got %d (%s)", status, env.Message)
	}
	board := env.Data.(map[string]interface{})
	if board["total"].(float64) != 1 {
		t.Errorf("board total: got %v, want 1", board["total"])
	}
	if lanes := board["lanes"].([]interface{}); len(lanes) != 4 {
		t.Errorf("board lanes: got %d, want 4", len(lanes))
	}

	status, env = httpJSON(t, server, http.MethodGet, "/orders/board?cancelled=lane", nil, token)
	if status != http.StatusOK {
		t.Fatalf("board with cancelled lane: got %d", status)
	}
	board = env.Data.(map[string]interface{})
	if lanes := board["lanes"].([]interface{}); len(lanes) != 5 {
		t.Errorf("board lanes: got %d, want 5", len(lanes))
	}

	// --- 8. A failed item write leaves no trace of the order ---
	newStore := func(db database.DBTX) service.OrderStore {
		return &failingItemStore{Queries: database.New(db), failOn: 2}
	}
	queries := database.New(pool)
	svc := service.NewOrderService(pool, newStore, queries, service.NewPricer(queries, false), payment.Disabled{}, nil)
	_, err = svc.Checkout(ctx, service.CheckoutRequest{
		Customer:  service.Customer{Name: "Half Written", Phone: "777"},
		OrderType: "pickup",
		Cart: []service.CartItem{
			{Name: "Chicken Biryani", Category: "biryani", Qty: 1},
			{Name: "Lamb Curry", Category: "curry", Qty: 1},
		},
	})
	var persistErr *service.PersistenceError
	if !errors.As(err, &persistErr) {
		t.Fatalf("expected PersistenceError, got: %v", err)
	}

	if n := countRows(t, ctx, pool, `SELECT count(*) FROM orders WHERE customer_name = $1`, "Half Written"); n != 0 {
		t.Errorf("orders for failed checkout: got %d, want 0", n)
	}
	status, env = httpJSON(t, server, http.MethodGet, "/orders?cancelled=include", nil, token)
	if status != http.StatusOK {
		t.Fatalf("list after failed checkout: got %d", status)
	}
	for _, o := range env.Data.([]interface{}) {
		if o.(map[string]interface{})["customer_name"] == "Half Written" {
			t.Errorf("failed checkout visible in list: %v", o)
		}
	}
}

// failingItemStore writes through to Postgres but fails the Nth line item.
type failingItemStore struct {
	*database.Queries
	failOn int
	items  int
}

func (s *failingItemStore) CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error) {
	s.items++
	if s.items == s.failOn {
		return database.OrderItem{}, errors.New("simulated write failure")
	}
	return s.Queries.CreateOrderItem(ctx, arg)
}

// =====================
// Setup helpers
// =====================

func setupPostgresContainer(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("ordering_test"),
		tcpostgres.WithUsername("ordering"),
		tcpostgres.WithPassword("ordering"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("get connection string: %v", err)
	}

	cleanup := func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	}
	return connStr, cleanup
}

func seedCatalog(t *testing.T, ctx context.Context, pool *pgxpool.Pool) {
	t.Helper()
	_, err := pool.Exec(ctx, `
		INSERT INTO menu_items (name, category, base_price) VALUES
			('Chicken Biryani', 'biryani', 9.50),
			('Lamb Curry', 'curry', 11.00);
		INSERT INTO sizes (name, price, sort_order) VALUES ('Regular', 6.00, 0), ('Large', 8.00, 1);
		INSERT INTO ingredients (name, price) VALUES ('Lettuce', 0), ('Cheese', 1.00);
		INSERT INTO sauces (name, price) VALUES ('Garlic', 0.50), ('Chili', 0.75);
		INSERT INTO sauces (name, price, is_active) VALUES ('Retired', 3.00, false);`)
	if err != nil {
		t.Fatalf("seed catalog: %v", err)
	}
}

func createAdmin(t *testing.T, ctx context.Context, pool *pgxpool.Pool, username, password string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	_, err = database.New(pool).CreateAdmin(ctx, database.CreateAdminParams{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: string(hash),
	})
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
}

// checkoutPayload is a 30.75 cart: two biryanis plus a Large kebab with
// Cheese and Chili, plus the 2.00 service fee. Client prices are wrong.
func checkoutPayload(paymentMethodID, clientPrice string) map[string]interface{} {
	return map[string]interface{}{
		"name":              "Ana",
		"phone":             "555",
		"order_type":        "pickup",
		"payment_method_id": paymentMethodID,
		"cart": []map[string]interface{}{
			{"name": "Chicken Biryani", "category": "biryani", "qty": 2, "price": clientPrice},
			{"name": "Custom Kebab", "category": "kebab", "qty": 1, "price": clientPrice,
				"size": "Large", "ingredients": []string{"Cheese"}, "sauces": []string{"Chili"}},
		},
	}
}

func countRows(t *testing.T, ctx context.Context, pool *pgxpool.Pool, query string, args ...interface{}) int {
	t.Helper()
	var n int
	if err := pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	return n
}

// =====================
// HTTP helpers
// =====================

type integrationEnvelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func login(t *testing.T, server *httptest.Server, username, password string) string {
	t.Helper()
	body := map[string]interface{}{
		"username": username,
		"password": password,
	}
	status, env := httpJSON(t, server, http.MethodPost, "/auth/login", body, "")
	if status != http.StatusOK {
		t.Fatalf("login: got %d (%s)", status, env.Message)
	}
	data, _ := env.Data.(map[string]interface{})
	token, ok := data["access_token"].(string)
	if !ok || token == "" {
		t.Fatalf("login failed: no access_token in response: %+v", env)
	}
	return token
}

func httpJSON(t *testing.T, server *httptest.Server, method, path string, body map[string]interface{}, token string) (int, integrationEnvelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, server.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env integrationEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("%s %s: decode response: %v", method, path, err)
	}
	return resp.StatusCode, env
}
