package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JeanGrandez/mcfrontend-v1-sub000/internal/credential"
	"github.com/JeanGrandez/mcfrontend-v1-sub000/internal/model"
)

func TestNewClient(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c := NewClient("https://api.example.com", "test-token")

		if c.baseURL != "https://api.example.com" {
			t.Errorf("baseURL = %q, want %q", c.baseURL, "https://api.example.com")
		}
		if c.token != "test-token" {
			t.Errorf("token = %q, want %q", c.token, "test-token")
		}
		if c.httpClient.Timeout != 30*time.Second {
			t.Errorf("Timeout = %v, want %v", c.httpClient.Timeout, 30*time.Second)
		}
		if c.maxRetries != 3 {
			t.Errorf("maxRetries = %d, want %d", c.maxRetries, 3)
		}
	})

	t.Run("with options", func(t *testing.T) {
		c := NewClient("https://api.example.com", "",
			WithTimeout(5*time.Second),
			WithRetries(5, 2*time.Second),
		)
		if c.httpClient.Timeout != 5*time.Second {
			t.Errorf("Timeout = %v, want %v", c.httpClient.Timeout, 5*time.Second)
		}
		if c.maxRetries != 5 {
			t.Errorf("maxRetries = %d, want %d", c.maxRetries, 5)
		}
		if c.retryBackoff != 2*time.Second {
			t.Errorf("retryBackoff = %v, want %v", c.retryBackoff, 2*time.Second)
		}
	})
}

func TestAPIError(t *testing.T) {
	err := &APIError{StatusCode: 404, Message: "Not Found"}
	want := "exchange api error 404: Not Found"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	retryable := []int{500, 502, 503, 429}
	for _, code := range retryable {
		if !(&APIError{StatusCode: code}).IsRetryable() {
			t.Errorf("status %d should be retryable", code)
		}
	}
	fatal := []int{400, 401, 403, 404, 409}
	for _, code := range fatal {
		if (&APIError{StatusCode: code}).IsRetryable() {
			t.Errorf("status %d should not be retryable", code)
		}
	}
}

func TestBearerToken(t *testing.T) {
	t.Run("sends fixed token", func(t *testing.T) {
		var gotAuth string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			json.NewEncoder(w).Encode(model.Profile{Name: "Maria"})
		}))
		defer srv.Close()

		c := NewClient(srv.URL, "fixed-token")
		if _, err := c.GetProfile(context.Background()); err != nil {
			t.Fatalf("GetProfile: %v", err)
		}
		if gotAuth != "Bearer fixed-token" {
			t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer fixed-token")
		}
	})

	t.Run("reads from credential store", func(t *testing.T) {
		var gotAuth atomic.Value
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth.Store(r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode(model.Profile{})
		}))
		defer srv.Close()

		store := credential.NewStore()
		store.Set("first")
		c := NewClient(srv.URL, "", WithCredentials(store))

		if _, err := c.GetProfile(context.Background()); err != nil {
			t.Fatalf("GetProfile: %v", err)
		}
		if got := gotAuth.Load().(string); got != "Bearer first" {
			t.Errorf("Authorization = %q, want %q", got, "Bearer first")
		}

		store.Set("second")
		if _, err := c.GetProfile(context.Background()); err != nil {
			t.Fatalf("GetProfile: %v", err)
		}
		if got := gotAuth.Load().(string); got != "Bearer second" {
			t.Errorf("Authorization = %q, want %q", got, "Bearer second")
		}

		store.Clear()
		if _, err := c.GetProfile(context.Background()); err != nil {
			t.Fatalf("GetProfile: %v", err)
		}
		if got := gotAuth.Load().(string); got != "" {
			t.Errorf("Authorization after clear = %q, want empty", got)
		}
	})
}

func TestLogin(t *testing.T) {
	profileID := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/users/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode login request: %v", err)
		}
		if req.Email != "maria@example.com" {
			t.Errorf("email = %q, want %q", req.Email, "maria@example.com")
		}
		json.NewEncoder(w).Encode(Session{
			Token:   "session-token",
			Profile: model.Profile{ID: profileID, Name: "Maria", Email: req.Email},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	sess, err := c.Login(context.Background(), "maria@example.com")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if sess.Token != "session-token" {
		t.Errorf("token = %q, want %q", sess.Token, "session-token")
	}
	if sess.Profile.ID != profileID {
		t.Errorf("profile ID = %v, want %v", sess.Profile.ID, profileID)
	}
}

func TestGetOrderBook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/market/orders" {
			t.Errorf("path = %q, want /market/orders", r.URL.Path)
		}
		json.NewEncoder(w).Encode(model.OrderBook{
			BestBuyRate:  3.55,
			BestSellRate: 3.57,
			MarketStatus: model.MarketOpen,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	book, err := c.GetOrderBook(context.Background())
	if err != nil {
		t.Fatalf("GetOrderBook: %v", err)
	}
	if book.BestBuyRate != 3.55 || book.BestSellRate != 3.57 {
		t.Errorf("rates = %v/%v, want 3.55/3.57", book.BestBuyRate, book.BestSellRate)
	}
	if book.MarketStatus != model.MarketOpen {
		t.Errorf("market status = %q, want open", book.MarketStatus)
	}
}

func TestGetOperationsLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("limit"); got != "10" {
			t.Errorf("limit = %q, want 10", got)
		}
		json.NewEncoder(w).Encode(operationsResponse{
			Operations: []model.Operation{{Rate: 3.56, Amount: 100}},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	ops, err := c.GetOperations(context.Background(), 10)
	if err != nil {
		t.Fatalf("GetOperations: %v", err)
	}
	if len(ops) != 1 || ops[0].Rate != 3.56 {
		t.Errorf("unexpected operations: %+v", ops)
	}
}

func TestPlaceOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req OrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode order request: %v", err)
		}
		if req.Type != model.OrderTypeBuy || req.Rate != 3.55 || req.Amount != 100 {
			t.Errorf("unexpected order request: %+v", req)
		}
		json.NewEncoder(w).Encode(orderResponse{Order: model.Order{
			ID:     uuid.New(),
			Type:   req.Type,
			Rate:   req.Rate,
			Amount: req.Amount,
			Status: model.OrderStatusPending,
		}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	order, err := c.PlaceOrder(context.Background(), OrderRequest{
		Type: model.OrderTypeBuy, Rate: 3.55, Amount: 100,
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if order.Status != model.OrderStatusPending {
		t.Errorf("status = %q, want pending", order.Status)
	}
}

func TestCancelOrder(t *testing.T) {
	id := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %q, want DELETE", r.Method)
		}
		if r.URL.Path != "/orders/"+id.String() {
			t.Errorf("path = %q, want /orders/%s", r.URL.Path, id)
		}
		json.NewEncoder(w).Encode(orderResponse{Order: model.Order{
			ID: id, Status: model.OrderStatusCancelled,
		}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	order, err := c.CancelOrder(context.Background(), id)
	if err != nil {
		t.Fatalf("CancelOrder: %v", err)
	}
	if order.Status != model.OrderStatusCancelled {
		t.Errorf("status = %q, want cancelled", order.Status)
	}
}

func TestRetryOn5xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(model.Ranking{{Position: 1, Name: "Maria"}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok", WithRetries(3, time.Millisecond))
	ranking, err := c.GetRanking(context.Background())
	if err != nil {
		t.Fatalf("GetRanking: %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
	if len(ranking) != 1 || ranking[0].Name != "Maria" {
		t.Errorf("unexpected ranking: %+v", ranking)
	}
}

func TestNoRetryOn4xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "bad-token", WithRetries(3, time.Millisecond))
	_, err := c.GetProfile(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", apiErr.StatusCode)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1 (no retry on 4xx)", got)
	}
}

func TestSetMarketStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/market/status" {
			t.Errorf("path = %q, want /admin/market/status", r.URL.Path)
		}
		var req MarketStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Status != model.MarketClosed {
			t.Errorf("status = %q, want closed", req.Status)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "admin-tok")
	if err := c.SetMarketStatus(context.Background(), model.MarketClosed); err != nil {
		t.Fatalf("SetMarketStatus: %v", err)
	}
}

func TestExportOperationsCSV(t *testing.T) {
	csv := "id,rate,amount\nabc,3.56,100\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte(csv))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "admin-tok")
	data, err := c.ExportOperationsCSV(context.Background())
	if err != nil {
		t.Fatalf("ExportOperationsCSV: %v", err)
	}
	if string(data) != csv {
		t.Errorf("csv = %q, want %q", data, csv)
	}
}
