package cameriere

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// fakeBackend is an in-memory stand-in for the restaurant API.
type fakeBackend struct {
	t *testing.T

	mu           sync.Mutex
	access       string
	refresh      string
	rotate       bool
	refreshDelay time.Duration
	issued       int

	refreshCalls atomic.Int32
	hits         map[string]int
	authSeen     []string

	orders        []Order
	orderStatuses []OrderStatus
	orderFetches  int
	orderServed   int
	failFetches   int

	lastContentType string
	lastForm        map[string]string
	lastFile        string
	lastJSON        map[string]any
}

func newFakeBackend(t *testing.T) (*fakeBackend, *httptest.Server) {
	t.Helper()
	f := &fakeBackend{t: t, refresh: "refresh-1", hits: map[string]int{}}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, srv
}

func newTestClient(t *testing.T, srv *httptest.Server, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithHTTPClient(srv.Client())}, opts...)
	c, err := New(srv.URL, opts...)
	require.NoError(t, err)
	return c
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.hits[r.Method+" "+r.URL.Path]++
	f.mu.Unlock()

	switch {
	case r.URL.Path == "/admin/auth/login/":
		f.login(w, r)
	case r.URL.Path == refreshPath:
		f.refreshToken(w, r)
	case r.Method == http.MethodGet && r.URL.Path == "/admin/settings/":
		writeJSON(w, http.StatusOK, Settings{PrimaryColor: "#FF5A1F", FontChoice: "Inter"})
	case strings.HasPrefix(r.URL.Path, "/admin/"):
		if !f.authorized(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Given token not valid for any token type"})
			return
		}
		f.admin(w, r)
	case strings.HasPrefix(r.URL.Path, "/api/restaurants/1/orders/7/"):
		f.orderStatus(w)
	case r.URL.Path == "/api/restaurants/1/menu/":
		writeJSON(w, http.StatusOK, testMenu())
	case r.Method == http.MethodPost && r.URL.Path == "/api/restaurants/1/orders/":
		var req PlaceOrderRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		writeJSON(w, http.StatusCreated, Order{ID: 7, Restaurant: 1, TableNumber: req.TableNumber, Status: StatusPending})
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	}
}

func (f *fakeBackend) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Username != "admin" || req.Password != "secret" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "No active account found with the given credentials"})
		return
	}

	f.mu.Lock()
	f.issued++
	f.access = fmt.Sprintf("access-%d", f.issued)
	pair := TokenPair{Access: f.access, Refresh: f.refresh}
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, pair)
}

func (f *fakeBackend) refreshToken(w http.ResponseWriter, r *http.Request) {
	f.refreshCalls.Add(1)
	time.Sleep(f.refreshDelay)

	var req struct {
		Refresh string `json:"refresh"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	f.mu.Lock()
	defer f.mu.Unlock()
	if req.Refresh != f.refresh {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Token is invalid or expired"})
		return
	}

	f.issued++
	f.access = fmt.Sprintf("access-%d", f.issued)
	resp := TokenPair{Access: f.access}
	if f.rotate {
		f.refresh = fmt.Sprintf("refresh-%d", f.issued)
		resp.Refresh = f.refresh
	}
	writeJSON(w, http.StatusOK, resp)
}

func (f *fakeBackend) authorized(r *http.Request) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	auth := r.Header.Get("Authorization")
	f.authSeen = append(f.authSeen, auth)
	return f.access != "" && auth == "Bearer "+f.access
}

func (f *fakeBackend) admin(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.lastContentType = r.Header.Get("Content-Type")
	f.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/admin/orders/":
		f.mu.Lock()
		orders := f.orders
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, orders)
	case r.Method == http.MethodDelete && r.URL.Path == "/admin/orders/":
		writeJSON(w, http.StatusOK, messageResponse{Message: "Cleared 2 orders"})
	case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/admin/orders/"):
		f.recordJSON(r)
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	case r.Method == http.MethodPost && r.URL.Path == "/admin/menu/",
		r.Method == http.MethodPost && r.URL.Path == "/admin/menu/csv-upload/":
		f.recordForm(r)
		writeJSON(w, http.StatusCreated, messageResponse{Message: "Menu item added"})
	case r.Method == http.MethodPatch && strings.HasPrefix(r.URL.Path, "/admin/menu/"):
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
			f.recordForm(r)
		} else {
			f.recordJSON(r)
		}
		writeJSON(w, http.StatusOK, MenuItem{ID: 3, Name: "Espresso", Price: decimal.RequireFromString("200.00")})
	case r.Method == http.MethodPost && r.URL.Path == "/admin/tables/":
		writeJSON(w, http.StatusCreated, Table{ID: 9, Number: 4, QRCode: "/media/qr/table_4.png"})
	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/admin/tables/"):
		w.WriteHeader(http.StatusNoContent)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	}
}

func (f *fakeBackend) orderStatus(w http.ResponseWriter) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.orderFetches++
	if f.failFetches > 0 {
		f.failFetches--
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "database is busy"})
		return
	}

	// failed fetches do not advance the sequence
	status := f.orderStatuses[min(f.orderServed, len(f.orderStatuses)-1)]
	f.orderServed++
	writeJSON(w, http.StatusOK, Order{ID: 7, Restaurant: 1, TableNumber: 4, Status: status})
}

func (f *fakeBackend) recordForm(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lastContentType = r.Header.Get("Content-Type")
	f.lastForm = map[string]string{}
	f.lastFile = ""
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		f.t.Errorf("parse multipart form: %v", err)
		return
	}
	for k, vs := range r.MultipartForm.Value {
		f.lastForm[k] = vs[0]
	}
	for field, files := range r.MultipartForm.File {
		file, err := files[0].Open()
		if err != nil {
			f.t.Errorf("open file part: %v", err)
			return
		}
		data, _ := io.ReadAll(file)
		file.Close()
		f.lastFile = field + ":" + files[0].Filename + ":" + string(data)
	}
}

func (f *fakeBackend) recordJSON(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lastContentType = r.Header.Get("Content-Type")
	f.lastJSON = map[string]any{}
	_ = json.NewDecoder(r.Body).Decode(&f.lastJSON)
}

func (f *fakeBackend) hitCount(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[key]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func testMenu() []Category {
	return []Category{
		{ID: 1, Name: "Coffee", Items: []MenuItem{
			{ID: 1, Name: "Espresso", Description: "Short and strong", Price: decimal.RequireFromString("200.00"), IsVeg: true, IsJain: true},
			{ID: 2, Name: "Cappuccino", Description: "Milk foam", Price: decimal.RequireFromString("250.00"), IsVeg: true, IsChefsSpecial: true},
		}},
		{ID: 2, Name: "Mains", Items: []MenuItem{
			{ID: 3, Name: "Chicken Curry", Description: "Spicy", Price: decimal.RequireFromString("420.50"), IsNonVeg: true},
		}},
	}
}
