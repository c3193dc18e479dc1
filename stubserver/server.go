// Package stubserver is an in-process stand-in for the remote POS
// service. It implements the real wire contract (bearer auth, token
// refresh, the data/message envelope) over in-memory state, for
// integration tests and local development.
package stubserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"apexpos/model"
)

type account struct {
	user     model.User
	password string
}

// Server holds the stub's state. All fields are guarded by mu.
type Server struct {
	mu       sync.Mutex
	accounts map[string]*account // email -> account
	access   map[string]string   // access token -> user id
	refresh  map[string]string   // refresh token -> user id
	products []model.Product
	sales    []model.Transaction

	refreshCalls int
}

// New returns an empty stub. Seed products with Seed or SeedDefault.
func New() *Server {
	return &Server{
		accounts: make(map[string]*account),
		access:   make(map[string]string),
		refresh:  make(map[string]string),
	}
}

// Router builds the endpoint table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/auth/register", s.handleRegister).Methods("POST")
	r.HandleFunc("/auth/login", s.handleLogin).Methods("POST")
	r.HandleFunc("/auth/refresh", s.handleRefresh).Methods("POST")
	r.HandleFunc("/products", s.requireAuth(s.handleListProducts)).Methods("GET")
	r.HandleFunc("/products", s.requireAuth(s.handleCreateProduct)).Methods("POST")
	r.HandleFunc("/sales", s.requireAuth(s.handleListSales)).Methods("GET")
	r.HandleFunc("/sales", s.requireAuth(s.handleCreateSale)).Methods("POST")
	return r
}

// Seed replaces the catalog.
func (s *Server) Seed(products []model.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = append([]model.Product(nil), products...)
}

// InvalidateAccessTokens revokes every issued access token, forcing the
// next authenticated call into the refresh path. Refresh tokens stay
// valid.
func (s *Server) InvalidateAccessTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = make(map[string]string)
}

// RevokeRefreshTokens invalidates every refresh token, making the next
// refresh attempt fail.
func (s *Server) RevokeRefreshTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh = make(map[string]string)
}

// RefreshCalls reports how many times /auth/refresh was hit.
func (s *Server) RefreshCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshCalls
}

// --- helpers ---

func writeData(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{"data": v})
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

func (s *Server) requireAuth(next func(w http.ResponseWriter, r *http.Request, userID string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		s.mu.Lock()
		userID, ok := s.access[token]
		s.mu.Unlock()
		if token == "" || !ok {
			writeErr(w, http.StatusUnauthorized, "invalid or expired access token")
			return
		}
		next(w, r, userID)
	}
}

// issueTokens mints a fresh access/refresh pair for a user.
// Caller holds mu.
func (s *Server) issueTokens(userID string) (access, refresh string) {
	access = "acc-" + uuid.NewString()
	refresh = "ref-" + uuid.NewString()
	s.access[access] = userID
	s.refresh[refresh] = userID
	return access, refresh
}

type authPayload struct {
	User         model.User `json:"user"`
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken"`
}

// --- auth ---

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeErr(w, http.StatusBadRequest, "name, email and password are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[req.Email]; exists {
		writeErr(w, http.StatusConflict, "email already registered")
		return
	}
	u := model.User{ID: uuid.NewString(), Name: req.Name, Email: req.Email, Role: "cashier"}
	s.accounts[req.Email] = &account{user: u, password: req.Password}
	access, refresh := s.issueTokens(u.ID)
	writeData(w, http.StatusCreated, authPayload{User: u, AccessToken: access, RefreshToken: refresh})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[req.Email]
	if !ok || acc.password != req.Password {
		writeErr(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	access, refresh := s.issueTokens(acc.user.ID)
	writeData(w, http.StatusOK, authPayload{User: acc.user, AccessToken: access, RefreshToken: refresh})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshCalls++
	userID, ok := s.refresh[req.RefreshToken]
	if !ok {
		writeErr(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}
	access := "acc-" + uuid.NewString()
	s.access[access] = userID
	writeData(w, http.StatusOK, map[string]string{"accessToken": access})
}

// --- catalog ---

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request, _ string) {
	q := r.URL.Query()
	search := strings.ToLower(q.Get("search"))
	category := q.Get("category")
	stockStatus := q.Get("stockStatus")
	limit, _ := strconv.Atoi(q.Get("limit"))
	page, _ := strconv.Atoi(q.Get("page"))

	s.mu.Lock()
	defer s.mu.Unlock()

	out := []model.Product{}
	for _, p := range s.products {
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.SKU), search) {
			continue
		}
		if category != "" && string(p.Category) != category {
			continue
		}
		if stockStatus != "" && p.StockStatus() != stockStatus {
			continue
		}
		out = append(out, p)
	}
	if limit > 0 {
		if page < 1 {
			page = 1
		}
		start := (page - 1) * limit
		if start >= len(out) {
			out = []model.Product{}
		} else {
			end := start + limit
			if end > len(out) {
				end = len(out)
			}
			out = out[start:end]
		}
	}
	writeData(w, http.StatusOK, map[string]any{"products": out})
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request, _ string) {
	var req struct {
		Name          string         `json:"name"`
		SKU           string         `json:"sku"`
		Category      model.Category `json:"category"`
		Price         float64        `json:"price"`
		Cost          float64        `json:"cost"`
		Quantity      int            `json:"quantity"`
		LowStockAlert int            `json:"lowStockAlert"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Name == "" || req.SKU == "" {
		writeErr(w, http.StatusBadRequest, "name and sku are required")
		return
	}
	if req.Price < 0 || req.Quantity < 0 {
		writeErr(w, http.StatusBadRequest, "price and quantity must be >= 0")
		return
	}

	p := model.Product{
		ID:            uuid.NewString(),
		Name:          req.Name,
		SKU:           req.SKU,
		Category:      req.Category,
		Price:         req.Price,
		Cost:          req.Cost,
		Quantity:      req.Quantity,
		LowStockAlert: req.LowStockAlert,
		LastUpdated:   time.Now().UTC(),
	}
	s.mu.Lock()
	s.products = append(s.products, p)
	s.mu.Unlock()
	writeData(w, http.StatusCreated, p)
}

// --- sales ---

func (s *Server) handleCreateSale(w http.ResponseWriter, r *http.Request, userID string) {
	var req struct {
		Lines []struct {
			ProductID string  `json:"productId"`
			Quantity  int     `json:"quantity"`
			Price     float64 `json:"price"`
		} `json:"lines"`
		PaymentMethod model.PaymentMethod `json:"paymentMethod"`
		CustomerID    string              `json:"customerId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if len(req.Lines) == 0 {
		writeErr(w, http.StatusBadRequest, "lines are required")
		return
	}
	// reject the whole sale before touching any stock
	for _, ln := range req.Lines {
		if ln.Quantity <= 0 {
			writeErr(w, http.StatusBadRequest, "line quantity must be > 0")
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := model.Transaction{
		ID:            uuid.NewString(),
		PaymentMethod: req.PaymentMethod,
		Timestamp:     time.Now().UTC(),
		CashierID:     userID,
		CustomerID:    req.CustomerID,
	}
	for _, ln := range req.Lines {
		tx.Lines = append(tx.Lines, model.CartLine{
			LineID:   uuid.NewString(),
			Product:  model.Product{ID: ln.ProductID, Price: ln.Price},
			Quantity: ln.Quantity,
		})
		tx.Subtotal += ln.Price * float64(ln.Quantity)
		// decrement server stock for known products
		for i := range s.products {
			if s.products[i].ID == ln.ProductID {
				s.products[i].Quantity -= ln.Quantity
				s.products[i].LastUpdated = tx.Timestamp
				break
			}
		}
	}
	tx.Total = tx.Subtotal
	s.sales = append([]model.Transaction{tx}, s.sales...)
	writeData(w, http.StatusCreated, tx)
}

func (s *Server) handleListSales(w http.ResponseWriter, r *http.Request, _ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeData(w, http.StatusOK, map[string]any{"sales": s.sales})
}
