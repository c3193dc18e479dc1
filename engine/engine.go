// Package engine owns the terminal's commerce state: the in-progress
// cart, the cached product snapshot, and the append-only transaction
// ledger. Mutations are serialized; a checkout either fully commits or
// leaves every piece of state untouched.
package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"apexpos/model"
)

var (
	// ErrNotAuthenticated rejects protected operations with no session.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrEmptyCart rejects checkout with zero lines.
	ErrEmptyCart = errors.New("cart is empty")
)

// Journal receives committed transactions for durable storage. A failed
// Append aborts the checkout before any engine state changes.
type Journal interface {
	Append(tx model.Transaction) error
	Clear() error
}

// Engine is the transaction engine. The zero value is not usable; call
// New.
type Engine struct {
	mu        sync.Mutex
	cart      []model.CartLine
	products  []model.Product
	ledger    []model.Transaction
	customers []model.Customer
	user      *model.User
	journal   Journal

	catalogGen uint64

	now   func() time.Time
	newID func() string
}

// New returns an empty engine. journal may be nil, in which case the
// ledger lives in memory only.
func New(journal Journal) *Engine {
	return &Engine{
		journal: journal,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// SetUser installs the active session identity.
func (e *Engine) SetUser(u model.User) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.user = &u
}

// ClearUser ends the session. Cart, products and ledger are untouched.
func (e *Engine) ClearUser() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.user = nil
}

// CurrentUser reports the active session identity, if any.
func (e *Engine) CurrentUser() (model.User, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.user == nil {
		return model.User{}, false
	}
	return *e.user, true
}

// AddToCart puts one unit of product in the cart. If a line for the
// product already exists its quantity grows by one; the cart never holds
// two lines for the same product id. Stock is not checked here; it is
// enforced at checkout, and advisorily by the display layer.
func (e *Engine) AddToCart(product model.Product) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.cart {
		if e.cart[i].Product.ID == product.ID {
			e.cart[i].Quantity++
			return
		}
	}
	e.cart = append(e.cart, model.CartLine{
		LineID:   e.newID(),
		Product:  product,
		Quantity: 1,
	})
}

// UpdateQuantity adds delta to a line's quantity, removing the line when
// the result drops to zero or below. Unknown line ids are ignored.
func (e *Engine) UpdateQuantity(lineID string, delta int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.cart {
		if e.cart[i].LineID != lineID {
			continue
		}
		e.cart[i].Quantity += delta
		if e.cart[i].Quantity <= 0 {
			e.cart = append(e.cart[:i], e.cart[i+1:]...)
		}
		return
	}
}

// RemoveFromCart drops a line unconditionally.
func (e *Engine) RemoveFromCart(lineID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.cart {
		if e.cart[i].LineID == lineID {
			e.cart = append(e.cart[:i], e.cart[i+1:]...)
			return
		}
	}
}

// ClearCart empties the cart. Products and ledger are untouched.
func (e *Engine) ClearCart() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cart = nil
}

// CartQuantity reports how many units of a product the cart holds.
// The display layer uses it to cap add buttons at known stock.
func (e *Engine) CartQuantity(productID string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, ln := range e.cart {
		if ln.Product.ID == productID {
			return ln.Quantity
		}
	}
	return 0
}

// Cart returns a copy of the cart lines in insertion order.
func (e *Engine) Cart() []model.CartLine {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]model.CartLine, len(e.cart))
	copy(out, e.cart)
	return out
}

// ComputeTotals prices a set of lines. Deterministic and independent of
// line order. Tax and discount are zero under the current policy.
func ComputeTotals(lines []model.CartLine) model.Totals {
	var subtotal float64
	for _, ln := range lines {
		subtotal += ln.Product.Price * float64(ln.Quantity)
	}
	return model.Totals{
		Subtotal: subtotal,
		Discount: 0,
		Tax:      0,
		Total:    subtotal,
	}
}

// Checkout finalizes the cart into a Transaction: totals are computed,
// the lines are snapshotted by value, local stock is decremented, the
// transaction is prepended to the ledger and the cart cleared, all
// under one critical section, so no partial commit is ever observable.
// A registered customer attached via customerID accrues TotalSpent,
// LoyaltyPoints (one point per whole currency unit) and LastVisit in
// the same commit; an unknown customerID leaves the registry alone.
// With a journal attached, the append happens first and a journal error
// aborts the checkout with all state intact.
func (e *Engine) Checkout(method model.PaymentMethod, customerID string) (model.Transaction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.user == nil {
		return model.Transaction{}, ErrNotAuthenticated
	}
	if len(e.cart) == 0 {
		return model.Transaction{}, ErrEmptyCart
	}

	totals := ComputeTotals(e.cart)
	lines := make([]model.CartLine, len(e.cart))
	copy(lines, e.cart)
	now := e.now()

	tx := model.Transaction{
		ID:            e.newID(),
		Lines:         lines,
		Subtotal:      totals.Subtotal,
		Discount:      totals.Discount,
		Tax:           totals.Tax,
		Total:         totals.Total,
		PaymentMethod: method,
		Timestamp:     now,
		CashierID:     e.user.ID,
		CustomerID:    customerID,
	}

	if e.journal != nil {
		if err := e.journal.Append(tx); err != nil {
			return model.Transaction{}, fmt.Errorf("journal append: %w", err)
		}
	}

	for _, ln := range lines {
		for i := range e.products {
			if e.products[i].ID == ln.Product.ID {
				e.products[i].Quantity -= ln.Quantity
				e.products[i].LastUpdated = now
				break
			}
		}
	}
	if customerID != "" {
		for i := range e.customers {
			if e.customers[i].ID == customerID {
				e.customers[i].TotalSpent += tx.Total
				e.customers[i].LoyaltyPoints += int(tx.Total)
				e.customers[i].LastVisit = now
				break
			}
		}
	}
	e.ledger = append([]model.Transaction{tx}, e.ledger...)
	e.cart = nil
	return tx, nil
}

// SetStock sets a product's quantity to an absolute value and stamps
// LastUpdated with ts, or the current time when ts is zero. Unknown
// product ids are a silent no-op: callers validate existence against the
// catalog view, not here.
func (e *Engine) SetStock(productID string, quantity int, ts time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if ts.IsZero() {
		ts = e.now()
	}
	for i := range e.products {
		if e.products[i].ID == productID {
			e.products[i].Quantity = quantity
			e.products[i].LastUpdated = ts
			return
		}
	}
}

// AddProduct appends a product to the local snapshot, assigning an id
// and stamping LastUpdated when missing.
func (e *Engine) AddProduct(p model.Product) model.Product {
	e.mu.Lock()
	defer e.mu.Unlock()
	if p.ID == "" {
		p.ID = e.newID()
	}
	if p.LastUpdated.IsZero() {
		p.LastUpdated = e.now()
	}
	e.products = append(e.products, p)
	return p
}

// AddCustomer registers a loyalty-program member, assigning an id when
// missing.
func (e *Engine) AddCustomer(c model.Customer) model.Customer {
	e.mu.Lock()
	defer e.mu.Unlock()
	if c.ID == "" {
		c.ID = e.newID()
	}
	e.customers = append(e.customers, c)
	return c
}

// Customers returns a copy of the registry in insertion order.
func (e *Engine) Customers() []model.Customer {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]model.Customer, len(e.customers))
	copy(out, e.customers)
	return out
}

// ReplaceProducts swaps in a new catalog snapshot wholesale.
func (e *Engine) ReplaceProducts(products []model.Product) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.products = append([]model.Product(nil), products...)
}

// Products returns a copy of the local catalog snapshot.
func (e *Engine) Products() []model.Product {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]model.Product, len(e.products))
	copy(out, e.products)
	return out
}

// Transactions returns a copy of the ledger, most recent first.
func (e *Engine) Transactions() []model.Transaction {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]model.Transaction, len(e.ledger))
	copy(out, e.ledger)
	return out
}

// ClearLedger drops the transaction history, including the journal's.
// Irreversible.
func (e *Engine) ClearLedger() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.journal != nil {
		if err := e.journal.Clear(); err != nil {
			return fmt.Errorf("journal clear: %w", err)
		}
	}
	e.ledger = nil
	return nil
}
