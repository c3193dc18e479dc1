package model

import "time"

// Category of a product as the backend knows it.
type Category string

const (
	CategoryElectronics Category = "Electronics"
	CategoryClothing    Category = "Clothing"
	CategoryGroceries   Category = "Groceries"
	CategoryHome        Category = "Home"
	CategoryBeauty      Category = "Beauty"
)

// PaymentMethod is a label attached to a finished sale. It does not imply
// a cleared payment.
type PaymentMethod string

const (
	PaymentCash      PaymentMethod = "Cash"
	PaymentDebitCard PaymentMethod = "Debit Card"
	PaymentTransfer  PaymentMethod = "Transfer"
)

// Stock status values as used by the catalog listing filter.
const (
	StockStatusIn  = "inStock"
	StockStatusLow = "lowStock"
	StockStatusOut = "outOfStock"
)

// Product is the client's cached view of a catalog entry. The server is
// authoritative for Quantity; the local copy only tracks the terminal's
// own completed actions until the next catalog refresh.
type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Category      Category  `json:"category"`
	Price         float64   `json:"price"`
	Cost          float64   `json:"cost"`
	Quantity      int       `json:"quantity"`
	SKU           string    `json:"sku"`
	LowStockAlert int       `json:"lowStockAlert"`
	LastUpdated   time.Time `json:"lastUpdated"`
}

// StockStatus classifies the product against its low-stock alert level.
func (p Product) StockStatus() string {
	switch {
	case p.Quantity <= 0:
		return StockStatusOut
	case p.Quantity <= p.LowStockAlert:
		return StockStatusLow
	default:
		return StockStatusIn
	}
}

// CartLine is one product entry in the in-progress order. Quantity is
// always >= 1; a line that would drop to zero is removed instead.
type CartLine struct {
	LineID   string  `json:"cartLineId"`
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Totals is the price breakdown of a cart or a committed transaction.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Discount float64 `json:"discount"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// Transaction is a completed sale. Lines is a by-value snapshot of the
// cart at checkout time; a Transaction is never mutated after creation.
type Transaction struct {
	ID            string        `json:"id"`
	Lines         []CartLine    `json:"lines"`
	Subtotal      float64       `json:"subtotal"`
	Discount      float64       `json:"discount"`
	Tax           float64       `json:"tax"`
	Total         float64       `json:"total"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	Timestamp     time.Time     `json:"timestamp"`
	CashierID     string        `json:"cashierId"`
	CustomerID    string        `json:"customerId,omitempty"`
}

// User is the authenticated operator identity.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Customer is a loyalty-program member. TotalSpent, LoyaltyPoints and
// LastVisit accrue when a checkout is attached to the customer.
type Customer struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	LoyaltyPoints int       `json:"loyaltyPoints"`
	TotalSpent    float64   `json:"totalSpent"`
	LastVisit     time.Time `json:"lastVisit"`
}
