package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"apexpos/api"
	"apexpos/config"
	"apexpos/credentials"
	"apexpos/engine"
	"apexpos/journal"
	"apexpos/model"
	"apexpos/report"
)

func main() {
	cmd := flag.String("cmd", "", "Command: signup|login|logout|whoami|products|add-product|sell|sales|set-stock|report")
	cfgPath := flag.String("config", "", "Path to YAML config (optional)")
	name := flag.String("name", "", "Name (signup, add-product)")
	email := flag.String("email", "", "Email (signup/login)")
	password := flag.String("password", "", "Password (signup/login)")
	search := flag.String("search", "", "Search term (products)")
	category := flag.String("category", "", "Category filter (products)")
	items := flag.String("items", "", "Sale items as id:qty,id:qty (sell)")
	method := flag.String("method", string(model.PaymentCash), "Payment method (sell)")
	customer := flag.String("customer", "", "Customer id (sell)")
	id := flag.String("id", "", "Product id (set-stock)")
	qty := flag.Int("qty", 0, "Quantity (set-stock, add-product)")
	sku := flag.String("sku", "", "SKU (add-product)")
	price := flag.Float64("price", 0, "Price (add-product)")
	cost := flag.Float64("cost", 0, "Cost (add-product)")
	lowStock := flag.Int("low-stock", 5, "Low stock alert level (add-product)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fail(err)
	}
	creds := credentials.NewFileStore(cfg.CredentialsFile, cfg.Passphrase)
	client := api.New(cfg.ServerURL, creds, api.WithTimeout(cfg.Timeout()))
	ctx := context.Background()

	switch *cmd {
	case "signup":
		u, err := client.Register(ctx, *name, *email, *password)
		if err != nil {
			fail(err)
		}
		fmt.Printf("Signed up as %s <%s> (%s)\n", u.Name, u.Email, u.Role)

	case "login":
		u, err := client.Login(ctx, *email, *password)
		if err != nil {
			fail(err)
		}
		fmt.Printf("Logged in as %s <%s> (%s)\n", u.Name, u.Email, u.Role)

	case "logout":
		if err := client.Logout(); err != nil {
			fail(err)
		}
		fmt.Println("Logged out")

	case "whoami":
		u, ok, err := client.CurrentUser()
		if err != nil {
			fail(err)
		}
		if !ok {
			fmt.Println("Not logged in")
			return
		}
		fmt.Printf("%s <%s> (%s)\n", u.Name, u.Email, u.Role)

	case "products":
		products, err := client.ListProducts(ctx, api.ProductQuery{
			Search:   *search,
			Category: model.Category(*category),
			Limit:    100,
		})
		if err != nil {
			fail(err)
		}
		for _, p := range products {
			fmt.Printf("%-10s %-40s %-12s %8.2f  qty=%d (%s)\n",
				p.ID, p.Name, p.SKU, p.Price, p.Quantity, p.StockStatus())
		}

	case "add-product":
		p, err := client.CreateProduct(ctx, api.NewProduct{
			Name:          *name,
			SKU:           *sku,
			Category:      model.Category(*category),
			Price:         *price,
			Cost:          *cost,
			Quantity:      *qty,
			LowStockAlert: *lowStock,
		})
		if err != nil {
			fail(err)
		}
		fmt.Printf("Created product %s (%s)\n", p.ID, p.Name)

	case "sell":
		if err := runSell(ctx, cfg, creds, client, *items, *method, *customer); err != nil {
			fail(err)
		}

	case "sales":
		sales, err := client.ListSales(ctx)
		if err != nil {
			fail(err)
		}
		for _, t := range sales {
			fmt.Printf("%s  %-12s %8.2f  %s\n", t.Timestamp.Format("2006-01-02 15:04"), t.PaymentMethod, t.Total, t.ID)
		}

	case "set-stock":
		eng, err := loadEngine(ctx, creds, client, nil)
		if err != nil {
			fail(err)
		}
		eng.SetStock(*id, *qty, time.Time{})
		for _, p := range eng.Products() {
			if p.ID == *id {
				fmt.Printf("%s quantity now %d (%s)\n", p.Name, p.Quantity, p.StockStatus())
				return
			}
		}
		fmt.Println("Unknown product id (no change)")

	case "report":
		sales, err := client.ListSales(ctx)
		if err != nil {
			fail(err)
		}
		s := report.Summarize(sales)
		fmt.Printf("Total sales: %.2f over %d orders (avg %.2f)\n", s.TotalSales, s.Orders, s.AvgOrderValue)
		for day, v := range s.SalesByDay {
			fmt.Printf("  %s: %.2f\n", day, v)
		}
		for m, n := range s.ByMethod {
			fmt.Printf("  %s: %d orders\n", m, n)
		}

	default:
		flag.Usage()
		os.Exit(2)
	}
}

// runSell builds a cart from the -items flag, commits it locally (and to
// the journal when configured) and reports the sale to the server.
func runSell(ctx context.Context, cfg config.Config, creds credentials.Store, client *api.Client, items, method, customer string) error {
	var jrnl engine.Journal
	if cfg.JournalDSN != "" {
		j, err := journal.Open(cfg.JournalDSN)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer j.Close()
		jrnl = j
	}

	eng, err := loadEngine(ctx, creds, client, jrnl)
	if err != nil {
		return err
	}

	byID := make(map[string]model.Product)
	for _, p := range eng.Products() {
		byID[p.ID] = p
	}
	if items == "" {
		return errors.New("-items required, e.g. -items 1:2,3:1")
	}
	for _, item := range strings.Split(items, ",") {
		parts := strings.SplitN(item, ":", 2)
		n := 1
		if len(parts) == 2 {
			n, err = strconv.Atoi(parts[1])
			if err != nil || n < 1 {
				return fmt.Errorf("bad quantity in %q", item)
			}
		}
		p, ok := byID[parts[0]]
		if !ok {
			return fmt.Errorf("unknown product id %q", parts[0])
		}
		for i := 0; i < n; i++ {
			eng.AddToCart(p)
		}
	}

	tx, err := eng.Checkout(model.PaymentMethod(method), customer)
	if err != nil {
		return err
	}
	fmt.Printf("Sale %s committed locally: total %.2f (%d lines)\n", tx.ID, tx.Total, len(tx.Lines))

	req := api.SaleRequest{PaymentMethod: tx.PaymentMethod, CustomerID: tx.CustomerID}
	for _, ln := range tx.Lines {
		req.Lines = append(req.Lines, api.SaleLine{
			ProductID: ln.Product.ID,
			Quantity:  ln.Quantity,
			Price:     ln.Product.Price,
		})
	}
	remote, err := client.CreateSale(ctx, req)
	if err != nil {
		return fmt.Errorf("sale committed locally but not reported to server: %w", err)
	}
	fmt.Printf("Reported to server as sale %s\n", remote.ID)
	return nil
}

// loadEngine builds an engine with the current session and a fresh
// catalog snapshot.
func loadEngine(ctx context.Context, creds credentials.Store, client *api.Client, jrnl engine.Journal) (*engine.Engine, error) {
	eng := engine.New(jrnl)
	u, ok, err := creds.ReadUser()
	if err != nil {
		return nil, err
	}
	if ok {
		eng.SetUser(u)
	}
	if err := eng.RefreshCatalog(ctx, client, api.ProductQuery{Limit: 100}); err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	return eng, nil
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	if errors.Is(err, api.ErrSessionExpired) || errors.Is(err, api.ErrNoCredentials) {
		fmt.Fprintln(os.Stderr, "Run with -cmd login to start a new session.")
	}
	os.Exit(1)
}
