package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"apexpos/model"
)

// ProductQuery narrows a catalog listing. Zero values are omitted from
// the request.
type ProductQuery struct {
	Page        int
	Limit       int
	Category    model.Category
	Search      string
	IsActive    *bool
	StockStatus string
}

func (q ProductQuery) encode() string {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Category != "" {
		v.Set("category", string(q.Category))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.IsActive != nil {
		v.Set("isActive", strconv.FormatBool(*q.IsActive))
	}
	if q.StockStatus != "" {
		v.Set("stockStatus", q.StockStatus)
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

// NewProduct is the payload for creating a catalog entry.
type NewProduct struct {
	Name          string         `json:"name"`
	SKU           string         `json:"sku"`
	Category      model.Category `json:"category"`
	Price         float64        `json:"price"`
	Cost          float64        `json:"cost"`
	Quantity      int            `json:"quantity"`
	LowStockAlert int            `json:"lowStockAlert"`
}

// ListProducts fetches a page of the catalog.
func (c *Client) ListProducts(ctx context.Context, q ProductQuery) ([]model.Product, error) {
	data, err := c.Do(ctx, http.MethodGet, "/products"+q.encode(), nil)
	if err != nil {
		return nil, err
	}
	var env struct {
		Data struct {
			Products []model.Product `json:"products"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &NetworkError{Op: "decode GET /products", Err: err}
	}
	return env.Data.Products, nil
}

// CreateProduct adds a catalog entry and returns the server's view of it.
func (c *Client) CreateProduct(ctx context.Context, p NewProduct) (model.Product, error) {
	if err := p.validate(); err != nil {
		return model.Product{}, err
	}
	data, err := c.Do(ctx, http.MethodPost, "/products", p)
	if err != nil {
		return model.Product{}, err
	}
	var env struct {
		Data model.Product `json:"data"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return model.Product{}, &NetworkError{Op: "decode POST /products", Err: err}
	}
	return env.Data, nil
}
