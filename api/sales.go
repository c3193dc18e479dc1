package api

import (
	"context"
	"encoding/json"
	"net/http"

	"apexpos/model"
)

// SaleLine is one product position in a sale submission.
type SaleLine struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// SaleRequest is the payload for POST /sales.
type SaleRequest struct {
	Lines         []SaleLine          `json:"lines"`
	PaymentMethod model.PaymentMethod `json:"paymentMethod"`
	CustomerID    string              `json:"customerId,omitempty"`
}

// CreateSale records a finished sale with the server.
func (c *Client) CreateSale(ctx context.Context, req SaleRequest) (model.Transaction, error) {
	if len(req.Lines) == 0 {
		return model.Transaction{}, &ValidationError{Field: "lines", Reason: "required"}
	}
	data, err := c.Do(ctx, http.MethodPost, "/sales", req)
	if err != nil {
		return model.Transaction{}, err
	}
	var env struct {
		Data model.Transaction `json:"data"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return model.Transaction{}, &NetworkError{Op: "decode POST /sales", Err: err}
	}
	return env.Data, nil
}

// ListSales fetches the server-side sale history.
func (c *Client) ListSales(ctx context.Context) ([]model.Transaction, error) {
	data, err := c.Do(ctx, http.MethodGet, "/sales", nil)
	if err != nil {
		return nil, err
	}
	var env struct {
		Data struct {
			Sales []model.Transaction `json:"sales"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &NetworkError{Op: "decode GET /sales", Err: err}
	}
	return env.Data.Sales, nil
}
