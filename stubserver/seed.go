package stubserver

import (
	"time"

	"apexpos/model"
)

// SeedDefault loads a small demo catalog.
func (s *Server) SeedDefault() {
	now := time.Now().UTC()
	s.Seed([]model.Product{
		{ID: "1", Name: "Premium Cotton T-Shirt", Category: model.CategoryClothing, Price: 25.00, Cost: 8.00, Quantity: 120, SKU: "TSH-001", LowStockAlert: 20, LastUpdated: now},
		{ID: "2", Name: "Wireless Noise Cancelling Headphones", Category: model.CategoryElectronics, Price: 299.99, Cost: 150.00, Quantity: 15, SKU: "AUD-005", LowStockAlert: 5, LastUpdated: now},
		{ID: "3", Name: "Organic Coffee Beans (1lb)", Category: model.CategoryGroceries, Price: 18.50, Cost: 9.00, Quantity: 45, SKU: "GRO-102", LowStockAlert: 10, LastUpdated: now},
		{ID: "4", Name: "Smart Fitness Watch", Category: model.CategoryElectronics, Price: 149.00, Cost: 80.00, Quantity: 8, SKU: "WTC-009", LowStockAlert: 10, LastUpdated: now},
		{ID: "5", Name: "Ceramic Vase Set", Category: model.CategoryHome, Price: 45.00, Cost: 15.00, Quantity: 32, SKU: "HOM-221", LowStockAlert: 8, LastUpdated: now},
		{ID: "6", Name: "Aloe Vera Moisturizer", Category: model.CategoryBeauty, Price: 22.00, Cost: 6.50, Quantity: 65, SKU: "BEA-011", LowStockAlert: 15, LastUpdated: now},
		{ID: "7", Name: "Bluetooth Speaker", Category: model.CategoryElectronics, Price: 65.00, Cost: 30.00, Quantity: 5, SKU: "SPK-101", LowStockAlert: 10, LastUpdated: now},
	})
}
