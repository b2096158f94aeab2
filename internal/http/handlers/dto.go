package handlers

import (
	"time"

	"github.com/fejiro0/gomart/internal/models"
	"github.com/shopspring/decimal"
)

type ProductRequest struct {
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Threshold int             `json:"threshold"`
}

type ProductResponse struct {
	ID         int64  `json:"id"`
	VendorID   int64  `json:"vendorId"`
	CategoryID int64  `json:"categoryId"`
	Category   string `json:"category,omitempty"`
	Name       string `json:"name"`
	Price      string `json:"price"`
	PriceCents int64  `json:"priceCents"`
	Quantity   int    `json:"stockQuantity"`
	Threshold  int    `json:"lowStockThreshold"`
	LowStock   bool   `json:"lowStock,omitempty"`
}

type Meta struct {
	TotalCount int `json:"total_count"`
}

type ProductsSearchResult struct {
	Data []ProductResponse `json:"data"`
	Meta Meta              `json:"meta,omitempty"`
}

type StockAdjustmentRequest struct {
	QuantityChange *int `json:"quantityChange"`
}

type StockAdjustmentResponse struct {
	ProductID     int64 `json:"productId"`
	PreviousStock int   `json:"previousStock"`
	NewStock      int   `json:"newStock"`
}

type MovementResponse struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"productId"`
	Delta     int    `json:"delta"`
	Reason    string `json:"reason"`
	SessionID string `json:"sessionId,omitempty"`
	CreatedAt string `json:"createdAt"`
}

type MovementsSearchResult struct {
	Data []MovementResponse `json:"data"`
	Meta Meta               `json:"meta,omitempty"`
}

type VendorLogin struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type VendorRegistration struct {
	Email     string `json:"email"`
	StoreName string `json:"storeName"`
	Password  string `json:"password"`
}

type LoginResult struct {
	Token string `json:"token"`
}

type RegisterResult struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type CartItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type CartDeltaRequest struct {
	Delta int `json:"delta"`
}

type CartItemResponse struct {
	ProductID     int64     `json:"productId"`
	Name          string    `json:"name"`
	Quantity      int       `json:"quantity"`
	UnitPrice     string    `json:"unitPrice"`
	Subtotal      string    `json:"subtotal"`
	ObservedStock int       `json:"observedStock"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

type CartResponse struct {
	SessionID  string             `json:"sessionId"`
	Items      []CartItemResponse `json:"items"`
	TotalUnits int                `json:"totalUnits"`
	Total      string             `json:"total"`
}

type ClearCartErrors struct {
	Errors []string `json:"errors"`
}

type OrderLineResponse struct {
	ProductID int64  `json:"productId"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unitPrice"`
}

type OrderResponse struct {
	ID        string              `json:"id"`
	Lines     []OrderLineResponse `json:"lines"`
	Total     string              `json:"total"`
	CreatedAt time.Time           `json:"createdAt"`
}

type ImportProductsResult struct {
	ImportedProductsCount int                      `json:"imported"`
	Errors                []ProductValidationError `json:"errors"`
}

func formatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

func toProductResponse(p models.Product) ProductResponse {
	return ProductResponse{
		ID:         p.ID,
		VendorID:   p.VendorID,
		CategoryID: p.CategoryID,
		Category:   p.CategoryName,
		Name:       p.Name,
		Price:      formatCents(p.PriceCents),
		PriceCents: p.PriceCents,
		Quantity:   p.StockQuantity,
		Threshold:  p.LowStockThreshold,
		LowStock:   p.LowStock(),
	}
}

func toCartResponse(c models.Cart) CartResponse {
	resp := CartResponse{
		SessionID:  c.SessionID,
		Items:      make([]CartItemResponse, len(c.Items)),
		TotalUnits: c.TotalUnits,
		Total:      formatCents(c.TotalCents),
	}
	for i, it := range c.Items {
		resp.Items[i] = CartItemResponse{
			ProductID:     it.ProductID,
			Name:          it.ProductName,
			Quantity:      it.Quantity,
			UnitPrice:     formatCents(it.UnitPriceCents),
			Subtotal:      formatCents(it.SubtotalCents()),
			ObservedStock: it.ObservedStock,
			ExpiresAt:     it.ExpiresAt,
		}
	}
	return resp
}

func toOrderResponse(o models.Order) OrderResponse {
	resp := OrderResponse{
		ID:        o.ID,
		Lines:     make([]OrderLineResponse, len(o.Lines)),
		Total:     formatCents(o.TotalCents),
		CreatedAt: o.CreatedAt,
	}
	for i, l := range o.Lines {
		resp.Lines[i] = OrderLineResponse{ProductID: l.ProductID, Quantity: l.Quantity, UnitPrice: formatCents(l.UnitPriceCents)}
	}
	return resp
}

func toMovementResponse(m models.Movement) MovementResponse {
	return MovementResponse{
		ID:        m.ID,
		ProductID: m.ProductID,
		Delta:     m.Delta,
		Reason:    string(m.Reason),
		SessionID: m.SessionID,
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
}
