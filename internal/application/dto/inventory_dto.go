package dto

import "github.com/shopspring/decimal"

// RegisterMovementRequest body para POST /api/inventory/movements (entrada o salida manual).
type RegisterMovementRequest struct {
	ProductID int64            `json:"product_id" validate:"required,gt=0"`
	Type      string           `json:"type" validate:"required,oneof=IN OUT"`
	Quantity  int64            `json:"quantity" validate:"required,gt=0"`
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty"`
	Reason    string           `json:"reason" validate:"required,max=120"`
}

// MovementResponse movimiento de inventario en respuestas.
type MovementResponse struct {
	ID            int64           `json:"id"`
	TransactionID string          `json:"transaction_id"`
	ProductID     int64           `json:"product_id"`
	Type          string          `json:"type"`
	Quantity      int64           `json:"quantity"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Reason        string          `json:"reason"`
	SaleID        *int64          `json:"sale_id,omitempty"`
	CreatedBy     int64           `json:"created_by"`
	CreatedAt     string          `json:"created_at"`
}

// RegisterMovementResponse resultado de un movimiento manual.
type RegisterMovementResponse struct {
	RC       int               `json:"rc"`
	Movement *MovementResponse `json:"movement,omitempty"`
	NewStock int64             `json:"new_stock"`
	Msg      string            `json:"msg,omitempty"`
}

// MovementHistoryRequest filtros en query de GET /api/inventory/products/:id/movements.
type MovementHistoryRequest struct {
	From string `query:"from"`
	To   string `query:"to"`
	PageRequest
}

// ReconcileResponse compara la columna de stock con el pliegue de movimientos.
type ReconcileResponse struct {
	ProductID  int64 `json:"product_id"`
	Stock      int64 `json:"stock"`
	In         int64 `json:"in"`
	Out        int64 `json:"out"`
	Ledger     int64 `json:"ledger"` // in - out
	Consistent bool  `json:"consistent"`
}

// LowStockResponse producto en stock crítico (stock <= mínimo) con sugerencia de reposición.
type LowStockResponse struct {
	ProductID     int64           `json:"product_id"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Stock         int64           `json:"stock"`
	Minimum       int64           `json:"minimum"`
	IdealStock    int64           `json:"ideal_stock"`    // ceil(Minimum * 1.5)
	SuggestedQty  int64           `json:"suggested_qty"`  // IdealStock - Stock
	UnitCost      decimal.Decimal `json:"unit_cost"`      // costo promedio ponderado
	EstimatedCost decimal.Decimal `json:"estimated_cost"` // SuggestedQty * UnitCost
	Priority      int             `json:"priority"`       // 1 = más urgente
}
