package inventory

// UpsertStockRequest seeds or replaces the ledger record for a product.
type UpsertStockRequest struct {
	AvailableQuantity float64  `json:"available_quantity" validate:"gte=0"`
	ReorderLevel      *float64 `json:"reorder_level,omitempty" validate:"omitempty,gte=0"`
	Unit              string   `json:"unit" validate:"required,max=20"`
	WarehouseLocation *string  `json:"warehouse_location,omitempty" validate:"omitempty,max=120"`
}

// AdjustStockRequest applies a manual delta to available stock.
type AdjustStockRequest struct {
	Delta float64 `json:"delta" validate:"required"`
	Note  *string `json:"note,omitempty" validate:"omitempty,max=500"`
}
