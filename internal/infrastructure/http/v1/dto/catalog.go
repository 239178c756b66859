package dto

// CreateCategoryRequest creates a category.
type CreateCategoryRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description,omitempty"`
}

// UpdateCategoryRequest updates a category.
type UpdateCategoryRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description,omitempty"`
}

// CreateProductRequest creates a product.
type CreateProductRequest struct {
	Name       string  `json:"name" binding:"required"`
	Barcode    *string `json:"barcode,omitempty"`
	CategoryID string  `json:"categoryId" binding:"required,uuid"`

	UnitKind  string   `json:"unitKind" binding:"required,unitkind"`
	SaleModes []string `json:"saleModes" binding:"required,min=1,dive,salemode"`

	// InitialStockBaseUnit, when positive, is recorded as an opening
	// stock movement so the ledger starts in balance.
	InitialStockBaseUnit int64 `json:"initialStockBaseUnit" binding:"gte=0"`
	MinAlertStock        int64 `json:"minAlertStock" binding:"gte=0"`

	PricePerUnit   string `json:"pricePerUnit,omitempty"`
	PricePerKg     string `json:"pricePerKg,omitempty"`
	PricePerCup    string `json:"pricePerCup,omitempty"`
	CupWeightGrams int64  `json:"cupWeightGrams" binding:"gte=0"`
	CostPrice      string `json:"costPrice" binding:"required"`
}

// UpdateProductRequest updates catalog fields of a product.
// Stock cannot be changed here: use the stock movement endpoint.
type UpdateProductRequest struct {
	Name       string  `json:"name" binding:"required"`
	Barcode    *string `json:"barcode,omitempty"`
	CategoryID string  `json:"categoryId" binding:"required,uuid"`

	SaleModes []string `json:"saleModes" binding:"required,min=1,dive,salemode"`

	MinAlertStock  int64  `json:"minAlertStock" binding:"gte=0"`
	PricePerUnit   string `json:"pricePerUnit,omitempty"`
	PricePerKg     string `json:"pricePerKg,omitempty"`
	PricePerCup    string `json:"pricePerCup,omitempty"`
	CupWeightGrams int64  `json:"cupWeightGrams" binding:"gte=0"`
	CostPrice      string `json:"costPrice" binding:"required"`
}

// ProductListQuery filters product listings.
type ProductListQuery struct {
	ListQuery
	CategoryID string `form:"categoryId" binding:"omitempty,uuid"`
	Search     string `form:"search"`
}
