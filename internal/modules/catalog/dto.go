package catalog

type CreateProductRequest struct {
	Name  string  `json:"name" binding:"required"`
	Price float64 `json:"price" binding:"gte=0"`
	Stock int     `json:"stock" binding:"gte=0"`
}

type UpdatePriceRequest struct {
	Price float64 `json:"price" binding:"gte=0"`
}

type UpdateStockRequest struct {
	Stock int `json:"stock" binding:"gte=0"`
}
