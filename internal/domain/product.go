package domain

import (
	"time"
)

// Product is a catalog item. Stock is tracked per size label; AvailableAmount
// is the sum of all size quantities and must be kept consistent with Sizes on
// every mutation.
type Product struct {
	ProductCode     string         `dynamodbav:"product_code" json:"product_code"`
	Name            string         `dynamodbav:"name"         json:"name"`
	BuyingPrice     float64        `dynamodbav:"buying_price" json:"buying_price"`
	SellingPrice    float64        `dynamodbav:"selling_price" json:"selling_price"`
	Sizes           map[string]int `dynamodbav:"sizes"        json:"sizes"`
	AvailableAmount int            `dynamodbav:"available_amount" json:"available_amount"`
	CreatedAt       time.Time      `dynamodbav:"created_at"   json:"created_at"`
	UpdatedAt       time.Time      `dynamodbav:"updated_at"   json:"updated_at"`
}

// TotalStock sums the per-size quantities.
func (p *Product) TotalStock() int {
	total := 0
	for _, qty := range p.Sizes {
		total += qty
	}
	return total
}

type CreateProductRequest struct {
	ProductCode string `json:"product_code" binding:"required"`
	Name        string `json:"name"         binding:"required"`
	// gte, not required: a zero price is legitimate (gifts, samples) and
	// "required" fails on zero values
	BuyingPrice  float64        `json:"buying_price" binding:"gte=0"`
	SellingPrice float64        `json:"selling_price" binding:"gte=0"`
	Sizes        map[string]int `json:"sizes"        binding:"required"`
}

type ProductResponse struct {
	ProductCode     string         `json:"product_code"`
	Name            string         `json:"name"`
	BuyingPrice     float64        `json:"buying_price"`
	SellingPrice    float64        `json:"selling_price"`
	Sizes           map[string]int `json:"sizes"`
	AvailableAmount int            `json:"available_amount"`
}
