package domain

import "time"

type ProductStatus string

const (
	ProductStatusActive     ProductStatus = "active"
	ProductStatusDraft      ProductStatus = "draft"
	ProductStatusOutOfStock ProductStatus = "outOfStock"
)

func (s ProductStatus) Valid() bool {
	switch s {
	case ProductStatusActive, ProductStatusDraft, ProductStatusOutOfStock:
		return true
	}
	return false
}

type Product struct {
	ID          string        `json:"id"`
	Key         string        `json:"key"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Price       int64         `json:"price"`
	CapsuleID   string        `json:"capsuleId"`
	CapsuleName string        `json:"capsuleName,omitempty"`
	Category    string        `json:"category,omitempty"`
	Images      []string      `json:"images"`
	Sizes       []string      `json:"sizes,omitempty"`
	Colors      []string      `json:"colors,omitempty"`
	Tags        []string      `json:"tags,omitempty"`
	Stock       int           `json:"stock"`
	Status      ProductStatus `json:"status"`
	IsFeatured  bool          `json:"isFeatured"`
	IsNew       bool          `json:"isNew"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// InStock reports whether the product can currently be bought.
func (p Product) InStock() bool {
	return p.Stock > 0 && p.Status != ProductStatusOutOfStock
}

// PrimaryImage returns the first image or an empty string.
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
