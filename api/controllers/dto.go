package controllers

import (
	"time"

	"github.com/angelmondragon/cartsync/internal/shop"
	"github.com/angelmondragon/cartsync/pkg/types"
)

// productDTO mirrors the document-store shape shoppers' clients expect; the
// identifier travels as _id.
type productDTO struct {
	ID          string      `json:"_id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Image       string      `json:"image,omitempty"`
	Category    string      `json:"category,omitempty"`
	Price       types.Money `json:"price"`
}

type cartLineDTO struct {
	productDTO
	Quantity int `json:"quantity"`
}

type couponDTO struct {
	Code               string      `json:"code"`
	DiscountPercentage types.Money `json:"discountPercentage"`
	ExpirationDate     time.Time   `json:"expirationDate"`
}

type userDTO struct {
	ID    string `json:"_id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type productRequest struct {
	ProductID string `json:"productId" validate:"required"`
}

type optionalProductRequest struct {
	ProductID string `json:"productId"`
}

type quantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,min=0"`
}

type couponRequest struct {
	Code string `json:"code" validate:"required"`
}

func toProductDTO(p shop.Product) productDTO {
	return productDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Image:       p.Image,
		Category:    p.Category,
		Price:       types.Money(p.Price),
	}
}

func toCartDTO(lines []shop.CartLine) []cartLineDTO {
	out := make([]cartLineDTO, 0, len(lines))
	for _, line := range lines {
		out = append(out, cartLineDTO{productDTO: toProductDTO(line.Product), Quantity: line.Quantity})
	}
	return out
}

func toCouponDTO(c *shop.Coupon) *couponDTO {
	if c == nil {
		return nil
	}
	return &couponDTO{
		Code:               c.Code,
		DiscountPercentage: types.Money(c.DiscountPercentage),
		ExpirationDate:     c.ExpirationDate.UTC(),
	}
}

func toUserDTO(u shop.User) userDTO {
	return userDTO{ID: u.ID, Email: u.Email, Name: u.Name}
}
