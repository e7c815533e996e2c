package controllers

import (
	"net/http"

	"github.com/angelmondragon/cartsync/api/responses"
	"github.com/angelmondragon/cartsync/internal/shop"
)

func ProductList(svc shop.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products := svc.Products(r.Context())
		out := make([]productDTO, 0, len(products))
		for _, p := range products {
			out = append(out, toProductDTO(p))
		}
		responses.WriteSuccess(w, out)
	}
}
