package controllers

import (
	"net/http"

	"github.com/aesthetikoase/checkout-backend/api/responses"
)

func Health() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}
