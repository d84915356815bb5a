package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS returns the storefront's deliberately permissive policy: the
// checkout endpoints are called from Webflow-hosted pages whose preview
// domains churn, so origins cannot be pinned. Preflight OPTIONS requests
// get a 200 with no body processing.
func CORS() func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		MaxAge:         86400,
	}).Handler
}
