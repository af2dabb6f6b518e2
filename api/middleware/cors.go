package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS lets the browser till and back-office front-ends call the API.
func CORS(origins []string) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id", idempotentReplayHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
