package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"farm-livestock-history/internal/adapters/auth/accounts"
	"farm-livestock-history/internal/adapters/auth/jwtauth"
	"farm-livestock-history/internal/platform/logger"
	"farm-livestock-history/internal/ports/auth"
	"farm-livestock-history/internal/router"
)

func main() {
	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	r := router.NewRouter(router.Options{
		AuthVerifier: buildVerifier(),
		Logger:       logger.NewFromEnv(),
	})

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Printf("starting server on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

// buildVerifier elige el verificador de tokens según env:
// - AUTH_URL => servicio de cuentas remoto
// - JWT_SECRET => validación local HS256 (esquema de la app móvil)
// - nada => nil, modo dev con headers X-Debug-*
func buildVerifier() auth.AuthVerifier {
	if base := os.Getenv("AUTH_URL"); base != "" {
		client, err := accounts.NewClient(accounts.Config{
			BaseURL: base,
			APIKey:  os.Getenv("AUTH_API_KEY"),
		})
		if err != nil {
			log.Fatalf("invalid AUTH_URL: %v", err)
		}
		return accounts.NewVerifier(client)
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		return jwtauth.NewVerifier(secret)
	}
	return nil
}
