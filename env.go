package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// loadDotenv looks for a .env next to the binary or one directory up.
// A missing file is fine in prod where the platform injects the environment.
func loadDotenv() {
	for _, p := range []string{".env", filepath.Join("..", ".env")} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Overload(p)
			log.Println("[env] loaded", p)
			return
		}
	}
}

// requireEnv fails fast on the keys the server cannot run without.
func requireEnv() {
	for _, k := range []string{"DATABASE_URL", "JWT_SECRET"} {
		if os.Getenv(k) == "" {
			log.Fatalf("missing required env %s", k)
		}
	}
}
