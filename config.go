package main

import "os"

// Config is built once in main and handed to the app; nothing below main
// reads the environment directly.
type Config struct {
	DatabaseURL string
	JWTSecret   string
	UploadDir   string
	CORSOrigin  string
	Port        string
}

func loadConfig() Config {
	return Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		UploadDir:   getenv("UPLOAD_DIR", "uploads"),
		CORSOrigin:  getenv("CORS_ORIGIN", "http://localhost:3000"),
		Port:        getenv("PORT", "5000"),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
