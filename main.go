package main

import (
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"gorm.io/gorm/logger"
)

func main() {
	loadDotenv()
	requireEnv()
	cfg := loadConfig()

	dsn := cfg.DatabaseURL
	// local only: allow sslmode=disable if using localhost
	if strings.Contains(dsn, "localhost") && !strings.Contains(dsn, "sslmode=") {
		if strings.Contains(dsn, "?") {
			dsn += "&sslmode=disable"
		} else {
			dsn += "?sslmode=disable"
		}
	}

	// Quieter GORM logger
	gLogger := logger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		logger.Config{
			SlowThreshold: 1500 * time.Millisecond,
			LogLevel:      logger.Warn,
			Colorful:      true,
		},
	)

	db, err := openGorm(dsn, gLogger)
	if err != nil {
		log.Fatalf("[db] connect failed: %v", err)
	}
	if err := autoMigrate(db); err != nil {
		log.Fatalf("[db] migrate failed: %v", err)
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatalf("[upload] create dir %s: %v", cfg.UploadDir, err)
	}

	a := newApp(cfg, db)

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Println("API listening on", addr, "CORS_ORIGIN:", cfg.CORSOrigin)
	log.Fatal(srv.ListenAndServe())
}
