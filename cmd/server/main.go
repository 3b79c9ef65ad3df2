package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/cipherWizard31/pulse-care/internal/config"
	"github.com/cipherWizard31/pulse-care/internal/crypto"
	"github.com/cipherWizard31/pulse-care/internal/es"
	"github.com/cipherWizard31/pulse-care/internal/handlers"
	"github.com/cipherWizard31/pulse-care/internal/logging"
	"github.com/cipherWizard31/pulse-care/internal/mykafka"
	httpserver "github.com/cipherWizard31/pulse-care/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}

	cipher, err := crypto.New(configuration.ENCRYPTION_KEY, configuration.ENCRYPTION_IV)
	if err != nil {
		log.Fatalf("field cipher init error: %v", err)
	}

	jwtSecret := []byte(configuration.JWT_SECRET)

	var prod *mykafka.Producer
	if configuration.KAFKA_ADDRESS != "" {
		prod, err = mykafka.NewProducer(
			[]string{configuration.KAFKA_ADDRESS},
			[]string{"hospital_events", "patient_events"},
		)
		if err != nil {
			log.Fatal(err)
		}
	} else {
		logger.Warn("KAFKA_ADDRESS not set, event publishing disabled")
	}

	patientHandler := &handlers.PatientHandler{
		DB:       db,
		Cipher:   cipher,
		Producer: prod,
		Index:    "patient",
	}
	if configuration.ES_URL != "" {
		client, err := es.NewClient(configuration)
		if err != nil {
			log.Fatal(err)
		}
		patientHandler.ES = client
	} else {
		logger.Warn("ES_URL not set, patient search disabled")
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), logging.RequestLogger(logger))

	deps := httpserver.Deps{
		DB:        db,
		JWTSecret: jwtSecret,
		HospitalHandler: &handlers.HospitalHandler{
			DB: db, JWTSecret: jwtSecret, TokenTTL: configuration.JWT_EXPIRES_IN, Producer: prod,
		},
		SuperAdminHandler: &handlers.SuperAdminHandler{
			DB: db, JWTSecret: jwtSecret, TokenTTL: configuration.JWT_EXPIRES_IN, Producer: prod,
		},
		VerificationHandler: &handlers.VerificationHandler{DB: db, Producer: prod},
		PatientHandler:      patientHandler,
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":" + configuration.PORT,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
