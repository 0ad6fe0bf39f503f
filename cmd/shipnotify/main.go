package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/agamariel/cryptomart/internal/mailer"
	"github.com/agamariel/cryptomart/internal/services"
	"github.com/agamariel/cryptomart/internal/storage"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

// shipnotify - разовый проход рассылки писем об отправке заказов.
// Запускается по расписанию (cron) рядом с основным сервисом.
func main() {
	godotenv.Load()

	databaseURI := os.Getenv("DATABASE_URI")
	if databaseURI == "" {
		log.Fatal("DATABASE_URI is required")
	}

	mailerAddress := os.Getenv("MAILER_ADDRESS")
	if mailerAddress == "" {
		log.Fatal("MAILER_ADDRESS is required")
	}
	mailerFrom := os.Getenv("MAILER_FROM")
	if mailerFrom == "" {
		mailerFrom = "orders@localhost"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	dbPool, err := pgxpool.New(ctx, databaseURI)
	if err != nil {
		log.Fatalf("unable to connect to database: %v", err)
	}
	defer dbPool.Close()

	if err := dbPool.Ping(ctx); err != nil {
		log.Fatalf("unable to ping database: %v", err)
	}

	orderStorage := storage.NewPostgresOrderStorage(dbPool)
	mail := mailer.NewHTTPMailer(mailerAddress, os.Getenv("MAILER_API_KEY"), mailerFrom, 10*time.Second)
	notifier := services.NewNotificationService(orderStorage, mail, log.Default())

	sent, err := notifier.RunShippingSweep(ctx)
	if err != nil {
		log.Fatalf("shipping sweep failed: %v", err)
	}

	log.Printf("shipping sweep completed, %d notifications sent", sent)
}
