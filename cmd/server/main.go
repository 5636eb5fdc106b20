package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"

	webAdapter "storeledger/internal/adapters/web"
	"storeledger/internal/app"
	"storeledger/internal/core"
	"storeledger/internal/db"
	"storeledger/internal/events"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx, os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	var publisher core.EventPublisher = events.NopPublisher{}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		topic := os.Getenv("KAFKA_TOPIC")
		if topic == "" {
			topic = "storeledger.events"
		}
		kp := events.NewKafkaPublisher(strings.Split(brokers, ","), topic)
		defer kp.Close()
		publisher = kp
		log.Printf("events: publishing to kafka topic %s", topic)
	} else {
		log.Println("events: KAFKA_BROKERS not set, events disabled")
	}

	orderService := core.NewOrderService(pool, publisher)
	catalogService := core.NewCatalogService(pool)
	reportingService := core.NewReportingService(pool)

	svc := app.NewAppService(orderService, catalogService, reportingService)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(svc, allowedOrigins)

	log.Printf("server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
