package main

import (
	"context"
	"log"

	"family-stories-be/internal/bootstrap"
	"family-stories-be/internal/config"
	"family-stories-be/internal/server"
	"family-stories-be/internal/tracer"
	"family-stories-be/pkg/database"
)

func main() {
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	cfg := config.Load()

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	container := bootstrap.NewContainer(gormDB, cfg)

	// Follow-up converter worker
	go func() {
		log.Println("Background: starting follow-up consumer...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background consumer error: %v", err)
		}
	}()

	srv := server.New(cfg, container)
	log.Fatal(srv.Run())
}
