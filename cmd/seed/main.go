package main

import (
	"context"
	"log"
	"os"

	"xoned-commerce/internal/config"
	"xoned-commerce/internal/db"
	capsulerepo "xoned-commerce/internal/repository/capsule"
	productrepo "xoned-commerce/internal/repository/product"
	capsulesvc "xoned-commerce/internal/service/capsule"
	productsvc "xoned-commerce/internal/service/product"
	"xoned-commerce/internal/seed"
)

func main() {
	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	ctx := context.Background()
	pool, err := db.ConnectStrict(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	capsuleRepo := capsulerepo.NewPostgres(pool, logger)
	products := productsvc.New(productrepo.NewPostgres(pool, logger), capsuleRepo)

	if err := seed.Apply(ctx, capsulesvc.New(capsuleRepo), products); err != nil {
		logger.Fatalf("seed apply: %v", err)
	}

	logger.Println("seed applied")
}
