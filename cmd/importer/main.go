package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"xoned-commerce/internal/config"
	"xoned-commerce/internal/db"
	"xoned-commerce/internal/importer"
	capsulerepo "xoned-commerce/internal/repository/capsule"
	productrepo "xoned-commerce/internal/repository/product"
	productsvc "xoned-commerce/internal/service/product"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to product CSV export")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	ctx := context.Background()

	pool, err := db.ConnectStrict(ctx, cfg.DBConnString)
	if err != nil {
		log.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	f, err := os.Open(filePath)
	if err != nil {
		log.Fatalf("open file: %v", err)
	}
	defer f.Close()

	capsules := capsulerepo.NewPostgres(pool, nil)
	products := productsvc.New(productrepo.NewPostgres(pool, nil), capsules)
	imp := importer.NewCSVImporter(f, products, capsules)

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		log.Fatalf("import failed: %v", err)
	}

	fmt.Printf("Imported %d products in %s\n", count, time.Since(start).Truncate(time.Millisecond))
}
