package main

import (
	"context"
	"flag"
	"log"
	"os"

	"xoned-commerce/internal/config"
	"xoned-commerce/internal/db"
	"xoned-commerce/internal/migrate"
)

func main() {
	var (
		down  bool
		steps int
		show  bool
	)
	flag.BoolVar(&down, "down", false, "Roll back migrations instead of applying them")
	flag.IntVar(&steps, "steps", 1, "Number of migrations to roll back with -down")
	flag.BoolVar(&show, "version", false, "Print the current schema version and exit")
	flag.Parse()

	logger := log.New(os.Stdout, "[migrate] ", log.LstdFlags|log.LUTC|log.Lshortfile)
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

	switch {
	case show:
		version, dirty, ok, err := migrate.Version(ctx, pool)
		if err != nil {
			logger.Fatalf("read version: %v", err)
		}
		if !ok {
			logger.Println("no migrations applied")
			return
		}
		logger.Printf("version=%d dirty=%t", version, dirty)
	case down:
		if err := migrate.Rollback(ctx, pool, steps); err != nil {
			logger.Fatalf("roll back migrations: %v", err)
		}
		logger.Printf("rolled back steps=%d", steps)
	default:
		if err := migrate.Apply(ctx, pool); err != nil {
			logger.Fatalf("apply migrations: %v", err)
		}
		logger.Println("migrations applied")
	}
}
