package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"xoned-commerce/internal/auth"
	"xoned-commerce/internal/config"
)

// devtoken mints a bearer token signed with JWT_SECRET for local testing.
func main() {
	var (
		userID string
		email  string
		role   string
		ttl    time.Duration
	)
	flag.StringVar(&userID, "user", "", "User id placed in the sub claim")
	flag.StringVar(&email, "email", "", "Email claim")
	flag.StringVar(&role, "role", auth.RoleCustomer.String(), "Role: customer or admin")
	flag.DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	flag.Parse()

	if userID == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.JWTSecret == "" {
		log.Fatalf("JWT_SECRET is not set")
	}

	token, err := auth.NewVerifier(cfg.JWTSecret).Issue(auth.Identity{
		UserID: userID,
		Email:  email,
		Role:   auth.ParseRole(role),
	}, ttl)
	if err != nil {
		log.Fatalf("issue token: %v", err)
	}
	fmt.Println(token)
}
