// Creates an API account that can request tokens.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/mueblesrd/support-rag/internal/auth"
	"github.com/mueblesrd/support-rag/internal/config"
	"github.com/mueblesrd/support-rag/internal/db"
)

func main() {
	username := flag.String("username", "", "account name")
	password := flag.String("password", "", "account password")
	flag.Parse()

	if *username == "" || *password == "" {
		log.Fatal("required: --username and --password")
	}

	ctx := context.Background()
	cfg := config.Load()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	hash, err := auth.HashPassword(*password)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	repo := auth.NewPgRepository(pool)
	id, err := repo.CreateUser(ctx, *username, hash)
	if err != nil {
		log.Fatalf("create user: %v", err)
	}

	log.Printf("user %s created (id=%d)", *username, id)
}
