// Command token mints bearer tokens for local development. Production tokens
// come from the identity provider that shares the signing secret.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/nikolayk812/storefront/internal/config"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/transport/http/middleware"
)

func main() {
	userID := flag.String("user", "", "user id written to the sub claim")
	admin := flag.Bool("admin", false, "grant the admin role")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if *userID == "" {
		log.Fatal("-user is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config.Load: %v", err)
	}

	user := domain.User{ID: *userID, Role: domain.RoleCustomer}
	if *admin {
		user.Role = domain.RoleAdmin
	}

	token, err := middleware.NewToken([]byte(cfg.Auth.JWTSecret), user, *ttl)
	if err != nil {
		log.Fatalf("middleware.NewToken: %v", err)
	}

	fmt.Println(token)
}
