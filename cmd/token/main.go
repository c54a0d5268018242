// Command token prints a bearer token for local testing. In production the
// surrounding web layer issues tokens with the same secret.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"sacco-ledger/internal/config"
	"sacco-ledger/internal/domain/identity"
	"sacco-ledger/internal/infrastructure/auth"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	user := flag.String("user", "", "32-char lowercase hex user id")
	role := flag.String("role", string(identity.RoleMember), "member | staff | admin | super_admin")
	ttl := flag.Duration("ttl", cfg.JWTTTL, "token lifetime")
	flag.Parse()

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}
	id := identity.Identity{UserID: *user, Role: identity.Role(*role)}
	if !id.Role.Valid() {
		log.Fatalf("unknown role %q", *role)
	}
	jm := auth.NewJWTManager(cfg.JWTSecret, *ttl)
	tok, err := jm.Generate(id)
	if err != nil {
		log.Fatal(err)
	}
	// round-trip so a bad user id fails here rather than on the first request
	if _, err := jm.Validate(tok); err != nil {
		log.Fatalf("user id must be 32-char lowercase hex: %v", err)
	}
	fmt.Println(tok)
}
