// Command issuetoken prints a bearer token for a user, signed with the
// server's JWT_SECRET. It stands in for a real login flow during development.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"notekeeper/internal/auth"
	"notekeeper/internal/config"
)

func main() {
	user := flag.String("user", "", "user id to put in the token")
	ttl := flag.Duration("ttl", 7*24*time.Hour, "token lifetime")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	token, err := auth.NewAuthenticator([]byte(cfg.JWTSecret)).IssueToken(*user, *ttl)
	if err != nil {
		log.Fatalf("issue token: %v", err)
	}
	fmt.Println(token)
}
