// Command devtoken prints a signed access token for local testing, e.g.
//
//	go run ./cmd/devtoken -sub 2 -role STUDENT
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/iliyamo/hostel-management/internal/config"
	"github.com/iliyamo/hostel-management/internal/utils"
)

func main() {
	sub := flag.Uint64("sub", 1, "user id (sub claim)")
	role := flag.String("role", "ADMIN", "ADMIN or STUDENT")
	student := flag.Uint64("student", 0, "optional student_id claim")
	ttl := flag.Duration("ttl", 12*time.Hour, "token lifetime")
	flag.Parse()

	if err := config.LoadDotenv(); err != nil {
		log.Fatalf("load .env: %v", err)
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is not set")
	}
	tok, err := utils.NewAccessToken(secret, utils.TokenClaims{UserID: *sub, Role: *role, StudentID: *student}, *ttl)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(tok.Token)
}
