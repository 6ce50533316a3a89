// Package main provides a CLI tool for generating session tokens for local
// testing of the folio API. These tokens use the dev signing key and will
// NOT work in production.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"folio/internal/platform/middleware"
)

// Matches config.go when FOLIO_JWT_SIGNING_KEY is not set.
const devSigningKey = "dev-secret-key-change-in-production"

func main() {
	userID := flag.String("user-id", "", "User ID (UUID). Generated if empty.")
	ttl := flag.Duration("ttl", time.Hour, "Token time-to-live")
	key := flag.String("key", devSigningKey, "HS256 signing key")
	asJSON := flag.Bool("json", false, "Output as JSON")
	flag.Parse()

	subject := *userID
	if subject == "" {
		subject = uuid.NewString()
	} else if _, err := uuid.Parse(subject); err != nil {
		fmt.Fprintf(os.Stderr, "user-id must be a UUID: %v\n", err)
		os.Exit(1)
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, middleware.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(*ttl)),
		},
	})
	signed, err := token.SignedString([]byte(*key))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to sign token: %v\n", err)
		os.Exit(1)
	}

	if *asJSON {
		out := map[string]string{
			"token":      signed,
			"user_id":    subject,
			"expires_in": ttl.String(),
			"usage":      "curl -H 'Authorization: Bearer <token>' http://localhost:8080/nominees",
		}
		_ = json.NewEncoder(os.Stdout).Encode(out)
		return
	}

	fmt.Printf("user_id: %s\n", subject)
	fmt.Printf("token:   %s\n", signed)
}
