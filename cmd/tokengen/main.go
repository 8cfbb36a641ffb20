package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/Wang-tianhao/vibrant-blog-go/jwtauth"
)

func main() {
	var (
		secret  = flag.String("secret", "", "Shared signing secret (AUTH_SECRET_KEY)")
		alg     = flag.String("alg", jwtauth.DefaultAlgorithm, "Signing algorithm (HS256, HS384, HS512)")
		minutes = flag.Int("minutes", int(jwtauth.DefaultExpiry/time.Minute), "Token validity in minutes")
		userID  = flag.Int64("user-id", 0, "User id to issue the token for (omit for a token without a subject)")
	)

	flag.Parse()

	cfg, err := jwtauth.NewConfig(
		jwtauth.WithSecret([]byte(*secret)),
		jwtauth.WithAlgorithm(*alg),
		jwtauth.WithExpiryMinutes(*minutes),
	)
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	claims := jwtauth.Claims{}
	if *userID > 0 {
		claims = jwtauth.NewClaims(*userID)
	}

	codec := jwtauth.NewCodec(cfg)
	tokenString, err := codec.Encode(claims)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}

	decoded, err := codec.Decode(tokenString)
	if err != nil {
		log.Fatalf("Issued token does not verify: %v", err)
	}
	expiresAt, _ := decoded.ExpiresAt()

	fmt.Println("\n=== Access Token Generated ===")
	fmt.Printf("\nToken: %s\n\n", tokenString)
	fmt.Println("Claims:")
	if *userID > 0 {
		fmt.Printf("  User ID:   %d\n", *userID)
	} else {
		fmt.Println("  User ID:   (none, the token will be rejected by the API)")
	}
	fmt.Printf("  Algorithm: %s\n", cfg.Algorithm())
	fmt.Printf("  Expires:   %s\n\n", expiresAt.Format(time.RFC3339))
	fmt.Println("Usage:")
	fmt.Printf("  curl -H 'Authorization: Bearer %s' http://localhost:8080/users/me\n\n", tokenString)
}
