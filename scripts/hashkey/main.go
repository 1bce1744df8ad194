// Command hashkey prints the Argon2id hash of an API key for use in
// COURIERLENS_ADMIN_KEY_HASH or COURIERLENS_VIEWER_KEY_HASH.
//
// Usage:
//
//	go run ./scripts/hashkey <api-key>
//
// The raw key is never stored server-side; only the hash goes into the
// environment.
package main

import (
	"fmt"
	"os"

	"github.com/courierlens/courierlens/internal/auth"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: hashkey <api-key>")
		os.Exit(2)
	}

	hash, err := auth.HashAPIKey(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
