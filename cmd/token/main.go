// Command token mints an operator bearer token signed with AUTH_SECRET.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"stock-ledger/internal/config"
	"stock-ledger/internal/middleware"
)

func main() {
	cfg := config.Load()

	operator := flag.String("operator", "", "operator name recorded in the token subject")
	ttl := flag.Duration("ttl", time.Duration(cfg.Auth.TokenTTLHours)*time.Hour, "token lifetime")
	flag.Parse()

	token, err := middleware.IssueOperatorToken(cfg.Auth.Secret, *operator, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
