// Package main generates session tokens, password hashes and signing keys for
// local testing. Tokens are signed with the dev key unless -key is set.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"dingauth/internal/federation/models"
	jwttoken "dingauth/internal/jwt_token"
	"dingauth/pkg/secrets"
)

const (
	// Dev signing key, matches the session.signing_key default
	devSigningKey = "dev-secret-key-change-in-production"

	defaultIssuer   = "dingauth"
	defaultTokenTTL = 2 * time.Hour
)

type tokenOutput struct {
	Token     string            `json:"token"`
	Type      string            `json:"type"`
	ExpiresIn string            `json:"expires_in"`
	Claims    map[string]any    `json:"claims,omitempty"`
	Usage     map[string]string `json:"usage"`
}

type options struct {
	username    string
	alias       string
	authorities string
	roles       string
	userID      string
	unionID     string
	appKey      string
	key         string
	issuer      string
	audience    string
	ttl         time.Duration
	jsonOutput  bool
}

func main() {
	sessionCmd := flag.NewFlagSet("session", flag.ExitOnError)
	var opts options
	sessionCmd.StringVar(&opts.username, "username", "zhangsan", "Local username (token subject)")
	sessionCmd.StringVar(&opts.alias, "alias", "", "Display alias")
	sessionCmd.StringVar(&opts.authorities, "authorities", "ROLE_USER", "Comma-separated authorities")
	sessionCmd.StringVar(&opts.roles, "roles", "", "Comma-separated roles")
	sessionCmd.StringVar(&opts.userID, "userid", "manager4521", "DingTalk user id")
	sessionCmd.StringVar(&opts.unionID, "unionid", "", "DingTalk union id")
	sessionCmd.StringVar(&opts.appKey, "app-key", "", "DingTalk app key")
	sessionCmd.StringVar(&opts.key, "key", devSigningKey, "HMAC signing key")
	sessionCmd.StringVar(&opts.issuer, "issuer", defaultIssuer, "Token issuer")
	sessionCmd.StringVar(&opts.audience, "audience", "", "Token audience")
	sessionCmd.DurationVar(&opts.ttl, "ttl", defaultTokenTTL, "Token time-to-live")
	sessionCmd.BoolVar(&opts.jsonOutput, "json", false, "Output as JSON")

	hashCmd := flag.NewFlagSet("hash", flag.ExitOnError)
	hashPassword := hashCmd.String("password", "", "Password to hash for dingtalk.users[].password")

	keyCmd := flag.NewFlagSet("key", flag.ExitOnError)
	keyBytes := keyCmd.Int("bytes", 32, "Random bytes in the generated signing key")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "session":
		_ = sessionCmd.Parse(os.Args[2:])
		generateSessionToken(opts)
	case "hash":
		_ = hashCmd.Parse(os.Args[2:])
		hash, err := secrets.HashPassword(*hashPassword)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error hashing password: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(hash)
	case "key":
		_ = keyCmd.Parse(os.Args[2:])
		key, err := secrets.GenerateSigningKey(*keyBytes)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating key: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(key)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`tokengen - Generate session tokens for dingauth

WARNING: tokens are signed with the dev key unless -key is given.

Usage:
  tokengen session [flags]   sign a session token
  tokengen hash -password X  bcrypt hash for a seeded user
  tokengen key [-bytes N]    random session signing key

Examples:
  tokengen session -username lisi -authorities ROLE_USER,ROLE_ADMIN
  tokengen session -key "$DINGAUTH_SESSION_SIGNING_KEY" -ttl 15m -json
  tokengen hash -password changeme`)
}

func generateSessionToken(opts options) {
	svc := jwttoken.NewJWTService(opts.key, opts.issuer, opts.audience, opts.ttl)
	outcome := &models.Outcome{
		Identity: &models.ResolvedIdentity{
			AppKey:  opts.appKey,
			UserID:  opts.userID,
			UnionID: opts.unionID,
		},
		Principal: &models.Principal{
			Username:    opts.username,
			Alias:       opts.alias,
			Authorities: splitList(opts.authorities),
			Roles:       splitList(opts.roles),
		},
	}

	token, err := svc.GenerateSessionToken(context.Background(), outcome)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating token: %v\n", err)
		os.Exit(1)
	}

	if opts.jsonOutput {
		printJSON(tokenOutput{
			Token:     token,
			Type:      "session_token",
			ExpiresIn: opts.ttl.String(),
			Claims: map[string]any{
				"sub":              opts.username,
				"authorities":      outcome.Principal.Authorities,
				"roles":            outcome.Principal.Roles,
				"dingtalk_userid":  opts.userID,
				"dingtalk_unionid": opts.unionID,
				"app_key":          opts.appKey,
			},
			Usage: map[string]string{
				"header": "Authorization: Bearer <token>",
			},
		})
		return
	}

	fmt.Println("Session Token (JWT)")
	fmt.Println("===================")
	fmt.Printf("Expires In:  %s\n", opts.ttl)
	fmt.Printf("Username:    %s\n", opts.username)
	fmt.Printf("Authorities: %v\n", outcome.Principal.Authorities)
	fmt.Printf("DingTalk ID: %s\n", opts.userID)
	fmt.Println()
	fmt.Println("Token:")
	fmt.Println(token)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  curl -H \"Authorization: Bearer <token>\" http://localhost:8080/session")
}

func splitList(list string) []string {
	if list == "" {
		return nil
	}
	parts := strings.Split(list, ",")
	result := make([]string, 0, len(parts))
	for _, s := range parts {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}
