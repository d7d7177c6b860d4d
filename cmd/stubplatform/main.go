// Command stubplatform starts a local fake of the remote creative platform.
// Usage: go run ./cmd/stubplatform [port]
// Default port: 9090
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/rinwao/hakobu/internal/stubplatform"
)

func main() {
	cfg := stubplatform.DefaultConfig()

	// Optional: custom port from command line
	if len(os.Args) > 1 {
		port, err := strconv.Atoi(os.Args[1])
		if err != nil || port < 1 || port > 65535 {
			log.Fatalf("Invalid port: %s", os.Args[1])
		}
		cfg.Port = port
	}

	fmt.Println("===========================================")
	fmt.Println("   hakobu Stub Platform")
	fmt.Println("===========================================")
	fmt.Println()
	fmt.Println("Simulates the remote creative platform for local")
	fmt.Println("development: ingestion, delivery, catalog lookups,")
	fmt.Println("listing pages and withdrawal.")
	fmt.Println()
	fmt.Println("Control endpoints:")
	fmt.Println("  POST /control/moderate   {\"id\": \"...\", \"outcome\": \"accepted|declined|deleted|pending\"}")
	fmt.Println("  POST /control/fail-next  {\"error_code\": 4}")
	fmt.Println("  POST /control/reset")
	fmt.Println()
	fmt.Printf("Authenticate with cookie SessionToken=%s\n", cfg.ValidCredential)
	fmt.Println()

	stub := stubplatform.New(cfg)
	if err := stub.Start(); err != nil {
		log.Fatalf("Stub platform failed: %v", err)
	}
}
