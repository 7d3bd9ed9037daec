package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/hyperifyio/deepsearch/internal/app"
	"github.com/hyperifyio/deepsearch/internal/search"
)

// debugsearch queries the configured provider once and prints the raw hits,
// without fetching or analyzing anything.
func main() {
	cfg := app.Config{}
	app.ApplyEnvToConfig(&cfg)
	if cfg.SearxURL == "" {
		cfg.SearxURL = "http://localhost:8888"
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "debugsearch/1.0"
	}
	q := "What is love?"
	if len(os.Args) > 1 {
		q = os.Args[1]
	}
	client := &http.Client{Timeout: 20 * time.Second}
	prov, err := app.NewProvider(cfg, client)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()
	res, err := prov.Search(ctx, q, 5)
	fmt.Printf("provider: %s\nerr: %v\n", prov.Name(), err)
	for i, r := range search.Dedupe(res) {
		fmt.Printf("%d. %s - %s\n", i+1, r.Title, r.URL)
	}
}
