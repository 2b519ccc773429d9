// Command benchmark measures round-trip latency against a live MediaWiki
// install. It needs SCRIPTORIUM_WIKI_URL and, for the authenticated
// sections, SCRIPTORIUM_USERNAME and SCRIPTORIUM_PASSWORD.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/askeland/scriptorium/wiki"
)

func newClient() (*wiki.Client, *wiki.Config, error) {
	config, err := wiki.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return wiki.NewClient(config, logger), config, nil
}

// measureSiteInfo times the cheapest possible API round trip.
func measureSiteInfo(ctx context.Context, client *wiki.Client) {
	fmt.Println("=== Site Info Round Trip ===")
	fmt.Println()

	start := time.Now()
	info, err := client.GetSiteInfo(ctx)
	if err != nil {
		fmt.Printf("   Error: %v\n", err)
		return
	}
	first := time.Since(start)
	fmt.Printf("   Wiki:       %s (%s)\n", info.SiteName, info.Generator)
	fmt.Printf("   First call: %v\n", first)

	// Second call reuses the pooled connection, so the delta is
	// roughly the TLS and TCP setup cost.
	start = time.Now()
	_, _ = client.GetSiteInfo(ctx)
	second := time.Since(start)
	fmt.Printf("   Warm call:  %v\n", second)
	fmt.Println()
}

// measurePageSnapshot times the combined info query that the connector
// issues for every bound page (tokens, protections, watch state).
func measurePageSnapshot(ctx context.Context, client *wiki.Client, title string) {
	fmt.Println("=== Page Snapshot ===")
	fmt.Println()

	start := time.Now()
	info, err := client.GetPageInfo(ctx, title)
	if err != nil {
		fmt.Printf("   Error: %v\n", err)
		return
	}
	elapsed := time.Since(start)
	fmt.Printf("   Title:   %s (exists=%v)\n", title, info.Exists)
	fmt.Printf("   Latency: %v\n", elapsed)
	fmt.Println()
}

// measureListingThroughput walks recent changes page by page and reports
// rows per second. This is the dominant cost of a full traversal.
func measureListingThroughput(ctx context.Context, client *wiki.Client, maxPages int) {
	fmt.Println("=== Listing Throughput ===")
	fmt.Println()

	var rows, pages int
	cursor := ""
	start := time.Now()
	for pages < maxPages {
		listing, err := client.RecentChanges(ctx, cursor, 100)
		if err != nil {
			fmt.Printf("   Error after %d pages: %v\n", pages, err)
			return
		}
		pages++
		rows += len(listing.Rows)
		if listing.Cursor == "" {
			break
		}
		cursor = listing.Cursor
	}
	elapsed := time.Since(start)

	fmt.Printf("   Pages fetched: %d\n", pages)
	fmt.Printf("   Rows:          %d\n", rows)
	fmt.Printf("   Total time:    %v\n", elapsed)
	if rows > 0 {
		fmt.Printf("   Per row:       %v\n", elapsed/time.Duration(rows))
	}
	fmt.Println()
}

// measureLogin times the two-step token handshake.
func measureLogin(ctx context.Context, client *wiki.Client, config *wiki.Config) {
	if !config.HasCredentials() {
		fmt.Println("=== Login (skipped, no credentials) ===")
		fmt.Println()
		return
	}

	fmt.Println("=== Login Handshake ===")
	fmt.Println()

	start := time.Now()
	if err := client.Login(ctx, config.Username, config.Password); err != nil {
		fmt.Printf("   Error: %v\n", err)
		return
	}
	elapsed := time.Since(start)
	fmt.Printf("   Login (two requests): %v\n", elapsed)

	user, err := client.CurrentUser(ctx)
	if err == nil {
		fmt.Printf("   Logged in as:         %s\n", user.Name)
	}

	start = time.Now()
	_ = client.Logout(ctx)
	fmt.Printf("   Logout:               %v\n", time.Since(start))
	fmt.Println()
}

func main() {
	fmt.Println("Scriptorium - Wiki Latency Measurements")
	fmt.Println("=======================================")
	fmt.Println()

	client, config, err := newClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	measureSiteInfo(ctx, client)
	measurePageSnapshot(ctx, client, "Main Page")
	measureListingThroughput(ctx, client, 3)
	measureLogin(ctx, client, config)
}
