package main

import (
	"fmt"
	"os"
	"time"

	auction "auction-engine/internal/auctionService"
	model "auction-engine/internal/models"
	"auction-engine/internal/notifier"
	"auction-engine/internal/registry"
	"auction-engine/internal/repository"
	"auction-engine/internal/scheduler"
	"auction-engine/internal/server"
)

func main() {

	repo := repository.NewMemoryRepo()
	lanes := registry.New()
	events := notifier.New()

	closer := scheduler.New(repo, repo, repo, lanes)
	defer closer.Stop()

	auctionSvc := auction.NewAuctionService(repo, repo, repo, lanes, events, closer, getAuctionWindow())

	prepopulateUsers(repo)

	// Re-register close tasks for anything left unsettled; overdue auctions
	// settle immediately.
	if err := closer.ResumePending(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to resume pending auctions: %v\n", err)
		os.Exit(1)
	}

	router := server.SetupRouter(auctionSvc, events)

	port := getPort()
	fmt.Printf("Starting auction server on %s...\n", port)
	if err := router.Run(port); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}
}

// prepopulateUsers seeds demo ledger accounts in the in-memory repo
func prepopulateUsers(repo *repository.MemoryRepo) {
	users := []model.User{
		{UserID: "user1", Username: "alice", Balance: 100_000},
		{UserID: "user2", Username: "bob", Balance: 100_000},
		{UserID: "user3", Username: "carol", Balance: 100_000},
	}

	for _, user := range users {
		repo.AddUser(user)
	}
}

// getPort returns the server port from env or defaults to ":8080"
func getPort() string {
	if p := os.Getenv("PORT"); p != "" {
		return fmt.Sprintf(":%s", p)
	}
	return ":8080"
}

// getAuctionWindow returns the bidding window from env or defaults to 24h
func getAuctionWindow() time.Duration {
	if w := os.Getenv("AUCTION_WINDOW"); w != "" {
		if d, err := time.ParseDuration(w); err == nil && d > 0 {
			return d
		}
		fmt.Fprintf(os.Stderr, "Ignoring invalid AUCTION_WINDOW %q\n", w)
	}
	return 24 * time.Hour
}
