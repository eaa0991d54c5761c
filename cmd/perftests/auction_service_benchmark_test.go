package perftests

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	auction "auction-engine/internal/auctionService"
	"auction-engine/internal/notifier"
	"auction-engine/internal/registry"
	"auction-engine/internal/repository"
	"auction-engine/internal/scheduler"
)

// newBenchStack wires a full service over the in-memory repo
func newBenchStack() (*auction.AuctionService, *repository.MemoryRepo, *scheduler.CloseScheduler) {
	repo := repository.NewMemoryRepo()
	lanes := registry.New()
	closer := scheduler.New(repo, repo, repo, lanes)
	svc := auction.NewAuctionService(repo, repo, repo, lanes, notifier.New(), closer, 24*time.Hour)
	return svc, repo, closer
}

// Benchmark 1: SubmitBid - isolated auctions (low contention)
func Benchmark_SubmitBid_IsolatedAuctions(b *testing.B) {
	svc, _, closer := newBenchStack()
	defer closer.Stop()

	auctionIDs := make([]string, b.N)
	for i := 0; i < b.N; i++ {
		a, err := svc.ListAuction("owner1", fmt.Sprintf("item %d", i), "benchmark item", 50)
		if err != nil {
			b.Fatalf("failed to list auction: %v", err)
		}
		auctionIDs[i] = a.AuctionID
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		bidderID := fmt.Sprintf("user_%d", i)
		if _, err := svc.SubmitBid(auctionIDs[i], bidderID, 100, ""); err != nil {
			b.Fatalf("failed to submit bid: %v", err)
		}
	}
}

// Benchmark 2: SubmitBid - one shared auction (high lane contention).
// Rejections are expected and counted; they still pay the full lane cost.
func Benchmark_SubmitBid_ConcurrentSharedAuction(b *testing.B) {
	svc, _, closer := newBenchStack()
	defer closer.Stop()

	shared, err := svc.ListAuction("owner1", "contested item", "benchmark item", 50)
	if err != nil {
		b.Fatalf("failed to list auction: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()

	var nextAmount, accepted, rejected int64
	nextAmount = 50

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			amount := atomic.AddInt64(&nextAmount, 1)
			_, err := svc.SubmitBid(shared.AuctionID, "user1", amount, "")
			if err != nil {
				atomic.AddInt64(&rejected, 1)
			} else {
				atomic.AddInt64(&accepted, 1)
			}
		}
	})

	b.StopTimer()
	b.ReportMetric(float64(accepted), "accepted")
	b.ReportMetric(float64(rejected), "rejected")
}

// Benchmark 3: settlement throughput across independent auctions
func Benchmark_Settle_IndependentAuctions(b *testing.B) {
	svc, repo, closer := newBenchStack()
	defer closer.Stop()

	auctionIDs := make([]string, b.N)
	for i := 0; i < b.N; i++ {
		a, err := svc.ListAuction("owner1", fmt.Sprintf("item %d", i), "benchmark item", 50)
		if err != nil {
			b.Fatalf("failed to list auction: %v", err)
		}
		auctionIDs[i] = a.AuctionID

		bidderID := fmt.Sprintf("user_%d", i)
		repo.AddUser(userWithBalance(bidderID, 1_000_000))
		if _, err := svc.SubmitBid(a.AuctionID, bidderID, 100, ""); err != nil {
			b.Fatalf("failed to submit bid: %v", err)
		}
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if err := closer.Settle(auctionIDs[i]); err != nil {
			b.Fatalf("failed to settle: %v", err)
		}
	}
}
