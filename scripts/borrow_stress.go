//go:build ignore
// +build ignore

// Manual concurrency stress check for the borrow workflow.
//
// Usage:
//
//	go run ./scripts/borrow_stress.go <book_id> <member1_id> [member2_id ...]
//
// Fires one goroutine per member, all borrowing the same book at once, then
// reports how many succeeded. With the uniq_active_loan index in place
// exactly one borrow must succeed; every other goroutine must see
// "already borrowed".
//
// Requires config/settings.json pointing at a database with the schema
// applied and the given book/member rows present.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"sync"

	"librarymanager/internal/config"
	"librarymanager/internal/logger"
	"librarymanager/internal/repositories"
	"librarymanager/internal/services"
	"librarymanager/internal/store"
)

func main() {
	if len(os.Args) < 3 {
		log.Fatal("Usage: go run ./scripts/borrow_stress.go <book_id> <member1_id> [member2_id ...]")
	}

	bookID, err := strconv.ParseInt(os.Args[1], 10, 64)
	if err != nil {
		log.Fatalf("invalid book id %q", os.Args[1])
	}
	var memberIDs []int64
	for _, arg := range os.Args[2:] {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			log.Fatalf("invalid member id %q", arg)
		}
		memberIDs = append(memberIDs, id)
	}

	cfg, err := config.Load("config/settings.json")
	if err != nil {
		log.Fatal(err)
	}
	lg, err := logger.New("warn")
	if err != nil {
		log.Fatal(err)
	}
	db, err := store.Open(cfg.Database)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close(db)

	loans := services.NewLoanService(
		db,
		repositories.NewLoanRepository(db),
		repositories.NewMemberRepository(db),
		lg,
	)

	results := make([]error, len(memberIDs))
	start := make(chan struct{})
	var wg sync.WaitGroup

	for i, memberID := range memberIDs {
		wg.Add(1)
		go func(idx int, mid int64) {
			defer wg.Done()
			<-start
			results[idx] = loans.Borrow(mid, bookID)
		}(i, memberID)
	}

	fmt.Printf("Firing %d concurrent borrows for book %d...\n", len(memberIDs), bookID)
	close(start)
	wg.Wait()

	var succeeded, rejected, failed int
	for i, err := range results {
		switch {
		case err == nil:
			succeeded++
			fmt.Printf("  [OK  ] member=%d borrowed the book\n", memberIDs[i])
		case errors.Is(err, services.ErrAlreadyBorrowed):
			rejected++
			fmt.Printf("  [BUSY] member=%d already borrowed\n", memberIDs[i])
		default:
			failed++
			fmt.Printf("  [ERR ] member=%d: %v\n", memberIDs[i], err)
		}
	}

	fmt.Printf("\nSucceeded: %d  Rejected: %d  Failed: %d\n", succeeded, rejected, failed)
	if succeeded != 1 {
		fmt.Println("INVARIANT VIOLATED: expected exactly one successful borrow")
		os.Exit(1)
	}
	fmt.Println("Invariant holds: exactly one ACTIVE loan was created.")
}
