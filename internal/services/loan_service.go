package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"librarymanager/internal/logger"
	"librarymanager/internal/models"
	"librarymanager/internal/repositories"
)

// ─── Sentinel Errors ──────────────────────────────────────────────────────────

var (
	// ErrAlreadyBorrowed is returned when the requested book already has an
	// ACTIVE loan.
	ErrAlreadyBorrowed = errors.New("book is already borrowed")

	// ErrNotBorrowed is returned when a return is attempted for a book with
	// no ACTIVE loan.
	ErrNotBorrowed = errors.New("book is not currently borrowed")

	// ErrMemberNotFound is returned when the borrowing member does not exist.
	ErrMemberNotFound = errors.New("member not found")

	// ErrTransactionFailed wraps a store-level failure during the borrow
	// transaction; the transaction has been rolled back.
	ErrTransactionFailed = errors.New("borrow transaction failed")

	// ErrUpdateFailed wraps a store-level failure while marking a loan
	// returned.
	ErrUpdateFailed = errors.New("return update failed")
)

// ─── Service Interface ────────────────────────────────────────────────────────

// LoanService implements the borrow/return workflow. Each operation owns its
// transaction boundary; nothing is held open between calls.
type LoanService interface {
	Borrow(memberID, bookID int64) error
	Return(bookID int64) error
	ActiveLoans() ([]models.ActiveLoan, error)
	BorrowedBookIDs() ([]int64, error)
}

// ─── Implementation ───────────────────────────────────────────────────────────

type loanService struct {
	db         *gorm.DB
	loanRepo   repositories.LoanRepository
	memberRepo repositories.MemberRepository
	log        *logger.Logger
}

// NewLoanService wires up all dependencies and returns a LoanService.
func NewLoanService(
	db *gorm.DB,
	loanRepo repositories.LoanRepository,
	memberRepo repositories.MemberRepository,
	log *logger.Logger,
) LoanService {
	return &loanService{
		db:         db,
		loanRepo:   loanRepo,
		memberRepo: memberRepo,
		log:        log,
	}
}

// ─── Borrow ───────────────────────────────────────────────────────────────────

// Borrow checks availability and, if the book is free, records the loan.
//
// Step 1 fails fast with ErrAlreadyBorrowed before any transaction is opened.
// Step 2 runs one transaction: insert the ACTIVE loan row and touch the
// member's activity timestamp; both commit together or not at all. A store
// failure rolls the whole transaction back and surfaces as
// ErrTransactionFailed with the cause attached. No retry is attempted.
//
// The availability check and the insert can still race against another
// session; the partial unique index on loans(book_id) WHERE status='ACTIVE'
// rejects the loser, which is reported as ErrAlreadyBorrowed as well.
func (s *loanService) Borrow(memberID, bookID int64) error {
	if _, err := s.loanRepo.FindActiveByBook(nil, bookID); err == nil {
		s.log.Warnw("borrow rejected, book already out", "member_id", memberID, "book_id", bookID)
		return ErrAlreadyBorrowed
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}

	now := time.Now().UTC()
	s.log.Infow("starting borrow transaction", "member_id", memberID, "book_id", bookID)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		loan := &models.Loan{
			MemberID: memberID,
			BookID:   bookID,
			LoanDate: now,
			Status:   models.LoanStatusActive,
		}
		if err := s.loanRepo.Create(tx, loan); err != nil {
			return err
		}
		return s.memberRepo.TouchActivity(tx, memberID, now)
	})
	if err != nil {
		s.log.Errorw("borrow transaction rolled back", "member_id", memberID, "book_id", bookID, "error", err)
		if isUniqueViolation(err) {
			return ErrAlreadyBorrowed
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}

	s.log.Infow("borrow transaction committed", "member_id", memberID, "book_id", bookID)
	return nil
}

// ─── Return ───────────────────────────────────────────────────────────────────

// Return transitions the book's ACTIVE loan to RETURNED and stamps the
// return date. The update is guarded on status, so a loan returned by a
// concurrent session reports ErrNotBorrowed rather than double-applying.
func (s *loanService) Return(bookID int64) error {
	loan, err := s.loanRepo.FindActiveByBook(nil, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotBorrowed
		}
		return fmt.Errorf("%w: %v", ErrUpdateFailed, err)
	}

	now := time.Now().UTC()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		return s.loanRepo.MarkReturned(tx, loan.LoanID, now)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotBorrowed
		}
		s.log.Errorw("return update failed", "book_id", bookID, "loan_id", loan.LoanID, "error", err)
		return fmt.Errorf("%w: %v", ErrUpdateFailed, err)
	}

	s.log.Infow("loan returned", "book_id", bookID, "loan_id", loan.LoanID)
	return nil
}

// ─── Queries ──────────────────────────────────────────────────────────────────

// ActiveLoans returns the display rows from view_active_loans.
func (s *loanService) ActiveLoans() ([]models.ActiveLoan, error) {
	return s.loanRepo.ListActive(nil)
}

// BorrowedBookIDs returns the ids of books with an ACTIVE loan.
func (s *loanService) BorrowedBookIDs() ([]int64, error) {
	return s.loanRepo.ActiveBookIDs(nil)
}

// ─── Internal Helpers ─────────────────────────────────────────────────────────

// isUniqueViolation matches unique-constraint errors from postgres (error
// code 23505) and sqlite (used by the test suite).
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "23505") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
