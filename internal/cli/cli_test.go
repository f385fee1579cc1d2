package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"librarymanager/internal/logger"
	"librarymanager/internal/repositories"
	"librarymanager/internal/services"
	"librarymanager/internal/testutil"
)

// runScripted seeds member 1 and book 1, feeds the menu the given input and
// returns everything printed.
func runScripted(t *testing.T, input string) string {
	t.Helper()
	db := testutil.OpenDB(t)
	publisher := testutil.SeedPublisher(t, db, "Argo")
	testutil.SeedMember(t, db, "Jan Novak", "jan@example.com")
	testutil.SeedBook(t, db, "The Silent Library", "978-1", "450.00", publisher.PublisherID)

	publisherRepo := repositories.NewPublisherRepository(db)
	bookRepo := repositories.NewBookRepository(db)
	memberRepo := repositories.NewMemberRepository(db)
	loanRepo := repositories.NewLoanRepository(db)
	log := logger.NewNop()

	var out bytes.Buffer
	app := New(
		strings.NewReader(input), &out,
		bookRepo, publisherRepo,
		services.NewLoanService(db, loanRepo, memberRepo, log),
		services.NewImportService(db, publisherRepo, bookRepo, log),
		services.NewReportService(db),
		log, t.TempDir(),
	)
	app.Run()
	return out.String()
}

func TestBorrowReturnScenario(t *testing.T) {
	// Borrow book 1 for member 1, borrow again, return, list active loans.
	out := runScripted(t, "3\n1\n1\n3\n1\n1\n8\n1\n4\n0\n")

	assert.Contains(t, out, "Success: Book borrowed.")
	assert.Contains(t, out, "Error: Book ID 1 is already borrowed.")
	assert.Contains(t, out, "Success: Book returned.")
	assert.Contains(t, out, "No active loans.")
	assert.Contains(t, out, "Exiting application. Goodbye!")
}

func TestActiveLoansListing(t *testing.T) {
	out := runScripted(t, "3\n1\n1\n4\n0\n")

	assert.Contains(t, out, "Jan Novak borrowed 'The Silent Library'")
}

func TestReturnWithoutLoan(t *testing.T) {
	out := runScripted(t, "8\n1\n0\n")

	assert.Contains(t, out, "Error: Book ID 1 is not currently borrowed.")
}

func TestNonNumericInput(t *testing.T) {
	out := runScripted(t, "3\nabc\n0\n")

	assert.Contains(t, out, "Error: IDs must be numbers.")
}

func TestInvalidMenuChoice(t *testing.T) {
	out := runScripted(t, "9\n0\n")

	assert.Contains(t, out, "Invalid choice, please try again.")
}

func TestDeleteBookConfirmCancel(t *testing.T) {
	out := runScripted(t, "7\n1\nno\n1\n0\n")

	assert.Contains(t, out, "Deletion cancelled.")
	// The book is still listed afterwards.
	assert.Contains(t, out, "The Silent Library")
}

func TestAddBookThenList(t *testing.T) {
	// Title, ISBN, price, default publisher, then list.
	out := runScripted(t, "2\nNew Arrival\n978-9\n150.00\n\n1\n0\n")

	assert.Contains(t, out, "Success: Book 'New Arrival' added")
	assert.Contains(t, out, "[2] New Arrival (ISBN: 978-9)")
}

func TestAddBookRejectsBadPrice(t *testing.T) {
	out := runScripted(t, "2\nNew Arrival\n978-9\ncheap\n0\n")

	assert.Contains(t, out, "Error: Invalid input format")
}

func TestDeleteMissingBook(t *testing.T) {
	out := runScripted(t, "7\n42\nyes\n0\n")

	assert.Contains(t, out, "Failed to delete book (maybe ID does not exist).")
}
