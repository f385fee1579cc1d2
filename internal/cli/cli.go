// Package cli presents the numbered menu and translates user input into
// service calls. Every failure is printed as a message; only menu option 0
// leaves the loop.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"librarymanager/internal/logger"
	"librarymanager/internal/models"
	"librarymanager/internal/repositories"
	"librarymanager/internal/services"
)

const defaultImportFile = "import_books.csv"

type App struct {
	in  *bufio.Scanner
	out io.Writer

	books      repositories.BookRepository
	publishers repositories.PublisherRepository
	loans      services.LoanService
	importer   services.ImportService
	reports    services.ReportService
	log        *logger.Logger

	importDir string
}

func New(
	in io.Reader,
	out io.Writer,
	books repositories.BookRepository,
	publishers repositories.PublisherRepository,
	loans services.LoanService,
	importer services.ImportService,
	reports services.ReportService,
	log *logger.Logger,
	importDir string,
) *App {
	return &App{
		in:         bufio.NewScanner(in),
		out:        out,
		books:      books,
		publishers: publishers,
		loans:      loans,
		importer:   importer,
		reports:    reports,
		log:        log,
		importDir:  importDir,
	}
}

// Run drives the menu loop until the user exits or input ends.
func (a *App) Run() {
	for {
		a.printMenu()
		choice, ok := a.readLine("Select an option: ")
		if !ok {
			return
		}
		if choice == "0" {
			fmt.Fprintln(a.out, "Exiting application. Goodbye!")
			return
		}
		a.dispatch(choice)
	}
}

// dispatch recovers per action so one misbehaving handler cannot take down
// the whole session.
func (a *App) dispatch(choice string) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Errorw("menu action panicked", "choice", choice, "panic", r)
			fmt.Fprintf(a.out, "Unexpected Application Error: %v\n", r)
		}
	}()

	switch choice {
	case "1":
		a.listBooks()
	case "2":
		a.addBook()
	case "3":
		a.borrowBook()
	case "4":
		a.showActiveLoans()
	case "5":
		a.importCSV()
	case "6":
		a.showReport()
	case "7":
		a.deleteBook()
	case "8":
		a.returnBook()
	default:
		fmt.Fprintln(a.out, "Invalid choice, please try again.")
	}
}

func (a *App) printMenu() {
	fmt.Fprint(a.out, "\n"+strings.Repeat("=", 30)+"\n")
	fmt.Fprintln(a.out, "   LIBRARY MANAGER v1.0")
	fmt.Fprintln(a.out, strings.Repeat("=", 30))
	fmt.Fprintln(a.out, "1. List All Books")
	fmt.Fprintln(a.out, "2. Add New Book")
	fmt.Fprintln(a.out, "3. Borrow a Book (Transaction)")
	fmt.Fprintln(a.out, "4. Show Active Loans")
	fmt.Fprintln(a.out, "5. Import Books from CSV")
	fmt.Fprintln(a.out, "6. Generate Statistics Report")
	fmt.Fprintln(a.out, "7. Delete a Book")
	fmt.Fprintln(a.out, "8. Return a Book")
	fmt.Fprintln(a.out, "0. Exit")
	fmt.Fprintln(a.out, strings.Repeat("-", 30))
}

// ------------------ input helpers ------------------

func (a *App) readLine(prompt string) (string, bool) {
	fmt.Fprint(a.out, prompt)
	if !a.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(a.in.Text()), true
}

func (a *App) readInt64(prompt string) (int64, error) {
	raw, ok := a.readLine(prompt)
	if !ok {
		return 0, io.EOF
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", raw)
	}
	return id, nil
}

func (a *App) readDecimal(prompt string) (decimal.Decimal, error) {
	raw, ok := a.readLine(prompt)
	if !ok {
		return decimal.Zero, io.EOF
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%q is not a number", raw)
	}
	return d, nil
}

// ------------------ menu actions ------------------

func (a *App) listBooks() {
	fmt.Fprintln(a.out, "\n--- Book List ---")
	books, err := a.books.List(nil)
	if err != nil {
		fmt.Fprintf(a.out, "Error fetching books: %v\n", err)
		return
	}
	if len(books) == 0 {
		fmt.Fprintln(a.out, "No books found.")
		return
	}
	for _, b := range books {
		status := "Active"
		if !b.IsActive {
			status = "Inactive"
		}
		fmt.Fprintf(a.out, "[%d] %s (ISBN: %s) - %s [%s]\n",
			b.BookID, b.Title, b.ISBN, b.Price.StringFixed(2), status)
	}
}

func (a *App) addBook() {
	fmt.Fprintln(a.out, "\n--- Add New Book ---")
	title, ok := a.readLine("Title: ")
	if !ok {
		return
	}
	isbn, ok := a.readLine("ISBN: ")
	if !ok {
		return
	}
	price, err := a.readDecimal("Price: ")
	if err != nil {
		fmt.Fprintln(a.out, "Error: Invalid input format (e.g. price must be a number).")
		return
	}

	publisherID := int64(1)
	if raw, ok := a.readLine("Publisher ID (default 1): "); ok && raw != "" {
		publisherID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			fmt.Fprintln(a.out, "Error: Invalid input format (e.g. price must be a number).")
			return
		}
	}
	if _, err := a.publishers.GetByID(nil, publisherID); err != nil {
		fmt.Fprintf(a.out, "Error: Publisher ID %d does not exist.\n", publisherID)
		return
	}

	book := &models.Book{
		Title:       title,
		ISBN:        isbn,
		Price:       price,
		PublisherID: publisherID,
		IsActive:    true,
	}
	if err := a.books.Create(nil, book); err != nil {
		fmt.Fprintf(a.out, "Failed to add book: %v\n", err)
		return
	}
	fmt.Fprintf(a.out, "Success: Book '%s' added with ID %d.\n", book.Title, book.BookID)
}

func (a *App) borrowBook() {
	fmt.Fprintln(a.out, "\n--- Borrow Book ---")
	memberID, err := a.readInt64("Member ID (e.g., 1): ")
	if err != nil {
		fmt.Fprintln(a.out, "Error: IDs must be numbers.")
		return
	}
	bookID, err := a.readInt64("Book ID to borrow: ")
	if err != nil {
		fmt.Fprintln(a.out, "Error: IDs must be numbers.")
		return
	}

	fmt.Fprintln(a.out, "Processing transaction...")
	switch err := a.loans.Borrow(memberID, bookID); {
	case err == nil:
		fmt.Fprintln(a.out, "Result: Success: Book borrowed.")
	case errors.Is(err, services.ErrAlreadyBorrowed):
		fmt.Fprintf(a.out, "Result: Error: Book ID %d is already borrowed.\n", bookID)
	case errors.Is(err, services.ErrMemberNotFound):
		fmt.Fprintf(a.out, "Result: Error: Member ID %d does not exist.\n", memberID)
	default:
		fmt.Fprintf(a.out, "Result: Transaction Failed: %v\n", err)
	}
}

func (a *App) returnBook() {
	fmt.Fprintln(a.out, "\n--- Return Book ---")
	bookID, err := a.readInt64("Book ID to return: ")
	if err != nil {
		fmt.Fprintln(a.out, "Error: IDs must be numbers.")
		return
	}

	switch err := a.loans.Return(bookID); {
	case err == nil:
		fmt.Fprintln(a.out, "Result: Success: Book returned.")
	case errors.Is(err, services.ErrNotBorrowed):
		fmt.Fprintf(a.out, "Result: Error: Book ID %d is not currently borrowed.\n", bookID)
	default:
		fmt.Fprintf(a.out, "Result: Error returning book: %v\n", err)
	}
}

func (a *App) showActiveLoans() {
	fmt.Fprintln(a.out, "\n--- Active Loans ---")
	loans, err := a.loans.ActiveLoans()
	if err != nil {
		fmt.Fprintf(a.out, "Error fetching loans: %v\n", err)
		return
	}
	if len(loans) == 0 {
		fmt.Fprintln(a.out, "No active loans.")
		return
	}
	for _, l := range loans {
		fmt.Fprintf(a.out, "Loan [%d] | %s borrowed '%s' on %s\n",
			l.LoanID, l.FullName, l.Title, l.LoanDate.Format("2006-01-02 15:04:05"))
	}
}

func (a *App) importCSV() {
	filename, ok := a.readLine(fmt.Sprintf("Enter filename in /%s folder (default: %s): ", a.importDir, defaultImportFile))
	if !ok {
		return
	}
	if filename == "" {
		filename = defaultImportFile
	}

	fmt.Fprintf(a.out, "Importing from %s...\n", filename)
	result, err := a.importer.ImportBooksCSV(filepath.Join(a.importDir, filename))
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(a.out, result.Summary())
}

func (a *App) showReport() {
	stats, err := a.reports.TopBorrowers()
	if err != nil {
		fmt.Fprintf(a.out, "Error generating report: %v\n", err)
		return
	}
	fmt.Fprint(a.out, services.FormatReport(stats))
}

func (a *App) deleteBook() {
	fmt.Fprintln(a.out, "\n--- Delete Book ---")
	bookID, err := a.readInt64("Enter Book ID to delete: ")
	if err != nil {
		fmt.Fprintln(a.out, "Error: ID must be a number.")
		return
	}

	confirm, ok := a.readLine(fmt.Sprintf("Are you sure you want to delete book %d? (yes/no): ", bookID))
	if !ok {
		return
	}
	if !strings.EqualFold(confirm, "yes") {
		fmt.Fprintln(a.out, "Deletion cancelled.")
		return
	}

	switch err := a.books.Delete(nil, bookID); {
	case err == nil:
		fmt.Fprintln(a.out, "Book deleted successfully.")
	case errors.Is(err, gorm.ErrRecordNotFound):
		fmt.Fprintln(a.out, "Failed to delete book (maybe ID does not exist).")
	default:
		fmt.Fprintf(a.out, "Failed to delete book: %v\n", err)
	}
}
