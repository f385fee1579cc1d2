package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"librarymanager/internal/logger"
	"librarymanager/internal/models"
	"librarymanager/internal/repositories"
)

// importColumns are the header names a CSV file must carry.
var importColumns = []string{"publisher_name", "book_title", "isbn", "price"}

// ImportRowError records one failed CSV record without aborting the batch.
type ImportRowError struct {
	Line  int
	Title string
	Err   error
}

// ImportResult accumulates per-row outcomes of one import run.
type ImportResult struct {
	BatchID   uuid.UUID
	Succeeded int
	Errors    []ImportRowError
}

// Summary renders the result in the format the CLI prints.
func (r *ImportResult) Summary() string {
	var b strings.Builder
	b.WriteString("\n--- Import Finished ---\n")
	fmt.Fprintf(&b, "Success: %d\nErrors: %d", r.Succeeded, len(r.Errors))
	if len(r.Errors) > 0 {
		b.WriteString("\nError Details:")
		for _, e := range r.Errors {
			fmt.Fprintf(&b, "\nFailed to import %s (line %d): %v", e.Title, e.Line, e.Err)
		}
	}
	return b.String()
}

// ImportService ingests delimited files into publishers and books.
type ImportService interface {
	ImportBooksCSV(path string) (*ImportResult, error)
}

type importService struct {
	db            *gorm.DB
	publisherRepo repositories.PublisherRepository
	bookRepo      repositories.BookRepository
	log           *logger.Logger
}

func NewImportService(
	db *gorm.DB,
	publisherRepo repositories.PublisherRepository,
	bookRepo repositories.BookRepository,
	log *logger.Logger,
) ImportService {
	return &importService{
		db:            db,
		publisherRepo: publisherRepo,
		bookRepo:      bookRepo,
		log:           log,
	}
}

// ImportBooksCSV reads the file at path and inserts one publisher and one
// dependent book per record, each record in its own transaction. A failing
// record (unparseable price, duplicate ISBN, ...) rolls back only its own
// writes and is collected into the result; the batch continues. A missing
// file or unusable header aborts the whole run.
func (s *importService) ImportBooksCSV(path string) (*ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open import file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read import header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, required := range importColumns {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("import file is missing column %q", required)
		}
	}

	result := &ImportResult{BatchID: uuid.New()}
	s.log.Infow("starting CSV import", "batch_id", result.BatchID, "file", path)

	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			result.Errors = append(result.Errors, ImportRowError{Line: line, Title: "Unknown", Err: err})
			continue
		}

		publisherName := strings.TrimSpace(record[col["publisher_name"]])
		title := strings.TrimSpace(record[col["book_title"]])
		isbn := strings.TrimSpace(record[col["isbn"]])

		price, err := decimal.NewFromString(strings.TrimSpace(record[col["price"]]))
		if err != nil {
			result.Errors = append(result.Errors, ImportRowError{
				Line:  line,
				Title: title,
				Err:   fmt.Errorf("invalid price %q", record[col["price"]]),
			})
			continue
		}

		err = s.db.Transaction(func(tx *gorm.DB) error {
			publisher := &models.Publisher{Name: publisherName}
			if err := s.publisherRepo.Create(tx, publisher); err != nil {
				return err
			}
			book := &models.Book{
				Title:       title,
				ISBN:        isbn,
				Price:       price,
				PublisherID: publisher.PublisherID,
				IsActive:    true,
			}
			return s.bookRepo.Create(tx, book)
		})
		if err != nil {
			s.log.Warnw("import row failed", "batch_id", result.BatchID, "line", line, "title", title, "error", err)
			result.Errors = append(result.Errors, ImportRowError{Line: line, Title: title, Err: err})
			continue
		}

		result.Succeeded++
	}

	s.log.Infow("CSV import finished",
		"batch_id", result.BatchID, "succeeded", result.Succeeded, "failed", len(result.Errors))
	return result, nil
}
