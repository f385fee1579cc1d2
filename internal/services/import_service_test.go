package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"librarymanager/internal/logger"
	"librarymanager/internal/models"
	"librarymanager/internal/repositories"
	"librarymanager/internal/testutil"
)

func newImportFixture(t *testing.T) (*gorm.DB, ImportService) {
	t.Helper()
	db := testutil.OpenDB(t)
	svc := NewImportService(db,
		repositories.NewPublisherRepository(db),
		repositories.NewBookRepository(db),
		logger.NewNop())
	return db, svc
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "import_books.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestImportValidRows(t *testing.T) {
	db, svc := newImportFixture(t)

	path := writeCSV(t, "publisher_name,book_title,isbn,price\n"+
		"Albatros,First Book,978-1,100.00\n"+
		"Host,Second Book,978-2,200.50\n")

	result, err := svc.ImportBooksCSV(path)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Succeeded)
	assert.Empty(t, result.Errors)

	assert.EqualValues(t, 2, countRows(t, db, &models.Publisher{}))
	assert.EqualValues(t, 2, countRows(t, db, &models.Book{}))

	summary := result.Summary()
	assert.Contains(t, summary, "Success: 2")
	assert.Contains(t, summary, "Errors: 0")
}

func TestImportDuplicateISBNLeavesPriorDataIntact(t *testing.T) {
	db, svc := newImportFixture(t)

	publisher := testutil.SeedPublisher(t, db, "Argo")
	testutil.SeedBook(t, db, "Existing Book", "978-1", "50.00", publisher.PublisherID)

	path := writeCSV(t, "publisher_name,book_title,isbn,price\n"+
		"Albatros,Duplicate Book,978-1,100.00\n")

	result, err := svc.ImportBooksCSV(path)
	require.NoError(t, err)
	assert.Zero(t, result.Succeeded)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "Duplicate Book", result.Errors[0].Title)

	// The publisher insert from the failed row rolled back with the book.
	assert.EqualValues(t, 1, countRows(t, db, &models.Publisher{}))
	assert.EqualValues(t, 1, countRows(t, db, &models.Book{}))
}

func TestImportBadRowDoesNotAbortBatch(t *testing.T) {
	db, svc := newImportFixture(t)

	path := writeCSV(t, "publisher_name,book_title,isbn,price\n"+
		"Albatros,Broken Book,978-1,not-a-price\n"+
		"Host,Good Book,978-2,200.00\n")

	result, err := svc.ImportBooksCSV(path)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Succeeded)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 2, result.Errors[0].Line)
	assert.Equal(t, "Broken Book", result.Errors[0].Title)

	assert.EqualValues(t, 1, countRows(t, db, &models.Book{}))
	assert.Contains(t, result.Summary(), "Error Details:")
}

func TestImportMissingFile(t *testing.T) {
	_, svc := newImportFixture(t)

	_, err := svc.ImportBooksCSV(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestImportMissingColumn(t *testing.T) {
	_, svc := newImportFixture(t)

	path := writeCSV(t, "publisher_name,book_title,isbn\nAlbatros,Book,978-1\n")
	_, err := svc.ImportBooksCSV(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "price")
}
