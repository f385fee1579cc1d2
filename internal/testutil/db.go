// Package testutil opens throwaway SQLite databases carrying the same schema
// the application uses, so repository and service tests run against real SQL.
package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"librarymanager/internal/models"
)

const activeLoansViewDDL = `
CREATE VIEW view_active_loans AS
SELECT
    l.loan_id,
    l.member_id,
    m.full_name,
    m.email,
    l.book_id,
    b.title,
    l.loan_date
FROM loans l
JOIN members m ON m.member_id = l.member_id
JOIN books   b ON b.book_id   = l.book_id
WHERE l.status = 'ACTIVE'`

// OpenDB creates a temp-file SQLite database with migrated tables, the
// partial unique loan index and the active-loans view.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "library.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Publisher{},
		&models.Book{},
		&models.Member{},
		&models.Loan{},
	))
	require.NoError(t, db.Exec(activeLoansViewDDL).Error)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func SeedPublisher(t *testing.T, db *gorm.DB, name string) *models.Publisher {
	t.Helper()
	publisher := &models.Publisher{Name: name}
	require.NoError(t, db.Create(publisher).Error)
	return publisher
}

func SeedBook(t *testing.T, db *gorm.DB, title, isbn, price string, publisherID int64) *models.Book {
	t.Helper()
	book := &models.Book{
		Title:       title,
		ISBN:        isbn,
		Price:       decimal.RequireFromString(price),
		PublisherID: publisherID,
		IsActive:    true,
	}
	require.NoError(t, db.Create(book).Error)
	return book
}

func SeedMember(t *testing.T, db *gorm.DB, fullName, email string) *models.Member {
	t.Helper()
	member := &models.Member{
		FullName: fullName,
		Email:    email,
		JoinedAt: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Create(member).Error)
	return member
}
