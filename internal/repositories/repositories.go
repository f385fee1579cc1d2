package repositories

import (
	"time"

	"gorm.io/gorm"

	"librarymanager/internal/models"
)

type PublisherRepository interface {
	Create(db *gorm.DB, publisher *models.Publisher) error
	List(db *gorm.DB) ([]models.Publisher, error)
	GetByID(db *gorm.DB, id int64) (*models.Publisher, error)
}

type BookRepository interface {
	Create(db *gorm.DB, book *models.Book) error
	List(db *gorm.DB) ([]models.Book, error)
	GetByID(db *gorm.DB, id int64) (*models.Book, error)
	FindByISBN(db *gorm.DB, isbn string) (*models.Book, error)
	Delete(db *gorm.DB, id int64) error
}

type MemberRepository interface {
	GetByID(db *gorm.DB, id int64) (*models.Member, error)
	TouchActivity(db *gorm.DB, id int64, at time.Time) error
}

type LoanRepository interface {
	Create(db *gorm.DB, loan *models.Loan) error
	FindActiveByBook(db *gorm.DB, bookID int64) (*models.Loan, error)
	MarkReturned(db *gorm.DB, loanID int64, returnedAt time.Time) error
	ActiveBookIDs(db *gorm.DB) ([]int64, error)
	ListActive(db *gorm.DB) ([]models.ActiveLoan, error)
	CountByBook(db *gorm.DB, bookID int64) (int64, error)
}

// concrete implementations

type publisherRepository struct {
	db *gorm.DB
}

func NewPublisherRepository(db *gorm.DB) PublisherRepository {
	return &publisherRepository{db: db}
}

func (r *publisherRepository) Create(db *gorm.DB, publisher *models.Publisher) error {
	if db == nil {
		db = r.db
	}
	return db.Create(publisher).Error
}

func (r *publisherRepository) List(db *gorm.DB) ([]models.Publisher, error) {
	if db == nil {
		db = r.db
	}
	var publishers []models.Publisher
	if err := db.Order("publisher_id").Find(&publishers).Error; err != nil {
		return nil, err
	}
	return publishers, nil
}

func (r *publisherRepository) GetByID(db *gorm.DB, id int64) (*models.Publisher, error) {
	if db == nil {
		db = r.db
	}
	var publisher models.Publisher
	if err := db.First(&publisher, "publisher_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &publisher, nil
}

type bookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(db *gorm.DB, book *models.Book) error {
	if db == nil {
		db = r.db
	}
	return db.Create(book).Error
}

func (r *bookRepository) List(db *gorm.DB) ([]models.Book, error) {
	if db == nil {
		db = r.db
	}
	var books []models.Book
	if err := db.Order("book_id").Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

func (r *bookRepository) GetByID(db *gorm.DB, id int64) (*models.Book, error) {
	if db == nil {
		db = r.db
	}
	var book models.Book
	if err := db.First(&book, "book_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *bookRepository) FindByISBN(db *gorm.DB, isbn string) (*models.Book, error) {
	if db == nil {
		db = r.db
	}
	var book models.Book
	if err := db.First(&book, "isbn = ?", isbn).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *bookRepository) Delete(db *gorm.DB, id int64) error {
	if db == nil {
		db = r.db
	}
	res := db.Delete(&models.Book{}, "book_id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type memberRepository struct {
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) GetByID(db *gorm.DB, id int64) (*models.Member, error) {
	if db == nil {
		db = r.db
	}
	var member models.Member
	if err := db.First(&member, "member_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *memberRepository) TouchActivity(db *gorm.DB, id int64, at time.Time) error {
	if db == nil {
		db = r.db
	}
	res := db.Model(&models.Member{}).
		Where("member_id = ?", id).
		Update("joined_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type loanRepository struct {
	db *gorm.DB
}

func NewLoanRepository(db *gorm.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) Create(db *gorm.DB, loan *models.Loan) error {
	if db == nil {
		db = r.db
	}
	return db.Create(loan).Error
}

func (r *loanRepository) FindActiveByBook(db *gorm.DB, bookID int64) (*models.Loan, error) {
	if db == nil {
		db = r.db
	}
	var loan models.Loan
	err := db.
		Where("book_id = ? AND status = ?", bookID, models.LoanStatusActive).
		First(&loan).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// MarkReturned flips an ACTIVE loan to RETURNED. The status guard in the
// WHERE clause means a loan that was already returned (or never active)
// reports gorm.ErrRecordNotFound instead of silently rewriting history.
func (r *loanRepository) MarkReturned(db *gorm.DB, loanID int64, returnedAt time.Time) error {
	if db == nil {
		db = r.db
	}
	res := db.Model(&models.Loan{}).
		Where("loan_id = ? AND status = ?", loanID, models.LoanStatusActive).
		Updates(map[string]interface{}{
			"status":      models.LoanStatusReturned,
			"return_date": returnedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *loanRepository) ActiveBookIDs(db *gorm.DB) ([]int64, error) {
	if db == nil {
		db = r.db
	}
	var ids []int64
	err := db.Model(&models.Loan{}).
		Where("status = ?", models.LoanStatusActive).
		Order("book_id").
		Pluck("book_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *loanRepository) ListActive(db *gorm.DB) ([]models.ActiveLoan, error) {
	if db == nil {
		db = r.db
	}
	var loans []models.ActiveLoan
	if err := db.Order("loan_id").Find(&loans).Error; err != nil {
		return nil, err
	}
	return loans, nil
}

func (r *loanRepository) CountByBook(db *gorm.DB, bookID int64) (int64, error) {
	if db == nil {
		db = r.db
	}
	var count int64
	err := db.Model(&models.Loan{}).
		Where("book_id = ?", bookID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
