package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type LoanStatus string

const (
	LoanStatusActive   LoanStatus = "ACTIVE"
	LoanStatusReturned LoanStatus = "RETURNED"
)

type Publisher struct {
	PublisherID int64  `gorm:"primaryKey;autoIncrement" json:"publisher_id"`
	Name        string `gorm:"size:255;not null" json:"name"`
}

type Book struct {
	BookID      int64           `gorm:"primaryKey;autoIncrement" json:"book_id"`
	Title       string          `gorm:"size:255;not null" json:"title"`
	ISBN        string          `gorm:"column:isbn;size:32;not null;uniqueIndex" json:"isbn"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	PublisherID int64           `gorm:"not null;index" json:"publisher_id"`
	Publisher   Publisher       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`
	IsActive    bool            `gorm:"not null;default:true" json:"is_active"`
}

type Member struct {
	MemberID int64  `gorm:"primaryKey;autoIncrement" json:"member_id"`
	FullName string `gorm:"size:255;not null" json:"full_name"`
	Email    string `gorm:"size:255;not null" json:"email"`
	// JoinedAt doubles as the member's last-activity timestamp; borrowing
	// touches it inside the loan transaction.
	JoinedAt time.Time `gorm:"not null" json:"joined_at"`
}

type Loan struct {
	LoanID   int64  `gorm:"primaryKey;autoIncrement" json:"loan_id"`
	MemberID int64  `gorm:"not null;index" json:"member_id"`
	Member   Member `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`
	// The partial unique index keeps at most one ACTIVE loan per book even
	// when two sessions race between the availability check and the insert.
	BookID     int64      `gorm:"not null;index:uniq_active_loan,unique,where:status = 'ACTIVE'" json:"book_id"`
	Book       Book       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`
	LoanDate   time.Time  `gorm:"not null" json:"loan_date"`
	Status     LoanStatus `gorm:"size:16;not null;index" json:"status"`
	ReturnDate *time.Time `json:"return_date"`
}

// ActiveLoan is the read model projected by the view_active_loans view.
type ActiveLoan struct {
	LoanID   int64     `gorm:"column:loan_id" json:"loan_id"`
	MemberID int64     `gorm:"column:member_id" json:"member_id"`
	FullName string    `gorm:"column:full_name" json:"full_name"`
	Email    string    `gorm:"column:email" json:"email"`
	BookID   int64     `gorm:"column:book_id" json:"book_id"`
	Title    string    `gorm:"column:title" json:"title"`
	LoanDate time.Time `gorm:"column:loan_date" json:"loan_date"`
}

func (ActiveLoan) TableName() string { return "view_active_loans" }

// BorrowerStats is one row of the aggregated borrowing report.
type BorrowerStats struct {
	FullName           string          `gorm:"column:full_name" json:"full_name"`
	Email              string          `gorm:"column:email" json:"email"`
	TotalLoans         int64           `gorm:"column:total_loans" json:"total_loans"`
	TotalValueBorrowed decimal.Decimal `gorm:"column:total_value_borrowed" json:"total_value_borrowed"`
}
