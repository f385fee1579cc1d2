package services

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"librarymanager/internal/models"
)

// topBorrowersQuery aggregates loan count and total borrowed value per
// member across members, loans and books.
const topBorrowersQuery = `
SELECT
    m.full_name,
    m.email,
    COUNT(l.loan_id)            AS total_loans,
    COALESCE(SUM(b.price), 0)   AS total_value_borrowed
FROM members m
JOIN loans l ON l.member_id = m.member_id
JOIN books b ON b.book_id = l.book_id
GROUP BY m.member_id, m.full_name, m.email
ORDER BY total_value_borrowed DESC`

// ReportService produces the aggregated borrowing report.
type ReportService interface {
	TopBorrowers() ([]models.BorrowerStats, error)
}

type reportService struct {
	db *gorm.DB
}

func NewReportService(db *gorm.DB) ReportService {
	return &reportService{db: db}
}

func (s *reportService) TopBorrowers() ([]models.BorrowerStats, error) {
	var stats []models.BorrowerStats
	if err := s.db.Raw(topBorrowersQuery).Scan(&stats).Error; err != nil {
		return nil, fmt.Errorf("generate report: %w", err)
	}
	return stats, nil
}

// FormatReport renders the fixed-width text block printed by the CLI.
func FormatReport(stats []models.BorrowerStats) string {
	var b strings.Builder
	b.WriteString("\n=== LIBRARY BORROWING REPORT ===\n")
	fmt.Fprintf(&b, "%-25s | %-5s | %-10s\n", "Member Name", "Loans", "Total Value")
	b.WriteString(strings.Repeat("-", 50) + "\n")
	for _, row := range stats {
		fmt.Fprintf(&b, "%-25s | %-5d | %-10s\n",
			row.FullName, row.TotalLoans, row.TotalValueBorrowed.StringFixed(2))
	}
	b.WriteString("================================\n")
	return b.String()
}
