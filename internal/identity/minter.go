// Package identity mints the two natural keys of the system: student unique
// IDs (BA-25-001) and invoice numbers (INV202508290001). Minting scans the
// existing keys for the highest suffix; the unique constraint in the store is
// the source of truth, so callers mint and insert inside one transaction and
// re-mint with a higher offset when the insert collides.
package identity

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

var (
	// StudentIDRegexp matches IDs like BA-25-001.
	StudentIDRegexp = regexp.MustCompile(`^[A-Z]{1,10}-\d{2}-\d{3}$`)
	// InvoiceNumberRegexp matches numbers like INV202508290001.
	InvoiceNumberRegexp = regexp.MustCompile(`^INV\d{8}\d{4}$`)
)

// ErrIDCollision is returned when the bounded retry budget is exhausted.
var ErrIDCollision = errors.New("identifier collision retry limit reached")

// MaxMintRetries bounds the mint-insert-retry loop.
const MaxMintRetries = 5

// FormatStudentID renders <SHORT>-<YY>-<NNN>.
func FormatStudentID(courseShort string, year int, n int) string {
	return fmt.Sprintf("%s-%02d-%03d", strings.ToUpper(courseShort), year%100, n)
}

// FormatInvoiceNumber renders INV<YYYYMMDD><NNNN>.
func FormatInvoiceNumber(t time.Time, n int) string {
	return fmt.Sprintf("INV%s%04d", t.UTC().Format("20060102"), n)
}

// MaxStudentSuffix extracts the highest numeric suffix from existing IDs.
// Malformed IDs are skipped.
func MaxStudentSuffix(ids []string) int {
	max := 0
	for _, id := range ids {
		parts := strings.Split(id, "-")
		if len(parts) < 3 {
			continue
		}
		n, err := strconv.Atoi(parts[2])
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max
}

// NextStudentID yields the candidate ID for the given course and admission
// year. offset is the retry attempt: 0 gives max+1, 1 gives max+2 and so on.
func NextStudentID(ctx context.Context, idb bun.IDB, courseShort string, year int, offset int) (string, error) {
	if offset >= MaxMintRetries {
		return "", ErrIDCollision
	}

	pattern := fmt.Sprintf("%s-%02d-%%", strings.ToUpper(courseShort), year%100)

	var ids []string
	err := idb.NewSelect().
		Table("students").
		Column("student_unique_id").
		Where("student_unique_id LIKE ?", pattern).
		Scan(ctx, &ids)
	if err != nil {
		return "", fmt.Errorf("scanning existing student ids: %w", err)
	}

	return FormatStudentID(courseShort, year, MaxStudentSuffix(ids)+1+offset), nil
}

// NextInvoiceNumber yields the candidate invoice number for the given
// instant: INV<date><count+1+offset>.
func NextInvoiceNumber(ctx context.Context, idb bun.IDB, now time.Time, offset int) (string, error) {
	if offset >= MaxMintRetries {
		return "", ErrIDCollision
	}

	pattern := fmt.Sprintf("INV%s%%", now.UTC().Format("20060102"))

	count, err := idb.NewSelect().
		Table("invoices").
		Where("invoice_number LIKE ?", pattern).
		Count(ctx)
	if err != nil {
		return "", fmt.Errorf("counting today's invoices: %w", err)
	}

	return FormatInvoiceNumber(now, count+1+offset), nil
}
