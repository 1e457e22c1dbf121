package invoice

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Invoice is the immutable receipt for one installment payment. The
// matching ledger slot is written in the same transaction.
type Invoice struct {
	bun.BaseModel `bun:"table:invoices,alias:inv"`

	ID        int `bun:"id,pk,autoincrement" json:"id"`
	StudentID int `bun:"student_id,notnull" json:"studentId"`
	CourseID  int `bun:"course_id,nullzero" json:"courseId"`

	Number   string          `bun:"invoice_number,unique,notnull" json:"invoiceNumber"`
	DateTime time.Time       `bun:"date_time,notnull,default:current_timestamp" json:"dateTime"`
	Amount   decimal.Decimal `bun:"invoice_amount,notnull,type:numeric(10,2)" json:"amount"`

	OriginalPrinted   bool `bun:"original_invoice_printed,notnull,default:false" json:"originalPrinted"`
	InstallmentNumber int  `bun:"installment_number,notnull" json:"installmentNumber"`
}
