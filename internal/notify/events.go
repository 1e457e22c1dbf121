package notify

import "time"

// Event types published on the notification stream.
const (
	EventStudentAdmitted = "student.admitted"
	EventInvoiceIssued   = "invoice.issued"
	EventStudentPromoted = "student.promoted"
)

type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`

	StudentID       int    `json:"studentId,omitempty"`
	StudentUniqueID string `json:"studentUniqueId,omitempty"`
	CourseFullName  string `json:"courseFullName,omitempty"`

	InvoiceNumber string `json:"invoiceNumber,omitempty"`
	Amount        string `json:"amount,omitempty"`
	Installment   int    `json:"installment,omitempty"`
}

func StudentAdmitted(studentID int, uniqueID, courseName string) Event {
	return Event{
		Type:            EventStudentAdmitted,
		OccurredAt:      time.Now(),
		StudentID:       studentID,
		StudentUniqueID: uniqueID,
		CourseFullName:  courseName,
	}
}

func InvoiceIssued(studentID int, uniqueID, invoiceNumber, amount string, installment int) Event {
	return Event{
		Type:            EventInvoiceIssued,
		OccurredAt:      time.Now(),
		StudentID:       studentID,
		StudentUniqueID: uniqueID,
		InvoiceNumber:   invoiceNumber,
		Amount:          amount,
		Installment:     installment,
	}
}

func StudentPromoted(studentID int, uniqueID, nextOffering string) Event {
	return Event{
		Type:            EventStudentPromoted,
		OccurredAt:      time.Now(),
		StudentID:       studentID,
		StudentUniqueID: uniqueID,
		CourseFullName:  nextOffering,
	}
}
