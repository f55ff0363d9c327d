package models

import "time"

// Event types
const (
	EventTypeBookReserved       = "BOOK_RESERVED"
	EventTypeReservationDropped = "RESERVATION_CANCELLED"
	EventTypeBookIssued         = "BOOK_ISSUED"
	EventTypeBookReturned       = "BOOK_RETURNED"
	EventTypeFineAssessed       = "FINE_ASSESSED"
	EventTypePaymentReceived    = "PAYMENT_RECEIVED"
	EventTypeOverdueReminder    = "OVERDUE_REMINDER"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// BookReservedEvent published when a book is reserved
type BookReservedEvent struct {
	BaseEvent
	BookID     int64     `json:"book_id"`
	Title      string    `json:"title"`
	UserID     int64     `json:"user_id"`
	UserName   string    `json:"user_name"`
	UserEmail  string    `json:"user_email"`
	ReservedAt time.Time `json:"reserved_at"`
}

// ReservationCancelledEvent published when a hold is dropped
type ReservationCancelledEvent struct {
	BaseEvent
	BookID    int64  `json:"book_id"`
	Title     string `json:"title"`
	UserID    int64  `json:"user_id"`
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
}

// BookIssuedEvent published when a book is issued to a member
type BookIssuedEvent struct {
	BaseEvent
	BookID    int64     `json:"book_id"`
	Title     string    `json:"title"`
	UserID    int64     `json:"user_id"`
	UserName  string    `json:"user_name"`
	UserEmail string    `json:"user_email"`
	DueDate   time.Time `json:"due_date"`
}

// BookReturnedEvent published when a book comes back, with any fine assessed
type BookReturnedEvent struct {
	BaseEvent
	BookID     int64     `json:"book_id"`
	Title      string    `json:"title"`
	UserID     int64     `json:"user_id"`
	UserEmail  string    `json:"user_email"`
	Fine       int64     `json:"fine"`
	ReturnedAt time.Time `json:"returned_at"`
}

// FineAssessedEvent published when an overdue return incurs a fine
type FineAssessedEvent struct {
	BaseEvent
	BookID    int64  `json:"book_id"`
	Title     string `json:"title"`
	UserID    int64  `json:"user_id"`
	UserEmail string `json:"user_email"`
	Amount    int64  `json:"amount"`
	DaysLate  int    `json:"days_late"`
}

// PaymentReceivedEvent published when a fine payment is verified and settled
type PaymentReceivedEvent struct {
	BaseEvent
	BookID    int64  `json:"book_id"`
	UserID    int64  `json:"user_id"`
	UserEmail string `json:"user_email"`
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
}

// OverdueReminderEvent published by the reminder sweep for each overdue loan
type OverdueReminderEvent struct {
	BaseEvent
	BookID    int64     `json:"book_id"`
	Title     string    `json:"title"`
	UserID    int64     `json:"user_id"`
	UserName  string    `json:"user_name"`
	UserEmail string    `json:"user_email"`
	DueDate   time.Time `json:"due_date"`
	Fine      int64     `json:"fine"`
}
