package models

import "time"

// Book represents a catalog record and its circulation state
type Book struct {
	ID              int64      `db:"id" json:"id"`
	AccessionNumber string     `db:"accession_number" json:"accession_number"`
	CallNumber      string     `db:"call_number" json:"call_number,omitempty"`
	Title           string     `db:"title" json:"title"`
	Author          string     `db:"author" json:"author"`
	Publisher       string     `db:"publisher" json:"publisher,omitempty"`
	PublishedYear   int        `db:"published_year" json:"published_year,omitempty"`
	ISBN            string     `db:"isbn" json:"isbn,omitempty"`
	Pages           int        `db:"pages" json:"pages,omitempty"`
	Price           int64      `db:"price" json:"price,omitempty"`
	Department      string     `db:"department" json:"department"`
	CoverType       string     `db:"cover_type" json:"cover_type,omitempty"`
	Status          string     `db:"status" json:"status"`
	ReservedBy      *int64     `db:"reserved_by" json:"reserved_by,omitempty"`
	ReservedAt      *time.Time `db:"reserved_at" json:"reserved_at,omitempty"`
	IssuedTo        *int64     `db:"issued_to" json:"issued_to,omitempty"`
	IssuedAt        *time.Time `db:"issued_at" json:"issued_at,omitempty"`
	DueDate         *time.Time `db:"due_date" json:"due_date,omitempty"`
	Fine            int64      `db:"fine" json:"fine"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// User represents a library member
type User struct {
	ID         int64     `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Email      string    `db:"email" json:"email"`
	Role       string    `db:"role" json:"role"`
	Department string    `db:"department" json:"department"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Payment represents a fine settlement through the payment gateway
type Payment struct {
	ID               int64     `db:"id" json:"id"`
	BookID           int64     `db:"book_id" json:"book_id"`
	UserID           int64     `db:"user_id" json:"user_id"`
	Amount           int64     `db:"amount" json:"amount"`
	GatewayOrderID   string    `db:"gateway_order_id" json:"gateway_order_id"`
	GatewayPaymentID string    `db:"gateway_payment_id" json:"gateway_payment_id,omitempty"`
	Status           string    `db:"status" json:"status"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// OverdueLoan is an issued book past its due date, joined with the borrower
type OverdueLoan struct {
	BookID    int64     `db:"book_id"`
	Title     string    `db:"title"`
	UserID    int64     `db:"user_id"`
	UserName  string    `db:"user_name"`
	UserEmail string    `db:"user_email"`
	DueDate   time.Time `db:"due_date"`
}

// Book statuses
const (
	BookStatusAvailable = "AVAILABLE"
	BookStatusReserved  = "RESERVED"
	BookStatusIssued    = "ISSUED"
	BookStatusRetired   = "RETIRED"
)

// User roles
const (
	RoleStudent = "student"
	RoleStaff   = "staff"
	RoleAdmin   = "admin"
)

// Payment statuses
const (
	PaymentStatusPending = "PENDING"
	PaymentStatusSuccess = "SUCCESS"
	PaymentStatusFailed  = "FAILED"
)
