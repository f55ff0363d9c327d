package service

import (
	"context"
	"time"

	"circulation-service/internal/gateway"
	"circulation-service/internal/models"
)

// BookStore is the book persistence surface the workflows need
type BookStore interface {
	CreateBook(ctx context.Context, book *models.Book) error
	GetBookByID(ctx context.Context, id int64) (*models.Book, error)
	GetBooksByIDs(ctx context.Context, ids []int64) ([]models.Book, error)
	ReserveBookTx(ctx context.Context, bookID, userID int64, at time.Time) error
	CancelReservationTx(ctx context.Context, bookID int64) error
	IssueBookTx(ctx context.Context, bookID, userID int64, issuedAt, dueDate time.Time) (*models.Book, error)
	ReturnBookTx(ctx context.Context, bookID int64, returnedAt time.Time, ratePerDay int64) (*models.Book, int64, error)
	SettleFineTx(ctx context.Context, bookID int64) (*models.Book, error)
	GetReservationsByUserID(ctx context.Context, userID int64) ([]models.Book, error)
	GetLoansByUserID(ctx context.Context, userID int64) ([]models.Book, error)
}

// UserStore is the member persistence surface
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// PaymentStore is the payment persistence surface
type PaymentStore interface {
	CreatePayment(ctx context.Context, payment *models.Payment) error
	GetPaymentByOrderID(ctx context.Context, orderID string) (*models.Payment, error)
	UpdatePaymentStatus(ctx context.Context, paymentID int64, status, gatewayPaymentID string) error
	GetPaymentsByUserID(ctx context.Context, userID int64) ([]models.Payment, error)
}

// EventPublisher fans domain events out to the notification pipeline.
// Publish failures never fail the workflow that triggered them.
type EventPublisher interface {
	PublishBookReserved(ctx context.Context, event *models.BookReservedEvent) error
	PublishReservationCancelled(ctx context.Context, event *models.ReservationCancelledEvent) error
	PublishBookIssued(ctx context.Context, event *models.BookIssuedEvent) error
	PublishBookReturned(ctx context.Context, event *models.BookReturnedEvent) error
	PublishFineAssessed(ctx context.Context, event *models.FineAssessedEvent) error
	PublishPaymentReceived(ctx context.Context, event *models.PaymentReceivedEvent) error
	PublishOverdueReminder(ctx context.Context, event *models.OverdueReminderEvent) error
}

// PopularityTracker records issue counts and serves the top titles
type PopularityTracker interface {
	RecordIssue(ctx context.Context, bookID int64) error
	TopBooks(ctx context.Context, limit int) ([]int64, error)
}

// Locker provides short-lived distributed locks
type Locker interface {
	AcquireLock(ctx context.Context, lockKey string, ttl time.Duration) (string, error)
	ReleaseLock(ctx context.Context, lockKey, token string) error
}

// PaymentGateway is the external payment collaborator
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amount int64, receipt string) (*gateway.Order, error)
	VerifySignature(orderID, paymentID, signature string) bool
}
