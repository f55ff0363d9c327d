package service

import (
	"context"
	"time"

	"circulation-service/internal/gateway"
	"circulation-service/internal/models"
)

type mockBookStore struct {
	createBookFn   func(ctx context.Context, book *models.Book) error
	getBookFn      func(ctx context.Context, id int64) (*models.Book, error)
	getBooksFn     func(ctx context.Context, ids []int64) ([]models.Book, error)
	reserveFn      func(ctx context.Context, bookID, userID int64, at time.Time) error
	cancelFn       func(ctx context.Context, bookID int64) error
	issueFn        func(ctx context.Context, bookID, userID int64, issuedAt, dueDate time.Time) (*models.Book, error)
	returnFn       func(ctx context.Context, bookID int64, returnedAt time.Time, ratePerDay int64) (*models.Book, int64, error)
	settleFn       func(ctx context.Context, bookID int64) (*models.Book, error)
	reservationsFn func(ctx context.Context, userID int64) ([]models.Book, error)
	loansFn        func(ctx context.Context, userID int64) ([]models.Book, error)
}

var _ BookStore = (*mockBookStore)(nil)

func (m *mockBookStore) CreateBook(ctx context.Context, book *models.Book) error {
	if m.createBookFn == nil {
		return nil
	}
	return m.createBookFn(ctx, book)
}

func (m *mockBookStore) GetBookByID(ctx context.Context, id int64) (*models.Book, error) {
	if m.getBookFn == nil {
		return &models.Book{ID: id, Status: models.BookStatusAvailable}, nil
	}
	return m.getBookFn(ctx, id)
}

func (m *mockBookStore) GetBooksByIDs(ctx context.Context, ids []int64) ([]models.Book, error) {
	if m.getBooksFn == nil {
		return nil, nil
	}
	return m.getBooksFn(ctx, ids)
}

func (m *mockBookStore) ReserveBookTx(ctx context.Context, bookID, userID int64, at time.Time) error {
	if m.reserveFn == nil {
		return nil
	}
	return m.reserveFn(ctx, bookID, userID, at)
}

func (m *mockBookStore) CancelReservationTx(ctx context.Context, bookID int64) error {
	if m.cancelFn == nil {
		return nil
	}
	return m.cancelFn(ctx, bookID)
}

func (m *mockBookStore) IssueBookTx(ctx context.Context, bookID, userID int64, issuedAt, dueDate time.Time) (*models.Book, error) {
	if m.issueFn == nil {
		return &models.Book{ID: bookID, Status: models.BookStatusIssued}, nil
	}
	return m.issueFn(ctx, bookID, userID, issuedAt, dueDate)
}

func (m *mockBookStore) ReturnBookTx(ctx context.Context, bookID int64, returnedAt time.Time, ratePerDay int64) (*models.Book, int64, error) {
	if m.returnFn == nil {
		return &models.Book{ID: bookID, Status: models.BookStatusAvailable}, 0, nil
	}
	return m.returnFn(ctx, bookID, returnedAt, ratePerDay)
}

func (m *mockBookStore) SettleFineTx(ctx context.Context, bookID int64) (*models.Book, error) {
	if m.settleFn == nil {
		return &models.Book{ID: bookID, Status: models.BookStatusAvailable}, nil
	}
	return m.settleFn(ctx, bookID)
}

func (m *mockBookStore) GetReservationsByUserID(ctx context.Context, userID int64) ([]models.Book, error) {
	if m.reservationsFn == nil {
		return nil, nil
	}
	return m.reservationsFn(ctx, userID)
}

func (m *mockBookStore) GetLoansByUserID(ctx context.Context, userID int64) ([]models.Book, error) {
	if m.loansFn == nil {
		return nil, nil
	}
	return m.loansFn(ctx, userID)
}

type mockUserStore struct {
	createUserFn func(ctx context.Context, user *models.User) error
	getUserFn    func(ctx context.Context, id int64) (*models.User, error)
}

var _ UserStore = (*mockUserStore)(nil)

func (m *mockUserStore) CreateUser(ctx context.Context, user *models.User) error {
	if m.createUserFn == nil {
		return nil
	}
	return m.createUserFn(ctx, user)
}

func (m *mockUserStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	if m.getUserFn == nil {
		return &models.User{ID: id, Name: "Asha", Email: "asha@example.com", Role: models.RoleStudent}, nil
	}
	return m.getUserFn(ctx, id)
}

type mockPaymentStore struct {
	createPaymentFn func(ctx context.Context, payment *models.Payment) error
	getByOrderFn    func(ctx context.Context, orderID string) (*models.Payment, error)
	updateStatusFn  func(ctx context.Context, paymentID int64, status, gatewayPaymentID string) error
	byUserFn        func(ctx context.Context, userID int64) ([]models.Payment, error)
}

var _ PaymentStore = (*mockPaymentStore)(nil)

func (m *mockPaymentStore) CreatePayment(ctx context.Context, payment *models.Payment) error {
	if m.createPaymentFn == nil {
		return nil
	}
	return m.createPaymentFn(ctx, payment)
}

func (m *mockPaymentStore) GetPaymentByOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	if m.getByOrderFn == nil {
		return &models.Payment{ID: 1, GatewayOrderID: orderID, Status: models.PaymentStatusPending}, nil
	}
	return m.getByOrderFn(ctx, orderID)
}

func (m *mockPaymentStore) UpdatePaymentStatus(ctx context.Context, paymentID int64, status, gatewayPaymentID string) error {
	if m.updateStatusFn == nil {
		return nil
	}
	return m.updateStatusFn(ctx, paymentID, status, gatewayPaymentID)
}

func (m *mockPaymentStore) GetPaymentsByUserID(ctx context.Context, userID int64) ([]models.Payment, error) {
	if m.byUserFn == nil {
		return nil, nil
	}
	return m.byUserFn(ctx, userID)
}

// mockPublisher records every published event by type
type mockPublisher struct {
	reserved  []*models.BookReservedEvent
	cancelled []*models.ReservationCancelledEvent
	issued    []*models.BookIssuedEvent
	returned  []*models.BookReturnedEvent
	fines     []*models.FineAssessedEvent
	payments  []*models.PaymentReceivedEvent
	reminders []*models.OverdueReminderEvent
}

var _ EventPublisher = (*mockPublisher)(nil)

func (m *mockPublisher) PublishBookReserved(ctx context.Context, event *models.BookReservedEvent) error {
	m.reserved = append(m.reserved, event)
	return nil
}

func (m *mockPublisher) PublishReservationCancelled(ctx context.Context, event *models.ReservationCancelledEvent) error {
	m.cancelled = append(m.cancelled, event)
	return nil
}

func (m *mockPublisher) PublishBookIssued(ctx context.Context, event *models.BookIssuedEvent) error {
	m.issued = append(m.issued, event)
	return nil
}

func (m *mockPublisher) PublishBookReturned(ctx context.Context, event *models.BookReturnedEvent) error {
	m.returned = append(m.returned, event)
	return nil
}

func (m *mockPublisher) PublishFineAssessed(ctx context.Context, event *models.FineAssessedEvent) error {
	m.fines = append(m.fines, event)
	return nil
}

func (m *mockPublisher) PublishPaymentReceived(ctx context.Context, event *models.PaymentReceivedEvent) error {
	m.payments = append(m.payments, event)
	return nil
}

func (m *mockPublisher) PublishOverdueReminder(ctx context.Context, event *models.OverdueReminderEvent) error {
	m.reminders = append(m.reminders, event)
	return nil
}

type mockPopularity struct {
	recorded []int64
	topFn    func(ctx context.Context, limit int) ([]int64, error)
}

var _ PopularityTracker = (*mockPopularity)(nil)

func (m *mockPopularity) RecordIssue(ctx context.Context, bookID int64) error {
	m.recorded = append(m.recorded, bookID)
	return nil
}

func (m *mockPopularity) TopBooks(ctx context.Context, limit int) ([]int64, error) {
	if m.topFn == nil {
		return nil, nil
	}
	return m.topFn(ctx, limit)
}

type mockLocker struct {
	acquireFn func(ctx context.Context, lockKey string, ttl time.Duration) (string, error)
	released  []string
}

var _ Locker = (*mockLocker)(nil)

func (m *mockLocker) AcquireLock(ctx context.Context, lockKey string, ttl time.Duration) (string, error) {
	if m.acquireFn == nil {
		return "token", nil
	}
	return m.acquireFn(ctx, lockKey, ttl)
}

func (m *mockLocker) ReleaseLock(ctx context.Context, lockKey, token string) error {
	m.released = append(m.released, lockKey)
	return nil
}

type mockGateway struct {
	createOrderFn func(ctx context.Context, amount int64, receipt string) (*gateway.Order, error)
	verifyFn      func(orderID, paymentID, signature string) bool
}

var _ PaymentGateway = (*mockGateway)(nil)

func (m *mockGateway) CreateOrder(ctx context.Context, amount int64, receipt string) (*gateway.Order, error) {
	if m.createOrderFn == nil {
		return &gateway.Order{ID: "order_1", Amount: amount, Currency: "INR", Receipt: receipt, Status: "created"}, nil
	}
	return m.createOrderFn(ctx, amount, receipt)
}

func (m *mockGateway) VerifySignature(orderID, paymentID, signature string) bool {
	if m.verifyFn == nil {
		return true
	}
	return m.verifyFn(orderID, paymentID, signature)
}
