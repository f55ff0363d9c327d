package service

import (
	"context"
	"fmt"
	"time"

	"circulation-service/internal/gateway"
	"circulation-service/internal/models"
	"circulation-service/internal/util"

	"go.uber.org/zap"
)

const settleLockTTL = 30 * time.Second

// PaymentService verifies gateway payments and settles outstanding fines
type PaymentService struct {
	books     BookStore
	users     UserStore
	payments  PaymentStore
	gateway   PaymentGateway
	locker    Locker
	publisher EventPublisher
	logger    *zap.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	books BookStore,
	users UserStore,
	payments PaymentStore,
	gw PaymentGateway,
	locker Locker,
	publisher EventPublisher,
) *PaymentService {
	return &PaymentService{
		books:     books,
		users:     users,
		payments:  payments,
		gateway:   gw,
		locker:    locker,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// CreateOrder opens a gateway order for a fine and records a pending payment
func (ps *PaymentService) CreateOrder(ctx context.Context, bookID, userID, amount int64) (*gateway.Order, error) {
	ctx, span := util.StartSpan(ctx, "PaymentService.CreateOrder")
	defer span.End()

	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}

	book, err := ps.books.GetBookByID(ctx, bookID)
	if err != nil {
		return nil, translateStoreErr(err)
	}
	if _, err := ps.users.GetUserByID(ctx, userID); err != nil {
		return nil, translateStoreErr(err)
	}

	receipt := fmt.Sprintf("fine-%d", bookID)
	order, err := ps.gateway.CreateOrder(ctx, amount, receipt)
	if err != nil {
		util.PaymentFailedTotal.WithLabelValues("gateway_error").Inc()
		return nil, fmt.Errorf("failed to create gateway order: %w", err)
	}

	payment := &models.Payment{
		BookID:         bookID,
		UserID:         userID,
		Amount:         amount,
		GatewayOrderID: order.ID,
		Status:         models.PaymentStatusPending,
	}
	if err := ps.payments.CreatePayment(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	ps.logger.Info("Payment order created",
		zap.Int64("book_id", bookID),
		zap.Int64("user_id", userID),
		zap.String("order_id", order.ID),
		zap.Int64("amount", amount),
		zap.Int64("outstanding_fine", book.Fine))

	return order, nil
}

// MyPayments lists a member's payment history, newest first
func (ps *PaymentService) MyPayments(ctx context.Context, userID int64) ([]models.Payment, error) {
	if _, err := ps.users.GetUserByID(ctx, userID); err != nil {
		return nil, translateStoreErr(err)
	}
	return ps.payments.GetPaymentsByUserID(ctx, userID)
}

// VerifyPayment checks the gateway signature, validates the amount against the
// book's outstanding fine, and clears the fine state. A mismatched signature
// leaves every record untouched.
func (ps *PaymentService) VerifyPayment(ctx context.Context, bookID int64, paymentID, orderID, signature string, amount int64) error {
	ctx, span := util.StartSpan(ctx, "PaymentService.VerifyPayment")
	defer span.End()

	util.PaymentAttemptsTotal.Inc()
	start := time.Now()
	defer func() {
		util.PaymentVerifyLatency.Observe(time.Since(start).Seconds())
	}()

	if !ps.gateway.VerifySignature(orderID, paymentID, signature) {
		util.PaymentFailedTotal.WithLabelValues("invalid_signature").Inc()
		ps.logger.Warn("Payment signature mismatch",
			zap.Int64("book_id", bookID),
			zap.String("order_id", orderID))
		return fmt.Errorf("%w: order %s", ErrInvalidSignature, orderID)
	}

	book, err := ps.books.GetBookByID(ctx, bookID)
	if err != nil {
		util.PaymentFailedTotal.WithLabelValues("book_not_found").Inc()
		return translateStoreErr(err)
	}
	if amount < book.Fine {
		util.PaymentFailedTotal.WithLabelValues("amount_below_fine").Inc()
		return fmt.Errorf("%w: paid %d, outstanding fine is %d", ErrValidation, amount, book.Fine)
	}

	payment, err := ps.payments.GetPaymentByOrderID(ctx, orderID)
	if err != nil {
		util.PaymentFailedTotal.WithLabelValues("order_not_found").Inc()
		return translateStoreErr(err)
	}
	if payment.Status == models.PaymentStatusSuccess {
		// gateway webhooks retry; a settled order is not an error
		ps.logger.Info("Payment already settled", zap.String("order_id", orderID))
		return nil
	}

	lockKey := fmt.Sprintf("settle:book:%d", bookID)
	token, err := ps.locker.AcquireLock(ctx, lockKey, settleLockTTL)
	if err != nil {
		return fmt.Errorf("failed to acquire settlement lock: %w", err)
	}
	if token == "" {
		return fmt.Errorf("%w: settlement already in progress for book %d", ErrInvalidState, bookID)
	}
	defer func() {
		if err := ps.locker.ReleaseLock(ctx, lockKey, token); err != nil {
			ps.logger.Warn("Failed to release settlement lock", zap.Error(err))
		}
	}()

	if err := ps.payments.UpdatePaymentStatus(ctx, payment.ID, models.PaymentStatusSuccess, paymentID); err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}

	if _, err := ps.books.SettleFineTx(ctx, bookID); err != nil {
		return translateStoreErr(err)
	}

	util.PaymentSuccessTotal.Inc()
	ps.logger.Info("Payment verified and fine settled",
		zap.Int64("book_id", bookID),
		zap.String("order_id", orderID),
		zap.String("payment_id", paymentID),
		zap.Int64("amount", amount))

	payerEmail := ""
	if payer, err := ps.users.GetUserByID(ctx, payment.UserID); err == nil {
		payerEmail = payer.Email
	}

	event := &models.PaymentReceivedEvent{
		BaseEvent: newBaseEvent(models.EventTypePaymentReceived),
		BookID:    bookID,
		UserID:    payment.UserID,
		UserEmail: payerEmail,
		OrderID:   orderID,
		PaymentID: paymentID,
		Amount:    amount,
	}
	if err := ps.publisher.PublishPaymentReceived(ctx, event); err != nil {
		ps.logger.Error("Failed to publish PaymentReceived event", zap.Error(err))
	}

	return nil
}
