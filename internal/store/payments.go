package store

import (
	"context"
	"database/sql"
	"fmt"

	"circulation-service/internal/models"
)

// CreatePayment creates a new payment record
func (s *Store) CreatePayment(ctx context.Context, payment *models.Payment) error {
	query := `
		INSERT INTO payments (book_id, user_id, amount, gateway_order_id, gateway_payment_id, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	return s.db.GetContext(ctx, payment, query,
		payment.BookID, payment.UserID, payment.Amount,
		payment.GatewayOrderID, payment.GatewayPaymentID, payment.Status)
}

// GetPaymentByOrderID retrieves the payment tied to a gateway order
func (s *Store) GetPaymentByOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	var payment models.Payment
	err := s.db.GetContext(ctx, &payment,
		"SELECT * FROM payments WHERE gateway_order_id = $1 ORDER BY created_at DESC LIMIT 1", orderID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: payment for order %s", ErrNotFound, orderID)
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// UpdatePaymentStatus updates payment status and the gateway payment ID
func (s *Store) UpdatePaymentStatus(ctx context.Context, paymentID int64, status, gatewayPaymentID string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE payments SET status = $1, gateway_payment_id = $2, updated_at = NOW() WHERE id = $3",
		status, gatewayPaymentID, paymentID)
	return err
}

// GetPaymentsByUserID lists a member's payments, newest first
func (s *Store) GetPaymentsByUserID(ctx context.Context, userID int64) ([]models.Payment, error) {
	var payments []models.Payment
	err := s.db.SelectContext(ctx, &payments,
		"SELECT * FROM payments WHERE user_id = $1 ORDER BY created_at DESC", userID)
	return payments, err
}
