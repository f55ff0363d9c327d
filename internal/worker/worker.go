package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"circulation-service/internal/broker"
	"circulation-service/internal/models"
	"circulation-service/internal/notify"
	"circulation-service/internal/util"

	"go.uber.org/zap"
)

// EventLog tracks which events have already been handled, so consumer
// restarts do not re-send emails
type EventLog interface {
	IsEventProcessed(ctx context.Context, eventID string) (bool, error)
	MarkEventProcessed(ctx context.Context, eventID, eventType string) error
}

// NotificationWorker consumes circulation events and emails the affected
// member. Delivery is best-effort: failures are logged, never retried through
// the workflow that produced the event.
type NotificationWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	sender       notify.EmailSender
	events       EventLog
	logger       *zap.Logger
}

// NewNotificationWorker creates a new notification worker
func NewNotificationWorker(consumer *broker.Consumer, sender notify.EmailSender, events EventLog) *NotificationWorker {
	w := &NotificationWorker{
		consumer: consumer,
		sender:   sender,
		events:   events,
		logger:   util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnBookReserved(w.handleBookReserved)
	eventHandler.OnReservationCancelled(w.handleReservationCancelled)
	eventHandler.OnBookIssued(w.handleBookIssued)
	eventHandler.OnBookReturned(w.handleBookReturned)
	eventHandler.OnFineAssessed(w.handleFineAssessed)
	eventHandler.OnPaymentReceived(w.handlePaymentReceived)
	eventHandler.OnOverdueReminder(w.handleOverdueReminder)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *NotificationWorker) Start(ctx context.Context) error {
	log.Println("Starting notification worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *NotificationWorker) Stop() error {
	log.Println("Stopping notification worker...")
	return w.consumer.Close()
}

func (w *NotificationWorker) handleBookReserved(ctx context.Context, event *models.BookReservedEvent) error {
	body := fmt.Sprintf("Hi %s,\n\n%q is now reserved for you. Please collect it from the library desk.\n",
		event.UserName, event.Title)
	w.send(ctx, event.BaseEvent, event.UserEmail, "Book reserved: "+event.Title, body)
	return nil
}

func (w *NotificationWorker) handleReservationCancelled(ctx context.Context, event *models.ReservationCancelledEvent) error {
	body := fmt.Sprintf("Hi %s,\n\nYour hold on %q has been cancelled. The book is available again.\n",
		event.UserName, event.Title)
	w.send(ctx, event.BaseEvent, event.UserEmail, "Reservation cancelled: "+event.Title, body)
	return nil
}

func (w *NotificationWorker) handleBookIssued(ctx context.Context, event *models.BookIssuedEvent) error {
	body := fmt.Sprintf("Hi %s,\n\n%q has been issued to you. It is due back on %s.\n",
		event.UserName, event.Title, event.DueDate.Format("2 Jan 2006"))
	w.send(ctx, event.BaseEvent, event.UserEmail, "Book issued: "+event.Title, body)
	return nil
}

func (w *NotificationWorker) handleBookReturned(ctx context.Context, event *models.BookReturnedEvent) error {
	body := fmt.Sprintf("Thanks for returning %q.\n", event.Title)
	if event.Fine > 0 {
		body = fmt.Sprintf("Thanks for returning %q. An overdue fine of %d is outstanding; please settle it at the payments page.\n",
			event.Title, event.Fine)
	}
	w.send(ctx, event.BaseEvent, event.UserEmail, "Book returned: "+event.Title, body)
	return nil
}

func (w *NotificationWorker) handleFineAssessed(ctx context.Context, event *models.FineAssessedEvent) error {
	body := fmt.Sprintf("%q was returned %d day(s) late. A fine of %d has been added to your account.\n",
		event.Title, event.DaysLate, event.Amount)
	w.send(ctx, event.BaseEvent, event.UserEmail, "Overdue fine assessed", body)
	return nil
}

func (w *NotificationWorker) handlePaymentReceived(ctx context.Context, event *models.PaymentReceivedEvent) error {
	body := fmt.Sprintf("We received your payment of %d (ref %s). Your fine has been cleared.\n",
		event.Amount, event.PaymentID)
	w.send(ctx, event.BaseEvent, event.UserEmail, "Payment received", body)
	return nil
}

func (w *NotificationWorker) handleOverdueReminder(ctx context.Context, event *models.OverdueReminderEvent) error {
	body := fmt.Sprintf("Hi %s,\n\n%q was due on %s. The fine so far is %d and grows daily; please return the book soon.\n",
		event.UserName, event.Title, event.DueDate.Format("2 Jan 2006"), event.Fine)
	w.send(ctx, event.BaseEvent, event.UserEmail, "Overdue reminder: "+event.Title, body)
	return nil
}

// send delivers one notification, deduplicating on event ID. All failures are
// swallowed after logging; the consumer still commits the message.
func (w *NotificationWorker) send(ctx context.Context, base models.BaseEvent, to, subject, body string) {
	if to == "" {
		w.logger.Warn("Skipping notification without recipient",
			zap.String("event_id", base.EventID),
			zap.String("event_type", base.EventType))
		return
	}

	processed, err := w.events.IsEventProcessed(ctx, base.EventID)
	if err != nil {
		w.logger.Warn("Failed to check event log", zap.Error(err))
	}
	if processed {
		return
	}

	if err := w.sender.Send(ctx, to, subject, body); err != nil {
		util.NotificationSendFailures.WithLabelValues(base.EventType).Inc()
		w.logger.Error("Failed to send notification",
			zap.String("event_type", base.EventType),
			zap.String("to", to),
			zap.Error(err))
		return
	}

	if err := w.events.MarkEventProcessed(ctx, base.EventID, base.EventType); err != nil {
		w.logger.Warn("Failed to mark event processed", zap.Error(err))
	}
}

// OverdueLister lists loans past their due date
type OverdueLister interface {
	ListOverdueLoans(ctx context.Context, asOf time.Time) ([]models.OverdueLoan, error)
}

// ReminderPublisher publishes overdue reminder events
type ReminderPublisher interface {
	PublishOverdueReminder(ctx context.Context, event *models.OverdueReminderEvent) error
}

// ReminderWorker periodically sweeps for overdue loans and publishes a
// reminder event for each one
type ReminderWorker struct {
	loans      OverdueLister
	publisher  ReminderPublisher
	interval   time.Duration
	ratePerDay int64
	newEventID func() string
	logger     *zap.Logger
}

// NewReminderWorker creates a new reminder worker
func NewReminderWorker(loans OverdueLister, publisher ReminderPublisher, interval time.Duration, ratePerDay int64, newEventID func() string) *ReminderWorker {
	return &ReminderWorker{
		loans:      loans,
		publisher:  publisher,
		interval:   interval,
		ratePerDay: ratePerDay,
		newEventID: newEventID,
		logger:     util.GetLogger(),
	}
}

// Start runs the sweep loop until the context is cancelled
func (rw *ReminderWorker) Start(ctx context.Context) error {
	log.Printf("Starting reminder worker, interval=%s", rw.interval)

	ticker := time.NewTicker(rw.interval)
	defer ticker.Stop()

	rw.Sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("Reminder worker context cancelled, stopping...")
			return ctx.Err()
		case <-ticker.C:
			rw.Sweep(ctx)
		}
	}
}

// Sweep publishes one reminder per overdue loan
func (rw *ReminderWorker) Sweep(ctx context.Context) {
	now := time.Now()
	loans, err := rw.loans.ListOverdueLoans(ctx, now)
	if err != nil {
		rw.logger.Error("Overdue sweep failed", zap.Error(err))
		return
	}

	for _, loan := range loans {
		event := &models.OverdueReminderEvent{
			BaseEvent: models.BaseEvent{
				EventID:   rw.newEventID(),
				EventType: models.EventTypeOverdueReminder,
				Timestamp: now,
			},
			BookID:    loan.BookID,
			Title:     loan.Title,
			UserID:    loan.UserID,
			UserName:  loan.UserName,
			UserEmail: loan.UserEmail,
			DueDate:   loan.DueDate,
			Fine:      models.CalculateFine(loan.DueDate, now, rw.ratePerDay),
		}

		if err := rw.publisher.PublishOverdueReminder(ctx, event); err != nil {
			rw.logger.Error("Failed to publish overdue reminder",
				zap.Int64("book_id", loan.BookID),
				zap.Error(err))
			continue
		}
		util.OverdueRemindersTotal.Inc()
	}

	if len(loans) > 0 {
		rw.logger.Info("Overdue sweep completed", zap.Int("reminders", len(loans)))
	}
}
