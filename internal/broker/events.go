package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"circulation-service/internal/models"

	"github.com/segmentio/kafka-go"
)

// EventPublisher handles publishing domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishBookReserved publishes BookReserved event
func (ep *EventPublisher) PublishBookReserved(ctx context.Context, event *models.BookReservedEvent) error {
	return ep.producer.PublishEvent(ctx, bookKey(event.BookID), event)
}

// PublishReservationCancelled publishes ReservationCancelled event
func (ep *EventPublisher) PublishReservationCancelled(ctx context.Context, event *models.ReservationCancelledEvent) error {
	return ep.producer.PublishEvent(ctx, bookKey(event.BookID), event)
}

// PublishBookIssued publishes BookIssued event
func (ep *EventPublisher) PublishBookIssued(ctx context.Context, event *models.BookIssuedEvent) error {
	return ep.producer.PublishEvent(ctx, bookKey(event.BookID), event)
}

// PublishBookReturned publishes BookReturned event
func (ep *EventPublisher) PublishBookReturned(ctx context.Context, event *models.BookReturnedEvent) error {
	return ep.producer.PublishEvent(ctx, bookKey(event.BookID), event)
}

// PublishFineAssessed publishes FineAssessed event
func (ep *EventPublisher) PublishFineAssessed(ctx context.Context, event *models.FineAssessedEvent) error {
	return ep.producer.PublishEvent(ctx, bookKey(event.BookID), event)
}

// PublishPaymentReceived publishes PaymentReceived event
func (ep *EventPublisher) PublishPaymentReceived(ctx context.Context, event *models.PaymentReceivedEvent) error {
	return ep.producer.PublishEvent(ctx, bookKey(event.BookID), event)
}

// PublishOverdueReminder publishes OverdueReminder event
func (ep *EventPublisher) PublishOverdueReminder(ctx context.Context, event *models.OverdueReminderEvent) error {
	return ep.producer.PublishEvent(ctx, bookKey(event.BookID), event)
}

func bookKey(bookID int64) string {
	return fmt.Sprintf("book-%d", bookID)
}

// EventHandler routes consumed events to registered handlers
type EventHandler struct {
	onBookReserved         func(context.Context, *models.BookReservedEvent) error
	onReservationCancelled func(context.Context, *models.ReservationCancelledEvent) error
	onBookIssued           func(context.Context, *models.BookIssuedEvent) error
	onBookReturned         func(context.Context, *models.BookReturnedEvent) error
	onFineAssessed         func(context.Context, *models.FineAssessedEvent) error
	onPaymentReceived      func(context.Context, *models.PaymentReceivedEvent) error
	onOverdueReminder      func(context.Context, *models.OverdueReminderEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnBookReserved registers a handler for BookReserved events
func (eh *EventHandler) OnBookReserved(handler func(context.Context, *models.BookReservedEvent) error) {
	eh.onBookReserved = handler
}

// OnReservationCancelled registers a handler for ReservationCancelled events
func (eh *EventHandler) OnReservationCancelled(handler func(context.Context, *models.ReservationCancelledEvent) error) {
	eh.onReservationCancelled = handler
}

// OnBookIssued registers a handler for BookIssued events
func (eh *EventHandler) OnBookIssued(handler func(context.Context, *models.BookIssuedEvent) error) {
	eh.onBookIssued = handler
}

// OnBookReturned registers a handler for BookReturned events
func (eh *EventHandler) OnBookReturned(handler func(context.Context, *models.BookReturnedEvent) error) {
	eh.onBookReturned = handler
}

// OnFineAssessed registers a handler for FineAssessed events
func (eh *EventHandler) OnFineAssessed(handler func(context.Context, *models.FineAssessedEvent) error) {
	eh.onFineAssessed = handler
}

// OnPaymentReceived registers a handler for PaymentReceived events
func (eh *EventHandler) OnPaymentReceived(handler func(context.Context, *models.PaymentReceivedEvent) error) {
	eh.onPaymentReceived = handler
}

// OnOverdueReminder registers a handler for OverdueReminder events
func (eh *EventHandler) OnOverdueReminder(handler func(context.Context, *models.OverdueReminderEvent) error) {
	eh.onOverdueReminder = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	log.Printf("Handling event: type=%s, id=%s", baseEvent.EventType, baseEvent.EventID)

	switch baseEvent.EventType {
	case models.EventTypeBookReserved:
		if eh.onBookReserved != nil {
			var event models.BookReservedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal BookReserved event: %w", err)
			}
			return eh.onBookReserved(ctx, &event)
		}

	case models.EventTypeReservationDropped:
		if eh.onReservationCancelled != nil {
			var event models.ReservationCancelledEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal ReservationCancelled event: %w", err)
			}
			return eh.onReservationCancelled(ctx, &event)
		}

	case models.EventTypeBookIssued:
		if eh.onBookIssued != nil {
			var event models.BookIssuedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal BookIssued event: %w", err)
			}
			return eh.onBookIssued(ctx, &event)
		}

	case models.EventTypeBookReturned:
		if eh.onBookReturned != nil {
			var event models.BookReturnedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal BookReturned event: %w", err)
			}
			return eh.onBookReturned(ctx, &event)
		}

	case models.EventTypeFineAssessed:
		if eh.onFineAssessed != nil {
			var event models.FineAssessedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal FineAssessed event: %w", err)
			}
			return eh.onFineAssessed(ctx, &event)
		}

	case models.EventTypePaymentReceived:
		if eh.onPaymentReceived != nil {
			var event models.PaymentReceivedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal PaymentReceived event: %w", err)
			}
			return eh.onPaymentReceived(ctx, &event)
		}

	case models.EventTypeOverdueReminder:
		if eh.onOverdueReminder != nil {
			var event models.OverdueReminderEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal OverdueReminder event: %w", err)
			}
			return eh.onOverdueReminder(ctx, &event)
		}

	default:
		log.Printf("Unhandled event type: %s", baseEvent.EventType)
	}

	return nil
}
