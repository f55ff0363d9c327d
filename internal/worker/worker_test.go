package worker

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"circulation-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockOverdueLister struct {
	loans []models.OverdueLoan
	err   error
}

func (m *mockOverdueLister) ListOverdueLoans(ctx context.Context, asOf time.Time) ([]models.OverdueLoan, error) {
	return m.loans, m.err
}

type mockReminderPublisher struct {
	events []*models.OverdueReminderEvent
	failOn int64
}

func (m *mockReminderPublisher) PublishOverdueReminder(ctx context.Context, event *models.OverdueReminderEvent) error {
	if m.failOn != 0 && event.BookID == m.failOn {
		return errors.New("broker unavailable")
	}
	m.events = append(m.events, event)
	return nil
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("evt-%d", n)
	}
}

func TestSweep_PublishesOneReminderPerOverdueLoan(t *testing.T) {
	lister := &mockOverdueLister{
		loans: []models.OverdueLoan{
			{BookID: 1, Title: "Dune", UserID: 10, UserName: "Asha", UserEmail: "asha@example.com", DueDate: time.Now().AddDate(0, 0, -3)},
			{BookID: 2, Title: "Hyperion", UserID: 11, UserName: "Ben", UserEmail: "ben@example.com", DueDate: time.Now().AddDate(0, 0, -1)},
		},
	}
	pub := &mockReminderPublisher{}
	rw := NewReminderWorker(lister, pub, time.Hour, 2, sequentialIDs())

	rw.Sweep(context.Background())

	require.Len(t, pub.events, 2)
	assert.Equal(t, "evt-1", pub.events[0].EventID)
	assert.Equal(t, models.EventTypeOverdueReminder, pub.events[0].EventType)
	assert.Equal(t, "asha@example.com", pub.events[0].UserEmail)
	assert.Equal(t, int64(6), pub.events[0].Fine)
	assert.Equal(t, int64(2), pub.events[1].Fine)
}

func TestSweep_ContinuesPastPublishFailures(t *testing.T) {
	lister := &mockOverdueLister{
		loans: []models.OverdueLoan{
			{BookID: 1, Title: "Dune", DueDate: time.Now().AddDate(0, 0, -2)},
			{BookID: 2, Title: "Hyperion", DueDate: time.Now().AddDate(0, 0, -2)},
		},
	}
	pub := &mockReminderPublisher{failOn: 1}
	rw := NewReminderWorker(lister, pub, time.Hour, 2, sequentialIDs())

	rw.Sweep(context.Background())

	require.Len(t, pub.events, 1)
	assert.Equal(t, int64(2), pub.events[0].BookID)
}

func TestSweep_ListError(t *testing.T) {
	lister := &mockOverdueLister{err: errors.New("db down")}
	pub := &mockReminderPublisher{}
	rw := NewReminderWorker(lister, pub, time.Hour, 2, sequentialIDs())

	rw.Sweep(context.Background())

	assert.Empty(t, pub.events)
}
