package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"circulation-service/config"
	"circulation-service/internal/models"
	"circulation-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CirculationService handles the book lifecycle: reserve, cancel, issue, return
type CirculationService struct {
	books      BookStore
	users      UserStore
	publisher  EventPublisher
	popularity PopularityTracker
	business   config.BusinessConfig
	logger     *zap.Logger
}

// NewCirculationService creates a new circulation service
func NewCirculationService(
	books BookStore,
	users UserStore,
	publisher EventPublisher,
	popularity PopularityTracker,
	business config.BusinessConfig,
) *CirculationService {
	return &CirculationService{
		books:      books,
		users:      users,
		publisher:  publisher,
		popularity: popularity,
		business:   business,
		logger:     util.GetLogger(),
	}
}

// CreateBook adds a catalog record, applying configured defaults
func (s *CirculationService) CreateBook(ctx context.Context, book *models.Book) error {
	if strings.TrimSpace(book.Title) == "" || strings.TrimSpace(book.AccessionNumber) == "" {
		return fmt.Errorf("%w: title and accession number are required", ErrValidation)
	}
	if book.Department == "" {
		book.Department = s.business.DefaultDepartment
	}
	if book.Status == "" {
		book.Status = models.BookStatusAvailable
	}

	if err := s.books.CreateBook(ctx, book); err != nil {
		return fmt.Errorf("failed to create book: %w", err)
	}

	s.logger.Info("Book created",
		zap.Int64("book_id", book.ID),
		zap.String("accession", book.AccessionNumber))
	return nil
}

// GetBook retrieves a book by ID
func (s *CirculationService) GetBook(ctx context.Context, bookID int64) (*models.Book, error) {
	book, err := s.books.GetBookByID(ctx, bookID)
	if err != nil {
		return nil, translateStoreErr(err)
	}
	return book, nil
}

// CreateUser registers a member, applying configured defaults
func (s *CirculationService) CreateUser(ctx context.Context, user *models.User) error {
	if strings.TrimSpace(user.Name) == "" || strings.TrimSpace(user.Email) == "" {
		return fmt.Errorf("%w: name and email are required", ErrValidation)
	}
	if user.Role == "" {
		user.Role = models.RoleStudent
	}
	if user.Department == "" {
		user.Department = s.business.DefaultDepartment
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUser retrieves a member by ID
func (s *CirculationService) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, translateStoreErr(err)
	}
	return user, nil
}

// Reserve places a hold on an available book for a member
func (s *CirculationService) Reserve(ctx context.Context, bookID, userID int64) error {
	ctx, span := util.StartSpan(ctx, "CirculationService.Reserve")
	defer span.End()

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		util.ReservationsFailedTotal.WithLabelValues("user_not_found").Inc()
		return translateStoreErr(err)
	}

	book, err := s.books.GetBookByID(ctx, bookID)
	if err != nil {
		util.ReservationsFailedTotal.WithLabelValues("book_not_found").Inc()
		return translateStoreErr(err)
	}

	reservedAt := time.Now()
	if err := s.books.ReserveBookTx(ctx, bookID, userID, reservedAt); err != nil {
		util.ReservationsFailedTotal.WithLabelValues("status_conflict").Inc()
		return translateStoreErr(err)
	}

	util.BooksReservedTotal.Inc()
	s.logger.Info("Book reserved",
		zap.Int64("book_id", bookID),
		zap.Int64("user_id", userID))

	event := &models.BookReservedEvent{
		BaseEvent:  newBaseEvent(models.EventTypeBookReserved),
		BookID:     bookID,
		Title:      book.Title,
		UserID:     userID,
		UserName:   user.Name,
		UserEmail:  user.Email,
		ReservedAt: reservedAt,
	}
	if err := s.publisher.PublishBookReserved(ctx, event); err != nil {
		// the reservation already committed; notification loss is acceptable
		s.logger.Error("Failed to publish BookReserved event", zap.Error(err))
	}

	return nil
}

// CancelReservation drops a hold and makes the book available again
func (s *CirculationService) CancelReservation(ctx context.Context, bookID int64) error {
	ctx, span := util.StartSpan(ctx, "CirculationService.CancelReservation")
	defer span.End()

	// capture the holder before the reservation fields are cleared
	before, err := s.books.GetBookByID(ctx, bookID)
	if err != nil {
		return translateStoreErr(err)
	}

	if err := s.books.CancelReservationTx(ctx, bookID); err != nil {
		return translateStoreErr(err)
	}

	util.ReservationsCancelledTotal.Inc()
	s.logger.Info("Reservation cancelled", zap.Int64("book_id", bookID))

	if before.ReservedBy != nil {
		event := &models.ReservationCancelledEvent{
			BaseEvent: newBaseEvent(models.EventTypeReservationDropped),
			BookID:    bookID,
			Title:     before.Title,
			UserID:    *before.ReservedBy,
		}
		if holder, err := s.users.GetUserByID(ctx, *before.ReservedBy); err == nil {
			event.UserName = holder.Name
			event.UserEmail = holder.Email
		}
		if err := s.publisher.PublishReservationCancelled(ctx, event); err != nil {
			s.logger.Error("Failed to publish ReservationCancelled event", zap.Error(err))
		}
	}

	return nil
}

// Issue lends a book to a member. The book must be available or reserved by
// that member; a matching reservation is consumed by the issue.
func (s *CirculationService) Issue(ctx context.Context, bookID, userID int64) (*models.Book, error) {
	ctx, span := util.StartSpan(ctx, "CirculationService.Issue")
	defer span.End()

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, translateStoreErr(err)
	}

	issuedAt := time.Now()
	dueDate := issuedAt.AddDate(0, 0, s.business.LoanPeriodDays)

	book, err := s.books.IssueBookTx(ctx, bookID, userID, issuedAt, dueDate)
	if err != nil {
		return nil, translateStoreErr(err)
	}

	util.BooksIssuedTotal.Inc()
	s.logger.Info("Book issued",
		zap.Int64("book_id", bookID),
		zap.Int64("user_id", userID),
		zap.Time("due_date", dueDate))

	if err := s.popularity.RecordIssue(ctx, bookID); err != nil {
		s.logger.Warn("Failed to record issue popularity", zap.Error(err))
	}

	event := &models.BookIssuedEvent{
		BaseEvent: newBaseEvent(models.EventTypeBookIssued),
		BookID:    bookID,
		Title:     book.Title,
		UserID:    userID,
		UserName:  user.Name,
		UserEmail: user.Email,
		DueDate:   dueDate,
	}
	if err := s.publisher.PublishBookIssued(ctx, event); err != nil {
		s.logger.Error("Failed to publish BookIssued event", zap.Error(err))
	}

	return book, nil
}

// Return completes a loan and reports the fine owed, if any. The fine stays
// on the book record until the Payment workflow settles it.
func (s *CirculationService) Return(ctx context.Context, bookID int64) (*models.Book, int64, error) {
	ctx, span := util.StartSpan(ctx, "CirculationService.Return")
	defer span.End()

	// capture the borrower before the loan fields are cleared
	before, err := s.books.GetBookByID(ctx, bookID)
	if err != nil {
		return nil, 0, translateStoreErr(err)
	}
	if before.Status != models.BookStatusIssued || before.IssuedTo == nil {
		return nil, 0, fmt.Errorf("%w: book %d is %s, not issued", ErrInvalidState, bookID, before.Status)
	}
	borrowerID := *before.IssuedTo

	returnedAt := time.Now()
	book, fine, err := s.books.ReturnBookTx(ctx, bookID, returnedAt, s.business.FineRatePerDay)
	if err != nil {
		return nil, 0, translateStoreErr(err)
	}

	util.BooksReturnedTotal.Inc()
	if fine > 0 {
		util.FinesAssessedTotal.Inc()
		util.FineAmountAssessed.Observe(float64(fine))
	}
	s.logger.Info("Book returned",
		zap.Int64("book_id", bookID),
		zap.Int64("user_id", borrowerID),
		zap.Int64("fine", fine))

	borrowerEmail := ""
	if borrower, err := s.users.GetUserByID(ctx, borrowerID); err == nil {
		borrowerEmail = borrower.Email
	} else {
		s.logger.Warn("Failed to look up borrower for notification",
			zap.Int64("user_id", borrowerID), zap.Error(err))
	}

	returnedEvent := &models.BookReturnedEvent{
		BaseEvent:  newBaseEvent(models.EventTypeBookReturned),
		BookID:     bookID,
		Title:      book.Title,
		UserID:     borrowerID,
		UserEmail:  borrowerEmail,
		Fine:       fine,
		ReturnedAt: returnedAt,
	}
	if err := s.publisher.PublishBookReturned(ctx, returnedEvent); err != nil {
		s.logger.Error("Failed to publish BookReturned event", zap.Error(err))
	}

	if fine > 0 && before.DueDate != nil {
		fineEvent := &models.FineAssessedEvent{
			BaseEvent: newBaseEvent(models.EventTypeFineAssessed),
			BookID:    bookID,
			Title:     book.Title,
			UserID:    borrowerID,
			UserEmail: borrowerEmail,
			Amount:    fine,
			DaysLate:  models.DaysLate(*before.DueDate, returnedAt),
		}
		if err := s.publisher.PublishFineAssessed(ctx, fineEvent); err != nil {
			s.logger.Error("Failed to publish FineAssessed event", zap.Error(err))
		}
	}

	return book, fine, nil
}

// MyReservations lists books currently held by a member
func (s *CirculationService) MyReservations(ctx context.Context, userID int64) ([]models.Book, error) {
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		return nil, translateStoreErr(err)
	}
	return s.books.GetReservationsByUserID(ctx, userID)
}

// MyLoans lists books currently issued to a member
func (s *CirculationService) MyLoans(ctx context.Context, userID int64) ([]models.Book, error) {
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		return nil, translateStoreErr(err)
	}
	return s.books.GetLoansByUserID(ctx, userID)
}

func newBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}
