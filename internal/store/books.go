package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"circulation-service/internal/models"

	"github.com/jmoiron/sqlx"
)

// CreateBook inserts a new catalog record
func (s *Store) CreateBook(ctx context.Context, book *models.Book) error {
	query := `
		INSERT INTO books (accession_number, call_number, title, author, publisher,
			published_year, isbn, pages, price, department, cover_type, status, fine)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 0)
		RETURNING id, created_at, updated_at`

	return s.db.GetContext(ctx, book, query,
		book.AccessionNumber, book.CallNumber, book.Title, book.Author, book.Publisher,
		book.PublishedYear, book.ISBN, book.Pages, book.Price, book.Department,
		book.CoverType, book.Status)
}

// GetBookByID retrieves a book by ID
func (s *Store) GetBookByID(ctx context.Context, id int64) (*models.Book, error) {
	var book models.Book
	err := s.db.GetContext(ctx, &book, "SELECT * FROM books WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: book %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// GetBooksByIDs retrieves multiple books by IDs, in no particular order
func (s *Store) GetBooksByIDs(ctx context.Context, ids []int64) ([]models.Book, error) {
	if len(ids) == 0 {
		return []models.Book{}, nil
	}

	query, args, err := sqlx.In("SELECT * FROM books WHERE id IN (?)", ids)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var books []models.Book
	err = s.db.SelectContext(ctx, &books, query, args...)
	return books, err
}

// ReserveBookTx reserves an available book within a transaction (FOR UPDATE lock).
// Losing a race or reserving a non-available book yields ErrStatusConflict.
func (s *Store) ReserveBookTx(ctx context.Context, bookID, userID int64, at time.Time) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	status, err := lockBookStatus(ctx, tx, bookID)
	if err != nil {
		return err
	}
	if status != models.BookStatusAvailable {
		return fmt.Errorf("%w: book %d is %s", ErrStatusConflict, bookID, status)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE books SET status = $1, reserved_by = $2, reserved_at = $3, updated_at = NOW() WHERE id = $4`,
		models.BookStatusReserved, userID, at, bookID)
	if err != nil {
		return fmt.Errorf("failed to reserve book: %w", err)
	}

	return tx.Commit()
}

// CancelReservationTx clears a reservation and makes the book available again
func (s *Store) CancelReservationTx(ctx context.Context, bookID int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	status, err := lockBookStatus(ctx, tx, bookID)
	if err != nil {
		return err
	}
	if status != models.BookStatusReserved {
		return fmt.Errorf("%w: book %d is %s, not reserved", ErrStatusConflict, bookID, status)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE books SET status = $1, reserved_by = NULL, reserved_at = NULL, updated_at = NOW() WHERE id = $2`,
		models.BookStatusAvailable, bookID)
	if err != nil {
		return fmt.Errorf("failed to cancel reservation: %w", err)
	}

	return tx.Commit()
}

// IssueBookTx issues a book to a member. The book must be available, or
// reserved by that same member; the reservation is consumed by the issue.
func (s *Store) IssueBookTx(ctx context.Context, bookID, userID int64, issuedAt, dueDate time.Time) (*models.Book, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	book, err := lockBook(ctx, tx, bookID)
	if err != nil {
		return nil, err
	}

	switch book.Status {
	case models.BookStatusAvailable:
	case models.BookStatusReserved:
		if book.ReservedBy == nil || *book.ReservedBy != userID {
			return nil, fmt.Errorf("%w: book %d is reserved by another member", ErrStatusConflict, bookID)
		}
	default:
		return nil, fmt.Errorf("%w: book %d is %s", ErrStatusConflict, bookID, book.Status)
	}

	err = tx.GetContext(ctx, book, `
		UPDATE books
		SET status = $1, issued_to = $2, issued_at = $3, due_date = $4,
			reserved_by = NULL, reserved_at = NULL, fine = 0, updated_at = NOW()
		WHERE id = $5
		RETURNING *`,
		models.BookStatusIssued, userID, issuedAt, dueDate, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue book: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return book, nil
}

// ReturnBookTx completes a loan. The fine is computed against the locked row's
// due date so a concurrent settlement cannot race the calculation. The fine
// stays recorded on the book until it is paid.
func (s *Store) ReturnBookTx(ctx context.Context, bookID int64, returnedAt time.Time, ratePerDay int64) (*models.Book, int64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback()

	book, err := lockBook(ctx, tx, bookID)
	if err != nil {
		return nil, 0, err
	}
	if book.Status != models.BookStatusIssued || book.DueDate == nil {
		return nil, 0, fmt.Errorf("%w: book %d is %s, not issued", ErrStatusConflict, bookID, book.Status)
	}

	fine := models.CalculateFine(*book.DueDate, returnedAt, ratePerDay)

	err = tx.GetContext(ctx, book, `
		UPDATE books
		SET status = $1, issued_to = NULL, issued_at = NULL, due_date = NULL,
			fine = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING *`,
		models.BookStatusAvailable, fine, bookID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to return book: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, err
	}
	return book, fine, nil
}

// SettleFineTx clears a book's outstanding fine and any leftover loan state.
// An existing reservation survives settlement.
func (s *Store) SettleFineTx(ctx context.Context, bookID int64) (*models.Book, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	book, err := lockBook(ctx, tx, bookID)
	if err != nil {
		return nil, err
	}

	status := book.Status
	if status == models.BookStatusIssued {
		status = models.BookStatusAvailable
	}

	err = tx.GetContext(ctx, book, `
		UPDATE books
		SET status = $1, issued_to = NULL, issued_at = NULL, due_date = NULL,
			fine = 0, updated_at = NOW()
		WHERE id = $2
		RETURNING *`,
		status, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to settle fine: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return book, nil
}

// ListOverdueLoans returns issued books past their due date as of the given time
func (s *Store) ListOverdueLoans(ctx context.Context, asOf time.Time) ([]models.OverdueLoan, error) {
	var loans []models.OverdueLoan
	err := s.db.SelectContext(ctx, &loans, `
		SELECT b.id AS book_id, b.title, u.id AS user_id, u.name AS user_name,
			u.email AS user_email, b.due_date
		FROM books b
		JOIN users u ON u.id = b.issued_to
		WHERE b.status = $1 AND b.due_date < $2
		ORDER BY b.due_date`,
		models.BookStatusIssued, asOf)
	return loans, err
}

// GetReservationsByUserID lists books currently reserved by a member
func (s *Store) GetReservationsByUserID(ctx context.Context, userID int64) ([]models.Book, error) {
	var books []models.Book
	err := s.db.SelectContext(ctx, &books,
		"SELECT * FROM books WHERE status = $1 AND reserved_by = $2 ORDER BY reserved_at",
		models.BookStatusReserved, userID)
	return books, err
}

// GetLoansByUserID lists books currently issued to a member
func (s *Store) GetLoansByUserID(ctx context.Context, userID int64) ([]models.Book, error) {
	var books []models.Book
	err := s.db.SelectContext(ctx, &books,
		"SELECT * FROM books WHERE status = $1 AND issued_to = $2 ORDER BY due_date",
		models.BookStatusIssued, userID)
	return books, err
}

func lockBook(ctx context.Context, tx *sqlx.Tx, bookID int64) (*models.Book, error) {
	var book models.Book
	err := tx.GetContext(ctx, &book, "SELECT * FROM books WHERE id = $1 FOR UPDATE", bookID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: book %d", ErrNotFound, bookID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock book: %w", err)
	}
	return &book, nil
}

func lockBookStatus(ctx context.Context, tx *sqlx.Tx, bookID int64) (string, error) {
	var status string
	err := tx.GetContext(ctx, &status, "SELECT status FROM books WHERE id = $1 FOR UPDATE", bookID)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("%w: book %d", ErrNotFound, bookID)
	}
	if err != nil {
		return "", fmt.Errorf("failed to lock book: %w", err)
	}
	return status, nil
}
