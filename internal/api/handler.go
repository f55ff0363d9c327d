package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"circulation-service/internal/models"
	"circulation-service/internal/service"
	"circulation-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	circulation *service.CirculationService
	payments    *service.PaymentService
	recommender service.Recommender
}

// NewHandler creates a new HTTP handler
func NewHandler(circulation *service.CirculationService, payments *service.PaymentService, recommender service.Recommender) *Handler {
	return &Handler{
		circulation: circulation,
		payments:    payments,
		recommender: recommender,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/books", h.createBook)
		v1.GET("/books/recommendations", h.recommendations)
		v1.GET("/books/:id", h.getBook)
		v1.POST("/books/:id/reserve", h.reserveBook)
		v1.POST("/books/:id/cancel-reservation", h.cancelReservation)
		v1.POST("/books/:id/issue", h.issueBook)
		v1.POST("/books/:id/return", h.returnBook)

		v1.POST("/users", h.createUser)
		v1.GET("/users/:id", h.getUser)
		v1.GET("/users/:id/reservations", h.userReservations)
		v1.GET("/users/:id/loans", h.userLoans)
		v1.GET("/users/:id/payments", h.userPayments)

		v1.POST("/payments", h.createPaymentOrder)
		v1.POST("/payments/verify", h.verifyPayment)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// createBook handles catalog record creation
func (h *Handler) createBook(c *gin.Context) {
	var book models.Book
	if err := c.ShouldBindJSON(&book); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if err := h.circulation.CreateBook(c.Request.Context(), &book); err != nil {
		respondError(c, "Failed to create book", err)
		return
	}

	c.JSON(http.StatusCreated, book)
}

// getBook handles get book by ID
func (h *Handler) getBook(c *gin.Context) {
	bookID, ok := pathID(c)
	if !ok {
		return
	}

	book, err := h.circulation.GetBook(c.Request.Context(), bookID)
	if err != nil {
		respondError(c, "Failed to get book", err)
		return
	}

	c.JSON(http.StatusOK, book)
}

// reserveBook handles reservation requests
func (h *Handler) reserveBook(c *gin.Context) {
	bookID, ok := pathID(c)
	if !ok {
		return
	}

	var req struct {
		UserID int64 `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if err := h.circulation.Reserve(c.Request.Context(), bookID, req.UserID); err != nil {
		respondError(c, "Failed to reserve book", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "book reserved"})
}

// cancelReservation handles reservation cancellation
func (h *Handler) cancelReservation(c *gin.Context) {
	bookID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.circulation.CancelReservation(c.Request.Context(), bookID); err != nil {
		respondError(c, "Failed to cancel reservation", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "reservation cancelled"})
}

// issueBook handles book issue requests
func (h *Handler) issueBook(c *gin.Context) {
	bookID, ok := pathID(c)
	if !ok {
		return
	}

	var req struct {
		UserID int64 `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	book, err := h.circulation.Issue(c.Request.Context(), bookID, req.UserID)
	if err != nil {
		respondError(c, "Failed to issue book", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"book": book})
}

// returnBook handles book return requests
func (h *Handler) returnBook(c *gin.Context) {
	bookID, ok := pathID(c)
	if !ok {
		return
	}

	_, fine, err := h.circulation.Return(c.Request.Context(), bookID)
	if err != nil {
		respondError(c, "Failed to return book", err)
		return
	}

	msg := "book returned"
	if fine > 0 {
		msg = "book returned with outstanding fine"
	}
	c.JSON(http.StatusOK, gin.H{"message": msg, "fine": fine})
}

// createUser handles member registration
func (h *Handler) createUser(c *gin.Context) {
	var user models.User
	if err := c.ShouldBindJSON(&user); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if err := h.circulation.CreateUser(c.Request.Context(), &user); err != nil {
		respondError(c, "Failed to create user", err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// getUser handles get user by ID
func (h *Handler) getUser(c *gin.Context) {
	userID, ok := pathID(c)
	if !ok {
		return
	}

	user, err := h.circulation.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "Failed to get user", err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// userReservations lists a member's current holds
func (h *Handler) userReservations(c *gin.Context) {
	userID, ok := pathID(c)
	if !ok {
		return
	}

	books, err := h.circulation.MyReservations(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "Failed to list reservations", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reservations": books})
}

// userLoans lists a member's current loans
func (h *Handler) userLoans(c *gin.Context) {
	userID, ok := pathID(c)
	if !ok {
		return
	}

	books, err := h.circulation.MyLoans(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "Failed to list loans", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"loans": books})
}

// userPayments lists a member's payment history
func (h *Handler) userPayments(c *gin.Context) {
	userID, ok := pathID(c)
	if !ok {
		return
	}

	payments, err := h.payments.MyPayments(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "Failed to list payments", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payments": payments})
}

// recommendations returns the most popular titles
func (h *Handler) recommendations(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	books, err := h.recommender.Recommend(c.Request.Context(), limit)
	if err != nil {
		respondError(c, "Failed to get recommendations", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recommendations": books})
}

// createPaymentOrder opens a gateway order for a fine
func (h *Handler) createPaymentOrder(c *gin.Context) {
	var req struct {
		BookID int64 `json:"book_id" binding:"required"`
		UserID int64 `json:"user_id" binding:"required"`
		Amount int64 `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	order, err := h.payments.CreateOrder(c.Request.Context(), req.BookID, req.UserID, req.Amount)
	if err != nil {
		respondError(c, "Failed to create payment order", err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// verifyPayment verifies a gateway payment and settles the fine
func (h *Handler) verifyPayment(c *gin.Context) {
	var req struct {
		BookID    int64  `json:"book_id" binding:"required"`
		PaymentID string `json:"payment_id" binding:"required"`
		OrderID   string `json:"order_id" binding:"required"`
		Signature string `json:"signature" binding:"required"`
		Amount    int64  `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	err := h.payments.VerifyPayment(c.Request.Context(), req.BookID, req.PaymentID, req.OrderID, req.Signature, req.Amount)
	if err != nil {
		respondError(c, "Payment verification failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "payment verified"})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return 0, false
	}
	return id, true
}

func respondError(c *gin.Context, msg string, err error) {
	c.JSON(statusFor(err), gin.H{
		"error":   msg,
		"details": err.Error(),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidState),
		errors.Is(err, service.ErrInvalidSignature),
		errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
