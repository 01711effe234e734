package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// RecordStatus is the outcome of a mirrored offering write.
type RecordStatus string

const (
	StatusRecorded  RecordStatus = "RECORDED"
	StatusDuplicate RecordStatus = "DUPLICATE"
)

// RecordOfferingRequest is one offering entry mirrored from the card
// ledger.
type RecordOfferingRequest struct {
	EntryID     int64           `json:"entry_id" binding:"required"`
	CardCode    string          `json:"card_code" binding:"required"`
	PayerID     int64           `json:"payer_id"`
	EntryType   string          `json:"entry_type" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	ServiceDate string          `json:"service_date" binding:"required"`
	MassType    string          `json:"mass_type"`
}

// RecordOfferingResponse is returned after a mirror write.
type RecordOfferingResponse struct {
	ID         int64        `json:"id"`
	Status     RecordStatus `json:"status"`
	RecordedAt time.Time    `json:"recorded_at"`
	LedgerID   string       `json:"ledger_id"`
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	LedgerID  string    `json:"ledger_id"`
	Timestamp time.Time `json:"timestamp"`
	Records   int       `json:"records"`
}

// MockLedger simulates the legacy church ledger. Records live in
// memory keyed by entry id, so replays are answered as duplicates
// instead of double-counted.
type MockLedger struct {
	mu       sync.Mutex
	records  map[int64]*RecordOfferingResponse
	nextID   int64
	ledgerID string
	minDelay time.Duration
	maxDelay time.Duration
}

// NewMockLedger creates a new mock ledger instance
func NewMockLedger(minDelay, maxDelay time.Duration) *MockLedger {
	return &MockLedger{
		records:  make(map[int64]*RecordOfferingResponse),
		nextID:   1,
		ledgerID: "MOCK_LEDGER_" + uuid.New().String()[:8],
		minDelay: minDelay,
		maxDelay: maxDelay,
	}
}

// record writes one entry, answering a replay with the original row.
func (m *MockLedger) record(req *RecordOfferingRequest) *RecordOfferingResponse {
	time.Sleep(m.minDelay)

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.records[req.EntryID]; ok {
		log.Info().
			Int64("entry_id", req.EntryID).
			Str("card_code", req.CardCode).
			Msg("Duplicate entry, returning original record")

		dup := *existing
		dup.Status = StatusDuplicate
		return &dup
	}

	response := &RecordOfferingResponse{
		ID:         m.nextID,
		Status:     StatusRecorded,
		RecordedAt: time.Now(),
		LedgerID:   m.ledgerID,
	}
	m.records[req.EntryID] = response
	m.nextID++

	log.Info().
		Int64("entry_id", req.EntryID).
		Str("card_code", req.CardCode).
		Str("entry_type", req.EntryType).
		Str("amount", req.Amount.String()).
		Msg("Offering entry recorded")

	return response
}

func (m *MockLedger) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// Handler struct holds the mock ledger and routes
type Handler struct {
	ledger *MockLedger
}

func NewHandler(ledger *MockLedger) *Handler {
	return &Handler{ledger: ledger}
}

// RecordOffering handles mirrored offering entries
func (h *Handler) RecordOffering(c *gin.Context) {
	var req RecordOfferingRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	log.Info().
		Int64("entry_id", req.EntryID).
		Str("card_code", req.CardCode).
		Str("mass_type", req.MassType).
		Msg("Received offering record request")

	response := h.ledger.record(&req)

	statusCode := http.StatusCreated
	if response.Status == StatusDuplicate {
		statusCode = http.StatusOK
	}

	c.JSON(statusCode, response)
}

// GetRecord returns a previously mirrored entry
func (h *Handler) GetRecord(c *gin.Context) {
	var entryID int64
	if _, err := fmt.Sscanf(c.Param("entry_id"), "%d", &entryID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "entry_id must be numeric",
		})
		return
	}

	h.ledger.mu.Lock()
	record, ok := h.ledger.records[entryID]
	h.ledger.mu.Unlock()

	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "record not found",
		})
		return
	}

	c.JSON(http.StatusOK, record)
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		LedgerID:  h.ledger.ledgerID,
		Timestamp: time.Now(),
		Records:   h.ledger.count(),
	})
}

// SetupRouter configures all routes
func SetupRouter(handler *Handler) *gin.Engine {
	router := gin.Default()

	// Add request logging middleware
	router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Msg("Request processed")
	})

	// API routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/offerings", handler.RecordOffering)
		v1.GET("/offerings/:entry_id", handler.GetRecord)
		v1.GET("/health", handler.HealthCheck)
	}

	// Root health check
	router.GET("/health", handler.HealthCheck)

	return router
}

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Get configuration from environment
	port := getEnv("PORT", "8081")
	minDelay := getEnvDuration("MIN_DELAY", 50*time.Millisecond)
	maxDelay := getEnvDuration("MAX_DELAY", 500*time.Millisecond)

	log.Info().
		Str("port", port).
		Dur("min_delay", minDelay).
		Dur("max_delay", maxDelay).
		Msg("Starting Mock Legacy Ledger")

	// Create mock ledger
	ledger := NewMockLedger(minDelay, maxDelay)
	handler := NewHandler(ledger)
	router := SetupRouter(handler)

	// Setup HTTP server
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
