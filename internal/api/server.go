// Package api exposes the ledger core over an HTTP JSON API. Routes and
// payload shapes follow the browser client's expectations; all domain
// rules live in the services.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/centavo-dev/centavo/internal/date"
	"github.com/centavo-dev/centavo/internal/installment"
	"github.com/centavo-dev/centavo/internal/investment"
	"github.com/centavo-dev/centavo/internal/salary"
	"github.com/centavo-dev/centavo/internal/stats"
	"github.com/centavo-dev/centavo/internal/store"
)

// Server wires the services into HTTP handlers.
type Server struct {
	store        *store.Store
	stats        *stats.Service
	installments *installment.Service
	investments  *investment.Service
	salary       *salary.Service
	log          zerolog.Logger

	// now is injectable so handlers that default to "today" are testable.
	now func() time.Time
}

// NewServer creates a Server over the given services.
func NewServer(st *store.Store, statsSvc *stats.Service, instSvc *installment.Service,
	invSvc *investment.Service, salarySvc *salary.Service, log zerolog.Logger) *Server {
	return &Server{
		store:        st,
		stats:        statsSvc,
		installments: instSvc,
		investments:  invSvc,
		salary:       salarySvc,
		log:          log,
		now:          time.Now,
	}
}

// today is the server's current calendar day, used when a request omits
// an explicit date parameter.
func (s *Server) today() date.Date {
	return date.Today(s.now())
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router(corsOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLog())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/accounts", s.listAccounts)
		apiGroup.POST("/accounts", s.createAccount)
		apiGroup.PUT("/accounts/:id", s.updateAccount)
		apiGroup.DELETE("/accounts/:id", s.deleteAccount)

		apiGroup.GET("/categories", s.listCategories)
		apiGroup.POST("/categories", s.createCategory)

		apiGroup.GET("/transactions", s.listTransactions)
		apiGroup.POST("/transactions", s.createTransaction)
		apiGroup.PUT("/transactions/:id", s.updateTransaction)
		apiGroup.DELETE("/transactions/:id", s.deleteTransaction)

		apiGroup.GET("/stats", s.currentStats)
		apiGroup.GET("/stats/period", s.periodStats)
		apiGroup.GET("/stats/comparison", s.monthlyComparison)
		apiGroup.GET("/stats/top-expenses", s.topExpenses)
		apiGroup.GET("/stats/balance-history", s.balanceHistory)
		apiGroup.GET("/stats/expenses-by-category", s.expensesByCategory)

		apiGroup.GET("/installments", s.listInstallments)
		apiGroup.POST("/installments", s.createInstallment)
		apiGroup.POST("/installments/:id/payments/:paymentId/pay", s.payInstallment)
		apiGroup.DELETE("/installments/:id", s.deleteInstallment)

		apiGroup.GET("/investments", s.listInvestments)
		apiGroup.POST("/investments", s.createInvestment)
		apiGroup.PUT("/investments/:id", s.updateInvestment)
		apiGroup.DELETE("/investments/:id", s.deleteInvestment)
		apiGroup.GET("/investments/summary", s.investmentSummary)
		apiGroup.POST("/investments/:id/update-price", s.applyInvestmentPrice)
		apiGroup.POST("/investments/:id/sell", s.sellInvestment)
		apiGroup.POST("/investments/update-all-prices", s.refreshInvestmentPrices)

		apiGroup.GET("/salary", s.getSalary)
		apiGroup.POST("/salary", s.saveSalary)
		apiGroup.POST("/salary/process", s.processSalary)

		apiGroup.GET("/preferences/:key", s.getPreference)
		apiGroup.PUT("/preferences/:key", s.setPreference)
		apiGroup.DELETE("/preferences/:key", s.deletePreference)
	}

	return r
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	}
}

// writeError maps the core's error taxonomy onto HTTP status codes.
func (s *Server) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrInvalidReference),
		errors.Is(err, store.ErrAlreadyPaid),
		errors.Is(err, store.ErrAlreadyProcessed),
		errors.Is(err, store.ErrInsufficientQuantity):
		status = http.StatusConflict
	case errors.Is(err, store.ErrExternalService):
		status = http.StatusBadGateway
	}
	if status == http.StatusInternalServerError {
		s.log.Error().Err(err).Msg("request failed")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
