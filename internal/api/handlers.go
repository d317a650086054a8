package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/centavo-dev/centavo/internal/date"
	"github.com/centavo-dev/centavo/internal/installment"
	"github.com/centavo-dev/centavo/internal/investment"
	"github.com/centavo-dev/centavo/internal/model"
	"github.com/centavo-dev/centavo/internal/store"
)

// pathID parses a numeric :id path parameter.
func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid id %q", store.ErrValidation, c.Param(name))
	}
	return id, nil
}

// queryDate parses an optional YYYY-MM-DD query parameter, returning the
// zero date when absent.
func queryDate(c *gin.Context, name string) (date.Date, error) {
	raw := c.Query(name)
	if raw == "" {
		return date.Date{}, nil
	}
	d, err := date.Parse(raw)
	if err != nil {
		return date.Date{}, fmt.Errorf("%w: %s: %v", store.ErrValidation, name, err)
	}
	return d, nil
}

// refDate parses the optional ref query parameter, defaulting to today.
func (s *Server) refDate(c *gin.Context) (date.Date, error) {
	d, err := queryDate(c, "ref")
	if err != nil {
		return date.Date{}, err
	}
	if d.IsZero() {
		return s.today(), nil
	}
	return d, nil
}

// --- accounts ---

type accountRequest struct {
	Name    string          `json:"name"`
	Type    string          `json:"type"`
	Balance decimal.Decimal `json:"balance"`
	Color   string          `json:"color"`
}

func (s *Server) listAccounts(c *gin.Context) {
	accounts, err := s.store.ListAccounts(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, accounts)
}

func (s *Server) createAccount(c *gin.Context) {
	var req accountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, fmt.Errorf("%w: %v", store.ErrValidation, err))
		return
	}
	account, err := s.store.CreateAccount(c.Request.Context(), model.Account{
		Name:    req.Name,
		Type:    model.AccountType(req.Type),
		Balance: req.Balance,
		Color:   req.Color,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, account)
}

func (s *Server) updateAccount(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		s.writeError(c, err)
		return
	}
	var req accountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, fmt.Errorf("%w: %v", store.ErrValidation, err))
		return
	}
	err = s.store.UpdateAccount(c.Request.Context(), model.Account{
		ID:    id,
		Name:  req.Name,
		Type:  model.AccountType(req.Type),
		Color: req.Color,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	account, err := s.store.GetAccount(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

func (s *Server) deleteAccount(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		s.writeError(c, err)
		return
	}
	if err := s.store.DeleteAccount(c.Request.Context(), id); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- categories ---

type categoryRequest struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

func (s *Server) listCategories(c *gin.Context) {
	categories, err := s.store.ListCategories(c.Request.Context(), model.FlowType(c.Query("type")))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (s *Server) createCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, fmt.Errorf("%w: %v", store.ErrValidation, err))
		return
	}
	category, err := s.store.CreateCategory(c.Request.Context(), model.Category{
		Name:  req.Name,
		Type:  model.FlowType(req.Type),
		Color: req.Color,
		Icon:  req.Icon,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// --- transactions ---

type transactionRequest struct {
	AccountID   int64           `json:"accountId"`
	CategoryID  *int64          `json:"categoryId"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        date.Date       `json:"date"`
}

func (r transactionRequest) toModel(id int64) model.Transaction {
	return model.Transaction{
		ID:          id,
		AccountID:   r.AccountID,
		CategoryID:  r.CategoryID,
		Type:        model.FlowType(r.Type),
		Amount:      r.Amount,
		Description: r.Description,
		Date:        r.Date,
	}
}

func (s *Server) listTransactions(c *gin.Context) {
	var filter model.TransactionFilter
	if raw := c.Query("accountId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			s.writeError(c, fmt.Errorf("%w: invalid accountId %q", store.ErrValidation, raw))
			return
		}
		filter.AccountID = id
	}
	if raw := c.Query("categoryId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			s.writeError(c, fmt.Errorf("%w: invalid categoryId %q", store.ErrValidation, raw))
			return
		}
		filter.CategoryID = id
	}
	filter.Type = model.FlowType(c.Query("type"))
	filter.Search = c.Query("search")

	var err error
	if filter.From, err = queryDate(c, "startDate"); err != nil {
		s.writeError(c, err)
		return
	}
	if filter.To, err = queryDate(c, "endDate"); err != nil {
		s.writeError(c, err)
		return
	}

	transactions, err := s.store.ListTransactions(c.Request.Context(), filter)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, transactions)
}

func (s *Server) createTransaction(c *gin.Context) {
	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, fmt.Errorf("%w: %v", store.ErrValidation, err))
		return
	}
	t, err := s.store.CreateTransaction(c.Request.Context(), req.toModel(0))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (s *Server) updateTransaction(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		s.writeError(c, err)
		return
	}
	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, fmt.Errorf("%w: %v", store.ErrValidation, err))
		return
	}
	if err := s.store.UpdateTransaction(c.Request.Context(), req.toModel(id)); err != nil {
		s.writeError(c, err)
		return
	}
	t, err := s.store.GetTransaction(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) deleteTransaction(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		s.writeError(c, err)
		return
	}
	if err := s.store.DeleteTransaction(c.Request.Context(), id); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- stats ---

func (s *Server) currentStats(c *gin.Context) {
	ref, err := s.refDate(c)
	if err != nil {
		s.writeError(c, err)
		return
	}
	stats, err := s.stats.Current(c.Request.Context(), ref)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) periodStats(c *gin.Context) {
	start, err := queryDate(c, "startDate")
	if err != nil {
		s.writeError(c, err)
		return
	}
	end, err := queryDate(c, "endDate")
	if err != nil {
		s.writeError(c, err)
		return
	}
	if start.IsZero() || end.IsZero() {
		s.writeError(c, fmt.Errorf("%w: startDate and endDate are required", store.ErrValidation))
		return
	}
	totals, err := s.stats.Period(c.Request.Context(), start, end)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, totals)
}

func (s *Server) monthlyComparison(c *gin.Context) {
	ref, err := s.refDate(c)
	if err != nil {
		s.writeError(c, err)
		return
	}
	comparison, err := s.stats.MonthlyComparison(c.Request.Context(), ref)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, comparison)
}

func (s *Server) topExpenses(c *gin.Context) {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.writeError(c, fmt.Errorf("%w: invalid limit %q", store.ErrValidation, raw))
			return
		}
		limit = n
	}
	from, err := queryDate(c, "startDate")
	if err != nil {
		s.writeError(c, err)
		return
	}
	to, err := queryDate(c, "endDate")
	if err != nil {
		s.writeError(c, err)
		return
	}
	expenses, err := s.stats.TopExpenses(c.Request.Context(), limit, from, to)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, expenses)
}

func (s *Server) balanceHistory(c *gin.Context) {
	ref, err := s.refDate(c)
	if err != nil {
		s.writeError(c, err)
		return
	}
	months := 6
	if raw := c.Query("months"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(c, fmt.Errorf("%w: invalid months %q", store.ErrValidation, raw))
			return
		}
		months = n
	}
	history, err := s.stats.BalanceHistory(c.Request.Context(), ref, months)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

func (s *Server) expensesByCategory(c *gin.Context) {
	start, err := queryDate(c, "startDate")
	if err != nil {
		s.writeError(c, err)
		return
	}
	end, err := queryDate(c, "endDate")
	if err != nil {
		s.writeError(c, err)
		return
	}
	if start.IsZero() || end.IsZero() {
		ref, err := s.refDate(c)
		if err != nil {
			s.writeError(c, err)
			return
		}
		start, end = ref.MonthStart(), ref.MonthEnd()
	}
	totals, err := s.stats.ExpensesByCategory(c.Request.Context(), start, end)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, totals)
}

// --- installments ---

type installmentRequest struct {
	Description string          `json:"description"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Count       int             `json:"installments"`
	StartDate   date.Date       `json:"startDate"`
	AccountID   int64           `json:"accountId"`
	CategoryID  *int64          `json:"categoryId"`
}

func (s *Server) listInstallments(c *gin.Context) {
	purchases, err := s.installments.List(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, purchases)
}

func (s *Server) createInstallment(c *gin.Context) {
	var req installmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, fmt.Errorf("%w: %v", store.ErrValidation, err))
		return
	}
	purchase, err := s.installments.Create(c.Request.Context(), installment.CreateParams{
		Description: req.Description,
		TotalAmount: req.TotalAmount,
		Count:       req.Count,
		StartDate:   req.StartDate,
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, purchase)
}

func (s *Server) payInstallment(c *gin.Context) {
	var req struct {
		PaidDate date.Date `json:"paidDate"`
	}
	// The body is optional; paying with no body settles as of today.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(c, fmt.Errorf("%w: %v", store.ErrValidation, err))
		return
	}
	paidDate := req.PaidDate
	if paidDate.IsZero() {
		paidDate = s.today()
	}
	t, err := s.installments.Pay(c.Request.Context(), c.Param("id"), c.Param("paymentId"), paidDate)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) deleteInstallment(c *gin.Context) {
	if err := s.installments.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- investments ---

type investmentRequest struct {
	Ticker       string           `json:"ticker"`
	Name         string           `json:"name"`
	Type         string           `json:"type"`
	Quantity     decimal.Decimal  `json:"quantity"`
	AveragePrice decimal.Decimal  `json:"averagePrice"`
	CurrentPrice *decimal.Decimal `json:"currentPrice"`
	Notes        string           `json:"notes"`

	FundFromAccount int64     `json:"fundFromAccount"`
	FundCategoryID  *int64    `json:"fundCategoryId"`
	FundDate        date.Date `json:"fundDate"`
}

func (r investmentRequest) toParams() investment.RecordParams {
	return investment.RecordParams{
		Ticker:          r.Ticker,
		Name:            r.Name,
		Type:            r.Type,
		Quantity:        r.Quantity,
		AveragePrice:    r.AveragePrice,
		CurrentPrice:    r.CurrentPrice,
		Notes:           r.Notes,
		FundFromAccount: r.FundFromAccount,
		FundCategoryID:  r.FundCategoryID,
		FundDate:        r.FundDate,
	}
}

func (s *Server) listInvestments(c *gin.Context) {
	positions, err := s.investments.List(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, positions)
}

func (s *Server) createInvestment(c *gin.Context) {
	var req investmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, fmt.Errorf("%w: %v", store.ErrValidation, err))
		return
	}
	params := req.toParams()
	if params.FundFromAccount != 0 && params.FundDate.IsZero() {
		params.FundDate = s.today()
	}
	position, err := s.investments.Record(c.Request.Context(), params)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, position)
}

func (s *Server) updateInvestment(c *gin.Context) {
	var req investmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, fmt.Errorf("%w: %v", store.ErrValidation, err))
		return
	}
	position, err := s.investments.Update(c.Request.Context(), c.Param("id"), req.toParams())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, position)
}

func (s *Server) deleteInvestment(c *gin.Context) {
	if err := s.investments.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) investmentSummary(c *gin.Context) {
	summary, err := s.investments.Summary(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) applyInvestmentPrice(c *gin.Context) {
	var req struct {
		Price decimal.Decimal `json:"price"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, fmt.Errorf("%w: %v", store.ErrValidation, err))
		return
	}
	position, err := s.investments.ApplyPrice(c.Request.Context(), c.Param("id"), req.Price)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, position)
}

func (s *Server) sellInvestment(c *gin.Context) {
	var req struct {
		Quantity  decimal.Decimal `json:"quantity"`
		SellPrice decimal.Decimal `json:"sellPrice"`
		AccountID int64           `json:"accountId"`
		Date      date.Date       `json:"date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, fmt.Errorf("%w: %v", store.ErrValidation, err))
		return
	}
	sellDate := req.Date
	if sellDate.IsZero() {
		sellDate = s.today()
	}
	result, err := s.investments.Sell(c.Request.Context(), c.Param("id"), req.Quantity, req.SellPrice, req.AccountID, sellDate)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) refreshInvestmentPrices(c *gin.Context) {
	result, err := s.investments.RefreshPrices(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// --- salary ---

type salaryRequest struct {
	Amount     decimal.Decimal `json:"amount"`
	AccountID  int64           `json:"accountId"`
	CategoryID *int64          `json:"categoryId"`
}

func (s *Server) getSalary(c *gin.Context) {
	cfg, err := s.salary.Get(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (s *Server) saveSalary(c *gin.Context) {
	var req salaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, fmt.Errorf("%w: %v", store.ErrValidation, err))
		return
	}
	cfg, err := s.salary.Save(c.Request.Context(), req.Amount, req.AccountID, req.CategoryID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (s *Server) processSalary(c *gin.Context) {
	t, err := s.salary.Process(c.Request.Context(), s.today())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

// --- preferences ---

func (s *Server) getPreference(c *gin.Context) {
	value, err := s.store.GetPreference(c.Request.Context(), c.Param("key"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": c.Param("key"), "value": value})
}

func (s *Server) setPreference(c *gin.Context) {
	var req struct {
		Value string `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, fmt.Errorf("%w: %v", store.ErrValidation, err))
		return
	}
	if err := s.store.SetPreference(c.Request.Context(), c.Param("key"), req.Value); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": c.Param("key"), "value": req.Value})
}

func (s *Server) deletePreference(c *gin.Context) {
	if err := s.store.DeletePreference(c.Request.Context(), c.Param("key")); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
