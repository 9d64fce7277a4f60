package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"lotto/models"
	"lotto/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func parseIDHeader(c *gin.Context, header string) (int64, bool) {
	raw := c.GetHeader(header)
	if raw == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": header + " header is required"})
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid " + header})
		return 0, false
	}
	return id, true
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

func fail(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

// Accounts

type createAccountRequest struct {
	Username        string      `json:"username" binding:"required"`
	FullName        string      `json:"fullName"`
	Role            models.Role `json:"role" binding:"required"`
	ParentAccountID *int64      `json:"parentAccountId"`
}

func (s *Server) createAccount(c *gin.Context) {
	var req createAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, err := s.accounts.CreateAccount(c.Request.Context(), req.Username, req.FullName, req.Role, req.ParentAccountID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, account)
}

func (s *Server) getAccount(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	account, err := s.accounts.GetAccount(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, account)
}

type balanceChangeRequest struct {
	Amount         decimal.Decimal `json:"amount" binding:"required"`
	Note           string          `json:"note"`
	AllowOverdraft bool            `json:"allowOverdraft"`
}

func (s *Server) loadBalance(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req balanceChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	txn, err := s.ledger.Load(c.Request.Context(), id, req.Amount, mustActor(c).Username, req.Note)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, txn)
}

func (s *Server) deductBalance(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req balanceChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	txn, err := s.ledger.Deduct(c.Request.Context(), id, req.Amount, req.AllowOverdraft, mustActor(c).Username, req.Note)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, txn)
}

func (s *Server) getBalance(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	balance, err := s.ledger.GetBalance(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"accountId": id, "balance": balance})
}

func (s *Server) listTransactions(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var from, to time.Time
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from timestamp"})
			return
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to timestamp"})
			return
		}
		to = parsed
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	txns, err := s.ledger.ListTransactions(c.Request.Context(), id, from, to, limit)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": txns})
}

func (s *Server) reconcile(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ledgerSum, stored, err := s.ledger.Reconcile(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accountId": id,
		"ledgerSum": ledgerSum,
		"stored":    stored,
		"balanced":  ledgerSum.Equal(stored),
	})
}

// Tickets

type betLineRequest struct {
	BetType     models.BetType  `json:"betType" binding:"required"`
	Combination string          `json:"combination" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
}

type placeBetRequest struct {
	DrawID int64            `json:"drawId" binding:"required"`
	Bets   []betLineRequest `json:"bets" binding:"required"`
}

func (s *Server) placeBet(c *gin.Context) {
	var req placeBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lines := make([]service.BetLine, 0, len(req.Bets))
	for _, b := range req.Bets {
		lines = append(lines, service.BetLine{
			BetType:     b.BetType,
			Combination: b.Combination,
			Amount:      b.Amount,
		})
	}

	result, err := s.betting.PlaceBet(c.Request.Context(), mustActor(c).ID, req.DrawID, lines)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"ticket":     result.Ticket,
		"newBalance": result.NewBalance,
		"commission": result.Commission,
	})
}

func (s *Server) getTicket(c *gin.Context) {
	ticket, err := s.betting.GetTicket(c.Request.Context(), c.Param("number"))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, ticket)
}

func (s *Server) voidTicket(c *gin.Context) {
	ticket, err := s.betting.VoidTicket(c.Request.Context(), c.Param("number"), mustActor(c).Username)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, ticket)
}

func (s *Server) ticketHistory(c *gin.Context) {
	entries, err := s.claims.GetTicketHistory(c.Request.Context(), c.Param("number"))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": entries})
}

// Draws

type scheduleDayRequest struct {
	Date string `json:"date" binding:"required"`
}

func (s *Server) scheduleDay(c *gin.Context) {
	var req scheduleDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	draws, err := s.draws.ScheduleDay(c.Request.Context(), date)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"draws": draws})
}

func (s *Server) listDraws(c *gin.Context) {
	raw := c.DefaultQuery("date", time.Now().Format("2006-01-02"))
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	draws, err := s.draws.ListDraws(c.Request.Context(), date)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"draws": draws})
}

func (s *Server) getDraw(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	draw, err := s.draws.GetDraw(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, draw)
}

type inputResultRequest struct {
	Result string `json:"result" binding:"required"`
}

func (s *Server) inputResult(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req inputResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary, err := s.draws.InputResult(c.Request.Context(), id, req.Result, mustActor(c).Username)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (s *Server) limitStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	statuses, err := s.draws.GetBetLimitStatus(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"limits": statuses})
}

type setLimitRequest struct {
	BetType     models.BetType  `json:"betType" binding:"required"`
	Combination string          `json:"combination"`
	MaxAmount   decimal.Decimal `json:"maxAmount" binding:"required"`
}

func (s *Server) setLimit(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req setLimitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.draws.SetBetLimit(c.Request.Context(), id, req.BetType, req.Combination, req.MaxAmount); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// Claims

type requestClaimRequest struct {
	TicketNumber   string `json:"ticketNumber" binding:"required"`
	ClaimerName    string `json:"claimerName" binding:"required"`
	ClaimerContact string `json:"claimerContact"`
}

func (s *Server) requestClaim(c *gin.Context) {
	var req requestClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claim, err := s.claims.RequestClaim(c.Request.Context(), req.TicketNumber, req.ClaimerName, req.ClaimerContact)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, claim)
}

func (s *Server) listPendingClaims(c *gin.Context) {
	claims, err := s.claims.ListPendingClaims(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"claims": claims})
}

func (s *Server) getClaim(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	claim, err := s.claims.GetClaim(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, claim)
}

type resolveClaimRequest struct {
	ApprovedPrize *decimal.Decimal `json:"approvedPrize"`
	Notes         string           `json:"notes"`
}

func (s *Server) approveClaim(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req resolveClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claim, err := s.claims.ApproveClaim(c.Request.Context(), id, req.ApprovedPrize, mustActor(c).Username, req.Notes)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, claim)
}

func (s *Server) rejectClaim(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req resolveClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claim, err := s.claims.RejectClaim(c.Request.Context(), id, mustActor(c).Username, req.Notes)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, claim)
}
