package httpapi

import (
	"context"
	"net/http"
	"time"

	"lotto/models"
	"lotto/service"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Server exposes the betting network over HTTP
type Server struct {
	accounts service.AccountService
	ledger   service.LedgerService
	betting  service.BettingService
	draws    service.DrawService
	claims   service.ClaimService

	httpServer *http.Server
}

// NewServer creates a new HTTP server over the given services
func NewServer(accounts service.AccountService, ledger service.LedgerService, betting service.BettingService, draws service.DrawService, claims service.ClaimService) *Server {
	return &Server{
		accounts: accounts,
		ledger:   ledger,
		betting:  betting,
		draws:    draws,
		claims:   claims,
	}
}

// Router builds the gin engine with all routes registered
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")

	v1.POST("/accounts", s.requireRole(adminOnly), s.createAccount)
	v1.GET("/accounts/:id", s.requireRole(adminOnly), s.getAccount)
	v1.POST("/accounts/:id/load", s.requireRole(adminOnly), s.loadBalance)
	v1.POST("/accounts/:id/deduct", s.requireRole(adminOnly), s.deductBalance)
	v1.GET("/accounts/:id/balance", s.requireActor(), s.getBalance)
	v1.GET("/accounts/:id/transactions", s.requireActor(), s.listTransactions)
	v1.GET("/accounts/:id/reconcile", s.requireRole(adminOnly), s.reconcile)

	v1.POST("/tickets", s.requireRole(sellers), s.placeBet)
	v1.GET("/tickets/:number", s.requireActor(), s.getTicket)
	v1.POST("/tickets/:number/void", s.requireRole(sellers), s.voidTicket)
	v1.GET("/tickets/:number/history", s.requireActor(), s.ticketHistory)

	v1.POST("/draws", s.requireRole(adminOnly), s.scheduleDay)
	v1.GET("/draws", s.requireActor(), s.listDraws)
	v1.GET("/draws/:id", s.requireActor(), s.getDraw)
	v1.POST("/draws/:id/result", s.requireRole(resultInput), s.inputResult)
	v1.GET("/draws/:id/limits", s.requireActor(), s.limitStatus)
	v1.PUT("/draws/:id/limits", s.requireRole(limitEditors), s.setLimit)

	v1.POST("/claims", s.requireActor(), s.requestClaim)
	v1.GET("/claims/pending", s.requireRole(claimResolvers), s.listPendingClaims)
	v1.GET("/claims/:id", s.requireActor(), s.getClaim)
	v1.POST("/claims/:id/approve", s.requireRole(claimResolvers), s.approveClaim)
	v1.POST("/claims/:id/reject", s.requireRole(claimResolvers), s.rejectClaim)

	return r
}

// Start runs the server on addr until the context is cancelled
func (s *Server) Start(ctx context.Context, addr string) error {
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	log.WithField("addr", addr).Info("HTTP server started")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

// Role gates for route groups
func adminOnly(r models.Role) bool      { return r == models.RoleSuperAdmin || r == models.RoleAdmin }
func sellers(r models.Role) bool        { return r.CanSellTickets() }
func resultInput(r models.Role) bool    { return r.CanInputResults() }
func limitEditors(r models.Role) bool   { return r.CanEditLimits() }
func claimResolvers(r models.Role) bool { return r.CanResolveClaims() }

const actorKey = "actor"

// requireActor resolves the calling account from the X-Actor-Id header
func (s *Server) requireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := s.lookupActor(c)
		if !ok {
			return
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

// requireRole resolves the actor and refuses roles the gate rejects
func (s *Server) requireRole(allowed func(models.Role) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := s.lookupActor(c)
		if !ok {
			return
		}
		if !allowed(actor.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "role " + string(actor.Role) + " may not perform this operation"})
			return
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

func (s *Server) lookupActor(c *gin.Context) (*models.Account, bool) {
	id, ok := parseIDHeader(c, "X-Actor-Id")
	if !ok {
		return nil, false
	}

	actor, err := s.accounts.GetAccount(c.Request.Context(), id)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown actor"})
		return nil, false
	}
	if !actor.Active {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "account is inactive"})
		return nil, false
	}

	return actor, true
}

func mustActor(c *gin.Context) *models.Account {
	return c.MustGet(actorKey).(*models.Account)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(log.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
		}).Debug("Request handled")
	}
}
