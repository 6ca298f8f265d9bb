package handler

import (
	"golang.org/x/time/rate"

	"warmtransfer/internal/app/handoff"
	"warmtransfer/internal/app/summary"
	"warmtransfer/internal/app/transfer"
	"warmtransfer/internal/configs"
	"warmtransfer/internal/pkg/auth/jwt"
	"warmtransfer/internal/pkg/limiter"
)

const (
	TokenRate     = 2
	TokenBurst    = 10
	TransferRate  = 0.5
	TransferBurst = 5
	HandoffRate   = 0.2
	HandoffBurst  = 5
)

// AppDeps is everything the handlers need.
type AppDeps struct {
	Config    *configs.AppConfig
	Issuer    *jwt.Issuer
	Transfers *transfer.Coordinator
	Summaries summary.Store
	Hub       *handoff.Manager
	Limiters  *Limiters
}

// Limiters holds the per-route IP rate limiters.
type Limiters struct {
	Token    *limiter.IPRateLimiter
	Transfer *limiter.IPRateLimiter
	Handoff  *limiter.IPRateLimiter
}

// NewLimiters returns the default per-route limits.
func NewLimiters() *Limiters {
	return &Limiters{
		Token:    limiter.NewIPRateLimiter("get_token", rate.Limit(TokenRate), TokenBurst),
		Transfer: limiter.NewIPRateLimiter("transfer", rate.Limit(TransferRate), TransferBurst),
		Handoff:  limiter.NewIPRateLimiter("handoff", rate.Limit(HandoffRate), HandoffBurst),
	}
}

// All returns every limiter, for sweeping.
func (l *Limiters) All() []*limiter.IPRateLimiter {
	return []*limiter.IPRateLimiter{l.Token, l.Transfer, l.Handoff}
}
