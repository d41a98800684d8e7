// Package iamcontainer wires the identity bounded context. It is the only
// place that knows which concrete store, limiter and notifier back the
// identity services.
package iamcontainer

import (
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/fundora/fundora/pkg/config"
	"github.com/fundora/fundora/pkg/iam/account"
	"github.com/fundora/fundora/pkg/iam/account/accountinfra"
	"github.com/fundora/fundora/pkg/iam/auth"
	"github.com/fundora/fundora/pkg/iam/auth/authinfra"
	"github.com/fundora/fundora/pkg/iam/otp"
	"github.com/fundora/fundora/pkg/iam/otp/otpinfra"
	"github.com/fundora/fundora/pkg/iam/password"
	"github.com/fundora/fundora/pkg/logx"
	"github.com/fundora/fundora/pkg/notifx"
)

// ---------------------------------------------------------------------------
// Deps: explicit external dependencies this bounded context requires.
// No hidden globals, no ambient state: everything comes through here.
// ---------------------------------------------------------------------------

type Deps struct {
	// DB may be nil when Cfg.StoreMode is "memory".
	DB *sqlx.DB

	// Redis may be nil when Cfg.LimiterMode is "memory".
	Redis *redis.Client

	Cfg *config.Config

	// Mail is the cross-context notification client; the identity module only
	// sees it through the otp.Notifier port.
	Mail *notifx.Client
}

// ---------------------------------------------------------------------------
// Container: the public surface of the identity module.
// Only expose what other modules or cmd/ actually need.
// ---------------------------------------------------------------------------

type Container struct {
	// Services, available for cross-module consumption
	AuthService     *auth.AuthService
	PasswordService *password.Service
	TokenService    auth.TokenService
	AccountStore    account.Store

	// Handlers, needed by cmd/ to register routes
	AuthHandlers     *auth.AuthHandlers
	PasswordHandlers *password.Handlers

	// Middleware, needed by cmd/ to protect route groups
	AuthMiddleware *auth.TokenMiddleware
}

// New constructs the identity dependency graph.
// Order matters: infra, then services, then handlers, then middleware.
func New(deps Deps) (*Container, error) {
	logx.Info("🔧 Initializing IAM container...")

	c := &Container{}
	authCfg := deps.Cfg.Auth

	// ── Account store ────────────────────────────────────────────────────

	switch deps.Cfg.StoreMode {
	case "memory":
		c.AccountStore = accountinfra.NewMemoryAccountStore()
		logx.Warn("  ⚠️  Using in-memory account store (not for production)")
	default:
		c.AccountStore = accountinfra.NewPostgresAccountStore(deps.DB)
		logx.Info("  ✅ Postgres account store configured")
	}

	// ── OTP limiter and notifier ─────────────────────────────────────────

	var limiter otp.Limiter
	if deps.Cfg.LimiterMode == "redis" {
		limiter = otpinfra.NewRedisLimiter(deps.Redis)
		logx.Info("  ✅ Redis OTP limiter configured")
	} else {
		limiter = otpinfra.NewMemoryLimiter()
		logx.Warn("  ⚠️  Using in-memory OTP limiter (not for production)")
	}

	notifier, err := otpinfra.NewEmailNotifier(deps.Mail, deps.Cfg.Mail)
	if err != nil {
		return nil, err
	}

	otpManager := otp.NewManager(notifier, limiter, otp.Options{
		Window:          authCfg.OTPWindow,
		MaxAttempts:     authCfg.OTPMaxAttempts,
		ResendCooldown:  authCfg.OTPResendCooldown,
		DispatchTimeout: deps.Cfg.Mail.DispatchTimeout,
	})

	// ── Infrastructure services ──────────────────────────────────────────

	passwordSvc := authinfra.NewBcryptPasswordService(authCfg.BcryptCost)
	auditSvc := authinfra.NewLogxAuditService()
	c.TokenService = auth.NewJWTService(authCfg)

	// ── Domain services ──────────────────────────────────────────────────

	c.AuthService = auth.NewAuthService(
		c.AccountStore,
		passwordSvc,
		c.TokenService,
		otpManager,
		auditSvc,
	)

	c.PasswordService = password.NewService(
		c.AccountStore,
		passwordSvc,
		c.TokenService,
		otpManager,
		auditSvc,
		authCfg.RevokeSessionsOnReset,
	)

	// ── Handlers and middleware ──────────────────────────────────────────

	c.AuthHandlers = auth.NewAuthHandlers(c.AuthService)
	c.PasswordHandlers = password.NewHandlers(c.PasswordService)
	c.AuthMiddleware = auth.NewTokenMiddleware(c.TokenService)

	logx.Info("✅ IAM container initialized")
	return c, nil
}
