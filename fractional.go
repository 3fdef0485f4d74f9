package fractional

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/openfract/fractional/currency"
	"github.com/openfract/fractional/id"
	"github.com/openfract/fractional/ownerindex"
	"github.com/openfract/fractional/plugin"
	"github.com/openfract/fractional/store"
)

// Authorizer answers whether the caller of an operation is entitled to act
// as the given account. The host application supplies one; signature
// checking, session lookups, and similar concerns live there.
type Authorizer interface {
	Authorize(ctx context.Context, account id.AccountID) error
}

// AuthorizerFunc adapts a function to the Authorizer interface.
type AuthorizerFunc func(ctx context.Context, account id.AccountID) error

func (f AuthorizerFunc) Authorize(ctx context.Context, account id.AccountID) error {
	return f(ctx, account)
}

// AllowAll authorizes every caller for every account. Useful in tests and in
// hosts that enforce authorization upstream.
var AllowAll = AuthorizerFunc(func(context.Context, id.AccountID) error { return nil })

// Ledger is the fractional ownership engine.
type Ledger struct {
	store    store.Store
	currency currency.Ledger
	index    *ownerindex.Index
	plugins  *plugin.Registry
	logger   *slog.Logger
	auth     Authorizer
	now      func() time.Time

	// Sale proposal duration bounds
	minSaleDuration time.Duration
	maxSaleDuration time.Duration

	// Settlement account to use at Initialize, when set via option
	settlementOverride id.AccountID
}

// New creates a new Ledger instance backed by the given store and payment
// currency ledger.
func New(s store.Store, c currency.Ledger, opts ...Option) *Ledger {
	l := &Ledger{
		store:           s,
		currency:        c,
		index:           ownerindex.New(s),
		plugins:         plugin.NewRegistry(),
		logger:          slog.Default(),
		auth:            AllowAll,
		now:             time.Now,
		minSaleDuration: time.Hour,
		maxSaleDuration: 168 * time.Hour,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Option configures a Ledger instance.
type Option func(*Ledger)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
		l.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(l *Ledger) {
		_ = l.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithAuthorizer sets the caller authorization hook.
func WithAuthorizer(a Authorizer) Option {
	return func(l *Ledger) {
		l.auth = a
	}
}

// WithClock overrides the time source. Tests use this to drive proposal
// expiry deterministically.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

// WithSaleDurationBounds sets the accepted range for proposal lifetimes.
func WithSaleDurationBounds(min, max time.Duration) Option {
	return func(l *Ledger) {
		l.minSaleDuration = min
		l.maxSaleDuration = max
	}
}

// WithSettlementAccount fixes the account that holds trade allowances.
// Without this option Initialize generates one.
func WithSettlementAccount(account id.AccountID) Option {
	return func(l *Ledger) {
		l.settlementOverride = account
	}
}

// Start migrates the store and initializes plugins.
func (l *Ledger) Start(ctx context.Context) error {
	if err := l.store.Migrate(ctx); err != nil {
		return err
	}

	l.plugins.EmitInit(ctx, l)

	l.logger.Info("fractional ledger started",
		"min_sale_duration", l.minSaleDuration,
		"max_sale_duration", l.maxSaleDuration,
	)

	return nil
}

// Stop shuts down the Ledger.
func (l *Ledger) Stop() error {
	ctx := context.Background()
	l.plugins.EmitShutdown(ctx)

	return l.store.Close()
}

// Plugins returns the plugin registry.
func (l *Ledger) Plugins() *plugin.Registry {
	return l.plugins
}

// ──────────────────────────────────────────────────
// Administration
// ──────────────────────────────────────────────────

// Initialize sets the admin account. It can be called once; subsequent calls
// fail with ErrAlreadyInitialized. A settlement account is persisted at the
// same time and holds allowances granted during sale confirmation.
func (l *Ledger) Initialize(ctx context.Context, admin id.AccountID) error {
	if admin.IsNil() {
		return ValidationError{Field: "admin", Message: "account is required"}
	}

	if _, err := l.store.GetAdmin(ctx); err == nil {
		return ErrAlreadyInitialized
	}

	settlement := l.settlementOverride
	if settlement.IsNil() {
		settlement = id.NewSettlementID()
	}

	if err := l.store.SetAdmin(ctx, admin); err != nil {
		return err
	}
	if err := l.store.SetSettlementAccount(ctx, settlement); err != nil {
		return err
	}

	l.logger.Info("ledger initialized",
		"admin", admin,
		"settlement_account", settlement,
	)

	return nil
}

// Admin returns the admin account.
func (l *Ledger) Admin(ctx context.Context) (id.AccountID, error) {
	return l.store.GetAdmin(ctx)
}

// SettlementAccount returns the account that holds trade allowances.
func (l *Ledger) SettlementAccount(ctx context.Context) (id.AccountID, error) {
	return l.store.GetSettlementAccount(ctx)
}

// TransferAdmin hands admin rights to a new account. The current admin must
// authorize the call.
func (l *Ledger) TransferAdmin(ctx context.Context, newAdmin id.AccountID) error {
	if newAdmin.IsNil() {
		return ValidationError{Field: "new_admin", Message: "account is required"}
	}

	oldAdmin, err := l.requireAdmin(ctx)
	if err != nil {
		return err
	}

	if err := l.store.SetAdmin(ctx, newAdmin); err != nil {
		return err
	}

	l.logger.Info("admin transferred", "old", oldAdmin, "new", newAdmin)
	l.plugins.EmitAdminTransferred(ctx, oldAdmin, newAdmin)
	return nil
}

// requireAuth verifies the caller may act as the given account.
func (l *Ledger) requireAuth(ctx context.Context, account id.AccountID) error {
	if err := l.auth.Authorize(ctx, account); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnauthorized, account, err)
	}
	return nil
}

// requireAdmin verifies the caller may act as the admin and returns it.
func (l *Ledger) requireAdmin(ctx context.Context) (id.AccountID, error) {
	admin, err := l.store.GetAdmin(ctx)
	if err != nil {
		return id.Nil, err
	}
	if err := l.requireAuth(ctx, admin); err != nil {
		return id.Nil, err
	}
	return admin, nil
}
