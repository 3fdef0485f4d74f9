package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/openfract/fractional/asset"
	"github.com/openfract/fractional/id"
)

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery for O(1) dispatch performance.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger

	// Type-cached plugin lists for efficient dispatch
	onInit              []OnInit
	onShutdown          []OnShutdown
	onMint              []OnMint
	onTransfer          []OnTransfer
	onApproval          []OnApproval
	onApprovalForAll    []OnApprovalForAll
	onAdminTransferred  []OnAdminTransferred
	onAssetURIUpdated   []OnAssetURIUpdated
	onProposalCreated   []OnProposalCreated
	onTradeCompleted    []OnTradeCompleted
	onProposalWithdrawn []OnProposalWithdrawn
	onProposalExpired   []OnProposalExpired
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger: slog.Default(),
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate
	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	// Type-switch to cache interfaces
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnMint); ok {
		r.onMint = append(r.onMint, v)
	}
	if v, ok := p.(OnTransfer); ok {
		r.onTransfer = append(r.onTransfer, v)
	}
	if v, ok := p.(OnApproval); ok {
		r.onApproval = append(r.onApproval, v)
	}
	if v, ok := p.(OnApprovalForAll); ok {
		r.onApprovalForAll = append(r.onApprovalForAll, v)
	}
	if v, ok := p.(OnAdminTransferred); ok {
		r.onAdminTransferred = append(r.onAdminTransferred, v)
	}
	if v, ok := p.(OnAssetURIUpdated); ok {
		r.onAssetURIUpdated = append(r.onAssetURIUpdated, v)
	}
	if v, ok := p.(OnProposalCreated); ok {
		r.onProposalCreated = append(r.onProposalCreated, v)
	}
	if v, ok := p.(OnTradeCompleted); ok {
		r.onTradeCompleted = append(r.onTradeCompleted, v)
	}
	if v, ok := p.(OnProposalWithdrawn); ok {
		r.onProposalWithdrawn = append(r.onProposalWithdrawn, v)
	}
	if v, ok := p.(OnProposalExpired); ok {
		r.onProposalExpired = append(r.onProposalExpired, v)
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", r.getImplementedInterfaces(p),
	)

	return nil
}

// getImplementedInterfaces returns a list of interfaces implemented by the plugin.
func (r *Registry) getImplementedInterfaces(p Plugin) []string {
	var interfaces []string
	v := reflect.TypeOf(p)

	// Check each interface
	checkInterface := func(iface reflect.Type, name string) {
		if v.Implements(iface) {
			interfaces = append(interfaces, name)
		}
	}

	// List all interfaces to check
	checkInterface(reflect.TypeOf((*OnInit)(nil)).Elem(), "OnInit")
	checkInterface(reflect.TypeOf((*OnShutdown)(nil)).Elem(), "OnShutdown")
	checkInterface(reflect.TypeOf((*OnMint)(nil)).Elem(), "OnMint")
	checkInterface(reflect.TypeOf((*OnTransfer)(nil)).Elem(), "OnTransfer")
	checkInterface(reflect.TypeOf((*OnApproval)(nil)).Elem(), "OnApproval")
	checkInterface(reflect.TypeOf((*OnApprovalForAll)(nil)).Elem(), "OnApprovalForAll")
	checkInterface(reflect.TypeOf((*OnAdminTransferred)(nil)).Elem(), "OnAdminTransferred")
	checkInterface(reflect.TypeOf((*OnAssetURIUpdated)(nil)).Elem(), "OnAssetURIUpdated")
	checkInterface(reflect.TypeOf((*OnProposalCreated)(nil)).Elem(), "OnProposalCreated")
	checkInterface(reflect.TypeOf((*OnTradeCompleted)(nil)).Elem(), "OnTradeCompleted")
	checkInterface(reflect.TypeOf((*OnProposalWithdrawn)(nil)).Elem(), "OnProposalWithdrawn")
	checkInterface(reflect.TypeOf((*OnProposalExpired)(nil)).Elem(), "OnProposalExpired")

	return interfaces
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, ledger interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInit(ctx, ledger)
		}); err != nil {
			r.logger.Warn("plugin OnInit failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnShutdown(ctx)
		}); err != nil {
			r.logger.Warn("plugin OnShutdown failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitMint emits a mint event.
func (r *Registry) EmitMint(ctx context.Context, to id.AccountID, assetID asset.ID, amount uint64) {
	r.mu.RLock()
	plugins := r.onMint
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnMint(ctx, to, assetID, amount)
		}); err != nil {
			r.logger.Warn("plugin OnMint failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitTransfer emits a transfer event.
func (r *Registry) EmitTransfer(ctx context.Context, from, to id.AccountID, assetID asset.ID, amount uint64) {
	r.mu.RLock()
	plugins := r.onTransfer
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnTransfer(ctx, from, to, assetID, amount)
		}); err != nil {
			r.logger.Warn("plugin OnTransfer failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitApproval emits a per-asset allowance event.
func (r *Registry) EmitApproval(ctx context.Context, owner, operator id.AccountID, assetID asset.ID, amount uint64) {
	r.mu.RLock()
	plugins := r.onApproval
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnApproval(ctx, owner, operator, assetID, amount)
		}); err != nil {
			r.logger.Warn("plugin OnApproval failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitApprovalForAll emits a blanket operator approval event.
func (r *Registry) EmitApprovalForAll(ctx context.Context, owner, operator id.AccountID, approved bool) {
	r.mu.RLock()
	plugins := r.onApprovalForAll
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnApprovalForAll(ctx, owner, operator, approved)
		}); err != nil {
			r.logger.Warn("plugin OnApprovalForAll failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitAdminTransferred emits an admin handover event.
func (r *Registry) EmitAdminTransferred(ctx context.Context, oldAdmin, newAdmin id.AccountID) {
	r.mu.RLock()
	plugins := r.onAdminTransferred
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnAdminTransferred(ctx, oldAdmin, newAdmin)
		}); err != nil {
			r.logger.Warn("plugin OnAdminTransferred failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitAssetURIUpdated emits a metadata URI update event.
func (r *Registry) EmitAssetURIUpdated(ctx context.Context, assetID asset.ID, uri string) {
	r.mu.RLock()
	plugins := r.onAssetURIUpdated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnAssetURIUpdated(ctx, assetID, uri)
		}); err != nil {
			r.logger.Warn("plugin OnAssetURIUpdated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitProposalCreated emits a proposal created event.
func (r *Registry) EmitProposalCreated(ctx context.Context, proposal interface{}) {
	r.mu.RLock()
	plugins := r.onProposalCreated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnProposalCreated(ctx, proposal)
		}); err != nil {
			r.logger.Warn("plugin OnProposalCreated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitTradeCompleted emits a trade completed event.
func (r *Registry) EmitTradeCompleted(ctx context.Context, record interface{}) {
	r.mu.RLock()
	plugins := r.onTradeCompleted
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnTradeCompleted(ctx, record)
		}); err != nil {
			r.logger.Warn("plugin OnTradeCompleted failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitProposalWithdrawn emits a proposal withdrawn event.
func (r *Registry) EmitProposalWithdrawn(ctx context.Context, seller, buyer id.AccountID, assetID asset.ID) {
	r.mu.RLock()
	plugins := r.onProposalWithdrawn
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnProposalWithdrawn(ctx, seller, buyer, assetID)
		}); err != nil {
			r.logger.Warn("plugin OnProposalWithdrawn failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitProposalExpired emits a proposal expired event.
func (r *Registry) EmitProposalExpired(ctx context.Context, seller, buyer id.AccountID, assetID asset.ID) {
	r.mu.RLock()
	plugins := r.onProposalExpired
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnProposalExpired(ctx, seller, buyer, assetID)
		}); err != nil {
			r.logger.Warn("plugin OnProposalExpired failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block the settlement pipeline.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
