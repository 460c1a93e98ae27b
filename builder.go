package pdata

import (
	"log/slog"
)

// Builder configures pdata before initialization.
// Use NewBuilder() to create a builder and chain configuration methods.
type Builder struct {
	bundles   []func(*Manager) *Bundle
	log       *slog.Logger
	cfg       Config
	store     Store
	storeOpts []StoreOption
}

// NewBuilder creates a new pdata builder using DefaultConfig.
func NewBuilder() *Builder {
	return &Builder{cfg: DefaultConfig()}
}

// Bundle adds a bundle to the builder.
func (b *Builder) Bundle(callback func(*Manager) *Bundle) *Builder {
	b.bundles = append(b.bundles, callback)
	return b
}

// Logger sets the logger of the manager. Defaults to slog.Default().
func (b *Builder) Logger(log *slog.Logger) *Builder {
	b.log = log
	return b
}

// Config sets the configuration. Disabled traits are not registered, and the
// store options of the config apply before those passed to Store.
func (b *Builder) Config(cfg Config) *Builder {
	b.cfg = cfg
	return b
}

// Store sets the store player data is persisted in.
//
// Example:
//
//	builder.Store(db, pdata.WithTimeout(2*time.Second), pdata.WithRequired(true))
func (b *Builder) Store(st Store, opts ...StoreOption) *Builder {
	b.store = st
	b.storeOpts = opts
	return b
}

// Init initializes pdata with the configured settings.
// Returns the Manager instance which should be stored and used to create sessions.
// Multiple Manager instances can coexist for running multiple isolated servers.
func (b *Builder) Init() *Manager {
	SetImmutableCache(b.cfg.ImmutableCache)

	m := newManager(NewRegistry(), b.log)
	if b.store != nil {
		m.setStore(b.store, append(b.cfg.StoreOptions(), b.storeOpts...)...)
	}

	var hooks []func(*Manager)
	for _, f := range b.bundles {
		bund := f(m)
		if err := bund.build(m.registry, b.cfg); err != nil {
			panic("pdata: failed to build bundles: " + err.Error())
		}
		hooks = append(hooks, bund.postInitHooks...)
	}

	m.startAutosave(b.cfg.AutosaveInterval)

	for _, hook := range hooks {
		hook(m)
	}

	return m
}
