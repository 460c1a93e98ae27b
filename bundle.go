package pdata

import (
	"fmt"

	"github.com/df-mc/dragonfly/server/cmd"
)

// Bundle groups related processors, listeners, and commands together.
// Bundles are registered with the pdata builder and provide isolation
// between different gameplay features.
type Bundle struct {
	name string

	// processors holds processor registrations in dispatch order
	processors []Processor

	// commands holds command registrations
	commands []cmd.Command

	// offerListeners and changeListeners hold listener registrations
	offerListeners  []offerRegistration
	changeListeners []changeRegistration

	postInitHooks []func(*Manager)
}

// offerRegistration holds a pre-change listener registration.
type offerRegistration struct {
	key AnyKey
	fn  func(*OfferEvent)
}

// changeRegistration holds a post-change listener registration.
type changeRegistration struct {
	key AnyKey
	fn  func(*ChangeEvent)
}

// NewBundle creates a new bundle with the given name.
func NewBundle(name string) *Bundle {
	return &Bundle{name: name}
}

// VanillaBundle returns a bundle with every built-in processor and the /data
// command.
func VanillaBundle() *Bundle {
	b := NewBundle("vanilla")
	for _, p := range BuiltinProcessors() {
		b.Processor(p)
	}
	return b.Command(DataCommand())
}

// Name returns the bundle name.
func (b *Bundle) Name() string {
	return b.name
}

// Processor registers a processor. Processors of the same trait are tried in
// registration order.
func (b *Bundle) Processor(p Processor) *Bundle {
	b.processors = append(b.processors, p)
	return b
}

// OnOffer registers a pre-change listener for key, or for every key if key
// is nil.
func (b *Bundle) OnOffer(key AnyKey, fn func(*OfferEvent)) *Bundle {
	b.offerListeners = append(b.offerListeners, offerRegistration{key: key, fn: fn})
	return b
}

// OnChange registers a post-change listener for key, or for every key if key
// is nil.
func (b *Bundle) OnChange(key AnyKey, fn func(*ChangeEvent)) *Bundle {
	b.changeListeners = append(b.changeListeners, changeRegistration{key: key, fn: fn})
	return b
}

// PostInit registers a hook run once the manager is fully built.
func (b *Bundle) PostInit(hook func(*Manager)) *Bundle {
	b.postInitHooks = append(b.postInitHooks, hook)
	return b
}

// Build returns a callback function that returns this bundle.
// This allows for cleaner inline bundle initialization:
//
//	bund := pdata.NewBundle("gameplay").
//	    Processor(&ManaProcessor{}).
//	    Build()
//
//	mngr := pdata.NewBuilder().
//	    Bundle(bund).
//	    Init()
func (b *Bundle) Build() func(*Manager) *Bundle {
	return func(*Manager) *Bundle {
		return b
	}
}

// Command registers a Dragonfly command for this bundle.
// Commands are automatically registered with Dragonfly's command system
// when the bundle is built.
func (b *Bundle) Command(command cmd.Command) *Bundle {
	b.commands = append(b.commands, command)
	return b
}

// build registers the bundle's processors and listeners with r. Processors
// of traits disabled by cfg are skipped.
func (b *Bundle) build(r *Registry, cfg Config) error {
	for _, p := range b.processors {
		if !cfg.TraitEnabled(p.Trait().Name()) {
			continue
		}
		if err := r.Register(p); err != nil {
			return fmt.Errorf("bundle %s: %w", b.name, err)
		}
	}

	for _, reg := range b.offerListeners {
		r.OnOffer(reg.key, reg.fn)
	}
	for _, reg := range b.changeListeners {
		r.OnChange(reg.key, reg.fn)
	}

	// Register commands with Dragonfly's command system
	for _, c := range b.commands {
		cmd.Register(c)
	}

	return nil
}
