package store

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/andreyvit/datum"
)

// AssetBucket is the bucket the Catalog keeps asset properties in.
const AssetBucket = "_assets"

// Asset is a named asset known to a Catalog. Handles are cached, so every
// lookup of the same name yields the same *Asset.
type Asset struct {
	name  string
	props atomic.Pointer[datum.Value]
}

func newAsset(name string, props *datum.Value) *Asset {
	a := &Asset{name: name}
	a.props.Store(props)
	return a
}

func (a *Asset) RuntimeType() string { return "Asset" }
func (a *Asset) AssetName() string   { return a.name }

// Props returns the asset's current properties. Callers must not modify
// them. Re-registering the asset publishes a new Value and leaves the old
// one intact.
func (a *Asset) Props() *datum.Value { return a.props.Load() }

// Catalog resolves asset names for values decoded from its Store. Names are
// looked up in the cache, then in AssetBucket, then in Options.Assets.
type Catalog struct {
	s        *Store
	fallback datum.AssetResolver

	mu    sync.Mutex
	cache map[string]*Asset
}

// Register persists the properties of the named asset and returns its
// handle. Re-registering a name replaces the properties of the cached
// handle. Asset references inside props are stored by name but not resolved
// when the catalog loads them back.
func (c *Catalog) Register(name string, props *datum.Value) (*Asset, error) {
	if props == nil {
		props = &datum.Value{}
	}
	if err := c.s.Put(AssetBucket, name, props); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if a := c.cache[name]; a != nil {
		a.props.Store(props.Clone())
		return a, nil
	}
	a := newAsset(name, props.Clone())
	c.cache[name] = a
	return a, nil
}

// LookupAsset implements datum.AssetResolver. Unknown names yield nil.
func (c *Catalog) LookupAsset(name string) datum.Asset {
	a, err := c.Load(name)
	if err == nil {
		return a
	}
	if !errors.Is(err, ErrNotFound) {
		c.s.logger.Warn("store: cannot load asset", "asset", name, "err", err)
	}
	if c.fallback != nil {
		return c.fallback.LookupAsset(name)
	}
	return nil
}

// Load returns the handle of a registered asset, or ErrNotFound.
func (c *Catalog) Load(name string) (*Asset, error) {
	c.mu.Lock()
	a := c.cache[name]
	c.mu.Unlock()
	if a != nil {
		return a, nil
	}

	props, err := c.s.get(AssetBucket, name, nil)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if a := c.cache[name]; a != nil {
		return a, nil
	}
	a = newAsset(name, props)
	c.cache[name] = a
	return a, nil
}

// Forget drops the cached handle of name, so the next lookup reloads it.
func (c *Catalog) Forget(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cache, name)
}

func (a *Asset) String() string {
	return fmt.Sprintf("asset(%q)", a.name)
}
