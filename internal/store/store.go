// Package store selects and opens a storage backend by driver name.
//
// Backends register themselves from init(), so the binary must blank-import the
// ones it wants:
//
//	_ "github.com/darrenak403/clothingshop-be/internal/store/memory"
//	_ "github.com/darrenak403/clothingshop-be/internal/store/pg"
package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/darrenak403/clothingshop-be/internal/domain/repository"
)

// Adapter opens connections for one driver.
type Adapter interface {
	Name() string
	Connect(ctx context.Context, cfg AdapterConfig) (repository.Connection, error)
}

// AdapterConfig carries connection settings. Drivers ignore what they do not use.
type AdapterConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

var (
	mu       sync.RWMutex
	adapters = map[string]Adapter{}
)

// RegisterAdapter makes a driver available to Open. Registering a name twice panics.
func RegisterAdapter(a Adapter) {
	mu.Lock()
	defer mu.Unlock()
	name := strings.ToLower(a.Name())
	if _, dup := adapters[name]; dup {
		panic("store: adapter registered twice: " + name)
	}
	adapters[name] = a
}

// Drivers lists registered driver names, sorted.
func Drivers() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(adapters))
	for name := range adapters {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Open connects using the named driver.
func Open(ctx context.Context, driver string, cfg AdapterConfig) (repository.Connection, error) {
	mu.RLock()
	a, ok := adapters[strings.ToLower(strings.TrimSpace(driver))]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("store: unknown driver %q (registered: %s)", driver, strings.Join(Drivers(), ", "))
	}
	conn, err := a.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("store: connect %s: %w", a.Name(), err)
	}
	return conn, nil
}
