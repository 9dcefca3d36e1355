package testutil

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/specialistvlad/scratchkit/internal/ctxlog"
	"github.com/specialistvlad/scratchkit/internal/registry"
	"github.com/specialistvlad/scratchkit/modules/compat"
	"github.com/stretchr/testify/require"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// Context returns a context carrying a debug-level text logger that writes
// to the returned buffer.
func Context(t *testing.T) (context.Context, *SafeBuffer) {
	t.Helper()
	buf := &SafeBuffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return ctxlog.WithLogger(context.Background(), logger), buf
}

// NewRegistry builds a validated registry holding the built-in features, the
// toy formats of ToyModule and any extra modules, in that order.
func NewRegistry(t *testing.T, extra ...registry.Module) *registry.Registry {
	t.Helper()
	r := registry.New()
	modules := append([]registry.Module{&compat.Module{}, &ToyModule{}}, extra...)
	r.Register(modules...)

	ctx, _ := Context(t)
	require.NoError(t, r.Validate(ctx))
	return r
}
