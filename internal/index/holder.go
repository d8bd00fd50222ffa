package index

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/rnc-cli/internal/rnc"
)

// Holder publishes the current Index and swaps it wholesale on reload.
// Readers never observe a partially built index.
type Holder struct {
	path string
	opts Options
	cur  atomic.Pointer[Index]
}

// NewHolder wraps an initial index. path and opts are used by Reload.
func NewHolder(initial *Index, path string, opts Options) *Holder {
	if initial == nil {
		initial = Empty()
	}
	h := &Holder{path: path, opts: opts}
	h.cur.Store(initial)
	return h
}

// Current returns the published index.
func (h *Holder) Current() *Index {
	return h.cur.Load()
}

// Lookup delegates to the published index.
func (h *Holder) Lookup(raw string) (rnc.Record, bool) {
	return h.Current().Lookup(raw)
}

// LoadedAt delegates to the published index.
func (h *Holder) LoadedAt() time.Time {
	return h.Current().LoadedAt()
}

// Len delegates to the published index.
func (h *Holder) Len() int {
	return h.Current().Len()
}

// Reload rebuilds the index from disk. On failure the current index stays
// published. A dataset that vanished is treated as a failure when the
// current index has records, so a file rotation cannot wipe the table.
func (h *Holder) Reload(ctx context.Context) (*Index, error) {
	next, err := Load(ctx, h.path, h.opts)
	if err != nil {
		return h.Current(), err
	}
	if next.missing && h.Current().Len() > 0 {
		return h.Current(), rnc.NewError(rnc.KindLoad, "dataset file disappeared: "+h.path)
	}
	prev := h.cur.Swap(next)
	zap.L().Info("rnc index reloaded",
		zap.Int("previous", prev.Len()),
		zap.Int("current", next.Len()),
	)
	return next, nil
}
