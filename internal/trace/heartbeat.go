package trace

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// Heartbeat emits a heartbeat event every interval until stopped. A trace
// that keeps beating without span ends points at a stuck pass.
type Heartbeat struct {
	cancel context.CancelFunc
	done   sync.WaitGroup
}

// StartHeartbeat starts beating on t. It returns nil when t is disabled or
// interval is not positive; Stop accepts nil.
func StartHeartbeat(t Tracer, interval time.Duration) *Heartbeat {
	if t == nil || !t.Enabled() || interval <= 0 {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	h := &Heartbeat{cancel: cancel}
	h.done.Add(1)
	go func() {
		defer h.done.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		started := time.Now()
		for n := 1; ; n++ {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				t.Emit(&Event{
					Time:   now,
					Seq:    NextSeq(),
					Kind:   KindHeartbeat,
					Scope:  ScopeDriver,
					Name:   "heartbeat",
					Detail: "#" + strconv.Itoa(n),
					Extra:  map[string]string{"elapsed": now.Sub(started).Round(time.Millisecond).String()},
				})
			}
		}
	}()
	return h
}

// Stop ends the heartbeat and waits for the goroutine to exit. It is safe to
// call more than once.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.cancel()
	h.done.Wait()
}
