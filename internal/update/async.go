package update

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// State is the progress of an asynchronous check.
type State int32

const (
	StateIdle State = iota
	StateChecking
	StateUpdateFound
	StateNoUpdate
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateChecking:
		return "checking"
	case StateUpdateFound:
		return "update-found"
	case StateNoUpdate:
		return "no-update"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Pending tracks one background check. A nil *Pending reports StateIdle.
type Pending struct {
	state   atomic.Int32
	done    chan struct{}
	updates chan *UpdateInfo

	mu     sync.Mutex
	result *UpdateInfo
	err    error
}

func newPending() *Pending {
	p := &Pending{
		done:    make(chan struct{}),
		updates: make(chan *UpdateInfo, 1),
	}
	p.state.Store(int32(StateChecking))
	return p
}

// State returns the current state.
func (p *Pending) State() State {
	if p == nil {
		return StateIdle
	}
	return State(p.state.Load())
}

// Done is closed once the check has finished, whatever the outcome.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Result returns the update found, or nil.
func (p *Pending) Result() *UpdateInfo {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.result
}

// Err returns why the check failed, or nil.
func (p *Pending) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Updates receives the update once when one is found and is then closed. It
// closes without a value otherwise.
func (p *Pending) Updates() <-chan *UpdateInfo {
	return p.updates
}

func (p *Pending) finish(state State, info *UpdateInfo, err error, onResult func(*UpdateInfo)) {
	p.mu.Lock()
	p.result = info
	p.err = err
	p.mu.Unlock()
	p.state.Store(int32(state))

	if state == StateUpdateFound {
		if onResult != nil {
			onResult(info)
		}
		p.updates <- info
	}
	close(p.updates)
	close(p.done)
}

// CheckAsync runs Check on a background goroutine and returns immediately.
// onResult is called exactly once, from that goroutine, when a newer release
// exists; it is not called when there is no update or the check fails.
// Failures are logged and otherwise treated as "no update".
func (c *Checker) CheckAsync(ctx context.Context, currentVersion string, onResult func(*UpdateInfo)) *Pending {
	p := newPending()
	go c.runAsync(ctx, p, currentVersion, onResult)
	return p
}

func (c *Checker) runAsync(ctx context.Context, p *Pending, currentVersion string, onResult func(*UpdateInfo)) {
	if c.delay > 0 {
		timer := time.NewTimer(c.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			c.log.Infof("Update check cancelled before it started")
			p.finish(StateFailed, nil, ctx.Err(), nil)
			return
		case <-timer.C:
		}
	}

	c.log.Infof("Checking for updates (current version %s)", currentVersion)
	info, err := c.Check(ctx, currentVersion)
	switch {
	case err != nil:
		c.log.Warnf("Error checking for updates: %v", err)
		p.finish(StateFailed, nil, err, nil)
	case info == nil || !info.UpdateAvailable:
		c.log.Infof("No updates available")
		p.finish(StateNoUpdate, nil, nil, nil)
	default:
		c.log.Infof("Update available: %s -> %s", info.CurrentVersion.Bare(), info.LatestVersion.Bare())
		p.finish(StateUpdateFound, info, nil, func(info *UpdateInfo) { c.deliver(onResult, info) })
	}
}

// deliver runs the caller's callback; a panic there must not leave the
// Pending unfinished.
func (c *Checker) deliver(onResult func(*UpdateInfo), info *UpdateInfo) {
	if onResult == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			c.log.Errorf("Update callback panicked: %v", r)
		}
	}()
	onResult(info)
}
