package config

import (
	"log"
	"sync"
	"time"

	"github.com/pulsewatch/pulsewatch/internal/types"
	"gorm.io/gorm"
)

// watchCell is a latest-value cell. Readers get the current value plus a
// channel that is closed on the next publish; writers never block on readers.
type watchCell struct {
	mu      sync.Mutex
	value   time.Duration
	changed chan struct{}
}

func newWatchCell(initial time.Duration) *watchCell {
	return &watchCell{value: initial, changed: make(chan struct{})}
}

func (c *watchCell) get() (time.Duration, <-chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value, c.changed
}

func (c *watchCell) set(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if d == c.value {
		return
	}

	c.value = d
	close(c.changed)
	c.changed = make(chan struct{})
}

// Registry holds the current poll interval for each poll task. Updates are
// observed by sleeping pollers without tearing them down.
type Registry struct {
	db    *gorm.DB
	cells map[types.PollerType]*watchCell
}

// LoadRegistry builds a Registry seeded from bot_config.
func LoadRegistry(db *gorm.DB) *Registry {
	cells := make(map[types.PollerType]*watchCell)

	for _, poller := range types.AllPollers() {
		cells[poller] = newWatchCell(LoadInterval(db, poller))
	}

	return &Registry{db: db, cells: cells}
}

// Current returns the latest interval for a poller.
func (r *Registry) Current(poller types.PollerType) time.Duration {
	d, _ := r.cells[poller].get()
	return d
}

// Watch returns the latest interval plus a channel closed when it changes.
func (r *Registry) Watch(poller types.PollerType) (time.Duration, <-chan struct{}) {
	return r.cells[poller].get()
}

// Update validates, persists, and publishes a new interval. The affected
// poller picks it up at its next wake-up.
func (r *Registry) Update(poller types.PollerType, seconds int) error {
	if err := SetInterval(r.db, poller, seconds); err != nil {
		return err
	}

	r.cells[poller].set(time.Duration(seconds) * time.Second)
	log.Printf("Updated polling interval for %s to %ds", poller, seconds)
	return nil
}

// ResetAll restores every poller to the default interval.
func (r *Registry) ResetAll() error {
	for _, poller := range types.AllPollers() {
		if err := r.Update(poller, DefaultIntervalSeconds); err != nil {
			return err
		}
	}

	log.Printf("Reset all polling intervals to %ds", DefaultIntervalSeconds)
	return nil
}
