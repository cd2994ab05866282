// Package controller runs the LED control loop against the microphone.
package controller

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/KarimImran/quadcast2-go/internal/logging"
	"github.com/KarimImran/quadcast2-go/internal/services/effects"
	"github.com/KarimImran/quadcast2-go/internal/services/settings"
	"github.com/KarimImran/quadcast2-go/pkg/quadcast"
)

var logger = logging.New("controller")

// State names the control loop's lifecycle phase.
type State string

const (
	// StateSeeking means the device has not been opened yet.
	StateSeeking State = "seeking"
	// StateRunning means the normal tick cycle is active.
	StateRunning State = "running"
	// StateFaulted means a transfer failed and the loop is backing off.
	StateFaulted State = "faulted"
	// StateStopped means the loop has exited.
	StateStopped State = "stopped"
)

// Device is the capability set the loop needs from the physical microphone.
// After Start, exactly one goroutine (the loop) touches it.
type Device interface {
	Claim() error
	Release() error
	SendReport(report []byte) error
	Close() error
}

// OpenFunc locates and opens the device.
type OpenFunc func() (Device, error)

// Config holds control loop configuration.
type Config struct {
	Enabled      bool          // false = simulation mode, no USB I/O
	TickInterval time.Duration // cadence while healthy
	FaultBackoff time.Duration // cadence after a failed tick
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() Config {
	return Config{
		Enabled:      true,
		TickInterval: 50 * time.Millisecond,
		FaultBackoff: 500 * time.Millisecond,
	}
}

// Status is a copy-out view of the loop for the API and event stream.
type Status struct {
	State     State     `json:"state"`
	Connected bool      `json:"connected"`
	Ticks     uint64    `json:"ticks"`
	Faults    uint64    `json:"faults"`
	LastError string    `json:"lastError,omitempty"`
	LastTick  time.Time `json:"lastTick"`
}

// Controller drives the device on a fixed cadence: claim the interface, read
// the settings, compute the zone levels, send the brightness and heartbeat
// reports, release, sleep. A failed tick stretches the cadence to the fault
// backoff and the loop retries indefinitely - the device may be busy or
// briefly replugged, and availability wins over fast-fail here.
//
// A controller is single-use: construct, register callbacks, Start, Stop.
type Controller struct {
	mu sync.RWMutex

	store  *settings.Store
	engine *effects.Engine
	open   OpenFunc
	dev    Device

	// Set once at construction
	enabled      bool
	tickInterval time.Duration
	faultBackoff time.Duration

	state     State
	ticks     uint64
	faults    uint64
	lastErr   error
	lastTick  time.Time
	lastLower int
	lastUpper int
	haveSent  bool

	onStatus func(Status)
	onLevels func(lower, upper int)

	stopChan chan struct{}
	doneChan chan struct{}
	running  bool
}

// NewController creates a controller. The open function is called once,
// inside Start.
func NewController(store *settings.Store, engine *effects.Engine, open OpenFunc, cfg Config) *Controller {
	// Apply defaults for zero values
	tick := cfg.TickInterval
	if tick <= 0 {
		tick = 50 * time.Millisecond
	}
	backoff := cfg.FaultBackoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}

	return &Controller{
		store:        store,
		engine:       engine,
		open:         open,
		enabled:      cfg.Enabled,
		tickInterval: tick,
		faultBackoff: backoff,
		state:        StateSeeking,
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
}

// OnStatus registers a callback fired on every state transition. Register
// before Start; the callback must not block.
func (c *Controller) OnStatus(fn func(Status)) {
	c.mu.Lock()
	c.onStatus = fn
	c.mu.Unlock()
}

// OnLevels registers a callback fired whenever the transmitted zone levels
// change. Register before Start; the callback must not block.
func (c *Controller) OnLevels(fn func(lower, upper int)) {
	c.mu.Lock()
	c.onLevels = fn
	c.mu.Unlock()
}

// Start opens the device and launches the loop. A missing device is terminal
// for the loop only: the error is returned for the caller to log while the
// rest of the process keeps serving.
func (c *Controller) Start() error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return nil
	}

	if c.enabled {
		dev, err := c.open()
		if err != nil {
			c.state = StateStopped
			c.lastErr = err
			c.mu.Unlock()
			c.publishStatus()
			return fmt.Errorf("open device: %w", err)
		}
		c.dev = dev
		logger.Infof("🎤 LED controller: device opened, ticking every %v", c.tickInterval)
	} else {
		logger.Info("🎤 LED controller running in simulation mode, no USB output")
	}

	c.state = StateRunning
	c.running = true
	c.mu.Unlock()

	c.publishStatus()
	go c.run()

	return nil
}

// run executes ticks until stopped, stretching the cadence while faulted.
func (c *Controller) run() {
	defer close(c.doneChan)

	interval := c.tickInterval
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			next := c.tick()
			if next != interval {
				// Cadence changed, recreate the ticker. Stop the old one
				// first to avoid leaks.
				oldTicker := ticker
				ticker = time.NewTicker(next)
				oldTicker.Stop()
				interval = next
			}
		}
	}
}

// tick runs one claim/compute/send/release cycle and returns the delay until
// the next tick: the normal cadence after a clean cycle, the fault backoff
// after a failed one.
func (c *Controller) tick() time.Duration {
	snap := c.store.Snapshot()
	lower, upper := c.engine.Compute(snap, time.Now())

	var err error
	if c.enabled {
		err = c.transmit(lower, upper)
	}

	c.mu.Lock()
	c.ticks++
	c.lastTick = time.Now()
	prevState := c.state

	var next time.Duration
	if err != nil {
		c.faults++
		c.lastErr = err
		c.state = StateFaulted
		next = c.faultBackoff
	} else {
		c.state = StateRunning
		next = c.tickInterval
	}

	levelsChanged := err == nil && (!c.haveSent || lower != c.lastLower || upper != c.lastUpper)
	if err == nil {
		c.lastLower = lower
		c.lastUpper = upper
		c.haveSent = true
	}

	stateChanged := c.state != prevState
	status := c.statusLocked()
	onStatus := c.onStatus
	onLevels := c.onLevels
	c.mu.Unlock()

	if err != nil {
		if stateChanged {
			logger.With(zap.Error(err)).Warnf("📡 tick failed, backing off to %v", next)
		} else {
			logger.With(zap.Error(err)).Debug("tick failed during backoff")
		}
	} else if prevState == StateFaulted {
		logger.Infof("📡 device recovered, resuming %v cadence", c.tickInterval)
	}

	if stateChanged && onStatus != nil {
		onStatus(status)
	}
	if levelsChanged && onLevels != nil {
		onLevels(lower, upper)
	}

	return next
}

// transmit sends one brightness/heartbeat pair inside a claim/release
// bracket. Release runs on every path so a failed transfer can never leave
// the interface held across ticks.
func (c *Controller) transmit(lower, upper int) error {
	if err := c.dev.Claim(); err != nil {
		_ = c.dev.Release()
		return fmt.Errorf("claim interface: %w", err)
	}
	defer func() { _ = c.dev.Release() }()

	if err := c.dev.SendReport(quadcast.BuildBrightnessPacket(byte(lower), byte(upper))); err != nil {
		return fmt.Errorf("send brightness report: %w", err)
	}
	if err := c.dev.SendReport(quadcast.BuildHeartbeatPacket(byte(lower), byte(upper))); err != nil {
		return fmt.Errorf("send heartbeat report: %w", err)
	}

	return nil
}

// Stop signals the loop, waits for the current tick to finish, and closes the
// device. Safe to call when Start failed.
func (c *Controller) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	close(c.stopChan)
	c.mu.Unlock()

	<-c.doneChan

	c.mu.Lock()
	if c.dev != nil {
		_ = c.dev.Close()
		c.dev = nil
	}
	c.state = StateStopped
	c.mu.Unlock()

	c.publishStatus()
	logger.Info("🎤 LED controller stopped")
}

// Status returns a copy of the loop's current state.
func (c *Controller) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.statusLocked()
}

// Levels returns the most recently transmitted zone levels.
func (c *Controller) Levels() (int, int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastLower, c.lastUpper
}

// IsRunning returns whether the loop is active.
func (c *Controller) IsRunning() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.running
}

// statusLocked builds a Status; callers must hold at least a read lock.
func (c *Controller) statusLocked() Status {
	st := Status{
		State:     c.state,
		Connected: c.dev != nil,
		Ticks:     c.ticks,
		Faults:    c.faults,
		LastTick:  c.lastTick,
	}
	if c.lastErr != nil {
		st.LastError = c.lastErr.Error()
	}
	return st
}

// publishStatus invokes the status callback outside the lock.
func (c *Controller) publishStatus() {
	c.mu.RLock()
	fn := c.onStatus
	st := c.statusLocked()
	c.mu.RUnlock()

	if fn != nil {
		fn(st)
	}
}
