package service

import (
	"context"
	"sync"
	"time"

	"heater_control/internal/logger"
	"heater_control/internal/metrics"
	"heater_control/internal/models"
)

const (
	DefaultCadence      = time.Second
	DefaultFetchTimeout = 5 * time.Second
)

// PollerConfig tunes a TelemetryPoller.
type PollerConfig struct {
	Cadence      time.Duration
	FetchTimeout time.Duration
	// LinkLossThreshold fires OnLinkLost after this many consecutive
	// failed fetches. Zero disables it.
	LinkLossThreshold int
}

func (c PollerConfig) withDefaults() PollerConfig {
	if c.Cadence <= 0 {
		c.Cadence = DefaultCadence
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = DefaultFetchTimeout
	}
	return c
}

// PollerHooks are called after a fetch outcome has been applied, outside
// the poller lock. At most one hook call is in progress at a time.
type PollerHooks struct {
	OnReading  func(models.Reading)
	OnSample   func(models.TelemetrySample)
	OnLinkLost func()
}

// TelemetryPoller fetches readings at a fixed cadence and appends them to a
// TelemetryBuffer. The next fetch is scheduled only after the previous one
// finished, and a fetch that is still outstanding makes any other tick a
// no-op, so at most one fetch is ever in flight.
type TelemetryPoller struct {
	device   Device
	buffer   *TelemetryBuffer
	reporter *ErrorReporter
	cfg      PollerConfig
	hooks    PollerHooks
	metrics  *metrics.Metrics
	log      *logger.Logger
	now      func() time.Time

	// base bounds every fetch; cancelled only by Close.
	base       context.Context
	baseCancel context.CancelFunc
	wg         sync.WaitGroup

	mu       sync.Mutex
	running  bool
	gen      uint64
	inFlight bool
	cancel   context.CancelFunc
	failures int
}

func NewTelemetryPoller(dev Device, buffer *TelemetryBuffer, reporter *ErrorReporter, cfg PollerConfig, hooks PollerHooks, m *metrics.Metrics, log *logger.Logger) *TelemetryPoller {
	if log == nil {
		log = logger.Nop()
	}
	base, cancel := context.WithCancel(context.Background())
	return &TelemetryPoller{
		device:     dev,
		buffer:     buffer,
		reporter:   reporter,
		cfg:        cfg.withDefaults(),
		hooks:      hooks,
		metrics:    m,
		log:        log,
		now:        time.Now,
		base:       base,
		baseCancel: cancel,
	}
}

// Start begins polling with an immediate fetch. It reports false if the
// poller was already running.
func (p *TelemetryPoller) Start() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running || p.base.Err() != nil {
		return false
	}
	p.running = true
	p.gen++
	p.failures = 0

	ctx, cancel := context.WithCancel(p.base)
	p.cancel = cancel

	p.wg.Add(1)
	go p.loop(ctx, p.gen)
	return true
}

// Stop halts future fetches. A fetch already in flight completes, but its
// result is discarded.
func (p *TelemetryPoller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.gen++
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	cancel()
}

// Running reports whether the poller is between Start and Stop.
func (p *TelemetryPoller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Close stops the poller, aborts any outstanding fetch and waits for the
// loop to exit. The poller cannot be restarted afterwards.
func (p *TelemetryPoller) Close() {
	p.mu.Lock()
	p.baseCancel()
	p.mu.Unlock()
	p.Stop()
	p.wg.Wait()
}

// Tick fetches once for the current run. It is skipped, returning false,
// when the poller is stopped or another fetch is still outstanding.
func (p *TelemetryPoller) Tick() bool {
	p.mu.Lock()
	gen := p.gen
	p.mu.Unlock()
	return p.tick(gen)
}

func (p *TelemetryPoller) loop(ctx context.Context, gen uint64) {
	defer p.wg.Done()

	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			p.tick(gen)
			timer.Reset(p.cfg.Cadence)
		}
	}
}

func (p *TelemetryPoller) tick(gen uint64) bool {
	p.mu.Lock()
	if !p.running || gen != p.gen {
		p.mu.Unlock()
		return false
	}
	if p.inFlight {
		p.mu.Unlock()
		p.metrics.Fetch(metrics.FetchSkipped)
		p.log.Debugw("telemetry_tick_skipped", "reason", "fetch outstanding")
		return false
	}
	p.inFlight = true
	p.mu.Unlock()
	// held until hooks have run so outcomes are applied one at a time
	defer p.release()

	ctx, cancel := context.WithTimeout(p.base, p.cfg.FetchTimeout)
	started := time.Now()
	reading, err := p.device.ReadTelemetry(ctx)
	cancel()
	elapsed := time.Since(started)

	p.mu.Lock()
	if !p.running || gen != p.gen {
		p.mu.Unlock()
		p.metrics.Fetch(metrics.FetchDiscarded)
		return false
	}

	if err != nil {
		p.failures++
		consecutive := p.failures
		lost := p.cfg.LinkLossThreshold > 0 && consecutive == p.cfg.LinkLossThreshold
		p.reporter.Set(CategoryFetch, msgFetchFailed)
		p.mu.Unlock()

		p.metrics.ObserveFetch(metrics.FetchError, elapsed)
		p.log.Warnw("telemetry_fetch_failed", "err", err, "consecutive", consecutive)
		if lost && p.hooks.OnLinkLost != nil {
			p.hooks.OnLinkLost()
		}
		return true
	}

	p.failures = 0
	sample := models.TelemetrySample{
		Timestamp:           p.now().UTC(),
		PrimaryTemperature:  reading.Temperature,
		HeatSinkTemperature: reading.HeatSinkTemperature,
	}
	p.buffer.Append(sample)
	p.reporter.ClearCategory(CategoryFetch)
	p.mu.Unlock()

	p.metrics.ObserveFetch(metrics.FetchOK, elapsed)
	p.metrics.SampleAppended()
	if p.hooks.OnReading != nil {
		p.hooks.OnReading(reading)
	}
	if p.hooks.OnSample != nil {
		p.hooks.OnSample(sample)
	}
	return true
}

func (p *TelemetryPoller) release() {
	p.mu.Lock()
	p.inFlight = false
	p.mu.Unlock()
}
