// Package collector samples process and system metrics from several slow,
// unreliable sources on independent cadences and merges them into
// snapshots.
//
// Each source has one worker goroutine that writes into its own
// SourceResult slot. A coordinator goroutine merges the slots and
// publishes the result into a FreshnessBin, which consumers poll.
package collector

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rileyhilliard/procmon/internal/config"
	"github.com/rileyhilliard/procmon/internal/errors"
	"github.com/rileyhilliard/procmon/internal/gateway"
	"github.com/rileyhilliard/procmon/internal/logger"
	"github.com/rileyhilliard/procmon/internal/parsers"
)

// Options configures a Collector. Zero fields get production defaults.
type Options struct {
	Runner   gateway.Runner
	Config   config.CollectorConfig
	Classify config.ClassifyConfig
	Platform Platform
	Host     HostStats
	// UIDLookup resolves process owners for classification. Defaults to
	// ProcessUID.
	UIDLookup UIDLookup
	Logger    logger.Logger
	Clock     func() time.Time
}

// SourceStatus summarizes one source for status displays.
type SourceStatus struct {
	Name      string
	State     State
	UpdatedAt time.Time
	Err       error
}

// Collector owns the source workers, the merger and the freshness bin.
type Collector struct {
	runner   gateway.Runner
	cfg      config.CollectorConfig
	platform Platform
	cmds     Commands
	host     HostStats
	log      logger.Logger
	now      func() time.Time

	classifier *Classifier
	estimator  GPUEstimator
	rates      *RateEngine
	merger     Merger
	bin        *FreshnessBin
	throttle   *throttle
	seq        atomic.Uint64
	publishMu  sync.Mutex

	cpuCache     *TTLCache[float64]
	memCache     *TTLCache[float64]
	gpuCache     *TTLCache[GPUSample]
	summaryCache *TTLCache[SystemSummary]
	headerCache  *TTLCache[string]

	procSrc *SourceResult[ProcessList]
	cpuSrc  *SourceResult[CPUSample]
	memSrc  *SourceResult[MemorySample]
	gpuSrc  *SourceResult[GPUSample]
	netSrc  *SourceResult[NetworkSample]

	coresOnce   sync.Once
	cores       int
	gpuFallback atomic.Bool
	netGapOnce  sync.Once

	cpuMu   sync.Mutex
	prevCPU parsers.CPUTimes
}

// New creates a collector. Nothing runs until Run or CollectOnce.
func New(opts Options) *Collector {
	cfg := opts.Config
	if cfg.MaxProcesses == 0 {
		cfg = config.DefaultConfig().Collector
	}

	classify := opts.Classify
	if classify.SystemNames == nil && classify.InteractiveNames == nil {
		classify = config.DefaultConfig().Classify
	}

	platform := opts.Platform
	if platform == "" {
		platform = CurrentPlatform()
	}

	runner := opts.Runner
	if runner == nil {
		runner = gateway.New(gateway.Options{})
	}

	host := opts.Host
	if host == nil {
		host = SystemHost{}
	}

	lookup := opts.UIDLookup
	if lookup == nil {
		lookup = ProcessUID
	}

	log := opts.Logger
	if log == nil {
		log = logger.Default()
	}

	now := opts.Clock
	if now == nil {
		now = time.Now
	}

	headerTTL := cfg.TTL.CPU
	if cfg.TTL.Network < headerTTL {
		headerTTL = cfg.TTL.Network
	}

	return &Collector{
		runner:   runner,
		cfg:      cfg,
		platform: platform,
		cmds:     CommandsFor(platform),
		host:     host,
		log:      log,
		now:      now,

		classifier: NewClassifier(classify.SystemNames, classify.InteractiveNames, lookup),
		rates:      NewRateEngine(),
		merger:     Merger{StaleAfter: cfg.StaleAfter},
		bin:        NewFreshnessBin(),
		throttle:   newThrottle(cfg.MaxFailures, cfg.Backoff, cfg.MaxBackoff),

		cpuCache:     NewTTLCache[float64](cfg.TTL.CPU),
		memCache:     NewTTLCache[float64](cfg.TTL.Memory),
		gpuCache:     NewTTLCache[GPUSample](cfg.TTL.GPU),
		summaryCache: NewTTLCache[SystemSummary](cfg.TTL.Network),
		headerCache:  NewTTLCache[string](headerTTL),

		procSrc: NewSourceResult[ProcessList](SourceProcess),
		cpuSrc:  NewSourceResult[CPUSample](SourceCPU),
		memSrc:  NewSourceResult[MemorySample](SourceMemory),
		gpuSrc:  NewSourceResult[GPUSample](SourceGPU),
		netSrc:  NewSourceResult[NetworkSample](SourceNetwork),
	}
}

// Platform returns the command set in use.
func (c *Collector) Platform() Platform {
	return c.platform
}

// Run starts one worker per source plus the coordinator and blocks until
// ctx is cancelled and every goroutine has returned.
func (c *Collector) Run(ctx context.Context) {
	iv := c.cfg.Intervals
	var wg sync.WaitGroup

	wg.Add(5)
	go func() { defer wg.Done(); runWorker(ctx, c, c.procSrc, iv.Process, c.trackProcesses) }()
	go func() { defer wg.Done(); runWorker(ctx, c, c.cpuSrc, iv.CPU, c.collectCPU) }()
	go func() { defer wg.Done(); runWorker(ctx, c, c.memSrc, iv.Memory, c.collectMemory) }()
	go func() { defer wg.Done(); runWorker(ctx, c, c.gpuSrc, iv.GPU, c.collectGPU) }()
	go func() { defer wg.Done(); runWorker(ctx, c, c.netSrc, iv.Network, c.collectNetwork) }()

	c.coordinate(ctx)
	wg.Wait()
}

// CollectOnce runs every source once, concurrently, and returns the merged
// snapshot. It is also published to the bin.
func (c *Collector) CollectOnce(ctx context.Context) (Snapshot, error) {
	var wg sync.WaitGroup

	wg.Add(5)
	go func() { defer wg.Done(); runCycle(ctx, c, c.procSrc, c.trackProcesses) }()
	go func() { defer wg.Done(); runCycle(ctx, c, c.cpuSrc, c.collectCPU) }()
	go func() { defer wg.Done(); runCycle(ctx, c, c.memSrc, c.collectMemory) }()
	go func() { defer wg.Done(); runCycle(ctx, c, c.gpuSrc, c.collectGPU) }()
	go func() { defer wg.Done(); runCycle(ctx, c, c.netSrc, c.collectNetwork) }()
	wg.Wait()

	snap, err := c.publish(c.now())
	if err != nil {
		proc := c.procSrc.Read()
		if proc.Err != nil {
			return Snapshot{}, errors.WrapWithCode(proc.Err, errors.ErrGateway,
				"Couldn't read the process list",
				"Run with PROCMON_DEBUG=1 to see which command failed")
		}
		return Snapshot{}, err
	}
	return snap, nil
}

// Latest returns the newest published snapshot.
func (c *Collector) Latest() (Snapshot, bool) {
	snap, _, ok := c.bin.Latest()
	return snap, ok
}

// Throttled reports whether the collector is currently backing off.
func (c *Collector) Throttled() bool {
	return c.throttle.Active()
}

// SourceStates returns the state of each source in a fixed order.
func (c *Collector) SourceStates() []SourceStatus {
	return []SourceStatus{
		statusOf(c.procSrc),
		statusOf(c.cpuSrc),
		statusOf(c.memSrc),
		statusOf(c.gpuSrc),
		statusOf(c.netSrc),
	}
}

func statusOf[T any](slot *SourceResult[T]) SourceStatus {
	v := slot.Read()
	return SourceStatus{Name: slot.Name(), State: v.State, UpdatedAt: v.UpdatedAt, Err: v.Err}
}

// Specs returns static host details. On macOS the model, processor and
// OS version come from sysctl and sw_vers.
func (c *Collector) Specs(ctx context.Context) (HostSpecs, error) {
	specs, err := c.host.Specs(ctx)
	if err != nil {
		return specs, errors.WrapWithCode(err, errors.ErrGateway,
			"Failed to read host details", "")
	}

	if c.platform == PlatformDarwin {
		if v := c.runTrimmed(ctx, "sysctl -n hw.model"); v != "" {
			specs.Machine = v
		}
		if v := c.runTrimmed(ctx, "sysctl -n machdep.cpu.brand_string"); v != "" {
			specs.Processor = v
		}
		if v := c.runTrimmed(ctx, "sw_vers -productVersion"); v != "" {
			specs.OS = "macOS " + v
		}
	}
	if specs.Cores == 0 {
		specs.Cores = c.coreCount(ctx)
	}

	return specs, nil
}

func (c *Collector) runTrimmed(ctx context.Context, cmd string) string {
	out, err := c.runner.Execute(ctx, cmd)
	if err != nil {
		c.log.Debug("%s: %v", cmd, err)
		return ""
	}
	return strings.TrimSpace(string(out))
}

// runWorker loops one source until ctx is cancelled or the source turns
// out to be unsupported.
func runWorker[T any](ctx context.Context, c *Collector, slot *SourceResult[T], interval time.Duration, collect func(context.Context, time.Time) (T, error)) {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if stop := runCycle(ctx, c, slot, collect); stop {
			c.log.Debug("%s source stopped: not supported on %s", slot.Name(), c.platform)
			return
		}
		timer.Reset(interval + c.throttle.Delay())
	}
}

// runCycle performs one collection within the cycle budget. It reports
// whether the source should stop for good.
func runCycle[T any](ctx context.Context, c *Collector, slot *SourceResult[T], collect func(context.Context, time.Time) (T, error)) bool {
	slot.Begin()

	cycleCtx, cancel := context.WithTimeout(ctx, c.cfg.CycleBudget)
	defer cancel()

	payload, err := collect(cycleCtx, c.now())
	if err != nil {
		slot.Fail(err)
		if ctx.Err() == nil {
			c.log.Debug("%s source failed: %v", slot.Name(), err)
		}
		return stderrors.Is(err, ErrUnsupported)
	}

	slot.Complete(payload, c.now())
	return false
}

// trackProcesses collects the process list and feeds the outcome into the
// throttle. Shutdown is not a failure.
func (c *Collector) trackProcesses(ctx context.Context, now time.Time) (ProcessList, error) {
	list, err := c.collectProcesses(ctx, now)
	if err != nil && stderrors.Is(ctx.Err(), context.Canceled) {
		return list, err
	}

	before := c.throttle.Delay()
	delay := c.throttle.Record(err == nil)
	if delay > before {
		c.log.Warn("process source failed %d times in a row, backing off %s", c.throttle.Failures(), delay)
	}
	return list, err
}

// coordinate merges and publishes on a fixed cadence. While throttled it
// waits out the current backoff after each publish.
func (c *Collector) coordinate(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.MergeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if _, err := c.publish(c.now()); err != nil && !stderrors.Is(err, ErrNoProcessData) {
			c.log.Debug("merge failed: %v", err)
		}

		if delay := c.throttle.Delay(); delay > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
		}
	}
}

// publish merges the current slots and hands the snapshot to the bin.
// Merging and numbering happen under one lock so a later Seq never carries
// older slot contents.
func (c *Collector) publish(now time.Time) (Snapshot, error) {
	c.publishMu.Lock()
	defer c.publishMu.Unlock()

	snap, err := c.merger.Merge(c.procSrc.Read(), c.cpuSrc.Read(), c.memSrc.Read(), c.gpuSrc.Read(), c.netSrc.Read(), now)
	if err != nil {
		return Snapshot{}, err
	}

	snap.Seq = c.seq.Add(1)
	snap.Throttled = c.throttle.Active()
	c.sweep(snap)
	c.bin.Publish(snap, now)
	return snap, nil
}

// sweep drops per-process state for processes that are gone.
func (c *Collector) sweep(snap Snapshot) {
	live := make(map[string]struct{}, len(snap.Processes)+2)
	pids := make(map[int]struct{}, len(snap.Processes))
	for pid := range snap.Processes {
		live[PIDKey(pid)] = struct{}{}
		pids[pid] = struct{}{}
	}
	live[SystemInKey] = struct{}{}
	live[SystemOutKey] = struct{}{}

	c.rates.Sweep(live)
	c.classifier.Forget(pids)
}
