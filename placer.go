package jumpkit

import (
	"fmt"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rfratto/jumpkit/internal/jumphash"
)

// Config configures a Placer.
type Config struct {
	// Number of servers in the initial roster. Required, must be at least
	// 1.
	InitialServers int

	// CapacitySlack caps any server's load at
	// ceil(CapacitySlack * placedKeys / servers). Required, must be at
	// least 1.0. Fixed for the lifetime of the Placer.
	CapacitySlack float64

	// MaxAttempts is the total number of servers probed per placement
	// (the primary candidate plus re-samples) before giving up with an
	// OverflowError. Optional; defaults to 4x InitialServers. Must not be
	// negative.
	MaxAttempts int

	// Optional logger to use.
	Log log.Logger
}

func (c *Config) validate() error {
	var errs *multierror.Error

	if c.InitialServers < 1 {
		errs = multierror.Append(errs, fmt.Errorf("at least 1 initial server is required, got %d", c.InitialServers))
	}
	if c.CapacitySlack < 1.0 {
		errs = multierror.Append(errs, fmt.Errorf("capacity slack must be at least 1.0, got %v", c.CapacitySlack))
	}
	if c.MaxAttempts < 0 {
		errs = multierror.Append(errs, fmt.Errorf("max attempts must be at least 1, got %d", c.MaxAttempts))
	}

	if err := errs.ErrorOrNil(); err != nil {
		return err
	}

	if c.MaxAttempts == 0 {
		c.MaxAttempts = 4 * c.InitialServers
	}
	if c.Log == nil {
		c.Log = log.NewNopLogger()
	}
	return nil
}

// A Placer assigns keys to servers. The primary candidate for a key comes
// from jump consistent hashing; when the primary is at capacity, the Placer
// re-samples independent alternative candidates until one has room or
// MaxAttempts servers have been probed.
//
// Placer is safe for concurrent use. Each call to Place captures the roster
// once and probes against that snapshot, so a concurrent Resize never tears
// a placement across two generations.
type Placer struct {
	log   log.Logger
	cfg   Config
	view  *ClusterView
	loads *LoadTable
	m     *metrics
}

// New creates a Placer. An error will be returned if the provided config is
// invalid.
func New(cfg Config) (*Placer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	view, err := NewClusterView(cfg.InitialServers)
	if err != nil {
		return nil, err
	}
	loads, err := NewLoadTable(cfg.InitialServers, cfg.CapacitySlack)
	if err != nil {
		return nil, err
	}
	view.Observe(loads)

	p := &Placer{
		log:   cfg.Log,
		cfg:   cfg,
		view:  view,
		loads: loads,
	}
	p.m = newMetrics(cfg, loads)
	return p, nil
}

// Place assigns key to a server, reserving one unit of load on it, and
// returns the server's index. If every probed server is at capacity, Place
// returns an *OverflowError and reserves nothing; the caller decides the
// fallback policy.
func (p *Placer) Place(key []byte) (int, error) {
	return p.PlaceKey(BytesKey(key))
}

// PlaceKey is like Place for a precomputed Key.
func (p *Placer) PlaceKey(key Key) (int, error) {
	v := p.view.View()

	for attempt := 0; attempt < p.cfg.MaxAttempts; attempt++ {
		var candidate int
		if attempt == 0 {
			candidate = jumphash.Bucket(uint64(key), v.N)
		} else {
			candidate = jumphash.BucketAttempt(uint64(key), v.N, attempt)
		}

		if p.loads.TryReserve(candidate) {
			p.m.placementsTotal.WithLabelValues("placed").Inc()
			p.m.probes.Observe(float64(attempt + 1))
			return candidate, nil
		}
	}

	level.Debug(p.log).Log("msg", "placement overflow", "key", key, "probes", p.cfg.MaxAttempts, "generation", v.Generation)
	p.m.placementsTotal.WithLabelValues("overflow").Inc()
	p.m.probes.Observe(float64(p.cfg.MaxAttempts))
	return 0, &OverflowError{Key: key, Attempts: p.cfg.MaxAttempts}
}

// Release returns one unit of load previously reserved on server, for
// callers evicting or expiring a placed key.
func (p *Placer) Release(server int) error {
	return p.loads.Release(server)
}

// Resize replaces the roster with n servers under a fresh generation. Loads
// of surviving servers carry over; removed servers' keys must be migrated
// by the caller. An error is returned if n < 1.
func (p *Placer) Resize(n int) error {
	if err := p.view.Resize(n); err != nil {
		return err
	}

	v := p.view.View()
	p.m.servers.Set(float64(v.N))
	level.Debug(p.log).Log("msg", "cluster resized", "servers", v.N, "generation", v.Generation)
	return nil
}

// View returns the current roster snapshot.
func (p *Placer) View() View { return p.view.View() }

// Snapshot returns a read-only diagnostic view of per-server loads. See
// EncodeSnapshot for a stable serialized form.
func (p *Placer) Snapshot() Snapshot { return p.loads.Snapshot() }

// Metrics returns a prometheus.Collector exposing placement metrics, for
// registration by the embedding application.
func (p *Placer) Metrics() prometheus.Collector { return p.m }
