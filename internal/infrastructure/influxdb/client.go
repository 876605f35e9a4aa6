package influxdb

import (
	"context"
	"fmt"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/nerrad567/dbhandler/internal/infrastructure/config"
)

const (
	connectTimeout = 10 * time.Second
	pingTimeout    = 5 * time.Second

	millisecondsPerSecond = 1000

	defaultBatchSize     = 100
	defaultFlushInterval = 10 // seconds
)

// Logger is the subset of logging.Logger that receives write failures.
type Logger interface {
	Critical(msg string, args ...any)
}

// Client batches statement metrics into one InfluxDB bucket.
//
// Writes never block the caller. Failed batches are reported to the
// Logger set with SetLogger, from the client's own goroutine.
type Client struct {
	server influxdb2.Client
	points api.WriteAPI

	mu   sync.RWMutex
	open bool
	log  Logger
}

// Connect creates a client for cfg and verifies the server with
// HealthCheck before returning it.
//
// Returns:
//   - *Client: Client ready for WriteStatementMetric
//   - error: ErrDisabled, or ErrConnectionFailed wrapping the ping failure
func Connect(ctx context.Context, cfg config.InfluxDBConfig) (*Client, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	batchSize, flushMillis := batchOptions(cfg)
	opts := influxdb2.DefaultOptions().
		SetBatchSize(batchSize).
		SetFlushInterval(flushMillis)

	c := &Client{
		server: influxdb2.NewClientWithOptions(cfg.URL, cfg.Token, opts),
		open:   true,
	}

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := c.HealthCheck(connectCtx); err != nil {
		c.server.Close()
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	c.points = c.server.WriteAPI(cfg.Org, cfg.Bucket)
	go c.reportWriteErrors(c.points.Errors())

	return c, nil
}

// batchOptions returns the write batch size and flush interval in
// milliseconds, substituting defaults for values that are not positive.
func batchOptions(cfg config.InfluxDBConfig) (batchSize, flushMillis uint) {
	size := cfg.BatchSize
	if size <= 0 {
		size = defaultBatchSize
	}
	flush := cfg.FlushInterval
	if flush <= 0 {
		flush = defaultFlushInterval
	}
	// #nosec G115 -- both values are positive here
	return uint(size), uint(flush) * millisecondsPerSecond
}

// reportWriteErrors runs until the write API closes errs.
func (c *Client) reportWriteErrors(errs <-chan error) {
	for err := range errs {
		c.mu.RLock()
		log := c.log
		c.mu.RUnlock()

		if log != nil {
			log.Critical("InfluxDB write error", "error", err)
		}
	}
}

// Close flushes buffered points and releases the client. Safe on a nil
// Client and safe to repeat.
func (c *Client) Close() error {
	if c == nil || c.server == nil {
		return nil
	}

	c.mu.Lock()
	wasOpen := c.open
	c.open = false
	c.mu.Unlock()

	if wasOpen {
		if c.points != nil {
			c.points.Flush()
		}
		c.server.Close()
	}
	return nil
}

// HealthCheck pings the server.
func (c *Client) HealthCheck(ctx context.Context) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	healthy, err := c.server.Ping(pingCtx)
	if err != nil {
		return fmt.Errorf("influxdb health check failed: %w", err)
	}
	if !healthy {
		return fmt.Errorf("influxdb health check failed: server not healthy")
	}
	return nil
}

// IsConnected reports whether the client is open. It does not ping.
func (c *Client) IsConnected() bool {
	if c == nil {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.open
}

// SetLogger sets where asynchronous write failures are reported.
func (c *Client) SetLogger(log Logger) {
	c.mu.Lock()
	c.log = log
	c.mu.Unlock()
}
