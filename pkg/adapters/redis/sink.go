// Package redis streams traces into Redis: a hash holds the header and a stream
// holds one entry per dump time. A writer lock keeps one sink per trace.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/aretw0/scopetrace/pkg/domain"
	"github.com/aretw0/scopetrace/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by the sink.
const DefaultPrefix = "scopetrace:"

// Options is the decoded form of the redis sink configuration.
type Options struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	Timeout  time.Duration `mapstructure:"timeout"`
	LockTTL  time.Duration `mapstructure:"lock_ttl"`
	MaxLen   int64         `mapstructure:"max_len"`
	Policy   string        `mapstructure:"policy"`
}

// Option configures a Sink.
type Option func(*Sink)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Sink) {
		s.prefix = prefix
	}
}

// WithTimeout bounds every Redis round trip.
func WithTimeout(d time.Duration) Option {
	return func(s *Sink) {
		s.timeout = d
	}
}

// WithLockTTL sets how long the writer lock survives a crashed writer.
// A live writer renews it on every dump and from a background ticker.
func WithLockTTL(d time.Duration) Option {
	return func(s *Sink) {
		s.lockTTL = d
	}
}

// WithMaxLen caps the stream length (approximate trimming). Zero keeps everything.
func WithMaxLen(n int64) Option {
	return func(s *Sink) {
		s.maxLen = n
	}
}

// WithPolicy sets the dump policy (default delta).
func WithPolicy(p domain.DumpPolicy) Option {
	return func(s *Sink) {
		s.policy = p
	}
}

// Sink implements ports.Sink on top of a Redis stream.
type Sink struct {
	client     *backend.Client
	ownsClient bool
	locker     *Locker
	prefix     string
	timeout    time.Duration
	lockTTL    time.Duration
	maxLen     int64
	policy     domain.DumpPolicy

	path    string
	lease   *Lease
	lost    atomic.Bool
	stop    chan struct{}
	stopped chan struct{}
	pending []any
	time    uint64
	dumps   int
}

var _ ports.Sink = (*Sink)(nil)

// New creates a sink with its own client.
func New(address, password string, db int, opts ...Option) *Sink {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	s := NewFromClient(rdb, opts...)
	s.ownsClient = true
	return s
}

// NewFromClient creates a sink from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Sink {
	s := &Sink{
		client:  client,
		prefix:  DefaultPrefix,
		timeout: 5 * time.Second,
		lockTTL: time.Minute,
		policy:  domain.PolicyDelta,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.locker = NewLocker(client, s.prefix)
	return s
}

// FromOptions builds a sink from decoded configuration.
func FromOptions(o Options) (*Sink, error) {
	if o.Addr == "" {
		return nil, errors.New("redis sink: addr is required")
	}
	opts := []Option{WithMaxLen(o.MaxLen)}
	if o.Prefix != "" {
		opts = append(opts, WithPrefix(o.Prefix))
	}
	if o.Timeout > 0 {
		opts = append(opts, WithTimeout(o.Timeout))
	}
	if o.LockTTL > 0 {
		opts = append(opts, WithLockTTL(o.LockTTL))
	}
	if o.Policy != "" {
		p, err := domain.ParsePolicy(o.Policy)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithPolicy(p))
	}
	return New(o.Addr, o.Password, o.DB, opts...), nil
}

// Policy implements ports.Sink.
func (s *Sink) Policy() domain.DumpPolicy {
	return s.policy
}

// StreamKey returns the stream key of the trace at path.
func StreamKey(prefix, path string) string {
	return prefix + "trace:" + path
}

// HeaderKey returns the header hash key of the trace at path.
func HeaderKey(prefix, path string) string {
	return StreamKey(prefix, path) + ":header"
}

// IndexKey returns the sorted set listing every trace by start time.
func IndexKey(prefix string) string {
	return prefix + "index"
}

func (s *Sink) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

// Open implements ports.Sink. It takes the writer lock and drops any previous trace at path.
func (s *Sink) Open(path string) error {
	if s.lease != nil {
		return errors.New("redis sink already open")
	}
	if path == "" {
		return errors.New("redis sink needs a non-empty trace name")
	}
	ctx, cancel := s.ctx()
	defer cancel()

	lease, err := s.locker.TryLock(ctx, path, s.lockTTL)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, StreamKey(s.prefix, path), HeaderKey(s.prefix, path))
	pipe.ZAdd(ctx, IndexKey(s.prefix), backend.Z{Score: float64(time.Now().Unix()), Member: path})
	if _, err := pipe.Exec(ctx); err != nil {
		_ = lease.Release(ctx)
		return fmt.Errorf("failed to reset trace: %w", err)
	}

	s.path = path
	s.lease = lease
	s.lost.Store(false)
	s.pending = nil
	s.dumps = 0
	s.stop = make(chan struct{})
	s.stopped = make(chan struct{})
	go s.keepalive(lease, s.stop, s.stopped)
	return nil
}

// keepalive renews the lease between dumps until stop is closed or the lease is lost.
func (s *Sink) keepalive(lease *Lease, stop <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)
	ticker := time.NewTicker(max(lease.TTL()/3, time.Millisecond))
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := s.ctx()
			err := lease.Refresh(ctx)
			cancel()
			if errors.Is(err, ErrLockLost) {
				s.lost.Store(true)
				return
			}
		}
	}
}

// renew extends the lease before a write so a lost lock never lets two writers append.
func (s *Sink) renew(ctx context.Context) error {
	if s.lost.Load() {
		return fmt.Errorf("%w: %s", ErrLockLost, s.path)
	}
	if err := s.lease.Refresh(ctx); err != nil {
		if errors.Is(err, ErrLockLost) {
			s.lost.Store(true)
		}
		return err
	}
	return nil
}

// WriteHeader implements ports.Sink.
func (s *Sink) WriteHeader(h domain.Header) error {
	if s.lease == nil {
		return errors.New("redis sink is not open")
	}
	signals, err := json.Marshal(h.Signals)
	if err != nil {
		return fmt.Errorf("failed to marshal signals: %w", err)
	}
	ctx, cancel := s.ctx()
	defer cancel()
	if err := s.renew(ctx); err != nil {
		return err
	}
	return s.client.HSet(ctx, HeaderKey(s.prefix, s.path),
		"timescale", h.Timescale,
		"version", h.Version,
		"date", h.Date.Format(time.RFC3339Nano),
		"signals", string(signals),
		"closed", "0",
	).Err()
}

// WriteRecord implements ports.Sink. Records of one time are sent as one stream entry.
func (s *Sink) WriteRecord(rec domain.TraceRecord) error {
	if s.lease == nil {
		return errors.New("redis sink is not open")
	}
	if !s.policy.Admit(rec) {
		return nil
	}
	if s.pending != nil && s.time != rec.Time {
		if err := s.emit(); err != nil {
			return err
		}
	}
	if s.pending == nil {
		s.time = rec.Time
		s.pending = []any{"t", strconv.FormatUint(rec.Time, 10)}
	}
	s.pending = append(s.pending, rec.Path, rec.Value.Binary())
	return nil
}

func (s *Sink) emit() error {
	if s.pending == nil {
		return nil
	}
	ctx, cancel := s.ctx()
	defer cancel()
	if err := s.renew(ctx); err != nil {
		s.pending = nil
		return err
	}

	args := &backend.XAddArgs{
		Stream: StreamKey(s.prefix, s.path),
		ID:     "*",
		Values: s.pending,
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}
	s.pending = nil
	if err := s.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("failed to append dump at %d: %w", s.time, err)
	}
	s.dumps++
	return nil
}

// Close implements ports.Sink. It marks the trace closed and releases the lock.
// A writer that lost its lock leaves the header alone and reports ErrLockLost.
func (s *Sink) Close() error {
	if s.lease == nil {
		return errors.New("redis sink is not open")
	}
	close(s.stop)
	<-s.stopped
	emitErr := s.emit()

	ctx, cancel := s.ctx()
	defer cancel()
	var markErr, releaseErr error
	if s.lost.Load() {
		if emitErr == nil {
			releaseErr = fmt.Errorf("%w: %s", ErrLockLost, s.path)
		}
	} else {
		markErr = s.client.HSet(ctx, HeaderKey(s.prefix, s.path), "closed", "1", "dumps", s.dumps).Err()
		releaseErr = s.lease.Release(ctx)
	}
	s.lease = nil

	var clientErr error
	if s.ownsClient {
		clientErr = s.client.Close()
	}
	return errors.Join(emitErr, markErr, releaseErr, clientErr)
}
