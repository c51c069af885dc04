// Package backup uploads encrypted snapshots of the state to S3-compatible
// storage. Snapshots are the export document sealed with the configured
// passphrase; the upload path is strictly one-way and never touches the
// store.
package backup

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sort"
	stdsync "sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/jtroost/packmule/internal/export"
	"github.com/jtroost/packmule/internal/state"
	"github.com/jtroost/packmule/internal/sync"
)

// s3Client is the slice of the S3 API the manager uses, an interface for
// testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, input *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

// Config holds snapshot manager configuration.
type Config struct {
	S3         S3Config
	Prefix     string        // key prefix, normally the user id
	Passphrase string        // encrypts every snapshot; required
	Interval   time.Duration // defaults to 24h
	Keep       int           // snapshots retained, defaults to 30
}

// State represents the manager state.
type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateDisabled State = "disabled"
	StateError    State = "error"
)

// Status holds the current manager status.
type Status struct {
	State        State      `json:"state"`
	LastSnapshot *time.Time `json:"lastSnapshot,omitempty"`
	Error        string     `json:"error,omitempty"`
}

// StatusCallback is called whenever the status changes.
type StatusCallback func(Status)

// Manager runs the scheduled snapshot loop.
type Manager struct {
	mu       stdsync.RWMutex
	cfg      Config
	status   Status
	lastHash string

	store    *state.Store
	client   s3Client
	callback StatusCallback
	logger   *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// NewManager creates a snapshot manager. The manager stays disabled until
// the S3 credentials and a passphrase are all configured.
func NewManager(cfg Config, store *state.Store, callback StatusCallback, logger *slog.Logger) *Manager {
	if cfg.Interval == 0 {
		cfg.Interval = 24 * time.Hour
	}
	if cfg.Keep <= 0 {
		cfg.Keep = 30
	}
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		cfg:      cfg,
		store:    store,
		callback: callback,
		logger:   logger.With("component", "backup"),
		status:   Status{State: StateDisabled},
	}
	if cfg.S3.Bucket != "" && cfg.S3.AccessKey != "" && cfg.S3.SecretKey != "" && cfg.Passphrase != "" {
		m.client = newS3Client(cfg.S3)
		m.status.State = StateIdle
	}
	return m
}

func newS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Start begins the scheduled snapshot loop.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.status.State == StateDisabled {
		m.mu.Unlock()
		return
	}
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	interval := m.cfg.Interval
	m.mu.Unlock()

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := m.RunNow(ctx); err != nil {
					m.logger.Error("scheduled snapshot", "error", err)
				}
				if err := m.Cleanup(ctx); err != nil {
					m.logger.Error("snapshot cleanup", "error", err)
				}
			}
		}
	}()
}

// Stop gracefully stops the loop.
func (m *Manager) Stop() {
	m.mu.RLock()
	cancel := m.cancel
	done := m.done
	m.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Status returns the current status.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Manager) setStatus(s Status) {
	m.mu.Lock()
	m.status = s
	m.mu.Unlock()
	if m.callback != nil {
		m.callback(s)
	}
}

// RunNow takes a snapshot immediately. Unchanged state since the last
// upload is skipped; the returned key is empty in that case.
func (m *Manager) RunNow(ctx context.Context) (string, error) {
	m.mu.RLock()
	client := m.client
	cfg := m.cfg
	lastHash := m.lastHash
	m.mu.RUnlock()

	if client == nil {
		return "", fmt.Errorf("snapshots not configured")
	}

	p := m.store.Snapshot().Persisted()
	hash := sync.Fingerprint(p)
	if hash == lastHash {
		return "", nil
	}

	m.setStatus(Status{State: StateRunning})

	data, err := export.Export(p)
	if err != nil {
		m.setStatus(Status{State: StateError, Error: err.Error()})
		return "", fmt.Errorf("export snapshot: %w", err)
	}
	sealed, err := export.Encrypt(data, cfg.Passphrase)
	if err != nil {
		m.setStatus(Status{State: StateError, Error: err.Error()})
		return "", fmt.Errorf("encrypt snapshot: %w", err)
	}

	key := fmt.Sprintf("%s/snapshot-%s.json.enc", cfg.Prefix, time.Now().UTC().Format("2006-01-02T150405Z"))
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(cfg.S3.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(sealed),
		ContentLength: aws.Int64(int64(len(sealed))),
	})
	if err != nil {
		m.setStatus(Status{State: StateError, Error: err.Error()})
		return "", fmt.Errorf("upload snapshot: %w", err)
	}

	m.mu.Lock()
	m.lastHash = hash
	m.mu.Unlock()

	now := time.Now().UTC()
	m.setStatus(Status{State: StateIdle, LastSnapshot: &now})
	return key, nil
}

// Cleanup deletes the oldest snapshots beyond the retention count. Keys
// embed a UTC timestamp, so lexicographic order is chronological.
func (m *Manager) Cleanup(ctx context.Context) error {
	m.mu.RLock()
	client := m.client
	cfg := m.cfg
	m.mu.RUnlock()

	if client == nil {
		return nil
	}

	out, err := client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(cfg.S3.Bucket),
		Prefix: aws.String(cfg.Prefix + "/"),
	})
	if err != nil {
		return fmt.Errorf("list snapshots: %w", err)
	}
	excess := len(out.Contents) - cfg.Keep
	if excess <= 0 {
		return nil
	}

	keys := make([]string, 0, len(out.Contents))
	for _, obj := range out.Contents {
		keys = append(keys, aws.ToString(obj.Key))
	}
	sort.Strings(keys)

	for _, key := range keys[:excess] {
		if _, err := client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(cfg.S3.Bucket),
			Key:    aws.String(key),
		}); err != nil {
			m.logger.Warn("delete old snapshot", "key", key, "error", err)
		}
	}
	return nil
}
