package backup

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

// Config holds backup manager configuration. The manager stays disabled
// unless the S3 credentials and the passphrase are all present.
type Config struct {
	S3         S3Config
	DBPath     string
	Passphrase string
	Hour       int // local hour (ART) of the nightly run
}

// Manager produces a nightly encrypted snapshot of the database and uploads
// it to S3-compatible storage.
type Manager struct {
	mu      sync.Mutex
	cfg     Config
	db      *sql.DB
	client  s3Client
	logger  *slog.Logger
	lastRun string // date of the last completed run, "2006-01-02"
	now     func() time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

func NewManager(cfg Config, db *sql.DB, logger *slog.Logger) *Manager {
	m := &Manager{cfg: cfg, db: db, logger: logger, now: time.Now}
	if m.Enabled() {
		m.client = newS3Client(cfg.S3)
	}
	return m
}

// Enabled reports whether the manager has everything it needs to run.
func (m *Manager) Enabled() bool {
	return m.cfg.S3.Bucket != "" && m.cfg.S3.AccessKey != "" &&
		m.cfg.S3.SecretKey != "" && m.cfg.Passphrase != ""
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

// Start begins the nightly schedule loop. No-op when disabled.
func (m *Manager) Start(ctx context.Context) {
	if !m.Enabled() {
		return
	}

	m.mu.Lock()
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	m.mu.Unlock()

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.checkSchedule(ctx)
			}
		}
	}()
}

// Stop gracefully stops the manager.
func (m *Manager) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	done := m.done
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (m *Manager) checkSchedule(ctx context.Context) {
	now := m.now()
	if now.Hour() != m.cfg.Hour {
		return
	}

	today := now.Format("2006-01-02")
	m.mu.Lock()
	alreadyRan := m.lastRun == today
	m.mu.Unlock()
	if alreadyRan {
		return
	}

	if err := m.RunNow(ctx); err != nil {
		m.logger.Error("nightly backup", "error", err)
		return
	}
	m.mu.Lock()
	m.lastRun = today
	m.mu.Unlock()
}

// RunNow snapshots the database, encrypts the snapshot and uploads it.
func (m *Manager) RunNow(ctx context.Context) error {
	if m.client == nil {
		return fmt.Errorf("backup not configured")
	}

	start := m.now()
	timestamp := start.UTC().Format("2006-01-02T150405Z")
	key := fmt.Sprintf("backups/colegiosync-%s.db.enc", timestamp)

	tmpDir := os.TempDir()
	snapshot := filepath.Join(tmpDir, fmt.Sprintf("colegiosync-%s.db", timestamp))
	encFile := snapshot + ".enc"
	defer os.Remove(snapshot)
	defer os.Remove(encFile)

	// VACUUM INTO writes a consistent single-file copy regardless of WAL
	// state, without blocking writers.
	if _, err := m.db.ExecContext(ctx, "VACUUM INTO ?", snapshot); err != nil {
		return fmt.Errorf("snapshot database: %w", err)
	}

	if err := EncryptFile(snapshot, encFile, m.cfg.Passphrase); err != nil {
		return fmt.Errorf("encrypt snapshot: %w", err)
	}

	f, err := os.Open(encFile)
	if err != nil {
		return fmt.Errorf("open encrypted snapshot: %w", err)
	}
	defer f.Close()
	stat, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat encrypted snapshot: %w", err)
	}

	if _, err := m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(m.cfg.S3.Bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(stat.Size()),
	}); err != nil {
		return fmt.Errorf("upload to s3: %w", err)
	}

	m.logger.Info("backup uploaded", "key", key, "bytes", stat.Size(),
		"duration", time.Since(start))
	return nil
}
