package model

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/heartguard-server/internal/domain"
)

// Loader resolves the classifier artifact: local candidate paths are
// probed in order, then the configured download URL is tried. The loaded
// model is cached for the life of the process. Loader implements
// domain.Predictor so the server can start before the artifact is
// resolvable; prediction surfaces ErrUnavailable until a load succeeds.
type Loader struct {
	config  domain.ModelConfig
	logger  *logrus.Logger
	client  *resty.Client
	breaker *gobreaker.CircuitBreaker

	mu    sync.Mutex
	model *Model
}

// NewLoader creates a new artifact loader.
func NewLoader(config domain.ModelConfig, logger *logrus.Logger) *Loader {
	timeout := config.DownloadTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(time.Second)

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "model-artifact-download",
		Timeout: 60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Artifact download circuit breaker state changed")
		},
	})

	return &Loader{
		config:  config,
		logger:  logger,
		client:  client,
		breaker: breaker,
	}
}

// Load resolves the artifact, returning the cached model after the first
// successful resolution.
func (l *Loader) Load(ctx context.Context) (*Model, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.model != nil {
		return l.model, nil
	}

	// Local candidates first, in configured order.
	for _, path := range l.config.LocalPaths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		m, err := l.loadVerified(path)
		if err != nil {
			l.logger.WithError(err).WithField("path", path).Warn("Skipping unreadable local artifact")
			continue
		}
		l.logger.WithFields(logrus.Fields{
			"path":    path,
			"version": m.Version(),
		}).Info("Classifier artifact loaded from local path")
		l.model = m
		return m, nil
	}

	if l.config.DownloadURL == "" {
		return nil, fmt.Errorf("%w: no local artifact found and no download URL configured", ErrUnavailable)
	}

	m, err := l.download(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	l.logger.WithFields(logrus.Fields{
		"url":     l.config.DownloadURL,
		"version": m.Version(),
	}).Info("Classifier artifact downloaded and loaded")
	l.model = m
	return m, nil
}

// download fetches the artifact to a temp file, verifies it and loads it.
// The fetch runs behind the circuit breaker; a tripped breaker fails fast.
func (l *Loader) download(ctx context.Context) (*Model, error) {
	result, err := l.breaker.Execute(func() (interface{}, error) {
		tmp, err := os.CreateTemp("", "heartguard-model-*.json")
		if err != nil {
			return nil, fmt.Errorf("creating temp file: %w", err)
		}
		tmpPath := tmp.Name()
		tmp.Close()
		defer os.Remove(tmpPath)

		resp, err := l.client.R().
			SetContext(ctx).
			SetOutput(tmpPath).
			Get(l.config.DownloadURL)
		if err != nil {
			return nil, fmt.Errorf("downloading artifact: %w", err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("downloading artifact: status %s", resp.Status())
		}

		return l.loadVerified(tmpPath)
	})
	if err != nil {
		return nil, err
	}
	return result.(*Model), nil
}

// loadVerified checks the configured checksum, if any, then loads.
func (l *Loader) loadVerified(path string) (*Model, error) {
	if l.config.Checksum != "" {
		sum, err := fileChecksum(path)
		if err != nil {
			return nil, err
		}
		if sum != l.config.Checksum {
			return nil, fmt.Errorf("artifact checksum mismatch: got %s", sum)
		}
	}
	return LoadFile(path)
}

// PredictProbability implements domain.Predictor by delegating to the
// resolved model, loading it on first use.
func (l *Loader) PredictProbability(ctx context.Context, params domain.PatientParameters) (float64, error) {
	m, err := l.Load(ctx)
	if err != nil {
		return 0, err
	}
	return m.PredictProbability(ctx, params)
}

// Version implements domain.Predictor. It reports "unresolved" until a
// load has succeeded.
func (l *Loader) Version() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.model == nil {
		return "unresolved"
	}
	return l.model.Version()
}

// Ready reports whether the artifact has been resolved.
func (l *Loader) Ready() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.model != nil
}

func fileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening artifact for checksum: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing artifact: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
