// Package host discovers the version of the installed host application.
package host

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/reglet-dev/extcompat/parser"
)

const (
	DefaultBinary  = "codium"
	DefaultTimeout = 5 * time.Second
)

var (
	// ErrHostNotFound is returned when neither the binary nor a product
	// file yields a version.
	ErrHostNotFound = errors.New("host application not found")

	// ErrInvalidVersion is returned when the reported version does not
	// start with a digit.
	ErrInvalidVersion = errors.New("invalid host version")
)

// Runner runs a command and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}

// Prober finds the host version by running "<binary> --version", falling
// back to the version recorded in a product configuration file.
type Prober struct {
	run          Runner
	logger       *slog.Logger
	binary       string
	productFiles []string
	timeout      time.Duration
}

// NewProber creates a Prober.
func NewProber(opts ...Option) *Prober {
	p := &Prober{
		run:     execRunner,
		logger:  slog.Default(),
		binary:  DefaultBinary,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Version returns the host version string.
func (p *Prober) Version(ctx context.Context) (string, error) {
	v, runErr := p.fromBinary(ctx)
	if runErr == nil {
		p.logger.Info("detected host version", "version", v, "binary", p.binary)
		return v, nil
	}
	if errors.Is(runErr, ErrInvalidVersion) {
		return "", runErr
	}
	p.logger.Debug("host binary unavailable", "binary", p.binary, "error", runErr)

	for _, path := range p.productFiles {
		v, err := FromProductFile(path)
		if err != nil {
			p.logger.Debug("product file unusable", "path", path, "error", err)
			continue
		}
		p.logger.Info("detected host version", "version", v, "path", path)
		return v, nil
	}

	return "", fmt.Errorf("%w: %s: %v", ErrHostNotFound, p.binary, runErr)
}

func (p *Prober) fromBinary(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	out, err := p.run(ctx, p.binary, "--version")
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("running %s --version: %w", p.binary, ctx.Err())
		}
		return "", fmt.Errorf("running %s --version: %w", p.binary, err)
	}
	return ParseVersionOutput(out)
}

// ParseVersionOutput returns the first line of a --version output. The line
// must start with a digit.
func ParseVersionOutput(out []byte) (string, error) {
	first, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	first = strings.TrimSpace(first)
	if first == "" || first[0] < '0' || first[0] > '9' {
		return "", fmt.Errorf("%w: %q", ErrInvalidVersion, first)
	}
	return first, nil
}

// FromProductFile reads the version field of a product configuration file.
func FromProductFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	product, err := parser.NewJSONProductParser().Parse(data)
	if err != nil {
		return "", err
	}
	return ParseVersionOutput([]byte(product.Version))
}
