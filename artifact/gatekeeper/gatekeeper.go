// Package gatekeeper decides whether resolutions accepted without capability
// evidence may be pinned in a lockfile. When detection finds nothing the
// capability gate is permissive, so such acceptances are unverified.
package gatekeeper

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/reglet-dev/extcompat/artifact"
)

// SecurityLevel controls how unverified resolutions are treated.
type SecurityLevel string

const (
	// SecurityStrict refuses to lock unverified resolutions.
	SecurityStrict SecurityLevel = "strict"
	// SecurityStandard locks unverified resolutions that were approved
	// before or are confirmed interactively.
	SecurityStandard SecurityLevel = "standard"
	// SecurityPermissive locks everything with a warning.
	SecurityPermissive SecurityLevel = "permissive"
)

// ParseSecurityLevel parses a level name. Empty means standard.
func ParseSecurityLevel(s string) (SecurityLevel, error) {
	switch level := SecurityLevel(strings.ToLower(strings.TrimSpace(s))); level {
	case "":
		return SecurityStandard, nil
	case SecurityStrict, SecurityStandard, SecurityPermissive:
		return level, nil
	default:
		return "", fmt.Errorf("unknown security level %q", s)
	}
}

// ErrUnverified is returned when an unverified resolution may not be locked.
var ErrUnverified = errors.New("resolution accepted without capability evidence")

// UnverifiedError lists the artifacts that were refused.
type UnverifiedError struct {
	Reason string
	IDs    []string
}

func (e *UnverifiedError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", ErrUnverified, strings.Join(e.IDs, ", "), e.Reason)
}

// Is reports whether target is ErrUnverified.
func (e *UnverifiedError) Is(target error) bool {
	return target == ErrUnverified
}

// Prompter asks the user about unverified resolutions.
type Prompter interface {
	IsInteractive() bool
	ConfirmUnverified(res *artifact.Resolution) (granted, always bool, err error)
}

// ApprovalStore persists artifacts the user approved permanently.
type ApprovalStore interface {
	Load() (*Approvals, error)
	Save(a *Approvals) error
	Path() string
}

// Gatekeeper filters resolutions before they are locked.
type Gatekeeper struct {
	store         ApprovalStore
	prompter      Prompter
	logger        *slog.Logger
	securityLevel SecurityLevel
}

// Option configures a Gatekeeper.
type Option func(*Gatekeeper)

// WithStore sets the approval store.
func WithStore(s ApprovalStore) Option {
	return func(g *Gatekeeper) { g.store = s }
}

// WithPrompter sets the prompter.
func WithPrompter(p Prompter) Option {
	return func(g *Gatekeeper) { g.prompter = p }
}

// WithSecurityLevel sets the policy level.
func WithSecurityLevel(level SecurityLevel) Option {
	return func(g *Gatekeeper) { g.securityLevel = level }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gatekeeper) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGatekeeper creates a gatekeeper. The store defaults to the user's
// approvals file and the prompter to the terminal.
func NewGatekeeper(opts ...Option) *Gatekeeper {
	g := &Gatekeeper{
		securityLevel: SecurityStandard,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.store == nil {
		g.store = NewFileStore()
	}
	if g.prompter == nil {
		g.prompter = NewTerminalPrompter()
	}
	return g
}

// Review returns the accepted resolutions that may be locked, in input
// order. Resolutions backed by capability evidence always pass. trustAll
// approves everything, like the permissive level.
func (g *Gatekeeper) Review(resolutions []*artifact.Resolution, trustAll bool) ([]*artifact.Resolution, error) {
	var unverified []*artifact.Resolution
	for _, res := range resolutions {
		if res != nil && res.Outcome.Accepted() && res.Capabilities.Permissive() {
			unverified = append(unverified, res)
		}
	}

	if len(unverified) == 0 || trustAll || g.securityLevel == SecurityPermissive {
		if len(unverified) > 0 {
			g.logger.Warn("locking resolutions without capability evidence", "artifacts", idList(unverified))
		}
		return accepted(resolutions), nil
	}

	if g.securityLevel == SecurityStrict {
		return nil, &UnverifiedError{IDs: idList(unverified), Reason: "strict security level"}
	}

	stored, err := g.store.Load()
	if err != nil {
		g.logger.Warn("ignoring unreadable approvals", "path", g.store.Path(), "error", err)
		stored = &Approvals{}
	}

	var pending []*artifact.Resolution
	for _, res := range unverified {
		if !stored.Contains(res.ID.Key()) {
			pending = append(pending, res)
		}
	}
	if len(pending) == 0 {
		return accepted(resolutions), nil
	}

	if !g.prompter.IsInteractive() {
		return nil, &UnverifiedError{IDs: idList(pending), Reason: "not approved; rerun interactively or pass --yes"}
	}

	shouldSave := false
	for _, res := range pending {
		granted, always, err := g.prompter.ConfirmUnverified(res)
		if err != nil {
			return nil, err
		}
		if !granted {
			return nil, &UnverifiedError{IDs: []string{res.ID.String()}, Reason: "denied by user"}
		}
		if always {
			stored.Add(res.ID.Key())
			shouldSave = true
		}
	}

	if shouldSave {
		if err := g.store.Save(stored); err != nil {
			g.logger.Warn("failed to save approvals", "path", g.store.Path(), "error", err)
		} else {
			g.logger.Info("approvals saved", "path", g.store.Path())
		}
	}
	return accepted(resolutions), nil
}

func accepted(resolutions []*artifact.Resolution) []*artifact.Resolution {
	out := make([]*artifact.Resolution, 0, len(resolutions))
	for _, res := range resolutions {
		if res == nil || !res.Outcome.Accepted() {
			continue
		}
		out = append(out, res)
	}
	return out
}

func idList(resolutions []*artifact.Resolution) []string {
	ids := make([]string, len(resolutions))
	for i, res := range resolutions {
		ids[i] = res.ID.String()
	}
	return ids
}
