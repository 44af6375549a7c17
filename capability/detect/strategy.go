// Package detect determines which capabilities the host runtime implements by
// trying evidence sources in strict priority order. The first usable source
// wins; when none is usable the result is the empty, permissive set.
package detect

import (
	"context"
	"errors"
	"fmt"

	"github.com/reglet-dev/extcompat/capability"
)

// ErrNoEvidence is returned by the end of the chain when no source was usable.
var ErrNoEvidence = errors.New("no capability evidence found")

// Source names the evidence source a detection result came from.
type Source string

const (
	SourceDeclaration    Source = "declaration"
	SourceBundle         Source = "bundle"
	SourcePermissionList Source = "permission-list"
	SourceNone           Source = "none"
)

// Evidence is a usable result from one strategy.
type Evidence struct {
	Set    capability.Set
	Source Source
	Path   string
}

// Strategy defines one evidence source in the detection chain.
// Implements Chain of Responsibility pattern.
type Strategy interface {
	// Detect returns evidence from this source or delegates to the next one.
	Detect(ctx context.Context) (*Evidence, error)

	// SetNext sets the next strategy in the chain.
	SetNext(next Strategy)
}

// BaseStrategy provides common chain-of-responsibility logic.
type BaseStrategy struct {
	next Strategy
}

// SetNext sets the next strategy in chain.
func (b *BaseStrategy) SetNext(next Strategy) {
	b.next = next
}

// DetectNext delegates to the next strategy in chain.
func (b *BaseStrategy) DetectNext(ctx context.Context) (*Evidence, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if b.next == nil {
		return nil, ErrNoEvidence
	}
	return b.next.Detect(ctx)
}

// NewChain links strategies in the given order and returns the head.
func NewChain(strategies ...Strategy) (Strategy, error) {
	if len(strategies) == 0 {
		return nil, fmt.Errorf("detection chain needs at least one strategy")
	}
	return link(strategies), nil
}

// link chains a non-empty slice of strategies.
func link(strategies []Strategy) Strategy {
	for i := 0; i < len(strategies)-1; i++ {
		strategies[i].SetNext(strategies[i+1])
	}
	return strategies[0]
}
