package detect

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/reglet-dev/extcompat/capability"
	"github.com/reglet-dev/extcompat/capability/sources/sourcestest"
)

// mockStrategy implements Strategy for testing
type mockStrategy struct {
	BaseStrategy
	evidence *Evidence
	err      error
	called   bool
}

func (m *mockStrategy) Detect(ctx context.Context) (*Evidence, error) {
	m.called = true
	if m.err != nil {
		return nil, m.err
	}
	if m.evidence != nil {
		return m.evidence, nil
	}
	return m.DetectNext(ctx)
}

func TestBaseStrategy_Chain(t *testing.T) {
	found := &Evidence{Set: capability.NewSet("a"), Source: SourceBundle}

	t.Run("NextStrategyCalled", func(t *testing.T) {
		s1 := &mockStrategy{}
		s2 := &mockStrategy{evidence: found}

		head, err := NewChain(s1, s2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got, err := head.Detect(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != found {
			t.Error("expected evidence from second strategy")
		}
		if !s1.called || !s2.called {
			t.Error("both strategies should be called")
		}
	})

	t.Run("ChainEndsWithNoEvidence", func(t *testing.T) {
		head, _ := NewChain(&mockStrategy{})

		_, err := head.Detect(context.Background())
		if !errors.Is(err, ErrNoEvidence) {
			t.Errorf("expected ErrNoEvidence, got %v", err)
		}
	})

	t.Run("ChainStopsOnFirstSuccess", func(t *testing.T) {
		s1 := &mockStrategy{evidence: found}
		s2 := &mockStrategy{evidence: found}
		head, _ := NewChain(s1, s2)

		if _, err := head.Detect(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s2.called {
			t.Error("s2 should NOT be called")
		}
	})

	t.Run("EmptyChain", func(t *testing.T) {
		if _, err := NewChain(); err == nil {
			t.Error("expected error for empty chain")
		}
	})
}

func TestDetector_WithStrategies(t *testing.T) {
	custom := &mockStrategy{evidence: &Evidence{Set: capability.NewSet("x"), Source: SourceDeclaration, Path: "p"}}
	res := NewDetector(Paths{}, WithStrategies(custom)).Detect(context.Background())
	if res.Source != SourceDeclaration || !res.Set.Contains("x") {
		t.Errorf("unexpected result %+v", res)
	}

	dir := t.TempDir()
	decl := filepath.Join(dir, "extensionApiProposals.js")
	if err := os.WriteFile(decl, []byte(sourcestest.Formatted("chatHooks")), 0o600); err != nil {
		t.Fatal(err)
	}
	res = NewDetector(Paths{DeclarationFiles: []string{decl}}, WithStrategies()).Detect(context.Background())
	if res.Source != SourceDeclaration || !res.Set.Contains("chatHooks") {
		t.Errorf("empty WithStrategies should keep the default chain, got %+v", res)
	}

	failing := &mockStrategy{err: errors.New("boom")}
	res = NewDetector(Paths{}, WithStrategies(failing)).Detect(context.Background())
	if !res.Permissive() || res.Source != SourceNone {
		t.Errorf("expected permissive result, got %+v", res)
	}
}
