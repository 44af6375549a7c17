package gatekeeper_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/reglet-dev/extcompat/artifact"
	"github.com/reglet-dev/extcompat/artifact/entities"
	"github.com/reglet-dev/extcompat/artifact/gatekeeper"
	"github.com/reglet-dev/extcompat/artifact/values"
	"github.com/reglet-dev/extcompat/capability"
	"github.com/reglet-dev/extcompat/capability/detect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockPrompter struct {
	interactive bool
	granted     bool
	always      bool
	err         error
	asked       []string
}

func (m *mockPrompter) IsInteractive() bool { return m.interactive }

func (m *mockPrompter) ConfirmUnverified(res *artifact.Resolution) (bool, bool, error) {
	m.asked = append(m.asked, res.ID.String())
	return m.granted, m.always, m.err
}

type memStore struct {
	approvals *gatekeeper.Approvals
	loadErr   error
	saves     int
}

func (s *memStore) Load() (*gatekeeper.Approvals, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	if s.approvals == nil {
		return &gatekeeper.Approvals{}, nil
	}
	return s.approvals, nil
}

func (s *memStore) Save(a *gatekeeper.Approvals) error {
	s.approvals = a
	s.saves++
	return nil
}

func (s *memStore) Path() string { return "mem" }

func resolution(id string, verified bool) *artifact.Resolution {
	caps := detect.Result{Source: detect.SourceNone}
	if verified {
		caps = detect.Result{Set: capability.NewSet("chatHooks"), Source: detect.SourceDeclaration}
	}
	return &artifact.Resolution{
		ID:           values.MustParseArtifactID(id),
		HostVersion:  "1.109.0",
		Capabilities: caps,
		Outcome: entities.Outcome{Selected: &entities.Selection{
			Record: entities.VersionRecord{Version: "1.0.0"},
		}},
	}
}

func ids(list []*artifact.Resolution) []string {
	out := make([]string, len(list))
	for i, r := range list {
		out[i] = r.ID.String()
	}
	return out
}

func newGatekeeper(level gatekeeper.SecurityLevel, p *mockPrompter, s *memStore) *gatekeeper.Gatekeeper {
	return gatekeeper.NewGatekeeper(
		gatekeeper.WithSecurityLevel(level),
		gatekeeper.WithPrompter(p),
		gatekeeper.WithStore(s),
		gatekeeper.WithLogger(artifact.NewTestLogger()),
	)
}

func TestReview_VerifiedPassWithoutPrompt(t *testing.T) {
	t.Parallel()

	p := &mockPrompter{}
	g := newGatekeeper(gatekeeper.SecurityStrict, p, &memStore{})

	rejected := &artifact.Resolution{ID: values.MustParseArtifactID("a.none")}
	out, err := g.Review([]*artifact.Resolution{resolution("a.one", true), rejected, nil, resolution("a.two", true)}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.one", "a.two"}, ids(out))
	assert.Empty(t, p.asked)
}

func TestReview_Strict(t *testing.T) {
	t.Parallel()

	g := newGatekeeper(gatekeeper.SecurityStrict, &mockPrompter{interactive: true, granted: true}, &memStore{})
	_, err := g.Review([]*artifact.Resolution{resolution("a.one", true), resolution("a.two", false)}, false)

	var uerr *gatekeeper.UnverifiedError
	require.ErrorAs(t, err, &uerr)
	assert.ErrorIs(t, err, gatekeeper.ErrUnverified)
	assert.Equal(t, []string{"a.two"}, uerr.IDs)
}

func TestReview_PermissiveAndTrustAll(t *testing.T) {
	t.Parallel()

	input := []*artifact.Resolution{resolution("a.two", false), resolution("a.one", true)}

	g := newGatekeeper(gatekeeper.SecurityPermissive, &mockPrompter{}, &memStore{})
	out, err := g.Review(input, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.two", "a.one"}, ids(out))

	g = newGatekeeper(gatekeeper.SecurityStrict, &mockPrompter{}, &memStore{})
	out, err = g.Review(input, true)
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestReview_Standard(t *testing.T) {
	t.Parallel()

	t.Run("stored approval skips prompt", func(t *testing.T) {
		p := &mockPrompter{}
		s := &memStore{approvals: &gatekeeper.Approvals{Artifacts: []string{"a.two"}}}
		out, err := newGatekeeper(gatekeeper.SecurityStandard, p, s).
			Review([]*artifact.Resolution{resolution("A.Two", false)}, false)
		require.NoError(t, err)
		assert.Len(t, out, 1)
		assert.Empty(t, p.asked)
	})

	t.Run("non-interactive refuses", func(t *testing.T) {
		_, err := newGatekeeper(gatekeeper.SecurityStandard, &mockPrompter{}, &memStore{}).
			Review([]*artifact.Resolution{resolution("a.two", false)}, false)
		assert.ErrorIs(t, err, gatekeeper.ErrUnverified)
	})

	t.Run("granted once is not saved", func(t *testing.T) {
		p := &mockPrompter{interactive: true, granted: true}
		s := &memStore{}
		out, err := newGatekeeper(gatekeeper.SecurityStandard, p, s).
			Review([]*artifact.Resolution{resolution("a.two", false)}, false)
		require.NoError(t, err)
		assert.Len(t, out, 1)
		assert.Equal(t, []string{"a.two"}, p.asked)
		assert.Zero(t, s.saves)
	})

	t.Run("always is saved", func(t *testing.T) {
		p := &mockPrompter{interactive: true, granted: true, always: true}
		s := &memStore{}
		_, err := newGatekeeper(gatekeeper.SecurityStandard, p, s).
			Review([]*artifact.Resolution{resolution("Pub.Two", false)}, false)
		require.NoError(t, err)
		assert.Equal(t, 1, s.saves)
		assert.True(t, s.approvals.Contains("pub.two"))
	})

	t.Run("denied aborts", func(t *testing.T) {
		p := &mockPrompter{interactive: true}
		_, err := newGatekeeper(gatekeeper.SecurityStandard, p, &memStore{}).
			Review([]*artifact.Resolution{resolution("a.two", false)}, false)
		assert.ErrorIs(t, err, gatekeeper.ErrUnverified)
		assert.ErrorContains(t, err, "denied")
	})

	t.Run("prompt error propagates", func(t *testing.T) {
		boom := errors.New("tty gone")
		p := &mockPrompter{interactive: true, err: boom}
		_, err := newGatekeeper(gatekeeper.SecurityStandard, p, &memStore{}).
			Review([]*artifact.Resolution{resolution("a.two", false)}, false)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("unreadable store falls back to prompt", func(t *testing.T) {
		p := &mockPrompter{interactive: true, granted: true}
		s := &memStore{loadErr: errors.New("corrupt")}
		out, err := newGatekeeper(gatekeeper.SecurityStandard, p, s).
			Review([]*artifact.Resolution{resolution("a.two", false)}, false)
		require.NoError(t, err)
		assert.Len(t, out, 1)
	})
}

func TestParseSecurityLevel(t *testing.T) {
	t.Parallel()

	level, err := gatekeeper.ParseSecurityLevel("")
	require.NoError(t, err)
	assert.Equal(t, gatekeeper.SecurityStandard, level)

	level, err = gatekeeper.ParseSecurityLevel(" Strict ")
	require.NoError(t, err)
	assert.Equal(t, gatekeeper.SecurityStrict, level)

	_, err = gatekeeper.ParseSecurityLevel("paranoid")
	assert.Error(t, err)
}

func TestFileStore(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "approvals.yaml")
	store := gatekeeper.NewFileStore(gatekeeper.WithPath(path))
	assert.Equal(t, path, store.Path())

	a, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, a.Artifacts)

	a.Add("b.two")
	a.Add("a.one")
	a.Add("b.two")
	require.NoError(t, store.Save(a))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.one", "b.two"}, loaded.Artifacts)
}
