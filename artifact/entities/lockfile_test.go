package entities_test

import (
	"testing"
	"time"

	"github.com/reglet-dev/extcompat/artifact/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockfile_AddArtifact(t *testing.T) {
	t.Parallel()

	lock := entities.NewLockfile()
	assert.Equal(t, 1, lock.Version)
	assert.False(t, lock.Generated.IsZero())

	err := lock.AddArtifact("github.copilot-chat", entities.ArtifactLock{
		Requested: "GitHub.copilot-chat",
		Resolved:  "0.37.1",
		Digest:    "sha256:abc",
	})
	require.NoError(t, err)

	got := lock.GetArtifact("github.copilot-chat")
	require.NotNil(t, got)
	assert.Equal(t, "0.37.1", got.Resolved)
	assert.Nil(t, lock.GetArtifact("missing"))
	assert.Equal(t, 1, lock.ArtifactCount())
}

func TestLockfile_Invariants(t *testing.T) {
	t.Parallel()

	lock := entities.NewLockfile()
	assert.Error(t, lock.AddArtifact("a.b", entities.ArtifactLock{Resolved: "1.0.0"}))
	assert.Error(t, lock.AddArtifact("a.b", entities.ArtifactLock{Digest: "sha256:abc"}))

	broken := &entities.Lockfile{
		Artifacts: map[string]entities.ArtifactLock{
			"a.b": {Resolved: "1.0.0", Digest: "sha256:abc"},
		},
	}
	assert.ErrorContains(t, broken.Validate(), "generated timestamp")

	broken.Generated = time.Now()
	assert.NoError(t, broken.Validate())

	broken.Artifacts["c.d"] = entities.ArtifactLock{Resolved: "1.0.0"}
	assert.ErrorContains(t, broken.Validate(), `"c.d"`)
}

func TestLockfile_IDsSorted(t *testing.T) {
	t.Parallel()

	lock := entities.NewLockfile()
	for _, id := range []string{"z.z", "a.a", "m.m"} {
		require.NoError(t, lock.AddArtifact(id, entities.ArtifactLock{Resolved: "1", Digest: "sha256:00"}))
	}
	assert.Equal(t, []string{"a.a", "m.m", "z.z"}, lock.IDs())
}
