package capability_test

import (
	"fmt"
	"testing"

	"github.com/reglet-dev/extcompat/capability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func reqs(t *testing.T, list ...string) []capability.Requirement {
	t.Helper()
	out, err := capability.ParseRequirements(list)
	require.NoError(t, err)
	return out
}

func TestCheck(t *testing.T) {
	t.Parallel()

	supported := capability.NewSet("activeComment", "chatHooks", "findFiles2")

	tests := []struct {
		name            string
		required        []string
		supported       capability.Set
		wantOK          bool
		wantUnsupported []string
	}{
		{
			name:      "empty supported set is permissive",
			required:  []string{"chatHooks@6", "neverImplemented@1"},
			supported: capability.Empty(),
			wantOK:    true,
		},
		{
			name:      "all supported",
			required:  []string{"activeComment@1", "chatHooks@6"},
			supported: supported,
			wantOK:    true,
		},
		{
			name:            "partial match keeps input order",
			required:        []string{"zeta@1", "chatHooks@6", "alpha", "findFiles2@2"},
			supported:       supported,
			wantOK:          false,
			wantUnsupported: []string{"zeta@1", "alpha"},
		},
		{
			name:      "no requirements",
			required:  nil,
			supported: supported,
			wantOK:    true,
		},
		{
			name:            "case sensitive",
			required:        []string{"ChatHooks"},
			supported:       supported,
			wantOK:          false,
			wantUnsupported: []string{"ChatHooks"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ok, unsupported := capability.Check(reqs(t, tc.required...), tc.supported)
			assert.Equal(t, tc.wantOK, ok)
			if tc.wantUnsupported == nil {
				assert.Empty(t, unsupported)
			} else {
				assert.Equal(t, tc.wantUnsupported, capability.Strings(unsupported))
			}
		})
	}
}

func TestCheck_RevisionIsAdvisory(t *testing.T) {
	t.Parallel()

	supported := capability.NewSet("x")
	for _, r := range []string{"x@1", "x@999", "x"} {
		ok, unsupported := capability.Check(reqs(t, r), supported)
		assert.True(t, ok, r)
		assert.Empty(t, unsupported, r)
	}
}

func TestCheck_Properties(t *testing.T) {
	nameGen := rapid.StringMatching(`[A-Za-z][A-Za-z0-9_]{0,12}`)

	t.Run("permissive accepts anything", func(t *testing.T) {
		rapid.Check(t, func(rt *rapid.T) {
			names := rapid.SliceOf(nameGen).Draw(rt, "names")
			var list []capability.Requirement
			for _, n := range names {
				rev := rapid.IntRange(0, 1000).Draw(rt, "rev")
				list = append(list, capability.MustParseRequirement(fmt.Sprintf("%s@%d", n, rev)))
			}
			ok, unsupported := capability.Check(list, capability.Empty())
			if !ok || len(unsupported) != 0 {
				rt.Fatalf("permissive check rejected %v", capability.Strings(unsupported))
			}
		})
	})

	t.Run("base name membership decides", func(t *testing.T) {
		rapid.Check(t, func(rt *rapid.T) {
			base := nameGen.Draw(rt, "base")
			rev := rapid.IntRange(0, 1000).Draw(rt, "rev")
			r := capability.MustParseRequirement(fmt.Sprintf("%s@%d", base, rev))

			ok, _ := capability.Check([]capability.Requirement{r}, capability.NewSet(base))
			if !ok {
				rt.Fatalf("%s rejected by {%s}", r, base)
			}

			other := "other_" + base
			ok, unsupported := capability.Check([]capability.Requirement{r}, capability.NewSet(other))
			if ok || len(unsupported) != 1 || unsupported[0].String() != r.String() {
				rt.Fatalf("%s accepted by {%s}", r, other)
			}
		})
	})
}
