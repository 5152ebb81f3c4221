package xmlfix

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProfile(t *testing.T) {
	data := []byte(`
trust: untrusted
match_threshold: 3
wrap_multiple_roots: true
strip_dangerous_tags: false
`)

	profile, err := ParseProfile(data)
	require.NoError(t, err)

	assert.Equal(t, "untrusted", profile.Trust)
	require.NotNil(t, profile.MatchThreshold)
	assert.Equal(t, 3, *profile.MatchThreshold)
	require.NotNil(t, profile.WrapMultipleRoots)
	assert.True(t, *profile.WrapMultipleRoots)
	require.NotNil(t, profile.StripDangerousTags)
	assert.False(t, *profile.StripDangerousTags)
	assert.Nil(t, profile.Strict)
}

func TestParseProfile_UnknownTrust(t *testing.T) {
	_, err := ParseProfile([]byte("trust: hostile"))

	require.Error(t, err)
	assert.ErrorContains(t, err, ErrMsgProfileUnknownTrust)
}

func TestParseProfile_InvalidYAML(t *testing.T) {
	_, err := ParseProfile([]byte("trust: [unclosed"))

	require.Error(t, err)
	assert.ErrorContains(t, err, ErrMsgProfileParse)
}

func TestLoadProfileFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("trust: internal\n"), 0o644))

	profile, err := LoadProfileFile(path)
	require.NoError(t, err)
	assert.Equal(t, "internal", profile.Trust)
}

func TestLoadProfileFile_Missing(t *testing.T) {
	_, err := LoadProfileFile(filepath.Join(t.TempDir(), "absent.yaml"))

	require.Error(t, err)
	assert.ErrorContains(t, err, ErrMsgProfileRead)
}

func TestProfile_FieldsOverrideTrustDefaults(t *testing.T) {
	profile, err := ParseProfile([]byte(`
trust: untrusted
strip_dangerous_tags: false
max_nesting_depth: 50
`))
	require.NoError(t, err)

	engine, err := NewFromProfile(profile)
	require.NoError(t, err)

	config := engine.Config()
	assert.Equal(t, TrustUntrusted, engine.TrustLevel())
	assert.True(t, config.StripDangerousPIs)
	assert.False(t, config.StripDangerousTags)
	assert.Equal(t, 50, config.MaxNestingDepth)
	assert.True(t, config.Strict)
}

func TestNewFromProfile_ExtraOptionsWin(t *testing.T) {
	profile := &Profile{Trust: "trusted"}

	engine, err := NewFromProfile(profile, WithStrict(true))
	require.NoError(t, err)
	assert.True(t, engine.Config().Strict)
}

func TestProfile_EmptyProfileUsesDefaults(t *testing.T) {
	engine, err := NewFromProfile(&Profile{})
	require.NoError(t, err)

	config := engine.Config()
	assert.Equal(t, DefaultMatchThreshold, config.MatchThreshold)
	assert.False(t, config.StripDangerousPIs)
	assert.Equal(t, TrustTrusted, engine.TrustLevel())
}
