package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyStatusValid(t *testing.T) {
	for _, s := range Statuses() {
		assert.True(t, s.Valid(), "status %s", s)
	}
	assert.False(t, PolicyStatus("active").Valid())
	assert.False(t, PolicyStatus("").Valid())
}

func TestTargetAudienceValid(t *testing.T) {
	for _, a := range Audiences() {
		assert.True(t, a.Valid(), "audience %s", a)
	}
	assert.False(t, TargetAudience("외계인").Valid())
	assert.False(t, TargetAudience("").Valid())
}

func TestAudienceProfiles(t *testing.T) {
	require.Len(t, Audiences(), 7)

	for _, a := range Audiences() {
		profile := a.Profile()
		assert.NotEmpty(t, profile.Tone, "audience %s", a)
		assert.NotEmpty(t, profile.Focus, "audience %s", a)
	}

	// Unknown personas yield the zero profile.
	assert.Zero(t, TargetAudience("외계인").Profile())
}

func TestAudienceProfile_Citizens(t *testing.T) {
	profile := AudienceCitizens.Profile()
	assert.Contains(t, profile.Tone, "친근")
	assert.Contains(t, profile.Focus, "일상")
}
