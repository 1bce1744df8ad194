package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func perf(p Performance) *Performance { return &p }
func acc(a Accuracy) *Accuracy        { return &a }
func sent(s Sentiment) *Sentiment     { return &s }

func TestTagPatchApply(t *testing.T) {
	r := Review{
		ID:          "r1",
		Performance: PerformanceSlow,
		Accuracy:    AccuracyMistake,
		Sentiment:   SentimentNegative,
	}

	patched := TagPatch{Performance: perf(PerformanceFast)}.Apply(r)
	assert.Equal(t, PerformanceFast, patched.Performance)
	assert.Equal(t, AccuracyMistake, patched.Accuracy, "unset fields untouched")
	assert.Equal(t, SentimentNegative, patched.Sentiment)

	// Original is not mutated.
	assert.Equal(t, PerformanceSlow, r.Performance)
}

func TestTagPatchValidate(t *testing.T) {
	require.NoError(t, TagPatch{}.Validate())
	require.NoError(t, TagPatch{
		Performance: perf(PerformanceAverage),
		Accuracy:    acc(AccuracyAccurate),
		Sentiment:   sent(SentimentNeutral),
	}.Validate())

	assert.Error(t, TagPatch{Performance: perf("Blazing")}.Validate())
	assert.Error(t, TagPatch{Accuracy: acc("Mostly Right")}.Validate())
	assert.Error(t, TagPatch{Sentiment: sent("Mixed")}.Validate())
}

func TestTagPatchIsZero(t *testing.T) {
	assert.True(t, TagPatch{}.IsZero())
	assert.False(t, TagPatch{Sentiment: sent(SentimentPositive)}.IsZero())
}

func TestRoleAtLeast(t *testing.T) {
	assert.True(t, RoleAtLeast(RoleAdmin, RoleViewer))
	assert.True(t, RoleAtLeast(RoleAdmin, RoleAdmin))
	assert.False(t, RoleAtLeast(RoleViewer, RoleAdmin))
	assert.False(t, RoleAtLeast(Role("bogus"), RoleViewer))
}

func TestCredentialElevated(t *testing.T) {
	assert.False(t, Credential{}.Elevated(), "no token")
	assert.False(t, Credential{Token: "t", Role: RoleViewer}.Elevated())
	assert.True(t, Credential{Token: "t", Role: RoleAdmin}.Elevated())
}
