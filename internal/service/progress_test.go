package service

import (
	"testing"

	"ranked-progress/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate_SingleBucketMissing(t *testing.T) {
	buckets := []domain.Bucket{{Name: "Split 3", Start: day(0), Requirement: 5}}

	p := Evaluate([]int{3}, buckets, 0)

	assert.False(t, p.Complete)
	assert.False(t, p.Buckets[0].Met)
	assert.Equal(t, 3, p.Total)
	assert.Equal(t, "❌ missing 2", p.Status)
}

func TestEvaluate_TwoBucketsComplete(t *testing.T) {
	buckets := []domain.Bucket{
		{Name: "Split 2", Start: day(100), Requirement: 55},
		{Name: "Split 3", Start: day(200), Requirement: 15},
	}

	p := Evaluate([]int{55, 15}, buckets, 70)

	assert.True(t, p.Complete)
	assert.True(t, p.TotalMet)
	assert.Equal(t, 70, p.Total)
	assert.Equal(t, StatusComplete, p.Status)
}

func TestEvaluate_ListsEveryShortfall(t *testing.T) {
	buckets := []domain.Bucket{
		{Name: "Split 2", Start: day(100), Requirement: 55},
		{Name: "Split 3", Start: day(200), Requirement: 15},
	}

	p := Evaluate([]int{60, 4}, buckets, 70)

	assert.False(t, p.Complete)
	assert.True(t, p.Buckets[0].Met)
	assert.False(t, p.Buckets[1].Met)
	assert.False(t, p.TotalMet)
	assert.Equal(t, "❌ Split 3: missing 11, Total: missing 6", p.Status)
}

func TestEvaluate_TotalAloneCanFail(t *testing.T) {
	buckets := []domain.Bucket{
		{Name: "Split 2", Start: day(100), Requirement: 10},
		{Name: "Split 3", Start: day(200), Requirement: 10},
	}

	p := Evaluate([]int{10, 10}, buckets, 30)

	assert.True(t, p.Buckets[0].Met)
	assert.True(t, p.Buckets[1].Met)
	assert.False(t, p.Complete)
	assert.Equal(t, "❌ Total: missing 10", p.Status)
}

func TestEvaluate_ZeroRequirementsAreMet(t *testing.T) {
	buckets := []domain.Bucket{{Name: "Off-season", Start: day(0)}}

	p := Evaluate(nil, buckets, 0)

	assert.True(t, p.Complete)
	assert.Equal(t, 0, p.Total)
	assert.Equal(t, StatusComplete, p.Status)
}

func TestEvaluate_SurplusNeverNegative(t *testing.T) {
	buckets := []domain.Bucket{
		{Name: "Split 2", Start: day(100), Requirement: 5},
		{Name: "Split 3", Start: day(200), Requirement: 50},
	}

	p := Evaluate([]int{80, 0}, buckets, 40)

	assert.True(t, p.TotalMet)
	assert.Equal(t, "❌ Split 3: missing 50", p.Status)
}
