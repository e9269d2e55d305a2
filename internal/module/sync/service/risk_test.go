package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yearn/ySync/internal/module/sync/service"
)

func TestEvaluateRiskScore(t *testing.T) {
	score := service.EvaluateRiskScore(&service.RiskDetails{
		TVLImpact:           1,
		AuditScore:          2,
		CodeReviewScore:     2,
		ComplexityScore:     3,
		LongevityImpact:     1,
		ProtocolSafetyScore: 2,
		TeamKnowledgeScore:  2,
		TestingScore:        2,
	})
	assert.Equal(t, 15.0, score.Sum)
	assert.True(t, score.IsValid)
}

func TestEvaluateRiskScoreZeroSum(t *testing.T) {
	// all dimensions zero means no scoring was performed
	score := service.EvaluateRiskScore(&service.RiskDetails{})
	assert.Equal(t, 0.0, score.Sum)
	assert.False(t, score.IsValid)
}

func TestEvaluateRiskScoreUpperBound(t *testing.T) {
	details := &service.RiskDetails{TVLImpact: 39.5, AuditScore: 0.5}
	assert.False(t, service.EvaluateRiskScore(details).IsValid)

	details = &service.RiskDetails{TVLImpact: 50}
	assert.False(t, service.EvaluateRiskScore(details).IsValid)

	details = &service.RiskDetails{TVLImpact: 39.9}
	assert.True(t, service.EvaluateRiskScore(details).IsValid)
}

func TestEvaluateRiskScoreNilDetails(t *testing.T) {
	score := service.EvaluateRiskScore(nil)
	assert.Equal(t, 0.0, score.Sum)
	assert.False(t, score.IsValid)
}

func TestHasValidRiskGroup(t *testing.T) {
	assert.True(t, service.HasValidRiskGroup("Curve"))
	assert.False(t, service.HasValidRiskGroup(""))
	assert.False(t, service.HasValidRiskGroup("Others"))
}
