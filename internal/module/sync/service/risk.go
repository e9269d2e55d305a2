package service

// RiskDetails are the eight scored dimensions of the strategy risk
// framework. Absent dimensions score zero.
type RiskDetails struct {
	TVLImpact           float64 `json:"TVLImpact"`
	AuditScore          float64 `json:"auditScore"`
	CodeReviewScore     float64 `json:"codeReviewScore"`
	ComplexityScore     float64 `json:"complexityScore"`
	LongevityImpact     float64 `json:"longevityImpact"`
	ProtocolSafetyScore float64 `json:"protocolSafetyScore"`
	TeamKnowledgeScore  float64 `json:"teamKnowledgeScore"`
	TestingScore        float64 `json:"testingScore"`
}

// RiskScore is the composite score of a strategy. Sum zero means no scoring
// was performed; 40 and above is out of the expected range. Both invalid.
type RiskScore struct {
	Sum     float64 `json:"sum"`
	IsValid bool    `json:"isValid"`
}

const riskScoreUpperBound = 40

// EvaluateRiskScore sums the eight risk dimensions and applies the fixed
// validity band.
func EvaluateRiskScore(details *RiskDetails) RiskScore {
	if details == nil {
		return RiskScore{}
	}
	sum := details.TVLImpact +
		details.AuditScore +
		details.CodeReviewScore +
		details.ComplexityScore +
		details.LongevityImpact +
		details.ProtocolSafetyScore +
		details.TeamKnowledgeScore +
		details.TestingScore
	return RiskScore{
		Sum:     sum,
		IsValid: sum > 0 && sum < riskScoreUpperBound,
	}
}

const riskGroupSentinel = "Others"

// HasValidRiskGroup reports whether a strategy has been categorized at all.
// This is the coarse signal, distinct from the numeric risk score.
func HasValidRiskGroup(riskGroup string) bool {
	return riskGroup != "" && riskGroup != riskGroupSentinel
}
