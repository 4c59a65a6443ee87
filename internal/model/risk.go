package model

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

type RiskProfile struct {
	ConcentrationRisk  float64
	ConcentrationAsset string // empty when there are no holdings
	CorrelationRisk    float64
	CryptoPct          float64
	StockPct           float64
	VolatilityScore    int
	RiskLevel          RiskLevel
}

type HealthProfile struct {
	OverallScore    int
	Diversification int
	Performance     int
	RiskManagement  int
	Activity        int
	RiskLevel       RiskLevel
	Suggestions     []string
}
