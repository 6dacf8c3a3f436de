package domain

// StrategyArtifact represents one generated trading strategy: its source code
// plus the backtest metrics recorded for it by the upstream engine.
// Corresponds to strategy_artifacts table in PostgreSQL.
type StrategyArtifact struct {
	Index            int    // stable identity assigned by the store; not necessarily contiguous
	SourceText       string // generated strategy code
	Generation       int    // generation number the artifact was produced in
	ValidationPassed bool   // whether the artifact passed out-of-sample validation
	CreatedAt        int64  // record creation timestamp (ms)

	// Metrics recorded by the backtest engine, joined by Index.
	// Nil if no backtest has been recorded for this artifact.
	Metrics *BacktestMetrics
}

// BacktestMetrics holds the recorded performance of one strategy artifact.
// Corresponds to backtest_metrics table in ClickHouse.
// Absent fields are nil and trigger the documented analysis fallbacks.
type BacktestMetrics struct {
	ArtifactIndex int
	SharpeRatio   *float64
	MaxDrawdown   *float64 // negative by convention; analysis uses magnitude
	AnnualReturn  *float64
	TotalTrades   int
}

// Sharpe returns the Sharpe ratio and whether it is present.
func (m *BacktestMetrics) Sharpe() (float64, bool) {
	if m == nil || m.SharpeRatio == nil {
		return 0, false
	}
	return *m.SharpeRatio, true
}

// DrawdownMagnitude returns |MaxDrawdown| and whether it is present.
func (m *BacktestMetrics) DrawdownMagnitude() (float64, bool) {
	if m == nil || m.MaxDrawdown == nil {
		return 0, false
	}
	dd := *m.MaxDrawdown
	if dd < 0 {
		dd = -dd
	}
	return dd, true
}
