// Package ranking implements the marketplace coach ranking score with
// calibration support for the coach search and discovery surfaces.
//
// Basic Usage:
//
//	// Load calibration (typically at startup)
//	weights, err := ranking.LoadCalibration("configs/ranking.calibration.json")
//	if err != nil {
//		log.Warn("using default weights", "error", err)
//	}
//
//	// Score and sort a candidate set against the searcher's location
//	ranked := ranking.Rank(searcher, candidates, weights)
//
//	// Decide whether the search scope should be relaxed
//	if ranking.ShouldExpandSearch(ranked) {
//		// caller re-queries at a coarser scope
//	}
//
// Components:
//
// Each coach is scored on three independent components, all normalized to
// [0, 100]: location proximity (MatchLocation + LocationScores), engagement
// (ScoreEngagement) and profile completeness (ScoreProfile). Aggregate
// combines them with the calibrated weights (default 50/30/20). Sponsored
// placement is carried as a flag on the score and never boosts the total,
// so the organic ranking signal stays auditable.
//
// Every function in this package is a pure computation over its inputs:
// no shared state, no I/O, safe to call from any number of goroutines.
// Malformed records degrade to floor scores instead of failing, so one bad
// coach row can never abort a ranking pass.
//
// Calibration:
//
// The calibration system allows deploy-time tuning of the top-level weights
// via a JSON file loaded at startup. See configs/ranking.calibration.json
// for the default configuration. A calibration whose weights do not sum to
// 1.0 is rejected and the defaults are kept.
package ranking
