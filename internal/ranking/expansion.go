package ranking

// MinResultsBeforeExpansion is the result-set size below which a search
// should be retried with a relaxed location filter.
const MinResultsBeforeExpansion = 5

// ShouldExpandSearch reports whether the ranked result set is too small and
// the search scope should be relaxed (e.g. city to region). It is a pure
// predicate; the re-query with a broader filter is the calling search
// service's responsibility.
func ShouldExpandSearch[T any](ranked []RankedCoach[T]) bool {
	return len(ranked) < MinResultsBeforeExpansion
}
