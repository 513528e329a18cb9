package domain

// ProgressFunc reports progress of a long-running pass.
// Called once per processed item: (1, 40), (2, 40), ...
type ProgressFunc func(loaded, total int)

// RefreshResult summarizes what happened during a refresh of all list links.
type RefreshResult struct {
	Total   int // linked entries visited
	Present int // resolved to a live record
	Dead    int // confirmed dead
	Failed  int // loader failures (retryable)
}
