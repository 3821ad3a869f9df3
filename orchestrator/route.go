package orchestrator

import "time"

// SelectRoute sends recordings shorter than threshold through a single
// recognition call and everything else through the chunked path.
func SelectRoute(total, threshold time.Duration) Route {
	if total < threshold {
		return RouteShort
	}
	return RouteChunked
}
