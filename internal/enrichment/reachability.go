package enrichment

import (
	"context"
	"net/http"
	"time"
)

var reachabilityClient = &http.Client{Timeout: 5 * time.Second}

// URLReachable is a best-effort HEAD probe. Any failure or non-2xx status
// returns false and never an error: reachability informs optional display
// logic, not ingestion eligibility.
func URLReachable(ctx context.Context, rawURL string) bool {
	if rawURL == "" {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return false
	}

	resp, err := reachabilityClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
