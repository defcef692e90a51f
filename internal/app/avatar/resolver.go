package avatar

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dorsu/alumnitracer/internal/app/models"
	"github.com/dorsu/alumnitracer/internal/pkg/logger"
)

// Prober tests whether an image URL actually loads. Probe failures are a
// hint, not proof: some environments fail probes for URLs that load fine
// elsewhere, so the resolver never treats an all-fail outcome as
// "no avatar".
type Prober interface {
	Probe(ctx context.Context, url string) bool
}

// HTTPProber probes by issuing a GET and accepting any 2xx response.
type HTTPProber struct {
	client *http.Client
}

// NewHTTPProber creates a prober with its own short-timeout client.
func NewHTTPProber(timeout time.Duration) *HTTPProber {
	return &HTTPProber{client: &http.Client{Timeout: timeout}}
}

// Probe implements Prober.
func (p *HTTPProber) Probe(ctx context.Context, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode <= 299
}

// Resolver selects a displayable avatar URL for a profile. Candidates are
// probed sequentially in priority order so the highest-priority working
// URL wins deterministically; concurrent probes would reintroduce the
// last-writer-wins race the sequential walk exists to avoid.
type Resolver struct {
	apiBase string
	prober  Prober
	log     zerolog.Logger
}

// NewResolver creates a resolver against the given API base.
func NewResolver(apiBase string, prober Prober) *Resolver {
	return &Resolver{
		apiBase: apiBase,
		prober:  prober,
		log:     logger.Component("avatar"),
	}
}

// Resolve returns the chosen avatar URL and whether one exists. The
// candidate list comes pre-normalized from profile decoding; when the
// profile has no image-like field at all, a probe URL is synthesized from
// the account id. When every probe fails the first candidate is still
// returned, leaving the consumer one more chance. Resolve never fails.
func (r *Resolver) Resolve(ctx context.Context, p models.Profile) (string, bool) {
	candidates := append([]string{}, p.ImageCandidates...)
	if len(candidates) == 0 && p.ID != 0 {
		candidates = append(candidates, fmt.Sprintf("%s/api/alumni/%d/image", r.apiBase, p.ID))
	}
	if len(candidates) == 0 {
		return "", false
	}

	for _, url := range candidates {
		if ctx.Err() != nil {
			return "", false
		}
		if r.prober.Probe(ctx, url) {
			return url, true
		}
		r.log.Debug().Str("url", url).Msg("Avatar candidate failed probe")
	}

	// All probes failed; fall back to the top-priority candidate anyway.
	return candidates[0], true
}
