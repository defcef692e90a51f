package avatar

import (
	"context"
	"testing"

	"github.com/dorsu/alumnitracer/internal/app/models"
)

type fakeProber struct {
	alive  map[string]bool
	probed []string
}

func (f *fakeProber) Probe(ctx context.Context, url string) bool {
	f.probed = append(f.probed, url)
	return f.alive[url]
}

func TestResolvePicksFirstWorkingCandidate(t *testing.T) {
	prober := &fakeProber{alive: map[string]bool{"http://h/b.png": true, "http://h/c.png": true}}
	r := NewResolver("http://h", prober)

	url, ok := r.Resolve(context.Background(), models.Profile{
		ID:              5,
		ImageCandidates: []string{"http://h/a.png", "http://h/b.png", "http://h/c.png"},
	})
	if !ok || url != "http://h/b.png" {
		t.Fatalf("got %q ok=%v", url, ok)
	}
	// c.png must not be probed once b.png succeeded.
	if len(prober.probed) != 2 {
		t.Fatalf("probed %v", prober.probed)
	}
}

func TestResolveSynthesizesProbeURLWithoutCandidates(t *testing.T) {
	prober := &fakeProber{alive: map[string]bool{"http://h/api/alumni/5/image": true}}
	r := NewResolver("http://h", prober)

	url, ok := r.Resolve(context.Background(), models.Profile{ID: 5})
	if !ok || url != "http://h/api/alumni/5/image" {
		t.Fatalf("got %q ok=%v", url, ok)
	}
}

func TestResolveAllProbesFailedStillReturnsFirst(t *testing.T) {
	prober := &fakeProber{}
	r := NewResolver("http://h", prober)

	url, ok := r.Resolve(context.Background(), models.Profile{
		ID:              5,
		ImageCandidates: []string{"http://h/a.png", "http://h/b.png"},
	})
	if !ok || url != "http://h/a.png" {
		t.Fatalf("got %q ok=%v", url, ok)
	}
	if len(prober.probed) != 2 {
		t.Fatalf("probed %v", prober.probed)
	}
}

func TestResolveNothingToTry(t *testing.T) {
	r := NewResolver("http://h", &fakeProber{})
	if url, ok := r.Resolve(context.Background(), models.Profile{}); ok || url != "" {
		t.Fatalf("got %q ok=%v", url, ok)
	}
}

func TestResolveStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	prober := &fakeProber{alive: map[string]bool{"http://h/a.png": true}}
	r := NewResolver("http://h", prober)

	if _, ok := r.Resolve(ctx, models.Profile{ImageCandidates: []string{"http://h/a.png"}}); ok {
		t.Fatal("cancelled resolve must not report a result")
	}
	if len(prober.probed) != 0 {
		t.Fatalf("probed %v after cancel", prober.probed)
	}
}
