package events

import (
	"time"

	"github.com/atomicstack/grpm/internal/logging"
)

type FetchTracer struct{}

type CacheTracer struct{}

var (
	Fetch = FetchTracer{}
	Cache = CacheTracer{}
)

func (FetchTracer) Queue(id, kind, owner, repo string) {
	logging.Trace("fetch.queue", map[string]interface{}{"id": id, "kind": kind, "owner": owner, "repo": repo})
}

func (FetchTracer) Busy(kind, owner, repo string) {
	logging.Trace("fetch.busy", map[string]interface{}{"kind": kind, "owner": owner, "repo": repo})
}

func (FetchTracer) Done(id, kind string, count int, elapsed time.Duration) {
	logging.Trace("fetch.done", map[string]interface{}{"id": id, "kind": kind, "count": count, "elapsed": elapsed.String()})
}

func (FetchTracer) Error(id, kind string, err error) {
	if err == nil {
		return
	}
	logging.Trace("fetch.error", map[string]interface{}{"id": id, "kind": kind, "error": err.Error()})
}

func (FetchTracer) Retry(url string, attempt int, err error) {
	logging.Trace("fetch.retry", map[string]interface{}{"url": url, "attempt": attempt, "error": err.Error()})
}

func (FetchTracer) Drain(received, kept int) {
	logging.Trace("fetch.drain", map[string]interface{}{"received": received, "kept": kept})
}

func (CacheTracer) Hit(owner, repo string, age time.Duration) {
	logging.Trace("cache.hit", map[string]interface{}{"owner": owner, "repo": repo, "age": age.String()})
}

func (CacheTracer) Stale(owner, repo string, err error) {
	logging.Trace("cache.stale", map[string]interface{}{"owner": owner, "repo": repo, "error": err.Error()})
}

func (CacheTracer) Store(owner, repo string, count int) {
	logging.Trace("cache.store", map[string]interface{}{"owner": owner, "repo": repo, "count": count})
}
