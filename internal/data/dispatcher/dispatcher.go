package dispatcher

import (
	"github.com/atomicstack/grpm/internal/backend"
	"github.com/atomicstack/grpm/internal/logging/events"
)

// Batch holds the most recent pending result of each kind.
type Batch struct {
	Releases *backend.Result
	Asset    *backend.Result
	Received int
}

// Empty reports whether nothing was pending.
func (b Batch) Empty() bool {
	return b.Releases == nil && b.Asset == nil
}

// Drain consumes every result queued on results without blocking and keeps
// only the latest of each kind. closed is true once the channel has been
// closed by its producer.
func Drain(results <-chan backend.Result) (batch Batch, closed bool) {
	if results == nil {
		return batch, false
	}
	for {
		select {
		case res, ok := <-results:
			if !ok {
				trace(batch)
				return batch, true
			}
			batch.Received++
			r := res
			switch res.Request.Kind {
			case backend.KindListReleases:
				batch.Releases = &r
			case backend.KindAsset:
				batch.Asset = &r
			}
		default:
			trace(batch)
			return batch, false
		}
	}
}

func trace(b Batch) {
	if b.Received == 0 {
		return
	}
	kept := 0
	if b.Releases != nil {
		kept++
	}
	if b.Asset != nil {
		kept++
	}
	events.Fetch.Drain(b.Received, kept)
}
