package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atomicstack/grpm/internal/logging/events"
	"github.com/atomicstack/grpm/internal/release"
	"github.com/google/uuid"
)

// Client is the repository service consumed by the worker.
type Client interface {
	ListReleases(ctx context.Context, owner, repo string) ([]release.Release, error)
	GetAsset(ctx context.Context, owner, repo string, id int64) (release.Asset, error)
}

// Kind identifies the request variant.
type Kind int

const (
	KindListReleases Kind = iota
	KindAsset
)

func (k Kind) String() string {
	switch k {
	case KindListReleases:
		return "list-releases"
	case KindAsset:
		return "asset"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Request asks the worker for one upstream call.
type Request struct {
	ID      string
	Kind    Kind
	Owner   string
	Repo    string
	AssetID int64
}

// ListReleases builds a release listing request.
func ListReleases(owner, repo string) Request {
	return Request{ID: uuid.NewString(), Kind: KindListReleases, Owner: owner, Repo: repo}
}

// GetAsset builds an asset lookup request.
func GetAsset(owner, repo string, id int64) Request {
	return Request{ID: uuid.NewString(), Kind: KindAsset, Owner: owner, Repo: repo, AssetID: id}
}

// Result carries the outcome of a Request. Exactly one of the payload fields
// is meaningful for the request kind; Err is set on failure.
type Result struct {
	Request  Request
	Releases []release.Release
	Asset    release.Asset
	Err      error
	Elapsed  time.Duration
}

// FetchError wraps a failed repository call.
type FetchError struct {
	Kind  Kind
	Owner string
	Repo  string
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s %s/%s: %v", e.Kind, e.Owner, e.Repo, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// StaleError is returned by clients that still hand back a cached listing
// after the upstream call failed. The listing accompanies the error.
type StaleError struct {
	Age time.Duration
	Err error
}

func (e *StaleError) Error() string {
	return fmt.Sprintf("showing cached releases from %s ago: %v", e.Age.Round(time.Second), e.Err)
}

func (e *StaleError) Unwrap() error { return e.Err }

// IsStale reports whether err carries a stale listing.
func IsStale(err error) bool {
	var se *StaleError
	return errors.As(err, &se)
}

// ErrUnknownKind is returned for request kinds the worker cannot serve.
var ErrUnknownKind = errors.New("unknown request kind")

// Options tune the worker.
type Options struct {
	// Timeout bounds a single upstream call; zero disables the bound.
	Timeout time.Duration
	// MinInterval spaces consecutive upstream calls.
	MinInterval time.Duration
}

// Worker serves requests one at a time against a Client.
type Worker struct {
	client   Client
	requests <-chan Request
	results  chan<- Result
	opts     Options
	throttle *throttle
}

// NewWorker wires a worker to its channel endpoints. The worker owns results
// and closes it when Run returns.
func NewWorker(client Client, requests <-chan Request, results chan<- Result, opts Options) *Worker {
	return &Worker{
		client:   client,
		requests: requests,
		results:  results,
		opts:     opts,
		throttle: newThrottle(opts.MinInterval),
	}
}

// Run processes requests until ctx is cancelled or the request channel is
// closed. Upstream failures are reported as Results, never returned.
func (w *Worker) Run(ctx context.Context) error {
	defer close(w.results)
	for {
		select {
		case <-ctx.Done():
			return nil
		case req, ok := <-w.requests:
			if !ok {
				return nil
			}
			if err := w.throttle.wait(ctx); err != nil {
				return nil
			}
			res := w.serve(ctx, req)
			select {
			case <-ctx.Done():
				return nil
			case w.results <- res:
			}
		}
	}
}

func (w *Worker) serve(ctx context.Context, req Request) Result {
	callCtx := ctx
	if w.opts.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, w.opts.Timeout)
		defer cancel()
	}
	start := time.Now()
	res := Result{Request: req}
	var err error
	switch req.Kind {
	case KindListReleases:
		res.Releases, err = w.client.ListReleases(callCtx, req.Owner, req.Repo)
	case KindAsset:
		res.Asset, err = w.client.GetAsset(callCtx, req.Owner, req.Repo, req.AssetID)
	default:
		err = ErrUnknownKind
	}
	res.Elapsed = time.Since(start)
	if err != nil {
		if !IsStale(err) {
			res.Releases = nil
		}
		res.Err = &FetchError{Kind: req.Kind, Owner: req.Owner, Repo: req.Repo, Err: err}
		events.Fetch.Error(req.ID, req.Kind.String(), err)
		return res
	}
	events.Fetch.Done(req.ID, req.Kind.String(), len(res.Releases), res.Elapsed)
	return res
}
