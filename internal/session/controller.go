package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atomicstack/grpm/internal/backend"
	"github.com/atomicstack/grpm/internal/data/dispatcher"
	"github.com/atomicstack/grpm/internal/filter"
	"github.com/atomicstack/grpm/internal/input"
	"github.com/atomicstack/grpm/internal/logging/events"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
)

// ErrChannelClosed is returned when the event or result stream ends while the
// session is still running.
var ErrChannelClosed = errors.New("channel closed")

const defaultPageSize = 10

// Options configure a Controller.
type Options struct {
	Mode   filter.Mode
	Policy filter.RecompilePolicy
	Keys   KeyMap

	// Initial field values; empty values keep the placeholder.
	Owner          string
	Repo           string
	ReleasePattern string
	AssetPattern   string

	// FetchOnStart sends a release listing before the first event when both
	// owner and repo are set.
	FetchOnStart bool

	PageSize  int
	Clipboard func(string) error
}

// Controller runs the session event loop. All of its state is confined to
// the goroutine calling Run.
type Controller struct {
	state    State
	events   <-chan input.Event
	results  <-chan backend.Result
	requests chan<- backend.Request
	renderer Renderer

	keys      KeyMap
	policy    filter.RecompilePolicy
	pageSize  int
	clipboard func(string) error
	done      bool
}

// New builds a controller over the given channel endpoints.
func New(evs <-chan input.Event, results <-chan backend.Result, requests chan<- backend.Request, renderer Renderer, opts Options) *Controller {
	c := &Controller{
		state:     NewState(opts.Mode),
		events:    evs,
		results:   results,
		requests:  requests,
		renderer:  renderer,
		keys:      opts.Keys,
		policy:    opts.Policy,
		pageSize:  opts.PageSize,
		clipboard: opts.Clipboard,
	}
	if len(c.keys.Quit.Keys()) == 0 {
		c.keys = DefaultKeyMap()
	}
	if c.pageSize <= 0 {
		c.pageSize = defaultPageSize
	}
	if c.clipboard == nil {
		c.clipboard = clipboard.WriteAll
	}
	c.state.Fields.Set(FieldOwner, opts.Owner)
	c.state.Fields.Set(FieldRepo, opts.Repo)
	c.state.Fields.Set(FieldReleasePattern, opts.ReleasePattern)
	c.state.Fields.Set(FieldAssetPattern, opts.AssetPattern)
	for _, id := range []FieldID{FieldReleasePattern, FieldAssetPattern} {
		if err := c.state.pattern(id).Set(c.state.Fields.Get(id)); err != nil {
			events.Filter.Invalid(id.String(), c.state.Fields.Get(id), err)
		}
	}
	if opts.FetchOnStart && c.state.Fields.Value(FieldOwner) != "" {
		c.requestReleases()
	}
	return c
}

// State returns a copy of the current state.
func (c *Controller) State() State { return c.state }

// Done reports whether the quit key has been handled.
func (c *Controller) Done() bool { return c.done }

// Run renders, then blocks for the next event, until the user quits or ctx
// is cancelled.
func (c *Controller) Run(ctx context.Context) error {
	for {
		c.render()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-c.events:
			if !ok {
				return fmt.Errorf("input events: %w", ErrChannelClosed)
			}
			if err := c.Handle(ev); err != nil {
				return err
			}
			if c.done {
				events.Session.Quit()
				return nil
			}
		}
	}
}

func (c *Controller) render() {
	if c.renderer != nil {
		c.renderer.Render(c.state.Snapshot())
	}
}

// Handle applies one event to the state.
func (c *Controller) Handle(ev input.Event) error {
	switch ev.Type {
	case input.EventTick:
		return c.handleTick()
	case input.EventInput:
		c.handleKey(ev.Key)
	}
	return nil
}

func (c *Controller) handleTick() error {
	batch, closed := dispatcher.Drain(c.results)
	c.state.Fetching -= batch.Received
	if c.state.Fetching < 0 {
		c.state.Fetching = 0
	}
	if res := batch.Releases; res != nil {
		c.applyReleases(*res)
	}
	if res := batch.Asset; res != nil {
		c.applyAsset(*res)
	}
	if closed {
		c.results = nil
		return fmt.Errorf("fetch results: %w", ErrChannelClosed)
	}
	return nil
}

// applyReleases replaces the listing. Owner and repo follow the listing
// shown, so they only change when a fetch completes. A stale listing is
// shown together with its error.
func (c *Controller) applyReleases(res backend.Result) {
	stale := backend.IsStale(res.Err)
	if res.Err != nil && !stale {
		c.setError(res.Err)
		return
	}
	c.state.Owner, c.state.Repo = res.Request.Owner, res.Request.Repo
	c.state.SetReleases(res.Releases)
	c.state.Err = nil
	c.state.Status = fmt.Sprintf("%d releases in %s/%s", len(res.Releases), res.Request.Owner, res.Request.Repo)
	if stale {
		c.setError(res.Err)
	}
	events.Session.Releases(res.Request.Owner, res.Request.Repo, len(c.state.AllReleases), len(c.state.FilteredReleases))
}

func (c *Controller) applyAsset(res backend.Result) {
	if res.Request.Owner != c.state.Owner || res.Request.Repo != c.state.Repo {
		return
	}
	if res.Err != nil {
		c.setError(res.Err)
		return
	}
	asset := res.Asset
	c.state.Selected = &asset
	c.state.Err = nil
	c.state.Status = fmt.Sprintf("selected %s (%s, %s downloads)", asset.Name, humanize.Bytes(uint64(asset.Size)), humanize.Comma(asset.DownloadCount))
}

func (c *Controller) handleKey(k tea.Key) {
	events.Input.Key(k.String())
	switch {
	case key.Matches(k, c.keys.Quit):
		c.done = true
	case key.Matches(k, c.keys.Confirm):
		c.confirm()
	case key.Matches(k, c.keys.Backspace):
		c.backspace()
	case key.Matches(k, c.keys.Clear):
		c.clearField()
	case key.Matches(k, c.keys.Left):
		c.focus(c.state.Focus.Left())
	case key.Matches(k, c.keys.Right):
		c.focus(c.state.Focus.Right())
	case key.Matches(k, c.keys.Up):
		c.focus(c.state.Focus.Up())
	case key.Matches(k, c.keys.Down):
		c.focus(c.state.Focus.Down())
	case key.Matches(k, c.keys.NextRow):
		c.moveRow(func(cur *Cursor, n int) bool { return cur.Move(1, n) })
	case key.Matches(k, c.keys.PrevRow):
		c.moveRow(func(cur *Cursor, n int) bool { return cur.Move(-1, n) })
	case key.Matches(k, c.keys.PageDown):
		c.moveRow(func(cur *Cursor, n int) bool { return cur.PageDown(c.pageSize, n) })
	case key.Matches(k, c.keys.PageUp):
		c.moveRow(func(cur *Cursor, n int) bool { return cur.PageUp(c.pageSize, n) })
	case key.Matches(k, c.keys.First):
		c.moveRow(func(cur *Cursor, _ int) bool { return cur.Home() })
	case key.Matches(k, c.keys.Last):
		c.moveRow(func(cur *Cursor, n int) bool { return cur.End(n) })
	case key.Matches(k, c.keys.TogglePane):
		c.state.Pane = c.state.Pane.Toggle()
		events.Session.Pane(c.state.Pane.String())
	case key.Matches(k, c.keys.Select):
		c.selectAsset()
	case key.Matches(k, c.keys.Copy):
		c.copyLink()
	case key.Matches(k, c.keys.Dismiss):
		c.state.Status = ""
		c.state.Err = nil
	case (k.Type == tea.KeyRunes || k.Type == tea.KeySpace) && !k.Alt:
		c.insert(k.Runes)
	}
}

func (c *Controller) focus(id FieldID) {
	if id == c.state.Focus {
		return
	}
	c.state.Focus = id
	events.Session.Focus(id.String())
}

func (c *Controller) insert(runes []rune) {
	if len(runes) == 0 {
		return
	}
	id := c.state.Focus
	buf := c.state.Fields.Value(id)
	c.state.Fields.Set(id, buf+string(runes))
	c.edited(id)
}

func (c *Controller) backspace() {
	id := c.state.Focus
	buf := []rune(c.state.Fields.Value(id))
	if len(buf) == 0 {
		return
	}
	c.state.Fields.Set(id, string(buf[:len(buf)-1]))
	c.edited(id)
}

func (c *Controller) clearField() {
	id := c.state.Focus
	if c.state.Fields.Value(id) == "" {
		return
	}
	c.state.Fields.Set(id, "")
	events.Filter.Cleared(id.String())
	c.edited(id)
}

func (c *Controller) edited(id FieldID) {
	if id.IsPattern() && c.policy.OnEdit() {
		c.applyPattern(id)
	}
}

func (c *Controller) confirm() {
	id := c.state.Focus
	if id.IsPattern() {
		c.applyPattern(id)
		return
	}
	c.requestReleases()
}

// applyPattern recompiles the pattern of id. A compile failure leaves the
// filtered lists as they were.
func (c *Controller) applyPattern(id FieldID) {
	p := c.state.pattern(id)
	raw := c.state.Fields.Get(id)
	if err := p.Set(raw); err != nil {
		events.Filter.Invalid(id.String(), raw, err)
		return
	}
	switch id {
	case FieldReleasePattern:
		c.state.Releases = Cursor{}
		c.state.Assets = Cursor{}
		c.state.refilterReleases()
		events.Filter.Apply(id.String(), raw, len(c.state.FilteredReleases))
	case FieldAssetPattern:
		c.state.Assets = Cursor{}
		c.state.refilterAssets()
		events.Filter.Apply(id.String(), raw, len(c.state.FilteredAssets))
	}
}

func (c *Controller) requestReleases() {
	owner := strings.TrimSpace(c.state.Fields.Value(FieldOwner))
	repo := strings.TrimSpace(c.state.Fields.Value(FieldRepo))
	if o, r, ok := strings.Cut(owner, "/"); ok && repo == "" {
		owner, repo = o, r
		c.state.Fields.Set(FieldOwner, owner)
		c.state.Fields.Set(FieldRepo, repo)
	}
	if owner == "" || repo == "" {
		c.state.Status = "owner and repo are required"
		return
	}
	req := backend.ListReleases(owner, repo)
	if !c.send(req) {
		return
	}
	c.state.Status = fmt.Sprintf("fetching %s/%s", owner, repo)
}

func (c *Controller) selectAsset() {
	rel, okRel := c.state.CurrentRelease()
	asset, ok := c.state.CurrentAsset()
	if !okRel || !ok {
		c.state.Status = "no asset highlighted"
		return
	}
	c.state.Selected = &asset
	events.Session.Select(rel.Tag, asset.Name)
	if c.state.Owner == "" {
		return
	}
	if c.send(backend.GetAsset(c.state.Owner, c.state.Repo, asset.ID)) {
		c.state.Status = fmt.Sprintf("resolving %s", asset.Name)
	}
}

// send queues req without blocking. A full queue is reported as busy.
func (c *Controller) send(req backend.Request) bool {
	if c.requests == nil {
		c.state.Status = "fetching unavailable"
		return false
	}
	select {
	case c.requests <- req:
		c.state.Fetching++
		events.Fetch.Queue(req.ID, req.Kind.String(), req.Owner, req.Repo)
		return true
	default:
		c.state.Status = "busy: a fetch is already queued"
		events.Fetch.Busy(req.Kind.String(), req.Owner, req.Repo)
		return false
	}
}

func (c *Controller) copyLink() {
	var link string
	if c.state.Pane == PaneAssets {
		if asset, ok := c.state.CurrentAsset(); ok {
			link = asset.DownloadURL
		}
	} else if rel, ok := c.state.CurrentRelease(); ok {
		link = rel.HTMLURL
	}
	if link == "" {
		c.state.Status = "nothing to copy"
		return
	}
	if err := c.clipboard(link); err != nil {
		c.setError(fmt.Errorf("copy link: %w", err))
		return
	}
	c.state.Err = nil
	c.state.Status = "copied " + link
}

func (c *Controller) moveRow(move func(*Cursor, int) bool) {
	if c.state.Pane == PaneAssets {
		if move(&c.state.Assets, len(c.state.FilteredAssets)) {
			events.Session.Cursor(PaneAssets.String(), c.state.Assets.Index)
		}
		return
	}
	if move(&c.state.Releases, len(c.state.FilteredReleases)) {
		c.state.Assets = Cursor{}
		c.state.refilterAssets()
		events.Session.Cursor(PaneReleases.String(), c.state.Releases.Index)
	}
}

func (c *Controller) setError(err error) {
	c.state.Err = err
	c.state.Status = ""
}
