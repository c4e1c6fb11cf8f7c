package events

import "github.com/atomicstack/grpm/internal/logging"

type SessionTracer struct{}

type FilterTracer struct{}

type InputTracer struct{}

var (
	Session = SessionTracer{}
	Filter  = FilterTracer{}
	Input   = InputTracer{}
)

func (SessionTracer) Focus(field string) {
	logging.Trace("session.focus", map[string]interface{}{"field": field})
}

func (SessionTracer) Pane(pane string) {
	logging.Trace("session.pane", map[string]interface{}{"pane": pane})
}

func (SessionTracer) Cursor(pane string, cursor int) {
	logging.Trace("session.cursor", map[string]interface{}{"pane": pane, "cursor": cursor})
}

func (SessionTracer) Releases(owner, repo string, total, shown int) {
	logging.Trace("session.releases", map[string]interface{}{"owner": owner, "repo": repo, "total": total, "shown": shown})
}

func (SessionTracer) Select(tag, asset string) {
	logging.Trace("session.select", map[string]interface{}{"release": tag, "asset": asset})
}

func (SessionTracer) Quit() {
	logging.Trace("session.quit", nil)
}

func (FilterTracer) Apply(field, pattern string, matched int) {
	logging.Trace("filter.apply", map[string]interface{}{"field": field, "pattern": pattern, "matched": matched})
}

func (FilterTracer) Invalid(field, pattern string, err error) {
	logging.Trace("filter.invalid", map[string]interface{}{"field": field, "pattern": pattern, "error": err.Error()})
}

func (FilterTracer) Cleared(field string) {
	logging.Trace("filter.clear", map[string]interface{}{"field": field})
}

func (InputTracer) Key(key string) {
	logging.Trace("input.key", map[string]interface{}{"key": key})
}

func (InputTracer) Error(err error) {
	if err == nil {
		return
	}
	logging.Trace("input.error", map[string]interface{}{"error": err.Error()})
}
