package ui

import (
	"fmt"
	"strings"

	"github.com/atomicstack/grpm/internal/filter"
	"github.com/atomicstack/grpm/internal/format/table"
	"github.com/atomicstack/grpm/internal/release"
	"github.com/atomicstack/grpm/internal/session"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
)

const (
	// header + two field rows + buttons + status + footer
	fixedRows     = 6
	minPaneHeight = 5
	minDescHeight = 3
	// pane border plus title and column header rows
	paneChrome = 4
)

type styledLine struct {
	text          string
	style         *lipgloss.Style
	prefixStyle   *lipgloss.Style
	highlightFrom int
	raw           bool // text contains ANSI escapes; skip style wrapping, use ANSI-aware truncation
}

func (m *Model) layout() {
	desc := m.descHeight
	pane := m.height - fixedRows - desc
	if pane < minPaneHeight {
		pane = minPaneHeight
		desc = m.height - fixedRows - pane
		if desc < minDescHeight {
			desc = minDescHeight
		}
	}
	m.paneHeight = pane
	m.descBox = desc
	m.desc.Width = m.width - 2
	m.desc.Height = desc - 2
}

func (m *Model) visibleRows() int {
	rows := m.paneHeight - paneChrome
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (m *Model) syncScroll() {
	visible := m.visibleRows()
	m.offsets[session.PaneReleases] = ensureVisible(m.snap.ReleaseIndex, m.offsets[session.PaneReleases], len(m.snap.Releases), visible)
	m.offsets[session.PaneAssets] = ensureVisible(m.snap.AssetIndex, m.offsets[session.PaneAssets], len(m.snap.Assets), visible)
}

// ensureVisible returns the scroll offset that keeps cursor on screen.
func ensureVisible(cursor, offset, total, visible int) int {
	if total == 0 || visible <= 0 {
		return 0
	}
	maxOffset := total - visible
	if maxOffset < 0 {
		maxOffset = 0
	}
	if offset > maxOffset {
		offset = maxOffset
	}
	if offset < 0 {
		offset = 0
	}
	if cursor < offset {
		offset = cursor
	}
	if upper := offset + visible - 1; cursor > upper {
		offset = cursor - visible + 1
	}
	if offset > maxOffset {
		offset = maxOffset
	}
	return offset
}

// View implements tea.Model.
func (m *Model) View() string {
	leftW := m.width / 2
	rightW := m.width - leftW
	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		m.assetsPane(leftW),
		m.releasesPane(rightW),
	)
	return lipgloss.JoinVertical(lipgloss.Left,
		renderLines(applyWidth([]styledLine{m.headerLine()}, m.width)),
		m.fieldRow(session.FieldOwner, session.FieldRepo),
		m.fieldRow(session.FieldReleasePattern, session.FieldAssetPattern),
		panes,
		m.buttonRow(),
		m.descriptionBox(),
		renderLines(applyWidth([]styledLine{m.statusLine()}, m.width)),
		m.footer(),
	)
}

func (m *Model) headerLine() styledLine {
	text := "grpm"
	if m.snap.Owner != "" {
		text += fmt.Sprintf("  %s/%s", m.snap.Owner, m.snap.Repo)
	}
	if m.snap.Total > 0 {
		text += fmt.Sprintf("  %d/%d releases", len(m.snap.Releases), m.snap.Total)
	}
	return styledLine{text: text, style: styles.Header}
}

func (m *Model) fieldRow(left, right session.FieldID) string {
	leftW := m.width / 2
	return m.fieldCell(left, leftW) + m.fieldCell(right, m.width-leftW)
}

func (m *Model) fieldCell(id session.FieldID, width int) string {
	label := id.String() + ": "
	raw := m.snap.Fields.Get(id)
	focused := m.snap.Focus == id
	avail := width - lipgloss.Width(label) - 2
	if avail < 1 {
		avail = 1
	}
	text := truncate.StringWithTail(raw, uint(avail), "…")

	style := styles.Field
	switch {
	case m.fieldErr(id) != nil:
		style = styles.FieldInvalid
	case raw == filter.Placeholder:
		style = styles.FieldPlaceholder
	case focused:
		style = styles.FieldFocused
	}
	value := text
	if style != nil {
		value = style.Render(text)
	}
	if focused {
		value += m.caret.View()
	}
	cell := label
	if styles.Label != nil {
		cell = styles.Label.Render(label)
	}
	return lipgloss.NewStyle().Width(width).MaxWidth(width).Render(cell + value)
}

func (m *Model) fieldErr(id session.FieldID) error {
	switch id {
	case session.FieldReleasePattern:
		return m.snap.ReleasePatternErr
	case session.FieldAssetPattern:
		return m.snap.AssetPatternErr
	}
	return nil
}

func (m *Model) releasesPane(width int) string {
	inner := width - 2
	title := fmt.Sprintf("Releases %d/%d", len(m.snap.Releases), m.snap.Total)
	rows := [][]string{{"name", "tag", "published", ""}}
	for _, r := range m.snap.Releases {
		rows = append(rows, []string{r.DisplayName(), r.Tag, published(r), flags(r)})
	}
	var empty string
	switch {
	case m.snap.Total == 0:
		empty = "(no releases)"
	case len(m.snap.Releases) == 0:
		empty = fmt.Sprintf("No matches for %q", m.snap.Fields.Get(session.FieldReleasePattern))
	}
	cols := []table.Column{{Max: inner / 3}, {Max: inner / 4}, {}, {}}
	return m.paneBox(session.PaneReleases, title, table.Format(rows, cols), empty, m.snap.ReleaseIndex, width)
}

func (m *Model) assetsPane(width int) string {
	inner := width - 2
	title := fmt.Sprintf("Assets %d", len(m.snap.Assets))
	if rel, ok := m.snap.CurrentRelease(); ok {
		title += " · " + rel.Tag
	}
	rows := [][]string{{"name", "size", "downloads"}}
	for _, a := range m.snap.Assets {
		rows = append(rows, []string{a.Name, humanize.Bytes(uint64(a.Size)), humanize.Comma(a.DownloadCount)})
	}
	var empty string
	if len(m.snap.Assets) == 0 {
		empty = "(no assets)"
		if _, ok := m.snap.CurrentRelease(); ok && m.snap.Fields.Value(session.FieldAssetPattern) != "" {
			empty = fmt.Sprintf("No matches for %q", m.snap.Fields.Get(session.FieldAssetPattern))
		}
	}
	cols := []table.Column{{Max: inner / 2}, {Align: table.AlignRight}, {Align: table.AlignRight}}
	return m.paneBox(session.PaneAssets, title, table.Format(rows, cols), empty, m.snap.AssetIndex, width)
}

// paneBox draws a bordered list. formatted[0] is the column header.
func (m *Model) paneBox(pane session.Pane, title string, formatted []string, empty string, cursor, width int) string {
	inner := width - 2
	active := m.snap.Pane == pane
	lines := make([]styledLine, 0, m.paneHeight)
	lines = append(lines, styledLine{text: title, style: styles.PaneTitle})
	lines = append(lines, styledLine{text: "  " + formatted[0], style: styles.ColumnHeader})
	if empty != "" {
		lines = append(lines, styledLine{text: empty, style: styles.Info})
	} else {
		items := formatted[1:]
		start := m.offsets[pane]
		end := start + m.visibleRows()
		if end > len(items) {
			end = len(items)
		}
		for idx := start; idx < end; idx++ {
			lines = append(lines, buildItemLine(items[idx], idx == cursor, active, inner))
		}
	}
	for len(lines) < m.paneHeight-2 {
		lines = append(lines, styledLine{})
	}
	box := styles.Pane
	if active {
		box = styles.PaneActive
	}
	return box.Copy().Width(inner).Render(renderLines(applyWidth(lines, inner)))
}

func buildItemLine(label string, selected, active bool, width int) styledLine {
	indicator := "▌"
	lineStyle := styles.Item
	indicatorStyle := styles.ItemIndicator
	if selected {
		indicatorStyle = styles.SelectedItemIndicator
		if active {
			lineStyle = styles.SelectedItem
		}
	}
	fullText := indicator + " " + label
	if width > 0 {
		if pad := width - lipgloss.Width(fullText); pad > 0 {
			fullText += strings.Repeat(" ", pad)
		}
	}
	return styledLine{
		text:          fullText,
		style:         lineStyle,
		prefixStyle:   indicatorStyle,
		highlightFrom: 1, // just the ▌ character
	}
}

func published(r release.Release) string {
	if r.PublishedAt.IsZero() {
		return "-"
	}
	return humanize.Time(r.PublishedAt)
}

func flags(r release.Release) string {
	switch {
	case r.Draft:
		return "draft"
	case r.Prerelease:
		return "pre"
	}
	return ""
}

func (m *Model) buttonRow() string {
	_, hasAsset := m.snap.CurrentAsset()
	_, hasRelease := m.snap.CurrentRelease()
	selectBtn, linkBtn := styles.Button, styles.Button
	if hasAsset {
		selectBtn = styles.ButtonActive
	}
	if hasAsset || hasRelease {
		linkBtn = styles.ButtonActive
	}
	row := selectBtn.Render("Select ctrl+s") + " " + linkBtn.Render("Link ctrl+y")
	if sel := m.snap.Selected; sel != nil {
		row += "  target: " + sel.Name
	}
	return lipgloss.NewStyle().MaxWidth(m.width).Render(row)
}

func (m *Model) descriptionBox() string {
	content := m.desc.View()
	return styles.Pane.Copy().Width(m.width - 2).Height(m.descBox - 2).MaxHeight(m.descBox).Render(content)
}

// syncDescription refreshes the viewport when the described item changes.
func (m *Model) syncDescription() {
	key, content := m.description()
	if key == m.descKey {
		return
	}
	m.descKey = key
	m.desc.SetContent(content)
	m.desc.GotoTop()
}

func (m *Model) description() (string, string) {
	width := m.width - 2
	if m.snap.Pane == session.PaneAssets {
		if a, ok := m.snap.CurrentAsset(); ok {
			return fmt.Sprintf("asset:%d:%d", a.ID, width), assetDescription(a)
		}
	}
	rel, ok := m.snap.CurrentRelease()
	if !ok {
		return "none", "(nothing selected)"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\n", rel.DisplayName(), rel.Tag)
	if rel.HTMLURL != "" {
		b.WriteString(rel.HTMLURL + "\n")
	}
	if rel.Body != "" {
		b.WriteString("\n")
		b.WriteString(m.renderMarkdown(rel.Body, width))
	}
	return fmt.Sprintf("release:%s:%d", rel.Tag, width), b.String()
}

func assetDescription(a release.Asset) string {
	var b strings.Builder
	b.WriteString(a.Name + "\n")
	if a.Label != "" {
		b.WriteString(a.Label + "\n")
	}
	fmt.Fprintf(&b, "\nDownload URL: %s\n", a.DownloadURL)
	fmt.Fprintf(&b, "Size: %s\n", humanize.Bytes(uint64(a.Size)))
	if a.ContentType != "" {
		fmt.Fprintf(&b, "Type: %s\n", a.ContentType)
	}
	fmt.Fprintf(&b, "Downloads: %s\n", humanize.Comma(a.DownloadCount))
	return b.String()
}

func (m *Model) renderMarkdown(body string, width int) string {
	if width < 10 {
		width = 10
	}
	if m.markdown == nil || m.markdownWidth != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(m.markdownStyle),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			m.markdown = nil
			return wordwrap.String(body, width)
		}
		m.markdown, m.markdownWidth = r, width
	}
	out, err := m.markdown.Render(body)
	if err != nil {
		return wordwrap.String(body, width)
	}
	return strings.TrimRight(out, "\n")
}

func (m *Model) statusLine() styledLine {
	prefix := ""
	if m.snap.Fetching {
		prefix = m.spinner.View() + " "
	}
	if m.snap.Err != nil {
		return styledLine{text: prefix + "Error: " + m.snap.Err.Error(), style: styles.Error}
	}
	if err := m.fieldErr(m.snap.Focus); err != nil {
		return styledLine{text: prefix + err.Error(), style: styles.Error}
	}
	return styledLine{text: prefix + m.snap.Status, style: styles.Info}
}

func (m *Model) footer() string {
	m.help.Width = m.width
	return m.help.View(m.keys)
}

func applyWidth(lines []styledLine, width int) []styledLine {
	if width <= 0 {
		return lines
	}
	result := make([]styledLine, len(lines))
	for i, line := range lines {
		text := line.text
		if line.raw || lipgloss.Width(text) != len([]rune(text)) {
			if lipgloss.Width(text) > width {
				text = truncate.StringWithTail(text, uint(width-1), "…")
			}
		} else {
			text = truncateText(text, width)
		}
		result[i] = styledLine{
			text:          text,
			style:         line.style,
			prefixStyle:   line.prefixStyle,
			highlightFrom: line.highlightFrom,
			raw:           line.raw,
		}
	}
	return result
}

func renderLines(lines []styledLine) string {
	out := make([]string, len(lines))
	for i, line := range lines {
		text := line.text
		if line.raw {
			out[i] = text
			continue
		}
		runes := []rune(text)
		if line.highlightFrom > 0 && line.highlightFrom < len(runes) {
			head := string(runes[:line.highlightFrom])
			tail := string(runes[line.highlightFrom:])
			if line.prefixStyle != nil {
				head = line.prefixStyle.Render(head)
			}
			if line.style != nil {
				tail = line.style.Render(tail)
			}
			text = head + tail
		} else if line.style != nil {
			text = line.style.Render(text)
		}
		out[i] = text
	}
	return strings.Join(out, "\n")
}

func truncateText(text string, width int) string {
	if width <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= width {
		return text
	}
	if width == 1 {
		return string(runes[:1])
	}
	return string(runes[:width-1]) + "…"
}
