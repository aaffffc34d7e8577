package components

import (
	"fmt"

	"github.com/allbin/serialterm/internal/session"
	"github.com/allbin/serialterm/internal/tui/styles"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/evertras/bubble-table/table"
)

const (
	columnKeyIndex = "index"
	columnKeyStart = "start"
	columnKeyEnd   = "end"
	columnKeyText  = "text"
)

// Results shows search matches in a navigable table
type Results struct {
	table   table.Model
	pattern string
	matches []session.Match
	width   int
	height  int
	focused bool
}

func NewResults(width, height int) *Results {
	r := &Results{width: width, height: height}
	r.rebuild()
	return r
}

func (r *Results) SetSize(width, height int) {
	r.width = width
	r.height = height
	r.rebuild()
}

func (r *Results) SetMatches(pattern string, matches []session.Match) {
	r.pattern = pattern
	r.matches = matches
	r.rebuild()
}

func (r *Results) Focus(focused bool) {
	r.focused = focused
	r.table = r.table.Focused(focused)
}

// Count returns the number of matches, not counting the empty placeholder
// a search without matches returns
func (r *Results) Count() int {
	if len(r.matches) == 1 && r.matches[0] == (session.Match{}) {
		return 0
	}
	return len(r.matches)
}

// Selected returns the highlighted match
func (r *Results) Selected() (session.Match, bool) {
	if r.Count() == 0 {
		return session.Match{}, false
	}
	index, ok := r.table.HighlightedRow().Data[columnKeyIndex].(int)
	if !ok || index < 1 || index > len(r.matches) {
		return session.Match{}, false
	}
	return r.matches[index-1], true
}

func (r *Results) rebuild() {
	columns := []table.Column{
		table.NewColumn(columnKeyIndex, "#", 6),
		table.NewColumn(columnKeyStart, "Start", 10),
		table.NewColumn(columnKeyEnd, "End", 10),
		table.NewFlexColumn(columnKeyText, "Match", 1),
	}

	rows := make([]table.Row, 0, len(r.matches))
	if r.Count() > 0 {
		for i, m := range r.matches {
			rows = append(rows, table.NewRow(table.RowData{
				columnKeyIndex: i + 1,
				columnKeyStart: m.Start,
				columnKeyEnd:   m.End,
				columnKeyText:  PrintableText(m.Text),
			}))
		}
	}

	// header and footer take three lines each including borders
	pageSize := r.height - 6
	if pageSize < 1 {
		pageSize = 1
	}
	width := r.width
	if width < 40 {
		width = 40
	}

	r.table = table.New(columns).
		WithRows(rows).
		WithPageSize(pageSize).
		WithTargetWidth(width).
		WithBaseStyle(styles.TableBaseStyle).
		HeaderStyle(styles.TableHeaderStyle).
		HighlightStyle(styles.TableHighlightStyle).
		WithStaticFooter(fmt.Sprintf("/%s/  %d matches", r.pattern, r.Count())).
		Focused(r.focused)
}

func (r *Results) Update(msg tea.Msg) (*Results, tea.Cmd) {
	var cmd tea.Cmd
	r.table, cmd = r.table.Update(msg)
	return r, cmd
}

func (r *Results) View() string {
	return r.table.View()
}
