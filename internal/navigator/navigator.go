// =============================================================================
// Payables Dashboard - Drill-down Navigator
// =============================================================================
//
// The navigator is a pure state machine behind the dashboard's detail modal:
//
//   Closed --OpenDay--> DaySummary(day)
//   DaySummary    --Click(row)--> ProjectEmails(day, project)
//   ProjectEmails --Click(row)--> EmailDetail(group)
//   EmailDetail   --Prev/Next--> EmailDetail(sibling)   (back stack unchanged)
//   any           --Back------> previous level, re-rendered
//   any           --Close-----> Closed                  (stack cleared)
//
// BACK STACK:
//   The stack holds render closures, never rendered output. Back pops one
//   level and calls the new top closure again, so the view a subscriber gets
//   carries a fresh OnRowClick bound to the current navigator. Presentation
//   layers must re-bind from every emitted View.
//
// THREADING:
//   A Navigator is not safe for concurrent use. Presentation layers drive it
//   from their single event loop.
//
// =============================================================================

package navigator

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/ginjaninja78/payables-dashboard/internal/analytics"
	"github.com/ginjaninja78/payables-dashboard/internal/grouping"
	"github.com/ginjaninja78/payables-dashboard/internal/types"
	"github.com/ginjaninja78/payables-dashboard/pkg/utils"
)

var (
	// ErrNoRow is returned when a click targets a row that does not exist.
	ErrNoRow = errors.New("no such row")

	// ErrNotClickable is returned when the current screen has no row action.
	ErrNotClickable = errors.New("rows on this screen are not clickable")

	// ErrClosed is returned by operations that need an open modal.
	ErrClosed = errors.New("navigator is closed")

	// ErrNoSibling is returned by Prev and Next at either end of the list.
	ErrNoSibling = errors.New("no sibling in that direction")

	// ErrUnknownDay is returned when opening a day with no submissions.
	ErrUnknownDay = errors.New("no submissions on that day")
)

// =============================================================================
// STATE AND VIEW
// =============================================================================

// Screen identifies a navigator state.
type Screen int

const (
	Closed Screen = iota
	DaySummary
	ProjectEmails
	EmailDetail
)

// String returns the screen name.
func (s Screen) String() string {
	switch s {
	case DaySummary:
		return "day_summary"
	case ProjectEmails:
		return "project_emails"
	case EmailDetail:
		return "email_detail"
	}
	return "closed"
}

// State is the navigator's position.
type State struct {
	Screen     Screen
	Day        string
	SectorKey  string
	ProjectKey string
	GroupKey   string

	// Siblings and Position describe the navigation list of EmailDetail:
	// the group keys of the ProjectEmails screen it was opened from.
	Siblings []string
	Position int
}

// Column is a table column of a modal.
type Column struct {
	Key   string
	Title string
}

// Row is one table row. ID is the row's stable handle (a project or group
// key); Cells line up with the modal's Columns.
type Row struct {
	ID    string
	Cells []string
}

// ModalParams is everything one screen of the modal shows.
type ModalParams struct {
	// Title and Sub are the heading lines.
	Title string
	Sub   string

	// Tabs is the breadcrumb of the levels below this one, outermost first.
	Tabs []string

	Columns []Column
	Rows    []Row

	// OnRowClick drills into row index. Nil means the rows are leaves.
	OnRowClick func(index int) error

	// PushHistory true pushes the screen on the back stack; false replaces
	// the current top (Prev/Next).
	PushHistory bool
}

// View is what subscribers render.
type View struct {
	State State
	ModalParams

	CanBack bool
	CanPrev bool
	CanNext bool

	// Position is 1-based within the sibling list; Count is its length.
	// Both are zero outside EmailDetail.
	Position int
	Count    int
}

// =============================================================================
// NAVIGATOR
// =============================================================================

// frame is one back-stack entry.
type frame struct {
	state  State
	render func() ModalParams
}

// Navigator manages the drill-down stack over one filtered group set.
type Navigator struct {
	groups []types.SubmissionGroup
	labels types.LabelIndex

	stack       []frame
	view        View
	subscribers []func(View)
}

// New creates a closed navigator over groups.
func New(groups []types.SubmissionGroup, labels types.LabelIndex) *Navigator {
	return &Navigator{groups: groups, labels: labels}
}

// Subscribe registers fn to receive every emitted view. fn is not called
// for the current view.
func (n *Navigator) Subscribe(fn func(View)) {
	n.subscribers = append(n.subscribers, fn)
}

// View returns the current view.
func (n *Navigator) View() View {
	return n.view
}

// State returns the current state.
func (n *Navigator) State() State {
	return n.view.State
}

// Depth returns the back-stack height.
func (n *Navigator) Depth() int {
	return len(n.stack)
}

// OpenDay opens the modal on a day summary. Any previous stack is discarded.
func (n *Navigator) OpenDay(day string) error {
	if len(analytics.GroupsOnDay(n.groups, day)) == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownDay, day)
	}
	n.stack = nil
	n.show(State{Screen: DaySummary, Day: day}, func() ModalParams { return n.daySummary(day) })
	return nil
}

// Click activates row index of the current screen.
func (n *Navigator) Click(index int) error {
	if n.view.State.Screen == Closed {
		return ErrClosed
	}
	if n.view.OnRowClick == nil {
		return ErrNotClickable
	}
	if index < 0 || index >= len(n.view.Rows) {
		return fmt.Errorf("%w: %d", ErrNoRow, index)
	}
	return n.view.OnRowClick(index)
}

// Prev moves to the previous sibling submission.
func (n *Navigator) Prev() error {
	return n.step(-1)
}

// Next moves to the next sibling submission.
func (n *Navigator) Next() error {
	return n.step(1)
}

func (n *Navigator) step(delta int) error {
	st := n.view.State
	if st.Screen != EmailDetail {
		return ErrNoSibling
	}
	pos := st.Position + delta
	if pos < 0 || pos >= len(st.Siblings) {
		return ErrNoSibling
	}
	n.openEmail(st, st.Siblings, pos, false)
	return nil
}

// Back pops one level and re-renders the level below. Back on the first
// level closes the modal.
func (n *Navigator) Back() error {
	if len(n.stack) == 0 {
		return ErrClosed
	}
	if len(n.stack) == 1 {
		n.Close()
		return nil
	}
	n.stack = n.stack[:len(n.stack)-1]
	n.render()
	return nil
}

// Close clears the stack.
func (n *Navigator) Close() {
	n.stack = nil
	n.view = View{}
	n.emit()
}

// show runs a render closure once to learn whether it pushes, places it on
// the stack and emits the view.
func (n *Navigator) show(state State, render func() ModalParams) {
	f := frame{state: state, render: render}
	params := render()
	if params.PushHistory || len(n.stack) == 0 {
		n.stack = append(n.stack, f)
	} else {
		n.stack[len(n.stack)-1] = f
	}
	n.publish(f, params)
}

// render re-runs the top closure.
func (n *Navigator) render() {
	top := n.stack[len(n.stack)-1]
	n.publish(top, top.render())
}

func (n *Navigator) publish(f frame, params ModalParams) {
	params.Tabs = n.breadcrumb()
	v := View{
		State:       f.state,
		ModalParams: params,
		CanBack:     len(n.stack) > 1,
	}
	if f.state.Screen == EmailDetail {
		v.Count = len(f.state.Siblings)
		v.Position = f.state.Position + 1
		v.CanPrev = f.state.Position > 0
		v.CanNext = f.state.Position < len(f.state.Siblings)-1
	}
	n.view = v
	n.emit()
}

func (n *Navigator) emit() {
	for _, fn := range n.subscribers {
		fn(n.view)
	}
}

func (n *Navigator) breadcrumb() []string {
	tabs := make([]string, 0, len(n.stack))
	for _, f := range n.stack {
		switch f.state.Screen {
		case DaySummary:
			tabs = append(tabs, f.state.Day)
		case ProjectEmails:
			tabs = append(tabs, n.labels.Project(f.state.ProjectKey))
		case EmailDetail:
			if g, ok := grouping.Find(n.groups, f.state.GroupKey); ok {
				tabs = append(tabs, g.SubmissionTime)
			}
		}
	}
	return tabs
}

// =============================================================================
// SCREENS
// =============================================================================

func (n *Navigator) daySummary(day string) ModalParams {
	rows := analytics.ProjectsOnDay(analytics.ComputeDayTable(n.groups), day)

	params := ModalParams{
		Title: "Submissions on " + day,
		Sub:   fmt.Sprintf("%d projects", len(rows)),
		Columns: []Column{
			{Key: "sector", Title: "Sector"},
			{Key: "project", Title: "Project"},
			{Key: "submissions", Title: "Submissions"},
			{Key: "line_items", Title: "Line items"},
			{Key: "total", Title: "Total"},
			{Key: "paid", Title: "Paid"},
			{Key: "remaining", Title: "Remaining"},
		},
		PushHistory: true,
	}
	for _, r := range rows {
		params.Rows = append(params.Rows, Row{
			ID: r.SectorKey + grouping.KeySeparator + r.ProjectKey,
			Cells: []string{
				r.Sector,
				r.Project,
				strconv.Itoa(r.Submissions),
				strconv.Itoa(r.LineItems),
				utils.FormatMoney(r.Total),
				utils.FormatMoney(r.Paid),
				utils.FormatMoney(r.Remaining),
			},
		})
	}

	params.OnRowClick = func(index int) error {
		r := rows[index]
		st := State{Screen: ProjectEmails, Day: day, SectorKey: r.SectorKey, ProjectKey: r.ProjectKey}
		n.show(st, func() ModalParams { return n.projectEmails(st) })
		return nil
	}
	return params
}

// projectGroups returns the submissions of one project on one day, ordered
// by submission time.
func (n *Navigator) projectGroups(st State) []types.SubmissionGroup {
	var out []types.SubmissionGroup
	for _, g := range analytics.GroupsOnDay(n.groups, st.Day) {
		if g.SectorKey == st.SectorKey && g.ProjectKey == st.ProjectKey {
			out = append(out, g)
		}
	}
	grouping.Sort(out)
	return out
}

func (n *Navigator) projectEmails(st State) ModalParams {
	groups := n.projectGroups(st)

	params := ModalParams{
		Title: n.labels.Project(st.ProjectKey),
		Sub:   fmt.Sprintf("%s - %s - %d submissions", n.labels.Sector(st.SectorKey), st.Day, len(groups)),
		Columns: []Column{
			{Key: "time", Title: "Time"},
			{Key: "status", Title: "Status"},
			{Key: "vendors", Title: "Vendors"},
			{Key: "line_items", Title: "Line items"},
			{Key: "total", Title: "Total"},
			{Key: "paid", Title: "Paid"},
			{Key: "remaining", Title: "Remaining"},
		},
		PushHistory: true,
	}

	keys := make([]string, len(groups))
	for i, g := range groups {
		keys[i] = g.Key
		params.Rows = append(params.Rows, Row{
			ID: g.Key,
			Cells: []string{
				g.SubmissionTime,
				g.Status.Label(),
				joinVendors(g.Vendors),
				strconv.Itoa(g.LineItems()),
				utils.FormatMoney(g.Total),
				utils.FormatMoney(g.Paid),
				utils.FormatMoney(g.Remaining),
			},
		})
	}

	params.OnRowClick = func(index int) error {
		n.openEmail(st, keys, index, true)
		return nil
	}
	return params
}

// openEmail shows sibling pos of keys. parent carries day/sector/project.
func (n *Navigator) openEmail(parent State, keys []string, pos int, push bool) {
	st := State{
		Screen:     EmailDetail,
		Day:        parent.Day,
		SectorKey:  parent.SectorKey,
		ProjectKey: parent.ProjectKey,
		GroupKey:   keys[pos],
		Siblings:   keys,
		Position:   pos,
	}
	n.show(st, func() ModalParams {
		p := n.emailDetail(st.GroupKey)
		p.PushHistory = push
		return p
	})
}

func (n *Navigator) emailDetail(key string) ModalParams {
	g, _ := grouping.Find(n.groups, key)

	params := ModalParams{
		Title: fmt.Sprintf("%s - %s", g.Project, g.SubmissionTime),
		Sub: fmt.Sprintf("%s - %s - total %s, paid %s, remaining %s",
			g.Day, g.Status.Label(),
			utils.FormatMoney(g.Total), utils.FormatMoney(g.Paid), utils.FormatMoney(g.Remaining)),
		Columns: []Column{
			{Key: "row", Title: "Row"},
			{Key: "vendor", Title: "Vendor"},
			{Key: "code", Title: "Code"},
			{Key: "request_id", Title: "Request"},
			{Key: "status", Title: "Status"},
			{Key: "effective_total", Title: "Total"},
			{Key: "paid", Title: "Paid"},
			{Key: "remaining", Title: "Remaining"},
		},
	}
	for _, m := range g.Members {
		params.Rows = append(params.Rows, Row{
			ID: strconv.Itoa(m.RowNumber),
			Cells: []string{
				strconv.Itoa(m.RowNumber),
				m.Vendor,
				m.Code,
				m.RequestID,
				m.Status.Label(),
				utils.FormatMoney(m.EffectiveTotal),
				utils.FormatMoney(m.AmountPaid),
				utils.FormatMoney(m.Remaining),
			},
		})
	}
	return params
}

func joinVendors(vendors []string) string {
	switch len(vendors) {
	case 0:
		return ""
	case 1:
		return vendors[0]
	}
	return fmt.Sprintf("%s +%d", vendors[0], len(vendors)-1)
}
