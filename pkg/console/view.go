package console

import (
	"slices"
	"strconv"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/ekaya-inc/ekaya-enrich/pkg/models"
	"github.com/ekaya-inc/ekaya-enrich/pkg/workspace"
)

const (
	pageChecking = "checking"
	pageLogin    = "login"
	pageMain     = "main"
	pageColumn   = "column-draft"

	panelTable   = "table"
	panelColumns = "columns"

	coverageWidth = 30
)

// view owns the widgets. All methods run on the UI goroutine.
type view struct {
	app           *tview.Application
	dispatch      func(workspace.Event)
	enableColumns bool

	// rendering suppresses widget callbacks while state is pushed into widgets.
	rendering bool
	page      string
	modalOpen bool

	pages *tview.Pages

	loginForm  *tview.Form
	username   *tview.InputField
	password   *tview.InputField
	loginError *tview.TextView

	header      *tview.TextView
	catalogs    *tview.DropDown
	schemas     *tview.DropDown
	tables      *tview.DropDown
	preview     *tview.Table
	descPanel   *tview.Pages
	tableInfo   *tview.TextView
	tableDraft  *tview.TextArea
	columnInfo  *tview.TextView
	columnsView *tview.Table
	status      *tview.TextView

	onSelect     [3]func(text string, index int)
	lastOptions  [3][]string
	lastPreview  *models.TablePreview
	lastColumns  workspace.ColumnDoc
	focusables   []tview.Primitive
	focusedIndex int
}

func newView(app *tview.Application, dispatch func(workspace.Event), enableColumns bool) *view {
	v := &view{
		app:           app,
		dispatch:      dispatch,
		enableColumns: enableColumns,
		pages:         tview.NewPages(),
	}

	checking := tview.NewTextView().SetTextAlign(tview.AlignCenter).SetText("Checking session…")
	v.pages.AddPage(pageChecking, newModal(checking, 40, 3), true, true)
	v.pages.AddPage(pageLogin, v.buildLogin(), true, false)
	v.pages.AddPage(pageMain, v.buildMain(), true, false)
	v.page = pageChecking
	return v
}

func (v *view) buildLogin() tview.Primitive {
	v.loginForm = tview.NewForm()
	v.loginForm.AddInputField("Username", "", 32, nil, func(text string) {
		v.emit(workspace.UsernameChanged{Value: text})
	})
	v.loginForm.AddPasswordField("Password", "", 32, '*', func(text string) {
		v.emit(workspace.PasswordChanged{Value: text})
	})
	v.loginForm.AddButton("Sign in", func() {
		v.emit(workspace.LoginSubmitted{})
	})
	v.username = v.loginForm.GetFormItem(0).(*tview.InputField)
	v.password = v.loginForm.GetFormItem(1).(*tview.InputField)
	v.password.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			v.emit(workspace.LoginSubmitted{})
		}
	})
	v.loginForm.SetBorder(true).SetTitle(" Sign in with your Databricks credentials ")

	v.loginError = tview.NewTextView().SetDynamicColors(true).SetTextAlign(tview.AlignCenter)

	box := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(v.loginForm, 9, 0, true).
		AddItem(v.loginError, 2, 0, false)
	return newModal(box, 60, 11)
}

func (v *view) buildMain() tview.Primitive {
	v.header = tview.NewTextView().SetDynamicColors(true)

	// SetOptions replaces the selection handler, so render passes these back in.
	v.onSelect = [3]func(string, int){
		func(text string, index int) {
			if index >= 0 {
				v.emit(workspace.CatalogSelected{Name: text})
			}
		},
		func(text string, index int) {
			if index >= 0 {
				v.emit(workspace.SchemaSelected{Name: text})
			}
		},
		func(text string, index int) {
			switch {
			case index == 0:
				v.emit(workspace.TableSelected{Name: ""})
			case index > 0:
				v.emit(workspace.TableSelected{Name: text})
			}
		},
	}
	v.catalogs = tview.NewDropDown().SetLabel("Catalog ")
	v.schemas = tview.NewDropDown().SetLabel("Schema ")
	v.tables = tview.NewDropDown().SetLabel("Table ")
	v.tables.SetOptions([]string{tablePlaceholder}, v.onSelect[2])

	selectors := tview.NewFlex().
		AddItem(v.catalogs, 0, 1, true).
		AddItem(v.schemas, 0, 1, false).
		AddItem(v.tables, 0, 1, false)

	v.preview = tview.NewTable().SetFixed(1, 0).SetSelectable(true, false)
	v.preview.SetBorder(true).SetTitle(" Preview ")

	v.tableInfo = tview.NewTextView().SetDynamicColors(true).SetWordWrap(true)
	v.tableDraft = tview.NewTextArea().SetPlaceholder("Press F5 to generate a draft, or type one here")
	v.tableDraft.SetChangedFunc(func() {
		v.emit(workspace.TableDraftEdited{Text: v.tableDraft.GetText()})
	})
	v.tableDraft.SetBorder(true).SetTitle(" Draft ")
	tablePanel := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(v.tableInfo, 4, 0, false).
		AddItem(v.tableDraft, 0, 1, false)

	v.columnInfo = tview.NewTextView().SetDynamicColors(true)
	v.columnsView = tview.NewTable().SetFixed(1, 0).SetSelectable(true, false)
	v.columnsView.SetSelectedFunc(func(row, _ int) {
		if row >= 1 && row <= len(v.lastColumns.Columns) {
			v.openColumnEditor(v.lastColumns.Columns[row-1].Name)
		}
	})
	columnPanel := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(v.columnInfo, 2, 0, false).
		AddItem(v.columnsView, 0, 1, false)

	v.descPanel = tview.NewPages().
		AddPage(panelTable, tablePanel, true, true).
		AddPage(panelColumns, columnPanel, true, false)
	v.descPanel.SetBorder(true)

	v.status = tview.NewTextView().SetDynamicColors(true)

	v.focusables = []tview.Primitive{v.catalogs, v.schemas, v.tables, v.preview, v.tableDraft}
	if v.enableColumns {
		v.focusables = append(v.focusables, v.columnsView)
	}

	return tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(v.header, 1, 0, false).
		AddItem(selectors, 1, 0, true).
		AddItem(v.preview, 0, 1, false).
		AddItem(v.descPanel, 0, 1, false).
		AddItem(v.status, 1, 0, false)
}

// emit forwards a widget event unless the change came from render.
func (v *view) emit(ev workspace.Event) {
	if v.rendering {
		return
	}
	v.dispatch(ev)
}

func (v *view) render(s workspace.State) {
	v.rendering = true
	defer func() { v.rendering = false }()

	switch s.Session.Phase {
	case workspace.PhaseChecking:
		v.switchPage(pageChecking, nil)
	case workspace.PhaseAnonymous:
		v.renderLogin(s.Login)
		v.switchPage(pageLogin, v.username)
	case workspace.PhaseAuthenticated:
		v.renderMain(s)
		v.switchPage(pageMain, v.catalogs)
	}
}

func (v *view) switchPage(name string, focus tview.Primitive) {
	if v.page == name {
		return
	}
	if v.modalOpen {
		v.closeModal()
	}
	v.page = name
	v.pages.SwitchToPage(name)
	if focus != nil {
		v.focusedIndex = 0
		v.app.SetFocus(focus)
	}
}

func (v *view) renderLogin(l workspace.Login) {
	if v.username.GetText() != l.Username {
		v.username.SetText(l.Username)
	}
	if v.password.GetText() != l.Password {
		v.password.SetText(l.Password)
	}
	label := "Sign in"
	if l.Submitting {
		label = "Signing in…"
	}
	v.loginForm.GetButton(0).SetLabel(label)
	if l.Error != "" {
		v.loginError.SetText("[red]" + tview.Escape(l.Error) + "[-]")
	} else {
		v.loginError.SetText("")
	}
}

func (v *view) renderMain(s workspace.State) {
	v.header.SetText(headerText(s))
	v.renderLevel(v.catalogs, 0, s.Selector.Catalog, "")
	v.renderLevel(v.schemas, 1, s.Selector.Schema, "")
	v.renderLevel(v.tables, 2, s.Selector.Table, tablePlaceholder)
	v.renderPreview(s.Preview)
	v.renderTableDoc(s.Table)
	if v.enableColumns {
		v.renderColumns(s.Columns)
	}

	if s.Tab == workspace.TabColumns && v.enableColumns {
		v.descPanel.SwitchToPage(panelColumns)
		v.descPanel.SetTitle(" Descriptions:  F1 table  [::r] F2 columns [::-] ")
	} else {
		v.descPanel.SwitchToPage(panelTable)
		title := " Descriptions: [::r] F1 table [::-]"
		if v.enableColumns {
			title += " F2 columns "
		}
		v.descPanel.SetTitle(title)
	}
	v.status.SetText(statusText(s))
}

func (v *view) renderLevel(dd *tview.DropDown, idx int, level workspace.Level, placeholder string) {
	options, selected := levelOptions(level, placeholder)
	if !slices.Equal(options, v.lastOptions[idx]) {
		dd.SetOptions(options, v.onSelect[idx])
		v.lastOptions[idx] = options
	}
	if current, _ := dd.GetCurrentOption(); current != selected {
		dd.SetCurrentOption(selected)
	}
}

func (v *view) renderPreview(p *models.TablePreview) {
	if p == v.lastPreview {
		return
	}
	v.lastPreview = p
	v.preview.Clear()
	if p == nil {
		v.preview.SetTitle(" Preview ")
		return
	}
	header, rows := previewGrid(p)
	for i, col := range header {
		cell := tview.NewTableCell(tview.Escape(col)).SetSelectable(false).SetAlign(tview.AlignCenter).SetAttributes(tcell.AttrBold)
		v.preview.SetCell(0, i, cell)
	}
	for r, row := range rows {
		for c, val := range row {
			v.preview.SetCell(r+1, c, tview.NewTableCell(tview.Escape(val)).SetExpansion(1).SetMaxWidth(40))
		}
	}
	v.preview.SetTitle(" Preview (" + strconv.Itoa(p.RowCount) + " rows) ")
	v.preview.ScrollToBeginning()
}

func (v *view) renderTableDoc(doc workspace.TableDoc) {
	text := "[::b]Current description[-::-]\n"
	if doc.Loaded {
		text += currentText(doc.Current, doc.IsMissing)
	} else {
		text += "[gray]Loading…[-]"
	}
	v.tableInfo.SetText(text)

	if v.tableDraft.GetText() != doc.Draft {
		v.tableDraft.SetText(doc.Draft, false)
	}
	title := " Draft (F6 to approve) "
	switch {
	case doc.Generating:
		title = " Draft: generating… "
	case doc.Saving:
		title = " Draft: saving… "
	}
	v.tableDraft.SetTitle(title)
}

func (v *view) renderColumns(doc workspace.ColumnDoc) {
	v.columnInfo.SetText(coverageText(doc, coverageWidth))
	v.lastColumns = doc

	row, _ := v.columnsView.GetSelection()
	v.columnsView.Clear()
	for i, title := range []string{"Column", "Type", "Current", "Draft"} {
		v.columnsView.SetCell(0, i, tview.NewTableCell(title).SetSelectable(false).SetAttributes(tcell.AttrBold))
	}
	for i, col := range doc.Columns {
		color := tcell.ColorWhite
		if col.IsMissing {
			color = tcell.ColorYellow
		}
		current := "-"
		if !col.IsMissing && col.Description != nil {
			current = *col.Description
		}
		draft, _ := doc.Draft(col.Name)
		v.columnsView.SetCell(i+1, 0, tview.NewTableCell(tview.Escape(col.Name)).SetTextColor(color))
		v.columnsView.SetCell(i+1, 1, tview.NewTableCell(tview.Escape(col.Type)).SetTextColor(tcell.ColorGray))
		v.columnsView.SetCell(i+1, 2, tview.NewTableCell(tview.Escape(current)).SetExpansion(1).SetMaxWidth(50))
		v.columnsView.SetCell(i+1, 3, tview.NewTableCell(tview.Escape(draft)).SetExpansion(1).SetMaxWidth(50).SetTextColor(tcell.ColorGreen))
	}
	if row >= 1 && row <= len(doc.Columns) {
		v.columnsView.Select(row, 0)
	}
}

// openColumnEditor shows a modal to edit one column's draft.
func (v *view) openColumnEditor(name string) {
	if v.modalOpen {
		return
	}
	initial := ""
	for _, col := range v.lastColumns.Columns {
		if col.Name == name && col.Description != nil && !col.IsMissing {
			initial = *col.Description
		}
	}
	if draft, ok := v.lastColumns.Draft(name); ok {
		initial = draft
	}

	input := tview.NewInputField().SetLabel("Description ").SetText(initial).SetFieldWidth(70)
	form := tview.NewForm().
		AddFormItem(input).
		AddButton("Save draft", func() {
			text := input.GetText()
			v.closeModal()
			v.dispatch(workspace.ColumnDraftEdited{Name: name, Text: text})
		}).
		AddButton("Cancel", v.closeModal)
	form.SetBorder(true).SetTitle(" Draft for " + tview.Escape(name) + " ")
	form.SetCancelFunc(v.closeModal)

	v.modalOpen = true
	v.pages.AddPage(pageColumn, newModal(form, 90, 7), true, true)
	v.app.SetFocus(input)
}

func (v *view) closeModal() {
	v.pages.RemovePage(pageColumn)
	v.modalOpen = false
	v.app.SetFocus(v.columnsView)
}

// handleKey is the application-wide key handler.
func (v *view) handleKey(event *tcell.EventKey) *tcell.EventKey {
	if v.page != pageMain || v.modalOpen {
		return event
	}
	switch event.Key() {
	case tcell.KeyF1:
		v.dispatch(workspace.TabSelected{Tab: workspace.TabTable})
	case tcell.KeyF2:
		v.dispatch(workspace.TabSelected{Tab: workspace.TabColumns})
	case tcell.KeyF5:
		if v.descPanelIs(panelColumns) {
			v.dispatch(workspace.GenerateColumnsRequested{})
		} else {
			v.dispatch(workspace.GenerateTableRequested{})
		}
	case tcell.KeyF6:
		if v.descPanelIs(panelColumns) {
			v.dispatch(workspace.ApproveColumnsRequested{})
		} else {
			v.dispatch(workspace.ApproveTableRequested{})
		}
	case tcell.KeyF10:
		v.dispatch(workspace.LogoutRequested{})
	case tcell.KeyEscape:
		v.dispatch(workspace.ErrorDismissed{})
		v.dispatch(workspace.SuccessDismissed{})
	case tcell.KeyTab:
		v.cycleFocus(1)
	case tcell.KeyBacktab:
		v.cycleFocus(-1)
	default:
		return event
	}
	return nil
}

func (v *view) descPanelIs(name string) bool {
	front, _ := v.descPanel.GetFrontPage()
	return front == name
}

func (v *view) cycleFocus(step int) {
	n := len(v.focusables)
	v.focusedIndex = ((v.focusedIndex+step)%n + n) % n
	v.app.SetFocus(v.focusables[v.focusedIndex])
}
