package console

import "github.com/rivo/tview"

// queueUpdate runs fn on the UI goroutine and redraws.
func queueUpdate(app *tview.Application, fn func()) {
	if app == nil {
		fn()
		return
	}
	app.QueueUpdateDraw(fn)
}

// newModal centers content in a width x height box.
func newModal(content tview.Primitive, width, height int) tview.Primitive {
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 10
	}

	return tview.NewGrid().
		SetRows(0, height, 0).
		SetColumns(0, width, 0).
		AddItem(content, 1, 1, 1, 1, 0, 0, true)
}
