// Workspace toolbar: upload, export, reset, view toggles and zoom readout
package gui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"photo-retouch/internal/view"
)

type Toolbar struct {
	container *fyne.Container

	// File operations (left side)
	uploadBtn *widget.Button
	exportBtn *widget.Button
	resetBtn  *widget.Button

	// Zoom readout (center)
	zoomPercentage *widget.Label

	// View toggles (right side)
	twoBtn   *widget.Button
	transBtn *widget.Button

	exporting bool

	// Callbacks
	onUpload      func()
	onExport      func()
	onReset       func()
	onToggleTwo   func()
	onToggleTrans func()
}

func NewToolbar() *Toolbar {
	toolbar := &Toolbar{}
	toolbar.initializeUI()
	return toolbar
}

func (tb *Toolbar) initializeUI() {
	titleLabel := widget.NewLabelWithStyle("Photo Retouch Studio", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})

	tb.uploadBtn = widget.NewButtonWithIcon("UPLOAD", theme.FolderOpenIcon(), func() {
		if tb.onUpload != nil {
			tb.onUpload()
		}
	})

	tb.exportBtn = widget.NewButtonWithIcon("EXPORT", theme.DownloadIcon(), func() {
		if tb.onExport != nil {
			tb.onExport()
		}
	})
	tb.exportBtn.Importance = widget.HighImportance
	tb.exportBtn.Disable()

	tb.resetBtn = widget.NewButtonWithIcon("Reset", theme.ViewRefreshIcon(), func() {
		if tb.onReset != nil {
			tb.onReset()
		}
	})
	tb.resetBtn.Disable()

	leftSection := container.NewHBox(
		titleLabel,
		widget.NewSeparator(),
		tb.uploadBtn,
		tb.exportBtn,
		tb.resetBtn,
	)

	tb.zoomPercentage = widget.NewLabel("100%")
	centerSection := container.NewCenter(container.NewHBox(
		widget.NewIcon(theme.ZoomFitIcon()),
		tb.zoomPercentage,
	))

	tb.twoBtn = widget.NewButtonWithIcon("Two", theme.ViewRestoreIcon(), func() {
		if tb.onToggleTwo != nil {
			tb.onToggleTwo()
		}
	})
	tb.transBtn = widget.NewButtonWithIcon("Trans", theme.ViewFullScreenIcon(), func() {
		if tb.onToggleTrans != nil {
			tb.onToggleTrans()
		}
	})

	rightSection := container.NewHBox(
		widget.NewLabel("View:"),
		tb.twoBtn,
		tb.transBtn,
	)

	tb.container = container.NewBorder(
		nil, nil,
		leftSection,   // left
		rightSection,  // right
		centerSection, // center
	)
}

// SetViewState highlights the active toggle. Only one of them is ever lit.
func (tb *Toolbar) SetViewState(state view.State) {
	tb.twoBtn.Importance = widget.MediumImportance
	tb.transBtn.Importance = widget.MediumImportance
	tb.twoBtn.SetText("Two")

	switch state.Surface() {
	case view.SurfaceCompare:
		tb.twoBtn.Importance = widget.HighImportance
		tb.twoBtn.SetText("Two: original | edited")
	case view.SurfaceModified:
		tb.twoBtn.Importance = widget.HighImportance
		tb.twoBtn.SetText("Two: edited | original")
	case view.SurfaceSwipe:
		tb.transBtn.Importance = widget.HighImportance
	}

	tb.twoBtn.Refresh()
	tb.transBtn.Refresh()
}

func (tb *Toolbar) SetZoom(percentage float64) {
	tb.zoomPercentage.SetText(fmt.Sprintf("%.0f%%", percentage))
}

// SetImageState enables the image actions. Export additionally needs at
// least one adjustment.
func (tb *Toolbar) SetImageState(hasImage, canExport bool) {
	if hasImage {
		tb.resetBtn.Enable()
	} else {
		tb.resetBtn.Disable()
	}
	if canExport && !tb.exporting {
		tb.exportBtn.Enable()
	} else {
		tb.exportBtn.Disable()
	}
}

func (tb *Toolbar) SetExporting(exporting bool) {
	tb.exporting = exporting
	if exporting {
		tb.exportBtn.SetText("EXPORTING...")
		tb.exportBtn.Disable()
		return
	}
	tb.exportBtn.SetText("EXPORT")
}

func (tb *Toolbar) GetContainer() fyne.CanvasObject {
	return tb.container
}

func (tb *Toolbar) SetCallbacks(
	onUpload func(),
	onExport func(),
	onReset func(),
	onToggleTwo func(),
	onToggleTrans func(),
) {
	tb.onUpload = onUpload
	tb.onExport = onExport
	tb.onReset = onReset
	tb.onToggleTwo = onToggleTwo
	tb.onToggleTrans = onToggleTrans
}
