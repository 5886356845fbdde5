// Menu handler for application actions
package gui

import (
	"fmt"
	"io"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"photo-retouch/internal/core"
	"photo-retouch/internal/session"
)

// MenuHandler handles menu actions
type MenuHandler struct {
	window  fyne.Window
	session *session.Session
	logger  *logrus.Logger

	onExport func()
	onError  func(title string, err error)
}

func NewMenuHandler(window fyne.Window, sess *session.Session, logger *logrus.Logger) *MenuHandler {
	return &MenuHandler{
		window:  window,
		session: sess,
		logger:  logger,
	}
}

func (mh *MenuHandler) GetMainMenu() *fyne.MainMenu {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Upload Images...", mh.OpenImages),
		fyne.NewMenuItem("Export...", func() {
			if mh.onExport != nil {
				mh.onExport()
			}
		}),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Exit", func() {
			mh.window.Close()
		}),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Reset Adjustments", mh.session.ResetActive),
		fyne.NewMenuItem("Remove Image", func() {
			id := mh.session.ActiveID()
			if id == "" {
				return
			}
			if err := mh.session.Remove(id); err != nil {
				mh.showError("Failed to Remove Image", err)
			}
		}),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Two Images", func() {
			mh.session.ToggleTwo()
		}),
		fyne.NewMenuItem("Swipe Compare", func() {
			mh.session.ToggleTrans()
		}),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Reset Zoom", func() {
			mh.session.SetTransform(core.DefaultTransform())
		}),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mh.showAbout),
	)

	return fyne.NewMainMenu(fileMenu, editMenu, viewMenu, helpMenu)
}

// OpenImages shows the file picker. fyne's open dialog takes one file at a
// time; drag and drop onto the window accepts several.
func (mh *MenuHandler) OpenImages() {
	mh.logger.Info("Opening file dialog for image selection")

	fileDialog := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			mh.showError("File Dialog Error", err)
			return
		}
		if reader == nil {
			return
		}
		defer reader.Close()

		data, err := io.ReadAll(reader)
		if err != nil {
			mh.showError("Failed to Read Image", err)
			return
		}

		name := reader.URI().Name()
		added := mh.session.Upload([]core.Upload{{Name: name, Data: data}})
		if len(added) == 0 {
			mh.showError("Unsupported File", fmt.Errorf("%s is not a supported image", name))
			return
		}
		mh.logger.WithField("file", name).Info("Image uploaded from dialog")
	}, mh.window)

	fileDialog.SetFilter(storage.NewExtensionFileFilter(mh.session.Loader().FileExtensions()))
	fileDialog.Show()
}

func (mh *MenuHandler) showAbout() {
	content := container.NewVBox(
		widget.NewLabelWithStyle("Photo Retouch Studio", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		widget.NewLabel("Non-destructive adjustments with live comparison views"),
		widget.NewSeparator(),
		widget.NewLabel("Basic: exposure, highlights, shadows, whites, blacks"),
		widget.NewLabel("Color: temperature, tint, saturation"),
		widget.NewLabel("Effects: texture, clarity, grain"),
		widget.NewSeparator(),
		widget.NewLabel("Drag to pan, scroll to zoom, drag the divider in swipe view"),
	)

	dialog.NewCustom("About", "Close", content, mh.window).Show()
}

func (mh *MenuHandler) showError(title string, err error) {
	if mh.onError != nil {
		mh.onError(title, err)
		return
	}
	mh.logger.WithField("error", err).Error(title)
	dialog.ShowError(err, mh.window)
}

func (mh *MenuHandler) SetCallbacks(onExport func(), onError func(title string, err error)) {
	mh.onExport = onExport
	mh.onError = onError
}
