// Main application window and wiring between session and widgets
package gui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"photo-retouch/internal/config"
	"photo-retouch/internal/core"
	"photo-retouch/internal/export"
	"photo-retouch/internal/session"
	"photo-retouch/internal/view"
)

// Application represents the main window
type Application struct {
	app    fyne.App
	window fyne.Window
	logger *logrus.Logger
	cfg    config.Config

	session *session.Session

	// GUI components
	workspace   *Workspace
	toolbar     *Toolbar
	selector    *ImageSelector
	panels      []*AdjustmentPanel
	info        *InfoPanel
	menuHandler *MenuHandler

	startupFiles []string

	mu           sync.Mutex
	exportCancel context.CancelFunc
}

func NewApplication(app fyne.App, logger *logrus.Logger, cfg config.Config, sess *session.Session) *Application {
	window := app.NewWindow(cfg.Window.Title)
	window.Resize(fyne.NewSize(cfg.Window.Width, cfg.Window.Height))
	window.CenterOnScreen()

	a := &Application{
		app:     app,
		window:  window,
		logger:  logger,
		cfg:     cfg,
		session: sess,
	}

	a.initializeGUI()
	a.setupLayout()
	a.setupCallbacks()
	a.setupEvents()

	return a
}

func (a *Application) initializeGUI() {
	a.workspace = NewWorkspace(a.session, a.cfg, a.logger)
	a.toolbar = NewToolbar()
	a.selector = NewImageSelector(a.session, a.logger)
	a.panels = []*AdjustmentPanel{NewBasicPanel(), NewColorPanel(), NewEffectsPanel()}
	a.info = NewInfoPanel(a.logger)
	a.menuHandler = NewMenuHandler(a.window, a.session, a.logger)
}

func (a *Application) setupLayout() {
	centerPanel := container.NewBorder(
		container.NewVBox(a.toolbar.GetContainer(), widget.NewSeparator()),
		nil, nil, nil,
		container.NewPadded(a.workspace),
	)

	adjustments := container.NewVBox()
	for _, panel := range a.panels {
		adjustments.Add(panel.GetContainer())
	}

	rightPanels := container.NewVSplit(
		container.NewScroll(adjustments),
		a.info.GetContainer(),
	)
	rightPanels.SetOffset(0.65)

	centerAndRight := container.NewHSplit(centerPanel, rightPanels)
	centerAndRight.SetOffset(0.72)

	mainContent := container.NewHSplit(a.selector.GetContainer(), centerAndRight)
	mainContent.SetOffset(0.18)

	a.window.SetMainMenu(a.menuHandler.GetMainMenu())
	a.window.SetContent(mainContent)
}

func (a *Application) setupCallbacks() {
	for _, panel := range a.panels {
		panel.SetCallbacks(func(delta core.Delta) {
			a.session.ApplyDelta(delta)
		})
	}

	a.toolbar.SetCallbacks(
		// onUpload
		a.menuHandler.OpenImages,
		// onExport
		a.Export,
		// onReset
		func() {
			a.session.ResetActive()
			a.info.ShowMessage("Adjustments reset")
		},
		// onToggleTwo
		func() {
			a.session.ToggleTwo()
		},
		// onToggleTrans
		func() {
			a.session.ToggleTrans()
		},
	)

	a.selector.SetCallbacks(a.menuHandler.OpenImages)
	a.menuHandler.SetCallbacks(a.Export, a.showError)

	a.window.SetOnDropped(func(_ fyne.Position, uris []fyne.URI) {
		paths := make([]string, 0, len(uris))
		for _, uri := range uris {
			paths = append(paths, uri.Path())
		}
		if err := a.LoadFiles(paths); err != nil {
			a.showError("Failed to Load Images", err)
		}
	})
}

// setupEvents routes session events to the widgets. Listeners may fire off
// the UI goroutine, so every update goes through fyne.Do.
func (a *Application) setupEvents() {
	a.session.On(session.EventImagesChanged, func(data interface{}) {
		fyne.Do(func() {
			a.selector.Refresh()
			records, _ := data.([]core.ImageRecord)
			a.info.ShowMessage(fmt.Sprintf("%d image(s) loaded", len(records)))
		})
	})

	a.session.On(session.EventActiveChanged, func(interface{}) {
		fyne.Do(a.activeChanged)
	})

	a.session.On(session.EventSettingsChanged, func(data interface{}) {
		state, _ := data.(core.ImageState)
		fyne.Do(func() {
			for _, panel := range a.panels {
				panel.SetSettings(state.Settings)
			}
			a.workspace.Update()
			a.updateActions()
			a.selector.Refresh()
			a.refreshFidelity()
		})
	})

	a.session.On(session.EventTransformChanged, func(data interface{}) {
		state, _ := data.(core.ImageState)
		fyne.Do(func() {
			a.workspace.Update()
			a.toolbar.SetZoom(state.Transform.ZoomPercentage())
			a.info.ShowZoom(state.Transform.ZoomPercentage())
		})
	})

	a.session.On(session.EventViewChanged, func(data interface{}) {
		state, _ := data.(view.State)
		fyne.Do(func() {
			a.toolbar.SetViewState(state)
			a.info.ShowView(state)
			a.workspace.Sync()
		})
	})

	a.session.On(session.EventDividerChanged, func(interface{}) {
		fyne.Do(func() {
			a.info.ShowView(a.session.ViewState())
			a.workspace.Update()
		})
	})

	a.session.On(session.EventExported, func(data interface{}) {
		name, _ := data.(string)
		a.logger.WithField("artifact", name).Info("Export rendered")
	})
}

func (a *Application) activeChanged() {
	rec, ok := a.session.Active()
	state := a.session.ActiveState()

	for _, panel := range a.panels {
		panel.SetSettings(state.Settings)
		if ok {
			panel.Enable()
		} else {
			panel.Disable()
		}
	}

	a.info.ShowImage(rec, ok)
	a.info.ShowZoom(state.Transform.ZoomPercentage())
	a.toolbar.SetZoom(state.Transform.ZoomPercentage())
	a.updateActions()
	a.workspace.Sync()
	a.selector.Refresh()
	a.refreshFidelity()

	if ok {
		a.info.ShowMessage(fmt.Sprintf("Editing %s", rec.DisplayName))
	}
}

func (a *Application) updateActions() {
	_, ok := a.session.Active()
	a.toolbar.SetImageState(ok, a.session.CanExport())
}

func (a *Application) refreshFidelity() {
	if _, ok := a.session.Active(); !ok {
		a.info.ClearFidelity()
		return
	}
	go func() {
		scores, err := a.session.PreviewFidelity(context.Background())
		fyne.Do(func() {
			if errors.Is(err, export.ErrNoAdjustments) {
				a.info.ClearFidelity()
				return
			}
			if err != nil {
				a.logger.WithField("error", err).Debug("Preview fidelity unavailable")
				a.info.ClearFidelity()
				return
			}
			a.info.UpdateFidelity(scores)
		})
	}()
}

// Export renders the active image and asks where to save it
func (a *Application) Export() {
	if !a.session.CanExport() {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.mu.Lock()
	a.exportCancel = cancel
	a.mu.Unlock()

	a.toolbar.SetExporting(true)
	a.info.StartProgress()

	go func() {
		defer cancel()
		artifact, err := a.session.Export(ctx, func(fraction float64) {
			fyne.Do(func() {
				a.info.SetProgress(fraction)
			})
		})

		fyne.Do(func() {
			a.mu.Lock()
			a.exportCancel = nil
			a.mu.Unlock()

			a.toolbar.SetExporting(false)
			a.info.StopProgress()
			a.updateActions()

			switch {
			case errors.Is(err, context.Canceled):
				a.info.ShowMessage("Export cancelled")
			case err != nil:
				a.showError("Export Failed", err)
			case artifact == nil:
				a.info.ShowMessage("Nothing to export")
			default:
				a.saveArtifact(artifact)
			}
		})
	}()
}

func (a *Application) saveArtifact(artifact *export.Artifact) {
	fileDialog := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			a.showError("File Dialog Error", err)
			return
		}
		if writer == nil {
			return
		}
		defer writer.Close()

		if _, err := writer.Write(artifact.Data); err != nil {
			a.showError("Failed to Save Image", err)
			return
		}

		a.logger.WithFields(logrus.Fields{
			"path":  writer.URI().Path(),
			"bytes": len(artifact.Data),
		}).Info("Image exported")
		a.info.ShowMessage(fmt.Sprintf("Saved %s", writer.URI().Name()))
	}, a.window)

	fileDialog.SetFileName(artifact.Name)
	fileDialog.SetFilter(storage.NewExtensionFileFilter([]string{".png"}))
	if a.cfg.Export.Dir != "" {
		if lister, err := storage.ListerForURI(storage.NewFileURI(a.cfg.Export.Dir)); err == nil {
			fileDialog.SetLocation(lister)
		} else {
			a.logger.WithFields(logrus.Fields{
				"dir":   a.cfg.Export.Dir,
				"error": err,
			}).Warn("Export directory unavailable")
		}
	}
	fileDialog.Show()
}

// LoadFiles reads image files from disk and uploads them. Files that fail
// to read are reported together; the rest are still uploaded.
func (a *Application) LoadFiles(paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	uploads := make([]core.Upload, 0, len(paths))
	var errs []error
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("read %s: %w", path, err))
			continue
		}
		uploads = append(uploads, core.Upload{Name: filepath.Base(path), Data: data})
	}

	added := a.session.Upload(uploads)
	a.logger.WithFields(logrus.Fields{
		"requested": len(paths),
		"added":     len(added),
	}).Info("Files loaded")

	return errors.Join(errs...)
}

// OpenOnStart queues image files to load once the window is running
func (a *Application) OpenOnStart(paths []string) {
	a.startupFiles = append(a.startupFiles, paths...)
}

func (a *Application) ShowAndRun() {
	a.logger.Info("Showing main application window")

	a.window.SetCloseIntercept(func() {
		a.cleanup()
		a.app.Quit()
	})

	a.app.Lifecycle().SetOnStarted(func() {
		a.activeChanged()
		paths := a.startupFiles
		a.startupFiles = nil
		if len(paths) == 0 {
			return
		}
		go func() {
			if err := a.LoadFiles(paths); err != nil {
				fyne.Do(func() {
					a.showError("Failed to Load Images", err)
				})
			}
		}()
	})

	a.window.ShowAndRun()
}

func (a *Application) cleanup() {
	a.logger.Info("Cleaning up application resources")

	a.mu.Lock()
	if a.exportCancel != nil {
		a.exportCancel()
		a.exportCancel = nil
	}
	a.mu.Unlock()

	a.session.ClearListeners()
	a.workspace.Destroy()
}

func (a *Application) showError(title string, err error) {
	a.logger.WithField("error", err).Error(title)
	dialog.ShowError(err, a.window)
	a.info.ShowError(fmt.Sprintf("%s: %v", title, err))
}
