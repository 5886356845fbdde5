// Workspace widget: the live render surface plus pointer routing
package gui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"photo-retouch/internal/config"
	"photo-retouch/internal/interaction"
	"photo-retouch/internal/render"
	"photo-retouch/internal/session"
)

var (
	workspaceBackground = color.NRGBA{R: 0x1e, G: 0x1e, B: 0x22, A: 0xff}
	dividerColor        = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xe0}
)

// Workspace shows the active image in the current view mode. Pan, divider
// drag and wheel zoom are routed through interaction.Router.
type Workspace struct {
	widget.BaseWidget

	session *session.Session
	logger  *logrus.Logger
	manager *render.Manager
	router  *interaction.Router

	raster      *canvas.Raster
	placeholder *canvas.Text
	size        fyne.Size
}

func NewWorkspace(sess *session.Session, cfg config.Config, logger *logrus.Logger) *Workspace {
	ws := &Workspace{
		session: sess,
		logger:  logger,
		router:  interaction.NewRouter(sess),
	}
	ws.manager = render.NewManager(render.NewSlot("workspace"), render.Options{
		Logger:           logger,
		Source:           sess.Loader(),
		Post:             fyne.Do,
		Pipeline:         cfg.PipelineOptions(),
		PreviewMaxDim:    cfg.Render.PreviewMaxDim,
		OnReady:          ws.refreshRaster,
		BackgroundColor:  workspaceBackground,
		DividerLineColor: dividerColor,
	})

	ws.ExtendBaseWidget(ws)
	return ws
}

func (ws *Workspace) CreateRenderer() fyne.WidgetRenderer {
	ws.raster = canvas.NewRaster(ws.manager.Rasterize)
	ws.placeholder = canvas.NewText("Upload an image to start editing", color.NRGBA{R: 0xaa, G: 0xaa, B: 0xaa, A: 0xff})
	ws.placeholder.Alignment = fyne.TextAlignCenter

	return &workspaceRenderer{
		workspace:   ws,
		raster:      ws.raster,
		placeholder: ws.placeholder,
	}
}

// Sync rebuilds the surface when the image, the view kind or the size
// changed, and otherwise pushes the latest state into it
func (ws *Workspace) Sync() {
	params := render.Params{
		Width:  float64(ws.size.Width),
		Height: float64(ws.size.Height),
		Kind:   ws.session.ViewState().Surface(),
	}
	if rec, ok := ws.session.Active(); ok {
		state := ws.session.State(rec.ID)
		params.ImageID = rec.ID
		params.Data = rec.Data
		params.Settings = state.Settings
		params.Transform = state.Transform
		params.Divider = ws.session.ViewState().Divider
	}

	if _, err := ws.manager.Sync(params); err != nil {
		ws.logger.WithField("error", err).Error("Failed to sync workspace")
	}

	if ws.placeholder != nil {
		if params.ImageID == "" {
			ws.placeholder.Show()
		} else {
			ws.placeholder.Hide()
		}
	}
	ws.refreshRaster()
}

// Update pushes settings, transform and divider changes without rebuilding
func (ws *Workspace) Update() {
	state := ws.session.ActiveState()
	ws.manager.Update(state.Settings, state.Transform, ws.session.ViewState().Divider)
	ws.refreshRaster()
}

// Destroy tears down the live surface
func (ws *Workspace) Destroy() {
	ws.manager.Destroy()
}

func (ws *Workspace) refreshRaster() {
	if ws.raster != nil {
		ws.raster.Refresh()
	}
}

func (ws *Workspace) resized(size fyne.Size) {
	if size == ws.size {
		return
	}
	ws.size = size
	ws.Sync()
}

func toPoint(pos fyne.Position) render.Point {
	return render.Point{X: float64(pos.X), Y: float64(pos.Y)}
}

// Mouse event handlers
func (ws *Workspace) MouseDown(event *desktop.MouseEvent) {
	if event.Button != desktop.MouseButtonPrimary {
		return
	}
	action := ws.router.Press(toPoint(event.Position), ws.manager.Layout(), ws.session.ViewState())
	ws.logger.WithFields(logrus.Fields{
		"action": action.String(),
		"x":      event.Position.X,
		"y":      event.Position.Y,
	}).Debug("Workspace press")
}

func (ws *Workspace) MouseUp(event *desktop.MouseEvent) {
	ws.router.Release()
}

func (ws *Workspace) Dragged(event *fyne.DragEvent) {
	ws.router.Move(toPoint(event.Position))
}

func (ws *Workspace) DragEnd() {
	ws.router.Release()
}

// Scrolled zooms; wheel down zooms out
func (ws *Workspace) Scrolled(event *fyne.ScrollEvent) {
	ws.router.Scroll(toPoint(event.Position), ws.manager.Layout(), -float64(event.Scrolled.DY))
}

func (ws *Workspace) Cursor() desktop.Cursor {
	if ws.manager.Layout().HasImage() {
		return desktop.PointerCursor
	}
	return desktop.DefaultCursor
}

type workspaceRenderer struct {
	workspace   *Workspace
	raster      *canvas.Raster
	placeholder *canvas.Text
}

func (r *workspaceRenderer) Layout(size fyne.Size) {
	r.raster.Resize(size)
	r.raster.Move(fyne.NewPos(0, 0))

	textSize := r.placeholder.MinSize()
	r.placeholder.Resize(textSize)
	r.placeholder.Move(fyne.NewPos((size.Width-textSize.Width)/2, (size.Height-textSize.Height)/2))

	r.workspace.resized(size)
}

func (r *workspaceRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 300)
}

func (r *workspaceRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.raster, r.placeholder}
}

func (r *workspaceRenderer) Refresh() {
	r.raster.Refresh()
	r.placeholder.Refresh()
}

func (r *workspaceRenderer) Destroy() {
	r.workspace.Destroy()
}
