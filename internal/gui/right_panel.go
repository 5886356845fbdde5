package gui

import (
	"fmt"
	"math"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"photo-retouch/internal/core"
	"photo-retouch/internal/metrics"
	"photo-retouch/internal/view"
)

type InfoPanel struct {
	container *container.Scroll
	logger    *logrus.Logger

	// Status section
	statusCard      *widget.Card
	stateLabel      *widget.Label
	lastActionLabel *widget.Label
	progressBar     *widget.ProgressBar

	// Image information section
	imageInfoCard *widget.Card
	nameLabel     *widget.Label
	formatLabel   *widget.Label
	viewLabel     *widget.Label
	zoomLabel     *widget.Label

	// Preview fidelity section
	fidelityCard *widget.Card
	fidelityRows *fyne.Container
	fidelityNote *widget.Label
}

func NewInfoPanel(logger *logrus.Logger) *InfoPanel {
	ip := &InfoPanel{
		logger: logger,
	}

	ip.createStatusSection()
	ip.createImageInfoSection()
	ip.createFidelitySection()

	ip.container = container.NewScroll(container.NewVBox(
		ip.statusCard,
		ip.imageInfoCard,
		ip.fidelityCard,
	))
	return ip
}

func (ip *InfoPanel) createStatusSection() {
	ip.stateLabel = widget.NewLabel("Ready")
	ip.lastActionLabel = widget.NewLabel("Application started")
	ip.lastActionLabel.Wrapping = fyne.TextWrapWord

	ip.progressBar = widget.NewProgressBar()
	ip.progressBar.Hide()

	ip.statusCard = widget.NewCard("STATUS", "", container.NewVBox(
		container.NewVBox(
			widget.NewLabelWithStyle("State:", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			ip.stateLabel,
		),
		widget.NewSeparator(),
		container.NewVBox(
			widget.NewLabelWithStyle("Last:", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			ip.lastActionLabel,
		),
		ip.progressBar,
	))
}

func (ip *InfoPanel) createImageInfoSection() {
	ip.nameLabel = widget.NewLabel("No image")
	ip.nameLabel.Truncation = fyne.TextTruncateEllipsis
	ip.formatLabel = widget.NewLabel("--")
	ip.viewLabel = widget.NewLabel(view.SurfaceSingle.String())
	ip.zoomLabel = widget.NewLabel("100%")

	ip.imageInfoCard = widget.NewCard("IMAGE INFORMATION", "", container.NewVBox(
		widget.NewForm(
			widget.NewFormItem("Name", ip.nameLabel),
			widget.NewFormItem("Format", ip.formatLabel),
			widget.NewFormItem("View", ip.viewLabel),
			widget.NewFormItem("Zoom", ip.zoomLabel),
		),
	))
}

func (ip *InfoPanel) createFidelitySection() {
	ip.fidelityRows = container.NewVBox()
	ip.fidelityNote = widget.NewLabel("Adjust an image to compare preview and export")
	ip.fidelityNote.Wrapping = fyne.TextWrapWord

	ip.fidelityCard = widget.NewCard("PREVIEW FIDELITY", "", container.NewVBox(
		ip.fidelityRows,
		ip.fidelityNote,
	))
}

// ShowImage updates the image section for the active record
func (ip *InfoPanel) ShowImage(rec core.ImageRecord, ok bool) {
	if !ok {
		ip.nameLabel.SetText("No image")
		ip.formatLabel.SetText("--")
		ip.ClearFidelity()
		return
	}
	ip.nameLabel.SetText(rec.DisplayName)
	ip.formatLabel.SetText(strings.ToUpper(rec.Format))
}

func (ip *InfoPanel) ShowView(state view.State) {
	text := state.Surface().String()
	if state.Trans {
		text = fmt.Sprintf("%s (%.0f%%)", text, state.Divider)
	}
	ip.viewLabel.SetText(text)
}

func (ip *InfoPanel) ShowZoom(percentage float64) {
	ip.zoomLabel.SetText(fmt.Sprintf("%.0f%%", percentage))
}

// UpdateFidelity shows how far the live preview drifts from the export. Each
// bar is full when the two renderings agree.
func (ip *InfoPanel) UpdateFidelity(scores []metrics.Score) {
	ip.fidelityRows.RemoveAll()
	fields := logrus.Fields{}

	for _, score := range scores {
		bar := widget.NewProgressBar()
		bar.SetValue(score.Closeness())

		ip.fidelityRows.Add(container.NewBorder(nil, nil,
			widget.NewLabelWithStyle(score.Name, fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			widget.NewLabel(formatScore(score)),
		))
		ip.fidelityRows.Add(bar)
		ip.fidelityRows.Add(widget.NewLabelWithStyle(score.Description, fyne.TextAlignLeading, fyne.TextStyle{Italic: true}))
		fields[score.Key] = score.Value
	}

	if len(scores) == 0 {
		ip.fidelityNote.SetText("Preview fidelity unavailable")
	} else {
		ip.fidelityNote.SetText("Live preview compared with the exported rendering")
	}
	ip.logger.WithFields(fields).Debug("Preview fidelity updated")
}

func (ip *InfoPanel) ClearFidelity() {
	ip.fidelityRows.RemoveAll()
	ip.fidelityNote.SetText("Adjust an image to compare preview and export")
}

func formatScore(score metrics.Score) string {
	if math.IsInf(score.Value, 1) {
		return "identical"
	}
	return fmt.Sprintf("%.2f", score.Value)
}

func (ip *InfoPanel) StartProgress() {
	ip.stateLabel.SetText("Exporting")
	ip.progressBar.SetValue(0)
	ip.progressBar.Show()
}

func (ip *InfoPanel) SetProgress(fraction float64) {
	ip.progressBar.SetValue(fraction)
}

func (ip *InfoPanel) StopProgress() {
	ip.progressBar.Hide()
	ip.stateLabel.SetText("Ready")
}

func (ip *InfoPanel) ShowMessage(message string) {
	ip.lastActionLabel.SetText(message)
}

func (ip *InfoPanel) ShowError(message string) {
	ip.stateLabel.SetText("Error")
	ip.lastActionLabel.SetText(message)
}

func (ip *InfoPanel) GetContainer() *container.Scroll {
	return ip.container
}
