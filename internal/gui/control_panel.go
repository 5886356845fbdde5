// Adjustment slider panels (basic, color, effects)
package gui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"photo-retouch/internal/core"
)

// AdjustmentPanel is one group of sliders. Every change emits a delta that
// holds the panel's own fields only.
type AdjustmentPanel struct {
	title  string
	fields []core.Field

	card    *widget.Card
	sliders map[core.Field]*widget.Slider
	values  map[core.Field]*widget.Label

	updating bool
	enabled  bool

	onChanged func(core.Delta)
}

func NewBasicPanel() *AdjustmentPanel {
	return NewAdjustmentPanel("BASIC",
		core.FieldExposure, core.FieldHighlights, core.FieldShadows, core.FieldWhites, core.FieldBlacks)
}

func NewColorPanel() *AdjustmentPanel {
	return NewAdjustmentPanel("COLOR",
		core.FieldTemperature, core.FieldTint, core.FieldSaturation)
}

func NewEffectsPanel() *AdjustmentPanel {
	return NewAdjustmentPanel("EFFECTS",
		core.FieldTexture, core.FieldClarity, core.FieldGrain)
}

func NewAdjustmentPanel(title string, fields ...core.Field) *AdjustmentPanel {
	panel := &AdjustmentPanel{
		title:   title,
		fields:  fields,
		sliders: make(map[core.Field]*widget.Slider),
		values:  make(map[core.Field]*widget.Label),
	}

	panel.initializeUI()
	return panel
}

func (ap *AdjustmentPanel) initializeUI() {
	rows := container.NewVBox()
	for _, field := range ap.fields {
		field := field
		lo, hi := field.Domain()

		slider := widget.NewSlider(lo, hi)
		slider.Step = 1
		slider.SetValue(0)

		valueLabel := widget.NewLabel(formatValue(0))
		valueLabel.Alignment = fyne.TextAlignTrailing

		slider.OnChanged = func(value float64) {
			valueLabel.SetText(formatValue(value))
			if ap.updating {
				return
			}
			ap.emit()
		}

		ap.sliders[field] = slider
		ap.values[field] = valueLabel

		header := container.NewBorder(nil, nil,
			widget.NewLabelWithStyle(field.Label(), fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			valueLabel,
		)
		rows.Add(container.NewVBox(header, slider))
	}

	ap.card = widget.NewCard(ap.title, "", rows)
	ap.Disable()
}

func (ap *AdjustmentPanel) emit() {
	if ap.onChanged == nil {
		return
	}
	delta := make(core.Delta, len(ap.fields))
	for _, field := range ap.fields {
		delta[field] = ap.sliders[field].Value
	}
	ap.onChanged(delta)
}

// SetSettings shows settings without emitting a delta
func (ap *AdjustmentPanel) SetSettings(settings core.Settings) {
	ap.updating = true
	defer func() { ap.updating = false }()

	for _, field := range ap.fields {
		ap.sliders[field].SetValue(settings.Get(field))
	}
}

func (ap *AdjustmentPanel) Enable() {
	ap.enabled = true
	for _, slider := range ap.sliders {
		slider.Enable()
	}
}

func (ap *AdjustmentPanel) Disable() {
	ap.enabled = false
	for _, slider := range ap.sliders {
		slider.Disable()
	}
}

func (ap *AdjustmentPanel) GetContainer() fyne.CanvasObject {
	return ap.card
}

func (ap *AdjustmentPanel) SetCallbacks(onChanged func(core.Delta)) {
	ap.onChanged = onChanged
}

func formatValue(v float64) string {
	return fmt.Sprintf("%+.0f", v)
}
