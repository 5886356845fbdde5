// Image selector list with thumbnails
package gui

import (
	"context"
	"image"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"photo-retouch/internal/session"
)

const thumbnailDisplaySize = 56

// ImageSelector lists the uploaded images. Selecting a row activates it; the
// trash button removes it.
type ImageSelector struct {
	session *session.Session
	logger  *logrus.Logger

	container *fyne.Container
	list      *widget.List
	empty     *widget.Label
	uploadBtn *widget.Button

	thumbs []session.Thumbnail

	onUpload func()
}

func NewImageSelector(sess *session.Session, logger *logrus.Logger) *ImageSelector {
	selector := &ImageSelector{
		session: sess,
		logger:  logger,
	}

	selector.initializeUI()
	return selector
}

func (is *ImageSelector) initializeUI() {
	is.list = widget.NewList(
		func() int {
			return len(is.thumbs)
		},
		func() fyne.CanvasObject {
			img := canvas.NewImageFromImage(image.NewNRGBA(image.Rect(0, 0, 1, 1)))
			img.FillMode = canvas.ImageFillContain
			img.SetMinSize(fyne.NewSize(thumbnailDisplaySize, thumbnailDisplaySize))

			name := widget.NewLabel("image")
			name.Truncation = fyne.TextTruncateEllipsis
			edited := widget.NewLabel("")
			remove := widget.NewButtonWithIcon("", theme.DeleteIcon(), nil)

			return container.NewBorder(nil, nil, img, remove, container.NewVBox(name, edited))
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id < 0 || id >= len(is.thumbs) {
				return
			}
			thumb := is.thumbs[id]

			row := obj.(*fyne.Container)
			text := row.Objects[0].(*fyne.Container)
			img := row.Objects[1].(*canvas.Image)
			remove := row.Objects[2].(*widget.Button)

			text.Objects[0].(*widget.Label).SetText(thumb.Name)
			if thumb.Edited {
				text.Objects[1].(*widget.Label).SetText("edited")
			} else {
				text.Objects[1].(*widget.Label).SetText("")
			}

			if thumb.Image != nil {
				img.Image = thumb.Image
			}
			img.Refresh()

			remove.OnTapped = func() {
				if err := is.session.Remove(thumb.ID); err != nil {
					is.logger.WithFields(logrus.Fields{
						"image": thumb.ID,
						"error": err,
					}).Error("Failed to remove image")
				}
			}
		},
	)

	is.list.OnSelected = func(id widget.ListItemID) {
		if id < 0 || id >= len(is.thumbs) {
			return
		}
		if err := is.session.Select(is.thumbs[id].ID); err != nil {
			is.logger.WithField("error", err).Error("Failed to select image")
		}
	}

	is.empty = widget.NewLabel("No images yet\n" +
		strings.Join(is.session.Loader().GetSupportedFormats(), ", "))
	is.empty.Alignment = fyne.TextAlignCenter
	is.empty.Wrapping = fyne.TextWrapWord

	is.uploadBtn = widget.NewButtonWithIcon("UPLOAD IMAGES", theme.FolderOpenIcon(), func() {
		if is.onUpload != nil {
			is.onUpload()
		}
	})
	is.uploadBtn.Importance = widget.HighImportance

	is.container = container.NewBorder(
		container.NewVBox(
			widget.NewLabelWithStyle("IMAGES", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			is.uploadBtn,
			widget.NewSeparator(),
		),
		nil, nil, nil,
		container.NewStack(is.list, is.empty),
	)
}

// Refresh reloads the thumbnails off the UI thread and redraws the list
func (is *ImageSelector) Refresh() {
	go func() {
		thumbs := is.session.Thumbnails(context.Background())
		fyne.Do(func() {
			is.setThumbnails(thumbs)
		})
	}()
}

func (is *ImageSelector) setThumbnails(thumbs []session.Thumbnail) {
	is.thumbs = thumbs
	is.list.Refresh()

	if len(thumbs) == 0 {
		is.empty.Show()
		is.list.UnselectAll()
		return
	}
	is.empty.Hide()

	for i, thumb := range thumbs {
		if thumb.Active {
			is.list.Select(i)
			break
		}
	}
}

func (is *ImageSelector) GetContainer() fyne.CanvasObject {
	return is.container
}

func (is *ImageSelector) SetCallbacks(onUpload func()) {
	is.onUpload = onUpload
}
