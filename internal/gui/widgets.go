package gui

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

const noImage = "No image uploaded"

// ImageDisplay is a custom widget for previewing the uploaded image
type ImageDisplay struct {
	widget.BaseWidget

	container   *fyne.Container
	imageCanvas *canvas.Image
	imageLabel  *widget.Label

	currentImage string
}

// NewImageDisplay creates a new image display widget
func NewImageDisplay() *ImageDisplay {
	d := &ImageDisplay{}

	d.imageCanvas = canvas.NewImageFromResource(nil)
	d.imageCanvas.FillMode = canvas.ImageFillContain
	d.imageCanvas.SetMinSize(fyne.NewSize(400, 300))

	d.imageLabel = widget.NewLabel(noImage)
	d.imageLabel.Alignment = fyne.TextAlignCenter

	d.container = container.NewBorder(
		nil,
		d.imageLabel,
		nil, nil,
		d.imageCanvas,
	)

	d.ExtendBaseWidget(d)
	return d
}

// CreateRenderer implements fyne.Widget
func (d *ImageDisplay) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(d.container)
}

// SetImage shows the image at imagePath scaled into the widget. An empty
// path clears the preview.
func (d *ImageDisplay) SetImage(imagePath string) {
	if imagePath == "" {
		d.Clear()
		return
	}

	img, format, err := decodePreview(imagePath)
	if err != nil {
		d.imageLabel.SetText(fmt.Sprintf("Error loading image: %v", err))
		return
	}

	d.currentImage = imagePath
	d.imageCanvas.Image = img
	d.imageCanvas.Refresh()

	b := img.Bounds()
	d.imageLabel.SetText(fmt.Sprintf("%s (%s, %dx%d)", filepath.Base(imagePath), format, b.Dx(), b.Dy()))
}

func decodePreview(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	return image.Decode(f)
}

// CurrentImage returns the path of the shown image
func (d *ImageDisplay) CurrentImage() string { return d.currentImage }

// Clear clears the display
func (d *ImageDisplay) Clear() {
	d.currentImage = ""
	d.imageCanvas.Image = nil
	d.imageCanvas.Refresh()
	d.imageLabel.SetText(noImage)
}

// SetLoading shows a loading status
func (d *ImageDisplay) SetLoading(path string) {
	d.imageLabel.SetText(fmt.Sprintf("Loading %s...", filepath.Base(path)))
}
