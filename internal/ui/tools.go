package ui

import (
	"image/color"
	"log"
	"sort"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/SLorant/Carta-sub000/internal/assets"
	"github.com/SLorant/Carta-sub000/internal/brush"
	"github.com/SLorant/Carta-sub000/internal/export"
	"github.com/SLorant/Carta-sub000/internal/gesture"
	"github.com/SLorant/Carta-sub000/internal/scene"
	"github.com/SLorant/Carta-sub000/internal/storage"
	"github.com/SLorant/Carta-sub000/internal/syncer"
	"github.com/SLorant/Carta-sub000/internal/viewport"
)

// Controls bundles everything the toolbar drives.
type Controls struct {
	Window   fyne.Window
	Board    *BoardWidget
	Scene    *scene.Scene
	Handler  *gesture.Handler
	Brush    *brush.Brush
	Store    *storage.MemoryStore
	Syncer   *syncer.Syncer
	View     *viewport.Viewport
	Placer   *assets.Placer
	Premades map[string]string // display name -> image source
}

// --- Custom widget for color swatches ---

type colorSwatch struct {
	widget.BaseWidget
	Color    color.Color
	Hex      string
	OnTapped func(hex string)
}

func newColorSwatch(hex string, tapped func(hex string)) *colorSwatch {
	s := &colorSwatch{Color: brush.ParseColor(hex), Hex: hex, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(s.Color)
	rect.SetMinSize(fyne.NewSize(28, 28))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Hex)
	}
}

// --- The main toolbar ---

func NewToolbar(c Controls) fyne.CanvasObject {
	// Toolbar-owned state, not package globals.
	currentHex := "#000000"
	currentWidth := 4.0
	currentOpacity := 1.0
	clip := ""

	applyBrush := func() {
		c.Handler.UpdateBrush(brush.Settings{
			Width:   currentWidth,
			Color:   currentHex,
			Opacity: currentOpacity,
		})
	}

	toolNames := map[string]gesture.Tool{
		"Select":    gesture.ToolSelect,
		"Rectangle": gesture.ToolRect,
		"Circle":    gesture.ToolCircle,
		"Triangle":  gesture.ToolTriangle,
		"Line":      gesture.ToolLine,
		"Text":      gesture.ToolText,
		"Freeform":  gesture.ToolFreeform,
		"Paint":     gesture.ToolPaint,
	}
	toolSelect := widget.NewSelect(
		[]string{"Select", "Rectangle", "Circle", "Triangle", "Line", "Text", "Freeform", "Paint"},
		func(name string) {
			c.Handler.SetTool(toolNames[name])
			applyBrush()
		},
	)
	toolSelect.SetSelected("Select")

	// Tapping a swatch recolors the selection (and syncs it), or feeds
	// the brush when nothing is selected.
	onColorTapped := func(hex string) {
		currentHex = hex
		if active := c.Scene.Active(); active != nil {
			c.Scene.Update(func() { active.Fill = hex })
			c.Syncer.SyncOne(active)
			c.Board.Refresh()
			return
		}
		applyBrush()
	}
	colorBox := container.NewHBox(
		newColorSwatch("#000000", onColorTapped),
		newColorSwatch("#e53935", onColorTapped),
		newColorSwatch("#43a047", onColorTapped),
		newColorSwatch("#1e88e5", onColorTapped),
		newColorSwatch("#fdd835", onColorTapped),
		newColorSwatch("#ffffff", onColorTapped),
	)

	widthSlider := widget.NewSlider(1, 50)
	widthSlider.SetValue(currentWidth)
	widthSlider.OnChanged = func(v float64) {
		currentWidth = v
		applyBrush()
	}

	opacitySlider := widget.NewSlider(0.1, 1)
	opacitySlider.Step = 0.05
	opacitySlider.SetValue(1)
	opacitySlider.OnChanged = func(v float64) {
		currentOpacity = v
		applyBrush()
	}

	var premadeNames []string
	for name := range c.Premades {
		premadeNames = append(premadeNames, name)
	}
	sort.Strings(premadeNames)
	premadeSelect := widget.NewSelect(premadeNames, func(name string) {
		c.Placer.Arm(name, c.Premades[name])
		c.Handler.SetTool(gesture.ToolPremade)
	})
	premadeSelect.PlaceHolder = "Stamp..."

	actions := widget.NewToolbar(
		widget.NewToolbarAction(theme.ContentUndoIcon(), func() { c.Store.Undo() }),
		widget.NewToolbarAction(theme.ContentRedoIcon(), func() { c.Store.Redo() }),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentCopyIcon(), func() {
			if payload := c.Handler.CopySelection(); payload != "" {
				clip = payload
			}
		}),
		widget.NewToolbarAction(theme.ContentPasteIcon(), func() { c.Handler.Paste(clip) }),
		widget.NewToolbarAction(theme.DeleteIcon(), func() { c.Handler.DeleteSelection() }),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ZoomInIcon(), func() { c.View.ZoomIn(); c.Board.Refresh() }),
		widget.NewToolbarAction(theme.ZoomOutIcon(), func() { c.View.ZoomOut(); c.Board.Refresh() }),
		widget.NewToolbarAction(theme.ZoomFitIcon(), func() { c.View.Reset(); c.Board.Refresh() }),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), func() { saveBoard(c) }),
		widget.NewToolbarAction(theme.FolderOpenIcon(), func() { loadBoard(c) }),
		widget.NewToolbarAction(theme.DocumentPrintIcon(), func() { exportBoard(c) }),
		widget.NewToolbarAction(theme.ContentClearIcon(), func() { c.Syncer.DeleteAll() }),
	)

	return container.NewHBox(
		widget.NewLabel("Tool:"),
		toolSelect,
		premadeSelect,
		widget.NewSeparator(),
		colorBox,
		widget.NewSeparator(),
		widget.NewLabel("Size:"),
		container.New(layout.NewGridWrapLayout(fyne.NewSize(120, 35)), widthSlider),
		widget.NewLabel("Opacity:"),
		container.New(layout.NewGridWrapLayout(fyne.NewSize(100, 35)), opacitySlider),
		widget.NewSeparator(),
		actions,
		layout.NewSpacer(),
	)
}

func saveBoard(c Controls) {
	dialog.ShowFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		defer writer.Close()
		if err := storage.Save(writer, c.Store); err != nil {
			log.Printf("[ui] save failed: %v", err)
			dialog.ShowError(err, c.Window)
		}
	}, c.Window)
}

func loadBoard(c Controls) {
	dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		defer reader.Close()
		if err := storage.Load(reader, c.Store); err != nil {
			log.Printf("[ui] load failed: %v", err)
			dialog.ShowError(err, c.Window)
		}
	}, c.Window)
}

func exportBoard(c Controls) {
	dialog.ShowFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()
		if err := export.PDF(path, c.Scene); err != nil {
			log.Printf("[ui] export failed: %v", err)
			dialog.ShowError(err, c.Window)
		}
	}, c.Window)
}
