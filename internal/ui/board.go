package ui

import (
	"image"
	"image/color"
	"log"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"github.com/SLorant/Carta-sub000/internal/assets"
	"github.com/SLorant/Carta-sub000/internal/brush"
	"github.com/SLorant/Carta-sub000/internal/gesture"
	"github.com/SLorant/Carta-sub000/internal/scene"
	"github.com/SLorant/Carta-sub000/internal/viewport"
)

// BoardWidget is the render surface: it feeds pointer events into the
// gesture handler and rebuilds its canvas objects from the scene on every
// refresh, positioned through the viewport transform.
type BoardWidget struct {
	widget.BaseWidget

	sc      *scene.Scene
	view    *viewport.Viewport
	handler *gesture.Handler
	loader  assets.Loader

	imgMu      sync.Mutex
	imgCache   map[string]image.Image
	imgLoading map[string]bool
}

var _ fyne.Widget = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)
var _ desktop.Mouseable = (*BoardWidget)(nil)
var _ desktop.Hoverable = (*BoardWidget)(nil)

func NewBoardWidget(sc *scene.Scene, view *viewport.Viewport, handler *gesture.Handler, loader assets.Loader) *BoardWidget {
	b := &BoardWidget{
		sc:         sc,
		view:       view,
		handler:    handler,
		loader:     loader,
		imgCache:   make(map[string]image.Image),
		imgLoading: make(map[string]bool),
	}
	b.ExtendBaseWidget(b)
	handler.OnChange = func() { fyne.Do(b.Refresh) }
	return b
}

func toPoint(p fyne.Position) scene.Point {
	return scene.Point{X: float64(p.X), Y: float64(p.Y)}
}

func toButton(b desktop.MouseButton) gesture.Button {
	switch b {
	case desktop.MouseButtonTertiary:
		return gesture.ButtonMiddle
	case desktop.MouseButtonSecondary:
		return gesture.ButtonRight
	default:
		return gesture.ButtonLeft
	}
}

func (b *BoardWidget) MouseDown(e *desktop.MouseEvent) {
	b.handler.MouseDown(toPoint(e.Position), toButton(e.Button))
}

func (b *BoardWidget) MouseUp(e *desktop.MouseEvent) {
	b.handler.MouseUp(toPoint(e.Position), toButton(e.Button))
}

func (b *BoardWidget) MouseMoved(e *desktop.MouseEvent) {
	b.handler.MouseMove(toPoint(e.Position))
}

func (b *BoardWidget) Dragged(e *fyne.DragEvent) {
	b.handler.MouseMove(toPoint(e.Position))
}

func (b *BoardWidget) DragEnd()                    {}
func (b *BoardWidget) MouseIn(*desktop.MouseEvent) {}
func (b *BoardWidget) MouseOut()                   {}

// Scrolled zooms at the cursor, one step per wheel notch.
func (b *BoardWidget) Scrolled(e *fyne.ScrollEvent) {
	notches := 1.0
	if e.Scrolled.DY < 0 {
		notches = -1.0
	}
	b.view.WheelZoom(toPoint(e.Position), notches)
	b.Refresh()
}

// Resize keeps the viewport informed of the surface dimensions.
func (b *BoardWidget) Resize(size fyne.Size) {
	b.BaseWidget.Resize(size)
	b.view.Resize(float64(size.Width), float64(size.Height))
}

func (b *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	r := &boardRenderer{board: b}
	r.background = canvas.NewRectangle(color.White)
	return r
}

// imageFor returns the decoded pixels for an image object, kicking off an
// async load on first sight. Until the load lands a placeholder is drawn.
func (b *BoardWidget) imageFor(src string) image.Image {
	b.imgMu.Lock()
	defer b.imgMu.Unlock()
	if img, ok := b.imgCache[src]; ok {
		return img
	}
	if b.imgLoading[src] || b.loader == nil {
		return nil
	}
	b.imgLoading[src] = true
	go func() {
		img, err := b.loader.Load(src)
		b.imgMu.Lock()
		delete(b.imgLoading, src)
		if err == nil {
			b.imgCache[src] = img
		}
		b.imgMu.Unlock()
		if err != nil {
			log.Printf("[ui] image %q failed to load: %v", src, err)
			return
		}
		fyne.Do(b.Refresh)
	}()
	return nil
}

type boardRenderer struct {
	board      *BoardWidget
	background *canvas.Rectangle
}

// Objects rebuilds the draw list from a scene snapshot. The scene is kept
// z-sorted by the engine, so slice order is paint order. The snapshot is a
// set of clones: the engine goroutines keep mutating the live objects
// while fyne walks this list.
func (r *boardRenderer) Objects() []fyne.CanvasObject {
	b := r.board
	out := []fyne.CanvasObject{r.background}
	for _, o := range b.sc.Snapshot() {
		out = append(out, r.renderObject(o)...)
	}
	if active := b.sc.ActiveClone(); active != nil {
		out = append(out, r.selectionOutline(active))
	}
	return out
}

func (r *boardRenderer) renderObject(o *scene.Object) []fyne.CanvasObject {
	b := r.board
	z := b.view.Zoom()

	switch o.Kind {
	case scene.KindRect:
		minX, minY, maxX, maxY := o.Bounds()
		rect := canvas.NewRectangle(brush.ParseColor(o.Fill))
		if o.Stroke != "" {
			rect.StrokeColor = brush.ParseColor(o.Stroke)
			rect.StrokeWidth = float32(o.StrokeWidth * z)
		}
		r.place(rect, minX, minY, (maxX-minX)*z, (maxY-minY)*z)
		return []fyne.CanvasObject{rect}

	case scene.KindCircle:
		c := canvas.NewCircle(brush.ParseColor(o.Fill))
		if o.Stroke != "" {
			c.StrokeColor = brush.ParseColor(o.Stroke)
			c.StrokeWidth = float32(o.StrokeWidth * z)
		}
		r.place(c, o.Left, o.Top, 2*o.Radius*z, 2*o.Radius*z)
		return []fyne.CanvasObject{c}

	case scene.KindTriangle:
		minX, minY, maxX, maxY := o.Bounds()
		col := brush.ParseColor(o.Fill)
		apex := scene.Point{X: (minX + maxX) / 2, Y: minY}
		bl := scene.Point{X: minX, Y: maxY}
		br := scene.Point{X: maxX, Y: maxY}
		return []fyne.CanvasObject{
			r.segment(apex, br, col, 2*z),
			r.segment(br, bl, col, 2*z),
			r.segment(bl, apex, col, 2*z),
		}

	case scene.KindLine, scene.KindPath:
		col := brush.ParseColor(o.Stroke)
		var segs []fyne.CanvasObject
		for i := 1; i < len(o.Points); i++ {
			segs = append(segs, r.segment(o.Points[i-1], o.Points[i], col, o.StrokeWidth*z))
		}
		return segs

	case scene.KindText:
		t := canvas.NewText(o.Text, brush.ParseColor(o.Fill))
		t.TextSize = float32(o.FontSize * z)
		t.Move(r.screen(o.Left, o.Top))
		return []fyne.CanvasObject{t}

	case scene.KindImage:
		minX, minY, maxX, maxY := o.Bounds()
		if img := b.imageFor(o.Src); img != nil {
			ci := canvas.NewImageFromImage(img)
			ci.FillMode = canvas.ImageFillStretch
			r.place(ci, minX, minY, (maxX-minX)*z, (maxY-minY)*z)
			return []fyne.CanvasObject{ci}
		}
		ph := canvas.NewRectangle(color.Transparent)
		ph.StrokeColor = color.Gray{Y: 160}
		ph.StrokeWidth = 1
		r.place(ph, minX, minY, (maxX-minX)*z, (maxY-minY)*z)
		return []fyne.CanvasObject{ph}
	}
	return nil
}

func (r *boardRenderer) segment(p1, p2 scene.Point, col color.Color, width float64) *canvas.Line {
	l := canvas.NewLine(col)
	l.StrokeWidth = float32(width)
	l.Position1 = r.screen(p1.X, p1.Y)
	l.Position2 = r.screen(p2.X, p2.Y)
	return l
}

func (r *boardRenderer) selectionOutline(o *scene.Object) fyne.CanvasObject {
	minX, minY, maxX, maxY := o.Bounds()
	z := r.board.view.Zoom()
	outline := canvas.NewRectangle(color.Transparent)
	outline.StrokeColor = color.NRGBA{R: 60, G: 120, B: 255, A: 255}
	outline.StrokeWidth = 1.5
	pos := r.screen(minX, minY)
	outline.Move(fyne.NewPos(pos.X-2, pos.Y-2))
	outline.Resize(fyne.NewSize(float32((maxX-minX)*z)+4, float32((maxY-minY)*z)+4))
	return outline
}

func (r *boardRenderer) screen(x, y float64) fyne.Position {
	p := r.board.view.ToScreen(scene.Point{X: x, Y: y})
	return fyne.NewPos(float32(p.X), float32(p.Y))
}

func (r *boardRenderer) place(obj fyne.CanvasObject, x, y, w, h float64) {
	obj.Move(r.screen(x, y))
	obj.Resize(fyne.NewSize(float32(w), float32(h)))
}

func (r *boardRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)
}

func (r *boardRenderer) MinSize() fyne.Size {
	return fyne.NewSize(300, 300)
}

func (r *boardRenderer) Refresh() {
	canvas.Refresh(r.board)
}

func (r *boardRenderer) Destroy() {}
