// Package export renders a one-shot PDF of the current scene. This is a
// compositing routine on top of the engine, not part of the sync path.
package export

import (
	"image/color"

	"github.com/jung-kurt/gofpdf"

	"github.com/SLorant/Carta-sub000/internal/brush"
	"github.com/SLorant/Carta-sub000/internal/scene"
)

// pdfScale maps scene units to millimeters on the page.
const pdfScale = 3.0

// PDF writes every scene object, bottom to top in render order, into an
// A4 landscape PDF at path. Image objects are outlined; their pixels live
// on the asset host, not in the scene. The export works from a snapshot so
// concurrent edits cannot shift geometry mid-page.
func PDF(path string, sc *scene.Scene) error {
	p := gofpdf.New("L", "mm", "A4", "")
	p.AddPage()
	p.SetFont("Helvetica", "", 12)

	for _, o := range sc.Snapshot() {
		drawObject(p, o)
	}
	return p.OutputFileAndClose(path)
}

func drawObject(p *gofpdf.Fpdf, o *scene.Object) {
	fill := o.Fill != ""
	if fill {
		r, g, b := rgb(brush.ParseColor(o.Fill))
		p.SetFillColor(r, g, b)
	}
	if o.Stroke != "" {
		r, g, b := rgb(brush.ParseColor(o.Stroke))
		p.SetDrawColor(r, g, b)
	} else {
		p.SetDrawColor(0, 0, 0)
	}
	p.SetLineWidth(mm(o.StrokeWidth) / 2)

	style := "D"
	if fill {
		style = "F"
		if o.Stroke != "" {
			style = "FD"
		}
	}

	switch o.Kind {
	case scene.KindRect:
		x, y, x2, y2 := o.Bounds()
		p.Rect(mm(x), mm(y), mm(x2-x), mm(y2-y), style)
	case scene.KindCircle:
		p.Circle(mm(o.Left+o.Radius), mm(o.Top+o.Radius), mm(o.Radius), style)
	case scene.KindTriangle:
		x, y, x2, y2 := o.Bounds()
		pts := []gofpdf.PointType{
			{X: mm((x + x2) / 2), Y: mm(y)},
			{X: mm(x2), Y: mm(y2)},
			{X: mm(x), Y: mm(y2)},
		}
		p.Polygon(pts, style)
	case scene.KindLine, scene.KindPath:
		for i := 1; i < len(o.Points); i++ {
			p.Line(mm(o.Points[i-1].X), mm(o.Points[i-1].Y),
				mm(o.Points[i].X), mm(o.Points[i].Y))
		}
	case scene.KindText:
		size := o.FontSize
		if size == 0 {
			size = 12
		}
		p.SetFont("Helvetica", "", size)
		if o.Fill != "" {
			r, g, b := rgb(brush.ParseColor(o.Fill))
			p.SetTextColor(r, g, b)
		}
		p.Text(mm(o.Left), mm(o.Top+size), o.Text)
	case scene.KindImage:
		p.Rect(mm(o.Left), mm(o.Top), mm(o.Width), mm(o.Height), "D")
	}
}

func mm(v float64) float64 {
	return v / pdfScale
}

func rgb(c color.Color) (int, int, int) {
	r, g, b, _ := c.RGBA()
	return int(r >> 8), int(g >> 8), int(b >> 8)
}
