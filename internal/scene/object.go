package scene

import "math"

// Kind identifies the variant of a scene object.
type Kind string

const (
	KindRect     Kind = "rect"
	KindCircle   Kind = "circle"
	KindTriangle Kind = "triangle"
	KindLine     Kind = "line"
	KindText     Kind = "text"
	KindImage    Kind = "image"
	KindPath     Kind = "path"
)

// ColorLayerID is the reserved object id shared by every paint-layer member.
// Members are told apart by their individual storage ids.
const ColorLayerID = "color-layer"

// BasePaintZ is the bottom of the reserved z band for paint-layer strokes.
// Everything in the band sorts below ordinary objects, which start at 0.
const BasePaintZ = -1000

// Point is a position in scene coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Object is one renderable element of the scene. It is also the value
// serialized into the replicated map, so every field that must survive a
// round trip between sessions carries a json tag.
type Object struct {
	ID          string  `json:"objectId"`
	StorageID   string  `json:"storageId,omitempty"`
	Kind        Kind    `json:"type"`
	Left        float64 `json:"left"`
	Top         float64 `json:"top"`
	Width       float64 `json:"width,omitempty"`
	Height      float64 `json:"height,omitempty"`
	Radius      float64 `json:"radius,omitempty"`
	Points      []Point `json:"points,omitempty"`
	Fill        string  `json:"fill,omitempty"`
	Stroke      string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
	Opacity     float64 `json:"opacity,omitempty"`
	Angle       float64 `json:"angle,omitempty"`
	Text        string  `json:"text,omitempty"`
	FontSize    float64 `json:"fontSize,omitempty"`
	FontFamily  string  `json:"fontFamily,omitempty"`
	FontWeight  string  `json:"fontWeight,omitempty"`
	Src         string  `json:"src,omitempty"`
	ZIndex      int     `json:"zIndex"`
	PremadeName string  `json:"premadeName,omitempty"`

	// Pending marks an object created locally but not yet written to
	// storage (a shape mid-drag). Reconcile must not remove it just
	// because no remote entry exists for it yet.
	Pending bool `json:"-"`
}

// StorageKey returns the key the object is stored under in the replicated
// map: the storage id when one is set, otherwise the object id.
func (o *Object) StorageKey() string {
	if o.StorageID != "" {
		return o.StorageID
	}
	return o.ID
}

// IsPaintLayer reports whether the object belongs to the paint layer.
func (o *Object) IsPaintLayer() bool {
	return o.ID == ColorLayerID
}

// Selectable reports whether the object may become the active selection.
// Paint-layer members never are.
func (o *Object) Selectable() bool {
	return !o.IsPaintLayer()
}

// Clone returns a deep copy of the object.
func (o *Object) Clone() *Object {
	c := *o
	if o.Points != nil {
		c.Points = make([]Point, len(o.Points))
		copy(c.Points, o.Points)
	}
	return &c
}

// CopyMutableFrom overwrites every mutable field from r, leaving the
// identity fields (object id, storage id) untouched. Used by reconcile
// when a remote payload updates an existing local object.
func (o *Object) CopyMutableFrom(r *Object) {
	o.Kind = r.Kind
	o.Left = r.Left
	o.Top = r.Top
	o.Width = r.Width
	o.Height = r.Height
	o.Radius = r.Radius
	if r.Points != nil {
		o.Points = make([]Point, len(r.Points))
		copy(o.Points, r.Points)
	} else {
		o.Points = nil
	}
	o.Fill = r.Fill
	o.Stroke = r.Stroke
	o.StrokeWidth = r.StrokeWidth
	o.Opacity = r.Opacity
	o.Angle = r.Angle
	o.Text = r.Text
	o.FontSize = r.FontSize
	o.FontFamily = r.FontFamily
	o.FontWeight = r.FontWeight
	o.Src = r.Src
	o.ZIndex = r.ZIndex
	if r.PremadeName != "" {
		o.PremadeName = r.PremadeName
	}
}

// Bounds returns the axis-aligned bounding box of the object in scene
// coordinates. Negative widths and heights (drag-left/up) are normalized.
func (o *Object) Bounds() (minX, minY, maxX, maxY float64) {
	switch o.Kind {
	case KindCircle:
		return o.Left, o.Top, o.Left + 2*o.Radius, o.Top + 2*o.Radius
	case KindLine, KindPath:
		if len(o.Points) == 0 {
			return o.Left, o.Top, o.Left, o.Top
		}
		minX, minY = o.Points[0].X, o.Points[0].Y
		maxX, maxY = minX, minY
		for _, p := range o.Points[1:] {
			minX = math.Min(minX, p.X)
			minY = math.Min(minY, p.Y)
			maxX = math.Max(maxX, p.X)
			maxY = math.Max(maxY, p.Y)
		}
		return minX, minY, maxX, maxY
	case KindText:
		w := o.Width
		h := o.FontSize
		if w == 0 {
			w = float64(len(o.Text)) * o.FontSize * 0.6
		}
		return o.Left, o.Top, o.Left + w, o.Top + h
	default:
		x1, x2 := o.Left, o.Left+o.Width
		if x2 < x1 {
			x1, x2 = x2, x1
		}
		y1, y2 := o.Top, o.Top+o.Height
		if y2 < y1 {
			y1, y2 = y2, y1
		}
		return x1, y1, x2, y2
	}
}

// Contains reports whether p falls inside the object's bounding box, with
// a small slop for thin objects such as lines.
func (o *Object) Contains(p Point) bool {
	minX, minY, maxX, maxY := o.Bounds()
	slop := 0.0
	if o.Kind == KindLine || o.Kind == KindPath {
		slop = math.Max(o.StrokeWidth, 4)
	}
	return p.X >= minX-slop && p.X <= maxX+slop &&
		p.Y >= minY-slop && p.Y <= maxY+slop
}
