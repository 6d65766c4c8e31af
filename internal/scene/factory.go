package scene

import "github.com/google/uuid"

// Default placeholder dimensions for freshly created shapes. The drag that
// follows creation is expected to stretch them to their real size.
const (
	defaultShapeSize  = 10
	defaultFill       = "#aabbcc"
	defaultFontSize   = 16
	defaultFontFamily = "Helvetica"
)

// New constructs a scene object of the given kind anchored at origin and
// assigns it a fresh unique object id. Unknown kinds return nil, which
// callers treat as a no-op rather than an error.
func New(kind Kind, origin Point) *Object {
	o := &Object{
		ID:      uuid.NewString(),
		Kind:    kind,
		Left:    origin.X,
		Top:     origin.Y,
		Fill:    defaultFill,
		Opacity: 1,
		Pending: true,
	}

	switch kind {
	case KindRect, KindTriangle:
		o.Width = defaultShapeSize
		o.Height = defaultShapeSize
	case KindCircle:
		o.Radius = defaultShapeSize / 2
	case KindLine:
		o.Fill = ""
		o.Stroke = defaultFill
		o.StrokeWidth = 2
		o.Points = []Point{origin, origin}
	case KindText:
		o.Text = "Text"
		o.Fill = "#000000"
		o.FontSize = defaultFontSize
		o.FontFamily = defaultFontFamily
	case KindImage:
		o.Fill = ""
	case KindPath:
		o.Fill = ""
		o.Stroke = defaultFill
		o.StrokeWidth = 2
		o.Points = []Point{origin}
	default:
		return nil
	}
	return o
}
