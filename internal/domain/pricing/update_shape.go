package pricing

// UpdateShape is the kind of write a request performs
type UpdateShape string

const (
	// ShapePerCell carries a context on every item
	ShapePerCell UpdateShape = "per_cell"
	// ShapeSinglePoint fixes zone, segment and a single product
	ShapeSinglePoint UpdateShape = "single_point"
	ShapeZone        UpdateShape = "zone"
	ShapeSegment     UpdateShape = "segment"
	ShapeZoneSegment UpdateShape = "zone_segment"
	ShapeMaster      UpdateShape = "master"
)

// String returns the string representation of the shape
func (s UpdateShape) String() string {
	return string(s)
}

// ClassifyUpdate decides the shape of a request. perItem wins over the
// request-level context.
func ClassifyUpdate(ctx Context, itemCount int, perItem bool) UpdateShape {
	if perItem {
		return ShapePerCell
	}
	switch ctx.Scope() {
	case ScopeZoneSegment:
		if itemCount == 1 {
			return ShapeSinglePoint
		}
		return ShapeZoneSegment
	case ScopeZone:
		return ShapeZone
	case ScopeSegment:
		return ShapeSegment
	default:
		return ShapeMaster
	}
}
