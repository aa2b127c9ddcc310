package domain

// Point is a geographic coordinate in decimal degrees.
type Point struct {
	Lat float64
	Lng float64
}

// ServiceAreaKind distinguishes circular from polygonal service areas.
type ServiceAreaKind string

const (
	ServiceAreaCircle  ServiceAreaKind = "CIRCLE"
	ServiceAreaPolygon ServiceAreaKind = "POLYGON"
)

// ServiceArea is a geofenced region belonging to a city. A circle is defined
// by Center and RadiusKm; a polygon by its ordered Vertices.
type ServiceArea struct {
	ID       string
	CityID   string
	Kind     ServiceAreaKind
	Center   Point
	RadiusKm float64
	Vertices []Point
	Active   bool
}

// City groups service areas and carries a fallback center/radius used when a
// city has no active service areas.
type City struct {
	ID              string
	Name            string
	Center          Point
	HasCenter       bool
	DefaultRadiusKm float64
}
