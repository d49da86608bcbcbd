package trip

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/paulmach/orb"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/svg"
)

// categoryColors assigns each category a fill color for hull rendering,
// matching the map UI palette.
var categoryColors = map[Category]color.RGBA{
	CategoryFoodDrink:      {R: 220, G: 60, B: 60, A: 255},
	CategoryTransportation: {R: 60, G: 100, B: 220, A: 255},
	CategoryEntertainment:  {R: 150, G: 70, B: 200, A: 255},
	CategoryHealth:         {R: 50, G: 170, B: 90, A: 255},
	CategoryShop:           {R: 230, G: 150, B: 40, A: 255},
	CategoryOthers:         {R: 120, G: 120, B: 120, A: 255},
}

// OverviewRenderer draws cluster hulls, a tour polyline, and hotel and
// stop markers as a vector overview of the study area.
type OverviewRenderer struct {
	Projection *Projection
	Scale      float64 // canvas units per projected meter
	Padding    float64 // padding in canvas units

	Clusters []ClusterAssignment
	Tour     *TourResult
	Hotel    *Hotel
	Stops    []Attraction
}

// NewOverviewRenderer creates a renderer anchored at origin with
// default scale and padding.
func NewOverviewRenderer(origin orb.Point) *OverviewRenderer {
	return &OverviewRenderer{
		Projection: NewProjection(origin),
		Scale:      0.1,
		Padding:    20.0,
	}
}

// canvasRenderer is the subset of the canvas renderer backends this
// renderer needs.
type canvasRenderer interface {
	RenderPath(path *canvas.Path, style canvas.Style, m canvas.Matrix)
}

// RenderToSVG writes the overview as an SVG to the provided writer.
func (r *OverviewRenderer) RenderToSVG(w io.Writer) error {
	minX, minY, maxX, maxY, ok := r.bounds()
	if !ok {
		return fmt.Errorf("render overview: nothing to draw")
	}

	width := (maxX-minX)*r.Scale + 2*r.Padding
	height := (maxY-minY)*r.Scale + 2*r.Padding

	svgRenderer := svg.New(w, width, height, nil)
	r.renderToCanvas(svgRenderer, minX, minY, width, height)
	return svgRenderer.Close()
}

func (r *OverviewRenderer) renderToCanvas(renderer canvasRenderer, minX, minY, width, height float64) {
	// White background.
	bgStyle := canvas.DefaultStyle
	bgStyle.Fill = canvas.Paint{Color: canvas.White}
	renderer.RenderPath(canvas.Rectangle(width, height), bgStyle, canvas.Identity)

	toCanvas := func(geo orb.Point) (float64, float64) {
		p := r.Projection.ToPlanar(geo)
		return (p[0]-minX)*r.Scale + r.Padding, (p[1]-minY)*r.Scale + r.Padding
	}

	// Cluster hulls first so routes and markers draw on top.
	for _, assignment := range r.Clusters {
		base := categoryColors[assignment.Category]
		fill := color.RGBA{
			R: uint8(uint32(base.R) * 90 / 255),
			G: uint8(uint32(base.G) * 90 / 255),
			B: uint8(uint32(base.B) * 90 / 255),
			A: 90,
		}

		hullStyle := canvas.DefaultStyle
		hullStyle.Fill = canvas.Paint{Color: fill}
		hullStyle.Stroke = canvas.Paint{Color: base}
		hullStyle.StrokeWidth = 1.0

		for _, cluster := range assignment.Clusters {
			if cluster.Hull == nil {
				continue
			}
			cp := &canvas.Path{}
			for i, pt := range cluster.Hull {
				cx, cy := toCanvas(pt)
				if i == 0 {
					cp.MoveTo(cx, cy)
				} else {
					cp.LineTo(cx, cy)
				}
			}
			cp.Close()
			renderer.RenderPath(cp, hullStyle, canvas.Identity)
		}
	}

	// Tour polyline.
	if r.Tour != nil && len(r.Tour.Polyline) > 1 {
		routeStyle := canvas.DefaultStyle
		routeStyle.Fill = canvas.Paint{Color: canvas.Transparent}
		routeStyle.Stroke = canvas.Paint{Color: color.RGBA{R: 30, G: 90, B: 200, A: 255}}
		routeStyle.StrokeWidth = 2.0

		cp := &canvas.Path{}
		for i, pt := range r.Tour.Polyline {
			cx, cy := toCanvas(pt)
			if i == 0 {
				cp.MoveTo(cx, cy)
			} else {
				cp.LineTo(cx, cy)
			}
		}
		renderer.RenderPath(cp, routeStyle, canvas.Identity)
	}

	// Stop markers.
	stopStyle := canvas.DefaultStyle
	stopStyle.Fill = canvas.Paint{Color: color.RGBA{R: 30, G: 90, B: 200, A: 255}}
	stopStyle.Stroke = canvas.Paint{Color: canvas.Black}
	stopStyle.StrokeWidth = 0.5

	for _, s := range r.Stops {
		cx, cy := toCanvas(s.Location)
		marker := canvas.Circle(3.0).Translate(cx, cy)
		renderer.RenderPath(marker, stopStyle, canvas.Identity)
	}

	// Hotel marker on top.
	if r.Hotel != nil {
		hotelStyle := canvas.DefaultStyle
		hotelStyle.Fill = canvas.Paint{Color: color.RGBA{R: 200, G: 40, B: 40, A: 255}}
		hotelStyle.Stroke = canvas.Paint{Color: canvas.Black}
		hotelStyle.StrokeWidth = 1.0

		cx, cy := toCanvas(r.Hotel.Location)
		marker := canvas.Circle(5.0).Translate(cx, cy)
		renderer.RenderPath(marker, hotelStyle, canvas.Identity)
	}
}

// bounds computes the projected extent of all drawable content.
func (r *OverviewRenderer) bounds() (minX, minY, maxX, maxY float64, ok bool) {
	minX, minY = math.MaxFloat64, math.MaxFloat64
	maxX, maxY = -math.MaxFloat64, -math.MaxFloat64

	extend := func(geo orb.Point) {
		p := r.Projection.ToPlanar(geo)
		minX = math.Min(minX, p[0])
		minY = math.Min(minY, p[1])
		maxX = math.Max(maxX, p[0])
		maxY = math.Max(maxY, p[1])
		ok = true
	}

	for _, assignment := range r.Clusters {
		for _, cluster := range assignment.Clusters {
			for _, pt := range cluster.Hull {
				extend(pt)
			}
		}
	}
	if r.Tour != nil {
		for _, pt := range r.Tour.Polyline {
			extend(pt)
		}
	}
	if r.Hotel != nil {
		extend(r.Hotel.Location)
	}
	for _, s := range r.Stops {
		extend(s.Location)
	}

	return minX, minY, maxX, maxY, ok
}
