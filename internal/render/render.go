// Package render collects debug drawings in the host's custom rendering
// format and pushes them to browser viewers.
package render

import (
	"encoding/json"
	"fmt"

	"github.com/elsid/CodeBall-sub000/internal/geom"
)

type Color struct {
	R, G, B, A float64
}

var (
	Red   = Color{R: 0.8, G: 0.1, B: 0.1, A: 0.8}
	Green = Color{R: 0.1, G: 0.8, B: 0.1, A: 0.8}
	Blue  = Color{R: 0.1, G: 0.1, B: 0.8, A: 0.8}
	Gray  = Color{R: 0.5, G: 0.5, B: 0.5, A: 1}
)

// Object is one drawing. It is one of Sphere, Line or Text.
type Object interface {
	json.Marshaler
	object()
}

type Sphere struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Z      float64 `json:"z"`
	Radius float64 `json:"radius"`
	R      float64 `json:"r"`
	G      float64 `json:"g"`
	B      float64 `json:"b"`
	A      float64 `json:"a"`
}

type Line struct {
	X1    float64 `json:"x1"`
	Y1    float64 `json:"y1"`
	Z1    float64 `json:"z1"`
	X2    float64 `json:"x2"`
	Y2    float64 `json:"y2"`
	Z2    float64 `json:"z2"`
	Width float64 `json:"width"`
	R     float64 `json:"r"`
	G     float64 `json:"g"`
	B     float64 `json:"b"`
	A     float64 `json:"a"`
}

type Text string

func (Sphere) object() {}
func (Line) object()   {}
func (Text) object()   {}

func (s Sphere) MarshalJSON() ([]byte, error) {
	type fields Sphere
	return json.Marshal(map[string]fields{"Sphere": fields(s)})
}

func (l Line) MarshalJSON() ([]byte, error) {
	type fields Line
	return json.Marshal(map[string]fields{"Line": fields(l)})
}

func (t Text) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"Text": string(t)})
}

func NewSphere(position geom.Vec3, radius float64, color Color) Sphere {
	return Sphere{
		X:      position.X,
		Y:      position.Y,
		Z:      position.Z,
		Radius: radius,
		R:      color.R,
		G:      color.G,
		B:      color.B,
		A:      color.A,
	}
}

func NewLine(begin, end geom.Vec3, width float64, color Color) Line {
	return Line{
		X1:    begin.X,
		Y1:    begin.Y,
		Z1:    begin.Z,
		X2:    end.X,
		Y2:    end.Y,
		Z2:    end.Z,
		Width: width,
		R:     color.R,
		G:     color.G,
		B:     color.B,
		A:     color.A,
	}
}

func Textf(format string, args ...any) Text {
	return Text(fmt.Sprintf(format, args...))
}

// Render is the list of drawings of one tick.
type Render struct {
	objects []Object
}

func New() *Render {
	return &Render{}
}

func (r *Render) Add(o Object) {
	r.objects = append(r.objects, o)
}

func (r *Render) Clear() {
	r.objects = r.objects[:0]
}

func (r *Render) Len() int {
	return len(r.objects)
}

func (r *Render) Objects() []Object {
	return r.objects
}

// MarshalJSON writes the drawings as a JSON array, never null.
func (r *Render) MarshalJSON() ([]byte, error) {
	if len(r.objects) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(r.objects)
}

// Recorder receives the drawings of every tick.
type Recorder interface {
	Record(tick int, r *Render)
}
