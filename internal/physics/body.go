package physics

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Vec2 is a 2D vector in SI units.
type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }
func (v Vec2) Dot(o Vec2) float64   { return v.X*o.X + v.Y*o.Y }
func (v Vec2) Cross(o Vec2) float64 { return v.X*o.Y - v.Y*o.X }
func (v Vec2) Norm() float64        { return math.Hypot(v.X, v.Y) }

// Body is a point mass. Mass and asset are fixed at construction; position
// and velocity change only through the stepping methods.
type Body struct {
	pos   Vec2
	vel   Vec2
	mass  float64
	asset string
}

// NewBody returns a body at (px, py) moving at (vx, vy). It fails with
// ErrInvalidMass unless mass > 0, and with ErrInvalidAsset unless asset is
// a single token the text form can carry.
func NewBody(px, py, vx, vy, mass float64, asset string) (Body, error) {
	if !(mass > 0) {
		return Body{}, fmt.Errorf("%w: got %g", ErrInvalidMass, mass)
	}
	if !validAsset(asset) {
		return Body{}, fmt.Errorf("%w: got %q", ErrInvalidAsset, asset)
	}
	return Body{
		pos:   Vec2{px, py},
		vel:   Vec2{vx, vy},
		mass:  mass,
		asset: asset,
	}, nil
}

func validAsset(asset string) bool {
	return asset != "" && !strings.ContainsFunc(asset, unicode.IsSpace)
}

// bodyFields names the tokens of one serialized body, in order.
var bodyFields = [...]string{"px", "py", "vx", "vy", "mass", "asset"}

// ParseBody decodes a single "px py vx vy mass asset" line.
func ParseBody(line string) (Body, error) {
	fields := strings.Fields(line)
	if len(fields) != len(bodyFields) {
		return Body{}, &ParseError{
			Body:    0,
			Field:   "body",
			Wrapped: fmt.Errorf("%w: want %d fields, got %d", ErrMalformedInput, len(bodyFields), len(fields)),
		}
	}
	return parseBodyTokens(0, fields)
}

func parseBodyTokens(idx int, tok []string) (Body, error) {
	var nums [5]float64
	for i := range nums {
		v, err := strconv.ParseFloat(tok[i], 64)
		if err != nil {
			return Body{}, &ParseError{Body: idx, Field: bodyFields[i], Token: tok[i], Wrapped: ErrMalformedInput}
		}
		nums[i] = v
	}
	if !(nums[4] > 0) {
		return Body{}, &ParseError{Body: idx, Field: "mass", Token: tok[4], Wrapped: ErrInvalidMass}
	}
	return Body{
		pos:   Vec2{nums[0], nums[1]},
		vel:   Vec2{nums[2], nums[3]},
		mass:  nums[4],
		asset: tok[5],
	}, nil
}

func (b Body) Position() Vec2 { return b.pos }
func (b Body) Velocity() Vec2 { return b.vel }
func (b Body) Mass() float64  { return b.mass }
func (b Body) Asset() string  { return b.asset }

// AdvancePosition moves the body along its current velocity for dt seconds.
func (b *Body) AdvancePosition(dt float64) {
	b.pos.X += b.vel.X * dt
	b.pos.Y += b.vel.Y * dt
}

// ApplyAcceleration changes the velocity by (ax, ay)*dt.
func (b *Body) ApplyAcceleration(ax, ay, dt float64) {
	b.vel.X += ax * dt
	b.vel.Y += ay * dt
}

// String renders the body as one line of the persistence format.
func (b Body) String() string {
	return string(b.appendText(nil, DefaultPrecision))
}

func (b Body) appendText(dst []byte, prec int) []byte {
	for i, v := range [...]float64{b.pos.X, b.pos.Y, b.vel.X, b.vel.Y, b.mass} {
		if i > 0 {
			dst = append(dst, ' ')
		}
		dst = strconv.AppendFloat(dst, v, 'e', prec, 64)
	}
	dst = append(dst, ' ')
	return append(dst, b.asset...)
}
