package physics

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// DefaultPrecision is the number of digits after the decimal point written
// for every float in the persistence format.
const DefaultPrecision = 4

// Load decodes a System from the whitespace-delimited format
//
//	<count>
//	<radius>
//	<px> <py> <vx> <vy> <mass> <asset>   (count times)
//
// Tokens may be split across lines arbitrarily. On any error no System is
// returned.
func Load(r io.Reader, opts ...Option) (*System, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)

	next := func(body int, field string) (string, error) {
		if sc.Scan() {
			return sc.Text(), nil
		}
		if err := sc.Err(); err != nil {
			return "", fmt.Errorf("read %s: %w", field, err)
		}
		return "", &ParseError{Body: body, Field: field, Wrapped: fmt.Errorf("%w: unexpected end of input", ErrMalformedInput)}
	}

	tok, err := next(-1, "count")
	if err != nil {
		return nil, err
	}
	count, err := strconv.ParseUint(tok, 10, 31)
	if err != nil {
		return nil, &ParseError{Body: -1, Field: "count", Token: tok, Wrapped: ErrMalformedInput}
	}

	tok, err = next(-1, "radius")
	if err != nil {
		return nil, err
	}
	radius, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return nil, &ParseError{Body: -1, Field: "radius", Token: tok, Wrapped: ErrMalformedInput}
	}
	if count > 0 && !(radius > 0) {
		return nil, &ParseError{Body: -1, Field: "radius", Token: tok, Wrapped: fmt.Errorf("%w: radius must be positive", ErrMalformedInput)}
	}

	bodies := make([]Body, 0, min(count, 1024))
	var fields [len(bodyFields)]string
	for i := 0; i < int(count); i++ {
		for f := range fields {
			fields[f], err = next(i, bodyFields[f])
			if err != nil {
				return nil, err
			}
		}
		b, err := parseBodyTokens(i, fields[:])
		if err != nil {
			return nil, err
		}
		bodies = append(bodies, b)
	}

	s := &System{bodies: bodies, radius: radius}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// WriteTo encodes the system in the persistence format with
// DefaultPrecision digits.
func (s *System) WriteTo(w io.Writer) (int64, error) {
	return NewEncoder(w).Encode(s)
}

// Encoder writes Systems in the persistence format.
type Encoder struct {
	w    io.Writer
	prec int
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w, prec: DefaultPrecision}
}

// SetPrecision sets the digits written after the decimal point.
func (e *Encoder) SetPrecision(prec int) {
	if prec >= 0 {
		e.prec = prec
	}
}

// Encode writes s in one call to the underlying writer.
func (e *Encoder) Encode(s *System) (int64, error) {
	snap := s.Snapshot()
	return e.EncodeSnapshot(snap)
}

// EncodeSnapshot writes a previously captured snapshot.
func (e *Encoder) EncodeSnapshot(snap Snapshot) (int64, error) {
	buf := make([]byte, 0, 64*(len(snap.Bodies)+1))
	buf = strconv.AppendInt(buf, int64(len(snap.Bodies)), 10)
	buf = append(buf, '\n')
	buf = strconv.AppendFloat(buf, snap.Radius, 'e', e.prec, 64)
	buf = append(buf, '\n')
	for _, b := range snap.Bodies {
		buf = b.appendText(buf, e.prec)
		buf = append(buf, '\n')
	}
	n, err := e.w.Write(buf)
	return int64(n), err
}
