package graphic

import "github.com/pkg/errors"

type call struct {
	op    string
	quad  Quad
	a, b  Point
	text  string
	color Color
}

// recorder is a Canvas that remembers every draw call. It fails from the
// failAt-th call on when failAt is positive.
type recorder struct {
	calls  []call
	failAt int
}

var errDraw = errors.New("draw failed")

func (r *recorder) add(c call) error {
	if r.failAt > 0 && len(r.calls)+1 >= r.failAt {
		return errDraw
	}

	r.calls = append(r.calls, c)
	return nil
}

func (r *recorder) FillQuad(q Quad, c Color) error {
	return r.add(call{op: "quad", quad: q, color: c})
}

func (r *recorder) Line(a, b Point, width float64, c Color) error {
	return r.add(call{op: "line", a: a, b: b, color: c})
}

func (r *recorder) Text(s string, p Point, size float64, c Color) error {
	return r.add(call{op: "text", text: s, a: p, color: c})
}

func (r *recorder) DrawTarget(t Target, dst Rect, alpha float64) error {
	return r.add(call{op: "target", quad: dst.Quad()})
}

func (r *recorder) ops(op string) []call {
	var out []call
	for _, c := range r.calls {
		if c.op == op {
			out = append(out, c)
		}
	}
	return out
}

// failingAllocator never hands out a target.
type failingAllocator struct{}

func (failingAllocator) NewTarget(w, h int) (Target, error) {
	return nil, errors.New("out of video memory")
}

// signedArea is negative for quads that are counter clockwise on a y-down
// screen.
func signedArea(q Quad) float64 {
	var s float64
	for i := range q {
		j := (i + 1) % len(q)
		s += q[i].X*q[j].Y - q[j].X*q[i].Y
	}
	return s / 2
}
