package bounding

import (
	"github.com/golang/geo/r3"
)

// welzl fits the minimal sphere with the move-to-front variant of Welzl's algorithm. The points are
// copied first since the algorithm reorders them.
func (s *Sphere) welzl(points []r3.Vector) {
	pts := make([]r3.Vector, len(points))
	copy(pts, points)
	s.center, s.radius = r3.Vector{}, 0
	s.welzlStep(pts, len(pts), 0, 0)

	// rounding can leave a point just outside; grow to take it in
	for _, p := range points {
		if p.Sub(s.center).Norm() > s.radius {
			s.mergeSphere(p, 0)
		}
	}
}

// welzlStep considers the first n points after the support set, which is the support points immediately
// before offset ap.
func (s *Sphere) welzlStep(pts []r3.Vector, n, support, ap int) {
	switch support {
	case 0:
		s.center, s.radius = r3.Vector{}, 0
	case 1:
		s.center, s.radius = pts[ap-1], 0
	case 2:
		s.setSphere2(pts[ap-1], pts[ap-2])
	case 3:
		s.setSphere3(pts[ap-1], pts[ap-2], pts[ap-3])
	case 4:
		s.setSphere4(pts[ap-1], pts[ap-2], pts[ap-3], pts[ap-4])
		return
	}
	for i := 0; i < n; i++ {
		p := pts[i+ap]
		if p.Sub(s.center).Norm2()-s.radius*s.radius > radiusEpsilon-1 {
			// move p to the front so it joins the support set
			copy(pts[ap+1:ap+i+1], pts[ap:ap+i])
			pts[ap] = p
			s.welzlStep(pts, i, support+1, ap+1)
		}
	}
}

func (s *Sphere) setSphere2(o, a r3.Vector) {
	s.radius = a.Sub(o).Norm()/2 + radiusEpsilon - 1
	s.center = o.Add(a).Mul(0.5)
}

// setSphere3 sets the circumsphere of a triangle, centered in its plane.
func (s *Sphere) setSphere3(o, a, b r3.Vector) {
	a, b = a.Sub(o), b.Sub(o)
	aCrossB := a.Cross(b)
	denom := 2 * aCrossB.Dot(aCrossB)
	if denom == 0 {
		// collinear: the farthest pair spans the others
		far := a
		if b.Norm2() > far.Norm2() {
			far = b
		}
		if d := a.Sub(b); d.Norm2() > far.Norm2() {
			s.setSphere2(o.Add(a), o.Add(b))
			return
		}
		s.setSphere2(o, o.Add(far))
		return
	}
	offset := aCrossB.Cross(a).Mul(b.Norm2()).Add(b.Cross(aCrossB).Mul(a.Norm2())).Mul(1 / denom)
	s.radius = offset.Norm() * radiusEpsilon
	s.center = o.Add(offset)
}

// setSphere4 sets the circumsphere of a tetrahedron.
func (s *Sphere) setSphere4(o, a, b, c r3.Vector) {
	pts := [4]r3.Vector{o, a, b, c}
	a, b, c = a.Sub(o), b.Sub(o), c.Sub(o)
	denom := 2 * a.Dot(b.Cross(c))
	if denom == 0 {
		s.setCoplanarSphere(pts)
		return
	}
	offset := a.Cross(b).Mul(c.Norm2()).
		Add(c.Cross(a).Mul(b.Norm2())).
		Add(b.Cross(c).Mul(a.Norm2())).
		Mul(1 / denom)
	s.radius = offset.Norm() * radiusEpsilon
	s.center = o.Add(offset)
}

// setCoplanarSphere picks the smallest circumsphere of three of the points that also holds the fourth.
func (s *Sphere) setCoplanarSphere(pts [4]r3.Vector) {
	var best *Sphere
	for skip := range pts {
		var tri []r3.Vector
		for i, p := range pts {
			if i != skip {
				tri = append(tri, p)
			}
		}
		candidate := &Sphere{}
		candidate.setSphere3(tri[0], tri[1], tri[2])
		if pts[skip].Sub(candidate.center).Norm() > candidate.radius*radiusEpsilon {
			continue
		}
		if best == nil || candidate.radius < best.radius {
			best = candidate
		}
	}
	if best == nil {
		s.averagePoints(pts[:])
		return
	}
	s.center, s.radius = best.center, best.radius
}
