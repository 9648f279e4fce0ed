package spatialmath

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
)

const rotationTolerance = 1e-6

// Transform is the world placement of a mesh: a point p maps to Rotation*(p*Scale) + Translation,
// where the scale is applied per axis.
type Transform struct {
	rotation    *RotationMatrix
	translation r3.Vector
	scale       r3.Vector
}

// NewTransform creates a transform. A nil rotation is the identity.
func NewTransform(rotation *RotationMatrix, translation, scale r3.Vector) *Transform {
	if rotation == nil {
		rotation = NewIdentityRotationMatrix()
	}
	return &Transform{rotation: rotation, translation: translation, scale: scale}
}

// NewTransformFromQuat creates a transform whose rotation is given by a quaternion.
func NewTransformFromQuat(q quat.Number, translation, scale r3.Vector) *Transform {
	return NewTransform(NewRotationMatrixFromQuat(q), translation, scale)
}

// NewIdentityTransform returns the transform that leaves every point in place.
func NewIdentityTransform() *Transform {
	return NewTransform(nil, r3.Vector{}, r3.Vector{X: 1, Y: 1, Z: 1})
}

// NewTranslationTransform returns a transform that only moves points.
func NewTranslationTransform(translation r3.Vector) *Transform {
	return NewTransform(nil, translation, r3.Vector{X: 1, Y: 1, Z: 1})
}

// Rotation returns the linear part of the transform.
func (tf *Transform) Rotation() *RotationMatrix {
	return tf.rotation
}

// Translation returns the translation.
func (tf *Transform) Translation() r3.Vector {
	return tf.translation
}

// Scale returns the per axis scale.
func (tf *Transform) Scale() r3.Vector {
	return tf.scale
}

// SetRotation replaces the linear part. A nil rotation is the identity.
func (tf *Transform) SetRotation(rotation *RotationMatrix) {
	if rotation == nil {
		rotation = NewIdentityRotationMatrix()
	}
	tf.rotation = rotation
}

// SetTranslation replaces the translation.
func (tf *Transform) SetTranslation(translation r3.Vector) {
	tf.translation = translation
}

// SetScale replaces the scale.
func (tf *Transform) SetScale(scale r3.Vector) {
	tf.scale = scale
}

// Apply maps a local point into world space.
func (tf *Transform) Apply(p r3.Vector) r3.Vector {
	return tf.rotation.Mul(MulComponents(p, tf.scale)).Add(tf.translation)
}

// ApplyVector maps a direction, ignoring the translation.
func (tf *Transform) ApplyVector(v r3.Vector) r3.Vector {
	return tf.rotation.Mul(MulComponents(v, tf.scale))
}

// ApplyInverse maps a world point back into local space. It returns an error if the transform is singular.
func (tf *Transform) ApplyInverse(p r3.Vector) (r3.Vector, error) {
	if tf.scale.X == 0 || tf.scale.Y == 0 || tf.scale.Z == 0 {
		return r3.Vector{}, errors.New("cannot invert transform with zero scale")
	}
	var inv *RotationMatrix
	if tf.rotation.IsRotation(rotationTolerance) {
		inv = tf.rotation.Transpose()
	} else {
		var err error
		if inv, err = tf.rotation.Inverse(); err != nil {
			return r3.Vector{}, err
		}
	}
	local := inv.Mul(p.Sub(tf.translation))
	return r3.Vector{X: local.X / tf.scale.X, Y: local.Y / tf.scale.Y, Z: local.Z / tf.scale.Z}, nil
}

// IsRotationScale reports whether the linear part is a pure rotation, so that the transform has no shear.
func (tf *Transform) IsRotationScale() bool {
	return tf.rotation.IsRotation(rotationTolerance)
}

// MaxStretch returns the largest factor by which the linear part of tf lengthens any vector: the
// spectral norm of Rotation*diag(Scale).
func (tf *Transform) MaxStretch() float64 {
	if tf.IsRotationScale() {
		return math.Max(math.Abs(tf.scale.X), math.Max(math.Abs(tf.scale.Y), math.Abs(tf.scale.Z)))
	}
	linear := tf.rotation.dense()
	for col, s := range []float64{tf.scale.X, tf.scale.Y, tf.scale.Z} {
		for row := 0; row < 3; row++ {
			linear.Set(row, col, linear.At(row, col)*s)
		}
	}
	var svd mat.SVD
	if !svd.Factorize(linear, mat.SVDNone) {
		// the Frobenius norm never undershoots the spectral norm
		return mat.Norm(linear, 2)
	}
	return svd.Values(nil)[0]
}

// Inverse returns the transform undoing tf. Only rotation, uniform scale and translation can be inverted
// into the same form.
func (tf *Transform) Inverse() (*Transform, error) {
	if !tf.IsRotationScale() {
		return nil, errors.New("cannot invert a transform whose linear part is not a rotation")
	}
	if !Float64AlmostEqual(tf.scale.X, tf.scale.Y, floatEpsilon) || !Float64AlmostEqual(tf.scale.X, tf.scale.Z, floatEpsilon) {
		return nil, errors.Errorf("cannot invert non uniform scale %v", tf.scale)
	}
	if tf.scale.X == 0 {
		return nil, errors.New("cannot invert transform with zero scale")
	}
	s := 1 / tf.scale.X
	rotT := tf.rotation.Transpose()
	return &Transform{
		rotation:    rotT,
		translation: rotT.Mul(tf.translation).Mul(-s),
		scale:       r3.Vector{X: s, Y: s, Z: s},
	}, nil
}

// String returns a readable form of the transform.
func (tf *Transform) String() string {
	return fmt.Sprintf("rotation: %v translation: %v scale: %v", tf.rotation, tf.translation, tf.scale)
}
