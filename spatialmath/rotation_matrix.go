package spatialmath

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
)

// RotationMatrix is a 3x3 matrix stored in row major order. Despite the name it may hold any linear map;
// IsRotation reports whether it is a proper rotation.
type RotationMatrix struct {
	mat [9]float64
}

var identity3 = [9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1}

// NewRotationMatrix creates the rotation matrix from a slice of 9 row major values.
func NewRotationMatrix(m []float64) (*RotationMatrix, error) {
	if len(m) != 9 {
		return nil, errors.Errorf("input slice has %d elements, need exactly 9", len(m))
	}
	rm := &RotationMatrix{}
	copy(rm.mat[:], m)
	return rm, nil
}

// NewIdentityRotationMatrix returns the identity matrix.
func NewIdentityRotationMatrix() *RotationMatrix {
	return &RotationMatrix{mat: identity3}
}

// NewRotationMatrixFromColumns builds a matrix whose columns are the three given axes.
func NewRotationMatrixFromColumns(x, y, z r3.Vector) *RotationMatrix {
	return &RotationMatrix{mat: [9]float64{
		x.X, y.X, z.X,
		x.Y, y.Y, z.Y,
		x.Z, y.Z, z.Z,
	}}
}

// NewRotationMatrixFromQuat converts a quaternion into its rotation matrix. The quaternion is normalized first.
func NewRotationMatrixFromQuat(q quat.Number) *RotationMatrix {
	m := quatToMgl(q).Normalize().Mat4().Mat3()
	rm := &RotationMatrix{}
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			rm.mat[3*row+col] = m.At(row, col)
		}
	}
	return rm
}

// NewRotationMatrixFromAxisAngle returns the rotation of theta radians about the given axis.
func NewRotationMatrixFromAxisAngle(theta float64, axis r3.Vector) *RotationMatrix {
	a := axis.Normalize()
	return NewRotationMatrixFromQuat(quatToGonum(mgl64.QuatRotate(theta, mgl64.Vec3{a.X, a.Y, a.Z})))
}

// Quaternion returns the unit quaternion of a rotation matrix.
func (rm *RotationMatrix) Quaternion() quat.Number {
	m3 := mgl64.Mat3{}
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			m3.Set(row, col, rm.mat[3*row+col])
		}
	}
	return quatToGonum(mgl64.Mat4ToQuat(m3.Mat4()))
}

// At returns the value at the given row and column. It panics for indices outside [0,2].
func (rm *RotationMatrix) At(row, col int) float64 {
	if row < 0 || row > 2 {
		panic(newIndexOutOfRangeError("matrix row", row))
	}
	if col < 0 || col > 2 {
		panic(newIndexOutOfRangeError("matrix column", col))
	}
	return rm.mat[3*row+col]
}

// Row returns the row at the given index. It panics for an index outside [0,2].
func (rm *RotationMatrix) Row(row int) r3.Vector {
	if row < 0 || row > 2 {
		panic(newIndexOutOfRangeError("matrix row", row))
	}
	return r3.Vector{X: rm.mat[3*row], Y: rm.mat[3*row+1], Z: rm.mat[3*row+2]}
}

// Col returns the column at the given index. It panics for an index outside [0,2].
func (rm *RotationMatrix) Col(col int) r3.Vector {
	if col < 0 || col > 2 {
		panic(newIndexOutOfRangeError("matrix column", col))
	}
	return r3.Vector{X: rm.mat[col], Y: rm.mat[3+col], Z: rm.mat[6+col]}
}

// Mul applies the matrix to a column vector.
func (rm *RotationMatrix) Mul(v r3.Vector) r3.Vector {
	return r3.Vector{
		X: rm.mat[0]*v.X + rm.mat[1]*v.Y + rm.mat[2]*v.Z,
		Y: rm.mat[3]*v.X + rm.mat[4]*v.Y + rm.mat[5]*v.Z,
		Z: rm.mat[6]*v.X + rm.mat[7]*v.Y + rm.mat[8]*v.Z,
	}
}

// MulMatrix returns rm * other.
func (rm *RotationMatrix) MulMatrix(other *RotationMatrix) *RotationMatrix {
	out := &RotationMatrix{}
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			var sum float64
			for k := 0; k < 3; k++ {
				sum += rm.mat[3*row+k] * other.mat[3*k+col]
			}
			out.mat[3*row+col] = sum
		}
	}
	return out
}

// Transpose returns the transposed matrix, which for a rotation is its inverse.
func (rm *RotationMatrix) Transpose() *RotationMatrix {
	out := &RotationMatrix{}
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			out.mat[3*col+row] = rm.mat[3*row+col]
		}
	}
	return out
}

// Abs returns the matrix with every entry replaced by its absolute value.
func (rm *RotationMatrix) Abs() *RotationMatrix {
	out := &RotationMatrix{}
	for i, v := range rm.mat {
		out.mat[i] = math.Abs(v)
	}
	return out
}

func (rm *RotationMatrix) dense() *mat.Dense {
	data := make([]float64, 9)
	copy(data, rm.mat[:])
	return mat.NewDense(3, 3, data)
}

// Det returns the determinant.
func (rm *RotationMatrix) Det() float64 {
	return mat.Det(rm.dense())
}

// Inverse returns the general inverse of the matrix, or an error if it is singular.
func (rm *RotationMatrix) Inverse() (*RotationMatrix, error) {
	var inv mat.Dense
	if err := inv.Inverse(rm.dense()); err != nil {
		return nil, errors.Wrap(err, "cannot invert matrix")
	}
	out := &RotationMatrix{}
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			out.mat[3*row+col] = inv.At(row, col)
		}
	}
	return out, nil
}

// IsRotation reports whether the matrix is orthonormal with a positive determinant, within tol.
func (rm *RotationMatrix) IsRotation(tol float64) bool {
	var prod mat.Dense
	d := rm.dense()
	prod.Mul(d, d.T())
	if !floats.EqualApprox(prod.RawMatrix().Data, identity3[:], tol) {
		return false
	}
	return rm.Det() > 0
}

// String returns the matrix as three bracketed rows.
func (rm *RotationMatrix) String() string {
	return fmt.Sprintf("[%v %v %v]", rm.mat[0:3], rm.mat[3:6], rm.mat[6:9])
}

func quatToMgl(q quat.Number) mgl64.Quat {
	return mgl64.Quat{W: q.Real, V: mgl64.Vec3{q.Imag, q.Jmag, q.Kmag}}
}

func quatToGonum(q mgl64.Quat) quat.Number {
	return quat.Number{Real: q.W, Imag: q.X(), Jmag: q.Y(), Kmag: q.Z()}
}
