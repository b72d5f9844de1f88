package models

import (
	"fmt"
	"math"

	"github.com/taigrr/modelview/pkg/math3d"
)

// DefaultTargetSize is the length the largest model dimension is scaled to.
const DefaultTargetSize = 10.0

// UniformScale returns the factor that makes the largest component of size
// equal target.
func UniformScale(size math3d.Vec3, target float64) (float64, error) {
	if target <= 0 || math.IsNaN(target) || math.IsInf(target, 0) {
		return 0, fmt.Errorf("target size %v must be positive", target)
	}
	if !size.IsFinite() {
		return 0, fmt.Errorf("%w: non-finite bounds %v", ErrInvalidGeometry, size)
	}
	largest := size.MaxComponent()
	if largest <= 0 {
		return 0, fmt.Errorf("%w: bounding box has zero size", ErrInvalidGeometry)
	}
	s := target / largest
	if math.IsInf(s, 0) || math.IsNaN(s) || s == 0 {
		return 0, fmt.Errorf("%w: scale factor %v", ErrInvalidGeometry, s)
	}
	return s, nil
}

// NormalizeSTL centers the mesh on the origin and bakes the uniform scale
// into its vertices, wrapping it in a model with unit scale. The mesh is
// modified in place.
func NormalizeSTL(mesh *Mesh, target float64) (*Model, error) {
	if mesh == nil || len(mesh.Faces) == 0 {
		return nil, ErrEmptyModel
	}
	mesh.CalculateBounds()
	s, err := UniformScale(mesh.Size(), target)
	if err != nil {
		return nil, err
	}

	mesh.Transform(math3d.ScaleUniform(s).Mul(math3d.Translate(mesh.Center().Negate())))

	return NewModel(mesh.Name, KindSTL, mesh), nil
}

// NormalizeOBJ moves the model to the origin and sets a uniform scale so its
// largest dimension equals target. Geometry is left untouched, so a model
// authored off-center stays off-center.
func NormalizeOBJ(model *Model, target float64) (*Model, error) {
	if model == nil || model.TriangleCount() == 0 {
		return nil, ErrEmptyModel
	}
	s, err := UniformScale(model.LocalBounds().Size(), target)
	if err != nil {
		return nil, err
	}

	model.Position = math3d.Zero3()
	model.Scale = math3d.V3(s, s, s)
	return model, nil
}
