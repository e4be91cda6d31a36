package loaders

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/fogleman/fauxgl"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// MeshData is an indexed triangle list ready for geometry.NewTriangleMesh
type MeshData struct {
	Vertices []core.Vec3
	Faces    []int // Triangle indices (3 per triangle)
}

// TriangleCount returns the number of faces in the mesh
func (m *MeshData) TriangleCount() int {
	return len(m.Faces) / 3
}

// MeshTransform places a loaded mesh in the scene. The operations apply in
// order: fit to unit cube, scale, rotate, translate.
type MeshTransform struct {
	FitUnitCube   bool       `json:"fit"`           // Center and scale into [-1,1]^3
	Scale         *vec3Value `json:"scale"`         // Per-axis scale
	RotateAxis    *vec3Value `json:"rotateAxis"`    // Rotation axis
	RotateDegrees float64    `json:"rotateDegrees"` // Rotation angle about RotateAxis
	Translate     *vec3Value `json:"translate"`     // Offset applied last
}

// matrix builds the affine transform for the given mesh bounds
func (t MeshTransform) matrix(lo, hi core.Vec3) fauxgl.Matrix {
	m := fauxgl.Identity()

	if t.FitUnitCube {
		size := hi.Subtract(lo)
		extent := math.Max(size.X, math.Max(size.Y, size.Z))
		center := lo.Add(size.Multiply(0.5))
		m = m.Translate(fauxgl.V(-center.X, -center.Y, -center.Z))
		if extent > 0 {
			s := 2 / extent
			m = m.Scale(fauxgl.V(s, s, s))
		}
	}
	if t.Scale != nil {
		m = m.Scale(toFauxgl(t.Scale.Vec3()))
	}
	if t.RotateAxis != nil && t.RotateDegrees != 0 {
		// fauxgl.Rotate turns clockwise about the axis; positive degrees here
		// are counter-clockwise, matching geometry.TriangleMeshOptions.Rotation
		m = m.Rotate(toFauxgl(t.RotateAxis.Vec3()), fauxgl.Radians(-t.RotateDegrees))
	}
	if t.Translate != nil {
		m = m.Translate(toFauxgl(t.Translate.Vec3()))
	}
	return m
}

// Apply transforms every vertex of the mesh in place
func (t MeshTransform) Apply(mesh *MeshData) {
	if len(mesh.Vertices) == 0 {
		return
	}
	m := t.matrix(mesh.Bounds())
	for i, v := range mesh.Vertices {
		mesh.Vertices[i] = fromFauxgl(m.MulPosition(toFauxgl(v)))
	}
}

// Bounds returns the axis-aligned extent of the vertices
func (m *MeshData) Bounds() (lo, hi core.Vec3) {
	if len(m.Vertices) == 0 {
		return core.Vec3{}, core.Vec3{}
	}
	lo, hi = m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		lo = core.NewVec3(math.Min(lo.X, v.X), math.Min(lo.Y, v.Y), math.Min(lo.Z, v.Z))
		hi = core.NewVec3(math.Max(hi.X, v.X), math.Max(hi.Y, v.Y), math.Max(hi.Z, v.Z))
	}
	return lo, hi
}

// LoadMesh loads a triangle mesh, choosing the decoder by file extension.
// glTF (.gltf, .glb) is read with the glTF loader; OBJ, STL, PLY and 3DS
// are read with fauxgl.
func LoadMesh(filename string, logger core.Logger) (*MeshData, error) {
	startTime := time.Now()

	var mesh *MeshData
	var err error
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".gltf", ".glb":
		mesh, err = LoadGLTF(filename)
	case ".obj", ".stl", ".ply", ".3ds":
		mesh, err = loadFauxglMesh(filename)
	default:
		return nil, fmt.Errorf("unsupported mesh format %q", ext)
	}
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = core.NopLogger{}
	}
	logger.Printf("Loaded mesh %s: %d vertices, %d triangles in %v\n",
		filepath.Base(filename), len(mesh.Vertices), mesh.TriangleCount(), time.Since(startTime))
	return mesh, nil
}

// loadFauxglMesh converts a fauxgl mesh into an indexed triangle list.
// fauxgl stores vertices per triangle, so faces index sequentially.
func loadFauxglMesh(filename string) (*MeshData, error) {
	fm, err := fauxgl.LoadMesh(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to load mesh %s: %w", filename, err)
	}

	mesh := &MeshData{
		Vertices: make([]core.Vec3, 0, len(fm.Triangles)*3),
		Faces:    make([]int, 0, len(fm.Triangles)*3),
	}
	for _, t := range fm.Triangles {
		base := len(mesh.Vertices)
		mesh.Vertices = append(mesh.Vertices,
			fromFauxgl(t.V1.Position),
			fromFauxgl(t.V2.Position),
			fromFauxgl(t.V3.Position),
		)
		mesh.Faces = append(mesh.Faces, base, base+1, base+2)
	}
	return mesh, nil
}

func toFauxgl(v core.Vec3) fauxgl.Vector {
	return fauxgl.V(v.X, v.Y, v.Z)
}

func fromFauxgl(v fauxgl.Vector) core.Vec3 {
	return core.NewVec3(v.X, v.Y, v.Z)
}
