package loaders

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

func vecNear(a, b core.Vec3) bool {
	return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9 && math.Abs(a.Z-b.Z) < 1e-9
}

const quadOBJ = `# unit quad in the XY plane
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f 1 2 3
f 1 3 4
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMesh_OBJ(t *testing.T) {
	path := writeFile(t, t.TempDir(), "quad.obj", quadOBJ)

	mesh, err := LoadMesh(path, core.NopLogger{})
	if err != nil {
		t.Fatalf("LoadMesh: %v", err)
	}
	if mesh.TriangleCount() != 2 {
		t.Fatalf("Expected 2 triangles, got %d", mesh.TriangleCount())
	}

	lo, hi := mesh.Bounds()
	if !vecNear(lo, core.NewVec3(0, 0, 0)) || !vecNear(hi, core.NewVec3(1, 1, 0)) {
		t.Errorf("Unexpected bounds %v - %v", lo, hi)
	}
}

func TestLoadMesh_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadMesh(filepath.Join(dir, "model.fbx"), core.NopLogger{}); err == nil {
		t.Error("Expected error for unsupported format")
	}
	if _, err := LoadMesh(filepath.Join(dir, "missing.obj"), core.NopLogger{}); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestMeshTransform_Apply(t *testing.T) {
	newMesh := func() *MeshData {
		return &MeshData{
			Vertices: []core.Vec3{
				core.NewVec3(0, 0, 0),
				core.NewVec3(4, 0, 0),
				core.NewVec3(0, 2, 0),
			},
			Faces: []int{0, 1, 2},
		}
	}

	t.Run("translate", func(t *testing.T) {
		mesh := newMesh()
		offset := vec3Value(core.NewVec3(1, 2, 3))
		MeshTransform{Translate: &offset}.Apply(mesh)
		if !vecNear(mesh.Vertices[1], core.NewVec3(5, 2, 3)) {
			t.Errorf("Expected (5,2,3), got %v", mesh.Vertices[1])
		}
	})

	t.Run("scale then translate", func(t *testing.T) {
		mesh := newMesh()
		scale := vec3Value(core.NewVec3(2, 2, 2))
		offset := vec3Value(core.NewVec3(0, 0, -1))
		MeshTransform{Scale: &scale, Translate: &offset}.Apply(mesh)
		if !vecNear(mesh.Vertices[2], core.NewVec3(0, 4, -1)) {
			t.Errorf("Expected (0,4,-1), got %v", mesh.Vertices[2])
		}
	})

	t.Run("rotate about Y", func(t *testing.T) {
		mesh := newMesh()
		axis := vec3Value(core.NewVec3(0, 1, 0))
		MeshTransform{RotateAxis: &axis, RotateDegrees: 90}.Apply(mesh)
		if !vecNear(mesh.Vertices[1], core.NewVec3(0, 0, -4)) {
			t.Errorf("Expected (0,0,-4), got %v", mesh.Vertices[1])
		}
	})

	t.Run("fit unit cube", func(t *testing.T) {
		mesh := newMesh()
		MeshTransform{FitUnitCube: true}.Apply(mesh)
		lo, hi := mesh.Bounds()
		if !vecNear(lo, core.NewVec3(-1, -0.5, 0)) || !vecNear(hi, core.NewVec3(1, 0.5, 0)) {
			t.Errorf("Unexpected fitted bounds %v - %v", lo, hi)
		}
	})

	t.Run("empty mesh", func(t *testing.T) {
		mesh := &MeshData{}
		MeshTransform{FitUnitCube: true}.Apply(mesh)
		if len(mesh.Vertices) != 0 {
			t.Error("Empty mesh should stay empty")
		}
	})
}

// Scene-file rotations and builtin mesh rotations must turn the same way
func TestMeshTransform_RotationMatchesTriangleMesh(t *testing.T) {
	vertices := []core.Vec3{
		core.NewVec3(1, 0, 0),
		core.NewVec3(0, 2, 0),
		core.NewVec3(0, 0, 3),
	}
	surface := material.NewSurface(core.NewVec3(0.5, 0.5, 0.5), core.NewVec3(0, 0, 0))

	tests := []struct {
		name  string
		axis  core.Vec3
		euler core.Vec3
	}{
		{"X", core.NewVec3(1, 0, 0), core.NewVec3(math.Pi/2, 0, 0)},
		{"Y", core.NewVec3(0, 1, 0), core.NewVec3(0, math.Pi/2, 0)},
		{"Z", core.NewVec3(0, 0, 1), core.NewVec3(0, 0, math.Pi/2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := &MeshData{Vertices: append([]core.Vec3(nil), vertices...), Faces: []int{0, 1, 2}}
			axis := vec3Value(tt.axis)
			MeshTransform{RotateAxis: &axis, RotateDegrees: 90}.Apply(data)

			mesh, err := geometry.NewTriangleMesh(vertices, []int{0, 1, 2}, surface, &geometry.TriangleMeshOptions{Rotation: &tt.euler})
			if err != nil {
				t.Fatal(err)
			}
			tri := mesh.Triangles[0]
			for i, want := range []core.Vec3{tri.P0, tri.P1, tri.P2} {
				if !vecNear(data.Vertices[i], want) {
					t.Errorf("Vertex %d: transform gave %v, mesh rotation gave %v", i, data.Vertices[i], want)
				}
			}
		})
	}
}
