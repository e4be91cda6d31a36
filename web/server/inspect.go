package server

import (
	"net/http"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/material"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit            bool                   `json:"hit"`
	GeometryType   string                 `json:"geometryType,omitempty"`
	PrimitiveIndex int                    `json:"primitiveIndex"`
	Point          [3]float64             `json:"point"`
	Normal         [3]float64             `json:"normal"`
	Distance       float64                `json:"distance"`
	Color          [3]float64             `json:"color"` // Shaded color at the pixel center
	Surface        map[string]interface{} `json:"surface,omitempty"`
	Geometry       map[string]interface{} `json:"geometry,omitempty"`
}

func vec(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

// extractSurfaceInfo describes a surface for display
func extractSurfaceInfo(surface *material.Surface) map[string]interface{} {
	if surface == nil {
		return nil
	}
	return map[string]interface{}{
		"diffuse":   vec(surface.Diffuse),
		"specular":  vec(surface.Specular),
		"shininess": surface.Shininess,
		"color":     colorful.Color{R: surface.Diffuse.X, G: surface.Diffuse.Y, B: surface.Diffuse.Z}.Clamped().Hex(),
	}
}

// extractGeometryInfo extracts detailed geometry information
func extractGeometryInfo(primitive geometry.Primitive) (string, *material.Surface, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch geom := primitive.(type) {
	case *geometry.Sphere:
		properties["center"] = vec(geom.Center)
		properties["radius"] = geom.Radius
		return "sphere", geom.Surface, properties

	case *geometry.Plane:
		properties["normal"] = vec(geom.Normal)
		properties["distanceToOrigin"] = geom.DistanceToOrigin
		return "plane", geom.Surface, properties

	case *geometry.Triangle:
		properties["vertices"] = [][3]float64{vec(geom.P0), vec(geom.P1), vec(geom.P2)}
		properties["normal"] = vec(geom.Normal)
		return "triangle", geom.Surface, properties

	default:
		return "unknown", nil, properties
	}
}

// inspectPixel casts the unjittered ray through a pixel center
func inspectPixel(sceneObj *scene.Scene, pixelX, pixelY int) (InspectResponse, error) {
	camera, err := sceneObj.Camera()
	if err != nil {
		return InspectResponse{}, err
	}
	ray := camera.GenerateRay(float64(pixelY), float64(pixelX))

	hit, ok, err := sceneObj.Inspect(ray)
	if err != nil || !ok {
		return InspectResponse{Hit: false, PrimitiveIndex: -1}, err
	}

	color, err := sceneObj.ComputeColor(ray)
	if err != nil {
		return InspectResponse{}, err
	}

	geometryType, surface, properties := extractGeometryInfo(hit.Primitive)
	return InspectResponse{
		Hit:            true,
		GeometryType:   geometryType,
		PrimitiveIndex: hit.Index,
		Point:          vec(hit.Point),
		Normal:         vec(hit.Normal),
		Distance:       hit.Distance,
		Color:          [3]float64{color.R, color.G, color.B},
		Surface:        extractSurfaceInfo(surface),
		Geometry:       properties,
	}, nil
}

// handleInspect reports what the ray through pixel (x, y) hits
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	req := &RenderRequest{}
	if err := s.parseCommonSceneParams(r, req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid scene parameters: " + err.Error()})
		return
	}

	pixelX, err := strconv.Atoi(r.URL.Query().Get("x"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid x coordinate"})
		return
	}
	pixelY, err := strconv.Atoi(r.URL.Query().Get("y"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid y coordinate"})
		return
	}

	sceneObj, err := s.createScene(req, core.NopLogger{})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	width, height := sceneObj.CameraConfig.ScreenWidth, sceneObj.CameraConfig.ScreenHeight
	if pixelX < 0 || pixelX >= width || pixelY < 0 || pixelY >= height {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Pixel coordinates out of bounds"})
		return
	}

	response, err := inspectPixel(sceneObj, pixelX, pixelY)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, response)
}
