package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/material"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool           `json:"hit"`
	ShapeID      int            `json:"shapeId"`
	GeometryType string         `json:"geometryType,omitempty"`
	Point        [3]float64     `json:"point"`
	Normal       [3]float64     `json:"normal"`
	Distance     float64        `json:"distance"`
	Material     map[string]any `json:"material,omitempty"`
	Properties   map[string]any `json:"properties,omitempty"`
}

func vecArray(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

// hexColor formats a color the way the renderer would store it
func hexColor(c core.Vec3) string {
	c = c.Clamp(0, 1)
	return fmt.Sprintf("#%02x%02x%02x", int(c.X*255), int(c.Y*255), int(c.Z*255))
}

// extractMaterialInfo describes the Phong coefficients of a material
func extractMaterialInfo(mat material.Material) map[string]any {
	return map[string]any{
		"color":          hexColor(mat.Color),
		"albedo":         vecArray(mat.Color),
		"ambient":        vecArray(mat.Ambient),
		"diffuse":        vecArray(mat.Diffuse),
		"specular":       vecArray(mat.Specular),
		"shininess":      mat.Shininess,
		"reflectiveness": mat.Reflectiveness,
	}
}

// extractGeometryInfo extracts detailed geometry information
func extractGeometryInfo(shape geometry.Shape) (string, map[string]any) {
	properties := make(map[string]any)

	switch geom := shape.(type) {
	case *geometry.Sphere:
		properties["center"] = vecArray(geom.Center())
		properties["radius"] = geom.Radius
		return "sphere", properties

	case *geometry.Cuboid:
		properties["center"] = vecArray(geom.Center())
		properties["dimensions"] = vecArray(geom.Dimensions)
		return "cuboid", properties

	default:
		return "unknown", properties
	}
}

// inspectPixel casts the primary ray of pixel (x, y) and describes the first object hit
func inspectPixel(sceneObj *scene.Scene, width, height, x, y int) InspectResponse {
	u := float64(x) / float64(width)
	v := float64(y) / float64(height)

	hit, id := sceneObj.Inspect(u, v)
	if !hit.Hit {
		return InspectResponse{Hit: false, ShapeID: int(scene.NoShape)}
	}

	ray := sceneObj.PixelRay(x, y, width, height)
	geometryType, properties := extractGeometryInfo(sceneObj.Shape(id))

	return InspectResponse{
		Hit:          true,
		ShapeID:      int(id),
		GeometryType: geometryType,
		Point:        vecArray(ray.At(hit.Distance)),
		Normal:       vecArray(hit.Normal),
		Distance:     hit.Distance,
		Material:     extractMaterialInfo(hit.Material),
		Properties:   properties,
	}
}

// handleInspect handles ray casting inspection requests
func (s *Server) handleInspect(c echo.Context) error {
	req, err := parseRenderRequest(c.QueryParams())
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid scene parameters: "+err.Error())
	}

	pixelX, err := strconv.Atoi(c.QueryParam("x"))
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid x coordinate")
	}
	pixelY, err := strconv.Atoi(c.QueryParam("y"))
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid y coordinate")
	}

	if pixelX < 0 || pixelX >= req.Width || pixelY < 0 || pixelY >= req.Height {
		return jsonError(c, http.StatusBadRequest,
			fmt.Sprintf("Pixel (%d,%d) outside %dx%d image", pixelX, pixelY, req.Width, req.Height))
	}

	sceneObj, err := s.createScene(req.Scene)
	if err != nil {
		return jsonError(c, http.StatusNotFound, err.Error())
	}
	sceneObj.Camera().SetAspectRatio(float64(req.Width) / float64(req.Height))

	return c.JSON(http.StatusOK, inspectPixel(sceneObj, req.Width, req.Height, pixelX, pixelY))
}
