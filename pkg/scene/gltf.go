package scene

import (
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/taigrr/raycast/pkg/math3d"
	"github.com/taigrr/raycast/pkg/render"
)

// emissiveStrengthExt is the glTF extension that scales emissiveFactor.
const emissiveStrengthExt = "KHR_materials_emissive_strength"

// LoadGLTF loads a GLTF or GLB file and turns every mesh node into a sphere.
func LoadGLTF(path string) (*Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	s, err := FromDocument(doc, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// nodeTransform is a node's accumulated translation and scale. Node rotation
// and matrices are ignored.
type nodeTransform struct {
	translation math3d.Vec3
	scale       math3d.Vec3
}

func (t nodeTransform) apply(p math3d.Vec3) math3d.Vec3 {
	return t.translation.Add(t.scale.Mul(p))
}

// FromDocument builds a scene from a glTF document.
//
// Each node with a mesh becomes one sphere: the center is the node-space
// center of the mesh's position bounds, the radius half of the largest scaled
// extent. Colors come from the first primitive's material. The first camera
// node, if any, places the camera.
func FromDocument(doc *gltf.Document, name string) (*Scene, error) {
	s := &Scene{
		Name: name,
		Camera: CameraSetup{
			Position: math3d.Zero3(),
			LookAt:   math3d.V3(0, 0, 1),
		},
	}

	identity := nodeTransform{scale: math3d.Splat3(1)}
	visited := make(map[int]bool)
	cameraSet := false

	var walk func(idx int, parent nodeTransform) error
	walk = func(idx int, parent nodeTransform) error {
		if idx < 0 || idx >= len(doc.Nodes) {
			return fmt.Errorf("node index %d out of range", idx)
		}
		if visited[idx] {
			return nil
		}
		visited[idx] = true

		node := doc.Nodes[idx]
		local := nodeScale(node)
		xf := nodeTransform{
			translation: parent.apply(vec3(node.Translation)),
			scale:       parent.scale.Mul(local),
		}

		if node.Camera != nil && !cameraSet {
			s.Camera = cameraFromNode(node, xf.translation)
			cameraSet = true
		}

		if node.Mesh != nil {
			sphere, err := sphereFromMesh(doc, *node.Mesh, xf)
			if err != nil {
				return fmt.Errorf("node %q: %w", node.Name, err)
			}
			if sphere != nil {
				s.Spheres = append(s.Spheres, sphere)
			}
		}

		for _, child := range node.Children {
			if err := walk(child, xf); err != nil {
				return err
			}
		}
		return nil
	}

	for _, root := range rootNodes(doc) {
		if err := walk(root, identity); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// rootNodes returns the nodes of the default scene, or every node that is
// nobody's child when the document has no scenes.
func rootNodes(doc *gltf.Document) []int {
	if len(doc.Scenes) > 0 {
		idx := 0
		if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
			idx = *doc.Scene
		}
		return doc.Scenes[idx].Nodes
	}

	isChild := make(map[int]bool)
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			isChild[c] = true
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !isChild[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

// nodeScale returns the node's scale, treating an all-zero scale (a node
// built in memory without one) as the glTF default of 1.
func nodeScale(node *gltf.Node) math3d.Vec3 {
	sc := vec3(node.Scale)
	if sc == math3d.Zero3() {
		return math3d.Splat3(1)
	}
	return sc
}

// cameraFromNode places the camera at the node. glTF cameras look down -z
// unless the node's extras carry a "look_at" point.
func cameraFromNode(node *gltf.Node, position math3d.Vec3) CameraSetup {
	setup := CameraSetup{
		Position: position,
		LookAt:   position.Add(math3d.V3(0, 0, -1)),
	}

	var extras struct {
		LookAt *[3]float64 `json:"look_at"`
	}
	if decodeAny(node.Extras, &extras) == nil && extras.LookAt != nil {
		setup.LookAt = vec3(*extras.LookAt)
	}
	return setup
}

// sphereFromMesh returns the bounding sphere of a mesh's positions, or nil if
// the mesh has no triangle primitive with positions.
func sphereFromMesh(doc *gltf.Document, meshIdx int, xf nodeTransform) (*render.Sphere, error) {
	if meshIdx < 0 || meshIdx >= len(doc.Meshes) {
		return nil, fmt.Errorf("mesh index %d out of range", meshIdx)
	}
	m := doc.Meshes[meshIdx]

	var (
		boundsMin, boundsMax math3d.Vec3
		found                bool
		material             *int
	)
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			// Skip non-triangle primitives (lines, points, etc)
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}

		lo, hi, err := positionBounds(doc, posIdx)
		if err != nil {
			return nil, fmt.Errorf("mesh %q: read positions: %w", m.Name, err)
		}
		if !found {
			boundsMin, boundsMax = lo, hi
			material = prim.Material
			found = true
			continue
		}
		boundsMin = minVec(boundsMin, lo)
		boundsMax = maxVec(boundsMax, hi)
	}
	if !found {
		return nil, nil
	}

	center := xf.apply(boundsMin.Add(boundsMax).Div(2))
	extent := boundsMax.Sub(boundsMin).Mul(xf.scale)
	radius := math.Max(math.Abs(extent.X), math.Max(math.Abs(extent.Y), math.Abs(extent.Z))) / 2

	mat := materialFromDoc(doc, material)
	sphere, err := render.NewSphere(center, radius, mat.SurfaceColor, mat.EmissionColor, mat.EmissionStrength)
	if err != nil {
		return nil, fmt.Errorf("mesh %q: %w", m.Name, err)
	}
	return sphere, nil
}

// materialFromDoc converts a glTF PBR material. A missing material is white
// and non-emissive.
func materialFromDoc(doc *gltf.Document, idx *int) render.Material {
	mat := render.Material{SurfaceColor: math3d.Splat3(1)}
	if idx == nil || *idx < 0 || *idx >= len(doc.Materials) {
		return mat
	}
	gm := doc.Materials[*idx]

	if pbr := gm.PBRMetallicRoughness; pbr != nil && pbr.BaseColorFactor != nil {
		f := pbr.BaseColorFactor
		mat.SurfaceColor = math3d.V3(f[0], f[1], f[2])
	}

	mat.EmissionColor = vec3(gm.EmissiveFactor)
	if mat.EmissionColor != math3d.Zero3() {
		mat.EmissionStrength = 1
	}

	if raw, ok := gm.Extensions[emissiveStrengthExt]; ok {
		var ext struct {
			EmissiveStrength *float64 `json:"emissiveStrength"`
		}
		if decodeAny(raw, &ext) == nil && ext.EmissiveStrength != nil {
			mat.EmissionStrength = *ext.EmissiveStrength
		}
	}

	return mat
}

// decodeAny re-decodes an extension or extras value, which gltf leaves as raw
// JSON or a generic map, into dst.
func decodeAny(v any, dst any) error {
	if v == nil {
		return fmt.Errorf("no value")
	}
	data, ok := v.(json.RawMessage)
	if !ok {
		var err error
		if data, err = json.Marshal(v); err != nil {
			return err
		}
	}
	return json.Unmarshal(data, dst)
}

// positionBounds returns the min/max of a POSITION accessor, using the
// accessor's declared bounds when present.
func positionBounds(doc *gltf.Document, accessorIdx int) (lo, hi math3d.Vec3, err error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return lo, hi, fmt.Errorf("accessor index %d out of range", accessorIdx)
	}
	accessor := doc.Accessors[accessorIdx]
	if len(accessor.Min) == 3 && len(accessor.Max) == 3 {
		return math3d.V3(accessor.Min[0], accessor.Min[1], accessor.Min[2]),
			math3d.V3(accessor.Max[0], accessor.Max[1], accessor.Max[2]), nil
	}

	positions, err := readVec3Accessor(doc, accessor)
	if err != nil {
		return lo, hi, err
	}
	if len(positions) == 0 {
		return lo, hi, fmt.Errorf("accessor has no positions")
	}

	lo, hi = positions[0], positions[0]
	for _, p := range positions[1:] {
		lo = minVec(lo, p)
		hi = maxVec(hi, p)
	}
	return lo, hi, nil
}

// readVec3Accessor reads float VEC3 data from a GLTF accessor.
func readVec3Accessor(doc *gltf.Document, accessor *gltf.Accessor) ([]math3d.Vec3, error) {
	if accessor.Type != gltf.AccessorVec3 {
		return nil, fmt.Errorf("expected VEC3, got %v", accessor.Type)
	}
	if accessor.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("expected float components, got %v", accessor.ComponentType)
	}
	if accessor.BufferView == nil {
		return nil, fmt.Errorf("accessor has no buffer view")
	}

	if bv := *accessor.BufferView; bv < 0 || bv >= len(doc.BufferViews) {
		return nil, fmt.Errorf("buffer view index %d out of range", bv)
	}
	bufferView := doc.BufferViews[*accessor.BufferView]
	if bufferView.Buffer < 0 || bufferView.Buffer >= len(doc.Buffers) {
		return nil, fmt.Errorf("buffer index %d out of range", bufferView.Buffer)
	}
	buffer := doc.Buffers[bufferView.Buffer]
	if buffer.URI != "" && len(buffer.Data) == 0 {
		return nil, fmt.Errorf("external buffers not supported yet")
	}
	bufData := buffer.Data
	if bufData == nil {
		return nil, fmt.Errorf("buffer has no data")
	}

	start := bufferView.ByteOffset + accessor.ByteOffset
	stride := bufferView.ByteStride
	if stride == 0 {
		stride = 12 // 3 floats * 4 bytes
	}
	if end := start + (accessor.Count-1)*stride + 12; accessor.Count > 0 && end > len(bufData) {
		return nil, fmt.Errorf("accessor reads past end of buffer (%d > %d)", end, len(bufData))
	}

	result := make([]math3d.Vec3, accessor.Count)
	for i := range accessor.Count {
		offset := start + i*stride
		result[i] = math3d.V3(
			float64(readFloat32(bufData[offset:])),
			float64(readFloat32(bufData[offset+4:])),
			float64(readFloat32(bufData[offset+8:])),
		)
	}
	return result, nil
}

// readFloat32 reads a little-endian float32.
func readFloat32(b []byte) float32 {
	return math.Float32frombits(uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24)
}

func minVec(a, b math3d.Vec3) math3d.Vec3 {
	return math3d.V3(math.Min(a.X, b.X), math.Min(a.Y, b.Y), math.Min(a.Z, b.Z))
}

func maxVec(a, b math3d.Vec3) math3d.Vec3 {
	return math3d.V3(math.Max(a.X, b.X), math.Max(a.Y, b.Y), math.Max(a.Z, b.Z))
}
