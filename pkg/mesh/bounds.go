package mesh

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/multierr"
)

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// emptyAABB returns an inverted box that any point extends.
func emptyAABB() AABB {
	const big = 3.4e38
	return AABB{
		Min: mgl32.Vec3{big, big, big},
		Max: mgl32.Vec3{-big, -big, -big},
	}
}

// Extend grows the box to contain p.
func (b *AABB) Extend(p mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}

// Union grows the box to contain o.
func (b *AABB) Union(o AABB) {
	b.Extend(o.Min)
	b.Extend(o.Max)
}

// Center returns the box midpoint.
func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the box extents.
func (b AABB) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// BVNode is a node of a flattened AABB tree over triangles. Leaves hold a
// triangle index (>= 0). Inner nodes hold the negated number of nodes in
// their subtree including themselves, so a traversal that rejects a node
// skips ahead by -Index.
type BVNode struct {
	Bounds AABB
	Index  int32
}

// Leaf reports whether the node references a triangle.
func (n BVNode) Leaf() bool { return n.Index >= 0 }

// BoundingVolumes describes the spatial extent of a mesh.
type BoundingVolumes struct {
	Bounds AABB
	Shapes []AABB
	Nodes  []BVNode
}

// GenerateBoundingVolumes computes the whole-mesh box, one box per shape
// and a triangle tree from the position channel, and attaches them to the
// mesh.
func (m *Mesh[I]) GenerateBoundingVolumes() *BoundingVolumes {
	stride := m.Stride()
	pos := func(v int) mgl32.Vec3 {
		return mgl32.Vec3{m.vertices[v*stride], m.vertices[v*stride+1], m.vertices[v*stride+2]}
	}

	bv := &BoundingVolumes{Shapes: make([]AABB, len(m.shapes))}
	n := m.NumVertices()
	if n == 0 {
		m.volumes = bv
		return bv
	}
	bv.Bounds = emptyAABB()
	for v := 0; v < n; v++ {
		bv.Bounds.Extend(pos(v))
	}
	for i, s := range m.shapes {
		box := emptyAABB()
		for v := s.VertexOffset; v < s.VertexOffset+s.VertexCount; v++ {
			box.Extend(pos(int(v)))
		}
		if s.VertexCount == 0 {
			box = AABB{}
		}
		bv.Shapes[i] = box
	}

	var items []bvItem
	m.forEachTriangle(func(_, tri int, a, b, c int) {
		box := emptyAABB()
		box.Extend(pos(a))
		box.Extend(pos(b))
		box.Extend(pos(c))
		items = append(items, bvItem{bounds: box, tri: int32(tri)})
	})
	if len(items) > 0 {
		bv.Nodes = make([]BVNode, 0, 2*len(items)-1)
		bv.Nodes = subdivide(items, bv.Nodes)
	}

	m.volumes = bv
	return bv
}

// Validate checks that the volumes fit a mesh with the given number of
// shapes and triangles and that the tree's skip counts stay in range.
func (bv *BoundingVolumes) Validate(numShapes, numTriangles int) error {
	var err error
	if len(bv.Shapes) != numShapes {
		err = multierr.Append(err, fmt.Errorf("%w: %d shape boxes for %d shapes",
			ErrInvalidMesh, len(bv.Shapes), numShapes))
	}
	if len(bv.Nodes) == 0 {
		return err
	}
	if want := 2*numTriangles - 1; len(bv.Nodes) != want {
		err = multierr.Append(err, fmt.Errorf("%w: %d tree nodes for %d triangles, want %d",
			ErrInvalidMesh, len(bv.Nodes), numTriangles, want))
	}
	for i, n := range bv.Nodes {
		if n.Leaf() {
			if int(n.Index) >= numTriangles {
				err = multierr.Append(err, fmt.Errorf("%w: node %d references triangle %d of %d",
					ErrInvalidMesh, i, n.Index, numTriangles))
				return err
			}
			continue
		}
		if skip := -int(n.Index); skip < 3 || i+skip > len(bv.Nodes) {
			err = multierr.Append(err, fmt.Errorf("%w: node %d skips %d of %d nodes",
				ErrInvalidMesh, i, skip, len(bv.Nodes)))
			return err
		}
	}
	return err
}

type bvItem struct {
	bounds AABB
	tri    int32
}

// subdivide appends the subtree over items to nodes, splitting at the
// median along the longest axis.
func subdivide(items []bvItem, nodes []BVNode) []BVNode {
	if len(items) == 1 {
		return append(nodes, BVNode{Bounds: items[0].bounds, Index: items[0].tri})
	}

	self := len(nodes)
	box := items[0].bounds
	for _, it := range items[1:] {
		box.Union(it.bounds)
	}
	nodes = append(nodes, BVNode{Bounds: box})

	axis := longestAxis(box.Size())
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].bounds.Min[axis] < items[j].bounds.Min[axis]
	})
	split := len(items) / 2
	nodes = subdivide(items[:split], nodes)
	nodes = subdivide(items[split:], nodes)
	nodes[self].Index = -int32(len(nodes) - self)
	return nodes
}

func longestAxis(size mgl32.Vec3) int {
	axis := 0
	if size[1] > size[axis] {
		axis = 1
	}
	if size[2] > size[axis] {
		axis = 2
	}
	return axis
}
