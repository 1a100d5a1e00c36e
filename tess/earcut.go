// Copyright 2026 The galileo Authors
// SPDX-License-Identifier: MIT

package tess

import (
	"math"
	"sort"
)

// earcut triangulates a polygon given as a flat array of x,y coordinate
// pairs. holeIndices lists the starting point index of each interior
// ring. The result holds point indices, three per triangle.
//
// This is the classic ear clipping approach: holes are first joined to
// the outer ring through bridges at mutually visible vertices, then ears
// are cut from the merged ring, with repair passes (collinear point
// filtering, local self-intersection cure, polygon splitting) for
// degenerate input. Input ring winding does not matter; rings are
// normalized internally. Output is fully determined by the input.
func earcut(data []float64, holeIndices []int) []uint32 {
	outerLen := len(data)
	if len(holeIndices) > 0 {
		outerLen = holeIndices[0] * 2
	}
	outerNode := ringList(data, 0, outerLen, true)

	var triangles []uint32
	if outerNode == nil || outerNode.next == outerNode.prev {
		return triangles
	}
	if len(holeIndices) > 0 {
		outerNode = eliminateHoles(data, holeIndices, outerNode)
	}
	earcutLinked(outerNode, &triangles, 0)
	return triangles
}

// earNode is one vertex of the circular doubly-linked polygon ring.
type earNode struct {
	i          int // point index in the input data
	x, y       float64
	prev, next *earNode
	steiner    bool
}

// ringList builds a circular list from one ring of the flat data,
// ordered so that the requested winding holds.
func ringList(data []float64, start, end int, clockwise bool) *earNode {
	var last *earNode
	if clockwise == (flatSignedArea(data, start, end) > 0) {
		for i := start; i < end; i += 2 {
			last = insertEarNode(i/2, data[i], data[i+1], last)
		}
	} else {
		for i := end - 2; i >= start; i -= 2 {
			last = insertEarNode(i/2, data[i], data[i+1], last)
		}
	}
	if last != nil && nodeEquals(last, last.next) {
		removeEarNode(last)
		last = last.next
	}
	return last
}

func flatSignedArea(data []float64, start, end int) float64 {
	var sum float64
	j := end - 2
	for i := start; i < end; i += 2 {
		sum += (data[j] - data[i]) * (data[i+1] + data[j+1])
		j = i
	}
	return sum
}

func insertEarNode(i int, x, y float64, last *earNode) *earNode {
	p := &earNode{i: i, x: x, y: y}
	if last == nil {
		p.prev = p
		p.next = p
	} else {
		p.next = last.next
		p.prev = last
		last.next.prev = p
		last.next = p
	}
	return p
}

func removeEarNode(p *earNode) {
	p.next.prev = p.prev
	p.prev.next = p.next
}

// earcutLinked cuts ears off the ring until it is consumed. When a full
// lap finds no ear the pass counter escalates through the repair
// strategies before giving up.
func earcutLinked(ear *earNode, triangles *[]uint32, pass int) {
	if ear == nil {
		return
	}

	stop := ear
	for ear.prev != ear.next {
		prev := ear.prev
		next := ear.next
		if isEar(ear) {
			*triangles = append(*triangles, uint32(prev.i), uint32(ear.i), uint32(next.i))
			removeEarNode(ear)
			ear = next.next
			stop = next.next
			continue
		}

		ear = next
		if ear == stop {
			switch pass {
			case 0:
				earcutLinked(filterPoints(ear, nil), triangles, 1)
			case 1:
				ear = cureLocalIntersections(filterPoints(ear, nil), triangles)
				earcutLinked(ear, triangles, 2)
			case 2:
				splitEarcut(ear, triangles)
			}
			return
		}
	}
}

// isEar reports whether the triangle at ear is convex and contains no
// other reflex vertex of the ring.
func isEar(ear *earNode) bool {
	a, b, c := ear.prev, ear, ear.next
	if earArea(a, b, c) >= 0 {
		return false // reflex corner
	}

	x0 := min(a.x, b.x, c.x)
	y0 := min(a.y, b.y, c.y)
	x1 := max(a.x, b.x, c.x)
	y1 := max(a.y, b.y, c.y)

	for p := c.next; p != a; p = p.next {
		if p.x >= x0 && p.x <= x1 && p.y >= y0 && p.y <= y1 &&
			pointInTriangleExceptFirst(a.x, a.y, b.x, b.y, c.x, c.y, p.x, p.y) &&
			earArea(p.prev, p, p.next) >= 0 {
			return false
		}
	}
	return true
}

// filterPoints removes colinear and duplicate vertices between start and
// end, returning the surviving end node or nil when the ring collapses.
func filterPoints(start, end *earNode) *earNode {
	if start == nil {
		return nil
	}
	if end == nil {
		end = start
	}

	p := start
	for {
		again := false
		if !p.steiner && (nodeEquals(p, p.next) || earArea(p.prev, p, p.next) == 0) {
			removeEarNode(p)
			p = p.prev
			end = p
			if p == p.next {
				return nil
			}
			again = true
		} else {
			p = p.next
		}
		if !again && p == end {
			return end
		}
	}
}

// cureLocalIntersections resolves pairs of adjacent self-intersecting
// edges by clipping the pinch triangle.
func cureLocalIntersections(start *earNode, triangles *[]uint32) *earNode {
	if start == nil {
		return nil
	}
	p := start
	for {
		a, b := p.prev, p.next.next
		if !nodeEquals(a, b) && edgesIntersect(a, p, p.next, b) &&
			locallyInside(a, b) && locallyInside(b, a) {
			*triangles = append(*triangles, uint32(a.i), uint32(p.i), uint32(b.i))
			removeEarNode(p)
			removeEarNode(p.next)
			p = b
			start = b
		}
		p = p.next
		if p == start {
			break
		}
	}
	return filterPoints(p, nil)
}

// splitEarcut splits the ring along a valid internal diagonal and
// triangulates both halves independently.
func splitEarcut(start *earNode, triangles *[]uint32) {
	if start == nil {
		return
	}
	a := start
	for {
		for b := a.next.next; b != a.prev; b = b.next {
			if a.i != b.i && isValidDiagonal(a, b) {
				c := splitRing(a, b)
				a = filterPoints(a, a.next)
				c = filterPoints(c, c.next)
				earcutLinked(a, triangles, 0)
				earcutLinked(c, triangles, 0)
				return
			}
		}
		a = a.next
		if a == start {
			return
		}
	}
}

// eliminateHoles bridges every hole into the outer ring, left to right.
func eliminateHoles(data []float64, holeIndices []int, outerNode *earNode) *earNode {
	queue := make([]*earNode, 0, len(holeIndices))
	for i, hi := range holeIndices {
		start := hi * 2
		end := len(data)
		if i < len(holeIndices)-1 {
			end = holeIndices[i+1] * 2
		}
		list := ringList(data, start, end, false)
		if list == nil {
			continue
		}
		if list == list.next {
			list.steiner = true
		}
		queue = append(queue, leftmostNode(list))
	}

	sort.Slice(queue, func(i, j int) bool {
		a, b := queue[i], queue[j]
		if a.x != b.x {
			return a.x < b.x
		}
		if a.y != b.y {
			return a.y < b.y
		}
		return a.i < b.i
	})

	for _, hole := range queue {
		outerNode = eliminateHole(hole, outerNode)
	}
	return outerNode
}

func eliminateHole(hole, outerNode *earNode) *earNode {
	bridge := findHoleBridge(hole, outerNode)
	if bridge == nil {
		return outerNode
	}
	bridgeReverse := splitRing(bridge, hole)
	filterPoints(bridgeReverse, bridgeReverse.next)
	return filterPoints(bridge, bridge.next)
}

// findHoleBridge locates an outer-ring vertex visible from the hole's
// leftmost vertex, using a leftward ray cast and an angular tie-break.
func findHoleBridge(hole, outerNode *earNode) *earNode {
	p := outerNode
	hx, hy := hole.x, hole.y
	qx := math.Inf(-1)
	var m *earNode

	// Find the edge the leftward ray hits first; its endpoint with the
	// lesser x is the candidate connection point.
	for {
		if hy <= p.y && hy >= p.next.y && p.next.y != p.y {
			x := p.x + (hy-p.y)*(p.next.x-p.x)/(p.next.y-p.y)
			if x <= hx && x > qx {
				qx = x
				m = p
				if p.x >= p.next.x {
					m = p.next
				}
				if x == hx {
					return m // ray passes through the vertex
				}
			}
		}
		p = p.next
		if p == outerNode {
			break
		}
	}
	if m == nil {
		return nil
	}

	// Vertices inside the triangle between the hole point, the ray hit
	// and the candidate would be crossed by the bridge; among them pick
	// the one with the smallest angle to the ray.
	stop := m
	mx, my := m.x, m.y
	tanMin := math.Inf(1)
	p = m
	for {
		ax, cx := qx, hx
		if hy < my {
			ax, cx = hx, qx
		}
		if hx >= p.x && p.x >= mx && hx != p.x &&
			pointInTriangle(ax, hy, mx, my, cx, hy, p.x, p.y) {
			tan := math.Abs(hy-p.y) / (hx - p.x)
			if locallyInside(p, hole) &&
				(tan < tanMin || (tan == tanMin && (p.x > m.x || (p.x == m.x && sectorContains(m, p))))) {
				m = p
				tanMin = tan
			}
		}
		p = p.next
		if p == stop {
			break
		}
	}
	return m
}

// sectorContains reports whether the angular sector at m contains the
// sector at p, for bridge tie-breaking between equal-angle candidates.
func sectorContains(m, p *earNode) bool {
	return earArea(m.prev, m, p.prev) < 0 && earArea(p.next, m, m.next) < 0
}

func leftmostNode(start *earNode) *earNode {
	p, leftmost := start, start
	for {
		if p.x < leftmost.x || (p.x == leftmost.x && p.y < leftmost.y) {
			leftmost = p
		}
		p = p.next
		if p == start {
			return leftmost
		}
	}
}

// isValidDiagonal reports whether segment a-b lies inside the polygon
// without crossing any edge.
func isValidDiagonal(a, b *earNode) bool {
	if a.next.i == b.i || a.prev.i == b.i || intersectsRing(a, b) {
		return false
	}
	if locallyInside(a, b) && locallyInside(b, a) && middleInside(a, b) &&
		(earArea(a.prev, a, b.prev) != 0 || earArea(a, b.prev, b) != 0) {
		return true
	}
	// Zero-length diagonal between duplicated vertices of two convex
	// corners.
	return nodeEquals(a, b) && earArea(a.prev, a, a.next) > 0 && earArea(b.prev, b, b.next) > 0
}

// earArea is the doubled signed area of the triangle (p, q, r).
func earArea(p, q, r *earNode) float64 {
	return (q.y-p.y)*(r.x-q.x) - (q.x-p.x)*(r.y-q.y)
}

func nodeEquals(a, b *earNode) bool {
	return a.x == b.x && a.y == b.y
}

// edgesIntersect reports whether segments p1-q1 and p2-q2 intersect,
// including collinear overlap.
func edgesIntersect(p1, q1, p2, q2 *earNode) bool {
	o1 := areaSign(earArea(p1, q1, p2))
	o2 := areaSign(earArea(p1, q1, q2))
	o3 := areaSign(earArea(p2, q2, p1))
	o4 := areaSign(earArea(p2, q2, q1))

	if o1 != o2 && o3 != o4 {
		return true
	}
	if o1 == 0 && onSegment(p1, p2, q1) {
		return true
	}
	if o2 == 0 && onSegment(p1, q2, q1) {
		return true
	}
	if o3 == 0 && onSegment(p2, p1, q2) {
		return true
	}
	if o4 == 0 && onSegment(p2, q1, q2) {
		return true
	}
	return false
}

// onSegment reports whether q lies on segment p-r, assuming the three
// points are collinear.
func onSegment(p, q, r *earNode) bool {
	return q.x <= max(p.x, r.x) && q.x >= min(p.x, r.x) &&
		q.y <= max(p.y, r.y) && q.y >= min(p.y, r.y)
}

func areaSign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// intersectsRing reports whether segment a-b crosses any polygon edge.
func intersectsRing(a, b *earNode) bool {
	p := a
	for {
		if p.i != a.i && p.next.i != a.i && p.i != b.i && p.next.i != b.i &&
			edgesIntersect(p, p.next, a, b) {
			return true
		}
		p = p.next
		if p == a {
			return false
		}
	}
}

// locallyInside reports whether segment a-b lies inside the polygon in
// the neighborhood of a.
func locallyInside(a, b *earNode) bool {
	if earArea(a.prev, a, a.next) < 0 {
		return earArea(a, b, a.next) >= 0 && earArea(a, a.prev, b) >= 0
	}
	return earArea(a, b, a.prev) < 0 || earArea(a, a.next, b) < 0
}

// middleInside reports whether the midpoint of a-b is inside the polygon.
func middleInside(a, b *earNode) bool {
	px := (a.x + b.x) / 2
	py := (a.y + b.y) / 2
	inside := false
	p := a
	for {
		if (p.y > py) != (p.next.y > py) && p.next.y != p.y &&
			px < (p.next.x-p.x)*(py-p.y)/(p.next.y-p.y)+p.x {
			inside = !inside
		}
		p = p.next
		if p == a {
			return inside
		}
	}
}

// splitRing links a-b and its mirror b2-a2, splitting one ring into two
// sharing the bridge edge. Returns the new node mirroring b.
func splitRing(a, b *earNode) *earNode {
	a2 := &earNode{i: a.i, x: a.x, y: a.y}
	b2 := &earNode{i: b.i, x: b.x, y: b.y}
	an := a.next
	bp := b.prev

	a.next = b
	b.prev = a
	a2.next = an
	an.prev = a2
	b2.next = a2
	a2.prev = b2
	bp.next = b2
	b2.prev = bp
	return b2
}

func pointInTriangle(ax, ay, bx, by, cx, cy, px, py float64) bool {
	return (cx-px)*(ay-py) >= (ax-px)*(cy-py) &&
		(ax-px)*(by-py) >= (bx-px)*(ay-py) &&
		(bx-px)*(cy-py) >= (cx-px)*(by-py)
}

// pointInTriangleExceptFirst excludes the degenerate case of p sitting
// exactly on the first triangle corner, which bridge duplicates do.
func pointInTriangleExceptFirst(ax, ay, bx, by, cx, cy, px, py float64) bool {
	return !(ax == px && ay == py) && pointInTriangle(ax, ay, bx, by, cx, cy, px, py)
}
