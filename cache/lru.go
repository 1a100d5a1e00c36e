package cache

import "github.com/siddheshzz/galileo/tile"

// lruNode is a node in the recency list. Nodes carry their request so a
// scan can delete the owning map entry in O(1).
type lruNode struct {
	key  tile.Request
	prev *lruNode
	next *lruNode
}

// lruList is a doubly-linked recency list: head is the most recently
// used entry, tail the least. The zero value is an empty list. Not safe
// for concurrent use; TileCache holds the lock.
type lruList struct {
	head *lruNode
	tail *lruNode
	len  int
}

// Len returns the number of nodes in the list.
func (l *lruList) Len() int {
	return l.len
}

// PushFront adds a new node at the front and returns it for later
// MoveToFront/Remove calls.
func (l *lruList) PushFront(key tile.Request) *lruNode {
	node := &lruNode{key: key}
	if l.head == nil {
		l.head = node
		l.tail = node
	} else {
		node.next = l.head
		l.head.prev = node
		l.head = node
	}
	l.len++
	return node
}

// MoveToFront marks an existing node most recently used.
func (l *lruList) MoveToFront(node *lruNode) {
	if node == nil || node == l.head {
		return
	}

	l.unlink(node)

	node.next = l.head
	if l.head != nil {
		l.head.prev = node
	}
	l.head = node
	if l.tail == nil {
		l.tail = node
	}
	l.len++
}

// Remove takes a node out of the list.
func (l *lruList) Remove(node *lruNode) {
	if node == nil {
		return
	}
	l.unlink(node)
}

// Back returns the least recently used node, nil when empty. Eviction
// scans start here and walk prev pointers toward the front.
func (l *lruList) Back() *lruNode {
	return l.tail
}

// unlink removes a node and clears its pointers.
func (l *lruList) unlink(node *lruNode) {
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		l.head = node.next
	}

	if node.next != nil {
		node.next.prev = node.prev
	} else {
		l.tail = node.prev
	}

	node.prev = nil
	node.next = nil
	l.len--
}
