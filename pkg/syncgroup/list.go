package syncgroup

// nilSlot terminates slot chains.
const nilSlot = -1

// slot is one arena cell. Occupied slots are chained from list.head, free
// slots from list.free, both through next.
type slot struct {
	entry entry
	next  int
}

// list is a singly linked list of entries stored in an arena of stable
// slots. Slot indices never move, so a walk that captured the next index
// before mutating the list stays valid when the current node is relocated
// to the front.
type list struct {
	slots []slot
	head  int
	tail  int
	free  int
	size  int
}

func newList() list {
	return list{head: nilSlot, tail: nilSlot, free: nilSlot}
}

// len returns the number of occupied slots.
func (l *list) len() int { return l.size }

// at returns the entry stored in slot i.
func (l *list) at(i int) *entry { return &l.slots[i].entry }

// next returns the slot following i, or nilSlot.
func (l *list) next(i int) int { return l.slots[i].next }

// pushBack appends e at the tail and returns its slot.
func (l *list) pushBack(e entry) int {
	var i int
	if l.free != nilSlot {
		i = l.free
		l.free = l.slots[i].next
		l.slots[i] = slot{entry: e, next: nilSlot}
	} else {
		i = len(l.slots)
		l.slots = append(l.slots, slot{entry: e, next: nilSlot})
	}

	if l.tail == nilSlot {
		l.head = i
	} else {
		l.slots[l.tail].next = i
	}
	l.tail = i
	l.size++
	return i
}

// find returns the first slot matching pred together with its predecessor.
// Both are nilSlot when nothing matches; prev is nilSlot for the head.
func (l *list) find(pred func(*entry) bool) (i, prev int) {
	prev = nilSlot
	for i = l.head; i != nilSlot; i = l.slots[i].next {
		if pred(&l.slots[i].entry) {
			return i, prev
		}
		prev = i
	}
	return nilSlot, nilSlot
}

// unlink detaches slot i (whose predecessor is prev) from the chain without
// releasing it.
func (l *list) unlink(i, prev int) {
	next := l.slots[i].next
	if prev == nilSlot {
		l.head = next
	} else {
		l.slots[prev].next = next
	}
	if l.tail == i {
		l.tail = prev
	}
	l.slots[i].next = nilSlot
}

// remove releases slot i to the free list. The entry is cleared so the list
// keeps no reference to the reader.
func (l *list) remove(i, prev int) {
	l.unlink(i, prev)
	l.slots[i] = slot{next: l.free}
	l.free = i
	l.size--
}

// moveToFront relocates slot i (whose predecessor is prev) to the head in O(1).
func (l *list) moveToFront(i, prev int) {
	if prev == nilSlot {
		return
	}
	l.unlink(i, prev)
	l.slots[i].next = l.head
	l.head = i
}
