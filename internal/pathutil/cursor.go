package pathutil

import "sync"

// Cursors deeper than this are dropped instead of being returned to the pool.
const maxPooledDepth = 64

var cursorPool = sync.Pool{
	New: func() any { return &Cursor{segments: make([]Segment, 0, 8)} },
}

// Cursor tracks the current position while walking a decoded document.
// Descend with Key or Index and return with Up. Nothing is allocated until
// Path or String copies the position out.
//
// A Cursor is not safe for concurrent use.
type Cursor struct {
	segments []Segment
}

// AcquireCursor returns an empty Cursor from the pool. Hand it back with
// Release once the walk is done.
func AcquireCursor() *Cursor {
	c := cursorPool.Get().(*Cursor)
	c.segments = c.segments[:0]
	return c
}

// Release returns c to the pool. c must not be used afterwards.
func (c *Cursor) Release() {
	if c == nil || cap(c.segments) > maxPooledDepth {
		return
	}
	cursorPool.Put(c)
}

// Key descends into the object member name.
func (c *Cursor) Key(name string) {
	c.segments = append(c.segments, KeySegment(name))
}

// Index descends into array element i.
func (c *Cursor) Index(i int) {
	c.segments = append(c.segments, IndexSegment(i))
}

// Up moves back to the parent. At the root it is a no-op.
func (c *Cursor) Up() {
	if n := len(c.segments); n > 0 {
		c.segments = c.segments[:n-1]
	}
}

// Depth reports how many segments below the root the cursor is.
func (c *Cursor) Depth() int {
	return len(c.segments)
}

// Path copies out the current position. The root yields a nil Path.
func (c *Cursor) Path() Path {
	if len(c.segments) == 0 {
		return nil
	}
	return append(Path(nil), c.segments...)
}

func (c *Cursor) String() string {
	return Path(c.segments).String()
}
