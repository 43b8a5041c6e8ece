package display

import (
	"sync"

	"bubbleviz/domain/core"
	"bubbleviz/ports"
)

// Buffer is an in-memory display target. It keeps only the latest content;
// concurrent draws resolve last-write-wins.
type Buffer struct {
	id core.ChartID

	mu       sync.RWMutex
	content  ports.Content
	revision int
	onShow   []func(ports.Content, int)
}

// NewBuffer creates an empty target with a fresh chart id
func NewBuffer() *Buffer {
	return &Buffer{id: core.NewChartID()}
}

// NewBufferWithID creates an empty target with a caller chosen id
func NewBufferWithID(id core.ChartID) *Buffer {
	return &Buffer{id: id}
}

// ID returns the chart id of the target
func (b *Buffer) ID() string {
	return b.id.String()
}

// Show replaces the content and notifies listeners with the new revision
func (b *Buffer) Show(content ports.Content) {
	b.mu.Lock()
	b.content = content
	b.revision++
	rev := b.revision
	listeners := append([]func(ports.Content, int){}, b.onShow...)
	b.mu.Unlock()

	for _, fn := range listeners {
		fn(content, rev)
	}
}

// Content returns the latest content and its revision; revision 0 means
// nothing has been shown yet.
func (b *Buffer) Content() (ports.Content, int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.content, b.revision
}

// OnShow registers fn to run after every Show
func (b *Buffer) OnShow(fn func(content ports.Content, revision int)) {
	b.mu.Lock()
	b.onShow = append(b.onShow, fn)
	b.mu.Unlock()
}
