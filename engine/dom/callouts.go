package dom

import (
	"fmt"
	"strings"
)

type callout struct {
	ordinal int
	id      string
}

// Callouts maps callout markers of verbatim blocks to the items of the
// callout list following them. Each verbatim block and the callout list
// after it share one list of callouts. IDs have the form "CO<list>-<n>".
//
// The parser registers the markers of a verbatim block and advances to
// the next list after a callout list. For substitution, the registry is
// rewound and the IDs are read again in the same order.
type Callouts struct {
	lists     [][]callout
	listIndex int
	coIndex   int
	items     map[string]BlockID
}

// NewCallouts creates an empty callout registry.
func NewCallouts() *Callouts {
	return &Callouts{
		lists: [][]callout{nil},
		items: make(map[string]BlockID),
	}
}

func (c *Callouts) current() []callout {
	return c.lists[c.listIndex]
}

// Register registers a callout marker of the current list and returns its
// ID.
func (c *Callouts) Register(ordinal int) string {
	id := fmt.Sprintf("CO%d-%d", c.listIndex+1, len(c.current())+1)
	c.lists[c.listIndex] = append(c.lists[c.listIndex], callout{ordinal: ordinal, id: id})
	c.coIndex = len(c.lists[c.listIndex])
	tracer().Debugf("callout <%d> registered as %s", ordinal, id)
	return id
}

// ReadNextID returns the ID of the next callout of the current list, or
// "" if all have been read.
func (c *Callouts) ReadNextID() string {
	list := c.current()
	if c.coIndex >= len(list) {
		return ""
	}
	id := list[c.coIndex].id
	c.coIndex++
	return id
}

// IDs returns the space separated IDs of all callouts of the current list
// with a given ordinal.
func (c *Callouts) IDs(ordinal int) string {
	var ids []string
	for _, co := range c.current() {
		if co.ordinal == ordinal {
			ids = append(ids, co.id)
		}
	}
	return strings.Join(ids, " ")
}

// Ordinals returns the ordinals of the callouts of the current list.
func (c *Callouts) Ordinals() []int {
	list := c.current()
	ords := make([]int, len(list))
	for i, co := range list {
		ords[i] = co.ordinal
	}
	return ords
}

// NextList advances to the next list of callouts.
func (c *Callouts) NextList() {
	c.listIndex++
	if c.listIndex >= len(c.lists) {
		c.lists = append(c.lists, nil)
	}
	c.coIndex = 0
}

// Rewind resets the registry to the first list.
func (c *Callouts) Rewind() {
	c.listIndex = 0
	c.coIndex = 0
}

// Associate links a callout ID to the callout list item explaining it.
func (c *Callouts) Associate(coid string, item BlockID) {
	c.items[coid] = item
}

// ItemFor returns the callout list item associated with a callout ID.
func (c *Callouts) ItemFor(coid string) (BlockID, bool) {
	item, ok := c.items[coid]
	return item, ok
}
