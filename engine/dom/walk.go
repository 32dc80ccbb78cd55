package dom

// WalkResult steers a traversal.
type WalkResult int8

// Results of a visitor function.
const (
	WalkContinue WalkResult = iota // descend into children
	WalkSkip                       // skip the children of the current block
	WalkStop                       // end the traversal
)

// Visitor is called for each block of a traversal, with the depth of the
// block relative to the start of the traversal.
type Visitor func(b *Block, depth int) WalkResult

// Walk traverses the document tree depth-first, starting at the root.
func (d *Document) Walk(visit Visitor) {
	d.WalkFrom(Root, visit)
}

// WalkFrom traverses the subtree of a block depth-first. It returns
// WalkStop if the traversal has been stopped.
func (d *Document) WalkFrom(id BlockID, visit Visitor) WalkResult {
	return d.walk(id, 0, visit)
}

func (d *Document) walk(id BlockID, depth int, visit Visitor) WalkResult {
	b := d.Block(id)
	if b == nil {
		return WalkContinue
	}
	switch visit(b, depth) {
	case WalkStop:
		return WalkStop
	case WalkSkip:
		return WalkContinue
	}
	for _, ch := range b.Children {
		if d.walk(ch, depth+1, visit) == WalkStop {
			return WalkStop
		}
	}
	return WalkContinue
}

// Find returns the first block in document order for which pred is true.
func (d *Document) Find(pred func(*Block) bool) *Block {
	var found *Block
	d.Walk(func(b *Block, _ int) WalkResult {
		if pred(b) {
			found = b
			return WalkStop
		}
		return WalkContinue
	})
	return found
}

// FindAll returns all blocks in document order for which pred is true.
func (d *Document) FindAll(pred func(*Block) bool) []*Block {
	var found []*Block
	d.Walk(func(b *Block, _ int) WalkResult {
		if pred(b) {
			found = append(found, b)
		}
		return WalkContinue
	})
	return found
}
