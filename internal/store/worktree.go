package store

import (
	"io"
	"path/filepath"

	"gitpen-go/internal/gitpen"
)

// OSWorkingTree writes restored files into a working directory on disk.
type OSWorkingTree struct {
	root string
}

// NewOSWorkingTree creates a working tree rooted at the given directory.
func NewOSWorkingTree(root string) *OSWorkingTree {
	return &OSWorkingTree{root: root}
}

// WriteFile writes content under the working directory by base name,
// overwriting any existing file.
func (t *OSWorkingTree) WriteFile(name string, r io.Reader) error {
	return writeFileAtomic(filepath.Join(t.root, name), r)
}

// Compile-time check that OSWorkingTree implements gitpen.WorkingTree
var _ gitpen.WorkingTree = (*OSWorkingTree)(nil)
