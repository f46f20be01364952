// Rebuilds a torrent's directory tree from the flat per-file listing rtorrent gives
// us, aggregating sizes and chunk completion up the tree so every directory knows how
// big it is and how done it is.
package filetree

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
)

var (
	ErrMalformedPathEntry = errors.New("malformed path entry")
	ErrDuplicatePathEntry = errors.New("duplicate path entry")
)

// one file as reported by the daemon
type Entry struct {
	PathComponents  []string
	SizeBytes       int64
	CompletedChunks int64
	TotalChunks     int64
}

// Node is a file (leaf) or directory. For directories the size/chunk figures are the
// sums over all descendants; leaves carry their own direct values. The root node is
// the torrent's top-level directory and has an empty name.
type Node struct {
	Name            string
	IsLeaf          bool
	SizeBytes       int64
	CompletedChunks int64
	TotalChunks     int64
	Children        map[string]*Node
}

// built fresh per request; derived data, so callers cache the listing it was built
// from rather than the tree itself
func Build(entries []Entry) (*Node, error) {
	root := newDirectory("")

	for _, entry := range entries {
		if err := insert(root, entry); err != nil {
			return nil, err
		}
	}

	aggregate(root)

	return root, nil
}

func insert(root *Node, entry Entry) error {
	if len(entry.PathComponents) == 0 {
		return fmt.Errorf("%w: empty path", ErrMalformedPathEntry)
	}
	for _, component := range entry.PathComponents {
		if component == "" {
			return fmt.Errorf(
				"%w: empty component in %s",
				ErrMalformedPathEntry,
				strings.Join(entry.PathComponents, "/"))
		}
	}

	fullPath := strings.Join(entry.PathComponents, "/")

	parent := root
	for _, component := range entry.PathComponents[:len(entry.PathComponents)-1] {
		child, exists := parent.Children[component]
		if !exists {
			// same segment at the same depth under the same parent merges into one node
			child = newDirectory(component)
			parent.Children[component] = child
		} else if child.IsLeaf {
			return fmt.Errorf("%w: %s: file where a directory was expected", ErrMalformedPathEntry, fullPath)
		}

		parent = child
	}

	leafName := entry.PathComponents[len(entry.PathComponents)-1]
	if _, exists := parent.Children[leafName]; exists {
		// no silent overwrite and no silent merge
		return fmt.Errorf("%w: %s", ErrDuplicatePathEntry, fullPath)
	}

	parent.Children[leafName] = &Node{
		Name:            leafName,
		IsLeaf:          true,
		SizeBytes:       entry.SizeBytes,
		CompletedChunks: entry.CompletedChunks,
		TotalChunks:     entry.TotalChunks,
	}

	return nil
}

// post-order: every directory's figures become the sums of its children's
func aggregate(node *Node) {
	if node.IsLeaf {
		return
	}

	node.SizeBytes = 0
	node.CompletedChunks = 0
	node.TotalChunks = 0

	for _, child := range node.Children {
		aggregate(child)

		node.SizeBytes += child.SizeBytes
		node.CompletedChunks += child.CompletedChunks
		node.TotalChunks += child.TotalChunks
	}
}

func newDirectory(name string) *Node {
	return &Node{
		Name:     name,
		Children: map[string]*Node{},
	}
}

// directories first, then by name; for stable rendering
func (n *Node) SortedChildren() []*Node {
	children := lo.Values(n.Children)

	sort.Slice(children, func(i, j int) bool {
		if children[i].IsLeaf != children[j].IsLeaf {
			return !children[i].IsLeaf
		}

		return children[i].Name < children[j].Name
	})

	return children
}

// depth-first visit in SortedChildren order. root itself is not visited.
func (n *Node) Walk(visit func(depth int, node *Node)) {
	var recurse func(depth int, node *Node)
	recurse = func(depth int, node *Node) {
		for _, child := range node.SortedChildren() {
			visit(depth, child)
			recurse(depth+1, child)
		}
	}

	recurse(0, n)
}
