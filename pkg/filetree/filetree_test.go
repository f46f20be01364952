package filetree

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/function61/gokit/assert"
)

func TestBuildAggregatesDirectories(t *testing.T) {
	root, err := Build([]Entry{
		{PathComponents: []string{"a", "b.txt"}, SizeBytes: 100, CompletedChunks: 2, TotalChunks: 2},
		{PathComponents: []string{"a", "c.txt"}, SizeBytes: 50, CompletedChunks: 1, TotalChunks: 2},
		{PathComponents: []string{"d.txt"}, SizeBytes: 10, CompletedChunks: 1, TotalChunks: 1},
	})
	assert.Ok(t, err)

	assert.Assert(t, len(root.Children) == 2)
	assert.Assert(t, root.SizeBytes == 160)
	assert.Assert(t, root.CompletedChunks == 4)
	assert.Assert(t, root.TotalChunks == 5)

	a := root.Children["a"]
	assert.Assert(t, !a.IsLeaf)
	assert.Assert(t, a.SizeBytes == 150)
	assert.Assert(t, a.CompletedChunks == 3)
	assert.Assert(t, a.TotalChunks == 4)
	assert.Assert(t, len(a.Children) == 2)
	assert.Assert(t, a.Children["b.txt"].IsLeaf)
	assert.Assert(t, a.Children["c.txt"].IsLeaf)

	d := root.Children["d.txt"]
	assert.Assert(t, d.IsLeaf)
	assert.Assert(t, d.SizeBytes == 10)
}

func TestDuplicatePrefixesMergeIntoOneNode(t *testing.T) {
	root, err := Build([]Entry{
		{PathComponents: []string{"season1", "e01", "video.mkv"}, SizeBytes: 1},
		{PathComponents: []string{"season1", "e01", "subs.srt"}, SizeBytes: 2},
		{PathComponents: []string{"season1", "e02", "video.mkv"}, SizeBytes: 4},
	})
	assert.Ok(t, err)

	assert.Assert(t, len(root.Children) == 1)

	season := root.Children["season1"]
	assert.Assert(t, len(season.Children) == 2)
	assert.Assert(t, season.SizeBytes == 7)
	assert.Assert(t, len(season.Children["e01"].Children) == 2)
}

func TestDuplicateFullPathRejected(t *testing.T) {
	_, err := Build([]Entry{
		{PathComponents: []string{"a", "b.txt"}, SizeBytes: 100},
		{PathComponents: []string{"a", "b.txt"}, SizeBytes: 50},
	})

	assert.Assert(t, errors.Is(err, ErrDuplicatePathEntry))
	assert.EqualString(t, err.Error(), "duplicate path entry: a/b.txt")
}

func TestMalformedEntries(t *testing.T) {
	_, err := Build([]Entry{{PathComponents: []string{}}})
	assert.Assert(t, errors.Is(err, ErrMalformedPathEntry))

	_, err = Build([]Entry{{PathComponents: []string{"a", "", "b.txt"}}})
	assert.Assert(t, errors.Is(err, ErrMalformedPathEntry))

	// a file cannot double as a directory
	_, err = Build([]Entry{
		{PathComponents: []string{"a"}},
		{PathComponents: []string{"a", "b.txt"}},
	})
	assert.Assert(t, errors.Is(err, ErrMalformedPathEntry))
}

func TestEmptyListingGivesEmptyRoot(t *testing.T) {
	root, err := Build(nil)
	assert.Ok(t, err)

	assert.Assert(t, !root.IsLeaf)
	assert.Assert(t, len(root.Children) == 0)
	assert.Assert(t, root.SizeBytes == 0)
}

func TestWalkOrder(t *testing.T) {
	root, err := Build([]Entry{
		{PathComponents: []string{"zz.txt"}, SizeBytes: 1},
		{PathComponents: []string{"b", "y.txt"}, SizeBytes: 2},
		{PathComponents: []string{"b", "x.txt"}, SizeBytes: 3},
		{PathComponents: []string{"a.txt"}, SizeBytes: 4},
	})
	assert.Ok(t, err)

	visited := []string{}
	root.Walk(func(depth int, node *Node) {
		visited = append(visited, fmt.Sprintf("%d:%s", depth, node.Name))
	})

	// directories before files, then lexical; children directly after their parent
	assert.EqualString(t, strings.Join(visited, " "), "0:b 1:x.txt 1:y.txt 0:a.txt 0:zz.txt")
}
