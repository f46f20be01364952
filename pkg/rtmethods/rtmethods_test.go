package rtmethods

import (
	"errors"
	"testing"

	"github.com/function61/gokit/assert"
)

func TestResolve(t *testing.T) {
	table := GlobalMethods()

	remote, err := table.Resolve("get_libtorrent_version")
	assert.Ok(t, err)
	assert.EqualString(t, remote, "system.library_version")

	_, err = table.Resolve("get_flux_capacitance")
	assert.Assert(t, errors.Is(err, ErrUnknownOperation))
	assert.EqualString(t, err.Error(), "unknown operation: get_flux_capacitance")
}

func TestHas(t *testing.T) {
	table := TorrentMethods()

	assert.Assert(t, table.Has("get_name"))
	assert.Assert(t, !table.Has("get_upload_throttle")) // global op, not a torrent op
}

func TestDuplicateLocalNameRejected(t *testing.T) {
	_, err := NewTable([]MethodSpec{
		{"get_name", "d.get_name", ""},
		{"get_name", "d.name", ""},
	})
	assert.EqualString(t, err.Error(), "method table: duplicate local name: get_name")
}

func TestSpecsKeepsRegistrationOrder(t *testing.T) {
	specs := FileMethods().Specs()

	assert.EqualString(t, specs[0].Local, "get_path")
	assert.EqualString(t, specs[len(specs)-1].Local, "get_priority")
}
