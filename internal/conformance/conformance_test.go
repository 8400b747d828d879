// Package conformance cross-checks internal/decoder's structural reading
// against github.com/go-interpreter/wagon's independent wasm.ReadModule, the
// same dependency the teacher's vm_test.go (TestInvoke, TestWasmSuite) and
// wasm_spec_test.go use to execute the official conformance suite. We don't
// carry wagon's exec engine forward (spec.md §1 excludes execution), but
// wagon's own structural reader is still a second, independently-written
// parser of the same binary format, so agreement between the two is a real
// (if partial) structural check.
package conformance_test

import (
	"bytes"
	"testing"

	wagon "github.com/go-interpreter/wagon/wasm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vertexdlt/weaselm/internal/decoder"
	"github.com/vertexdlt/weaselm/internal/fixtures"
)

func TestAddFunctionAgreesWithWagon(t *testing.T) {
	data := fixtures.AddFunction()

	ours, err := decoder.Decode(data)
	require.NoError(t, err)

	theirs, err := wagon.ReadModule(bytes.NewReader(data), nil)
	require.NoError(t, err)

	if theirs.Types != nil {
		assert.Len(t, ours.Types, len(theirs.Types.Entries))
	}
	if theirs.Function != nil {
		assert.Len(t, ours.Functions, len(theirs.Function.Types))
	}
	if theirs.Export != nil {
		assert.Len(t, ours.Exports, len(theirs.Export.Entries))
	}
}

func TestTwoMemoriesAgreesWithWagon(t *testing.T) {
	data := fixtures.TwoMemories()

	ours, err := decoder.Decode(data)
	require.NoError(t, err)

	theirs, err := wagon.ReadModule(bytes.NewReader(data), nil)
	require.NoError(t, err)
	require.NotNil(t, theirs.Memory)

	assert.Len(t, ours.Mems, len(theirs.Memory.Entries))
}

func TestEmptyModuleAgreesWithWagon(t *testing.T) {
	data := fixtures.Empty()

	ours, err := decoder.Decode(data)
	require.NoError(t, err)

	theirs, err := wagon.ReadModule(bytes.NewReader(data), nil)
	require.NoError(t, err)

	assert.Nil(t, theirs.Types)
	assert.Empty(t, ours.Types)
	assert.Nil(t, theirs.Function)
	assert.Empty(t, ours.Functions)
}
