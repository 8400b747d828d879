// Package fixtures builds small, hand-assembled WebAssembly 1.0 binaries for
// tests across internal/decoder, internal/validation, and
// internal/conformance, the way the teacher's own wast2json-derived
// test_suite fixtures stand in for real-world modules in vm/wasm_spec_test.go
// — except these are assembled directly as bytes, since this repo has no
// text-format parser to go through (spec.md §1's explicit non-goal).
package fixtures

var preamble = []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}

// section wraps content with its id and a single-byte LEB128 length prefix.
// Every fixture built here stays well under 128 bytes of section content, so
// a plain byte cast is a valid length encoding.
func section(id byte, content []byte) []byte {
	if len(content) >= 128 {
		panic("fixtures: section content too long for single-byte LEB128 length")
	}
	out := []byte{id, byte(len(content))}
	return append(out, content...)
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// Empty is the smallest valid module: just the preamble, no sections.
func Empty() []byte {
	return append([]byte{}, preamble...)
}

// BadMagic corrupts the magic string.
func BadMagic() []byte {
	b := Empty()
	b[1] = 0xFF
	return b
}

// BadVersion corrupts the version field.
func BadVersion() []byte {
	b := Empty()
	b[5] = 0xFF
	return b
}

// Truncated returns a module that ends mid-section.
func Truncated() []byte {
	return concat(preamble, []byte{0x01, 0x07, 0x60, 0x02, 0x7F})
}

// name encodes a length-prefixed string, assuming it is under 128 bytes.
func name(s string) []byte {
	return append([]byte{byte(len(s))}, []byte(s)...)
}

// AddFunction returns a one-function module: an exported "add" function of
// type (i32, i32) -> i32, computing local.get 0 + local.get 1.
func AddFunction() []byte {
	types := section(0x01, concat([]byte{0x01}, funcType([]byte{0x7F, 0x7F}, []byte{0x7F})))
	funcs := section(0x03, []byte{0x01, 0x00})
	exports := section(0x07, concat([]byte{0x01}, name("add"), []byte{0x00, 0x00}))
	body := concat([]byte{0x00}, []byte{0x20, 0x00}, []byte{0x20, 0x01}, []byte{0x6A}, []byte{0x0B})
	code := section(0x0A, concat([]byte{0x01}, []byte{byte(len(body))}, body))
	return concat(preamble, types, funcs, exports, code)
}

// funcType encodes a single function type entry, including its leading 0x60
// form byte (but not the type section's own entry count).
func funcType(params, results []byte) []byte {
	return concat([]byte{0x60, byte(len(params))}, params, []byte{byte(len(results))}, results)
}

// BadExportedFunctionIndex is AddFunction with its export pointing at a
// function index that does not exist.
func BadExportedFunctionIndex() []byte {
	types := section(0x01, concat([]byte{0x01}, funcType([]byte{0x7F, 0x7F}, []byte{0x7F})))
	funcs := section(0x03, []byte{0x01, 0x00})
	exports := section(0x07, concat([]byte{0x01}, name("add"), []byte{0x00, 0x05}))
	body := concat([]byte{0x00}, []byte{0x20, 0x00}, []byte{0x20, 0x01}, []byte{0x6A}, []byte{0x0B})
	code := section(0x0A, concat([]byte{0x01}, []byte{byte(len(body))}, body))
	return concat(preamble, types, funcs, exports, code)
}

// TwoMemories declares two memories, which spec.md §4.7/§9 Open Question 7
// forbids (WebAssembly 1.0 allows at most one, counting imports).
func TwoMemories() []byte {
	mems := section(0x05, []byte{0x02, 0x00, 0x00, 0x00, 0x01})
	return concat(preamble, mems)
}

// TypeMismatchFunction declares a function typed () -> i32 whose body pushes
// an i32 and then drops it, leaving the stack empty where the declared
// result type requires one value.
func TypeMismatchFunction() []byte {
	types := section(0x01, concat([]byte{0x01}, funcType(nil, []byte{0x7F})))
	funcs := section(0x03, []byte{0x01, 0x00})
	body := concat([]byte{0x00}, []byte{0x41, 0x00}, []byte{0x1A}, []byte{0x0B})
	code := section(0x0A, concat([]byte{0x01}, []byte{byte(len(body))}, body))
	return concat(preamble, types, funcs, code)
}

// HugeVectorCountTruncated is a type section whose vector length claims
// 0xFFFFFFFF entries but supplies no element bytes at all, exercising the
// decoder's defense against sizing an allocation off an unvalidated count
// (spec.md §8 Testable Property 1: decode must error, never abort the
// process).
func HugeVectorCountTruncated() []byte {
	// LEB128 for 0xFFFFFFFF: FF FF FF FF 0F
	content := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F}
	types := append([]byte{0x01, byte(len(content))}, content...)
	return concat(preamble, types)
}

// BadFunctionTypeIndex declares a single function whose type index (5)
// has no corresponding entry in the (empty) type section.
func BadFunctionTypeIndex() []byte {
	funcs := section(0x03, []byte{0x01, 0x05})
	body := concat([]byte{0x00}, []byte{0x0B})
	code := section(0x0A, concat([]byte{0x01}, []byte{byte(len(body))}, body))
	return concat(preamble, funcs, code)
}

// BadImportTypeIndex imports a function whose type index (5) has no
// corresponding entry in the (empty) type section.
func BadImportTypeIndex() []byte {
	imports := section(0x02, concat([]byte{0x01}, name("env"), name("f"), []byte{0x00, 0x05}))
	return concat(preamble, imports)
}

// BadAlignment declares a memory and a function whose i32.load uses an
// alignment exponent (3, i.e. 2**3 = 8 bytes) exceeding i32.load's natural
// alignment of 4 bytes (exponent 2).
func BadAlignment() []byte {
	types := section(0x01, concat([]byte{0x01}, funcType([]byte{0x7F}, []byte{0x7F})))
	funcs := section(0x03, []byte{0x01, 0x00})
	mems := section(0x05, []byte{0x01, 0x00, 0x01})
	body := concat([]byte{0x00}, []byte{0x20, 0x00}, []byte{0x28, 0x03, 0x00}, []byte{0x0B})
	code := section(0x0A, concat([]byte{0x01}, []byte{byte(len(body))}, body))
	return concat(preamble, types, funcs, mems, code)
}
