package validation

import (
	"github.com/perlin-network/life/exec"

	"github.com/vertexdlt/weaselm/internal/types"
)

// maxTableElems is the largest a table's limits may declare, per spec.md
// §4.7 (2^32 - 1, i.e. the full range of a u32).
const maxTableElems = 1<<32 - 1

// maxMemPages is the largest a memory's limits may declare, in 64 KiB
// pages. Reuses the teacher's own page-size dependency
// (github.com/perlin-network/life/exec, used by the teacher's main.go for
// the same 64 KiB Wasm page constant) rather than hand-rolling 65536.
const maxMemPages = (1 << 32) / exec.DefaultPageSize

// checkLimits validates limits against an inclusive [0, max] range, per
// spec.md §4.7: min must fit the range; when a maximum is declared, it too
// must fit the range and must be >= min.
func checkLimits(l types.Limits, max uint64, kind string) error {
	if uint64(l.Min) > max {
		return newError("%s limits minimum %d exceeds range", kind, l.Min)
	}
	if l.HasMax {
		if uint64(l.Max) > max {
			return newError("%s limits maximum %d exceeds range", kind, l.Max)
		}
		if l.Max < l.Min {
			return newError("%s limits maximum %d is less than minimum %d", kind, l.Max, l.Min)
		}
	}
	return nil
}

func checkTableType(t types.TableType) error {
	return checkLimits(t.Limits, maxTableElems, "table")
}

func checkMemType(t types.MemType) error {
	return checkLimits(t.Limits, maxMemPages, "memory")
}

// checkFuncType enforces WebAssembly 1.0's single-result-value restriction.
func checkFuncType(t types.FuncType) error {
	if len(t.Results) > 1 {
		return newError("function type has more than one result")
	}
	return nil
}
