// Command testrunner walks a directory of JSON test manifests (the format
// emitted by the reference wast2json tooling) and checks this module's
// decoder/validator against the manifest's expectations, per spec.md §6.
//
// Grounded on the teacher's vm/wasm_spec_test.go TestSuite/Command/Action
// JSON shape (github.com/vertexdlt/vertexvm/vm), generalized from an
// in-package _test.go helper driving the teacher's interpreter into a
// standalone collaborator binary that drives only decode+validate — this
// module does no execution, so assert_return/assert_trap/action/register and
// friends are out of scope and reported as ignored rather than evaluated.
package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/vertexdlt/weaselm/internal/decoder"
	"github.com/vertexdlt/weaselm/internal/validation"
)

// TestSuite is one manifest file: a named collection of ordered commands.
type TestSuite struct {
	SourceFilename string    `json:"source_filename"`
	Commands       []Command `json:"commands"`
}

// Command is one manifest entry. Only these fields are decoded (Text is
// decoded but not used); the rest (action, expected, module_type, ...) are
// left for json.Unmarshal to discard.
type Command struct {
	Type     string `json:"type"`
	Line     int    `json:"line"`
	Filename string `json:"filename"`
	Text     string `json:"text"`
}

type result struct {
	checked int
	failed  int
	ignored int
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: testrunner <dir> [filter]")
		os.Exit(2)
	}
	dir := os.Args[1]
	var filter string
	if len(os.Args) >= 3 {
		filter = os.Args[2]
	}

	manifests, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "testrunner: %v\n", err)
		os.Exit(2)
	}

	total := result{}
	for _, path := range manifests {
		if filter != "" && !strings.Contains(filepath.Base(path), filter) {
			continue
		}
		r, err := runManifest(dir, path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "testrunner: %s: %v\n", path, err)
			os.Exit(2)
		}
		total.checked += r.checked
		total.failed += r.failed
		total.ignored += r.ignored
	}

	fmt.Printf("checked %d, failed %d, ignored %d\n", total.checked, total.failed, total.ignored)
	os.Exit(total.failed)
}

func runManifest(dir, path string) (result, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return result{}, err
	}
	var suite TestSuite
	if err := json.Unmarshal(raw, &suite); err != nil {
		return result{}, err
	}

	var r result
	for _, cmd := range suite.Commands {
		switch cmd.Type {
		case "module":
			r.checked++
			if err := decodeFile(dir, cmd.Filename); err != nil {
				r.failed++
				fmt.Printf("FAIL %s:%d module %s: expected valid decode, got %v\n", path, cmd.Line, cmd.Filename, err)
			}
		case "assert_malformed":
			r.checked++
			if err := decodeFile(dir, cmd.Filename); err == nil {
				r.failed++
				fmt.Printf("FAIL %s:%d assert_malformed %s: expected decode failure, got none\n", path, cmd.Line, cmd.Filename)
			}
		case "assert_invalid":
			r.checked++
			if err := decodeAndValidate(dir, cmd.Filename); err == nil {
				r.failed++
				fmt.Printf("FAIL %s:%d assert_invalid %s: expected validation failure, got none\n", path, cmd.Line, cmd.Filename)
			}
		default:
			r.ignored++
		}
	}
	return r, nil
}

func decodeFile(dir, filename string) error {
	data, err := ioutil.ReadFile(filepath.Join(dir, filename))
	if err != nil {
		return err
	}
	_, err = decoder.Decode(data)
	return err
}

// decodeAndValidate returns validation's verdict on an already-decodable
// module (nil means the module validated, i.e. assert_invalid's expectation
// was not met), or a wrapped decode error if the file did not even decode.
func decodeAndValidate(dir, filename string) error {
	data, err := ioutil.ReadFile(filepath.Join(dir, filename))
	if err != nil {
		return err
	}
	m, err := decoder.Decode(data)
	if err != nil {
		return fmt.Errorf("decode failed before validation ran: %w", err)
	}
	return validation.Validate(m)
}
