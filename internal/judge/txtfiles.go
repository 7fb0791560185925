package judge

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/sio2tools/stester/internal/tempfiles"
)

// ReadText reads a test file, transparently decompressing it when it is
// stored as <path>.zst instead of <path>.
func ReadText(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		return data, nil
	}
	if !os.IsNotExist(err) {
		return nil, err
	}

	compressed, zErr := os.Open(path + ".zst")
	if zErr != nil {
		if os.IsNotExist(zErr) {
			return nil, err
		}
		return nil, zErr
	}
	defer compressed.Close()

	dec, zErr := zstd.NewReader(compressed)
	if zErr != nil {
		return nil, fmt.Errorf("opening zstd reader for %s.zst: %w", path, zErr)
	}
	defer dec.Close()
	return io.ReadAll(dec)
}

// openInput returns a file handle positioned at the start of the test input.
// Plain files are opened directly; .zst inputs are decompressed into an
// anonymous ephemeral file so they can be handed to a child as stdin.
func openInput(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err == nil {
		return f, nil
	}
	if !os.IsNotExist(err) {
		return nil, err
	}

	data, rErr := ReadText(path)
	if rErr != nil {
		return nil, err
	}
	tmp, tErr := tempfiles.CreateTempFile()
	if tErr != nil {
		return nil, tErr
	}
	if _, wErr := tmp.Write(data); wErr != nil {
		tmp.Close()
		return nil, wErr
	}
	if _, sErr := tmp.Seek(0, io.SeekStart); sErr != nil {
		tmp.Close()
		return nil, sErr
	}
	return tmp, nil
}

// DiscoverTests lists the tests in inputDir: every <name><inExt> (or
// <name><inExt>.zst) file defines one test, sorted by name.
func DiscoverTests(inputDir, inExt string) ([]Test, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, fmt.Errorf("reading input directory: %w", err)
	}

	var tests []Test
	seen := map[string]bool{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		fname := strings.TrimSuffix(e.Name(), ".zst")
		if !strings.HasSuffix(fname, inExt) {
			continue
		}
		name := strings.TrimSuffix(fname, inExt)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		tests = append(tests, Test{
			Name:      name,
			InputPath: filepath.Join(inputDir, fname),
		})
	}
	sort.Slice(tests, func(i, j int) bool { return tests[i].Name < tests[j].Name })
	return tests, nil
}
