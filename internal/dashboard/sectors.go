package dashboard

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadSectorMap reads a symbol->sector mapping. Files ending in .yaml or .yml
// hold a flat mapping; anything else is read as a CSV with a header row and
// symbol and sector in the first two columns.
func LoadSectorMap(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening sector map: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return readSectorYAML(f)
	default:
		return readSectorCSV(f)
	}
}

func readSectorYAML(r io.Reader) (map[string]string, error) {
	raw := make(map[string]string)
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing sector yaml: %w", err)
	}
	out := make(map[string]string, len(raw))
	for sym, sec := range raw {
		if sec = strings.TrimSpace(sec); sec != "" {
			out[normSymbol(sym)] = sec
		}
	}
	return out, nil
}

func readSectorCSV(r io.Reader) (map[string]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	out := make(map[string]string)
	for line := 0; ; line++ {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing sector csv: %w", err)
		}
		if line == 0 || len(fields) < 2 {
			continue // header or short row
		}
		sym, sec := normSymbol(fields[0]), strings.TrimSpace(fields[1])
		if sym != "" && sec != "" {
			out[sym] = sec
		}
	}
	return out, nil
}

// ResolveSectors merges an inline mapping with the contents of file, if set.
// Entries from the file win.
func ResolveSectors(inline map[string]string, file string) (map[string]string, error) {
	out := make(map[string]string, len(inline))
	for sym, sec := range inline {
		if sec = strings.TrimSpace(sec); sec != "" {
			out[normSymbol(sym)] = sec
		}
	}
	if file == "" {
		return out, nil
	}
	loaded, err := LoadSectorMap(file)
	if err != nil {
		return nil, err
	}
	for sym, sec := range loaded {
		out[sym] = sec
	}
	return out, nil
}
