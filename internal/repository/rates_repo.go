package repository

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	bank "github.com/plightick/kursovaya"
)

// RatesFile serves the exchange-rate text resource. The file is created
// lazily with default contents on first read and returned verbatim after
// that; the ledger never interprets it.
type RatesFile struct {
	path string
}

func NewRatesFile(path string) *RatesFile { return &RatesFile{path: path} }

// Ensure implementation of Rates interface at compile time.
var _ Rates = (*RatesFile)(nil)

const defaultRatesText = "USD/RUB=100.00\nEUR/RUB=110.00\n"

// Text returns the raw contents of the rates file, creating it with the
// default quotes when absent.
func (r *RatesFile) Text() (string, error) {
	data, err := os.ReadFile(r.path)
	if err == nil {
		return string(data), nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", bank.NewStorageError("cannot read rates file: "+r.path, err)
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return "", bank.NewStorageError("cannot create rates dir", err)
	}
	if err := os.WriteFile(r.path, []byte(defaultRatesText), 0o644); err != nil {
		return "", bank.NewStorageError("cannot seed rates file: "+r.path, err)
	}
	return defaultRatesText, nil
}
