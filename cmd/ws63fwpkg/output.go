package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// writeOutput runs fn against stdout when path is "-", otherwise against
// a temporary file renamed over path once fn succeeds.
func writeOutput(path string, fn func(w io.Writer) error) error {
	if path == "-" {
		return fn(os.Stdout)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := fn(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// samePath reports whether a and b name the same file.
func samePath(a, b string) bool {
	sa, err := os.Stat(a)
	if err != nil {
		return false
	}
	sb, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(sa, sb)
}

func hexSize(n uint32) string {
	return fmt.Sprintf("0x%08x", n)
}
