// Line source and line sink for G-code files
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package fileio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"toolchange-organizer/pkg/errors"
)

// ReadLines reads every line of the file at path. Line terminators ("\n" or
// "\r\n") are not kept; a missing final newline is accepted.
func ReadLines(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.IOError(path, "read", err)
	}
	if info.IsDir() {
		return nil, errors.IOError(path, "read", fmt.Errorf("is a directory"))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.IOError(path, "read", err)
	}
	defer f.Close()

	lines, err := Scan(f)
	if err != nil {
		return nil, errors.IOError(path, "read", err)
	}
	return lines, nil
}

// Scan splits r into lines without terminators.
func Scan(r io.Reader) ([]string, error) {
	var lines []string
	br := bufio.NewReaderSize(r, 64*1024)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			line = strings.TrimSuffix(line, "\n")
			line = strings.TrimSuffix(line, "\r")
			lines = append(lines, line)
		}
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// WriteLines creates or replaces the file at path with lines, each followed
// by "\n". The file is held under an exclusive advisory lock while it is
// truncated and rewritten.
func WriteLines(path string, lines []string) (err error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return errors.IOError(path, "write", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.IOError(path, "write", cerr)
		}
	}()

	if err := lockFile(f); err != nil {
		return errors.IOError(path, "lock", err)
	}
	defer unlockFile(f)

	if err := f.Truncate(0); err != nil {
		return errors.IOError(path, "write", err)
	}

	w := bufio.NewWriterSize(f, 64*1024)
	for _, line := range lines {
		if _, err := w.WriteString(line); err != nil {
			return errors.IOError(path, "write", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return errors.IOError(path, "write", err)
		}
	}
	if err := w.Flush(); err != nil {
		return errors.IOError(path, "write", err)
	}
	if err := f.Sync(); err != nil {
		return errors.IOError(path, "write", err)
	}
	return nil
}
