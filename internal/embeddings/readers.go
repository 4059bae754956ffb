package embeddings

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

const maxLineSize = 16 * 1024 * 1024

func parseHeader(line string) (count, dim int, err error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("%w: header %q", ErrMalformedVector, line)
	}
	if count, err = strconv.Atoi(fields[0]); err != nil {
		return 0, 0, fmt.Errorf("%w: header %q", ErrMalformedVector, line)
	}
	if dim, err = strconv.Atoi(fields[1]); err != nil || dim <= 0 {
		return 0, 0, fmt.Errorf("%w: header %q", ErrMalformedVector, line)
	}
	return count, dim, nil
}

func checkDim(want, got int) error {
	if want > 0 && want != got {
		return fmt.Errorf("%w: file has %d, configured %d", ErrDimMismatch, got, want)
	}
	return nil
}

// readWord2VecBinary reads the Google word2vec binary layout: an ASCII
// "<count> <dim>\n" header followed by count entries of "<word> " and dim
// little-endian float32 values.
func readWord2VecBinary(path string, dim int, keep func(string) bool) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open embeddings: %w", err)
	}
	defer f.Close()

	r := bufio.NewReaderSize(f, 1<<20)
	header, err := r.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read embeddings header: %w", err)
	}
	count, fileDim, err := parseHeader(header)
	if err != nil {
		return nil, err
	}
	if err := checkDim(dim, fileDim); err != nil {
		return nil, err
	}

	table := NewTable(fileDim)
	raw := make([]byte, 4*fileDim)
	vec := make([]float32, fileDim)

	for i := 0; i < count; i++ {
		word, err := r.ReadString(' ')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("%w: file ends after %d of %d words", ErrMalformedVector, i, count)
			}
			return nil, fmt.Errorf("failed to read word %d: %w", i, err)
		}
		word = strings.TrimLeft(strings.TrimSuffix(word, " "), "\n")

		if !keep(word) {
			if _, err := r.Discard(len(raw)); err != nil {
				return nil, fmt.Errorf("%w: truncated vector for %q", ErrMalformedVector, word)
			}
			continue
		}

		if _, err := io.ReadFull(r, raw); err != nil {
			return nil, fmt.Errorf("%w: truncated vector for %q", ErrMalformedVector, word)
		}
		for j := range vec {
			vec[j] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*j:]))
		}
		if err := table.Add(word, vec); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// readText reads one "<word> <v1> ... <vd>" entry per line. word2vec text
// files open with a "<count> <dim>" header, GloVe files do not. Words may
// contain spaces (GloVe 840B does this), so the vector is taken from the end
// of the line.
func readText(path string, dim int, hasHeader bool, keep func(string) bool) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open embeddings: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var table *Table
	if hasHeader {
		if !scanner.Scan() {
			return nil, fmt.Errorf("%w: missing header", ErrMalformedVector)
		}
		_, fileDim, err := parseHeader(scanner.Text())
		if err != nil {
			return nil, err
		}
		if err := checkDim(dim, fileDim); err != nil {
			return nil, err
		}
		table = NewTable(fileDim)
	}

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		if table == nil {
			// GloVe: infer the dimension from the first entry. A first word
			// that is itself a number needs an explicit dim.
			fileDim := dim
			if fileDim == 0 {
				fileDim = trailingNumbers(fields)
			}
			if fileDim <= 0 {
				return nil, fmt.Errorf("%w: line %d has no values", ErrMalformedVector, lineNo)
			}
			table = NewTable(fileDim)
		}

		d := table.Dim()
		if len(fields) < d+1 {
			return nil, fmt.Errorf("%w: line %d has %d values, want %d", ErrDimMismatch, lineNo, len(fields)-1, d)
		}
		split := len(fields) - d
		word := strings.Join(fields[:split], " ")
		if !keep(word) {
			continue
		}

		vec := make([]float32, d)
		for j, s := range fields[split:] {
			v, err := strconv.ParseFloat(s, 32)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d value %q", ErrMalformedVector, lineNo, s)
			}
			vec[j] = float32(v)
		}
		if err := table.Add(word, vec); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read embeddings: %w", err)
	}
	if table == nil {
		table = NewTable(dim)
	}
	return table, nil
}

// trailingNumbers counts the numeric fields at the end of an entry, leaving at
// least one field for the word.
func trailingNumbers(fields []string) int {
	n := 0
	for i := len(fields) - 1; i > 0; i-- {
		if _, err := strconv.ParseFloat(fields[i], 32); err != nil {
			break
		}
		n++
	}
	return n
}
