package artifacts

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint hashes the contents of files, in the given order, followed by
// params. Files that are themselves artifacts of an earlier stage make the key
// change whenever that stage reran.
func Fingerprint(files []string, params ...any) (string, error) {
	h := xxhash.New()
	for _, path := range files {
		if err := hashFile(h, path); err != nil {
			return "", err
		}
	}
	for _, p := range params {
		fmt.Fprintf(h, "|%v", p)
	}
	return strconv.FormatUint(h.Sum64(), 16), nil
}

func hashFile(h *xxhash.Digest, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to fingerprint %s: %w", path, err)
	}
	defer f.Close()

	// the path is part of the key so two inputs cannot swap contents unnoticed
	h.WriteString(path)
	if _, err := io.Copy(h, f); err != nil {
		return fmt.Errorf("failed to fingerprint %s: %w", path, err)
	}
	return nil
}
