package common

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// BuildInputs are the paths under the repo root that end up in the API image.
var BuildInputs = []string{"go.mod", "go.sum", "cmd", "internal", "pkg"}

// SourceHash digests the build inputs below root so the image tag only
// changes when the server code does. Missing inputs are skipped.
func SourceHash(root string) (string, error) {
	h := sha256.New()

	for _, input := range BuildInputs {
		err := filepath.WalkDir(filepath.Join(root, input), func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || d.Type()&fs.ModeSymlink != 0 {
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			io.WriteString(h, filepath.ToSlash(rel))
			return hashFile(h, path)
		})
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", err
		}
	}

	return hex.EncodeToString(h.Sum(nil))[:16], nil
}

func hashFile(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(w, f)
	return err
}
