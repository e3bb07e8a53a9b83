package texset

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CopyInto copies every file in the set into destDir and rewrites the set's
// paths to the copies. This is the one sanctioned in-place mutation of a
// TextureSet, performed before assembly when CopyTextures is requested.
func CopyInto(set *TextureSet, destDir string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create texture dir %s: %w", destDir, err)
	}

	for _, ch := range Channels() {
		src := set.Paths[ch]
		if src == "" {
			continue
		}
		dst := filepath.Join(destDir, filepath.Base(src))
		if err := copyFile(src, dst); err != nil {
			return fmt.Errorf("copy %s texture: %w", ch, err)
		}
		set.Paths[ch] = dst
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
