package sequence

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// CollectStatic copies every file under the source directories into root,
// preserving relative paths. Later sources overwrite earlier ones and the
// walk order is lexical, so repeated runs produce the same tree. Missing
// source directories are skipped. Returns the number of files copied.
func CollectStatic(srcDirs []string, root string, out io.Writer) (int, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return 0, fmt.Errorf("create static root: %w", err)
	}

	copied := 0
	for _, src := range srcDirs {
		info, err := os.Stat(src)
		if os.IsNotExist(err) {
			fmt.Fprintf(out, "static source %s does not exist, skipping\n", src)
			continue
		}
		if err != nil {
			return copied, err
		}
		if !info.IsDir() {
			return copied, fmt.Errorf("static source %s is not a directory", src)
		}

		err = filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(src, path)
			if err != nil {
				return err
			}
			target := filepath.Join(root, rel)
			if d.IsDir() {
				return os.MkdirAll(target, 0755)
			}
			if err := copyFile(path, target); err != nil {
				return fmt.Errorf("copy %s: %w", rel, err)
			}
			copied++
			return nil
		})
		if err != nil {
			return copied, err
		}
	}

	fmt.Fprintf(out, "collected %d static files into %s\n", copied, root)
	return copied, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
