package scan

import (
	"io/fs"
	"os"
	"path/filepath"
)

// DirSize sums the size of every regular file under path. Unreadable entries
// are skipped and counted rather than aborting the whole walk, so one bad
// permission bit never hides the rest of a venv's footprint.
func DirSize(path string) (total int64, skipped int) {
	filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			skipped++
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			skipped++
			return nil
		}
		if info.Mode().IsRegular() {
			total += info.Size()
		}
		return nil
	})
	return total, skipped
}

// TargetSize returns the size of a deletion target: a recursive sum for
// directories, the direct size for files.
func TargetSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	if info.IsDir() {
		size, _ := DirSize(path)
		return size
	}
	return info.Size()
}
