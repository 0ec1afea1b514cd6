// Package scan discovers image files in a directory, optionally descending
// into subdirectories.
package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoggerFunc defines a function signature for logging messages.
type LoggerFunc func(message string)

// Item is one discovered image file: its absolute path plus the stat info
// the list orderings need (size, mtime).
type Item struct {
	Path string
	Info os.FileInfo
}

// NewItem creates a new Item.
func NewItem(path string, info os.FileInfo) Item {
	return Item{Path: path, Info: info}
}

// Run walks dir and sends every regular, non-empty image file on the
// returned channel as an absolute path. With recursive off only the top
// level is scanned. The channel is closed when the walk finishes; errors on
// individual files are logged and skipped.
func Run(dir string, recursive bool, logger LoggerFunc) <-chan Item {
	if logger == nil {
		logger = func(string) {}
	}
	items := make(chan Item)
	go func() {
		defer close(items)
		err := filepath.Walk(dir, func(p string, fi os.FileInfo, err error) error {
			if err != nil {
				logger(fmt.Sprintf("scan: skipping %s: %v", p, err))
				if fi != nil && fi.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if fi.IsDir() {
				if !recursive && p != dir {
					return filepath.SkipDir
				}
				return nil
			}
			if !fi.Mode().IsRegular() || fi.Size() == 0 || !IsImage(p) {
				return nil
			}
			abs, err := filepath.Abs(p)
			if err != nil {
				logger(fmt.Sprintf("scan: cannot resolve %s: %v", p, err))
				return nil
			}
			items <- NewItem(abs, fi)
			return nil
		})
		if err != nil {
			logger(fmt.Sprintf("scan: walk of %s failed: %v", dir, err))
		}
	}()
	return items
}

// IsImage checks if a file name has a decodable image extension.
func IsImage(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp":
		return true
	default:
		return false
	}
}
