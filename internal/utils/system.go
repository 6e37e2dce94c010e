package utils

import (
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"
)

// GetUsername returns the current username.
func GetUsername() (string, error) {
	user, err := user.Current()
	if err != nil {
		return "", err
	}
	return user.Username, nil
}

// UniquePath returns path unchanged if nothing exists there. Otherwise it
// appends a number suffix (-2, -3, etc.) before the extension until the
// name is free.
func UniquePath(path string) string {
	if !exists(path) {
		return path
	}

	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)

	suffix := 2
	for {
		candidate := base + "-" + strconv.Itoa(suffix) + ext
		if !exists(candidate) {
			return candidate
		}
		suffix++
	}
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
