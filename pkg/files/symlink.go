// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package files

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// SymlinkAllowOpts controls which symlinked templates a DirLoader
// may follow.
type SymlinkAllowOpts struct {
	AllowAll        bool
	AllowedDstPaths []string
}

var (
	symlinkPipeErrMsg = regexp.QuoteMeta("lstat /proc/NUM/fd/pipe:[NUM]: no such file or directory")
	symlinkPipeErr    = regexp.MustCompile("^" + strings.ReplaceAll(symlinkPipeErrMsg, "NUM", `\d+`) + "$")
)

// CheckSymlink returns nil when path is not a symlink or when its
// destination lies within one of the allowed paths.
func CheckSymlink(path string, opts SymlinkAllowOpts) error {
	if opts.AllowAll {
		return nil
	}

	fi, err := os.Lstat(path)
	if err != nil {
		return fmt.Errorf("Checking file '%s': %s", path, err)
	}
	if fi.Mode()&os.ModeSymlink == 0 {
		return nil
	}

	dstPath, err := filepath.EvalSymlinks(path)
	if err != nil {
		// /dev/fd/N pipes do not resolve on Linux and cannot point at a real file
		if symlinkPipeErr.MatchString(err.Error()) {
			return nil
		}
		return fmt.Errorf("Eval symlink: %s", err)
	}

	for _, allowedDstPath := range opts.AllowedDstPaths {
		matched, err := isWithin(dstPath, allowedDstPath)
		if matched || err != nil {
			return err
		}
	}

	return fmt.Errorf("Expected symlink file '%s' -> '%s' to be allowed, but was not", path, dstPath)
}

func isWithin(path, allowedPath string) (bool, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("Abs path '%s': %s", path, err)
	}

	absAllowed, err := filepath.Abs(allowedPath)
	if err != nil {
		return false, fmt.Errorf("Abs path '%s': %s", allowedPath, err)
	}

	pieces := pathPieces(absPath)
	allowedPieces := pathPieces(absAllowed)

	if len(allowedPieces) > len(pieces) {
		return false, nil
	}
	for i := range allowedPieces {
		if allowedPieces[i] != pieces[i] {
			return false, nil
		}
	}
	return true, nil
}

func pathPieces(path string) []string {
	if path == string(filepath.Separator) {
		return []string{""}
	}
	return strings.Split(path, string(filepath.Separator))
}
