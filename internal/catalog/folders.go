// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/soyoung-yu/paper-site/pkg/types"
)

var nonAlnum = regexp.MustCompile(`[^A-Za-z0-9]+`)

// Slugify turns a folder or session name into a path-safe slug: "&" becomes
// "and", every other run of non-alphanumerics becomes one underscore, and
// leading or trailing underscores are dropped.
//
//	Slugify("Skin & Hair Care (Oral)") == "Skin_and_Hair_Care_Oral"
func Slugify(s string) string {
	s = strings.ReplaceAll(s, "&", " and ")
	return strings.Trim(nonAlnum.ReplaceAllString(s, "_"), "_")
}

// FolderSummary reports what NormalizeFolders changed.
type FolderSummary struct {
	Renamed   int
	Unchanged int
	Conflicts int
	Slugs     int
}

// HasFailures reports whether any directory could not be renamed.
func (s FolderSummary) HasFailures() bool {
	return s.Conflicts > 0
}

// NormalizeFolders renames every directory under papersDir to its slug and
// rewrites each catalog folder slug in place. A directory whose slug is
// already taken by another directory is left alone and counted as a
// conflict. Status lines go to w.
func NormalizeFolders(papersDir string, cat types.Catalog, w io.Writer) (FolderSummary, error) {
	var sum FolderSummary

	entries, err := os.ReadDir(papersDir)
	if err != nil {
		return sum, fmt.Errorf("reading papers directory: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		current := e.Name()
		next := Slugify(current)
		if next == "" || next == current {
			sum.Unchanged++
			continue
		}
		to := filepath.Join(papersDir, next)
		if _, err := os.Stat(to); err == nil {
			fmt.Fprintf(w, "conflict: %q -> %q (target exists)\n", current, next)
			sum.Conflicts++
			continue
		}
		if err := os.Rename(filepath.Join(papersDir, current), to); err != nil {
			return sum, fmt.Errorf("renaming %s: %w", current, err)
		}
		fmt.Fprintf(w, "renamed: %q -> %q\n", current, next)
		sum.Renamed++
	}

	for i := range cat {
		if next := Slugify(cat[i].Folder); next != cat[i].Folder {
			cat[i].Folder = next
			sum.Slugs++
		}
	}

	fmt.Fprintf(w, "\nFolders: %d renamed, %d unchanged, %d conflicts; %d catalog slugs updated\n",
		sum.Renamed, sum.Unchanged, sum.Conflicts, sum.Slugs)
	return sum, nil
}
