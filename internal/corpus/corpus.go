// Package corpus enumerates the images of an input tree.
//
// A Listing is materialized once and reused for every pass over the corpus,
// so all passes see the same entries in the same order even if the directory
// changes while a run is in progress.
package corpus

import (
	"context"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Entry identifies one file by its directory relative to the corpus root
// (slash-separated, "." for the root itself) and its file name.
type Entry struct {
	Dir  string `json:"dir"`
	Name string `json:"name"`
}

// RelPath returns the entry's path relative to the root in OS form.
func (e Entry) RelPath() string {
	return filepath.Join(filepath.FromSlash(e.Dir), e.Name)
}

func (e Entry) String() string {
	return path.Join(e.Dir, e.Name)
}

// Listing is an ordered, immutable set of entries under Root.
type Listing struct {
	Root    string
	Entries []Entry
}

// Len returns the number of entries.
func (l Listing) Len() int { return len(l.Entries) }

// Path returns the absolute-or-root-relative path of e under the listing root.
func (l Listing) Path(e Entry) string {
	return filepath.Join(l.Root, e.RelPath())
}

// Rebase returns the path e would have under another root. It is used to
// mirror the input tree into an output tree.
func (e Entry) Rebase(root string) string {
	return filepath.Join(root, e.RelPath())
}

// Walker lists the regular files under Root in lexical order. Names starting
// with "." (files and directories) are skipped.
type Walker struct {
	Root string
}

// List walks the tree once. It honors ctx between directory entries.
func (w Walker) List(ctx context.Context) (Listing, error) {
	return Walk(ctx, w.Root)
}

// Walk is the function form of Walker.List.
func Walk(ctx context.Context, root string) (Listing, error) {
	if strings.TrimSpace(root) == "" {
		return Listing{}, errors.New("corpus root is required")
	}

	listing := Listing{Root: root}
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, filepath.Dir(p))
		if err != nil {
			return err
		}
		listing.Entries = append(listing.Entries, Entry{
			Dir:  filepath.ToSlash(rel),
			Name: d.Name(),
		})
		return nil
	})
	if err != nil {
		return Listing{}, errors.Wrapf(err, "walk %s", root)
	}
	return listing, nil
}
