package workflows

import (
	"context"
	"fmt"

	"github.com/selfcheck/datacard/internal/bundle"
	"github.com/selfcheck/datacard/internal/carrier"
	"github.com/selfcheck/datacard/internal/datacard"
	kerrors "github.com/selfcheck/datacard/internal/errors"

	"github.com/bmatcuk/doublestar/v4"
)

// InspectOptions configures the inspect workflow.
type InspectOptions struct {
	// Paths are image paths or glob patterns.
	Paths []string
}

// InspectResult describes one inspected image.
type InspectResult struct {
	Path          string
	Format        string
	Width, Height int

	// Capacity is the number of bytes the data region holds, container
	// included. MaxPlain and MaxEncrypted are the payload limits.
	Capacity     int
	MaxPlain     int
	MaxEncrypted int

	HasCard      bool
	Version      datacard.Version
	PayloadBytes int

	// Manifest is set for plain cards holding a readable bundle.
	Manifest *bundle.Manifest

	// CardErr explains why no card was found.
	CardErr error

	// ImageErr is set when a file matched by a glob is not a readable
	// image. Only Path is filled in then.
	ImageErr error
}

// imagePath is an inspect target and whether it came from a glob.
type imagePath struct {
	path     string
	fromGlob bool
}

// Inspect reports capacity and card presence for each image. An image
// without a valid card is a normal result, not an error.
//
// Returns ErrNoFilesFound if a pattern matches nothing.
// Returns ErrFileNotFound or ErrUnsupportedImage if a literal path can't be
// read. Unreadable files matched by a glob are reported in ImageErr.
func Inspect(ctx context.Context, opts InspectOptions) ([]InspectResult, error) {
	paths, err := expandImagePaths(opts.Paths)
	if err != nil {
		return nil, err
	}

	results := make([]InspectResult, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r, err := inspectImage(p.path)
		if err != nil {
			if !p.fromGlob {
				return nil, err
			}
			r = InspectResult{Path: p.path, ImageErr: err}
		}
		results = append(results, r)
	}
	return results, nil
}

func inspectImage(path string) (InspectResult, error) {
	img, format, err := carrier.Load(path)
	if err != nil {
		return InspectResult{}, err
	}

	f := datacard.DefaultFormat
	b := img.Bounds()
	r := InspectResult{
		Path:         path,
		Format:       format,
		Width:        b.Dx(),
		Height:       b.Dy(),
		Capacity:     f.Capacity(b.Dx(), b.Dy()),
		MaxPlain:     f.MaxPayload(b.Dx(), b.Dy(), datacard.VersionPlain),
		MaxEncrypted: f.MaxPayload(b.Dx(), b.Dy(), datacard.VersionEncrypted),
	}

	card, err := f.Decode(img)
	if err != nil {
		r.CardErr = err
		return r, nil
	}
	r.HasCard = true
	r.Version = card.Version
	r.PayloadBytes = len(card.Payload)

	if !card.Encrypted() {
		if m, _, err := bundle.List(card.Payload); err == nil {
			r.Manifest = m
		}
	}
	return r, nil
}

// expandImagePaths expands glob patterns. Literal paths are passed through
// so a missing file is reported by name.
func expandImagePaths(patterns []string) ([]imagePath, error) {
	var paths []imagePath
	seen := make(map[string]bool)
	add := func(p string, fromGlob bool) {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, imagePath{path: p, fromGlob: fromGlob})
		}
	}

	for _, pattern := range patterns {
		if !hasGlobMeta(pattern) {
			add(pattern, false)
			continue
		}
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%w: %s", kerrors.ErrNoFilesFound, pattern)
		}
		for _, m := range matches {
			add(m, true)
		}
	}

	if len(paths) == 0 {
		return nil, kerrors.ErrNoFilesFound
	}
	return paths, nil
}

func hasGlobMeta(pattern string) bool {
	for _, c := range pattern {
		switch c {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}
