// Package assets turns background clip names into references the
// compositing primitive can open. It never downloads or decodes anything.
package assets

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"
	"sort"
	"strings"

	"bgloop/background"
	"bgloop/config"
)

// Resolver maps clip names to source asset references
type Resolver interface {
	Resolve(ctx context.Context, name string) (background.SourceAsset, error)
	List(ctx context.Context) ([]string, error)
}

// DirResolver resolves names inside a static directory of bundled clips
type DirResolver struct {
	dir string
}

// NewDirResolver creates a resolver rooted at dir
func NewDirResolver(dir string) *DirResolver {
	return &DirResolver{dir: dir}
}

// Resolve joins name onto the static directory. Absolute paths and URLs
// are passed through untouched. Existence is not checked.
func (r *DirResolver) Resolve(ctx context.Context, name string) (background.SourceAsset, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("asset name is required")
	}
	if strings.Contains(name, "://") || filepath.IsAbs(name) {
		return background.SourceAsset(name), nil
	}
	return background.SourceAsset(filepath.Join(r.dir, filepath.Clean("/"+name))), nil
}

// List returns the clip names found in the static directory
func (r *DirResolver) List(ctx context.Context) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(r.dir, "*"+config.AssetExtension))
	if err != nil {
		return nil, err
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no background videos found in %s", r.dir)
	}

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = filepath.Base(f)
	}
	sort.Strings(names)
	return names, nil
}

// Pick resolves a random clip from the resolver's listing
func Pick(ctx context.Context, r Resolver) (background.SourceAsset, error) {
	names, err := r.List(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list backgrounds: %w", err)
	}
	if len(names) == 0 {
		return "", fmt.Errorf("no background videos available")
	}
	return r.Resolve(ctx, names[rand.Intn(len(names))])
}
