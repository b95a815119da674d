package storage

import (
	"context"
	"strings"
)

const drivePrefix = "drive://"

// Linker resolves a stored media key into a link the browser can download.
type Linker interface {
	Link(ctx context.Context, key string) (string, error)
}

// Router picks the linker by key shape: drive://<fileID> goes to Google
// Drive, absolute http(s) links pass through, anything else is an object
// key in the upload bucket.
type Router struct {
	Objects Linker
	Drive   Linker
}

func (r *Router) Link(ctx context.Context, key string) (string, error) {
	switch {
	case key == "":
		return "", nil
	case strings.HasPrefix(key, "http://"), strings.HasPrefix(key, "https://"):
		return key, nil
	case strings.HasPrefix(key, drivePrefix):
		if r.Drive == nil {
			return key, nil
		}
		return r.Drive.Link(ctx, strings.TrimPrefix(key, drivePrefix))
	}

	if r.Objects == nil {
		return key, nil
	}
	return r.Objects.Link(ctx, key)
}
