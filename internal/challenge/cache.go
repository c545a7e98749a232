package challenge

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/myrjola/jigsawroom/internal/errors"
	"github.com/myrjola/jigsawroom/internal/textfile"
)

type fileStamp struct {
	exists  bool
	modTime time.Time
	size    int64
}

func statFile(path string) fileStamp {
	info, err := os.Stat(path)
	if err != nil {
		return fileStamp{exists: false, modTime: time.Time{}, size: 0}
	}
	return fileStamp{exists: true, modTime: info.ModTime(), size: info.Size()}
}

// Cache keeps the parsed form of a document and parses it again when the file changes on disk.
//
// Edits to the answer key show up without restarting the server. A missing file parses as the empty document.
type Cache[T any] struct {
	path   string
	parse  func(text string) (T, error)
	logger *slog.Logger

	mu     sync.Mutex
	loaded bool
	stamp  fileStamp
	value  T
}

// NewCache creates a cache for the document at path.
func NewCache[T any](logger *slog.Logger, path string, parse func(text string) (T, error)) *Cache[T] {
	return &Cache[T]{ //nolint:exhaustruct // loaded lazily
		path:   path,
		parse:  parse,
		logger: logger,
	}
}

// Get returns the parsed document, reparsing when the file modification time or size changed since the last call.
// A parse error is logged and leaves the zero value in place.
func (c *Cache[T]) Get(ctx context.Context) T {
	c.mu.Lock()
	defer c.mu.Unlock()

	stamp := statFile(c.path)
	if c.loaded && stamp == c.stamp {
		return c.value
	}

	var zero T
	value, err := c.parse(textfile.ReadOrEmpty(c.path))
	if err != nil {
		c.logger.LogAttrs(ctx, slog.LevelWarn, "parse document",
			slog.String("path", c.path), errors.SlogError(err))
		value = zero
	}
	if !stamp.exists && (!c.loaded || c.stamp.exists) {
		c.logger.LogAttrs(ctx, slog.LevelInfo, "document not found", slog.String("path", c.path))
	}
	c.loaded = true
	c.stamp = stamp
	c.value = value
	return c.value
}

// NewAnswerKeyCache creates a cache holding the answer key at path.
func NewAnswerKeyCache(logger *slog.Logger, path string) *Cache[AnswerKey] {
	return NewCache(logger, path, func(text string) (AnswerKey, error) {
		return ParseAnswerKey(text), nil
	})
}

// NewExtrasCache creates a cache holding the extra challenge catalog at path.
func NewExtrasCache(logger *slog.Logger, path string) *Cache[Extras] {
	return NewCache(logger, path, ParseExtras)
}
