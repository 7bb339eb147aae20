package loader

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Action tells the loader how to open an input.
type Action int

const (
	ActionIgnore Action = iota
	ActionClass
	ActionDirectory
	ActionZip
	ActionJar
)

func (a Action) String() string {
	switch a {
	case ActionIgnore:
		return "ignore"
	case ActionClass:
		return "class"
	case ActionDirectory:
		return "directory"
	case ActionZip:
		return "zip"
	case ActionJar:
		return "jar"
	}
	return "unknown"
}

// Dispatcher classifies an input path.
type Dispatcher interface {
	Dispatch(path string) Action
}

// EntryDispatcher is implemented by dispatchers that consult the
// filesystem. Entries of an archive are classified by DispatchEntry, so an
// entry is never confused with a file on disk at the same relative path.
type EntryDispatcher interface {
	DispatchEntry(name string) Action
}

// DispatchEntry classifies the archive entry name with d.
func DispatchEntry(d Dispatcher, name string) Action {
	if ed, ok := d.(EntryDispatcher); ok {
		return ed.DispatchEntry(name)
	}
	return d.Dispatch(name)
}

type DispatcherFunc func(path string) Action

func (f DispatcherFunc) Dispatch(path string) Action { return f(path) }

// ignoredExtensions never hold class files.
var ignoredExtensions = map[string]bool{
	".bat":        true,
	".css":        true,
	".dsa":        true,
	".gif":        true,
	".html":       true,
	".htm":        true,
	".java":       true,
	".jpeg":       true,
	".jpg":        true,
	".js":         true,
	".json":       true,
	".md":         true,
	".mf":         true,
	".png":        true,
	".properties": true,
	".rsa":        true,
	".sf":         true,
	".sh":         true,
	".txt":        true,
	".xml":        true,
	".xsd":        true,
	".yaml":       true,
	".yml":        true,
}

// isDirectory treats a trailing slash as a directory without touching the
// filesystem.
func isDirectory(path string) bool {
	if strings.HasSuffix(path, "/") {
		return true
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func extension(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// PermissiveDispatcher decides by extension and tries anything it does not
// recognize as an archive.
type PermissiveDispatcher struct{}

func (d PermissiveDispatcher) Dispatch(path string) Action {
	if isDirectory(path) {
		return ActionDirectory
	}
	return d.byExtension(path)
}

func (d PermissiveDispatcher) DispatchEntry(name string) Action {
	if strings.HasSuffix(name, "/") {
		return ActionDirectory
	}
	return d.byExtension(name)
}

func (PermissiveDispatcher) byExtension(path string) Action {
	ext := extension(path)
	switch {
	case ext == ".class":
		return ActionClass
	case ext == ".jar":
		return ActionJar
	case ext == ".zip":
		return ActionZip
	case ignoredExtensions[ext]:
		return ActionIgnore
	}
	return ActionZip
}

// StrictDispatcher only accepts directories, class files, jars and zips.
type StrictDispatcher struct{}

func (d StrictDispatcher) Dispatch(path string) Action {
	if isDirectory(path) {
		return ActionDirectory
	}
	return d.byExtension(path)
}

func (d StrictDispatcher) DispatchEntry(name string) Action {
	if strings.HasSuffix(name, "/") {
		return ActionDirectory
	}
	return d.byExtension(name)
}

func (StrictDispatcher) byExtension(path string) Action {
	switch extension(path) {
	case ".class":
		return ActionClass
	case ".jar":
		return ActionJar
	case ".zip":
		return ActionZip
	}
	return ActionIgnore
}

type cacheEntry struct {
	action  Action
	modTime time.Time
}

// ModTimeCache remembers the last action and modification time per path.
// It is safe for concurrent use.
type ModTimeCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

func NewModTimeCache() *ModTimeCache {
	return &ModTimeCache{entries: make(map[string]cacheEntry)}
}

func (c *ModTimeCache) get(path string) (cacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[path]
	return e, ok
}

func (c *ModTimeCache) put(path string, e cacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = make(map[string]cacheEntry)
	}
	c.entries[path] = e
}

// Forget drops a single path, e.g. after it was deleted.
func (c *ModTimeCache) Forget(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, path)
}

func (c *ModTimeCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

func (c *ModTimeCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Paths returns the cached paths in no particular order.
func (c *ModTimeCache) Paths() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	paths := make([]string, 0, len(c.entries))
	for p := range c.entries {
		paths = append(paths, p)
	}
	return paths
}

// ModifiedOnlyDispatcher ignores files whose modification time has not
// changed since the last time they were dispatched. Paths that cannot be
// stat'ed always go to Delegate, and so do archive entries, which are
// dispatched through DispatchEntry. Directory and archive results are never
// cached because they only lead to other inputs.
type ModifiedOnlyDispatcher struct {
	Delegate Dispatcher
	Cache    *ModTimeCache
	Stat     func(path string) (fs.FileInfo, error)
}

func NewModifiedOnlyDispatcher(delegate Dispatcher) *ModifiedOnlyDispatcher {
	return &ModifiedOnlyDispatcher{
		Delegate: delegate,
		Cache:    NewModTimeCache(),
		Stat:     os.Stat,
	}
}

func (d *ModifiedOnlyDispatcher) Dispatch(path string) Action {
	stat := d.Stat
	if stat == nil {
		stat = os.Stat
	}
	info, err := stat(path)
	if err != nil || info.IsDir() {
		return d.Delegate.Dispatch(path)
	}

	modTime := info.ModTime()
	if e, ok := d.Cache.get(path); ok && e.modTime.Equal(modTime) {
		log.Debugf("unchanged %s", path)
		return ActionIgnore
	}

	action := d.Delegate.Dispatch(path)
	switch action {
	case ActionDirectory, ActionZip, ActionJar:
	default:
		d.Cache.put(path, cacheEntry{action: action, modTime: modTime})
	}
	return action
}

// DispatchEntry bypasses the cache: entries have no modification time.
func (d *ModifiedOnlyDispatcher) DispatchEntry(name string) Action {
	return DispatchEntry(d.Delegate, name)
}
