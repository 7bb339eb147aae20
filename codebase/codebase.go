package codebase

import (
	"context"
	"errors"
	"io/fs"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dhamidi/classreader/classfile"
	"github.com/dhamidi/classreader/format"
	"github.com/dhamidi/classreader/loader"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("classreader.codebase")

// Codebase holds the classes loaded from a fixed set of paths. Reload only
// decodes class files and archives whose modification time changed since
// the previous load. It is safe for concurrent use.
type Codebase struct {
	mu         sync.RWMutex
	paths      []string
	dispatcher *loader.ModifiedOnlyDispatcher
	archives   *archiveGate
	repo       *loader.Repository
	symbols    []format.Symbol
	gathered   bool
}

var _ classfile.ClassResolver = (*Codebase)(nil)

// New returns an empty Codebase over paths. A nil dispatcher classifies
// inputs with loader.PermissiveDispatcher.
func New(dispatcher loader.Dispatcher, paths ...string) *Codebase {
	if dispatcher == nil {
		dispatcher = loader.PermissiveDispatcher{}
	}
	modified := loader.NewModifiedOnlyDispatcher(dispatcher)
	return &Codebase{
		paths:      paths,
		dispatcher: modified,
		archives:   newArchiveGate(modified),
		repo:       loader.NewRepository(),
	}
}

func (c *Codebase) Paths() []string {
	return c.paths
}

// Changes summarizes one load. Both lists hold class names, sorted.
// A class that was decoded again counts as loaded.
type Changes struct {
	Loaded  []string
	Removed []string
}

func (c Changes) Empty() bool {
	return len(c.Loaded) == 0 && len(c.Removed) == 0
}

// Load discards everything and decodes every input again.
func (c *Codebase) Load(ctx context.Context, listeners ...loader.LoadListener) (Changes, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.repo = loader.NewRepository()
	c.dispatcher.Cache.Reset()
	c.archives.reset()
	return c.loadLocked(ctx, listeners)
}

// Reload decodes the inputs that changed since the last load and drops the
// classes of files that vanished.
func (c *Codebase) Reload(ctx context.Context, listeners ...loader.LoadListener) (Changes, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var removed []string
	for _, path := range c.dispatcher.Cache.Paths() {
		if c.vanished(path) {
			log.Infof("removed %s", path)
			c.dispatcher.Cache.Forget(path)
			removed = append(removed, removeFile(c.repo, c.archives, path)...)
		}
	}
	for _, path := range c.archives.paths() {
		if c.vanished(path) {
			log.Infof("removed archive %s", path)
			removed = append(removed, c.repo.Remove(c.archives.forget(path)...)...)
		}
	}

	changes, err := c.loadLocked(ctx, listeners)
	changes.Removed = append(changes.Removed, removed...)
	sort.Strings(changes.Removed)
	return changes, err
}

func (c *Codebase) vanished(path string) bool {
	_, err := c.dispatcher.Stat(path)
	return errors.Is(err, fs.ErrNotExist)
}

func (c *Codebase) loadLocked(ctx context.Context, listeners []loader.LoadListener) (Changes, error) {
	tracker := &changeTracker{repo: c.repo, archives: c.archives}
	all := append([]loader.LoadListener{tracker, c.repo}, listeners...)
	err := loader.New(c.archives, all...).Load(ctx, c.paths...)

	c.symbols = nil
	c.gathered = false

	sort.Strings(tracker.changes.Loaded)
	sort.Strings(tracker.changes.Removed)
	log.Infof("loaded %d classes, removed %d, %d total", len(tracker.changes.Loaded), len(tracker.changes.Removed), c.repo.Len())
	return tracker.changes, err
}

// archiveGate ignores archives on disk whose modification time has not
// changed since they were last expanded, and remembers which classes each
// archive produced. Archives nested in other archives cannot be stat'ed and
// are always expanded along with their parent.
type archiveGate struct {
	delegate loader.Dispatcher
	stat     func(path string) (fs.FileInfo, error)
	modTimes map[string]time.Time
	classes  map[string][]string
}

func newArchiveGate(delegate *loader.ModifiedOnlyDispatcher) *archiveGate {
	g := &archiveGate{delegate: delegate, stat: delegate.Stat}
	g.reset()
	return g
}

func (g *archiveGate) reset() {
	g.modTimes = make(map[string]time.Time)
	g.classes = make(map[string][]string)
}

func (g *archiveGate) Dispatch(path string) loader.Action {
	action := g.delegate.Dispatch(path)
	if action != loader.ActionZip && action != loader.ActionJar {
		return action
	}
	info, err := g.stat(path)
	if err != nil || info.IsDir() {
		return action
	}
	if t, ok := g.modTimes[path]; ok && t.Equal(info.ModTime()) {
		log.Debugf("unchanged archive %s", path)
		return loader.ActionIgnore
	}
	g.modTimes[path] = info.ModTime()
	return action
}

// DispatchEntry leaves archive entries to the delegate. They are never
// stat'ed, so nested archives follow their parent.
func (g *archiveGate) DispatchEntry(name string) loader.Action {
	return loader.DispatchEntry(g.delegate, name)
}

func (g *archiveGate) known(path string) bool {
	_, ok := g.modTimes[path]
	return ok
}

func (g *archiveGate) paths() []string {
	paths := make([]string, 0, len(g.modTimes))
	for p := range g.modTimes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// forget drops path and returns the classes it produced.
func (g *archiveGate) forget(path string) []string {
	classes := g.classes[path]
	delete(g.modTimes, path)
	delete(g.classes, path)
	return classes
}

// holds reports whether an archive on disk produced the class name.
func (g *archiveGate) holds(name string) bool {
	for _, classes := range g.classes {
		for _, c := range classes {
			if c == name {
				return true
			}
		}
	}
	return false
}

// removeFile drops the classes decoded from the file at path. Archive
// entries record their entry name as origin, which may equal a relative
// path on disk; their classes are kept.
func removeFile(repo *loader.Repository, archives *archiveGate, path string) []string {
	var names []string
	for _, cf := range repo.Classfiles() {
		name := cf.ClassName()
		if repo.Origin(name) == path && !archives.holds(name) {
			names = append(names, name)
		}
	}
	return repo.Remove(names...)
}

// changeTracker drops the classes an input held before it is decoded again,
// so an input that no longer decodes, or now declares different classes,
// leaves nothing stale behind.
type changeTracker struct {
	loader.BaseLoadListener
	repo     *loader.Repository
	archives *archiveGate
	// stack holds, per open group, the archive on disk it expands or "".
	stack   []string
	changes Changes
}

func (t *changeTracker) archive() string {
	for i := len(t.stack) - 1; i >= 0; i-- {
		if t.stack[i] != "" {
			return t.stack[i]
		}
	}
	return ""
}

func (t *changeTracker) BeginGroup(e loader.LoadEvent) {
	if !t.archives.known(e.Group) || t.archive() != "" {
		t.stack = append(t.stack, "")
		return
	}
	t.stack = append(t.stack, e.Group)
	t.changes.Removed = append(t.changes.Removed, t.repo.Remove(t.archives.classes[e.Group]...)...)
	t.archives.classes[e.Group] = nil
}

func (t *changeTracker) EndGroup(loader.LoadEvent) {
	if len(t.stack) > 0 {
		t.stack = t.stack[:len(t.stack)-1]
	}
}

func (t *changeTracker) BeginClassfile(e loader.LoadEvent) {
	if t.archive() == "" {
		t.changes.Removed = append(t.changes.Removed, removeFile(t.repo, t.archives, e.Filename)...)
	}
}

func (t *changeTracker) EndClassfile(e loader.LoadEvent) {
	if e.Classfile == nil {
		return
	}
	name := e.Classfile.ClassName()
	t.changes.Loaded = append(t.changes.Loaded, name)
	if a := t.archive(); a != "" {
		t.archives.classes[a] = append(t.archives.classes[a], name)
	}
	for i, removed := range t.changes.Removed {
		if removed == name {
			t.changes.Removed = append(t.changes.Removed[:i], t.changes.Removed[i+1:]...)
			break
		}
	}
}

// Classes returns every loaded class sorted by name.
func (c *Codebase) Classes() []*classfile.ClassFile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.repo.Classfiles()
}

func (c *Codebase) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.repo.Len()
}

// Classfile implements classfile.ClassResolver.
func (c *Codebase) Classfile(name string) *classfile.ClassFile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.repo.Classfile(name)
}

// Origin returns the file or archive entry a class was decoded from.
func (c *Codebase) Origin(name string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.repo.Origin(name)
}

// Symbols returns the symbols of every loaded class. They are gathered on
// first use after each load.
func (c *Codebase) Symbols() []format.Symbol {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.gathered {
		c.symbols = format.NewSymbolGatherer().Gather(c.repo.Classfiles()...)
		c.gathered = true
	}
	return c.symbols
}

// FindSymbols returns the symbols whose name contains query, ignoring case.
// Local variables are left out. An empty query matches every symbol.
func (c *Codebase) FindSymbols(query string) []format.Symbol {
	query = strings.ToLower(query)
	var found []format.Symbol
	for _, s := range c.Symbols() {
		if s.Kind == format.SymbolLocal {
			continue
		}
		if strings.Contains(strings.ToLower(s.Name), query) {
			found = append(found, s)
		}
	}
	return found
}

// Member is a field or method found by Describe, together with the class
// that declares it.
type Member struct {
	Owner  *classfile.ClassFile
	Field  *classfile.FieldInfo
	Method *classfile.MethodInfo
}

func (m Member) Declaration() string {
	switch {
	case m.Field != nil:
		return m.Field.Declaration(m.Owner.ConstantPool)
	case m.Method != nil:
		return m.Method.Declaration(m.Owner)
	}
	return ""
}

// Describe resolves a dotted name to a class or to a member that the class
// declares or inherits. It returns false when nothing matches.
func (c *Codebase) Describe(name string) (string, bool) {
	if cf := c.Lookup(name); cf != nil {
		return cf.Declaration(), true
	}
	dot := strings.LastIndex(name, ".")
	if dot < 0 {
		return "", false
	}
	cf := c.Lookup(name[:dot])
	if cf == nil {
		return "", false
	}
	m, ok := c.LocateMember(cf, name[dot+1:])
	if !ok {
		return "", false
	}
	return m.Owner.ClassName() + ": " + m.Declaration(), true
}

// Lookup finds a class by source name, or by simple name when that is
// unambiguous.
func (c *Codebase) Lookup(name string) *classfile.ClassFile {
	if cf := c.Classfile(name); cf != nil {
		return cf
	}
	var match *classfile.ClassFile
	for _, cf := range c.Classes() {
		if cf.SimpleName() != name {
			continue
		}
		if match != nil {
			return nil
		}
		match = cf
	}
	return match
}

// LocateMember finds a field, then a method, called name that cf declares
// or inherits.
func (c *Codebase) LocateMember(cf *classfile.ClassFile, name string) (Member, bool) {
	owner, f := cf.LocateField(c, func(owner *classfile.ClassFile, f *classfile.FieldInfo) bool {
		return f.Name(owner.ConstantPool) == name
	})
	if f != nil {
		return Member{Owner: owner, Field: f}, true
	}
	owner, m := cf.LocateMethod(c, func(owner *classfile.ClassFile, m *classfile.MethodInfo) bool {
		return m.Name(owner.ConstantPool) == name
	})
	if m != nil {
		return Member{Owner: owner, Method: m}, true
	}
	return Member{}, false
}
