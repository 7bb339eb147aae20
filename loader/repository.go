package loader

import (
	"sort"
	"sync"

	"github.com/dhamidi/classreader/classfile"
)

// Repository collects every class decoded during a session, keyed by
// source name. A later class with the same name replaces the earlier one.
type Repository struct {
	BaseLoadListener

	mu      sync.RWMutex
	classes map[string]*classfile.ClassFile
	origins map[string]string
}

var (
	_ LoadListener            = (*Repository)(nil)
	_ classfile.ClassResolver = (*Repository)(nil)
)

func NewRepository() *Repository {
	return &Repository{
		classes: make(map[string]*classfile.ClassFile),
		origins: make(map[string]string),
	}
}

func (r *Repository) EndClassfile(e LoadEvent) {
	if e.Classfile != nil {
		r.Add(e.Classfile, e.Filename)
	}
}

// Add stores cf under its source name. origin records where it came from.
func (r *Repository) Add(cf *classfile.ClassFile, origin string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.classes == nil {
		r.classes = make(map[string]*classfile.ClassFile)
		r.origins = make(map[string]string)
	}
	name := cf.ClassName()
	r.classes[name] = cf
	r.origins[name] = origin
}

// RemoveOrigin drops every class that was loaded from origin and returns
// their names.
func (r *Repository) RemoveOrigin(origin string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed []string
	for name, o := range r.origins {
		if o == origin {
			delete(r.classes, name)
			delete(r.origins, name)
			removed = append(removed, name)
		}
	}
	sort.Strings(removed)
	return removed
}

// Remove drops the named classes and returns the names that were present.
func (r *Repository) Remove(names ...string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed []string
	for _, name := range names {
		if _, ok := r.classes[name]; ok {
			delete(r.classes, name)
			delete(r.origins, name)
			removed = append(removed, name)
		}
	}
	return removed
}

// Classfile implements classfile.ClassResolver.
func (r *Repository) Classfile(name string) *classfile.ClassFile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.classes[name]
}

func (r *Repository) Origin(name string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.origins[name]
}

// Classfiles returns every stored class sorted by name.
func (r *Repository) Classfiles() []*classfile.ClassFile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]*classfile.ClassFile, 0, len(r.classes))
	for _, cf := range r.classes {
		all = append(all, cf)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].ClassName() < all[j].ClassName()
	})
	return all
}

func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.classes)
}
