package format

import (
	"github.com/dhamidi/classreader/classfile"
)

type SymbolKind string

const (
	SymbolClass  SymbolKind = "class"
	SymbolField  SymbolKind = "field"
	SymbolMethod SymbolKind = "method"
	SymbolLocal  SymbolKind = "local"
)

// Symbol is one named entity. Name is fully qualified:
//
//	p.A
//	p.A.count
//	p.A.run(int)
//	p.A.run(int): x
type Symbol struct {
	Kind        SymbolKind
	Name        string
	Class       string
	Declaration string
	// Owner indexes the enclosing symbol in the gatherer's Symbols, or is
	// -1 for classes.
	Owner       int
	Constructor bool
}

// SymbolGatherer collects symbols from every class it visits. It also
// records which method owns each local variable and which class owns each
// method, since the decoded structures hold no back references.
type SymbolGatherer struct {
	classfile.BaseVisitor

	// Filter drops symbols it returns false for. A nil Filter keeps all.
	Filter func(Symbol) bool

	Symbols []Symbol

	methodOwners map[*classfile.MethodInfo]*classfile.ClassFile
	localOwners  map[*classfile.LocalVariable]*classfile.MethodInfo

	cf          *classfile.ClassFile
	method      *classfile.MethodInfo
	classSymbol int
	methodSym   int
}

func NewSymbolGatherer() *SymbolGatherer {
	g := &SymbolGatherer{
		methodOwners: make(map[*classfile.MethodInfo]*classfile.ClassFile),
		localOwners:  make(map[*classfile.LocalVariable]*classfile.MethodInfo),
	}
	g.Bind(g)
	return g
}

// Gather visits each class in turn and returns the symbols collected so far.
func (g *SymbolGatherer) Gather(classes ...*classfile.ClassFile) []Symbol {
	for _, cf := range classes {
		cf.Accept(g)
	}
	return g.Symbols
}

// MethodOwner returns the class that declared m, if m was visited.
func (g *SymbolGatherer) MethodOwner(m *classfile.MethodInfo) *classfile.ClassFile {
	return g.methodOwners[m]
}

// LocalOwner returns the method whose code declared lv, if lv was visited.
func (g *SymbolGatherer) LocalOwner(lv *classfile.LocalVariable) *classfile.MethodInfo {
	return g.localOwners[lv]
}

// OwnerOf returns the enclosing symbol of s, or nil for classes.
func (g *SymbolGatherer) OwnerOf(s Symbol) *Symbol {
	if s.Owner < 0 || s.Owner >= len(g.Symbols) {
		return nil
	}
	return &g.Symbols[s.Owner]
}

// add appends s unless the filter rejects it and returns its index, or -1.
func (g *SymbolGatherer) add(s Symbol) int {
	if g.Filter != nil && !g.Filter(s) {
		return -1
	}
	g.Symbols = append(g.Symbols, s)
	return len(g.Symbols) - 1
}

func (g *SymbolGatherer) VisitClassFile(cf *classfile.ClassFile) {
	g.cf = cf
	g.classSymbol = g.add(Symbol{
		Kind:        SymbolClass,
		Name:        cf.ClassName(),
		Class:       cf.ClassName(),
		Declaration: cf.Declaration(),
		Owner:       -1,
	})
	g.BaseVisitor.VisitClassFile(cf)
	g.cf = nil
}

func (g *SymbolGatherer) VisitField(f *classfile.FieldInfo) {
	cp := g.cf.ConstantPool
	g.add(Symbol{
		Kind:        SymbolField,
		Name:        g.cf.ClassName() + "." + f.Name(cp),
		Class:       g.cf.ClassName(),
		Declaration: f.Declaration(cp),
		Owner:       g.classSymbol,
	})
}

func (g *SymbolGatherer) VisitMethod(m *classfile.MethodInfo) {
	g.methodOwners[m] = g.cf
	g.method = m
	g.methodSym = g.add(Symbol{
		Kind:        SymbolMethod,
		Name:        MethodSymbolName(g.cf, m),
		Class:       g.cf.ClassName(),
		Declaration: m.Declaration(g.cf),
		Owner:       g.classSymbol,
		Constructor: m.IsConstructor(g.cf.ConstantPool),
	})
	g.BaseVisitor.VisitMethod(m)
	g.method = nil
}

func (g *SymbolGatherer) VisitLocalVariable(lv *classfile.LocalVariable) {
	if g.method == nil {
		return
	}
	g.localOwners[lv] = g.method

	cp := g.cf.ConstantPool
	t, err := classfile.ConvertType(lv.Descriptor(cp))
	if err != nil {
		t = lv.Descriptor(cp)
	}
	g.add(Symbol{
		Kind:        SymbolLocal,
		Name:        MethodSymbolName(g.cf, g.method) + ": " + lv.Name(cp),
		Class:       g.cf.ClassName(),
		Declaration: t + " " + lv.Name(cp),
		Owner:       g.methodSym,
	})
}

// MethodSymbolName names m as class.name(params). Constructors take the
// simple class name and the static initializer is "static {}".
func MethodSymbolName(cf *classfile.ClassFile, m *classfile.MethodInfo) string {
	cp := cf.ConstantPool
	prefix := cf.ClassName() + "."
	switch {
	case m.IsStaticInitializer(cp):
		return prefix + "static {}"
	case m.IsConstructor(cp):
		return prefix + constructorName(cf.SimpleName()) + signatureText(m.Signature(cp))
	default:
		return prefix + m.Name(cp) + signatureText(m.Signature(cp))
	}
}

func constructorName(simple string) string {
	for i := len(simple) - 1; i >= 0; i-- {
		if simple[i] == '$' {
			return simple[i+1:]
		}
	}
	return simple
}
