package classfile

type ModuleAttribute struct {
	AttributeHeader
	ModuleNameIndex    uint16
	ModuleFlags        AccessFlags
	ModuleVersionIndex uint16
	Requires           []ModuleRequires
	Exports            []ModuleExports
	Opens              []ModuleOpens
	Uses               []uint16
	Provides           []ModuleProvides
}

type ModuleRequires struct {
	RequiresIndex        uint16
	RequiresFlags        AccessFlags
	RequiresVersionIndex uint16
}

type ModuleExports struct {
	ExportsIndex   uint16
	ExportsFlags   AccessFlags
	ExportsToIndex []uint16
}

type ModuleOpens struct {
	OpensIndex   uint16
	OpensFlags   AccessFlags
	OpensToIndex []uint16
}

type ModuleProvides struct {
	ProvidesIndex     uint16
	ProvidesWithIndex []uint16
}

func (m *ModuleRequires) Accept(v Visitor) { v.VisitModuleRequires(m) }
func (m *ModuleExports) Accept(v Visitor)  { v.VisitModuleExports(m) }
func (m *ModuleOpens) Accept(v Visitor)    { v.VisitModuleOpens(m) }
func (m *ModuleProvides) Accept(v Visitor) { v.VisitModuleProvides(m) }

func (a *ModuleAttribute) ModuleName(cp ConstantPool) string {
	return cp.GetModuleName(a.ModuleNameIndex)
}

func (m *ModuleRequires) Module(cp ConstantPool) string {
	return cp.GetModuleName(m.RequiresIndex)
}

func (m *ModuleExports) Package(cp ConstantPool) string {
	return InternalToSourceName(cp.GetPackageName(m.ExportsIndex))
}

func (m *ModuleOpens) Package(cp ConstantPool) string {
	return InternalToSourceName(cp.GetPackageName(m.OpensIndex))
}

func readModule(r *reader, cp ConstantPool) *ModuleAttribute {
	m := &ModuleAttribute{
		ModuleNameIndex:    r.readIndex(cp, ConstantModule),
		ModuleFlags:        AccessFlags(r.readU2()),
		ModuleVersionIndex: r.readOptionalIndex(cp, ConstantUtf8),
	}

	m.Requires = make([]ModuleRequires, r.readU2())
	for i := range m.Requires {
		m.Requires[i] = ModuleRequires{
			RequiresIndex:        r.readIndex(cp, ConstantModule),
			RequiresFlags:        AccessFlags(r.readU2()),
			RequiresVersionIndex: r.readOptionalIndex(cp, ConstantUtf8),
		}
	}

	m.Exports = make([]ModuleExports, r.readU2())
	for i := range m.Exports {
		m.Exports[i] = ModuleExports{
			ExportsIndex:   r.readIndex(cp, ConstantPackage),
			ExportsFlags:   AccessFlags(r.readU2()),
			ExportsToIndex: r.readIndexList(cp, ConstantModule),
		}
	}

	m.Opens = make([]ModuleOpens, r.readU2())
	for i := range m.Opens {
		m.Opens[i] = ModuleOpens{
			OpensIndex:   r.readIndex(cp, ConstantPackage),
			OpensFlags:   AccessFlags(r.readU2()),
			OpensToIndex: r.readIndexList(cp, ConstantModule),
		}
	}

	m.Uses = r.readIndexList(cp, ConstantClass)

	m.Provides = make([]ModuleProvides, r.readU2())
	for i := range m.Provides {
		m.Provides[i] = ModuleProvides{
			ProvidesIndex:     r.readIndex(cp, ConstantClass),
			ProvidesWithIndex: r.readIndexList(cp, ConstantClass),
		}
	}

	return m
}
