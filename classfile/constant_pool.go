package classfile

import (
	"strconv"
	"strings"
)

type ConstantPoolEntry interface {
	Tag() ConstantTag
	Accept(v Visitor)
}

type ConstantUtf8Info struct {
	Value string
}

func (c *ConstantUtf8Info) Tag() ConstantTag { return ConstantUtf8 }
func (c *ConstantUtf8Info) Accept(v Visitor) { v.VisitUtf8(c) }

type ConstantIntegerInfo struct {
	Value int32
}

func (c *ConstantIntegerInfo) Tag() ConstantTag { return ConstantInteger }
func (c *ConstantIntegerInfo) Accept(v Visitor) { v.VisitInteger(c) }

type ConstantFloatInfo struct {
	Value float32
}

func (c *ConstantFloatInfo) Tag() ConstantTag { return ConstantFloat }
func (c *ConstantFloatInfo) Accept(v Visitor) { v.VisitFloat(c) }

type ConstantLongInfo struct {
	Value int64
}

func (c *ConstantLongInfo) Tag() ConstantTag { return ConstantLong }
func (c *ConstantLongInfo) Accept(v Visitor) { v.VisitLong(c) }

type ConstantDoubleInfo struct {
	Value float64
}

func (c *ConstantDoubleInfo) Tag() ConstantTag { return ConstantDouble }
func (c *ConstantDoubleInfo) Accept(v Visitor) { v.VisitDouble(c) }

type ConstantClassInfo struct {
	NameIndex uint16
}

func (c *ConstantClassInfo) Tag() ConstantTag { return ConstantClass }
func (c *ConstantClassInfo) Accept(v Visitor) { v.VisitClass(c) }

type ConstantStringInfo struct {
	StringIndex uint16
}

func (c *ConstantStringInfo) Tag() ConstantTag { return ConstantString }
func (c *ConstantStringInfo) Accept(v Visitor) { v.VisitString(c) }

type ConstantFieldrefInfo struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *ConstantFieldrefInfo) Tag() ConstantTag { return ConstantFieldref }
func (c *ConstantFieldrefInfo) Accept(v Visitor) { v.VisitFieldref(c) }

type ConstantMethodrefInfo struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *ConstantMethodrefInfo) Tag() ConstantTag { return ConstantMethodref }
func (c *ConstantMethodrefInfo) Accept(v Visitor) { v.VisitMethodref(c) }

type ConstantInterfaceMethodrefInfo struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *ConstantInterfaceMethodrefInfo) Tag() ConstantTag { return ConstantInterfaceMethodref }
func (c *ConstantInterfaceMethodrefInfo) Accept(v Visitor) { v.VisitInterfaceMethodref(c) }

type ConstantNameAndTypeInfo struct {
	NameIndex       uint16
	DescriptorIndex uint16
}

func (c *ConstantNameAndTypeInfo) Tag() ConstantTag { return ConstantNameAndType }
func (c *ConstantNameAndTypeInfo) Accept(v Visitor) { v.VisitNameAndType(c) }

type ConstantMethodHandleInfo struct {
	ReferenceKind  MethodHandleKind
	ReferenceIndex uint16
}

func (c *ConstantMethodHandleInfo) Tag() ConstantTag { return ConstantMethodHandle }
func (c *ConstantMethodHandleInfo) Accept(v Visitor) { v.VisitMethodHandle(c) }

type ConstantMethodTypeInfo struct {
	DescriptorIndex uint16
}

func (c *ConstantMethodTypeInfo) Tag() ConstantTag { return ConstantMethodType }
func (c *ConstantMethodTypeInfo) Accept(v Visitor) { v.VisitMethodType(c) }

type ConstantDynamicInfo struct {
	BootstrapMethodAttrIndex uint16
	NameAndTypeIndex         uint16
}

func (c *ConstantDynamicInfo) Tag() ConstantTag { return ConstantDynamic }
func (c *ConstantDynamicInfo) Accept(v Visitor) { v.VisitDynamic(c) }

type ConstantInvokeDynamicInfo struct {
	BootstrapMethodAttrIndex uint16
	NameAndTypeIndex         uint16
}

func (c *ConstantInvokeDynamicInfo) Tag() ConstantTag { return ConstantInvokeDynamic }
func (c *ConstantInvokeDynamicInfo) Accept(v Visitor) { v.VisitInvokeDynamic(c) }

type ConstantModuleInfo struct {
	NameIndex uint16
}

func (c *ConstantModuleInfo) Tag() ConstantTag { return ConstantModule }
func (c *ConstantModuleInfo) Accept(v Visitor) { v.VisitModule(c) }

type ConstantPackageInfo struct {
	NameIndex uint16
}

func (c *ConstantPackageInfo) Tag() ConstantTag { return ConstantPackage }
func (c *ConstantPackageInfo) Accept(v Visitor) { v.VisitPackage(c) }

// ConstantPool is indexed exactly like the class file: slot 0 is nil, and so
// is the slot following every long or double entry.
type ConstantPool []ConstantPoolEntry

// Count returns constant_pool_count, one more than the highest valid index.
func (cp ConstantPool) Count() int {
	return len(cp)
}

// Resolve returns the entry at index. It fails for index 0, for indices at or
// past Count, and for the unusable slot after a long or double.
func (cp ConstantPool) Resolve(index uint16) (ConstantPoolEntry, error) {
	if index == 0 || int(index) >= len(cp) {
		return nil, newError(KindConstantIndex).
			index(int(index)).
			detail("out of range [1, %d)", len(cp)).
			build()
	}
	entry := cp[index]
	if entry == nil {
		return nil, newError(KindConstantIndex).
			index(int(index)).
			detail("unusable slot after long or double").
			build()
	}
	return entry, nil
}

// expect resolves index and checks that the entry has one of tags.
func (cp ConstantPool) expect(index uint16, tags ...ConstantTag) error {
	entry, err := cp.Resolve(index)
	if err != nil {
		return err
	}
	if len(tags) == 0 {
		return nil
	}
	for _, t := range tags {
		if entry.Tag() == t {
			return nil
		}
	}
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.String()
	}
	return newError(KindConstantTag).
		index(int(index)).
		detail("found %s, want %s", entry.Tag(), strings.Join(names, " or ")).
		build()
}

// validate checks every reference held by the pool's own entries.
func (cp ConstantPool) validate() error {
	for i, entry := range cp {
		var err error
		switch e := entry.(type) {
		case nil:
			continue
		case *ConstantClassInfo:
			err = cp.expect(e.NameIndex, ConstantUtf8)
		case *ConstantStringInfo:
			err = cp.expect(e.StringIndex, ConstantUtf8)
		case *ConstantFieldrefInfo:
			err = cp.expectRef(e.ClassIndex, e.NameAndTypeIndex)
		case *ConstantMethodrefInfo:
			err = cp.expectRef(e.ClassIndex, e.NameAndTypeIndex)
		case *ConstantInterfaceMethodrefInfo:
			err = cp.expectRef(e.ClassIndex, e.NameAndTypeIndex)
		case *ConstantNameAndTypeInfo:
			if err = cp.expect(e.NameIndex, ConstantUtf8); err == nil {
				err = cp.expect(e.DescriptorIndex, ConstantUtf8)
			}
		case *ConstantMethodHandleInfo:
			err = cp.validateMethodHandle(e)
		case *ConstantMethodTypeInfo:
			err = cp.expect(e.DescriptorIndex, ConstantUtf8)
		case *ConstantDynamicInfo:
			err = cp.expect(e.NameAndTypeIndex, ConstantNameAndType)
		case *ConstantInvokeDynamicInfo:
			err = cp.expect(e.NameAndTypeIndex, ConstantNameAndType)
		case *ConstantModuleInfo:
			err = cp.expect(e.NameIndex, ConstantUtf8)
		case *ConstantPackageInfo:
			err = cp.expect(e.NameIndex, ConstantUtf8)
		}
		if err != nil {
			if de, ok := err.(*DecodeError); ok {
				de.Detail = "entry #" + strconv.Itoa(i) + " refers to #" + strconv.Itoa(de.Index) + ": " + de.Detail
			}
			return err
		}
	}
	return nil
}

func (cp ConstantPool) expectRef(classIndex, nameAndTypeIndex uint16) error {
	if err := cp.expect(classIndex, ConstantClass); err != nil {
		return err
	}
	return cp.expect(nameAndTypeIndex, ConstantNameAndType)
}

func (cp ConstantPool) validateMethodHandle(e *ConstantMethodHandleInfo) error {
	switch e.ReferenceKind {
	case RefGetField, RefGetStatic, RefPutField, RefPutStatic:
		return cp.expect(e.ReferenceIndex, ConstantFieldref)
	case RefInvokeVirtual, RefNewInvokeSpecial:
		return cp.expect(e.ReferenceIndex, ConstantMethodref)
	case RefInvokeStatic, RefInvokeSpecial:
		return cp.expect(e.ReferenceIndex, ConstantMethodref, ConstantInterfaceMethodref)
	case RefInvokeInterface:
		return cp.expect(e.ReferenceIndex, ConstantInterfaceMethodref)
	default:
		return newError(KindConstantTag).
			index(int(e.ReferenceIndex)).
			detail("invalid method handle kind %d", e.ReferenceKind).
			build()
	}
}

// Accept visits the pool as a whole; see BaseVisitor.VisitConstantPool for
// the per-entry traversal.
func (cp ConstantPool) Accept(v Visitor) {
	v.VisitConstantPool(cp)
}

func (cp ConstantPool) entry(index uint16) ConstantPoolEntry {
	if index == 0 || int(index) >= len(cp) {
		return nil
	}
	return cp[index]
}

func (cp ConstantPool) GetUtf8(index uint16) string {
	if entry, ok := cp.entry(index).(*ConstantUtf8Info); ok {
		return entry.Value
	}
	return ""
}

// GetClassName returns the internal (slash separated) name of a Class entry.
func (cp ConstantPool) GetClassName(index uint16) string {
	if entry, ok := cp.entry(index).(*ConstantClassInfo); ok {
		return cp.GetUtf8(entry.NameIndex)
	}
	return ""
}

func (cp ConstantPool) GetNameAndType(index uint16) (name, descriptor string) {
	if entry, ok := cp.entry(index).(*ConstantNameAndTypeInfo); ok {
		return cp.GetUtf8(entry.NameIndex), cp.GetUtf8(entry.DescriptorIndex)
	}
	return "", ""
}

func (cp ConstantPool) GetString(index uint16) string {
	if entry, ok := cp.entry(index).(*ConstantStringInfo); ok {
		return cp.GetUtf8(entry.StringIndex)
	}
	return ""
}

func (cp ConstantPool) GetModuleName(index uint16) string {
	if entry, ok := cp.entry(index).(*ConstantModuleInfo); ok {
		return cp.GetUtf8(entry.NameIndex)
	}
	return ""
}

func (cp ConstantPool) GetPackageName(index uint16) string {
	if entry, ok := cp.entry(index).(*ConstantPackageInfo); ok {
		return cp.GetUtf8(entry.NameIndex)
	}
	return ""
}

func (cp ConstantPool) GetInteger(index uint16) (int32, bool) {
	if entry, ok := cp.entry(index).(*ConstantIntegerInfo); ok {
		return entry.Value, true
	}
	return 0, false
}

func (cp ConstantPool) GetLong(index uint16) (int64, bool) {
	if entry, ok := cp.entry(index).(*ConstantLongInfo); ok {
		return entry.Value, true
	}
	return 0, false
}

func (cp ConstantPool) GetFloat(index uint16) (float32, bool) {
	if entry, ok := cp.entry(index).(*ConstantFloatInfo); ok {
		return entry.Value, true
	}
	return 0, false
}

func (cp ConstantPool) GetDouble(index uint16) (float64, bool) {
	if entry, ok := cp.entry(index).(*ConstantDoubleInfo); ok {
		return entry.Value, true
	}
	return 0, false
}

// GetRef returns the parts of any Fieldref, Methodref or InterfaceMethodref.
func (cp ConstantPool) GetRef(index uint16) (className, name, descriptor string) {
	var classIndex, natIndex uint16
	switch e := cp.entry(index).(type) {
	case *ConstantFieldrefInfo:
		classIndex, natIndex = e.ClassIndex, e.NameAndTypeIndex
	case *ConstantMethodrefInfo:
		classIndex, natIndex = e.ClassIndex, e.NameAndTypeIndex
	case *ConstantInterfaceMethodrefInfo:
		classIndex, natIndex = e.ClassIndex, e.NameAndTypeIndex
	default:
		return "", "", ""
	}
	className = cp.GetClassName(classIndex)
	name, descriptor = cp.GetNameAndType(natIndex)
	return
}

func (cp ConstantPool) GetFieldref(index uint16) (className, name, descriptor string) {
	if _, ok := cp.entry(index).(*ConstantFieldrefInfo); !ok {
		return "", "", ""
	}
	return cp.GetRef(index)
}

func (cp ConstantPool) GetMethodref(index uint16) (className, name, descriptor string) {
	if _, ok := cp.entry(index).(*ConstantMethodrefInfo); !ok {
		return "", "", ""
	}
	return cp.GetRef(index)
}

func (cp ConstantPool) GetInterfaceMethodref(index uint16) (className, name, descriptor string) {
	if _, ok := cp.entry(index).(*ConstantInterfaceMethodrefInfo); !ok {
		return "", "", ""
	}
	return cp.GetRef(index)
}

func (cp ConstantPool) GetMethodHandle(index uint16) *ConstantMethodHandleInfo {
	if entry, ok := cp.entry(index).(*ConstantMethodHandleInfo); ok {
		return entry
	}
	return nil
}

func (cp ConstantPool) GetMethodType(index uint16) string {
	if entry, ok := cp.entry(index).(*ConstantMethodTypeInfo); ok {
		return cp.GetUtf8(entry.DescriptorIndex)
	}
	return ""
}

func (cp ConstantPool) GetDynamic(index uint16) *ConstantDynamicInfo {
	if entry, ok := cp.entry(index).(*ConstantDynamicInfo); ok {
		return entry
	}
	return nil
}

func (cp ConstantPool) GetInvokeDynamic(index uint16) *ConstantInvokeDynamicInfo {
	if entry, ok := cp.entry(index).(*ConstantInvokeDynamicInfo); ok {
		return entry
	}
	return nil
}

// Display renders an entry the way a disassembler listing shows it: class
// names in source form, member references as owner.name, method descriptors
// as parameter lists.
func (cp ConstantPool) Display(index uint16) string {
	switch e := cp.entry(index).(type) {
	case *ConstantUtf8Info:
		return e.Value
	case *ConstantIntegerInfo:
		return strconv.FormatInt(int64(e.Value), 10)
	case *ConstantFloatInfo:
		return strconv.FormatFloat(float64(e.Value), 'g', -1, 32)
	case *ConstantLongInfo:
		return strconv.FormatInt(e.Value, 10)
	case *ConstantDoubleInfo:
		return strconv.FormatFloat(e.Value, 'g', -1, 64)
	case *ConstantClassInfo:
		return ClassDisplayName(cp.GetUtf8(e.NameIndex))
	case *ConstantStringInfo:
		return cp.GetUtf8(e.StringIndex)
	case *ConstantFieldrefInfo:
		className, name, _ := cp.GetRef(index)
		return InternalToSourceName(className) + "." + name
	case *ConstantMethodrefInfo, *ConstantInterfaceMethodrefInfo:
		className, name, descriptor := cp.GetRef(index)
		return InternalToSourceName(className) + "." + name + displaySignature(descriptor)
	case *ConstantNameAndTypeInfo:
		name, descriptor := cp.GetNameAndType(index)
		return name + " " + descriptor
	case *ConstantMethodHandleInfo:
		return e.ReferenceKind.String() + " " + cp.Display(e.ReferenceIndex)
	case *ConstantMethodTypeInfo:
		return displaySignature(cp.GetUtf8(e.DescriptorIndex))
	case *ConstantDynamicInfo:
		name, descriptor := cp.GetNameAndType(e.NameAndTypeIndex)
		return name + " " + descriptor
	case *ConstantInvokeDynamicInfo:
		name, descriptor := cp.GetNameAndType(e.NameAndTypeIndex)
		return name + displaySignature(descriptor)
	case *ConstantModuleInfo:
		return cp.GetUtf8(e.NameIndex)
	case *ConstantPackageInfo:
		return InternalToSourceName(cp.GetUtf8(e.NameIndex))
	}
	return ""
}

func displaySignature(descriptor string) string {
	sig, err := Signature(descriptor)
	if err != nil {
		return descriptor
	}
	return sig
}
