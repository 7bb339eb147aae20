package format

import (
	"strconv"

	"github.com/dhamidi/classreader/classfile"
)

// constantText renders the entry at index the way it reads inside an
// instruction or another entry, e.g. "java.lang.Object.<init>()".
func constantText(cp classfile.ConstantPool, index uint16) string {
	entry, err := cp.Resolve(index)
	if err != nil {
		return "#" + strconv.Itoa(int(index))
	}
	return entryText(cp, entry)
}

func entryText(cp classfile.ConstantPool, entry classfile.ConstantPoolEntry) string {
	switch e := entry.(type) {
	case *classfile.ConstantUtf8Info:
		return e.Value
	case *classfile.ConstantIntegerInfo:
		return strconv.FormatInt(int64(e.Value), 10)
	case *classfile.ConstantFloatInfo:
		return strconv.FormatFloat(float64(e.Value), 'g', -1, 32)
	case *classfile.ConstantLongInfo:
		return strconv.FormatInt(e.Value, 10)
	case *classfile.ConstantDoubleInfo:
		return strconv.FormatFloat(e.Value, 'g', -1, 64)
	case *classfile.ConstantClassInfo:
		return classfile.ClassDisplayName(cp.GetUtf8(e.NameIndex))
	case *classfile.ConstantStringInfo:
		return cp.GetUtf8(e.StringIndex)
	case *classfile.ConstantFieldrefInfo:
		return refText(cp, e.ClassIndex, e.NameAndTypeIndex, false)
	case *classfile.ConstantMethodrefInfo:
		return refText(cp, e.ClassIndex, e.NameAndTypeIndex, true)
	case *classfile.ConstantInterfaceMethodrefInfo:
		return refText(cp, e.ClassIndex, e.NameAndTypeIndex, true)
	case *classfile.ConstantNameAndTypeInfo:
		return cp.GetUtf8(e.NameIndex) + " " + cp.GetUtf8(e.DescriptorIndex)
	case *classfile.ConstantMethodHandleInfo:
		return e.ReferenceKind.String() + " " + constantText(cp, e.ReferenceIndex)
	case *classfile.ConstantMethodTypeInfo:
		return signatureText(cp.GetUtf8(e.DescriptorIndex))
	case *classfile.ConstantDynamicInfo:
		name, desc := cp.GetNameAndType(e.NameAndTypeIndex)
		return name + " " + desc
	case *classfile.ConstantInvokeDynamicInfo:
		name, desc := cp.GetNameAndType(e.NameAndTypeIndex)
		return name + signatureText(desc)
	case *classfile.ConstantModuleInfo:
		return cp.GetUtf8(e.NameIndex)
	case *classfile.ConstantPackageInfo:
		return classfile.InternalToSourceName(cp.GetUtf8(e.NameIndex))
	}
	return ""
}

// refText renders a member reference as class.name, followed by the
// parameter list for methods.
func refText(cp classfile.ConstantPool, classIndex, natIndex uint16, method bool) string {
	name, desc := cp.GetNameAndType(natIndex)
	text := classfile.ClassDisplayName(cp.GetClassName(classIndex)) + "." + name
	if method {
		text += signatureText(desc)
	}
	return text
}

func signatureText(descriptor string) string {
	sig, err := classfile.Signature(descriptor)
	if err != nil {
		return descriptor
	}
	return sig
}
