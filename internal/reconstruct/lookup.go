package reconstruct

import "github.com/blacktop/machomodel/pkg/cpptypes"

// findOrCreateSourceFileByName returns the index of the SourceFile named
// name, creating it if this is the first N_SO for it.
func (r *reconstructor) findOrCreateSourceFileByName(name string) cpptypes.Index {
	if idx, ok := r.model.NameToSourceFileIndex[name]; ok {
		return idx
	}
	r.model.SourceFiles = append(r.model.SourceFiles, cpptypes.SourceFile{Name: name})
	idx := cpptypes.Index(len(r.model.SourceFiles) - 1)
	r.model.NameToSourceFileIndex[name] = idx
	return idx
}

// findOrCreateHeaderFileByName returns the index of the HeaderFile named
// name, creating it if this is the first N_SOL for it.
func (r *reconstructor) findOrCreateHeaderFileByName(name string) cpptypes.Index {
	if idx, ok := r.model.NameToHeaderFileIndex[name]; ok {
		return idx
	}
	r.model.HeaderFiles = append(r.model.HeaderFiles, cpptypes.HeaderFile{Name: name})
	idx := cpptypes.Index(len(r.model.HeaderFiles) - 1)
	r.model.NameToHeaderFileIndex[name] = idx
	if r.curSourceFile != cpptypes.InvalidIndex {
		sf := &r.model.SourceFiles[r.curSourceFile]
		sf.HeaderFileIndices = append(sf.HeaderFileIndices, idx)
	}
	return idx
}

// findOrCreateNamespaceByName returns the index of the Namespace named name
// (a fully qualified "a::b::c" name), creating every missing ancestor
// namespace along the way.
func (r *reconstructor) findOrCreateNamespaceByName(name string) cpptypes.Index {
	if idx, ok := r.model.NameToNamespaceIndex[name]; ok {
		return idx
	}
	context, leaf := splitLastTopLevelScope(name)
	parent := cpptypes.InvalidIndex
	if context != "" {
		parent = r.findOrCreateNamespaceByName(context)
	}
	r.model.Namespaces = append(r.model.Namespaces, cpptypes.Namespace{
		Name:                 name,
		NamespaceName:        leaf,
		ParentNamespaceIndex: parent,
	})
	idx := cpptypes.Index(len(r.model.Namespaces) - 1)
	r.model.NameToNamespaceIndex[name] = idx
	if parent != cpptypes.InvalidIndex {
		r.model.Namespaces[parent].ChildNamespaceIndices = append(r.model.Namespaces[parent].ChildNamespaceIndices, idx)
	}
	return idx
}

// findOrCreateClassByName returns the index of the Class named name (fully
// qualified), creating it and attaching it to its enclosing class or
// namespace if this is the first reference to it.
func (r *reconstructor) findOrCreateClassByName(name string) cpptypes.Index {
	if idx, ok := r.model.NameToClassIndex[name]; ok {
		return idx
	}
	context, leaf := splitLastTopLevelScope(name)
	r.model.Classes = append(r.model.Classes, cpptypes.Class{
		Name:                 name,
		ClassName:            leaf,
		ParentNamespaceIndex: cpptypes.InvalidIndex,
		ParentClassIndex:     cpptypes.InvalidIndex,
	})
	idx := cpptypes.Index(len(r.model.Classes) - 1)
	r.model.NameToClassIndex[name] = idx

	if context == "" {
		return idx
	}
	if parentClass, ok := r.model.NameToClassIndex[context]; ok {
		r.model.Classes[idx].ParentClassIndex = parentClass
		r.model.Classes[parentClass].ChildClassIndices = append(r.model.Classes[parentClass].ChildClassIndices, idx)
		return idx
	}
	nsIdx := r.findOrCreateNamespaceByName(context)
	r.model.Classes[idx].ParentNamespaceIndex = nsIdx
	r.model.Namespaces[nsIdx].ClassIndices = append(r.model.Namespaces[nsIdx].ClassIndices, idx)
	return idx
}

// findOrCreateEnumByName returns the index of the Enum named name (fully
// qualified), creating it if this is the first reference to it.
func (r *reconstructor) findOrCreateEnumByName(name string) cpptypes.Index {
	if idx, ok := r.model.NameToEnumIndex[name]; ok {
		return idx
	}
	context, _ := splitLastTopLevelScope(name)
	e := cpptypes.Enum{
		Name:                 name,
		ParentNamespaceIndex: cpptypes.InvalidIndex,
		ParentClassIndex:     cpptypes.InvalidIndex,
		ParentFunctionIndex:  cpptypes.InvalidIndex,
	}
	r.model.Enums = append(r.model.Enums, e)
	idx := cpptypes.Index(len(r.model.Enums) - 1)
	r.model.NameToEnumIndex[name] = idx

	if context == "" {
		return idx
	}
	if parentClass, ok := r.model.NameToClassIndex[context]; ok {
		r.model.Enums[idx].ParentClassIndex = parentClass
		r.model.Classes[parentClass].EnumIndices = append(r.model.Classes[parentClass].EnumIndices, idx)
		return idx
	}
	nsIdx := r.findOrCreateNamespaceByName(context)
	r.model.Enums[idx].ParentNamespaceIndex = nsIdx
	r.model.Namespaces[nsIdx].EnumIndices = append(r.model.Namespaces[nsIdx].EnumIndices, idx)
	return idx
}

// isKnownClass reports whether name already resolves to a recorded Class.
func (r *reconstructor) isKnownClass(name string) bool {
	_, ok := r.model.NameToClassIndex[name]
	return ok
}

// isKnownNamespace reports whether name already resolves to a recorded
// Namespace.
func (r *reconstructor) isKnownNamespace(name string) bool {
	_, ok := r.model.NameToNamespaceIndex[name]
	return ok
}
