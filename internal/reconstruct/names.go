package reconstruct

// splitLastTopLevelScope splits a fully qualified name on its last
// top-level "::", scanning backward and tracking `<`/`>` depth so that a
// "::" inside a template argument list (e.g. "a::b<c::d>::e") never becomes
// the split point. Returns ("", name) if name has no top-level "::".
//
// Grounded on MachOReader.cpp's FindClassNameBeginPos.
func splitLastTopLevelScope(name string) (context, leaf string) {
	depth := 0
	for i := len(name) - 1; i >= 1; i-- {
		switch name[i] {
		case '>':
			depth++
		case '<':
			depth--
		case ':':
			if depth == 0 && name[i-1] == ':' {
				return name[:i-1], name[i+1:]
			}
		}
	}
	return "", name
}

// functionNameWithoutClassName strips the class/namespace qualifier off a
// function's fully qualified "name(params)" text, e.g.
// "Namespace::Class::method(Other::Type)" becomes "method(Other::Type)".
// Both `<`/`>` and `(`/`)` depth are tracked together so that a "::" inside
// a parameter type or a template argument is never mistaken for the split
// point between the class qualifier and the function's own name.
//
// Grounded on MachOReader.cpp's GetFunctionNameWithoutClassName.
func functionNameWithoutClassName(qualifiedNameWithParams string) string {
	angleDepth := 0
	parenDepth := 0
	for i := len(qualifiedNameWithParams) - 1; i >= 1; i-- {
		switch qualifiedNameWithParams[i] {
		case ')':
			parenDepth++
		case '(':
			parenDepth--
		case '>':
			angleDepth++
		case '<':
			angleDepth--
		case ':':
			if angleDepth == 0 && parenDepth == 0 && qualifiedNameWithParams[i-1] == ':' {
				return qualifiedNameWithParams[i+1:]
			}
		}
	}
	return qualifiedNameWithParams
}

// makeFunctionNameWithNewClassName rebuilds a function's qualified name
// under a different enclosing class, used while back-filling a pure
// virtual's name to the class that first declared the slot.
//
// Grounded on MachOReader.cpp's MakeFunctionNameWithNewClassName.
func makeFunctionNameWithNewClassName(newClassName, functionName string) string {
	return newClassName + "::" + functionNameWithoutClassName(functionName)
}
