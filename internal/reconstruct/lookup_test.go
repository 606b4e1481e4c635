package reconstruct

import (
	"testing"

	"github.com/blacktop/machomodel/pkg/cpptypes"
)

func TestFindOrCreateNamespaceByNameCreatesAncestors(t *testing.T) {
	r := newTestReconstructor()

	idx := r.findOrCreateNamespaceByName("a::b::c")
	if len(r.model.Namespaces) != 3 {
		t.Fatalf("expected 3 namespaces (a, a::b, a::b::c), got %d", len(r.model.Namespaces))
	}
	if r.model.Namespaces[idx].NamespaceName != "c" {
		t.Errorf("leaf namespace name = %q, want %q", r.model.Namespaces[idx].NamespaceName, "c")
	}

	// requesting the same name again must not create duplicates.
	again := r.findOrCreateNamespaceByName("a::b::c")
	if again != idx || len(r.model.Namespaces) != 3 {
		t.Errorf("expected a cache hit, got idx=%d (want %d), %d namespaces", again, idx, len(r.model.Namespaces))
	}

	parent := r.model.Namespaces[idx].ParentNamespaceIndex
	if r.model.Namespaces[parent].Name != "a::b" {
		t.Errorf("parent namespace = %q, want a::b", r.model.Namespaces[parent].Name)
	}
}

func TestFindOrCreateClassByNameAttachesToNamespace(t *testing.T) {
	r := newTestReconstructor()

	idx := r.findOrCreateClassByName("ns::Widget")
	c := r.model.Classes[idx]
	if c.ClassName != "Widget" {
		t.Errorf("ClassName = %q, want Widget", c.ClassName)
	}
	if c.ParentNamespaceIndex == cpptypes.InvalidIndex {
		t.Fatal("expected the class to be attached to a namespace")
	}
	ns := r.model.Namespaces[c.ParentNamespaceIndex]
	if ns.Name != "ns" {
		t.Errorf("parent namespace = %q, want ns", ns.Name)
	}
	if len(ns.ClassIndices) != 1 || ns.ClassIndices[0] != idx {
		t.Errorf("expected namespace to list the class, got %v", ns.ClassIndices)
	}
}

func TestFindOrCreateClassByNameAttachesToParentClass(t *testing.T) {
	r := newTestReconstructor()
	outer := r.findOrCreateClassByName("Widget")
	inner := r.findOrCreateClassByName("Widget::Inner")

	c := r.model.Classes[inner]
	if c.ParentClassIndex != outer {
		t.Errorf("ParentClassIndex = %d, want %d", c.ParentClassIndex, outer)
	}
	if len(r.model.Classes[outer].ChildClassIndices) != 1 || r.model.Classes[outer].ChildClassIndices[0] != inner {
		t.Errorf("expected outer class to list the inner class as a child, got %v", r.model.Classes[outer].ChildClassIndices)
	}
}

func TestFindOrCreateEnumByNameAttachesToClass(t *testing.T) {
	r := newTestReconstructor()
	classIdx := r.findOrCreateClassByName("Widget")
	enumIdx := r.findOrCreateEnumByName("Widget::Color")

	if r.model.Enums[enumIdx].ParentClassIndex != classIdx {
		t.Errorf("ParentClassIndex = %d, want %d", r.model.Enums[enumIdx].ParentClassIndex, classIdx)
	}
	if len(r.model.Classes[classIdx].EnumIndices) != 1 {
		t.Errorf("expected the class to list the enum, got %v", r.model.Classes[classIdx].EnumIndices)
	}
}

func TestFindOrCreateHeaderFileRecordsAgainstCurrentSourceFile(t *testing.T) {
	r := newTestReconstructor()
	r.curSourceFile = r.findOrCreateSourceFileByName("widget.cpp")

	hdrIdx := r.findOrCreateHeaderFileByName("widget.h")
	sf := r.model.SourceFiles[r.curSourceFile]
	if len(sf.HeaderFileIndices) != 1 || sf.HeaderFileIndices[0] != hdrIdx {
		t.Errorf("expected source file to record the header, got %v", sf.HeaderFileIndices)
	}
}

func TestIsKnownClassAndNamespace(t *testing.T) {
	r := newTestReconstructor()
	if r.isKnownClass("Widget") || r.isKnownNamespace("ns") {
		t.Fatal("nothing should be known yet")
	}
	r.findOrCreateClassByName("Widget")
	r.findOrCreateNamespaceByName("ns")
	if !r.isKnownClass("Widget") {
		t.Error("expected Widget to be known after creation")
	}
	if !r.isKnownNamespace("ns") {
		t.Error("expected ns to be known after creation")
	}
}
