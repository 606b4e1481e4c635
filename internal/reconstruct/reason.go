package reconstruct

import (
	"strings"

	"github.com/blacktop/machomodel/pkg/cpptypes"
)

// processVtables runs the three-pass vtable reasoning pipeline: aligning
// every vtable against its base's primary vtable to classify each slot as
// an override, an implicit inheritance, or a genuine first declaration;
// then a looser greedy alignment for a primary vtable against every direct
// base (not just the offset-matched one) to catch overrides multiple
// inheritance's layout can shift out of strict position; then linking every
// remaining non-first-declaration slot back to the base class whose vtable
// first declared it.
//
// Grounded on MachOReader.cpp's ProcessVtables.
func (r *reconstructor) processVtables() {
	r.processVtableOverridesAndPureVirtuals()
	r.processPrimaryVtableOverrides()
	r.processPrimaryVtableBaseClassRelationship()
}

// processVtableOverridesAndPureVirtuals walks every class's vtables,
// aligning each against the base class occupying that vtable's offset.
//
// Grounded on MachOReader.cpp's ProcessVtableOverridesAndPureVirtuals /
// ProcessVtableEntryOverride / ProcessVtableEntryPureVirtual.
func (r *reconstructor) processVtableOverridesAndPureVirtuals() {
	for i := range r.model.Classes {
		for vi := range r.model.Classes[i].VTables {
			r.alignVtableAgainstBases(cpptypes.Index(i), vi)
		}
	}
}

// alignVtableAgainstBases compares classIdx's vtable at vtableIdx,
// position by position, against the primary vtable of the base class
// occupying that offset, then recurses into that base so a pure virtual
// declared several levels up gets its name back-filled from the first
// concrete override found anywhere below it.
func (r *reconstructor) alignVtableAgainstBases(classIdx cpptypes.Index, vtableIdx int) {
	c := &r.model.Classes[classIdx]
	if vtableIdx >= len(c.VTables) {
		return
	}
	base := c.GetBaseClass(c.VTables[vtableIdx].Offset)
	if base == nil {
		return
	}
	baseClass := &r.model.Classes[base.ClassIndex]
	if len(baseClass.VTables) == 0 {
		return
	}

	className := c.Name
	baseClassName := baseClass.Name
	entries := c.VTables[vtableIdx].Entries
	baseEntries := baseClass.VTables[0].Entries

	for ei := range entries {
		if ei >= len(baseEntries) {
			break
		}
		entry := &entries[ei]
		baseEntry := &baseEntries[ei]

		if entry.IsPureVirtual {
			if entry.Name == "" && baseEntry.Name != "" {
				entry.Name = baseEntry.Name
			}
			continue
		}
		if entry.Name != "" && strings.HasPrefix(entry.Name, className+"::") {
			entry.IsOverride = true
			if baseEntry.IsPureVirtual && baseEntry.Name == "" {
				baseEntry.Name = makeFunctionNameWithNewClassName(baseClassName, entry.Name)
			}
		} else {
			entry.IsImplicit = true
			if entry.Name == "" {
				entry.Name = baseEntry.Name
				entry.FunctionIndex = baseEntry.FunctionIndex
				entry.ThunkIndex = baseEntry.ThunkIndex
				entry.IsDtor = baseEntry.IsDtor
			}
		}
	}

	r.alignVtableAgainstBases(base.ClassIndex, 0)
}

// processPrimaryVtableOverrides greedily aligns a class's primary vtable
// against every direct base's primary vtable (not just the one occupying
// offset 0), catching overrides that multiple inheritance's vtable layout
// can shift out of strict positional alignment.
//
// Grounded on MachOReader.cpp's ProcessPrimaryVtableOverrides /
// ProcessPrimaryVtableEntries1 / ProcessPrimaryVtableEntries2.
func (r *reconstructor) processPrimaryVtableOverrides() {
	for i := range r.model.Classes {
		c := &r.model.Classes[i]
		if len(c.VTables) == 0 {
			continue
		}
		for _, dbc := range c.DirectBaseClasses {
			baseClass := &r.model.Classes[dbc.ClassIndex]
			if len(baseClass.VTables) == 0 {
				continue
			}
			alignPrimaryVtables(c.VTables[0].Entries, baseClass.VTables[0].Entries)
		}
	}
}

// alignPrimaryVtables walks two vtables' entries with independent cursors:
// on a match it advances both; otherwise it first tries advancing the
// vtable cursor to find a later match against the fixed base cursor, then
// tries advancing the base cursor against the fixed vtable cursor, and
// only advances both without a match as a last resort.
func alignPrimaryVtables(entries, baseEntries []cpptypes.VTableEntry) {
	vi, bi := 0, 0
	for vi < len(entries) && bi < len(baseEntries) {
		if vtableEntryIsOverride(entries[vi], baseEntries[bi]) {
			entries[vi].IsOverride = true
			vi++
			bi++
			continue
		}
		if advanceToMatch(entries, &vi, baseEntries[bi]) {
			continue
		}
		if advanceToMatch(baseEntries, &bi, entries[vi]) {
			continue
		}
		vi++
		bi++
	}
}

// advanceToMatch scans seq starting just past *cursor for an entry
// matching target, moving *cursor there and reporting true if one exists.
func advanceToMatch(seq []cpptypes.VTableEntry, cursor *int, target cpptypes.VTableEntry) bool {
	for j := *cursor + 1; j < len(seq); j++ {
		if vtableEntryIsOverride(seq[j], target) {
			*cursor = j
			return true
		}
	}
	return false
}

// vtableEntryIsOverride reports whether two vtable entries plausibly refer
// to the same virtual function slot: both destructors, or the same
// function name once each side's class qualifier is stripped off.
//
// Grounded on MachOReader.cpp's VtableEntryIsOverride.
func vtableEntryIsOverride(a, b cpptypes.VTableEntry) bool {
	if a.IsDtor && b.IsDtor {
		return true
	}
	if a.Name == "" || b.Name == "" {
		return false
	}
	return functionNameWithoutClassName(a.Name) == functionNameWithoutClassName(b.Name)
}

// processPrimaryVtableBaseClassRelationship links every primary vtable
// entry that isn't a first declaration, and hasn't already been linked, to
// the most-derived base class (scanning AllBaseClasses bottom-up) whose own
// primary vtable first declared that slot.
//
// Grounded on MachOReader.cpp's ProcessPrimaryVtableBaseClassRelationship.
func (r *reconstructor) processPrimaryVtableBaseClassRelationship() {
	for i := range r.model.Classes {
		c := &r.model.Classes[i]
		if len(c.VTables) == 0 {
			continue
		}
		primary := &c.VTables[0]
		for ei := range primary.Entries {
			entry := &primary.Entries[ei]
			if entry.IsFirstDeclaration() || entry.AllBaseClassIndex != cpptypes.InvalidIndex {
				continue
			}
			for bi := len(c.AllBaseClasses) - 1; bi >= 0; bi-- {
				baseClass := &r.model.Classes[c.AllBaseClasses[bi].ClassIndex]
				if len(baseClass.VTables) == 0 {
					continue
				}
				matched := false
				for _, baseEntry := range baseClass.VTables[0].Entries {
					if baseEntry.IsFirstDeclaration() && vtableEntryIsOverride(*entry, baseEntry) {
						entry.AllBaseClassIndex = cpptypes.Index(bi)
						matched = true
						break
					}
				}
				if matched {
					break
				}
			}
		}
	}
}
