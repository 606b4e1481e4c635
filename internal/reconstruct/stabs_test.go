package reconstruct

import (
	"testing"

	"github.com/blacktop/machomodel/pkg/cpptypes"
	"github.com/blacktop/machomodel/pkg/machofacade"
)

func TestParseSOOpensAndClosesSourceFile(t *testing.T) {
	r := newTestReconstructor()

	r.parseSO(machofacade.Symbol{Name: "/src/", Value: 0})
	r.parseSO(machofacade.Symbol{Name: "widget.cpp", Value: 0x1000})

	if r.curSourceFile == cpptypes.InvalidIndex {
		t.Fatal("expected a current source file after dir+file N_SO pair")
	}
	sf := r.model.SourceFiles[r.curSourceFile]
	if sf.Name != "/src/widget.cpp" || sf.AddressBegin != 0x1000 {
		t.Errorf("SourceFile = %+v, want name /src/widget.cpp, AddressBegin 0x1000", sf)
	}

	r.parseSO(machofacade.Symbol{Name: "", Value: 0x2000})
	if r.curSourceFile != cpptypes.InvalidIndex {
		t.Error("expected curSourceFile to reset on the closing N_SO")
	}
	closed := r.model.SourceFiles[0]
	if closed.AddressEnd != 0x2000 {
		t.Errorf("AddressEnd = 0x%x, want 0x2000", closed.AddressEnd)
	}
}

func TestParseSOLSwitchesCurrentHeaderAndRecordsInstruction(t *testing.T) {
	r := newTestReconstructor()
	r.model.Functions = append(r.model.Functions, cpptypes.Function{
		Variants: []cpptypes.FunctionVariant{{Address: 0x1000}},
	})
	r.openFunction = 0
	r.openVariant = 0

	r.parseSOL(machofacade.Symbol{Name: "widget.h", Value: 0x1010})

	if r.curHeaderFile == cpptypes.InvalidIndex {
		t.Fatal("expected a current header file after N_SOL")
	}
	fn := r.model.Functions[0]
	if len(fn.Variants[0].Instructions) != 1 || fn.Variants[0].Instructions[0].Address != 0x1010 {
		t.Errorf("expected one instruction at 0x1010, got %+v", fn.Variants[0].Instructions)
	}
}

func TestRecordInstructionNoOpWithoutOpenFunction(t *testing.T) {
	r := newTestReconstructor()
	r.recordInstruction(0x1234)
	if len(r.model.Functions) != 0 {
		t.Error("recordInstruction must not create a function")
	}
}

func TestRecordInstructionDefaultsToVariantAddressWhenZero(t *testing.T) {
	r := newTestReconstructor()
	r.model.Functions = append(r.model.Functions, cpptypes.Function{
		Variants: []cpptypes.FunctionVariant{{Address: 0x5000}},
	})
	r.openFunction = 0
	r.openVariant = 0

	r.recordInstruction(0)

	instrs := r.model.Functions[0].Variants[0].Instructions
	if len(instrs) != 1 || instrs[0].Address != 0x5000 {
		t.Errorf("expected instruction defaulted to variant address 0x5000, got %+v", instrs)
	}
}
