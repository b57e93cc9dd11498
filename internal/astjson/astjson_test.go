package astjson

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/zeb33n/zeblang/internal/parser"
)

func TestEncodeProgramSingleFieldNodeUnwraps(t *testing.T) {
	stmts, errs := parser.Parse("exit 42\n")
	if len(errs) != 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	out, err := EncodeProgram(stmts)
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}

	var decoded []map[string]interface{}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, out)
	}
	exit, ok := decoded[0]["Exit"]
	if !ok {
		t.Fatalf("missing Exit key: %s", out)
	}
	value, ok := exit.(map[string]interface{})
	if !ok {
		t.Fatalf("Exit payload should be a single node object, got %T", exit)
	}
	if value["Value"] != "42" {
		t.Errorf("Value literal = %v, want \"42\"", value["Value"])
	}
}

func TestEncodeProgramMultiFieldNodeIsArray(t *testing.T) {
	stmts, errs := parser.Parse("x = 1\nexit 0\n")
	if len(errs) != 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	out, err := EncodeProgram(stmts)
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}
	var decoded []map[string]interface{}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, out)
	}
	assign, ok := decoded[0]["Assign"].([]interface{})
	if !ok {
		t.Fatalf("Assign payload should be an array, got %T", decoded[0]["Assign"])
	}
	if len(assign) != 2 || assign[0] != "x" {
		t.Errorf("Assign = %v, want [\"x\", {\"Value\":\"1\"}]", assign)
	}
}

func TestEncodeProgramZeroFieldNodeIsBareTag(t *testing.T) {
	stmts, errs := parser.Parse("if 1\n  exit 0\nfi\nexit 1\n")
	if len(errs) != 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	out, err := EncodeProgram(stmts)
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}
	var decoded []interface{}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, out)
	}
	if decoded[2] != "EndIf" {
		t.Errorf("EndIf = %v, want bare string \"EndIf\"", decoded[2])
	}
}

func TestEncodeErrorsIncludesLineNumber(t *testing.T) {
	_, errs := parser.Parse("x === 1\n")
	if len(errs) == 0 {
		t.Fatal("expected a parse error")
	}
	out, err := EncodeErrors(errs)
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}
	var lines []string
	if err := json.Unmarshal(out, &lines); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, out)
	}
	if len(lines) == 0 {
		t.Fatal("expected at least one error line")
	}
	if !strings.HasPrefix(lines[0], "1: ") {
		t.Errorf("error line = %q, want prefix \"1: \"", lines[0])
	}
}
