package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andreyvit/datum"
)

func writeValues(t *testing.T, vs ...*datum.Value) string {
	t.Helper()
	var buf []byte
	for _, v := range vs {
		buf = v.AppendBinary(buf)
	}
	path := filepath.Join(t.TempDir(), "values.bin")
	if err := os.WriteFile(path, buf, 0o666); err != nil {
		t.Fatal(err)
	}
	return path
}

func runTool(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := runWithArgs(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestDump(t *testing.T) {
	unit := &datum.Value{}
	datum.SetField(unit, datum.Name("hp"), 100)
	path := writeValues(t, unit, datum.Of("a", "b"))

	code, out, errOut := runTool(t, "dump", path)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, errOut)
	}
	if out != "{\"hp\": 100}\n[\"a\", \"b\"]\n" {
		t.Fatalf("stdout = %q", out)
	}

	code, out, _ = runTool(t, "dump", "-json", path)
	if code != 0 || out != "{\"hp\":100}\n[\"a\",\"b\"]\n" {
		t.Fatalf("dump -json = %d, %q", code, out)
	}
}

func TestDumpMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.bin")
	if err := os.WriteFile(path, []byte{0, 2, 1}, 0o666); err != nil {
		t.Fatal(err)
	}
	code, _, errOut := runTool(t, "dump", path)
	if code != 1 || !strings.Contains(errOut, "offset") {
		t.Fatalf("dump(bad) = %d, stderr: %s", code, errOut)
	}
}

func TestStoreCommands(t *testing.T) {
	db := filepath.Join(t.TempDir(), "test.db")
	path := writeValues(t, datum.Of[int32](1, 2, 3))

	for _, key := range []string{"orc", "elf"} {
		if code, _, errOut := runTool(t, "put", "-db", db, "units", key, path); code != 0 {
			t.Fatalf("put exit code = %d, stderr: %s", code, errOut)
		}
	}

	code, out, _ := runTool(t, "ls", "-db", db, "units")
	if code != 0 || out != "elf\norc\n" {
		t.Fatalf("ls = %d, %q", code, out)
	}

	code, out, _ = runTool(t, "get", "-db", db, "units", "orc")
	if code != 0 || out != "[1, 2, 3]\n" {
		t.Fatalf("get = %d, %q", code, out)
	}

	code, _, errOut := runTool(t, "get", "-db", db, "units", "dwarf")
	if code != 1 || !strings.Contains(errOut, "not found") {
		t.Fatalf("get(missing) = %d, stderr: %s", code, errOut)
	}
}

func TestUsage(t *testing.T) {
	for _, args := range [][]string{
		nil,
		{"frobnicate"},
		{"dump"},
		{"ls", "units"},
		{"get", "-db", "x.db", "units"},
	} {
		if code, _, _ := runTool(t, args...); code != 2 {
			t.Errorf("%v: exit code = %d, wanted 2", args, code)
		}
	}
}
