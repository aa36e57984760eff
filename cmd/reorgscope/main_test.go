package main

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append(args, "--log-level=error"))
	err := root.Execute()
	return out.String(), err
}

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bsc.log")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

func TestRootEmptyLogPrintsHeadersOnly(t *testing.T) {
	out, err := runCLI(t, writeLog(t, ""))
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	want := "\nAggregated Validators Responsible for Reorgs:\n\n" +
		"Validator Address" + strings.Repeat(" ", 30) + "Number of Reorgs Block Numbers\n" +
		strings.Repeat("-", 90) + "\n"
	if out != want {
		t.Fatalf("output mismatch:\n%q\n%q", out, want)
	}
}

func TestAnalyzeCommand(t *testing.T) {
	path := writeLog(t, strings.Join([]string{
		`t=2024-05-01T10:00:00+0000 lvl=info msg="Imported new chain segment" number=100 hash=0xAA miner=0xM1`,
		`t=2024-05-01T10:00:01+0000 lvl=info msg="Chain reorg detected" number=101 hash=0xBB drop=1 dropfrom=0xAA add=1 addfrom=0xAA`,
	}, "\n"))

	out, err := runCLI(t, "analyze", path)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.HasPrefix(out, "Reorg detected at block number 101:\n") {
		t.Fatalf("missing detail block:\n%s", out)
	}
	if !strings.Contains(out, "  Validator responsible for reorg: 0xM1\n") {
		t.Fatalf("missing responsible validator:\n%s", out)
	}
}

func TestMissingLogFails(t *testing.T) {
	out, err := runCLI(t, filepath.Join(t.TempDir(), "missing.log"))
	if err == nil {
		t.Fatalf("expected error for missing log")
	}
	if out != "" {
		t.Fatalf("expected no partial output, got %q", out)
	}
}

func TestExportCommand(t *testing.T) {
	path := writeLog(t, `lvl=info msg="Chain reorg detected" number=7 hash=0x01 drop=1 dropfrom=0x02 add=1 addfrom=0x03`)
	dir := t.TempDir()
	out := filepath.Join(dir, "reorgs.jsonl")
	summaryOut := filepath.Join(dir, "validators.jsonl")

	if _, err := runCLI(t, "export", path, "--out", out, "--summary-out", summaryOut); err != nil {
		t.Fatalf("execute: %v", err)
	}

	f, err := os.Open(summaryOut)
	if err != nil {
		t.Fatalf("open summary: %v", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		t.Fatalf("expected a summary line")
	}
	if got := scanner.Text(); got != `{"validator":"Unknown","count":1,"block_numbers":[7]}` {
		t.Fatalf("summary mismatch: %s", got)
	}
}

func TestPersistRequiresDSN(t *testing.T) {
	if _, err := runCLI(t, "persist", writeLog(t, "")); err == nil {
		t.Fatalf("expected error without pg dsn")
	}
}
