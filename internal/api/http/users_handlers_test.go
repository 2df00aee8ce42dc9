package http

import (
	"strings"
	"testing"
)

func TestParseRosterCSV(t *testing.T) {
	in := "id,username,role,password\n" +
		"u1,ada,student,pw1\n" +
		"u2,grace,Teacher,\n"
	rows, err := parseRosterCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parseRosterCSV: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[0].ID != "u1" || rows[0].Username != "ada" || rows[0].Password != "pw1" {
		t.Fatalf("row 0 = %+v", rows[0])
	}
	if rows[1].Role != "teacher" {
		t.Fatalf("role not lowercased: %q", rows[1].Role)
	}
}

func TestParseRosterCSVHeaderOnly(t *testing.T) {
	rows, err := parseRosterCSV(strings.NewReader("id,username,role\n"))
	if err != nil {
		t.Fatalf("parseRosterCSV: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("rows = %d", len(rows))
	}
}

func TestParseRosterCSVMissingColumn(t *testing.T) {
	_, err := parseRosterCSV(strings.NewReader("id,username\nu1,ada\n"))
	if err == nil || !strings.Contains(err.Error(), "missing column") {
		t.Fatalf("want missing-column error, got %v", err)
	}
}
