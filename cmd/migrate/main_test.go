package main

import (
	"strings"
	"testing"
)

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		filename string
		valid    bool
		version  int
		name     string
	}{
		{"0001_create_transactions.sql", true, 1, "create_transactions"},
		{"0042_add_top_category.sql", true, 42, "add_top_category"},
		{"001_invalid.sql", false, 0, ""},        // wrong number format
		{"0001_test", false, 0, ""},              // missing .sql
		{"0001.sql", false, 0, ""},               // missing name
		{"invalid_0001_test.sql", false, 0, ""},  // wrong order
		{"0001_name.sql.bak", false, 0, ""},      // wrong extension
		{"README.md", false, 0, ""},              // not a migration
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			version, name, ok := parseMigrationFilename(tt.filename)

			if ok != tt.valid {
				t.Fatalf("parseMigrationFilename(%q) ok = %v, want %v", tt.filename, ok, tt.valid)
			}

			if version != tt.version {
				t.Errorf("version = %d, want %d", version, tt.version)
			}

			if name != tt.name {
				t.Errorf("name = %q, want %q", name, tt.name)
			}
		})
	}
}

func TestChecksumOf(t *testing.T) {
	content := []byte("CREATE TABLE test (id INT64);")
	same := []byte("CREATE TABLE test (id INT64);")
	different := []byte("CREATE TABLE different (id INT64);")

	if checksumOf(content) != checksumOf(same) {
		t.Error("identical content should produce identical checksums")
	}

	if checksumOf(content) == checksumOf(different) {
		t.Error("different content should produce different checksums")
	}

	// SHA-256 rendered as hex is always 64 characters
	if got := checksumOf(content); len(got) != 64 {
		t.Errorf("checksum length = %d, want 64", len(got))
	}
}

func TestSubstitutePlaceholders(t *testing.T) {
	sql := "CREATE TABLE `{{PROJECT_ID}}.{{DATASET_ID}}.transactions` (id STRING);" +
		" -- {{PROJECT_ID}} again"

	got := substitutePlaceholders(sql, "my-project", "budget_insight")

	if strings.Contains(got, "{{PROJECT_ID}}") || strings.Contains(got, "{{DATASET_ID}}") {
		t.Fatalf("placeholders left unsubstituted: %s", got)
	}

	if !strings.Contains(got, "`my-project.budget_insight.transactions`") {
		t.Errorf("substituted SQL = %s, want table reference with project and dataset", got)
	}
}

func TestSubstitutePlaceholdersLeavesPlainSQLAlone(t *testing.T) {
	sql := "SELECT 1"

	if got := substitutePlaceholders(sql, "p", "d"); got != sql {
		t.Errorf("substitutePlaceholders changed SQL without placeholders: %q", got)
	}
}
