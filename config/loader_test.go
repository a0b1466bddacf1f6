package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}

func TestLoadMergesMultipleFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "orders.yaml", `
cubes:
  - name: orders
    table: orders
    dimensions:
      - name: id
        sql: "${table}.id"
        primary_key: true
`)
	writeFile(t, dir, "customers.yaml", `
cubes:
  - name: customers
    table: customers
    dimensions:
      - name: id
        sql: "${table}.id"
        primary_key: true
joins:
  - left: orders
    right: customers
    type: inner
    on_sql: "${left}.customer_id = ${right}.id"
`)
	writeFile(t, dir, "notes.txt", "ignore me")

	cat, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cat.Cubes) != 2 {
		t.Fatalf("got %d cubes, want 2", len(cat.Cubes))
	}
	if len(cat.Joins) != 1 {
		t.Fatalf("got %d joins, want 1", len(cat.Joins))
	}
}

func TestLoadEmptyDirectoryErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(dir); err == nil {
		t.Fatal("expected an error for an empty directory")
	}
}

func TestLoadMissingDirectoryErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected an error for a missing directory")
	}
}
