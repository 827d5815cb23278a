package util

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

func init() {
	RegisterSortedConcatenate("test_sortconcat", ",", 0)
	RegisterSortedConcatenate("test_sortconcat_three", ", ", 3)
}

func TestCustomFunction(t *testing.T) {
	withDB := func(test func(db *sql.DB)) {
		db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "custom.db"))
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()
		if _, err := db.Exec("CREATE TABLE test (id INTEGER, value TEXT); INSERT INTO test VALUES (1, '一'), (3, '二'), (2, '三'), (4, 'four')"); err != nil {
			t.Fatalf("Error: %v", err)
		}
		test(db)
	}

	t.Run("Test SortedConcatenate", func(tt *testing.T) {
		withDB(func(db *sql.DB) {
			var result string
			if err := db.QueryRow("SELECT test_sortconcat(id, value) FROM test").Scan(&result); err != nil {
				tt.Fatalf("Error: %v", err)
			}
			if result != "一,三,二,four" {
				tt.Errorf("Expected: %s, got: %s", "一,三,二,four", result)
			}
		})
	})

	t.Run("Test SortedConcatenate limit", func(tt *testing.T) {
		withDB(func(db *sql.DB) {
			var result string
			if err := db.QueryRow("SELECT test_sortconcat_three(id, value) FROM test").Scan(&result); err != nil {
				tt.Fatalf("Error: %v", err)
			}
			if result != "一, 三, 二" {
				tt.Errorf("Expected: %s, got: %s", "一, 三, 二", result)
			}
		})
	})

	t.Run("Test SortedConcatenate null rows", func(tt *testing.T) {
		withDB(func(db *sql.DB) {
			var result string
			if err := db.QueryRow("SELECT test_sortconcat(NULL, NULL)").Scan(&result); err != nil {
				tt.Fatalf("Error: %v", err)
			}
			if result != "" {
				tt.Errorf("Expected empty string, got: %s", result)
			}
		})
	})
}
