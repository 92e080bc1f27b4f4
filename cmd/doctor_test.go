package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCheckSQLiteDBDoesNotCreateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tunegram.db")

	checkSQLiteDB(path)

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("health check created %s (stat err = %v), want it left absent", path, err)
	}
}
