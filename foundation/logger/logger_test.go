package logger_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ardanlabs/powcontest/foundation/logger"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestNewRotating(t *testing.T) {
	t.Log("Given the need to write logs to a rotated file.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen logging a message.", testID)
		{
			path := filepath.Join(t.TempDir(), "coord.log")

			log, err := logger.NewRotating("TEST", logger.Rotation{File: path, MaxSizeMB: 1})
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to construct a logger: %s", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to construct a logger.", success, testID)

			log.Infow("startup", "status", "testing")
			log.Sync()

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to read the log file: %s", failed, testID, err)
			}

			s := string(data)
			if !strings.Contains(s, `"service":"TEST"`) || !strings.Contains(s, `"status":"testing"`) {
				t.Fatalf("\t%s\tTest %d:\tShould find the log entry in the file, got %s.", failed, testID, s)
			}
			t.Logf("\t%s\tTest %d:\tShould find the log entry in the file.", success, testID)
		}
	}
}
