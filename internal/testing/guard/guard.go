// Package guard switches the process into test mode when imported, so entry
// points skip runtime side effects.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("INTERPORT_TEST_MODE") == "" {
			_ = os.Setenv("INTERPORT_TEST_MODE", "1")
		}
	})
}
