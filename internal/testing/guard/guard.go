package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("ADVOTECATE_TEST_MODE") == "" {
			_ = os.Setenv("ADVOTECATE_TEST_MODE", "1")
		}
	})
}
