package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("GEEPOS_TEST_MODE") == "" {
			_ = os.Setenv("GEEPOS_TEST_MODE", "1")
		}
	})
}
