package stringsimilarity

import (
	"sync/atomic"

	"github.com/baditaflorin/go_string_similarity/internal/adapters/logger"
	"github.com/baditaflorin/go_string_similarity/internal/ports"
	"github.com/baditaflorin/l"
)

var pkgLogger atomic.Pointer[ports.Logger]

// SetLogger routes the package's warnings to lg. Passing nil restores the silent default.
func SetLogger(lg l.Logger) {
	if lg == nil {
		pkgLogger.Store(nil)
		return
	}
	wrapped := logger.FromExisting(lg)
	pkgLogger.Store(&wrapped)
}

func defaultLogger() ports.Logger {
	if lg := pkgLogger.Load(); lg != nil {
		return *lg
	}
	return logger.NewNopLogger()
}
