package goroutine

import (
	"runtime/debug"

	"github.com/bountyhub/bountyhub-backend/internal/logger"
)

// SafeGo запускает горутину и переживает panic внутри неё. Используется
// для фоновой доставки уведомлений и пампов вебсокета, где падение одной
// горутины не должно ронять процесс.
func SafeGo(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				if logger.Log != nil {
					logger.Log.WithField("stack", string(debug.Stack())).
						Errorf("goroutine: перехвачен panic: %v", r)
				}
			}
		}()
		fn()
	}()
}
