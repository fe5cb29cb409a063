package version

import "fmt"

// Заполняются при сборке через -ldflags.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Version возвращает номер сборки сервиса.
func Version() string { return version }

// String возвращает полную строку версии для логов и health-ответа.
func String() string {
	return fmt.Sprintf("%s (commit=%s date=%s)", version, commit, date)
}
