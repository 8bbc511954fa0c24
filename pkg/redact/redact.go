// redact маскирует чувствительные значения перед записью в логи.
package redact

import "strings"

// Email оставляет домен и первые два символа локальной части:
// достаточно для корреляции записей, мало для восстановления адреса.
// Всё, что на адрес не похоже, сворачивается в "***".
func Email(s string) string {
	local, domain, ok := strings.Cut(s, "@")
	if !ok || strings.Contains(domain, "@") {
		return "***"
	}

	if len(local) <= 2 {
		return "***@" + domain
	}

	return local[:2] + "***@" + domain
}

// Token и Password не показывают даже фрагмент значения.
func Token() string { return "[REDACTED_TOKEN]" }

func Password() string { return "[REDACTED_PASSWORD]" }
