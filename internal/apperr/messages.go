package apperr

import (
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	for _, m := range []struct{ key, de, en string }{
		{"login.invalid", "Mandant, Benutzer oder Passwort ungültig.", "Tenant, user or password invalid."},
		{"login.required", "Keine aktive Anmeldung.", "No active login."},
		{"password.invalid", "Das bisherige Passwort ist ungültig.", "The current password is invalid."},
		{"client.delete.current", "Der aktuelle Mandant kann nicht gelöscht werden.", "The current tenant cannot be deleted."},
		{"user.delete.self", "Der eigene Benutzer kann nicht gelöscht werden.", "The own user cannot be deleted."},
		{"user.permission.exceeds", "Die Berechtigung darf die eigene nicht übersteigen.", "The permission must not exceed the caller's."},
		{"replica.table.unknown", "Unbekannte Tabelle: %s", "Unknown table: %s"},
		{"replica.mode.invalid", "Ungültiger Modus: %s", "Invalid mode: %s"},
	} {
		message.SetString(language.German, m.key, m.de)
		message.SetString(language.English, m.key, m.en)
	}
}

var (
	langMu  sync.RWMutex
	printer = message.NewPrinter(language.German)
)

// SetLanguage switches the language user-facing messages render in.
func SetLanguage(tag language.Tag) {
	langMu.Lock()
	defer langMu.Unlock()
	printer = message.NewPrinter(tag)
}

// T renders a catalogued user-facing message in the active language.
func T(key message.Reference, args ...interface{}) string {
	langMu.RLock()
	defer langMu.RUnlock()
	return printer.Sprintf(key, args...)
}
