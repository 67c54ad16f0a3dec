// Package notify renders user-facing messages for errors and keeps the
// selected interface language.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/maintkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/maintkeeper/internal/common"
)

type Language string

const (
	English Language = "en"
	Slovak  Language = "sk"
	German  Language = "de"

	DefaultLanguage = English
)

func (l Language) Valid() bool {
	return l == English || l == Slovak || l == German
}

type messageKey int

const (
	msgSessionExpired messageKey = iota
	msgAuthRequired
	msgInvalidCredentials
	msgSKUExists
	msgConflict
	msgNotFound
	msgValidation
	msgUnavailable
	msgRemoteFailed
	msgSecondaryWrite
	msgGeneric
)

var messages = map[Language]map[messageKey]string{
	English: {
		msgSessionExpired:     "Your session has expired. Please sign in again.",
		msgAuthRequired:       "Please sign in to continue.",
		msgInvalidCredentials: "Invalid email or password.",
		msgSKUExists:          "A spare part with this SKU already exists.",
		msgConflict:           "The record conflicts with existing data.",
		msgNotFound:           "The record was not found.",
		msgValidation:         "Please check the entered values.",
		msgUnavailable:        "The server is unreachable. Showing locally stored data.",
		msgRemoteFailed:       "The server rejected the request.",
		msgSecondaryWrite:     "The change was saved, but a follow-up update failed.",
		msgGeneric:            "Something went wrong.",
	},
	Slovak: {
		msgSessionExpired:     "Vaša relácia vypršala. Prihláste sa znova.",
		msgAuthRequired:       "Pre pokračovanie sa prihláste.",
		msgInvalidCredentials: "Nesprávny email alebo heslo.",
		msgSKUExists:          "Náhradný diel s týmto SKU už existuje.",
		msgConflict:           "Záznam je v konflikte s existujúcimi údajmi.",
		msgNotFound:           "Záznam sa nenašiel.",
		msgValidation:         "Skontrolujte zadané hodnoty.",
		msgUnavailable:        "Server je nedostupný. Zobrazujú sa lokálne uložené údaje.",
		msgRemoteFailed:       "Server požiadavku odmietol.",
		msgSecondaryWrite:     "Zmena bola uložená, ale následná aktualizácia zlyhala.",
		msgGeneric:            "Niečo sa pokazilo.",
	},
	German: {
		msgSessionExpired:     "Ihre Sitzung ist abgelaufen. Bitte melden Sie sich erneut an.",
		msgAuthRequired:       "Bitte melden Sie sich an, um fortzufahren.",
		msgInvalidCredentials: "Ungültige E-Mail oder ungültiges Passwort.",
		msgSKUExists:          "Ein Ersatzteil mit dieser SKU existiert bereits.",
		msgConflict:           "Der Datensatz steht im Konflikt mit vorhandenen Daten.",
		msgNotFound:           "Der Datensatz wurde nicht gefunden.",
		msgValidation:         "Bitte prüfen Sie die eingegebenen Werte.",
		msgUnavailable:        "Der Server ist nicht erreichbar. Es werden lokal gespeicherte Daten angezeigt.",
		msgRemoteFailed:       "Der Server hat die Anfrage abgelehnt.",
		msgSecondaryWrite:     "Die Änderung wurde gespeichert, eine Folgeaktualisierung ist fehlgeschlagen.",
		msgGeneric:            "Etwas ist schiefgelaufen.",
	},
}

// classify maps err to a message. Order matters: specific sentinels wrap
// more general ones.
func classify(err error) messageKey {
	switch {
	case errors.Is(err, common.ErrSessionExpired):
		return msgSessionExpired
	case errors.Is(err, common.ErrInvalidCredentials):
		return msgInvalidCredentials
	case errors.Is(err, common.ErrAuthenticationRequired):
		return msgAuthRequired
	case errors.Is(err, common.ErrSKUExists):
		return msgSKUExists
	case errors.Is(err, common.ErrConflict):
		return msgConflict
	case errors.Is(err, common.ErrNotFound):
		return msgNotFound
	case errors.Is(err, common.ErrValidation):
		return msgValidation
	case errors.Is(err, common.ErrSecondaryWriteFailed):
		return msgSecondaryWrite
	case errors.Is(err, common.ErrUnavailable):
		return msgUnavailable
	case errors.Is(err, common.ErrRemoteRequestFailed):
		return msgRemoteFailed
	default:
		return msgGeneric
	}
}

// Message returns the text shown for err in lang, or "" for a nil error.
// Unknown languages use DefaultLanguage.
func Message(lang Language, err error) string {
	if err == nil {
		return ""
	}
	table, ok := messages[lang]
	if !ok {
		table = messages[DefaultLanguage]
	}
	return table[classify(err)]
}

// Preferences persists the interface language.
type Preferences struct {
	repo metadata.Repository
}

func NewPreferences(repo metadata.Repository) *Preferences {
	return &Preferences{repo: repo}
}

// Language returns the persisted language, DefaultLanguage when none or an
// unknown one is stored.
func (p *Preferences) Language(ctx context.Context) (Language, error) {
	raw, err := p.repo.Get(ctx, common.MetadataKeyLanguage)
	if err != nil {
		return DefaultLanguage, err
	}
	if l := Language(raw); l.Valid() {
		return l, nil
	}
	return DefaultLanguage, nil
}

func (p *Preferences) SetLanguage(ctx context.Context, l Language) error {
	if !l.Valid() {
		return fmt.Errorf("%w: unsupported language %q", common.ErrValidation, l)
	}
	return p.repo.Set(ctx, common.MetadataKeyLanguage, []byte(l))
}
