package common

import (
	"github.com/logrusorgru/aurora"
)

func AlertColor(str string) string {
	return aurora.Red(str).String()
}

func InfoColor(str string) string {
	return aurora.Green(str).String()
}

func NoteColor(str string) string {
	return aurora.Yellow(str).String()
}

// NameWithColor highlights a resolved display name in green and an
// unresolved one in red.
func NameWithColor(name string, resolved bool) string {
	if !resolved {
		return AlertColor(name)
	}
	return InfoColor(name)
}
