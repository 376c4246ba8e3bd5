package persona

import "regexp"

// Chat platforms tend to reserve a handful of system names; relaying a run
// under one of them gets the message rejected. A hair space keeps the name
// visually identical while avoiding the literal match.
var reservedName = regexp.MustCompile(`(?i)(cly)(de)`)

// SafeName mangles reserved system names with a hair space.
func SafeName(name string) string {
	return reservedName.ReplaceAllString(name, "$1 $2")
}

// AlternateName returns a visually identical name that never collides with
// the original, used when the same display name must appear twice.
func AlternateName(name string) string {
	runes := []rune(SafeName(name))
	if len(runes) < 2 {
		return string(runes)
	}
	return string(runes[:1]) + " " + string(runes[1:])
}
