package auth

import (
	"fmt"
	"strings"
	"time"
)

// LoginIDPrefix starts every generated login id.
const LoginIDPrefix = "OI"

// GenerateLoginID builds OI + two letters of each name + joining year + serial.
// Short names are padded with X and the serial has at least two digits.
func GenerateLoginID(firstName, lastName string, joinedAt time.Time, serial int) string {
	return fmt.Sprintf("%s%s%s%04d%02d",
		LoginIDPrefix,
		namePart(firstName),
		namePart(lastName),
		joinedAt.Year(),
		serial,
	)
}

func namePart(name string) string {
	letters := []rune(strings.ToUpper(strings.TrimSpace(name)))
	if len(letters) > 2 {
		letters = letters[:2]
	}
	for len(letters) < 2 {
		letters = append(letters, 'X')
	}
	return string(letters)
}
