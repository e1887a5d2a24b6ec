package player

import "strings"

// ParseArgs splits a string of extra player arguments on whitespace,
// keeping quoted sections together.  A quoted section must close with the
// same quote character it opened with.
func ParseArgs(argsString string) []string {
	var args []string
	var current strings.Builder
	var quote rune

	for _, r := range argsString {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
		case r == ' ' || r == '\t':
			if current.Len() > 0 {
				args = append(args, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}

	if current.Len() > 0 {
		args = append(args, current.String())
	}

	return args
}
