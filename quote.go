package svcspec

import "strings"

// ShellQuote wraps s in single quotes for a POSIX shell. Embedded single
// quotes become '\'' so the result always reads back as exactly s.
func ShellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// quoteIfNeeded quotes s only when it contains characters the shell would
// interpret, leaving plain paths readable
func quoteIfNeeded(s string) string {
	if s == "" {
		return "''"
	}

	if !needsShellQuoting(s) {
		return s
	}

	return ShellQuote(s)
}

// needsShellQuoting checks if a string contains characters that require shell quoting
func needsShellQuoting(s string) bool {
	// Characters that require quoting in shell
	const specialChars = " \t\n'\"\\$`!*?[](){}<>|&;~#="

	for _, r := range s {
		if strings.ContainsRune(specialChars, r) {
			return true
		}
	}
	return false
}
