// Package winargs builds Windows command-line strings from argument
// vectors, following the CommandLineToArgvW quoting rules.
//
// The elevated re-launch hands the full original request to the child as a
// single parameter string, so round-tripping argv through this package must
// be lossless.
package winargs

import "strings"

// Quote returns arg quoted so CommandLineToArgvW parses it back verbatim.
//
// Rules:
//   - Args without whitespace, quotes or trailing backslashes pass through
//   - Otherwise the arg is wrapped in double quotes
//   - Backslash runs before a quote (or the closing quote) are doubled
//   - Embedded quotes are escaped with a backslash
func Quote(arg string) string {
	if arg != "" && !strings.ContainsAny(arg, " \t\n\v\"") && !strings.HasSuffix(arg, `\`) {
		return arg
	}

	var b strings.Builder
	b.WriteByte('"')
	slashes := 0
	for i := 0; i < len(arg); i++ {
		ch := arg[i]
		switch ch {
		case '\\':
			slashes++
			b.WriteByte(ch)
		case '"':
			// Double the preceding backslashes, then escape the quote.
			for ; slashes > 0; slashes-- {
				b.WriteByte('\\')
			}
			b.WriteString(`\"`)
		default:
			slashes = 0
			b.WriteByte(ch)
		}
	}
	// Backslashes before the closing quote must be doubled too.
	for ; slashes > 0; slashes-- {
		b.WriteByte('\\')
	}
	b.WriteByte('"')
	return b.String()
}

// Join quotes each argument and joins them with single spaces.
func Join(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = Quote(a)
	}
	return strings.Join(quoted, " ")
}
