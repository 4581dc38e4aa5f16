package winargs

import (
	"testing"

	"github.com/hashicorp/go-hclog"
)

// TestQuote tests CommandLineToArgvW-compatible quoting
func TestQuote(t *testing.T) {
	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "winargs_test",
		Level: hclog.Trace,
	})

	testCases := []struct {
		name     string
		arg      string
		expected string
	}{
		{"plain", "iconify", "iconify"},
		{"flag", "--emoji", "--emoji"},
		{"empty", "", `""`},
		{"embedded space", "C:\\Program Files\\icons", `"C:\Program Files\icons"`},
		{"tab", "a\tb", "\"a\tb\""},
		{"embedded quote", `say "hi"`, `"say \"hi\""`},
		{"backslash before quote doubles", `dir\"x`, `"dir\\\"x"`},
		{"trailing backslash", `C:\icons\`, `"C:\icons\\"`},
		{"two trailing backslashes", `C:\icons\\`, `"C:\icons\\\\"`},
		{"interior backslashes untouched", `C:\a\b\c`, `C:\a\b\c`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			logger.Info("🧪 Quoting argument", "arg", tc.arg)

			got := Quote(tc.arg)
			if got != tc.expected {
				t.Errorf("Quote(%q) = %s, want %s", tc.arg, got, tc.expected)
			}

			logger.Debug("✅ Quoted", "result", got)
		})
	}
}

// TestJoin tests argv serialization for the elevated relaunch
func TestJoin(t *testing.T) {
	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "winargs_test",
		Level: hclog.Trace,
	})

	testCases := []struct {
		name     string
		args     []string
		expected string
	}{
		{
			name:     "typical relaunch",
			args:     []string{"--emoji", "fox", "--apply", `D:\`},
			expected: `--emoji fox --apply "D:\\"`,
		},
		{
			name:     "path with spaces",
			args:     []string{"--apply", `C:\My Folder`},
			expected: `--apply "C:\My Folder"`,
		},
		{
			name:     "empty argument preserved",
			args:     []string{"--name", ""},
			expected: `--name ""`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			logger.Info("🧪 Joining argv", "args", tc.args)

			got := Join(tc.args)
			if got != tc.expected {
				t.Errorf("Join(%v) = %s, want %s", tc.args, got, tc.expected)
			}

			logger.Debug("✅ Joined", "result", got)
		})
	}
}
