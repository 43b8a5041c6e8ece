package internal

import (
	"bytes"
	"log"
	"os"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"ERROR":   LogLevelError,
		"warn":    LogLevelWarn,
		" debug ": LogLevelDebug,
		"":        LogLevelInfo,
		"verbose": LogLevelInfo,
	}
	for in, want := range cases {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	flags := log.Flags()
	log.SetFlags(0)
	defer func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(flags)
	}()

	l := NewLogger(LogLevelWarn).With("Loader")
	l.Info("hidden")
	l.Warn("slow fetch %d", 3)

	if got := buf.String(); got != "[WARN] [Loader] slow fetch 3\n" {
		t.Errorf("unexpected output %q", got)
	}
}
