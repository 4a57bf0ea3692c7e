package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestInit_OnlyFirstCallWins(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var first, second bytes.Buffer
	Init(Options{Level: "debug", Output: &first, Service: "storefront"})
	Init(Options{Level: "error", Output: &second})

	l := Component("cart")
	l.Debug().Msg("hello")
	out := first.String()
	if !strings.Contains(out, `"component":"cart"`) || !strings.Contains(out, `"service":"storefront"`) {
		t.Errorf("log = %s", out)
	}
	if second.Len() != 0 {
		t.Error("second Init must be ignored")
	}
}

func TestGet_PanicsBeforeInit(t *testing.T) {
	Reset()
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	Get()
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace": zerolog.TraceLevel, " DEBUG ": zerolog.DebugLevel, "warning": zerolog.WarnLevel,
		"error": zerolog.ErrorLevel, "": zerolog.InfoLevel, "bogus": zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
