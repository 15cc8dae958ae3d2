package cli

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
)

func TestRootCommand(t *testing.T) {
	c := New(io.Discard, log.InfoLevel)
	root := c.RootCommand()

	if root.Use != appName {
		t.Errorf("Use = %q, want %q", root.Use, appName)
	}

	want := map[string]bool{
		"convert":    false,
		"inspect":    false,
		"hierarchy":  false,
		"serve":      false,
		"cache":      false,
		"completion": false,
	}
	for _, cmd := range root.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestSetLogLevel(t *testing.T) {
	c := New(io.Discard, log.InfoLevel)
	c.SetLogLevel(log.DebugLevel)

	if got := c.Logger.GetLevel(); got != log.DebugLevel {
		t.Errorf("level = %v, want debug", got)
	}
}

func TestConvertFlags(t *testing.T) {
	c := New(io.Discard, log.InfoLevel)
	cmd := c.convertCommand()

	for _, name := range []string{"output", "top-cell", "name-property", "length-unit", "strict", "force", "no-cache", "config"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("convert is missing the --%s flag", name)
		}
	}
}
