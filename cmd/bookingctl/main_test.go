package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRootCmd_Commands(t *testing.T) {
	root := newRootCmd()

	for _, name := range []string{"complete", "token"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("command %q not registered: %v", name, err)
		}
	}
}

func TestTokenCmd_RequiresUser(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"token"})

	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "user") {
		t.Fatalf("Execute() = %v, want missing --user error", err)
	}
}
