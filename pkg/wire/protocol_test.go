package wire

import (
	"testing"
	"time"
)

func TestNewCommandCarriesBody(t *testing.T) {
	cmd, err := NewCommand(CmdLinkOpen, LinkOpenBody{Link: "chime://play/track?title=Uprising"})
	if err != nil {
		t.Fatalf("new command: %v", err)
	}
	if cmd.Type != CmdLinkOpen || len(cmd.Body) == 0 {
		t.Fatalf("unexpected command %+v", cmd)
	}
}

func TestValidateCommandEnvelope(t *testing.T) {
	valid := CommandEnvelope{
		ID:   "c1",
		Type: CmdLinkOpen,
		TS:   time.Now().Unix(),
		From: "cli",
		Body: []byte(`{}`),
	}
	if err := ValidateCommandEnvelope(valid); err != nil {
		t.Fatalf("valid envelope rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*CommandEnvelope)
	}{
		{"missing id", func(c *CommandEnvelope) { c.ID = "" }},
		{"missing type", func(c *CommandEnvelope) { c.Type = "" }},
		{"missing ts", func(c *CommandEnvelope) { c.TS = 0 }},
		{"missing from", func(c *CommandEnvelope) { c.From = "" }},
		{"missing body", func(c *CommandEnvelope) { c.Body = nil }},
	}
	for _, tc := range cases {
		cmd := valid
		tc.mutate(&cmd)
		if err := ValidateCommandEnvelope(cmd); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestTopicLayout(t *testing.T) {
	if got := TopicCommands(BaseTopic, "desktop"); got != "chime/v1/node/desktop/cmd" {
		t.Fatalf("commands topic = %q", got)
	}
	if got := TopicReply(BaseTopic, "cli-1"); got != "chime/v1/reply/cli-1" {
		t.Fatalf("reply topic = %q", got)
	}
}
