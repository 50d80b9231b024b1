package a2a

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractUserText(t *testing.T) {
	history := []map[string]any{
		{"kind": "text", "text": "<p>Earlier answer</p>"},
		{"kind": "text", "text": "<p>CFOs at retailers</p>"},
		{"kind": "text", "text": " "},
	}

	tests := []struct {
		name string
		msg  A2AMessage
		want string
	}{
		{
			name: "text parts only",
			msg:  A2AMessage{Parts: []MessagePart{TextPart("CFOs"), TextPart(" at retailers ")}},
			want: "CFOs at retailers",
		},
		{
			name: "text part wins over history",
			msg:  A2AMessage{Parts: []MessagePart{TextPart("CFOs at retailers"), DataPart(history)}},
			want: "CFOs at retailers",
		},
		{
			name: "history when no text part",
			msg:  A2AMessage{Parts: []MessagePart{DataPart(history)}},
			want: "CFOs at retailers",
		},
		{
			name: "blank text falls back to history",
			msg:  A2AMessage{Parts: []MessagePart{TextPart("  "), DataPart(history)}},
			want: "CFOs at retailers",
		},
		{
			name: "nothing usable",
			msg:  A2AMessage{Parts: []MessagePart{DataPart("not a list")}},
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractUserText(tt.msg))
		})
	}
}
