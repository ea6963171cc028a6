package open

import (
	"reflect"
	"testing"
)

func TestEditorArgs(t *testing.T) {
	tests := []struct {
		editor string
		want   []string
	}{
		{"nvim", []string{"nvim", "+12", "chat.txt"}},
		{"/usr/bin/vim", []string{"/usr/bin/vim", "+12", "chat.txt"}},
		{"less", []string{"less", "+12", "chat.txt"}},
		{"code --wait", []string{"code", "--wait", "--goto", "chat.txt:12"}},
		{"subl", []string{"subl", "chat.txt:12"}},
		{"emacsclient -t", []string{"emacsclient", "-t", "+12", "chat.txt"}},
		{"gedit", []string{"gedit", "chat.txt"}},
		{"", []string{"less", "+12", "chat.txt"}},
	}
	for _, tt := range tests {
		if got := editorArgs(tt.editor, "chat.txt", 12); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("editorArgs(%q) = %q, want %q", tt.editor, got, tt.want)
		}
	}
}
