package page

import (
	"context"
	"strings"
	"testing"

	"github.com/dmorgan81/promptshot/internal/display"
	"github.com/dmorgan81/promptshot/internal/session"
)

func TestTemplate(t *testing.T) {
	tests := []struct {
		name    string
		snap    session.Snapshot
		want    []string
		notWant []string
	}{
		{
			name:    "Idle",
			snap:    session.Snapshot{Status: session.Idle},
			want:    []string{"<p>Generated image will appear here</p>", `data-status="idle"`},
			notWant: []string{`<div class="spinner"`, " disabled>"},
		},
		{
			name: "Loading",
			snap: session.Snapshot{Status: session.Loading, Prompt: "a red fox", Attempt: 2},
			want: []string{`<div class="spinner" title="attempt 2">`, `type="submit" disabled>Generating...`, `value="a red fox"`},
		},
		{
			name:    "Succeeded",
			snap:    session.Snapshot{Status: session.Succeeded, Prompt: "a red fox", Image: &display.Handle{ID: "abc"}},
			want:    []string{`<img src="/images/abc" alt="a red fox">`},
			notWant: []string{"<p>Generated image will appear here</p>"},
		},
		{
			name: "Failed",
			snap: session.Snapshot{Status: session.Failed, Error: "Please enter a prompt"},
			want: []string{`<div id="error">Please enter a prompt</div>`},
		},
		{
			name: "Escaped",
			snap: session.Snapshot{Status: session.Failed, Prompt: `"><script>`, Error: "<b>boom</b>"},
			want: []string{"&lt;b&gt;boom&lt;/b&gt;", `value="&#34;&gt;&lt;script&gt;"`},
		},
	}

	g := New("promptshot")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := g.Template(context.Background(), tt.snap)
			if err != nil {
				t.Fatalf("Template failed: %v", err)
			}
			html := string(b)
			for _, w := range tt.want {
				if !strings.Contains(html, w) {
					t.Errorf("page missing %q", w)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(html, w) {
					t.Errorf("page unexpectedly contains %q", w)
				}
			}
		})
	}
}
