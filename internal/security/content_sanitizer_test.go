package security

import (
	"strings"
	"testing"
)

// TestSanitize_StripsTags はHTMLタグが除去されテキストが残ることを検証する。
func TestSanitize_StripsTags(t *testing.T) {
	sanitizer := NewTextSanitizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "プレーンテキストはそのまま",
			input: "Hello, developers!",
			want:  "Hello, developers!",
		},
		{
			name:  "書式タグは除去しテキストを残す",
			input: "<p>Go is <strong>great</strong></p>",
			want:  "Go is great",
		},
		{
			name:  "リンクはテキストのみ残る",
			input: `<a href="https://example.com">my repo</a>`,
			want:  "my repo",
		},
		{
			name:  "空文字列",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizer.Sanitize(tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestSanitize_KeepsSymbols は記号がエンティティ化されずに残ることを検証する。
func TestSanitize_KeepsSymbols(t *testing.T) {
	sanitizer := NewTextSanitizer()

	inputs := []string{
		"don't panic",
		"R&D team",
		"1 < 2 and 3 > 2",
		`say "hi"`,
		"日本語のコメント",
	}
	for _, input := range inputs {
		if got := sanitizer.Sanitize(input); got != input {
			t.Errorf("Sanitize(%q) = %q, want unchanged", input, got)
		}
	}
}

// TestSanitize_ForbiddenContent はスクリプトやイベント属性が除去されることを検証する。
func TestSanitize_ForbiddenContent(t *testing.T) {
	sanitizer := NewTextSanitizer()

	tests := []struct {
		name       string
		input      string
		wantAbsent []string
	}{
		{
			name:       "scriptタグは中身ごと除去",
			input:      `hello<script>alert('xss')</script>`,
			wantAbsent: []string{"<script", "alert"},
		},
		{
			name:       "イベント属性",
			input:      `<img src="x" onerror="alert(1)">`,
			wantAbsent: []string{"<img", "onerror"},
		},
		{
			name:       "エンティティでエスケープされたタグ",
			input:      `&lt;script&gt;alert(1)&lt;/script&gt;`,
			wantAbsent: []string{"<script", "</script>"},
		},
		{
			name:       "iframe",
			input:      `<iframe src="https://evil.example.com"></iframe>text`,
			wantAbsent: []string{"<iframe", "evil.example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizer.Sanitize(tt.input)
			for _, absent := range tt.wantAbsent {
				if strings.Contains(got, absent) {
					t.Errorf("Sanitize(%q) = %q, should NOT contain %q", tt.input, got, absent)
				}
			}
		})
	}
}

// TestSanitize_Idempotent は同一入力に対して同一出力を返し、再適用しても変わらないことを検証する。
func TestSanitize_Idempotent(t *testing.T) {
	sanitizer := NewTextSanitizer()
	input := `<b>bold</b> & <i>italic</i> <script>x()</script>`

	first := sanitizer.Sanitize(input)
	second := sanitizer.Sanitize(first)
	if first != second {
		t.Errorf("Sanitize is not idempotent: %q -> %q", first, second)
	}
}

func TestTextSanitizerInterface(t *testing.T) {
	var _ TextSanitizer = NewTextSanitizer()
}

// TestSanitize_NestedEscapedTags はエンティティで多重にエスケープされたタグが
// 復元されず、結果が冪等であることを検証する。
func TestSanitize_NestedEscapedTags(t *testing.T) {
	nest := func(s string, depth int) string {
		for i := 0; i < depth; i++ {
			s = strings.ReplaceAll(s, "&", "&amp;")
		}
		return s
	}
	base := "&lt;script&gt;alert(1)&lt;/script&gt;"

	tests := []struct {
		name  string
		depth int
	}{
		{name: "4段のエスケープ", depth: 3},
		{name: "上限内の多段エスケープ", depth: 6},
		{name: "上限を超える多段エスケープ", depth: 20},
	}

	sanitizer := NewTextSanitizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := nest(base, tt.depth)

			got := sanitizer.Sanitize(input)
			if strings.ContainsAny(got, "<>") {
				t.Errorf("Sanitize(%q) = %q, should not contain markup", input, got)
			}
			if again := sanitizer.Sanitize(got); again != got {
				t.Errorf("Sanitize is not idempotent: %q -> %q", got, again)
			}
		})
	}
}
