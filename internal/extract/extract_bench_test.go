package extract

import (
	"strings"
	"testing"
)

// Benchmark FromHTML and Fallback on representative HTML sizes and structures.
func BenchmarkFromHTML(b *testing.B) {
	small := []byte("<html><head><title>t</title></head><body><main><p>a</p></main></body></html>")
	medium := makeHTML(50, 60)
	large := makeHTML(200, 200)

	for _, tc := range []struct {
		name string
		doc  []byte
	}{{"small", small}, {"medium", medium}, {"large", large}} {
		b.Run(tc.name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_ = FromHTML(tc.doc, "https://example.com/article")
			}
		})
		b.Run(tc.name+"/fallback", func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_ = Fallback(tc.doc)
			}
		})
	}
}

func makeHTML(paras int, itemsPerList int) []byte {
	builder := new(strings.Builder)
	builder.WriteString("<html><head><title>demo</title><script>var x = 1;</script></head><body><nav>menu</nav><article>")
	for i := 0; i < paras; i++ {
		builder.WriteString("<h2>Heading</h2><p>")
		builder.WriteString(sampleText)
		builder.WriteString("</p>")
	}
	builder.WriteString("<ul>")
	for i := 0; i < itemsPerList; i++ {
		builder.WriteString("<li>")
		builder.WriteString(sampleText)
		builder.WriteString("</li>")
	}
	builder.WriteString("</ul></article></body></html>")
	return []byte(builder.String())
}

const sampleText = "Lorem ipsum dolor sit amet, consectetur adipiscing elit. Sed do eiusmod tempor incididunt ut labore et dolore magna aliqua."
