package nlp

import (
	"context"

	"github.com/jdkato/prose/v2"
)

// ProseRecognizer runs the prose named-entity model in process.
type ProseRecognizer struct{}

func (ProseRecognizer) Name() string { return "prose" }

// Entities implements EntityRecognizer.
func (ProseRecognizer) Entities(_ context.Context, text string) (map[string][]string, error) {
	doc, err := prose.NewDocument(text)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]string)
	for _, ent := range doc.Entities() {
		out[ent.Label] = append(out[ent.Label], ent.Text)
	}
	return out, nil
}
