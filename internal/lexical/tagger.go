// Package lexical extracts keywords, entities and action verbs from task text.
package lexical

import (
	"github.com/jdkato/prose/v2"
)

// Token is one tagged token of input text.
type Token struct {
	Text string
	Tag  string // Penn Treebank tag (NN, VB, JJ, ...)
}

// Entity is one named entity found in input text.
type Entity struct {
	Text  string
	Label string // PERSON, GPE, ...
}

// Tagging is the combined output of one tagger pass.
type Tagging struct {
	Tokens   []Token
	Entities []Entity
}

// Tagger tags text with parts of speech and named entities.
// Implementations must be safe for concurrent use.
type Tagger interface {
	Analyze(text string) (*Tagging, error)
}

// ProseTagger tags text using the prose NLP library.
type ProseTagger struct{}

// NewProseTagger returns the production tagger.
func NewProseTagger() *ProseTagger {
	return &ProseTagger{}
}

// Analyze runs tokenization, POS tagging and NER over text.
func (t *ProseTagger) Analyze(text string) (*Tagging, error) {
	doc, err := prose.NewDocument(text)
	if err != nil {
		return nil, err
	}

	tagging := &Tagging{}
	for _, tok := range doc.Tokens() {
		tagging.Tokens = append(tagging.Tokens, Token{Text: tok.Text, Tag: tok.Tag})
	}
	for _, ent := range doc.Entities() {
		tagging.Entities = append(tagging.Entities, Entity{Text: ent.Text, Label: ent.Label})
	}

	return tagging, nil
}
