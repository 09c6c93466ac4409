package lexical

// stopWords is the shared function-word exclusion set. Enumerated exactly once;
// every extraction path filters against it.
var stopWords = map[string]bool{
	"a": true, "an": true, "the": true,
	"and": true, "or": true, "but": true, "nor": true, "so": true, "yet": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "from": true, "up": true, "down": true, "out": true,
	"off": true, "over": true, "under": true, "into": true, "onto": true,
	"about": true, "after": true, "before": true, "between": true, "through": true,
	"during": true, "above": true, "below": true, "near": true,
	"i": true, "me": true, "my": true, "mine": true, "we": true, "us": true,
	"our": true, "ours": true, "you": true, "your": true, "yours": true,
	"he": true, "him": true, "his": true, "she": true, "her": true, "hers": true,
	"it": true, "its": true, "they": true, "them": true, "their": true,
	"theirs": true, "this": true, "that": true, "these": true, "those": true,
	"is": true, "am": true, "are": true, "was": true, "were": true, "be": true,
	"been": true, "being": true, "do": true, "does": true, "did": true,
	"have": true, "has": true, "had": true, "will": true, "would": true,
	"shall": true, "should": true, "can": true, "could": true, "may": true,
	"might": true, "must": true, "not": true, "no": true, "as": true, "if": true,
	"then": true, "than": true, "too": true, "very": true, "just": true,
	"there": true, "here": true, "when": true, "where": true, "how": true,
	"what": true, "which": true, "who": true, "whom": true, "why": true,
	"all": true, "any": true, "both": true, "each": true, "few": true,
	"more": true, "most": true, "some": true, "such": true, "only": true,
	"own": true, "same": true, "other": true, "again": true, "once": true,
}

// isStopWord reports whether a lowercased token is a function word.
func isStopWord(word string) bool {
	return stopWords[word]
}
