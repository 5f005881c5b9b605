package textproc

import "strings"

const subwordPrefix = "##"

// Token is a single entity group emitted by a token-classification model.
type Token struct {
	Group string
	Word  string
}

// Labels names the entity groups that begin and continue a phrase.
type Labels struct {
	Begin  string
	Inside string
}

// DefaultLabels are the groups emitted by the BioBERT medical NER model.
var DefaultLabels = Labels{Begin: "LABEL_1", Inside: "LABEL_2"}

// MergeSubwords joins a begin token with the inside tokens that follow it.
// Inside tokens carrying the "##" WordPiece prefix are glued to the previous
// text; other inside tokens are separated by a space. Tokens that are neither
// part of a phrase nor a phrase start are skipped.
func MergeSubwords(tokens []Token, labels Labels) []string {
	var merged []string
	i := 0
	for i < len(tokens) {
		if tokens[i].Group != labels.Begin {
			i++
			continue
		}

		var phrase strings.Builder
		phrase.WriteString(tokens[i].Word)
		i++
		for i < len(tokens) && tokens[i].Group == labels.Inside {
			word := tokens[i].Word
			if strings.HasPrefix(word, subwordPrefix) {
				phrase.WriteString(word[len(subwordPrefix):])
			} else {
				phrase.WriteByte(' ')
				phrase.WriteString(word)
			}
			i++
		}
		merged = append(merged, phrase.String())
	}
	return merged
}
