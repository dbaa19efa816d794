package utils

var englishStopwords = toSet(
	"a", "about", "above", "after", "again", "against", "all", "am", "an", "and",
	"any", "are", "aren't", "as", "at", "be", "because", "been", "before", "being",
	"below", "between", "both", "but", "by", "can", "could", "did", "didn't", "do",
	"does", "doesn't", "doing", "don't", "down", "during", "each", "few", "for", "from",
	"further", "had", "has", "hasn't", "have", "haven't", "having", "he", "her", "here",
	"hers", "herself", "him", "himself", "his", "how", "i", "if", "in", "into",
	"is", "isn't", "it", "it's", "its", "itself", "just", "me", "more", "most",
	"my", "myself", "no", "nor", "not", "now", "of", "off", "on", "once",
	"only", "or", "other", "our", "ours", "ourselves", "out", "over", "own", "s",
	"same", "says", "she", "should", "so", "some", "such", "t", "than", "that",
	"the", "their", "theirs", "them", "themselves", "then", "there", "these", "they", "this",
	"those", "through", "to", "too", "under", "until", "up", "very", "vs", "was",
	"wasn't", "we", "were", "weren't", "what", "when", "where", "which", "while", "who",
	"whom", "why", "will", "with", "won't", "would", "you", "your", "yours", "yourself",
)

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}

	return set
}
