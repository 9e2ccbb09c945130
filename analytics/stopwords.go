package analytics

// stopWords are English and Spanish filler tokens dropped from review word counts.
var stopWords = toSet(
	"and", "if", "the", "i", "to", "of", "a", "in", "for", "on", "is",
	"it", "that", "this", "with", "as", "are", "was", "at", "by",
	"an", "be", "not", "or", "but", "from", "my", "you", "your",
	"he", "she", "they", "we", "all", "so", "what", "there", "when",
	"where", "who", "which", "how", "just", "like", "about", "more",
	"than", "up", "out", "some", "other", "no", "yes", "do", "does",
	"did", "will", "would", "could", "should", "can", "have", "her",
	"him", "them", "his", "were", "been", "get", "really", "never",
	"had", "has", "because", "into", "one", "know", "say", "see", "im",
	"also", "after", "before", "between", "during", "while", "such",
	"these", "those", "each", "few", "many", "much", "most", "any",
	"none", "whole", "part", "half", "every", "either", "neither", "both",
	"book", "read", "reading", "it.", "it's", "she's", "he's", "didn't",
	"can't", "don't", "s", "-", ".", ",",
	"y", "de", "la", "que", "el", "en", "los", "se", "del", "por", "un",
	"una", "con", "es", "para", "su", "al", "como", "más", "o", "pero",
	"fue", "este", "entre", "también", "hasta", "hay", "todo", "esta",
	"ser", "son", "me", "si", "sobre", "mi", "te", "ya", "muy", "donde",
	"quien", "cuando", "qué", "cómo", "así", "solo", "uno", "dos", "tres",
	"cuatro", "cinco", "seis", "siete", "ocho", "nueve", "diez", "otro",
	"mismo", "tanto", "poco", "mucho", "cada", "algunos", "ninguna",
	"varios", "tras", "hacia", "desde", "durante", "antes", "después",
	"porque", "aunque", "mientras", "según", "tal", "cual", "ha", "han",
	"las", "le", "lo", "ni", "tan", "unos", "libro", "bastante", "leer",
)

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
