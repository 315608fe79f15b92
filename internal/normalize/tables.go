package normalize

// stopwords is the closed list of 83 function words excluded from anchor
// eligibility (spec §4.2) and weighted down (0.5) in the Span Scorer's
// token-similarity aggregate (spec §4.3).
var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "but": true,
	"if": true, "of": true, "at": true, "by": true, "for": true, "with": true,
	"about": true, "against": true, "between": true, "into": true, "through": true,
	"during": true, "before": true, "after": true, "above": true, "below": true,
	"to": true, "from": true, "up": true, "down": true, "in": true, "out": true,
	"on": true, "off": true, "over": true, "under": true, "again": true,
	"further": true, "then": true, "once": true, "here": true, "there": true,
	"when": true, "where": true, "why": true, "how": true, "all": true,
	"any": true, "both": true, "each": true, "few": true, "more": true,
	"most": true, "other": true, "some": true, "such": true, "no": true,
	"nor": true, "not": true, "only": true, "own": true, "same": true,
	"so": true, "than": true, "too": true, "very": true, "is": true,
	"are": true, "was": true, "were": true, "be": true, "been": true,
	"being": true, "have": true, "has": true, "had": true, "do": true,
	"does": true, "did": true, "it": true, "its": true, "he": true,
	"she": true, "they": true, "we": true, "you": true, "i": true,
}

// isStopword reports whether a normalized token is a closed-class function
// word per spec §4.2/§4.3.
func isStopword(t string) bool { return stopwords[t] }

// unitAbbreviations maps an abbreviated or spelled-out unit form to its
// canonical full-form, so "km" and "kilometers" canonicalize equal (spec
// §4.1 unit equivalence).
var unitAbbreviations = map[string]string{
	"km": "kilometers", "kilometer": "kilometers", "kilometers": "kilometers",
	"m": "meters", "meter": "meters", "meters": "meters", "metre": "meters", "metres": "meters",
	"cm": "centimeters", "centimeter": "centimeters", "centimeters": "centimeters",
	"mm": "millimeters", "millimeter": "millimeters", "millimeters": "millimeters",
	"mi": "miles", "mile": "miles", "miles": "miles",
	"ft": "feet", "foot": "feet", "feet": "feet",
	"in": "inches", "inch": "inches", "inches": "inches",
	"kg": "kilograms", "kilogram": "kilograms", "kilograms": "kilograms",
	"g": "grams", "gram": "grams", "grams": "grams",
	"lb": "pounds", "lbs": "pounds", "pound": "pounds", "pounds": "pounds",
	"hr": "hours", "hrs": "hours", "hour": "hours", "hours": "hours",
	"min": "minutes", "mins": "minutes", "minute": "minutes", "minutes": "minutes",
	"sec": "seconds", "secs": "seconds", "second": "seconds", "seconds": "seconds",
	"kph": "kilometers per hour", "mph": "miles per hour",
	"°c": "degrees celsius", "°f": "degrees fahrenheit",
}

// canonicalUnit returns the canonical full-form for a unit token, and
// whether it was recognized at all.
func canonicalUnit(t string) (string, bool) {
	full, ok := unitAbbreviations[t]
	return full, ok
}

// contractions maps a contraction to its expanded multi-token form, covering
// negations, copula, modal-will, have, and would (spec §4.1).
var contractions = map[string]string{
	"don't": "do not", "doesn't": "does not", "didn't": "did not",
	"won't": "will not", "wouldn't": "would not", "can't": "cannot",
	"couldn't": "could not", "shouldn't": "should not", "mustn't": "must not",
	"isn't": "is not", "aren't": "are not", "wasn't": "was not", "weren't": "were not",
	"hasn't": "has not", "haven't": "have not", "hadn't": "had not",
	"i'm": "i am", "you're": "you are", "he's": "he is", "she's": "she is",
	"it's": "it is", "we're": "we are", "they're": "they are",
	"i'll": "i will", "you'll": "you will", "he'll": "he will", "she'll": "she will",
	"it'll": "it will", "we'll": "we will", "they'll": "they will",
	"i've": "i have", "you've": "you have", "we've": "we have", "they've": "they have",
	"i'd": "i would", "you'd": "you would", "he'd": "he would", "she'd": "she would",
	"we'd": "we would", "they'd": "they would",
	"let's": "let us", "that's": "that is", "there's": "there is", "here's": "here is",
	"who's": "who is", "what's": "what is", "where's": "where is",
}

// expandContraction returns the expanded form of a contraction and whether
// it was recognized.
func expandContraction(t string) (string, bool) {
	exp, ok := contractions[t]
	return exp, ok
}

// cardinals maps a spelled-out cardinal number word to its digit value, for
// numeric equivalence (spec §4.1).
var cardinals = map[string]int64{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6,
	"seven": 7, "eight": 8, "nine": 9, "ten": 10, "eleven": 11, "twelve": 12,
	"thirteen": 13, "fourteen": 14, "fifteen": 15, "sixteen": 16, "seventeen": 17,
	"eighteen": 18, "nineteen": 19, "twenty": 20, "thirty": 30, "forty": 40,
	"fifty": 50, "sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
	"hundred": 100, "thousand": 1000, "million": 1000000,
}

// ordinals maps a spelled-out ordinal word to its corresponding cardinal
// value, for numeric equivalence against plain digit forms ("third" matches
// "3"); suffixed digit-ordinal forms such as "3rd" do not parse as numbers
// and are not matched.
var ordinals = map[string]int64{
	"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5, "sixth": 6,
	"seventh": 7, "eighth": 8, "ninth": 9, "tenth": 10, "eleventh": 11,
	"twelfth": 12, "thirteenth": 13, "fourteenth": 14, "fifteenth": 15,
	"sixteenth": 16, "seventeenth": 17, "eighteenth": 18, "nineteenth": 19,
	"twentieth": 20, "thirtieth": 30, "fortieth": 40, "fiftieth": 50,
	"sixtieth": 60, "seventieth": 70, "eightieth": 80, "ninetieth": 90,
	"hundredth": 100, "thousandth": 1000,
}
