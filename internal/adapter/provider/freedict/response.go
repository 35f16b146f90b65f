package freedict

// apiEntry is one element of the dictionaryapi.dev response array. The API
// splits a word into several entries when it has more than one etymology.
type apiEntry struct {
	Word      string        `json:"word"`
	Phonetic  string        `json:"phonetic"`
	Phonetics []apiPhonetic `json:"phonetics"`
	Meanings  []apiMeaning  `json:"meanings"`
}

// apiPhonetic carries an IPA transcription; audio links are not used since
// pronunciation comes from the speech service.
type apiPhonetic struct {
	Text string `json:"text"`
}

type apiMeaning struct {
	PartOfSpeech string          `json:"partOfSpeech"`
	Definitions  []apiDefinition `json:"definitions"`
}

type apiDefinition struct {
	Definition string `json:"definition"`
	Example    string `json:"example"`
}
