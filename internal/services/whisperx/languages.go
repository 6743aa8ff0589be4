package whisperx

import (
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// supportedLanguages lists languages WhisperX aligns well out of the box.
var supportedLanguages = []language.Tag{
	language.English,
	language.Spanish,
	language.French,
	language.German,
	language.Italian,
	language.Portuguese,
	language.Japanese,
	language.Korean,
	language.Chinese,
	language.Russian,
	language.Arabic,
	language.Hindi,
	language.Dutch,
	language.Polish,
	language.Swedish,
	language.Danish,
	language.Norwegian,
	language.Finnish,
}

func displayName(tag language.Tag) string {
	return display.English.Tags().Name(tag)
}
