package speech

import "strings"

// DefaultLanguage is used whenever a language name is missing or unknown.
const DefaultLanguage = "english"

// Voice selects a TTS voice.
type Voice struct {
	LanguageCode string
	Name         string
}

type languageVoices struct {
	code   string
	voices []string // candidates in preference order
}

// Only the first candidate is used today; the others are kept so a future
// selection policy has them at hand.
var languageTable = map[string]languageVoices{
	"english":    {"en-US", []string{"en-US-Wavenet-D", "en-US-Wavenet-A", "en-US-Wavenet-B", "en-US-Wavenet-C"}},
	"hindi":      {"hi-IN", []string{"hi-IN-Wavenet-D", "hi-IN-Wavenet-A", "hi-IN-Wavenet-B", "hi-IN-Wavenet-C"}},
	"spanish":    {"es-ES", []string{"es-ES-Wavenet-B", "es-ES-Wavenet-A", "es-ES-Wavenet-C", "es-ES-Wavenet-D"}},
	"french":     {"fr-FR", []string{"fr-FR-Wavenet-C", "fr-FR-Wavenet-A", "fr-FR-Wavenet-B", "fr-FR-Wavenet-D"}},
	"german":     {"de-DE", []string{"de-DE-Wavenet-F", "de-DE-Wavenet-A", "de-DE-Wavenet-B", "de-DE-Wavenet-C"}},
	"kannada":    {"kn-IN", []string{"kn-IN-Wavenet-A"}},
	"telugu":     {"te-IN", []string{"te-IN-Wavenet-B", "te-IN-Wavenet-A"}},
	"tamil":      {"ta-IN", []string{"ta-IN-Wavenet-D", "ta-IN-Wavenet-A", "ta-IN-Wavenet-B", "ta-IN-Wavenet-C"}},
	"malayalam":  {"ml-IN", []string{"ml-IN-Wavenet-D", "ml-IN-Wavenet-A", "ml-IN-Wavenet-B", "ml-IN-Wavenet-C"}},
	"bengali":    {"bn-IN", []string{"bn-IN-Wavenet-A"}},
	"gujarati":   {"gu-IN", []string{"gu-IN-Wavenet-A"}},
	"marathi":    {"mr-IN", []string{"mr-IN-Wavenet-A"}},
	"japanese":   {"ja-JP", []string{"ja-JP-Wavenet-D", "ja-JP-Wavenet-A", "ja-JP-Wavenet-B", "ja-JP-Wavenet-C"}},
	"korean":     {"ko-KR", []string{"ko-KR-Wavenet-D", "ko-KR-Wavenet-A", "ko-KR-Wavenet-B", "ko-KR-Wavenet-C"}},
	"chinese":    {"cmn-CN", []string{"cmn-CN-Wavenet-D", "cmn-CN-Wavenet-A", "cmn-CN-Wavenet-B", "cmn-CN-Wavenet-C"}},
	"arabic":     {"ar-XA", []string{"ar-XA-Wavenet-B", "ar-XA-Wavenet-A", "ar-XA-Wavenet-C", "ar-XA-Wavenet-D"}},
	"russian":    {"ru-RU", []string{"ru-RU-Wavenet-D", "ru-RU-Wavenet-A", "ru-RU-Wavenet-B", "ru-RU-Wavenet-C"}},
	"portuguese": {"pt-BR", []string{"pt-BR-Wavenet-B", "pt-BR-Wavenet-A", "pt-BR-Wavenet-C", "pt-BR-Wavenet-D"}},
	"italian":    {"it-IT", []string{"it-IT-Wavenet-D", "it-IT-Wavenet-A", "it-IT-Wavenet-B", "it-IT-Wavenet-C"}},
	"dutch":      {"nl-NL", []string{"nl-NL-Wavenet-E", "nl-NL-Wavenet-A", "nl-NL-Wavenet-B", "nl-NL-Wavenet-C"}},
	"polish":     {"pl-PL", []string{"pl-PL-Wavenet-E", "pl-PL-Wavenet-A", "pl-PL-Wavenet-B", "pl-PL-Wavenet-C"}},
	"swedish":    {"sv-SE", []string{"sv-SE-Wavenet-A", "sv-SE-Wavenet-B", "sv-SE-Wavenet-C"}},
	"turkish":    {"tr-TR", []string{"tr-TR-Wavenet-E", "tr-TR-Wavenet-A", "tr-TR-Wavenet-B", "tr-TR-Wavenet-C"}},
	"vietnamese": {"vi-VN", []string{"vi-VN-Wavenet-D", "vi-VN-Wavenet-A", "vi-VN-Wavenet-B", "vi-VN-Wavenet-C"}},
	"indonesian": {"id-ID", []string{"id-ID-Wavenet-D", "id-ID-Wavenet-A", "id-ID-Wavenet-B", "id-ID-Wavenet-C"}},
	"thai":       {"th-TH", []string{"th-TH-Wavenet-C", "th-TH-Wavenet-A", "th-TH-Wavenet-B"}},
	"punjabi":    {"pa-IN", []string{"pa-IN-Wavenet-A", "pa-IN-Wavenet-B", "pa-IN-Wavenet-C", "pa-IN-Wavenet-D"}},
}

var defaultVoice = Voice{LanguageCode: "en-US", Name: "en-US-Wavenet-D"}

// NormalizeLanguage lower-cases and trims name and reports whether a voice
// exists for it. Unknown names map to DefaultLanguage.
func NormalizeLanguage(name string) (string, bool) {
	lang := strings.ToLower(strings.TrimSpace(name))
	if _, ok := languageTable[lang]; ok {
		return lang, true
	}
	return DefaultLanguage, false
}

// VoiceFor returns the voice used for a language name (case-insensitive).
func VoiceFor(language string) Voice {
	lv, ok := languageTable[strings.ToLower(strings.TrimSpace(language))]
	if !ok {
		return defaultVoice
	}
	return Voice{LanguageCode: lv.code, Name: lv.voices[0]}
}
