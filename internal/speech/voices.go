package speech

import (
	"bufio"
	"context"
	"sort"
	"strings"
	"sync"
)

// VoiceCatalog caches the platform voices of one language family, sorted
// by name.
type VoiceCatalog struct {
	family string

	mu     sync.Mutex
	loaded bool
	voices []Voice
}

// NewVoiceCatalog creates a catalog for a language such as "en" or "en-US";
// only the family ("en") is used for filtering.
func NewVoiceCatalog(language string) *VoiceCatalog {
	return &VoiceCatalog{family: languageFamily(language)}
}

// Family returns the language family voices are filtered to.
func (c *VoiceCatalog) Family() string {
	return c.family
}

// Voices returns the cached voices, listing them from s on first use. A
// failed listing is not cached.
func (c *VoiceCatalog) Voices(ctx context.Context, s Synthesizer) []Voice {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return append([]Voice(nil), c.voices...)
	}
	all, err := s.Voices(ctx)
	if err != nil {
		return nil
	}
	c.voices = FilterVoices(all, c.family)
	c.loaded = true
	return append([]Voice(nil), c.voices...)
}

// Select returns the voice with id, or the family's default voice when id
// is empty or unavailable. The zero Voice means the engine default.
func (c *VoiceCatalog) Select(ctx context.Context, s Synthesizer, id string) Voice {
	voices := c.Voices(ctx, s)
	if id != "" {
		for _, v := range voices {
			if v.ID == id {
				return v
			}
		}
	}
	return defaultVoice(voices, c.family)
}

// FilterVoices keeps voices of family and sorts them by name.
func FilterVoices(all []Voice, family string) []Voice {
	var out []Voice
	for _, v := range all {
		if family == "" || languageFamily(v.Language) == family {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

// defaultVoice prefers a voice tagged with the bare family, then the first
// by name.
func defaultVoice(voices []Voice, family string) Voice {
	for _, v := range voices {
		if normalizeLanguage(v.Language) == family {
			return v
		}
	}
	if len(voices) > 0 {
		return voices[0]
	}
	return Voice{}
}

func normalizeLanguage(lang string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(lang), "_", "-"))
}

func languageFamily(lang string) string {
	lang = normalizeLanguage(lang)
	if i := strings.Index(lang, "-"); i >= 0 {
		return lang[:i]
	}
	return lang
}

// parseEspeakVoices parses `espeak-ng --voices`:
//
//	Pty Language       Age/Gender VoiceName          File                 Other Languages
//	 5  en-us           --/M      English_(America)  gmw/en-US            (en 10)
func parseEspeakVoices(out string) []Voice {
	var voices []Voice
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 5 || fields[0] == "Pty" {
			continue
		}
		voices = append(voices, Voice{
			ID:       fields[1],
			Name:     strings.ReplaceAll(fields[3], "_", " "),
			Language: fields[1],
		})
	}
	return voices
}

// parseSayVoices parses `say -v '?'`:
//
//	Alex                en_US    # Most people recognize me by my voice.
//	Eddy (English (US)) en_US    # Hello! My name is Eddy.
func parseSayVoices(out string) []Voice {
	var voices []Voice
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := sc.Text()
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		cut := strings.LastIndexAny(line, " \t")
		if cut < 0 {
			continue
		}
		name := strings.TrimSpace(line[:cut])
		lang := strings.TrimSpace(line[cut+1:])
		if name == "" || lang == "" {
			continue
		}
		voices = append(voices, Voice{ID: name, Name: name, Language: lang})
	}
	return voices
}
