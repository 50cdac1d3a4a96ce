package romaji

import "strings"

// Rendering is one written form of a field.
type Rendering struct {
	Script Script
	Text   string
}

// Fields is the searchable text of a query.
type Fields struct {
	Artist string
	Album  string
	Title  string
}

// Variant is one entry of the retry queue.
type Variant struct {
	Fields
	// Method is MethodOriginal for the untouched query, otherwise a comma
	// separated list of field:script pairs, e.g. "artist:katakana,title:hiragana".
	Method string
}

// FieldVariants returns the original text followed, when the text is
// phonetic-Latin and segments cleanly, by its hiragana and katakana renderings.
func FieldVariants(text string) []Rendering {
	out := []Rendering{{Script: ScriptOriginal, Text: text}}
	if strings.TrimSpace(text) == "" || !IsPhoneticLatin(text) {
		return out
	}

	hira, ok := ToHiragana(text)
	if !ok {
		return out
	}
	return append(out,
		Rendering{Script: ScriptHiragana, Text: hira},
		Rendering{Script: ScriptKatakana, Text: hiraganaToKatakana(hira)},
	)
}

// GenerateVariants returns the cross product of the per-field renderings.
// Element 0 is always the unmodified input.
func GenerateVariants(f Fields) []Variant {
	artists := FieldVariants(f.Artist)
	albums := FieldVariants(f.Album)
	titles := FieldVariants(f.Title)

	variants := make([]Variant, 0, len(artists)*len(albums)*len(titles))
	for _, ar := range artists {
		for _, al := range albums {
			for _, ti := range titles {
				variants = append(variants, Variant{
					Fields: Fields{Artist: ar.Text, Album: al.Text, Title: ti.Text},
					Method: methodID(ar.Script, al.Script, ti.Script),
				})
			}
		}
	}
	return variants
}

func methodID(artist, album, title Script) string {
	var parts []string
	if artist != ScriptOriginal {
		parts = append(parts, "artist:"+string(artist))
	}
	if album != ScriptOriginal {
		parts = append(parts, "album:"+string(album))
	}
	if title != ScriptOriginal {
		parts = append(parts, "title:"+string(title))
	}
	if len(parts) == 0 {
		return MethodOriginal
	}
	return strings.Join(parts, ",")
}
