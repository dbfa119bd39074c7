package bgg

import (
	"html"
	"regexp"
	"strconv"
	"strings"
)

// Field names a scalar value in a BoardGameGeek "thing" document.
type Field string

const (
	FieldName          Field = "name"
	FieldDescription   Field = "description"
	FieldImage         Field = "image"
	FieldMinPlayers    Field = "minplayers"
	FieldMaxPlayers    Field = "maxplayers"
	FieldPlayingTime   Field = "playingtime"
	FieldAverageWeight Field = "averageweight"
	FieldMinAge        Field = "minage"
)

// Extractor pulls a raw field value out of a document.
// It reports false when the field is absent; it never fails.
type Extractor interface {
	Extract(doc string, field Field) (string, bool)
}

// Defaults applied when a field is missing or unusable.
const (
	DefaultTitle         = "Unknown Game"
	DefaultMinPlayers    = 1
	DefaultMaxPlayers    = 4
	DefaultPlayingTime   = 45
	DefaultAverageWeight = 2.5

	MaxDescriptionLength = 2000
)

// PatternExtractor matches fields with regular expressions instead of parsing XML.
// The upstream documents are frequently incomplete, so a tolerant scan is enough.
type PatternExtractor struct{}

var patterns = map[Field]*regexp.Regexp{
	FieldName:          regexp.MustCompile(`<name\b[^>]*\btype="primary"[^>]*\bvalue="([^"]*)"`),
	FieldDescription:   regexp.MustCompile(`(?s)<description>(.*?)</description>`),
	FieldImage:         regexp.MustCompile(`(?s)<image>(.*?)</image>`),
	FieldMinPlayers:    valueAttr("minplayers"),
	FieldMaxPlayers:    valueAttr("maxplayers"),
	FieldPlayingTime:   valueAttr("playingtime"),
	FieldAverageWeight: valueAttr("averageweight"),
	FieldMinAge:        valueAttr("minage"),
}

func valueAttr(tag string) *regexp.Regexp {
	return regexp.MustCompile(`<` + tag + `\b[^>]*\bvalue="([^"]*)"`)
}

func (PatternExtractor) Extract(doc string, field Field) (string, bool) {
	re, ok := patterns[field]
	if !ok {
		return "", false
	}
	m := re.FindStringSubmatch(doc)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Thing is the typed view of a document with every default applied.
type Thing struct {
	Name          string
	Description   *string
	Image         *string
	MinPlayers    int
	MaxPlayers    int
	PlayingTime   int
	AverageWeight float64
	MinAge        int // 0 when the document gives none
}

// Parse runs ex over doc and fills a Thing. Missing, empty, non-numeric and
// non-positive values all fall back to their defaults.
func Parse(ex Extractor, doc string) Thing {
	t := Thing{
		Name:          DefaultTitle,
		MinPlayers:    positiveInt(ex, doc, FieldMinPlayers, DefaultMinPlayers),
		MaxPlayers:    positiveInt(ex, doc, FieldMaxPlayers, DefaultMaxPlayers),
		PlayingTime:   positiveInt(ex, doc, FieldPlayingTime, DefaultPlayingTime),
		AverageWeight: DefaultAverageWeight,
		MinAge:        positiveInt(ex, doc, FieldMinAge, 0),
	}

	if v, ok := ex.Extract(doc, FieldName); ok {
		if name := strings.TrimSpace(html.UnescapeString(v)); name != "" {
			t.Name = name
		}
	}

	if v, ok := ex.Extract(doc, FieldDescription); ok {
		desc := strings.ReplaceAll(v, "&#10;", "\n")
		if strings.TrimSpace(desc) != "" {
			desc = truncate(desc, MaxDescriptionLength)
			t.Description = &desc
		}
	}

	if v, ok := ex.Extract(doc, FieldImage); ok {
		if img := strings.TrimSpace(v); img != "" {
			t.Image = &img
		}
	}

	if v, ok := ex.Extract(doc, FieldAverageWeight); ok {
		if w, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && w > 0 {
			t.AverageWeight = w
		}
	}

	return t
}

func positiveInt(ex Extractor, doc string, field Field, def int) int {
	v, ok := ex.Extract(doc, field)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// truncate cuts s to at most n characters.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
