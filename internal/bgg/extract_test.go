package bgg

import (
	"strings"
	"testing"
	"unicode/utf8"
)

const gloomhavenDoc = `<?xml version="1.0" encoding="utf-8"?>
<items termsofuse="https://boardgamegeek.com/xmlapi/termsofuse">
	<item type="boardgame" id="174430">
		<thumbnail>https://cf.geekdo-images.com/thumb.jpg</thumbnail>
		<image>https://cf.geekdo-images.com/original.jpg</image>
		<name type="primary" sortindex="1" value="Gloomhaven" />
		<name type="alternate" sortindex="1" value="Gloomhaven: Edition" />
		<description>Gloomhaven is a game of Euro-inspired tactical combat.&#10;&#10;Players take on the role of wandering adventurers.</description>
		<yearpublished value="2017" />
		<minplayers value="1" />
		<maxplayers value="4" />
		<playingtime value="120" />
		<minplaytime value="60" />
		<maxplaytime value="120" />
		<minage value="14" />
		<statistics page="1">
			<ratings>
				<averageweight value="3.86" />
			</ratings>
		</statistics>
	</item>
</items>`

func TestParseFullDocument(t *testing.T) {
	thing := Parse(PatternExtractor{}, gloomhavenDoc)

	if thing.Name != "Gloomhaven" {
		t.Errorf("Name = %q", thing.Name)
	}
	if thing.Description == nil || !strings.Contains(*thing.Description, "combat.\n\nPlayers") {
		t.Errorf("Description not newline-decoded: %v", thing.Description)
	}
	if thing.Image == nil || *thing.Image != "https://cf.geekdo-images.com/original.jpg" {
		t.Errorf("Image = %v", thing.Image)
	}
	if thing.MinPlayers != 1 || thing.MaxPlayers != 4 {
		t.Errorf("players = %d-%d", thing.MinPlayers, thing.MaxPlayers)
	}
	if thing.PlayingTime != 120 || thing.AverageWeight != 3.86 || thing.MinAge != 14 {
		t.Errorf("numbers = %d %v %d", thing.PlayingTime, thing.AverageWeight, thing.MinAge)
	}
}

func TestParseEmptyDocumentUsesDefaults(t *testing.T) {
	for _, doc := range []string{"", "<items></items>", "not xml at all <<<"} {
		thing := Parse(PatternExtractor{}, doc)
		game := NewGame(thing, "1", "https://boardgamegeek.com/boardgame/1")

		if game.Title != "Unknown Game" {
			t.Errorf("%q: Title = %q", doc, game.Title)
		}
		if game.Description != nil || game.ImageURL != nil {
			t.Errorf("%q: expected nil description and image", doc)
		}
		if game.MinPlayers != 1 || game.MaxPlayers != 4 {
			t.Errorf("%q: players = %d-%d", doc, game.MinPlayers, game.MaxPlayers)
		}
		if game.PlayTime != "30-45 Minutes" {
			t.Errorf("%q: PlayTime = %q", doc, game.PlayTime)
		}
		if game.Difficulty != "3 - Medium" {
			t.Errorf("%q: Difficulty = %q", doc, game.Difficulty)
		}
		if game.SuggestedAge != "10+" {
			t.Errorf("%q: SuggestedAge = %q", doc, game.SuggestedAge)
		}
		if game.GameType != "Board Game" || len(game.AdditionalImages) != 0 {
			t.Errorf("%q: GameType = %q, AdditionalImages = %v", doc, game.GameType, game.AdditionalImages)
		}
	}
}

func TestParseMalformedNumbersFallBack(t *testing.T) {
	doc := `<minplayers value="two"/><maxplayers value=""/><playingtime value="0"/>` +
		`<averageweight value="n/a"/><minage value="-3"/>`
	thing := Parse(PatternExtractor{}, doc)

	if thing.MinPlayers != DefaultMinPlayers || thing.MaxPlayers != DefaultMaxPlayers {
		t.Errorf("players = %d-%d", thing.MinPlayers, thing.MaxPlayers)
	}
	if thing.PlayingTime != DefaultPlayingTime || thing.AverageWeight != DefaultAverageWeight || thing.MinAge != 0 {
		t.Errorf("numbers = %d %v %d", thing.PlayingTime, thing.AverageWeight, thing.MinAge)
	}
}

func TestParseTruncatesDescription(t *testing.T) {
	long := strings.Repeat("é", MaxDescriptionLength+50)
	thing := Parse(PatternExtractor{}, "<description>"+long+"</description>")

	if thing.Description == nil {
		t.Fatal("Description is nil")
	}
	if n := utf8.RuneCountInString(*thing.Description); n != MaxDescriptionLength {
		t.Errorf("description length = %d, want %d", n, MaxDescriptionLength)
	}
}

func TestParseTruncatesDecodedDescriptionUntrimmed(t *testing.T) {
	// Leading newlines count toward the limit.
	raw := "&#10;&#10;" + strings.Repeat("a", MaxDescriptionLength)
	thing := Parse(PatternExtractor{}, "<description>"+raw+"</description>")

	if thing.Description == nil {
		t.Fatal("Description is nil")
	}
	want := "\n\n" + strings.Repeat("a", MaxDescriptionLength-2)
	if *thing.Description != want {
		t.Errorf("Description starts %q, length %d", (*thing.Description)[:4], utf8.RuneCountInString(*thing.Description))
	}

	blank := Parse(PatternExtractor{}, "<description> &#10; </description>")
	if blank.Description != nil {
		t.Errorf("blank description = %q, want nil", *blank.Description)
	}
}

func TestParseMultilineDescriptionAndEntities(t *testing.T) {
	doc := "<name type=\"primary\" value=\"Catan &amp; Friends\"/>\n<description>line one\nline two</description>"
	thing := Parse(PatternExtractor{}, doc)

	if thing.Name != "Catan & Friends" {
		t.Errorf("Name = %q", thing.Name)
	}
	if thing.Description == nil || *thing.Description != "line one\nline two" {
		t.Errorf("Description = %v", thing.Description)
	}
}

func TestExtractIgnoresAlternateNames(t *testing.T) {
	doc := `<name type="alternate" value="Other"/><name type="primary" value="Right"/>`
	v, ok := PatternExtractor{}.Extract(doc, FieldName)
	if !ok || v != "Right" {
		t.Errorf("Extract(name) = %q, %v", v, ok)
	}
	if _, ok := (PatternExtractor{}).Extract(doc, Field("unknown")); ok {
		t.Error("unknown field reported present")
	}
}

type stubExtractor map[Field]string

func (s stubExtractor) Extract(_ string, f Field) (string, bool) {
	v, ok := s[f]
	return v, ok
}

func TestParseWithAlternateExtractor(t *testing.T) {
	thing := Parse(stubExtractor{FieldName: "Azul", FieldAverageWeight: "1.77"}, "")
	if thing.Name != "Azul" || DifficultyBucket(thing.AverageWeight) != DifficultyMediumLight {
		t.Errorf("thing = %+v", thing)
	}
}
