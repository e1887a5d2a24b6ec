package domain

import "strings"

// Anime represents one AniList media entry as returned by a search.
type Anime struct {
	ID           int
	Title        AnimeTitle
	Episodes     int
	Status       string
	Format       string
	SeasonYear   int
	AverageScore int
	Description  string
	Genres       []string
	Synonyms     []string
}

// AnimeTitle contains the various versions of an anime title
type AnimeTitle struct {
	Romaji  string
	English string
	Native  string
}

// Preferred returns the best display title, preferring English, then romaji,
// then native.
func (t AnimeTitle) Preferred() string {
	switch {
	case t.English != "":
		return t.English
	case t.Romaji != "":
		return t.Romaji
	case t.Native != "":
		return t.Native
	default:
		return "Unknown Title"
	}
}

// PlainDescription strips the handful of HTML tags AniList embeds in
// descriptions so they render sanely in a terminal.
func (a Anime) PlainDescription() string {
	r := strings.NewReplacer(
		"<br>", "\n",
		"<br/>", "\n",
		"<br />", "\n",
		"<i>", "", "</i>", "",
		"<b>", "", "</b>", "",
		"<em>", "", "</em>", "",
	)
	return strings.TrimSpace(r.Replace(a.Description))
}
