package lyrics

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func TestParseSongID(t *testing.T) {
	tests := []struct {
		in   string
		want SongID
	}{
		{"Adele - Hello", SongID{Artist: "Adele", Title: "Hello"}},
		{"  Simon & Garfunkel  -  The Sound of Silence ", SongID{Artist: "Simon & Garfunkel", Title: "The Sound of Silence"}},
		{"Hello", SongID{Title: "Hello"}},
		{"Jay-Z - 99 Problems", SongID{Artist: "Jay-Z", Title: "99 Problems"}},
	}
	for _, tt := range tests {
		if got := ParseSongID(tt.in); got != tt.want {
			t.Fatalf("ParseSongID(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestSongKeyIgnoresCaseAndPunctuation(t *testing.T) {
	a := SongID{Artist: "Beyoncé", Title: "Halo!"}
	b := SongID{Artist: "beyonce", Title: "halo"}
	if a.Key() != b.Key() {
		t.Fatalf("expected equal keys, got %q and %q", a.Key(), b.Key())
	}
}

func TestBestCandidateFirstMaximumWins(t *testing.T) {
	song := SongID{Artist: "Adele", Title: "Hello"}
	candidates := []Candidate{
		{Title: "Goodbye", Artist: "Someone"},
		{Title: "Hello", Artist: "Adele", URL: "first"},
		{Title: "Hello", Artist: "Adele", URL: "second"},
	}
	idx, score := BestCandidate(song, candidates)
	if idx != 1 {
		t.Fatalf("expected first maximum at 1, got %d", idx)
	}
	if score != 1 {
		t.Fatalf("expected perfect score, got %v", score)
	}
	if idx, _ := BestCandidate(song, nil); idx != -1 {
		t.Fatalf("expected -1 for no candidates, got %d", idx)
	}
}

func TestScoreWithoutArtistCapsAtTitleWeight(t *testing.T) {
	got := Score(SongID{Title: "Hello"}, Candidate{Title: "HELLO", Artist: "Adele"})
	if got != 0.6 {
		t.Fatalf("expected title-only score 0.6, got %v", got)
	}
}

func TestNodeTextThenCleanText(t *testing.T) {
	in := `<div>[Verse 1]<br>Hello &amp; goodbye<br/>
<span>see</span> you <b>soon</b><br><br>(Chorus)<br>Lyrics by Someone<br>La la la<script>var x = "<br>";</script></div>`
	doc, err := html.Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := "Hello & goodbye\nsee you soon\n\nLa la la"
	if got := CleanText(NodeText(doc, nil)); got != want {
		t.Fatalf("CleanText(NodeText) = %q, want %q", got, want)
	}
}

func TestIsNoiseLine(t *testing.T) {
	noise := []string{
		"[Chorus]",
		"[Verse 2: Someone]",
		"(Verse 2)",
		"45 Contributors",
		"123 ContributorsTranslationsHello Lyrics",
		"Translations",
		"Embed",
		"27Embed",
		"You might also like",
		"Written by A. Writer",
		"Produced by Someone",
	}
	for _, line := range noise {
		if !IsNoiseLine(line) {
			t.Fatalf("expected %q to be noise", line)
		}
	}
	sung := []string{
		"Hello from the other side",
		"(Oh, oh, oh)",
		"I must have called a thousand times",
		"I keep on writing these lyrics",
		"Hello Lyrics",
		"",
	}
	for _, line := range sung {
		if IsNoiseLine(line) {
			t.Fatalf("expected %q to be kept", line)
		}
	}
}

func TestCleanTextKeepsSungLineEndingInLyrics(t *testing.T) {
	in := "I keep on writing these lyrics\nEvery night I sing"
	if got := CleanText(in); got != in {
		t.Fatalf("CleanText = %q, want %q", got, in)
	}
}

func TestStripTitleHeader(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		title string
		want  string
	}{
		{name: "banner", text: "\nHello Lyrics\nHello from the other side", title: "Hello", want: "Hello from the other side"},
		{name: "case insensitive", text: "HELLO lyrics\nline", title: "hello", want: "line"},
		{name: "sung line", text: "I keep on writing these lyrics\nline", title: "Hello", want: "I keep on writing these lyrics\nline"},
		{name: "not first line", text: "line\nHello Lyrics", title: "Hello", want: "line\nHello Lyrics"},
		{name: "no title", text: "Hello Lyrics\nline", title: "", want: "Hello Lyrics\nline"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripTitleHeader(tt.text, tt.title); got != tt.want {
				t.Fatalf("StripTitleHeader = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCleanTextCollapsesBlankRuns(t *testing.T) {
	in := "\n\nfirst  line\r\n\n\n\nsecond line\n[Outro]\n\n"
	if got := CleanText(in); got != "first line\n\nsecond line" {
		t.Fatalf("CleanText = %q", got)
	}
}
