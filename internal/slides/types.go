package slides

import (
	"regexp"
	"sort"
	"strings"

	slides "google.golang.org/api/slides/v1"
)

// DefaultFields is the field mask used when GetPresentation is called without
// one.
const DefaultFields = "presentationId,title,slides"

// DefaultFindText is the placeholder ReplaceTextRequest searches for when no
// find text is given.
const DefaultFindText = "{{CLIENT_NAME}}"

var tagPattern = regexp.MustCompile(`#[A-Za-z0-9_-]+`)

// Presentation is a simplified view of a Slides presentation.
type Presentation struct {
	ID     string  `json:"presentationId"`
	Title  string  `json:"title,omitempty"`
	Slides []Slide `json:"slides"`
}

// Slide is one page of a presentation with its speaker notes.
type Slide struct {
	ObjectID string    `json:"objectId"`
	Notes    string    `json:"notes,omitempty"`
	Elements []Element `json:"elements,omitempty"`
}

// Element is a page element on a slide. Size and Transform are kept so new
// elements can be placed over existing ones.
type Element struct {
	ObjectID  string                  `json:"objectId"`
	Kind      string                  `json:"kind"`
	Text      string                  `json:"text,omitempty"`
	Size      *slides.Size            `json:"size,omitempty"`
	Transform *slides.AffineTransform `json:"transform,omitempty"`
}

// BatchResult summarizes a batchUpdate call.
type BatchResult struct {
	PresentationID     string `json:"presentationId"`
	Replies            int    `json:"replies"`
	OccurrencesChanged int64  `json:"occurrencesChanged,omitempty"`
}

// Tags returns the distinct hashtags in the slide's speaker notes in the
// order they first appear.
func (s Slide) Tags() []string {
	var tags []string
	seen := make(map[string]bool)
	for _, tag := range tagPattern.FindAllString(s.Notes, -1) {
		if !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	return tags
}

// TagsFromSpeakerNotes maps every hashtag found in speaker notes to the IDs
// of the slides carrying it, in slide order.
func TagsFromSpeakerNotes(slides []Slide) map[string][]string {
	out := make(map[string][]string)
	for _, s := range slides {
		for _, tag := range s.Tags() {
			out[tag] = append(out[tag], s.ObjectID)
		}
	}
	return out
}

// SortedTags returns the keys of a TagsFromSpeakerNotes result.
func SortedTags(tags map[string][]string) []string {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func normalizeTag(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag != "" && !strings.HasPrefix(tag, "#") {
		tag = "#" + tag
	}
	return tag
}

func convertPresentation(p *slides.Presentation) *Presentation {
	out := &Presentation{ID: p.PresentationId, Title: p.Title, Slides: make([]Slide, 0, len(p.Slides))}
	for _, page := range p.Slides {
		out.Slides = append(out.Slides, convertSlide(page))
	}
	return out
}

func convertSlide(page *slides.Page) Slide {
	s := Slide{ObjectID: page.ObjectId, Notes: speakerNotes(page)}
	for _, el := range page.PageElements {
		s.Elements = append(s.Elements, convertElement(el))
	}
	return s
}

func convertElement(el *slides.PageElement) Element {
	out := Element{ObjectID: el.ObjectId, Size: el.Size, Transform: el.Transform}
	switch {
	case el.Shape != nil:
		out.Kind = "shape"
		out.Text = textContent(el.Shape.Text)
	case el.Image != nil:
		out.Kind = "image"
	case el.Table != nil:
		out.Kind = "table"
	case el.Line != nil:
		out.Kind = "line"
	case el.Video != nil:
		out.Kind = "video"
	case el.SheetsChart != nil:
		out.Kind = "sheets_chart"
	case el.ElementGroup != nil:
		out.Kind = "group"
	case el.WordArt != nil:
		out.Kind = "word_art"
	default:
		out.Kind = "unknown"
	}
	return out
}

// speakerNotes returns the text of the notes page shape named by the notes
// properties. Older decks without that reference keep their notes in the
// second element of the notes page.
func speakerNotes(page *slides.Page) string {
	if page.SlideProperties == nil || page.SlideProperties.NotesPage == nil {
		return ""
	}
	notes := page.SlideProperties.NotesPage

	id := ""
	if notes.NotesProperties != nil {
		id = notes.NotesProperties.SpeakerNotesObjectId
	}
	for i, el := range notes.PageElements {
		if el.Shape == nil {
			continue
		}
		if (id != "" && el.ObjectId == id) || (id == "" && i == 1) {
			return strings.TrimSpace(textContent(el.Shape.Text))
		}
	}
	return ""
}

func textContent(text *slides.TextContent) string {
	if text == nil {
		return ""
	}
	var b strings.Builder
	for _, te := range text.TextElements {
		if te.TextRun != nil {
			b.WriteString(te.TextRun.Content)
		}
	}
	return b.String()
}
