package slides

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	slides "google.golang.org/api/slides/v1"
)

func TestTagsFromSpeakerNotes(t *testing.T) {
	deck := []Slide{
		{ObjectID: "s1", Notes: "#intro"},
		{ObjectID: "s2", Notes: "for partners only #partner-only, see #intro"},
		{ObjectID: "s3", Notes: "no tags here"},
		{ObjectID: "s4", Notes: "#partner-only #partner-only"},
		{ObjectID: "s5"},
	}

	got := TagsFromSpeakerNotes(deck)
	assert.Equal(t, map[string][]string{
		"#intro":        {"s1", "s2"},
		"#partner-only": {"s2", "s4"},
	}, got)
	assert.Equal(t, []string{"#intro", "#partner-only"}, SortedTags(got))
}

func TestTagsFromSpeakerNotesEmpty(t *testing.T) {
	assert.Empty(t, TagsFromSpeakerNotes(nil))
}

func TestNormalizeTag(t *testing.T) {
	assert.Equal(t, "#draft", normalizeTag("draft"))
	assert.Equal(t, "#draft", normalizeTag(" #draft "))
	assert.Equal(t, "", normalizeTag("  "))
}

func TestSpeakerNotesFallsBackToSecondElement(t *testing.T) {
	page := &slides.Page{
		ObjectId: "s1",
		SlideProperties: &slides.SlideProperties{
			NotesPage: &slides.Page{
				PageElements: []*slides.PageElement{
					{ObjectId: "thumb", Shape: &slides.Shape{}},
					{ObjectId: "body", Shape: &slides.Shape{Text: &slides.TextContent{
						TextElements: []*slides.TextElement{
							{TextRun: &slides.TextRun{Content: "legacy "}},
							{TextRun: &slides.TextRun{Content: "#old\n"}},
						},
					}}},
				},
			},
		},
	}
	assert.Equal(t, "legacy #old", speakerNotes(page))
}

func TestCreateImageRequest(t *testing.T) {
	over := Element{
		ObjectID:  "placeholder",
		Size:      &slides.Size{Width: &slides.Dimension{Magnitude: 10, Unit: "PT"}},
		Transform: &slides.AffineTransform{ScaleX: 1, ScaleY: 1, Unit: "PT"},
	}
	req := CreateImageRequest("https://example.com/logo.png", "s1", over)
	require.NotNil(t, req.CreateImage)
	assert.Equal(t, "https://example.com/logo.png", req.CreateImage.Url)
	assert.Equal(t, "s1", req.CreateImage.ElementProperties.PageObjectId)
	assert.Same(t, over.Size, req.CreateImage.ElementProperties.Size)
	assert.Same(t, over.Transform, req.CreateImage.ElementProperties.Transform)
}

func TestDeleteObjectRequest(t *testing.T) {
	assert.Equal(t, "obj", DeleteObjectRequest("obj").DeleteObject.ObjectId)
}

func TestReplaceTextRequest(t *testing.T) {
	req := ReplaceTextRequest("Acme", "")
	require.NotNil(t, req.ReplaceAllText)
	assert.Equal(t, DefaultFindText, req.ReplaceAllText.ContainsText.Text)
	assert.False(t, req.ReplaceAllText.ContainsText.MatchCase)
	assert.Equal(t, "Acme", req.ReplaceAllText.ReplaceText)

	req = ReplaceTextRequest("", "{{DATE}}")
	assert.Equal(t, "{{DATE}}", req.ReplaceAllText.ContainsText.Text)
}
