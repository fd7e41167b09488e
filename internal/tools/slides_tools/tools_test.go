package slides_tools

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/goopy/internal/google/googletest"
	"github.com/teemow/goopy/internal/tools/tooltest"
)

func notesPage(speakerID, text string) map[string]interface{} {
	return map[string]interface{}{
		"notesProperties": map[string]interface{}{"speakerNotesObjectId": speakerID},
		"pageElements": []map[string]interface{}{
			{"objectId": speakerID, "shape": map[string]interface{}{
				"text": map[string]interface{}{"textElements": []map[string]interface{}{
					{"textRun": map[string]interface{}{"content": text}},
				}},
			}},
		},
	}
}

func deckHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/presentations/DECK1":
			googletest.WriteJSON(w, http.StatusOK, map[string]interface{}{
				"presentationId": "DECK1",
				"title":          "Proposal",
				"slides": []map[string]interface{}{
					{"objectId": "s1", "slideProperties": map[string]interface{}{"notesPage": notesPage("n1", "cover #always")}},
					{"objectId": "s2", "slideProperties": map[string]interface{}{"notesPage": notesPage("n2", "#appendix #pricing")}},
					{"objectId": "s3", "slideProperties": map[string]interface{}{"notesPage": notesPage("n3", "more #appendix")}},
				},
			})
		case "/v1/presentations/DECK1:batchUpdate":
			googletest.WriteJSON(w, http.StatusOK, map[string]interface{}{
				"presentationId": "DECK1",
				"replies": []map[string]interface{}{
					{"replaceAllText": map[string]interface{}{"occurrencesChanged": 2}},
				},
			})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func TestToolsRespectWriteMode(t *testing.T) {
	srv := googletest.NewServer(t, deckHandler(t))

	assert.Equal(t, []string{"slides_get_presentation", "slides_speaker_note_tags"},
		tooltest.Names(Tools(tooltest.NewContext(t, srv, false))))
	assert.Subset(t, tooltest.Names(Tools(tooltest.NewContext(t, srv, true))),
		[]string{"slides_replace_text", "slides_delete_objects", "slides_delete_tagged_slides"})
}

func TestGetPresentation(t *testing.T) {
	srv := googletest.NewServer(t, deckHandler(t))
	tools := Tools(tooltest.NewContext(t, srv, false))

	result := tooltest.Call(t, tools, "slides_get_presentation", map[string]interface{}{
		"presentation": "https://docs.google.com/presentation/d/DECK1/edit",
	})
	require.False(t, result.IsError, tooltest.Text(result))

	var p struct {
		ID     string `json:"presentationId"`
		Slides []struct {
			ObjectID string `json:"objectId"`
			Notes    string `json:"notes"`
		} `json:"slides"`
	}
	require.NoError(t, json.Unmarshal([]byte(tooltest.Text(result)), &p))
	assert.Equal(t, "DECK1", p.ID)
	require.Len(t, p.Slides, 3)
	assert.Equal(t, "#appendix #pricing", p.Slides[1].Notes)
	assert.Equal(t, "presentationId,title,slides", srv.Requests()[0].Query.Get("fields"))
}

func TestSpeakerNoteTags(t *testing.T) {
	srv := googletest.NewServer(t, deckHandler(t))
	tools := Tools(tooltest.NewContext(t, srv, false))

	result := tooltest.Call(t, tools, "slides_speaker_note_tags", map[string]interface{}{"presentation": "DECK1"})
	require.False(t, result.IsError, tooltest.Text(result))

	var out struct {
		Tags map[string][]string `json:"tags"`
	}
	require.NoError(t, json.Unmarshal([]byte(tooltest.Text(result)), &out))
	assert.Equal(t, map[string][]string{
		"#always":   {"s1"},
		"#appendix": {"s2", "s3"},
		"#pricing":  {"s2"},
	}, out.Tags)
}

func TestReplaceText(t *testing.T) {
	srv := googletest.NewServer(t, deckHandler(t))
	tools := Tools(tooltest.NewContext(t, srv, true))

	result := tooltest.Call(t, tools, "slides_replace_text", map[string]interface{}{
		"presentation": "DECK1",
		"newText":      "Acme",
	})
	require.False(t, result.IsError, tooltest.Text(result))
	assert.JSONEq(t, `{"occurrencesChanged": 2}`, tooltest.Text(result))

	var body struct {
		Requests []struct {
			ReplaceAllText struct {
				ContainsText struct {
					Text      string `json:"text"`
					MatchCase bool   `json:"matchCase"`
				} `json:"containsText"`
				ReplaceText string `json:"replaceText"`
			} `json:"replaceAllText"`
		} `json:"requests"`
	}
	srv.Requests()[0].Decode(t, &body)
	require.Len(t, body.Requests, 1)
	assert.Equal(t, "{{CLIENT_NAME}}", body.Requests[0].ReplaceAllText.ContainsText.Text)
	assert.Equal(t, "Acme", body.Requests[0].ReplaceAllText.ReplaceText)
}

func TestDeleteObjects(t *testing.T) {
	srv := googletest.NewServer(t, deckHandler(t))
	tools := Tools(tooltest.NewContext(t, srv, true))

	result := tooltest.Call(t, tools, "slides_delete_objects", map[string]interface{}{
		"presentation": "DECK1",
		"objectIds":    []interface{}{"s2", "s3"},
	})
	require.False(t, result.IsError, tooltest.Text(result))

	var body struct {
		Requests []struct {
			DeleteObject struct {
				ObjectID string `json:"objectId"`
			} `json:"deleteObject"`
		} `json:"requests"`
	}
	srv.Requests()[0].Decode(t, &body)
	require.Len(t, body.Requests, 2)
	assert.Equal(t, "s3", body.Requests[1].DeleteObject.ObjectID)

	result = tooltest.Call(t, tools, "slides_delete_objects", map[string]interface{}{"presentation": "DECK1"})
	assert.True(t, result.IsError)
	assert.Len(t, srv.Requests(), 1)
}

func TestDeleteTaggedSlides(t *testing.T) {
	srv := googletest.NewServer(t, deckHandler(t))
	tools := Tools(tooltest.NewContext(t, srv, true))

	result := tooltest.Call(t, tools, "slides_delete_tagged_slides", map[string]interface{}{
		"presentation": "DECK1",
		"tag":          "appendix",
	})
	require.False(t, result.IsError, tooltest.Text(result))
	assert.JSONEq(t, `{"deleted": ["s2", "s3"]}`, tooltest.Text(result))

	result = tooltest.Call(t, tools, "slides_delete_tagged_slides", map[string]interface{}{
		"presentation": "DECK1",
		"tag":          "#nothing",
	})
	require.False(t, result.IsError, tooltest.Text(result))
	assert.JSONEq(t, `{"deleted": []}`, tooltest.Text(result))
	assert.Len(t, srv.Requests(), 3, "a tag with no slides sends no batch update")
}
