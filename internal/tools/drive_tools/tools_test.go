package drive_tools

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/goopy/internal/google/googletest"
	"github.com/teemow/goopy/internal/tools/batch"
	"github.com/teemow/goopy/internal/tools/tooltest"
)

func TestToolsRespectWriteMode(t *testing.T) {
	srv := googletest.NewServer(t, func(w http.ResponseWriter, r *http.Request) {})

	readOnly := tooltest.Names(Tools(tooltest.NewContext(t, srv, false)))
	assert.Equal(t, []string{"drive_list_folder", "drive_get_file", "drive_access_link"}, readOnly)

	all := tooltest.Names(Tools(tooltest.NewContext(t, srv, true)))
	assert.Subset(t, all, readOnly)
	assert.Subset(t, all, []string{"drive_create_file", "drive_copy_file", "drive_share_file"})
}

func TestListFolder(t *testing.T) {
	srv := googletest.NewServer(t, func(w http.ResponseWriter, r *http.Request) {
		googletest.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"files": []map[string]string{
				{"id": "s1", "name": "Budget", "mimeType": "application/vnd.google-apps.spreadsheet"},
			},
		})
	})
	tools := Tools(tooltest.NewContext(t, srv, false))

	result := tooltest.Call(t, tools, "drive_list_folder", map[string]interface{}{
		"folder": "https://drive.google.com/drive/u/0/folders/ROOT",
	})
	require.False(t, result.IsError, tooltest.Text(result))

	var out struct {
		Count int `json:"count"`
		Files []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"files"`
	}
	require.NoError(t, json.Unmarshal([]byte(tooltest.Text(result)), &out))
	assert.Equal(t, 1, out.Count)
	assert.Equal(t, "Budget", out.Files[0].Name)

	q := srv.Requests()[0].Query.Get("q")
	assert.Contains(t, q, "'ROOT' in parents")
}

func TestListFolderRequiresFolder(t *testing.T) {
	srv := googletest.NewServer(t, func(w http.ResponseWriter, r *http.Request) {})
	tools := Tools(tooltest.NewContext(t, srv, false))

	result := tooltest.Call(t, tools, "drive_list_folder", map[string]interface{}{})
	assert.True(t, result.IsError)
	assert.Contains(t, tooltest.Text(result), "invalid folder")
	assert.Empty(t, srv.Requests())
}

func TestGetFile(t *testing.T) {
	srv := googletest.NewServer(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/missing") {
			googletest.WriteError(w, http.StatusNotFound, "notFound", "File not found: missing.")
			return
		}
		googletest.WriteJSON(w, http.StatusOK, map[string]string{"id": "f1", "name": "report.pdf"})
	})
	tools := Tools(tooltest.NewContext(t, srv, false))

	t.Run("single file", func(t *testing.T) {
		result := tooltest.Call(t, tools, "drive_get_file", map[string]interface{}{"files": "f1"})
		require.False(t, result.IsError)
		assert.Contains(t, tooltest.Text(result), `"name": "report.pdf"`)
	})

	t.Run("single missing file carries hint", func(t *testing.T) {
		result := tooltest.Call(t, tools, "drive_get_file", map[string]interface{}{"files": "missing"})
		require.True(t, result.IsError)
		assert.Contains(t, tooltest.Text(result), "hint:")
	})

	t.Run("batch with partial failure", func(t *testing.T) {
		result := tooltest.Call(t, tools, "drive_get_file", map[string]interface{}{
			"files": []interface{}{"f1", "missing"},
		})
		require.False(t, result.IsError)

		var summary batch.Summary
		require.NoError(t, json.Unmarshal([]byte(tooltest.Text(result)), &summary))
		assert.Equal(t, 2, summary.Total)
		assert.Equal(t, 1, summary.Successful)
		assert.Equal(t, batch.StatusError, summary.Results[1].Status)
	})
}

func TestAccessLink(t *testing.T) {
	srv := googletest.NewServer(t, func(w http.ResponseWriter, r *http.Request) {})
	tools := Tools(tooltest.NewContext(t, srv, false))

	result := tooltest.Call(t, tools, "drive_access_link", map[string]interface{}{
		"files": []interface{}{"https://docs.google.com/spreadsheets/d/S1/edit#gid=0", "not a link"},
	})
	require.False(t, result.IsError)

	var summary batch.Summary
	require.NoError(t, json.Unmarshal([]byte(tooltest.Text(result)), &summary))
	assert.Equal(t, "https://drive.google.com/file/d/S1/view?usp=sharing", summary.Results[0].Value)
	assert.Equal(t, batch.StatusError, summary.Results[1].Status)
	assert.Empty(t, srv.Requests(), "access links are built locally")
}

func TestCreateFile(t *testing.T) {
	srv := googletest.NewServer(t, func(w http.ResponseWriter, r *http.Request) {
		googletest.WriteJSON(w, http.StatusOK, map[string]string{"id": "new-doc"})
	})
	tools := Tools(tooltest.NewContext(t, srv, true))

	result := tooltest.Call(t, tools, "drive_create_file", map[string]interface{}{
		"name":     "Minutes",
		"fileType": "document",
		"folder":   "FOLDER1",
	})
	require.False(t, result.IsError, tooltest.Text(result))
	assert.JSONEq(t, `{"id": "new-doc", "link": "https://drive.google.com/file/d/new-doc/view?usp=sharing"}`, tooltest.Text(result))

	var body struct {
		MimeType string   `json:"mimeType"`
		Parents  []string `json:"parents"`
	}
	srv.Requests()[0].Decode(t, &body)
	assert.Equal(t, "application/vnd.google-apps.document", body.MimeType)
	assert.Equal(t, []string{"FOLDER1"}, body.Parents)
}

func TestCreateFileRejectsUnknownType(t *testing.T) {
	srv := googletest.NewServer(t, func(w http.ResponseWriter, r *http.Request) {})
	tools := Tools(tooltest.NewContext(t, srv, true))

	result := tooltest.Call(t, tools, "drive_create_file", map[string]interface{}{
		"name": "Minutes", "fileType": "spreadsheet2", "folder": "FOLDER1",
	})
	assert.True(t, result.IsError)
	assert.Contains(t, tooltest.Text(result), "invalid file type")
	assert.Empty(t, srv.Requests())
}

func TestCopyFile(t *testing.T) {
	srv := googletest.NewServer(t, func(w http.ResponseWriter, r *http.Request) {
		googletest.WriteJSON(w, http.StatusOK, map[string]string{"id": "copy-id"})
	})
	tools := Tools(tooltest.NewContext(t, srv, true))

	result := tooltest.Call(t, tools, "drive_copy_file", map[string]interface{}{
		"file":   "https://docs.google.com/presentation/d/SRC/edit",
		"title":  "Client deck",
		"folder": "DEST",
	})
	require.False(t, result.IsError, tooltest.Text(result))
	assert.Equal(t, "/files/SRC/copy", srv.Requests()[0].Path)
}

func TestShareFile(t *testing.T) {
	srv := googletest.NewServer(t, func(w http.ResponseWriter, r *http.Request) {
		googletest.WriteJSON(w, http.StatusOK, map[string]string{"id": "perm1", "type": "anyone", "role": "reader"})
	})
	tools := Tools(tooltest.NewContext(t, srv, true))

	result := tooltest.Call(t, tools, "drive_share_file", map[string]interface{}{
		"files": "F1", "type": "anyone", "role": "reader",
	})
	require.False(t, result.IsError, tooltest.Text(result))
	assert.Equal(t, "/files/F1/permissions", srv.Requests()[0].Path)

	result = tooltest.Call(t, tools, "drive_share_file", map[string]interface{}{
		"files": "F1", "type": "user", "role": "writer",
	})
	require.False(t, result.IsError)
	var summary batch.Summary
	require.NoError(t, json.Unmarshal([]byte(tooltest.Text(result)), &summary))
	assert.Contains(t, summary.Results[0].Error, "email address")
	assert.Len(t, srv.Requests(), 1, "invalid share options never reach the API")
}
