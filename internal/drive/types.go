package drive

import (
	"sort"
	"strings"
	"time"

	"github.com/teemow/goopy/internal/google"
)

// Google-native MIME types.
const (
	FolderMimeType       = "application/vnd.google-apps.folder"
	DocumentMimeType     = "application/vnd.google-apps.document"
	SpreadsheetMimeType  = "application/vnd.google-apps.spreadsheet"
	PresentationMimeType = "application/vnd.google-apps.presentation"
	FormMimeType         = "application/vnd.google-apps.form"
	DrawingMimeType      = "application/vnd.google-apps.drawing"
)

// FileType is the kind of empty Google-native file CreateFile can make.
type FileType string

const (
	TypeDocument     FileType = "document"
	TypeSpreadsheet  FileType = "spreadsheet"
	TypePresentation FileType = "presentation"
	TypeFolder       FileType = "folder"
	TypeForm         FileType = "form"
	TypeDrawing      FileType = "drawing"
)

var fileTypeMimes = map[FileType]string{
	TypeDocument:     DocumentMimeType,
	TypeSpreadsheet:  SpreadsheetMimeType,
	TypePresentation: PresentationMimeType,
	TypeFolder:       FolderMimeType,
	TypeForm:         FormMimeType,
	TypeDrawing:      DrawingMimeType,
}

// FileTypes lists the accepted file types in sorted order.
func FileTypes() []string {
	types := make([]string, 0, len(fileTypeMimes))
	for t := range fileTypeMimes {
		types = append(types, string(t))
	}
	sort.Strings(types)
	return types
}

// ParseFileType validates s against the supported file types.
func ParseFileType(s string) (FileType, error) {
	t := FileType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := fileTypeMimes[t]; !ok {
		return "", google.Invalid("file type", "%q is not one of %s", s, strings.Join(FileTypes(), ", "))
	}
	return t, nil
}

// MimeType returns the Google MIME type for t.
func (t FileType) MimeType() string {
	return fileTypeMimes[t]
}

// exportFormat describes the Office format a Google-native file downloads as.
type exportFormat struct {
	mimeType  string
	extension string
}

var exportFormats = map[string]exportFormat{
	DocumentMimeType:     {"application/vnd.openxmlformats-officedocument.wordprocessingml.document", ".docx"},
	SpreadsheetMimeType:  {"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", ".xlsx"},
	PresentationMimeType: {"application/vnd.openxmlformats-officedocument.presentationml.presentation", ".pptx"},
	DrawingMimeType:      {"image/png", ".png"},
}

// nativePrefix starts every Google Workspace MIME type.
const nativePrefix = "application/vnd.google-apps."

// downloadable reports whether files of mimeType have bytes to fetch, either
// stored content or an export format. Forms and the other Workspace types
// without an export have neither.
func downloadable(mimeType string) bool {
	if !strings.HasPrefix(mimeType, nativePrefix) {
		return true
	}
	_, ok := exportFormats[mimeType]
	return ok
}

// FileInfo represents metadata about a file or folder in Google Drive
type FileInfo struct {
	// ID is the unique identifier for the file
	ID string `json:"id"`

	// Name is the name of the file
	Name string `json:"name"`

	// MimeType is the MIME type of the file
	MimeType string `json:"mimeType"`

	// Size is the size of the file in bytes (not populated for Google-native files)
	Size int64 `json:"size,omitempty"`

	CreatedTime  time.Time `json:"createdTime,omitempty"`
	ModifiedTime time.Time `json:"modifiedTime,omitempty"`

	// WebViewLink opens the file in the relevant Google editor or viewer
	WebViewLink string `json:"webViewLink,omitempty"`

	// Parents are the IDs of the parent folders
	Parents []string `json:"parents,omitempty"`

	// DriveID is set for files on a shared drive
	DriveID string `json:"driveId,omitempty"`

	Owners  []User `json:"owners,omitempty"`
	Shared  bool   `json:"shared"`
	Trashed bool   `json:"trashed"`
}

// IsFolder reports whether the item is a Drive folder.
func (f *FileInfo) IsFolder() bool {
	return f.MimeType == FolderMimeType
}

// User represents a Google Drive user (owner, permission holder, etc.)
type User struct {
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
}

// Permission represents access permissions for a file
type Permission struct {
	// ID is the unique identifier for the permission
	ID string `json:"id"`

	// Type is the type of grantee (user, group, domain, anyone)
	Type string `json:"type"`

	// Role is the role granted by this permission (owner, organizer, fileOrganizer, writer, commenter, reader)
	Role string `json:"role"`

	EmailAddress string `json:"emailAddress,omitempty"`
	Domain       string `json:"domain,omitempty"`
	DisplayName  string `json:"displayName,omitempty"`
}

// ShareOptions contains options for sharing a file
type ShareOptions struct {
	// Type is the type of grantee: "user", "group", "domain", or "anyone"
	Type string

	// Role is the role to grant: "organizer", "fileOrganizer", "writer", "commenter", or "reader"
	Role string

	// EmailAddress is required if Type is "user" or "group"
	EmailAddress string

	// Domain is required if Type is "domain"
	Domain string

	// SendNotificationEmail indicates whether to send a notification email
	SendNotificationEmail bool

	// EmailMessage is a custom message to include in the notification email
	EmailMessage string
}

var (
	granteeTypes = map[string]bool{"user": true, "group": true, "domain": true, "anyone": true}
	shareRoles   = map[string]bool{"organizer": true, "fileOrganizer": true, "writer": true, "commenter": true, "reader": true}
)

func (o *ShareOptions) validate() error {
	if o == nil {
		return google.Invalid("share options", "required")
	}
	if !granteeTypes[o.Type] {
		return google.Invalid("permission type", "%q is not one of user, group, domain, anyone", o.Type)
	}
	if !shareRoles[o.Role] {
		return google.Invalid("permission role", "%q is not one of reader, commenter, writer, fileOrganizer, organizer", o.Role)
	}
	switch o.Type {
	case "user", "group":
		if o.EmailAddress == "" {
			return google.Invalid("email address", "required for %s permissions", o.Type)
		}
	case "domain":
		if o.Domain == "" {
			return google.Invalid("domain", "required for domain permissions")
		}
	}
	return nil
}
