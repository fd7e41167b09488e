package drive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	drive "google.golang.org/api/drive/v3"

	"github.com/teemow/goopy/internal/google"
	"github.com/teemow/goopy/internal/logging"
)

const (
	fileFields = "id, name, mimeType, size, createdTime, modifiedTime, webViewLink, parents, driveId, owners, shared, trashed"
	listFields = "nextPageToken, files(" + fileFields + ")"

	listPageSize = 1000
)

// Client wraps the Google Drive API for one credential spec.
type Client struct {
	source google.ClientSource
	logger *slog.Logger
}

// NewClient creates a Drive client. A nil logger means slog.Default().
func NewClient(source google.ClientSource, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{source: source, logger: logging.WithService(logger, "drive")}
}

func (c *Client) service(ctx context.Context) (*drive.Service, *google.ServiceClient, error) {
	sc, err := c.source.Client(ctx, google.DriveV3)
	if err != nil {
		return nil, nil, err
	}
	svc, err := google.Service[*drive.Service](sc)
	if err != nil {
		return nil, nil, err
	}
	return svc, sc, nil
}

// AccessLink returns the sharing URL for a file id.
func AccessLink(id string) string {
	return "https://drive.google.com/file/d/" + id + "/view?usp=sharing"
}

// CreateFile creates an empty Google-native file of fileType inside the folder
// referenced by folderRef and returns its id.
func (c *Client) CreateFile(ctx context.Context, name, fileType, folderRef string) (string, error) {
	t, err := ParseFileType(fileType)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(name) == "" {
		return "", google.Invalid("name", "required")
	}
	folderID, err := google.ExtractID(folderRef)
	if err != nil {
		return "", err
	}

	svc, sc, err := c.service(ctx)
	if err != nil {
		return "", err
	}

	file, err := svc.Files.Create(&drive.File{
		Name:     name,
		MimeType: t.MimeType(),
		Parents:  []string{folderID},
	}).
		Context(ctx).
		SupportsAllDrives(true).
		Fields("id").
		Do()
	if err != nil {
		return "", sc.MapError("files.create", err)
	}

	c.logger.Info("Created file", logging.FileID(file.Id), "type", string(t), "folder", folderID)
	return file.Id, nil
}

// CopyFile copies the file referenced by fileRef under a new title. When
// folderRef is empty the copy stays next to the original.
func (c *Client) CopyFile(ctx context.Context, title, fileRef, folderRef string) (string, error) {
	if strings.TrimSpace(title) == "" {
		return "", google.Invalid("title", "required")
	}
	fileID, err := google.ExtractID(fileRef)
	if err != nil {
		return "", err
	}
	copyMeta := &drive.File{Name: title}
	if folderRef != "" {
		folderID, err := google.ExtractID(folderRef)
		if err != nil {
			return "", err
		}
		copyMeta.Parents = []string{folderID}
	}

	svc, sc, err := c.service(ctx)
	if err != nil {
		return "", err
	}

	file, err := svc.Files.Copy(fileID, copyMeta).
		Context(ctx).
		SupportsAllDrives(true).
		Fields("id").
		Do()
	if err != nil {
		return "", sc.MapError("files.copy", err)
	}

	c.logger.Info("Copied file", logging.FileID(file.Id), "source", fileID)
	return file.Id, nil
}

// ListFolder returns the non-trashed children of a folder, optionally limited
// to one MIME type. Every page is fetched; shared drives are included.
func (c *Client) ListFolder(ctx context.Context, folderRef, mimeType string) ([]*FileInfo, error) {
	folderID, err := google.ExtractID(folderRef)
	if err != nil {
		return nil, err
	}

	svc, sc, err := c.service(ctx)
	if err != nil {
		return nil, err
	}

	var files []*FileInfo
	err = svc.Files.List().
		Q(folderQuery(folderID, mimeType)).
		PageSize(listPageSize).
		Spaces("drive").
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Fields(listFields).
		Pages(ctx, func(page *drive.FileList) error {
			for _, f := range page.Files {
				files = append(files, convertToFileInfo(f))
			}
			return nil
		})
	if err != nil {
		return nil, sc.MapError("files.list", err)
	}

	c.logger.Debug("Listed folder", logging.FileID(folderID), "count", len(files))
	return files, nil
}

// folderQuery builds the Drive search expression for the children of a folder.
func folderQuery(folderID, mimeType string) string {
	q := fmt.Sprintf("'%s' in parents", folderID)
	if mimeType != "" {
		q += fmt.Sprintf(" and mimeType='%s'", escapeQuery(mimeType))
	}
	return q + " and trashed=false"
}

func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}

// GetFile retrieves metadata for a file or folder.
func (c *Client) GetFile(ctx context.Context, fileRef string) (*FileInfo, error) {
	fileID, err := google.ExtractID(fileRef)
	if err != nil {
		return nil, err
	}

	svc, sc, err := c.service(ctx)
	if err != nil {
		return nil, err
	}

	file, err := svc.Files.Get(fileID).
		Context(ctx).
		SupportsAllDrives(true).
		Fields(fileFields).
		Do()
	if err != nil {
		return nil, sc.MapError("files.get", err)
	}

	return convertToFileInfo(file), nil
}

// DownloadFile saves a file to localPath, creating parent directories.
// Google documents, spreadsheets, presentations and drawings are exported to
// the matching Office or image format; other files are downloaded as stored.
// An empty mimeType is looked up from the file's metadata.
func (c *Client) DownloadFile(ctx context.Context, fileRef, localPath, mimeType string) error {
	fileID, err := google.ExtractID(fileRef)
	if err != nil {
		return err
	}
	if localPath == "" {
		return google.Invalid("local path", "required")
	}

	if mimeType == "" {
		info, err := c.GetFile(ctx, fileID)
		if err != nil {
			return err
		}
		mimeType = info.MimeType
	}
	if mimeType == FolderMimeType {
		return google.Invalid("file", "%s is a folder, use DownloadFolder", fileID)
	}
	if !downloadable(mimeType) {
		return google.Invalid("file", "%s has type %s, which cannot be downloaded or exported", fileID, mimeType)
	}

	svc, sc, err := c.service(ctx)
	if err != nil {
		return err
	}

	op := "files.get"
	var body io.ReadCloser
	if format, ok := exportFormats[mimeType]; ok {
		op = "files.export"
		resp, err := svc.Files.Export(fileID, format.mimeType).Context(ctx).Download()
		if err != nil {
			return sc.MapError(op, err)
		}
		body = resp.Body
	} else {
		resp, err := svc.Files.Get(fileID).Context(ctx).SupportsAllDrives(true).Download()
		if err != nil {
			return sc.MapError(op, err)
		}
		body = resp.Body
	}
	defer body.Close()

	n, err := writeFile(localPath, body)
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", localPath, err)
	}

	c.logger.Info("Downloaded file", logging.FileID(fileID), "path", localPath, "bytes", n)
	return nil
}

// writeFile writes r to path through a temporary file in the same directory.
func writeFile(path string, r io.Reader) (int64, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.part")
	if err != nil {
		return 0, err
	}
	tmpPath := tmp.Name()

	n, err := io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Rename(tmpPath, path)
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return n, err
	}
	return n, nil
}

// DownloadFolder downloads every file below a folder into localPath,
// recreating the folder tree. It returns each downloaded file's path relative
// to localPath mapped to its access link. Exported Google-native files get the
// Office extension appended when their name lacks it. Workspace files with no
// export format, such as forms, are skipped.
func (c *Client) DownloadFolder(ctx context.Context, folderRef, localPath string) (map[string]string, error) {
	folderID, err := google.ExtractID(folderRef)
	if err != nil {
		return nil, err
	}
	if localPath == "" {
		return nil, google.Invalid("local path", "required")
	}

	links := make(map[string]string)
	if err := c.downloadTree(ctx, folderID, localPath, "", links); err != nil {
		return links, err
	}
	return links, nil
}

func (c *Client) downloadTree(ctx context.Context, folderID, root, rel string, links map[string]string) error {
	items, err := c.ListFolder(ctx, folderID, "")
	if err != nil {
		return err
	}

	for _, item := range items {
		name := safeName(item.Name)
		if item.IsFolder() {
			if err := c.downloadTree(ctx, item.ID, root, filepath.Join(rel, name), links); err != nil {
				return err
			}
			continue
		}
		if !downloadable(item.MimeType) {
			c.logger.Warn("Skipping file without downloadable content",
				logging.FileID(item.ID), "name", item.Name, "mime_type", item.MimeType)
			continue
		}

		if format, ok := exportFormats[item.MimeType]; ok && !strings.HasSuffix(strings.ToLower(name), format.extension) {
			name += format.extension
		}
		itemRel := filepath.Join(rel, name)
		if err := c.DownloadFile(ctx, item.ID, filepath.Join(root, itemRel), item.MimeType); err != nil {
			return err
		}
		links[filepath.ToSlash(itemRel)] = AccessLink(item.ID)
	}
	return nil
}

// safeName keeps a Drive item name from escaping its directory.
func safeName(name string) string {
	name = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == 0 {
			return '_'
		}
		return r
	}, name)
	switch strings.TrimSpace(name) {
	case "", ".", "..":
		return "_" + name
	}
	return name
}

// ShareFile creates a permission on a file to share it
func (c *Client) ShareFile(ctx context.Context, fileRef string, options *ShareOptions) (*Permission, error) {
	fileID, err := google.ExtractID(fileRef)
	if err != nil {
		return nil, err
	}
	if err := options.validate(); err != nil {
		return nil, err
	}

	svc, sc, err := c.service(ctx)
	if err != nil {
		return nil, err
	}

	permission := &drive.Permission{
		Type:         options.Type,
		Role:         options.Role,
		EmailAddress: options.EmailAddress,
		Domain:       options.Domain,
	}

	call := svc.Permissions.Create(fileID, permission).
		Context(ctx).
		SupportsAllDrives(true).
		SendNotificationEmail(options.SendNotificationEmail).
		Fields("id, type, role, emailAddress, domain, displayName")
	if options.SendNotificationEmail && options.EmailMessage != "" {
		call = call.EmailMessage(options.EmailMessage)
	}

	drivePermission, err := call.Do()
	if err != nil {
		return nil, sc.MapError("permissions.create", err)
	}

	return convertToPermission(drivePermission), nil
}

// DeleteFile permanently deletes a file, skipping the trash.
func (c *Client) DeleteFile(ctx context.Context, fileRef string) error {
	fileID, err := google.ExtractID(fileRef)
	if err != nil {
		return err
	}

	svc, sc, err := c.service(ctx)
	if err != nil {
		return err
	}

	if err := svc.Files.Delete(fileID).Context(ctx).SupportsAllDrives(true).Do(); err != nil {
		return sc.MapError("files.delete", err)
	}

	c.logger.Info("Deleted file", logging.FileID(fileID))
	return nil
}

// convertToFileInfo converts a Drive API File to our FileInfo type
func convertToFileInfo(f *drive.File) *FileInfo {
	fileInfo := &FileInfo{
		ID:          f.Id,
		Name:        f.Name,
		MimeType:    f.MimeType,
		Size:        f.Size,
		WebViewLink: f.WebViewLink,
		Parents:     f.Parents,
		DriveID:     f.DriveId,
		Shared:      f.Shared,
		Trashed:     f.Trashed,
	}

	if t, err := time.Parse(time.RFC3339, f.CreatedTime); err == nil {
		fileInfo.CreatedTime = t
	}
	if t, err := time.Parse(time.RFC3339, f.ModifiedTime); err == nil {
		fileInfo.ModifiedTime = t
	}

	for _, owner := range f.Owners {
		fileInfo.Owners = append(fileInfo.Owners, User{
			DisplayName:  owner.DisplayName,
			EmailAddress: owner.EmailAddress,
		})
	}

	return fileInfo
}

// convertToPermission converts a Drive API Permission to our Permission type
func convertToPermission(p *drive.Permission) *Permission {
	return &Permission{
		ID:           p.Id,
		Type:         p.Type,
		Role:         p.Role,
		EmailAddress: p.EmailAddress,
		Domain:       p.Domain,
		DisplayName:  p.DisplayName,
	}
}
