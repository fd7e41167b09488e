// Package drive provides a client for the Google Drive v3 API.
//
// The client covers the file operations goopy needs:
//   - Creating empty documents, spreadsheets, presentations, forms, drawings and folders
//   - Copying files into a folder
//   - Listing the children of a folder across every page and shared drive
//   - Downloading files, exporting Google-native files to Office formats
//   - Downloading whole folder trees
//   - Sharing and deleting files
//
// Every operation accepts either a Drive/Docs URL or a bare id for files and
// folders. Arguments are validated before any request is sent; failures come
// back as the error kinds of the google package.
//
// Example usage:
//
//	registry := google.NewRegistry(google.NewResolver())
//	client := drive.NewClient(registry.For(spec), slog.Default())
//
//	id, err := client.CreateFile(ctx, "Q3 plan", "spreadsheet",
//	    "https://drive.google.com/drive/folders/ABC123")
//	if err != nil {
//	    log.Fatal(err)
//	}
package drive
