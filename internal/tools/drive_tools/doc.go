// Package drive_tools exposes the Drive wrapper as MCP tools.
//
// Read-only tools, always registered:
//   - drive_list_folder: List the files in a folder
//   - drive_get_file: Get metadata for one or more files
//   - drive_access_link: Build sharing links from file URLs or IDs
//
// Write tools, registered only when writes are enabled (--yolo):
//   - drive_create_file: Create an empty Google-native file or folder
//   - drive_copy_file: Copy a file into a folder
//   - drive_share_file: Grant a permission on one or more files
//
// Files and folders are given as Drive/Docs URLs or bare IDs.
//
// Example tool usage:
//
//	drive_list_folder({
//	  folder: "https://drive.google.com/drive/folders/1AbC",
//	  mimeType: "application/vnd.google-apps.spreadsheet"
//	})
//
//	drive_create_file({
//	  name: "Q3 plan",
//	  fileType: "spreadsheet",
//	  folder: "1AbC"
//	})
package drive_tools
