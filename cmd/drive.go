package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/teemow/goopy/internal/drive"
	"github.com/teemow/goopy/internal/google"
)

func newDriveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drive",
		Short: "Create, copy, list, download and share Google Drive files",
		Long: `Work with Google Drive files and folders. Every FILE and FOLDER argument
accepts a Drive ID or any Google Docs, Sheets, Slides or Drive URL.`,
	}

	cmd.AddCommand(newDriveCreateCmd())
	cmd.AddCommand(newDriveCopyCmd())
	cmd.AddCommand(newDriveListCmd())
	cmd.AddCommand(newDriveGetCmd())
	cmd.AddCommand(newDriveDownloadCmd())
	cmd.AddCommand(newDriveDownloadFolderCmd())
	cmd.AddCommand(newDriveLinkCmd())
	cmd.AddCommand(newDriveShareCmd())
	cmd.AddCommand(newDriveRemoveCmd())
	return cmd
}

func newDriveCreateCmd() *cobra.Command {
	var fileType, folder string

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create an empty Google file or folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			id, err := a.drive().CreateFile(cmd.Context(), args[0], fileType, folder)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", id, drive.AccessLink(id))
			return nil
		},
	}

	cmd.Flags().StringVar(&fileType, "type", string(drive.TypeDocument), "File type: "+strings.Join(drive.FileTypes(), ", "))
	cmd.Flags().StringVar(&folder, "folder", "", "Parent folder ID or URL (default: My Drive root)")
	return cmd
}

func newDriveCopyCmd() *cobra.Command {
	var folder string

	cmd := &cobra.Command{
		Use:   "copy FILE TITLE",
		Short: "Copy a file under a new title",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			id, err := a.drive().CopyFile(cmd.Context(), args[1], args[0], folder)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", id, drive.AccessLink(id))
			return nil
		},
	}

	cmd.Flags().StringVar(&folder, "folder", "", "Destination folder ID or URL (default: the original's folder)")
	return cmd
}

func newDriveListCmd() *cobra.Command {
	var (
		mimeType string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "ls FOLDER",
		Short: "List the files in a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			files, err := a.drive().ListFolder(cmd.Context(), args[0], mimeType)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), files)
			}
			return printFiles(cmd.OutOrStdout(), files)
		},
	}

	cmd.Flags().StringVar(&mimeType, "mime-type", "", "Only list files of this MIME type")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newDriveGetCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "get FILE",
		Short: "Show file metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			file, err := a.drive().GetFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), file)
			}
			return printFiles(cmd.OutOrStdout(), []*drive.FileInfo{file})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newDriveDownloadCmd() *cobra.Command {
	var mimeType string

	cmd := &cobra.Command{
		Use:   "download FILE PATH",
		Short: "Download or export a file to a local path",
		Long: `Download a file to PATH. Google Docs, Sheets, Slides and Drawings are
exported as docx, xlsx, pptx and png; other files are downloaded as stored.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.drive().DownloadFile(cmd.Context(), args[0], args[1], mimeType); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Downloaded %s\n", args[1])
			return nil
		},
	}

	cmd.Flags().StringVar(&mimeType, "mime-type", "", "MIME type of the Drive file; skips the metadata lookup")
	return cmd
}

func newDriveDownloadFolderCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "download-folder FOLDER PATH",
		Short: "Download a folder tree to a local directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			links, err := a.drive().DownloadFolder(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), links)
			}
			return printLinks(cmd.OutOrStdout(), links)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the local path to link map as JSON")
	return cmd
}

func newDriveLinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "link FILE...",
		Short: "Print the sharing link of each file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, ref := range args {
				id, err := google.ExtractID(ref)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), drive.AccessLink(id))
			}
			return nil
		},
	}
}

func newDriveShareCmd() *cobra.Command {
	var opts drive.ShareOptions

	cmd := &cobra.Command{
		Use:   "share FILE",
		Short: "Grant a user, group, domain or anyone access to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			perm, err := a.drive().ShareFile(cmd.Context(), args[0], &opts)
			if err != nil {
				return err
			}
			grantee := perm.EmailAddress
			if grantee == "" {
				grantee = perm.Domain
			}
			if grantee == "" {
				grantee = perm.Type
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Granted %s to %s (permission %s)\n", perm.Role, grantee, perm.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Type, "type", "user", "Grantee type: user, group, domain or anyone")
	cmd.Flags().StringVar(&opts.Role, "role", "reader", "Role: reader, commenter, writer, fileOrganizer or organizer")
	cmd.Flags().StringVar(&opts.EmailAddress, "email", "", "Grantee email address (user and group)")
	cmd.Flags().StringVar(&opts.Domain, "domain", "", "Grantee domain (domain)")
	cmd.Flags().BoolVar(&opts.SendNotificationEmail, "notify", false, "Send a notification email")
	cmd.Flags().StringVar(&opts.EmailMessage, "message", "", "Message for the notification email")
	return cmd
}

func newDriveRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm FILE...",
		Short: "Permanently delete files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			for _, ref := range args {
				if err := a.drive().DeleteFile(cmd.Context(), ref); err != nil {
					return fmt.Errorf("failed to delete %s: %w", ref, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", ref)
			}
			return nil
		},
	}
}

func printFiles(w io.Writer, files []*drive.FileInfo) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tMODIFIED")
	for _, f := range files {
		modified := ""
		if !f.ModifiedTime.IsZero() {
			modified = f.ModifiedTime.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.ID, f.Name, shortMimeType(f.MimeType), modified)
	}
	return tw.Flush()
}

func printLinks(w io.Writer, links map[string]string) error {
	paths := make([]string, 0, len(links))
	for p := range links {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, p := range paths {
		fmt.Fprintf(tw, "%s\t%s\n", p, links[p])
	}
	return tw.Flush()
}

// shortMimeType turns application/vnd.google-apps.spreadsheet into spreadsheet.
func shortMimeType(mimeType string) string {
	if s, ok := strings.CutPrefix(mimeType, "application/vnd.google-apps."); ok {
		return s
	}
	return mimeType
}
