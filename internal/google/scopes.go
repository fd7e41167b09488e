package google

import (
	drive "google.golang.org/api/drive/v3"
	sheets "google.golang.org/api/sheets/v4"
	slides "google.golang.org/api/slides/v1"
)

// Scopes requested per API. A session is authorized for the union of the
// scopes of every API it may be used with.
var (
	DriveScopes  = []string{drive.DriveScope}
	SheetsScopes = []string{sheets.SpreadsheetsScope}
	SlidesScopes = []string{slides.PresentationsScope}
)

// DefaultScopes is the union of DriveScopes, SheetsScopes and SlidesScopes.
// It is used when a CredentialSpec does not override its scopes.
var DefaultScopes = unionScopes(DriveScopes, SheetsScopes, SlidesScopes)

func unionScopes(sets ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, set := range sets {
		for _, s := range set {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}
