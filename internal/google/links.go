package google

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	bareIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

	linkPatterns = []*regexp.Regexp{
		// docs.google.com/spreadsheets/d/<id>/edit, /presentation/d/<id>, ...
		regexp.MustCompile(`/(?:spreadsheets|presentation|document|forms|drawings)/d/([A-Za-z0-9_-]+)`),
		// drive.google.com/drive/folders/<id>, /drive/u/0/folders/<id>
		regexp.MustCompile(`/drive/(?:u/\d+/)?(?:folders|d)/([A-Za-z0-9_-]+)`),
		// drive.google.com/file/d/<id>/view
		regexp.MustCompile(`/file/d/([A-Za-z0-9_-]+)`),
	}
)

// ExtractID normalizes a Drive, Docs, Sheets or Slides URL, or a bare id, to
// the bare resource id. Query strings and fragments are ignored except for an
// explicit id= parameter.
func ExtractID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", Invalid("reference", "empty link or id")
	}
	if bareIDPattern.MatchString(ref) {
		return ref, nil
	}

	u, err := url.Parse(ref)
	if err != nil || u.Host == "" {
		return "", Invalid("reference", "%q is neither a Google URL nor a bare id", ref)
	}

	for _, re := range linkPatterns {
		if m := re.FindStringSubmatch(u.Path); m != nil {
			return m[1], nil
		}
	}
	if id := u.Query().Get("id"); id != "" && bareIDPattern.MatchString(id) {
		return id, nil
	}

	return "", Invalid("reference", "no file or folder id found in %q", ref)
}

// ResolveID returns id when it is set and otherwise extracts the id from link.
func ResolveID(link, id string) (string, error) {
	if id = strings.TrimSpace(id); id != "" {
		if !bareIDPattern.MatchString(id) {
			return "", Invalid("id", "%q contains characters not allowed in a Google id", id)
		}
		return id, nil
	}
	return ExtractID(link)
}
