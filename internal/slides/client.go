package slides

import (
	"context"
	"log/slog"
	"strings"

	"google.golang.org/api/googleapi"
	slides "google.golang.org/api/slides/v1"

	"github.com/teemow/goopy/internal/google"
	"github.com/teemow/goopy/internal/logging"
)

// Client wraps the Google Slides API for one credential spec.
type Client struct {
	source google.ClientSource
	logger *slog.Logger
}

// NewClient creates a Slides client. A nil logger means slog.Default().
func NewClient(source google.ClientSource, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{source: source, logger: logging.WithService(logger, "slides")}
}

func (c *Client) service(ctx context.Context) (*slides.Service, *google.ServiceClient, error) {
	sc, err := c.source.Client(ctx, google.SlidesV1)
	if err != nil {
		return nil, nil, err
	}
	svc, err := google.Service[*slides.Service](sc)
	if err != nil {
		return nil, nil, err
	}
	return svc, sc, nil
}

// GetPresentation fetches a presentation. fields is a partial response mask;
// empty means DefaultFields.
func (c *Client) GetPresentation(ctx context.Context, ref, fields string) (*Presentation, error) {
	id, err := google.ExtractID(ref)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(fields) == "" {
		fields = DefaultFields
	}

	svc, sc, err := c.service(ctx)
	if err != nil {
		return nil, err
	}

	p, err := svc.Presentations.Get(id).
		Context(ctx).
		Fields(googleapi.Field(fields)).
		Do()
	if err != nil {
		return nil, sc.MapError("presentations.get", err)
	}

	out := convertPresentation(p)
	if out.ID == "" {
		out.ID = id
	}
	return out, nil
}

// BatchUpdate applies requests to a presentation atomically.
func (c *Client) BatchUpdate(ctx context.Context, ref string, requests []*slides.Request) (*BatchResult, error) {
	id, err := google.ExtractID(ref)
	if err != nil {
		return nil, err
	}
	if len(requests) == 0 {
		return nil, google.Invalid("requests", "at least one request is required")
	}

	svc, sc, err := c.service(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := svc.Presentations.BatchUpdate(id, &slides.BatchUpdatePresentationRequest{Requests: requests}).
		Context(ctx).
		Do()
	if err != nil {
		return nil, sc.MapError("presentations.batchUpdate", err)
	}

	result := &BatchResult{PresentationID: id, Replies: len(resp.Replies)}
	for _, r := range resp.Replies {
		if r != nil && r.ReplaceAllText != nil {
			result.OccurrencesChanged += r.ReplaceAllText.OccurrencesChanged
		}
	}

	c.logger.Info("Presentation updated", logging.FileID(id), "requests", len(requests))
	return result, nil
}

// ReplaceText replaces findText (DefaultFindText when empty) with newText on
// every slide and returns the number of occurrences changed.
func (c *Client) ReplaceText(ctx context.Context, ref, newText, findText string) (int64, error) {
	res, err := c.BatchUpdate(ctx, ref, []*slides.Request{ReplaceTextRequest(newText, findText)})
	if err != nil {
		return 0, err
	}
	return res.OccurrencesChanged, nil
}

// DeleteObjects deletes the given slides or page elements in one batch.
func (c *Client) DeleteObjects(ctx context.Context, ref string, objectIDs []string) (*BatchResult, error) {
	requests := make([]*slides.Request, 0, len(objectIDs))
	for _, oid := range objectIDs {
		if strings.TrimSpace(oid) == "" {
			return nil, google.Invalid("object id", "must not be empty")
		}
		requests = append(requests, DeleteObjectRequest(oid))
	}
	return c.BatchUpdate(ctx, ref, requests)
}

// DeleteTaggedSlides deletes every slide whose speaker notes carry tag and
// returns the deleted slide IDs. The leading "#" is optional. No request is
// sent when no slide matches.
func (c *Client) DeleteTaggedSlides(ctx context.Context, ref, tag string) ([]string, error) {
	tag = normalizeTag(tag)
	if tagPattern.FindString(tag) != tag || tag == "" {
		return nil, google.Invalid("tag", "%q is not a hashtag", tag)
	}

	p, err := c.GetPresentation(ctx, ref, "")
	if err != nil {
		return nil, err
	}

	ids := TagsFromSpeakerNotes(p.Slides)[tag]
	if len(ids) == 0 {
		c.logger.Info("No slides carry tag", logging.FileID(p.ID), "tag", tag)
		return nil, nil
	}
	if _, err := c.DeleteObjects(ctx, p.ID, ids); err != nil {
		return nil, err
	}
	return ids, nil
}
