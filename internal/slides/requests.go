package slides

import (
	slides "google.golang.org/api/slides/v1"
)

// CreateImageRequest places the image at imageURL on slideID with the size
// and position of over, typically a placeholder shape that is deleted in the
// same batch.
func CreateImageRequest(imageURL, slideID string, over Element) *slides.Request {
	return &slides.Request{
		CreateImage: &slides.CreateImageRequest{
			Url: imageURL,
			ElementProperties: &slides.PageElementProperties{
				PageObjectId: slideID,
				Size:         over.Size,
				Transform:    over.Transform,
			},
		},
	}
}

// DeleteObjectRequest deletes a page or page element.
func DeleteObjectRequest(objectID string) *slides.Request {
	return &slides.Request{
		DeleteObject: &slides.DeleteObjectRequest{ObjectId: objectID},
	}
}

// ReplaceTextRequest replaces every case-insensitive occurrence of findText
// on all pages with newText. An empty findText means DefaultFindText.
func ReplaceTextRequest(newText, findText string) *slides.Request {
	if findText == "" {
		findText = DefaultFindText
	}
	return &slides.Request{
		ReplaceAllText: &slides.ReplaceAllTextRequest{
			ContainsText: &slides.SubstringMatchCriteria{
				Text:            findText,
				MatchCase:       false,
				ForceSendFields: []string{"MatchCase"},
			},
			ReplaceText:     newText,
			ForceSendFields: []string{"ReplaceText"},
		},
	}
}
