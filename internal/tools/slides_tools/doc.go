// Package slides_tools exposes the Slides wrapper as MCP tools.
//
// Read-only tools:
//   - slides_get_presentation: Slides with their elements and speaker notes
//   - slides_speaker_note_tags: Hashtags in speaker notes mapped to slide IDs
//
// Write tools (--yolo):
//   - slides_replace_text: Replace a placeholder such as {{CLIENT_NAME}}
//   - slides_delete_objects: Delete slides or page elements
//   - slides_delete_tagged_slides: Delete the slides carrying a hashtag
//
// A typical flow copies a template deck with drive_copy_file, fills in the
// client name with slides_replace_text and drops optional slides tagged
// #appendix with slides_delete_tagged_slides.
package slides_tools
