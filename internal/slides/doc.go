// Package slides wraps the Google Slides API.
//
// Presentations are reshaped into [Presentation] values whose slides carry
// their speaker notes as plain text. Hashtags in those notes (for example
// "#appendix") tag slides so a template deck can be trimmed per audience with
// [Client.DeleteTaggedSlides]. Edits are built with the request helpers in
// this package and applied by [Client.BatchUpdate].
package slides
