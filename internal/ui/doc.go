// Package ui formats datacard's terminal output.
//
// Each Formatter names a kind of content rather than a color. With a color
// terminal the text is painted; when NO_COLOR is set or fatih/color decides
// the output is not a terminal, a plain decoration is used instead:
//
//	ui.Code.Sprint("datacard card import")  // `datacard card import`
//	ui.Highlight.Sprint("v2-encrypted")     // 'v2-encrypted'
//	ui.Muted.Sprint("2.0 KiB")              // (2.0 KiB)
//	ui.Path.Sprint("card.png")              // card.png
//
// Spinner messages start with a status mark from Done, Failed, Caution or
// Note, and follow-up suggestions start with Hint.
package ui
