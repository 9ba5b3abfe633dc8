package pages

import (
	"strings"

	"github.com/playwright-community/playwright-go"
)

// FramePath names a chain of nested iframes starting at the root page.
//
// The console replaces frame documents on every navigation, so a FramePath is
// resolved from the root page each time it is used and the result must not be
// kept across navigations.
type FramePath []string

var (
	// ContentArea is the frame holding the screen content.
	ContentArea = FramePath{frameByName(ContentFrameName)}
	// CriteriaDialog is the advanced search "Add criteria" dialog. It is
	// attached to the outer page, not to the content frame.
	CriteriaDialog = FramePath{frameByName(CriteriaDialogFrameName)}
	// CriteriaFields is the field list inside the criteria dialog.
	CriteriaFields = FramePath{frameByName(CriteriaDialogFrameName), frameByName(CriteriaFieldsFrameName)}
	// Uploader is the file upload widget of the contact form.
	Uploader = FramePath{frameByName(ContentFrameName), frameByName(UploaderFrameName)}
)

// In resolves the path against page.
func (fp FramePath) In(page playwright.Page) playwright.FrameLocator {
	if len(fp) == 0 {
		panic("empty frame path")
	}
	fl := page.FrameLocator(fp[0])
	for _, sel := range fp[1:] {
		fl = fl.FrameLocator(sel)
	}
	return fl
}

// Child extends the path by one frame.
func (fp FramePath) Child(selector string) FramePath {
	child := make(FramePath, 0, len(fp)+1)
	child = append(child, fp...)
	return append(child, selector)
}

func (fp FramePath) String() string {
	return strings.Join(fp, " >> ")
}
