package prompt

import (
	"fmt"
	"net/url"

	"github.com/aleister1102/sitecheck/internal/models"
)

// TemplateHint produces a deterministic remediation hint for a defect. One
// template per defect type, substituting the page path and the defect's
// title or a truncation of its details. Used whenever the external tier is
// unavailable or fails for a batch.
func TemplateHint(defect models.Defect) string {
	page := pagePath(defect.Page)
	details := truncateDetails(defect.Details, 160)

	switch defect.Type {
	case models.DefectTypeConsoleError:
		return fmt.Sprintf(
			"A JavaScript error occurs on %s: %s. Open the page with your browser's developer console to find the failing script and line. Fix the error or guard the code so it degrades gracefully, then reload the page and confirm the console stays clean.",
			page, details)
	case models.DefectTypeNetworkError:
		return fmt.Sprintf(
			"A request made by %s is failing: %s. Check that the resource exists at that URL and that the server or third-party endpoint is reachable. Update the reference if the resource moved, or remove it if it is no longer needed.",
			page, details)
	case models.DefectTypeBrokenLink:
		return fmt.Sprintf(
			"A link on %s points to a destination that no longer responds (%s). Update the link to the current address of the content, or remove it if the destination is gone. Redirecting the old URL on your side also works if you control the target.",
			page, details)
	case models.DefectTypeBrokenImage:
		return fmt.Sprintf(
			"An image on %s is not loading: %s. Verify the image file exists at the referenced path and is publicly accessible. Re-upload the file or correct the src attribute, and add meaningful alt text while you are there.",
			page, details)
	case models.DefectTypeAccessibility:
		return fmt.Sprintf(
			"An accessibility issue was found on %s: %s. This makes the page harder to use with assistive technology such as screen readers. Apply the suggested fix to the affected elements and re-test with a keyboard and a screen reader.",
			page, defect.Title)
	case models.DefectTypeResponsive:
		return fmt.Sprintf(
			"The layout of %s overflows horizontally on smaller screens (%s). Look for fixed-width elements, oversized images, or long unbroken text that exceed the viewport. Constrain them with max-width or responsive units so the page fits without sideways scrolling.",
			page, details)
	default:
		return fmt.Sprintf(
			"An issue was found on %s: %s. Review the details and adjust the page so the reported behavior no longer occurs.",
			page, details)
	}
}

// pagePath reduces a page URL to its path for readable hint text.
func pagePath(pageURL string) string {
	parsed, err := url.Parse(pageURL)
	if err != nil || parsed.Path == "" {
		return pageURL
	}
	return parsed.Path
}

func truncateDetails(details string, max int) string {
	runes := []rune(details)
	if len(runes) <= max {
		return details
	}
	return string(runes[:max]) + "..."
}
