// Package techdetect extracts device, OS, app-version, and reproduction
// signals from feedback text.
package techdetect

import (
	"regexp"
	"strings"
)

// NoDetails is the sentinel returned when no signal is found. Downstream
// consumers compare against it to derive a has_technical_info flag, so the
// exact string is load-bearing.
const NoDetails = "No technical details found"

// Device names matched as plain substrings, in emission order. No
// deduplication beyond list order: a text naming both "samsung" and
// "galaxy" yields two entries.
var devices = []string{"iphone", "ipad", "android", "samsung", "galaxy", "pixel", "huawei"}

var (
	iosPattern     = regexp.MustCompile(`ios\s*(\d+\.?\d*)`)
	androidPattern = regexp.MustCompile(`android\s*(\d+\.?\d*)`)
	versionPattern = regexp.MustCompile(`version\s*(\d+\.\d+\.?\d*)`)
)

// Extractor pulls technical signals from text. Stateless.
type Extractor struct{}

// NewExtractor returns a technical-detail extractor.
func NewExtractor() *Extractor { return &Extractor{} }

// Extract returns the "; "-joined findings, or the NoDetails sentinel when
// nothing matched.
func (e *Extractor) Extract(text string) string {
	lower := strings.ToLower(text)

	var details []string
	for _, device := range devices {
		if strings.Contains(lower, device) {
			details = append(details, "Device: "+device)
		}
	}

	if m := iosPattern.FindStringSubmatch(lower); m != nil {
		details = append(details, "iOS: "+m[1])
	}
	if m := androidPattern.FindStringSubmatch(lower); m != nil {
		details = append(details, "Android: "+m[1])
	}
	if m := versionPattern.FindStringSubmatch(lower); m != nil {
		details = append(details, "App Version: "+m[1])
	}

	if HasReproductionSteps(text) {
		details = append(details, "Contains reproduction steps")
	}

	if len(details) == 0 {
		return NoDetails
	}
	return strings.Join(details, "; ")
}

// HasReproductionSteps reports whether the text mentions reproduction steps.
func HasReproductionSteps(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "steps") || strings.Contains(lower, "reproduce")
}

// HasDetails reports whether an Extract result carries any signal.
func HasDetails(result string) bool {
	return result != NoDetails
}
