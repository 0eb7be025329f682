package confighash

import "regexp"

// pdfVarianceLines matches PDF dictionary entries that change between
// otherwise-identical renders of the same source: creation/modification
// timestamps and the producer string stamped in by the PDF toolchain.
var pdfVarianceLines = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^/CreationDate\s*\([^)]*\)\s*$`),
	regexp.MustCompile(`(?m)^/ModDate\s*\([^)]*\)\s*$`),
	regexp.MustCompile(`(?m)^/Producer\s*\([^)]*\)\s*$`),
}

// stripPDFVariance removes known variable byte ranges from a PDF so two
// builds of the same source fingerprint identically regardless of when
// or by which tool version they were produced.
func stripPDFVariance(data []byte) []byte {
	for _, re := range pdfVarianceLines {
		data = re.ReplaceAll(data, nil)
	}
	return data
}

// svgVarianceInstructions matches XML processing instructions and
// comments that carry a generation timestamp rather than content.
var svgVarianceInstructions = []*regexp.Regexp{
	regexp.MustCompile(`<\?xml[^>]*\?>\s*`),
	regexp.MustCompile(`<!--\s*Creator:.*?-->\s*`),
	regexp.MustCompile(`<!--\s*Generated by.*?-->\s*`),
}

// stripSVGVariance removes known variable byte ranges from an SVG.
func stripSVGVariance(data []byte) []byte {
	for _, re := range svgVarianceInstructions {
		data = re.ReplaceAll(data, nil)
	}
	return data
}
