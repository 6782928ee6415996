package model

// AnalysisResult is the output of the image-analysis routine for one input.
// Identical inputs are expected to produce equivalent results.
type AnalysisResult struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}
