package codec

// Tuning holds the thresholds for face-aware crop suggestions and output
// encoding.
type Tuning struct {
	FaceIoUThreshold     float64 `json:"face_iou_threshold"`       // Default: 0.2 (Clustering)
	FaceScaleFactor      float64 `json:"face_scale_factor"`        // Default: 1.1 (pigo internal)
	FaceDetectConfidence float32 `json:"face_detect_confidence"`   // Default: 10.0 (Base filter)
	FaceDetectMinSizePct int     `json:"face_detect_min_size_pct"` // Default: 1 (1% of min dim)
	FaceDetectShift      float64 `json:"face_detect_shift"`        // Default: 0.1 (Stride)

	DitherThreshold float32 `json:"dither_threshold"` // Default: 128
	EncodingQuality int     `json:"encoding_quality"` // Default: 95
}

// DefaultTuning returns the standard values.
func DefaultTuning() Tuning {
	return Tuning{
		FaceIoUThreshold:     0.2,
		FaceScaleFactor:      1.1,
		FaceDetectConfidence: 10.0,
		FaceDetectMinSizePct: 1,
		FaceDetectShift:      0.1,
		DitherThreshold:      128,
		EncodingQuality:      95,
	}
}
