package models

// FrameSample is a single still frame captured by the frame sampler.
// Samples live only for the duration of the analysis phase and are never
// persisted.
type FrameSample struct {
	Index       int    `json:"index"`
	TimestampMs int64  `json:"timestamp_ms"`
	ImageBase64 string `json:"image_base64"`
}

// Upload item statuses.
const (
	UploadStatusUploading = "uploading"
	UploadStatusDone      = "done"
	UploadStatusError     = "error"
)

// UploadItem tracks one file's upload lifecycle in memory. Progress runs
// 0-100; Project is set once the item reaches done.
type UploadItem struct {
	FileName string   `json:"file_name"`
	Progress int      `json:"progress"`
	Status   string   `json:"status"`
	Error    string   `json:"error,omitempty"`
	Project  *Project `json:"project,omitempty"`
}
