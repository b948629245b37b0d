package downloader

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// FileError records one failed download or upload.
type FileError struct {
	Course string `json:"course"`
	Module string `json:"module,omitempty"`
	File   string `json:"file"`
	Error  string `json:"error"`
}

// Report aggregates the outcome of one downloader run. Each run builds
// its own Report, so repeated or concurrent runs cannot mix counts.
type Report struct {
	Courses             int         `json:"courses"`
	Modules             int         `json:"modules"`
	FilesTotal          int         `json:"files_total"`
	FilesDownloaded     int         `json:"files_downloaded"`
	FilesSkipped        int         `json:"files_skipped"`
	FilesFailed         int         `json:"files_failed"`
	TotalSize           int64       `json:"total_size"`
	VectorStoresCreated int         `json:"vector_stores_created"`
	FilesUploaded       int         `json:"files_uploaded_to_vector_store"`
	FilesUploadFailed   int         `json:"files_upload_failed"`
	Errors              []FileError `json:"errors"`
	DurationSeconds     float64     `json:"duration_seconds"`
}

// uploadedFile maps one uploaded file back to its OpenAI file id.
type uploadedFile struct {
	Path   string `json:"path"`
	FileID string `json:"file_id"`
}

// storeMapping describes the vector store created for one course folder.
type storeMapping struct {
	VectorStoreID string         `json:"vector_store_id"`
	Files         []uploadedFile `json:"files"`
}

// writeReport persists the run report next to the downloaded files.
func writeReport(root, canvasURL string, report *Report) error {
	payload := map[string]interface{}{
		"timestamp":  time.Now().Format(time.RFC3339),
		"canvas_url": canvasURL,
		"statistics": report,
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(root, "download_report.json"), data, 0o644)
}

// writeStoreMapping persists the course to vector store mapping.
func writeStoreMapping(root string, mapping map[string]*storeMapping) error {
	data, err := json.MarshalIndent(mapping, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(root, "vector_stores_mapping.json"), data, 0o644)
}
