// Package domain holds DTOs and port contracts for logview
package domain

// LogQuery addresses one remote log archive by URL
type LogQuery struct {
	File string `json:"file" query:"file" validate:"required,url" example:"https://logs.example.com/runs/2025-06-02T14-52-07.eval"`
}

// SampleQuery addresses one sample run inside an archive
type SampleQuery struct {
	File  string `json:"file" query:"file" validate:"required,url" example:"https://logs.example.com/runs/2025-06-02T14-52-07.eval"`
	ID    string `json:"id" query:"id" validate:"required" example:"task-17"`
	Epoch int    `json:"epoch" query:"epoch" validate:"required,min=1" example:"1"`
}

// InvalidateInput names the archive whose cached handle should be dropped
type InvalidateInput struct {
	File string `json:"file" validate:"required,url" example:"https://logs.example.com/runs/2025-06-02T14-52-07.eval"`
}

// InvalidateResult reports whether a cached handle existed for the URL
type InvalidateResult struct {
	File    string `json:"file"`
	Dropped bool   `json:"dropped"`
}

// PurgeResult reports how many cached handles were evicted
type PurgeResult struct {
	Dropped int `json:"dropped"`
}

// Entry describes one archive member without fetching it
type Entry struct {
	Name             string `json:"name"`
	Method           string `json:"method"`
	CompressedSize   uint64 `json:"compressed_size"`
	UncompressedSize uint64 `json:"uncompressed_size"`
}

// Listing is the member inventory of one archive
type Listing struct {
	File    string  `json:"file"`
	ETag    string  `json:"etag,omitempty"`
	Size    int64   `json:"size"`
	Entries []Entry `json:"entries"`
}
