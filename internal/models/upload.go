package models

// StoredFile describes one part that was fully written to disk.
type StoredFile struct {
	Field string
	Name  string
	Path  string
	Size  int64
}

// UploadResult aggregates every part stored by a single request.
type UploadResult struct {
	Files []StoredFile

	// PartialBytes counts bytes of a part that failed mid-stream and was
	// left truncated on disk.
	PartialBytes int64
}

// Bytes returns the total number of bytes written, truncated parts included.
func (r UploadResult) Bytes() int64 {
	n := r.PartialBytes
	for _, f := range r.Files {
		n += f.Size
	}
	return n
}
