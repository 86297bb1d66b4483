package contentstore

// BatchItem is the outcome of one item in a bulk operation.
type BatchItem struct {
	// Name identifies the item: a document slug or an original filename.
	Name string
	// Key is the storage key the item was written under, when it succeeded.
	Key string
	// URL is the public URL of the written blob, when one applies.
	URL string
	// Err is the per-item failure, nil on success.
	Err error
}

// BatchResult aggregates per-item outcomes of a bulk operation. Bulk writes
// are not all-or-nothing: already-written blobs are never rolled back, so a
// partial failure is a normal result rather than an error.
type BatchResult struct {
	Items []BatchItem
}

// Succeeded returns the number of items written.
func (r *BatchResult) Succeeded() int {
	n := 0
	for _, it := range r.Items {
		if it.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the number of items that failed.
func (r *BatchResult) Failed() int {
	return len(r.Items) - r.Succeeded()
}

// URLs returns the public URLs of the successful items, in input order.
func (r *BatchResult) URLs() []string {
	urls := make([]string, 0, len(r.Items))
	for _, it := range r.Items {
		if it.Err == nil && it.URL != "" {
			urls = append(urls, it.URL)
		}
	}
	return urls
}
