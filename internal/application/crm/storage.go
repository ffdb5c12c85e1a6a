package crm

import (
	"context"
	"io"
)

// Storage namespaces. The namespace becomes the first path segment of
// every stored object.
const (
	NamespaceLeadDocuments   = "lead-documents"
	NamespaceLedgerDocuments = "ledger-documents"
)

// BlobStorage abstracts the object store that holds uploaded files.
// Paths returned by Store are opaque to callers and persisted as-is.
type BlobStorage interface {
	// Store writes the content and returns the storage path
	Store(ctx context.Context, namespace, fileName string, content io.Reader, contentType string) (string, error)

	// Download returns the stored content
	Download(ctx context.Context, path string) ([]byte, error)

	// Delete removes the stored object
	Delete(ctx context.Context, path string) error
}
