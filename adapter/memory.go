package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Memory is an in-memory Adapter, usable as a fixture in tests and as
// the example binary's backing store. It fails fast on IDs it has never
// seen, which is exactly what a real external system may do.
type Memory struct {
	mu        sync.RWMutex
	documents map[string]*MemoryDocument

	// imported transcriptions, keyed by documentID and documentID/pageID
	documentImports map[string]string
	pageImports     map[string]string
}

// MemoryDocument seeds one document in a Memory adapter.
type MemoryDocument struct {
	Title string `json:"title"`
	Pages []Page `json:"pages"`
}

// NewMemory creates an empty in-memory adapter.
func NewMemory() *Memory {
	return &Memory{
		documents:       make(map[string]*MemoryDocument),
		documentImports: make(map[string]string),
		pageImports:     make(map[string]string),
	}
}

// LoadMemory reads a JSON fixture of documents keyed by document ID.
func LoadMemory(path string) (*Memory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read adapter fixture: %w", err)
	}
	var docs map[string]*MemoryDocument
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("failed to parse adapter fixture: %w", err)
	}
	m := NewMemory()
	m.documents = docs
	return m, nil
}

// AddDocument seeds a document with its pages in order.
func (m *Memory) AddDocument(documentID, title string, pages ...Page) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documents[documentID] = &MemoryDocument{Title: title, Pages: pages}
}

// RemoveDocument drops a document, simulating deletion in the external
// system.
func (m *Memory) RemoveDocument(documentID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.documents, documentID)
}

// RemovePage drops one page from a document.
func (m *Memory) RemovePage(documentID, pageID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.documents[documentID]
	if !ok {
		return
	}
	pages := doc.Pages[:0]
	for _, p := range doc.Pages {
		if p.ID != pageID {
			pages = append(pages, p)
		}
	}
	doc.Pages = pages
}

func (m *Memory) DocumentExists(_ context.Context, documentID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.documents[documentID]
	return ok, nil
}

func (m *Memory) DocumentPageExists(_ context.Context, documentID, pageID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.documents[documentID]
	if !ok {
		return false, nil
	}
	for _, p := range doc.Pages {
		if p.ID == pageID {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) DocumentTitle(_ context.Context, documentID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.documents[documentID]
	if !ok {
		return "", &NotFoundError{DocumentID: documentID}
	}
	return doc.Title, nil
}

func (m *Memory) DocumentPages(_ context.Context, documentID string) ([]Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.documents[documentID]
	if !ok {
		return nil, &NotFoundError{DocumentID: documentID}
	}
	pages := make([]Page, len(doc.Pages))
	copy(pages, doc.Pages)
	return pages, nil
}

func (m *Memory) DocumentFirstPageID(_ context.Context, documentID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.documents[documentID]
	if !ok {
		return "", &NotFoundError{DocumentID: documentID}
	}
	if len(doc.Pages) == 0 {
		return "", fmt.Errorf("adapter: document %q has no pages", documentID)
	}
	return doc.Pages[0].ID, nil
}

func (m *Memory) DocumentPageName(_ context.Context, documentID, pageID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.documents[documentID]
	if !ok {
		return "", &NotFoundError{DocumentID: documentID}
	}
	for _, p := range doc.Pages {
		if p.ID == pageID {
			return p.Name, nil
		}
	}
	return "", &NotFoundError{DocumentID: documentID, PageID: pageID}
}

func (m *Memory) DocumentPageImageURL(_ context.Context, documentID, pageID string) (string, error) {
	exists, _ := m.DocumentPageExists(context.Background(), documentID, pageID)
	if !exists {
		return "", &NotFoundError{DocumentID: documentID, PageID: pageID}
	}
	return fmt.Sprintf("https://images.example.org/%s/%s.jpg", documentID, pageID), nil
}

func (m *Memory) ImportDocumentPageTranscription(_ context.Context, documentID, pageID, text string) error {
	exists, _ := m.DocumentPageExists(context.Background(), documentID, pageID)
	if !exists {
		return &NotFoundError{DocumentID: documentID, PageID: pageID}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pageImports[documentID+"/"+pageID] = text
	return nil
}

func (m *Memory) ImportDocumentTranscription(_ context.Context, documentID, text string) error {
	exists, _ := m.DocumentExists(context.Background(), documentID)
	if !exists {
		return &NotFoundError{DocumentID: documentID}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documentImports[documentID] = text
	return nil
}

func (m *Memory) DocumentPageTranscriptionImported(_ context.Context, documentID, pageID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.pageImports[documentID+"/"+pageID]
	return ok, nil
}

func (m *Memory) DocumentTranscriptionImported(_ context.Context, documentID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.documentImports[documentID]
	return ok, nil
}

// ImportedPageTranscription returns the last text imported for a page,
// for inspection in tests and the example binary.
func (m *Memory) ImportedPageTranscription(documentID, pageID string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	text, ok := m.pageImports[documentID+"/"+pageID]
	return text, ok
}

// ImportedDocumentTranscription returns the last whole-document text
// imported for a document.
func (m *Memory) ImportedDocumentTranscription(documentID string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	text, ok := m.documentImports[documentID]
	return text, ok
}
