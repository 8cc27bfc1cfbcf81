// Package drivefiles manages the NF-e XML inbox on Google Drive: listing
// unprocessed files, fetching content and relocating processed files.
package drivefiles

import (
	"context"
	"fmt"
	"io"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// File is the subset of Drive file metadata the pipeline needs.
type File struct {
	ID   string
	Name string
}

// Manager wraps a Drive service scoped to an inbox/processed folder pair.
// The move to the processed folder is the only mutating operation and runs
// only after successful persistence, so a crash before the move simply
// re-processes the file on the next run.
type Manager struct {
	svc         *drive.Service
	inboxID     string
	processedID string
	pageSize    int64
}

// NewManager builds a Manager over a shared Drive service.
func NewManager(ctx context.Context, inboxID, processedID string, pageSize int64, opts ...option.ClientOption) (*Manager, error) {
	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("drivefiles: creating drive service: %w", err)
	}
	return &Manager{
		svc:         svc,
		inboxID:     inboxID,
		processedID: processedID,
		pageSize:    pageSize,
	}, nil
}

// ListPendingXML lists the XML files waiting in the inbox folder, capped at
// the configured page size. Files already moved to the processed folder are
// naturally excluded.
func (m *Manager) ListPendingXML(ctx context.Context) ([]File, error) {
	query := fmt.Sprintf(
		"'%s' in parents and (mimeType='text/xml' or mimeType='application/xml') and trashed=false",
		m.inboxID,
	)

	resp, err := m.svc.Files.List().
		Q(query).
		PageSize(m.pageSize).
		Fields("files(id, name)").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("drivefiles: listing folder %s: %w", m.inboxID, err)
	}

	files := make([]File, 0, len(resp.Files))
	for _, f := range resp.Files {
		files = append(files, File{ID: f.Id, Name: f.Name})
	}
	return files, nil
}

// FetchContent downloads a file's content.
func (m *Manager) FetchContent(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := m.svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("drivefiles: downloading file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("drivefiles: reading file %s: %w", fileID, err)
	}
	return data, nil
}

// MoveToProcessed relocates a file from the inbox to the processed folder by
// rewriting its parent reference.
func (m *Manager) MoveToProcessed(ctx context.Context, fileID string) error {
	_, err := m.svc.Files.Update(fileID, &drive.File{}).
		AddParents(m.processedID).
		RemoveParents(m.inboxID).
		Fields("id, parents").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("drivefiles: moving file %s to processed: %w", fileID, err)
	}
	return nil
}
