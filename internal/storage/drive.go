package storage

import (
	"context"
	"fmt"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// DriveLinker resolves Drive file ids to their download link.
type DriveLinker struct {
	srv *drive.Service
}

func NewDriveLinker(ctx context.Context, credentialsJSON []byte) (*DriveLinker, error) {
	config, err := google.JWTConfigFromJSON(credentialsJSON, drive.DriveReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse drive credentials: %w", err)
	}

	srv, err := drive.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Drive client: %w", err)
	}

	return &DriveLinker{srv: srv}, nil
}

func (l *DriveLinker) Link(ctx context.Context, fileID string) (string, error) {
	f, err := l.srv.Files.Get(fileID).Fields("webContentLink", "webViewLink").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to get drive file %s: %w", fileID, err)
	}
	if f.WebContentLink != "" {
		return f.WebContentLink, nil
	}
	return f.WebViewLink, nil
}
