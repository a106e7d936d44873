package model

import (
	"context"
	"io"
)

// Gateway is the typed contract for the backend HTTP API. It is the single
// choke-point for outbound calls; implementations attach bearer credentials
// when a token is present.
type Gateway interface {
	// Login exchanges credentials for a token pair. The caller is
	// responsible for persisting the tokens.
	Login(ctx context.Context, username, password string) (Credentials, error)

	// FetchHistory returns processed uploads, newest first.
	FetchHistory(ctx context.Context) (History, error)

	// UploadFile posts data as multipart form data under field name "file".
	// The backend acknowledges with a status only; callers re-fetch history
	// to observe the new record.
	UploadFile(ctx context.Context, filename string, data io.Reader) error

	// DownloadReport fetches the generated PDF report as raw bytes.
	DownloadReport(ctx context.Context) ([]byte, error)
}
