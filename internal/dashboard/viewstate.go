package dashboard

import "github.com/chemviz/chemviz/internal/model"

// ViewState is the single derived state the presentation layer renders. It
// is owned by the Reconciler, mutated only through its operations, and
// never persisted.
type ViewState struct {
	// History holds processed uploads, newest first. The first record is
	// the latest summary; trend series use the reversed order.
	History model.History

	// ErrorMessage and InfoMessage are user-facing outcome texts. Every
	// operation clears stale messages at its own start and sets at most
	// one of them from its own outcome.
	ErrorMessage string
	InfoMessage  string

	// PendingFile is the path of the CSV selected for upload, "" when
	// none is selected.
	PendingFile string

	// UploadInProgress is the advisory flag the presentation layer uses to
	// disable duplicate submissions while an upload is in flight.
	UploadInProgress bool
}

// User-facing message texts.
const (
	msgMissingCredentials = "Enter username & password"
	msgLoginFailed        = "Login failed"
	msgLoggedIn           = "Logged in"
	msgSessionExpired     = "Session expired. Logging out..."
	msgHistoryFailed      = "Failed to load history"
	msgSelectFile         = "Please select a CSV file"
	msgUploadOK           = "File uploaded successfully"
	msgUploadFailed       = "Upload failed"
	msgReportFailed       = "Report download failed"
)
