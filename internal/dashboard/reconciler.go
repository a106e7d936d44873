// Package dashboard reconciles asynchronous operation outcomes into the
// single consistent ViewState the presentation layer renders. Operations
// are blocking; the caller (the TUI) runs them off its update loop and is
// poked through the change hook when state moves underneath it.
package dashboard

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/chemviz/chemviz/internal/api"
	"github.com/chemviz/chemviz/internal/model"
	"github.com/chemviz/chemviz/internal/session"
)

// Reconciler sequences login, history load, upload, and report download
// against the gateway and folds their outcomes into ViewState.
type Reconciler struct {
	mu       sync.Mutex
	gw       model.Gateway
	session  *session.Controller
	state    ViewState
	onChange func()

	// uploads is the hard guard behind the advisory UploadInProgress
	// flag: callers that bypass the UI gate share one in-flight upload
	// instead of racing duplicates.
	uploads singleflight.Group
}

// New creates a reconciler over the given gateway and session controller.
func New(gw model.Gateway, sess *session.Controller) *Reconciler {
	return &Reconciler{gw: gw, session: sess}
}

// SetOnChange registers a hook invoked after every state transition,
// including the delayed forced logout. The hook must not call back into
// the reconciler synchronously.
func (r *Reconciler) SetOnChange(fn func()) {
	r.mu.Lock()
	r.onChange = fn
	r.mu.Unlock()
}

// Authenticated reports whether the session is currently logged in.
func (r *Reconciler) Authenticated() bool {
	return r.session.Authenticated()
}

// Snapshot returns a copy of the current view state.
func (r *Reconciler) Snapshot() ViewState {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := r.state
	st.History = append(model.History(nil), r.state.History...)
	return st
}

// Login validates input, exchanges credentials, persists tokens through the
// session controller, and triggers the initial history load. Wrong password
// and network failure surface the same generic message on purpose.
func (r *Reconciler) Login(ctx context.Context, username, password string) {
	r.clearMessages()

	if strings.TrimSpace(username) == "" || password == "" {
		r.setError(msgMissingCredentials)
		return
	}

	creds, err := r.gw.Login(ctx, username, password)
	if err != nil {
		r.setError(msgLoginFailed)
		return
	}
	if err := r.session.LoginSucceeded(creds); err != nil {
		r.setError(msgLoginFailed)
		return
	}

	r.setInfo(msgLoggedIn)
	r.reloadHistory(ctx)
}

// Logout is the explicit user-initiated transition: tokens cleared, view
// state reset to its empty default.
func (r *Reconciler) Logout() error {
	err := r.session.Logout()
	r.resetToLoggedOut()
	return err
}

// LoadHistory refreshes the upload history. Called when entering
// Authenticated, including at startup.
func (r *Reconciler) LoadHistory(ctx context.Context) {
	r.clearMessages()
	r.reloadHistory(ctx)
}

// SelectFile records the CSV chosen for the next upload.
func (r *Reconciler) SelectFile(path string) {
	r.mu.Lock()
	r.state.PendingFile = path
	r.mu.Unlock()
	r.notify()
}

// Upload sends the pending file and, on success, re-fetches history so the
// new record appears. With no pending file it sets an error and performs no
// network call. UploadInProgress is cleared on every path, after the
// history re-fetch completes.
func (r *Reconciler) Upload(ctx context.Context) {
	r.clearMessages()

	r.mu.Lock()
	path := r.state.PendingFile
	r.mu.Unlock()

	if path == "" {
		r.setError(msgSelectFile)
		return
	}

	r.uploads.Do("upload", func() (interface{}, error) {
		r.setUploading(true)
		defer r.setUploading(false)

		f, err := os.Open(path)
		if err != nil {
			r.setError("Cannot read " + filepath.Base(path))
			return nil, nil
		}
		defer f.Close()

		if err := r.gw.UploadFile(ctx, filepath.Base(path), f); err != nil {
			r.fail(err, msgUploadFailed)
			return nil, nil
		}

		r.mu.Lock()
		r.state.InfoMessage = msgUploadOK
		r.state.PendingFile = ""
		r.mu.Unlock()
		r.notify()

		r.reloadHistory(ctx)
		return nil, nil
	})
}

// DownloadReport fetches the generated PDF. On success the caller hands the
// bytes to a save-as action; on failure the view state carries the server's
// message when it supplied one. History is never mutated here.
func (r *Reconciler) DownloadReport(ctx context.Context) ([]byte, bool) {
	r.clearMessages()

	data, err := r.gw.DownloadReport(ctx)
	if err != nil {
		fallback := msgReportFailed
		if msg := api.ServerMessage(err); msg != "" {
			fallback = msg
		}
		r.fail(err, fallback)
		return nil, false
	}
	return data, true
}

// reloadHistory overwrites History on success and leaves it untouched on
// failure. It clears only the error message so an upload's success text
// survives the follow-up reload.
func (r *Reconciler) reloadHistory(ctx context.Context) {
	r.mu.Lock()
	r.state.ErrorMessage = ""
	r.mu.Unlock()

	history, err := r.gw.FetchHistory(ctx)
	if err != nil {
		r.fail(err, msgHistoryFailed)
		return
	}

	r.mu.Lock()
	r.state.History = history
	r.mu.Unlock()
	r.notify()
}

// fail converts a gateway error into view state: authorization failures
// start the expired-session path, everything else becomes the fallback
// message. Errors never travel past this point as raw values.
func (r *Reconciler) fail(err error, fallback string) {
	var authErr *api.AuthError
	if errors.As(err, &authErr) {
		if r.session.HandleAuthFailure(r.resetToLoggedOut) {
			r.setError(msgSessionExpired)
		}
		return
	}
	r.setError(fallback)
}

// resetToLoggedOut restores the empty default view state so nothing from
// the previous session leaks into the next one.
func (r *Reconciler) resetToLoggedOut() {
	r.mu.Lock()
	r.state = ViewState{}
	r.mu.Unlock()
	r.notify()
}

func (r *Reconciler) clearMessages() {
	r.mu.Lock()
	r.state.ErrorMessage = ""
	r.state.InfoMessage = ""
	r.mu.Unlock()
	r.notify()
}

func (r *Reconciler) setError(msg string) {
	r.mu.Lock()
	r.state.ErrorMessage = msg
	r.mu.Unlock()
	r.notify()
}

func (r *Reconciler) setInfo(msg string) {
	r.mu.Lock()
	r.state.InfoMessage = msg
	r.mu.Unlock()
	r.notify()
}

func (r *Reconciler) setUploading(v bool) {
	r.mu.Lock()
	r.state.UploadInProgress = v
	r.mu.Unlock()
	r.notify()
}

func (r *Reconciler) notify() {
	r.mu.Lock()
	fn := r.onChange
	r.mu.Unlock()
	if fn != nil {
		fn()
	}
}
