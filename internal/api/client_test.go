package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type staticTokens struct {
	token string
}

func (s *staticTokens) AccessToken() string { return s.token }

func TestBearerHeaderAttachedWhenPresent(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, &staticTokens{token: "tok-123"})
	if _, err := c.FetchHistory(context.Background()); err != nil {
		t.Fatalf("FetchHistory: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer tok-123")
	}
}

func TestBearerHeaderOmittedWhenAbsent(t *testing.T) {
	var sawAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawAuth = r.Header["Authorization"]
		w.Write([]byte(`{"access":"a","refresh":"r"}`))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, &staticTokens{})
	if _, err := c.Login(context.Background(), "alice", "secret"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if sawAuth {
		t.Error("Authorization header sent with no token present")
	}
}

func TestLoginDecodesTokenPair(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/login/" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"username":"alice"`) {
			t.Errorf("login body = %s", body)
		}
		w.Write([]byte(`{"access":"acc","refresh":"ref"}`))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, &staticTokens{})
	creds, err := c.Login(context.Background(), "alice", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if creds.Access != "acc" || creds.Refresh != "ref" {
		t.Errorf("creds = %+v", creds)
	}
}

func TestErrorClassification(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
	}{
		{"unauthorized", 401, `{"detail":"token expired"}`, func(err error) bool {
			var e *AuthError
			return errors.As(err, &e) && e.Message == "token expired"
		}},
		{"forbidden", 403, ``, func(err error) bool {
			var e *AuthError
			return errors.As(err, &e) && e.StatusCode == 403
		}},
		{"bad request", 400, `{"error":"no file"}`, func(err error) bool {
			var e *ValidationError
			return errors.As(err, &e) && e.Message == "no file"
		}},
		{"not found", 404, ``, func(err error) bool {
			var e *ValidationError
			return errors.As(err, &e)
		}},
		{"server error", 500, `{"error":"boom"}`, func(err error) bool {
			var e *ServerError
			return errors.As(err, &e) && e.Message == "boom"
		}},
		{"bad gateway", 502, ``, func(err error) bool {
			var e *ServerError
			return errors.As(err, &e)
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			t.Cleanup(srv.Close)

			c := NewClient(srv.URL, &staticTokens{token: "t"})
			_, err := c.FetchHistory(context.Background())
			if err == nil {
				t.Fatal("expected an error")
			}
			if !tc.check(err) {
				t.Errorf("classification wrong for %d: %v", tc.status, err)
			}
		})
	}
}

func TestTransportFailureIsNetworkError(t *testing.T) {
	// Point at a closed port.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(url, &staticTokens{})
	_, err := c.FetchHistory(context.Background())
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("err = %v, want NetworkError", err)
	}
}

func TestUploadFileSendsMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/upload/" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		f, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form field %q missing: %v", "file", err)
		}
		defer f.Close()
		if header.Filename != "plant.csv" {
			t.Errorf("filename = %q", header.Filename)
		}
		data, _ := io.ReadAll(f)
		if string(data) != "Type,Flowrate\npump,1.5\n" {
			t.Errorf("file content = %q", data)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"message":"uploaded"}`))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, &staticTokens{token: "t"})
	err := c.UploadFile(context.Background(), "plant.csv", strings.NewReader("Type,Flowrate\npump,1.5\n"))
	if err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
}

func TestDownloadReportReturnsRawBytes(t *testing.T) {
	pdf := []byte("%PDF-1.4 fake")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/report/" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Write(pdf)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, &staticTokens{token: "t"})
	got, err := c.DownloadReport(context.Background())
	if err != nil {
		t.Fatalf("DownloadReport: %v", err)
	}
	if string(got) != string(pdf) {
		t.Errorf("report bytes = %q", got)
	}
}
