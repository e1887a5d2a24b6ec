// Package auth implements the AniList implicit-grant OAuth flow.  AniList
// returns the access token in the URL fragment, which never reaches the
// server, so the callback page relays it back with a small piece of
// javascript before the flow can complete.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"time"

	"github.com/tsugi-app/tsugi/internal/log"
)

const (
	callbackPort = "19771"
	clientID     = "21394"
	flowTimeout  = 5 * time.Minute
)

// Result represents the outcome of an authentication attempt
type Result struct {
	Token string
	Error error
}

// Flow drives one browser-based login attempt.
type Flow struct {
	loginURL string
	tokens   chan string
	server   *http.Server
}

// NewFlow creates a Flow ready to run.
func NewFlow() *Flow {
	return &Flow{
		loginURL: fmt.Sprintf("https://anilist.co/api/v2/oauth/authorize?client_id=%s&response_type=token", clientID),
		tokens:   make(chan string, 1),
	}
}

// LoginURL returns the URL the user must visit to approve access.
func (f *Flow) LoginURL() string {
	return f.loginURL
}

// Run starts the callback server, opens the browser, and blocks until a token
// arrives or the flow times out.
func (f *Flow) Run(ctx context.Context) Result {
	if err := f.startCallbackServer(); err != nil {
		return Result{Error: err}
	}
	defer f.stopCallbackServer()

	if err := openBrowser(f.loginURL); err != nil {
		// The user can still paste the URL into a browser manually, so this
		// is not fatal.
		log.Warn("Failed to open browser automatically", "error", err)
	}

	ctx, cancel := context.WithTimeout(ctx, flowTimeout)
	defer cancel()

	select {
	case <-ctx.Done():
		return Result{Error: fmt.Errorf("timed out waiting for AniList login: %w", ctx.Err())}
	case token := <-f.tokens:
		if token == "" {
			return Result{Error: errors.New("received an empty token from the callback")}
		}
		log.Info("Received AniList token")
		return Result{Token: token}
	}
}

func (f *Flow) startCallbackServer() error {
	listener, err := net.Listen("tcp", "localhost:"+callbackPort)
	if err != nil {
		return fmt.Errorf("could not listen on callback port %s: %w", callbackPort, err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", f.handleCallback)
	mux.HandleFunc("/token", f.handleToken)

	f.server = &http.Server{Handler: mux}

	go func() {
		if err := f.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Auth callback server error", "error", err)
		}
	}()

	log.Debug("Auth callback server listening", "port", callbackPort)
	return nil
}

func (f *Flow) stopCallbackServer() {
	if f.server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := f.server.Shutdown(ctx); err != nil {
		log.Warn("Auth callback server shutdown failed", "error", err)
	}
}

// handleCallback serves the relay page that moves the token out of the URL
// fragment.
func (f *Flow) handleCallback(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	_, _ = fmt.Fprint(w, callbackPage)
}

// handleToken receives the relayed token from the callback page.
func (f *Flow) handleToken(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	select {
	case f.tokens <- body.Token:
	default:
		// A token was already delivered for this flow
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

const callbackPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>tsugi login</title>
<script>
window.onload = function() {
    var params = new URLSearchParams(window.location.hash.substring(1));
    var token = params.get("access_token");
    if (!token) {
        document.body.innerHTML = "<h1>No token found in the redirect URL</h1>";
        return;
    }
    fetch("/token", {
        method: "POST",
        headers: {"Content-Type": "application/json"},
        body: JSON.stringify({token: token})
    }).then(function() {
        document.body.innerHTML = "<h1>Login complete</h1><p>You can close this tab and return to tsugi.</p>";
    }).catch(function(err) {
        document.body.innerHTML = "<h1>Failed to hand the token to tsugi: " + err + "</h1>";
    });
};
</script>
</head>
<body><h1>Completing AniList login...</h1></body>
</html>
`

// openBrowser opens the specified URL in the default browser
func openBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}

	return cmd.Start()
}
