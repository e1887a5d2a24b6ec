// Package player owns the external mpv process and its IPC control channel.
// Its centerpiece is the Controller, which plays a stream and supports
// swapping the loaded episode in place when the user asks for the next or
// previous one from inside the player.
package player

import (
	"context"
	"fmt"
)

// Header is one HTTP header attached to the stream request.  Order is
// preserved because mpv receives them as a single ordered field list.
type Header struct {
	Key   string
	Value string
}

// PlayOptions describes one piece of media to play.  A fresh value is built
// for the initial episode and for every navigation swap.
type PlayOptions struct {
	// URL is the stream URL or local path to play.  Required.
	URL string
	// Title is shown in the player window title bar
	Title string
	// StartTime is an optional mpv --start value, e.g. "90" or "+1:30"
	StartTime string
	// Headers are attached to the HTTP stream request
	Headers []Header
	// Subtitles are local subtitle file paths loaded alongside the stream
	Subtitles []string
}

// NavigationAction identifies an in-player episode navigation request.
type NavigationAction string

const (
	// ActionNext asks for the episode after the current one
	ActionNext NavigationAction = "next"
	// ActionPrevious asks for the episode before the current one
	ActionPrevious NavigationAction = "previous"
)

// Navigator resolves an episode navigation request into new play options.
// A (nil, nil) return means no episode exists in the requested direction.
// The controller serializes calls: at most one Resolve is in flight at a time.
type Navigator interface {
	Resolve(ctx context.Context, action NavigationAction) (*PlayOptions, error)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(ctx context.Context, action NavigationAction) (*PlayOptions, error)

// Resolve implements Navigator.
func (f NavigatorFunc) Resolve(ctx context.Context, action NavigationAction) (*PlayOptions, error) {
	return f(ctx, action)
}

// SpawnError reports that the player process could not be launched at all.
// It is the only error Play returns; every later failure degrades instead.
type SpawnError struct {
	Err error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start player: %v", e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}
