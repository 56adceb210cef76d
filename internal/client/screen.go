package client

import (
	"context"
	"errors"
	"sync"
)

// Sharer hands a downloaded file to the platform share surface.
type Sharer interface {
	Available() bool
	Share(ctx context.Context, path string) error
}

// AlertFunc shows a titled message to the user.
type AlertFunc func(title, message string)

// CourseSource is satisfied by *Client.
type CourseSource interface {
	ListCourses(ctx context.Context) ([]Course, error)
	Download(ctx context.Context, fileURL, dir string) (string, error)
}

// Screen holds the state of the course list: the rendered rows and the
// refresh indicator.
type Screen struct {
	source CourseSource
	sharer Sharer
	dir    string
	alert  AlertFunc

	mu         sync.Mutex
	courses    []Course
	refreshing bool
}

// NewScreen builds a screen. sharer may be nil when no share surface
// exists on the platform.
func NewScreen(source CourseSource, sharer Sharer, downloadDir string, alert AlertFunc) *Screen {
	if alert == nil {
		alert = func(string, string) {}
	}
	return &Screen{source: source, sharer: sharer, dir: downloadDir, alert: alert}
}

func (s *Screen) Courses() []Course {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Course(nil), s.courses...)
}

func (s *Screen) Refreshing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshing
}

// Refresh replaces the list with a fresh listing. On failure the list is
// left as it was and an alert is raised.
func (s *Screen) Refresh(ctx context.Context) error {
	s.setRefreshing(true)
	defer s.setRefreshing(false)

	courses, err := s.source.ListCourses(ctx)
	if err != nil {
		s.alert("Error", "Failed to load courses.")
		return err
	}

	s.mu.Lock()
	s.courses = courses
	s.mu.Unlock()
	return nil
}

// Download fetches the course PDF and shares it when a share surface is
// available. It returns the local path of the saved file.
func (s *Screen) Download(ctx context.Context, course Course) (string, error) {
	local, err := s.source.Download(ctx, course.FileURL, s.dir)
	if err != nil {
		var serr *StatusError
		if errors.As(err, &serr) {
			s.alert("Error", "Failed to download course.")
		} else {
			s.alert("Error", "Failed to download the file.")
		}
		return "", err
	}

	if s.sharer == nil || !s.sharer.Available() {
		s.alert("Download Complete", "File saved, but sharing is not available.")
		return local, nil
	}
	if err := s.sharer.Share(ctx, local); err != nil {
		s.alert("Error", "Failed to download the file.")
		return local, err
	}
	return local, nil
}

func (s *Screen) setRefreshing(v bool) {
	s.mu.Lock()
	s.refreshing = v
	s.mu.Unlock()
}
