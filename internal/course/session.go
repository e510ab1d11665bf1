// Package course manages the course catalog: listing, the active course,
// and CRUD against the backend, with optional read caching.
package course

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/skillforge-app/skillforge/internal/events"
	"github.com/skillforge-app/skillforge/internal/gateway"
)

// Gateway is the slice of the backend API the course session needs.
type Gateway interface {
	ListCourses(ctx context.Context, skip, limit int) ([]gateway.Course, error)
	GetCourse(ctx context.Context, courseID int) (gateway.CourseWithTopics, error)
	CreateCourse(ctx context.Context, course gateway.CourseCreate) (gateway.Course, error)
	UpdateCourse(ctx context.Context, courseID int, update gateway.CourseUpdate) (gateway.Course, error)
	DeleteCourse(ctx context.Context, courseID int) (gateway.Course, error)
}

// Cache is the slice of the read cache the session needs. A nil Cache
// disables caching entirely.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

const listKey = "courses:list"

func courseKey(id int) string {
	return fmt.Sprintf("course:%d", id)
}

// SessionConfig holds dependencies for a course session.
type SessionConfig struct {
	Gateway  Gateway
	Cache    Cache
	CacheTTL time.Duration
	Events   events.Logger
}

// Session holds the course list and the active course. Cache failures are
// downgraded to warnings; the backend is always the source of truth.
type Session struct {
	mu     sync.Mutex
	gw     Gateway
	cache  Cache
	ttl    time.Duration
	events events.Logger

	courseList   []gateway.Course
	activeCourse *gateway.CourseWithTopics
	busy         bool
	lastErr      string
}

// NewSession creates a course session.
func NewSession(cfg SessionConfig) *Session {
	ev := cfg.Events
	if ev == nil {
		ev = events.NopLogger{}
	}
	ttl := cfg.CacheTTL
	if ttl == 0 {
		ttl = time.Minute
	}
	return &Session{
		gw:     cfg.Gateway,
		cache:  cfg.Cache,
		ttl:    ttl,
		events: ev,
	}
}

// FetchCourses loads a page of courses, serving the first page from the
// cache when possible.
func (s *Session) FetchCourses(ctx context.Context, skip, limit int) ([]gateway.Course, error) {
	cacheable := s.cache != nil && skip == 0

	if cacheable {
		var cached []gateway.Course
		hit, err := s.cache.GetJSON(ctx, listKey, &cached)
		if err != nil {
			slog.Warn("course list cache read failed", "error", err)
		} else if hit {
			s.mu.Lock()
			s.courseList = cached
			s.mu.Unlock()
			return cached, nil
		}
	}

	s.mu.Lock()
	s.busy = true
	s.mu.Unlock()

	courses, err := s.gw.ListCourses(ctx, skip, limit)

	s.mu.Lock()
	s.busy = false
	if err != nil {
		s.lastErr = "Failed to fetch courses"
		s.mu.Unlock()
		return nil, err
	}
	s.lastErr = ""
	s.courseList = courses
	s.mu.Unlock()

	if cacheable {
		if err := s.cache.SetJSON(ctx, listKey, courses, s.ttl); err != nil {
			slog.Warn("course list cache write failed", "error", err)
		}
	}
	return courses, nil
}

// FetchCourse loads one course with its topics and makes it active.
func (s *Session) FetchCourse(ctx context.Context, courseID int) (gateway.CourseWithTopics, error) {
	if s.cache != nil {
		var cached gateway.CourseWithTopics
		hit, err := s.cache.GetJSON(ctx, courseKey(courseID), &cached)
		if err != nil {
			slog.Warn("course cache read failed", "course_id", courseID, "error", err)
		} else if hit {
			s.mu.Lock()
			s.activeCourse = &cached
			s.mu.Unlock()
			return cached, nil
		}
	}

	s.mu.Lock()
	s.busy = true
	s.mu.Unlock()

	course, err := s.gw.GetCourse(ctx, courseID)

	s.mu.Lock()
	s.busy = false
	if err != nil {
		s.lastErr = "Failed to fetch course details"
		s.mu.Unlock()
		return gateway.CourseWithTopics{}, err
	}
	s.lastErr = ""
	s.activeCourse = &course
	s.mu.Unlock()

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, courseKey(courseID), course, s.ttl); err != nil {
			slog.Warn("course cache write failed", "course_id", courseID, "error", err)
		}
	}
	return course, nil
}

// CreateCourse creates a course and appends it to the list.
func (s *Session) CreateCourse(ctx context.Context, create gateway.CourseCreate) (gateway.Course, error) {
	s.mu.Lock()
	s.busy = true
	s.mu.Unlock()

	created, err := s.gw.CreateCourse(ctx, create)

	s.mu.Lock()
	s.busy = false
	if err != nil {
		s.lastErr = "Failed to create course"
		s.mu.Unlock()
		return gateway.Course{}, err
	}
	s.lastErr = ""
	s.courseList = append(s.courseList, created)
	s.mu.Unlock()

	s.invalidate(ctx, listKey)
	events.Emit(s.events, "course_created", map[string]any{"course_id": created.ID})
	return created, nil
}

// UpdateCourse applies a partial update, refreshes the list entry, and
// re-fetches the active course if it was the one updated.
func (s *Session) UpdateCourse(ctx context.Context, courseID int, update gateway.CourseUpdate) (gateway.Course, error) {
	updated, err := s.gw.UpdateCourse(ctx, courseID, update)
	if err != nil {
		s.mu.Lock()
		s.lastErr = "Failed to update course"
		s.mu.Unlock()
		return gateway.Course{}, err
	}

	s.mu.Lock()
	s.lastErr = ""
	for i := range s.courseList {
		if s.courseList[i].ID == courseID {
			s.courseList[i] = updated
		}
	}
	refreshActive := s.activeCourse != nil && s.activeCourse.ID == courseID
	s.mu.Unlock()

	s.invalidate(ctx, listKey, courseKey(courseID))

	if refreshActive {
		if _, err := s.FetchCourse(ctx, courseID); err != nil {
			slog.Warn("active course refresh failed", "course_id", courseID, "error", err)
		}
	}

	events.Emit(s.events, "course_updated", map[string]any{"course_id": courseID})
	return updated, nil
}

// DeleteCourse deletes a course, drops it from the list, and clears the
// active course if it was the one deleted.
func (s *Session) DeleteCourse(ctx context.Context, courseID int) error {
	s.mu.Lock()
	s.busy = true
	s.mu.Unlock()

	_, err := s.gw.DeleteCourse(ctx, courseID)

	s.mu.Lock()
	s.busy = false
	if err != nil {
		s.lastErr = "Failed to delete course"
		s.mu.Unlock()
		return err
	}
	s.lastErr = ""
	kept := s.courseList[:0]
	for _, c := range s.courseList {
		if c.ID != courseID {
			kept = append(kept, c)
		}
	}
	s.courseList = kept
	if s.activeCourse != nil && s.activeCourse.ID == courseID {
		s.activeCourse = nil
	}
	s.mu.Unlock()

	s.invalidate(ctx, listKey, courseKey(courseID))
	events.Emit(s.events, "course_deleted", map[string]any{"course_id": courseID})
	return nil
}

// SetActiveCourse replaces the active course without a fetch.
func (s *Session) SetActiveCourse(course *gateway.CourseWithTopics) {
	s.mu.Lock()
	s.activeCourse = course
	s.mu.Unlock()
}

// Courses returns the current course list.
func (s *Session) Courses() []gateway.Course {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]gateway.Course(nil), s.courseList...)
}

// ActiveCourse returns the active course, or nil.
func (s *Session) ActiveCourse() *gateway.CourseWithTopics {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeCourse == nil {
		return nil
	}
	c := *s.activeCourse
	return &c
}

// Busy reports whether a gateway call is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Err returns the last recorded error message, if any.
func (s *Session) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// ClearError resets the recorded error message.
func (s *Session) ClearError() {
	s.mu.Lock()
	s.lastErr = ""
	s.mu.Unlock()
}

func (s *Session) invalidate(ctx context.Context, keys ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		slog.Warn("cache invalidation failed", "keys", keys, "error", err)
	}
}
