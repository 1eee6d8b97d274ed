package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/upskilleo/learning-engine/internal/purchases"
	"github.com/upskilleo/learning-engine/internal/session"
)

func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.AllCourses())
}

func (s *Server) handleGetCourse(w http.ResponseWriter, r *http.Request) {
	course, ok := s.catalog.Course(chi.URLParam(r, "courseID"))
	if !ok {
		writeError(w, http.StatusNotFound, "course not found")
		return
	}
	writeJSON(w, http.StatusOK, course)
}

func (s *Server) handlePurchase(w http.ResponseWriter, r *http.Request) {
	receipt, err := s.purchases.Purchase(r.Context(), userID(r), chi.URLParam(r, "courseID"))
	switch {
	case errors.Is(err, purchases.ErrCourseNotFound):
		writeError(w, http.StatusNotFound, "course not found")
	case errors.Is(err, purchases.ErrAlreadyPurchased):
		writeError(w, http.StatusConflict, "course already purchased")
	case errors.Is(err, purchases.ErrPurchaseInProgress):
		writeError(w, http.StatusConflict, "purchase already in progress")
	case err != nil:
		writeError(w, http.StatusInternalServerError, "purchase failed")
	default:
		writeJSON(w, http.StatusCreated, receipt)
	}
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := s.purchases.Dashboard(r.Context(), userID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "dashboard unavailable")
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := s.purchases.Login(r.Context(), userID(r)); err != nil {
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"user_id": userID(r)})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.purchases.Logout(r.Context(), userID(r)); err != nil {
		writeError(w, http.StatusInternalServerError, "logout failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type createSessionRequest struct {
	CourseID string `json:"course_id"`
}

// statusResponse is the session status plus any notifications emitted since
// the last read.
type statusResponse struct {
	session.Status
	Notifications []session.Notification `json:"notifications"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if !readJSON(w, r, &req) {
		return
	}
	course, ok := s.catalog.Course(req.CourseID)
	if !ok {
		writeError(w, http.StatusNotFound, "course not found")
		return
	}
	user := userID(r)
	owned, err := s.purchases.HasPurchased(r.Context(), user, req.CourseID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "purchase lookup failed")
		return
	}
	if !owned {
		writeError(w, http.StatusForbidden, "course not purchased")
		return
	}

	notifier := session.NewMemoryNotifier()
	ls := &liveSession{
		sess:     s.newSession(course, user, notifier),
		notifier: notifier,
		userID:   user,
	}
	s.sessions.Add(ls)
	writeJSON(w, http.StatusCreated, statusResponse{
		Status:        ls.sess.Status(),
		Notifications: notifier.Drain(),
	})
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*liveSession, bool) {
	ls, ok := s.sessions.Get(chi.URLParam(r, "sessionID"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	return ls, true
}

func (s *Server) writeStatus(w http.ResponseWriter, ls *liveSession) {
	writeJSON(w, http.StatusOK, statusResponse{
		Status:        ls.sess.Status(),
		Notifications: ls.notifier.Drain(),
	})
}

func (s *Server) handleSessionStatus(w http.ResponseWriter, r *http.Request) {
	if ls, ok := s.session(w, r); ok {
		s.writeStatus(w, ls)
	}
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.Remove(chi.URLParam(r, "sessionID")) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type selectLessonRequest struct {
	ModuleIndex int `json:"module_index"`
	LessonIndex int `json:"lesson_index"`
}

func (s *Server) handleSelectLesson(w http.ResponseWriter, r *http.Request) {
	ls, ok := s.session(w, r)
	if !ok {
		return
	}
	var req selectLessonRequest
	if !readJSON(w, r, &req) {
		return
	}
	if err := ls.sess.SelectLesson(req.ModuleIndex, req.LessonIndex); err != nil {
		if errors.Is(err, session.ErrLessonLocked) {
			writeError(w, http.StatusConflict, "lesson is locked")
			return
		}
		writeError(w, http.StatusInternalServerError, "lesson selection failed")
		return
	}
	s.writeStatus(w, ls)
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	ls, ok := s.session(w, r)
	if !ok {
		return
	}
	ls.sess.Play()
	s.writeStatus(w, ls)
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	ls, ok := s.session(w, r)
	if !ok {
		return
	}
	ls.sess.Pause()
	s.writeStatus(w, ls)
}

type seekRequest struct {
	Seconds float64 `json:"seconds"`
}

func (s *Server) handleSeek(w http.ResponseWriter, r *http.Request) {
	ls, ok := s.session(w, r)
	if !ok {
		return
	}
	var req seekRequest
	if !readJSON(w, r, &req) {
		return
	}
	ls.sess.Seek(req.Seconds)
	s.writeStatus(w, ls)
}

type volumeRequest struct {
	Volume     *float64 `json:"volume,omitempty"`
	ToggleMute bool     `json:"toggle_mute,omitempty"`
}

func (s *Server) handleVolume(w http.ResponseWriter, r *http.Request) {
	ls, ok := s.session(w, r)
	if !ok {
		return
	}
	var req volumeRequest
	if !readJSON(w, r, &req) {
		return
	}
	if req.Volume != nil {
		ls.sess.SetVolume(*req.Volume)
	}
	if req.ToggleMute {
		ls.sess.ToggleMute()
	}
	s.writeStatus(w, ls)
}

type codeRequest struct {
	Code string `json:"code"`
}

func (s *Server) handleCode(w http.ResponseWriter, r *http.Request) {
	ls, ok := s.session(w, r)
	if !ok {
		return
	}
	var req codeRequest
	if !readJSON(w, r, &req) {
		return
	}
	ls.sess.SetCode(req.Code)
	s.writeStatus(w, ls)
}

type submitResponse struct {
	Correct bool `json:"correct"`
	statusResponse
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ls, ok := s.session(w, r)
	if !ok {
		return
	}
	var req codeRequest
	if !readJSON(w, r, &req) {
		return
	}
	result := ls.sess.Submit(req.Code)
	writeJSON(w, http.StatusOK, submitResponse{
		Correct: result.Correct,
		statusResponse: statusResponse{
			Status:        ls.sess.Status(),
			Notifications: ls.notifier.Drain(),
		},
	})
}

func (s *Server) handleSkip(w http.ResponseWriter, r *http.Request) {
	ls, ok := s.session(w, r)
	if !ok {
		return
	}
	ls.sess.Skip()
	s.writeStatus(w, ls)
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	ls, ok := s.session(w, r)
	if !ok {
		return
	}
	ls.sess.Resume()
	s.writeStatus(w, ls)
}

func (s *Server) handleFullscreen(w http.ResponseWriter, r *http.Request) {
	ls, ok := s.session(w, r)
	if !ok {
		return
	}
	fullscreen := ls.sess.ToggleFullscreen()
	writeJSON(w, http.StatusOK, map[string]bool{"fullscreen": fullscreen})
}
