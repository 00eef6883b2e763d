package handler

import (
	"encoding/json"
	"net/http"
)

// followRequest is the body of the follow and unfollow endpoints: {"user":{"id":"..."}}.
type followRequest struct {
	User struct {
		ID string `json:"id"`
	} `json:"user"`
}

// FollowVacation handles POST /users/follow-vacation/{id}.
func (s *Server) FollowVacation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	userID, ok := readFollowRequest(w, r)
	if !ok {
		return
	}
	if err := s.followers.Follow(r.Context(), id, userID); err != nil {
		s.writeError(w, r, err, msgNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{Message: "Successfully followed the vacation."})
}

// UnfollowVacation handles POST /users/unfollow-vacation/{id}.
func (s *Server) UnfollowVacation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	userID, ok := readFollowRequest(w, r)
	if !ok {
		return
	}
	if err := s.followers.Unfollow(r.Context(), id, userID); err != nil {
		s.writeError(w, r, err, msgNotFound)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Message: "Successfully unfollowed the vacation."})
}

func readFollowRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	var body followRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBodyError(w, err)
		return "", false
	}
	return body.User.ID, true
}
