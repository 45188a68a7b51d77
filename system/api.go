package system

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
)

// maxContactBody matches the usual 100kb limit of form body parsers.
const maxContactBody = 100 << 10

func (s *System) serveJSON(w http.ResponseWriter, res Result) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(res.Status)
	if err := json.NewEncoder(w).Encode(res); err != nil {
		s.log.Warn().Err(err).Int("status", res.Status).Msg("error writing json response")
	}
}

// ContactHandler decodes a JSON or url-encoded submission and answers with
// the handling Result.
func (s *System) ContactHandler(w http.ResponseWriter, r *http.Request) {
	sub, err := decodeSubmission(w, r)
	if err != nil {
		s.log.Debug().Err(err).Msg("undecodable contact request")
		s.serveJSON(w, failure(http.StatusBadRequest, MsgBadRequest))
		return
	}
	// the send is not abandoned if the visitor goes away
	res := s.contact.Handle(context.WithoutCancel(r.Context()), sub)
	s.serveJSON(w, res)
}

func decodeSubmission(w http.ResponseWriter, r *http.Request) (Submission, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxContactBody)
	var sub Submission
	mediatype, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediatype == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err != nil {
			return sub, err
		}
		sub.Name = r.PostForm.Get("name")
		sub.Email = r.PostForm.Get("email")
		sub.Subject = r.PostForm.Get("subject")
		sub.Message = r.PostForm.Get("message")
		return sub, nil
	}
	// an empty body is a submission with every field missing
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil && !errors.Is(err, io.EOF) {
		return sub, err
	}
	return sub, nil
}
