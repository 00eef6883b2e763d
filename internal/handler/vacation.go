package handler

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/vacation-catalog/backend/internal/asset"
	"github.com/pkordes/vacation-catalog/backend/internal/domain"
)

// multipartMemory is how much of a multipart form is buffered in memory
// before parts spill to temporary files.
const multipartMemory = 8 << 20

// ListVacations handles GET /admin/vacations and GET /users/vacations.
func (s *Server) ListVacations(w http.ResponseWriter, r *http.Request) {
	vacations, err := s.vacations.List(r.Context())
	if err != nil {
		s.writeError(w, r, err, msgNotFound)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Message: msgSuccess, Data: vacations})
}

// GetVacation handles GET /admin/singleVacation/{id}.
func (s *Server) GetVacation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	v, err := s.vacations.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, msgNotFound)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Message: msgSuccess, Data: v})
}

// CreateVacation handles POST /admin/newVacation (multipart form, "image" part).
func (s *Server) CreateVacation(w http.ResponseWriter, r *http.Request) {
	in, ok := readVacationForm(w, r)
	if !ok {
		return
	}
	created, err := s.vacations.Create(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err, msgNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{Message: "Vacation created successfully", Data: created})
}

// UpdateVacation handles PUT /admin/updateVacation/{id}. The image part is optional.
func (s *Server) UpdateVacation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	in, ok := readVacationForm(w, r)
	if !ok {
		return
	}
	updated, err := s.vacations.Update(r.Context(), id, in)
	if err != nil {
		s.writeError(w, r, err, msgNotFound)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Message: "Vacation updated successfully", Data: updated})
}

// DeleteVacation handles DELETE /admin/delete-vacation/{id}.
func (s *Server) DeleteVacation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.vacations.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err, msgNoMatch)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Message: "Successfully deleted one document."})
}

// --- request helpers --------------------------------------------------------

// pathID binds the {id} path parameter. It writes 400 and returns false when
// the value is not a UUID.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	var id uuid.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Message: msgInvalidID})
		return uuid.Nil, false
	}
	return id, true
}

// readVacationForm parses a multipart or URL-encoded vacation form. Field
// values are passed through untouched for the validator to judge; it only
// fails (writing the response itself) when the body cannot be read at all.
func readVacationForm(w http.ResponseWriter, r *http.Request) (domain.VacationInput, bool) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	var err error
	if mediaType == "multipart/form-data" {
		err = r.ParseMultipartForm(multipartMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		writeBodyError(w, err)
		return domain.VacationInput{}, false
	}

	in := domain.VacationInput{
		Code:        r.FormValue("vacationCode"),
		Destination: r.FormValue("destination"),
		Description: r.FormValue("description"),
		StartDate:   r.FormValue("startDate"),
		EndDate:     r.FormValue("endDate"),
		Price:       r.FormValue("price"),
	}

	if mediaType != "multipart/form-data" {
		return in, true
	}
	img, err := readImage(r)
	if err != nil {
		writeBodyError(w, err)
		return domain.VacationInput{}, false
	}
	in.Image = img
	return in, true
}

// readImage returns the "image" part, or nil when the form has none. At most
// one byte over asset.MaxImageBytes is read so the validator can still report
// an oversized file without the whole upload being buffered.
func readImage(r *http.Request) (*domain.ImageUpload, error) {
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, asset.MaxImageBytes+1))
	if err != nil {
		return nil, err
	}

	mediaType := strings.TrimSpace(header.Header.Get("Content-Type"))
	if mediaType == "" || mediaType == "application/octet-stream" {
		mediaType, _, _ = mime.ParseMediaType(http.DetectContentType(data))
	}
	return &domain.ImageUpload{
		Filename:  header.Filename,
		MediaType: mediaType,
		Size:      header.Size,
		Data:      data,
	}, nil
}

func writeBodyError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, envelope{Message: msgTooLarge})
		return
	}
	writeJSON(w, http.StatusBadRequest, envelope{Message: msgInvalidBody})
}
