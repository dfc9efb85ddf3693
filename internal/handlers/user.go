package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/banking-backend/internal/dto"
	"github.com/GregMSThompson/banking-backend/internal/errs"
	"github.com/GregMSThompson/banking-backend/internal/middleware"
	"github.com/GregMSThompson/banking-backend/internal/models"
	"github.com/GregMSThompson/banking-backend/internal/response"
)

// maxSignUpBody leaves room for a 5MB image plus the form fields; the
// image size itself is checked by the service.
const maxSignUpBody = 10 << 20

type userService interface {
	SignUp(ctx context.Context, req dto.SignUpRequest, image *dto.Upload) (*models.User, error)
	Profile(ctx context.Context, uid string) (*models.User, error)
}

type userHandlers struct {
	ResponseHandler response.ResponseHandler
	UserSvc         userService
}

func NewUserHandlers(deps *Deps) *userHandlers {
	return &userHandlers{
		ResponseHandler: deps.ResponseHandler,
		UserSvc:         deps.UserSvc,
	}
}

// UserRoutes serves the public sign-up route; the profile route runs behind
// the given gates.
func (h *userHandlers) UserRoutes(gates ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.SignUp)
	r.With(gates...).Get("/me", h.Profile)
	return r
}

// SignUp accepts either a multipart form (with an optional "image" file) or
// a JSON body.
func (h *userHandlers) SignUp(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSignUpBody)

	var (
		req   dto.SignUpRequest
		image *dto.Upload
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxSignUpBody); err != nil {
			h.ResponseHandler.HandleError(w, r, errs.NewValidationError("Invalid form submission"))
			return
		}
		req = signUpFromForm(r)
		file, header, err := r.FormFile("image")
		if err == nil {
			defer file.Close()
			image = &dto.Upload{
				Name:        header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Size:        header.Size,
				Body:        file,
			}
		}
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	user, err := h.UserSvc.SignUp(r.Context(), req, image)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, user)
}

func (h *userHandlers) Profile(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	user, err := h.UserSvc.Profile(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, user)
}

func signUpFromForm(r *http.Request) dto.SignUpRequest {
	return dto.SignUpRequest{
		FirstName:       r.FormValue("firstName"),
		LastName:        r.FormValue("lastName"),
		Email:           r.FormValue("email"),
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("confirmPassword"),
		PhoneNumber:     r.FormValue("phoneNumber"),
		DateOfBirth:     r.FormValue("dateOfBirth"),
		Address:         r.FormValue("address"),
		City:            r.FormValue("city"),
		State:           r.FormValue("state"),
		ZipCode:         r.FormValue("zipCode"),
		SSN:             r.FormValue("ssn"),
		AccountType:     r.FormValue("accountType"),
	}
}
