package stubapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/dorsu/alumnitracer/internal/app/models/dto"
	"github.com/dorsu/alumnitracer/internal/pkg/apperrors"
	"github.com/dorsu/alumnitracer/internal/pkg/auth"
	"github.com/dorsu/alumnitracer/internal/pkg/filestorage"
	"github.com/dorsu/alumnitracer/internal/pkg/logger"
)

// Server is a small stand-in for the tracer backend, used for local
// development and end-to-end testing of the client. It speaks the same wire
// dialect: snake_case surveys keyed by alumni, {"detail": ...}
// error bodies, and a 409 when an account submits a second survey.
type Server struct {
	engine *gin.Engine
	store  *Store
	jwt    *auth.JWTService
	files  *filestorage.LocalStorage
	log    zerolog.Logger
}

// Options configures the stub server.
type Options struct {
	JWTService *auth.JWTService
	Files      *filestorage.LocalStorage
	Store      *Store
}

// NewServer wires routes onto a fresh engine.
func NewServer(opts Options) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		engine: gin.New(),
		store:  opts.Store,
		jwt:    opts.JWTService,
		files:  opts.Files,
		log:    logger.Component("stubapi"),
	}
	if s.store == nil {
		s.store = NewStore()
	}

	s.engine.Use(gin.Recovery())
	s.registerRoutes()
	return s
}

// Store exposes the backing store, mainly for seeding.
func (s *Server) Store() *Store { return s.store }

// Handler returns the HTTP handler, usable with httptest.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	s.log.Info().Str("addr", addr).Msg("Stub API listening")
	return s.engine.Run(addr)
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	api.POST("/auth/login/", s.login)

	authed := api.Group("", s.authRequired())
	authed.GET("/alumni/", s.listAlumni)
	authed.GET("/alumni/:id/", s.getAlumni)
	authed.PATCH("/alumni/:id/", s.updateAlumni)
	authed.DELETE("/alumni/:id/", s.deleteAlumni)

	authed.GET("/alumni-surveys/", s.listSurveys)
	authed.POST("/alumni-surveys/", s.createSurvey)
	authed.GET("/alumni-surveys/:id/", s.getSurvey)
	authed.PATCH("/alumni-surveys/:id/", s.updateSurvey)

	if s.files != nil {
		s.engine.Static("/uploads", s.files.BasePath())
	}
}

// detail renders the backend's error body shape.
func detail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"detail": msg})
}

func (s *Server) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			detail(c, http.StatusUnauthorized, "Authentication credentials were not provided.")
			c.Abort()
			return
		}
		claims, err := s.jwt.ValidateAndExtractClaims(token)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				detail(c, http.StatusUnauthorized, "Token has expired.")
			} else {
				detail(c, http.StatusUnauthorized, "Invalid token.")
			}
			c.Abort()
			return
		}
		c.Set("userID", claims.UserID)
		c.Next()
	}
}

func (s *Server) login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "Unable to log in with provided credentials.")
		return
	}

	account, err := s.store.Authenticate(req.Username, req.Password)
	if err != nil {
		detail(c, http.StatusUnauthorized, "Unable to log in with provided credentials.")
		return
	}

	token, _, err := s.jwt.GenerateToken(account.ID, account.Email)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to issue token")
		detail(c, http.StatusInternalServerError, "Could not issue token.")
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{
		Token: token,
		User:  accountWire(*account),
	})
}

func (s *Server) listAlumni(c *gin.Context) {
	accounts := s.store.ListAccounts()
	out := make([]dto.ProfileWire, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, accountWire(a))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getAlumni(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	account, err := s.store.GetAccount(id)
	if err != nil {
		detail(c, http.StatusNotFound, "Not found.")
		return
	}
	c.JSON(http.StatusOK, accountWire(*account))
}

func (s *Server) updateAlumni(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var upd dto.ProfileUpdate
	imagePath := ""

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		form, err := c.MultipartForm()
		if err != nil {
			detail(c, http.StatusBadRequest, "Malformed multipart body.")
			return
		}
		upd = profileUpdateFromForm(form.Value)
		if files := form.File["image"]; len(files) > 0 {
			if s.files == nil {
				detail(c, http.StatusBadRequest, "Image uploads are not enabled.")
				return
			}
			imagePath, err = s.files.SaveFile(files[0])
			if err != nil {
				s.log.Error().Err(err).Msg("Failed to store uploaded image")
				detail(c, http.StatusInternalServerError, "Could not save image.")
				return
			}
		}
	} else {
		if err := c.ShouldBindJSON(&upd); err != nil {
			detail(c, http.StatusBadRequest, "Malformed request body.")
			return
		}
	}

	account, err := s.store.UpdateAccount(id, func(a *Account) {
		if upd.Username != nil {
			a.Username = *upd.Username
		}
		if upd.Email != nil {
			a.Email = *upd.Email
		}
		if upd.FullName != nil {
			a.FullName = *upd.FullName
		}
		if upd.ProgramCourse != nil {
			a.ProgramCourse = *upd.ProgramCourse
		}
		if upd.YearGraduated != nil {
			a.YearGraduated = *upd.YearGraduated
		}
		if imagePath != "" {
			a.Image = imagePath
		}
	})
	if err != nil {
		detail(c, http.StatusNotFound, "Not found.")
		return
	}
	c.JSON(http.StatusOK, accountWire(*account))
}

func (s *Server) deleteAlumni(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.store.DeleteAccount(id); err != nil {
		detail(c, http.StatusNotFound, "Not found.")
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listSurveys(c *gin.Context) {
	raw := c.Query("alumni")
	if raw == "" {
		// Unfiltered listing is not needed by any client flow.
		c.JSON(http.StatusOK, []dto.SurveyWire{})
		return
	}
	alumniID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		detail(c, http.StatusBadRequest, "Invalid alumni filter.")
		return
	}
	c.JSON(http.StatusOK, s.store.FindSurveysByAlumni(alumniID))
}

func (s *Server) createSurvey(c *gin.Context) {
	var w dto.SurveyWire
	if err := c.ShouldBindJSON(&w); err != nil {
		detail(c, http.StatusBadRequest, "Malformed request body.")
		return
	}

	alumniID := c.GetInt64("userID")
	if w.Alumni != nil {
		alumniID = *w.Alumni
	}

	created, err := s.store.CreateSurvey(alumniID, w)
	if err != nil {
		if errors.Is(err, apperrors.ErrSurveyAlreadyExists) {
			detail(c, http.StatusConflict, "A survey response already exists for this alumni.")
			return
		}
		detail(c, http.StatusInternalServerError, "Could not create survey.")
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) getSurvey(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	w, err := s.store.GetSurvey(id)
	if err != nil {
		detail(c, http.StatusNotFound, "Not found.")
		return
	}
	c.JSON(http.StatusOK, w)
}

// updateSurvey applies a partial update: fields present in the body replace
// the stored values, everything else is kept.
func (s *Server) updateSurvey(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	existing, err := s.store.GetSurvey(id)
	if err != nil {
		detail(c, http.StatusNotFound, "Not found.")
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		detail(c, http.StatusBadRequest, "Malformed request body.")
		return
	}
	merged := *existing
	if err := json.Unmarshal(body, &merged); err != nil {
		detail(c, http.StatusBadRequest, "Malformed request body.")
		return
	}
	merged.ID = existing.ID

	stored, err := s.store.ReplaceSurvey(merged)
	if err != nil {
		detail(c, http.StatusNotFound, "Not found.")
		return
	}
	c.JSON(http.StatusOK, stored)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		detail(c, http.StatusNotFound, "Not found.")
		return 0, false
	}
	return id, true
}

func accountWire(a Account) dto.ProfileWire {
	return dto.ProfileWire{
		ID:            a.ID,
		Username:      a.Username,
		Email:         a.Email,
		FullName:      a.FullName,
		ProgramCourse: a.ProgramCourse,
		YearGraduated: dto.FlexInt(a.YearGraduated),
		Image:         dto.ImageRef(a.Image),
	}
}

func profileUpdateFromForm(values map[string][]string) dto.ProfileUpdate {
	var upd dto.ProfileUpdate
	first := func(key string) (string, bool) {
		if vs, ok := values[key]; ok && len(vs) > 0 {
			return vs[0], true
		}
		return "", false
	}
	if v, ok := first("username"); ok {
		upd.Username = &v
	}
	if v, ok := first("email"); ok {
		upd.Email = &v
	}
	if v, ok := first("full_name"); ok {
		upd.FullName = &v
	}
	if v, ok := first("program_course"); ok {
		upd.ProgramCourse = &v
	}
	if v, ok := first("year_graduated"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			upd.YearGraduated = &n
		}
	}
	return upd
}
