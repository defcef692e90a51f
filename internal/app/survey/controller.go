package survey

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/dorsu/alumnitracer/internal/app/formstate"
	"github.com/dorsu/alumnitracer/internal/app/models"
	"github.com/dorsu/alumnitracer/internal/app/models/dto"
	"github.com/dorsu/alumnitracer/internal/pkg/apperrors"
	"github.com/dorsu/alumnitracer/internal/pkg/logger"
)

// State is one node of the survey lifecycle.
type State string

const (
	// StateUnknown is the pre-load state.
	StateUnknown State = "unknown"
	// StateNoSubmission means the account has no survey yet (create mode).
	StateNoSubmission State = "no-existing-submission"
	// StateReadOnly means a submission exists and is being viewed.
	StateReadOnly State = "read-only"
	// StateEditing means the existing submission is being edited in place.
	StateEditing State = "editing"
	// StateSubmitting means a create or update request is in flight.
	StateSubmitting State = "submitting"
)

// API is the remote surface the controller drives.
type API interface {
	FindSurveyByAlumni(ctx context.Context, alumniID int64) (*dto.SurveyWire, error)
	CreateSurvey(ctx context.Context, w dto.SurveyWire) (*dto.SurveyWire, error)
	UpdateSurvey(ctx context.Context, id int64, w dto.SurveyWire) (*dto.SurveyWire, error)
}

// Result reports a completed submission.
type Result struct {
	Record models.SurveyRecord
	// Created is true for a first submission (POST) and false for an
	// in-place update (PATCH).
	Created bool
}

// Controller orchestrates the survey form lifecycle: load-existing, edit in
// place, two-step confirmed submit, and failure revert. It owns the cached
// server-truth record; once that record carries an id, every submission is
// an update against it, never a second create.
type Controller struct {
	api      API
	store    *formstate.Store
	validate *validator.Validate
	log      zerolog.Logger

	mu             sync.Mutex
	state          State
	alumniID       int64
	cached         *dto.SurveyWire
	confirmPending bool
}

// NewController creates a controller for one alumni account.
func NewController(api API, store *formstate.Store, alumniID int64) *Controller {
	return &Controller{
		api:      api,
		store:    store,
		validate: validator.New(),
		log:      logger.Component("survey"),
		state:    StateUnknown,
		alumniID: alumniID,
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Cached returns the last record the server acknowledged, mapped to UI
// format, or nil before the first successful load/submit.
func (c *Controller) Cached() *models.SurveyRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cached == nil {
		return nil
	}
	rec := dto.SurveyFromWire(*c.cached)
	return &rec
}

// Load queries the API for a submission owned by this account. A found
// record populates the form store and lands in read-only view; absence
// leaves the store at its initial empty value in create mode. A lookup
// failure is non-fatal and also lands in create mode, matching the
// best-effort nature of the uniqueness check (the server enforces it
// authoritatively).
func (c *Controller) Load(ctx context.Context) error {
	w, err := c.api.FindSurveyByAlumni(ctx, c.alumniID)
	if ctx.Err() != nil {
		return ctx.Err()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.log.Warn().Err(err).Int64("alumni", c.alumniID).Msg("Existing-survey lookup failed, starting in create mode")
		c.state = StateNoSubmission
		c.store.Reset()
		return nil
	}
	if w == nil {
		c.state = StateNoSubmission
		c.store.Reset()
		return nil
	}

	c.cached = w
	c.store.ReplaceAll(dto.SurveyFromWire(*w))
	c.state = StateReadOnly
	return nil
}

// BeginEdit switches from read-only view to editing. Edits always start
// from the cached server truth, not from possibly-stale local state.
func (c *Controller) BeginEdit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateReadOnly || c.cached == nil {
		return transitionError(c.state, "begin edit")
	}
	c.store.ReplaceAll(dto.SurveyFromWire(*c.cached))
	c.state = StateEditing
	return nil
}

// CancelEdit discards in-memory edits and returns to the read-only view.
// No network call is made.
func (c *Controller) CancelEdit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateEditing {
		return transitionError(c.state, "cancel edit")
	}
	c.store.ReplaceAll(dto.SurveyFromWire(*c.cached))
	c.confirmPending = false
	c.state = StateReadOnly
	return nil
}

// RequestSubmit validates the form and arms the confirmation step. The
// confirmation is mandatory: no network call fires until ConfirmSubmit.
// Validation failures block here, before any request is made.
func (c *Controller) RequestSubmit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateEditing && c.state != StateNoSubmission {
		return transitionError(c.state, "submit")
	}
	if err := c.validateRecord(c.store.Snapshot()); err != nil {
		return err
	}
	c.confirmPending = true
	return nil
}

// AbortSubmit disarms a pending confirmation.
func (c *Controller) AbortSubmit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.confirmPending = false
}

// ConfirmSubmit performs the armed submission. With no known id it issues
// a create; once an id is cached it always issues an update against it.
// On success the server's response body, not the locally typed record,
// becomes the cached record and the form content. On failure the state
// reverts and the in-memory edits are preserved for a manual retry.
func (c *Controller) ConfirmSubmit(ctx context.Context) (*Result, error) {
	c.mu.Lock()
	if c.state == StateSubmitting {
		c.mu.Unlock()
		return nil, apperrors.ErrSubmitInFlight
	}
	if !c.confirmPending {
		c.mu.Unlock()
		return nil, apperrors.NewCustomError(apperrors.ErrInvalidTransition, "submission has not been confirmed")
	}
	prev := c.state
	if prev != StateEditing && prev != StateNoSubmission {
		c.mu.Unlock()
		return nil, transitionError(prev, "submit")
	}
	c.confirmPending = false
	c.state = StateSubmitting

	rec := c.store.Snapshot()
	rec.AlumniID = c.alumniID
	wire := dto.SurveyToWire(rec)
	existingID := int64(0)
	if c.cached != nil {
		existingID = c.cached.ID
	}
	c.mu.Unlock()

	var (
		resp *dto.SurveyWire
		err  error
	)
	if existingID != 0 {
		resp, err = c.api.UpdateSurvey(ctx, existingID, wire)
	} else {
		resp, err = c.api.CreateSurvey(ctx, wire)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// The caller may have gone away while the request was in flight;
	// a stale response must not be applied.
	if ctx.Err() != nil {
		c.state = prev
		return nil, ctx.Err()
	}
	if err != nil {
		c.state = prev
		c.log.Warn().Err(err).Int64("alumni", c.alumniID).Msg("Survey submission failed")
		return nil, err
	}

	c.cached = resp
	c.store.ReplaceAll(dto.SurveyFromWire(*resp))
	c.state = StateReadOnly

	return &Result{
		Record:  dto.SurveyFromWire(*resp),
		Created: existingID == 0,
	}, nil
}

// validateRecord applies the pre-submit checks the form enforces: required
// fields, well-formed values, and a sane graduation year.
func (c *Controller) validateRecord(rec models.SurveyRecord) error {
	if err := c.validate.Struct(rec); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			fe := errs[0]
			return apperrors.NewValidationError(fe.Field(),
				fmt.Sprintf("field %s failed %s validation", fe.Field(), fe.Tag()))
		}
		return apperrors.NewCustomError(apperrors.ErrValidationFailed, err.Error())
	}
	if rec.YearGraduated != "" {
		year, err := strconv.Atoi(rec.YearGraduated)
		if err != nil || year < 1900 || year > 2100 {
			return apperrors.NewValidationError("YearGraduated",
				fmt.Sprintf("year graduated %q is out of range", rec.YearGraduated))
		}
	}
	return nil
}

func transitionError(from State, action string) error {
	return apperrors.NewCustomError(apperrors.ErrInvalidTransition,
		fmt.Sprintf("cannot %s from state %q", action, from))
}
