package endpoint

import (
	"errors"
	"net/http"

	"github.com/ariebrainware/patient-registry/metrics"
	"github.com/ariebrainware/patient-registry/model"
	"github.com/ariebrainware/patient-registry/store"
	"github.com/ariebrainware/patient-registry/util"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ListLimit caps how many patients the listing returns.
const ListLimit = 100

// PatientHandler serves the listing and the add-patient form.
type PatientHandler struct {
	title    string
	patients store.Collection
	access   *util.AccessLogger
	metrics  *metrics.Metrics
}

// NewPatientHandler wires the handler to the patients collection.
// access and m may be nil.
func NewPatientHandler(title string, patients store.Collection, access *util.AccessLogger, m *metrics.Metrics) *PatientHandler {
	return &PatientHandler{
		title:    title,
		patients: patients,
		access:   access,
		metrics:  m,
	}
}

// ListPatients godoc
// @Summary      List patients
// @Description  Render up to 100 patients, or return them as JSON when the client accepts only application/json
// @Tags         Patient
// @Produce      html
// @Produce      json
// @Success      200 {object} util.APIResponse{data=object} "Patients retrieved"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       / [get]
func (h *PatientHandler) ListPatients(c *gin.Context) {
	docs, err := h.patients.FindAll(c.Request.Context(), ListLimit)
	if err != nil {
		h.storeFailure(c, "find", err)
		util.CallServerError(c, util.APIErrorParams{
			Msg: "Failed to retrieve patients",
			Err: err,
		})
		return
	}

	patients := make([]model.PatientResponse, 0, len(docs))
	for _, raw := range docs {
		stored, err := model.DecodeStoredPatient(raw)
		if err != nil {
			log.Warn().Err(err).Msg("skipping undecodable patient document")
			continue
		}
		patients = append(patients, model.ToResponse(stored.PatientRecord, stored.ID))
	}

	switch c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) {
	case gin.MIMEJSON:
		util.CallSuccessOK(c, util.APISuccessParams{
			Msg:  "Patients retrieved",
			Data: map[string]interface{}{"total_fetched": len(patients), "patients": patients},
		})
	default:
		c.HTML(http.StatusOK, "index.html", gin.H{
			"title":    h.title,
			"patients": patients,
		})
	}
}

// ShowAddForm godoc
// @Summary      Add-patient form
// @Tags         Patient
// @Produce      html
// @Success      200 "Empty form"
// @Router       /add [get]
func (h *PatientHandler) ShowAddForm(c *gin.Context) {
	c.HTML(http.StatusOK, "add-patient.html", gin.H{
		"title":   h.title,
		"genders": model.Genders,
	})
}

// SubmitAddForm godoc
// @Summary      Register a patient
// @Description  Validate the submitted form and store it. Validation failures answer 200 with an error body.
// @Tags         Patient
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        name formData string true "Full name" example(John Doe)
// @Param        age formData int true "Age, 1 to 149" example(30)
// @Param        gender formData string true "Male, Female or Other" example(Male)
// @Param        condition formData string true "Condition" example(Stable)
// @Param        disease formData string true "Disease" example(Flu)
// @Success      303 "Redirect to /"
// @Success      200 {object} util.ValidationFailedBody "Validation failed"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /add [post]
func (h *PatientHandler) SubmitAddForm(c *gin.Context) {
	ctx := c.Request.Context()

	record, err := parseAndValidate(c)
	if err != nil {
		h.metrics.IncrementValidationFailures()
		h.access.LogValidationFailed(ctx, c.ClientIP(), c.Request.UserAgent(), failedFields(err))
		util.CallValidationFailed(c, err)
		return
	}

	id, err := h.patients.InsertOne(ctx, record)
	if err != nil {
		h.storeFailure(c, "insert", err)
		util.CallServerError(c, util.APIErrorParams{
			Msg: "Failed to create patient",
			Err: err,
		})
		return
	}

	h.metrics.IncrementPatientsCreated()
	h.access.LogPatientCreated(ctx, c.ClientIP(), c.Request.UserAgent(), id)
	c.Redirect(http.StatusSeeOther, "/")
}

func parseAndValidate(c *gin.Context) (model.PatientRecord, error) {
	form, err := model.ParsePatientForm(c.GetPostForm)
	if err != nil {
		return model.PatientRecord{}, err
	}
	return model.ValidatePatient(form)
}

func failedFields(err error) []string {
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		return nil
	}
	fields := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		fields = append(fields, f.Field)
	}
	return fields
}

func (h *PatientHandler) storeFailure(c *gin.Context, operation string, err error) {
	_ = c.Error(err)
	h.metrics.IncrementStoreErrors(operation)
	h.access.LogStoreFailure(c.Request.Context(), c.ClientIP(), operation, err)
}
