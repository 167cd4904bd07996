package scheduling

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hms/hms/pkg/pagination"
)

// Handler exposes the scheduling service over HTTP. It is deliberately thin:
// all invariants live in the service and the store.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/appointments", h.CreateAppointment)
	api.GET("/appointments", h.ListAppointments)
	api.GET("/appointments/availability", h.CheckAvailability)
	api.GET("/appointments/:id", h.GetAppointment)
	api.PUT("/appointments/:id", h.UpdateAppointment)
	api.DELETE("/appointments/:id", h.DeleteAppointment)
	api.PATCH("/appointments/:id/status", h.UpdateAppointmentStatus)
}

// appointmentRequest is the wire form of an appointment. The timestamp may be
// sent either as appointment_date, or as separate date and time parts the way
// booking forms collect it.
type appointmentRequest struct {
	PatientID       int64  `json:"patient_id"`
	DoctorID        int64  `json:"doctor_id"`
	AppointmentDate string `json:"appointment_date"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	Status          string `json:"status"`
	Reason          string `json:"reason"`
}

func (req *appointmentRequest) toAppointment() (*Appointment, error) {
	a := &Appointment{
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		Status:    req.Status,
		Reason:    req.Reason,
	}

	switch {
	case req.AppointmentDate != "":
		when, err := parseLocalDateTime(req.AppointmentDate)
		if err != nil {
			return nil, &ValidationError{Field: "appointment_date", Reason: "malformed timestamp"}
		}
		a.AppointmentDate = when
	case req.Date != "":
		day, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return nil, &ValidationError{Field: "date", Reason: "malformed date, want YYYY-MM-DD"}
		}
		when, err := CombineDateTime(day, req.Time)
		if err != nil {
			return nil, err
		}
		a.AppointmentDate = when
	}
	return a, nil
}

// parseLocalDateTime accepts a wall-clock timestamp with or without seconds.
// No timezone designator is expected; the column has none.
func parseLocalDateTime(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04", s)
}

func (h *Handler) CreateAppointment(c echo.Context) error {
	var req appointmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := req.toAppointment()
	if err != nil {
		return httpError(err)
	}
	if err := h.svc.Create(c.Request().Context(), a); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) GetAppointment(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.GetByID(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

// ListAppointments serves the global listing plus the three range queries,
// selected by query parameters:
//
//	?date=YYYY-MM-DD                  appointments on that day, earliest first
//	?doctor_id=N&from=...&to=...      doctor's range, earliest first
//	?patient_id=N&from=...&to=...     patient's range, earliest first
//	(none)                            everything, most recent first, paginated
func (h *Handler) ListAppointments(c echo.Context) error {
	ctx := c.Request().Context()

	if d := c.QueryParam("date"); d != "" {
		day, err := time.Parse("2006-01-02", d)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
		}
		items, err := h.svc.FindByDate(ctx, day)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, items)
	}

	if did := c.QueryParam("doctor_id"); did != "" {
		doctorID, from, to, err := parseRangeParams(c, did)
		if err != nil {
			return err
		}
		items, err := h.svc.FindByDoctor(ctx, doctorID, from, to)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, items)
	}

	if pid := c.QueryParam("patient_id"); pid != "" {
		patientID, from, to, err := parseRangeParams(c, pid)
		if err != nil {
			return err
		}
		items, err := h.svc.FindByPatient(ctx, patientID, from, to)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, items)
	}

	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(ctx, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateAppointment(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req appointmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := req.toAppointment()
	if err != nil {
		return httpError(err)
	}
	a.ID = id

	found, err := h.svc.Update(c.Request().Context(), a)
	if err != nil {
		return httpError(err)
	}
	if !found {
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) DeleteAppointment(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	found, err := h.svc.Remove(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	if !found {
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) UpdateAppointmentStatus(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	found, err := h.svc.UpdateStatus(c.Request().Context(), id, body.Status)
	if err != nil {
		return httpError(err)
	}
	if !found {
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"id": id, "status": body.Status})
}

// CheckAvailability answers whether an exact (doctor, timestamp) slot is
// occupied by a non-cancelled appointment.
func (h *Handler) CheckAvailability(c echo.Context) error {
	doctorID, err := parseID(c.QueryParam("doctor_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor_id")
	}
	at, err := parseLocalDateTime(c.QueryParam("at"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid at, want YYYY-MM-DDTHH:mm")
	}

	taken, err := h.svc.IsSlotTaken(c.Request().Context(), doctorID, at)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"doctor_id": doctorID,
		"at":        at,
		"taken":     taken,
	})
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

func parseRangeParams(c echo.Context, idParam string) (int64, time.Time, time.Time, error) {
	id, err := parseID(idParam)
	if err != nil {
		return 0, time.Time{}, time.Time{}, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	from, err := time.Parse("2006-01-02", c.QueryParam("from"))
	if err != nil {
		return 0, time.Time{}, time.Time{}, echo.NewHTTPError(http.StatusBadRequest, "invalid from, want YYYY-MM-DD")
	}
	to, err := time.Parse("2006-01-02", c.QueryParam("to"))
	if err != nil {
		return 0, time.Time{}, time.Time{}, echo.NewHTTPError(http.StatusBadRequest, "invalid to, want YYYY-MM-DD")
	}
	return id, from, to, nil
}

func httpError(err error) error {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return echo.NewHTTPError(http.StatusBadRequest, ve.Error())
	case errors.Is(err, ErrSlotTaken):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
