package scheduling

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func newTestHandler() (*Handler, *echo.Echo) {
	svc := newTestService()
	h := NewHandler(svc)
	e := echo.New()
	return h, e
}

func futureDateParam(daysAhead int) string {
	return time.Now().AddDate(0, 0, daysAhead).Format("2006-01-02")
}

func TestHandler_CreateAppointment(t *testing.T) {
	h, e := newTestHandler()
	body := `{"patient_id":3,"doctor_id":7,"date":"` + futureDateParam(30) + `","time":"09:00","reason":"checkup"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreateAppointment(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	var got Appointment
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if got.ID <= 0 {
		t.Error("expected assigned id in response")
	}
	if got.Status != StatusScheduled {
		t.Errorf("expected SCHEDULED, got %s", got.Status)
	}
}

func TestHandler_CreateAppointment_Conflict(t *testing.T) {
	h, e := newTestHandler()
	body := `{"patient_id":3,"doctor_id":7,"date":"` + futureDateParam(30) + `","time":"09:00"}`

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())
	if err := h.CreateAppointment(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body2 := `{"patient_id":5,"doctor_id":7,"date":"` + futureDateParam(30) + `","time":"09:00"}`
	req2 := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body2))
	req2.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c2 := e.NewContext(req2, httptest.NewRecorder())

	err := h.CreateAppointment(c2)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", httpErr.Code)
	}
}

func TestHandler_CreateAppointment_ValidationError(t *testing.T) {
	h, e := newTestHandler()
	body := `{"doctor_id":7,"date":"` + futureDateParam(30) + `","time":"09:00"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	err := h.CreateAppointment(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", httpErr.Code)
	}
}

func TestHandler_CreateAppointment_FullTimestamp(t *testing.T) {
	h, e := newTestHandler()
	when := time.Now().AddDate(0, 0, 30).Format("2006-01-02") + "T10:30"
	body := `{"patient_id":3,"doctor_id":7,"appointment_date":"` + when + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreateAppointment(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
}

func createVia(t *testing.T, h *Handler, e *echo.Echo, patientID, doctorID int64, daysAhead int, hhmm string) *Appointment {
	t.Helper()
	body := `{"patient_id":` + strconv.FormatInt(patientID, 10) +
		`,"doctor_id":` + strconv.FormatInt(doctorID, 10) +
		`,"date":"` + futureDateParam(daysAhead) + `","time":"` + hhmm + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.CreateAppointment(c); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	var a Appointment
	if err := json.Unmarshal(rec.Body.Bytes(), &a); err != nil {
		t.Fatalf("bad create response: %v", err)
	}
	return &a
}

func TestHandler_GetAppointment(t *testing.T) {
	h, e := newTestHandler()
	a := createVia(t, h, e, 3, 7, 30, "09:00")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatInt(a.ID, 10))

	if err := h.GetAppointment(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandler_GetAppointment_NotFound(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("9999")

	err := h.GetAppointment(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", httpErr.Code)
	}
}

func TestHandler_GetAppointment_InvalidID(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("not-a-number")

	err := h.GetAppointment(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", httpErr.Code)
	}
}

func TestHandler_DeleteAppointment(t *testing.T) {
	h, e := newTestHandler()
	a := createVia(t, h, e, 3, 7, 30, "09:00")

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatInt(a.ID, 10))

	if err := h.DeleteAppointment(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}

func TestHandler_DeleteAppointment_NotFound(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("9999")

	err := h.DeleteAppointment(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", httpErr.Code)
	}
}

func TestHandler_UpdateAppointmentStatus(t *testing.T) {
	h, e := newTestHandler()
	a := createVia(t, h, e, 3, 7, 30, "09:00")

	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"status":"CANCELLED"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatInt(a.ID, 10))

	if err := h.UpdateAppointmentStatus(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandler_UpdateAppointmentStatus_Unknown(t *testing.T) {
	h, e := newTestHandler()
	a := createVia(t, h, e, 3, 7, 30, "09:00")

	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"status":"ON_HOLD"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatInt(a.ID, 10))

	err := h.UpdateAppointmentStatus(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", httpErr.Code)
	}
}

func TestHandler_CheckAvailability(t *testing.T) {
	h, e := newTestHandler()
	createVia(t, h, e, 3, 7, 30, "09:00")
	at := futureDateParam(30) + "T09:00"

	req := httptest.NewRequest(http.MethodGet, "/?doctor_id=7&at="+at, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CheckAvailability(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if taken, _ := body["taken"].(bool); !taken {
		t.Error("expected slot to be reported taken")
	}
}

func TestHandler_ListAppointments_ByDate(t *testing.T) {
	h, e := newTestHandler()
	createVia(t, h, e, 3, 7, 30, "09:00")
	createVia(t, h, e, 4, 8, 30, "10:00")
	createVia(t, h, e, 5, 9, 31, "09:00")

	req := httptest.NewRequest(http.MethodGet, "/?date="+futureDateParam(30), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListAppointments(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var items []Appointment
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("expected 2 appointments on the day, got %d", len(items))
	}
}

func TestHandler_ListAppointments_Paginated(t *testing.T) {
	h, e := newTestHandler()
	createVia(t, h, e, 3, 7, 30, "09:00")
	createVia(t, h, e, 4, 8, 31, "09:00")

	req := httptest.NewRequest(http.MethodGet, "/?limit=1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListAppointments(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var body struct {
		Total   int  `json:"total"`
		HasMore bool `json:"has_more"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if body.Total != 2 {
		t.Errorf("expected total 2, got %d", body.Total)
	}
	if !body.HasMore {
		t.Error("expected has_more with limit=1")
	}
}
