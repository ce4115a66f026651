package upstream

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/school-portal-gateway/internal/models"
	"github.com/noah-isme/school-portal-gateway/pkg/middleware/requestid"
)

type recordingObserver struct {
	mu       sync.Mutex
	statuses []int
}

func (r *recordingObserver) ObserveUpstream(_, _ string, status int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, status)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *recordingObserver) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	obs := &recordingObserver{}
	return NewClient("test", srv.URL+"/", srv.Client(), obs, nil), obs
}

func TestDecodeListShapes(t *testing.T) {
	cases := map[string]string{
		"bare":    `[{"id":1},{"id":2}]`,
		"success": `{"success":true,"data":[{"id":1},{"id":2}]}`,
		"status":  `{"status":"success","data":[{"id":"1"},{"id":"2"}]}`,
		"keyed":   `{"tutor_id":"7","items":[{"id":1},{"id":2}]}`,
		"nested":  `{"success":true,"data":{"items":[{"id":1},{"id":2}]}}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			var rows []struct {
				ID flexString `json:"id"`
			}
			require.NoError(t, DecodeList([]byte(body), &rows, "items"))
			require.Len(t, rows, 2)
			assert.Equal(t, "2", rows[1].ID.String())
		})
	}

	var rows []map[string]interface{}
	require.NoError(t, DecodeList([]byte(`{"success":false,"message":"No se encontraron alumnos"}`), &rows))
	assert.Empty(t, rows)
}

func TestGetListTreatsNotFoundAsEmpty(t *testing.T) {
	c, obs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"no hay"}`))
	})
	var rows []map[string]interface{}
	require.NoError(t, c.GetList(context.Background(), "/x", &rows))
	assert.Empty(t, rows)
	assert.Equal(t, []int{404}, obs.statuses)
}

func TestStatusErrorCarriesMessage(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"curso_id requerido"}`))
	})
	_, err := c.PostJSON(context.Background(), "/unidades/unidades", map[string]string{})
	require.Error(t, err)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.Status)
	assert.Equal(t, "curso_id requerido", se.Message)
	assert.False(t, IsNotFound(err))
}

func TestClientPropagatesRequestID(t *testing.T) {
	var got string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get(requestid.HeaderKey())
		_, _ = w.Write([]byte(`[]`))
	})
	ctx := requestid.WithContext(context.Background(), "req-42")
	_, err := c.Get(ctx, "/ping")
	require.NoError(t, err)
	assert.Equal(t, "req-42", got)
}

func TestStaffListNoUsersMessage(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/usuarios/listar", r.URL.Path)
		_, _ = w.Write([]byte(`{"message":"No se encontraron usuarios"}`))
	})
	staff, err := NewStaffClient(c).List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, staff)
}

func TestStaffListNotFoundIsEmpty(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	staff, err := NewStaffClient(c).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, staff)
	assert.Empty(t, staff)
}

func TestStaffListDecodesMixedStatus(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1,"nombre":"Ana","tipo":"Docente","estado":"Activo"},{"id":2,"nombre":"Luis","tipo":"Tutor","estado":false}]`))
	})
	staff, err := NewStaffClient(c).List(context.Background())
	require.NoError(t, err)
	require.Len(t, staff, 2)
	assert.Equal(t, "1", staff[0].ID)
	assert.True(t, staff[0].Status.Active)
	assert.True(t, staff[1].Status.Known)
	assert.False(t, staff[1].Status.Active)
}

func TestStaffLogin(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ana@escuela.mx", body["email"])
		_, _ = w.Write([]byte(`{"token":"x","user":{"id":12,"nombre":"Ana","email":"ana@escuela.mx","roles":["Tutor Académico"]}}`))
	})
	identity, err := NewStaffClient(c).Login(context.Background(), "ana@escuela.mx", "secret")
	require.NoError(t, err)
	assert.Equal(t, "12", identity.ID)
	assert.Equal(t, []string{"Tutor Académico"}, identity.Roles)
}

func TestUnitsByCourseNormalizesActivities(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/unidades/unidades/curso/9/con-actividades", r.URL.Path)
		_, _ = w.Write([]byte(`{"success":true,"data":[{"id":"u-1","curso_id":9,"numero_unidad":1,"nombre_unidad":"Fundamentos","descripcion":"Intro",
			"actividades":[{"id":"a1","nombre_actividad":"Examen","ponderacion":"0.4"},{"id":"a2","nombre":"Proyecto","ponderacion":60}]}]}`))
	})
	units, err := NewUnitsClient(c).UnitsByCourse(context.Background(), "9")
	require.NoError(t, err)
	require.Len(t, units, 1)
	u := units[0]
	assert.Equal(t, "u-1", u.ID)
	assert.Equal(t, "9", u.CourseID)
	assert.Equal(t, 1, u.SequenceNumber)
	require.Len(t, u.Activities, 2)
	assert.Equal(t, "Proyecto", u.Activities[1].Name)
	assert.InDelta(t, 0.6, u.Activities[1].Weight, 1e-9)
	assert.True(t, u.WeightsBalanced())
}

func TestNormalizeWeight(t *testing.T) {
	assert.InDelta(t, 0.4, NormalizeWeight(0.4), 1e-9)
	assert.InDelta(t, 0.4, NormalizeWeight(40), 1e-9)
	assert.InDelta(t, 1.0, NormalizeWeight(1), 1e-9)
	assert.InDelta(t, 1.0, NormalizeWeight(100), 1e-9)
}

func TestUnitsByCourseWarnsOnUnbalancedWeights(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"u-1","curso_id":9,"actividades":[{"nombre":"Examen","ponderacion":1},{"nombre":"Tarea","ponderacion":99}]},
			{"id":"u-2","curso_id":9,"actividades":[{"nombre":"Examen","ponderacion":30},{"nombre":"Tarea","ponderacion":70}]}]`))
	}))
	t.Cleanup(srv.Close)
	core, logs := observer.New(zap.WarnLevel)
	c := NewClient("units", srv.URL, srv.Client(), &recordingObserver{}, zap.New(core))

	units, err := NewUnitsClient(c).UnitsByCourse(context.Background(), "9")
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.InDelta(t, 1.0, units[0].Activities[0].Weight, 1e-9)
	assert.InDelta(t, 0.99, units[0].Activities[1].Weight, 1e-9)

	warnings := logs.FilterMessage("unit weights do not sum to 1 after normalization").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "u-1", warnings[0].ContextMap()["unit_id"])
}

func TestCreateUnitAndActivity(t *testing.T) {
	var activityBody map[string]interface{}
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/unidades/unidades":
			_, _ = w.Write([]byte(`{"success":true,"data":{"id":"u-77"}}`))
		case "/actividades/actividades":
			raw, _ := io.ReadAll(r.Body)
			assert.NoError(t, json.Unmarshal(raw, &activityBody))
			_, _ = w.Write([]byte(`{"id":"a-1"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	client := NewUnitsClient(c)
	id, err := client.CreateUnit(context.Background(), models.Unit{CourseID: "9", SequenceNumber: 2, Name: "Unidad", Description: "Descripcion larga"})
	require.NoError(t, err)
	assert.Equal(t, "u-77", id)

	actID, err := client.CreateActivity(context.Background(), id, models.Activity{Name: "Examen", Weight: 0.25})
	require.NoError(t, err)
	assert.Equal(t, "a-1", actID)
	assert.Equal(t, "u-77", activityBody["unidad_id"])
	assert.Equal(t, 0.25, activityBody["ponderacion"])
}

func TestUploadEnrollmentMultipart(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "5", r.FormValue("tutor_id"))
		assert.Equal(t, "3", r.FormValue("grupo_id"))
		file, header, err := r.FormFile("csv")
		if assert.NoError(t, err) {
			defer file.Close()
			assert.Equal(t, EnrollmentCSVFilename, header.Filename)
		}
		_, _ = w.Write([]byte(`{"totalRows":2,"successfullyProcessed":1,"errors":[{"row":2,"error":"duplicado"}]}`))
	})
	report, err := NewStudentsClient(c).UploadEnrollment(context.Background(), "5", "3", "", []byte("matricula,nombre\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, report.TotalRows)
	assert.Equal(t, 1, report.SuccessfullyProcessed)
	require.Len(t, report.Errors, 1)
	assert.JSONEq(t, `{"row":2,"error":"duplicado"}`, string(report.Errors[0]))
}

func TestAttendanceDayListAndSubmit(t *testing.T) {
	var submitted rollPayload
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/asistencia-tutorado/tutor/4/lista-asistencia":
			assert.Equal(t, "2024-03-01", r.URL.Query().Get("fecha"))
			_, _ = w.Write([]byte(`{"fecha":"2024-03-01","tutorados":[{"matricula":"A1","nombre":"Ana"},{"matricula":"B2","nombre":"Beto"}],
				"asistencias_existentes":[{"matricula":"B2","estado":"RETARDO","observaciones":"tráfico"}]}`))
		case "/api/asistencia-tutorado/tutor/4/pasar-lista":
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&submitted))
			_, _ = w.Write([]byte(`{"success":true}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	client := NewAttendanceClient(c)
	sheet, err := client.DayList(context.Background(), "4", "2024-03-01")
	require.NoError(t, err)
	require.Len(t, sheet.Tutorados, 2)
	require.Len(t, sheet.Existing, 1)
	assert.Equal(t, models.AttendanceLate, sheet.Existing[0].State)

	_, err = client.SubmitRoll(context.Background(), "4", models.AttendanceRoll{
		Date:    "2024-03-01",
		Records: []models.AttendanceRecord{{Matricula: "A1", State: models.AttendanceExcused}},
	})
	require.NoError(t, err)
	require.Len(t, submitted.Asistencias, 1)
	assert.Equal(t, "JUSTIFICADO", submitted.Asistencias[0].Estado)
}

func TestIncidentsByTutor(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":{"intervenciones":[{"id":3,"matriculaEstudiante":"A1","materiaId":8,
			"tipoDeIntervencion":"IntervencionesPorProblemasPersonales","descripcion":"Faltas","estado":"PENDIENTE","fechaCreacion":"2024-02-10T12:00:00Z"}]}}`))
	})
	incidents, err := NewIncidentsClient(c).ByTutor(context.Background(), "4")
	require.NoError(t, err)
	require.Len(t, incidents, 1)
	assert.Equal(t, "8", incidents[0].SubjectID)
	assert.Equal(t, 2024, incidents[0].CreatedAt.Year())
}
