package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/xuri/excelize/v2"

	"github.com/gestornotas/gradebook/internal/gradebook"
	"github.com/gestornotas/gradebook/internal/live"
	"github.com/gestornotas/gradebook/internal/scheme"
	"github.com/gestornotas/gradebook/internal/server"
)

func newTestServer(t *testing.T) (*http.ServeMux, *gradebook.Registry) {
	t.Helper()

	registry, err := gradebook.NewRegistry(t.Context(), gradebook.NewMemoryStore())
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "basica.yaml"), []byte(`
id: basica
name: "Evaluación básica"
categories:
  - name: Pruebas
    weight: 70
  - name: Trabajo
    weight: 30
`), 0o644)
	schemes, err := scheme.NewLoader(dir)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	srv := server.New(registry, schemes, nil, live.NewHub())
	return srv.Routes(), registry
}

// seedCourse adds a ready-to-grade course straight through the registry.
func seedCourse(t *testing.T, registry *gradebook.Registry) *gradebook.Course {
	t.Helper()

	c := gradebook.NewCourse("Lengua", "Grupo B")
	c.Categories = []gradebook.Category{{ID: "R", Name: "General", Weight: 100}}
	c.Assignments = []gradebook.Assignment{
		{ID: "a1", CategoryID: "R", Name: "Examen", Type: gradebook.TypeNumeric},
		{ID: "a2", CategoryID: "R", Name: "Trabajo", Type: gradebook.TypeRubric,
			Criteria: []gradebook.Criterion{
				{ID: "cr1", Name: "Contenido", MaxPoints: 6},
				{ID: "cr2", Name: "Forma", MaxPoints: 4},
			}},
	}
	c.AddStudent("Ana", "García")
	registry.Add(t.Context(), c)
	return c
}

func do(t *testing.T, mux *http.ServeMux, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	mux, _ := newTestServer(t)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "healthz returns 200",
			path:       "/healthz",
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"ok"}`,
		},
		{
			name:       "readyz returns 200",
			path:       "/readyz",
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"ready"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, mux, http.MethodGet, tt.path, nil)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if strings.TrimSpace(rec.Body.String()) != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

type failingCheck struct{}

func (failingCheck) HealthCheck(context.Context) error { return errors.New("down") }

func TestReadyz_FailingCheck(t *testing.T) {
	registry, err := gradebook.NewRegistry(t.Context(), gradebook.NewMemoryStore())
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	schemes, _ := scheme.NewLoader(t.TempDir())
	srv := server.New(registry, schemes, nil, live.NewHub(), failingCheck{})

	rec := do(t, srv.Routes(), http.MethodGet, "/readyz", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestCreateAndListCourses(t *testing.T) {
	mux, _ := newTestServer(t)

	rec := do(t, mux, http.MethodPost, "/api/courses",
		map[string]string{"name": "  Mates ", "description": "Grupo A"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body)
	}
	var created gradebook.Course
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if created.ID == "" || created.Name != "Mates" {
		t.Errorf("created = %+v", created)
	}

	rec = do(t, mux, http.MethodGet, "/api/courses", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var summaries []struct {
		ID           string   `json:"id"`
		Name         string   `json:"name"`
		Students     int      `json:"students"`
		ClassAverage *float64 `json:"classAverage"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &summaries); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(summaries) != 1 || summaries[0].Name != "Mates" {
		t.Fatalf("summaries = %+v", summaries)
	}
	if summaries[0].ClassAverage != nil {
		t.Errorf("classAverage = %v, want null for ungraded course", *summaries[0].ClassAverage)
	}
}

func TestCreateCourse_MissingName(t *testing.T) {
	mux, _ := newTestServer(t)

	rec := do(t, mux, http.MethodPost, "/api/courses", map[string]string{"name": "  "})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestDeleteCourse(t *testing.T) {
	mux, registry := newTestServer(t)
	c := seedCourse(t, registry)

	rec := do(t, mux, http.MethodDelete, "/api/courses/"+c.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if _, err := registry.Get(c.ID); !errors.Is(err, gradebook.ErrCourseNotFound) {
		t.Errorf("course still present after delete")
	}

	rec = do(t, mux, http.MethodDelete, "/api/courses/ghost", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("delete unknown status = %d, want 404", rec.Code)
	}
}

func TestSheetEndpoint(t *testing.T) {
	mux, registry := newTestServer(t)
	c := seedCourse(t, registry)
	studentID := c.Students[0].ID

	rec := do(t, mux, http.MethodPut,
		"/api/courses/"+c.ID+"/grades/"+studentID+"/a1",
		map[string]string{"value": "7.5"})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("grade status = %d, body %s", rec.Code, rec.Body)
	}

	rec = do(t, mux, http.MethodGet, "/api/courses/"+c.ID+"/sheet", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("sheet status = %d", rec.Code)
	}
	var sheet gradebook.Sheet
	if err := json.Unmarshal(rec.Body.Bytes(), &sheet); err != nil {
		t.Fatalf("decode sheet: %v", err)
	}
	if len(sheet.RowData) != 1 {
		t.Fatalf("rows = %d, want 1", len(sheet.RowData))
	}
	row := sheet.RowData[0]
	if row.Label != "García, Ana" {
		t.Errorf("label = %q", row.Label)
	}
	if row.Cells[0].Value == nil || *row.Cells[0].Value != 7.5 {
		t.Errorf("grade cell = %v, want 7.5", row.Cells[0].Value)
	}
	if row.Final != 7.5 {
		t.Errorf("final = %v, want 7.5", row.Final)
	}
}

func TestPutNumericGrade_Validation(t *testing.T) {
	mux, registry := newTestServer(t)
	c := seedCourse(t, registry)
	studentID := c.Students[0].ID

	tests := []struct {
		name       string
		path       string
		body       any
		wantStatus int
	}{
		{"unknown course", "/api/courses/ghost/grades/" + studentID + "/a1",
			map[string]string{"value": "5"}, http.StatusNotFound},
		{"unknown student", "/api/courses/" + c.ID + "/grades/ghost/a1",
			map[string]string{"value": "5"}, http.StatusNotFound},
		{"unknown assignment", "/api/courses/" + c.ID + "/grades/" + studentID + "/ghost",
			map[string]string{"value": "5"}, http.StatusNotFound},
		{"malformed body", "/api/courses/" + c.ID + "/grades/" + studentID + "/a1",
			"{{{", http.StatusBadRequest},
		{"array value", "/api/courses/" + c.ID + "/grades/" + studentID + "/a1",
			`{"value": [1]}`, http.StatusBadRequest},
		{"numeric value accepted", "/api/courses/" + c.ID + "/grades/" + studentID + "/a1",
			map[string]float64{"value": 9}, http.StatusNoContent},
		{"null clears", "/api/courses/" + c.ID + "/grades/" + studentID + "/a1",
			map[string]any{"value": nil}, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, mux, http.MethodPut, tt.path, tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body)
			}
		})
	}

	// After the table ran, the null at the end must have cleared the entry.
	course, _ := registry.Get(c.ID)
	if _, ok := course.Grades[studentID]["a1"]; ok {
		t.Error("grade entry should be cleared by null value")
	}
}

func TestPutRubricGrade(t *testing.T) {
	mux, registry := newTestServer(t)
	c := seedCourse(t, registry)
	studentID := c.Students[0].ID

	rec := do(t, mux, http.MethodPut,
		"/api/courses/"+c.ID+"/rubric-grades/"+studentID+"/a2",
		map[string]any{"criteriaValues": map[string]float64{"cr1": 3, "cr2": 2}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var result map[string]float64
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result["value"] != 5 {
		t.Errorf("value = %v, want 5", result["value"])
	}

	// Grading a numeric assignment through the rubric route is a 400.
	rec = do(t, mux, http.MethodPut,
		"/api/courses/"+c.ID+"/rubric-grades/"+studentID+"/a1",
		map[string]any{"criteriaValues": map[string]float64{"cr1": 3}})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("non-rubric status = %d, want 400", rec.Code)
	}
}

func TestStudentRoutes(t *testing.T) {
	mux, registry := newTestServer(t)
	c := seedCourse(t, registry)

	rec := do(t, mux, http.MethodPost, "/api/courses/"+c.ID+"/students",
		map[string]string{"name": "Luis", "surname": "Pérez"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add status = %d, body %s", rec.Code, rec.Body)
	}
	var added gradebook.Student
	if err := json.Unmarshal(rec.Body.Bytes(), &added); err != nil {
		t.Fatalf("decode student: %v", err)
	}
	if added.ID == "" || added.Surname != "Pérez" {
		t.Errorf("added = %+v", added)
	}

	rec = do(t, mux, http.MethodDelete, "/api/courses/"+c.ID+"/students/"+added.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = do(t, mux, http.MethodDelete, "/api/courses/"+c.ID+"/students/"+added.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("re-delete status = %d, want 404", rec.Code)
	}
}

func TestImportStudents(t *testing.T) {
	mux, registry := newTestServer(t)
	c := seedCourse(t, registry)

	rec := do(t, mux, http.MethodPost, "/api/courses/"+c.ID+"/students/import",
		"Nombre;Apellidos\nLuis;Pérez\nMarta;Ruiz\n")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var result map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result["imported"] != 2 {
		t.Errorf("imported = %d, want 2", result["imported"])
	}

	course, _ := registry.Get(c.ID)
	if len(course.Students) != 3 {
		t.Errorf("students = %d, want 3", len(course.Students))
	}
}

func TestCategoryRoutes(t *testing.T) {
	mux, registry := newTestServer(t)
	c := seedCourse(t, registry)

	rec := do(t, mux, http.MethodPut, "/api/courses/"+c.ID+"/categories",
		[]gradebook.Category{
			{Name: "Teoría", Weight: 60},
			{Name: "Práctica", Weight: 40},
		})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("put status = %d, body %s", rec.Code, rec.Body)
	}
	course, _ := registry.Get(c.ID)
	if len(course.Categories) != 2 || course.Categories[0].ID == "" {
		t.Errorf("categories = %+v", course.Categories)
	}
	// Assignments survive a forest replacement.
	if len(course.Assignments) != 2 {
		t.Errorf("assignments = %d, want 2", len(course.Assignments))
	}
}

func TestSchemeRoutes(t *testing.T) {
	mux, registry := newTestServer(t)
	c := seedCourse(t, registry)

	rec := do(t, mux, http.MethodGet, "/api/schemes", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var templates []scheme.Template
	if err := json.Unmarshal(rec.Body.Bytes(), &templates); err != nil {
		t.Fatalf("decode templates: %v", err)
	}
	if len(templates) != 1 || templates[0].ID != "basica" {
		t.Fatalf("templates = %+v", templates)
	}

	rec = do(t, mux, http.MethodPost, "/api/courses/"+c.ID+"/categories/from-scheme",
		map[string]string{"schemeId": "basica"})
	if rec.Code != http.StatusOK {
		t.Fatalf("apply status = %d, body %s", rec.Code, rec.Body)
	}
	course, _ := registry.Get(c.ID)
	if len(course.Categories) != 2 || course.Categories[0].Name != "Pruebas" {
		t.Errorf("categories = %+v", course.Categories)
	}

	rec = do(t, mux, http.MethodPost, "/api/courses/"+c.ID+"/categories/from-scheme",
		map[string]string{"schemeId": "ghost"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown scheme status = %d, want 404", rec.Code)
	}
}

func TestAssignmentRoutes(t *testing.T) {
	mux, registry := newTestServer(t)
	c := seedCourse(t, registry)
	studentID := c.Students[0].ID

	rec := do(t, mux, http.MethodPost, "/api/courses/"+c.ID+"/assignments",
		map[string]string{"name": "Dictado", "categoryId": "R"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add status = %d, body %s", rec.Code, rec.Body)
	}
	var created gradebook.Assignment
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode assignment: %v", err)
	}
	if created.ID == "" || created.Type != gradebook.TypeNumeric {
		t.Errorf("created = %+v", created)
	}

	rec = do(t, mux, http.MethodPost, "/api/courses/"+c.ID+"/assignments",
		map[string]string{"name": "Mudo", "categoryId": "R", "type": "rubric"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("rubric without criteria status = %d, want 400", rec.Code)
	}

	// Deleting an assignment takes its grade cells with it.
	do(t, mux, http.MethodPut, "/api/courses/"+c.ID+"/grades/"+studentID+"/a1",
		map[string]string{"value": "6"})
	rec = do(t, mux, http.MethodDelete, "/api/courses/"+c.ID+"/assignments/a1", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	course, _ := registry.Get(c.ID)
	if _, ok := course.Grades[studentID]["a1"]; ok {
		t.Error("grade cells should be gone with the assignment")
	}
}

func TestExportEndpoint(t *testing.T) {
	mux, registry := newTestServer(t)
	c := seedCourse(t, registry)

	rec := do(t, mux, http.MethodGet, "/api/courses/"+c.ID+"/export", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("content-type = %q", ct)
	}

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()
	got, err := f.GetCellValue(f.GetSheetName(0), "A1")
	if err != nil {
		t.Fatalf("GetCellValue() error = %v", err)
	}
	if got != "Alumno" {
		t.Errorf("A1 = %q, want Alumno", got)
	}
}

func TestLiveEndpoint(t *testing.T) {
	mux, registry := newTestServer(t)
	c := seedCourse(t, registry)
	studentID := c.Students[0].ID

	ts := httptest.NewServer(mux)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/courses/" + c.ID + "/live"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.CloseNow()

	// A grade mutation must reach the subscriber. The subscription races
	// the PUT, so retry briefly.
	deadline := time.Now().Add(2 * time.Second)
	var ev live.Event
	for {
		do(t, mux, http.MethodPut, "/api/courses/"+c.ID+"/grades/"+studentID+"/a1",
			map[string]string{"value": "8"})

		readCtx, readCancel := context.WithTimeout(ctx, 200*time.Millisecond)
		err = wsjson.Read(readCtx, conn, &ev)
		readCancel()
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("no event received: %v", err)
		}
	}

	if ev.CourseID != c.ID || ev.Change != live.ChangeGrades {
		t.Errorf("event = %+v", ev)
	}

	conn.Close(websocket.StatusNormalClosure, "")
}

func TestLiveEndpoint_UnknownCourse(t *testing.T) {
	mux, _ := newTestServer(t)

	rec := do(t, mux, http.MethodGet, "/api/courses/ghost/live", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
