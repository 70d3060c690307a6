package controller

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gym-statistics/internal/entity"
	"gym-statistics/internal/pkg/serverutils"
	"gym-statistics/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDialog struct {
	handle, text string
	reply        *entity.DialogReply
	err          error
}

func (s *stubDialog) Handle(ctx context.Context, handle, text string) (*entity.DialogReply, error) {
	s.handle, s.text = handle, text
	return s.reply, s.err
}

type stubDashboard struct {
	service.IDashboardService // unimplemented methods panic

	view       entity.DashboardView
	points     []entity.SeriesPoint
	selection  entity.DashboardSelection
	refreshErr error
	trigger    string
}

func (s *stubDashboard) Owners(ctx context.Context) []string { return s.view.Owners }

func (s *stubDashboard) MuscleGroups(ctx context.Context, owner string) []string {
	s.selection.Owner = owner
	return s.view.MuscleGroups
}

func (s *stubDashboard) Exercises(ctx context.Context, owner, muscleGroup string) []string {
	s.selection = entity.DashboardSelection{Owner: owner, MuscleGroup: muscleGroup}
	return s.view.Exercises
}

func (s *stubDashboard) Series(ctx context.Context, sel entity.DashboardSelection) []entity.SeriesPoint {
	s.selection = sel
	return s.points
}

func (s *stubDashboard) View(ctx context.Context, sel entity.DashboardSelection) entity.DashboardView {
	s.selection = sel
	return s.view
}

func (s *stubDashboard) Refresh(ctx context.Context, trigger string) (bool, error) {
	s.trigger = trigger
	return s.refreshErr == nil, s.refreshErr
}

func (s *stubDashboard) Version() uint64 { return s.view.Version }

func newApp(register func(r fiber.Router)) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	register(app.Group("/api"))
	return app
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestDialogController_HandleMessage(t *testing.T) {
	dialog := &stubDialog{reply: &entity.DialogReply{
		Text:     "Pick a muscle group",
		Keyboard: [][]string{{"Chest", "Back"}},
	}}
	app := newApp(NewDialogController(dialog).RegisterRoutes)

	status, body := do(t, app, "POST", "/api/dialog/v1/messages", `{"handle":"tg:42","text":"Alex"}`)

	assert.Equal(t, 200, status)
	assert.Equal(t, "tg:42", dialog.handle)
	assert.Equal(t, "Alex", dialog.text)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "Pick a muscle group", data["text"])
	assert.Equal(t, []interface{}{[]interface{}{"Chest", "Back"}}, data["keyboard"])
	assert.Equal(t, false, data["remove_keyboard"])
}

func TestDialogController_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"missing handle", `{"text":"hi"}`, nil, 400},
		{"malformed body", `{"handle":`, nil, 400},
		{"service failure", `{"handle":"tg:1","text":"hi"}`, errors.New("disk full"), 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dialog := &stubDialog{err: tt.err}
			app := newApp(NewDialogController(dialog).RegisterRoutes)

			status, body := do(t, app, "POST", "/api/dialog/v1/messages", tt.body)

			assert.Equal(t, tt.status, status)
			assert.Equal(t, false, body["success"])
		})
	}
}

func TestDashboardController_View(t *testing.T) {
	dash := &stubDashboard{view: entity.DashboardView{
		Owners:       []string{"Alex", "Sam"},
		MuscleGroups: []string{"Legs"},
		Exercises:    []string{"Squat"},
		Selection:    entity.DashboardSelection{Owner: "Sam", MuscleGroup: "Legs", Exercise: "Squat"},
		Series: []entity.SeriesPoint{{
			Date:   time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
			Weight: 100,
			Reps:   entity.NewReps(8, 8, 6),
		}},
		Version: 3,
	}}
	app := newApp(NewDashboardController(dash).RegisterRoutes)

	status, body := do(t, app, "GET", "/api/dashboard/v1/view?owner=Sam&muscle_group=Legs", "")

	require.Equal(t, 200, status)
	assert.Equal(t, entity.DashboardSelection{Owner: "Sam", MuscleGroup: "Legs"}, dash.selection)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(3), data["version"])
	assert.Equal(t, false, data["empty"])
	assert.Equal(t, "Squat", data["selection"].(map[string]interface{})["exercise"])

	point := data["series"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "2024-03-02", point["date"])
	assert.Equal(t, float64(100), point["weight"])
	assert.Equal(t, []interface{}{float64(8), float64(8), float64(6)}, point["reps"])
	assert.Equal(t, "8 8 6", point["reps_text"])
}

func TestDashboardController_Options(t *testing.T) {
	dash := &stubDashboard{view: entity.DashboardView{
		Owners:       []string{"Alex"},
		MuscleGroups: []string{"Chest", "Legs"},
		Exercises:    []string{"Squat"},
	}}
	app := newApp(NewDashboardController(dash).RegisterRoutes)

	_, body := do(t, app, "GET", "/api/dashboard/v1/owners", "")
	assert.Equal(t, []interface{}{"Alex"}, body["data"])

	_, body = do(t, app, "GET", "/api/dashboard/v1/muscle-groups?owner=Alex", "")
	assert.Equal(t, []interface{}{"Chest", "Legs"}, body["data"])
	assert.Equal(t, "Alex", dash.selection.Owner)

	_, body = do(t, app, "GET", "/api/dashboard/v1/exercises?owner=Alex&muscle_group=Legs", "")
	assert.Equal(t, []interface{}{"Squat"}, body["data"])
	assert.Equal(t, "Legs", dash.selection.MuscleGroup)
}

func TestDashboardController_SeriesEmptyIsArray(t *testing.T) {
	dash := &stubDashboard{}
	app := newApp(NewDashboardController(dash).RegisterRoutes)

	status, body := do(t, app, "GET", "/api/dashboard/v1/series?owner=Nobody&muscle_group=Legs&exercise=Squat", "")

	assert.Equal(t, 200, status)
	assert.Equal(t, []interface{}{}, body["data"])
	assert.Equal(t, "Nobody", dash.selection.Owner)
}

func TestDashboardController_Refresh(t *testing.T) {
	dash := &stubDashboard{view: entity.DashboardView{Version: 7}}
	app := newApp(NewDashboardController(dash).RegisterRoutes)

	status, body := do(t, app, "POST", "/api/dashboard/v1/refresh", "")
	assert.Equal(t, 200, status)
	assert.Equal(t, service.TriggerManual, dash.trigger)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, true, data["reloaded"])
	assert.Equal(t, float64(7), data["version"])

	dash.refreshErr = errors.New("permission denied")
	status, _ = do(t, app, "POST", "/api/dashboard/v1/refresh", "")
	assert.Equal(t, 503, status)
}

func TestHealthController(t *testing.T) {
	app := fiber.New()
	NewHealthController(true).RegisterRoutes(app)

	resp, err := app.Test(httptest.NewRequest("GET", "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "go_goroutines")
}
