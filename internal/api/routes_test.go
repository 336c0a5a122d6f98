package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nutrivida/clinic-app/internal/domain"
	"nutrivida/clinic-app/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testJWTSecret = "routes-test-secret"

// stubPlanService overrides only what the routed handlers call; the
// embedded interface panics on anything unexpected.
type stubPlanService struct {
	service.PlanService
	plan     *domain.MealPlan
	template *domain.MenuTemplate
	updated  []primitive.ObjectID
	deleted  []primitive.ObjectID
}

func (s *stubPlanService) GetPlanByID(ctx context.Context, id primitive.ObjectID) (*domain.MealPlan, error) {
	if s.plan == nil || s.plan.ID != id {
		return nil, service.ErrPlanNotFound
	}
	return s.plan, nil
}

func (s *stubPlanService) GetTemplateByID(ctx context.Context, id primitive.ObjectID) (*domain.MenuTemplate, error) {
	if s.template == nil || s.template.ID != id {
		return nil, service.ErrTemplateNotFound
	}
	return s.template, nil
}

func (s *stubPlanService) UpdateAssignmentStatus(ctx context.Context, assignmentID primitive.ObjectID, status domain.AssignmentStatus) error {
	s.updated = append(s.updated, assignmentID)
	return nil
}

func (s *stubPlanService) DeleteAssignment(ctx context.Context, assignmentID primitive.ObjectID) error {
	s.deleted = append(s.deleted, assignmentID)
	return nil
}

func newTestRouter(planService service.PlanService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupRoutes(router, testJWTSecret, nil, nil, planService, nil, nil, nil, nil, nil, nil)
	return router
}

func signToken(t *testing.T, userID primitive.ObjectID, role domain.Role) string {
	t.Helper()
	claims := jwtClaims{
		UserID: userID.Hex(),
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func doRequest(t *testing.T, router *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+token)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRoutesResolvePathParams(t *testing.T) {
	planID := primitive.NewObjectID()
	menuID := primitive.NewObjectID()
	stub := &stubPlanService{
		plan:     &domain.MealPlan{ID: planID, Name: "Plan 1500", Calories: 1500},
		template: &domain.MenuTemplate{ID: menuID, Name: "Menú base", IsActive: true},
	}
	router := newTestRouter(stub)
	admin := signToken(t, primitive.NewObjectID(), domain.RoleAdmin)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/plans/"+planID.Hex(), admin, "")
	if rec.Code != http.StatusOK {
		t.Errorf("GET plan by id = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodGet, "/api/v1/menus/"+menuID.Hex(), admin, "")
	if rec.Code != http.StatusOK {
		t.Errorf("GET menu by id = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	assignmentID := primitive.NewObjectID()
	rec = doRequest(t, router, http.MethodPatch, "/api/v1/assignments/"+assignmentID.Hex()+"/status", admin, `{"status":"paused"}`)
	if rec.Code != http.StatusNoContent {
		t.Errorf("PATCH assignment status = %d, want 204 (body %s)", rec.Code, rec.Body.String())
	}
	if len(stub.updated) != 1 || stub.updated[0] != assignmentID {
		t.Errorf("status update reached service with %v, want %v", stub.updated, assignmentID)
	}

	rec = doRequest(t, router, http.MethodDelete, "/api/v1/assignments/"+assignmentID.Hex(), admin, "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("DELETE assignment = %d, want 204 (body %s)", rec.Code, rec.Body.String())
	}
	if len(stub.deleted) != 1 || stub.deleted[0] != assignmentID {
		t.Errorf("delete reached service with %v, want %v", stub.deleted, assignmentID)
	}
}

func TestRoutesRejectMalformedIDs(t *testing.T) {
	router := newTestRouter(&stubPlanService{})
	admin := signToken(t, primitive.NewObjectID(), domain.RoleAdmin)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/plans/not-an-id", admin, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed plan id = %d, want 400", rec.Code)
	}

	rec = doRequest(t, router, http.MethodGet, "/api/v1/plans/"+primitive.NewObjectID().Hex(), admin, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown plan id = %d, want 404 (body %s)", rec.Code, rec.Body.String())
	}
}
