package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvnlft/team-service/internal/api/handler"
	"github.com/kvnlft/team-service/internal/api/middleware"
	"github.com/kvnlft/team-service/internal/roster"
	"github.com/kvnlft/team-service/internal/team"
	"github.com/kvnlft/team-service/internal/user"
)

// --- Mock TeamService ---

type mockTeamService struct {
	createFn        func(ctx context.Context, caller *user.User, input team.CreateInput) (*team.Summary, error)
	listFn          func(ctx context.Context, callerID uuid.UUID) ([]team.Summary, error)
	getFn           func(ctx context.Context, callerID uuid.UUID, teamID int) (*team.Summary, error)
	removeFn        func(ctx context.Context, teamID int) error
	addMemberFn     func(ctx context.Context, teamID int, ref team.MemberRef) (*team.MemberRef, error)
	addManagerFn    func(ctx context.Context, teamID int, ref team.MemberRef) (*team.MemberRef, error)
	removeMemberFn  func(ctx context.Context, teamID int, memberID uuid.UUID) error
	removeManagerFn func(ctx context.Context, callerID uuid.UUID, teamID int, managerID uuid.UUID) error
}

func (m *mockTeamService) Create(ctx context.Context, caller *user.User, input team.CreateInput) (*team.Summary, error) {
	if m.createFn != nil {
		return m.createFn(ctx, caller, input)
	}
	return &team.Summary{
		TeamID:   1,
		TeamName: input.TeamName,
		Leader:   &team.MemberRef{ID: caller.ID, Name: caller.Username},
		Managers: []team.MemberRef{},
		Members:  []team.MemberRef{},
	}, nil
}

func (m *mockTeamService) List(ctx context.Context, callerID uuid.UUID) ([]team.Summary, error) {
	if m.listFn != nil {
		return m.listFn(ctx, callerID)
	}
	return nil, team.ErrNoTeams
}

func (m *mockTeamService) Get(ctx context.Context, callerID uuid.UUID, teamID int) (*team.Summary, error) {
	if m.getFn != nil {
		return m.getFn(ctx, callerID, teamID)
	}
	return nil, team.ErrTeamNotFound
}

func (m *mockTeamService) Remove(ctx context.Context, teamID int) error {
	if m.removeFn != nil {
		return m.removeFn(ctx, teamID)
	}
	return nil
}

func (m *mockTeamService) AddMember(ctx context.Context, teamID int, ref team.MemberRef) (*team.MemberRef, error) {
	if m.addMemberFn != nil {
		return m.addMemberFn(ctx, teamID, ref)
	}
	return &team.MemberRef{ID: ref.ID, Name: ref.Name}, nil
}

func (m *mockTeamService) AddManager(ctx context.Context, teamID int, ref team.MemberRef) (*team.MemberRef, error) {
	if m.addManagerFn != nil {
		return m.addManagerFn(ctx, teamID, ref)
	}
	return &team.MemberRef{ID: ref.ID, Name: ref.Name}, nil
}

func (m *mockTeamService) RemoveMember(ctx context.Context, teamID int, memberID uuid.UUID) error {
	if m.removeMemberFn != nil {
		return m.removeMemberFn(ctx, teamID, memberID)
	}
	return nil
}

func (m *mockTeamService) RemoveManager(ctx context.Context, callerID uuid.UUID, teamID int, managerID uuid.UUID) error {
	if m.removeManagerFn != nil {
		return m.removeManagerFn(ctx, callerID, teamID, managerID)
	}
	return nil
}

// --- Helpers ---

func makeChiRequest(method, path string, body []byte, caller *user.User, params map[string]string) (*http.Request, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()

	ctx := req.Context()
	if caller != nil {
		ctx = middleware.WithIdentity(ctx, caller)
	}
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}

	return req.WithContext(ctx), w
}

func parseEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var env map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &env)
	require.NoError(t, err, "failed to parse response body")
	return env
}

func managerCaller() *user.User {
	return &user.User{ID: uuid.New(), Username: "Alice", Role: user.RoleManager}
}

// ===== POST /teams =====

func TestTeamCreate_Success(t *testing.T) {
	t.Parallel()

	caller := managerCaller()
	bobID := uuid.New()

	svc := &mockTeamService{
		createFn: func(ctx context.Context, c *user.User, input team.CreateInput) (*team.Summary, error) {
			return &team.Summary{
				TeamID:   1,
				TeamName: input.TeamName,
				Leader:   &team.MemberRef{ID: c.ID, Name: c.Username},
				Managers: []team.MemberRef{},
				Members:  []team.MemberRef{{ID: bobID, Name: "Bob"}},
			}, nil
		},
	}
	h := handler.NewTeamHandler(svc)

	body, _ := json.Marshal(map[string]interface{}{
		"teamName": "Alpha",
		"managers": []map[string]string{},
		"members": []map[string]string{
			{"memberId": bobID.String(), "memberName": "Bob"},
		},
	})

	req, w := makeChiRequest(http.MethodPost, "/teams", body, caller, nil)
	h.Create(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	env := parseEnvelope(t, w)
	assert.Nil(t, env["error"])
	data := env["data"].(map[string]interface{})
	assert.Equal(t, "Alpha", data["teamName"])

	leader := data["teamLeader"].(map[string]interface{})
	assert.Equal(t, caller.ID.String(), leader["userId"])

	members := data["members"].([]interface{})
	require.Len(t, members, 1)
	member := members[0].(map[string]interface{})
	assert.Equal(t, bobID.String(), member["memberId"])
	assert.Equal(t, "Bob", member["memberName"])
}

func TestTeamCreate_ValidationError(t *testing.T) {
	t.Parallel()

	h := handler.NewTeamHandler(&mockTeamService{})

	body, _ := json.Marshal(map[string]interface{}{
		"teamName": "   ",
		"members": []map[string]string{
			{"memberId": "not-a-uuid", "memberName": ""},
		},
	})

	req, w := makeChiRequest(http.MethodPost, "/teams", body, managerCaller(), nil)
	h.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	env := parseEnvelope(t, w)
	errObj := env["error"].(map[string]interface{})
	assert.Equal(t, "VALIDATION_ERROR", errObj["code"])
	details := errObj["details"].([]interface{})
	assert.Len(t, details, 3) // teamName + memberId + memberName
}

func TestTeamCreate_InvalidJSON(t *testing.T) {
	t.Parallel()

	h := handler.NewTeamHandler(&mockTeamService{})

	req, w := makeChiRequest(http.MethodPost, "/teams", []byte("{nope"), managerCaller(), nil)
	h.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := parseEnvelope(t, w)
	errObj := env["error"].(map[string]interface{})
	assert.Equal(t, "INVALID_JSON", errObj["code"])
}

func TestTeamCreate_DuplicateName(t *testing.T) {
	t.Parallel()

	svc := &mockTeamService{
		createFn: func(ctx context.Context, c *user.User, input team.CreateInput) (*team.Summary, error) {
			return nil, team.ErrDuplicateTeamName
		},
	}
	h := handler.NewTeamHandler(svc)

	body, _ := json.Marshal(map[string]interface{}{"teamName": "Alpha"})

	req, w := makeChiRequest(http.MethodPost, "/teams", body, managerCaller(), nil)
	h.Create(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	env := parseEnvelope(t, w)
	errObj := env["error"].(map[string]interface{})
	assert.Equal(t, "DUPLICATE_NAME", errObj["code"])
}

// ===== GET /teams =====

func TestTeamList_Success(t *testing.T) {
	t.Parallel()

	caller := managerCaller()
	svc := &mockTeamService{
		listFn: func(ctx context.Context, callerID uuid.UUID) ([]team.Summary, error) {
			return []team.Summary{
				{TeamID: 1, TeamName: "Alpha", Leader: &team.MemberRef{ID: caller.ID, Name: "Alice"},
					Managers: []team.MemberRef{}, Members: []team.MemberRef{}},
			}, nil
		},
	}
	h := handler.NewTeamHandler(svc)

	req, w := makeChiRequest(http.MethodGet, "/teams", nil, caller, nil)
	h.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	env := parseEnvelope(t, w)
	data := env["data"].([]interface{})
	require.Len(t, data, 1)
	assert.Equal(t, "Alpha", data[0].(map[string]interface{})["teamName"])
}

func TestTeamList_Empty(t *testing.T) {
	t.Parallel()

	h := handler.NewTeamHandler(&mockTeamService{})

	req, w := makeChiRequest(http.MethodGet, "/teams", nil, managerCaller(), nil)
	h.List(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	env := parseEnvelope(t, w)
	errObj := env["error"].(map[string]interface{})
	assert.Equal(t, "NOT_FOUND", errObj["code"])
}

// ===== GET /teams/{teamId} =====

func TestTeamGet_Forbidden(t *testing.T) {
	t.Parallel()

	svc := &mockTeamService{
		getFn: func(ctx context.Context, callerID uuid.UUID, teamID int) (*team.Summary, error) {
			return nil, team.ErrNotOnTeam
		},
	}
	h := handler.NewTeamHandler(svc)

	req, w := makeChiRequest(http.MethodGet, "/teams/1", nil, managerCaller(), map[string]string{"teamId": "1"})
	h.Get(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestTeamGet_InvalidTeamID(t *testing.T) {
	t.Parallel()

	h := handler.NewTeamHandler(&mockTeamService{})

	req, w := makeChiRequest(http.MethodGet, "/teams/abc", nil, managerCaller(), map[string]string{"teamId": "abc"})
	h.Get(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := parseEnvelope(t, w)
	assert.Equal(t, "INVALID_ID", env["error"].(map[string]interface{})["code"])
}

// ===== DELETE /teams/{teamId} =====

func TestTeamDelete_Success(t *testing.T) {
	t.Parallel()

	removed := 0
	svc := &mockTeamService{
		removeFn: func(ctx context.Context, teamID int) error {
			removed = teamID
			return nil
		},
	}
	h := handler.NewTeamHandler(svc)

	req, w := makeChiRequest(http.MethodDelete, "/teams/3", nil, managerCaller(), map[string]string{"teamId": "3"})
	h.Delete(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 3, removed)
}

// ===== POST /teams/{teamId}/members =====

func TestAddMember_Success(t *testing.T) {
	t.Parallel()

	bobID := uuid.New()
	h := handler.NewTeamHandler(&mockTeamService{})

	body, _ := json.Marshal(map[string]string{"memberId": bobID.String(), "memberName": "Bob"})

	req, w := makeChiRequest(http.MethodPost, "/teams/1/members", body, managerCaller(), map[string]string{"teamId": "1"})
	h.AddMember(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	env := parseEnvelope(t, w)
	data := env["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["teamId"])
	assert.Equal(t, bobID.String(), data["memberId"])
	assert.Equal(t, "Bob", data["memberName"])
}

func TestAddMember_NameMismatch(t *testing.T) {
	t.Parallel()

	svc := &mockTeamService{
		addMemberFn: func(ctx context.Context, teamID int, ref team.MemberRef) (*team.MemberRef, error) {
			return nil, team.ErrNameMismatch
		},
	}
	h := handler.NewTeamHandler(svc)

	body, _ := json.Marshal(map[string]string{"memberId": uuid.New().String(), "memberName": "Robert"})

	req, w := makeChiRequest(http.MethodPost, "/teams/1/members", body, managerCaller(), map[string]string{"teamId": "1"})
	h.AddMember(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := parseEnvelope(t, w)
	assert.Equal(t, "NAME_MISMATCH", env["error"].(map[string]interface{})["code"])
}

func TestAddMember_AlreadyOnRoster(t *testing.T) {
	t.Parallel()

	svc := &mockTeamService{
		addMemberFn: func(ctx context.Context, teamID int, ref team.MemberRef) (*team.MemberRef, error) {
			return nil, roster.ErrAlreadyOnRoster
		},
	}
	h := handler.NewTeamHandler(svc)

	body, _ := json.Marshal(map[string]string{"memberId": uuid.New().String(), "memberName": "Bob"})

	req, w := makeChiRequest(http.MethodPost, "/teams/1/members", body, managerCaller(), map[string]string{"teamId": "1"})
	h.AddMember(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	env := parseEnvelope(t, w)
	assert.Equal(t, "ALREADY_ON_ROSTER", env["error"].(map[string]interface{})["code"])
}

// ===== POST /teams/{teamId}/managers =====

func TestAddManager_RoleMismatch(t *testing.T) {
	t.Parallel()

	svc := &mockTeamService{
		addManagerFn: func(ctx context.Context, teamID int, ref team.MemberRef) (*team.MemberRef, error) {
			return nil, team.ErrRoleMismatch
		},
	}
	h := handler.NewTeamHandler(svc)

	body, _ := json.Marshal(map[string]string{"managerId": uuid.New().String(), "managerName": "Bob"})

	req, w := makeChiRequest(http.MethodPost, "/teams/1/managers", body, managerCaller(), map[string]string{"teamId": "1"})
	h.AddManager(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := parseEnvelope(t, w)
	assert.Equal(t, "ROLE_MISMATCH", env["error"].(map[string]interface{})["code"])
}

// ===== DELETE roster entries =====

func TestRemoveMember_Success(t *testing.T) {
	t.Parallel()

	memberID := uuid.New()
	h := handler.NewTeamHandler(&mockTeamService{})

	req, w := makeChiRequest(http.MethodDelete, "/teams/1/members/"+memberID.String(), nil, managerCaller(),
		map[string]string{"teamId": "1", "memberId": memberID.String()})
	h.RemoveMember(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRemoveMember_InvalidMemberID(t *testing.T) {
	t.Parallel()

	h := handler.NewTeamHandler(&mockTeamService{})

	req, w := makeChiRequest(http.MethodDelete, "/teams/1/members/xyz", nil, managerCaller(),
		map[string]string{"teamId": "1", "memberId": "xyz"})
	h.RemoveMember(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRemoveManager_LeaderSelfRemoval(t *testing.T) {
	t.Parallel()

	caller := managerCaller()
	svc := &mockTeamService{
		removeManagerFn: func(ctx context.Context, callerID uuid.UUID, teamID int, managerID uuid.UUID) error {
			return team.ErrLeaderSelfRemoval
		},
	}
	h := handler.NewTeamHandler(svc)

	req, w := makeChiRequest(http.MethodDelete, "/teams/1/managers/"+caller.ID.String(), nil, caller,
		map[string]string{"teamId": "1", "managerId": caller.ID.String()})
	h.RemoveManager(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := parseEnvelope(t, w)
	assert.Equal(t, "LEADER_SELF_REMOVE", env["error"].(map[string]interface{})["code"])
}

func TestRemoveManager_NotOnRoster(t *testing.T) {
	t.Parallel()

	svc := &mockTeamService{
		removeManagerFn: func(ctx context.Context, callerID uuid.UUID, teamID int, managerID uuid.UUID) error {
			return roster.ErrEntryNotFound
		},
	}
	h := handler.NewTeamHandler(svc)

	managerID := uuid.New()
	req, w := makeChiRequest(http.MethodDelete, "/teams/1/managers/"+managerID.String(), nil, managerCaller(),
		map[string]string{"teamId": "1", "managerId": managerID.String()})
	h.RemoveManager(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
