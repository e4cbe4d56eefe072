package service_test

import (
	"context"
	"time"

	"github.com/jaekwang-park/task-api/internal/cognito"
	"github.com/jaekwang-park/task-api/internal/model"
	"github.com/jaekwang-park/task-api/internal/repository"
)

// --- Mock Task Repository ---

type mockTaskRepo struct {
	createFn            func(ctx context.Context, task model.Task) (model.Task, error)
	getByIDFn           func(ctx context.Context, userID, taskID string) (model.Task, error)
	getPublicFn         func(ctx context.Context, taskID string) (model.Task, error)
	updateFn            func(ctx context.Context, task model.Task) (model.Task, error)
	transitionFn        func(ctx context.Context, userID, taskID string, from []model.TaskStatus, to model.TaskStatus) (model.Task, error)
	deletePermanentlyFn func(ctx context.Context, userID, taskID string) error
	listFn              func(ctx context.Context, params model.TaskListParams) ([]model.Task, error)
	listPublicFn        func(ctx context.Context, page model.Page) ([]model.Task, error)
	countOwnedFn        func(ctx context.Context, userID string, taskIDs []string) (int, error)
	batchUpdateFn       func(ctx context.Context, userID string, taskIDs []string, patch model.TaskBatchPatch) (int, error)
	batchTransitionFn   func(ctx context.Context, userID string, taskIDs []string, from []model.TaskStatus, to model.TaskStatus) (int, error)
}

func (m *mockTaskRepo) Create(ctx context.Context, task model.Task) (model.Task, error) {
	return m.createFn(ctx, task)
}
func (m *mockTaskRepo) GetByID(ctx context.Context, userID, taskID string) (model.Task, error) {
	return m.getByIDFn(ctx, userID, taskID)
}
func (m *mockTaskRepo) GetPublic(ctx context.Context, taskID string) (model.Task, error) {
	return m.getPublicFn(ctx, taskID)
}
func (m *mockTaskRepo) Update(ctx context.Context, task model.Task) (model.Task, error) {
	return m.updateFn(ctx, task)
}
func (m *mockTaskRepo) Transition(ctx context.Context, userID, taskID string, from []model.TaskStatus, to model.TaskStatus) (model.Task, error) {
	return m.transitionFn(ctx, userID, taskID, from, to)
}
func (m *mockTaskRepo) DeletePermanently(ctx context.Context, userID, taskID string) error {
	return m.deletePermanentlyFn(ctx, userID, taskID)
}
func (m *mockTaskRepo) List(ctx context.Context, params model.TaskListParams) ([]model.Task, error) {
	return m.listFn(ctx, params)
}
func (m *mockTaskRepo) ListPublic(ctx context.Context, page model.Page) ([]model.Task, error) {
	return m.listPublicFn(ctx, page)
}
func (m *mockTaskRepo) CountOwned(ctx context.Context, userID string, taskIDs []string) (int, error) {
	return m.countOwnedFn(ctx, userID, taskIDs)
}
func (m *mockTaskRepo) BatchUpdate(ctx context.Context, userID string, taskIDs []string, patch model.TaskBatchPatch) (int, error) {
	return m.batchUpdateFn(ctx, userID, taskIDs, patch)
}
func (m *mockTaskRepo) BatchTransition(ctx context.Context, userID string, taskIDs []string, from []model.TaskStatus, to model.TaskStatus) (int, error) {
	return m.batchTransitionFn(ctx, userID, taskIDs, from, to)
}

// --- Mock Category Repository ---

type mockCategoryRepo struct {
	createFn  func(ctx context.Context, category model.Category) (model.Category, error)
	getByIDFn func(ctx context.Context, userID, categoryID string) (model.Category, error)
	listFn    func(ctx context.Context, userID string, page model.Page) ([]model.Category, error)
	updateFn  func(ctx context.Context, category model.Category) (model.Category, error)
	deleteFn  func(ctx context.Context, userID, categoryID string) error
}

func (m *mockCategoryRepo) Create(ctx context.Context, category model.Category) (model.Category, error) {
	return m.createFn(ctx, category)
}
func (m *mockCategoryRepo) GetByID(ctx context.Context, userID, categoryID string) (model.Category, error) {
	return m.getByIDFn(ctx, userID, categoryID)
}
func (m *mockCategoryRepo) List(ctx context.Context, userID string, page model.Page) ([]model.Category, error) {
	return m.listFn(ctx, userID, page)
}
func (m *mockCategoryRepo) ListAll(ctx context.Context, userID string) ([]model.Category, error) {
	return m.listFn(ctx, userID, model.Page{})
}
func (m *mockCategoryRepo) Update(ctx context.Context, category model.Category) (model.Category, error) {
	return m.updateFn(ctx, category)
}
func (m *mockCategoryRepo) Delete(ctx context.Context, userID, categoryID string) error {
	return m.deleteFn(ctx, userID, categoryID)
}

// ownedCategories returns a category repo that knows the given ids for user-1.
func ownedCategories(ids ...string) *mockCategoryRepo {
	return &mockCategoryRepo{
		getByIDFn: func(ctx context.Context, userID, categoryID string) (model.Category, error) {
			for _, id := range ids {
				if userID == "user-1" && id == categoryID {
					return model.Category{ID: id, UserID: userID, Name: "cat"}, nil
				}
			}
			return model.Category{}, repository.ErrNotFound
		},
	}
}

// --- Mock Stats Repository ---

type mockStatsRepo struct {
	byStatus        map[model.TaskStatus]int
	createdByDay    map[string]int
	completedByDay  map[string]int
	openByCategory  map[string]int
	openByPriority  map[model.Priority]int
	overdue, open   int
	err             error
	gotFrom, gotTo  time.Time
	gotOverdueSince time.Time
}

func (m *mockStatsRepo) CountByStatus(ctx context.Context, userID string) (map[model.TaskStatus]int, error) {
	return m.byStatus, m.err
}
func (m *mockStatsRepo) CountCreatedByDay(ctx context.Context, userID string, from, to time.Time) (map[string]int, error) {
	m.gotFrom, m.gotTo = from, to
	return m.createdByDay, m.err
}
func (m *mockStatsRepo) CountCompletedByDay(ctx context.Context, userID string, from, to time.Time) (map[string]int, error) {
	return m.completedByDay, m.err
}
func (m *mockStatsRepo) CountOpenByCategory(ctx context.Context, userID string) (map[string]int, error) {
	return m.openByCategory, m.err
}
func (m *mockStatsRepo) CountOpenByPriority(ctx context.Context, userID string) (map[model.Priority]int, error) {
	return m.openByPriority, m.err
}
func (m *mockStatsRepo) CountOpenOverdue(ctx context.Context, userID string, now time.Time) (int, int, error) {
	m.gotOverdueSince = now
	return m.overdue, m.open, m.err
}

// --- Mock User Repository ---

type mockUserRepo struct {
	getOrCreateFn     func(ctx context.Context, cognitoSub, email string) (model.User, error)
	getByCognitoSubFn func(ctx context.Context, cognitoSub string) (model.User, error)
	getByIDFn         func(ctx context.Context, userID string) (model.User, error)
	updateFn          func(ctx context.Context, user model.User) (model.User, error)
}

func (m *mockUserRepo) GetOrCreate(ctx context.Context, cognitoSub, email string) (model.User, error) {
	return m.getOrCreateFn(ctx, cognitoSub, email)
}
func (m *mockUserRepo) GetByCognitoSub(ctx context.Context, cognitoSub string) (model.User, error) {
	return m.getByCognitoSubFn(ctx, cognitoSub)
}
func (m *mockUserRepo) GetByID(ctx context.Context, userID string) (model.User, error) {
	return m.getByIDFn(ctx, userID)
}
func (m *mockUserRepo) Update(ctx context.Context, user model.User) (model.User, error) {
	return m.updateFn(ctx, user)
}

// --- Mock Cognito Client ---

type mockCognitoClient struct {
	signUpFn         func(ctx context.Context, creds cognito.Credentials) (cognito.Registration, error)
	confirmSignUpFn  func(ctx context.Context, email, code string) error
	loginFn          func(ctx context.Context, creds cognito.Credentials) (cognito.Tokens, error)
	refreshFn        func(ctx context.Context, email, refreshToken string) (cognito.Tokens, error)
	changePasswordFn func(ctx context.Context, accessToken, previous, proposed string) error
	signOutFn        func(ctx context.Context, accessToken string) error
}

func (m *mockCognitoClient) SignUp(ctx context.Context, creds cognito.Credentials) (cognito.Registration, error) {
	return m.signUpFn(ctx, creds)
}
func (m *mockCognitoClient) ConfirmSignUp(ctx context.Context, email, code string) error {
	return m.confirmSignUpFn(ctx, email, code)
}
func (m *mockCognitoClient) Login(ctx context.Context, creds cognito.Credentials) (cognito.Tokens, error) {
	return m.loginFn(ctx, creds)
}
func (m *mockCognitoClient) Refresh(ctx context.Context, email, refreshToken string) (cognito.Tokens, error) {
	return m.refreshFn(ctx, email, refreshToken)
}
func (m *mockCognitoClient) ChangePassword(ctx context.Context, accessToken, previous, proposed string) error {
	return m.changePasswordFn(ctx, accessToken, previous, proposed)
}
func (m *mockCognitoClient) SignOut(ctx context.Context, accessToken string) error {
	return m.signOutFn(ctx, accessToken)
}
