package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"classtrack/backend/internal/dto"
	"classtrack/backend/internal/model"
)

func setupUserService(t *testing.T) (UserService, *mockUserRepo, *mockClassRepo) {
	t.Helper()
	repo, userRepo, _, _ := newMockRepository()
	classRepo := repo.Class.(*mockClassRepo)
	classRepo.classes["class-1"] = &model.Class{ClassID: "class-1", Name: "七年级一班", Grade: 7}
	svc := NewUserService(authTestConfig(), repo, zap.NewNop())
	return svc, userRepo, classRepo
}

func TestUserCreate_Success(t *testing.T) {
	svc, _, _ := setupUserService(t)
	cid := "class-1"

	result, err := svc.Create(context.Background(), &dto.CreateUserRequest{
		Name:      "张三",
		StudentNo: "2026001",
		Email:     "zhangsan@school.test",
		Password:  "password123",
		Role:      model.RoleStudent,
		ClassID:   &cid,
	}, "admin-1")
	if err != nil {
		t.Fatalf("创建用户应成功: %v", err)
	}
	if result.StudentNo != "2026001" || result.Role != model.RoleStudent {
		t.Errorf("响应字段有误: %+v", result)
	}
}

func TestUserCreate_DuplicateStudentNo(t *testing.T) {
	svc, userRepo, _ := setupUserService(t)
	createLoginUser(userRepo, "2026001", "password123")

	_, err := svc.Create(context.Background(), &dto.CreateUserRequest{
		Name:      "李四",
		StudentNo: "2026001",
		Email:     "lisi@school.test",
		Password:  "password123",
		Role:      model.RoleStudent,
	}, "admin-1")
	if !errors.Is(err, ErrStudentNoTaken) {
		t.Errorf("期望 ErrStudentNoTaken，实际: %v", err)
	}
}

func TestUserCreate_ClassNotFound(t *testing.T) {
	svc, _, _ := setupUserService(t)
	ghost := "ghost-class"

	_, err := svc.Create(context.Background(), &dto.CreateUserRequest{
		Name:      "李四",
		StudentNo: "2026002",
		Email:     "lisi@school.test",
		Password:  "password123",
		Role:      model.RoleStudent,
		ClassID:   &ghost,
	}, "admin-1")
	if !errors.Is(err, ErrClassNotFound) {
		t.Errorf("期望 ErrClassNotFound，实际: %v", err)
	}
}

func TestUserList_FilterByRole(t *testing.T) {
	svc, userRepo, _ := setupUserService(t)
	createLoginUser(userRepo, "2026001", "x")
	userRepo.users["teacher-1"] = &model.User{
		UserID: "teacher-1", Name: "李老师", StudentNo: "T-001",
		Email: "t1@school.test", Role: model.RoleTeacher,
	}

	items, total, err := svc.List(context.Background(), &dto.UserListRequest{
		Role: model.RoleTeacher,
	})
	if err != nil {
		t.Fatalf("查询应成功: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].Role != model.RoleTeacher {
		t.Errorf("按角色过滤有误: total=%d items=%d", total, len(items))
	}
}

func TestUserAssignRole_ClearsClassForNonStudent(t *testing.T) {
	svc, userRepo, _ := setupUserService(t)
	user := createLoginUser(userRepo, "2026001", "x")
	cid := "class-1"
	user.ClassID = &cid

	err := svc.AssignRole(context.Background(), user.UserID, &dto.AssignRoleRequest{
		Role: model.RoleTeacher,
	}, "admin-1")
	if err != nil {
		t.Fatalf("角色调整应成功: %v", err)
	}
	if user.ClassID != nil {
		t.Error("非学生角色应清除班级归属")
	}
}

func TestUserDelete_SelfRejected(t *testing.T) {
	svc, userRepo, _ := setupUserService(t)
	user := createLoginUser(userRepo, "2026001", "x")

	err := svc.Delete(context.Background(), user.UserID, user.UserID)
	if !errors.Is(err, ErrUserSelfDelete) {
		t.Errorf("期望 ErrUserSelfDelete，实际: %v", err)
	}
}

func TestUserResetPassword_SetsInitialPassword(t *testing.T) {
	svc, userRepo, _ := setupUserService(t)
	user := createLoginUser(userRepo, "2026001", "oldpassword")

	if err := svc.ResetPassword(context.Background(), user.UserID, "admin-1"); err != nil {
		t.Fatalf("重置密码应成功: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("classtrack123")); err != nil {
		t.Error("重置后应为配置的初始密码")
	}
}
