package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"classtrack/backend/config"
	"classtrack/backend/internal/dto"
	"classtrack/backend/internal/model"
	"classtrack/backend/pkg/jwt"
)

// ── 测试辅助 ──

func authTestConfig() *config.Config {
	cfg := testConfig()
	cfg.Auth = config.AuthConfig{
		JWTSecret:       "test-secret-key-for-unit-testing-2026",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		InitialPassword: "classtrack123",
	}
	return cfg
}

func setupAuthService(t *testing.T) (AuthService, *mockUserRepo, *jwt.Manager) {
	t.Helper()
	repo, userRepo, _, _ := newMockRepository()
	cfg := authTestConfig()
	jwtMgr := jwt.NewManager(&cfg.Auth)
	svc := NewAuthService(cfg, repo, jwtMgr, nil, zap.NewNop())
	return svc, userRepo, jwtMgr
}

func createLoginUser(userRepo *mockUserRepo, studentNo, password string) *model.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	user := &model.User{
		UserID:       "user-" + studentNo,
		Name:         "测试用户",
		StudentNo:    studentNo,
		Email:        studentNo + "@school.test",
		PasswordHash: string(hash),
		Role:         model.RoleStudent,
	}
	userRepo.users[user.UserID] = user
	return user
}

// ── 登录测试 ──

func TestLogin_Success(t *testing.T) {
	svc, userRepo, _ := setupAuthService(t)
	createLoginUser(userRepo, "2026001", "password123")

	result, err := svc.Login(context.Background(), &dto.LoginRequest{
		StudentNo: "2026001",
		Password:  "password123",
	})
	if err != nil {
		t.Fatalf("Login 应成功，但返回错误: %v", err)
	}
	if result.AccessToken == "" {
		t.Error("AccessToken 不应为空")
	}
	if result.RefreshToken == "" {
		t.Error("RefreshToken 不应为空")
	}
	if result.User.StudentNo != "2026001" {
		t.Errorf("期望 StudentNo=2026001，实际=%s", result.User.StudentNo)
	}
	if result.ExpiresIn != 900 {
		t.Errorf("期望 ExpiresIn=900，实际=%d", result.ExpiresIn)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, userRepo, _ := setupAuthService(t)
	createLoginUser(userRepo, "2026001", "password123")

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		StudentNo: "2026001",
		Password:  "wrong_password",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestLogin_UserNotFound(t *testing.T) {
	svc, _, _ := setupAuthService(t)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		StudentNo: "nonexistent",
		Password:  "password123",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

// ── 刷新测试 ──

func TestRefresh_Success(t *testing.T) {
	svc, userRepo, _ := setupAuthService(t)
	user := createLoginUser(userRepo, "2026001", "password123")

	login, err := svc.Login(context.Background(), &dto.LoginRequest{
		StudentNo: "2026001",
		Password:  "password123",
	})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}

	result, err := svc.Refresh(context.Background(), &dto.RefreshRequest{
		RefreshToken: login.RefreshToken,
	})
	if err != nil {
		t.Fatalf("Refresh 应成功: %v", err)
	}
	if result.User.ID != user.UserID {
		t.Errorf("期望用户 %s，实际=%s", user.UserID, result.User.ID)
	}
}

func TestRefresh_AccessTokenNotAllowed(t *testing.T) {
	svc, userRepo, _ := setupAuthService(t)
	createLoginUser(userRepo, "2026001", "password123")

	login, _ := svc.Login(context.Background(), &dto.LoginRequest{
		StudentNo: "2026001",
		Password:  "password123",
	})

	_, err := svc.Refresh(context.Background(), &dto.RefreshRequest{
		RefreshToken: login.AccessToken,
	})
	if !errors.Is(err, ErrInvalidRefresh) {
		t.Errorf("Access Token 不应通过刷新，实际: %v", err)
	}
}

func TestRefresh_GarbageToken(t *testing.T) {
	svc, _, _ := setupAuthService(t)

	_, err := svc.Refresh(context.Background(), &dto.RefreshRequest{
		RefreshToken: "not-a-jwt",
	})
	if !errors.Is(err, ErrInvalidRefresh) {
		t.Errorf("期望 ErrInvalidRefresh，实际: %v", err)
	}
}

// ── 修改密码测试 ──

func TestChangePassword_Success(t *testing.T) {
	svc, userRepo, _ := setupAuthService(t)
	user := createLoginUser(userRepo, "2026001", "oldpassword")

	err := svc.ChangePassword(context.Background(), user.UserID, &dto.ChangePasswordRequest{
		OldPassword: "oldpassword",
		NewPassword: "newpassword1",
	})
	if err != nil {
		t.Fatalf("修改密码应成功: %v", err)
	}

	// 新密码可登录
	if _, err := svc.Login(context.Background(), &dto.LoginRequest{
		StudentNo: "2026001",
		Password:  "newpassword1",
	}); err != nil {
		t.Errorf("新密码应可登录: %v", err)
	}
	// 旧密码失效
	if _, err := svc.Login(context.Background(), &dto.LoginRequest{
		StudentNo: "2026001",
		Password:  "oldpassword",
	}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("旧密码应失效，实际: %v", err)
	}
}

func TestChangePassword_WrongOldPassword(t *testing.T) {
	svc, userRepo, _ := setupAuthService(t)
	user := createLoginUser(userRepo, "2026001", "oldpassword")

	err := svc.ChangePassword(context.Background(), user.UserID, &dto.ChangePasswordRequest{
		OldPassword: "wrong",
		NewPassword: "newpassword1",
	})
	if !errors.Is(err, ErrOldPasswordWrong) {
		t.Errorf("期望 ErrOldPasswordWrong，实际: %v", err)
	}
}

// ── 当前用户测试 ──

func TestGetCurrentUser_Success(t *testing.T) {
	svc, userRepo, _ := setupAuthService(t)
	user := createLoginUser(userRepo, "2026001", "password123")

	result, err := svc.GetCurrentUser(context.Background(), user.UserID)
	if err != nil {
		t.Fatalf("GetCurrentUser 应成功: %v", err)
	}
	if result.StudentNo != "2026001" {
		t.Errorf("期望 StudentNo=2026001，实际=%s", result.StudentNo)
	}
}

func TestGetCurrentUser_NotFound(t *testing.T) {
	svc, _, _ := setupAuthService(t)

	_, err := svc.GetCurrentUser(context.Background(), "ghost")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}
}
