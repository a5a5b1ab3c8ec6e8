package jwt

import (
	"errors"
	"testing"
	"time"

	"classtrack/backend/config"
)

func newTestManager(accessTTL, refreshTTL time.Duration) *Manager {
	return NewManager(&config.AuthConfig{
		JWTSecret:       "test-secret-key-at-least-16-chars",
		AccessTokenTTL:  accessTTL,
		RefreshTokenTTL: refreshTTL,
	})
}

func TestManager_GenerateAndParse_AccessToken(t *testing.T) {
	m := newTestManager(15*time.Minute, 168*time.Hour)

	token, err := m.GenerateAccessToken("user-001", "student", "class-001")
	if err != nil {
		t.Fatalf("生成 AccessToken 失败: %v", err)
	}

	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("解析 Token 失败: %v", err)
	}
	if claims.UserID != "user-001" {
		t.Errorf("期望 UserID=user-001，实际=%s", claims.UserID)
	}
	if claims.Role != "student" {
		t.Errorf("期望 Role=student，实际=%s", claims.Role)
	}
	if claims.ClassID != "class-001" {
		t.Errorf("期望 ClassID=class-001，实际=%s", claims.ClassID)
	}
	if claims.TokenType != "access" {
		t.Errorf("期望 TokenType=access，实际=%s", claims.TokenType)
	}
	if claims.ID == "" {
		t.Error("JTI 不应为空")
	}
}

func TestManager_GenerateRefreshToken_Type(t *testing.T) {
	m := newTestManager(15*time.Minute, 168*time.Hour)

	token, err := m.GenerateRefreshToken("user-002", "teacher", "")
	if err != nil {
		t.Fatalf("生成 RefreshToken 失败: %v", err)
	}

	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("解析 Token 失败: %v", err)
	}
	if claims.TokenType != "refresh" {
		t.Errorf("期望 TokenType=refresh，实际=%s", claims.TokenType)
	}
	if claims.ClassID != "" {
		t.Errorf("教师 Token 不应携带 ClassID，实际=%s", claims.ClassID)
	}
}

func TestManager_ParseToken_Expired(t *testing.T) {
	m := newTestManager(-1*time.Minute, 168*time.Hour)

	token, err := m.GenerateAccessToken("user-003", "admin", "")
	if err != nil {
		t.Fatalf("生成 Token 失败: %v", err)
	}

	_, err = m.ParseToken(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("期望 ErrTokenExpired，实际: %v", err)
	}
}

func TestManager_ParseToken_WrongSecret(t *testing.T) {
	m1 := newTestManager(15*time.Minute, 168*time.Hour)
	m2 := NewManager(&config.AuthConfig{
		JWTSecret:       "another-secret-key-16-chars-long",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 168 * time.Hour,
	})

	token, err := m1.GenerateAccessToken("user-004", "student", "class-002")
	if err != nil {
		t.Fatalf("生成 Token 失败: %v", err)
	}

	_, err = m2.ParseToken(token)
	if !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("期望 ErrTokenInvalid，实际: %v", err)
	}
}

func TestManager_ParseToken_Garbage(t *testing.T) {
	m := newTestManager(15*time.Minute, 168*time.Hour)

	_, err := m.ParseToken("not-a-jwt")
	if !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("期望 ErrTokenInvalid，实际: %v", err)
	}
}
