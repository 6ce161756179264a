package auth

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
)

func TestStore_Lifecycle(t *testing.T) {
	t.Setenv(EnvToken, "")
	s := Store{Dir: filepath.Join(t.TempDir(), ".tada")}

	ti, err := s.Get()
	if err != nil || ti != nil {
		t.Fatalf("Get() before login = %+v, %v; want nil, nil", ti, err)
	}
	if err := s.Set("Bearer abc123", nil); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	fi, err := os.Stat(filepath.Join(s.Dir, credFileName))
	if err != nil {
		t.Fatal(err)
	}
	if perm := fi.Mode().Perm(); perm != 0o600 {
		t.Errorf("credentials perm = %o, want 600", perm)
	}

	tok, err := s.Token()
	if err != nil || tok != "abc123" {
		t.Errorf("Token() = %q, %v; want abc123", tok, err)
	}
	if err := s.Delete(); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if err := s.Delete(); err != nil {
		t.Errorf("second Delete() = %v, want nil", err)
	}
}

func TestStore_EnvOverride(t *testing.T) {
	t.Setenv(EnvToken, "bearer from-env")
	s := Store{Dir: t.TempDir()}
	ti, err := s.Get()
	if err != nil {
		t.Fatal(err)
	}
	if ti.Token != "from-env" || ti.Source != "env" {
		t.Errorf("Get() = %+v", ti)
	}
}

func TestSet_Empty(t *testing.T) {
	if err := (Store{Dir: t.TempDir()}).Set("  ", nil); err == nil {
		t.Error("Set(blank) succeeded")
	}
}

func TestJWTExpiry(t *testing.T) {
	t.Setenv(EnvToken, "")
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"me","exp":2000000000}`))
	token := "e30." + payload + ".sig"

	got, ok := Payload(token)
	if !ok || got != `{"sub":"me","exp":2000000000}` {
		t.Errorf("Payload() = %q, %v", got, ok)
	}
	if _, ok := Payload("opaque"); ok {
		t.Error("Payload(opaque) ok = true")
	}

	s := Store{Dir: t.TempDir()}
	if err := s.Set(token, nil); err != nil {
		t.Fatal(err)
	}
	ti, _ := s.Get()
	if ti.ExpiresAt == nil || ti.ExpiresAt.Unix() != 2000000000 {
		t.Errorf("ExpiresAt = %v, want unix 2000000000", ti.ExpiresAt)
	}
}
