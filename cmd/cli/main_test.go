package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func withTmpConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return filepath.Join(dir, "fittrack")
}

func Test_cfgDir_And_Paths(t *testing.T) {
	_ = withTmpConfig(t)
	got := cfgDir()
	base := os.Getenv("XDG_CONFIG_HOME") + "/fittrack"
	if got != base {
		t.Fatalf("cfgDir=%q, want %q", got, base)
	}
	if !strings.HasPrefix(userIDPath(), base) || !strings.HasSuffix(userIDPath(), "user_id") {
		t.Fatalf("userIDPath unexpected: %s", userIDPath())
	}
}

func Test_saveLoadUserID(t *testing.T) {
	base := withTmpConfig(t)

	if _, err := loadUserID(); err == nil {
		t.Fatalf("expected error when user_id missing")
	}
	if err := saveUserID(123); err != nil {
		t.Fatalf("saveUserID: %v", err)
	}
	got, err := loadUserID()
	if err != nil || got != 123 {
		t.Fatalf("loadUserID: %d %v", got, err)
	}
	if _, err := os.Stat(filepath.Join(base, "user_id")); err != nil {
		t.Fatalf("user_id file missing: %v", err)
	}

	if err := os.WriteFile(userIDPath(), []byte("garbage"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := loadUserID(); err == nil {
		t.Fatalf("want error on corrupt user_id")
	}
}

func Test_parseUserID(t *testing.T) {
	t.Parallel()

	if id, err := parseUserID("42"); err != nil || id != 42 {
		t.Fatalf("parse: %d %v", id, err)
	}
	for _, s := range []string{"", "0", "-1", "x"} {
		if _, err := parseUserID(s); err == nil {
			t.Fatalf("want error for %q", s)
		}
	}
}

func Test_userCreds_Metadata(t *testing.T) {
	t.Parallel()

	c := userCreds{id: 7, secure: true}
	md, err := c.GetRequestMetadata(context.Background())
	if err != nil {
		t.Fatalf("GetRequestMetadata: %v", err)
	}
	if md["x-user-id"] != "7" {
		t.Fatalf("header mismatch: %v", md)
	}
	if !c.RequireTransportSecurity() {
		t.Fatalf("secure creds must require TLS")
	}
	if (userCreds{id: 7}).RequireTransportSecurity() {
		t.Fatalf("plaintext creds must not require TLS")
	}
}

func Test_loadTLS_Variants(t *testing.T) {
	t.Parallel()

	// insecure
	creds, err := loadTLS("", true)
	if err != nil || creds == nil {
		t.Fatalf("insecure: %v %v", creds, err)
	}

	// system default (no caPath)
	creds, err = loadTLS("", false)
	if err != nil || creds == nil {
		t.Fatalf("default tls: %v %v", creds, err)
	}

	// bad CA file
	tmp := filepath.Join(t.TempDir(), "bad.pem")
	_ = os.WriteFile(tmp, []byte("not pem"), 0o600)
	creds, err = loadTLS(tmp, false)
	if err == nil || creds != nil {
		t.Fatalf("bad CA should error, got creds=%v err=%v", creds, err)
	}
}
