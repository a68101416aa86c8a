package tokens

import (
	"encoding/base64"
	"testing"
	"time"
)

func TestSecurityBundleRoundtrip(t *testing.T) {
	in := SecurityBundle{
		ClientToken:      "client-token",
		OldSecurityToken: "device-a",
		NewSecurityToken: "device-b",
		ExpiresAt:        time.Now().Add(15 * time.Minute).Unix(),
	}

	encoded, err := EncodeSecurityBundle(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	out, ok := DecodeSecurityBundle(encoded)
	if !ok {
		t.Fatalf("decode failed")
	}
	if out != in {
		t.Fatalf("roundtrip mismatch: %+v vs %+v", out, in)
	}
}

func TestDecodeSecurityBundleRejectsGarbage(t *testing.T) {
	if _, ok := DecodeSecurityBundle("not base64!!"); ok {
		t.Fatalf("expected invalid base64 to be rejected")
	}
	if _, ok := DecodeSecurityBundle(base64.StdEncoding.EncodeToString([]byte("não é json"))); ok {
		t.Fatalf("expected invalid json to be rejected")
	}

	truncated := base64.StdEncoding.EncodeToString([]byte(`["a","b","c"]`))
	if _, ok := DecodeSecurityBundle(truncated); ok {
		t.Fatalf("expected short bundle to be rejected")
	}

	wrongTypes := base64.StdEncoding.EncodeToString([]byte(`[1,2,3,"x"]`))
	if _, ok := DecodeSecurityBundle(wrongTypes); ok {
		t.Fatalf("expected mistyped bundle to be rejected")
	}
}
