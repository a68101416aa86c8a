package tokens

import (
	"encoding/base64"
	"encoding/json"
)

// SecurityBundle is the payload embedded in the device-authorization
// email link: the client token, the currently stored security token,
// the new device's token, and a unix expiry.
type SecurityBundle struct {
	ClientToken      string
	OldSecurityToken string
	NewSecurityToken string
	ExpiresAt        int64
}

func EncodeSecurityBundle(b SecurityBundle) (string, error) {
	raw, err := json.Marshal([]any{
		b.ClientToken,
		b.OldSecurityToken,
		b.NewSecurityToken,
		b.ExpiresAt,
	})
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

func DecodeSecurityBundle(encoded string) (SecurityBundle, bool) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return SecurityBundle{}, false
	}
	var parts []any
	if err := json.Unmarshal(raw, &parts); err != nil {
		return SecurityBundle{}, false
	}
	if len(parts) < 4 {
		return SecurityBundle{}, false
	}

	clientToken, ok1 := parts[0].(string)
	oldToken, ok2 := parts[1].(string)
	newToken, ok3 := parts[2].(string)
	expiry, ok4 := parts[3].(float64)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return SecurityBundle{}, false
	}

	return SecurityBundle{
		ClientToken:      clientToken,
		OldSecurityToken: oldToken,
		NewSecurityToken: newToken,
		ExpiresAt:        int64(expiry),
	}, true
}
