// Package permission defines the capability set granted to admin accounts.
//
// Each admin carries a set of permission keys persisted as a JSON array on
// the account row. A master admin implicitly holds every key; that rule is
// enforced at the middleware layer, not here.
package permission

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gorm.io/datatypes"
)

// Permission keys, one per managed resource.
const (
	KeyAdmins        = "admins"
	KeyEvents        = "events"
	KeyGallery       = "gallery"
	KeyPDFs          = "pdfs"
	KeyNotifications = "notifications"
)

// All lists every known permission key in stable order.
func All() []string {
	return []string{KeyAdmins, KeyEvents, KeyGallery, KeyPDFs, KeyNotifications}
}

// DefaultAdminKeys returns the keys granted to a newly created admin when the
// request does not specify any: everything except admin management.
func DefaultAdminKeys() []string {
	return []string{KeyEvents, KeyGallery, KeyPDFs, KeyNotifications}
}

// known is the lookup set backing Validate.
var known = func() map[string]struct{} {
	m := make(map[string]struct{}, len(All()))
	for _, key := range All() {
		m[key] = struct{}{}
	}
	return m
}()

// Normalize trims, lowercases, deduplicates and sorts permission keys.
func Normalize(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

// Validate reports an error naming the first unknown key, if any.
func Validate(keys []string) error {
	for _, key := range keys {
		if _, ok := known[key]; !ok {
			return fmt.Errorf("permission: unknown key %q", key)
		}
	}
	return nil
}

// Marshal encodes permission keys as a JSON array for storage.
func Marshal(keys []string) (datatypes.JSON, error) {
	if keys == nil {
		keys = []string{}
	}
	raw, err := json.Marshal(keys)
	if err != nil {
		return nil, fmt.Errorf("permission: marshal: %w", err)
	}
	return datatypes.JSON(raw), nil
}

// Parse decodes a stored permission column. Malformed or empty columns parse
// as no permissions rather than failing the request.
func Parse(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var keys []string
	if errUnmarshal := json.Unmarshal(raw, &keys); errUnmarshal != nil {
		return []string{}
	}
	return Normalize(keys)
}

// Has reports whether key is present in the set.
func Has(keys []string, key string) bool {
	for _, have := range keys {
		if have == key {
			return true
		}
	}
	return false
}
