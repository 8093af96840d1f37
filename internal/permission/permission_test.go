package permission

import (
	"reflect"
	"testing"

	"gorm.io/datatypes"
)

func TestNormalize(t *testing.T) {
	t.Parallel()
	got := Normalize([]string{" Events ", "gallery", "EVENTS", "", "pdfs"})
	want := []string{"events", "gallery", "pdfs"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestValidateRejectsUnknownKey(t *testing.T) {
	t.Parallel()
	if errValidate := Validate(All()); errValidate != nil {
		t.Fatalf("known keys rejected: %v", errValidate)
	}
	if errValidate := Validate([]string{"events", "billing"}); errValidate == nil {
		t.Fatal("unknown key accepted")
	}
}

func TestMarshalParseRoundTrip(t *testing.T) {
	t.Parallel()
	raw, errMarshal := Marshal([]string{"gallery", "events"})
	if errMarshal != nil {
		t.Fatalf("marshal: %v", errMarshal)
	}
	got := Parse(raw)
	want := []string{"events", "gallery"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestParseMalformedColumn(t *testing.T) {
	t.Parallel()
	if got := Parse(datatypes.JSON(`{"broken"`)); len(got) != 0 {
		t.Fatalf("expected empty set for malformed column, got %v", got)
	}
	if got := Parse(nil); len(got) != 0 {
		t.Fatalf("expected empty set for nil column, got %v", got)
	}
}

func TestHas(t *testing.T) {
	t.Parallel()
	keys := []string{"events", "pdfs"}
	if !Has(keys, KeyEvents) {
		t.Fatal("expected events present")
	}
	if Has(keys, KeyAdmins) {
		t.Fatal("expected admins absent")
	}
}

func TestDefaultAdminKeysExcludeAdminManagement(t *testing.T) {
	t.Parallel()
	if Has(DefaultAdminKeys(), KeyAdmins) {
		t.Fatal("default grant must not include admin management")
	}
}
